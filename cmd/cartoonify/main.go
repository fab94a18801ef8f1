package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/wbrown/cartoonify"
	"github.com/wbrown/cartoonify/config"
	"github.com/wbrown/cartoonify/imageutil"
)

type options struct {
	input         string
	output        string
	format        string
	quality       int
	configPath    string
	writeConfig   string
	intermediates string
	sheet         string
	backend       string
	workers       int
	timeout       time.Duration
	debug         bool
	json          bool
}

func main() {
	var opts options
	flag.StringVar(&opts.input, "input", "",
		"Path to the input image file (required, or pass it as the first argument)")
	flag.StringVar(&opts.output, "output", "",
		"Path to save the cartoon (default: <input>_cartoon.jpg)")
	flag.StringVar(&opts.format, "format", "",
		"Output format: auto, jpeg, png, gif, bmp or tiff (default from config)")
	flag.IntVar(&opts.quality, "quality", imageutil.DefaultJPEGQuality,
		"JPEG quality, 1-100")
	flag.StringVar(&opts.configPath, "config", "cartoonify.yaml",
		"Path to the YAML config file, defaults are used if it does not exist")
	flag.StringVar(&opts.writeConfig, "write-config", "",
		"Write the default config to this path and exit")
	flag.StringVar(&opts.intermediates, "intermediates", "",
		"Directory to save all six full resolution images in")
	flag.StringVar(&opts.sheet, "sheet", "",
		"Path to save a labelled contact sheet of the six thumbnails")
	flag.StringVar(&opts.backend, "backend", cartoonify.DefaultBackend,
		"Filter backend: "+strings.Join(cartoonify.Backends(), ", "))
	flag.IntVar(&opts.workers, "workers", 0,
		"Goroutines per filter, 0 for all cores")
	flag.DurationVar(&opts.timeout, "timeout", 0,
		"Abort processing after this long, 0 for no limit")
	flag.BoolVar(&opts.debug, "debug", false,
		"Log every stage")
	flag.BoolVar(&opts.json, "json", false,
		"Log JSON lines instead of console output")
	flag.Parse()

	if opts.input == "" && flag.NArg() > 0 {
		opts.input = flag.Arg(0)
	}

	if opts.writeConfig != "" {
		if err := config.CreateDefaultConfigFile(opts.writeConfig); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing config: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Default config written to %s\n", opts.writeConfig)
		return
	}

	if opts.input == "" {
		fmt.Println("Please provide the image using the -input flag")
		flag.PrintDefaults()
		os.Exit(2)
	}

	cfg, err := config.LoadConfig(opts.configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
	applyFlags(cfg, &opts)

	logger, err := cfg.Logger(os.Stderr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if err := run(cfg, &opts, logger); err != nil {
		logger.Error().Err(err).Msg("cartoonify failed")
		os.Exit(1)
	}
}

// applyFlags overrides config values with the flags given on the
// command line.
func applyFlags(cfg *config.Config, opts *options) {
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "format":
			cfg.Output.Format = opts.format
		case "quality":
			cfg.Output.JPEGQuality = opts.quality
		case "backend":
			cfg.Processing.Backend = opts.backend
		case "workers":
			cfg.Processing.Workers = opts.workers
		case "json":
			cfg.Logging.JSON = opts.json
		}
	})
	if opts.debug {
		cfg.Logging.Level = zerolog.DebugLevel.String()
	}
}

func run(cfg *config.Config, opts *options, logger zerolog.Logger) error {
	pipelineOpts, err := cfg.Options()
	if err != nil {
		return err
	}
	format, err := cartoonify.ParseFormat(cfg.Output.Format)
	if err != nil {
		return err
	}
	artifactFormat, err := cartoonify.ParseFormat(cfg.Output.IntermediatesFormat)
	if err != nil {
		return err
	}
	imageutil.SetWorkers(cfg.Processing.Workers)

	if !imageutil.IsSupportedExtension(opts.input) {
		logger.Warn().
			Str("path", opts.input).
			Strs("supported", imageutil.SupportedExtensions).
			Msg("unrecognised file extension, decoding by content")
	}

	output := opts.output
	if output == "" {
		output = defaultOutputPath(opts.input)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if opts.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.timeout)
		defer cancel()
	}

	p := cartoonify.NewPipeline(append(pipelineOpts, cartoonify.WithLogger(logger))...)
	logger.Info().Str("input", opts.input).Str("backend", p.Backend.Name()).Msg("Processing image...")

	res, err := p.RunFile(ctx, opts.input)
	if err != nil {
		var unreadable *cartoonify.UnreadableImageError
		if errors.As(err, &unreadable) {
			return fmt.Errorf("%w (supported: %s)", err, strings.Join(imageutil.SupportedExtensions, " "))
		}
		return err
	}

	if err := cartoonify.SaveImageQuality(res.Artifacts.Cartoon, output, format, cfg.Output.JPEGQuality); err != nil {
		return err
	}
	logger.Info().Str("path", output).Msg("Image saved successfully")

	if opts.intermediates != "" {
		paths, err := res.SaveArtifacts(opts.intermediates, artifactFormat)
		if err != nil {
			return err
		}
		logger.Info().Str("dir", opts.intermediates).Int("files", len(paths)).Msg("intermediate images saved")
	}

	if opts.sheet != "" {
		sheet, err := cartoonify.ContactSheet(res.Thumbnails, 2)
		if err != nil {
			return err
		}
		if err := cartoonify.SaveImageQuality(sheet, opts.sheet, cartoonify.FormatAuto, cfg.Output.JPEGQuality); err != nil {
			return err
		}
		logger.Info().Str("path", opts.sheet).Msg("contact sheet saved")
	}

	logger.Info().EmbedObject(cartoonify.NewReport(res)).Msg("run report")
	return nil
}

// defaultOutputPath turns "photos/cat.png" into "photos/cat_cartoon.jpg".
func defaultOutputPath(input string) string {
	ext := filepath.Ext(input)
	return strings.TrimSuffix(input, ext) + "_cartoon.jpg"
}
