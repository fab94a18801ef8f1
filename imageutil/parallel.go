package imageutil

import (
	"runtime"
	"sync"
)

// minRowsPerWorker keeps tiny images on a single goroutine.
const minRowsPerWorker = 16

// workers is the number of goroutines used by parallelRows. Tests may
// lower it to exercise the sequential path.
var workers = runtime.NumCPU()

// SetWorkers sets how many goroutines the filters in this package use.
// Values below 1 select runtime.NumCPU(). It returns the previous value.
func SetWorkers(n int) int {
	prev := workers
	if n < 1 {
		n = runtime.NumCPU()
	}
	workers = n
	return prev
}

// parallelRows calls fn once for every row in [0, height), spreading
// contiguous bands of rows over the configured workers. fn must only
// write to output row y, which keeps results independent of scheduling.
func parallelRows(height int, fn func(y int)) {
	n := workers
	if max := height / minRowsPerWorker; n > max {
		n = max
	}
	if n <= 1 {
		for y := 0; y < height; y++ {
			fn(y)
		}
		return
	}

	band := (height + n - 1) / n
	var (
		wg       sync.WaitGroup
		once     sync.Once
		panicked interface{}
	)
	for start := 0; start < height; start += band {
		end := start + band
		if end > height {
			end = height
		}
		wg.Add(1)
		go func(start, end int) {
			defer wg.Done()
			defer func() {
				if r := recover(); r != nil {
					once.Do(func() { panicked = r })
				}
			}()
			for y := start; y < end; y++ {
				fn(y)
			}
		}(start, end)
	}
	wg.Wait()

	// Re-raise on the calling goroutine so callers can recover it.
	if panicked != nil {
		panic(panicked)
	}
}

// clampInt clamps an integer to the given range.
func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
