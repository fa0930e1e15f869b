package textbook

import (
	"context"
	"runtime"
	"sync"
)

// Pool sizing constants.
const (
	// MinPoolSize ensures at least one worker is available.
	MinPoolSize = 1

	// MaxPoolSize caps concurrent kernels, each of which may hold a
	// simulation in memory.
	MaxPoolSize = 8

	// cpuDivisor leaves headroom for kernel child processes.
	cpuDivisor = 2
)

// ResolvePoolSize determines the number of notebooks processed at once.
// Priority: explicit workers > GOMAXPROCS-based calculation.
func ResolvePoolSize(workers int) int {
	if workers > 0 {
		return workers
	}

	// GOMAXPROCS is adjusted by automaxprocs in containers.
	n := runtime.GOMAXPROCS(0) / cpuDivisor
	if n < MinPoolSize {
		return MinPoolSize
	}
	if n > MaxPoolSize {
		return MaxPoolSize
	}
	return n
}

// runBatch calls fn for every index in [0, n) using up to workers
// goroutines. Indexes not started before ctx is done are passed to
// cancelled instead. Results are stored by index, so output order does not
// depend on scheduling.
func runBatch[T any](ctx context.Context, n, workers int, fn func(int) T, cancelled func(int, error) T) []T {
	if n == 0 {
		return nil
	}
	if workers > n {
		workers = n
	}
	if workers < MinPoolSize {
		workers = MinPoolSize
	}

	results := make([]T, n)
	var wg sync.WaitGroup
	jobs := make(chan int, n)

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobs {
				if err := ctx.Err(); err != nil {
					results[idx] = cancelled(idx, err)
					continue
				}
				results[idx] = fn(idx)
			}
		}()
	}

	for i := 0; i < n; i++ {
		jobs <- i
	}
	close(jobs)

	wg.Wait()
	return results
}
