package main

import (
	"context"
	"os"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// mapFiles reads paths concurrently and applies fn to each file's
// contents. Results are returned in argument order.
func mapFiles(ctx context.Context, paths []string, fn func(string) string) ([]string, error) {
	results := make([]string, len(paths))
	if len(paths) == 0 {
		return results, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(runtime.GOMAXPROCS(0), len(paths)))

	for i, path := range paths {
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}

			data, err := os.ReadFile(path)
			if err != nil {
				return err
			}
			// index i is unique per goroutine
			results[i] = fn(string(data))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
