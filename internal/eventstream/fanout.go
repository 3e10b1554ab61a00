package eventstream

import (
	"context"
	"errors"

	"golang.org/x/sync/errgroup"
)

// Result is the outcome of one file processed by ProcessFiles.
type Result struct {
	Path   string
	Driver *Driver
	Err    error
}

// ProcessFiles processes each path with its own Driver from newDriver,
// at most parallelism at a time. Results keep the order of paths.
// A file that cannot be read does not stop the others; the returned
// error joins every per-file failure.
func ProcessFiles(ctx context.Context, paths []string, parallelism int, newDriver func(path string) *Driver) ([]Result, error) {
	if parallelism < 1 {
		parallelism = 1
	}

	results := make([]Result, len(paths))
	var group errgroup.Group
	group.SetLimit(parallelism)

	for i, path := range paths {
		results[i] = Result{Path: path, Driver: newDriver(path)}
		group.Go(func() error {
			results[i].Err = results[i].Driver.ProcessFile(ctx, path)
			return nil
		})
	}
	_ = group.Wait() //nolint:errcheck // Per-file errors live in results

	var errs []error
	for _, r := range results {
		if r.Err != nil {
			errs = append(errs, r.Err)
		}
	}
	return results, errors.Join(errs...)
}
