package main

import (
	"fmt"
	"io"

	"github.com/alitto/pond/v2"
	log "github.com/sirupsen/logrus"
)

// fileResult is the outcome of one input of a batch.
type fileResult struct {
	path   string
	report string
	err    error
}

// runBatch runs job for every input on a pool of at most jobs workers and
// prints the reports in input order. A failing input does not stop the
// others; the batch fails if any input did.
func runBatch(w io.Writer, jobs int, inputs []string, job func(path string) (string, error)) error {
	if jobs < 1 {
		jobs = 1
	}
	if jobs > len(inputs) {
		jobs = len(inputs)
	}

	pool := pond.NewResultPool[fileResult](jobs)
	defer pool.StopAndWait()

	group := pool.NewGroup()
	for _, path := range inputs {
		group.Submit(func() fileResult {
			report, err := job(path)
			return fileResult{path: path, report: report, err: err}
		})
	}
	results, err := group.Wait()
	if err != nil {
		return err
	}

	failed := 0
	for _, r := range results {
		if r.err != nil {
			failed++
			log.WithField("input", displayName(r.path)).WithError(r.err).Debug("input failed")
			fmt.Fprintf(w, "%s: error: %v\n", displayName(r.path), r.err)
			continue
		}
		fmt.Fprintln(w, r.report)
	}
	switch {
	case failed == 1 && len(inputs) == 1:
		return results[0].err
	case failed > 0:
		return fmt.Errorf("%d of %d inputs failed", failed, len(inputs))
	}
	return nil
}
