// Package selector races competing optimizers on one file and picks the
// smallest successful output.
package selector

import (
	"context"
	"errors"
	"fmt"
	"os"

	"golang.org/x/sync/errgroup"

	"github.com/backmassage/pixmaster/internal/tools"
)

// Invoker runs one tool on a working copy. *tools.Runner satisfies it.
type Invoker interface {
	Run(ctx context.Context, id tools.ID, working, canonical string) (string, error)
}

// Candidate is one tool's attempt. It succeeded iff Err is nil.
type Candidate struct {
	Tool tools.ID
	Path string
	Size int64
	Err  error
}

// OK reports whether the candidate produced a usable file.
func (c Candidate) OK() bool { return c.Err == nil }

// Existing wraps a file that is already on disk (for example a format
// conversion) as a candidate with the given label.
func Existing(label tools.ID, path string) Candidate {
	fi, err := os.Stat(path)
	if err != nil {
		return Candidate{Tool: label, Path: path, Err: err}
	}
	return Candidate{Tool: label, Path: path, Size: fi.Size()}
}

// Outcome collects every candidate of a race in priority order.
type Outcome struct {
	Candidates []Candidate
	Winner     *Candidate
}

// Failed reports whether no candidate succeeded.
func (o Outcome) Failed() bool { return o.Winner == nil }

// Err joins the failures of every unsuccessful candidate, or returns nil.
func (o Outcome) Err() error {
	var errs []error
	for _, c := range o.Candidates {
		if c.Err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", c.Tool, c.Err))
		}
	}
	return errors.Join(errs...)
}

// Race runs every tool in ids concurrently against working. A failing tool
// never cancels its siblings; every tool is awaited before Race returns.
// Baseline candidates rank after all tools, so they only win on a strictly
// smaller size.
func Race(ctx context.Context, inv Invoker, ids []tools.ID, working, canonical string, baseline ...Candidate) Outcome {
	cands := make([]Candidate, len(ids), len(ids)+len(baseline))

	var g errgroup.Group
	for i, id := range ids {
		i, id := i, id
		g.Go(func() error {
			cands[i] = run(ctx, inv, id, working, canonical)
			return nil
		})
	}
	_ = g.Wait()

	cands = append(cands, baseline...)
	return Outcome{Candidates: cands, Winner: Pick(cands)}
}

func run(ctx context.Context, inv Invoker, id tools.ID, working, canonical string) Candidate {
	out, err := inv.Run(ctx, id, working, canonical)
	if err != nil {
		return Candidate{Tool: id, Err: err}
	}
	return Existing(id, out)
}

// Pick returns the smallest successful candidate. Ties go to the earliest
// candidate, which is the highest-priority tool. Nil when none succeeded.
func Pick(cands []Candidate) *Candidate {
	var best *Candidate
	for i := range cands {
		c := &cands[i]
		if !c.OK() {
			continue
		}
		if best == nil || c.Size < best.Size {
			best = c
		}
	}
	if best == nil {
		return nil
	}
	w := *best
	return &w
}
