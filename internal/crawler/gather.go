package crawler

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/HaritsAcheiz/kontakte-extractor/internal/models"
)

// Gather calls fn once per url with at most limit calls in flight and
// returns one outcome per url in submission order. The limit is shared by
// the whole batch. A failing item never cancels its siblings; items not yet
// started when ctx is done get ctx's error.
func Gather[T any](ctx context.Context, limit int, urls []string, fn func(ctx context.Context, url string) (T, error)) []models.Outcome[T] {
	if limit < 1 {
		limit = 1
	}
	out := make([]models.Outcome[T], len(urls))

	var g errgroup.Group
	g.SetLimit(limit)
	for i, u := range urls {
		out[i] = models.Outcome[T]{Index: i, URL: u}
		// g.Go blocks until a slot frees up
		if err := ctx.Err(); err != nil {
			out[i].Err = err
			continue
		}
		i, u := i, u
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				out[i].Err = err
				return nil
			}
			v, err := fn(ctx, u)
			out[i].Value = v
			out[i].Err = err
			return nil
		})
	}
	_ = g.Wait()
	return out
}

// FirstError returns the error of the earliest failed outcome, or nil.
func FirstError[T any](outcomes []models.Outcome[T]) error {
	for _, o := range outcomes {
		if o.Err != nil {
			return o.Err
		}
	}
	return nil
}

// Failures flattens failed outcomes for reporting.
func Failures[T any](stage string, outcomes []models.Outcome[T]) []models.Failure {
	var out []models.Failure
	for _, o := range outcomes {
		if o.Err != nil {
			out = append(out, models.Failure{Stage: stage, URL: o.URL, Error: o.Err.Error()})
		}
	}
	return out
}
