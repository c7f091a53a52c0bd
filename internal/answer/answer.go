// Package answer fans one user question out across several documentation
// libraries and joins the results. Each library fetch is an independent unit
// of work: a failing or empty branch contributes zero snippets and never
// aborts its siblings. The joined order is the order libraries were
// requested in, then record order within each response — never completion
// order.
//
// Diagnostics go to the request-scoped logger carried on the context via
// [logging.WithLogger], so every branch log line inherits the caller's
// user/guild attributes.
package answer

import (
	"context"
	"log/slog"
	"sync"

	"github.com/54b3r/docsbot-go/internal/context7"
	"github.com/54b3r/docsbot-go/internal/logging"
)

// Fetcher retrieves documentation snippets for a query against one library.
// *context7.Client satisfies it. Implementations must be safe for
// concurrent use.
type Fetcher interface {
	GetContext(ctx context.Context, libraryID, query string) ([]context7.Snippet, error)
}

// Service answers questions by querying one or more libraries concurrently.
type Service struct {
	// fetcher performs the per-library snippet retrieval.
	fetcher Fetcher
}

// New constructs a Service. fetcher must be non-nil.
func New(fetcher Fetcher) *Service {
	return &Service{fetcher: fetcher}
}

// Ask fetches snippets for question from every library in libraryIDs
// concurrently and returns the joined list. Each snippet is tagged with the
// library it came from. Per-branch failures are logged and contribute zero
// snippets; Ask itself never fails. An empty result is a normal outcome the
// caller presents as "no documentation found".
func (s *Service) Ask(ctx context.Context, libraryIDs []string, question string) []context7.Snippet {
	log := logging.FromContext(ctx)

	// Indexed results keep the join in requested-library order regardless
	// of which branch finishes first.
	results := make([][]context7.Snippet, len(libraryIDs))

	var wg sync.WaitGroup
	for i, id := range libraryIDs {
		wg.Add(1)
		go func(i int, id string) {
			defer wg.Done()

			snips, err := s.fetcher.GetContext(ctx, id, question)
			if err != nil {
				log.Warn("answer: fetch failed, skipping library",
					slog.String("library_id", id),
					slog.String("error", err.Error()),
				)
				return
			}

			log.Info("answer: library returned snippets",
				slog.String("library_id", id),
				slog.Int("count", len(snips)),
			)

			for j := range snips {
				snips[j].Library = id
			}
			results[i] = snips
		}(i, id)
	}
	wg.Wait()

	var all []context7.Snippet
	for _, batch := range results {
		all = append(all, batch...)
	}
	return all
}
