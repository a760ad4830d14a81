package listings

import (
	"context"
	"sync"
	"sync/atomic"

	"listings-workers/internal/common/metrics"
	"listings-workers/internal/models"
)

// Searcher serves one interactive consumer issuing overlapping searches. Each
// call gets a sequence number and cancels the call before it; a result is
// published only while its number is still the latest issued, so a slow older
// response can never replace a newer one.
type Searcher struct {
	service *Service

	seq    atomic.Uint64
	latest atomic.Pointer[SearchResult]

	mu     sync.Mutex
	cancel context.CancelFunc
}

func NewSearcher(service *Service) *Searcher {
	return &Searcher{service: service}
}

// Search runs a search. The returned result has Stale set when a newer search
// started before this one finished; stale results are not published.
func (s *Searcher) Search(ctx context.Context, query string, filters models.Filters) *SearchResult {
	return s.Start(ctx, query, filters)()
}

// Start issues a search and returns the function that runs it. The sequence
// number is taken and the previous search cancelled before Start returns, so
// callers running the searches on other goroutines keep their issue order.
func (s *Searcher) Start(ctx context.Context, query string, filters models.Filters) func() *SearchResult {
	ctx, cancel := context.WithCancel(ctx)

	s.mu.Lock()
	seq := s.seq.Add(1)
	if s.cancel != nil {
		s.cancel()
	}
	s.cancel = cancel
	s.mu.Unlock()

	return func() *SearchResult {
		defer func() {
			s.mu.Lock()
			if s.seq.Load() == seq {
				s.cancel = nil
			}
			s.mu.Unlock()
			cancel()
		}()

		result := s.service.Search(ctx, query, filters)
		result.Seq = seq

		if !s.publish(seq, result) {
			result.Stale = true
			metrics.SearchResponsesDiscarded.Inc()
		}
		return result
	}
}

// publish stores result if seq is still the newest issued number.
func (s *Searcher) publish(seq uint64, result *SearchResult) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.seq.Load() != seq {
		return false
	}
	s.latest.Store(result)
	return true
}

// Latest returns the most recently published result, or nil.
func (s *Searcher) Latest() *SearchResult {
	return s.latest.Load()
}

// Issued returns how many searches have been started.
func (s *Searcher) Issued() uint64 {
	return s.seq.Load()
}
