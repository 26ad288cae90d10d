package search

import (
	"container/heap"
	"context"
	"runtime"
	"sort"
	"sync"
)

// AsyncSearcher parallelizes a Searcher across worker goroutines for
// large item collections. Each worker scores a chunk of items and keeps a
// top-k min-heap when a limit is set, so memory stays proportional to the
// limit rather than the collection.
type AsyncSearcher struct {
	searcher   *Searcher
	numWorkers int
}

// NewAsyncSearcher wraps searcher with numWorkers workers. Zero workers
// means runtime.NumCPU(). Panics if searcher is nil.
func NewAsyncSearcher(searcher *Searcher, numWorkers int) *AsyncSearcher {
	if searcher == nil {
		panic("search: NewAsyncSearcher called with nil searcher")
	}
	if numWorkers <= 0 {
		numWorkers = runtime.NumCPU()
	}
	return &AsyncSearcher{
		searcher:   searcher,
		numWorkers: numWorkers,
	}
}

// indexedResult pairs a result with its item's input position so the
// merged ordering can keep input order among equal scores, matching the
// synchronous Search.
type indexedResult struct {
	Result
	index int
}

// Search ranks items in parallel. Results are identical to the wrapped
// Searcher's: descending score, ties in input order, limit applied. The
// context cancels remaining work early; a canceled search returns the
// partial results collected so far.
func (a *AsyncSearcher) Search(ctx context.Context, pattern string, items []any) []Result {
	if pattern == "" {
		return nil
	}

	limit := a.searcher.limit

	chunkSize := (len(items) + a.numWorkers - 1) / a.numWorkers
	minChunk := 50
	if len(items) < 1000 {
		minChunk = 10
	}
	if chunkSize < minChunk {
		chunkSize = minChunk
	}

	// Each worker keeps twice the limit to leave room for the merge.
	workerLimit := 0
	if limit > 0 {
		workerLimit = limit * 2
	}

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		collected []indexedResult
	)

	for start := 0; start < len(items); start += chunkSize {
		end := start + chunkSize
		if end > len(items) {
			end = len(items)
		}

		wg.Add(1)
		go func(offset int, chunk []any) {
			defer wg.Done()

			local := a.searchChunk(ctx, pattern, offset, chunk, workerLimit)

			mu.Lock()
			collected = append(collected, local...)
			mu.Unlock()
		}(start, items[start:end])
	}

	wg.Wait()

	sort.Slice(collected, func(i, j int) bool {
		if collected[i].Score != collected[j].Score {
			return collected[i].Score > collected[j].Score
		}
		return collected[i].index < collected[j].index
	})

	if limit > 0 && len(collected) > limit {
		collected = collected[:limit]
	}

	results := make([]Result, len(collected))
	for i, r := range collected {
		results[i] = r.Result
	}
	return results
}

// searchChunk scores one chunk, keeping at most k results when k > 0.
func (a *AsyncSearcher) searchChunk(ctx context.Context, pattern string, offset int, chunk []any, k int) []indexedResult {
	h := &resultHeap{}
	var all []indexedResult

	for i, item := range chunk {
		select {
		case <-ctx.Done():
			if k > 0 {
				return h.toSlice()
			}
			return all
		default:
		}

		if a.searcher.filter != nil && !a.searcher.filter.Admit(a.searcher.accessor, item) {
			continue
		}
		r, ok := a.searcher.searchItem(pattern, item)
		if !ok {
			continue
		}
		ir := indexedResult{Result: r, index: offset + i}

		if k <= 0 {
			all = append(all, ir)
			continue
		}
		if h.Len() < k {
			heap.Push(h, ir)
		} else if better(ir, (*h)[0]) {
			(*h)[0] = ir
			heap.Fix(h, 0)
		}
	}

	if k > 0 {
		return h.toSlice()
	}
	return all
}

// better orders results the way the final sort does: higher score first,
// then earlier input position.
func better(a, b indexedResult) bool {
	if a.Score != b.Score {
		return a.Score > b.Score
	}
	return a.index < b.index
}

// resultHeap is a min-heap by the final ordering, so the root is always
// the candidate to evict.
type resultHeap []indexedResult

func (h resultHeap) Len() int           { return len(h) }
func (h resultHeap) Less(i, j int) bool { return better(h[j], h[i]) }
func (h resultHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }

func (h *resultHeap) Push(x any) {
	*h = append(*h, x.(indexedResult))
}

func (h *resultHeap) Pop() any {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[0 : n-1]
	return x
}

func (h *resultHeap) toSlice() []indexedResult {
	out := make([]indexedResult, len(*h))
	copy(out, *h)
	return out
}

// StreamSearcher serves interactive input: starting a new search cancels
// the previous one, so abandoned keystrokes stop consuming CPU.
type StreamSearcher struct {
	async     *AsyncSearcher
	cache     *Cache
	mu        sync.Mutex
	cancel    context.CancelFunc
	lastQuery string
}

// NewStreamSearcher creates a streaming wrapper. cache may be nil to
// disable caching. Panics if searcher is nil.
func NewStreamSearcher(searcher *Searcher, cache *Cache) *StreamSearcher {
	return &StreamSearcher{
		async: NewAsyncSearcher(searcher, 0),
		cache: cache,
	}
}

// Search cancels any in-flight search and ranks items for the new query.
// The returned channel receives one final result slice and is then
// closed; a superseded search's channel is closed without a send.
func (s *StreamSearcher) Search(pattern string, items []any) <-chan []Result {
	s.mu.Lock()
	if s.cancel != nil {
		s.cancel()
	}
	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.lastQuery = pattern
	s.mu.Unlock()

	out := make(chan []Result, 1)
	go func() {
		defer close(out)

		if s.cache != nil {
			if cached := s.cache.Get(pattern); cached != nil {
				out <- cached
				return
			}
		}

		results := s.async.Search(ctx, pattern, items)
		if ctx.Err() != nil {
			return
		}
		if s.cache != nil {
			s.cache.Set(pattern, results)
		}
		out <- results
	}()
	return out
}

// Cancel stops the current search, if any.
func (s *StreamSearcher) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
}

// InvalidateCache drops all cached results. Call after the item
// collection changes.
func (s *StreamSearcher) InvalidateCache() {
	if s.cache != nil {
		s.cache.Clear()
	}
}

// LastQuery returns the most recent query string.
func (s *StreamSearcher) LastQuery() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastQuery
}
