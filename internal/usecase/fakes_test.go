package usecase

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"maison-core/internal/domain/entity"
)

var errBoom = errors.New("boom")

type fakeEmbedder struct {
	vector []float32
	err    error
	calls  int
}

func (f *fakeEmbedder) CreateEmbedding(ctx context.Context, text string) ([]float32, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.vector, nil
}

type fakeIndex struct {
	passages    []entity.Passage
	err         error
	gotLimit    int
	sawDeadline bool
	panics      bool
}

func (f *fakeIndex) Search(ctx context.Context, vector []float32, limit int) ([]entity.Passage, error) {
	if f.panics {
		panic("index exploded")
	}
	f.gotLimit = limit
	_, f.sawDeadline = ctx.Deadline()
	if f.err != nil {
		return nil, f.err
	}
	if limit < len(f.passages) {
		return f.passages[:limit], nil
	}
	return f.passages, nil
}

// fakeModel answers generation requests; requests are recorded for
// inspection.
type fakeModel struct {
	mu       sync.Mutex
	reply    string
	err      error
	panics   bool
	requests []entity.ModelRequest
}

func (f *fakeModel) Complete(ctx context.Context, req entity.ModelRequest) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.panics {
		panic("model exploded")
	}
	f.requests = append(f.requests, req)
	if f.err != nil {
		return "", f.err
	}
	return f.reply, nil
}

type fakeExtractor struct {
	raw    string
	err    error
	got    string
	panics bool
}

func (f *fakeExtractor) Extract(ctx context.Context, reply string) (string, error) {
	f.got = reply
	if f.panics {
		panic("extractor exploded")
	}
	return f.raw, f.err
}

// fakeImages serves canned results per dish name; names missing from both
// maps return no URLs.
type fakeImages struct {
	mu      sync.Mutex
	results map[string][]string
	errs    map[string]error
	queries []string
}

func (f *fakeImages) SearchImages(ctx context.Context, query string) ([]string, error) {
	f.mu.Lock()
	f.queries = append(f.queries, query)
	f.mu.Unlock()
	if err := f.errs[query]; err != nil {
		return nil, err
	}
	return f.results[query], nil
}

func (f *fakeImages) sortedQueries() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := append([]string(nil), f.queries...)
	sort.Strings(out)
	return out
}

type fakeSessions struct {
	mu           sync.Mutex
	turns        []entity.Turn
	appendErr    error
	listErr      error
	appendPanics bool
}

func (f *fakeSessions) AppendTurns(ctx context.Context, turns ...entity.Turn) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.appendPanics {
		panic("store exploded")
	}
	if f.appendErr != nil {
		return f.appendErr
	}
	f.turns = append(f.turns, turns...)
	return nil
}

func (f *fakeSessions) ListTurns(ctx context.Context, sessionID string) ([]entity.Turn, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	var out []entity.Turn
	for _, t := range f.turns {
		if t.SessionID == sessionID {
			out = append(out, t)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Timestamp.Before(out[j].Timestamp) })
	return out, nil
}

func (f *fakeSessions) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.turns)
}

type fakeCache struct {
	data   map[string][]string
	getErr error
	sets   int
}

func (f *fakeCache) Get(ctx context.Context, name string) ([]string, bool, error) {
	if f.getErr != nil {
		return nil, false, f.getErr
	}
	urls, ok := f.data[strings.ToLower(name)]
	return urls, ok, nil
}

func (f *fakeCache) Set(ctx context.Context, name string, urls []string, ttl time.Duration) error {
	f.sets++
	if f.data == nil {
		f.data = make(map[string][]string)
	}
	f.data[strings.ToLower(name)] = urls
	return nil
}
