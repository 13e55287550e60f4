package usecase

import (
	"context"
	"fmt"
	"testing"
	"time"

	"maison-core/internal/domain/entity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type harness struct {
	embedder  *fakeEmbedder
	index     *fakeIndex
	model     *fakeModel
	extractor *fakeExtractor
	images    *fakeImages
	sessions  *fakeSessions
	orch      *Orchestrator
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	h := &harness{
		embedder:  &fakeEmbedder{vector: []float32{0.3, 0.7}},
		index:     &fakeIndex{passages: []entity.Passage{{Text: "Desserts: Baklava, Tiramisu"}}},
		model:     &fakeModel{reply: "Bienvenue à La Maison !"},
		extractor: &fakeExtractor{raw: "No Plate"},
		images:    &fakeImages{},
		sessions:  &fakeSessions{},
	}
	logger := zap.NewNop()
	retriever := NewContextRetriever(h.embedder, h.index, 3, time.Second, time.Second, logger)
	enricher := NewEnricher(h.extractor, h.images, EnricherConfig{Concurrency: 2}, logger)
	h.orch = NewOrchestrator(
		retriever,
		NewPromptComposer("", "Baklava 8 TND\nTiramisu 10 TND", 40, 0),
		NewGuardedModel(h.model, time.Second),
		enricher,
		h.sessions,
		OrchestratorConfig{TopK: 3, StoreTimeout: time.Second},
		logger,
	)
	return h
}

func TestChatGreetingWithoutDishes(t *testing.T) {
	h := newHarness(t)

	res := h.orch.Chat(context.Background(), entity.ChatRequest{Query: "Hello", SessionID: "fresh"})
	assert.Equal(t, "Bienvenue à La Maison !", res.Response)
	assert.NotNil(t, res.Images)
	assert.Empty(t, res.Images)

	turns, err := h.sessions.ListTurns(context.Background(), "fresh")
	require.NoError(t, err)
	require.Len(t, turns, 2)
	assert.Equal(t, entity.RoleUser, turns[0].Role)
	assert.Equal(t, "Hello", turns[0].Content)
	assert.Equal(t, entity.RoleAssistant, turns[1].Role)
	assert.Equal(t, "Bienvenue à La Maison !", turns[1].Content)
	assert.True(t, turns[1].Timestamp.After(turns[0].Timestamp))
}

func TestChatDessertImages(t *testing.T) {
	h := newHarness(t)
	h.model.reply = "We have Baklava and Tiramisu."
	h.extractor.raw = "Baklava, Tiramisu"
	h.images.results = map[string][]string{"Baklava": {"https://img/1", "https://img/2"}}
	h.images.errs = map[string]error{"Tiramisu": errBoom}

	res := h.orch.Chat(context.Background(), entity.ChatRequest{Query: "What desserts do you have?", SessionID: "s"})
	assert.Equal(t, "We have Baklava and Tiramisu.", res.Response)
	assert.Equal(t, map[string][]string{"Baklava": {"https://img/1", "https://img/2"}}, res.Images)
	assert.Equal(t, "We have Baklava and Tiramisu.", h.extractor.got)
}

func TestChatGenerationFailure(t *testing.T) {
	h := newHarness(t)
	h.model.err = errBoom

	res := h.orch.Chat(context.Background(), entity.ChatRequest{Query: "Hello", SessionID: "s"})
	assert.Equal(t, GenerationFallback, res.Response)
	assert.Equal(t, map[string][]string{}, res.Images)
	assert.Zero(t, h.sessions.count(), "a failed generation must not be persisted")
	assert.Empty(t, h.extractor.got, "enrichment must not run")
}

func TestChatBlankCompletionIsAGenerationFailure(t *testing.T) {
	h := newHarness(t)
	h.model.reply = "   "

	res := h.orch.Chat(context.Background(), entity.ChatRequest{Query: "Hello", SessionID: "s"})
	assert.Equal(t, GenerationFallback, res.Response)
	assert.Zero(t, h.sessions.count())
}

func TestChatSurvivesRetrievalFailure(t *testing.T) {
	h := newHarness(t)
	h.embedder.err = errBoom

	res := h.orch.Chat(context.Background(), entity.ChatRequest{Query: "Hello", SessionID: "s"})
	assert.NotEmpty(t, res.Response)
	assert.Equal(t, "Bienvenue à La Maison !", res.Response)
	require.Len(t, h.model.requests, 1)
	assert.Contains(t, h.model.requests[0].Messages[1].Content, "Context:\n\n\nChat History:")
}

func TestChatSurvivesEnrichmentFailure(t *testing.T) {
	h := newHarness(t)
	h.extractor.err = errBoom

	res := h.orch.Chat(context.Background(), entity.ChatRequest{Query: "Hello", SessionID: "s"})
	assert.Equal(t, "Bienvenue à La Maison !", res.Response)
	assert.Equal(t, map[string][]string{}, res.Images)
	assert.Equal(t, 2, h.sessions.count())
}

func TestChatSurvivesStoreFailures(t *testing.T) {
	h := newHarness(t)
	h.sessions.listErr = errBoom
	h.sessions.appendErr = errBoom

	res := h.orch.Chat(context.Background(), entity.ChatRequest{Query: "Hello", SessionID: "s"})
	assert.Equal(t, "Bienvenue à La Maison !", res.Response)
	assert.NotNil(t, res.Images)
}

func TestChatRecoversFromPanics(t *testing.T) {
	h := newHarness(t)
	h.model.panics = true

	res := h.orch.Chat(context.Background(), entity.ChatRequest{Query: "Hello", SessionID: "s"})
	assert.Equal(t, FatalFallback, res.Response)
	assert.Equal(t, map[string][]string{}, res.Images)
	assert.Zero(t, h.sessions.count())
}

func TestChatKeepsReplyWhenExtractorPanics(t *testing.T) {
	h := newHarness(t)
	h.extractor.panics = true

	res := h.orch.Chat(context.Background(), entity.ChatRequest{Query: "Hello", SessionID: "s"})
	assert.Equal(t, "Bienvenue à La Maison !", res.Response)
	assert.Equal(t, map[string][]string{}, res.Images)
	assert.Equal(t, 2, h.sessions.count())
}

func TestChatKeepsReplyWhenStorePanics(t *testing.T) {
	h := newHarness(t)
	h.sessions.appendPanics = true

	res := h.orch.Chat(context.Background(), entity.ChatRequest{Query: "Hello", SessionID: "s"})
	assert.Equal(t, "Bienvenue à La Maison !", res.Response)
	assert.NotNil(t, res.Images)
	assert.Zero(t, h.sessions.count())
}

func TestChatFeedsHistoryIntoNextPrompt(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	h.orch.Chat(ctx, entity.ChatRequest{Query: "Hello", SessionID: "s"})
	h.model.reply = "Try the Baklava."
	h.orch.Chat(ctx, entity.ChatRequest{Query: "Dessert?", SessionID: "s"})

	require.Len(t, h.model.requests, 2)
	second := h.model.requests[1].Messages[1].Content
	assert.Contains(t, second, "Chat History:user: Hello\n\nassistant: Bienvenue à La Maison !\n\n")
	assert.Contains(t, second, "answer:Dessert?")
	assert.NotContains(t, h.model.requests[0].Messages[1].Content, "user: Hello")
}

func TestChatTurnCountAndOrder(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	// A frozen clock makes user and assistant timestamps collide unless the
	// orchestrator separates them.
	frozen := time.Date(2026, 5, 1, 20, 0, 0, 0, time.UTC)
	h.orch.now = func() time.Time { return frozen }

	const n = 5
	for i := 0; i < n; i++ {
		if i == 2 {
			h.model.err = errBoom
		} else {
			h.model.err = nil
		}
		h.orch.Chat(ctx, entity.ChatRequest{Query: fmt.Sprintf("q%d", i), SessionID: "count"})
		frozen = frozen.Add(time.Second)
	}

	turns, err := h.orch.History(ctx, "count")
	require.NoError(t, err)
	assert.LessOrEqual(t, len(turns), 2*n)
	assert.Len(t, turns, 2*(n-1))
	for i := 1; i < len(turns); i++ {
		assert.False(t, turns[i].Timestamp.Before(turns[i-1].Timestamp), "turn %d out of order", i)
	}
	for i := 0; i < len(turns); i += 2 {
		assert.Equal(t, entity.RoleUser, turns[i].Role)
		assert.Equal(t, entity.RoleAssistant, turns[i+1].Role)
	}
}

func TestRunStages(t *testing.T) {
	tests := []struct {
		name  string
		setup func(h *harness)
		want  Stage
	}{
		{"happy path", func(h *harness) {}, StageDone},
		{"generation failure", func(h *harness) { h.model.err = errBoom }, StageFailed},
		{"persistence failure still completes", func(h *harness) { h.sessions.appendErr = errBoom }, StageDone},
		{"extractor panic still completes", func(h *harness) { h.extractor.panics = true }, StageDone},
		{"store panic still completes", func(h *harness) { h.sessions.appendPanics = true }, StageDone},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t)
			tt.setup(h)
			tr := h.orch.newTurn(entity.ChatRequest{Query: "Hello", SessionID: "s"})
			h.orch.run(context.Background(), tr)
			assert.Equal(t, tt.want, tr.stage)
		})
	}
}

func TestStageString(t *testing.T) {
	assert.Equal(t, "CONTEXT_FETCHED", StageContextFetched.String())
	assert.Equal(t, "FAILED", StageFailed.String())
	assert.Equal(t, "Stage(42)", Stage(42).String())
}
