package usecase

import (
	"context"
	"fmt"
	"time"

	"maison-core/internal/domain/entity"
	"maison-core/internal/domain/repository"
	applog "maison-core/internal/log"

	"go.uber.org/zap"
)

const (
	GenerationFallback = "Something went wrong while generating a response. Please try again later."
	FatalFallback      = "A fatal error occurred. Please try again later."
)

// Stage is a step of the turn state machine. Only generation can move a
// turn to StageFailed; every other stage degrades and moves on.
type Stage int

const (
	StageStart Stage = iota
	StageContextFetched
	StagePromptBuilt
	StageGenerated
	StageEnriched
	StagePersisted
	StageDone
	StageFailed
)

var stageNames = [...]string{
	StageStart:          "START",
	StageContextFetched: "CONTEXT_FETCHED",
	StagePromptBuilt:    "PROMPT_BUILT",
	StageGenerated:      "GENERATED",
	StageEnriched:       "ENRICHED",
	StagePersisted:      "PERSISTED",
	StageDone:           "DONE",
	StageFailed:         "FAILED",
}

func (s Stage) String() string {
	if s < 0 || int(s) >= len(stageNames) {
		return fmt.Sprintf("Stage(%d)", int(s))
	}
	return stageNames[s]
}

type Retriever interface {
	Retrieve(ctx context.Context, query string, topK int) []string
}

type ReplyEnricher interface {
	Enrich(ctx context.Context, reply string) (map[string][]string, error)
}

type OrchestratorConfig struct {
	TopK         int
	StoreTimeout time.Duration
}

// Orchestrator runs one chat turn end to end. All collaborators are
// long-lived and shared across concurrent turns.
type Orchestrator struct {
	retriever    Retriever
	composer     *PromptComposer
	generator    repository.LanguageModel
	enricher     ReplyEnricher
	sessions     repository.SessionStore
	topK         int
	storeTimeout time.Duration
	now          func() time.Time
	logger       *zap.Logger
}

func NewOrchestrator(r Retriever, pc *PromptComposer, gen repository.LanguageModel, enr ReplyEnricher, ss repository.SessionStore, cfg OrchestratorConfig, logger *zap.Logger) *Orchestrator {
	return &Orchestrator{
		retriever:    r,
		composer:     pc,
		generator:    gen,
		enricher:     enr,
		sessions:     ss,
		topK:         cfg.TopK,
		storeTimeout: cfg.StoreTimeout,
		now:          time.Now,
		logger:       logger,
	}
}

// turn carries the state of a single Chat invocation.
type turn struct {
	req       entity.ChatRequest
	stage     Stage
	received  time.Time
	passages  []string
	history   []entity.Turn
	prompt    entity.ModelRequest
	reply     string
	repliedAt time.Time
	images    map[string][]string
	log       *zap.Logger
}

func (t *turn) advance(to Stage) {
	t.log.Debug("[TURN] stage", zap.Stringer("from", t.stage), zap.Stringer("to", to))
	t.stage = to
}

// Chat always returns a well-formed result. Failures that escape the stage
// boundaries, panics included, become the fatal fallback.
func (o *Orchestrator) Chat(ctx context.Context, req entity.ChatRequest) (res *entity.ChatResult) {
	t := o.newTurn(req)
	defer func() {
		if rec := recover(); rec != nil {
			t.log.Error("[TURN] fatal error", zap.Stringer("stage", t.stage), zap.Any("panic", rec))
			res = entity.NewChatResult(FatalFallback, nil)
		}
	}()
	return o.run(ctx, t)
}

func (o *Orchestrator) newTurn(req entity.ChatRequest) *turn {
	return &turn{
		req:      req,
		stage:    StageStart,
		received: o.now().UTC().Truncate(time.Microsecond),
		log:      applog.ForSession(o.logger, req.SessionID),
	}
}

func (o *Orchestrator) run(ctx context.Context, t *turn) *entity.ChatResult {
	o.fetchContext(ctx, t)
	o.buildPrompt(ctx, t)
	if err := o.generate(ctx, t); err != nil {
		t.log.Error("[TURN] generation failed", zap.Error(err))
		t.advance(StageFailed)
		return entity.NewChatResult(GenerationFallback, nil)
	}
	o.enrich(ctx, t)
	o.persist(ctx, t)
	t.advance(StageDone)
	return entity.NewChatResult(t.reply, t.images)
}

func (o *Orchestrator) fetchContext(ctx context.Context, t *turn) {
	t.passages = o.retriever.Retrieve(ctx, t.req.Query, o.topK)
	t.log.Debug("[TURN] context retrieved", zap.Int("passages", len(t.passages)))
	t.advance(StageContextFetched)
}

func (o *Orchestrator) buildPrompt(ctx context.Context, t *turn) {
	storeCtx, cancel := withTimeout(ctx, o.storeTimeout)
	history, err := o.sessions.ListTurns(storeCtx, t.req.SessionID)
	cancel()
	if err != nil {
		t.log.Warn("[TURN] history unavailable, continuing without it", zap.Error(err))
		history = nil
	}
	t.history = history
	t.prompt = o.composer.Compose(t.passages, t.history, t.req.Query)
	t.advance(StagePromptBuilt)
}

func (o *Orchestrator) generate(ctx context.Context, t *turn) error {
	reply, err := o.generator.Complete(ctx, t.prompt)
	if err != nil {
		return err
	}
	t.reply = reply
	t.repliedAt = o.now().UTC().Truncate(time.Microsecond)
	t.advance(StageGenerated)
	return nil
}

func (o *Orchestrator) enrich(ctx context.Context, t *turn) {
	defer func() {
		if rec := recover(); rec != nil {
			t.log.Error("[TURN] enrichment panicked, returning no images", zap.Any("panic", rec))
			t.images = nil
			t.advance(StageEnriched)
		}
	}()

	images, err := o.enricher.Enrich(ctx, t.reply)
	if err != nil {
		t.log.Warn("[TURN] enrichment failed, returning no images", zap.Error(err))
		images = nil
	}
	t.images = images
	t.advance(StageEnriched)
}

func (o *Orchestrator) persist(ctx context.Context, t *turn) {
	defer func() {
		if rec := recover(); rec != nil {
			t.log.Error("[TURN] session store panicked, turn not persisted", zap.Any("panic", rec))
		}
	}()

	// Stores keep microsecond precision; the assistant turn must sort strictly
	// after the user turn.
	repliedAt := t.repliedAt
	if !repliedAt.After(t.received) {
		repliedAt = t.received.Add(time.Microsecond)
	}

	storeCtx, cancel := withTimeout(ctx, o.storeTimeout)
	defer cancel()
	err := o.sessions.AppendTurns(storeCtx,
		entity.Turn{SessionID: t.req.SessionID, Role: entity.RoleUser, Content: t.req.Query, Timestamp: t.received},
		entity.Turn{SessionID: t.req.SessionID, Role: entity.RoleAssistant, Content: t.reply, Timestamp: repliedAt},
	)
	if err != nil {
		t.log.Error("[TURN] failed to persist turn", zap.Error(err))
		return
	}
	t.advance(StagePersisted)
}

// History returns the stored turns of a session, oldest first.
func (o *Orchestrator) History(ctx context.Context, sessionID string) ([]entity.Turn, error) {
	storeCtx, cancel := withTimeout(ctx, o.storeTimeout)
	defer cancel()
	return o.sessions.ListTurns(storeCtx, sessionID)
}
