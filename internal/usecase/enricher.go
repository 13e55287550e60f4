package usecase

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"maison-core/internal/domain/repository"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const DefaultImagesPerDish = 3

// Enricher turns a generated reply into dish name -> image URLs.
type Enricher struct {
	extractor      repository.EntityExtractor
	images         repository.ImageSearcher
	perDish        int
	concurrency    int
	extractTimeout time.Duration
	imageTimeout   time.Duration
	logger         *zap.Logger
}

type EnricherConfig struct {
	ImagesPerDish  int
	Concurrency    int
	ExtractTimeout time.Duration
	ImageTimeout   time.Duration
}

func NewEnricher(ext repository.EntityExtractor, img repository.ImageSearcher, cfg EnricherConfig, logger *zap.Logger) *Enricher {
	if cfg.ImagesPerDish <= 0 {
		cfg.ImagesPerDish = DefaultImagesPerDish
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 1
	}
	return &Enricher{
		extractor:      ext,
		images:         img,
		perDish:        cfg.ImagesPerDish,
		concurrency:    cfg.Concurrency,
		extractTimeout: cfg.ExtractTimeout,
		imageTimeout:   cfg.ImageTimeout,
		logger:         logger,
	}
}

// ParseEntities applies the extraction contract: blank, "none" and
// "no plate" mean nothing was mentioned, anything else is a comma list.
func ParseEntities(raw string) []string {
	raw = strings.TrimSpace(raw)
	switch strings.ToLower(raw) {
	case "", "none", "no plate":
		return nil
	}

	var names []string
	for _, p := range strings.Split(raw, ",") {
		if p = strings.TrimSpace(p); p != "" {
			names = append(names, p)
		}
	}
	return names
}

// Enrich returns nil when no dish has any image. An error means the
// extraction step itself failed; per-dish lookup failures are only logged.
func (e *Enricher) Enrich(ctx context.Context, reply string) (map[string][]string, error) {
	extractCtx, cancel := withTimeout(ctx, e.extractTimeout)
	raw, err := e.extractor.Extract(extractCtx, reply)
	cancel()
	if err != nil {
		return nil, fmt.Errorf("entity extraction: %w", err)
	}

	names := ParseEntities(raw)
	if len(names) == 0 {
		e.logger.Debug("[ENRICHER] no dishes mentioned", zap.String("raw", raw))
		return nil, nil
	}
	e.logger.Debug("[ENRICHER] extracted dishes", zap.Strings("dishes", names))

	var (
		mu     sync.Mutex
		images = make(map[string][]string, len(names))
		seen   = make(map[string]bool, len(names))
		g      errgroup.Group
	)
	g.SetLimit(e.concurrency)

	for _, name := range names {
		if seen[name] {
			continue
		}
		seen[name] = true

		g.Go(func() error {
			urls := e.lookup(ctx, name)
			if len(urls) == 0 {
				return nil
			}
			mu.Lock()
			images[name] = urls
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	if len(images) == 0 {
		return nil, nil
	}
	return images, nil
}

// lookup never fails; a dish whose search errors just gets no images.
func (e *Enricher) lookup(ctx context.Context, name string) (urls []string) {
	defer func() {
		if rec := recover(); rec != nil {
			e.logger.Error("[ENRICHER] panic during image search", zap.String("dish", name), zap.Any("panic", rec))
			urls = nil
		}
	}()

	searchCtx, cancel := withTimeout(ctx, e.imageTimeout)
	defer cancel()

	found, err := e.images.SearchImages(searchCtx, name)
	if err != nil {
		e.logger.Warn("[ENRICHER] image search failed", zap.String("dish", name), zap.Error(err))
		return nil
	}
	if len(found) > e.perDish {
		found = found[:e.perDish]
	}
	return found
}
