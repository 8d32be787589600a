package resolver

import (
	"context"
	"fmt"
	"time"

	"github.com/Strum355/log"
	"golang.org/x/time/rate"
)

// Lookuper resolves a reference without the primary extractor
type Lookuper interface {
	Lookup(ctx context.Context, reference string) (*ResolvedTrack, error)
}

// DownloadLedger remembers which videos were materialized on disk
type DownloadLedger interface {
	Remember(ctx context.Context, videoID string) error
}

// Config tunes the fallback ladder
type Config struct {
	Clients        []string      // Client identities tried together by the primary stage
	FallbackClient string        // Single client used by the narrowing retry
	StageTimeout   time.Duration // Deadline applied to each stage on its own
}

// NewLimiter builds the limiter shared by every call to the upstream extractor
func NewLimiter(perSecond float64, burst int) *rate.Limiter {
	if perSecond <= 0 {
		return rate.NewLimiter(rate.Inf, 0)
	}
	if burst < 1 {
		burst = 1
	}
	return rate.NewLimiter(rate.Limit(perSecond), burst)
}

// Resolver turns references into playable streams through an ordered fallback ladder
type Resolver struct {
	extractor Extractor
	secondary Lookuper
	ledger    DownloadLedger
	limiter   *rate.Limiter
	cfg       Config
}

// New returns a Resolver. secondary and ledger may be nil
func New(extractor Extractor, secondary Lookuper, ledger DownloadLedger, limiter *rate.Limiter, cfg Config) *Resolver {
	if cfg.FallbackClient == "" {
		cfg.FallbackClient = "default"
	}
	if limiter == nil {
		limiter = NewLimiter(0, 0)
	}
	return &Resolver{
		extractor: extractor,
		secondary: secondary,
		ledger:    ledger,
		limiter:   limiter,
		cfg:       cfg,
	}
}

type stage struct {
	provider Provider
	run      func(ctx context.Context, reference string) (*ResolvedTrack, error)
}

// stages lists the ladder in the order it is attempted
func (r *Resolver) stages(mode Mode) []stage {
	eager := mode == Eager
	stages := []stage{
		{Primary, r.extractStage(ExtractOptions{Clients: r.cfg.Clients, Download: eager})},
		{FallbackClient, r.extractStage(ExtractOptions{Clients: []string{r.cfg.FallbackClient}, Download: eager})},
		{ForceDownload, r.extractStage(ExtractOptions{Clients: []string{r.cfg.FallbackClient}, Download: true})},
	}
	if r.secondary != nil {
		stages = append(stages, stage{SecondaryProvider, r.secondary.Lookup})
	}
	return stages
}

func (r *Resolver) extractStage(opts ExtractOptions) func(context.Context, string) (*ResolvedTrack, error) {
	return func(ctx context.Context, reference string) (*ResolvedTrack, error) {
		info, err := r.extractor.Extract(ctx, reference, opts)
		if err != nil {
			return nil, err
		}
		if info == nil {
			return nil, errNotExtracted
		}

		track, err := trackFromInfo(info, opts.Download)
		if err != nil {
			return nil, err
		}

		if opts.Download && r.ledger != nil {
			if first := info.First(); first != nil && first.ID != "" {
				if err := r.ledger.Remember(ctx, first.ID); err != nil {
					log.WithError(err).Error("Failed to record downloaded audio")
				}
			}
		}
		return track, nil
	}
}

// Resolve walks the ladder until a stage produces a stream.
// Only the last stage's error is returned, wrapped in an ExtractionError.
func (r *Resolver) Resolve(ctx context.Context, reference string, mode Mode) (*ResolvedTrack, error) {
	stages := r.stages(mode)

	var lastErr error
	for idx, st := range stages {
		track, err := r.attempt(ctx, st, reference)
		if err == nil {
			if idx > 0 {
				log.WithFields(log.Fields{
					"provider":  st.provider.String(),
					"reference": reference,
				}).Info("Resolved track through fallback")
			}
			return track, nil
		}
		lastErr = err

		if ctx.Err() != nil {
			break
		}
		if idx < len(stages)-1 {
			log.WithFields(log.Fields{
				"provider":  st.provider.String(),
				"reference": reference,
				"error":     err.Error(),
			}).Warn("Resolver stage failed, trying next")
		}
	}

	return nil, &ExtractionError{Reference: reference, Cause: lastErr}
}

// attempt runs one stage behind the shared limiter and its own deadline
func (r *Resolver) attempt(ctx context.Context, st stage, reference string) (*ResolvedTrack, error) {
	if err := r.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("%s: %w", st.provider, err)
	}

	stageCtx := ctx
	if r.cfg.StageTimeout > 0 {
		var cancel context.CancelFunc
		stageCtx, cancel = context.WithTimeout(ctx, r.cfg.StageTimeout)
		defer cancel()
	}

	track, err := st.run(stageCtx, reference)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", st.provider, err)
	}
	track.Provider = st.provider
	return track, nil
}
