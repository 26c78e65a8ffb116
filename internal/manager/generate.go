package manager

import (
	"bytes"
	"context"
	"image/png"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"diffusiond/internal/device"
	"diffusiond/internal/engine"
	"diffusiond/internal/placeholder"
	"diffusiond/pkg/types"
)

// Request defaults and normalization limits.
const (
	defaultDimension = 512
	defaultSteps     = 20
	defaultCfgScale  = 7.5

	// Turbo variants are distilled for 1-4 steps; more wastes time without
	// improving output.
	maxTurboSteps = 4
	// Under memory pressure turbo generations cap their resolution.
	turboClampDimension = 512

	samplerName     = "Euler"
	placeholderNote = "Real SD model not available, using enhanced placeholder"
)

// Generate runs one orchestrated generation. It never fails outward unless
// the placeholder path itself fails: any engine-side error becomes a
// placeholder result with the same response shape.
func (m *Manager) Generate(ctx context.Context, req types.Txt2ImgRequest) (types.GenerationResult, error) {
	start := time.Now()
	jobID := uuid.NewString()
	params := m.resolveParams(req)
	log := m.log.With().Str("job", jobID).Logger()

	pngBytes, model, err := m.generateEngine(ctx, &params, log)
	if err == nil {
		generationsTotalMetric.WithLabelValues(string(types.ProvenanceEngine)).Inc()
		generationDuration.Observe(time.Since(start).Seconds())
		log.Info().Str("model", model).Int64("seed", params.Seed).Dur("dur", time.Since(start)).Msg("generation done")
		return types.GenerationResult{
			PNG:        pngBytes,
			Params:     params,
			Provenance: types.ProvenanceEngine,
			Model:      model,
			Sampler:    samplerName,
			JobID:      jobID,
		}, nil
	}

	log.Warn().Err(err).Msg("engine path failed, using placeholder")
	m.publisher.Publish(Event{Name: EventGenerateFallback, Model: model, Fields: map[string]any{"error": err.Error()}})

	img, rerr := placeholder.Render(placeholder.Request{
		Prompt: params.Prompt,
		Width:  params.Width,
		Height: params.Height,
	})
	if rerr != nil {
		return types.GenerationResult{}, ErrPlaceholderFailure(rerr)
	}
	var buf bytes.Buffer
	if rerr := png.Encode(&buf, img); rerr != nil {
		return types.GenerationResult{}, ErrPlaceholderFailure(rerr)
	}

	m.mu.Lock()
	m.generationsTotal++
	m.fallbacksTotal++
	m.mu.Unlock()
	generationsTotalMetric.WithLabelValues(string(types.ProvenancePlaceholder)).Inc()
	generationDuration.Observe(time.Since(start).Seconds())

	return types.GenerationResult{
		PNG:        buf.Bytes(),
		Params:     params,
		Provenance: types.ProvenancePlaceholder,
		Model:      "enhanced-placeholder",
		Sampler:    samplerName,
		JobID:      jobID,
		Note:       placeholderNote,
	}, nil
}

// resolveParams fills request defaults and concretizes the seed. The seed is
// always echoed back: explicit values verbatim, absent or negative ones drawn
// uniformly from [0, 2^32-1].
func (m *Manager) resolveParams(req types.Txt2ImgRequest) types.GenerationParams {
	p := types.GenerationParams{
		Prompt:         req.Prompt,
		NegativePrompt: req.NegativePrompt,
		Width:          req.Width,
		Height:         req.Height,
		Steps:          req.Steps,
		CfgScale:       req.CfgScale,
	}
	if p.Width <= 0 {
		p.Width = defaultDimension
	}
	if p.Height <= 0 {
		p.Height = defaultDimension
	}
	if p.Steps <= 0 {
		p.Steps = defaultSteps
	}
	if p.CfgScale <= 0 {
		p.CfgScale = defaultCfgScale
	}
	if req.Seed == nil || *req.Seed < 0 {
		p.Seed = m.randSeed()
	} else {
		p.Seed = *req.Seed
	}
	return p
}

// generateEngine runs the engine path under the instance lock. It mutates
// params in place so clamps show up in the caller-visible result.
func (m *Manager) generateEngine(ctx context.Context, params *types.GenerationParams, log zerolog.Logger) ([]byte, string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.active == nil {
		return nil, "", ErrEngineFailure("no model loaded", nil)
	}
	model := m.active.Descriptor.Name

	// Fresh profile for this generation; memory state moves between calls.
	prof := m.prober.Profile()
	m.normalizeForArch(params, prof, log)

	if prof.ShouldOffload {
		m.engine.Reclaim(ctx)
	}

	img, err := m.active.pipeline.Generate(ctx, engine.Params{
		Prompt:         params.Prompt,
		NegativePrompt: params.NegativePrompt,
		Width:          params.Width,
		Height:         params.Height,
		Steps:          params.Steps,
		CfgScale:       params.CfgScale,
		Seed:           params.Seed,
	})
	if err != nil {
		return nil, model, ErrEngineFailure("sampling on "+model, err)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, model, ErrEngineFailure("encode result", err)
	}

	if post := m.prober.Profile(); post.ShouldOffload {
		m.engine.Reclaim(ctx)
	}
	m.generationsTotal++
	return buf.Bytes(), model, nil
}

// normalizeForArch applies architecture-specific parameter clamps.
func (m *Manager) normalizeForArch(params *types.GenerationParams, prof device.Profile, log zerolog.Logger) {
	if m.active.Descriptor.Arch != types.ArchSDXLTurbo {
		return
	}
	if params.Steps > maxTurboSteps {
		log.Info().Int("requested", params.Steps).Int("clamped", maxTurboSteps).Msg("clamping steps for turbo variant")
		params.Steps = maxTurboSteps
	}
	// The cpu-only profile reads all-zero, so hosts without an accelerator
	// always fall below the threshold and clamp too.
	if prof.FreeGB < m.stratCfg.TurboAccelMinFreeGB {
		if params.Width > turboClampDimension || params.Height > turboClampDimension {
			log.Info().
				Int("width", params.Width).Int("height", params.Height).
				Float64("free_gb", prof.FreeGB).
				Msg("clamping resolution under memory pressure")
			if params.Width > turboClampDimension {
				params.Width = turboClampDimension
			}
			if params.Height > turboClampDimension {
				params.Height = turboClampDimension
			}
		}
	}
}
