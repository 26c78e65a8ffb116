package httpapi

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"diffusiond/internal/manager"
	"diffusiond/pkg/types"
)

// Service defines the methods required by the HTTP API layer.
type Service interface {
	ListModels() []types.Descriptor
	Refresh() []types.Descriptor
	SwitchTo(ctx context.Context, name string) error
	Generate(ctx context.Context, req types.Txt2ImgRequest) (types.GenerationResult, error)
	ActiveModelName() string
	Status() types.StatusResponse
	Ready() bool
}

func NewMux(svc Service) http.Handler {
	r := chi.NewRouter()
	// Basic middlewares: request id, real ip, recoverer
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	// Compression for JSON endpoints
	r.Use(middleware.Compress(5))
	r.Use(MetricsMiddleware)
	// Security headers
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("X-Content-Type-Options", "nosniff")
			next.ServeHTTP(w, r)
		})
	})
	if corsEnabled {
		r.Use(cors.Handler(corsOptions()))
	}

	r.Route("/sdapi/v1", func(r chi.Router) {
		r.Get("/progress", func(w http.ResponseWriter, r *http.Request) {
			state := "idle"
			if svc.Ready() {
				state = "ready"
			}
			writeJSON(w, http.StatusOK, types.ProgressResponse{Progress: 0, State: state})
		})

		r.Get("/sd-models", func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, modelInfos(svc.ListModels()))
		})

		r.Get("/options", func(w http.ResponseWriter, r *http.Request) {
			models := svc.ListModels()
			names := make([]string, 0, len(models))
			for _, m := range models {
				names = append(names, m.Name)
			}
			writeJSON(w, http.StatusOK, types.OptionsResponse{
				SDModelCheckpoint: svc.ActiveModelName(),
				AvailableModels:   names,
			})
		})

		r.Post("/options", func(w http.ResponseWriter, r *http.Request) {
			var req types.SetOptionsRequest
			if !decodeJSON(w, r, &req) {
				return
			}
			name := strings.TrimSpace(req.SDModelCheckpoint)
			if name == "" {
				writeJSONError(w, http.StatusBadRequest, "sd_model_checkpoint is required")
				return
			}
			start := time.Now()
			joinedCtx, cancel := joinContexts(serverBaseCtx, r.Context())
			defer cancel()
			if err := svc.SwitchTo(joinedCtx, name); err != nil {
				status := adminErrorStatus(err)
				zlog.Warn().Err(err).Str("model", name).Int("status", status).Dur("dur", time.Since(start)).Msg("switch failed")
				writeJSON(w, status, types.AdminResponse{Status: "error", Message: err.Error()})
				return
			}
			zlog.Info().Str("model", name).Dur("dur", time.Since(start)).Msg("switch done")
			writeJSON(w, http.StatusOK, types.AdminResponse{Status: "success", Message: "switched to " + name})
		})

		r.Post("/refresh-checkpoints", func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, modelInfos(svc.Refresh()))
		})

		r.Post("/txt2img", handleTxt2Img(svc))

		r.Get("/status", func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, svc.Status())
		})
	})

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if svc.Ready() {
			w.WriteHeader(http.StatusOK)
			w.Write([]byte("ready"))
			return
		}
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte("loading"))
	})

	// Prometheus metrics endpoint
	r.Get("/metrics", promhttp.Handler().ServeHTTP)

	MountSwagger(r)

	return r
}

func handleTxt2Img(svc Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req types.Txt2ImgRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		if strings.TrimSpace(req.Prompt) == "" {
			writeJSONError(w, http.StatusBadRequest, "prompt is required")
			return
		}

		start := time.Now()
		lvl := requestLogLevel(r)
		if lvl >= LevelInfo {
			z := zlog.Info().Str("path", r.URL.Path)
			if rid := middleware.GetReqID(r.Context()); rid != "" {
				z = z.Str("request_id", rid)
			}
			z.Msg("txt2img start")
		}

		// Join server base context with request context so shutdown cancels work too.
		joinedCtx, cancel := joinContexts(serverBaseCtx, r.Context())
		defer cancel()
		if generateTimeout > 0 {
			var tcancel context.CancelFunc
			joinedCtx, tcancel = context.WithTimeout(joinedCtx, time.Duration(generateTimeout)*time.Second)
			defer tcancel()
		}

		res, err := svc.Generate(joinedCtx, req)
		if err != nil {
			// If context was canceled (client disconnect), just return.
			if r.Context().Err() != nil || serverBaseCtx.Err() != nil {
				return
			}
			status := http.StatusInternalServerError
			if he, ok := err.(HTTPError); ok {
				status = he.StatusCode()
			}
			writeJSONError(w, status, err.Error())
			if lvl >= LevelInfo {
				zlog.Info().Int("status", status).Dur("dur", time.Since(start)).Err(err).Msg("txt2img end")
			}
			return
		}

		writeJSON(w, http.StatusOK, types.Txt2ImgResponse{
			Images:     []string{base64.StdEncoding.EncodeToString(res.PNG)},
			Parameters: res.Params,
			Info:       buildInfo(res),
		})
		if lvl >= LevelInfo {
			z := zlog.Info().
				Str("status", "200").
				Str("provenance", string(res.Provenance)).
				Int64("seed", res.Params.Seed).
				Dur("dur", time.Since(start))
			if rid := middleware.GetReqID(r.Context()); rid != "" {
				z = z.Str("request_id", rid)
			}
			z.Msg("txt2img end")
		}
	}
}

// decodeJSON enforces the JSON content type and body size limit, then decodes
// the body into dst.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	ct := r.Header.Get("Content-Type")
	if ct == "" || !strings.HasPrefix(strings.ToLower(ct), "application/json") {
		writeJSONError(w, http.StatusUnsupportedMediaType, "Content-Type must be application/json")
		return false
	}
	// If exceeded size, MaxBytesReader causes a decode error; return 400 to
	// avoid leaking size details.
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid JSON body")
		return false
	}
	return true
}

// adminErrorStatus maps service errors on administrative routes to HTTP codes.
func adminErrorStatus(err error) int {
	switch {
	case manager.IsModelNotFound(err):
		return http.StatusNotFound
	case manager.IsInsufficientResources(err):
		return http.StatusInsufficientStorage
	}
	if he, ok := err.(HTTPError); ok {
		return he.StatusCode()
	}
	return http.StatusInternalServerError
}

// buildInfo serializes generation metadata into the info string callers of
// the sdapi expect.
func buildInfo(res types.GenerationResult) string {
	info := map[string]any{
		"prompt":          res.Params.Prompt,
		"negative_prompt": res.Params.NegativePrompt,
		"width":           res.Params.Width,
		"height":          res.Params.Height,
		"steps":           res.Params.Steps,
		"cfg_scale":       res.Params.CfgScale,
		"seed":            res.Params.Seed,
		"sampler_name":    res.Sampler,
		"model":           res.Model,
		"provenance":      string(res.Provenance),
		"job_id":          res.JobID,
	}
	if res.Note != "" {
		info["note"] = res.Note
	}
	b, err := json.Marshal(info)
	if err != nil {
		return "{}"
	}
	return string(b)
}

func modelInfos(models []types.Descriptor) []types.SDModelInfo {
	out := make([]types.SDModelInfo, 0, len(models))
	for _, m := range models {
		out = append(out, types.SDModelInfo{
			ModelName:   m.Name,
			Title:       m.Title,
			Hash:        m.Hash,
			Type:        string(m.Arch),
			Description: m.Source,
			Resolution:  m.Resolution,
			Loaded:      m.Loaded,
		})
	}
	return out
}

func corsOptions() cors.Options {
	opts := cors.Options{
		AllowedOrigins: corsAllowedOrigins,
		AllowedMethods: corsAllowedMethods,
		AllowedHeaders: corsAllowedHeaders,
	}
	if len(opts.AllowedOrigins) == 0 {
		opts.AllowedOrigins = []string{"*"}
	}
	if len(opts.AllowedMethods) == 0 {
		opts.AllowedMethods = []string{http.MethodGet, http.MethodPost, http.MethodOptions}
	}
	if len(opts.AllowedHeaders) == 0 {
		opts.AllowedHeaders = []string{"*"}
	}
	return opts
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zlog.Error().Err(err).Msg("failed to encode response")
	}
}
