package types

// Txt2ImgRequest is the POST /sdapi/v1/txt2img payload.
type Txt2ImgRequest struct {
	// Required prompt text describing the image.
	// example: a red fox in a snowy forest
	Prompt string `json:"prompt" example:"a red fox in a snowy forest"`
	// Optional negative prompt listing what to avoid.
	// example: blurry, low quality
	NegativePrompt string `json:"negative_prompt,omitempty" example:"blurry, low quality"`
	// Output width in pixels. Defaults to 512.
	// example: 512
	Width int `json:"width,omitempty" example:"512"`
	// Output height in pixels. Defaults to 512.
	// example: 512
	Height int `json:"height,omitempty" example:"512"`
	// Number of denoising steps. Defaults to 20; turbo variants clamp to 4.
	// example: 20
	Steps int `json:"steps,omitempty" example:"20"`
	// Classifier-free guidance scale. Defaults to 7.5.
	// example: 7.5
	CfgScale float64 `json:"cfg_scale,omitempty" example:"7.5"`
	// Random seed. -1 (or omitted) asks the server to pick one; the chosen
	// value is always echoed back in parameters.seed.
	// example: 42
	Seed *int64 `json:"seed,omitempty" example:"42"`
}

// Txt2ImgResponse is the POST /sdapi/v1/txt2img response.
type Txt2ImgResponse struct {
	// Generated images as base64-encoded PNG, always exactly one.
	Images []string `json:"images"`
	// Fully resolved generation parameters, including the concrete seed.
	Parameters GenerationParams `json:"parameters"`
	// JSON string with generation metadata (sampler, model, provenance).
	Info string `json:"info"`
}

// SDModelInfo is one element of the GET /sdapi/v1/sd-models listing.
type SDModelInfo struct {
	// Model identifier used in switch requests.
	// example: stable-diffusion-v1-5
	ModelName string `json:"model_name" example:"stable-diffusion-v1-5"`
	// Human-friendly title.
	// example: Stable Diffusion v1.5
	Title string `json:"title" example:"Stable Diffusion v1.5"`
	// Short content hash.
	// example: cc6cb27103
	Hash string `json:"hash" example:"cc6cb27103"`
	// Architecture family (sd15, sdxl, sdxl_turbo).
	// example: sd15
	Type string `json:"type" example:"sd15"`
	// Free-form description.
	Description string `json:"description,omitempty"`
	// Native resolution in pixels.
	// example: 512
	Resolution int `json:"resolution" example:"512"`
	// True when this model is currently loaded.
	Loaded bool `json:"loaded"`
}

// OptionsResponse is the GET /sdapi/v1/options payload.
type OptionsResponse struct {
	// Name of the active model, empty when none is loaded.
	// example: stable-diffusion-v1-5
	SDModelCheckpoint string `json:"sd_model_checkpoint" example:"stable-diffusion-v1-5"`
	// All model names known to the registry.
	AvailableModels []string `json:"available_models"`
}

// SetOptionsRequest is the POST /sdapi/v1/options payload.
type SetOptionsRequest struct {
	// Name of the model to switch to.
	// example: sdxl-turbo
	SDModelCheckpoint string `json:"sd_model_checkpoint" example:"sdxl-turbo"`
}

// AdminResponse is returned by administrative endpoints (options, refresh).
type AdminResponse struct {
	// "success" or "error".
	// example: success
	Status string `json:"status" example:"success"`
	// Human-readable outcome.
	// example: switched to sdxl-turbo
	Message string `json:"message,omitempty" example:"switched to sdxl-turbo"`
}

// ProgressResponse is the GET /sdapi/v1/progress payload. The server does not
// track per-step progress; this reports a static ready state.
type ProgressResponse struct {
	Progress     float64 `json:"progress" example:"0"`
	State        string  `json:"state" example:"ready"`
	CurrentImage *string `json:"current_image"`
}

// StatusResponse is returned by GET /sdapi/v1/status.
type StatusResponse struct {
	// Name of the active model, empty when none is loaded.
	ActiveModel string `json:"active_model,omitempty"`
	// Overall manager state (idle, loading, ready, error).
	// example: ready
	State string `json:"state" example:"ready"`
	// Last error observed by the manager, if any.
	LastError string `json:"last_error,omitempty"`
	// Device kind the active model runs on (cpu or accelerator).
	DeviceKind string `json:"device_kind,omitempty"`
	// Total accelerator memory in GB (0 without an accelerator).
	DeviceTotalGB float64 `json:"device_total_gb"`
	// Free accelerator memory in GB at probe time.
	DeviceFreeGB float64 `json:"device_free_gb"`
	// True when the probe recommends CPU offload.
	ShouldOffload bool `json:"should_offload"`
	// True when free memory clears the large-model threshold.
	CanLoadLargeModel bool `json:"can_load_large_model"`
	// Uptime of the server in seconds.
	// example: 3600
	UptimeSeconds int64 `json:"uptime_seconds" example:"3600"`
	// Total successful model switches.
	SwitchesTotal uint64 `json:"switches_total"`
	// Total generations served.
	GenerationsTotal uint64 `json:"generations_total"`
	// Generations that fell back to the placeholder path.
	FallbacksTotal uint64 `json:"fallbacks_total"`
}

// ErrorResponse is a consistent JSON error payload.
type ErrorResponse struct {
	// Error message.
	// example: model not found: unknown
	Error string `json:"error" example:"model not found: unknown"`
	// HTTP status code.
	// example: 404
	Code int `json:"code" example:"404"`
}
