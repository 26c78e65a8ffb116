package blackbox

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"image/png"
	"io"
	"net"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"testing"
	"time"
)

// findFreePort picks an available TCP port on localhost.
func findFreePort(t *testing.T) (int, func()) {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	addr := ln.Addr().String()
	_, portStr, err := net.SplitHostPort(addr)
	if err != nil {
		t.Fatalf("split: %v", err)
	}
	cleanup := func() { _ = ln.Close() }
	var port int
	fmt.Sscanf(portStr, "%d", &port)
	return port, cleanup
}

func projectRootFromThisFile(t *testing.T) string {
	t.Helper()
	_, thisFile, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatal("runtime.Caller failed")
	}
	// this file: <root>/tests/blackbox/blackbox_test.go
	bbDir := filepath.Dir(thisFile)
	return filepath.Dir(filepath.Dir(bbDir))
}

func buildBinary(t *testing.T) string {
	t.Helper()
	root := projectRootFromThisFile(t)
	outDir := t.TempDir()
	binPath := filepath.Join(outDir, "diffusiond")
	cmd := exec.Command("go", "build", "-o", binPath, "./cmd/diffusiond")
	cmd.Dir = root
	cmd.Env = append(os.Environ(), "CGO_ENABLED=0")
	out, err := cmd.CombinedOutput()
	if err != nil {
		t.Fatalf("go build failed: %v\n%s", err, string(out))
	}
	return binPath
}

func createTempModelsDir(t *testing.T, names ...string) string {
	t.Helper()
	dir := t.TempDir()
	for _, n := range names {
		p := filepath.Join(dir, n)
		if err := os.WriteFile(p, []byte("weights "+n), 0o644); err != nil {
			t.Fatalf("write temp model %s: %v", p, err)
		}
	}
	return dir
}

type serverProc struct {
	cmd  *exec.Cmd
	base string // http base URL, e.g. http://127.0.0.1:18080
}

func startServer(t *testing.T, bin string, modelsDir string, port int) *serverProc {
	t.Helper()
	addr := fmt.Sprintf(":%d", port)
	base := fmt.Sprintf("http://127.0.0.1:%d", port)
	cmd := exec.Command(bin, "serve", "--addr", addr, "--models-dir", modelsDir)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Start(); err != nil {
		t.Fatalf("start server: %v", err)
	}
	// Wait for healthz
	deadline := time.Now().Add(5 * time.Second)
	for {
		resp, err := http.Get(base + "/healthz")
		if err == nil {
			_ = resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				break
			}
		}
		if time.Now().After(deadline) {
			_ = cmd.Process.Kill()
			t.Fatalf("server did not become healthy in time")
		}
		time.Sleep(50 * time.Millisecond)
	}
	sp := &serverProc{cmd: cmd, base: base}
	t.Cleanup(func() { _ = cmd.Process.Kill() })
	return sp
}

func get(t *testing.T, url string) (*http.Response, []byte) {
	t.Helper()
	req, err := http.NewRequestWithContext(context.Background(), http.MethodGet, url, nil)
	if err != nil {
		t.Fatalf("new req: %v", err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do: %v", err)
	}
	b, _ := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	return resp, b
}

func post(t *testing.T, url, body string) (*http.Response, []byte) {
	t.Helper()
	req, err := http.NewRequestWithContext(context.Background(), http.MethodPost, url, bytes.NewBufferString(body))
	if err != nil {
		t.Fatalf("new req: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do: %v", err)
	}
	b, _ := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	return resp, b
}

func TestServerEndToEnd(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping blackbox test in short mode")
	}
	bin := buildBinary(t)
	modelsDir := createTempModelsDir(t, "dreamshaper-v8.safetensors")
	port, release := findFreePort(t)
	release()
	sp := startServer(t, bin, modelsDir, port)

	t.Run("sd-models lists builtins and discovered", func(t *testing.T) {
		resp, b := get(t, sp.base+"/sdapi/v1/sd-models")
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("status=%d body=%s", resp.StatusCode, b)
		}
		var models []map[string]any
		if err := json.Unmarshal(b, &models); err != nil {
			t.Fatalf("json: %v", err)
		}
		names := map[string]bool{}
		for _, m := range models {
			names[m["model_name"].(string)] = true
		}
		for _, want := range []string{"stable-diffusion-v1-5", "sdxl-turbo", "dreamshaper-v8"} {
			if !names[want] {
				t.Fatalf("missing model %q in %v", want, names)
			}
		}
	})

	t.Run("switch to unknown model returns 404", func(t *testing.T) {
		resp, b := post(t, sp.base+"/sdapi/v1/options", `{"sd_model_checkpoint":"unknown"}`)
		if resp.StatusCode != http.StatusNotFound {
			t.Fatalf("status=%d body=%s", resp.StatusCode, b)
		}
		var admin map[string]any
		if err := json.Unmarshal(b, &admin); err != nil {
			t.Fatalf("json: %v", err)
		}
		if admin["status"] != "error" {
			t.Fatalf("body=%s", b)
		}
	})

	t.Run("switch without a runtime surfaces an engine error", func(t *testing.T) {
		resp, b := post(t, sp.base+"/sdapi/v1/options", `{"sd_model_checkpoint":"stable-diffusion-v1-5"}`)
		if resp.StatusCode != http.StatusInternalServerError {
			t.Fatalf("status=%d body=%s", resp.StatusCode, b)
		}
		resp, _ = get(t, sp.base+"/readyz")
		if resp.StatusCode != http.StatusServiceUnavailable {
			t.Fatalf("readyz status=%d", resp.StatusCode)
		}
	})

	t.Run("txt2img serves a placeholder with resolved params", func(t *testing.T) {
		resp, b := post(t, sp.base+"/sdapi/v1/txt2img", `{"prompt":"a red fox","seed":42,"width":256,"height":192}`)
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("status=%d body=%s", resp.StatusCode, b)
		}
		var out struct {
			Images     []string `json:"images"`
			Parameters struct {
				Seed  int64 `json:"seed"`
				Steps int   `json:"steps"`
			} `json:"parameters"`
			Info string `json:"info"`
		}
		if err := json.Unmarshal(b, &out); err != nil {
			t.Fatalf("json: %v", err)
		}
		if len(out.Images) != 1 {
			t.Fatalf("images=%d", len(out.Images))
		}
		if out.Parameters.Seed != 42 {
			t.Fatalf("seed=%d", out.Parameters.Seed)
		}
		raw, err := base64.StdEncoding.DecodeString(out.Images[0])
		if err != nil {
			t.Fatalf("base64: %v", err)
		}
		img, err := png.Decode(bytes.NewReader(raw))
		if err != nil {
			t.Fatalf("png: %v", err)
		}
		if img.Bounds().Dx() != 256 || img.Bounds().Dy() != 192 {
			t.Fatalf("image %dx%d", img.Bounds().Dx(), img.Bounds().Dy())
		}
		var info map[string]any
		if err := json.Unmarshal([]byte(out.Info), &info); err != nil {
			t.Fatalf("info: %v", err)
		}
		if info["provenance"] != "placeholder" {
			t.Fatalf("provenance=%v", info["provenance"])
		}
	})

	t.Run("status reports counters", func(t *testing.T) {
		resp, b := get(t, sp.base+"/sdapi/v1/status")
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("status=%d body=%s", resp.StatusCode, b)
		}
		var st map[string]any
		if err := json.Unmarshal(b, &st); err != nil {
			t.Fatalf("json: %v", err)
		}
		if st["generations_total"].(float64) < 1 {
			t.Fatalf("generations_total=%v", st["generations_total"])
		}
	})

	t.Run("refresh keeps builtins", func(t *testing.T) {
		resp, b := post(t, sp.base+"/sdapi/v1/refresh-checkpoints", `{}`)
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("status=%d body=%s", resp.StatusCode, b)
		}
		var models []map[string]any
		if err := json.Unmarshal(b, &models); err != nil {
			t.Fatalf("json: %v", err)
		}
		if len(models) < 2 {
			t.Fatalf("models=%d", len(models))
		}
	})

	t.Run("metrics endpoint responds", func(t *testing.T) {
		resp, _ := get(t, sp.base+"/metrics")
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("status=%d", resp.StatusCode)
		}
	})
}
