package placeholder

import (
	"bytes"
	"image/png"
	"testing"
)

func TestRenderSize(t *testing.T) {
	img, err := Render(Request{Prompt: "a red fox", Width: 320, Height: 200})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	b := img.Bounds()
	if b.Dx() != 320 || b.Dy() != 200 {
		t.Fatalf("expected 320x200, got %dx%d", b.Dx(), b.Dy())
	}
}

func TestRenderDeterministic(t *testing.T) {
	req := Request{Prompt: "misty mountains at dawn", Width: 128, Height: 128}
	a := encode(t, req)
	b := encode(t, req)
	if !bytes.Equal(a, b) {
		t.Fatalf("same request must produce identical images")
	}
}

func TestRenderPromptChangesImage(t *testing.T) {
	a := encode(t, Request{Prompt: "a red fox", Width: 64, Height: 64})
	b := encode(t, Request{Prompt: "a blue whale", Width: 64, Height: 64})
	if bytes.Equal(a, b) {
		t.Fatalf("different prompts should differ")
	}
}

func TestRenderInvalidSize(t *testing.T) {
	if _, err := Render(Request{Prompt: "x", Width: 0, Height: 64}); err == nil {
		t.Fatalf("expected error for zero width")
	}
	if _, err := Render(Request{Prompt: "x", Width: 64, Height: -1}); err == nil {
		t.Fatalf("expected error for negative height")
	}
}

func TestRenderLongPromptDoesNotPanic(t *testing.T) {
	long := ""
	for i := 0; i < 60; i++ {
		long += "very "
	}
	if _, err := Render(Request{Prompt: long + "long prompt", Width: 96, Height: 96}); err != nil {
		t.Fatalf("render: %v", err)
	}
}

func TestWrap(t *testing.T) {
	lines := wrap("one two three four five six seven eight nine ten", 15)
	for _, l := range lines {
		if len(l) > 15 {
			t.Fatalf("line too long: %q", l)
		}
	}
	if len(lines) < 3 {
		t.Fatalf("expected several lines, got %d", len(lines))
	}
}

func encode(t *testing.T, req Request) []byte {
	t.Helper()
	img, err := Render(req)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode: %v", err)
	}
	return buf.Bytes()
}
