package e2e

import (
	"bytes"
	"encoding/json"
	"image/png"
	"net/http"
	"sync"
	"testing"
	"time"

	"genstudio/pkg/types"
)

func TestE2E_TextGeneration_DefaultModel(t *testing.T) {
	hub := &hubStub{}
	srv, _ := newStudio(t, hub)

	resp, body := httpGet(t, srv.URL+"/readyz")
	if resp.StatusCode != http.StatusServiceUnavailable {
		t.Fatalf("/readyz before load: %d", resp.StatusCode)
	}

	resp, body = httpPostJSON(t, srv.URL+"/generate", []byte(`{"prompt":"Numa colônia lunar","text":{"max_length":120,"temperature":0}}`))
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("/generate %d %s", resp.StatusCode, string(body))
	}
	var gen types.GenerateResponse
	if err := json.Unmarshal(body, &gen); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if gen.Model != "synopsis" || gen.Kind != types.KindText {
		t.Fatalf("unexpected response: %+v", gen)
	}
	if gen.Text != "Numa colônia lunar e encontra uma pista." {
		t.Fatalf("text should start with the prompt, got %q", gen.Text)
	}
	if gen.EffectiveTemperature != 0.1 {
		t.Fatalf("effective temperature = %v, want 0.1", gen.EffectiveTemperature)
	}

	params, _ := hub.body()["parameters"].(map[string]any)
	if params["temperature"] != 0.1 || params["do_sample"] != true || params["pad_token_id"] != float64(50256) {
		t.Fatalf("unexpected sampling parameters: %v", params)
	}
	if params["max_length"] != float64(120) || params["return_full_text"] != true {
		t.Fatalf("unexpected length parameters: %v", params)
	}

	resp, _ = httpGet(t, srv.URL+"/readyz")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("/readyz after load: %d", resp.StatusCode)
	}
}

func TestE2E_ConcurrentFirstUse_LoadsOnce(t *testing.T) {
	hub := &hubStub{configDelay: 50 * time.Millisecond}
	srv, _ := newStudio(t, hub)

	const n = 8
	var wg sync.WaitGroup
	codes := make([]int, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			resp, _ := httpPostJSON(t, srv.URL+"/generate", []byte(`{"model":"synopsis","prompt":"oi","text":{"max_length":60,"temperature":0.9}}`))
			codes[i] = resp.StatusCode
		}(i)
	}
	wg.Wait()
	for i, c := range codes {
		if c != http.StatusOK {
			t.Fatalf("request %d: status %d", i, c)
		}
	}
	if got := hub.configHits.Load(); got != 1 {
		t.Fatalf("model loaded %d times, want 1", got)
	}
	if got := hub.genHits.Load(); got != n {
		t.Fatalf("generation calls = %d, want %d", got, n)
	}
}

func TestE2E_LoadFailureIsTerminal(t *testing.T) {
	hub := &hubStub{}
	srv, _ := newStudio(t, hub)

	payload := []byte(`{"model":"broken","prompt":"oi","text":{"max_length":60,"temperature":0.9}}`)
	for i := 0; i < 3; i++ {
		resp, body := httpPostJSON(t, srv.URL+"/generate", payload)
		if resp.StatusCode != http.StatusServiceUnavailable {
			t.Fatalf("attempt %d: expected 503, got %d %s", i, resp.StatusCode, string(body))
		}
	}
	if got := hub.missingHits.Load(); got != 1 {
		t.Fatalf("failed load retried: %d source lookups", got)
	}

	resp, body := httpGet(t, srv.URL+"/status")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("/status %d", resp.StatusCode)
	}
	var st types.StatusResponse
	if err := json.Unmarshal(body, &st); err != nil {
		t.Fatalf("decode status: %v", err)
	}
	if len(st.Handles) != 1 || st.Handles[0].ModelID != "broken" || st.Handles[0].State != "error" {
		t.Fatalf("unexpected status: %s", string(body))
	}

	// Other models remain usable.
	resp, body = httpPostJSON(t, srv.URL+"/generate", []byte(`{"prompt":"oi","text":{"max_length":60,"temperature":0.9}}`))
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("default model after unrelated failure: %d %s", resp.StatusCode, string(body))
	}
}

func TestE2E_ImageGeneration_PlaceholderBatch(t *testing.T) {
	hub := &hubStub{}
	srv, _ := newStudio(t, hub)

	for k := 1; k <= types.MaxImageCount; k++ {
		payload, _ := json.Marshal(types.GenerateRequest{
			Model:  "persona-placeholder",
			Prompt: "engenheira de naves, arte digital",
			Image:  &types.ImageParams{NegativePrompt: "blurry", Count: k},
		})
		resp, body := httpPostJSON(t, srv.URL+"/generate", payload)
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("count=%d: %d %s", k, resp.StatusCode, string(body))
		}
		var gen types.GenerateResponse
		if err := json.Unmarshal(body, &gen); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if len(gen.Images) != k {
			t.Fatalf("count=%d: got %d images", k, len(gen.Images))
		}
		for i, img := range gen.Images {
			if img.Index != i+1 || img.MimeType != "image/png" || img.Filename != types.ImageFilename(i+1) {
				t.Fatalf("image %d metadata: %+v", i, img)
			}
			cfg, err := png.DecodeConfig(bytes.NewReader(img.Data))
			if err != nil {
				t.Fatalf("image %d is not a PNG: %v", i, err)
			}
			if cfg.Width != 16 || cfg.Height != 12 {
				t.Fatalf("image %d dims %dx%d", i, cfg.Width, cfg.Height)
			}
		}
	}
}

func TestE2E_ImageDownload(t *testing.T) {
	hub := &hubStub{}
	srv, _ := newStudio(t, hub)

	payload := []byte(`{"model":"persona-placeholder","prompt":"farol","image":{"count":3}}`)
	resp, body := httpPostJSON(t, srv.URL+"/generate?format=png&index=3", payload)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("/generate png %d %s", resp.StatusCode, string(body))
	}
	if ct := resp.Header.Get("Content-Type"); ct != "image/png" {
		t.Fatalf("content-type=%q", ct)
	}
	if cd := resp.Header.Get("Content-Disposition"); cd != `attachment; filename="generated_image_3.png"` {
		t.Fatalf("content-disposition=%q", cd)
	}
	if _, err := png.Decode(bytes.NewReader(body)); err != nil {
		t.Fatalf("png decode: %v", err)
	}

	resp, _ = httpPostJSON(t, srv.URL+"/generate?format=png&index=4", payload)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("index beyond count: %d", resp.StatusCode)
	}
}

func TestE2E_KindMismatchAndUnknownModel(t *testing.T) {
	hub := &hubStub{}
	srv, _ := newStudio(t, hub)

	resp, body := httpPostJSON(t, srv.URL+"/generate", []byte(`{"model":"persona-placeholder","prompt":"x","text":{"max_length":60,"temperature":0.9}}`))
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("kind mismatch: %d %s", resp.StatusCode, string(body))
	}
	resp, body = httpPostJSON(t, srv.URL+"/generate", []byte(`{"model":"nope","prompt":"x","image":{"count":1}}`))
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("unknown model: %d %s", resp.StatusCode, string(body))
	}
}
