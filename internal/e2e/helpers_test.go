package e2e

import (
	"bytes"
	"context"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"genstudio/internal/httpapi"
	"genstudio/internal/manager"
	"genstudio/internal/registry"
	"genstudio/pkg/types"
)

const synopsisSource = "pierreguillou/gpt2-small-portuguese"

// hubStub stands in for both the model hub and the inference endpoint.
type hubStub struct {
	configHits  atomic.Int32
	missingHits atomic.Int32
	genHits     atomic.Int32
	configDelay time.Duration

	mu       sync.Mutex
	lastBody map[string]any
}

func (s *hubStub) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/"+synopsisSource+"/resolve/main/config.json", func(w http.ResponseWriter, r *http.Request) {
		s.configHits.Add(1)
		if s.configDelay > 0 {
			time.Sleep(s.configDelay)
		}
		_, _ = io.WriteString(w, `{"model_type":"gpt2","eos_token_id":50256}`)
	})
	mux.HandleFunc("/models/"+synopsisSource, func(w http.ResponseWriter, r *http.Request) {
		s.genHits.Add(1)
		var body map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)
		s.mu.Lock()
		s.lastBody = body
		s.mu.Unlock()
		in, _ := body["inputs"].(string)
		_ = json.NewEncoder(w).Encode([]map[string]string{{"generated_text": in + " e encontra uma pista."}})
	})
	// Everything else, including config.json of unknown repos, is missing.
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		s.missingHits.Add(1)
		http.NotFound(w, r)
	})
	return mux
}

func (s *hubStub) body() map[string]any {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastBody
}

// writeAssets creates a directory with n sample PNG images.
func writeAssets(t *testing.T, n int) string {
	t.Helper()
	dir := t.TempDir()
	for i := 0; i < n; i++ {
		img := image.NewRGBA(image.Rect(0, 0, 16, 12))
		img.Set(i, i, color.RGBA{G: 255, A: 255})
		var buf bytes.Buffer
		if err := png.Encode(&buf, img); err != nil {
			t.Fatalf("encode: %v", err)
		}
		p := filepath.Join(dir, "sample"+string(rune('a'+i))+".png")
		if err := os.WriteFile(p, buf.Bytes(), 0o644); err != nil {
			t.Fatalf("write %s: %v", p, err)
		}
	}
	return dir
}

// newStudio wires the built-in presets, a broken text model and the
// placeholder image model to a real manager behind the HTTP API.
func newStudio(t *testing.T, hub *hubStub) (*httptest.Server, *manager.Manager) {
	t.Helper()
	hubSrv := httptest.NewServer(hub.handler())
	t.Cleanup(hubSrv.Close)

	reg := registry.Merge(registry.Presets(), []types.Model{
		{ID: registry.PresetPersonaPlaceholder, Kind: types.KindImage, Backend: manager.BackendPlaceholder, Path: writeAssets(t, 2), Device: "cpu"},
		{ID: "broken", Kind: types.KindText, Backend: manager.BackendHF, Source: "nobody/missing-model"},
	})
	mgr := manager.NewWithConfig(manager.ManagerConfig{
		Registry:     reg,
		DefaultModel: registry.PresetSynopsis,
		Adapters: map[string]manager.InferenceAdapter{
			manager.BackendHF:          manager.NewHFAdapter(hubSrv.URL, hubSrv.URL, "", 2*time.Second),
			manager.BackendPlaceholder: manager.NewPlaceholderAdapter(nil),
		},
	})
	t.Cleanup(func() { _ = mgr.Close() })
	srv := httptest.NewServer(httpapi.NewMux(mgr))
	t.Cleanup(srv.Close)
	return srv, mgr
}

func httpGet(t *testing.T, url string) (*http.Response, []byte) {
	t.Helper()
	req, err := http.NewRequestWithContext(context.Background(), http.MethodGet, url, nil)
	if err != nil {
		t.Fatalf("new req: %v", err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do req: %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	return resp, body
}

func httpPostJSON(t *testing.T, url string, payload []byte) (*http.Response, []byte) {
	t.Helper()
	req, err := http.NewRequestWithContext(context.Background(), http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		t.Fatalf("new req: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do req: %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	return resp, body
}
