package config

import (
	"errors"
	"io/fs"
	"strings"
	"testing"
)

func TestLoad_NonexistentFile(t *testing.T) {
	_, err := Load("/definitely/not/a/real/genstudio-12345.yaml")
	if !errors.Is(err, fs.ErrNotExist) {
		t.Fatalf("expected not-exist error, got %v", err)
	}
}

func TestLoad_MalformedFilesNameTheFile(t *testing.T) {
	cases := []struct {
		name, content string
	}{
		{"bad.yaml", "addr: :8080\n: broken\n"},
		{"bad.yml", "cors_origins: [unterminated\n"},
		{"bad.json", `{ "addr": ":8080", "hf_hub_url": }`},
		{"bad.toml", "addr=:8080\nsdwebui_url\n"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			p := writeTempFile(t, t.TempDir(), c.name, c.content)
			_, err := Load(p)
			if err == nil {
				t.Fatalf("expected parse error")
			}
			if !strings.HasPrefix(err.Error(), "parse "+c.name) {
				t.Fatalf("error should name the file: %v", err)
			}
		})
	}
}

func TestLoad_WrongFieldType(t *testing.T) {
	p := writeTempFile(t, t.TempDir(), "types.json", `{"max_body_bytes":"lots"}`)
	if _, err := Load(p); err == nil {
		t.Fatalf("expected type error for max_body_bytes")
	}
}
