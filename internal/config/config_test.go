package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadConfigDefaultsWhenMissing(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "absent.toml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg != DefaultConfig() {
		t.Fatalf("expected defaults, got %+v", cfg)
	}
}

func TestLoadConfigOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "succinct.toml")
	data := "spool_dir = \"/var/spool/succinct\"\nmax_chat_bytes = 140\narchive_path = \"a.sqlite\"\n"
	if err := os.WriteFile(path, []byte(data), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.SpoolDir != "/var/spool/succinct" || cfg.MaxChatBytes != 140 || cfg.ArchivePath != "a.sqlite" {
		t.Fatalf("overrides not applied: %+v", cfg)
	}
	if cfg.JSONDir != DefaultJSONDir || cfg.MetricsFile != "" {
		t.Fatalf("defaults not applied: %+v", cfg)
	}
}

func TestLoadConfigRejectsInvalid(t *testing.T) {
	dir := t.TempDir()
	cases := map[string]string{
		"bad-spool.toml": "spool_dir = \"  \"\n",
		"bad-chat.toml":  "max_chat_bytes = -1\n",
		"bad-parse.toml": "max_chat_bytes = \"big\"\n",
	}
	for name, data := range cases {
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, []byte(data), 0o600); err != nil {
			t.Fatalf("write: %v", err)
		}
		if _, err := LoadConfig(path); err == nil {
			t.Fatalf("%s: expected error", name)
		}
	}
}

func TestTemplatesLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "succinct.toml")
	if err := WriteTemplate(path, "succinct", false); err != nil {
		t.Fatalf("write template: %v", err)
	}
	if _, err := LoadConfig(path); err != nil {
		t.Fatalf("template should validate: %v", err)
	}
	for _, key := range []string{"mtu", "tmp_dir"} {
		if strings.Contains(succinctTemplate, key) {
			t.Fatalf("shared template should not carry %s", key)
		}
	}
	if err := WriteTemplate(path, "succinct", false); err == nil || !strings.Contains(err.Error(), "already exists") {
		t.Fatalf("expected overwrite refusal, got %v", err)
	}
	if err := WriteTemplate(path, "fragwrite", true); err != nil {
		t.Fatalf("overwrite: %v", err)
	}
	if _, err := Template("bogus"); err == nil {
		t.Fatalf("expected unknown kind error")
	}
}
