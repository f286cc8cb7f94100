package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/danmuck/succinct/internal/fragment"
	"github.com/danmuck/succinct/internal/message"
	"github.com/danmuck/succinct/internal/spool"
)

var team = fragment.TeamID{0xca, 0xfe, 0, 0, 0, 0, 0, 2}

func TestRebuildWritesJSONPerMessage(t *testing.T) {
	root := t.TempDir()
	spoolDir := filepath.Join(root, "spool")
	jsonDir := filepath.Join(root, "json")
	metrics := filepath.Join(root, "succinct.prom")
	cfgPath := filepath.Join(root, "succinct.toml")
	cfg := strings.Join([]string{
		`spool_dir = "` + filepath.ToSlash(spoolDir) + `"`,
		`json_dir = "` + filepath.ToSlash(jsonDir) + `"`,
		`archive_path = "` + filepath.ToSlash(filepath.Join(root, "db.sqlite")) + `"`,
		`metrics_file = "` + filepath.ToSlash(metrics) + `"`,
	}, "\n") + "\n"
	if err := os.WriteFile(cfgPath, []byte(cfg), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	fragDir := spool.Dir(spoolDir, team)
	if err := os.MkdirAll(fragDir, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	w, err := fragment.NewWriter(fragment.NewDirStore(fragDir), team, 20)
	if err != nil {
		t.Fatalf("new writer: %v", err)
	}
	for _, m := range []message.Message{
		message.TeamStart{Time: 1, Name: "T"},
		message.Chat{Member: 3, Time: 120, Text: "hi"},
	} {
		b, err := message.Serialize(m)
		if err != nil {
			t.Fatalf("serialize: %v", err)
		}
		if _, err := w.Write(0, b); err != nil {
			t.Fatalf("write: %v", err)
		}
	}

	var out bytes.Buffer
	if err := run([]string{"-config", cfgPath, team.String()}, &out); err != nil {
		t.Fatalf("run: %v", err)
	}
	paths := strings.Fields(out.String())
	if len(paths) != 2 {
		t.Fatalf("expected 2 exported messages, got %q", out.String())
	}
	if filepath.Base(paths[0]) != "0000000000-1.json" {
		t.Fatalf("unexpected first export: %s", paths[0])
	}
	doc, err := os.ReadFile(paths[1])
	if err != nil {
		t.Fatalf("read export: %v", err)
	}
	if !strings.Contains(string(doc), `"message":"hi"`) {
		t.Fatalf("unexpected export: %s", doc)
	}
	if _, err := os.Stat(metrics); err != nil {
		t.Fatalf("expected metrics file: %v", err)
	}
}

func TestRebuildUsage(t *testing.T) {
	var out bytes.Buffer
	if err := run(nil, &out); !errors.Is(err, errUsage) {
		t.Fatalf("expected usage error, got %v", err)
	}
	cfgPath := filepath.Join(t.TempDir(), "absent.toml")
	if err := run([]string{"-config", cfgPath, "cafe000000000002", "x"}, &out); !errors.Is(err, fragment.ErrInvalidSequence) {
		t.Fatalf("expected ErrInvalidSequence, got %v", err)
	}
}
