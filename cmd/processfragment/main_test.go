package main

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/danmuck/succinct/internal/archive"
	"github.com/danmuck/succinct/internal/fragment"
	"github.com/danmuck/succinct/internal/message"
)

var team = fragment.TeamID{0x12, 0x34, 0x56, 0x78, 0x9a, 0xbc, 0xde, 0xf0}

func setup(t *testing.T, msgs ...message.Message) (dir, cfgPath, dbPath string) {
	t.Helper()
	root := t.TempDir()
	dir = filepath.Join(root, "frags")
	if err := os.Mkdir(dir, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	w, err := fragment.NewWriter(fragment.NewDirStore(dir), team, 20)
	if err != nil {
		t.Fatalf("new writer: %v", err)
	}
	for _, m := range msgs {
		b, err := message.Serialize(m)
		if err != nil {
			t.Fatalf("serialize: %v", err)
		}
		if _, err := w.Write(0, b); err != nil {
			t.Fatalf("write: %v", err)
		}
	}
	dbPath = filepath.Join(root, "messages.sqlite")
	cfgPath = filepath.Join(root, "succinct.toml")
	data := "archive_path = \"" + filepath.ToSlash(dbPath) + "\"\n"
	if err := os.WriteFile(cfgPath, []byte(data), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return dir, cfgPath, dbPath
}

func TestProcessChat(t *testing.T) {
	dir, cfgPath, dbPath := setup(t, message.Chat{Member: 3, Time: 120, Text: "hi"})
	out := t.TempDir()
	msgFile := filepath.Join(out, "msg")
	jsonFile := filepath.Join(out, "msg.json")
	formFile := filepath.Join(out, "form")

	var stdout bytes.Buffer
	args := []string{"-config", cfgPath, team.String(), dir, "0", "1", msgFile, jsonFile, formFile}
	if err := run(args, &stdout); err != nil {
		t.Fatalf("run: %v", err)
	}

	raw, err := os.ReadFile(msgFile)
	if err != nil {
		t.Fatalf("read msg: %v", err)
	}
	if !bytes.Equal(raw, []byte{5, 0, 8, 3, 0, 0, 0, 120, 'h', 'i', 0}) {
		t.Fatalf("unexpected raw message: %v", raw)
	}
	doc, err := os.ReadFile(jsonFile)
	if err != nil {
		t.Fatalf("read json: %v", err)
	}
	want := `{"team":"123456789abcdef0","type":"chat","member":3,"reltime":12000,"message":"hi"}` + "\n"
	if string(doc) != want {
		t.Fatalf("unexpected json: %s", doc)
	}
	if _, err := os.Stat(formFile); !os.IsNotExist(err) {
		t.Fatalf("form file should only be written for forms: %v", err)
	}

	arc, err := archive.Open(dbPath)
	if err != nil {
		t.Fatalf("open archive: %v", err)
	}
	defer arc.Close()
	if _, err := arc.Get(team, 0, 1); err != nil {
		t.Fatalf("expected archived message: %v", err)
	}
}

func TestProcessFormToStdout(t *testing.T) {
	dir, cfgPath, _ := setup(t, message.MagpiForm{Member: 1, Time: 2, Data: []byte("<form/>")})
	out := t.TempDir()

	var stdout bytes.Buffer
	args := []string{"-config", cfgPath, team.String(), dir, "0", "1", filepath.Join(out, "msg"), filepath.Join(out, "json"), "-"}
	if err := run(args, &stdout); err != nil {
		t.Fatalf("run: %v", err)
	}
	if stdout.String() != "<form/>" {
		t.Fatalf("unexpected form output: %q", stdout.String())
	}
}

func TestProcessErrors(t *testing.T) {
	dir, cfgPath, _ := setup(t, message.TeamEnd{Time: 1})
	var stdout bytes.Buffer

	if err := run([]string{"-config", cfgPath, team.String()}, &stdout); !errors.Is(err, errUsage) {
		t.Fatalf("expected usage error, got %v", err)
	}
	args := []string{"-config", cfgPath, "nothex", dir, "0", "1", "-", "-", "-"}
	if err := run(args, &stdout); !errors.Is(err, fragment.ErrInvalidTeamID) {
		t.Fatalf("expected ErrInvalidTeamID, got %v", err)
	}
	args = []string{"-config", cfgPath, team.String(), dir, "5", "1", "-", "-", "-"}
	if err := run(args, &stdout); !errors.Is(err, fragment.ErrFragmentMissing) {
		t.Fatalf("expected ErrFragmentMissing, got %v", err)
	}
	if stdout.Len() != 0 {
		t.Fatalf("nothing should be written on failure, got %q", stdout.String())
	}
}

func TestProcessErrorWording(t *testing.T) {
	decode := fmt.Errorf("message 0000000000/1: %w", message.ErrMalformedPayload)
	if err := processError("msg", decode); !strings.Contains(err.Error(), "malformed message") || !errors.Is(err, message.ErrMalformedPayload) {
		t.Fatalf("unexpected decode wording: %v", err)
	}
	other := errors.New("archive: put: sql: database is closed")
	if err := processError("msg", other); err != other {
		t.Fatalf("non-decode error should pass through, got %v", err)
	}
}
