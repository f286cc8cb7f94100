package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/danmuck/succinct/internal/message"
)

// noConfig points at a file that does not exist so defaults apply.
func noConfig(t *testing.T) []string {
	return []string{"-config", filepath.Join(t.TempDir(), "absent.toml")}
}

func runParse(t *testing.T, args ...string) message.Message {
	t.Helper()
	var out bytes.Buffer
	if err := run(append(noConfig(t), args...), nil, &out); err != nil {
		t.Fatalf("%v: %v", args, err)
	}
	m, err := message.Parse(out.Bytes())
	if err != nil {
		t.Fatalf("%v: parse output: %v", args, err)
	}
	return m
}

func TestChatExactBytes(t *testing.T) {
	var out bytes.Buffer
	if err := run(append(noConfig(t), "chat", "3", "12000", "hi"), nil, &out); err != nil {
		t.Fatalf("run: %v", err)
	}
	want := []byte{5, 0, 8, 3, 0, 0, 0, 120, 'h', 'i', 0}
	if !bytes.Equal(out.Bytes(), want) {
		t.Fatalf("unexpected bytes: %v", out.Bytes())
	}
}

func TestSubcommands(t *testing.T) {
	tests := []struct {
		args []string
		want message.Message
	}{
		{args: []string{"start", "Alpha", "1700000000123"}, want: message.TeamStart{Time: 1700000000123, Name: "Alpha"}},
		{args: []string{"end", "1700000000999"}, want: message.TeamEnd{Time: 1700000000999}},
		{args: []string{"join", "2", "1550", "Ann", "ann-1"}, want: message.MemberJoin{Member: 2, Time: 15, Name: "Ann", ID: "ann-1"}},
		{args: []string{"part", "2", "99"}, want: message.MemberPart{Member: 2, Time: 0}},
	}
	for _, tt := range tests {
		got := runParse(t, tt.args...)
		if !reflect.DeepEqual(got, tt.want) {
			t.Fatalf("%v: got %+v want %+v", tt.args, got, tt.want)
		}
	}
}

func TestLocations(t *testing.T) {
	m := runParse(t, "locations", "1", "1000", "-34.9", "138.6", "45", "2", "2000", "0", "0", "5000")
	loc, ok := m.(message.Location)
	if !ok || len(loc.Records) != 2 {
		t.Fatalf("unexpected message: %+v", m)
	}
	if loc.Records[0].Accuracy.Meters() != 50 || loc.Records[1].Accuracy.Meters() != -1 {
		t.Fatalf("unexpected accuracy buckets: %+v", loc.Records)
	}
	if loc.Records[1].Member != 2 || loc.Records[1].Time != 20 {
		t.Fatalf("unexpected record: %+v", loc.Records[1])
	}
}

func TestRaw(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data")
	if err := os.WriteFile(path, []byte{1, 2, 3}, 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	var out bytes.Buffer
	if err := run(append(noConfig(t), "raw", "6", path), nil, &out); err != nil {
		t.Fatalf("run: %v", err)
	}
	if !bytes.Equal(out.Bytes(), []byte{6, 0, 3, 1, 2, 3}) {
		t.Fatalf("unexpected bytes: %v", out.Bytes())
	}
	if err := run(append(noConfig(t), "raw", "7", path), nil, &out); err == nil {
		t.Fatalf("expected invalid type")
	}
}

func TestChatLimits(t *testing.T) {
	var out bytes.Buffer
	long := strings.Repeat("x", 601)
	if err := run(append(noConfig(t), "chat", "1", "0", long), nil, &out); !errors.Is(err, message.ErrTooLong) {
		t.Fatalf("expected ErrTooLong, got %v", err)
	}

	cfgPath := filepath.Join(t.TempDir(), "succinct.toml")
	if err := os.WriteFile(cfgPath, []byte("max_chat_bytes = 1000\n"), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if err := run([]string{"-config", cfgPath, "chat", "1", "0", long}, nil, &out); err != nil {
		t.Fatalf("raised limit should accept chat: %v", err)
	}

	if err := run(append(noConfig(t), "chat", "1", "0", ""), nil, &out); !errors.Is(err, message.ErrEmptyText) {
		t.Fatalf("expected ErrEmptyText, got %v", err)
	}
	if err := run(append(noConfig(t), "chat", "1", "0", "bad\xff"), nil, &out); !errors.Is(err, message.ErrInvalidUTF8) {
		t.Fatalf("expected ErrInvalidUTF8, got %v", err)
	}
	if err := run(append(noConfig(t), "chat", "256", "0", "hi"), nil, &out); err == nil {
		t.Fatalf("expected invalid member")
	}
	if err := run(append(noConfig(t), "chat", "1", "-5", "hi"), nil, &out); err == nil {
		t.Fatalf("expected invalid epoch")
	}
}

func TestChatFromStdin(t *testing.T) {
	var out bytes.Buffer
	if err := run(append(noConfig(t), "chat", "3", "12000", "-"), strings.NewReader("hi"), &out); err != nil {
		t.Fatalf("run: %v", err)
	}
	want := []byte{5, 0, 8, 3, 0, 0, 0, 120, 'h', 'i', 0}
	if !bytes.Equal(out.Bytes(), want) {
		t.Fatalf("unexpected bytes: %v", out.Bytes())
	}

	cases := map[string]struct {
		in  string
		err error
	}{
		"empty":    {in: "", err: message.ErrEmptyText},
		"too long": {in: strings.Repeat("x", 601), err: message.ErrTooLong},
		"nul":      {in: "a\x00b", err: message.ErrEmbeddedNUL},
	}
	for name, tc := range cases {
		out.Reset()
		err := run(append(noConfig(t), "chat", "1", "0", "-"), strings.NewReader(tc.in), &out)
		if !errors.Is(err, tc.err) {
			t.Fatalf("%s: expected %v, got %v", name, tc.err, err)
		}
		if out.Len() != 0 {
			t.Fatalf("%s: nothing should be written on failure", name)
		}
	}
}

func TestUsage(t *testing.T) {
	var out bytes.Buffer
	for _, args := range [][]string{{}, {"chat", "1"}, {"locations", "1", "2"}, {"end"}} {
		if err := run(append(noConfig(t), args...), nil, &out); !errors.Is(err, errUsage) {
			t.Fatalf("%v: expected usage error, got %v", args, err)
		}
	}
	if err := run(append(noConfig(t), "bogus"), nil, &out); err == nil || errors.Is(err, errUsage) {
		t.Fatalf("expected unknown type error, got %v", err)
	}
}
