package archive

import (
	"bytes"
	"errors"
	"path/filepath"
	"testing"

	"github.com/danmuck/succinct/internal/fragment"
	"github.com/danmuck/succinct/internal/message"
	"github.com/danmuck/succinct/internal/testutil/testlog"
)

var (
	teamA = fragment.TeamID{0xaa, 1, 2, 3, 4, 5, 6, 7}
	teamB = fragment.TeamID{0xbb, 1, 2, 3, 4, 5, 6, 7}
)

func openTestArchive(t *testing.T) *Archive {
	t.Helper()
	a, err := Open(filepath.Join(t.TempDir(), "db", "messages.sqlite"))
	if err != nil {
		t.Fatalf("open archive: %v", err)
	}
	t.Cleanup(func() { _ = a.Close() })
	return a
}

func TestPutGet(t *testing.T) {
	testlog.Start(t)
	a := openTestArchive(t)

	in := Entry{
		Team:   teamA,
		Seq:    4000000000,
		MsgNum: 2,
		Type:   message.TypeChat,
		Span:   3,
		Raw:    []byte{5, 0, 8, 3, 0, 0, 0, 120, 'h', 'i', 0},
		JSON:   []byte(`{"type":"chat"}`),
	}
	if err := a.Put(in); err != nil {
		t.Fatalf("put: %v", err)
	}
	got, err := a.Get(teamA, 4000000000, 2)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Team != in.Team || got.Seq != in.Seq || got.MsgNum != in.MsgNum || got.Type != in.Type || got.Span != in.Span {
		t.Fatalf("unexpected entry: %+v", got)
	}
	if !bytes.Equal(got.Raw, in.Raw) || !bytes.Equal(got.JSON, in.JSON) {
		t.Fatalf("unexpected payloads: raw=%v json=%s", got.Raw, got.JSON)
	}

	in.Span = 4
	if err := a.Put(in); err != nil {
		t.Fatalf("replace: %v", err)
	}
	if got, err := a.Get(teamA, 4000000000, 2); err != nil || got.Span != 4 {
		t.Fatalf("expected replaced entry: %+v %v", got, err)
	}

	if _, err := a.Get(teamA, 1, 1); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestListTeamOrdered(t *testing.T) {
	testlog.Start(t)
	a := openTestArchive(t)

	entries := []Entry{
		{Team: teamA, Seq: 9, MsgNum: 1, Type: message.TypeTeamEnd, Span: 1, Raw: []byte{1}, JSON: []byte("{}")},
		{Team: teamA, Seq: 2, MsgNum: 2, Type: message.TypeChat, Span: 1, Raw: []byte{2}, JSON: []byte("{}")},
		{Team: teamB, Seq: 1, MsgNum: 1, Type: message.TypeChat, Span: 1, Raw: []byte{3}, JSON: []byte("{}")},
		{Team: teamA, Seq: 2, MsgNum: 1, Type: message.TypeTeamStart, Span: 2, Raw: []byte{4}, JSON: []byte("{}")},
	}
	for _, e := range entries {
		if err := a.Put(e); err != nil {
			t.Fatalf("put: %v", err)
		}
	}

	got, err := a.ListTeam(teamA)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(got))
	}
	order := [][2]int{{2, 1}, {2, 2}, {9, 1}}
	for i, want := range order {
		if int(got[i].Seq) != want[0] || got[i].MsgNum != want[1] {
			t.Fatalf("entry %d out of order: seq=%d msgnum=%d", i, got[i].Seq, got[i].MsgNum)
		}
	}

	none, err := a.ListTeam(fragment.TeamID{})
	if err != nil || len(none) != 0 {
		t.Fatalf("expected empty list: %v %v", none, err)
	}
}
