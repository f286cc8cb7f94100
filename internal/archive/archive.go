package archive

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/danmuck/succinct/internal/fragment"
	"github.com/danmuck/succinct/internal/message"
	_ "github.com/mattn/go-sqlite3"
)

var ErrNotFound = errors.New("archive: message not found")

const initSQL = `CREATE TABLE IF NOT EXISTS messages (
	team TEXT NOT NULL,
	seq INTEGER NOT NULL,
	msgnum INTEGER NOT NULL,
	type INTEGER NOT NULL,
	span INTEGER NOT NULL,
	raw BLOB NOT NULL,
	json TEXT NOT NULL,
	PRIMARY KEY (team, seq, msgnum)
);
`

// Entry is one decoded message, keyed by the fragment its header starts in
// and its position there.
type Entry struct {
	Team   fragment.TeamID
	Seq    uint32
	MsgNum int
	Type   message.Type
	Span   int
	Raw    []byte
	JSON   []byte
}

// Archive stores decoded messages in a SQLite3 database.
type Archive struct {
	db *sql.DB
}

// Open opens or creates the database at path and ensures the schema exists.
func Open(path string) (*Archive, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("archive: create %s: %w", dir, err)
		}
	}
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("archive: open %s: %w", path, err)
	}
	if _, err := db.Exec(initSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("archive: init %s: %w", path, err)
	}
	return &Archive{db: db}, nil
}

func (a *Archive) Close() error {
	return a.db.Close()
}

// Put inserts e, replacing any entry with the same key.
func (a *Archive) Put(e Entry) error {
	const q = `INSERT OR REPLACE INTO messages (
		team,
		seq,
		msgnum,
		type,
		span,
		raw,
		json
	) VALUES (?, ?, ?, ?, ?, ?, ?);`

	_, err := a.db.Exec(q, e.Team.String(), int64(e.Seq), e.MsgNum, int(e.Type), e.Span, e.Raw, string(e.JSON))
	if err != nil {
		return fmt.Errorf("archive: put %s/%s/%d: %w", e.Team, fragment.FormatSequence(e.Seq), e.MsgNum, err)
	}
	return nil
}

func (a *Archive) Get(team fragment.TeamID, seq uint32, msgnum int) (Entry, error) {
	const q = `SELECT team, seq, msgnum, type, span, raw, json FROM messages
		WHERE team = ? AND seq = ? AND msgnum = ?;`

	e, err := scanEntry(a.db.QueryRow(q, team.String(), int64(seq), msgnum))
	if errors.Is(err, sql.ErrNoRows) {
		return Entry{}, fmt.Errorf("%w: %s/%s/%d", ErrNotFound, team, fragment.FormatSequence(seq), msgnum)
	}
	if err != nil {
		return Entry{}, fmt.Errorf("archive: get: %w", err)
	}
	return e, nil
}

// ListTeam returns every archived message of team in chain order.
func (a *Archive) ListTeam(team fragment.TeamID) ([]Entry, error) {
	const q = `SELECT team, seq, msgnum, type, span, raw, json FROM messages
		WHERE team = ? ORDER BY seq, msgnum;`

	rows, err := a.db.Query(q, team.String())
	if err != nil {
		return nil, fmt.Errorf("archive: list %s: %w", team, err)
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("archive: list %s: %w", team, err)
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("archive: list %s: %w", team, err)
	}
	return out, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanEntry(s scanner) (Entry, error) {
	var (
		e       Entry
		team    string
		seq     int64
		msgType int
		doc     string
	)
	if err := s.Scan(&team, &seq, &e.MsgNum, &msgType, &e.Span, &e.Raw, &doc); err != nil {
		return Entry{}, err
	}
	id, err := fragment.ParseTeamID(team)
	if err != nil {
		return Entry{}, err
	}
	e.Team = id
	e.Seq = uint32(seq)
	e.Type = message.Type(msgType)
	e.JSON = []byte(doc)
	return e, nil
}
