package spool

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/danmuck/succinct/internal/fragment"
	"github.com/rs/zerolog/log"
)

var ErrTooSmall = errors.New("spool: too small to be a valid fragment")

// Dir returns the directory new fragments of team are placed in.
func Dir(root string, team fragment.TeamID) string {
	return filepath.Join(root, team.String(), "fragments", "new")
}

// Place moves the fragment file src into <root>/<team>/fragments/new/<seq>,
// reading team and sequence from its header, and returns the new path.
func Place(src, root string) (string, error) {
	f, err := os.Open(src)
	if err != nil {
		return "", fmt.Errorf("spool: open %s: %w", src, err)
	}
	defer f.Close()

	fi, err := f.Stat()
	if err != nil {
		return "", fmt.Errorf("spool: stat %s: %w", src, err)
	}
	if fi.Size() <= fragment.HeaderLen {
		return "", fmt.Errorf("%s: %d bytes: %w", src, fi.Size(), ErrTooSmall)
	}

	h, err := fragment.ReadHeader(f)
	if err != nil {
		return "", fmt.Errorf("spool: %s: %w", src, err)
	}
	first, ok, err := fragment.FirstMessageOffset(f)
	if err != nil {
		return "", fmt.Errorf("spool: %s: %w", src, err)
	}

	event := log.Info().
		Str("team", h.Team.String()).
		Str("seq", fragment.FormatSequence(h.Sequence)).
		Uint8("raw_offset", h.Offset)
	if ok {
		event = event.Int64("first_offset", first)
	}
	event.Msg("placing fragment")

	dir := Dir(root, h.Team)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("spool: create %s: %w", dir, err)
	}
	dst := filepath.Join(dir, fragment.FormatSequence(h.Sequence))
	if err := os.Rename(src, dst); err != nil {
		return "", fmt.Errorf("spool: move %s: %w", dst, err)
	}
	return dst, nil
}
