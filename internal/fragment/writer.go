package fragment

import (
	"fmt"

	"github.com/danmuck/succinct/internal/message"
	"github.com/rs/zerolog/log"
)

// WriteResult describes the fragments touched by one Write.
type WriteResult struct {
	First     uint32
	Last      uint32
	Fragments int
	Headers   int
	Bytes     int
}

// Writer appends serialized messages to a team's fragment chain.
type Writer struct {
	store Store
	team  TeamID
	mtu   int
}

func NewWriter(store Store, team TeamID, mtu int) (*Writer, error) {
	if mtu <= HeaderLen || mtu > MaxMTU {
		return nil, fmt.Errorf("%w: %d not in (%d, %d]", ErrInvalidMTU, mtu, HeaderLen, MaxMTU)
	}
	return &Writer{store: store, team: team, mtu: mtu}, nil
}

func (w *Writer) MTU() int {
	return w.mtu
}

// Write appends msg starting at the last existing fragment at or after start.
// Fragments written before a failure stay on disk.
func (w *Writer) Write(start uint32, msg []byte) (WriteResult, error) {
	var res WriteResult
	if len(msg) == 0 {
		return res, ErrEmptyMessage
	}
	if len(msg) > message.MaxLen {
		return res, fmt.Errorf("%w: %d bytes", ErrMessageTooLong, len(msg))
	}

	seq, err := w.resume(start)
	if err != nil {
		return res, err
	}

	var cur File
	defer func() {
		if cur != nil {
			_ = cur.Close()
		}
	}()

	cur, size, err := w.open(seq)
	if err != nil {
		return res, err
	}
	for {
		sealed := false
		if size >= HeaderLen {
			raw, err := ReadOffsetByte(cur)
			if err != nil {
				return res, fmt.Errorf("fragment %s: %w", FormatSequence(seq), err)
			}
			sealed = raw == OffsetNone
		}
		if !sealed && size < int64(w.mtu) {
			break
		}
		_ = cur.Close()
		cur = nil
		if seq == MaxSequence {
			return res, ErrSequenceExhausted
		}
		seq++
		if cur, size, err = w.open(seq); err != nil {
			return res, err
		}
	}

	if size > 0 && size <= HeaderLen {
		return res, fmt.Errorf("fragment %s: %d bytes: %w", FormatSequence(seq), size, ErrFragmentCorrupt)
	}

	res.First, res.Last, res.Fragments = seq, seq, 1
	if size == 0 {
		if err := w.writeHeader(cur, seq, 0); err != nil {
			return res, err
		}
		res.Headers++
		size = HeaderLen
	}

	remaining := len(msg)
	available := w.mtu - int(size)
	for {
		n := min(remaining, available)
		from := len(msg) - remaining
		log.Debug().Str("fragment", FormatSequence(seq)).Int("bytes", n).Msg("writing message bytes")
		if err := writeAll(cur, msg[from:from+n]); err != nil {
			return res, fmt.Errorf("fragment %s: %w", FormatSequence(seq), err)
		}
		remaining -= n
		available -= n
		res.Bytes += n

		if remaining == 0 {
			break
		}
		if available > 0 {
			continue
		}

		if err := finish(cur); err != nil {
			cur = nil
			return res, fmt.Errorf("fragment %s: %w", FormatSequence(seq), err)
		}
		cur = nil
		if seq == MaxSequence {
			return res, ErrSequenceExhausted
		}
		seq++
		if cur, size, err = w.open(seq); err != nil {
			return res, err
		}
		if size != 0 {
			return res, fmt.Errorf("fragment %s: unexpected existing file: %w", FormatSequence(seq), ErrFragmentCorrupt)
		}
		available = w.mtu - HeaderLen
		offset := min(remaining, available, int(OffsetNone))
		if err := w.writeHeader(cur, seq, uint8(offset)); err != nil {
			return res, err
		}
		res.Headers++
		res.Fragments++
		res.Last = seq
	}

	err = finish(cur)
	cur = nil
	if err != nil {
		return res, fmt.Errorf("fragment %s: %w", FormatSequence(seq), err)
	}
	return res, nil
}

// resume advances seq while the following fragment already exists.
func (w *Writer) resume(seq uint32) (uint32, error) {
	for seq < MaxSequence {
		ok, err := w.store.Exists(seq + 1)
		if err != nil {
			return 0, err
		}
		if !ok {
			break
		}
		seq++
	}
	return seq, nil
}

func (w *Writer) open(seq uint32) (File, int64, error) {
	f, err := w.store.OpenAppend(seq)
	if err != nil {
		return nil, 0, err
	}
	size, err := f.Size()
	if err != nil {
		_ = f.Close()
		return nil, 0, fmt.Errorf("fragment %s: size: %w", FormatSequence(seq), err)
	}
	return f, size, nil
}

func (w *Writer) writeHeader(f File, seq uint32, offset uint8) error {
	log.Debug().Str("fragment", FormatSequence(seq)).Uint8("offset", offset).Msg("writing fragment header")
	if err := WriteHeader(f, Header{Team: w.team, Sequence: seq, Offset: offset}); err != nil {
		return fmt.Errorf("fragment %s: write header: %w", FormatSequence(seq), err)
	}
	return nil
}

func writeAll(f File, b []byte) error {
	n, err := f.Write(b)
	if err != nil {
		return err
	}
	if n != len(b) {
		return ErrShortWrite
	}
	return nil
}

func finish(f File) error {
	if err := f.Sync(); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
