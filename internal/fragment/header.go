package fragment

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

const (
	TeamLen   = 8
	SeqLen    = 4
	OffsetLen = 1
	HeaderLen = TeamLen + SeqLen + OffsetLen

	// OffsetNone marks a fragment in which no message starts. The writer never
	// appends to a fragment carrying it.
	OffsetNone uint8 = 255

	MaxMTU                 = 65535
	MaxMessagesPerFragment = 99999
	offsetByteAt           = TeamLen + SeqLen
	sequenceAt             = TeamLen
)

// Header is the fixed 13-byte fragment header.
type Header struct {
	Team     TeamID
	Sequence uint32
	Offset   uint8
}

// HasMessageStart reports whether the offset byte names a real distance.
func (h Header) HasMessageStart() bool {
	return h.Offset != OffsetNone
}

func EncodeHeader(h Header) []byte {
	buf := make([]byte, HeaderLen)
	copy(buf[0:TeamLen], h.Team[:])
	binary.BigEndian.PutUint32(buf[sequenceAt:offsetByteAt], h.Sequence)
	buf[offsetByteAt] = h.Offset
	return buf
}

func DecodeHeader(b []byte) (Header, error) {
	if len(b) < HeaderLen {
		return Header{}, fmt.Errorf("decode header: %d bytes: %w", len(b), ErrShortRead)
	}
	var h Header
	copy(h.Team[:], b[0:TeamLen])
	h.Sequence = binary.BigEndian.Uint32(b[sequenceAt:offsetByteAt])
	h.Offset = b[offsetByteAt]
	return h, nil
}

// WriteHeader writes h at the current position of w.
func WriteHeader(w io.Writer, h Header) error {
	n, err := w.Write(EncodeHeader(h))
	if err != nil {
		return err
	}
	if n != HeaderLen {
		return ErrShortWrite
	}
	return nil
}

func ReadHeader(r io.ReaderAt) (Header, error) {
	buf := make([]byte, HeaderLen)
	if err := readFullAt(r, buf, 0); err != nil {
		return Header{}, fmt.Errorf("read header: %w", err)
	}
	return DecodeHeader(buf)
}

func ReadTeamID(r io.ReaderAt) (TeamID, error) {
	var team TeamID
	if err := readFullAt(r, team[:], 0); err != nil {
		return TeamID{}, fmt.Errorf("read team id: %w", err)
	}
	return team, nil
}

func ReadSequence(r io.ReaderAt) (uint32, error) {
	var buf [SeqLen]byte
	if err := readFullAt(r, buf[:], sequenceAt); err != nil {
		return 0, fmt.Errorf("read sequence number: %w", err)
	}
	return binary.BigEndian.Uint32(buf[:]), nil
}

func ReadOffsetByte(r io.ReaderAt) (uint8, error) {
	var buf [OffsetLen]byte
	if err := readFullAt(r, buf[:], offsetByteAt); err != nil {
		return 0, fmt.Errorf("read offset: %w", err)
	}
	return buf[0], nil
}

// FirstMessageOffset returns the absolute position of the first message that
// starts in the fragment. ok is false when the offset byte is OffsetNone or
// when nothing has been written at the named position yet. A usable offset
// does not guarantee a complete message follows it.
func FirstMessageOffset(r io.ReaderAt) (pos int64, ok bool, err error) {
	raw, err := ReadOffsetByte(r)
	if err != nil {
		return 0, false, err
	}
	if raw == OffsetNone {
		return 0, false, nil
	}
	pos = int64(HeaderLen) + int64(raw)
	var probe [1]byte
	n, err := r.ReadAt(probe[:], pos)
	if n == 1 {
		return pos, true, nil
	}
	if err == nil || errors.Is(err, io.EOF) {
		return 0, false, nil
	}
	return 0, false, fmt.Errorf("probe offset %d: %w", pos, err)
}

// readFullAt fills buf from off or fails with ErrShortRead.
func readFullAt(r io.ReaderAt, buf []byte, off int64) error {
	n, err := r.ReadAt(buf, off)
	if n == len(buf) {
		return nil
	}
	if err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return fmt.Errorf("%d of %d bytes at %d: %w", n, len(buf), off, ErrShortRead)
}
