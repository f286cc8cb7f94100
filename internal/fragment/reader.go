package fragment

import (
	"errors"
	"fmt"
	"io"

	"github.com/danmuck/succinct/internal/message"
	"github.com/rs/zerolog/log"
)

// Extraction is one reassembled message. Bytes is nil in count-only mode.
type Extraction struct {
	Bytes  []byte
	Length int
	Span   int
}

// Reader reassembles messages that may be spread over several fragments.
type Reader struct {
	store Store
}

func NewReader(store Store) *Reader {
	return &Reader{store: store}
}

// Extract returns the bytes of the n-th message (1-based) whose header starts
// in fragment seq.
func (r *Reader) Extract(seq uint32, n int) (Extraction, error) {
	return r.extract(seq, n, true)
}

// Span walks the same chain as Extract without copying message bytes.
func (r *Reader) Span(seq uint32, n int) (Extraction, error) {
	return r.extract(seq, n, false)
}

func (r *Reader) extract(seq uint32, n int, materialize bool) (Extraction, error) {
	c := &chain{store: r.store, seq: seq}
	defer c.close()

	if err := c.open(); err != nil {
		return Extraction{}, err
	}
	off, err := OffsetOfMessage(c.f, n)
	if err != nil {
		return Extraction{}, fmt.Errorf("fragment %s: message %d: %w", c.name(), n, err)
	}

	var (
		hdr      [message.HeaderLen]byte
		read     int
		firstOff int64
		hasFirst bool
	)
	for {
		more, err := readAvailable(c.f, hdr[read:], off)
		if err != nil {
			return Extraction{}, fmt.Errorf("fragment %s: %w", c.name(), err)
		}
		if more == 0 {
			return Extraction{}, fmt.Errorf("fragment %s: %w", c.name(), ErrNoData)
		}
		read += more
		off += int64(more)
		if read == len(hdr) {
			break
		}

		if err := c.next(); err != nil {
			return Extraction{}, err
		}
		off = HeaderLen
		if firstOff, hasFirst, err = FirstMessageOffset(c.f); err != nil {
			return Extraction{}, fmt.Errorf("fragment %s: %w", c.name(), err)
		}
		if hasFirst && off+int64(len(hdr)-read) > firstOff {
			return Extraction{}, c.overlap(firstOff)
		}
	}

	h, err := message.DecodeHeader(hdr[:])
	if err != nil {
		return Extraction{}, err
	}
	total := h.Size()

	var buf []byte
	if materialize {
		buf = make([]byte, total)
		copy(buf, hdr[:])
	}

	for read < total {
		if hasFirst && off+int64(total-read) > firstOff {
			return Extraction{}, c.overlap(firstOff)
		}

		var more int
		if materialize {
			if more, err = readAvailable(c.f, buf[read:], off); err != nil {
				return Extraction{}, fmt.Errorf("fragment %s: %w", c.name(), err)
			}
		} else {
			size, err := c.f.Size()
			if err != nil {
				return Extraction{}, fmt.Errorf("fragment %s: size: %w", c.name(), err)
			}
			more = int(max(0, min(size-off, int64(total-read))))
		}
		if more == 0 && off == HeaderLen {
			log.Warn().Str("fragment", c.name()).Msg("fragment with no data")
			return Extraction{}, fmt.Errorf("fragment %s: %w", c.name(), ErrEmptyFragment)
		}

		read += more
		off += int64(more)
		if read == total {
			break
		}

		if err := c.next(); err != nil {
			return Extraction{}, err
		}
		off = HeaderLen
		if firstOff, hasFirst, err = FirstMessageOffset(c.f); err != nil {
			return Extraction{}, fmt.Errorf("fragment %s: %w", c.name(), err)
		}
	}

	return Extraction{Bytes: buf, Length: total, Span: c.span}, nil
}

// OffsetOfMessage returns the position of the n-th message header starting in
// f. Every header before it must be complete within f.
func OffsetOfMessage(f File, n int) (int64, error) {
	if n <= 0 {
		return 0, fmt.Errorf("%w: %d", ErrMessageIndex, n)
	}
	off, ok, err := FirstMessageOffset(f)
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, ErrNoMessageStart
	}
	if n == 1 {
		return off, nil
	}

	size, err := f.Size()
	if err != nil {
		return 0, err
	}
	for ; n > 1; n-- {
		if off >= size {
			return 0, fmt.Errorf("%w: ran past end of fragment", ErrMessageIndex)
		}
		h, complete, err := readMessageHeader(f, off)
		if err != nil {
			return 0, err
		}
		if !complete {
			return 0, fmt.Errorf("%w: header at %d is fragmented", ErrMessageIndex, off)
		}
		off += int64(h.Size())
	}
	return off, nil
}

// MessagesStarted counts the message headers that begin in f, including a
// trailing header that continues into the next fragment.
func MessagesStarted(f File) (int, error) {
	off, ok, err := FirstMessageOffset(f)
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, nil
	}
	size, err := f.Size()
	if err != nil {
		return 0, err
	}

	msgs := 0
	for off < size {
		msgs++
		h, complete, err := readMessageHeader(f, off)
		if err != nil {
			return 0, err
		}
		if !complete {
			return msgs, nil
		}
		off += int64(h.Size())
	}
	return msgs, nil
}

// readMessageHeader reads the header at off; complete is false when it
// continues into the next fragment.
func readMessageHeader(f io.ReaderAt, off int64) (message.Header, bool, error) {
	var buf [message.HeaderLen]byte
	n, err := readAvailable(f, buf[:], off)
	if err != nil {
		return message.Header{}, false, err
	}
	if n < 1 {
		return message.Header{}, false, fmt.Errorf("message header at %d: %w", off, ErrShortRead)
	}
	return message.ParseHeader(buf[:n])
}

// readAvailable reads up to len(buf) bytes at off, treating EOF as a short count.
func readAvailable(r io.ReaderAt, buf []byte, off int64) (int, error) {
	n, err := r.ReadAt(buf, off)
	if err != nil && !errors.Is(err, io.EOF) {
		return n, err
	}
	return n, nil
}

// chain walks fragments forward by sequence number.
type chain struct {
	store Store
	seq   uint32
	f     File
	span  int
}

func (c *chain) name() string {
	return FormatSequence(c.seq)
}

func (c *chain) open() error {
	f, err := c.store.Open(c.seq)
	if err != nil {
		return err
	}
	c.f = f
	c.span++
	return nil
}

func (c *chain) next() error {
	if c.seq == MaxSequence {
		return fmt.Errorf("fragment %s: %w", c.name(), ErrSequenceExhausted)
	}
	c.close()
	c.seq++
	return c.open()
}

func (c *chain) close() {
	if c.f != nil {
		_ = c.f.Close()
		c.f = nil
	}
}

func (c *chain) overlap(firstOff int64) error {
	log.Warn().Str("fragment", c.name()).Int64("first_offset", firstOff).Msg("next message begins before current one finishes")
	return fmt.Errorf("fragment %s: %w", c.name(), ErrFrameOverlap)
}
