package pipeline

import (
	"errors"
	"fmt"

	"github.com/danmuck/succinct/internal/archive"
	"github.com/danmuck/succinct/internal/export"
	"github.com/danmuck/succinct/internal/fragment"
	"github.com/danmuck/succinct/internal/message"
	"github.com/danmuck/succinct/internal/observability"
	"github.com/rs/zerolog/log"
)

// Result is one reassembled message and what was made of it.
type Result struct {
	Seq     uint32
	MsgNum  int
	Span    int
	Raw     []byte
	Message message.Message
	JSON    []byte
}

// Processor turns a team's fragments into decoded, exported messages.
type Processor struct {
	team    fragment.TeamID
	reader  *fragment.Reader
	archive *archive.Archive
}

// New returns a Processor reading from store. arc may be nil.
func New(team fragment.TeamID, store fragment.Store, arc *archive.Archive) *Processor {
	return &Processor{team: team, reader: fragment.NewReader(store), archive: arc}
}

// Process reassembles message n of fragment seq and decodes it. When only
// decoding fails, the returned Result still carries Raw.
func (p *Processor) Process(seq uint32, n int) (Result, error) {
	ex, err := p.reader.Extract(seq, n)
	observability.RecordExtraction(err == nil)
	if err != nil {
		return Result{}, err
	}
	observability.RecordSpan(ex.Span)
	return p.Decode(seq, n, ex)
}

// Decode parses an extracted message, renders its JSON and archives it.
func (p *Processor) Decode(seq uint32, n int, ex fragment.Extraction) (Result, error) {
	res := Result{Seq: seq, MsgNum: n, Span: ex.Span, Raw: ex.Bytes}

	m, err := message.Parse(ex.Bytes)
	observability.RecordDecode(typeLabel(ex.Bytes), err == nil)
	if err != nil {
		return res, fmt.Errorf("message %s/%d: %w", fragment.FormatSequence(seq), n, err)
	}
	res.Message = m

	doc, err := export.JSON(p.team, m)
	if err != nil {
		return res, err
	}
	res.JSON = doc

	if p.archive != nil {
		err := p.archive.Put(archive.Entry{
			Team:   p.team,
			Seq:    seq,
			MsgNum: n,
			Type:   m.Type(),
			Span:   ex.Span,
			Raw:    ex.Bytes,
			JSON:   doc,
		})
		if err != nil {
			return res, err
		}
	}
	return res, nil
}

// Rebuild decodes every message starting at or after fragment start and
// hands each to fn. Messages that fail to decode are logged and skipped;
// reassembly failures stop the walk.
func (p *Processor) Rebuild(start uint32, fn func(Result) error) (decoded, skipped int, err error) {
	_, err = p.reader.Scan(start, func(seq uint32, n int, ex fragment.Extraction) error {
		observability.RecordExtraction(true)
		observability.RecordSpan(ex.Span)
		res, err := p.Decode(seq, n, ex)
		if IsDecodeError(err) {
			log.Warn().Err(err).Str("seq", fragment.FormatSequence(seq)).Int("msgnum", n).Msg("skipping undecodable message")
			skipped++
			return nil
		}
		if err != nil {
			return err
		}
		decoded++
		return fn(res)
	})
	if err != nil {
		observability.RecordExtraction(false)
	}
	return decoded, skipped, err
}

// IsDecodeError reports whether err came from parsing message bytes rather
// than from reassembly, export or the archive.
func IsDecodeError(err error) bool {
	return errors.Is(err, message.ErrMalformedHeader) ||
		errors.Is(err, message.ErrMalformedPayload) ||
		errors.Is(err, message.ErrUnknownType)
}

func typeLabel(b []byte) string {
	if len(b) == 0 {
		return "empty"
	}
	return message.Type(b[0]).String()
}
