package fragment

import "errors"

var (
	ErrShortRead         = errors.New("fragment: short read")
	ErrShortWrite        = errors.New("fragment: short write")
	ErrInvalidSequence   = errors.New("fragment: invalid sequence number")
	ErrInvalidTeamID     = errors.New("fragment: invalid team id")
	ErrInvalidMTU        = errors.New("fragment: invalid mtu")
	ErrSequenceExhausted = errors.New("fragment: reached maximum sequence number")
	ErrFragmentMissing   = errors.New("fragment: fragment missing from chain")
	ErrFragmentCorrupt   = errors.New("fragment: existing fragment has invalid length")
	ErrFrameOverlap      = errors.New("fragment: next message begins before current one finishes")
	ErrEmptyFragment     = errors.New("fragment: fragment with no data")
	ErrNoData            = errors.New("fragment: could not read any message bytes")
	ErrNoMessageStart    = errors.New("fragment: no message starts in fragment")
	ErrMessageIndex      = errors.New("fragment: message index not found in fragment")
	ErrEmptyMessage      = errors.New("fragment: message has zero length")
	ErrMessageTooLong    = errors.New("fragment: message too long")
	ErrFragmentBusy      = errors.New("fragment: fragment locked by another writer")
)
