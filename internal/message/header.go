package message

import (
	"encoding/binary"
	"fmt"
)

const (
	TypeLen    = 1
	LengthLen  = 2
	HeaderLen  = TypeLen + LengthLen
	MaxPayload = 65535
	MaxLen     = HeaderLen + MaxPayload
)

// Header precedes every message payload on the wire.
type Header struct {
	Type   Type
	Length uint16
}

// Size is the on-wire size of the message, header included.
func (h Header) Size() int {
	return HeaderLen + int(h.Length)
}

func EncodeHeader(h Header) []byte {
	buf := make([]byte, HeaderLen)
	buf[0] = byte(h.Type)
	binary.BigEndian.PutUint16(buf[TypeLen:], h.Length)
	return buf
}

func DecodeHeader(b []byte) (Header, error) {
	if len(b) < HeaderLen {
		return Header{}, fmt.Errorf("%w: %d bytes", ErrMalformedHeader, len(b))
	}
	return Header{
		Type:   Type(b[0]),
		Length: binary.BigEndian.Uint16(b[TypeLen:HeaderLen]),
	}, nil
}

// ParseHeader decodes as much of a header as b holds. complete is false when
// only the type byte, or the type and one length byte, are present.
func ParseHeader(b []byte) (h Header, complete bool, err error) {
	switch {
	case len(b) == 0:
		return Header{}, false, fmt.Errorf("%w: no bytes", ErrMalformedHeader)
	case len(b) < HeaderLen:
		return Header{Type: Type(b[0])}, false, nil
	}
	h, err = DecodeHeader(b)
	return h, err == nil, err
}
