package message

import (
	"encoding/binary"
	"fmt"
)

// Serialize encodes m with its 3-byte header. It enforces the same rules
// Parse checks, so every serialized message parses back to an equal value.
func Serialize(m Message) ([]byte, error) {
	if m == nil {
		return nil, ErrEmptyPayload
	}
	buf := make([]byte, HeaderLen, 64)
	buf, err := appendPayload(buf, m)
	if err != nil {
		return nil, fmt.Errorf("serialize %s: %w", m.Type(), err)
	}
	payload := len(buf) - HeaderLen
	if payload > MaxPayload {
		return nil, fmt.Errorf("serialize %s: %w: %d byte payload", m.Type(), ErrTooLong, payload)
	}
	copy(buf, EncodeHeader(Header{Type: m.Type(), Length: uint16(payload)}))
	return buf, nil
}

// EncodeRaw frames an arbitrary payload under type t without validating it.
func EncodeRaw(t Type, payload []byte) ([]byte, error) {
	if len(payload) > MaxPayload {
		return nil, fmt.Errorf("%w: %d byte payload", ErrTooLong, len(payload))
	}
	buf := EncodeHeader(Header{Type: t, Length: uint16(len(payload))})
	return append(buf, payload...), nil
}

func appendPayload(dst []byte, m Message) ([]byte, error) {
	switch m := m.(type) {
	case TeamStart:
		if m.Time < 0 {
			return nil, fmt.Errorf("%w: %d", ErrTimeRange, m.Time)
		}
		dst = appendUint64(dst, uint64(m.Time))
		return appendCString(dst, m.Name)
	case TeamEnd:
		if m.Time < 0 {
			return nil, fmt.Errorf("%w: %d", ErrTimeRange, m.Time)
		}
		return appendUint64(dst, uint64(m.Time)), nil
	case MemberJoin:
		name, err := appendCString(appendMember(dst, m.Member, m.Time), m.Name)
		if err != nil {
			return nil, err
		}
		return appendCString(name, m.ID)
	case MemberPart:
		return appendMember(dst, m.Member, m.Time), nil
	case Location:
		if len(m.Records) == 0 {
			return nil, ErrEmptyPayload
		}
		var err error
		for _, r := range m.Records {
			if dst, err = appendLocation(dst, r); err != nil {
				return nil, err
			}
		}
		return dst, nil
	case Chat:
		if m.Text == "" {
			return nil, ErrEmptyText
		}
		return appendCString(appendMember(dst, m.Member, m.Time), m.Text)
	case MagpiForm:
		if len(m.Data) == 0 {
			return nil, ErrEmptyPayload
		}
		return append(appendMember(dst, m.Member, m.Time), m.Data...), nil
	default:
		return nil, fmt.Errorf("%w: %T", ErrUnknownType, m)
	}
}

func appendMember(dst []byte, member uint8, rel uint32) []byte {
	return appendUint32(append(dst, member), rel)
}

func appendUint32(dst []byte, v uint32) []byte {
	return binary.BigEndian.AppendUint32(dst, v)
}

func appendUint64(dst []byte, v uint64) []byte {
	return binary.BigEndian.AppendUint64(dst, v)
}
