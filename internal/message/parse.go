package message

import (
	"encoding/binary"
	"fmt"
	"math"
)

// Parse decodes one complete message, header included. Any violation fails
// the whole message.
func Parse(b []byte) (Message, error) {
	h, err := DecodeHeader(b)
	if err != nil {
		return nil, err
	}
	if len(b) != h.Size() {
		return nil, fmt.Errorf("%w: %d bytes, header declares %d", ErrMalformedHeader, len(b), h.Size())
	}

	p := b[HeaderLen:]
	var m Message
	switch h.Type {
	case TypeTeamStart:
		m, err = parseTeamStart(p)
	case TypeTeamEnd:
		m, err = parseTeamEnd(p)
	case TypeMemberJoin:
		m, err = parseMemberJoin(p)
	case TypeMemberPart:
		m, err = parseMemberPart(p)
	case TypeLocation:
		m, err = parseLocation(p)
	case TypeChat:
		m, err = parseChat(p)
	case TypeMagpiForm:
		m, err = parseMagpiForm(p)
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnknownType, uint8(h.Type))
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrMalformedPayload, h.Type, err)
	}
	return m, nil
}

func parseTeamStart(p []byte) (Message, error) {
	if len(p) < 9 {
		return nil, fmt.Errorf("%d bytes", len(p))
	}
	t, err := readEpoch(p[0:8])
	if err != nil {
		return nil, err
	}
	s, err := splitStrings(p[8:], 1)
	if err != nil {
		return nil, err
	}
	return TeamStart{Time: t, Name: s[0]}, nil
}

func parseTeamEnd(p []byte) (Message, error) {
	if len(p) != 8 {
		return nil, fmt.Errorf("%d bytes", len(p))
	}
	t, err := readEpoch(p)
	if err != nil {
		return nil, err
	}
	return TeamEnd{Time: t}, nil
}

// readEpoch decodes an 8-byte epoch-ms time. Values with the top bit set
// cannot be serialized again.
func readEpoch(b []byte) (int64, error) {
	v := binary.BigEndian.Uint64(b)
	if v > math.MaxInt64 {
		return 0, fmt.Errorf("%w: %d", ErrTimeRange, v)
	}
	return int64(v), nil
}

func parseMemberJoin(p []byte) (Message, error) {
	if len(p) < 7 {
		return nil, fmt.Errorf("%d bytes", len(p))
	}
	s, err := splitStrings(p[5:], 2)
	if err != nil {
		return nil, err
	}
	return MemberJoin{Member: p[0], Time: readUint32(p[1:5]), Name: s[0], ID: s[1]}, nil
}

func parseMemberPart(p []byte) (Message, error) {
	if len(p) != 5 {
		return nil, fmt.Errorf("%d bytes", len(p))
	}
	return MemberPart{Member: p[0], Time: readUint32(p[1:5])}, nil
}

func parseLocation(p []byte) (Message, error) {
	if len(p) == 0 || len(p)%LocationRecordLen != 0 {
		return nil, fmt.Errorf("%d bytes is not a positive multiple of %d", len(p), LocationRecordLen)
	}
	records := make([]LocationRecord, 0, len(p)/LocationRecordLen)
	for i := 0; i < len(p); i += LocationRecordLen {
		records = append(records, decodeLocation(p[i:i+LocationRecordLen]))
	}
	return Location{Records: records}, nil
}

func parseChat(p []byte) (Message, error) {
	if len(p) < 7 {
		return nil, fmt.Errorf("%d bytes", len(p))
	}
	s, err := splitStrings(p[5:], 1)
	if err != nil {
		return nil, err
	}
	return Chat{Member: p[0], Time: readUint32(p[1:5]), Text: s[0]}, nil
}

func parseMagpiForm(p []byte) (Message, error) {
	if len(p) < 6 {
		return nil, fmt.Errorf("%d bytes", len(p))
	}
	data := make([]byte, len(p)-5)
	copy(data, p[5:])
	return MagpiForm{Member: p[0], Time: readUint32(p[1:5]), Data: data}, nil
}

func readUint32(b []byte) uint32 {
	return binary.BigEndian.Uint32(b)
}
