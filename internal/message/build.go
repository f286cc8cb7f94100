package message

import "fmt"

const (
	// MaxChatText leaves room for member, time and the terminating NUL.
	MaxChatText      = MaxPayload - 1 - 4 - 1
	MaxLocations     = MaxPayload / LocationRecordLen
	MaxMagpiFormData = MaxPayload - 1 - 4
)

func NewTeamStart(epochMs int64, name string) (TeamStart, error) {
	if epochMs < 0 {
		return TeamStart{}, fmt.Errorf("%w: %d", ErrTimeRange, epochMs)
	}
	if err := checkString(name); err != nil {
		return TeamStart{}, err
	}
	if len(name) > MaxPayload-8-1 {
		return TeamStart{}, fmt.Errorf("%w: name is %d bytes", ErrTooLong, len(name))
	}
	return TeamStart{Time: epochMs, Name: name}, nil
}

func NewTeamEnd(epochMs int64) (TeamEnd, error) {
	if epochMs < 0 {
		return TeamEnd{}, fmt.Errorf("%w: %d", ErrTimeRange, epochMs)
	}
	return TeamEnd{Time: epochMs}, nil
}

func NewMemberJoin(member uint8, rel uint32, name, id string) (MemberJoin, error) {
	if err := checkString(name); err != nil {
		return MemberJoin{}, fmt.Errorf("name: %w", err)
	}
	if err := checkString(id); err != nil {
		return MemberJoin{}, fmt.Errorf("id: %w", err)
	}
	if len(name)+len(id) > MaxPayload-5-2 {
		return MemberJoin{}, fmt.Errorf("%w: name and id are %d bytes", ErrTooLong, len(name)+len(id))
	}
	return MemberJoin{Member: member, Time: rel, Name: name, ID: id}, nil
}

func NewMemberPart(member uint8, rel uint32) MemberPart {
	return MemberPart{Member: member, Time: rel}
}

func NewLocation(records ...LocationRecord) (Location, error) {
	if len(records) == 0 {
		return Location{}, fmt.Errorf("%w: no location records", ErrEmptyPayload)
	}
	if len(records) > MaxLocations {
		return Location{}, fmt.Errorf("%w: %d location records", ErrTooLong, len(records))
	}
	for _, r := range records {
		if err := r.validate(); err != nil {
			return Location{}, err
		}
	}
	return Location{Records: append([]LocationRecord(nil), records...)}, nil
}

// NewChat builds a chat message from member at rel (100 ms units).
func NewChat(member uint8, rel uint32, text string) (Chat, error) {
	if text == "" {
		return Chat{}, ErrEmptyText
	}
	if err := checkString(text); err != nil {
		return Chat{}, err
	}
	if len(text) > MaxChatText {
		return Chat{}, fmt.Errorf("%w: %d bytes", ErrTooLong, len(text))
	}
	return Chat{Member: member, Time: rel, Text: text}, nil
}

func NewMagpiForm(member uint8, rel uint32, data []byte) (MagpiForm, error) {
	if len(data) == 0 {
		return MagpiForm{}, ErrEmptyPayload
	}
	if len(data) > MaxMagpiFormData {
		return MagpiForm{}, fmt.Errorf("%w: %d bytes", ErrTooLong, len(data))
	}
	return MagpiForm{Member: member, Time: rel, Data: append([]byte(nil), data...)}, nil
}
