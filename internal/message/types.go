package message

import (
	"fmt"
	"math"
	"time"
)

// Type is the first byte of every message header.
type Type uint8

const (
	TypeTeamStart  Type = 0
	TypeTeamEnd    Type = 1
	TypeMemberJoin Type = 2
	TypeMemberPart Type = 3
	TypeLocation   Type = 4
	TypeChat       Type = 5
	TypeMagpiForm  Type = 6
)

// RelTimeMax is the largest relative time, in 100 ms units, a message can carry.
const RelTimeMax = math.MaxUint32

func (t Type) String() string {
	switch t {
	case TypeTeamStart:
		return "start"
	case TypeTeamEnd:
		return "end"
	case TypeMemberJoin:
		return "join"
	case TypeMemberPart:
		return "part"
	case TypeLocation:
		return "location"
	case TypeChat:
		return "chat"
	case TypeMagpiForm:
		return "magpi-form"
	default:
		return fmt.Sprintf("type(%d)", uint8(t))
	}
}

// Message is one of TeamStart, TeamEnd, MemberJoin, MemberPart, Location,
// Chat or MagpiForm.
type Message interface {
	Type() Type
	isMessage()
}

// TeamStart opens a team. Time is epoch milliseconds.
type TeamStart struct {
	Time int64
	Name string
}

// TeamEnd closes a team. Time is epoch milliseconds.
type TeamEnd struct {
	Time int64
}

type MemberJoin struct {
	Member uint8
	Time   uint32
	Name   string
	ID     string
}

type MemberPart struct {
	Member uint8
	Time   uint32
}

type Location struct {
	Records []LocationRecord
}

type Chat struct {
	Member uint8
	Time   uint32
	Text   string
}

// MagpiForm carries an opaque form submission.
type MagpiForm struct {
	Member uint8
	Time   uint32
	Data   []byte
}

func (TeamStart) Type() Type  { return TypeTeamStart }
func (TeamEnd) Type() Type    { return TypeTeamEnd }
func (MemberJoin) Type() Type { return TypeMemberJoin }
func (MemberPart) Type() Type { return TypeMemberPart }
func (Location) Type() Type   { return TypeLocation }
func (Chat) Type() Type       { return TypeChat }
func (MagpiForm) Type() Type  { return TypeMagpiForm }

func (TeamStart) isMessage()  {}
func (TeamEnd) isMessage()    {}
func (MemberJoin) isMessage() {}
func (MemberPart) isMessage() {}
func (Location) isMessage()   {}
func (Chat) isMessage()       {}
func (MagpiForm) isMessage()  {}

func (m TeamStart) At() time.Time { return time.UnixMilli(m.Time) }
func (m TeamEnd) At() time.Time   { return time.UnixMilli(m.Time) }

// RelTime converts epoch milliseconds into 100 ms units.
func RelTime(ms int64) (uint32, error) {
	if ms < 0 || ms/100 > RelTimeMax {
		return 0, fmt.Errorf("%w: %d ms", ErrTimeRange, ms)
	}
	return uint32(ms / 100), nil
}

// RelMillis converts a relative time back to milliseconds.
func RelMillis(rel uint32) int64 {
	return int64(rel) * 100
}
