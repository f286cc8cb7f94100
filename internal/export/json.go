package export

import (
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/danmuck/succinct/internal/fragment"
	"github.com/danmuck/succinct/internal/message"
)

// Record is the JSON shape of one decoded message. Times are milliseconds;
// relative times are rel*100.
type Record struct {
	Team      string     `json:"team"`
	Type      string     `json:"type"`
	Time      *int64     `json:"time,omitempty"`
	Member    *uint8     `json:"member,omitempty"`
	RelTime   *int64     `json:"reltime,omitempty"`
	Name      *string    `json:"name,omitempty"`
	ID        *string    `json:"id,omitempty"`
	Locations []Location `json:"locations,omitempty"`
	Message   *string    `json:"message,omitempty"`
	HexData   *string    `json:"hexdata,omitempty"`
}

type Location struct {
	Member  uint8   `json:"member"`
	RelTime int64   `json:"reltime"`
	Lat     float64 `json:"lat"`
	Lng     float64 `json:"lng"`
	Acc     int     `json:"acc"`
}

func NewRecord(team fragment.TeamID, m message.Message) (Record, error) {
	rec := Record{Team: team.String(), Type: m.Type().String()}
	switch v := m.(type) {
	case message.TeamStart:
		rec.Time = ptr(v.Time)
		rec.Name = ptr(v.Name)
	case message.TeamEnd:
		rec.Time = ptr(v.Time)
	case message.MemberJoin:
		rec.member(v.Member, v.Time)
		rec.Name = ptr(v.Name)
		rec.ID = ptr(v.ID)
	case message.MemberPart:
		rec.member(v.Member, v.Time)
	case message.Location:
		rec.Locations = make([]Location, 0, len(v.Records))
		for _, r := range v.Records {
			rec.Locations = append(rec.Locations, Location{
				Member:  r.Member,
				RelTime: message.RelMillis(r.Time),
				Lat:     r.Lat,
				Lng:     r.Lng,
				Acc:     r.Accuracy.Meters(),
			})
		}
	case message.Chat:
		rec.member(v.Member, v.Time)
		rec.Message = ptr(v.Text)
	case message.MagpiForm:
		rec.member(v.Member, v.Time)
		rec.HexData = ptr(hex.EncodeToString(v.Data))
	default:
		return Record{}, fmt.Errorf("export: %w: %T", message.ErrUnknownType, m)
	}
	return rec, nil
}

// JSON renders m as a single-line JSON object without a trailing newline.
func JSON(team fragment.TeamID, m message.Message) ([]byte, error) {
	rec, err := NewRecord(team, m)
	if err != nil {
		return nil, err
	}
	return json.Marshal(rec)
}

func (r *Record) member(member uint8, rel uint32) {
	r.Member = ptr(member)
	r.RelTime = ptr(message.RelMillis(rel))
}

func ptr[T any](v T) *T {
	return &v
}
