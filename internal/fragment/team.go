package fragment

import (
	"encoding/hex"
	"fmt"
)

// TeamID identifies the team that owns a fragment chain.
type TeamID [TeamLen]byte

// ParseTeamID accepts 16 hex characters in either case.
func ParseTeamID(s string) (TeamID, error) {
	var team TeamID
	if len(s) != 2*TeamLen {
		return team, fmt.Errorf("%w: %q has wrong length", ErrInvalidTeamID, s)
	}
	b, err := hex.DecodeString(s)
	if err != nil {
		return team, fmt.Errorf("%w: %q", ErrInvalidTeamID, s)
	}
	copy(team[:], b)
	return team, nil
}

func (t TeamID) String() string {
	return hex.EncodeToString(t[:])
}
