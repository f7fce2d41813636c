package entity

import (
	"encoding/json"
	"errors"
	"fmt"
)

var ErrInvalidStage = errors.New("stage must be one of New, Contacted, Booked, Estimate Sent, Closed Won, Closed Lost")

// Stage is the pipeline position of a lead. The set is closed: only the
// constants below are valid, and their order is the dashboard order.
type Stage int

const (
	StageNew Stage = iota + 1
	StageContacted
	StageBooked
	StageEstimateSent
	StageClosedWon
	StageClosedLost
)

// Stages lists every stage in pipeline order.
var Stages = []Stage{
	StageNew,
	StageContacted,
	StageBooked,
	StageEstimateSent,
	StageClosedWon,
	StageClosedLost,
}

func (s Stage) String() string {
	switch s {
	case StageNew:
		return "New"
	case StageContacted:
		return "Contacted"
	case StageBooked:
		return "Booked"
	case StageEstimateSent:
		return "Estimate Sent"
	case StageClosedWon:
		return "Closed Won"
	case StageClosedLost:
		return "Closed Lost"
	default:
		return fmt.Sprintf("Stage(%d)", int(s))
	}
}

func (s Stage) Valid() bool {
	return s >= StageNew && s <= StageClosedLost
}

// ParseStage resolves the display name used by the API and the database.
func ParseStage(name string) (Stage, error) {
	for _, s := range Stages {
		if s.String() == name {
			return s, nil
		}
	}
	return 0, ErrInvalidStage
}

func (s Stage) MarshalJSON() ([]byte, error) {
	if !s.Valid() {
		return nil, ErrInvalidStage
	}
	return json.Marshal(s.String())
}

func (s *Stage) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return ErrInvalidStage
	}
	parsed, err := ParseStage(name)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}
