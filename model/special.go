package model

import (
	"time"

	"gorm.io/datatypes"
)

// Confidence grades for specials data. An empty string scores as medium.
const (
	ConfidenceHigh   = "high"
	ConfidenceMedium = "medium"
	ConfidenceLow    = "low"
)

/*

Special is a recurring or dated, time-boxed venue offer

Example: a weekday happy hour, a Sunday oyster night

Id: primary key
CreatedAt: time when entity is created
UpdatedAt: time when entity is updated

VenueID: the venue running the offer, "belongs-to" relation
Title: display title, for example "2-for-1 mezcal until close"
DaysOfWeek: JSON array of ISO weekday ints (Monday=1 .. Sunday=7); null or
            empty means the offer runs every day
StartTime, EndTime: optional wall-clock bounds as "HH:MM" or "HH:MM:SS"; a
                    start later than the end marks an overnight span crossing
                    midnight (22:00-02:00)
StartDate, EndDate: optional inclusive date bounds for dated offers
Confidence: high / medium / low data confidence
LastVerifiedAt: when a human or crawler last confirmed the offer is real
Active: offers are toggled off, not deleted
*/
type Special struct {
	Id             string `gorm:"primaryKey"`
	CreatedAt      time.Time
	UpdatedAt      time.Time
	VenueID        string `gorm:"index"`
	Title          string
	DaysOfWeek     datatypes.JSON
	StartTime      *string
	EndTime        *string
	StartDate      *time.Time
	EndDate        *time.Time
	Confidence     string
	LastVerifiedAt *time.Time
	Active         bool `gorm:"default:true"`
}

// DaySet decodes the ISO weekday column; empty means "every day".
func (s *Special) DaySet() []int {
	return IntsFromJSON(s.DaysOfWeek)
}

// ConfidenceScore maps the confidence grade to 3/2/1. Absent or unknown
// grades score as medium.
func (s *Special) ConfidenceScore() int {
	switch s.Confidence {
	case ConfidenceHigh:
		return 3
	case ConfidenceLow:
		return 1
	default:
		return 2
	}
}
