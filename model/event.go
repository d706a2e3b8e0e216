package model

import (
	"strings"
	"time"
)

/*

Event is one dated happening pulled from an upstream source

Id: primary key
CreatedAt: time when entity is created
UpdatedAt: time when entity is updated

SourceID:
Source: the upstream feed that produced this event, "belongs-to" relation
PortalID: the originating portal when a tenant authored the event directly;
          null for crawled inventory
VenueID:
Venue: where the event happens, "belongs-to" relation; carries the
       neighborhood used by geo filters
Category: category slug, for example "music"
Title: display title in plain text
StartDate: the calendar date the event starts (date component only)
StartTime: optional "HH:MM:SS" wall clock; null sorts as 00:00:00
EndDate: optional last date for multi-day programs
IsFree: free admission flag
PriceFloor: cheapest admission, 0 when free
Tags: tag slugs serialized as a comma-joined string
Seq: auto-increment global index keeping the relative order of events; the
     keyset pagination tiebreaker
*/
type Event struct {
	Id         string     `gorm:"primaryKey" json:"id"`
	CreatedAt  time.Time  `json:"-"`
	UpdatedAt  time.Time  `json:"-"`
	SourceID   string     `gorm:"index" json:"source_id"`
	Source     Source     `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
	PortalID   *string    `json:"portal_id,omitempty"`
	VenueID    string     `gorm:"index" json:"venue_id"`
	Venue      Venue      `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
	Category   string     `gorm:"index" json:"category"`
	Title      string     `json:"title"`
	StartDate  time.Time  `gorm:"index" json:"start_date"`
	StartTime  *string    `json:"start_time,omitempty"`
	EndDate    *time.Time `json:"end_date,omitempty"`
	IsFree     bool       `json:"is_free"`
	PriceFloor float64    `json:"price_floor"`
	Tags       string     `json:"tags,omitempty"`
	Seq        int64      `gorm:"autoIncrement;uniqueIndex" json:"-"`
}

// TagSet splits the serialized tag column into clean slugs.
func (e *Event) TagSet() []string {
	if e.Tags == "" {
		return nil
	}
	parts := strings.Split(e.Tags, ",")
	tags := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}
