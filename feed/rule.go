// Package feed assembles a portal's ordered feed sections from curated picks
// and rule-filtered event pools. Every candidate event passes the federation
// access gate before it may enter a section; disallowed events are dropped
// silently, never surfaced as errors.
package feed

import (
	"encoding/json"
	"time"

	"github.com/araddon/dateparse"
	"github.com/pkg/errors"
	"gorm.io/datatypes"

	"github.com/eventatlas/portalfeed/model"
	"github.com/eventatlas/portalfeed/utils"
)

/*

SectionRule is the auto-filter payload stored on a FeedSection row.

All list fields are allow-lists: empty means "no restriction". Date bounds are
CMS-authored free text ("2026-03-14", "Mar 14 2026", ...), parsed tolerantly;
a bound that cannot be parsed is ignored rather than failing the section.

Categories: category slugs the event must be in
Tags: at least one must overlap the event's tag set
SourceIDs, VenueIDs: id allow-lists
ExcludeEventIDs: hard per-event exclusions
FreeOnly: keep free-admission events only
DateFrom, DateTo: inclusive calendar-date bounds on the event start date
*/
type SectionRule struct {
	Categories      []string `json:"categories,omitempty"`
	Tags            []string `json:"tags,omitempty"`
	SourceIDs       []string `json:"source_ids,omitempty"`
	VenueIDs        []string `json:"venue_ids,omitempty"`
	ExcludeEventIDs []string `json:"exclude_event_ids,omitempty"`
	FreeOnly        bool     `json:"free_only,omitempty"`
	DateFrom        string   `json:"date_from,omitempty"`
	DateTo          string   `json:"date_to,omitempty"`

	dateFrom *time.Time
	dateTo   *time.Time
}

// ParseSectionRule decodes a rule column. An empty column is a
// match-everything rule; malformed JSON is an error the caller turns into
// "section matches nothing".
func ParseSectionRule(raw datatypes.JSON) (*SectionRule, error) {
	rule := &SectionRule{}
	if len(raw) == 0 || string(raw) == "null" {
		return rule, nil
	}
	if err := json.Unmarshal(raw, rule); err != nil {
		return nil, errors.Wrap(err, "malformed section rule")
	}
	if t, err := dateparse.ParseAny(rule.DateFrom); rule.DateFrom != "" && err == nil {
		day := utils.DateOnly(t)
		rule.dateFrom = &day
	}
	if t, err := dateparse.ParseAny(rule.DateTo); rule.DateTo != "" && err == nil {
		day := utils.DateOnly(t)
		rule.dateTo = &day
	}
	return rule, nil
}

// MatchesEvent reports whether the event satisfies every clause of the rule.
func (r *SectionRule) MatchesEvent(e *model.Event) bool {
	if utils.ContainsString(r.ExcludeEventIDs, e.Id) {
		return false
	}
	if len(r.Categories) > 0 && !utils.ContainsString(r.Categories, e.Category) {
		return false
	}
	if len(r.SourceIDs) > 0 && !utils.ContainsString(r.SourceIDs, e.SourceID) {
		return false
	}
	if len(r.VenueIDs) > 0 && !utils.ContainsString(r.VenueIDs, e.VenueID) {
		return false
	}
	if r.FreeOnly && !e.IsFree {
		return false
	}
	if len(r.Tags) > 0 && !tagsOverlap(e.TagSet(), r.Tags) {
		return false
	}
	day := utils.DateOnly(e.StartDate)
	if r.dateFrom != nil && day.Before(*r.dateFrom) {
		return false
	}
	if r.dateTo != nil && day.After(*r.dateTo) {
		return false
	}
	return true
}

func tagsOverlap(eventTags, ruleTags []string) bool {
	for _, t := range eventTags {
		if utils.ContainsString(ruleTags, t) {
			return true
		}
	}
	return false
}
