package feed

import (
	"github.com/eventatlas/portalfeed/federation"
	"github.com/eventatlas/portalfeed/model"
	Logger "github.com/eventatlas/portalfeed/utils/log"
)

const (
	// DefaultSectionMaxItems caps a section whose definition carries no
	// usable cap of its own.
	DefaultSectionMaxItems = 12

	// A section with fewer events than this is not worth rendering and is
	// dropped from the assembled feed.
	minSectionEvents = 2
)

// Section is one assembled feed slice, ready for presentation.
type Section struct {
	ID     string        `json:"id"`
	Title  string        `json:"title"`
	Kind   string        `json:"kind"`
	Events []model.Event `json:"events"`
}

// GateEventPool drops every event the portal may not see: events whose source
// is not in the access table, or whose category falls outside the source's
// accessible set. Never an error; a disallowed event simply vanishes from the
// pool.
func GateEventPool(events []model.Event, table federation.AccessTable) []model.Event {
	allowed := make([]model.Event, 0, len(events))
	for i := range events {
		if table.Allows(events[i].SourceID, events[i].Category) {
			allowed = append(allowed, events[i])
		}
	}
	return allowed
}

// AssembleSections builds the ordered feed from visible section definitions.
// The caller has already applied schedule/visibility checks, access-gated the
// pool and the curated map, and sorted the pool chronologically.
//
// Curated sections keep the author-assigned item order. Auto sections keep
// the pool's order. Mixed sections pin curated items first and fill the
// remaining capacity from rule matches, de-duplicated by event id.
func AssembleSections(defs []model.FeedSection, pool []model.Event, curated map[string]model.Event) []Section {
	sections := make([]Section, 0, len(defs))
	for i := range defs {
		def := &defs[i]
		maxItems := def.MaxItems
		if maxItems <= 0 {
			maxItems = DefaultSectionMaxItems
		}

		var events []model.Event
		switch def.Kind {
		case model.SectionKindCurated:
			events = curatedEvents(def, curated, maxItems)
		case model.SectionKindAuto:
			events = autoEvents(def, pool, maxItems, nil)
		case model.SectionKindMixed:
			events = curatedEvents(def, curated, maxItems)
			placed := make(map[string]bool, len(events))
			for j := range events {
				placed[events[j].Id] = true
			}
			events = append(events, autoEvents(def, pool, maxItems-len(events), placed)...)
		default:
			Logger.Log.Warnf("skipping section %s with unknown kind %s", def.Id, def.Kind)
			continue
		}

		if len(events) < minSectionEvents {
			continue
		}
		sections = append(sections, Section{
			ID:     def.Id,
			Title:  def.Title,
			Kind:   def.Kind,
			Events: events,
		})
	}
	return sections
}

// curatedEvents resolves the definition's explicit item references against
// the prefetched event map, preserving author order. Missing references are
// skipped (deleted or no-longer-accessible events), duplicates placed once.
func curatedEvents(def *model.FeedSection, curated map[string]model.Event, limit int) []model.Event {
	ids := def.CuratedIDs()
	events := make([]model.Event, 0, len(ids))
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		if len(events) >= limit {
			break
		}
		if seen[id] {
			continue
		}
		event, ok := curated[id]
		if !ok {
			continue
		}
		seen[id] = true
		events = append(events, event)
	}
	return events
}

// autoEvents filters the shared pool by the section's rule, preserving pool
// order, skipping ids already placed. A malformed rule matches nothing, so
// the section starves rather than the whole feed failing.
func autoEvents(def *model.FeedSection, pool []model.Event, limit int, placed map[string]bool) []model.Event {
	if limit <= 0 {
		return nil
	}
	rule, err := ParseSectionRule(def.Rule)
	if err != nil {
		Logger.Log.Errorf("section %s has a malformed rule: %v", def.Id, err)
		return nil
	}

	var events []model.Event
	for i := range pool {
		event := &pool[i]
		if placed[event.Id] || !rule.MatchesEvent(event) {
			continue
		}
		events = append(events, *event)
		if len(events) >= limit {
			break
		}
	}
	return events
}
