package feed

import (
	"time"

	"github.com/pkg/errors"
	"gorm.io/gorm"

	"github.com/eventatlas/portalfeed/cursor"
	"github.com/eventatlas/portalfeed/federation"
	"github.com/eventatlas/portalfeed/model"
	"github.com/eventatlas/portalfeed/utils"
)

const (
	// Bound on the candidate pool prefetch. Sections slice from this pool,
	// so a portal can never pull an unbounded event set per request.
	eventPoolPrefetchLimit = 2000

	// Keyset page size bounds for the events listing.
	defaultEventsPageLimit = 20
	maxEventsPageLimit     = 50

	// A page may need several batches when access gating thins a batch out.
	maxEventsPageBatches = 5
)

// chronoOrder sorts events by their keyset sort key. Null start times sort as
// midnight, matching what the cursor encodes.
const chronoOrder = "events.start_date, coalesce(events.start_time, '00:00:00'), events.seq"

// LoadSectionDefs returns the portal's active section definitions in display
// order.
func LoadSectionDefs(db *gorm.DB, portalID string) ([]model.FeedSection, error) {
	var defs []model.FeedSection
	err := db.Where("portal_id = ? AND active = ?", portalID, true).
		Order("position, id").Find(&defs).Error
	if err != nil {
		return nil, errors.Wrap(err, "failed to load section definitions")
	}
	return defs, nil
}

// LoadEventPool prefetches the portal's candidate pool: upcoming events from
// accessible sources at venues in the portal's city, chronologically sorted
// and access-gated.
func LoadEventPool(db *gorm.DB, portal *model.Portal, table federation.AccessTable, now time.Time) ([]model.Event, error) {
	sourceIDs := table.SourceIDs()
	if len(sourceIDs) == 0 {
		return nil, nil
	}

	var events []model.Event
	err := db.Model(&model.Event{}).
		Joins("LEFT JOIN venues ON events.venue_id = venues.id").
		Where("events.source_id IN ? AND venues.city = ? AND events.start_date >= ?",
			sourceIDs, portal.City, utils.DateOnly(now)).
		Order(chronoOrder).
		Limit(eventPoolPrefetchLimit).
		Find(&events).Error
	if err != nil {
		return nil, errors.Wrap(err, "failed to load event pool")
	}
	return GateEventPool(events, table), nil
}

// LoadCuratedEvents resolves every curated item reference across the section
// definitions into an id → event map. Events failing the access gate are left
// out of the map, so a stale curated pick can never leak a source the portal
// lost access to.
func LoadCuratedEvents(db *gorm.DB, defs []model.FeedSection, table federation.AccessTable) (map[string]model.Event, error) {
	var ids []string
	for i := range defs {
		if defs[i].Kind == model.SectionKindAuto {
			continue
		}
		ids = append(ids, defs[i].CuratedIDs()...)
	}
	if len(ids) == 0 {
		return map[string]model.Event{}, nil
	}

	var events []model.Event
	if err := db.Where("id IN ?", ids).Find(&events).Error; err != nil {
		return nil, errors.Wrap(err, "failed to load curated events")
	}

	curated := make(map[string]model.Event, len(events))
	for i := range events {
		if table.Allows(events[i].SourceID, events[i].Category) {
			curated[events[i].Id] = events[i]
		}
	}
	return curated, nil
}

// QueryEventsPage returns one keyset page of upcoming events across the
// portal's accessible sources, plus the cursor token for the next page. A nil
// from starts at the beginning. The returned token is empty when the page
// came back empty.
//
// Gating happens after the SQL fetch (category sets live in JSON), so a page
// may take several batches to fill; the batch count is bounded and the cursor
// always comes from the last row actually returned, keeping pages stable
// under concurrent inserts.
func QueryEventsPage(db *gorm.DB, table federation.AccessTable, from *cursor.Cursor, now time.Time, limit int) ([]model.Event, string, error) {
	if limit <= 0 {
		limit = defaultEventsPageLimit
	}
	limit = utils.Min(limit, maxEventsPageLimit)
	sourceIDs := table.SourceIDs()
	if len(sourceIDs) == 0 {
		return nil, "", nil
	}

	page := make([]model.Event, 0, limit)
	for batches := 0; len(page) < limit && batches < maxEventsPageBatches; batches++ {
		query := db.Model(&model.Event{}).
			Where("events.source_id IN ? AND events.start_date >= ?", sourceIDs, utils.DateOnly(now))
		if from != nil {
			query = query.Where(
				"(events.start_date, coalesce(events.start_time, '00:00:00'), events.seq) > (?, ?, ?)",
				from.Date, from.Time, from.Seq)
		}

		var batch []model.Event
		if err := query.Order(chronoOrder).Limit(limit).Find(&batch).Error; err != nil {
			return nil, "", errors.Wrap(err, "failed to query events page")
		}
		if len(batch) == 0 {
			break
		}

		// Advance past the whole batch even when gating drops rows, so the
		// next round never rescans them.
		from = eventCursor(&batch[len(batch)-1])
		for i := range batch {
			if !table.Allows(batch[i].SourceID, batch[i].Category) {
				continue
			}
			page = append(page, batch[i])
			if len(page) == limit {
				break
			}
		}
		if len(batch) < limit {
			break
		}
	}

	if len(page) == 0 {
		return page, "", nil
	}
	next := eventCursor(&page[len(page)-1])
	return page, cursor.Encode(next.Date, &next.Time, next.Seq), nil
}

// NextEventsByVenue returns each venue's next upcoming accessible event,
// feeding the ranked nearby view. Venues with no upcoming accessible event
// are simply absent from the map.
func NextEventsByVenue(db *gorm.DB, table federation.AccessTable, venueIDs []string, now time.Time) (map[string]*model.Event, error) {
	sourceIDs := table.SourceIDs()
	if len(sourceIDs) == 0 || len(venueIDs) == 0 {
		return map[string]*model.Event{}, nil
	}

	var events []model.Event
	err := db.Model(&model.Event{}).
		Where("events.venue_id IN ? AND events.source_id IN ? AND events.start_date >= ?",
			venueIDs, sourceIDs, utils.DateOnly(now)).
		Order(chronoOrder).
		Limit(eventPoolPrefetchLimit).
		Find(&events).Error
	if err != nil {
		return nil, errors.Wrap(err, "failed to load next events")
	}

	next := make(map[string]*model.Event, len(venueIDs))
	for i := range events {
		if _, seen := next[events[i].VenueID]; seen {
			continue
		}
		if !table.Allows(events[i].SourceID, events[i].Category) {
			continue
		}
		next[events[i].VenueID] = &events[i]
	}
	return next, nil
}

// eventCursor builds the keyset sort key of one event row.
func eventCursor(e *model.Event) *cursor.Cursor {
	c := &cursor.Cursor{Date: e.StartDate.Format("2006-01-02"), Time: "00:00:00", Seq: e.Seq}
	if e.StartTime != nil && *e.StartTime != "" {
		c.Time = normalizeClock(*e.StartTime)
	}
	return c
}

// normalizeClock pads "HH:MM" to the "HH:MM:SS" shape the cursor codec
// validates.
func normalizeClock(s string) string {
	if len(s) == 5 {
		return s + ":00"
	}
	return s
}
