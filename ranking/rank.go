// Package ranking orders nearby venues for a portal's location-anchored
// views. The score is a tunable linear blend of proximity, live-offer state,
// data confidence and freshness: neither distance nor "something is happening
// right now" should completely dominate, which a lexicographic sort could not
// express.
package ranking

import (
	"sort"
	"time"

	"github.com/eventatlas/portalfeed/geo"
	"github.com/eventatlas/portalfeed/model"
	"github.com/eventatlas/portalfeed/specials"
)

// Weights encode product intent (an active offer is worth more than being
// merely walkable). Retune here, not inline.
const (
	proximityWeightWalkable    = 100
	proximityWeightClose       = 60
	proximityWeightDestination = 30

	stateWeightActiveNow    = 50
	stateWeightStartingSoon = 20

	confidenceMultiplier = 3

	freshnessWeightWeek  = 10
	freshnessWeightMonth = 5
	freshnessWeekDays    = 7
	freshnessMonthDays   = 30

	maxRankedDestinations = 120
	maxLiveDestinations   = 36
)

// SpecialStateNone marks a venue with no evaluable special at all, as opposed
// to one whose best special is merely inactive right now.
const SpecialStateNone = "none"

// RankInput carries everything RankDestinations needs. Now is always explicit
// so one request evaluates every special against a single instant.
type RankInput struct {
	CenterLat    float64
	CenterLng    float64
	RadiusKm     float64
	Now          time.Time
	LookAheadMin int

	Venues           []model.Venue
	SpecialsByVenue  map[string][]model.Special
	NextEventByVenue map[string]*model.Event
}

// SpecialInfo is the presentation-safe slice of the venue's best special.
type SpecialInfo struct {
	Id                string `json:"id"`
	Title             string `json:"title"`
	State             string `json:"state"`
	Confidence        string `json:"confidence,omitempty"`
	MinutesUntilStart *int   `json:"minutes_until_start,omitempty"`
	MinutesRemaining  *int   `json:"minutes_remaining,omitempty"`
}

// EventInfo is the presentation-safe slice of the venue's next event.
type EventInfo struct {
	Id        string    `json:"id"`
	Title     string    `json:"title"`
	Category  string    `json:"category"`
	StartDate time.Time `json:"start_date"`
	StartTime *string   `json:"start_time,omitempty"`
}

// Destination is one ranked venue. The blended score stays internal; callers
// get the order plus the fields that explain it.
type Destination struct {
	VenueID        string       `json:"venue_id"`
	Name           string       `json:"name"`
	Neighborhood   string       `json:"neighborhood,omitempty"`
	VenueType      string       `json:"venue_type,omitempty"`
	Lat            float64      `json:"lat"`
	Lng            float64      `json:"lng"`
	DistanceKm     float64      `json:"distance_km"`
	WalkingMinutes int          `json:"walking_minutes"`
	Tier           geo.Tier     `json:"tier"`
	Label          string       `json:"label"`
	SpecialState   string       `json:"special_state"`
	Special        *SpecialInfo `json:"special,omitempty"`
	NextEvent      *EventInfo   `json:"next_event,omitempty"`

	score float64
}

// Summary tallies every in-radius venue by special state and proximity tier,
// before the display caps apply.
type Summary struct {
	Total   int            `json:"total"`
	ByState map[string]int `json:"by_state"`
	ByTier  map[string]int `json:"by_tier"`
}

// Result is the two ranked views plus their tally. Live holds only venues
// with an active_now special.
type Result struct {
	Destinations []Destination `json:"destinations"`
	Live         []Destination `json:"live"`
	Summary      Summary       `json:"summary"`
}

// RankDestinations scores every venue within the radius and returns them
// sorted by score descending, ties broken by ascending distance.
func RankDestinations(in RankInput) Result {
	ranked := make([]Destination, 0, len(in.Venues))
	summary := Summary{
		ByState: map[string]int{},
		ByTier:  map[string]int{},
	}

	for i := range in.Venues {
		venue := &in.Venues[i]
		distance := geo.DistanceKm(in.CenterLat, in.CenterLng, venue.Lat, venue.Lng)
		if distance > in.RadiusKm {
			continue
		}

		tier := geo.ProximityTier(geo.EstimateWalkingKm(distance))
		dest := Destination{
			VenueID:        venue.Id,
			Name:           venue.Name,
			Neighborhood:   venue.Neighborhood,
			VenueType:      venue.VenueType,
			Lat:            venue.Lat,
			Lng:            venue.Lng,
			DistanceKm:     distance,
			WalkingMinutes: geo.WalkingMinutes(distance),
			Tier:           tier,
			Label:          geo.ProximityLabel(distance),
			SpecialState:   SpecialStateNone,
			score:          proximityWeight(tier),
		}

		best, ev := specials.BestForVenue(in.SpecialsByVenue[venue.Id], in.Now, in.LookAheadMin)
		if best != nil {
			dest.SpecialState = ev.State
			dest.Special = &SpecialInfo{
				Id:                best.Id,
				Title:             best.Title,
				State:             ev.State,
				Confidence:        best.Confidence,
				MinutesUntilStart: ev.MinutesUntilStart,
				MinutesRemaining:  ev.MinutesRemaining,
			}
			dest.score += stateWeight(ev.State) +
				float64(best.ConfidenceScore()*confidenceMultiplier) +
				freshnessWeight(best.LastVerifiedAt, in.Now)
		}

		if next := in.NextEventByVenue[venue.Id]; next != nil {
			dest.NextEvent = &EventInfo{
				Id:        next.Id,
				Title:     next.Title,
				Category:  next.Category,
				StartDate: next.StartDate,
				StartTime: next.StartTime,
			}
		}

		summary.Total++
		summary.ByState[dest.SpecialState]++
		summary.ByTier[string(dest.Tier)]++
		ranked = append(ranked, dest)
	}

	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].score != ranked[j].score {
			return ranked[i].score > ranked[j].score
		}
		if ranked[i].DistanceKm != ranked[j].DistanceKm {
			return ranked[i].DistanceKm < ranked[j].DistanceKm
		}
		return ranked[i].VenueID < ranked[j].VenueID
	})

	live := make([]Destination, 0, maxLiveDestinations)
	for i := range ranked {
		if ranked[i].SpecialState != specials.StateActiveNow {
			continue
		}
		live = append(live, ranked[i])
		if len(live) == maxLiveDestinations {
			break
		}
	}
	if len(ranked) > maxRankedDestinations {
		ranked = ranked[:maxRankedDestinations]
	}

	return Result{Destinations: ranked, Live: live, Summary: summary}
}

func proximityWeight(tier geo.Tier) float64 {
	switch tier {
	case geo.TierWalkable:
		return proximityWeightWalkable
	case geo.TierClose:
		return proximityWeightClose
	default:
		return proximityWeightDestination
	}
}

func stateWeight(state string) float64 {
	switch state {
	case specials.StateActiveNow:
		return stateWeightActiveNow
	case specials.StateStartingSoon:
		return stateWeightStartingSoon
	default:
		return 0
	}
}

// freshnessWeight rewards recently verified offers: 10 within a week, 5
// within a month, nothing beyond that or when never verified.
func freshnessWeight(lastVerifiedAt *time.Time, now time.Time) float64 {
	if lastVerifiedAt == nil {
		return 0
	}
	age := now.Sub(*lastVerifiedAt)
	switch {
	case age <= freshnessWeekDays*24*time.Hour:
		return freshnessWeightWeek
	case age <= freshnessMonthDays*24*time.Hour:
		return freshnessWeightMonth
	default:
		return 0
	}
}
