package server

import (
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/eventatlas/portalfeed/cursor"
	"github.com/eventatlas/portalfeed/federation"
	"github.com/eventatlas/portalfeed/feed"
	"github.com/eventatlas/portalfeed/geo"
	"github.com/eventatlas/portalfeed/model"
	"github.com/eventatlas/portalfeed/ranking"
	"github.com/eventatlas/portalfeed/utils"
	Logger "github.com/eventatlas/portalfeed/utils/log"
)

const (
	// DefaultLookAheadMinutes is how far ahead the nearby view counts a
	// special as "starting soon" when the client doesn't say.
	DefaultLookAheadMinutes = 120

	// venuePrefetchLimit bounds the bounding-box venue candidate fetch.
	venuePrefetchLimit = 500
)

// Error codes carried in error payloads alongside the human-readable msg.
const (
	errCodeInvalidParam = "invalid_param"
	errCodeNotFound     = "not_found"
	errCodeInternal     = "internal_error"
)

// HandlerEnv carries the shared dependencies of every route. Snapshots and
// Boundaries are optional: a nil snapshot store disables feed caching, a nil
// boundary cache disables neighborhood validation. NowFn defaults to
// time.Now and exists so tests can pin the clock.
type HandlerEnv struct {
	DB         *gorm.DB
	Resolver   *federation.Resolver
	Snapshots  *utils.FeedSnapshotStore
	Boundaries *geo.BoundaryCache
	NowFn      func() time.Time
}

func (env *HandlerEnv) now() time.Time {
	if env.NowFn != nil {
		return env.NowFn()
	}
	return time.Now()
}

// RegisterRoutes attaches every route to the router. Middlewares are the
// caller's business so tests can mount a bare router.
func RegisterRoutes(router *gin.Engine, env *HandlerEnv) {
	router.GET("/ping", Ping)

	portals := router.Group("/portals")
	portals.GET("/:portalId/feed", env.GetPortalFeed)
	portals.GET("/:portalId/events", env.GetPortalEvents)
	portals.GET("/:portalId/nearby", env.GetPortalNearby)
	portals.GET("/:portalId/access", env.GetPortalAccess)

	admin := router.Group("/admin")
	admin.POST("/sources/:sourceId/owner", env.SetSourceOwner)
	admin.PUT("/sources/:sourceId/sharing", env.PutSharingRule)
	admin.POST("/subscriptions", env.PostSubscription)
	admin.DELETE("/subscriptions", env.DeleteSubscription)
}

// Ping is the health check.
func Ping(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "pong"})
}

// loadPortal resolves the :portalId path param to an active portal, writing
// the 404 itself when there is none.
func (env *HandlerEnv) loadPortal(c *gin.Context) (*model.Portal, bool) {
	var portal model.Portal
	queryResult := env.DB.Where("id = ? AND active = ?", c.Param("portalId"), true).First(&portal)
	if queryResult.RowsAffected != 1 {
		c.JSON(http.StatusNotFound, gin.H{"code": errCodeNotFound, "msg": "portal not found"})
		return nil, false
	}
	return &portal, true
}

type feedResponse struct {
	PortalID    string         `json:"portal_id"`
	GeneratedAt time.Time      `json:"generated_at"`
	Sections    []feed.Section `json:"sections"`
}

// GetPortalFeed renders the portal's sectioned feed: resolve access, load the
// gated candidate pool and curated picks, assemble. A redis snapshot, when
// configured, short-circuits the whole pipeline within its TTL.
func (env *HandlerEnv) GetPortalFeed(c *gin.Context) {
	portal, ok := env.loadPortal(c)
	if !ok {
		return
	}

	if env.Snapshots != nil {
		cached, found, err := env.Snapshots.GetFeedSnapshot(portal.Id)
		if err != nil {
			Logger.Log.Warnf("feed snapshot read failed for portal %s: %v", portal.Id, err)
		} else if found {
			c.Data(http.StatusOK, "application/json; charset=utf-8", cached)
			return
		}
	}

	table, err := env.Resolver.AccessTable(portal.Id)
	if err != nil {
		env.internalError(c, err)
		return
	}
	defs, err := feed.LoadSectionDefs(env.DB, portal.Id)
	if err != nil {
		env.internalError(c, err)
		return
	}
	now := env.now()
	pool, err := feed.LoadEventPool(env.DB, portal, table, now)
	if err != nil {
		env.internalError(c, err)
		return
	}
	curated, err := feed.LoadCuratedEvents(env.DB, defs, table)
	if err != nil {
		env.internalError(c, err)
		return
	}

	resp := feedResponse{
		PortalID:    portal.Id,
		GeneratedAt: now,
		Sections:    feed.AssembleSections(defs, pool, curated),
	}
	payload, err := json.Marshal(resp)
	if err != nil {
		env.internalError(c, err)
		return
	}

	if env.Snapshots != nil {
		if err := env.Snapshots.SetFeedSnapshot(portal.Id, payload); err != nil {
			Logger.Log.Warnf("feed snapshot write failed for portal %s: %v", portal.Id, err)
		}
	}
	c.Data(http.StatusOK, "application/json; charset=utf-8", payload)
}

// GetPortalEvents lists upcoming events across the portal's accessible
// sources, keyset-paginated. A missing or invalid cursor restarts from the
// beginning; the response carries the next page's token, empty when the
// listing is exhausted.
func (env *HandlerEnv) GetPortalEvents(c *gin.Context) {
	portal, ok := env.loadPortal(c)
	if !ok {
		return
	}

	limit := 0
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"code": errCodeInvalidParam, "msg": fmt.Sprintf("invalid limit: %q", raw)})
			return
		}
		limit = parsed
	}

	// Broken tokens restart the listing instead of erroring, clients just
	// see page one again.
	var from *cursor.Cursor
	if token := c.Query("cursor"); token != "" {
		if decoded, err := cursor.Decode(token); err == nil {
			from = decoded
		}
	}

	table, err := env.Resolver.AccessTable(portal.Id)
	if err != nil {
		env.internalError(c, err)
		return
	}
	events, next, err := feed.QueryEventsPage(env.DB, table, from, env.now(), limit)
	if err != nil {
		env.internalError(c, err)
		return
	}
	if events == nil {
		events = []model.Event{}
	}

	c.JSON(http.StatusOK, gin.H{
		"portal_id":   portal.Id,
		"events":      events,
		"next_cursor": next,
	})
}

// GetPortalNearby ranks the venues around a point for the portal. Coordinates
// and radius default to the portal's anchor; malformed values are a 400,
// never a crash.
func (env *HandlerEnv) GetPortalNearby(c *gin.Context) {
	portal, ok := env.loadPortal(c)
	if !ok {
		return
	}

	lat, err := queryFloat(c, "lat", portal.CenterLat)
	if err == nil && math.Abs(lat) > 90 {
		err = fmt.Errorf("latitude out of range: %f", lat)
	}
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": errCodeInvalidParam, "msg": err.Error()})
		return
	}
	lng, err := queryFloat(c, "lng", portal.CenterLng)
	if err == nil && math.Abs(lng) > 180 {
		err = fmt.Errorf("longitude out of range: %f", lng)
	}
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": errCodeInvalidParam, "msg": err.Error()})
		return
	}
	radiusKm, err := queryFloat(c, "radius_km", portal.RadiusKm)
	if err == nil && radiusKm <= 0 {
		err = fmt.Errorf("radius_km must be positive: %f", radiusKm)
	}
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": errCodeInvalidParam, "msg": err.Error()})
		return
	}
	lookAheadMin := DefaultLookAheadMinutes
	if raw := c.Query("look_ahead_min"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"code": errCodeInvalidParam, "msg": fmt.Sprintf("invalid look_ahead_min: %q", raw)})
			return
		}
		lookAheadMin = parsed
	}

	neighborhood := c.Query("neighborhood")
	if neighborhood != "" && env.Boundaries != nil {
		hoods, err := env.Boundaries.Neighborhoods(portal.City)
		if err != nil {
			// Boundary data being down must not take the nearby view down;
			// the filter still applies, just unvalidated.
			Logger.Log.Warnf("boundary lookup failed for city %s: %v", portal.City, err)
		} else if len(hoods) > 0 && !utils.ContainsString(hoods, neighborhood) {
			c.JSON(http.StatusBadRequest, gin.H{"code": errCodeInvalidParam, "msg": fmt.Sprintf("unknown neighborhood: %q", neighborhood)})
			return
		}
	}

	minLat, maxLat, minLng, maxLng := geo.BoundingBox(lat, lng, radiusKm)
	var venues []model.Venue
	queryResult := env.DB.
		Where("city = ? AND active = ? AND lat BETWEEN ? AND ? AND lng BETWEEN ? AND ?",
			portal.City, true, minLat, maxLat, minLng, maxLng).
		Limit(venuePrefetchLimit).Find(&venues)
	if queryResult.Error != nil {
		env.internalError(c, queryResult.Error)
		return
	}
	if neighborhood != "" {
		kept := venues[:0]
		for _, v := range venues {
			if v.Neighborhood == neighborhood {
				kept = append(kept, v)
			}
		}
		venues = kept
	}

	now := env.now()
	table, err := env.Resolver.AccessTable(portal.Id)
	if err != nil {
		env.internalError(c, err)
		return
	}

	venueIDs := make([]string, 0, len(venues))
	for i := range venues {
		venueIDs = append(venueIDs, venues[i].Id)
	}
	specialsByVenue, err := env.loadSpecialsByVenue(venueIDs)
	if err != nil {
		env.internalError(c, err)
		return
	}
	nextEvents, err := feed.NextEventsByVenue(env.DB, table, venueIDs, now)
	if err != nil {
		env.internalError(c, err)
		return
	}

	result := ranking.RankDestinations(ranking.RankInput{
		CenterLat:        lat,
		CenterLng:        lng,
		RadiusKm:         radiusKm,
		Now:              now,
		LookAheadMin:     lookAheadMin,
		Venues:           venues,
		SpecialsByVenue:  specialsByVenue,
		NextEventByVenue: nextEvents,
	})
	c.JSON(http.StatusOK, result)
}

func (env *HandlerEnv) loadSpecialsByVenue(venueIDs []string) (map[string][]model.Special, error) {
	grouped := make(map[string][]model.Special, len(venueIDs))
	if len(venueIDs) == 0 {
		return grouped, nil
	}
	var specials []model.Special
	if err := env.DB.Where("venue_id IN ? AND active = ?", venueIDs, true).Find(&specials).Error; err != nil {
		return nil, err
	}
	for i := range specials {
		grouped[specials[i].VenueID] = append(grouped[specials[i].VenueID], specials[i])
	}
	return grouped, nil
}

type accessRowView struct {
	SourceID      string    `json:"source_id"`
	AccessType    string    `json:"access_type"`
	Categories    []string  `json:"categories,omitempty"`
	AllCategories bool      `json:"all_categories"`
	RefreshedAt   time.Time `json:"refreshed_at"`
}

// GetPortalAccess dumps the portal's resolved access projection, mainly for
// admin tooling and debugging.
func (env *HandlerEnv) GetPortalAccess(c *gin.Context) {
	portal, ok := env.loadPortal(c)
	if !ok {
		return
	}

	rows, err := env.Resolver.ResolveAccess(portal.Id)
	if err != nil {
		env.internalError(c, err)
		return
	}
	views := make([]accessRowView, 0, len(rows))
	for i := range rows {
		categories, all := rows[i].CategorySet()
		views = append(views, accessRowView{
			SourceID:      rows[i].SourceID,
			AccessType:    rows[i].AccessType,
			Categories:    categories,
			AllCategories: all,
			RefreshedAt:   rows[i].RefreshedAt,
		})
	}
	c.JSON(http.StatusOK, gin.H{"portal_id": portal.Id, "access": views})
}

func (env *HandlerEnv) internalError(c *gin.Context, err error) {
	Logger.Log.Errorf("%s %s failed: %v", c.Request.Method, c.Request.URL.Path, err)
	c.JSON(http.StatusInternalServerError, gin.H{"code": errCodeInternal, "msg": "internal error"})
}

// queryFloat parses an optional float query param, falling back when absent.
// NaN and infinities count as malformed.
func queryFloat(c *gin.Context, name string, fallback float64) (float64, error) {
	raw := c.Query(name)
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("invalid %s: %q", name, raw)
	}
	return v, nil
}
