package utils

import (
	"testing"
	"time"

	"github.com/eventatlas/portalfeed/model"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// Fixture helpers shared by DB-backed tests. Each creates one row directly
// through gorm, does sanity checks and returns its Id.

// create portal with name and city, do sanity checks and returns its Id
func TestCreatePortalAndValidate(t *testing.T, name string, city string, db *gorm.DB) (id string) {
	t.Helper()
	portal := model.Portal{
		Id:        uuid.New().String(),
		Name:      name,
		City:      city,
		CenterLat: 39.8,
		CenterLng: -89.65,
		RadiusKm:  2.0,
		Active:    true,
	}
	require.NoError(t, db.Create(&portal).Error)

	var got model.Portal
	require.NoError(t, db.First(&got, "id = ?", portal.Id).Error)
	require.Equal(t, name, got.Name)
	require.Equal(t, city, got.City)

	return portal.Id
}

// create source with name and optional owner, do sanity checks and returns its Id
func TestCreateSourceAndValidate(t *testing.T, name string, ownerPortalID *string, db *gorm.DB) (id string) {
	t.Helper()
	source := model.Source{
		Id:            uuid.New().String(),
		Name:          name,
		Active:        true,
		OwnerPortalID: ownerPortalID,
	}
	require.NoError(t, db.Create(&source).Error)

	var got model.Source
	require.NoError(t, db.First(&got, "id = ?", source.Id).Error)
	require.Equal(t, name, got.Name)

	return source.Id
}

// create the sharing rule for a source, do sanity checks and returns its Id
func TestCreateSharingRuleAndValidate(t *testing.T, sourceID string, scope string, allowedCategories []string, db *gorm.DB) (id string) {
	t.Helper()
	rule := model.SharingRule{
		Id:       uuid.New().String(),
		SourceID: sourceID,
		Scope:    scope,
	}
	if scope == model.SharingScopeSelected {
		rule.AllowedCategories = model.JSONStrings(allowedCategories)
	}
	require.NoError(t, db.Create(&rule).Error)

	var got model.SharingRule
	require.NoError(t, db.First(&got, "source_id = ?", sourceID).Error)
	require.Equal(t, scope, got.Scope)

	return rule.Id
}

// create a subscription from portal to source, do sanity checks and returns its Id
func TestCreateSubscriptionAndValidate(t *testing.T, portalID string, sourceID string, scope string, categories []string, db *gorm.DB) (id string) {
	t.Helper()
	sub := model.Subscription{
		Id:       uuid.New().String(),
		PortalID: portalID,
		SourceID: sourceID,
		Scope:    scope,
		Active:   true,
	}
	if scope == model.SubscriptionScopeSelected {
		sub.Categories = model.JSONStrings(categories)
	}
	require.NoError(t, db.Create(&sub).Error)

	var got model.Subscription
	require.NoError(t, db.First(&got, "portal_id = ? AND source_id = ?", portalID, sourceID).Error)
	require.True(t, got.Active)

	return sub.Id
}

// create venue at the given coordinates, do sanity checks and returns its Id
func TestCreateVenueAndValidate(t *testing.T, name string, city string, neighborhood string, lat float64, lng float64, db *gorm.DB) (id string) {
	t.Helper()
	venue := model.Venue{
		Id:           uuid.New().String(),
		Name:         name,
		City:         city,
		Neighborhood: neighborhood,
		VenueType:    "bar",
		Lat:          lat,
		Lng:          lng,
		Active:       true,
	}
	require.NoError(t, db.Create(&venue).Error)

	var got model.Venue
	require.NoError(t, db.First(&got, "id = ?", venue.Id).Error)
	require.Equal(t, name, got.Name)

	return venue.Id
}

// create an always-on special for a venue, do sanity checks and returns its Id
func TestCreateSpecialAndValidate(t *testing.T, venueID string, title string, startTime *string, endTime *string, confidence string, db *gorm.DB) (id string) {
	t.Helper()
	special := model.Special{
		Id:         uuid.New().String(),
		VenueID:    venueID,
		Title:      title,
		StartTime:  startTime,
		EndTime:    endTime,
		Confidence: confidence,
		Active:     true,
	}
	require.NoError(t, db.Create(&special).Error)

	var got model.Special
	require.NoError(t, db.First(&got, "id = ?", special.Id).Error)
	require.Equal(t, venueID, got.VenueID)

	return special.Id
}

// create event under a source at a venue, do sanity checks and returns its Id
func TestCreateEventAndValidate(t *testing.T, sourceID string, venueID string, category string, title string, startDate time.Time, startTime *string, db *gorm.DB) (id string) {
	t.Helper()
	event := model.Event{
		Id:        uuid.New().String(),
		SourceID:  sourceID,
		VenueID:   venueID,
		Category:  category,
		Title:     title,
		StartDate: DateOnly(startDate),
		StartTime: startTime,
	}
	require.NoError(t, db.Create(&event).Error)

	var got model.Event
	require.NoError(t, db.First(&got, "id = ?", event.Id).Error)
	require.Equal(t, title, got.Title)
	require.NotZero(t, got.Seq)

	return event.Id
}

// create a feed section definition, do sanity checks and returns its Id
func TestCreateFeedSectionAndValidate(t *testing.T, portalID string, title string, kind string, position int, curatedIDs []string, rule string, db *gorm.DB) (id string) {
	t.Helper()
	section := model.FeedSection{
		Id:              uuid.New().String(),
		PortalID:        portalID,
		Title:           title,
		Kind:            kind,
		Position:        position,
		CuratedEventIDs: model.JSONStrings(curatedIDs),
		Active:          true,
	}
	if rule != "" {
		section.Rule = []byte(rule)
	}
	require.NoError(t, db.Create(&section).Error)

	var got model.FeedSection
	require.NoError(t, db.First(&got, "id = ?", section.Id).Error)
	require.Equal(t, kind, got.Kind)

	return section.Id
}
