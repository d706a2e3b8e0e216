package federation

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm/clause"

	"github.com/eventatlas/portalfeed/model"
)

// Mutations below change the inputs of the access computation. Each one
// refreshes the affected projections before returning, so a caller that saw
// the mutation succeed reads its own write on the next access check.

// ErrNotFound marks a mutation aimed at a portal, source or subscription
// that does not exist. Check with errors.Cause.
var ErrNotFound = errors.New("not found")

// SetSourceOwner assigns the source to a portal, or clears ownership when
// ownerPortalID is nil.
func (r *Resolver) SetSourceOwner(sourceID string, ownerPortalID *string) error {
	if ownerPortalID != nil {
		var portal model.Portal
		if r.DB.First(&portal, "id = ?", *ownerPortalID).RowsAffected != 1 {
			return errors.Wrapf(ErrNotFound, "no valid portal %s", *ownerPortalID)
		}
	}

	queryResult := r.DB.Model(&model.Source{}).Where("id = ?", sourceID).
		Update("owner_portal_id", ownerPortalID)
	if queryResult.Error != nil {
		return errors.Wrap(queryResult.Error, "failed to update source owner")
	}
	if queryResult.RowsAffected != 1 {
		return errors.Wrapf(ErrNotFound, "no valid source %s", sourceID)
	}

	// Ownership is visible to every portal's projection.
	_, err := r.RefreshAllPortals()
	return err
}

// UpsertSharingRule creates or replaces the source's sharing rule. The
// allowed category set is forced to null unless scope is "selected".
func (r *Resolver) UpsertSharingRule(sourceID string, scope string, allowedCategories []string) (*model.SharingRule, error) {
	if !model.IsValidSharingScope(scope) {
		return nil, fmt.Errorf("invalid sharing scope %s", scope)
	}
	var source model.Source
	if r.DB.First(&source, "id = ?", sourceID).RowsAffected != 1 {
		return nil, errors.Wrapf(ErrNotFound, "no valid source %s", sourceID)
	}
	if scope != model.SharingScopeSelected {
		allowedCategories = nil
	}

	rule := model.SharingRule{
		Id:                uuid.New().String(),
		SourceID:          sourceID,
		Scope:             scope,
		AllowedCategories: model.JSONStrings(allowedCategories),
	}
	queryResult := r.DB.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "source_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"updated_at", "scope", "allowed_categories"}),
	}).Create(&rule)
	if queryResult.Error != nil {
		return nil, errors.Wrap(queryResult.Error, "failed to upsert sharing rule")
	}

	// Sharing reaches every portal, not just subscribers.
	if _, err := r.RefreshAllPortals(); err != nil {
		return nil, err
	}

	var updated model.SharingRule
	r.DB.First(&updated, "source_id = ?", sourceID)
	return &updated, nil
}

// UpsertSubscription creates or updates the portal's subscription to the
// source and reactivates it if it was deactivated. The category set is
// forced to null unless scope is "selected".
func (r *Resolver) UpsertSubscription(portalID, sourceID string, scope string, categories []string) (*model.Subscription, error) {
	if !model.IsValidSubscriptionScope(scope) {
		return nil, fmt.Errorf("invalid subscription scope %s", scope)
	}
	var portal model.Portal
	if r.DB.First(&portal, "id = ?", portalID).RowsAffected != 1 {
		return nil, errors.Wrapf(ErrNotFound, "no valid portal %s", portalID)
	}
	var source model.Source
	if r.DB.First(&source, "id = ?", sourceID).RowsAffected != 1 {
		return nil, errors.Wrapf(ErrNotFound, "no valid source %s", sourceID)
	}
	if scope != model.SubscriptionScopeSelected {
		categories = nil
	}

	sub := model.Subscription{
		Id:         uuid.New().String(),
		PortalID:   portalID,
		SourceID:   sourceID,
		Scope:      scope,
		Categories: model.JSONStrings(categories),
		Active:     true,
	}
	queryResult := r.DB.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "portal_id"}, {Name: "source_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"updated_at", "scope", "categories", "active"}),
	}).Create(&sub)
	if queryResult.Error != nil {
		return nil, errors.Wrap(queryResult.Error, "failed to upsert subscription")
	}

	if err := r.RefreshPortalAccess(portalID); err != nil {
		return nil, err
	}

	var updated model.Subscription
	r.DB.First(&updated, "portal_id = ? AND source_id = ?", portalID, sourceID)
	return &updated, nil
}

// DeactivateSubscription turns the subscription off without deleting it.
func (r *Resolver) DeactivateSubscription(portalID, sourceID string) error {
	queryResult := r.DB.Model(&model.Subscription{}).
		Where("portal_id = ? AND source_id = ?", portalID, sourceID).
		Update("active", false)
	if queryResult.Error != nil {
		return errors.Wrap(queryResult.Error, "failed to deactivate subscription")
	}
	if queryResult.RowsAffected != 1 {
		return errors.Wrapf(ErrNotFound, "no valid subscription for portal %s source %s", portalID, sourceID)
	}
	return r.RefreshPortalAccess(portalID)
}
