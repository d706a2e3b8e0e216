package federation

import (
	"time"

	"github.com/pkg/errors"
	"gorm.io/gorm"

	"github.com/eventatlas/portalfeed/model"
	Logger "github.com/eventatlas/portalfeed/utils/log"
)

// RefreshPortalAccess recomputes one portal's projection and replaces it
// wholesale inside a transaction. Readers never see a partially written
// table, only the previous or the next complete snapshot. The operation is
// idempotent and safe to run concurrently with itself, last writer wins.
func (r *Resolver) RefreshPortalAccess(portalID string) error {
	var sources []model.Source
	if err := r.DB.Find(&sources).Error; err != nil {
		return errors.Wrap(err, "failed to load sources")
	}

	var ruleRows []model.SharingRule
	if err := r.DB.Find(&ruleRows).Error; err != nil {
		return errors.Wrap(err, "failed to load sharing rules")
	}
	rules := make(map[string]model.SharingRule, len(ruleRows))
	for _, rule := range ruleRows {
		rules[rule.SourceID] = rule
	}

	var subs []model.Subscription
	if err := r.DB.Where("portal_id = ?", portalID).Find(&subs).Error; err != nil {
		return errors.Wrap(err, "failed to load subscriptions")
	}

	rows := ComputeAccess(portalID, sources, rules, subs)
	refreshedAt := time.Now()
	for i := range rows {
		rows[i].RefreshedAt = refreshedAt
	}

	err := r.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("portal_id = ?", portalID).Delete(&model.PortalSourceAccess{}).Error; err != nil {
			return err
		}
		if len(rows) == 0 {
			return nil
		}
		return tx.Create(&rows).Error
	})
	if err != nil {
		return errors.Wrap(err, "failed to replace access projection")
	}

	Logger.Log.Infof("refreshed access projection for portal %s, %d rows", portalID, len(rows))
	return nil
}

// RefreshAllPortals rebuilds the projection for every active portal and
// returns how many were refreshed.
func (r *Resolver) RefreshAllPortals() (int, error) {
	var portals []model.Portal
	if err := r.DB.Where("active = ?", true).Find(&portals).Error; err != nil {
		return 0, errors.Wrap(err, "failed to load portals")
	}
	for idx := range portals {
		if err := r.RefreshPortalAccess(portals[idx].Id); err != nil {
			return idx, errors.Wrapf(err, "failed to refresh portal %s", portals[idx].Id)
		}
	}
	return len(portals), nil
}
