package projector

import (
	"github.com/pkg/errors"
	"gorm.io/gorm"

	"github.com/eventatlas/portalfeed/model"
)

// ActivePortalIDs lists the portals a full sweep fans out over. Deactivated
// portals keep their projection rows but stop being refreshed.
func ActivePortalIDs(db *gorm.DB) ([]string, error) {
	var portals []model.Portal
	if err := db.Where("active = ?", true).Order("created_at").Find(&portals).Error; err != nil {
		return nil, errors.Wrap(err, "failed to list active portals")
	}
	ids := make([]string, 0, len(portals))
	for _, portal := range portals {
		ids = append(ids, portal.Id)
	}
	return ids, nil
}
