package federation

import (
	"github.com/pkg/errors"
	"gorm.io/gorm"

	"github.com/eventatlas/portalfeed/model"
)

// Resolver reads and maintains the access projection.
type Resolver struct {
	DB *gorm.DB
}

func NewResolver(db *gorm.DB) *Resolver {
	return &Resolver{DB: db}
}

// ResolveAccess returns the projection rows for one portal, ordered by
// source id for stable output.
func (r *Resolver) ResolveAccess(portalID string) ([]model.PortalSourceAccess, error) {
	var rows []model.PortalSourceAccess
	if err := r.DB.Where("portal_id = ?", portalID).Order("source_id").Find(&rows).Error; err != nil {
		return nil, errors.Wrap(err, "failed to read access projection")
	}
	return rows, nil
}

// AccessTable loads and decodes one portal's projection.
func (r *Resolver) AccessTable(portalID string) (AccessTable, error) {
	rows, err := r.ResolveAccess(portalID)
	if err != nil {
		return nil, err
	}
	return BuildAccessTable(rows), nil
}

// CanAccess reports whether the portal may see the category of the source.
// A missing projection row means no access, not an error.
func (r *Resolver) CanAccess(portalID, sourceID, category string) (bool, error) {
	var row model.PortalSourceAccess
	queryResult := r.DB.Where("portal_id = ? AND source_id = ?", portalID, sourceID).First(&row)
	if queryResult.RowsAffected != 1 {
		return false, nil
	}
	categories, all := row.CategorySet()
	if all {
		return true, nil
	}
	for _, c := range categories {
		if c == category {
			return true, nil
		}
	}
	return false, nil
}
