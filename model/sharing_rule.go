package model

import (
	"time"

	"gorm.io/datatypes"
)

// Sharing rule scopes. Selected is the only scope under which the
// allowed-category set carries meaning.
const (
	SharingScopeAll      = "all"
	SharingScopeSelected = "selected"
	SharingScopeNone     = "none"
)

// IsValidSharingScope reports whether scope is one of the known sharing
// scopes. Used to reject malformed admin input before it reaches the DB.
func IsValidSharingScope(scope string) bool {
	switch scope {
	case SharingScopeAll, SharingScopeSelected, SharingScopeNone:
		return true
	}
	return false
}

/*

SharingRule is the owner-authored policy on how widely a source is exposed
beyond its owner. Exactly one rule exists per source, enforced by the unique
index on SourceID.

Id: primary key
CreatedAt: time when entity is created
UpdatedAt: time when the policy last changed

SourceID: the governed source
Scope: one of all / selected / none
AllowedCategories: JSON array of category slugs; meaningful only when scope
                   is selected. Writes force it to null for any other scope,
                   and readers must treat it as null for any other scope
                   regardless of what is stored.
*/
type SharingRule struct {
	Id                string `gorm:"primaryKey"`
	CreatedAt         time.Time
	UpdatedAt         time.Time
	SourceID          string `gorm:"uniqueIndex"`
	Scope             string
	AllowedCategories datatypes.JSON
}

// AllowedSet decodes the allowed-category column. It returns nil (meaning
// unrestricted-by-rule is not implied here, just "no usable set") whenever the
// scope is not selected, honoring the treat-as-null invariant.
func (r *SharingRule) AllowedSet() []string {
	if r == nil || r.Scope != SharingScopeSelected {
		return nil
	}
	return StringsFromJSON(r.AllowedCategories)
}
