package model

import (
	"time"

	"gorm.io/datatypes"
)

// Access types, in precedence order. A portal holding ownership never gets a
// global or subscription row for the same source.
const (
	AccessTypeOwner        = "owner"
	AccessTypeGlobal       = "global"
	AccessTypeSubscription = "subscription"
)

/*

PortalSourceAccess is the derived projection of effective source access, one
row per (portal, source) pair that resolves to any access at all.

This table is never authored directly. It is recomputed from Source ownership,
SharingRule and Subscription rows by federation.RefreshPortalAccess, which
replaces a portal's rows wholesale inside one transaction. Readers racing a
refresh see a stale-but-consistent snapshot, never a half-written one.

PortalID, SourceID: composite primary key
AccessType: owner / global / subscription
Categories: JSON array of accessible category slugs; null means every category
RefreshedAt: when the projection row was last rebuilt
*/
type PortalSourceAccess struct {
	PortalID    string `gorm:"primaryKey"`
	SourceID    string `gorm:"primaryKey"`
	AccessType  string
	Categories  datatypes.JSON
	RefreshedAt time.Time
}

// CategorySet decodes the accessible-category column. The (nil, true) shape
// distinguishes "all categories" from an explicit set.
func (a *PortalSourceAccess) CategorySet() (categories []string, all bool) {
	if len(a.Categories) == 0 || string(a.Categories) == "null" {
		return nil, true
	}
	return StringsFromJSON(a.Categories), false
}
