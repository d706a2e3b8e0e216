package model

import (
	"time"

	"gorm.io/datatypes"
)

// Subscription scopes. Unlike sharing rules there is no "none": a portal that
// wants nothing from a source simply deactivates its subscription.
const (
	SubscriptionScopeAll      = "all"
	SubscriptionScopeSelected = "selected"
)

// IsValidSubscriptionScope reports whether scope is a known subscription scope.
func IsValidSubscriptionScope(scope string) bool {
	switch scope {
	case SubscriptionScopeAll, SubscriptionScopeSelected:
		return true
	}
	return false
}

/*

Subscription is a portal's opt-in to a source it does not own

Id: primary key
CreatedAt: time when entity is created
UpdatedAt: time when the subscription last changed

PortalID: the subscribing portal
SourceID: the subscribed source
Scope: all / selected, what the subscriber asked for; the source's sharing
       rule still caps the effective set
Categories: JSON array of category slugs, used only when scope is selected
Active: deactivated subscriptions keep their row; re-subscribing reactivates
        it. The unique (portal, source) index keeps one row per pair.
*/
type Subscription struct {
	Id         string `gorm:"primaryKey"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
	PortalID   string `gorm:"uniqueIndex:idx_subscription_portal_source"`
	SourceID   string `gorm:"uniqueIndex:idx_subscription_portal_source"`
	Scope      string
	Categories datatypes.JSON
	Active     bool `gorm:"default:true"`
}

// CategorySet decodes the subscribed-category column; nil unless scope is
// selected.
func (s *Subscription) CategorySet() []string {
	if s == nil || s.Scope != SubscriptionScopeSelected {
		return nil
	}
	return StringsFromJSON(s.Categories)
}
