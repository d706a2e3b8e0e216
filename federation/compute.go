// Package federation decides which event sources a portal may read, at
// category granularity, under the ownership / sharing / subscription model.
// Access is precomputed into the portal_source_accesses projection and
// queried from there; the pure computation lives in ComputeAccess so it can
// be tested without a database.
package federation

import (
	"github.com/eventatlas/portalfeed/model"
)

// ComputeAccess derives the projection rows for one portal from raw source,
// sharing rule and subscription records. Precedence per source:
//
//	owner > global sharing > capped subscription > no access
//
// Inactive sources yield nothing. A source without a sharing rule behaves as
// scope "none" for non-owners. A subscription whose effective category set
// intersects to empty yields no row, so an empty set is never confused with
// the null set that means "all categories".
func ComputeAccess(portalID string, sources []model.Source, rules map[string]model.SharingRule, subs []model.Subscription) []model.PortalSourceAccess {
	subBySource := make(map[string]*model.Subscription, len(subs))
	for i := range subs {
		sub := &subs[i]
		if sub.Active && sub.PortalID == portalID {
			subBySource[sub.SourceID] = sub
		}
	}

	var rows []model.PortalSourceAccess
	for i := range sources {
		source := &sources[i]
		if !source.Active {
			continue
		}

		if source.OwnerPortalID != nil && *source.OwnerPortalID == portalID {
			rows = append(rows, accessRow(portalID, source.Id, model.AccessTypeOwner, nil))
			continue
		}

		rule, hasRule := rules[source.Id]
		if !hasRule || rule.Scope == model.SharingScopeNone {
			continue
		}
		if rule.Scope == model.SharingScopeAll {
			rows = append(rows, accessRow(portalID, source.Id, model.AccessTypeGlobal, nil))
			continue
		}

		// Scope "selected": subscribers only, and the rule's allowed set is
		// an upper bound the subscriber cannot exceed.
		sub, subscribed := subBySource[source.Id]
		if !subscribed {
			continue
		}
		allowed := rule.AllowedSet()
		if len(allowed) == 0 {
			continue
		}
		categories := allowed
		if sub.Scope == model.SubscriptionScopeSelected {
			categories = intersect(sub.CategorySet(), allowed)
		}
		if len(categories) == 0 {
			continue
		}
		rows = append(rows, accessRow(portalID, source.Id, model.AccessTypeSubscription, categories))
	}
	return rows
}

func accessRow(portalID, sourceID, accessType string, categories []string) model.PortalSourceAccess {
	return model.PortalSourceAccess{
		PortalID:   portalID,
		SourceID:   sourceID,
		AccessType: accessType,
		Categories: model.JSONStrings(categories),
	}
}

// intersect keeps wanted's order.
func intersect(wanted, allowed []string) []string {
	var out []string
	for _, w := range wanted {
		for _, a := range allowed {
			if w == a {
				out = append(out, w)
				break
			}
		}
	}
	return out
}
