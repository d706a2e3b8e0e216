package federation

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eventatlas/portalfeed/model"
	"github.com/eventatlas/portalfeed/utils"
)

func TestSetSourceOwnerLifecycle(t *testing.T) {
	db, _ := utils.CreateTempDB(t)
	resolver := NewResolver(db)

	portalA := utils.TestCreatePortalAndValidate(t, "Uptown Guide", "springfield", db)
	portalB := utils.TestCreatePortalAndValidate(t, "Oldtown After Dark", "springfield", db)
	source := utils.TestCreateSourceAndValidate(t, "venue-cms", nil, db)

	require.NoError(t, resolver.SetSourceOwner(source, &portalA))
	tableA, err := resolver.AccessTable(portalA)
	require.NoError(t, err)
	assert.True(t, tableA.Allows(source, "anything"))

	// handing the source over revokes the previous owner in the same refresh
	require.NoError(t, resolver.SetSourceOwner(source, &portalB))
	tableA, err = resolver.AccessTable(portalA)
	require.NoError(t, err)
	assert.False(t, tableA.Allows(source, "anything"))
	tableB, err := resolver.AccessTable(portalB)
	require.NoError(t, err)
	assert.True(t, tableB.Allows(source, "anything"))

	// clearing ownership leaves nobody with access: the source has no rule
	require.NoError(t, resolver.SetSourceOwner(source, nil))
	tableB, err = resolver.AccessTable(portalB)
	require.NoError(t, err)
	assert.False(t, tableB.Allows(source, "anything"))
}

func TestSetSourceOwnerNotFound(t *testing.T) {
	db, _ := utils.CreateTempDB(t)
	resolver := NewResolver(db)
	portal := utils.TestCreatePortalAndValidate(t, "Uptown Guide", "springfield", db)
	source := utils.TestCreateSourceAndValidate(t, "venue-cms", nil, db)

	err := resolver.SetSourceOwner("no-such-source", &portal)
	require.Error(t, err)
	assert.Equal(t, ErrNotFound, errors.Cause(err))

	ghost := "no-such-portal"
	err = resolver.SetSourceOwner(source, &ghost)
	require.Error(t, err)
	assert.Equal(t, ErrNotFound, errors.Cause(err))
}

func TestUpsertSharingRuleReplacesAndForcesCategories(t *testing.T) {
	db, _ := utils.CreateTempDB(t)
	resolver := NewResolver(db)

	portal := utils.TestCreatePortalAndValidate(t, "Oldtown After Dark", "springfield", db)
	source := utils.TestCreateSourceAndValidate(t, "ticketline", nil, db)
	utils.TestCreateSharingRuleAndValidate(t, source, model.SharingScopeSelected, []string{"food"}, db)
	utils.TestCreateSubscriptionAndValidate(t, portal, source, model.SubscriptionScopeAll, nil, db)
	require.NoError(t, resolver.RefreshPortalAccess(portal))

	table, err := resolver.AccessTable(portal)
	require.NoError(t, err)
	assert.True(t, table.Allows(source, "food"))
	assert.False(t, table.Allows(source, "music"))

	// widening to scope=all discards the stray category list and upgrades the
	// subscriber to uncapped global access
	rule, err := resolver.UpsertSharingRule(source, model.SharingScopeAll, []string{"ignored"})
	require.NoError(t, err)
	assert.Equal(t, model.SharingScopeAll, rule.Scope)
	assert.Nil(t, rule.AllowedSet())

	table, err = resolver.AccessTable(portal)
	require.NoError(t, err)
	assert.True(t, table.Allows(source, "music"))

	var count int64
	require.NoError(t, db.Model(&model.SharingRule{}).Where("source_id = ?", source).Count(&count).Error)
	assert.EqualValues(t, 1, count, "upsert must replace, not duplicate")
}

func TestUpsertSharingRuleErrors(t *testing.T) {
	db, _ := utils.CreateTempDB(t)
	resolver := NewResolver(db)
	source := utils.TestCreateSourceAndValidate(t, "ticketline", nil, db)

	_, err := resolver.UpsertSharingRule(source, "wide-open", nil)
	require.Error(t, err)
	assert.NotEqual(t, ErrNotFound, errors.Cause(err))

	_, err = resolver.UpsertSharingRule("no-such-source", model.SharingScopeAll, nil)
	require.Error(t, err)
	assert.Equal(t, ErrNotFound, errors.Cause(err))
}

func TestUpsertSubscriptionReactivates(t *testing.T) {
	db, _ := utils.CreateTempDB(t)
	resolver := NewResolver(db)

	portal := utils.TestCreatePortalAndValidate(t, "Oldtown After Dark", "springfield", db)
	source := utils.TestCreateSourceAndValidate(t, "ticketline", nil, db)
	utils.TestCreateSharingRuleAndValidate(t, source, model.SharingScopeSelected, []string{"food", "music"}, db)

	first, err := resolver.UpsertSubscription(portal, source, model.SubscriptionScopeSelected, []string{"food"})
	require.NoError(t, err)
	assert.True(t, first.Active)
	assert.Equal(t, []string{"food"}, first.CategorySet())

	require.NoError(t, resolver.DeactivateSubscription(portal, source))
	table, err := resolver.AccessTable(portal)
	require.NoError(t, err)
	assert.False(t, table.Allows(source, "food"))

	// re-subscribing reuses the row and reactivates it
	second, err := resolver.UpsertSubscription(portal, source, model.SubscriptionScopeAll, nil)
	require.NoError(t, err)
	assert.True(t, second.Active)
	assert.Equal(t, first.Id, second.Id)

	table, err = resolver.AccessTable(portal)
	require.NoError(t, err)
	assert.True(t, table.Allows(source, "food"))
	assert.True(t, table.Allows(source, "music"))
	assert.False(t, table.Allows(source, "sports"), "the rule still caps scope=all")
}

func TestUpsertSubscriptionErrors(t *testing.T) {
	db, _ := utils.CreateTempDB(t)
	resolver := NewResolver(db)
	portal := utils.TestCreatePortalAndValidate(t, "Oldtown After Dark", "springfield", db)
	source := utils.TestCreateSourceAndValidate(t, "ticketline", nil, db)

	_, err := resolver.UpsertSubscription(portal, source, "none", nil)
	require.Error(t, err)
	assert.NotEqual(t, ErrNotFound, errors.Cause(err))

	_, err = resolver.UpsertSubscription("no-such-portal", source, model.SubscriptionScopeAll, nil)
	require.Error(t, err)
	assert.Equal(t, ErrNotFound, errors.Cause(err))

	_, err = resolver.UpsertSubscription(portal, "no-such-source", model.SubscriptionScopeAll, nil)
	require.Error(t, err)
	assert.Equal(t, ErrNotFound, errors.Cause(err))
}

func TestDeactivateSubscriptionUnknownPair(t *testing.T) {
	db, _ := utils.CreateTempDB(t)
	resolver := NewResolver(db)

	err := resolver.DeactivateSubscription("no-such-portal", "no-such-source")
	require.Error(t, err)
	assert.Equal(t, ErrNotFound, errors.Cause(err))
}
