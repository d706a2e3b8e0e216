package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eventatlas/portalfeed/model"
	"github.com/eventatlas/portalfeed/utils"
)

func fetchAccess(t *testing.T, router *gin.Engine, portalID string) map[string]accessRowView {
	t.Helper()
	w := doRequest(router, "GET", "/portals/"+portalID+"/access", "")
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Access []accessRowView `json:"access"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	rows := map[string]accessRowView{}
	for _, row := range resp.Access {
		rows[row.SourceID] = row
	}
	return rows
}

func TestAdminSetSourceOwner(t *testing.T) {
	router, env, db := newTestEnv(t)
	s := seedSharedScenario(t, env, db)

	orphan := utils.TestCreateSourceAndValidate(t, "venue-cms", nil, db)

	w := doRequest(router, "POST", "/admin/sources/"+orphan+"/owner",
		fmt.Sprintf(`{"portal_id":%q}`, s.portalA))
	require.Equal(t, http.StatusOK, w.Code)

	rows := fetchAccess(t, router, s.portalA)
	require.Contains(t, rows, orphan)
	assert.Equal(t, model.AccessTypeOwner, rows[orphan].AccessType)
	assert.True(t, rows[orphan].AllCategories)

	// clearing ownership removes the access; the source has no sharing rule
	w = doRequest(router, "POST", "/admin/sources/"+orphan+"/owner", `{"portal_id":null}`)
	require.Equal(t, http.StatusOK, w.Code)
	rows = fetchAccess(t, router, s.portalA)
	assert.NotContains(t, rows, orphan)
}

func TestAdminSetSourceOwnerErrors(t *testing.T) {
	router, env, db := newTestEnv(t)
	s := seedSharedScenario(t, env, db)

	w := doRequest(router, "POST", "/admin/sources/nope/owner",
		fmt.Sprintf(`{"portal_id":%q}`, s.portalA))
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doRequest(router, "POST", "/admin/sources/"+s.sourceS+"/owner", `{"portal_id":"ghost-portal"}`)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doRequest(router, "POST", "/admin/sources/"+s.sourceS+"/owner", `{not json`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAdminPutSharingRule(t *testing.T) {
	router, env, db := newTestEnv(t)
	s := seedSharedScenario(t, env, db)

	locked := utils.TestCreateSourceAndValidate(t, "members-only", nil, db)
	utils.TestCreateSharingRuleAndValidate(t, locked, model.SharingScopeNone, nil, db)
	_, err := env.Resolver.RefreshAllPortals()
	require.NoError(t, err)

	rows := fetchAccess(t, router, s.portalB)
	assert.NotContains(t, rows, locked)

	w := doRequest(router, "PUT", "/admin/sources/"+locked+"/sharing", `{"scope":"all"}`)
	require.Equal(t, http.StatusOK, w.Code)

	rows = fetchAccess(t, router, s.portalB)
	require.Contains(t, rows, locked)
	assert.Equal(t, model.AccessTypeGlobal, rows[locked].AccessType)

	w = doRequest(router, "PUT", "/admin/sources/"+locked+"/sharing", `{"scope":"everything"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doRequest(router, "PUT", "/admin/sources/nope/sharing", `{"scope":"all"}`)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAdminSubscriptionLifecycle(t *testing.T) {
	router, env, db := newTestEnv(t)
	s := seedSharedScenario(t, env, db)

	// a third portal subscribes to the capped source: effective set is the
	// intersection of what it wants and what the rule allows
	portalC := utils.TestCreatePortalAndValidate(t, "Riverside Weekly", "springfield", db)
	w := doRequest(router, "POST", "/admin/subscriptions", fmt.Sprintf(
		`{"portal_id":%q,"source_id":%q,"scope":"selected","categories":["music","sports"]}`,
		portalC, s.sourceS))
	require.Equal(t, http.StatusOK, w.Code)

	rows := fetchAccess(t, router, portalC)
	require.Contains(t, rows, s.sourceS)
	assert.Equal(t, model.AccessTypeSubscription, rows[s.sourceS].AccessType)
	assert.Equal(t, []string{"music"}, rows[s.sourceS].Categories)

	w = doRequest(router, "DELETE",
		"/admin/subscriptions?portal_id="+portalC+"&source_id="+s.sourceS, "")
	require.Equal(t, http.StatusNoContent, w.Code)

	rows = fetchAccess(t, router, portalC)
	assert.NotContains(t, rows, s.sourceS)

	// the global source is unaffected by subscription churn
	assert.Contains(t, rows, s.sourceG)
}

func TestAdminSubscriptionErrors(t *testing.T) {
	router, env, db := newTestEnv(t)
	s := seedSharedScenario(t, env, db)

	w := doRequest(router, "POST", "/admin/subscriptions", fmt.Sprintf(
		`{"portal_id":"ghost","source_id":%q,"scope":"all"}`, s.sourceS))
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doRequest(router, "POST", "/admin/subscriptions", fmt.Sprintf(
		`{"portal_id":%q,"source_id":%q,"scope":"some"}`, s.portalB, s.sourceS))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doRequest(router, "DELETE", "/admin/subscriptions?portal_id="+s.portalB, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doRequest(router, "DELETE",
		"/admin/subscriptions?portal_id="+s.portalB+"&source_id=ghost", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}
