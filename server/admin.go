package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"

	"github.com/eventatlas/portalfeed/federation"
	"github.com/eventatlas/portalfeed/model"
)

// Admin routes mutate the federation inputs. Every mutation awaits the
// projection refresh inside the federation layer, so a 200 here means the
// next feed request already sees the change (modulo cached snapshots).

type setOwnerRequest struct {
	// PortalID nil clears ownership.
	PortalID *string `json:"portal_id"`
}

// SetSourceOwner assigns or clears a source's owning portal.
func (env *HandlerEnv) SetSourceOwner(c *gin.Context) {
	var req setOwnerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": errCodeInvalidParam, "msg": "malformed body: " + err.Error()})
		return
	}

	if err := env.Resolver.SetSourceOwner(c.Param("sourceId"), req.PortalID); err != nil {
		env.mutationError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"source_id": c.Param("sourceId"), "owner_portal_id": req.PortalID})
}

type sharingRuleRequest struct {
	Scope             string   `json:"scope"`
	AllowedCategories []string `json:"allowed_categories"`
}

// PutSharingRule replaces the source's sharing policy.
func (env *HandlerEnv) PutSharingRule(c *gin.Context) {
	var req sharingRuleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": errCodeInvalidParam, "msg": "malformed body: " + err.Error()})
		return
	}
	if !model.IsValidSharingScope(req.Scope) {
		c.JSON(http.StatusBadRequest, gin.H{"code": errCodeInvalidParam, "msg": "invalid scope: " + req.Scope})
		return
	}

	rule, err := env.Resolver.UpsertSharingRule(c.Param("sourceId"), req.Scope, req.AllowedCategories)
	if err != nil {
		env.mutationError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"id":                 rule.Id,
		"source_id":          rule.SourceID,
		"scope":              rule.Scope,
		"allowed_categories": rule.AllowedSet(),
	})
}

type subscriptionRequest struct {
	PortalID   string   `json:"portal_id"`
	SourceID   string   `json:"source_id"`
	Scope      string   `json:"scope"`
	Categories []string `json:"categories"`
}

// PostSubscription subscribes a portal to a source, reactivating and
// updating any previous subscription for the pair.
func (env *HandlerEnv) PostSubscription(c *gin.Context) {
	var req subscriptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": errCodeInvalidParam, "msg": "malformed body: " + err.Error()})
		return
	}
	if !model.IsValidSubscriptionScope(req.Scope) {
		c.JSON(http.StatusBadRequest, gin.H{"code": errCodeInvalidParam, "msg": "invalid scope: " + req.Scope})
		return
	}

	sub, err := env.Resolver.UpsertSubscription(req.PortalID, req.SourceID, req.Scope, req.Categories)
	if err != nil {
		env.mutationError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"id":         sub.Id,
		"portal_id":  sub.PortalID,
		"source_id":  sub.SourceID,
		"scope":      sub.Scope,
		"categories": sub.CategorySet(),
		"active":     sub.Active,
	})
}

// DeleteSubscription deactivates the (portal, source) subscription named by
// query params. The row stays for reactivation.
func (env *HandlerEnv) DeleteSubscription(c *gin.Context) {
	portalID := c.Query("portal_id")
	sourceID := c.Query("source_id")
	if portalID == "" || sourceID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"code": errCodeInvalidParam, "msg": "portal_id and source_id are required"})
		return
	}

	if err := env.Resolver.DeactivateSubscription(portalID, sourceID); err != nil {
		env.mutationError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// mutationError maps federation mutation failures onto status codes: absent
// targets are the client's mistake, anything else is ours.
func (env *HandlerEnv) mutationError(c *gin.Context, err error) {
	if errors.Cause(err) == federation.ErrNotFound {
		c.JSON(http.StatusNotFound, gin.H{"code": errCodeNotFound, "msg": err.Error()})
		return
	}
	env.internalError(c, err)
}
