// api/controller/token_controller.go
package controller

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/dev-mohitbeniwal/datagate/api/audit"
	gate_errors "github.com/dev-mohitbeniwal/datagate/api/errors"
	"github.com/dev-mohitbeniwal/datagate/api/model"
	"github.com/dev-mohitbeniwal/datagate/api/policy"
	"github.com/dev-mohitbeniwal/datagate/api/token"
	"github.com/dev-mohitbeniwal/datagate/api/util"
	helper_util "github.com/dev-mohitbeniwal/datagate/api/util/helper"
)

type TokenController struct {
	authority      token.IAuthority
	auditor        audit.Service
	policies       *policy.Store
	validationUtil *util.ValidationUtil
	eventBus       *util.EventBus
}

func NewTokenController(authority token.IAuthority, auditor audit.Service, policies *policy.Store,
	validationUtil *util.ValidationUtil, eventBus *util.EventBus) *TokenController {
	return &TokenController{
		authority:      authority,
		auditor:        auditor,
		policies:       policies,
		validationUtil: validationUtil,
		eventBus:       eventBus,
	}
}

// RegisterRoutes registers the API routes
func (tc *TokenController) RegisterRoutes(r *gin.RouterGroup) {
	tokens := r.Group("/tokens")
	{
		tokens.POST("", tc.IssueToken)
		tokens.POST("/verify", tc.VerifyToken)
		tokens.DELETE("/:id", tc.RevokeToken)
	}
	policies := r.Group("/policies")
	{
		policies.POST("", tc.UpsertPolicy)
		policies.GET("", tc.ListPolicies)
		policies.GET("/:name", tc.GetPolicy)
	}
	r.GET("/audit", tc.QueryAudit)
}

type issueTokenRequest struct {
	UserEmail   string   `json:"user_email" binding:"required"`
	Datasets    []string `json:"datasets" binding:"required"`
	Permissions []string `json:"permissions"`
	ExpiresIn   int      `json:"expires_in"`
}

// IssueToken endpoint
func (tc *TokenController) IssueToken(c *gin.Context) {
	var req issueTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		util.RespondWithError(c, http.StatusBadRequest, "Invalid token request", gate_errors.ErrInvalidRequestData)
		return
	}
	if err := tc.validationUtil.ValidateTokenRequest(req.UserEmail, req.Datasets); err != nil {
		util.RespondWithError(c, http.StatusBadRequest, err.Error(), gate_errors.ErrInvalidRequestData)
		return
	}

	credential, err := tc.authority.Issue(c.Request.Context(), req.UserEmail, req.Datasets,
		req.Permissions, time.Duration(req.ExpiresIn)*time.Second)
	if err != nil {
		util.RespondWithError(c, http.StatusInternalServerError, "Failed to issue token", err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"access_token": credential})
}

type verifyTokenRequest struct {
	AccessToken string `json:"access_token" binding:"required"`
	Dataset     string `json:"dataset" binding:"required"`
}

// VerifyToken endpoint. A denial is a normal outcome, not an error: the
// response is 200 with the verdict and its reason code.
func (tc *TokenController) VerifyToken(c *gin.Context) {
	var req verifyTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		util.RespondWithError(c, http.StatusBadRequest, "Invalid verify request", gate_errors.ErrInvalidRequestData)
		return
	}

	allowed, reason := tc.authority.Verify(c.Request.Context(), req.AccessToken, req.Dataset)
	c.JSON(http.StatusOK, gin.H{
		"allowed": allowed,
		"reason":  reason.String(),
	})
}

// RevokeToken endpoint
func (tc *TokenController) RevokeToken(c *gin.Context) {
	tokenID := c.Param("id")
	revoked := tc.authority.Revoke(c.Request.Context(), tokenID)
	if revoked {
		tc.eventBus.Publish(c.Request.Context(), "token.revoked", tokenID)
	}
	c.JSON(http.StatusOK, gin.H{"revoked": revoked})
}

// UpsertPolicy endpoint
func (tc *TokenController) UpsertPolicy(c *gin.Context) {
	var p model.AccessPolicy
	if err := c.ShouldBindJSON(&p); err != nil {
		util.RespondWithError(c, http.StatusBadRequest, "Invalid policy data", gate_errors.ErrInvalidRequestData)
		return
	}
	if err := tc.validationUtil.ValidatePolicy(p); err != nil {
		util.RespondWithError(c, http.StatusBadRequest, err.Error(), gate_errors.ErrInvalidRequestData)
		return
	}

	if err := tc.policies.Upsert(p); err != nil {
		util.RespondWithError(c, http.StatusInternalServerError, "Failed to store policy", err)
		return
	}
	tc.eventBus.Publish(c.Request.Context(), "policy.upserted", p)
	c.JSON(http.StatusCreated, p)
}

// GetPolicy endpoint
func (tc *TokenController) GetPolicy(c *gin.Context) {
	name := c.Param("name")
	p, ok := tc.policies.Lookup(name)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Policy not found"})
		return
	}
	c.JSON(http.StatusOK, p)
}

// ListPolicies endpoint
func (tc *TokenController) ListPolicies(c *gin.Context) {
	c.JSON(http.StatusOK, tc.policies.List())
}

// QueryAudit endpoint
func (tc *TokenController) QueryAudit(c *gin.Context) {
	since, err := helper_util.ParseSince(c.Query("since"))
	if err != nil {
		util.RespondWithError(c, http.StatusBadRequest, "Invalid since parameter", err)
		return
	}

	entries := tc.auditor.Query(c.Query("user_email"), c.Query("dataset"), since)
	c.JSON(http.StatusOK, gin.H{"entries": entries, "count": len(entries)})
}
