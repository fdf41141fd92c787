// api/controller/session_controller.go
package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"

	gate_errors "github.com/dev-mohitbeniwal/datagate/api/errors"
	"github.com/dev-mohitbeniwal/datagate/api/model"
	"github.com/dev-mohitbeniwal/datagate/api/session"
	"github.com/dev-mohitbeniwal/datagate/api/util"
)

type SessionController struct {
	proxy          session.IProxy
	validationUtil *util.ValidationUtil
}

func NewSessionController(proxy session.IProxy, validationUtil *util.ValidationUtil) *SessionController {
	return &SessionController{
		proxy:          proxy,
		validationUtil: validationUtil,
	}
}

// RegisterRoutes registers the API routes
func (sc *SessionController) RegisterRoutes(r *gin.RouterGroup) {
	sessions := r.Group("/sessions")
	{
		sessions.POST("", sc.CreateSession)
		sessions.POST("/:id/check", sc.CheckPermission)
		sessions.GET("/:id/datasites", sc.ListAccessibleRoots)
		sessions.POST("/cleanup", sc.CleanupExpiredSessions)
	}
}

type createSessionRequest struct {
	UserEmail        string `json:"user_email" binding:"required"`
	ClientIdentifier string `json:"client_identifier" binding:"required"`
}

// CreateSession endpoint
func (sc *SessionController) CreateSession(c *gin.Context) {
	var req createSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		util.RespondWithError(c, http.StatusBadRequest, "Invalid session request", gate_errors.ErrInvalidRequestData)
		return
	}
	if err := sc.validationUtil.ValidateEmail(req.UserEmail); err != nil {
		util.RespondWithError(c, http.StatusBadRequest, err.Error(), gate_errors.ErrInvalidRequestData)
		return
	}

	sessionID := sc.proxy.CreateSession(req.UserEmail, req.ClientIdentifier)
	c.JSON(http.StatusCreated, gin.H{"session_id": sessionID})
}

type checkPermissionRequest struct {
	Path  string `json:"path" binding:"required"`
	Level string `json:"level"`
}

// CheckPermission endpoint. A denial is a verdict, not an error.
func (sc *SessionController) CheckPermission(c *gin.Context) {
	var req checkPermissionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		util.RespondWithError(c, http.StatusBadRequest, "Invalid permission request", gate_errors.ErrInvalidRequestData)
		return
	}

	level := model.PermissionRead
	if req.Level != "" {
		parsed, err := model.ParsePermissionLevel(req.Level)
		if err != nil {
			util.RespondWithError(c, http.StatusBadRequest, err.Error(), gate_errors.ErrInvalidRequestData)
			return
		}
		level = parsed
	}

	allowed := sc.proxy.CheckPermission(c.Request.Context(), c.Param("id"), req.Path, level)
	c.JSON(http.StatusOK, gin.H{"allowed": allowed})
}

// ListAccessibleRoots endpoint
func (sc *SessionController) ListAccessibleRoots(c *gin.Context) {
	roots := sc.proxy.ListAccessibleRoots(c.Request.Context(), c.Param("id"))
	c.JSON(http.StatusOK, gin.H{"datasites": roots, "count": len(roots)})
}

// CleanupExpiredSessions endpoint
func (sc *SessionController) CleanupExpiredSessions(c *gin.Context) {
	removed := sc.proxy.CleanupExpiredSessions()
	c.JSON(http.StatusOK, gin.H{"removed": removed})
}
