// api/controller/datasite_controller.go
package controller

import (
	"encoding/base64"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dev-mohitbeniwal/datagate/api/datasite"
	gate_errors "github.com/dev-mohitbeniwal/datagate/api/errors"
	"github.com/dev-mohitbeniwal/datagate/api/middleware"
	"github.com/dev-mohitbeniwal/datagate/api/token"
	"github.com/dev-mohitbeniwal/datagate/api/util"
)

type DatasiteController struct {
	manager   *datasite.Manager
	authority token.IAuthority
}

func NewDatasiteController(manager *datasite.Manager, authority token.IAuthority) *DatasiteController {
	return &DatasiteController{
		manager:   manager,
		authority: authority,
	}
}

// RegisterRoutes registers the API routes. Content reads are guarded by the
// token authority; dataset listing is open discovery metadata.
func (dc *DatasiteController) RegisterRoutes(r *gin.RouterGroup) {
	datasets := r.Group("/datasets")
	{
		datasets.GET("", dc.ListDatasets)
		datasets.POST("", dc.AddContent)
		datasets.GET("/:name", middleware.DatasetAccess(dc.authority), dc.GetContent)
		datasets.DELETE("/:name", dc.RemoveContent)
	}
}

type addContentRequest struct {
	Name        string   `json:"name" binding:"required"`
	Content     string   `json:"content" binding:"required"` // base64
	ContentType string   `json:"content_type"`
	Description string   `json:"description"`
	Tags        []string `json:"tags"`
}

// AddContent endpoint
func (dc *DatasiteController) AddContent(c *gin.Context) {
	var req addContentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		util.RespondWithError(c, http.StatusBadRequest, "Invalid dataset payload", gate_errors.ErrInvalidRequestData)
		return
	}
	content, err := base64.StdEncoding.DecodeString(req.Content)
	if err != nil {
		util.RespondWithError(c, http.StatusBadRequest, "Content must be base64 encoded", gate_errors.ErrInvalidRequestData)
		return
	}

	meta, err := dc.manager.AddContent(c.Request.Context(), req.Name, content, req.ContentType, req.Description, req.Tags)
	if err != nil {
		if errors.Is(err, gate_errors.ErrInvalidRequestData) {
			util.RespondWithError(c, http.StatusBadRequest, err.Error(), err)
			return
		}
		util.RespondWithError(c, http.StatusInternalServerError, "Failed to store dataset", err)
		return
	}
	c.JSON(http.StatusCreated, meta)
}

// GetContent endpoint
func (dc *DatasiteController) GetContent(c *gin.Context) {
	content, err := dc.manager.GetContent(c.Request.Context(), c.Param("name"))
	if err != nil {
		if errors.Is(err, gate_errors.ErrContentNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Dataset not found"})
			return
		}
		util.RespondWithError(c, http.StatusInternalServerError, "Failed to read dataset", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"content": base64.StdEncoding.EncodeToString(content)})
}

// RemoveContent endpoint
func (dc *DatasiteController) RemoveContent(c *gin.Context) {
	if err := dc.manager.RemoveContent(c.Request.Context(), c.Param("name")); err != nil {
		util.RespondWithError(c, http.StatusInternalServerError, "Failed to remove dataset", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"removed": true})
}

// ListDatasets endpoint
func (dc *DatasiteController) ListDatasets(c *gin.Context) {
	datasets := dc.manager.ListDatasets()
	c.JSON(http.StatusOK, gin.H{"datasets": datasets, "count": len(datasets)})
}
