// api/middleware/auth.go

package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	logger "github.com/dev-mohitbeniwal/datagate/api/logging"
	"github.com/dev-mohitbeniwal/datagate/api/token"
	"github.com/dev-mohitbeniwal/datagate/api/util"
)

// DatasetAccess guards a route addressing a dataset by its :name parameter.
// The bearer credential is verified against the token authority; every
// outcome is audited by the authority itself.
func DatasetAccess(authority token.IAuthority) gin.HandlerFunc {
	return func(c *gin.Context) {
		credential := util.BearerCredential(c)
		if credential == "" {
			logger.Warn("No bearer credential provided",
				zap.String("path", c.Request.URL.Path))
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			c.Abort()
			return
		}

		datasetName := c.Param("name")
		allowed, reason := authority.Verify(c.Request.Context(), credential, datasetName)
		if !allowed {
			c.JSON(http.StatusForbidden, gin.H{
				"error":  "Forbidden",
				"reason": reason.String(),
			})
			c.Abort()
			return
		}

		c.Next()
	}
}
