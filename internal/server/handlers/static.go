package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// UINotBuilt answers requests for the web UI when no build is present.
func UINotBuilt(c *gin.Context) {
	c.String(http.StatusServiceUnavailable, "Frontend not built. Run 'npm run build' in the frontend directory.")
}
