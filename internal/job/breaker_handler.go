package job

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/omnipress/publishq/internal/breaker"
)

// BreakerHandler exposes circuit breaker state for operators.
type BreakerHandler struct {
	registry *breaker.Registry
}

func NewBreakerHandler(r *breaker.Registry) *BreakerHandler {
	return &BreakerHandler{registry: r}
}

func (h *BreakerHandler) List(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"breakers": h.registry.AllStats()})
}

func (h *BreakerHandler) Reset(c *gin.Context) {
	service := c.Param("service")
	h.registry.For(c.Request.Context(), service).Reset(c.Request.Context())
	c.Status(http.StatusNoContent)
}
