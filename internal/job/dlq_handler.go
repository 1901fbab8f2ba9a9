package job

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

type DLQHandler struct {
	service JobServiceInterface
}

func NewDLQHandler(s JobServiceInterface) *DLQHandler {
	return &DLQHandler{service: s}
}

func (h *DLQHandler) List(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	perPage, _ := strconv.Atoi(c.DefaultQuery("per_page", "20"))

	resp, err := h.service.ListDLQ(c.Request.Context(), page, perPage, c.Query("channel"))
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (h *DLQHandler) Stats(c *gin.Context) {
	stats, err := h.service.DLQStats(c.Request.Context())
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, stats)
}

// Retry re-enqueues a fresh job from a dead-letter entry.
func (h *DLQHandler) Retry(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	resp, err := h.service.RetryDLQ(c.Request.Context(), id)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, resp)
}

// Cleanup purges old entries. With dry_run=true it only reports the count.
func (h *DLQHandler) Cleanup(c *gin.Context) {
	days, _ := strconv.Atoi(c.DefaultQuery("older_than_days", "30"))
	dryRun := c.Query("dry_run") == "true"

	count, err := h.service.CleanupDLQ(c.Request.Context(), days, dryRun)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"purged": count, "dry_run": dryRun})
}
