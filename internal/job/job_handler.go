package job

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/omnipress/publishq/common"
	"github.com/omnipress/publishq/internal/dto"
	"github.com/omnipress/publishq/middleware"
)

type JobHandler struct {
	service JobServiceInterface
}

func NewJobHandler(s JobServiceInterface) *JobHandler {
	return &JobHandler{service: s}
}

var _ JobHandlerInterface = (*JobHandler)(nil)

// Create handles job submission. Producers may retry this call freely: the
// idempotency key makes resubmission return the already-enqueued job with
// HTTP 200 instead of creating a duplicate.
func (h *JobHandler) Create(c *gin.Context) {
	var req dto.EnqueueDTO

	if !middleware.Bind(c, &req) {
		c.Abort()
		return
	}

	resp, err := h.service.EnqueueJob(c.Request.Context(), &req)
	if err != nil {
		c.Error(err)
		c.Abort()
		return
	}

	c.JSON(http.StatusCreated, resp)
}

// Get returns one job by id.
func (h *JobHandler) Get(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	resp, err := h.service.GetJobByID(c.Request.Context(), id)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// List returns a filtered page of jobs. Filters AND together.
func (h *JobHandler) List(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	perPage, _ := strconv.Atoi(c.DefaultQuery("per_page", "20"))

	filters := JobFilters{
		Status:  c.Query("status"),
		Channel: c.Query("channel"),
		Search:  c.Query("search"),
	}

	resp, err := h.service.ListJobs(c.Request.Context(), page, perPage, filters)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// Replay forces a failed or pending job back into the runnable set.
func (h *JobHandler) Replay(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	resp, err := h.service.ReplayJob(c.Request.Context(), id)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// RunningChannels reports the count of running jobs per channel.
func (h *JobHandler) RunningChannels(c *gin.Context) {
	counts, err := h.service.RunningChannels(c.Request.Context())
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"running": counts})
}

func parseID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 0)
	if err != nil || id < 1 {
		c.Error(common.Errf(http.StatusBadRequest, "invalid ID"))
		return 0, false
	}
	return uint(id), true
}
