package handlers

import (
	"net/http"
	"strconv"

	"cnc_sender/internal/service"

	"github.com/gin-gonic/gin"
)

// Request DTO for starting a streamed program.
type startJobRequest struct {
	Name  string `json:"name,omitempty"`
	Gcode string `json:"gcode" binding:"required"`
}

// @Summary      Start streaming a program
// @Tags         jobs
// @Accept       json
// @Produce      json
// @Param        body  body   startJobRequest  true  "Program payload"
// @Success      200   {object}  map[string]interface{}
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Failure      409   {object}  map[string]string
// @Router       /api/v1/jobs [post]
// @Security     BearerAuth
func (h *Handler) startJob(c *gin.Context) {
	var req startJobRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": errInvalidBodyPref + err.Error()})
		return
	}
	err := h.services.Jobs.Start(c.Request.Context(), service.JobParams{
		Name:  req.Name,
		Gcode: req.Gcode,
	})
	if err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status":   "started",
		"progress": h.services.Jobs.Progress(),
	})
}

// @Summary      Pause the active job (feed hold)
// @Tags         jobs
// @Produce      json
// @Success      200  {object}  map[string]string
// @Failure      400  {object}  map[string]string
// @Failure      401  {object}  map[string]string
// @Router       /api/v1/jobs/pause [post]
// @Security     BearerAuth
func (h *Handler) pauseJob(c *gin.Context) {
	h.simpleAction(c, "paused", h.services.Jobs.Pause)
}

func (h *Handler) resumeJob(c *gin.Context) {
	h.simpleAction(c, "resumed", h.services.Jobs.Resume)
}

func (h *Handler) stopJob(c *gin.Context) {
	h.simpleAction(c, "stopping", h.services.Jobs.Stop)
}

// @Summary      Progress of the active (or last) job
// @Tags         jobs
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Failure      401  {object}  map[string]string
// @Router       /api/v1/jobs/progress [get]
// @Security     BearerAuth
func (h *Handler) jobProgress(c *gin.Context) {
	c.JSON(http.StatusOK, h.services.Jobs.Progress())
}

// @Summary      Recently finished jobs
// @Tags         jobs
// @Produce      json
// @Param        limit  query   int  false  "Max records, newest first"  default(20)
// @Success      200    {object}  map[string]interface{}  "count, jobs"
// @Failure      401    {object}  map[string]string
// @Failure      500    {object}  map[string]string
// @Router       /api/v1/jobs/history [get]
// @Security     BearerAuth
func (h *Handler) jobHistory(c *gin.Context) {
	limit := 0
	if qs := c.Query("limit"); qs != "" {
		if v, err := strconv.Atoi(qs); err == nil && v > 0 {
			limit = v
		}
	}

	jobs, err := h.services.Jobs.History(c.Request.Context(), limit)
	if err != nil {
		h.logAndJSONError(c, http.StatusInternalServerError, "failed to load job history", "job_history_failed", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"count": len(jobs),
		"jobs":  jobs,
	})
}
