package handlers

import (
	"net/http"

	"cnc_sender/internal/service"

	"github.com/gin-gonic/gin"
)

// Common response/status constants to avoid magic strings and typos.
const (
	statusOK           = "ok"
	statusConnected    = "connected"
	statusDisconnected = "disconnected"
	statusSent         = "sent"

	errInvalidBodyPref = "invalid body: "
)

// Centralized error logging and response.
func (h *Handler) logAndJSONError(c *gin.Context, httpCode int, userMsg, logKey string, err error, kv ...interface{}) {
	if h.log != nil && err != nil {
		fields := append([]interface{}{"err", err}, kv...)
		h.log.Errorw(logKey, fields...)
	}
	c.JSON(httpCode, gin.H{"error": userMsg})
}

// Request DTO for opening a serial session.
type connectRequest struct {
	Device string `json:"device" binding:"required"` // e.g. /dev/ttyUSB0
	Baud   int    `json:"baud,omitempty"`            // defaults to 115200
}

type commandRequest struct {
	Line string `json:"line" binding:"required"`
}

type jogRequest struct {
	Axis     string  `json:"axis" binding:"required"` // X | Y | Z
	Distance float64 `json:"distance" binding:"required"`
	Feed     float64 `json:"feed" binding:"required"`
}

type zeroRequest struct {
	Axes string `json:"axes,omitempty"` // subset of XYZ; empty means all
}

type overrideRequest struct {
	Kind   string `json:"kind" binding:"required"` // feed | spindle | rapid
	Target int    `json:"target" binding:"required"`
}

// @Summary      Health check
// @Tags         system
// @Produce      json
// @Success      200  {object}  map[string]string
// @Router       /health [get]
func (h *Handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": statusOK,
	})
}

// @Summary      Open the serial session
// @Tags         machine
// @Accept       json
// @Produce      json
// @Param        body  body   connectRequest  true  "Port selection"
// @Success      200   {object}  map[string]interface{}
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Failure      500   {object}  map[string]string
// @Router       /api/v1/machine/connect [post]
// @Security     BearerAuth
func (h *Handler) connectMachine(c *gin.Context) {
	var req connectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": errInvalidBodyPref + err.Error()})
		return
	}
	err := h.services.Machine.Connect(c.Request.Context(), service.ConnectParams{
		Device: req.Device,
		Baud:   req.Baud,
	})
	if err != nil {
		h.logAndJSONError(c, http.StatusInternalServerError, err.Error(), "machine_connect_failed", err, "device", req.Device)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": statusConnected, "device": req.Device})
}

// @Summary      Close the serial session
// @Tags         machine
// @Produce      json
// @Success      200  {object}  map[string]string
// @Failure      401  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /api/v1/machine/disconnect [post]
// @Security     BearerAuth
func (h *Handler) disconnectMachine(c *gin.Context) {
	if err := h.services.Machine.Disconnect(c.Request.Context()); err != nil {
		h.logAndJSONError(c, http.StatusInternalServerError, err.Error(), "machine_disconnect_failed", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": statusDisconnected})
}

// @Summary      Latest machine status
// @Description  Returns the most recent status report; 404 until the firmware has reported at least once.
// @Tags         machine
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Failure      401  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /api/v1/machine/status [get]
// @Security     BearerAuth
func (h *Handler) getStatus(c *gin.Context) {
	st, ok := h.services.Monitoring.Status()
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "no status report received yet"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"connected": h.services.Monitoring.Connected(),
		"pending":   h.services.Monitoring.Pending(),
		"status":    st,
	})
}

// @Summary      Send a single command line
// @Tags         machine
// @Accept       json
// @Produce      json
// @Param        body  body   commandRequest  true  "Command payload"
// @Success      200   {object}  map[string]string
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Router       /api/v1/machine/command [post]
// @Security     BearerAuth
func (h *Handler) sendCommand(c *gin.Context) {
	var req commandRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": errInvalidBodyPref + err.Error()})
		return
	}
	if err := h.services.Machine.Send(req.Line); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": statusSent})
}

// simpleAction wraps the fire-and-forget machine operations that share
// one response shape.
func (h *Handler) simpleAction(c *gin.Context, status string, fn func() error) {
	if err := fn(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": status})
}

// @Summary      Run the homing cycle
// @Tags         machine
// @Produce      json
// @Success      200  {object}  map[string]string
// @Failure      400  {object}  map[string]string
// @Failure      401  {object}  map[string]string
// @Router       /api/v1/machine/home [post]
// @Security     BearerAuth
func (h *Handler) home(c *gin.Context) {
	h.simpleAction(c, "homing", h.services.Machine.Home)
}

// @Summary      Clear an alarm lock
// @Tags         machine
// @Produce      json
// @Success      200  {object}  map[string]string
// @Failure      400  {object}  map[string]string
// @Failure      401  {object}  map[string]string
// @Router       /api/v1/machine/unlock [post]
// @Security     BearerAuth
func (h *Handler) unlock(c *gin.Context) {
	h.simpleAction(c, "unlocked", h.services.Machine.Unlock)
}

// @Summary      Jog one axis
// @Tags         machine
// @Accept       json
// @Produce      json
// @Param        body  body   jogRequest  true  "Jog payload"
// @Success      200   {object}  map[string]string
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Router       /api/v1/machine/jog [post]
// @Security     BearerAuth
func (h *Handler) jog(c *gin.Context) {
	var req jogRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": errInvalidBodyPref + err.Error()})
		return
	}
	h.simpleAction(c, "jogging", func() error {
		return h.services.Machine.Jog(service.JogParams{
			Axis:     req.Axis,
			Distance: req.Distance,
			Feed:     req.Feed,
		})
	})
}

func (h *Handler) jogCancel(c *gin.Context) {
	h.simpleAction(c, "jog_canceled", h.services.Machine.JogCancel)
}

func (h *Handler) feedHold(c *gin.Context) {
	h.simpleAction(c, "holding", h.services.Machine.FeedHold)
}

func (h *Handler) cycleResume(c *gin.Context) {
	h.simpleAction(c, "resumed", h.services.Machine.CycleResume)
}

// @Summary      Zero the work coordinate system
// @Tags         machine
// @Accept       json
// @Produce      json
// @Param        body  body   zeroRequest  false  "Axes to zero; empty means all"
// @Success      200   {object}  map[string]string
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Router       /api/v1/machine/zero [post]
// @Security     BearerAuth
func (h *Handler) setZero(c *gin.Context) {
	var req zeroRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": errInvalidBodyPref + err.Error()})
			return
		}
	}
	h.simpleAction(c, "zeroed", func() error {
		return h.services.Machine.SetZero(req.Axes)
	})
}

func (h *Handler) goToZero(c *gin.Context) {
	h.simpleAction(c, "moving_to_zero", h.services.Machine.GoToZero)
}

func (h *Handler) softReset(c *gin.Context) {
	h.simpleAction(c, "reset", h.services.Machine.SoftReset)
}

// @Summary      Adjust a runtime override
// @Description  kind is feed, spindle, or rapid; target is a percent (rapid accepts 25, 50, 100).
// @Tags         machine
// @Accept       json
// @Produce      json
// @Param        body  body   overrideRequest  true  "Override payload"
// @Success      200   {object}  map[string]interface{}
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Router       /api/v1/machine/override [post]
// @Security     BearerAuth
func (h *Handler) setOverride(c *gin.Context) {
	var req overrideRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": errInvalidBodyPref + err.Error()})
		return
	}
	err := h.services.Machine.SetOverride(service.OverrideParams{
		Kind:   req.Kind,
		Target: req.Target,
	})
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": statusOK, "kind": req.Kind, "target": req.Target})
}
