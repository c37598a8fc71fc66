package handlers

import (
	"cnc_sender/internal/logger"
	"cnc_sender/internal/service"

	"github.com/gin-gonic/gin"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// Handler wires HTTP layer to services and logging.
type Handler struct {
	services *service.Service
	log      *logger.Logger
}

// NewHandler constructs a new HTTP handler with dependencies.
func NewHandler(services *service.Service, log *logger.Logger) *Handler {
	return &Handler{services: services, log: log}
}

// InitRoutes builds and returns the Gin router with all routes registered.
func (h *Handler) InitRoutes() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Health endpoint
	router.GET("/health", h.health)

	// Auth endpoints
	h.registerAuthRoutes(router)

	// Versioned API endpoints (protected)
	h.registerAPIRoutes(router)

	// WebSocket telemetry stream — same port
	router.GET("/ws", h.wsConnect)

	return router
}

func (h *Handler) registerAuthRoutes(r *gin.Engine) {
	auth := r.Group("/auth")
	{
		auth.POST("/sign-up", h.signUp)
		auth.POST("/sign-in", h.signIn)
	}
}

func (h *Handler) registerAPIRoutes(r *gin.Engine) {
	api := r.Group("/api/v1", h.authMiddleware)
	{
		h.registerMachineRoutes(api)
		h.registerJobRoutes(api)
		h.registerLogRoutes(api)
	}
}

func (h *Handler) registerMachineRoutes(api *gin.RouterGroup) {
	machine := api.Group("/machine")
	{
		machine.POST("/connect", h.connectMachine)
		machine.POST("/disconnect", h.disconnectMachine)
		machine.GET("/status", h.getStatus)

		// Body example: {"line":"G0 X10"}
		machine.POST("/command", h.sendCommand)
		machine.POST("/home", h.home)
		machine.POST("/unlock", h.unlock)
		machine.POST("/jog", h.jog)
		machine.POST("/jog/cancel", h.jogCancel)
		machine.POST("/hold", h.feedHold)
		machine.POST("/resume", h.cycleResume)
		machine.POST("/zero", h.setZero)
		machine.POST("/goto-zero", h.goToZero)
		machine.POST("/reset", h.softReset)
		// Body example: {"kind":"feed","target":120}
		machine.POST("/override", h.setOverride)
	}
}

func (h *Handler) registerJobRoutes(api *gin.RouterGroup) {
	jobs := api.Group("/jobs")
	{
		jobs.POST("/", h.startJob)
		jobs.POST("/pause", h.pauseJob)
		jobs.POST("/resume", h.resumeJob)
		jobs.POST("/stop", h.stopJob)
		jobs.GET("/progress", h.jobProgress)
		jobs.GET("/history", h.jobHistory)
	}
}

func (h *Handler) registerLogRoutes(api *gin.RouterGroup) {
	logs := api.Group("/logs")
	{
		logs.GET("/", h.getLogs)
	}
}
