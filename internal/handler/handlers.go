package handlers

import (
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"SignBridge/internal/ai"
	"SignBridge/internal/maintenance"
	"SignBridge/internal/pipeline"
	"SignBridge/internal/service"
	"SignBridge/pkg/config"
	"SignBridge/pkg/metrics"
	"SignBridge/pkg/middleware"
)

type Handlers struct {
	db          *gorm.DB
	accounts    *service.AccountService
	uploads     *service.UploadService
	aiClient    *ai.Client
	voiceToSign *pipeline.VoiceToSign
	signToVoice *pipeline.SignToVoice
	controller  *pipeline.Controller
	maintenance *maintenance.Runner
	hub         *Hub
	metrics     *metrics.Metrics
	limiter     *middleware.RateLimiter
}

type Deps struct {
	DB          *gorm.DB
	Accounts    *service.AccountService
	Uploads     *service.UploadService
	AIClient    *ai.Client
	VoiceToSign *pipeline.VoiceToSign
	SignToVoice *pipeline.SignToVoice
	Controller  *pipeline.Controller
	Maintenance *maintenance.Runner
	Hub         *Hub
	Metrics     *metrics.Metrics
	Limiter     *middleware.RateLimiter
}

func NewHandlers(d Deps) *Handlers {
	if d.Controller == nil {
		d.Controller = pipeline.NewController()
	}
	return &Handlers{
		db:          d.DB,
		accounts:    d.Accounts,
		uploads:     d.Uploads,
		aiClient:    d.AIClient,
		voiceToSign: d.VoiceToSign,
		signToVoice: d.SignToVoice,
		controller:  d.Controller,
		maintenance: d.Maintenance,
		hub:         d.Hub,
		metrics:     d.Metrics,
		limiter:     d.Limiter,
	}
}

func (h *Handlers) Register(engine *gin.Engine) {
	cfg := config.GlobalConfig

	store := cookie.NewStore([]byte(cfg.SessionSecret))
	engine.Use(sessions.Sessions("signbridge_session", store))
	if h.metrics != nil {
		engine.Use(h.metrics.Middleware())
		engine.GET("/metrics", metrics.Handler())
	}
	if h.limiter != nil {
		engine.Use(h.limiter.Middleware())
	}
	engine.GET("/healthz", h.handleHealth)

	r := engine.Group(cfg.APIPrefix)
	h.registerAuthRoutes(r, cfg.AuthPrefix)
	h.registerAudioRoutes(r)
	h.registerPipelineRoutes(r)

	if cfg.AdminPrefix != "" {
		admin := r.Group(cfg.AdminPrefix, middleware.RequireAuth())
		h.registerAdminRoutes(admin)
	}

	if h.hub != nil {
		r.GET("/events", middleware.RequireAuth(), h.handleEvents)
	}
}

func (h *Handlers) registerAuthRoutes(r *gin.RouterGroup, prefix string) {
	auth := r.Group(prefix)
	{
		auth.POST("/signup", h.handleSignUp)
		auth.POST("/signin", h.handleSignIn)
		auth.POST("/signout", h.handleSignOut)
		auth.GET("/session", middleware.RequireAuth(), h.handleSession)
	}
}

func (h *Handlers) registerAudioRoutes(r *gin.RouterGroup) {
	audio := r.Group("/audio", middleware.RequireAuth())
	{
		audio.POST("/upload", h.handleAudioUpload)
		audio.GET("/list", h.handleAudioList)
	}
}

func (h *Handlers) registerPipelineRoutes(r *gin.RouterGroup) {
	p := r.Group("/pipeline", middleware.RequireAuth())
	{
		p.POST("/recording/start", h.handleRecordingStart)
		p.POST("/recording/cancel", h.handleRecordingCancel)
		p.POST("/voice-to-sign", h.handleVoiceToSign)
		p.POST("/sign-to-voice", h.handleSignToVoice)
		p.GET("/state", h.handlePipelineState)
	}
}

func (h *Handlers) registerAdminRoutes(r *gin.RouterGroup) {
	r.POST("/maintenance/run", h.handleMaintenanceRun)
	r.GET("/ai/status", h.handleAIStatus)
	r.GET("/ratelimit", h.handleRateLimitGet)
	r.PUT("/ratelimit", h.handleRateLimitUpdate)
}
