package httpapi

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/neumathe/kousuan/catalog"
	"github.com/neumathe/kousuan/engine"
	"github.com/neumathe/kousuan/internal/config"
	"github.com/neumathe/kousuan/internal/platform/logger"
	"github.com/neumathe/kousuan/internal/worksheet"
)

// Deps HTTP 层依赖的服务
type Deps struct {
	Engine     *engine.Engine
	Catalog    *catalog.Catalog
	Worksheets *worksheet.Service
}

func NewServer(cfg *config.Config, log *logger.Logger, deps Deps) *http.Server {
	return &http.Server{
		Addr:              cfg.HTTP.Addr,
		Handler:           NewHandler(cfg, log, deps),
		ReadHeaderTimeout: cfg.HTTP.ReadHeaderTimeout.Duration,
		IdleTimeout:       cfg.HTTP.IdleTimeout.Duration,
	}
}

func NewHandler(cfg *config.Config, log *logger.Logger, deps Deps) http.Handler {
	switch strings.ToLower(cfg.Env) {
	case "prod", "production":
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(
		requestIDMiddleware(),
		accessLogMiddleware(log),
		recoverMiddleware(log),
		bodyLimitMiddleware(cfg.HTTP.MaxRequestBytes),
	)
	if len(cfg.HTTP.AllowOrigins) > 0 {
		router.Use(corsMiddleware(cfg.HTTP.AllowOrigins))
	}
	router.NoRoute(func(c *gin.Context) {
		respondError(c, http.StatusNotFound, codeNotFound, "route not found")
	})

	h := &handlers{
		eng:      deps.Engine,
		cat:      deps.Catalog,
		sheets:   deps.Worksheets,
		salt:     cfg.Engine.SeedSalt,
		maxCount: cfg.Engine.MaxCount,
	}

	router.GET("/healthz", handleHealthz)

	v1 := router.Group("/v1")
	{
		v1.GET("/grades", h.listGrades)
		v1.GET("/grades/:grade/categories", h.listCategories)
		v1.GET("/grades/:grade/categories/:category/rule", h.getRule)
		v1.GET("/grades/:grade/allocation", h.allocation)
		v1.POST("/questions", h.generate)
		v1.POST("/questions/smart", h.smart)
		v1.POST("/worksheets", h.createWorksheet)
		v1.GET("/worksheets/:id", h.getWorksheet)
	}
	return router
}

func handleHealthz(c *gin.Context) {
	c.String(http.StatusOK, "ok")
}
