package server

import (
	"embed"
	"net/http"

	"github.com/abduss/fileshare/internal/config"
	"github.com/abduss/fileshare/internal/file"
	"github.com/abduss/fileshare/internal/logger"
	"github.com/abduss/fileshare/internal/metrics"
	"github.com/gin-gonic/gin"
)

//go:embed static/index.html
var staticFS embed.FS

// Dependencies groups the services required by the HTTP router.
type Dependencies struct {
	Config      config.Config
	Store       file.Store
	Blobs       file.BlobStore
	FileService *file.Service
}

// NewRouter builds a Gin engine with foundational middleware and routes.
func NewRouter(deps Dependencies) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(logger.Middleware())
	router.Use(metrics.Middleware())
	// uploads above this spill to temp files instead of memory
	router.MaxMultipartMemory = 32 << 20

	registerHealthRoutes(router, deps)
	if path := deps.Config.Metrics.PrometheusPath; path != "" {
		metrics.Register(router, path)
	}

	router.GET("/", serveIndex)
	router.GET("/index.html", serveIndex)

	if deps.FileService != nil {
		file.RegisterRoutes(router, deps.FileService, file.HandlerOptions{
			PublicURL:           deps.Config.Server.PublicURL,
			TrustForwardedProto: deps.Config.Server.TrustForwardedProto,
		})
	}

	return router
}

func serveIndex(c *gin.Context) {
	page, err := staticFS.ReadFile("static/index.html")
	if err != nil {
		c.Status(http.StatusInternalServerError)
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", page)
}
