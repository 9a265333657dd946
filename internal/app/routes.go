package app

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/onyria-app/core/internal/middleware"
	"github.com/onyria-app/core/internal/modules/accounts/user"
	"github.com/onyria-app/core/internal/modules/diary/dream"
	"github.com/onyria-app/core/internal/modules/processing/ai"
	"github.com/onyria-app/core/internal/modules/processing/emotion"
	"github.com/onyria-app/core/internal/modules/processing/imagegen"
	"github.com/onyria-app/core/internal/modules/processing/interpret"
	"github.com/onyria-app/core/internal/modules/processing/transcribe"
	"github.com/onyria-app/core/internal/modules/storage/file"
	appconfigs "github.com/onyria-app/core/internal/modules/system/core/configs"
	"github.com/onyria-app/core/internal/modules/system/core/health"
	"github.com/onyria-app/core/internal/modules/system/util/servertime"
	pkgredis "github.com/onyria-app/core/internal/pkg/redis"
	"github.com/onyria-app/core/internal/pkg/response"
	"github.com/onyria-app/core/internal/pkg/taskqueue"
)

const apiPrefix = "/api/v1"

func (a *App) registerRoutes(rc *pkgredis.Client) {
	r := a.router
	db := a.db
	authMW := middleware.Auth(db)

	r.NoRoute(func(c *gin.Context) {
		response.NotFound(c)
	})
	r.NoMethod(func(c *gin.Context) {
		response.MethodNotAllowed(c)
	})

	appInfo := gin.H{
		"name":     "onyria-core",
		"version":  "1.0.0",
		"homepage": "https://github.com/onyria-app/core",
	}

	// Rate limiting and idempotence run on every route (requires Redis).
	r.Use(middleware.RateLimit(rc.Raw()))
	r.Use(middleware.Idempotence(rc.Raw()))

	// Shared services
	cfgSvc := appconfigs.NewService(db)
	taskSvc := taskqueue.NewService(rc)

	mediaDir := a.cfg.MediaDir()

	fileHandler := file.NewHandler(db, cfgSvc, mediaDir,
		file.WithLogger(a.logger),
		file.WithTaskQueue(taskSvc),
	)

	// Media files are served outside the API prefix.
	r.GET("/media/*mediapath", fileHandler.ServeMedia)

	// Versioned API
	api := r.Group(apiPrefix)
	api.Use(middleware.OptionalAuth(db))
	api.Use(middleware.HTTPCache(rc.Raw(), middleware.HTTPCacheOptions{
		TTL:       15 * time.Second,
		Disable:   a.cfg.IsDev(),
		SkipPaths: httpCacheSkipPaths(apiPrefix),
	}))

	api.GET("", func(c *gin.Context) { c.PureJSON(http.StatusOK, appInfo) })
	api.GET("/info", func(c *gin.Context) { c.PureJSON(http.StatusOK, appInfo) })
	api.GET("/ping", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"data": "pong"}) })
	api.GET("/uptime", func(c *gin.Context) {
		uptimeMs := time.Since(processStart).Milliseconds()
		c.JSON(http.StatusOK, gin.H{
			"timestamp": uptimeMs,
			"humanize":  humanizeDuration(time.Duration(uptimeMs) * time.Millisecond),
		})
	})

	api.GET("/clean_cache", authMW, func(c *gin.Context) {
		cfgSvc.Invalidate()
		deleted, err := middleware.PurgeHTTPCache(c.Request.Context(), rc.Raw())
		if err != nil {
			response.InternalError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"ok": true, "deleted": deleted})
	})

	// Infrastructure
	health.RegisterRoutes(api, db, a.sched, authMW)
	servertime.RegisterRoutes(api)

	// Config
	appconfigs.NewHandler(cfgSvc).RegisterRoutes(api, authMW)

	// AI providers
	ai.NewHandler(cfgSvc).RegisterRoutes(api, authMW)

	// Accounts
	user.NewHandler(user.NewService(db, cfgSvc)).RegisterRoutes(api, authMW)

	// Dream diary pipeline
	dreamSvc := dream.NewService(db,
		transcribe.NewService(cfgSvc),
		emotion.NewService(cfgSvc),
		interpret.NewService(cfgSvc),
		imagegen.NewService(cfgSvc, mediaDir, imagegen.WithLogger(a.logger)),
		dream.WithLogger(a.logger),
	)
	dream.NewHandler(dreamSvc, cfgSvc).RegisterRoutes(api, authMW)

	// Media references
	fileHandler.RegisterRoutes(api, authMW)
}

func httpCacheSkipPaths(prefix string) []string {
	return []string{
		prefix + "/uptime",
		prefix + "/ping",
		prefix + "/clean_cache",
		prefix + "/server-time",
		prefix + "/user/allow-login",
		prefix + "/user/check_logged",
	}
}
