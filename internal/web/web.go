package web

import (
	"homevault/auth"
	"homevault/internal/backup"
	"homevault/internal/db"
	"homevault/internal/export"
	"homevault/internal/importer"
	"homevault/internal/predict"
	"homevault/internal/web/api"
	"homevault/internal/web/middleware"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

// Services are the dependencies the web server exposes over HTTP
type Services struct {
	DB        *db.DB
	Redis     *redis.Client
	JWTSecret string
	Export    *export.Manager
	Import    *importer.Manager
	Backup    *backup.Service
	Predict   *predict.Engine
}

type WebServer struct {
	router *gin.Engine
}

func NewWebServer(s Services) *WebServer {
	router := gin.Default()

	authModule := auth.NewAuthModule(s.DB.Pool(), s.Redis, s.JWTSecret)
	middlewareManager := middleware.NewMiddlewareManager(s.DB.Pool(), s.Redis, authModule)

	api.RegisterAuthRoutes(router, middlewareManager, authModule)
	api.RegisterDeviceRoutes(router, middlewareManager, s.DB)
	api.RegisterExportRoutes(router, middlewareManager, s.Export)
	api.RegisterImportRoutes(router, middlewareManager, s.Import)
	api.RegisterBackupRoutes(router, middlewareManager, s.Backup)
	api.RegisterInsightRoutes(router, middlewareManager, s.DB, s.Predict)

	return &WebServer{router: router}
}

func (ws *WebServer) Start(addr string) {
	ws.router.Run(addr)
}
