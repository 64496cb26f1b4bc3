package http

import (
	"context"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"path2prevention/internal/bootstrap"
	postgresClient "path2prevention/internal/platform/postgres"
	rabbitmqClient "path2prevention/internal/platform/rabbitmq"
	"path2prevention/internal/transport/http/handler"
	"path2prevention/internal/transport/http/middleware"
)

func NewRouter(app *bootstrap.App) *gin.Engine {
	gin.SetMode(app.Config.App.GinMode)
	router := gin.New()
	router.Use(
		gin.Recovery(),
		otelgin.Middleware(app.Config.App.Name),
		middleware.AttachTraceContext(),
		middleware.RequestLogger(app.Log),
		middleware.CORS(app.Config.CORS.AllowOrigins),
	)

	svc := app.Services
	healthHandler := handler.NewHealthHandler(app.Config.App.Name, app.Config.App.Env, app.StartedAt, dependencyCheckers(app))
	programHandler := handler.NewProgramHandler(svc.Programs, svc.Semantic)
	maintenanceHandler := handler.NewMaintenanceHandler(svc.Maintenance, svc.Index)
	assessmentHandler := handler.NewAssessmentHandler(svc.Assessments)
	adminHandler := handler.NewAdminHandler(svc.Admin)
	chatHandler := handler.NewChatHandler(svc.Chat)

	router.GET("/healthz", healthHandler.Check)

	api := router.Group("/api")
	api.GET("/hello", healthHandler.Hello)
	api.GET("/health", healthHandler.Health)

	programs := api.Group("/programs")
	programs.GET("/all", programHandler.All)
	programs.GET("/search", programHandler.Search)
	programs.GET("/search-by-name", programHandler.SearchByName)
	programs.GET("/recommended", programHandler.Recommended)
	programs.GET("/stats", programHandler.Stats)
	programs.POST("/semantic-search", programHandler.SemanticSearch)
	programs.GET("/:id", programHandler.GetByID)

	api.POST("/assessments", assessmentHandler.Submit)
	api.POST("/admin/login", adminHandler.Login)

	chatGroup := api.Group("/chat")
	chatGroup.POST("/sessions", chatHandler.CreateSession)
	chatGroup.GET("/sessions/:id", chatHandler.GetSession)
	chatGroup.DELETE("/sessions/:id", chatHandler.DeleteSession)
	chatGroup.POST("/messages", chatHandler.SendMessage)

	admin := api.Group("")
	admin.Use(middleware.AdminJWT(app.Config.Auth.JWTSecret, svc.Admin.Enabled()))
	admin.POST("/init-db", maintenanceHandler.InitDB)
	admin.POST("/populate-sample-data", maintenanceHandler.PopulateSampleData)
	admin.POST("/init-vector-db", maintenanceHandler.InitVectorDB)
	admin.POST("/programs/index", maintenanceHandler.IndexPrograms)
	admin.GET("/db-structure", maintenanceHandler.DBStructure)

	return router
}

func dependencyCheckers(app *bootstrap.App) map[string]handler.Checker {
	checkers := make(map[string]handler.Checker)
	if app.Postgres != nil {
		checkers["postgres"] = func(ctx context.Context) error {
			return postgresClient.Ping(ctx, app.Postgres)
		}
	}
	if app.Redis != nil {
		checkers["redis"] = func(ctx context.Context) error {
			return app.Redis.Ping(ctx).Err()
		}
	}
	if app.Config.RabbitMQ.Enabled {
		checkers["rabbitmq"] = func(context.Context) error {
			return rabbitmqClient.Ping(app.MQConn)
		}
	}
	return checkers
}
