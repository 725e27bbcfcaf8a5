package bootstrap

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/locvowork/task_management_sample/internal/auth"
	"github.com/locvowork/task_management_sample/internal/config"
	"github.com/locvowork/task_management_sample/internal/database"
	"github.com/locvowork/task_management_sample/internal/domain"
	"github.com/locvowork/task_management_sample/internal/handler"
	"github.com/locvowork/task_management_sample/internal/logger"
	"github.com/locvowork/task_management_sample/internal/repository"
	"github.com/locvowork/task_management_sample/internal/repository/memory"
	"github.com/locvowork/task_management_sample/internal/service"
	"github.com/locvowork/task_management_sample/pkg/googlecloud"
)

const shutdownTimeout = 10 * time.Second

type App struct {
	Echo *echo.Echo
	DB   *sql.DB
	GCP  *googlecloud.Client
}

func NewApp() *App {
	e := echo.New()
	e.HideBanner = true
	return &App{
		Echo: e,
	}
}

func (a *App) Initialize(ctx context.Context) error {
	// Load environment configuration
	if err := config.LoadEnvConfig(); err != nil {
		return fmt.Errorf("failed to load env config: %w", err)
	}

	// Initialize logging
	logger.InitLogging(config.DefaultEnvConfig.LOG_FILE_PATH)
	logger.SetLevel(config.DefaultEnvConfig.LOG_LEVEL)
	logger.InfoLog(ctx, "Environment variables loaded successfully")

	users, tasks, err := a.initStorage(ctx)
	if err != nil {
		return err
	}

	hasher, err := auth.NewPasswordHasher(config.DefaultEnvConfig.PASSWORD_HASHER)
	if err != nil {
		return err
	}
	if config.DefaultEnvConfig.JWT_SECRET == config.DefaultJWTSecret {
		logger.WarnLog(ctx, "JWT_SECRET is not set, using the built-in development secret")
	}
	codec := auth.NewTokenCodec(config.DefaultEnvConfig.JWT_SECRET)
	resolver := auth.NewSessionResolver(codec, users)

	// Initialize dependencies
	authSvc := service.NewAuthService(users, hasher, codec)
	taskSvc := service.NewTaskService(tasks)
	authHandler := handler.NewAuthHandler(authSvc, config.DefaultEnvConfig.IsProduction())
	taskHandler := handler.NewTaskHandler(taskSvc)

	// Register Middlewares
	a.RegisterMiddlewares()

	// Register Routes
	a.RegisterRoutes(resolver, authHandler, taskHandler)

	return nil
}

// initStorage opens the backend named by STORAGE_DRIVER. Handles it opens are
// released by Close.
func (a *App) initStorage(ctx context.Context) (domain.UserRepository, domain.TaskRepository, error) {
	switch config.DefaultEnvConfig.STORAGE_DRIVER {
	case config.StorageDriverMemory:
		logger.WarnLog(ctx, "Using in-memory storage; data is lost on restart")
		store := memory.NewStore()
		return store.Users(), store.Tasks(), nil

	case config.StorageDriverDatastore:
		gcpClient, err := googlecloud.NewClient(ctx, config.DefaultEnvConfig.GCP_PROJECT_ID)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to initialize GCP client: %w", err)
		}
		a.GCP = gcpClient
		logger.InfoLog(ctx, "Connected to Datastore project %s", config.DefaultEnvConfig.GCP_PROJECT_ID)
		return gcpClient.Users(), gcpClient.Tasks(), nil

	default:
		dbConfig := database.Config{
			Host:            config.DefaultEnvConfig.DB_HOST,
			Port:            config.DefaultEnvConfig.DB_PORT,
			User:            config.DefaultEnvConfig.DB_USER,
			Password:        config.DefaultEnvConfig.DB_PASSWORD,
			DBName:          config.DefaultEnvConfig.DB_NAME,
			SSLMode:         config.DefaultEnvConfig.DB_SSL_MODE,
			MaxOpenConns:    config.DefaultEnvConfig.DB_MAX_OPEN_CONNS,
			MaxIdleConns:    config.DefaultEnvConfig.DB_MAX_IDLE_CONNS,
			ConnMaxLifetime: config.DefaultEnvConfig.DB_CONN_MAX_LIFETIME,
		}

		db, err := database.NewPostgresDB(ctx, dbConfig)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to initialize database: %w", err)
		}
		a.DB = db

		if err := database.Migrate(ctx, db); err != nil {
			return nil, nil, fmt.Errorf("failed to migrate database: %w", err)
		}
		return repository.NewUserRepository(db), repository.NewTaskRepository(db), nil
	}
}

func (a *App) RegisterMiddlewares() {
	a.Echo.Use(middleware.RequestID())
	a.Echo.Use(requestContext)
	a.Echo.Use(middleware.Logger())
	a.Echo.Use(middleware.Recover())
	a.Echo.Use(middleware.CORS())
}

// requestContext copies the request id into the request context for logger.
func requestContext(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if id := c.Response().Header().Get(echo.HeaderXRequestID); id != "" {
			req := c.Request()
			c.SetRequest(req.WithContext(logger.WithRequestID(req.Context(), id)))
		}
		return next(c)
	}
}

func (a *App) RegisterRoutes(resolver *auth.SessionResolver, authHandler *handler.AuthHandler, taskHandler *handler.TaskHandler) {
	a.Echo.GET("/healthz", a.healthHandler)

	requireUser := auth.RequireUser(resolver)

	authGroup := a.Echo.Group("/api/auth")
	authGroup.POST("/register", authHandler.RegisterHandler)
	authGroup.POST("/login", authHandler.LoginHandler)
	authGroup.POST("/logout", authHandler.LogoutHandler)
	authGroup.GET("/me", authHandler.MeHandler, requireUser)

	taskGroup := a.Echo.Group("/api/tasks", requireUser)
	taskGroup.GET("", taskHandler.ListHandler)
	taskGroup.POST("", taskHandler.CreateHandler)
	taskGroup.GET("/reminders", taskHandler.RemindersHandler)
	taskGroup.GET("/export", taskHandler.ExportHandler)
	taskGroup.GET("/:id", taskHandler.GetHandler)
	taskGroup.PUT("/:id", taskHandler.UpdateHandler)
	taskGroup.PATCH("/:id", taskHandler.UpdateHandler)
	taskGroup.DELETE("/:id", taskHandler.DeleteHandler)
}

func (a *App) healthHandler(c echo.Context) error {
	if a.DB != nil {
		if err := a.DB.PingContext(c.Request().Context()); err != nil {
			logger.ErrorLog(c.Request().Context(), "health check failed: %v", err)
			return c.JSON(http.StatusServiceUnavailable, echo.Map{"status": "unavailable"})
		}
	}
	return c.JSON(http.StatusOK, echo.Map{"status": "ok"})
}

// Run serves until SIGINT or SIGTERM, then shuts the server down gracefully and
// closes the storage handles.
func (a *App) Run() error {
	defer a.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- a.Echo.Start(":" + config.DefaultEnvConfig.APP_PORT)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	logger.InfoLog(ctx, "Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return a.Echo.Shutdown(shutdownCtx)
}

// Close releases the storage handles opened by Initialize.
func (a *App) Close() {
	ctx := context.Background()
	if a.DB != nil {
		if err := a.DB.Close(); err != nil {
			logger.ErrorLog(ctx, "failed to close database: %v", err)
		}
	}
	if a.GCP != nil {
		if err := a.GCP.Close(); err != nil {
			logger.ErrorLog(ctx, "failed to close GCP client: %v", err)
		}
	}
}
