// Пакет inkwell собирает HTTP-слой сервиса контента: отдачу и сохранение
// секций документа, выдачу готового HTML, загрузку файлов и обслуживание
// журнала отложенного удаления медиа.
//
// Основные возможности:
//   - REST API секций: контент в формате JSON и его HTML-представление.
//   - Загрузка файлов формой и по протоколу TUS.
//   - Каскадное удаление секций вместе с медиа.
//   - Метрики prometheus на отдельном порту.
package inkwell

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"gorm.io/gorm"

	"github.com/aisa-it/inkwell/internal/inkwell/business"
	"github.com/aisa-it/inkwell/internal/inkwell/config"
	"github.com/aisa-it/inkwell/internal/inkwell/cronmanager"
	"github.com/aisa-it/inkwell/internal/inkwell/dao"
	filestorage "github.com/aisa-it/inkwell/internal/inkwell/file-storage"
	"github.com/aisa-it/inkwell/internal/inkwell/maintenance"
	"github.com/aisa-it/inkwell/internal/inkwell/mediatracker"
)

type Services struct {
	db      *gorm.DB
	storage filestorage.FileStorage
	tracker *mediatracker.Tracker

	business *business.Business
}

var cfg *config.Config
var appVersion string

// ServerHeader middleware adds a `Server` header to the response.
func ServerHeader(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		c.Response().Header().Set(echo.HeaderServer, "Inkwell")
		return next(c)
	}
}

func Server(db *gorm.DB, c *config.Config, version string) {
	cfg = c
	appVersion = version

	e := echo.New()
	e.HideBanner = true
	e.HTTPErrorHandler = func(err error, c echo.Context) {
		code := http.StatusInternalServerError
		if he, ok := err.(*echo.HTTPError); ok {
			code = he.Code
		}

		// Ignore 404
		if code == http.StatusNotFound {
			c.NoContent(http.StatusNotFound)
			return
		}
		slog.Error("Unhandled error in endpoint", "url", c.Request().URL, "err", err)
		EErrorMsgStatus(c, nil, code)
	}

	var storage filestorage.FileStorage
	var err error
	if cfg.LocalStoragePath != "" {
		storage, err = filestorage.NewLocalStorage(cfg.LocalStoragePath)
	} else {
		storage, err = filestorage.NewMinioStorage(cfg.AWSEndpoint, cfg.AWSAccessKey, cfg.AWSSecretKey, false, cfg.AWSBucketName)
	}
	if err != nil {
		slog.Error("Fail init file storage", "err", err)
		os.Exit(1)
	}

	dao.FileStorage = storage

	tr := mediatracker.NewTracker(db, storage, cfg.WebURL,
		mediatracker.WithSweepBatch(cfg.SweepBatch),
	)
	bl := business.NewBL(db, tr)

	jobRegistry := cronmanager.JobRegistry{
		"orphan_sweep": cronmanager.Job{
			Func:     maintenance.NewOrphanSweeper(tr).Sweep,
			Schedule: fmt.Sprintf("@every %dm", cfg.SweepPeriod),
		},
	}

	// Create CronManager
	cronManager := cronmanager.NewCronManager(jobRegistry)
	if err := cronManager.LoadJobs(); err != nil {
		slog.Error("Failed to load cron jobs", "err", err)
		os.Exit(1)
	}

	s := &Services{
		db:       db,
		storage:  storage,
		tracker:  tr,
		business: bl,
	}

	// Start cronManager
	cronManager.Start()

	// Create a channel to handle termination signals
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		<-ctx.Done()
		slog.Info("Shutting down gracefully, press Ctrl+C again to force")
		cronManager.Stop()
		os.Exit(0)
	}()

	// Global middlewares
	e.Use(ServerHeader)
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowCredentials: true,
	}))
	e.Use(middleware.BodyLimitWithConfig(middleware.BodyLimitConfig{
		Limit: "5M",
		Skipper: func(c echo.Context) bool {
			return c.Path() == "/api/file/" ||
				strings.Contains(c.Path(), "/api/file/tus/")
		},
	}))
	e.Use(middleware.GzipWithConfig(middleware.GzipConfig{
		Level:     9,
		MinLength: 2048,
	}))
	if cfg.MetricsEnable {
		e.Use(echoprometheus.NewMiddleware("inkwell"))
	}
	e.Pre(middleware.AddTrailingSlashWithConfig(middleware.TrailingSlashConfig{
		Skipper: func(c echo.Context) bool {
			return strings.Contains(c.Request().URL.Path, "tus")
		},
	}))

	e.Validator = NewRequestValidator()

	apiGroup := e.Group("/api/")

	s.AddSectionServices(apiGroup)
	s.AddFileServices(apiGroup)

	// Version endpoint
	apiGroup.GET("version/", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]interface{}{
			"version": version,
		})
	})

	// Health endpoint
	apiGroup.GET("_health/", func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})

	// Prometheus metrics
	if cfg.MetricsEnable {
		go func() {
			bootTimeGauge := prometheus.NewGauge(prometheus.GaugeOpts{
				Namespace: "inkwell",
				Name:      "boot_time",
				Help:      "Server startup time",
			})
			bootTimeGauge.Set(float64(time.Now().UnixMilli()))

			if err := prometheus.Register(bootTimeGauge); err != nil {
				slog.Error("Register boot time gauge", "err", err)
				os.Exit(1)
			}
			if err := prometheus.Register(s.tracker.Collector()); err != nil {
				slog.Error("Register media tracker collector", "err", err)
				os.Exit(1)
			}

			metrics := echo.New()
			metrics.HideBanner = true
			metrics.GET("/metrics", echoprometheus.NewHandler())
			if err := metrics.Start(":2112"); err != nil && !errors.Is(err, http.ErrServerClosed) {
				slog.Error("Metrics server fail", "err", err)
			}
		}()
	}

	if err := e.Start(":8080"); err != nil {
		slog.Error("Server fail", "err", err)
	}
}
