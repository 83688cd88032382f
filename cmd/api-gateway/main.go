package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/noah-isme/academy-ops-api/api/swagger"
	"github.com/noah-isme/academy-ops-api/internal/handler"
	internalmiddleware "github.com/noah-isme/academy-ops-api/internal/middleware"
	"github.com/noah-isme/academy-ops-api/internal/models"
	"github.com/noah-isme/academy-ops-api/internal/repository"
	"github.com/noah-isme/academy-ops-api/internal/repository/memory"
	"github.com/noah-isme/academy-ops-api/internal/service"
	"github.com/noah-isme/academy-ops-api/pkg/cache"
	"github.com/noah-isme/academy-ops-api/pkg/config"
	"github.com/noah-isme/academy-ops-api/pkg/database"
	"github.com/noah-isme/academy-ops-api/pkg/export"
	"github.com/noah-isme/academy-ops-api/pkg/gateway"
	"github.com/noah-isme/academy-ops-api/pkg/logger"
	"github.com/noah-isme/academy-ops-api/pkg/tracing"
	corsmiddleware "github.com/noah-isme/academy-ops-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/academy-ops-api/pkg/middleware/requestid"
)

// @title Academy Ops API
// @version 1.0.0
// @description Admissions operations backend: consultation slots, workflow checklist and enrolled student lifecycle
// @BasePath /api/v1
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	location, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		logr.Sugar().Fatalw("invalid APP_TIMEZONE", "timezone", cfg.Timezone, "error", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	tracer, shutdownTracing, err := tracing.New(ctx, cfg.Otel)
	if err != nil {
		logr.Sugar().Fatalw("failed to init tracing", "error", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(shutdownCtx); err != nil {
			logr.Warn("tracing shutdown failed", zap.Error(err))
		}
	}()

	repos, closeStore, err := openStore(ctx, cfg, logr)
	if err != nil {
		logr.Sugar().Fatalw("failed to open store", "driver", cfg.Store.Driver, "error", err)
	}
	defer closeStore()

	var redisClient *redis.Client
	if cfg.SlotCache.Enabled || cfg.Gateway.Sink == config.GatewaySinkRedis {
		redisClient, err = cache.NewRedis(ctx, cfg.Redis)
		if err != nil {
			logr.Sugar().Fatalw("failed to connect redis", "error", err)
		}
		defer redisClient.Close() //nolint:errcheck
	}

	metricsSvc := service.NewMetricsService()
	var cacheSvc *service.CacheService
	if cfg.SlotCache.Enabled {
		cacheSvc = service.NewCacheService(repository.NewCacheRepository(redisClient, logr), metricsSvc, cfg.SlotCache.TTL, logr, true)
	}

	sink, closeSink, err := openSink(cfg, redisClient, logr)
	if err != nil {
		logr.Sugar().Fatalw("failed to init gateway sink", "sink", cfg.Gateway.Sink, "error", err)
	}
	defer closeSink()

	dispatcher := gateway.NewDispatcher(sink, gateway.DispatcherConfig{
		Workers:       cfg.Gateway.Workers,
		Retries:       cfg.Gateway.Retries,
		RetryDelay:    cfg.Gateway.RetryDelay,
		MaxRetryDelay: cfg.Gateway.MaxRetryDelay,
		Logger:        logr,
		OnFailure: func(ins gateway.Instruction, err error) {
			logr.Error("gateway instruction dropped",
				zap.String("instruction_id", ins.ID),
				zap.String("kind", string(ins.Kind)),
				zap.String("applicant_id", ins.ApplicantID),
				zap.Error(err),
			)
		},
	})
	// Outlives the signal context so requests draining during shutdown can still enqueue.
	dispatcher.Start(context.Background())
	defer dispatcher.Stop()

	triggers := service.DefaultTriggerTable()
	if err := triggers.Validate(); err != nil {
		logr.Sugar().Fatalw("invalid trigger table", "error", err)
	}

	validate := validator.New()
	exportSvc := service.NewExportService(service.ExportConfig{Title: cfg.Export.Title, Location: location}, logr, export.NewCSVExporter(), export.NewPDFExporter())
	slotSvc := service.NewSlotService(repos.Slots, cacheSvc, cfg.SlotCache.TTL, validate, logr)
	bookingSvc := service.NewBookingService(repos.Bookings, cacheSvc, metricsSvc, tracer, logr)
	applicantSvc := service.NewApplicantService(repos.Applicants, repos.Checklists, bookingSvc, exportSvc, validate, logr)
	workflowSvc := service.NewWorkflowService(repos.Applicants, repos.Checklists, repos.DocumentPackages, repos.Bookings,
		repos.Finalizer, dispatcher, metricsSvc, tracer, logr, service.WorkflowConfig{Location: location, Triggers: triggers})
	studentSvc := service.NewEnrolledStudentService(repos.EnrolledStudents, validate, logr)
	authSvc := service.NewAuthService(logr, service.AuthConfig{AccessTokenSecret: cfg.JWT.Secret, AccessTokenExpiry: cfg.JWT.Expiration})

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(internalmiddleware.Metrics(metricsSvc))
	r.Use(internalmiddleware.WithResponseMeta())

	metricsHandler := handler.NewMetricsHandler(metricsSvc, dispatcher)
	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", func(c *gin.Context) {
		if repos.Ping != nil {
			pingCtx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
			defer cancel()
			if err := repos.Ping(pingCtx); err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	if cfg.JWT.Enabled {
		api.Use(internalmiddleware.JWT(authSvc), internalmiddleware.RequireRoles(models.RoleSuperAdmin, models.RoleAdmin, models.RoleStaff))
	} else {
		api.Use(internalmiddleware.OptionalJWT(authSvc))
	}

	registerRoutes(api, routeHandlers{
		slots:      handler.NewSlotHandler(slotSvc, bookingSvc),
		applicants: handler.NewApplicantHandler(applicantSvc, bookingSvc),
		checklist:  handler.NewChecklistHandler(workflowSvc),
		students:   handler.NewStudentHandler(studentSvc),
		metrics:    metricsHandler,
	}, logr)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env, "store", cfg.Store.Driver, "gateway", cfg.Gateway.Sink)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Warn("graceful shutdown failed", zap.Error(err))
	}
}

type routeHandlers struct {
	slots      *handler.SlotHandler
	applicants *handler.ApplicantHandler
	checklist  *handler.ChecklistHandler
	students   *handler.StudentHandler
	metrics    *handler.MetricsHandler
}

func registerRoutes(api *gin.RouterGroup, h routeHandlers, logr *zap.Logger) {
	audit := func(action string) gin.HandlerFunc { return internalmiddleware.Audit(logr, action) }

	slots := api.Group("/slots")
	slots.GET("", h.slots.List)
	slots.POST("", audit("slot.create"), h.slots.Create)
	slots.POST("/:id/book", audit("slot.book"), h.slots.Book)
	slots.POST("/:id/open", audit("slot.toggle"), h.slots.ToggleOpen)

	applicants := api.Group("/applicants")
	applicants.GET("", h.applicants.List)
	applicants.POST("", audit("applicant.create"), h.applicants.Create)
	applicants.GET("/export", h.applicants.Export)
	applicants.GET("/:id", h.applicants.Get)
	applicants.POST("/:id/status", audit("applicant.status"), h.applicants.TransitionStatus)
	applicants.DELETE("/:id/reservation", audit("reservation.release"), h.applicants.ReleaseReservation)
	applicants.GET("/:id/checklist", h.checklist.Get)
	applicants.PUT("/:id/checklist/:stepKey", audit("checklist.set"), h.checklist.Set)

	students := api.Group("/students")
	students.GET("", h.students.List)
	students.GET("/:id", h.students.Get)
	students.POST("/:id/leave-review", audit("student.leave_review"), h.students.RequestLeave)
	students.POST("/:id/withdrawal-review", audit("student.withdrawal_review"), h.students.RequestWithdrawal)
	students.POST("/:id/review/confirm", audit("student.review_confirm"), h.students.ConfirmReview)
	students.POST("/:id/review/cancel", audit("student.review_cancel"), h.students.CancelReview)
	students.POST("/:id/return", audit("student.return"), h.students.ReturnFromLeave)

	api.GET("/ops/metrics", h.metrics.Summary)
}

func openStore(ctx context.Context, cfg *config.Config, logr *zap.Logger) (service.Repositories, func(), error) {
	switch cfg.Store.Driver {
	case config.StoreDriverMemory:
		logr.Warn("using in-memory store; data is lost on restart")
		store := memory.NewStore()
		return service.Repositories{
			Slots:            store.Slots(),
			Bookings:         store.Bookings(),
			Applicants:       store.Applicants(),
			Checklists:       store.Checklists(),
			DocumentPackages: store.DocumentPackages(),
			EnrolledStudents: store.EnrolledStudents(),
			Finalizer:        store.EnrolledStudents(),
		}, func() {}, nil
	case config.StoreDriverPostgres, "":
		db, err := database.NewPostgres(ctx, cfg.Database)
		if err != nil {
			return service.Repositories{}, nil, err
		}
		students := repository.NewEnrolledStudentRepository(db)
		return service.Repositories{
			Slots:            repository.NewSlotRepository(db),
			Bookings:         repository.NewBookingRepository(db),
			Applicants:       repository.NewApplicantRepository(db),
			Checklists:       repository.NewChecklistRepository(db),
			DocumentPackages: repository.NewDocumentPackageRepository(db),
			EnrolledStudents: students,
			Finalizer:        students,
			Ping:             db.PingContext,
		}, func() { _ = db.Close() }, nil
	default:
		return service.Repositories{}, nil, fmt.Errorf("unknown STORE_DRIVER %q", cfg.Store.Driver)
	}
}

func openSink(cfg *config.Config, redisClient *redis.Client, logr *zap.Logger) (gateway.Sink, func(), error) {
	switch cfg.Gateway.Sink {
	case config.GatewaySinkLog, "":
		return gateway.NewLogSink(logr), func() {}, nil
	case config.GatewaySinkRedis:
		return gateway.NewRedisSink(redisClient, cfg.Gateway.RedisChannel), func() {}, nil
	case config.GatewaySinkKafka:
		if len(cfg.Gateway.KafkaBrokers) == 0 {
			return nil, nil, errors.New("GATEWAY_KAFKA_BROKERS is empty")
		}
		sink := gateway.NewKafkaSink(cfg.Gateway.KafkaBrokers, cfg.Gateway.KafkaTopic)
		return sink, func() {
			if err := sink.Close(); err != nil {
				logr.Warn("kafka writer close failed", zap.Error(err))
			}
		}, nil
	default:
		return nil, nil, fmt.Errorf("unknown GATEWAY_SINK %q", cfg.Gateway.Sink)
	}
}
