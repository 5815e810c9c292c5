package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	auditapp "github.com/wyfcoding/jobportal/internal/audit/application"
	auditmysql "github.com/wyfcoding/jobportal/internal/audit/infrastructure/persistence/mysql"
	audithttp "github.com/wyfcoding/jobportal/internal/audit/interfaces/http"
	authapp "github.com/wyfcoding/jobportal/internal/auth/application"
	authmysql "github.com/wyfcoding/jobportal/internal/auth/infrastructure/persistence/mysql"
	authredis "github.com/wyfcoding/jobportal/internal/auth/infrastructure/persistence/redis"
	authhttp "github.com/wyfcoding/jobportal/internal/auth/interfaces/http"
	notifyapp "github.com/wyfcoding/jobportal/internal/notification/application"
	notifymysql "github.com/wyfcoding/jobportal/internal/notification/infrastructure/persistence/mysql"
	"github.com/wyfcoding/jobportal/internal/notification/infrastructure/sender"
	notifyhttp "github.com/wyfcoding/jobportal/internal/notification/interfaces/http"
	recruitapp "github.com/wyfcoding/jobportal/internal/recruitment/application"
	recruitdomain "github.com/wyfcoding/jobportal/internal/recruitment/domain"
	"github.com/wyfcoding/jobportal/internal/recruitment/infrastructure/adapter"
	"github.com/wyfcoding/jobportal/internal/recruitment/infrastructure/messaging"
	recruitmysql "github.com/wyfcoding/jobportal/internal/recruitment/infrastructure/persistence/mysql"
	recruitredis "github.com/wyfcoding/jobportal/internal/recruitment/infrastructure/persistence/redis"
	recruithttp "github.com/wyfcoding/jobportal/internal/recruitment/interfaces/http"
	"github.com/wyfcoding/jobportal/pkg/cache"
	"github.com/wyfcoding/jobportal/pkg/config"
	"github.com/wyfcoding/jobportal/pkg/db"
	"github.com/wyfcoding/jobportal/pkg/metrics"
	"github.com/wyfcoding/jobportal/pkg/middleware"
	"github.com/wyfcoding/jobportal/pkg/mq"
	"github.com/wyfcoding/jobportal/pkg/ratelimit"
)

// portalApp 门户进程持有的资源与服务
type portalApp struct {
	cfg     *config.Config
	db      *db.DB
	redis   *cache.RedisCache
	metrics *metrics.Metrics
	limiter ratelimit.RateLimiter

	authCmd   *authapp.AuthCommandService
	authQuery *authapp.AuthQueryService
	types     recruitdomain.InterviewTypeRepository
	recruit   *recruitapp.Service
	notify    *notifyapp.NotificationService
	audit     *auditapp.Query
}

func initApp(cfg *config.Config, m *metrics.Metrics) (*portalApp, func(), error) {
	bootLog := slog.With("module", "bootstrap")

	// 1. 基础设施
	database, err := db.Init(db.Config{
		Driver:             cfg.Database.Driver,
		DSN:                cfg.Database.DSN,
		MaxOpenConns:       cfg.Database.MaxOpenConns,
		MaxIdleConns:       cfg.Database.MaxIdleConns,
		ConnMaxLifetime:    cfg.Database.ConnMaxLifetime,
		LogEnabled:         cfg.Database.LogEnabled,
		SlowQueryThreshold: cfg.Database.SlowQueryThreshold,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("database init failed: %w", err)
	}

	redisCache, err := cache.New(cache.Config{
		Host:         cfg.Redis.Host,
		Port:         cfg.Redis.Port,
		Password:     cfg.Redis.Password,
		DB:           cfg.Redis.DB,
		MaxPoolSize:  cfg.Redis.MaxPoolSize,
		ConnTimeout:  cfg.Redis.ConnTimeout,
		ReadTimeout:  cfg.Redis.ReadTimeout,
		WriteTimeout: cfg.Redis.WriteTimeout,
	})
	if err != nil {
		_ = database.Close()
		return nil, nil, fmt.Errorf("redis init failed: %w", err)
	}

	var producer *mq.KafkaProducer
	var events recruitdomain.EventPublisher = messaging.LogEventPublisher{}
	var publisher mq.Publisher
	if cfg.Kafka.Enabled {
		producer = mq.NewProducer(mq.KafkaConfig{
			Brokers:        cfg.Kafka.Brokers,
			GroupID:        cfg.Kafka.GroupID,
			SessionTimeout: cfg.Kafka.SessionTimeout,
			MaxRetries:     cfg.Kafka.MaxRetries,
			RetryBackoff:   cfg.Kafka.RetryBackoff,
		})
		publisher = producer
		events = messaging.NewKafkaEventPublisher(producer, cfg.Kafka.EventsTopic)
	}

	// 2. 治理能力
	limiter := ratelimit.NewRedisRateLimiter(redisCache.GetClient())

	// 3. 审计与通知
	bootLog.Info("initializing portal services...")
	auditRepo := auditmysql.NewAuditRepository(database.DB)
	recorder := auditapp.NewRecorder(auditRepo)

	mailSender, err := sender.New(cfg.Mail, publisher, cfg.Kafka.EmailTopic)
	if err != nil {
		_ = redisCache.Close()
		_ = database.Close()
		return nil, nil, err
	}
	notifySvc := notifyapp.NewNotificationService(notifymysql.NewNotificationRepository(database.DB), mailSender, m)

	// 4. 招聘
	depts := recruitmysql.NewDepartmentRepository(database.DB)
	types := recruitmysql.NewInterviewTypeRepository(database.DB)
	users := authmysql.NewUserRepository(database.DB)
	sessions := authredis.NewSessionRedisRepository(redisCache)
	authQuery := authapp.NewAuthQueryService(users, sessions)

	recruit := recruitapp.NewService(recruitapp.Deps{
		Departments:    depts,
		Jobs:           recruitmysql.NewJobRepository(database.DB),
		Applications:   recruitmysql.NewApplicationRepository(database.DB),
		Interviews:     recruitmysql.NewInterviewRepository(database.DB),
		InterviewTypes: types,
		Directory:      adapter.NewUserDirectory(authQuery),
		Notifier:       adapter.NewNotifier(notifySvc),
		Audit:          recorder,
		Events:         events,
		Lookups:        recruitredis.NewLookupCache(redisCache, time.Duration(cfg.Workflow.LookupCacheTTL)*time.Second),
		Policy:         recruitdomain.NewTransitionPolicy(cfg.Workflow.StrictTransitions),
		Metrics:        m,
	})

	// 5. 认证
	authCmd := authapp.NewAuthCommandService(users, sessions, recorder, authapp.CommandOptions{
		SessionTTL:     cfg.Session.TTL(),
		LoginPerMinute: cfg.RateLimit.LoginPerMinute,
		Limiter:        limiter,
		Departments:    recruit.Catalog,
		Staff:          recruit.InterviewQuery,
	})

	cleanup := func() {
		bootLog.Info("performing graceful shutdown...")
		if producer != nil {
			if err := producer.Close(); err != nil {
				bootLog.Error("failed to close kafka producer", "error", err)
			}
		}
		_ = redisCache.Close()
		_ = database.Close()
	}

	return &portalApp{
		cfg:       cfg,
		db:        database,
		redis:     redisCache,
		metrics:   m,
		limiter:   limiter,
		authCmd:   authCmd,
		authQuery: authQuery,
		types:     types,
		recruit:   recruit,
		notify:    notifySvc,
		audit:     auditapp.NewQuery(auditRepo),
	}, cleanup, nil
}

// migrateAndSeed 建表并写入初始管理员与面试类别
func (a *portalApp) migrateAndSeed(ctx context.Context) error {
	models := []any{&authmysql.UserModel{}, &notifymysql.NotificationModel{}, &auditmysql.AuditLogModel{}}
	models = append(models, recruitmysql.Models()...)
	if err := a.db.AutoMigrate(models...); err != nil {
		return err
	}
	if err := a.types.EnsureDefaults(ctx, recruitdomain.DefaultInterviewTypes); err != nil {
		return fmt.Errorf("seed interview types: %w", err)
	}
	if err := a.authCmd.EnsureAdmin(ctx, a.cfg.Seed.AdminEmail, a.cfg.Seed.AdminPassword); err != nil {
		return fmt.Errorf("seed admin: %w", err)
	}
	slog.Info("database migrated", "tables", len(models))
	return nil
}

func (a *portalApp) router() *gin.Engine {
	if !a.cfg.IsDev() {
		gin.SetMode(gin.ReleaseMode)
	}
	e := gin.New()
	e.Use(
		middleware.GinTraceMiddleware(),
		middleware.GinLoggingMiddleware(),
		middleware.GinRecoveryMiddleware(),
		middleware.GinCORSMiddleware(a.cfg.HTTP.AllowOrigins),
		middleware.GinMetricsMiddleware(a.metrics),
	)

	// 系统路由不限流
	e.GET("/healthz", a.health)

	api := e.Group("/api/v1", middleware.RateLimitMiddleware(a.limiter, a.cfg.RateLimit))
	authed := api.Group("", authhttp.Authenticate(a.authQuery, a.cfg.Session.CookieName))

	authhttp.NewHandler(a.authCmd, a.authQuery, a.cfg.Session).RegisterRoutes(api, authed)
	recruithttp.NewHandler(a.recruit).RegisterRoutes(api, authed)
	notifyhttp.NewHandler(a.notify).RegisterRoutes(authed)
	audithttp.NewHandler(a.audit).RegisterRoutes(authed.Group("/admin", authhttp.RequireRole("admin")))

	slog.Info("HTTP service configured successfully", "service", a.cfg.ServiceName)
	return e
}

func (a *portalApp) health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	status, code := "UP", http.StatusOK
	checks := gin.H{"database": "UP", "redis": "UP"}
	if sqlDB, err := a.db.DB.DB(); err != nil || sqlDB.PingContext(ctx) != nil {
		checks["database"], status, code = "DOWN", "DOWN", http.StatusServiceUnavailable
	}
	if err := a.redis.GetClient().Ping(ctx).Err(); err != nil {
		checks["redis"], status, code = "DOWN", "DOWN", http.StatusServiceUnavailable
	}
	c.JSON(code, gin.H{
		"status":    status,
		"service":   a.cfg.ServiceName,
		"checks":    checks,
		"timestamp": time.Now().Unix(),
	})
}
