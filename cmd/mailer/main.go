package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	notifyapp "github.com/wyfcoding/jobportal/internal/notification/application"
	notifymysql "github.com/wyfcoding/jobportal/internal/notification/infrastructure/persistence/mysql"
	"github.com/wyfcoding/jobportal/internal/notification/infrastructure/sender"
	"github.com/wyfcoding/jobportal/pkg/config"
	"github.com/wyfcoding/jobportal/pkg/db"
	"github.com/wyfcoding/jobportal/pkg/logger"
	"github.com/wyfcoding/jobportal/pkg/metrics"
	"github.com/wyfcoding/jobportal/pkg/mq"
	"golang.org/x/sync/errgroup"
)

var configPath = flag.String("config", "configs/mailer/config.toml", "config file path")

func main() {
	flag.Parse()

	// 1. 配置
	cfg, err := config.Load(*configPath)
	if err != nil {
		panic(fmt.Sprintf("failed to load config: %v", err))
	}
	if !cfg.Kafka.Enabled {
		panic("mailer requires kafka.enabled = true")
	}

	// 2. 日志与指标
	if err := logger.Init(logger.Config{
		Level:      cfg.Logger.Level,
		Format:     cfg.Logger.Format,
		Output:     cfg.Logger.Output,
		FilePath:   cfg.Logger.FilePath,
		MaxSize:    cfg.Logger.MaxSize,
		MaxBackups: cfg.Logger.MaxBackups,
		MaxAge:     cfg.Logger.MaxAge,
		Compress:   cfg.Logger.Compress,
		WithCaller: cfg.Logger.WithCaller,
		Service:    cfg.ServiceName,
	}); err != nil {
		panic(fmt.Sprintf("failed to init logger: %v", err))
	}
	m := metrics.New(cfg.ServiceName)

	// 3. 数据库，用于回写通知状态
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
		slog.Error("failed to connect database", "error", err)
		os.Exit(1)
	}
	defer database.Close()

	// 4. Kafka
	kafkaCfg := mq.KafkaConfig{
		Brokers:        cfg.Kafka.Brokers,
		GroupID:        cfg.Kafka.GroupID,
		SessionTimeout: cfg.Kafka.SessionTimeout,
		MaxRetries:     cfg.Kafka.MaxRetries,
		RetryBackoff:   cfg.Kafka.RetryBackoff,
	}
	consumer := mq.NewConsumer(kafkaCfg, cfg.Kafka.EmailTopic)
	defer consumer.Close()
	producer := mq.NewProducer(kafkaCfg)
	defer producer.Close()

	// 5. 消费者
	worker := notifyapp.NewMailWorker(
		consumer,
		sender.NewSMTPSender(cfg.Mail.Host, cfg.Mail.Port, cfg.Mail.Username, cfg.Mail.Password, cfg.Mail.From),
		mq.NewDeadLetterQueue(producer, cfg.Kafka.EmailDLQTopic),
		notifymysql.NewNotificationRepository(database.DB),
		m,
		notifyapp.MailWorkerOptions{MaxAttempts: uint(cfg.Mail.MaxAttempts)},
	)

	// 6. 启动
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return worker.Run(gctx)
	})

	if cfg.Metrics.Enabled {
		metricsSrv := m.NewServer(cfg.Metrics.Port, cfg.Metrics.Path)
		g.Go(func() error {
			if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		})
		g.Go(func() error {
			<-gctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return metricsSrv.Shutdown(shutdownCtx)
		})
	}

	slog.Info("mailer started", "topic", cfg.Kafka.EmailTopic, "dlq", cfg.Kafka.EmailDLQTopic)
	if err := g.Wait(); err != nil {
		slog.Error("mailer exited with error", "error", err)
		os.Exit(1)
	}
}
