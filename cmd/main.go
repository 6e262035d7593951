package main

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/DavidGamba/go-getoptions"
	_ "github.com/lib/pq"
	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
	"google.golang.org/grpc"
	"google.golang.org/grpc/reflection"

	"cargahub/messaging-service/internal/config"
	"cargahub/messaging-service/internal/directory"
	"cargahub/messaging-service/internal/events"
	grpcServer "cargahub/messaging-service/internal/grpc"
	"cargahub/messaging-service/internal/httpapi"
	"cargahub/messaging-service/internal/push"
	"cargahub/messaging-service/internal/repository"
	"cargahub/messaging-service/internal/service"
	"cargahub/messaging-service/internal/settings"
	"cargahub/messaging-service/internal/view"

	pb "github.com/kegazani/metachat-proto/chat"
	"github.com/sirupsen/logrus"
)

func parseCommandLine() string {
	var configPath string
	opt := getoptions.New()

	opt.Bool("help", false, opt.Alias("h", "?"))
	opt.StringVar(&configPath, "config", "./config/config.yaml",
		opt.Alias("c"),
		opt.Description("the path to the configuration file"))

	_, err := opt.Parse(os.Args[1:])
	if opt.Called("help") {
		fmt.Fprint(os.Stderr, opt.Help())
		os.Exit(0)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n\n", err)
		fmt.Fprint(os.Stderr, opt.Help(getoptions.HelpSynopsis))
		os.Exit(1)
	}
	return configPath
}

func newLogger(cfg config.LoggingConfig) *logrus.Logger {
	logger := logrus.New()

	switch cfg.Level {
	case "debug":
		logger.SetLevel(logrus.DebugLevel)
	case "info":
		logger.SetLevel(logrus.InfoLevel)
	case "warn":
		logger.SetLevel(logrus.WarnLevel)
	case "error":
		logger.SetLevel(logrus.ErrorLevel)
	default:
		logger.SetLevel(logrus.InfoLevel)
	}

	if cfg.Format == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{})
	}
	return logger
}

// newSettingsRepository opens the configured key-value backend. The returned
// closer releases its connection.
func newSettingsRepository(cfg *config.Config, logger *logrus.Logger) (settings.Repository, io.Closer, error) {
	switch cfg.Settings.Backend {
	case "", "memory":
		return settings.NewMemoryRepository(), nil, nil

	case "file":
		repo, err := settings.NewFileRepository(cfg.Settings.Dir)
		return repo, nil, err

	case "postgres":
		db, err := sql.Open("postgres", cfg.Database.DSN())
		if err != nil {
			return nil, nil, errors.Wrap(err, "failed to connect to database")
		}
		db.SetMaxOpenConns(25)
		db.SetMaxIdleConns(5)
		db.SetConnMaxLifetime(5 * time.Minute)

		if err := db.Ping(); err != nil {
			db.Close()
			return nil, nil, errors.Wrap(err, "failed to ping database")
		}
		logger.Info("Connected to PostgreSQL database")

		repo := settings.NewPostgresRepository(db)
		if err := repo.InitializeTables(); err != nil {
			db.Close()
			return nil, nil, errors.Wrap(err, "failed to initialize database tables")
		}
		return repo, db, nil

	case "redis":
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := client.Ping(context.Background()).Err(); err != nil {
			client.Close()
			return nil, nil, errors.Wrap(err, "failed to ping redis")
		}
		logger.Info("Connected to Redis")
		return settings.NewRedisRepository(client, cfg.Redis.Prefix), client, nil
	}
	return nil, nil, errors.Errorf("unknown settings backend %q", cfg.Settings.Backend)
}

func newDirectory(cfg *config.Config) (directory.Provider, error) {
	if cfg.Directory.SeedFile == "" {
		return directory.NewStaticProvider(nil), nil
	}
	return directory.LoadFile(cfg.Directory.SeedFile)
}

func newPusher(cfg *config.Config, logger *logrus.Logger) (push.Pusher, io.Closer, error) {
	switch cfg.Push.Backend {
	case "", "disabled":
		return push.Disabled{}, nil, nil
	case "kafka":
		if len(cfg.Push.Kafka.Brokers) == 0 {
			return nil, nil, errors.New("push.kafka.brokers is empty")
		}
		p := push.NewKafkaPusher(cfg.Push.Kafka.Brokers, cfg.Push.Kafka.Topic, push.Permission(cfg.Push.Permission), logger)
		return p, p, nil
	}
	return nil, nil, errors.Errorf("unknown push backend %q", cfg.Push.Backend)
}

// newEventSource returns nil when no producer is configured.
func newEventSource(cfg *config.Config, logger *logrus.Logger) (events.Source, io.Closer, error) {
	switch cfg.Events.Source {
	case "", "none":
		return nil, nil, nil
	case "kafka":
		if len(cfg.Events.Kafka.Brokers) == 0 {
			return nil, nil, errors.New("events.kafka.brokers is empty")
		}
		s := events.NewKafkaSource(cfg.Events.Kafka.Brokers, cfg.Events.Kafka.Topic, cfg.Events.Kafka.GroupID, logger)
		return s, s, nil
	case "amqp":
		return events.NewAMQPSource(events.AMQPSettings{
			URI:          cfg.Events.AMQP.URI,
			ExchangeName: cfg.Events.AMQP.ExchangeName,
			ExchangeType: cfg.Events.AMQP.ExchangeType,
			QueueName:    cfg.Events.AMQP.QueueName,
			RoutingKey:   cfg.Events.AMQP.RoutingKey,
		}, logger), nil, nil
	case "simulator":
		if cfg.Events.Simulator.UserID == "" {
			return nil, nil, errors.New("events.simulator.user_id is empty")
		}
		sim, err := events.NewSimulator(cfg.Events.Simulator.UserID, cfg.Events.Simulator.Interval, cfg.Events.Simulator.Seed, logger)
		if err != nil {
			return nil, nil, err
		}
		return sim, nil, nil
	}
	return nil, nil, errors.Errorf("unknown event source %q", cfg.Events.Source)
}

func main() {
	configPath := parseCommandLine()

	cfg, err := config.Load(configPath)
	if err != nil {
		logrus.Fatalf("Failed to read config file: %v", err)
	}

	logger := newLogger(cfg.Logging)

	location, err := cfg.Location()
	if err != nil {
		logger.Fatalf("Failed to load display timezone: %v", err)
	}

	var closers []io.Closer
	defer func() {
		for _, c := range closers {
			if err := c.Close(); err != nil {
				logger.WithError(err).Warn("Failed to close resource")
			}
		}
	}()

	settingsRepo, closer, err := newSettingsRepository(cfg, logger)
	if err != nil {
		logger.Fatalf("Failed to open settings backend: %v", err)
	}
	if closer != nil {
		closers = append(closers, closer)
	}
	logger.WithField("backend", cfg.Settings.Backend).Info("Settings backend ready")

	users, err := newDirectory(cfg)
	if err != nil {
		logger.Fatalf("Failed to load user directory: %v", err)
	}

	pusher, closer, err := newPusher(cfg, logger)
	if err != nil {
		logger.Fatalf("Failed to set up push delivery: %v", err)
	}
	if closer != nil {
		closers = append(closers, closer)
	}

	source, closer, err := newEventSource(cfg, logger)
	if err != nil {
		logger.Fatalf("Failed to set up event source: %v", err)
	}
	if closer != nil {
		closers = append(closers, closer)
	}

	chatService := service.NewChatService(repository.NewChatRepository(), users, logger)
	notificationService := service.NewNotificationService(
		repository.NewNotificationRepository(),
		settingsRepo,
		pusher,
		logger,
		service.WithLocation(location),
		service.WithIcon(cfg.Push.Icon),
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var wg sync.WaitGroup
	if source != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			logger.WithField("source", cfg.Events.Source).Info("Consuming notification events")
			if err := notificationService.Consume(ctx, source); err != nil {
				logger.WithError(err).Error("Notification event source stopped")
			}
		}()
	}

	address := net.JoinHostPort(cfg.Server.Host, cfg.Server.Port)
	lis, err := net.Listen("tcp", address)
	if err != nil {
		logger.Fatalf("Failed to listen on %s: %v", address, err)
	}

	s := grpc.NewServer()
	pb.RegisterChatServiceServer(s, grpcServer.NewChatServer(chatService, logger))

	if cfg.Server.ReflectionEnabled {
		reflection.Register(s)
		logger.Info("gRPC reflection enabled")
	}

	go func() {
		logger.Infof("Starting gRPC server on %s", address)
		if err := s.Serve(lis); err != nil {
			logger.Fatalf("Failed to start gRPC server: %v", err)
		}
	}()

	handler := httpapi.NewHandler(chatService, notificationService, users, logger, httpapi.Options{
		Location: location,
		Locale:   view.LocaleFor(cfg.Display.Locale),
	})
	httpSrv := &http.Server{
		Addr:    cfg.HTTP.Address,
		Handler: handler.Router(),
	}

	go func() {
		logger.Infof("Starting HTTP server on %s", cfg.HTTP.Address)
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("Failed to start HTTP server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down servers...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Warn("HTTP server shutdown failed")
	}

	done := make(chan struct{})
	go func() {
		s.GracefulStop()
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		logger.Info("Servers exited gracefully")
	case <-shutdownCtx.Done():
		logger.Info("Server shutdown timeout")
		s.Stop()
	}

	logger.Info("Server exited")
}
