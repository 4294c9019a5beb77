package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	appoutbox "studyreserve/internal/app/outbox"
	"studyreserve/internal/app/reservations"
	appspaces "studyreserve/internal/app/spaces"
	"studyreserve/internal/domain/reservation"
	"studyreserve/internal/domain/spaces"
	"studyreserve/internal/infra/broker/kafka"
	"studyreserve/internal/infra/config"
	mongodb "studyreserve/internal/infra/db/mongo"
	ginserver "studyreserve/internal/infra/http/gin"
	"studyreserve/internal/infra/obs"
	infraoutbox "studyreserve/internal/infra/outbox"
	"studyreserve/internal/infra/security"
	"studyreserve/internal/infra/storage/memory"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "configuration error:", err)
		os.Exit(1)
	}
	logger := obs.NewLogger(cfg.Env)

	storage, err := buildStorage(cfg, logger)
	if err != nil {
		logger.Error("storage init failed", "error", err)
		os.Exit(1)
	}

	if err := loadSpaceFixtures(ctx, cfg, storage.seeder, logger); err != nil {
		logger.Warn("space fixtures load failed", "error", err)
	}

	var box appoutbox.Outbox
	if len(cfg.KafkaBrokers) > 0 {
		producer, err := kafka.NewProducer(cfg.KafkaBrokers, nil)
		if err != nil {
			logger.Error("kafka producer init failed", "error", err)
			os.Exit(1)
		}
		defer producer.Close()

		box = storage.outbox
		worker := &infraoutbox.Worker{
			Queue:       storage.queue,
			Producer:    producer,
			Interval:    cfg.OutboxPollInterval,
			TopicPrefix: cfg.KafkaTopicPrefix,
			Source:      "studyreserve",
			Backoff:     cfg.RetryBackoff,
			Logger:      logger,
		}
		go func() {
			if err := worker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("outbox worker stopped", "error", err)
			}
		}()
	} else {
		logger.Info("kafka brokers not configured, event publication disabled")
	}

	service, err := reservations.NewService(reservations.Config{
		Store:     storage.store,
		Directory: storage.directory,
		Clock:     reservations.SystemClock(),
		Window: reservations.Window{
			Open:        cfg.DayOpen,
			Close:       cfg.DayClose,
			SlotMinutes: cfg.SlotMinutes,
		},
		Outbox: box,
		Logger: logger,
	})
	if err != nil {
		logger.Error("service init failed", "error", err)
		os.Exit(1)
	}
	catalog := appspaces.NewCatalog(storage.directory)

	auth := ginserver.AuthMiddleware{
		Resolver: security.NewStaticPrincipalResolver(cfg.AuthTokens),
		Logger:   logger,
	}
	server := ginserver.NewServer(cfg, obs.Middleware{Logger: logger}, obs.HealthHandlers{Ready: storage.ready}, ginserver.Handlers{
		Reservations:   ginserver.ReservationHandler{Service: service, Clock: reservations.SystemClock()},
		Spaces:         ginserver.SpaceHandler{Catalog: catalog},
		AuthMiddleware: auth.Handle,
	})

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("http shutdown failed", "error", err)
		}
	}()

	logger.Info("HTTP server starting", "addr", cfg.HTTPAddr, "storage", cfg.Storage)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("http server failed", "error", err)
		os.Exit(1)
	}
	logger.Info("HTTP server stopped")
}

type spaceSeeder interface {
	Seed(ctx context.Context, list []*spaces.StudySpace) error
}

type storageBundle struct {
	store     reservation.Store
	directory spaces.Directory
	seeder    spaceSeeder
	outbox    appoutbox.Outbox
	queue     infraoutbox.Queue
	ready     func() error
}

func buildStorage(cfg config.Config, logger *slog.Logger) (storageBundle, error) {
	switch cfg.Storage {
	case config.StorageMongo:
		client, err := mongodb.New(cfg.MongoURI, cfg.MongoDB)
		if err != nil {
			return storageBundle{}, fmt.Errorf("connect mongo: %w", err)
		}
		outboxStore := mongodb.NewOutboxStore(client.DB)
		spaceRepo := mongodb.NewSpaceRepository(client.DB)
		logger.Info("mongo storage configured", "db", cfg.MongoDB)
		return storageBundle{
			store:     mongodb.NewReservationRepository(client.DB),
			directory: spaceRepo,
			seeder:    spaceRepo,
			outbox:    outboxStore,
			queue:     outboxStore,
			ready: func() error {
				pingCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
				defer cancel()
				return client.Ping(pingCtx)
			},
		}, nil
	default:
		queue := memory.NewOutboxQueue()
		directory := memory.NewSpaceDirectory()
		logger.Info("in-memory storage configured")
		return storageBundle{
			store:     memory.NewReservationStore(),
			directory: directory,
			seeder:    directory,
			outbox:    queue,
			queue:     queue,
			ready:     func() error { return nil },
		}, nil
	}
}

type spaceFixture struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Type       string `json:"type"`
	Location   string `json:"location"`
	Capacity   int    `json:"capacity"`
	Equipment  string `json:"equipment"`
	NoiseLevel string `json:"noise_level"`
	ImageURL   string `json:"image_url"`
}

func loadSpaceFixtures(ctx context.Context, cfg config.Config, seeder spaceSeeder, logger *slog.Logger) error {
	path := cfg.SpaceFixtures
	if path == "" {
		path = filepath.Join("data", "spaces.json")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			logger.Info("space fixtures file not found, skipping", "path", path)
			return nil
		}
		return fmt.Errorf("read fixtures: %w", err)
	}

	var fixtures []spaceFixture
	if err := json.Unmarshal(data, &fixtures); err != nil {
		return fmt.Errorf("decode fixtures: %w", err)
	}

	list := make([]*spaces.StudySpace, 0, len(fixtures))
	for _, fx := range fixtures {
		if fx.ID == "" || fx.Name == "" {
			logger.Warn("space fixture missing id or name, skipping")
			continue
		}
		level, ok := spaces.ParseNoiseLevel(fx.NoiseLevel)
		if !ok && fx.NoiseLevel != "" {
			logger.Warn("space fixture has unknown noise level", "space_id", fx.ID, "noise_level", fx.NoiseLevel)
		}
		list = append(list, &spaces.StudySpace{
			ID:         spaces.SpaceID(fx.ID),
			Name:       fx.Name,
			Type:       fx.Type,
			Location:   fx.Location,
			Capacity:   fx.Capacity,
			Equipment:  fx.Equipment,
			NoiseLevel: level,
			ImageURL:   fx.ImageURL,
		})
	}
	if len(list) == 0 {
		return nil
	}
	if err := seeder.Seed(ctx, list); err != nil {
		return fmt.Errorf("seed spaces: %w", err)
	}
	logger.Info("space fixtures imported", "count", len(list))
	return nil
}
