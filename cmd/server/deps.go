package main

import (
	"context"

	"github.com/ignatzorin/lostfound-backend/internal/ai"
	"github.com/ignatzorin/lostfound-backend/internal/config"
	"github.com/ignatzorin/lostfound-backend/internal/domain/repository"
	httpHandlers "github.com/ignatzorin/lostfound-backend/internal/http/handlers"
	"github.com/ignatzorin/lostfound-backend/internal/infrastructure/messaging"
	"github.com/ignatzorin/lostfound-backend/internal/logger"
	"github.com/ignatzorin/lostfound-backend/internal/storage"
)

// newImageStore выбирает MinIO, если задан endpoint, иначе локальный каталог.
// Второе значение каталог для раздачи /media, пустой для MinIO.
func newImageStore(ctx context.Context, cfg *config.Config) (repository.ImageStore, string, error) {
	if cfg.MinIO.Endpoint != "" {
		store, err := storage.NewMinIOStorage(ctx,
			cfg.MinIO.Endpoint,
			cfg.MinIO.PublicEndpoint,
			cfg.MinIO.AccessKey,
			cfg.MinIO.SecretKey,
			cfg.MinIO.Bucket,
			cfg.MinIO.UseSSL,
		)
		if err != nil {
			return nil, "", err
		}
		logger.Log.WithField("bucket", cfg.MinIO.Bucket).Info("main: изображения хранятся в MinIO")
		return store, "", nil
	}

	store, err := storage.NewPhotoStorage(cfg.MediaStoragePath, cfg.PublicBaseURL)
	if err != nil {
		return nil, "", err
	}
	logger.Log.WithField("path", store.RootPath()).Info("main: изображения хранятся локально")
	return store, store.RootPath(), nil
}

type messagingDeps struct {
	publisher repository.EventPublisher
	mailer    repository.Mailer
	health    httpHandlers.HealthChecker
	close     func()
}

// newMessaging подключает RabbitMQ. Без RABBITMQ_URL события отбрасываются,
// а письма пишутся в лог.
func newMessaging(cfg *config.Config) (*messagingDeps, error) {
	if cfg.RabbitMQ.URL == "" {
		logger.Log.Warn("main: RABBITMQ_URL не задан, письма пишутся в лог")
		return &messagingDeps{
			publisher: messaging.NoopPublisher{},
			mailer:    messaging.LogMailer{},
			close:     func() {},
		}, nil
	}

	publisher, err := messaging.NewRabbitMQPublisher(cfg.RabbitMQ.URL, cfg.RabbitMQ.Exchange)
	if err != nil {
		return nil, err
	}

	return &messagingDeps{
		publisher: publisher,
		mailer:    messaging.NewRabbitMailer(publisher),
		health: httpHandlers.HealthCheckFunc(func(context.Context) error {
			return publisher.HealthCheck()
		}),
		close: func() {
			if err := publisher.Close(); err != nil {
				logger.Log.WithError(err).Warn("main: ошибка закрытия соединения с RabbitMQ")
			}
		},
	}, nil
}

// newMatcher возвращает nil, если подбор совпадений отключён: сценарии тогда
// отдают пустой список.
func newMatcher(ctx context.Context, cfg *config.Config) (repository.Matcher, error) {
	switch cfg.AI.Provider {
	case "gemini":
		client, err := ai.NewGeminiClient(ctx, cfg.AI.GeminiAPIKey, cfg.AI.GeminiModel)
		if err != nil {
			return nil, err
		}
		return client, nil
	case "openai":
		if cfg.AI.BaseURL == "" || cfg.AI.Model == "" {
			logger.Log.Warn("main: AI_BASE_URL или AI_MODEL не заданы, подбор совпадений отключён")
			return nil, nil
		}
		return ai.NewClient(cfg.AI.BaseURL, cfg.AI.Model, cfg.AI.APIKey), nil
	default:
		logger.Log.Info("main: подбор совпадений отключён")
		return nil, nil
	}
}
