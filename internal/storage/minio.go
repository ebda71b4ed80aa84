package storage

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/ignatzorin/lostfound-backend/internal/logger"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/sirupsen/logrus"
)

// MinIOStorage хранит изображения в бакете MinIO/S3 с публичным чтением.
type MinIOStorage struct {
	client         *minio.Client
	bucketName     string
	publicEndpoint string
}

func NewMinIOStorage(ctx context.Context, endpoint, publicEndpoint, accessKey, secretKey, bucketName string, useSSL bool) (*MinIOStorage, error) {
	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: useSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("storage: не удалось создать клиент MinIO: %w", err)
	}

	if publicEndpoint == "" {
		scheme := "http"
		if useSSL {
			scheme = "https"
		}
		publicEndpoint = scheme + "://" + endpoint
	}
	publicEndpoint = strings.TrimSuffix(strings.TrimSpace(publicEndpoint), "/")
	if !strings.Contains(publicEndpoint, "://") {
		publicEndpoint = "https://" + publicEndpoint
	}

	s := &MinIOStorage{
		client:         client,
		bucketName:     bucketName,
		publicEndpoint: publicEndpoint,
	}

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := s.ensureBucket(ctx); err != nil {
		// хранилище может подняться позже; health check покажет проблему
		logger.Log.WithError(err).WithField("bucket", bucketName).Warn("storage: не удалось проверить бакет")
	}

	logger.Log.WithFields(logrus.Fields{
		"endpoint":        endpoint,
		"public_endpoint": publicEndpoint,
		"bucket":          bucketName,
	}).Info("storage: MinIO подключён")
	return s, nil
}

func (s *MinIOStorage) ensureBucket(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.bucketName)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}

	if err := s.client.MakeBucket(ctx, s.bucketName, minio.MakeBucketOptions{}); err != nil {
		return fmt.Errorf("storage: не удалось создать бакет: %w", err)
	}
	policy := fmt.Sprintf(`{"Version":"2012-10-17","Statement":[{"Action":["s3:GetObject"],"Effect":"Allow","Principal":{"AWS":["*"]},"Resource":["arn:aws:s3:::%s/*"]}]}`, s.bucketName)
	if err := s.client.SetBucketPolicy(ctx, s.bucketName, policy); err != nil {
		return fmt.Errorf("storage: не удалось выставить политику бакета: %w", err)
	}
	logger.Log.WithField("bucket", s.bucketName).Info("storage: бакет создан")
	return nil
}

func (s *MinIOStorage) Save(ctx context.Context, data []byte, contentType, ext string) (string, error) {
	key := fmt.Sprintf("items/%s/%s%s", time.Now().UTC().Format("2006-01-02"), uuid.New().String(), sanitizeExt(ext))

	_, err := s.client.PutObject(ctx, s.bucketName, key, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", fmt.Errorf("storage: не удалось загрузить изображение: %w", err)
	}
	return s.ObjectURL(key), nil
}

func (s *MinIOStorage) Delete(ctx context.Context, imageURL string) error {
	key := s.KeyFromURL(imageURL)
	if key == "" {
		return nil
	}
	if err := s.client.RemoveObject(ctx, s.bucketName, key, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("storage: не удалось удалить изображение: %w", err)
	}
	return nil
}

func (s *MinIOStorage) ObjectURL(key string) string {
	return fmt.Sprintf("%s/%s/%s", s.publicEndpoint, s.bucketName, key)
}

// KeyFromURL возвращает ключ объекта или пустую строку, если URL не из нашего бакета.
func (s *MinIOStorage) KeyFromURL(imageURL string) string {
	u, err := url.Parse(imageURL)
	if err != nil {
		return ""
	}
	prefix := s.bucketName + "/"
	path := strings.TrimPrefix(u.Path, "/")
	if !strings.HasPrefix(path, prefix) {
		return ""
	}
	return strings.TrimPrefix(path, prefix)
}

func (s *MinIOStorage) HealthCheck(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.bucketName)
	if err != nil {
		return fmt.Errorf("storage: MinIO недоступен: %w", err)
	}
	if !exists {
		return fmt.Errorf("storage: бакет %s не существует", s.bucketName)
	}
	return nil
}
