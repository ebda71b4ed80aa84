package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// MediaURLPrefix путь, по которому gin раздаёт локальное хранилище.
const MediaURLPrefix = "/media/"

// PhotoStorage хранит изображения на локальном диске. Используется, когда MinIO не настроен.
type PhotoStorage struct {
	rootPath      string
	publicBaseURL string
}

// NewPhotoStorage создаёт файловое хранилище.
func NewPhotoStorage(rootPath, publicBaseURL string) (*PhotoStorage, error) {
	if err := os.MkdirAll(rootPath, 0o755); err != nil {
		return nil, fmt.Errorf("storage: не удалось создать каталог %s: %w", rootPath, err)
	}

	return &PhotoStorage{
		rootPath:      rootPath,
		publicBaseURL: strings.TrimRight(publicBaseURL, "/"),
	}, nil
}

func (s *PhotoStorage) RootPath() string {
	return s.rootPath
}

// Save записывает файл через временный файл и возвращает публичный URL.
func (s *PhotoStorage) Save(ctx context.Context, data []byte, contentType, ext string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	day := time.Now().UTC().Format("2006-01-02")
	dir := filepath.Join(s.rootPath, day)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("storage: не удалось создать каталог: %w", err)
	}

	fileName := uuid.New().String() + sanitizeExt(ext)
	targetPath := filepath.Join(dir, fileName)
	tempPath := targetPath + ".tmp"

	if err := os.WriteFile(tempPath, data, 0o644); err != nil {
		_ = os.Remove(tempPath)
		return "", fmt.Errorf("storage: ошибка записи файла: %w", err)
	}
	if err := os.Rename(tempPath, targetPath); err != nil {
		_ = os.Remove(tempPath)
		return "", fmt.Errorf("storage: не удалось переименовать файл: %w", err)
	}

	return s.publicBaseURL + MediaURLPrefix + day + "/" + fileName, nil
}

// Delete удаляет файл по его публичному URL. Чужие URL игнорируются.
func (s *PhotoStorage) Delete(ctx context.Context, url string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	relative, ok := s.relativePath(url)
	if !ok {
		return nil
	}

	target := filepath.Join(s.rootPath, relative)
	if err := os.Remove(target); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("storage: не удалось удалить файл: %w", err)
	}
	return nil
}

func (s *PhotoStorage) relativePath(url string) (string, bool) {
	prefix := s.publicBaseURL + MediaURLPrefix
	if !strings.HasPrefix(url, prefix) {
		return "", false
	}
	relative := filepath.Clean(filepath.FromSlash(strings.TrimPrefix(url, prefix)))
	if relative == "." || strings.HasPrefix(relative, "..") || filepath.IsAbs(relative) {
		return "", false
	}
	return relative, true
}

// sanitizeExt оставляет только безопасное расширение.
func sanitizeExt(ext string) string {
	ext = strings.ToLower(filepath.Base(ext))
	ext = strings.ReplaceAll(ext, "/", "")
	ext = strings.ReplaceAll(ext, "\\", "")
	if !strings.HasPrefix(ext, ".") || len(ext) < 2 || len(ext) > 6 || strings.Contains(ext[1:], ".") {
		return ".bin"
	}
	return ext
}
