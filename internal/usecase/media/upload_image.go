package media

import (
	"context"
	"errors"
	"io"
	"path/filepath"

	"github.com/ignatzorin/lostfound-backend/internal/domain/repository"
	"github.com/ignatzorin/lostfound-backend/internal/imaging"
	"github.com/ignatzorin/lostfound-backend/internal/pkg/apperror"
)

// UploadImageUseCase проверяет, уменьшает и сохраняет фотографию вещи или доказательства.
type UploadImageUseCase struct {
	images   repository.ImageStore
	maxBytes int64
}

func NewUploadImageUseCase(images repository.ImageStore, maxUploadMB int64) *UploadImageUseCase {
	return &UploadImageUseCase{images: images, maxBytes: maxUploadMB * 1024 * 1024}
}

// Execute возвращает публичный URL сохранённого изображения.
func (uc *UploadImageUseCase) Execute(ctx context.Context, fileName string, r io.Reader) (string, error) {
	data, err := io.ReadAll(io.LimitReader(r, uc.maxBytes+1))
	if err != nil {
		return "", apperror.Wrap(err, apperror.ErrCodeBadRequest, "не удалось прочитать файл")
	}
	if len(data) == 0 {
		return "", apperror.New(apperror.ErrCodeValidation, "файл не может быть пустым")
	}
	if int64(len(data)) > uc.maxBytes {
		return "", apperror.Newf(apperror.ErrCodePayloadTooLarge, "размер файла превышает лимит %d МБ", uc.maxBytes/(1024*1024))
	}

	img, err := imaging.Process(data, filepath.Ext(fileName))
	if err != nil {
		if errors.Is(err, imaging.ErrUnsupportedFormat) {
			return "", apperror.Wrap(err, apperror.ErrCodeValidation, "разрешены только изображения JPEG, PNG, GIF и WebP")
		}
		return "", apperror.Wrap(err, apperror.ErrCodeValidation, err.Error())
	}

	url, err := uc.images.Save(ctx, img.Data, img.ContentType, img.Ext)
	if err != nil {
		return "", apperror.Wrap(err, apperror.ErrCodeInternal, "не удалось сохранить изображение")
	}
	return url, nil
}
