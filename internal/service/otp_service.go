package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/ignatzorin/lostfound-backend/internal/models"
	"github.com/ignatzorin/lostfound-backend/internal/repository"
)

var (
	ErrOTPInvalid          = errors.New("неверный или использованный код")
	ErrOTPExpired          = errors.New("срок действия кода истёк, запросите новый")
	ErrOTPAttemptsExceeded = errors.New("превышено число попыток, запросите новый код")
)

// OTPStore описывает хранилище одноразовых кодов.
type OTPStore interface {
	Replace(ctx context.Context, code *models.OTPCode) error
	GetActive(ctx context.Context, email, purpose string) (*models.OTPCode, error)
	ReserveAttempt(ctx context.Context, id uuid.UUID, maxAttempts int) (int, error)
	MarkUsed(ctx context.Context, id uuid.UUID) error
}

// OTPMailer доставляет код пользователю.
type OTPMailer interface {
	SendOTP(ctx context.Context, email, purpose, code string) error
}

// OTPService выпускает и проверяет одноразовые коды для регистрации и сброса пароля.
type OTPService struct {
	store       OTPStore
	mailer      OTPMailer
	ttl         time.Duration
	maxAttempts int
	now         func() time.Time
	generate    func() (string, error)
}

// NewOTPService создаёт сервис одноразовых кодов.
func NewOTPService(store OTPStore, mailer OTPMailer, ttl time.Duration, maxAttempts int) *OTPService {
	return &OTPService{
		store:       store,
		mailer:      mailer,
		ttl:         ttl,
		maxAttempts: maxAttempts,
		now:         time.Now,
		generate:    generateNumericCode,
	}
}

// Issue выпускает новый код, гасит предыдущие и отправляет его на почту.
// Ошибка доставки возвращается вызывающему.
func (s *OTPService) Issue(ctx context.Context, email, purpose string) error {
	code, err := s.generate()
	if err != nil {
		return fmt.Errorf("otp service: генерация кода: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(code), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("otp service: хеширование кода: %w", err)
	}

	record := &models.OTPCode{
		Email:     email,
		Purpose:   purpose,
		CodeHash:  string(hash),
		ExpiresAt: s.now().Add(s.ttl),
	}
	if err := s.store.Replace(ctx, record); err != nil {
		return err
	}

	if err := s.mailer.SendOTP(ctx, email, purpose, code); err != nil {
		return fmt.Errorf("otp service: не удалось отправить код: %w", err)
	}
	return nil
}

// Verify проверяет код и гасит его при успехе. Каждая проверка, включая успешную,
// занимает попытку до сравнения, так что параллельные запросы не обходят лимит.
func (s *OTPService) Verify(ctx context.Context, email, purpose, code string) error {
	record, err := s.store.GetActive(ctx, email, purpose)
	if err != nil {
		if errors.Is(err, repository.ErrOTPNotFound) {
			return ErrOTPInvalid
		}
		return err
	}

	if !s.now().Before(record.ExpiresAt) {
		return ErrOTPExpired
	}

	attempt, err := s.store.ReserveAttempt(ctx, record.ID, s.maxAttempts)
	switch {
	case errors.Is(err, repository.ErrOTPAttemptsExhausted):
		return ErrOTPAttemptsExceeded
	case errors.Is(err, repository.ErrOTPNotFound):
		return ErrOTPInvalid
	case err != nil:
		return err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(record.CodeHash), []byte(code)); err != nil {
		if attempt >= s.maxAttempts {
			return ErrOTPAttemptsExceeded
		}
		return ErrOTPInvalid
	}

	if err := s.store.MarkUsed(ctx, record.ID); err != nil {
		if errors.Is(err, repository.ErrOTPNotFound) {
			// код погасил параллельный запрос
			return ErrOTPInvalid
		}
		return err
	}
	return nil
}

func generateNumericCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1_000_000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}
