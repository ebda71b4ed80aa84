package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/google/uuid"

	"github.com/ignatzorin/lostfound-backend/internal/logger"
	"github.com/ignatzorin/lostfound-backend/internal/models"
	"github.com/ignatzorin/lostfound-backend/internal/repository"
	"github.com/ignatzorin/lostfound-backend/internal/validation"
)

var (
	ErrInvalidCredentials  = errors.New("неверный email или пароль")
	ErrAccountBlocked      = errors.New("аккаунт заблокирован")
	ErrEmailRegistered     = errors.New("email уже зарегистрирован")
	ErrInvalidRefreshToken = errors.New("refresh токен невалиден или отозван")
	ErrInvalidInput        = errors.New("некорректные данные")
)

// AuthRepository описывает зависимости AuthService от слоя хранилища.
type AuthRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	UpdateLastLoginAt(ctx context.Context, userID uuid.UUID) error
	UpdatePassword(ctx context.Context, userID uuid.UUID, passwordHash string) error
	CreateSession(ctx context.Context, session *models.Session) error
	RotateSession(ctx context.Context, oldRefreshToken string, session *models.Session) error
	DeleteSession(ctx context.Context, refreshToken string) error
	ListSessions(ctx context.Context, userID uuid.UUID) ([]models.Session, error)
	DeleteSessionByID(ctx context.Context, sessionID uuid.UUID, userID uuid.UUID) error
	DeleteAllSessions(ctx context.Context, userID uuid.UUID) error
}

// OTPIssuer выпускает и проверяет одноразовые коды.
type OTPIssuer interface {
	Issue(ctx context.Context, email, purpose string) error
	Verify(ctx context.Context, email, purpose, code string) error
}

// AuthService инкапсулирует бизнес-логику регистрации и аутентификации.
type AuthService struct {
	repo         AuthRepository
	otp          OTPIssuer
	tokenManager *TokenManager
}

// RegisterInput содержит данные пользователя при регистрации.
type RegisterInput struct {
	Email        string
	Password     string
	Code         string
	DisplayName  string
	IsPartner    bool
	BusinessName string
}

// LoginInput содержит данные для входа.
type LoginInput struct {
	Email    string
	Password string
}

// ResetPasswordInput содержит данные для сброса пароля.
type ResetPasswordInput struct {
	Email       string
	Code        string
	NewPassword string
}

// AuthResult возвращает итог регистрации или авторизации.
type AuthResult struct {
	User      *models.User
	TokenPair *TokenPair
}

// SessionMeta сведения о клиенте, сохраняемые в сессии.
type SessionMeta struct {
	UserAgent string
	IP        string
}

// NewAuthService создаёт сервис аутентификации.
func NewAuthService(repo AuthRepository, otp OTPIssuer, tokenManager *TokenManager) *AuthService {
	return &AuthService{
		repo:         repo,
		otp:          otp,
		tokenManager: tokenManager,
	}
}

// RequestSignupCode отправляет код подтверждения для новой учётной записи.
func (s *AuthService) RequestSignupCode(ctx context.Context, email string) error {
	if err := validation.ValidateEmail(email); err != nil {
		return fmt.Errorf("auth service: %w: %v", ErrInvalidInput, err)
	}
	email = validation.NormalizeEmail(email)

	if _, err := s.repo.GetByEmail(ctx, email); err == nil {
		return fmt.Errorf("auth service: %w", ErrEmailRegistered)
	} else if !errors.Is(err, repository.ErrUserNotFound) {
		return err
	}

	return s.otp.Issue(ctx, email, models.OTPPurposeSignup)
}

// Register проверяет код и создаёт пользователя или партнёра.
func (s *AuthService) Register(ctx context.Context, in RegisterInput, meta SessionMeta) (*AuthResult, error) {
	if err := validateRegisterInput(in); err != nil {
		return nil, fmt.Errorf("auth service: %w: %v", ErrInvalidInput, err)
	}
	email := validation.NormalizeEmail(in.Email)

	if _, err := s.repo.GetByEmail(ctx, email); err == nil {
		return nil, fmt.Errorf("auth service: %w", ErrEmailRegistered)
	} else if !errors.Is(err, repository.ErrUserNotFound) {
		return nil, err
	}

	if err := s.otp.Verify(ctx, email, models.OTPPurposeSignup, strings.TrimSpace(in.Code)); err != nil {
		return nil, fmt.Errorf("auth service: %w", err)
	}

	passHash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("auth service: не удалось захешировать пароль: %w", err)
	}

	user := &models.User{
		Email:        email,
		PasswordHash: string(passHash),
		DisplayName:  strings.TrimSpace(in.DisplayName),
		Role:         models.RoleUser,
		Status:       models.UserStatusActive,
	}
	if in.IsPartner {
		business := strings.TrimSpace(in.BusinessName)
		user.Role = models.RolePartner
		user.BusinessName = &business
	}

	if err := s.repo.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrEmailTaken) {
			return nil, fmt.Errorf("auth service: %w", ErrEmailRegistered)
		}
		return nil, err
	}

	tokenPair, err := s.openSession(ctx, user, meta)
	if err != nil {
		return nil, err
	}

	return &AuthResult{User: user, TokenPair: tokenPair}, nil
}

// Login проверяет учётные данные и возвращает токены.
func (s *AuthService) Login(ctx context.Context, in LoginInput, meta SessionMeta) (*AuthResult, error) {
	if err := validation.ValidateEmail(in.Email); err != nil {
		return nil, fmt.Errorf("auth service: %w", ErrInvalidCredentials)
	}

	user, err := s.repo.GetByEmail(ctx, validation.NormalizeEmail(in.Email))
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, fmt.Errorf("auth service: %w", ErrInvalidCredentials)
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(in.Password)); err != nil {
		return nil, fmt.Errorf("auth service: %w", ErrInvalidCredentials)
	}

	// статус проверяем после пароля, чтобы не раскрывать существование аккаунта
	if !user.IsActive() {
		return nil, fmt.Errorf("auth service: %w", ErrAccountBlocked)
	}

	if err := s.repo.UpdateLastLoginAt(ctx, user.ID); err != nil {
		logger.Log.WithFields(map[string]interface{}{
			"user_id": user.ID,
			"error":   err.Error(),
		}).Warn("auth service: не удалось обновить last_login_at")
	}

	tokenPair, err := s.openSession(ctx, user, meta)
	if err != nil {
		return nil, err
	}

	return &AuthResult{User: user, TokenPair: tokenPair}, nil
}

// Refresh выпускает новую пару токенов и заменяет старую сессию.
func (s *AuthService) Refresh(ctx context.Context, oldToken string, meta SessionMeta) (*TokenPair, error) {
	userID, err := s.tokenManager.ParseRefresh(oldToken)
	if err != nil {
		return nil, fmt.Errorf("auth service: %w", ErrInvalidRefreshToken)
	}

	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, fmt.Errorf("auth service: %w", ErrInvalidRefreshToken)
		}
		return nil, err
	}
	if !user.IsActive() {
		return nil, fmt.Errorf("auth service: %w", ErrAccountBlocked)
	}

	tokenPair, refreshExp, err := s.tokenManager.GeneratePair(user)
	if err != nil {
		return nil, err
	}

	session := newSession(user.ID, tokenPair.RefreshToken, refreshExp, meta)
	if err := s.repo.RotateSession(ctx, oldToken, session); err != nil {
		if errors.Is(err, repository.ErrSessionNotFound) {
			return nil, fmt.Errorf("auth service: %w", ErrInvalidRefreshToken)
		}
		return nil, err
	}

	return tokenPair, nil
}

// Logout отзывает сессию по refresh токену.
func (s *AuthService) Logout(ctx context.Context, refreshToken string) error {
	if strings.TrimSpace(refreshToken) == "" {
		return fmt.Errorf("auth service: %w", ErrInvalidRefreshToken)
	}
	return s.repo.DeleteSession(ctx, refreshToken)
}

// ListSessions возвращает список активных сессий пользователя.
func (s *AuthService) ListSessions(ctx context.Context, userID uuid.UUID) ([]models.Session, error) {
	return s.repo.ListSessions(ctx, userID)
}

// DeleteSession удаляет сессию по идентификатору.
func (s *AuthService) DeleteSession(ctx context.Context, sessionID uuid.UUID, userID uuid.UUID) error {
	return s.repo.DeleteSessionByID(ctx, sessionID, userID)
}

// RequestPasswordReset отправляет код сброса пароля. Для неизвестного или
// заблокированного email ничего не делает и ошибку не возвращает.
func (s *AuthService) RequestPasswordReset(ctx context.Context, email string) error {
	if err := validation.ValidateEmail(email); err != nil {
		return fmt.Errorf("auth service: %w: %v", ErrInvalidInput, err)
	}
	email = validation.NormalizeEmail(email)

	user, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil
		}
		return err
	}
	if !user.IsActive() {
		return nil
	}

	return s.otp.Issue(ctx, email, models.OTPPurposePasswordReset)
}

// ResetPassword меняет пароль по коду и отзывает все сессии пользователя.
func (s *AuthService) ResetPassword(ctx context.Context, in ResetPasswordInput) error {
	if err := validation.ValidateEmail(in.Email); err != nil {
		return fmt.Errorf("auth service: %w: %v", ErrInvalidInput, err)
	}
	if err := validation.ValidatePassword(in.NewPassword); err != nil {
		return fmt.Errorf("auth service: %w: %v", ErrInvalidInput, err)
	}
	email := validation.NormalizeEmail(in.Email)

	user, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return fmt.Errorf("auth service: %w", ErrOTPInvalid)
		}
		return err
	}

	if err := s.otp.Verify(ctx, email, models.OTPPurposePasswordReset, strings.TrimSpace(in.Code)); err != nil {
		return fmt.Errorf("auth service: %w", err)
	}

	passHash, err := bcrypt.GenerateFromPassword([]byte(in.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("auth service: не удалось захешировать пароль: %w", err)
	}
	if err := s.repo.UpdatePassword(ctx, user.ID, string(passHash)); err != nil {
		return err
	}

	return s.repo.DeleteAllSessions(ctx, user.ID)
}

// Me возвращает текущего пользователя.
func (s *AuthService) Me(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	return s.repo.GetByID(ctx, userID)
}

func (s *AuthService) openSession(ctx context.Context, user *models.User, meta SessionMeta) (*TokenPair, error) {
	tokenPair, refreshExp, err := s.tokenManager.GeneratePair(user)
	if err != nil {
		return nil, err
	}

	if err := s.repo.CreateSession(ctx, newSession(user.ID, tokenPair.RefreshToken, refreshExp, meta)); err != nil {
		return nil, err
	}
	return tokenPair, nil
}

func newSession(userID uuid.UUID, refreshToken string, expiresAt time.Time, meta SessionMeta) *models.Session {
	session := &models.Session{
		UserID:       userID,
		RefreshToken: refreshToken,
		ExpiresAt:    expiresAt,
	}
	if meta.UserAgent != "" {
		ua := meta.UserAgent
		session.UserAgent = &ua
	}
	if meta.IP != "" {
		ip := meta.IP
		session.IPAddress = &ip
	}
	return session
}

func validateRegisterInput(in RegisterInput) error {
	if err := validation.ValidateEmail(in.Email); err != nil {
		return err
	}
	if err := validation.ValidatePassword(in.Password); err != nil {
		return err
	}
	if err := validation.ValidateDisplayName(in.DisplayName); err != nil {
		return err
	}
	if in.IsPartner {
		if err := validation.ValidateBusinessName(in.BusinessName); err != nil {
			return err
		}
	}
	return validation.ValidateOTPCode(in.Code)
}
