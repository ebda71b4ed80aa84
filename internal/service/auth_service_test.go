package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/ignatzorin/lostfound-backend/internal/models"
	"github.com/ignatzorin/lostfound-backend/internal/repository"
)

// mockAuthRepository реализует AuthRepository для тестов.
type mockAuthRepository struct {
	usersByEmail map[string]*models.User
	usersByID    map[uuid.UUID]*models.User
	sessions     map[string]*models.Session
}

func newMockAuthRepository() *mockAuthRepository {
	return &mockAuthRepository{
		usersByEmail: make(map[string]*models.User),
		usersByID:    make(map[uuid.UUID]*models.User),
		sessions:     make(map[string]*models.Session),
	}
}

func (m *mockAuthRepository) Create(ctx context.Context, user *models.User) error {
	if _, ok := m.usersByEmail[user.Email]; ok {
		return repository.ErrEmailTaken
	}
	user.ID = uuid.New()
	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now
	m.usersByEmail[user.Email] = user
	m.usersByID[user.ID] = user
	return nil
}

func (m *mockAuthRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	if user, ok := m.usersByEmail[email]; ok {
		return user, nil
	}
	return nil, repository.ErrUserNotFound
}

func (m *mockAuthRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	if user, ok := m.usersByID[id]; ok {
		return user, nil
	}
	return nil, repository.ErrUserNotFound
}

func (m *mockAuthRepository) UpdateLastLoginAt(ctx context.Context, userID uuid.UUID) error {
	if user, ok := m.usersByID[userID]; ok {
		now := time.Now()
		user.LastLoginAt = &now
	}
	return nil
}

func (m *mockAuthRepository) UpdatePassword(ctx context.Context, userID uuid.UUID, passwordHash string) error {
	user, ok := m.usersByID[userID]
	if !ok {
		return repository.ErrUserNotFound
	}
	user.PasswordHash = passwordHash
	return nil
}

func (m *mockAuthRepository) CreateSession(ctx context.Context, session *models.Session) error {
	session.ID = uuid.New()
	session.CreatedAt = time.Now()
	m.sessions[session.RefreshToken] = session
	return nil
}

func (m *mockAuthRepository) RotateSession(ctx context.Context, oldRefreshToken string, session *models.Session) error {
	old, ok := m.sessions[oldRefreshToken]
	if !ok || old.UserID != session.UserID {
		return repository.ErrSessionNotFound
	}
	delete(m.sessions, oldRefreshToken)
	return m.CreateSession(ctx, session)
}

func (m *mockAuthRepository) DeleteSession(ctx context.Context, refreshToken string) error {
	delete(m.sessions, refreshToken)
	return nil
}

func (m *mockAuthRepository) ListSessions(ctx context.Context, userID uuid.UUID) ([]models.Session, error) {
	var sessions []models.Session
	for _, s := range m.sessions {
		if s.UserID == userID {
			sessions = append(sessions, *s)
		}
	}
	return sessions, nil
}

func (m *mockAuthRepository) DeleteSessionByID(ctx context.Context, sessionID uuid.UUID, userID uuid.UUID) error {
	for token, s := range m.sessions {
		if s.ID == sessionID && s.UserID == userID {
			delete(m.sessions, token)
			return nil
		}
	}
	return repository.ErrSessionNotFound
}

func (m *mockAuthRepository) DeleteAllSessions(ctx context.Context, userID uuid.UUID) error {
	for token, s := range m.sessions {
		if s.UserID == userID {
			delete(m.sessions, token)
		}
	}
	return nil
}

// fakeOTP принимает только код "123456" и запоминает выпуски.
type fakeOTP struct {
	issued []string
}

func (f *fakeOTP) Issue(ctx context.Context, email, purpose string) error {
	f.issued = append(f.issued, purpose+":"+email)
	return nil
}

func (f *fakeOTP) Verify(ctx context.Context, email, purpose, code string) error {
	if code != "123456" {
		return ErrOTPInvalid
	}
	return nil
}

const testPassword = "Secret123"

func newTestAuthService() (*AuthService, *mockAuthRepository, *fakeOTP) {
	repo := newMockAuthRepository()
	otp := &fakeOTP{}
	tokens := NewTokenManager("access-secret", "refresh-secret", time.Minute, time.Hour)
	return NewAuthService(repo, otp, tokens), repo, otp
}

func registerUser(t *testing.T, svc *AuthService, email string, partner bool) *AuthResult {
	t.Helper()
	in := RegisterInput{
		Email:       email,
		Password:    testPassword,
		Code:        "123456",
		DisplayName: "Анна",
		IsPartner:   partner,
	}
	if partner {
		in.BusinessName = "Бюро находок ТЦ"
	}
	res, err := svc.Register(context.Background(), in, SessionMeta{UserAgent: "test", IP: "127.0.0.1"})
	require.NoError(t, err)
	return res
}

func TestAuthService_RequestSignupCode(t *testing.T) {
	svc, _, otp := newTestAuthService()
	ctx := context.Background()

	require.NoError(t, svc.RequestSignupCode(ctx, "  New@Example.com "))
	assert.Equal(t, []string{"signup:new@example.com"}, otp.issued)

	registerUser(t, svc, "taken@example.com", false)
	err := svc.RequestSignupCode(ctx, "taken@example.com")
	assert.ErrorIs(t, err, ErrEmailRegistered)

	err = svc.RequestSignupCode(ctx, "not-an-email")
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestAuthService_RegisterAndLogin(t *testing.T) {
	svc, repo, _ := newTestAuthService()
	ctx := context.Background()

	res := registerUser(t, svc, "User@Example.com", false)
	assert.Equal(t, "user@example.com", res.User.Email)
	assert.Equal(t, models.RoleUser, res.User.Role)
	assert.Equal(t, models.UserStatusActive, res.User.Status)
	assert.Nil(t, res.User.BusinessName)
	assert.NotEmpty(t, res.TokenPair.AccessToken)
	require.Len(t, repo.sessions, 1)

	session := repo.sessions[res.TokenPair.RefreshToken]
	require.NotNil(t, session)
	require.NotNil(t, session.UserAgent)
	assert.Equal(t, "test", *session.UserAgent)

	login, err := svc.Login(ctx, LoginInput{Email: "user@example.com", Password: testPassword}, SessionMeta{})
	require.NoError(t, err)
	assert.Equal(t, res.User.ID, login.User.ID)
	assert.NotNil(t, repo.usersByID[res.User.ID].LastLoginAt)

	_, err = svc.Login(ctx, LoginInput{Email: "user@example.com", Password: "Wrong1234"}, SessionMeta{})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Login(ctx, LoginInput{Email: "ghost@example.com", Password: testPassword}, SessionMeta{})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestAuthService_RegisterPartner(t *testing.T) {
	svc, _, _ := newTestAuthService()

	res := registerUser(t, svc, "desk@mall.example", true)
	assert.Equal(t, models.RolePartner, res.User.Role)
	require.NotNil(t, res.User.BusinessName)
	assert.Equal(t, "Бюро находок ТЦ", *res.User.BusinessName)

	_, err := svc.Register(context.Background(), RegisterInput{
		Email:       "nobiz@mall.example",
		Password:    testPassword,
		Code:        "123456",
		DisplayName: "Партнёр",
		IsPartner:   true,
	}, SessionMeta{})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestAuthService_RegisterRejectsBadCodeAndDuplicates(t *testing.T) {
	svc, repo, _ := newTestAuthService()
	ctx := context.Background()

	_, err := svc.Register(ctx, RegisterInput{
		Email:       "a@example.com",
		Password:    testPassword,
		Code:        "000000",
		DisplayName: "Анна",
	}, SessionMeta{})
	assert.ErrorIs(t, err, ErrOTPInvalid)
	assert.Empty(t, repo.usersByEmail)

	registerUser(t, svc, "a@example.com", false)
	_, err = svc.Register(ctx, RegisterInput{
		Email:       "a@example.com",
		Password:    testPassword,
		Code:        "123456",
		DisplayName: "Анна",
	}, SessionMeta{})
	assert.ErrorIs(t, err, ErrEmailRegistered)
}

func TestAuthService_LoginBlockedAccount(t *testing.T) {
	svc, repo, _ := newTestAuthService()

	res := registerUser(t, svc, "bad@example.com", false)
	repo.usersByID[res.User.ID].Status = models.UserStatusBanned

	_, err := svc.Login(context.Background(), LoginInput{Email: "bad@example.com", Password: testPassword}, SessionMeta{})
	assert.ErrorIs(t, err, ErrAccountBlocked)
}

func TestAuthService_Refresh(t *testing.T) {
	svc, repo, _ := newTestAuthService()
	ctx := context.Background()

	res := registerUser(t, svc, "r@example.com", false)
	oldToken := res.TokenPair.RefreshToken

	pair, err := svc.Refresh(ctx, oldToken, SessionMeta{})
	require.NoError(t, err)
	assert.NotEqual(t, oldToken, pair.RefreshToken)
	assert.Len(t, repo.sessions, 1)

	// повторное использование старого токена отклоняется
	_, err = svc.Refresh(ctx, oldToken, SessionMeta{})
	assert.ErrorIs(t, err, ErrInvalidRefreshToken)

	_, err = svc.Refresh(ctx, "garbage", SessionMeta{})
	assert.ErrorIs(t, err, ErrInvalidRefreshToken)

	repo.usersByID[res.User.ID].Status = models.UserStatusSuspended
	_, err = svc.Refresh(ctx, pair.RefreshToken, SessionMeta{})
	assert.ErrorIs(t, err, ErrAccountBlocked)
}

func TestAuthService_LogoutRevokesSession(t *testing.T) {
	svc, repo, _ := newTestAuthService()
	ctx := context.Background()

	res := registerUser(t, svc, "out@example.com", false)
	require.NoError(t, svc.Logout(ctx, res.TokenPair.RefreshToken))
	assert.Empty(t, repo.sessions)

	_, err := svc.Refresh(ctx, res.TokenPair.RefreshToken, SessionMeta{})
	assert.ErrorIs(t, err, ErrInvalidRefreshToken)
}

func TestAuthService_Sessions(t *testing.T) {
	svc, _, _ := newTestAuthService()
	ctx := context.Background()

	res := registerUser(t, svc, "s@example.com", false)
	_, err := svc.Login(ctx, LoginInput{Email: "s@example.com", Password: testPassword}, SessionMeta{})
	require.NoError(t, err)

	sessions, err := svc.ListSessions(ctx, res.User.ID)
	require.NoError(t, err)
	require.Len(t, sessions, 2)

	err = svc.DeleteSession(ctx, sessions[0].ID, uuid.New())
	assert.ErrorIs(t, err, repository.ErrSessionNotFound)

	require.NoError(t, svc.DeleteSession(ctx, sessions[0].ID, res.User.ID))
	sessions, err = svc.ListSessions(ctx, res.User.ID)
	require.NoError(t, err)
	assert.Len(t, sessions, 1)
}

func TestAuthService_PasswordReset(t *testing.T) {
	svc, repo, otp := newTestAuthService()
	ctx := context.Background()

	res := registerUser(t, svc, "reset@example.com", false)

	// неизвестный email не раскрывается
	require.NoError(t, svc.RequestPasswordReset(ctx, "ghost@example.com"))
	require.NoError(t, svc.RequestPasswordReset(ctx, "reset@example.com"))
	assert.Equal(t, []string{"password_reset:reset@example.com"}, otp.issued)

	err := svc.ResetPassword(ctx, ResetPasswordInput{Email: "reset@example.com", Code: "999999", NewPassword: "Another123"})
	assert.ErrorIs(t, err, ErrOTPInvalid)

	err = svc.ResetPassword(ctx, ResetPasswordInput{Email: "reset@example.com", Code: "123456", NewPassword: "short"})
	assert.ErrorIs(t, err, ErrInvalidInput)

	require.NoError(t, svc.ResetPassword(ctx, ResetPasswordInput{Email: "reset@example.com", Code: "123456", NewPassword: "Another123"}))
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(repo.usersByID[res.User.ID].PasswordHash), []byte("Another123")))
	assert.Empty(t, repo.sessions, "сброс пароля отзывает все сессии")
}

func TestAuthService_Me(t *testing.T) {
	svc, _, _ := newTestAuthService()

	res := registerUser(t, svc, "me@example.com", false)
	user, err := svc.Me(context.Background(), res.User.ID)
	require.NoError(t, err)
	assert.Equal(t, "me@example.com", user.Email)

	_, err = svc.Me(context.Background(), uuid.New())
	assert.True(t, errors.Is(err, repository.ErrUserNotFound))
}
