package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ignatzorin/lostfound-backend/internal/models"
	"github.com/ignatzorin/lostfound-backend/internal/repository"
)

type memOTPStore struct {
	mu    sync.Mutex
	codes []*models.OTPCode
	// readGate, если задан, задерживает каждое чтение, пока все ожидаемые запросы не прочитают код
	readGate *sync.WaitGroup
}

func (s *memOTPStore) Replace(ctx context.Context, code *models.OTPCode) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.codes {
		if c.Email == code.Email && c.Purpose == code.Purpose && !c.Used {
			c.Used = true
		}
	}
	code.ID = uuid.New()
	s.codes = append(s.codes, code)
	return nil
}

func (s *memOTPStore) GetActive(ctx context.Context, email, purpose string) (*models.OTPCode, error) {
	found, err := s.getActive(email, purpose)
	if s.readGate != nil {
		s.readGate.Done()
		s.readGate.Wait()
	}
	return found, err
}

func (s *memOTPStore) getActive(email, purpose string) (*models.OTPCode, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := len(s.codes) - 1; i >= 0; i-- {
		c := s.codes[i]
		if c.Email == email && c.Purpose == purpose && !c.Used {
			cp := *c
			return &cp, nil
		}
	}
	return nil, repository.ErrOTPNotFound
}

func (s *memOTPStore) ReserveAttempt(ctx context.Context, id uuid.UUID, maxAttempts int) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.codes {
		if c.ID != id {
			continue
		}
		if c.Used {
			return 0, repository.ErrOTPNotFound
		}
		if c.Attempts >= maxAttempts {
			return 0, repository.ErrOTPAttemptsExhausted
		}
		c.Attempts++
		return c.Attempts, nil
	}
	return 0, repository.ErrOTPNotFound
}

func (s *memOTPStore) MarkUsed(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.codes {
		if c.ID == id && !c.Used {
			c.Used = true
			return nil
		}
	}
	return repository.ErrOTPNotFound
}

type captureMailer struct {
	codes map[string]string
	err   error
}

func (m *captureMailer) SendOTP(ctx context.Context, email, purpose, code string) error {
	if m.err != nil {
		return m.err
	}
	if m.codes == nil {
		m.codes = map[string]string{}
	}
	m.codes[purpose+":"+email] = code
	return nil
}

func newTestOTPService() (*OTPService, *memOTPStore, *captureMailer) {
	store := &memOTPStore{}
	mailer := &captureMailer{}
	svc := NewOTPService(store, mailer, 10*time.Minute, 3)
	seq := []string{"111111", "222222", "333333"}
	svc.generate = func() (string, error) {
		code := seq[0]
		seq = seq[1:]
		return code, nil
	}
	return svc, store, mailer
}

func TestOTPService_IssueAndVerify(t *testing.T) {
	svc, store, mailer := newTestOTPService()
	ctx := context.Background()

	require.NoError(t, svc.Issue(ctx, "a@example.com", models.OTPPurposeSignup))
	assert.Equal(t, "111111", mailer.codes["signup:a@example.com"])
	assert.NotEqual(t, "111111", store.codes[0].CodeHash, "код хранится только в виде хеша")

	// код другого назначения не подходит
	assert.ErrorIs(t, svc.Verify(ctx, "a@example.com", models.OTPPurposePasswordReset, "111111"), ErrOTPInvalid)

	require.NoError(t, svc.Verify(ctx, "a@example.com", models.OTPPurposeSignup, "111111"))
	// одноразовый
	assert.ErrorIs(t, svc.Verify(ctx, "a@example.com", models.OTPPurposeSignup, "111111"), ErrOTPInvalid)
}

func TestOTPService_NewCodeInvalidatesPrevious(t *testing.T) {
	svc, _, _ := newTestOTPService()
	ctx := context.Background()

	require.NoError(t, svc.Issue(ctx, "a@example.com", models.OTPPurposeSignup))
	require.NoError(t, svc.Issue(ctx, "a@example.com", models.OTPPurposeSignup))

	assert.ErrorIs(t, svc.Verify(ctx, "a@example.com", models.OTPPurposeSignup, "111111"), ErrOTPInvalid)
	assert.NoError(t, svc.Verify(ctx, "a@example.com", models.OTPPurposeSignup, "222222"))
}

func TestOTPService_Expired(t *testing.T) {
	svc, _, _ := newTestOTPService()
	ctx := context.Background()

	require.NoError(t, svc.Issue(ctx, "a@example.com", models.OTPPurposeSignup))
	svc.now = func() time.Time { return time.Now().Add(11 * time.Minute) }

	assert.ErrorIs(t, svc.Verify(ctx, "a@example.com", models.OTPPurposeSignup, "111111"), ErrOTPExpired)
}

func TestOTPService_AttemptsExceeded(t *testing.T) {
	svc, _, _ := newTestOTPService()
	ctx := context.Background()

	require.NoError(t, svc.Issue(ctx, "a@example.com", models.OTPPurposeSignup))

	assert.ErrorIs(t, svc.Verify(ctx, "a@example.com", models.OTPPurposeSignup, "000000"), ErrOTPInvalid)
	assert.ErrorIs(t, svc.Verify(ctx, "a@example.com", models.OTPPurposeSignup, "000000"), ErrOTPInvalid)
	assert.ErrorIs(t, svc.Verify(ctx, "a@example.com", models.OTPPurposeSignup, "000000"), ErrOTPAttemptsExceeded)
	// даже верный код больше не принимается
	assert.ErrorIs(t, svc.Verify(ctx, "a@example.com", models.OTPPurposeSignup, "111111"), ErrOTPAttemptsExceeded)
}

func TestOTPService_ParallelGuessesRespectAttemptLimit(t *testing.T) {
	const (
		maxAttempts = 5
		guesses     = 20
	)
	store := &memOTPStore{}
	mailer := &captureMailer{}
	svc := NewOTPService(store, mailer, 10*time.Minute, maxAttempts)
	svc.generate = func() (string, error) { return "424242", nil }
	ctx := context.Background()

	require.NoError(t, svc.Issue(ctx, "a@example.com", models.OTPPurposeSignup))

	// все запросы читают код до того, как любой из них его проверит
	gate := &sync.WaitGroup{}
	gate.Add(guesses)
	store.readGate = gate

	results := make([]error, guesses)
	var wg sync.WaitGroup
	for i := 0; i < guesses; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			code := "000000"
			if i == guesses-1 {
				code = "424242"
			}
			results[i] = svc.Verify(ctx, "a@example.com", models.OTPPurposeSignup, code)
		}(i)
	}
	wg.Wait()

	refused := 0
	for _, err := range results {
		if errors.Is(err, ErrOTPAttemptsExceeded) {
			refused++
		}
	}
	// каждая сверка с хешем идёт после занятой попытки
	assert.LessOrEqual(t, store.codes[0].Attempts, maxAttempts, "сверено больше кодов, чем разрешено попыток")
	if results[guesses-1] == nil {
		assert.True(t, store.codes[0].Used)
		return
	}
	assert.Equal(t, maxAttempts, store.codes[0].Attempts)
	assert.GreaterOrEqual(t, refused, guesses-maxAttempts)
}

func TestOTPService_SendFailureReturned(t *testing.T) {
	svc, _, mailer := newTestOTPService()
	mailer.err = errors.New("broker down")

	err := svc.Issue(context.Background(), "a@example.com", models.OTPPurposeSignup)
	assert.ErrorContains(t, err, "broker down")
}

func TestGenerateNumericCode(t *testing.T) {
	for i := 0; i < 20; i++ {
		code, err := generateNumericCode()
		require.NoError(t, err)
		assert.Regexp(t, `^[0-9]{6}$`, code)
	}
}
