package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/ignatzorin/lostfound-backend/internal/models"
	"github.com/ignatzorin/lostfound-backend/internal/repository/common"
)

var (
	// ErrUserNotFound возвращается, когда запись пользователя не найдена.
	ErrUserNotFound = errors.New("user not found")
	// ErrEmailTaken возвращается при попытке зарегистрировать существующий email.
	ErrEmailTaken = errors.New("email already registered")
	// ErrSessionNotFound возвращается, когда сессия отозвана или не существует.
	ErrSessionNotFound = errors.New("session not found")
)

const userColumns = `id, email, password_hash, display_name, role, status, business_name, last_login_at, created_at, updated_at`

// UserRepository отвечает за работу с таблицами users и sessions.
type UserRepository struct {
	db *sqlx.DB
}

// NewUserRepository создаёт экземпляр репозитория.
func NewUserRepository(db *sqlx.DB) *UserRepository {
	return &UserRepository{db: db}
}

// Create создаёт нового пользователя.
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO users (email, password_hash, display_name, role, status, business_name)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at
	`

	if err := r.db.QueryRowxContext(
		ctx, query,
		user.Email, user.PasswordHash, user.DisplayName, user.Role, user.Status, user.BusinessName,
	).Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt); err != nil {
		if common.IsUniqueViolation(err) {
			return ErrEmailTaken
		}
		return fmt.Errorf("user repository: create %w", err)
	}

	return nil
}

// GetByEmail возвращает пользователя по email.
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return common.SelectByColumn[models.User](ctx, r.db, "users", userColumns, "email", email, ErrUserNotFound)
}

// GetByID возвращает пользователя по идентификатору.
func (r *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	return common.SelectByColumn[models.User](ctx, r.db, "users", userColumns, "id", id, ErrUserNotFound)
}

// List возвращает пользователей для админки.
func (r *UserRepository) List(ctx context.Context, filter models.UserFilter) ([]models.User, int, error) {
	baseQuery := `FROM users WHERE 1=1`
	args := []interface{}{}
	argNum := 1

	if filter.Role != "" {
		baseQuery += fmt.Sprintf(" AND role = $%d", argNum)
		args = append(args, filter.Role)
		argNum++
	}
	if filter.Status != "" {
		baseQuery += fmt.Sprintf(" AND status = $%d", argNum)
		args = append(args, filter.Status)
		argNum++
	}
	if filter.Query != "" {
		baseQuery += fmt.Sprintf(" AND (email ILIKE $%d OR display_name ILIKE $%d OR business_name ILIKE $%d)", argNum, argNum, argNum)
		args = append(args, common.ContainsPattern(filter.Query))
		argNum++
	}

	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) "+baseQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("user repository: count %w", err)
	}

	query := fmt.Sprintf("SELECT %s %s ORDER BY created_at DESC LIMIT $%d OFFSET $%d", userColumns, baseQuery, argNum, argNum+1)
	args = append(args, filter.Limit, filter.Offset)

	var users []models.User
	if err := r.db.SelectContext(ctx, &users, query, args...); err != nil {
		return nil, 0, fmt.Errorf("user repository: list %w", err)
	}

	return users, total, nil
}

// UpdateLastLoginAt обновляет время последнего входа пользователя.
func (r *UserRepository) UpdateLastLoginAt(ctx context.Context, userID uuid.UUID) error {
	if _, err := r.db.ExecContext(ctx, `UPDATE users SET last_login_at = NOW() WHERE id = $1`, userID); err != nil {
		return fmt.Errorf("user repository: update last login at %w", err)
	}

	return nil
}

// UpdatePassword меняет хеш пароля.
func (r *UserRepository) UpdatePassword(ctx context.Context, userID uuid.UUID, passwordHash string) error {
	return r.updateField(ctx, "password_hash", userID, passwordHash)
}

// UpdateStatus меняет статус учётной записи.
func (r *UserRepository) UpdateStatus(ctx context.Context, userID uuid.UUID, status string) error {
	return r.updateField(ctx, "status", userID, status)
}

// UpdateRole обновляет роль пользователя.
func (r *UserRepository) UpdateRole(ctx context.Context, userID uuid.UUID, role string) error {
	return r.updateField(ctx, "role", userID, role)
}

// updateField обновляет одну колонку; column берётся только из кода, не из запроса пользователя.
func (r *UserRepository) updateField(ctx context.Context, column string, userID uuid.UUID, value string) error {
	query := fmt.Sprintf(`UPDATE users SET %s = $1, updated_at = NOW() WHERE id = $2`, column)
	result, err := r.db.ExecContext(ctx, query, value, userID)
	if err != nil {
		return fmt.Errorf("user repository: update %s %w", column, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("user repository: update %s rows affected %w", column, err)
	}
	if rowsAffected == 0 {
		return ErrUserNotFound
	}

	return nil
}

// CreateSession сохраняет новую сессию пользователя.
func (r *UserRepository) CreateSession(ctx context.Context, session *models.Session) error {
	query := `
		INSERT INTO sessions (user_id, refresh_token, user_agent, ip_address, expires_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`

	if err := r.db.QueryRowxContext(
		ctx,
		query,
		session.UserID,
		session.RefreshToken,
		session.UserAgent,
		session.IPAddress,
		session.ExpiresAt,
	).Scan(&session.ID, &session.CreatedAt); err != nil {
		return fmt.Errorf("user repository: create session %w", err)
	}

	return nil
}

// RotateSession атомарно удаляет сессию со старым refresh токеном и создаёт новую.
// Если старой сессии нет (отозвана или уже использована), возвращает ErrSessionNotFound.
func (r *UserRepository) RotateSession(ctx context.Context, oldRefreshToken string, session *models.Session) error {
	return common.WithTransaction(ctx, r.db, func(tx *sqlx.Tx) error {
		var userID uuid.UUID
		err := tx.GetContext(ctx, &userID,
			`DELETE FROM sessions WHERE refresh_token = $1 AND expires_at > $2 RETURNING user_id`,
			oldRefreshToken, time.Now())
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrSessionNotFound
			}
			return fmt.Errorf("user repository: rotate session %w", err)
		}
		if userID != session.UserID {
			return ErrSessionNotFound
		}

		query := `
			INSERT INTO sessions (user_id, refresh_token, user_agent, ip_address, expires_at)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING id, created_at
		`
		if err := tx.QueryRowxContext(ctx, query,
			session.UserID, session.RefreshToken, session.UserAgent, session.IPAddress, session.ExpiresAt,
		).Scan(&session.ID, &session.CreatedAt); err != nil {
			return fmt.Errorf("user repository: rotate session insert %w", err)
		}
		return nil
	})
}

// DeleteSession удаляет сессию по refresh токену.
func (r *UserRepository) DeleteSession(ctx context.Context, refreshToken string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM sessions WHERE refresh_token = $1`, refreshToken); err != nil {
		return fmt.Errorf("user repository: delete session %w", err)
	}

	return nil
}

// ListSessions возвращает список всех активных сессий пользователя.
func (r *UserRepository) ListSessions(ctx context.Context, userID uuid.UUID) ([]models.Session, error) {
	query := `
		SELECT id, user_id, refresh_token, user_agent, ip_address, expires_at, created_at
		FROM sessions
		WHERE user_id = $1 AND expires_at > NOW()
		ORDER BY created_at DESC
	`

	var sessions []models.Session
	if err := r.db.SelectContext(ctx, &sessions, query, userID); err != nil {
		return nil, fmt.Errorf("user repository: list sessions %w", err)
	}

	return sessions, nil
}

// DeleteSessionByID удаляет сессию по идентификатору.
func (r *UserRepository) DeleteSessionByID(ctx context.Context, sessionID uuid.UUID, userID uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM sessions WHERE id = $1 AND user_id = $2`, sessionID, userID)
	if err != nil {
		return fmt.Errorf("user repository: delete session by id %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("user repository: delete session by id rows affected %w", err)
	}

	if rowsAffected == 0 {
		return ErrSessionNotFound
	}

	return nil
}

// DeleteAllSessions отзывает все сессии пользователя.
func (r *UserRepository) DeleteAllSessions(ctx context.Context, userID uuid.UUID) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM sessions WHERE user_id = $1`, userID); err != nil {
		return fmt.Errorf("user repository: delete all sessions %w", err)
	}

	return nil
}
