package auth

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"github.com/speakeasy-practice/backend/internal/database"
	"github.com/speakeasy-practice/backend/internal/models"
)

var (
	ErrEmailTaken   = errors.New("email already registered")
	ErrUserNotFound = errors.New("user not found")
)

// usernameAttempts bounds the retries after a generated username collides.
const usernameAttempts = 5

// UserStore persists accounts. Lookups return ErrUserNotFound for unknown
// users, and UserByEmail fills in the password hash.
type UserStore interface {
	CreateUser(ctx context.Context, email, name, passwordHash string) (*models.User, error)
	UserByEmail(ctx context.Context, email string) (*models.User, error)
	UserByID(ctx context.Context, id int64) (*models.User, error)
}

// Users is the Postgres UserStore.
type Users struct {
	db  *sql.DB
	now func() time.Time
}

func NewUsers(db *sql.DB) *Users {
	return &Users{db: db, now: time.Now}
}

// CreateUser inserts an account under a generated username, drawing a new
// one when the last collided.
func (s *Users) CreateUser(ctx context.Context, email, name, passwordHash string) (*models.User, error) {
	var (
		user models.User
		err  error
	)
	for attempt := 0; attempt < usernameAttempts; attempt++ {
		now := s.now()
		err = s.db.QueryRowContext(ctx,
			`INSERT INTO users (email, name, username, password, created_at, updated_at)
			 VALUES ($1, $2, $3, $4, $5, $6)
			 RETURNING id, email, name, username, created_at, updated_at`,
			email, name, database.GenerateUsername(name), passwordHash, now, now,
		).Scan(&user.ID, &user.Email, &user.Name, &user.Username, &user.CreatedAt, &user.UpdatedAt)

		switch uniqueViolation(err) {
		case "":
			if err != nil {
				return nil, fmt.Errorf("insert user: %w", err)
			}
			return &user, nil
		case "users_username_key":
			continue
		default:
			return nil, ErrEmailTaken
		}
	}
	return nil, fmt.Errorf("insert user: no free username after %d attempts: %w", usernameAttempts, err)
}

func (s *Users) UserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := s.db.QueryRowContext(ctx,
		`SELECT id, email, name, COALESCE(username, ''), password, created_at, updated_at
		 FROM users WHERE email = $1`,
		email,
	).Scan(&user.ID, &user.Email, &user.Name, &user.Username, &user.Password, &user.CreatedAt, &user.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get user by email: %w", err)
	}
	return &user, nil
}

func (s *Users) UserByID(ctx context.Context, id int64) (*models.User, error) {
	var user models.User
	err := s.db.QueryRowContext(ctx,
		`SELECT id, email, name, COALESCE(username, ''), created_at, updated_at
		 FROM users WHERE id = $1`,
		id,
	).Scan(&user.ID, &user.Email, &user.Name, &user.Username, &user.CreatedAt, &user.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get user %d: %w", id, err)
	}
	return &user, nil
}

// uniqueViolation returns the constraint a unique violation tripped, or "".
func uniqueViolation(err error) string {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == "23505" {
		return pqErr.Constraint
	}
	return ""
}
