package auth

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Store-level sentinel errors. The service layer translates these into
// apperror values; handlers never see them directly.
var (
	ErrUserNotFound   = errors.New("user not found")
	ErrDuplicateEmail = errors.New("email already exists")
)

// pgUniqueViolation is the PostgreSQL error code for unique constraint violations.
const pgUniqueViolation = "23505"

// UserStore is the identity store the auth service and middleware resolve
// users from. Implementations must treat email comparison case-insensitively.
type UserStore interface {
	Create(ctx context.Context, user *User) error
	GetByID(ctx context.Context, id uuid.UUID) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	UpdateProfile(ctx context.Context, id uuid.UUID, req *UpdateProfileRequest) (*User, error)
	TouchLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error
}

// RegistrationGate is the slice of the application store that registration
// needs: resolving a registration token and marking it consumed.
type RegistrationGate interface {
	FindByRegistrationToken(ctx context.Context, token string) (*Invitation, error)
	MarkRegistered(ctx context.Context, applicationID uuid.UUID, at time.Time) error
}

// PgxUserStore is the PostgreSQL-backed UserStore.
type PgxUserStore struct {
	db *pgxpool.Pool
}

// NewPgxUserStore creates a UserStore backed by the given pool.
func NewPgxUserStore(db *pgxpool.Pool) *PgxUserStore {
	return &PgxUserStore{db: db}
}

const userColumns = `id, email, password_hash, first_name, last_name, bio, skills,
	github, linkedin, website, avatar, role, is_active, last_login, created_at`

func scanUser(row pgx.Row) (*User, error) {
	var u User
	err := row.Scan(
		&u.ID, &u.Email, &u.PasswordHash,
		&u.Profile.FirstName, &u.Profile.LastName, &u.Profile.Bio, &u.Profile.Skills,
		&u.Profile.GitHub, &u.Profile.LinkedIn, &u.Profile.Website, &u.Profile.Avatar,
		&u.Role, &u.IsActive, &u.LastLogin, &u.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &u, nil
}

func (s *PgxUserStore) Create(ctx context.Context, user *User) error {
	query := `INSERT INTO users (id, email, password_hash, first_name, last_name, bio, skills,
	              github, linkedin, website, avatar, role, is_active)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	          RETURNING created_at`
	err := s.db.QueryRow(ctx, query,
		user.ID, strings.ToLower(user.Email), user.PasswordHash,
		user.Profile.FirstName, user.Profile.LastName, user.Profile.Bio, user.Profile.Skills,
		user.Profile.GitHub, user.Profile.LinkedIn, user.Profile.Website, user.Profile.Avatar,
		user.Role, user.IsActive,
	).Scan(&user.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return ErrDuplicateEmail
		}
		return err
	}
	return nil
}

func (s *PgxUserStore) GetByID(ctx context.Context, id uuid.UUID) (*User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return scanUser(s.db.QueryRow(ctx, query, id))
}

func (s *PgxUserStore) GetByEmail(ctx context.Context, email string) (*User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE lower(email) = lower($1)`
	return scanUser(s.db.QueryRow(ctx, query, email))
}

func (s *PgxUserStore) UpdateProfile(ctx context.Context, id uuid.UUID, req *UpdateProfileRequest) (*User, error) {
	// Build the UPDATE dynamically from the fields that were provided.
	var setClauses []string
	var args []interface{}
	argID := 1

	set := func(column string, value interface{}) {
		setClauses = append(setClauses, column+" = $"+strconv.Itoa(argID))
		args = append(args, value)
		argID++
	}

	if req.FirstName != nil {
		set("first_name", *req.FirstName)
	}
	if req.LastName != nil {
		set("last_name", *req.LastName)
	}
	if req.Bio != nil {
		set("bio", *req.Bio)
	}
	if req.Skills != nil {
		set("skills", *req.Skills)
	}
	if req.GitHub != nil {
		set("github", *req.GitHub)
	}
	if req.LinkedIn != nil {
		set("linkedin", *req.LinkedIn)
	}
	if req.Website != nil {
		set("website", *req.Website)
	}
	if req.Avatar != nil {
		set("avatar", *req.Avatar)
	}

	if len(setClauses) == 0 {
		return s.GetByID(ctx, id)
	}

	set("updated_at", time.Now())
	args = append(args, id)

	query := `UPDATE users SET ` + strings.Join(setClauses, ", ") +
		` WHERE id = $` + strconv.Itoa(argID) + ` RETURNING ` + userColumns
	return scanUser(s.db.QueryRow(ctx, query, args...))
}

func (s *PgxUserStore) TouchLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error {
	tag, err := s.db.Exec(ctx, `UPDATE users SET last_login = $2 WHERE id = $1`, id, at)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrUserNotFound
	}
	return nil
}
