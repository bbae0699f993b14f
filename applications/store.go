package applications

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/user/kaliweb-go/auth"
)

var (
	// ErrNotFound is returned when no application matches the lookup.
	ErrNotFound = errors.New("application not found")
	// ErrDuplicateEmail is returned when an application already exists for
	// the email.
	ErrDuplicateEmail = errors.New("application with this email already exists")
)

const pgUniqueViolation = "23505"

// Store is the persistence surface of the application workflow. It also
// satisfies auth.RegistrationGate so registration can consume tokens
// through the same store.
type Store interface {
	Insert(ctx context.Context, app *Application) error
	GetByID(ctx context.Context, id uuid.UUID) (*Application, error)
	List(ctx context.Context, filter ListFilter) ([]*Application, int, error)
	UpdateReview(ctx context.Context, id uuid.UUID, upd ReviewUpdate) (*Application, error)
	Accept(ctx context.Context, id uuid.UUID, token string, at time.Time) (*Application, bool, error)
	Delete(ctx context.Context, id uuid.UUID) (*Application, error)
	Stats(ctx context.Context) (*Stats, error)

	FindByRegistrationToken(ctx context.Context, token string) (*auth.Invitation, error)
	MarkRegistered(ctx context.Context, applicationID uuid.UUID, at time.Time) error
}

// ReviewUpdate is a partial update of the review fields. Nil fields are
// left as they are.
type ReviewUpdate struct {
	Status     *Status
	Notes      *string
	ReviewedBy *string
	ReviewedAt *time.Time
}

// PgxStore is the PostgreSQL-backed Store.
type PgxStore struct {
	db *pgxpool.Pool
}

// NewPgxStore creates a Store backed by the given pool.
func NewPgxStore(db *pgxpool.Pool) *PgxStore {
	return &PgxStore{db: db}
}

const applicationColumns = `id, full_name, email, phone, branch_year, preferred_role, domain,
	programming_experience, motivation, portfolio_link, status, submitted_at,
	notes, reviewed_by, reviewed_at, registration_token, registered_at`

func scanApplication(row pgx.Row) (*Application, error) {
	var (
		app       Application
		rawToken  sql.NullString
		rawStatus string
	)
	err := row.Scan(
		&app.ID, &app.FullName, &app.Email, &app.Phone, &app.BranchYear,
		&app.PreferredRole, &app.Domain,
		&app.ProgrammingExperience, &app.Motivation, &app.PortfolioLink,
		&rawStatus, &app.SubmittedAt,
		&app.Notes, &app.ReviewedBy, &app.ReviewedAt,
		&rawToken, &app.RegisteredAt,
	)
	if err != nil {
		return nil, err
	}
	app.Status = Status(rawStatus)
	app.RegistrationToken = rawToken.String
	return &app, nil
}

func (s *PgxStore) Insert(ctx context.Context, app *Application) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO applications (
			id, full_name, email, phone, branch_year, preferred_role, domain,
			programming_experience, motivation, portfolio_link, status, submitted_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		app.ID, app.FullName, app.Email, app.Phone, app.BranchYear,
		app.PreferredRole, app.Domain,
		app.ProgrammingExperience, app.Motivation, app.PortfolioLink,
		string(app.Status), app.SubmittedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return ErrDuplicateEmail
		}
		return fmt.Errorf("inserting application: %w", err)
	}
	return nil
}

func (s *PgxStore) GetByID(ctx context.Context, id uuid.UUID) (*Application, error) {
	row := s.db.QueryRow(ctx,
		`SELECT `+applicationColumns+` FROM applications WHERE id = $1`, id)
	app, err := scanApplication(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("fetching application: %w", err)
	}
	return app, nil
}

// sortColumns whitelists the sortable fields; anything else falls back to
// the submission timestamp.
var sortColumns = map[string]string{
	"submittedAt":   "submitted_at",
	"fullName":      "full_name",
	"email":         "email",
	"status":        "status",
	"preferredRole": "preferred_role",
	"domain":        "domain",
}

func (s *PgxStore) List(ctx context.Context, filter ListFilter) ([]*Application, int, error) {
	var (
		where []string
		args  []interface{}
	)
	addFilter := func(column, value string) {
		if value == "" {
			return
		}
		args = append(args, value)
		where = append(where, column+" = $"+strconv.Itoa(len(args)))
	}
	addFilter("status", filter.Status)
	addFilter("preferred_role", filter.Role)
	addFilter("domain", filter.Domain)

	clause := ""
	if len(where) > 0 {
		clause = " WHERE " + strings.Join(where, " AND ")
	}

	var total int
	err := s.db.QueryRow(ctx, "SELECT count(*) FROM applications"+clause, args...).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("counting applications: %w", err)
	}

	column, ok := sortColumns[filter.SortBy]
	if !ok {
		column = "submitted_at"
	}
	direction := "DESC"
	if strings.EqualFold(filter.SortOrder, "asc") {
		direction = "ASC"
	}

	query := "SELECT " + applicationColumns + " FROM applications" + clause +
		" ORDER BY " + column + " " + direction +
		" LIMIT $" + strconv.Itoa(len(args)+1) +
		" OFFSET $" + strconv.Itoa(len(args)+2)
	args = append(args, filter.Limit, (filter.Page-1)*filter.Limit)

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("listing applications: %w", err)
	}
	defer rows.Close()

	var apps []*Application
	for rows.Next() {
		app, err := scanApplication(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scanning application: %w", err)
		}
		apps = append(apps, app)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("listing applications: %w", err)
	}
	return apps, total, nil
}

func (s *PgxStore) UpdateReview(ctx context.Context, id uuid.UUID, upd ReviewUpdate) (*Application, error) {
	var (
		sets []string
		args []interface{}
	)
	addSet := func(column string, value interface{}) {
		args = append(args, value)
		sets = append(sets, column+" = $"+strconv.Itoa(len(args)))
	}
	if upd.Status != nil {
		addSet("status", string(*upd.Status))
	}
	if upd.Notes != nil {
		addSet("notes", *upd.Notes)
	}
	if upd.ReviewedBy != nil {
		addSet("reviewed_by", *upd.ReviewedBy)
	}
	if upd.ReviewedAt != nil {
		addSet("reviewed_at", *upd.ReviewedAt)
	}
	if len(sets) == 0 {
		return s.GetByID(ctx, id)
	}
	addSet("updated_at", time.Now())

	args = append(args, id)
	query := "UPDATE applications SET " + strings.Join(sets, ", ") +
		" WHERE id = $" + strconv.Itoa(len(args)) +
		" RETURNING " + applicationColumns

	app, err := scanApplication(s.db.QueryRow(ctx, query, args...))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("updating application: %w", err)
	}
	return app, nil
}

// Accept marks the application accepted and stores the token in one
// conditional update. The WHERE clause skips rows already accepted, so two
// concurrent accepts issue exactly one token; the loser re-reads the row and
// reports issued=false.
func (s *PgxStore) Accept(ctx context.Context, id uuid.UUID, token string, at time.Time) (*Application, bool, error) {
	row := s.db.QueryRow(ctx, `
		UPDATE applications
		SET status = $2, reviewed_at = $3, registration_token = $4, updated_at = now()
		WHERE id = $1 AND status <> $2
		RETURNING `+applicationColumns,
		id, string(StatusAccepted), at, token,
	)
	app, err := scanApplication(row)
	if err == nil {
		return app, true, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, false, fmt.Errorf("accepting application: %w", err)
	}

	// No row updated: either already accepted or absent.
	app, err = s.GetByID(ctx, id)
	if err != nil {
		return nil, false, err
	}
	return app, false, nil
}

func (s *PgxStore) Delete(ctx context.Context, id uuid.UUID) (*Application, error) {
	row := s.db.QueryRow(ctx,
		`DELETE FROM applications WHERE id = $1 RETURNING `+applicationColumns, id)
	app, err := scanApplication(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("deleting application: %w", err)
	}
	return app, nil
}

func (s *PgxStore) Stats(ctx context.Context) (*Stats, error) {
	stats := &Stats{
		RoleDistribution:   []CountByKey{},
		DomainDistribution: []CountByKey{},
	}

	err := s.db.QueryRow(ctx, `
		SELECT
			count(*),
			count(*) FILTER (WHERE status = 'pending'),
			count(*) FILTER (WHERE status = 'under-review'),
			count(*) FILTER (WHERE status = 'interview-scheduled'),
			count(*) FILTER (WHERE status = 'accepted'),
			count(*) FILTER (WHERE status = 'rejected'),
			count(*) FILTER (WHERE status = 'denied')
		FROM applications`,
	).Scan(
		&stats.Overview.Total,
		&stats.Overview.Pending,
		&stats.Overview.UnderReview,
		&stats.Overview.InterviewScheduled,
		&stats.Overview.Accepted,
		&stats.Overview.Rejected,
		&stats.Overview.Denied,
	)
	if err != nil {
		return nil, fmt.Errorf("aggregating status counts: %w", err)
	}

	grouped := func(column string) ([]CountByKey, error) {
		rows, err := s.db.Query(ctx,
			"SELECT "+column+", count(*) FROM applications GROUP BY "+column)
		if err != nil {
			return nil, err
		}
		defer rows.Close()

		buckets := []CountByKey{}
		for rows.Next() {
			var bucket CountByKey
			if err := rows.Scan(&bucket.Key, &bucket.Count); err != nil {
				return nil, err
			}
			buckets = append(buckets, bucket)
		}
		return buckets, rows.Err()
	}

	if stats.RoleDistribution, err = grouped("preferred_role"); err != nil {
		return nil, fmt.Errorf("aggregating role counts: %w", err)
	}
	if stats.DomainDistribution, err = grouped("domain"); err != nil {
		return nil, fmt.Errorf("aggregating domain counts: %w", err)
	}
	return stats, nil
}

// FindByRegistrationToken implements auth.RegistrationGate.
func (s *PgxStore) FindByRegistrationToken(ctx context.Context, token string) (*auth.Invitation, error) {
	var invite auth.Invitation
	var registeredAt *time.Time
	err := s.db.QueryRow(ctx, `
		SELECT id, email, registered_at
		FROM applications
		WHERE registration_token = $1`,
		token,
	).Scan(&invite.ApplicationID, &invite.Email, &registeredAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("looking up registration token: %w", err)
	}
	invite.Consumed = registeredAt != nil
	return &invite, nil
}

// MarkRegistered implements auth.RegistrationGate.
func (s *PgxStore) MarkRegistered(ctx context.Context, applicationID uuid.UUID, at time.Time) error {
	tag, err := s.db.Exec(ctx, `
		UPDATE applications SET registered_at = $2, updated_at = now()
		WHERE id = $1 AND registered_at IS NULL`,
		applicationID, at,
	)
	if err != nil {
		return fmt.Errorf("marking application registered: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
