package contact

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/user/kaliweb-go/apperror"
	"github.com/user/kaliweb-go/logging"
)

// Service implements contact-form operations over PostgreSQL.
type Service struct {
	db       *pgxpool.Pool
	log      logging.Logger
	validate *validator.Validate
}

// NewService creates the contact service.
func NewService(pool *pgxpool.Pool, log logging.Logger) *Service {
	return &Service{db: pool, log: log, validate: validator.New()}
}

const submissionColumns = `id, name, email, subject, message, phone,
	status, priority, assigned_to, notes, response_date, created_at`

func scanSubmission(row pgx.Row) (*Submission, error) {
	var s Submission
	err := row.Scan(
		&s.ID, &s.Name, &s.Email, &s.Subject, &s.Message, &s.Phone,
		&s.Status, &s.Priority, &s.AssignedTo, &s.Notes, &s.ResponseDate,
		&s.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// Submit stores a new contact-form message.
func (s *Service) Submit(ctx context.Context, req SubmitRequest) (*Submission, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, apperror.NewValidationError("name, email, and message are required", err)
	}

	sub := &Submission{
		ID:       uuid.New(),
		Name:     strings.TrimSpace(req.Name),
		Email:    strings.ToLower(strings.TrimSpace(req.Email)),
		Subject:  strings.TrimSpace(req.Subject),
		Message:  strings.TrimSpace(req.Message),
		Phone:    strings.TrimSpace(req.Phone),
		Status:   StatusNew,
		Priority: "medium",
	}
	if sub.Subject == "" {
		sub.Subject = "General Inquiry"
	}

	err := s.db.QueryRow(ctx, `
		INSERT INTO contact_submissions (id, name, email, subject, message, phone)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at`,
		sub.ID, sub.Name, sub.Email, sub.Subject, sub.Message, sub.Phone,
	).Scan(&sub.CreatedAt)
	if err != nil {
		return nil, apperror.NewDatabaseError("failed to submit contact form", err)
	}

	s.log.Info(ctx, "contact submission received", "submission_id", sub.ID, "subject", sub.Subject)
	return sub, nil
}

// List returns submissions matching the filter, newest first.
func (s *Service) List(ctx context.Context, filter ListFilter) ([]*Submission, *Pagination, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 || filter.Limit > 100 {
		filter.Limit = 10
	}

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
	addFilter("priority", filter.Priority)
	addFilter("assigned_to", filter.AssignedTo)

	clause := ""
	if len(where) > 0 {
		clause = " WHERE " + strings.Join(where, " AND ")
	}

	var total int
	if err := s.db.QueryRow(ctx, "SELECT count(*) FROM contact_submissions"+clause, args...).Scan(&total); err != nil {
		return nil, nil, apperror.NewDatabaseError("failed to fetch submissions", err)
	}

	query := "SELECT " + submissionColumns + " FROM contact_submissions" + clause +
		" ORDER BY created_at DESC" +
		" LIMIT $" + strconv.Itoa(len(args)+1) +
		" OFFSET $" + strconv.Itoa(len(args)+2)
	args = append(args, filter.Limit, (filter.Page-1)*filter.Limit)

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, nil, apperror.NewDatabaseError("failed to fetch submissions", err)
	}
	defer rows.Close()

	subs := []*Submission{}
	for rows.Next() {
		sub, err := scanSubmission(rows)
		if err != nil {
			return nil, nil, apperror.NewDatabaseError("failed to fetch submissions", err)
		}
		subs = append(subs, sub)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, apperror.NewDatabaseError("failed to fetch submissions", err)
	}

	pages := total / filter.Limit
	if total%filter.Limit != 0 {
		pages++
	}
	return subs, &Pagination{
		Current:          filter.Page,
		Total:            pages,
		Count:            len(subs),
		TotalSubmissions: total,
	}, nil
}

// Get returns one submission by ID.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Submission, error) {
	row := s.db.QueryRow(ctx,
		`SELECT `+submissionColumns+` FROM contact_submissions WHERE id = $1`, id)
	sub, err := scanSubmission(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperror.NewNotFoundError("submission not found", err)
	}
	if err != nil {
		return nil, apperror.NewDatabaseError("failed to fetch submission", err)
	}
	return sub, nil
}

// Update applies administrative changes. Moving a submission to resolved or
// closed stamps the response date.
func (s *Service) Update(ctx context.Context, id uuid.UUID, req UpdateRequest) (*Submission, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, apperror.NewValidationError("invalid submission update", err)
	}

	var (
		sets []string
		args []interface{}
	)
	addSet := func(column string, value interface{}) {
		args = append(args, value)
		sets = append(sets, column+" = $"+strconv.Itoa(len(args)))
	}
	if req.Status != nil {
		addSet("status", *req.Status)
		if *req.Status == StatusResolved || *req.Status == StatusClosed {
			addSet("response_date", time.Now())
		}
	}
	if req.Priority != nil {
		addSet("priority", *req.Priority)
	}
	if req.AssignedTo != nil {
		addSet("assigned_to", *req.AssignedTo)
	}
	if req.Notes != nil {
		addSet("notes", *req.Notes)
	}
	if len(sets) == 0 {
		return s.Get(ctx, id)
	}
	addSet("updated_at", time.Now())

	args = append(args, id)
	query := fmt.Sprintf("UPDATE contact_submissions SET %s WHERE id = $%d RETURNING %s",
		strings.Join(sets, ", "), len(args), submissionColumns)

	sub, err := scanSubmission(s.db.QueryRow(ctx, query, args...))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperror.NewNotFoundError("submission not found", err)
	}
	if err != nil {
		return nil, apperror.NewDatabaseError("failed to update submission", err)
	}
	return sub, nil
}

// Delete removes a submission.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := s.db.Exec(ctx, `DELETE FROM contact_submissions WHERE id = $1`, id)
	if err != nil {
		return apperror.NewDatabaseError("failed to delete submission", err)
	}
	if tag.RowsAffected() == 0 {
		return apperror.NewNotFoundError("submission not found", nil)
	}
	s.log.Info(ctx, "contact submission deleted", "submission_id", id)
	return nil
}

// PurgeResolved deletes resolved and closed submissions whose response date
// is older than the TTL. The background sweeper calls this periodically.
func (s *Service) PurgeResolved(ctx context.Context, ttl time.Duration) (int64, error) {
	cutoff := time.Now().Add(-ttl)
	tag, err := s.db.Exec(ctx, `
		DELETE FROM contact_submissions
		WHERE status IN ($1, $2) AND response_date IS NOT NULL AND response_date < $3`,
		StatusResolved, StatusClosed, cutoff,
	)
	if err != nil {
		return 0, apperror.NewDatabaseError("failed to purge resolved submissions", err)
	}
	return tag.RowsAffected(), nil
}
