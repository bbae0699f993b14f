package applications

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/user/kaliweb-go/apperror"
	"github.com/user/kaliweb-go/events"
	"github.com/user/kaliweb-go/logging"
)

// Notifier receives workflow events for live dashboards. A nil Notifier
// disables notifications.
type Notifier interface {
	Publish(event events.Event)
}

// Service implements the application review workflow over a Store.
type Service struct {
	store    Store
	notifier Notifier
	log      logging.Logger
	validate *validator.Validate
}

// NewService creates the applications service. notifier may be nil.
func NewService(store Store, notifier Notifier, log logging.Logger) *Service {
	return &Service{
		store:    store,
		notifier: notifier,
		log:      log,
		validate: validator.New(),
	}
}

// Submit validates and persists a new application in status pending.
func (s *Service) Submit(ctx context.Context, req SubmitRequest) (*Application, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, apperror.NewValidationError("please fill in all required fields", err)
	}

	app := &Application{
		ID:                    uuid.New(),
		FullName:              strings.TrimSpace(req.FullName),
		Email:                 strings.ToLower(strings.TrimSpace(req.Email)),
		Phone:                 strings.TrimSpace(req.Phone),
		BranchYear:            strings.TrimSpace(req.BranchYear),
		PreferredRole:         req.PreferredRole,
		Domain:                req.Domain,
		ProgrammingExperience: strings.TrimSpace(req.ProgrammingExperience),
		Motivation:            strings.TrimSpace(req.Motivation),
		PortfolioLink:         strings.TrimSpace(req.PortfolioLink),
		Status:                StatusPending,
		SubmittedAt:           time.Now(),
	}

	if err := s.store.Insert(ctx, app); err != nil {
		if errors.Is(err, ErrDuplicateEmail) {
			return nil, apperror.NewConflictError("an application with this email already exists", err)
		}
		return nil, apperror.NewDatabaseError("failed to submit application", err)
	}

	s.log.Info(ctx, "application submitted",
		"application_id", app.ID, "email", app.Email, "domain", app.Domain)
	s.publish("application.submitted", app)
	return app, nil
}

// List returns a filtered, paginated page of applications.
func (s *Service) List(ctx context.Context, filter ListFilter) ([]*Application, *Pagination, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 || filter.Limit > 100 {
		filter.Limit = 20
	}
	if filter.Status != "" && !Status(filter.Status).IsValid() {
		return nil, nil, apperror.NewBadRequestError("unknown status filter", nil)
	}

	apps, total, err := s.store.List(ctx, filter)
	if err != nil {
		return nil, nil, apperror.NewDatabaseError("failed to fetch applications", err)
	}
	if apps == nil {
		apps = []*Application{}
	}

	pages := total / filter.Limit
	if total%filter.Limit != 0 {
		pages++
	}
	return apps, &Pagination{
		Current:           filter.Page,
		Total:             pages,
		Count:             len(apps),
		TotalApplications: total,
	}, nil
}

// Get returns one application by ID.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Application, error) {
	app, err := s.store.GetByID(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return nil, apperror.NewNotFoundError("application not found", err)
	}
	if err != nil {
		return nil, apperror.NewDatabaseError("failed to fetch application", err)
	}
	return app, nil
}

// Update applies a reviewer's changes. Status changes must follow the
// review lifecycle unless Force is set; a status change also stamps the
// review timestamp.
func (s *Service) Update(ctx context.Context, id uuid.UUID, req UpdateRequest) (*Application, error) {
	upd := ReviewUpdate{
		Notes:      req.Notes,
		ReviewedBy: req.ReviewedBy,
	}

	if req.Status != nil {
		next := Status(*req.Status)
		if !next.IsValid() {
			return nil, apperror.NewValidationError("unknown application status", nil)
		}

		current, err := s.Get(ctx, id)
		if err != nil {
			return nil, err
		}
		if !req.Force && !CanTransition(current.Status, next) {
			return nil, apperror.NewValidationError(
				"cannot move application from "+string(current.Status)+" to "+string(next), nil)
		}

		now := time.Now()
		upd.Status = &next
		upd.ReviewedAt = &now
	}

	app, err := s.store.UpdateReview(ctx, id, upd)
	if errors.Is(err, ErrNotFound) {
		return nil, apperror.NewNotFoundError("application not found", err)
	}
	if err != nil {
		return nil, apperror.NewDatabaseError("failed to update application", err)
	}

	s.log.Info(ctx, "application updated", "application_id", app.ID, "status", app.Status)
	s.publish("application.updated", app)
	return app, nil
}

// Accept moves the application to accepted and issues a registration token.
// Accepting an already accepted application does not rotate the token; the
// original one is returned again.
func (s *Service) Accept(ctx context.Context, id uuid.UUID) (*AcceptResult, error) {
	token, err := NewRegistrationToken(time.Now())
	if err != nil {
		return nil, apperror.NewInternalError("failed to generate registration token", err)
	}

	app, issued, err := s.store.Accept(ctx, id, token, time.Now())
	if errors.Is(err, ErrNotFound) {
		return nil, apperror.NewNotFoundError("application not found", err)
	}
	if err != nil {
		return nil, apperror.NewDatabaseError("failed to accept application", err)
	}

	if issued {
		s.log.Info(ctx, "application accepted", "application_id", app.ID)
		s.publish("application.accepted", app)
	} else {
		s.log.Warn(ctx, "application was already accepted, returning existing token",
			"application_id", app.ID)
	}
	return &AcceptResult{
		Application:       app,
		RegistrationToken: app.RegistrationToken,
		Issued:            issued,
	}, nil
}

// Deny sets the application to denied. This is a direct administrative
// decision and is allowed from any status; an already issued registration
// token is left in place.
func (s *Service) Deny(ctx context.Context, id uuid.UUID) (*Application, error) {
	now := time.Now()
	denied := StatusDenied
	app, err := s.store.UpdateReview(ctx, id, ReviewUpdate{
		Status:     &denied,
		ReviewedAt: &now,
	})
	if errors.Is(err, ErrNotFound) {
		return nil, apperror.NewNotFoundError("application not found", err)
	}
	if err != nil {
		return nil, apperror.NewDatabaseError("failed to deny application", err)
	}

	s.log.Info(ctx, "application denied", "application_id", app.ID)
	s.publish("application.denied", app)
	return app, nil
}

// Delete removes the application and returns the deleted record.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) (*Application, error) {
	app, err := s.store.Delete(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return nil, apperror.NewNotFoundError("application not found", err)
	}
	if err != nil {
		return nil, apperror.NewDatabaseError("failed to delete application", err)
	}
	s.log.Info(ctx, "application deleted", "application_id", app.ID)
	return app, nil
}

// Stats returns the status, role, and domain aggregates.
func (s *Service) Stats(ctx context.Context) (*Stats, error) {
	stats, err := s.store.Stats(ctx)
	if err != nil {
		return nil, apperror.NewDatabaseError("failed to fetch application statistics", err)
	}
	return stats, nil
}

func (s *Service) publish(name string, app *Application) {
	if s.notifier == nil {
		return
	}
	event, err := events.NewJSONEvent(name, map[string]interface{}{
		"id":     app.ID,
		"email":  app.Email,
		"status": app.Status,
	})
	if err != nil {
		return
	}
	s.notifier.Publish(event)
}
