package applications

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/user/kaliweb-go/auth"
	"github.com/user/kaliweb-go/events"
)

// fakeStore is an in-memory Store for service tests.
type fakeStore struct {
	mu       sync.Mutex
	apps     map[uuid.UUID]*Application
	failWith error
}

func newFakeStore() *fakeStore {
	return &fakeStore{apps: make(map[uuid.UUID]*Application)}
}

func (f *fakeStore) Insert(_ context.Context, app *Application) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failWith != nil {
		return f.failWith
	}
	for _, existing := range f.apps {
		if strings.EqualFold(existing.Email, app.Email) {
			return ErrDuplicateEmail
		}
	}
	clone := *app
	f.apps[app.ID] = &clone
	return nil
}

func (f *fakeStore) GetByID(_ context.Context, id uuid.UUID) (*Application, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.getLocked(id)
}

func (f *fakeStore) getLocked(id uuid.UUID) (*Application, error) {
	if f.failWith != nil {
		return nil, f.failWith
	}
	app, ok := f.apps[id]
	if !ok {
		return nil, ErrNotFound
	}
	clone := *app
	return &clone, nil
}

func (f *fakeStore) List(_ context.Context, filter ListFilter) ([]*Application, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failWith != nil {
		return nil, 0, f.failWith
	}

	var matched []*Application
	for _, app := range f.apps {
		if filter.Status != "" && string(app.Status) != filter.Status {
			continue
		}
		if filter.Role != "" && app.PreferredRole != filter.Role {
			continue
		}
		if filter.Domain != "" && app.Domain != filter.Domain {
			continue
		}
		clone := *app
		matched = append(matched, &clone)
	}
	sort.Slice(matched, func(i, j int) bool {
		return matched[i].SubmittedAt.After(matched[j].SubmittedAt)
	})

	total := len(matched)
	start := (filter.Page - 1) * filter.Limit
	if start > total {
		start = total
	}
	end := start + filter.Limit
	if end > total {
		end = total
	}
	return matched[start:end], total, nil
}

func (f *fakeStore) UpdateReview(_ context.Context, id uuid.UUID, upd ReviewUpdate) (*Application, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failWith != nil {
		return nil, f.failWith
	}
	app, ok := f.apps[id]
	if !ok {
		return nil, ErrNotFound
	}
	if upd.Status != nil {
		app.Status = *upd.Status
	}
	if upd.Notes != nil {
		app.Notes = *upd.Notes
	}
	if upd.ReviewedBy != nil {
		app.ReviewedBy = *upd.ReviewedBy
	}
	if upd.ReviewedAt != nil {
		at := *upd.ReviewedAt
		app.ReviewedAt = &at
	}
	clone := *app
	return &clone, nil
}

func (f *fakeStore) Accept(_ context.Context, id uuid.UUID, token string, at time.Time) (*Application, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failWith != nil {
		return nil, false, f.failWith
	}
	app, ok := f.apps[id]
	if !ok {
		return nil, false, ErrNotFound
	}
	if app.Status == StatusAccepted {
		clone := *app
		return &clone, false, nil
	}
	app.Status = StatusAccepted
	app.RegistrationToken = token
	reviewed := at
	app.ReviewedAt = &reviewed
	clone := *app
	return &clone, true, nil
}

func (f *fakeStore) Delete(_ context.Context, id uuid.UUID) (*Application, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failWith != nil {
		return nil, f.failWith
	}
	app, ok := f.apps[id]
	if !ok {
		return nil, ErrNotFound
	}
	delete(f.apps, id)
	return app, nil
}

func (f *fakeStore) Stats(_ context.Context) (*Stats, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failWith != nil {
		return nil, f.failWith
	}

	stats := &Stats{
		RoleDistribution:   []CountByKey{},
		DomainDistribution: []CountByKey{},
	}
	roles := make(map[string]int)
	domains := make(map[string]int)
	for _, app := range f.apps {
		stats.Overview.Total++
		switch app.Status {
		case StatusPending:
			stats.Overview.Pending++
		case StatusUnderReview:
			stats.Overview.UnderReview++
		case StatusInterviewScheduled:
			stats.Overview.InterviewScheduled++
		case StatusAccepted:
			stats.Overview.Accepted++
		case StatusRejected:
			stats.Overview.Rejected++
		case StatusDenied:
			stats.Overview.Denied++
		}
		roles[app.PreferredRole]++
		domains[app.Domain]++
	}
	for key, count := range roles {
		stats.RoleDistribution = append(stats.RoleDistribution, CountByKey{Key: key, Count: count})
	}
	for key, count := range domains {
		stats.DomainDistribution = append(stats.DomainDistribution, CountByKey{Key: key, Count: count})
	}
	return stats, nil
}

func (f *fakeStore) FindByRegistrationToken(_ context.Context, token string) (*auth.Invitation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if token == "" {
		return nil, ErrNotFound
	}
	for _, app := range f.apps {
		if app.RegistrationToken == token {
			return &auth.Invitation{
				ApplicationID: app.ID,
				Email:         app.Email,
				Consumed:      app.RegisteredAt != nil,
			}, nil
		}
	}
	return nil, ErrNotFound
}

func (f *fakeStore) MarkRegistered(_ context.Context, applicationID uuid.UUID, at time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	app, ok := f.apps[applicationID]
	if !ok || app.RegisteredAt != nil {
		return ErrNotFound
	}
	registered := at
	app.RegisteredAt = &registered
	return nil
}

// fakeNotifier records published event names.
type fakeNotifier struct {
	mu    sync.Mutex
	names []string
}

func (f *fakeNotifier) Publish(event events.Event) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.names = append(f.names, event.Name)
}

func (f *fakeNotifier) published() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.names...)
}
