package applications

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/user/kaliweb-go/apperror"
	"github.com/user/kaliweb-go/logging"
)

func newTestService(t *testing.T, store Store, notifier Notifier) *Service {
	t.Helper()
	return NewService(store, notifier, logging.NewDefault())
}

func validSubmission(email string) SubmitRequest {
	return SubmitRequest{
		FullName:      "Ada Applicant",
		Email:         email,
		Phone:         "+46 70 123 4567",
		BranchYear:    "CS / year 3",
		PreferredRole: RoleNeuron,
		Domain:        DomainDataScience,
		Motivation:    "I train things.",
	}
}

func submit(t *testing.T, svc *Service, email string) *Application {
	t.Helper()
	app, err := svc.Submit(context.Background(), validSubmission(email))
	require.NoError(t, err)
	return app
}

func TestSubmitCreatesPendingApplication(t *testing.T) {
	notifier := &fakeNotifier{}
	svc := newTestService(t, newFakeStore(), notifier)

	app, err := svc.Submit(context.Background(), validSubmission("Ada@X.com"))
	require.NoError(t, err)

	assert.Equal(t, StatusPending, app.Status)
	assert.Equal(t, "ada@x.com", app.Email, "email is normalized to lowercase")
	assert.False(t, app.SubmittedAt.IsZero())
	assert.Empty(t, app.RegistrationToken)
	assert.Equal(t, []string{"application.submitted"}, notifier.published())
}

func TestSubmitValidation(t *testing.T) {
	svc := newTestService(t, newFakeStore(), nil)

	cases := map[string]func(*SubmitRequest){
		"missing full name":  func(r *SubmitRequest) { r.FullName = "" },
		"missing email":      func(r *SubmitRequest) { r.Email = "" },
		"malformed email":    func(r *SubmitRequest) { r.Email = "not-an-email" },
		"missing phone":      func(r *SubmitRequest) { r.Phone = "" },
		"missing branch":     func(r *SubmitRequest) { r.BranchYear = "" },
		"unknown role":       func(r *SubmitRequest) { r.PreferredRole = "overlord" },
		"unknown domain":     func(r *SubmitRequest) { r.Domain = "astrology" },
		"malformed portfolio": func(r *SubmitRequest) { r.PortfolioLink = "not a url" },
	}

	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			req := validSubmission("a@x.com")
			mutate(&req)

			_, err := svc.Submit(context.Background(), req)
			require.Error(t, err)
			appErr, ok := apperror.FromError(err)
			require.True(t, ok)
			assert.Equal(t, apperror.ValidationError, appErr.Type)
		})
	}
}

func TestSubmitDuplicateEmailIsCaseInsensitive(t *testing.T) {
	svc := newTestService(t, newFakeStore(), nil)

	submit(t, svc, "a@x.com")

	_, err := svc.Submit(context.Background(), validSubmission("A@X.COM"))
	require.Error(t, err)
	appErr, ok := apperror.FromError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.ConflictError, appErr.Type)
}

func TestUpdateFollowsTransitionTable(t *testing.T) {
	svc := newTestService(t, newFakeStore(), nil)
	ctx := context.Background()

	app := submit(t, svc, "a@x.com")

	status := func(s Status) *string {
		v := string(s)
		return &v
	}

	// pending -> under-review -> interview-scheduled is the normal path.
	updated, err := svc.Update(ctx, app.ID, UpdateRequest{Status: status(StatusUnderReview)})
	require.NoError(t, err)
	assert.Equal(t, StatusUnderReview, updated.Status)
	require.NotNil(t, updated.ReviewedAt)

	updated, err = svc.Update(ctx, app.ID, UpdateRequest{Status: status(StatusInterviewScheduled)})
	require.NoError(t, err)
	assert.Equal(t, StatusInterviewScheduled, updated.Status)

	// Moving backwards is rejected.
	_, err = svc.Update(ctx, app.ID, UpdateRequest{Status: status(StatusPending)})
	require.Error(t, err)
	appErr, ok := apperror.FromError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.ValidationError, appErr.Type)

	// Unless the administrator forces it.
	updated, err = svc.Update(ctx, app.ID, UpdateRequest{Status: status(StatusPending), Force: true})
	require.NoError(t, err)
	assert.Equal(t, StatusPending, updated.Status)
}

func TestUpdateDirectPendingToTerminal(t *testing.T) {
	svc := newTestService(t, newFakeStore(), nil)
	ctx := context.Background()

	// The review waypoints are optional; pending may jump straight to a
	// terminal status.
	for _, terminal := range []Status{StatusAccepted, StatusRejected, StatusDenied} {
		app := submit(t, svc, string(terminal)+"@x.com")
		value := string(terminal)
		updated, err := svc.Update(ctx, app.ID, UpdateRequest{Status: &value})
		require.NoError(t, err)
		assert.Equal(t, terminal, updated.Status)
	}
}

func TestUpdateRejectsUnknownStatus(t *testing.T) {
	svc := newTestService(t, newFakeStore(), nil)

	app := submit(t, svc, "a@x.com")
	bogus := "approved"
	_, err := svc.Update(context.Background(), app.ID, UpdateRequest{Status: &bogus})
	require.Error(t, err)
	appErr, ok := apperror.FromError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.ValidationError, appErr.Type)
}

func TestUpdateNotesOnlySkipsReviewStamp(t *testing.T) {
	svc := newTestService(t, newFakeStore(), nil)

	app := submit(t, svc, "a@x.com")
	notes := "strong portfolio"
	updated, err := svc.Update(context.Background(), app.ID, UpdateRequest{Notes: &notes})
	require.NoError(t, err)
	assert.Equal(t, "strong portfolio", updated.Notes)
	assert.Equal(t, StatusPending, updated.Status)
	assert.Nil(t, updated.ReviewedAt)
}

func TestAcceptIssuesRegistrationToken(t *testing.T) {
	notifier := &fakeNotifier{}
	svc := newTestService(t, newFakeStore(), notifier)

	app := submit(t, svc, "a@x.com")
	result, err := svc.Accept(context.Background(), app.ID)
	require.NoError(t, err)

	assert.Equal(t, StatusAccepted, result.Application.Status)
	assert.True(t, result.Issued)
	assert.Regexp(t, regexp.MustCompile(`^KALI-\d+-[A-Z0-9]{6}$`), result.RegistrationToken)
	require.NotNil(t, result.Application.ReviewedAt)
	assert.Contains(t, notifier.published(), "application.accepted")
}

func TestAcceptTwiceKeepsOriginalToken(t *testing.T) {
	svc := newTestService(t, newFakeStore(), nil)
	ctx := context.Background()

	app := submit(t, svc, "a@x.com")

	first, err := svc.Accept(ctx, app.ID)
	require.NoError(t, err)
	second, err := svc.Accept(ctx, app.ID)
	require.NoError(t, err)

	// Idempotent in status and, through the conditional update, in token
	// value as well.
	assert.Equal(t, StatusAccepted, second.Application.Status)
	assert.Equal(t, first.RegistrationToken, second.RegistrationToken)
	assert.False(t, second.Issued)
}

func TestAcceptNotFound(t *testing.T) {
	svc := newTestService(t, newFakeStore(), nil)

	app := submit(t, svc, "a@x.com")
	_, err := svc.Delete(context.Background(), app.ID)
	require.NoError(t, err)

	_, err = svc.Accept(context.Background(), app.ID)
	require.Error(t, err)
	appErr, ok := apperror.FromError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.NotFoundError, appErr.Type)
}

func TestDenyOverridesAcceptedAndKeepsToken(t *testing.T) {
	svc := newTestService(t, newFakeStore(), nil)
	ctx := context.Background()

	app := submit(t, svc, "a@x.com")
	accepted, err := svc.Accept(ctx, app.ID)
	require.NoError(t, err)

	// Deny is a direct administrative decision with no transition guard:
	// it overwrites even an accepted application but leaves the issued
	// registration token in place.
	denied, err := svc.Deny(ctx, app.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusDenied, denied.Status)

	stored, err := svc.Get(ctx, app.ID)
	require.NoError(t, err)
	assert.Equal(t, accepted.RegistrationToken, stored.RegistrationToken)
}

func TestListFiltersAndPaginates(t *testing.T) {
	svc := newTestService(t, newFakeStore(), nil)
	ctx := context.Background()

	for i, email := range []string{"a@x.com", "b@x.com", "c@x.com"} {
		req := validSubmission(email)
		if i == 0 {
			req.PreferredRole = RoleArchitect
		}
		_, err := svc.Submit(ctx, req)
		require.NoError(t, err)
		time.Sleep(time.Millisecond)
	}

	apps, pagination, err := svc.List(ctx, ListFilter{})
	require.NoError(t, err)
	assert.Len(t, apps, 3)
	assert.Equal(t, 3, pagination.TotalApplications)
	assert.Equal(t, 1, pagination.Current)

	apps, _, err = svc.List(ctx, ListFilter{Role: RoleArchitect})
	require.NoError(t, err)
	require.Len(t, apps, 1)
	assert.Equal(t, "a@x.com", apps[0].Email)

	apps, pagination, err = svc.List(ctx, ListFilter{Page: 2, Limit: 2})
	require.NoError(t, err)
	assert.Len(t, apps, 1)
	assert.Equal(t, 2, pagination.Total)

	_, _, err = svc.List(ctx, ListFilter{Status: "approved"})
	require.Error(t, err)
}

func TestStats(t *testing.T) {
	svc := newTestService(t, newFakeStore(), nil)
	ctx := context.Background()

	a := submit(t, svc, "a@x.com")
	submit(t, svc, "b@x.com")
	_, err := svc.Accept(ctx, a.ID)
	require.NoError(t, err)

	stats, err := svc.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Overview.Total)
	assert.Equal(t, 1, stats.Overview.Pending)
	assert.Equal(t, 1, stats.Overview.Accepted)
	assert.Contains(t, stats.RoleDistribution, CountByKey{Key: RoleNeuron, Count: 2})
}

func TestRegistrationGateConsumesToken(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(t, store, nil)
	ctx := context.Background()

	app := submit(t, svc, "a@x.com")
	result, err := svc.Accept(ctx, app.ID)
	require.NoError(t, err)

	invite, err := store.FindByRegistrationToken(ctx, result.RegistrationToken)
	require.NoError(t, err)
	assert.Equal(t, app.ID, invite.ApplicationID)
	assert.Equal(t, "a@x.com", invite.Email)
	assert.False(t, invite.Consumed)

	require.NoError(t, store.MarkRegistered(ctx, invite.ApplicationID, time.Now()))

	invite, err = store.FindByRegistrationToken(ctx, result.RegistrationToken)
	require.NoError(t, err)
	assert.True(t, invite.Consumed)
}
