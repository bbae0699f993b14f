package auth

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// fakeUserStore is an in-memory UserStore for tests.
type fakeUserStore struct {
	mu    sync.Mutex
	users map[uuid.UUID]*User
	// failWith, when set, is returned by every method to simulate outages.
	failWith error
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{users: make(map[uuid.UUID]*User)}
}

func (f *fakeUserStore) Create(_ context.Context, user *User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failWith != nil {
		return f.failWith
	}
	for _, existing := range f.users {
		if strings.EqualFold(existing.Email, user.Email) {
			return ErrDuplicateEmail
		}
	}
	user.CreatedAt = time.Now()
	clone := *user
	f.users[user.ID] = &clone
	return nil
}

func (f *fakeUserStore) GetByID(_ context.Context, id uuid.UUID) (*User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failWith != nil {
		return nil, f.failWith
	}
	user, ok := f.users[id]
	if !ok {
		return nil, ErrUserNotFound
	}
	clone := *user
	return &clone, nil
}

func (f *fakeUserStore) GetByEmail(_ context.Context, email string) (*User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failWith != nil {
		return nil, f.failWith
	}
	for _, user := range f.users {
		if strings.EqualFold(user.Email, email) {
			clone := *user
			return &clone, nil
		}
	}
	return nil, ErrUserNotFound
}

func (f *fakeUserStore) UpdateProfile(_ context.Context, id uuid.UUID, req *UpdateProfileRequest) (*User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	user, ok := f.users[id]
	if !ok {
		return nil, ErrUserNotFound
	}
	if req.FirstName != nil {
		user.Profile.FirstName = *req.FirstName
	}
	if req.LastName != nil {
		user.Profile.LastName = *req.LastName
	}
	if req.Bio != nil {
		user.Profile.Bio = *req.Bio
	}
	if req.Skills != nil {
		user.Profile.Skills = *req.Skills
	}
	clone := *user
	return &clone, nil
}

func (f *fakeUserStore) TouchLastLogin(_ context.Context, id uuid.UUID, at time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	user, ok := f.users[id]
	if !ok {
		return ErrUserNotFound
	}
	user.LastLogin = &at
	return nil
}

var errInviteNotFound = errors.New("invitation not found")

// fakeGate is an in-memory RegistrationGate.
type fakeGate struct {
	mu      sync.Mutex
	invites map[string]*Invitation
}

func newFakeGate() *fakeGate {
	return &fakeGate{invites: make(map[string]*Invitation)}
}

func (f *fakeGate) addInvite(token, email string) uuid.UUID {
	f.mu.Lock()
	defer f.mu.Unlock()
	id := uuid.New()
	f.invites[token] = &Invitation{ApplicationID: id, Email: email}
	return id
}

func (f *fakeGate) FindByRegistrationToken(_ context.Context, token string) (*Invitation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	invite, ok := f.invites[token]
	if !ok {
		return nil, errInviteNotFound
	}
	clone := *invite
	return &clone, nil
}

func (f *fakeGate) MarkRegistered(_ context.Context, applicationID uuid.UUID, _ time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, invite := range f.invites {
		if invite.ApplicationID == applicationID {
			invite.Consumed = true
			return nil
		}
	}
	return errInviteNotFound
}
