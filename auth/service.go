package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/user/kaliweb-go/apperror"
	"github.com/user/kaliweb-go/config"
	"github.com/user/kaliweb-go/logging"
)

// ErrInvalidToken is returned by VerifyToken for any token whose signature
// or expiry does not check out. Callers must not surface the distinction.
var ErrInvalidToken = errors.New("invalid token")

// Claims is the JWT payload: the user identifier plus the registered claims.
type Claims struct {
	UserID uuid.UUID `json:"user_id"`
	jwt.RegisteredClaims
}

// Service implements the credential and session manager: password hashing,
// token issuance/verification, login, and token-gated registration.
type Service struct {
	store    UserStore
	gate     RegistrationGate
	cfg      config.AuthConfig
	log      logging.Logger
	validate *validator.Validate
}

// NewService creates the auth service. The gate resolves registration
// tokens against the application store; it may be nil in deployments that
// never register users.
func NewService(store UserStore, gate RegistrationGate, cfg config.AuthConfig, log logging.Logger) *Service {
	return &Service{
		store:    store,
		gate:     gate,
		cfg:      cfg,
		log:      log.With("component", "auth"),
		validate: validator.New(),
	}
}

// IssueToken produces a signed session token for the given user.
func (s *Service) IssueToken(userID uuid.UUID) (string, error) {
	now := time.Now()
	claims := &Claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(s.cfg.TokenDuration)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    "kaliweb",
			Subject:   userID.String(),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(s.cfg.JWTSecret))
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return tokenString, nil
}

// VerifyToken checks the token's signature and expiry and returns the
// subject user ID. Signature and expiry are the only checks performed.
func (s *Service) VerifyToken(tokenString string) (uuid.UUID, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.cfg.JWTSecret), nil
	})
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !token.Valid || claims.UserID == uuid.Nil {
		return uuid.Nil, ErrInvalidToken
	}
	return claims.UserID, nil
}

// HashPassword runs the plaintext through bcrypt at the configured cost.
func (s *Service) HashPassword(plaintext string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(plaintext), s.cfg.BcryptCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hashed), nil
}

// ComparePassword reports whether the plaintext matches the stored hash.
func ComparePassword(plaintext, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plaintext)) == nil
}

// Login authenticates by email and password and returns a session token.
// Unknown email, wrong password, and deactivated accounts all collapse to
// the same response; the real cause is only logged.
func (s *Service) Login(ctx context.Context, req LoginRequest) (*TokenResponse, error) {
	invalidCredentials := func(cause string) error {
		s.log.Warn(ctx, "login rejected", "cause", cause, "email", strings.ToLower(req.Email))
		return apperror.NewAuthError("invalid email or password", nil)
	}

	if err := s.validate.Struct(req); err != nil {
		return nil, apperror.NewValidationError("email and password are required", err)
	}

	user, err := s.store.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, invalidCredentials("unknown email")
		}
		return nil, apperror.NewDatabaseError("failed to look up user", err)
	}

	if !ComparePassword(req.Password, user.PasswordHash) {
		return nil, invalidCredentials("wrong password")
	}
	if !user.IsActive {
		return nil, invalidCredentials("account deactivated")
	}

	now := time.Now()
	if err := s.store.TouchLastLogin(ctx, user.ID, now); err != nil {
		// Login still succeeds; the timestamp is best-effort bookkeeping.
		s.log.Warn(ctx, "failed to update last login", "error", err)
	} else {
		user.LastLogin = &now
	}

	return s.tokenResponse(user)
}

// RegisterWithToken creates a User from an accepted application's
// registration token. The token is single-use: the owning application is
// marked consumed once the user exists.
func (s *Service) RegisterWithToken(ctx context.Context, req RegisterRequest) (*TokenResponse, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, apperror.NewValidationError("please fill in all required registration fields", err)
	}
	if s.gate == nil {
		return nil, apperror.NewInternalError("registration is not available", nil)
	}

	invite, err := s.gate.FindByRegistrationToken(ctx, req.Token)
	if err != nil {
		return nil, apperror.NewBadRequestError("invalid registration token", err)
	}
	if invite.Consumed {
		return nil, apperror.NewBadRequestError("registration token has already been used", nil)
	}
	if !strings.EqualFold(invite.Email, req.Email) {
		return nil, apperror.NewBadRequestError("email does not match the accepted application", nil)
	}

	hash, err := s.HashPassword(req.Password)
	if err != nil {
		return nil, apperror.NewInternalError("failed to process credentials", err)
	}

	user := &User{
		ID:           uuid.New(),
		Email:        strings.ToLower(req.Email),
		PasswordHash: hash,
		Profile: Profile{
			FirstName: strings.TrimSpace(req.FirstName),
			LastName:  strings.TrimSpace(req.LastName),
			Bio:       strings.TrimSpace(req.Bio),
			Skills:    req.Skills,
			GitHub:    strings.TrimSpace(req.GitHub),
			LinkedIn:  strings.TrimSpace(req.LinkedIn),
			Website:   strings.TrimSpace(req.Website),
		},
		Role:     RoleMember,
		IsActive: true,
	}

	if err := s.store.Create(ctx, user); err != nil {
		if errors.Is(err, ErrDuplicateEmail) {
			return nil, apperror.NewConflictError("an account with this email already exists", nil)
		}
		return nil, apperror.NewDatabaseError("failed to create user", err)
	}

	if err := s.gate.MarkRegistered(ctx, invite.ApplicationID, time.Now()); err != nil {
		// The user exists; failing to stamp the application must not undo
		// registration. It is logged for manual follow-up.
		s.log.Error(ctx, "failed to mark application registered",
			"application_id", invite.ApplicationID, "error", err)
	}

	s.log.Info(ctx, "user registered", "user_id", user.ID)
	return s.tokenResponse(user)
}

// GetUser loads a user by ID.
func (s *Service) GetUser(ctx context.Context, id uuid.UUID) (*User, error) {
	user, err := s.store.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, apperror.NewNotFoundError("user not found", nil)
		}
		return nil, apperror.NewDatabaseError("failed to load user", err)
	}
	return user, nil
}

// UpdateProfile applies a partial profile update to the given user.
func (s *Service) UpdateProfile(ctx context.Context, id uuid.UUID, req *UpdateProfileRequest) (*User, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, apperror.NewValidationError("invalid profile fields", err)
	}
	user, err := s.store.UpdateProfile(ctx, id, req)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, apperror.NewNotFoundError("user not found", nil)
		}
		return nil, apperror.NewDatabaseError("failed to update profile", err)
	}
	return user, nil
}

func (s *Service) tokenResponse(user *User) (*TokenResponse, error) {
	token, err := s.IssueToken(user.ID)
	if err != nil {
		return nil, apperror.NewInternalError("failed to issue session token", err)
	}
	return &TokenResponse{
		Token:     token,
		TokenType: "Bearer",
		ExpiresIn: int64(s.cfg.TokenDuration.Seconds()),
		User:      user,
	}, nil
}
