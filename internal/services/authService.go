package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/arzan03/wastetrack/internal/auth"
	"github.com/arzan03/wastetrack/internal/common"
	"github.com/arzan03/wastetrack/internal/models"
	"github.com/arzan03/wastetrack/internal/notify"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// UserStore is the credential store.
type UserStore interface {
	Create(ctx context.Context, user *models.User) error
	FindByUsername(ctx context.Context, username string) (*models.User, error)
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	List(ctx context.Context) ([]models.User, error)
	ListPendingVolunteers(ctx context.Context) ([]models.User, error)
	SetPassword(ctx context.Context, id primitive.ObjectID, hash string) error
	ApproveVolunteer(ctx context.Context, id primitive.ObjectID) error
}

// reservedUsernames cannot be taken through self-registration (compared lowercased).
var reservedUsernames = map[string]struct{}{
	"admin":    {},
	"manager1": {},
	"manager2": {},
}

// AuthResult is returned by registration and login.
type AuthResult struct {
	User      *models.User
	Token     string
	ExpiresAt time.Time
}

type AuthService struct {
	users    UserStore
	tokens   *auth.Issuer
	notifier notify.Notifier
	log      *zap.Logger

	allowPrivilegedSignup bool
	hashCost              int
	notifyTimeout         time.Duration
}

// DefaultNotifyTimeout bounds a password reset notification.
const DefaultNotifyTimeout = 10 * time.Second

type AuthOption func(*AuthService)

// WithPrivilegedSignup lets self-registration request admin or manager roles.
func WithPrivilegedSignup(allow bool) AuthOption {
	return func(s *AuthService) { s.allowPrivilegedSignup = allow }
}

// WithNotifyTimeout bounds operator notifications. Non-positive values keep the default.
func WithNotifyTimeout(d time.Duration) AuthOption {
	return func(s *AuthService) {
		if d > 0 {
			s.notifyTimeout = d
		}
	}
}

// WithHashCost overrides the bcrypt cost.
func WithHashCost(cost int) AuthOption {
	return func(s *AuthService) { s.hashCost = cost }
}

func NewAuthService(users UserStore, tokens *auth.Issuer, notifier notify.Notifier, log *zap.Logger, opts ...AuthOption) *AuthService {
	s := &AuthService{
		users:         users,
		tokens:        tokens,
		notifier:      notifier,
		log:           log,
		hashCost:      bcrypt.DefaultCost,
		notifyTimeout: DefaultNotifyTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// HashPassword hashes a password using bcrypt. The salt is embedded in the hash.
// Passwords longer than bcrypt accepts are a validation error.
func (s *AuthService) HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.hashCost)
	if errors.Is(err, bcrypt.ErrPasswordTooLong) {
		return "", fmt.Errorf("%w: password must be at most 72 bytes", common.ErrValidation)
	}
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

// VerifyPassword compares a plain password with a hashed password
func VerifyPassword(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// IsReservedUsername reports whether username is held back from self-registration.
func IsReservedUsername(username string) bool {
	_, ok := reservedUsernames[strings.ToLower(username)]
	return ok
}

// signupRole maps a requested role to the stored role and pending flag.
func (s *AuthService) signupRole(requested string) (models.Role, bool, error) {
	switch role := models.Role(requested); role {
	case "", models.RoleUser:
		return models.RoleUser, false, nil
	case models.RoleVolunteer:
		return models.RoleUser, true, nil
	case models.RoleAdmin, models.RoleManager:
		if s.allowPrivilegedSignup {
			return role, false, nil
		}
		return "", false, fmt.Errorf("%w: role %q cannot be self-registered", common.ErrValidation, requested)
	default:
		return "", false, fmt.Errorf("%w: unknown role %q", common.ErrValidation, requested)
	}
}

// Register creates an account through self-registration. A volunteer request
// is stored as a plain user with a pending application.
func (s *AuthService) Register(ctx context.Context, username, password, requestedRole string) (*AuthResult, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, fmt.Errorf("%w: username and password are required", common.ErrValidation)
	}
	if IsReservedUsername(username) {
		return nil, fmt.Errorf("%w: cannot register with reserved username %q", common.ErrValidation, username)
	}

	role, pending, err := s.signupRole(requestedRole)
	if err != nil {
		return nil, err
	}

	user, err := s.createUser(ctx, username, password, role, pending)
	if err != nil {
		return nil, err
	}
	s.log.Info("user registered", zap.String("username", user.Username), zap.String("role", string(user.Role)),
		zap.Bool("volunteer_request_pending", pending))
	return s.issue(user)
}

// Provision creates an account of any role on behalf of an administrator.
// Reserved names are allowed here.
func (s *AuthService) Provision(ctx context.Context, username, password string, role models.Role) (*models.User, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, fmt.Errorf("%w: username and password are required", common.ErrValidation)
	}
	if !role.Valid() {
		return nil, fmt.Errorf("%w: unknown role %q", common.ErrValidation, role)
	}
	user, err := s.createUser(ctx, username, password, role, false)
	if err != nil {
		return nil, err
	}
	s.log.Info("user provisioned", zap.String("username", user.Username), zap.String("role", string(user.Role)))
	return user, nil
}

// EnsureAdmin creates the bootstrap administrator if username is free.
func (s *AuthService) EnsureAdmin(ctx context.Context, username, password string) error {
	_, err := s.users.FindByUsername(ctx, username)
	if err == nil {
		return nil
	}
	if !errors.Is(err, common.ErrNotFound) {
		return err
	}
	_, err = s.Provision(ctx, username, password, models.RoleAdmin)
	if errors.Is(err, common.ErrConflict) {
		return nil
	}
	return err
}

func (s *AuthService) createUser(ctx context.Context, username, password string, role models.Role, pending bool) (*models.User, error) {
	if _, err := s.users.FindByUsername(ctx, username); err == nil {
		return nil, fmt.Errorf("%w: user already exists", common.ErrConflict)
	} else if !errors.Is(err, common.ErrNotFound) {
		return nil, internalError(s.log, "lookup user", err)
	}

	hash, err := s.HashPassword(password)
	if errors.Is(err, common.ErrValidation) {
		return nil, err
	}
	if err != nil {
		return nil, internalError(s.log, "hash password", err)
	}

	user := &models.User{
		Username:                username,
		Password:                hash,
		Role:                    role,
		VolunteerRequestPending: pending,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, common.ErrConflict) {
			return nil, err
		}
		return nil, internalError(s.log, "create user", err)
	}
	return user, nil
}

// Login checks credentials. Unknown users and wrong passwords fail identically.
func (s *AuthService) Login(ctx context.Context, username, password string) (*AuthResult, error) {
	user, err := s.users.FindByUsername(ctx, username)
	if errors.Is(err, common.ErrNotFound) {
		return nil, fmt.Errorf("%w: invalid username or password", common.ErrUnauthorized)
	}
	if err != nil {
		return nil, internalError(s.log, "lookup user", err)
	}
	if !VerifyPassword(password, user.Password) {
		return nil, fmt.Errorf("%w: invalid username or password", common.ErrUnauthorized)
	}
	return s.issue(user)
}

func (s *AuthService) issue(user *models.User) (*AuthResult, error) {
	token, exp, err := s.tokens.Issue(user.ID.Hex())
	if err != nil {
		return nil, internalError(s.log, "issue token", err)
	}
	return &AuthResult{User: user, Token: token, ExpiresAt: exp}, nil
}

// Authenticate resolves a bearer token to the current state of its user.
func (s *AuthService) Authenticate(ctx context.Context, token string) (*models.Session, error) {
	claims, err := s.tokens.Verify(token)
	if err != nil {
		return nil, err
	}
	id, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		return nil, common.ErrUnauthorized
	}

	user, err := s.users.FindByID(ctx, id)
	if errors.Is(err, common.ErrNotFound) {
		return nil, common.ErrUnauthorized
	}
	if err != nil {
		return nil, internalError(s.log, "lookup session user", err)
	}

	return &models.Session{
		UserID:                  user.ID,
		Username:                user.Username,
		Role:                    user.Role,
		VolunteerRequestPending: user.VolunteerRequestPending,
		ExpiresAt:               claims.ExpiresAt.Time,
	}, nil
}

// ResetPassword sets a new password for user id. Issued tokens stay valid.
func (s *AuthService) ResetPassword(ctx context.Context, id, newPassword string) error {
	oid, err := parseID(id, "user")
	if err != nil {
		return err
	}
	if newPassword == "" {
		return fmt.Errorf("%w: new password is required", common.ErrValidation)
	}

	hash, err := s.HashPassword(newPassword)
	if errors.Is(err, common.ErrValidation) {
		return err
	}
	if err != nil {
		return internalError(s.log, "hash password", err)
	}
	if err := s.users.SetPassword(ctx, oid, hash); err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return err
		}
		return internalError(s.log, "set password", err)
	}
	s.log.Info("password reset", zap.String("user_id", id))
	return nil
}

// RequestPasswordReset tells the operator that username wants a new password.
// Nothing is changed here; the operator follows up with ResetPassword.
func (s *AuthService) RequestPasswordReset(ctx context.Context, username string) error {
	if strings.TrimSpace(username) == "" {
		return fmt.Errorf("%w: username is required", common.ErrValidation)
	}
	if _, err := s.users.FindByUsername(ctx, username); err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return err
		}
		return internalError(s.log, "lookup user", err)
	}

	ctx, cancel := context.WithTimeout(ctx, s.notifyTimeout)
	defer cancel()

	body := fmt.Sprintf("User '%s' has requested a password reset.", username)
	if err := s.notifier.Notify(ctx, "Password Reset Request", body); err != nil {
		s.log.Error("password reset notification failed", zap.String("username", username), zap.Error(err))
		return fmt.Errorf("%w: failed to notify administrator", common.ErrUpstream)
	}
	return nil
}

func (s *AuthService) ListUsers(ctx context.Context) ([]models.User, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, internalError(s.log, "list users", err)
	}
	return users, nil
}

// internalError logs err and hides it behind common.ErrInternal.
func internalError(log *zap.Logger, op string, err error) error {
	log.Error(op, zap.Error(err))
	return fmt.Errorf("%w: %s", common.ErrInternal, op)
}

func parseID(id, kind string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("%w: invalid %s id", common.ErrValidation, kind)
	}
	return oid, nil
}
