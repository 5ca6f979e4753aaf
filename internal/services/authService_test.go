package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/arzan03/wastetrack/internal/auth"
	"github.com/arzan03/wastetrack/internal/common"
	"github.com/arzan03/wastetrack/internal/db"
	"github.com/arzan03/wastetrack/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap/zaptest"
	"golang.org/x/crypto/bcrypt"
)

type fakeNotifier struct {
	subject, body string
	calls         int
	err           error
}

func (f *fakeNotifier) Notify(_ context.Context, subject, body string) error {
	f.calls++
	f.subject, f.body = subject, body
	return f.err
}

// brokenUsers fails every call with a store error.
type brokenUsers struct{ UserStore }

var errStoreDown = errors.New("connection refused")

func (brokenUsers) FindByUsername(context.Context, string) (*models.User, error) {
	return nil, errStoreDown
}

func (brokenUsers) List(context.Context) ([]models.User, error) { return nil, errStoreDown }

func newAuthService(t *testing.T, opts ...AuthOption) (*AuthService, *db.MemoryUserRepository, *fakeNotifier) {
	t.Helper()
	users := db.NewMemoryUserRepository()
	n := &fakeNotifier{}
	opts = append([]AuthOption{WithHashCost(bcrypt.MinCost)}, opts...)
	svc := NewAuthService(users, auth.NewIssuer("test-secret", auth.DefaultTTL), n, zaptest.NewLogger(t), opts...)
	return svc, users, n
}

func TestRegister_StoresHashAndIssuesToken(t *testing.T) {
	svc, users, _ := newAuthService(t)
	ctx := context.Background()

	res, err := svc.Register(ctx, "alice", "password123", "user")
	require.NoError(t, err)
	assert.NotEmpty(t, res.Token)
	assert.Equal(t, models.RoleUser, res.User.Role)
	assert.WithinDuration(t, time.Now().Add(auth.DefaultTTL), res.ExpiresAt, time.Minute)

	stored, err := users.FindByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.NotEqual(t, "password123", stored.Password)
	assert.True(t, VerifyPassword("password123", stored.Password))
}

func TestRegister_SamePasswordGetsDistinctHashes(t *testing.T) {
	svc, users, _ := newAuthService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, "a1", "same-password", "")
	require.NoError(t, err)
	_, err = svc.Register(ctx, "a2", "same-password", "")
	require.NoError(t, err)

	u1, _ := users.FindByUsername(ctx, "a1")
	u2, _ := users.FindByUsername(ctx, "a2")
	assert.NotEqual(t, u1.Password, u2.Password)
}

func TestRegister_DuplicateIsConflict(t *testing.T) {
	svc, users, _ := newAuthService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, "bob", "password123", "")
	require.NoError(t, err)

	_, err = svc.Register(ctx, "bob", "other-pass", "volunteer")
	assert.ErrorIs(t, err, common.ErrConflict)

	all, _ := users.List(ctx)
	assert.Len(t, all, 1)

	// exact-match only: a case variant is a different user
	_, err = svc.Register(ctx, "Bob", "password123", "")
	assert.NoError(t, err)
}

func TestRegister_ReservedNames(t *testing.T) {
	svc, users, _ := newAuthService(t)

	for _, name := range []string{"admin", "Admin", "ADMIN", "manager1", "MANAGER2", "Manager1"} {
		t.Run(name, func(t *testing.T) {
			_, err := svc.Register(context.Background(), name, "password123", "")
			assert.ErrorIs(t, err, common.ErrValidation)
			assert.Contains(t, err.Error(), "reserved")
		})
	}

	all, _ := users.List(context.Background())
	assert.Empty(t, all)
}

func TestRegister_VolunteerRequestIsPending(t *testing.T) {
	svc, _, _ := newAuthService(t)
	ctx := context.Background()

	res, err := svc.Register(ctx, "carol", "password123", "volunteer")
	require.NoError(t, err)
	assert.Equal(t, models.RoleUser, res.User.Role)
	assert.True(t, res.User.VolunteerRequestPending)

	login, err := svc.Login(ctx, "carol", "password123")
	require.NoError(t, err)
	assert.Equal(t, models.RoleUser, login.User.Role)
	assert.True(t, login.User.VolunteerRequestPending)
}

func TestRegister_PrivilegedRoles(t *testing.T) {
	t.Run("rejected by default", func(t *testing.T) {
		svc, _, _ := newAuthService(t)
		for _, role := range []string{"admin", "manager"} {
			_, err := svc.Register(context.Background(), "eve-"+role, "password123", role)
			assert.ErrorIs(t, err, common.ErrValidation)
		}
	})

	t.Run("stored verbatim when allowed", func(t *testing.T) {
		svc, _, _ := newAuthService(t, WithPrivilegedSignup(true))
		res, err := svc.Register(context.Background(), "boss", "password123", "manager")
		require.NoError(t, err)
		assert.Equal(t, models.RoleManager, res.User.Role)
		assert.False(t, res.User.VolunteerRequestPending)
	})

	t.Run("unknown role", func(t *testing.T) {
		svc, _, _ := newAuthService(t, WithPrivilegedSignup(true))
		_, err := svc.Register(context.Background(), "x", "password123", "superuser")
		assert.ErrorIs(t, err, common.ErrValidation)
	})
}

func TestRegister_MissingFields(t *testing.T) {
	svc, _, _ := newAuthService(t)

	_, err := svc.Register(context.Background(), "  ", "password123", "")
	assert.ErrorIs(t, err, common.ErrValidation)
	_, err = svc.Register(context.Background(), "frank", "", "")
	assert.ErrorIs(t, err, common.ErrValidation)
}

func TestLogin(t *testing.T) {
	svc, _, _ := newAuthService(t)
	ctx := context.Background()
	_, err := svc.Register(ctx, "dave", "password123", "")
	require.NoError(t, err)

	res, err := svc.Login(ctx, "dave", "password123")
	require.NoError(t, err)
	assert.NotEmpty(t, res.Token)

	_, wrongPass := svc.Login(ctx, "dave", "nope")
	_, noUser := svc.Login(ctx, "nobody", "password123")
	assert.ErrorIs(t, wrongPass, common.ErrUnauthorized)
	assert.ErrorIs(t, noUser, common.ErrUnauthorized)
	assert.Equal(t, wrongPass.Error(), noUser.Error())
}

func TestLogin_StoreFailureIsInternal(t *testing.T) {
	svc := NewAuthService(brokenUsers{}, auth.NewIssuer("s", time.Hour), &fakeNotifier{}, zaptest.NewLogger(t))

	_, err := svc.Login(context.Background(), "dave", "password123")
	assert.ErrorIs(t, err, common.ErrInternal)
	assert.NotContains(t, err.Error(), "connection refused")
}

func TestAuthenticate(t *testing.T) {
	svc, users, _ := newAuthService(t)
	ctx := context.Background()

	res, err := svc.Register(ctx, "gina", "password123", "volunteer")
	require.NoError(t, err)

	sess, err := svc.Authenticate(ctx, res.Token)
	require.NoError(t, err)
	assert.Equal(t, res.User.ID, sess.UserID)
	assert.Equal(t, models.RoleUser, sess.Role)
	assert.Equal(t, res.ExpiresAt.Unix(), sess.ExpiresAt.Unix())

	// role changes are visible on the next request
	require.NoError(t, users.ApproveVolunteer(ctx, res.User.ID))
	sess, err = svc.Authenticate(ctx, res.Token)
	require.NoError(t, err)
	assert.Equal(t, models.RoleVolunteer, sess.Role)
	assert.True(t, sess.CanRecord())
	assert.False(t, sess.CanDelete())
}

func TestAuthenticate_Failures(t *testing.T) {
	svc, _, _ := newAuthService(t)

	_, err := svc.Authenticate(context.Background(), "garbage")
	assert.ErrorIs(t, err, common.ErrUnauthorized)

	ghost, _, err := auth.NewIssuer("test-secret", time.Hour).Issue(primitive.NewObjectID().Hex())
	require.NoError(t, err)
	_, err = svc.Authenticate(context.Background(), ghost)
	assert.ErrorIs(t, err, common.ErrUnauthorized)

	notAnID, _, err := auth.NewIssuer("test-secret", time.Hour).Issue("not-an-object-id")
	require.NoError(t, err)
	_, err = svc.Authenticate(context.Background(), notAnID)
	assert.ErrorIs(t, err, common.ErrUnauthorized)
}

func TestResetPassword_OldTokenStaysValid(t *testing.T) {
	svc, _, _ := newAuthService(t)
	ctx := context.Background()

	res, err := svc.Register(ctx, "hank", "password123", "")
	require.NoError(t, err)

	require.NoError(t, svc.ResetPassword(ctx, res.User.ID.Hex(), "brand-new"))

	_, err = svc.Login(ctx, "hank", "password123")
	assert.ErrorIs(t, err, common.ErrUnauthorized)
	_, err = svc.Login(ctx, "hank", "brand-new")
	assert.NoError(t, err)

	// no revocation list: the token minted before the change still authenticates
	_, err = svc.Authenticate(ctx, res.Token)
	assert.NoError(t, err)
}

func TestResetPassword_Errors(t *testing.T) {
	svc, _, _ := newAuthService(t)
	ctx := context.Background()

	assert.ErrorIs(t, svc.ResetPassword(ctx, "xyz", "brand-new"), common.ErrValidation)
	assert.ErrorIs(t, svc.ResetPassword(ctx, primitive.NewObjectID().Hex(), ""), common.ErrValidation)
	assert.ErrorIs(t, svc.ResetPassword(ctx, primitive.NewObjectID().Hex(), "brand-new"), common.ErrNotFound)
}

func TestRequestPasswordReset(t *testing.T) {
	svc, users, n := newAuthService(t)
	ctx := context.Background()
	_, err := svc.Register(ctx, "ivy", "password123", "")
	require.NoError(t, err)
	before, _ := users.FindByUsername(ctx, "ivy")

	require.NoError(t, svc.RequestPasswordReset(ctx, "ivy"))
	assert.Equal(t, 1, n.calls)
	assert.Equal(t, "Password Reset Request", n.subject)
	assert.Equal(t, "User 'ivy' has requested a password reset.", n.body)

	after, _ := users.FindByUsername(ctx, "ivy")
	assert.Equal(t, before.Password, after.Password)

	assert.ErrorIs(t, svc.RequestPasswordReset(ctx, "nobody"), common.ErrNotFound)
	assert.ErrorIs(t, svc.RequestPasswordReset(ctx, ""), common.ErrValidation)
	assert.Equal(t, 1, n.calls)

	n.err = errors.New("smtp down")
	assert.ErrorIs(t, svc.RequestPasswordReset(ctx, "ivy"), common.ErrUpstream)
}

// blockingNotifier waits until its context ends.
type blockingNotifier struct{}

func (blockingNotifier) Notify(ctx context.Context, _, _ string) error {
	<-ctx.Done()
	return ctx.Err()
}

func TestRequestPasswordReset_NotifierTimeout(t *testing.T) {
	users := db.NewMemoryUserRepository()
	svc := NewAuthService(users, auth.NewIssuer("test-secret", auth.DefaultTTL), blockingNotifier{}, zaptest.NewLogger(t),
		WithHashCost(bcrypt.MinCost), WithNotifyTimeout(20*time.Millisecond))
	ctx := context.Background()
	_, err := svc.Register(ctx, "ivy", "password123", "")
	require.NoError(t, err)

	start := time.Now()
	err = svc.RequestPasswordReset(ctx, "ivy")
	assert.ErrorIs(t, err, common.ErrUpstream)
	assert.Less(t, time.Since(start), time.Second)
}

func TestPasswordTooLongIsValidation(t *testing.T) {
	svc, _, _ := newAuthService(t)
	ctx := context.Background()
	long := strings.Repeat("p", 73)

	_, err := svc.Register(ctx, "ivy", long, "")
	assert.ErrorIs(t, err, common.ErrValidation)

	_, err = svc.Provision(ctx, "manager1", long, models.RoleManager)
	assert.ErrorIs(t, err, common.ErrValidation)

	res, err := svc.Register(ctx, "ivy", strings.Repeat("p", 72), "")
	require.NoError(t, err)
	err = svc.ResetPassword(ctx, res.User.ID.Hex(), strings.Repeat("q", 80))
	assert.ErrorIs(t, err, common.ErrValidation)
}

func TestProvisionAndEnsureAdmin(t *testing.T) {
	svc, users, _ := newAuthService(t)
	ctx := context.Background()

	require.NoError(t, svc.EnsureAdmin(ctx, "admin", "changeme"))
	require.NoError(t, svc.EnsureAdmin(ctx, "admin", "ignored"))

	admin, err := users.FindByUsername(ctx, "admin")
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, admin.Role)
	assert.True(t, VerifyPassword("changeme", admin.Password))

	mgr, err := svc.Provision(ctx, "manager1", "password123", models.RoleManager)
	require.NoError(t, err)
	assert.Equal(t, models.RoleManager, mgr.Role)

	_, err = svc.Provision(ctx, "manager1", "password123", models.RoleManager)
	assert.ErrorIs(t, err, common.ErrConflict)
	_, err = svc.Provision(ctx, "x", "password123", models.Role("root"))
	assert.ErrorIs(t, err, common.ErrValidation)
}

func TestListUsers(t *testing.T) {
	svc, _, _ := newAuthService(t)
	ctx := context.Background()
	_, _ = svc.Register(ctx, "u1", "password123", "")
	_, _ = svc.Register(ctx, "u2", "password123", "")

	users, err := svc.ListUsers(ctx)
	require.NoError(t, err)
	assert.Len(t, users, 2)
	for _, u := range users {
		assert.Empty(t, u.Password)
	}

	broken := NewAuthService(brokenUsers{}, auth.NewIssuer("s", time.Hour), &fakeNotifier{}, zaptest.NewLogger(t))
	_, err = broken.ListUsers(ctx)
	assert.ErrorIs(t, err, common.ErrInternal)
}
