// AngelaMos | 2026
// service_test.go

package auth

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelamos/climate-api/internal/audit"
	"github.com/angelamos/climate-api/internal/core"
	"github.com/angelamos/climate-api/internal/user"
)

const (
	testOrigin   = "203.0.113.7"
	testPassword = "correct horse battery staple"
	testTOTPSeed = "JBSWY3DPEHPK3PXP"
)

// fakeUserStore is mutex-guarded so tests can drive the service from
// multiple goroutines, mirroring the unique-index guarantee of the real
// store: the first insert of an email wins, the rest see a duplicate.
type fakeUserStore struct {
	mu    sync.Mutex
	users map[string]*user.User
}

func newFakeUserStore(users ...*user.User) *fakeUserStore {
	s := &fakeUserStore{users: make(map[string]*user.User)}
	for _, u := range users {
		s.users[u.ID] = u
	}
	return s
}

func (s *fakeUserStore) GetByEmail(
	_ context.Context,
	email string,
) (*user.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if u.Email == email {
			copied := *u
			return &copied, nil
		}
	}
	return nil, core.ErrNotFound
}

func (s *fakeUserStore) GetByID(
	_ context.Context,
	id string,
) (*user.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return nil, core.ErrNotFound
	}
	copied := *u
	return &copied, nil
}

func (s *fakeUserStore) Create(_ context.Context, u *user.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.users {
		if existing.Email == u.Email {
			return core.ErrDuplicateKey
		}
	}
	if u.ID == "" {
		u.ID = "generated-" + u.Email
	}
	copied := *u
	s.users[u.ID] = &copied
	return nil
}

func (s *fakeUserStore) RecordLogin(
	_ context.Context,
	id string,
) (*user.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return nil, core.ErrNotFound
	}
	now := time.Now()
	u.LastLoggedInAt = u.CurrentLoggedInAt
	u.CurrentLoggedInAt = &now
	copied := *u
	return &copied, nil
}

func (s *fakeUserStore) UpdatePassword(
	_ context.Context,
	id, passwordHash string,
) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return core.ErrNotFound
	}
	u.PasswordHash = passwordHash
	return nil
}

func (s *fakeUserStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[id]; !ok {
		return core.ErrNotFound
	}
	delete(s.users, id)
	return nil
}

type fakeSessionRevoker struct {
	revoked map[string]time.Time
}

func newFakeSessionRevoker() *fakeSessionRevoker {
	return &fakeSessionRevoker{revoked: make(map[string]time.Time)}
}

func (r *fakeSessionRevoker) Revoke(
	_ context.Context,
	jti string,
	expiresAt time.Time,
) error {
	r.revoked[jti] = expiresAt
	return nil
}

func (r *fakeSessionRevoker) IsRevoked(
	_ context.Context,
	jti string,
) (bool, error) {
	_, ok := r.revoked[jti]
	return ok, nil
}

type fakeRecorder struct {
	events []audit.Event
}

func (r *fakeRecorder) Record(_ context.Context, event audit.Event) {
	r.events = append(r.events, event)
}

func (r *fakeRecorder) kinds() []string {
	kinds := make([]string, 0, len(r.events))
	for _, e := range r.events {
		kinds = append(kinds, e.Kind)
	}
	return kinds
}

type serviceFixture struct {
	service  *Service
	store    *fakeUserStore
	sessions *fakeSessionRevoker
	recorder *fakeRecorder
}

func newServiceFixture(t *testing.T, users ...*user.User) *serviceFixture {
	t.Helper()

	store := newFakeUserStore(users...)
	sessions := newFakeSessionRevoker()
	recorder := &fakeRecorder{}

	service := NewService(
		store,
		newTestTokenManager(t),
		sessions,
		recorder,
		"climate-api-test",
	)

	return &serviceFixture{
		service:  service,
		store:    store,
		sessions: sessions,
		recorder: recorder,
	}
}

func testUser(t *testing.T) *user.User {
	t.Helper()

	passwordHash, err := core.HashPassword(testPassword)
	require.NoError(t, err)

	encryptionKey, err := core.DeriveEncryptionKey(testPassword)
	require.NoError(t, err)

	return &user.User{
		ID:            "user-1",
		Email:         "bob@example.com",
		PasswordHash:  passwordHash,
		TOTPSeed:      testTOTPSeed,
		EncryptionKey: encryptionKey,
		FirstName:     "Bob",
		LastName:      "Smith",
		Role:          user.RoleUser,
	}
}

func validTOTPCode(t *testing.T, seed string) string {
	t.Helper()

	code, err := totp.GenerateCodeCustom(seed, time.Now(), totp.ValidateOpts{
		Period:    30,
		Skew:      1,
		Digits:    otp.DigitsSix,
		Algorithm: otp.AlgorithmSHA1,
	})
	require.NoError(t, err)
	return code
}

func TestLogin_Success(t *testing.T) {
	t.Parallel()

	fx := newServiceFixture(t, testUser(t))

	resp, err := fx.service.Login(context.Background(), LoginRequest{
		Email:    "bob@example.com",
		Password: testPassword,
		TOTPCode: validTOTPCode(t, testTOTPSeed),
	}, testOrigin)
	require.NoError(t, err)

	assert.Equal(t, "bob@example.com", resp.User.Email)
	assert.NotEmpty(t, resp.Token.AccessToken)
	assert.Equal(t, "Bearer", resp.Token.TokenType)

	assert.NotNil(t, fx.store.users["user-1"].CurrentLoggedInAt,
		"a completed login records its timestamp")
	assert.Equal(t, []string{audit.KindLogin}, fx.recorder.kinds())
}

func TestLogin_UnknownEmail(t *testing.T) {
	t.Parallel()

	fx := newServiceFixture(t)

	_, err := fx.service.Login(context.Background(), LoginRequest{
		Email:    "nobody@example.com",
		Password: testPassword,
		TOTPCode: "123456",
	}, testOrigin)

	assert.ErrorIs(t, err, ErrInvalidCredentials)
	assert.Equal(t, []string{audit.KindLoginFailed}, fx.recorder.kinds())
}

func TestLogin_WrongPassword(t *testing.T) {
	t.Parallel()

	fx := newServiceFixture(t, testUser(t))

	_, err := fx.service.Login(context.Background(), LoginRequest{
		Email:    "bob@example.com",
		Password: "not the password",
		TOTPCode: validTOTPCode(t, testTOTPSeed),
	}, testOrigin)

	assert.ErrorIs(t, err, ErrInvalidCredentials)
	assert.Nil(t, fx.store.users["user-1"].CurrentLoggedInAt)
	assert.Equal(t, []string{audit.KindLoginFailed}, fx.recorder.kinds())
}

func TestLogin_WrongTOTP(t *testing.T) {
	t.Parallel()

	fx := newServiceFixture(t, testUser(t))

	_, err := fx.service.Login(context.Background(), LoginRequest{
		Email:    "bob@example.com",
		Password: testPassword,
		TOTPCode: "000000",
	}, testOrigin)

	assert.ErrorIs(t, err, ErrInvalidTOTP,
		"a correct password with a bad code is distinct from bad credentials")
	assert.Nil(t, fx.store.users["user-1"].CurrentLoggedInAt,
		"a half-completed login must not touch the login timestamps")
	assert.Equal(t, []string{audit.KindTOTPFailed}, fx.recorder.kinds())
}

func TestRegister(t *testing.T) {
	t.Parallel()

	fx := newServiceFixture(t)

	resp, err := fx.service.Register(context.Background(), RegisterRequest{
		Email:     "carol@example.com",
		FirstName: "Carol",
		LastName:  "Danvers",
		Password:  testPassword,
	}, testOrigin)
	require.NoError(t, err)

	assert.NotEmpty(t, resp.TOTPSeed,
		"a seed is generated when the registrant supplies none")
	require.NoError(t, core.ValidateTOTPSeed(resp.TOTPSeed))

	created, err := fx.store.GetByEmail(context.Background(), "carol@example.com")
	require.NoError(t, err)

	assert.Equal(t, user.RoleUser, created.Role)
	assert.NotEqual(t, testPassword, created.PasswordHash)

	valid, err := core.VerifyPassword(testPassword, created.PasswordHash)
	require.NoError(t, err)
	assert.True(t, valid)

	_, _, err = core.DecodeEncryptionKey(created.EncryptionKey)
	require.NoError(t, err)

	assert.Equal(t, []string{audit.KindRegistration}, fx.recorder.kinds())
}

func TestRegister_SuppliedSeed(t *testing.T) {
	t.Parallel()

	fx := newServiceFixture(t)

	resp, err := fx.service.Register(context.Background(), RegisterRequest{
		Email:     "carol@example.com",
		FirstName: "Carol",
		LastName:  "Danvers",
		Password:  testPassword,
		TOTPSeed:  testTOTPSeed,
	}, testOrigin)
	require.NoError(t, err)

	assert.Equal(t, testTOTPSeed, resp.TOTPSeed)
}

func TestRegister_MalformedSeed(t *testing.T) {
	t.Parallel()

	fx := newServiceFixture(t)

	_, err := fx.service.Register(context.Background(), RegisterRequest{
		Email:     "carol@example.com",
		FirstName: "Carol",
		LastName:  "Danvers",
		Password:  testPassword,
		TOTPSeed:  "not!base32",
	}, testOrigin)

	assert.ErrorIs(t, err, core.ErrInvalidInput)
}

func TestRegister_DuplicateEmail(t *testing.T) {
	t.Parallel()

	fx := newServiceFixture(t, testUser(t))

	_, err := fx.service.Register(context.Background(), RegisterRequest{
		Email:     "bob@example.com",
		FirstName: "Other",
		LastName:  "Bob",
		Password:  testPassword,
	}, testOrigin)

	assert.ErrorIs(t, err, ErrEmailExists)
	assert.Empty(t, fx.recorder.events)
}

func TestRegister_ConcurrentSameEmail(t *testing.T) {
	t.Parallel()

	fx := newServiceFixture(t)

	const racers = 8
	errs := make([]error, racers)

	var wg sync.WaitGroup
	for i := range racers {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = fx.service.Register(context.Background(), RegisterRequest{
				Email:     "carol@example.com",
				FirstName: "Carol",
				LastName:  "Danvers",
				Password:  testPassword,
			}, testOrigin)
		}(i)
	}
	wg.Wait()

	created := 0
	for _, err := range errs {
		if err == nil {
			created++
		} else {
			assert.ErrorIs(t, err, ErrEmailExists)
		}
	}
	assert.Equal(t, 1, created, "exactly one registration may win")

	fx.store.mu.Lock()
	defer fx.store.mu.Unlock()
	assert.Len(t, fx.store.users, 1, "the losers must not leave rows behind")
}

func TestChangePassword(t *testing.T) {
	t.Parallel()

	fx := newServiceFixture(t, testUser(t))
	originalKey := fx.store.users["user-1"].EncryptionKey

	err := fx.service.ChangePassword(
		context.Background(),
		"user-1",
		testPassword,
		"a brand new password",
		testOrigin,
	)
	require.NoError(t, err)

	updated := fx.store.users["user-1"]

	valid, err := core.VerifyPassword("a brand new password", updated.PasswordHash)
	require.NoError(t, err)
	assert.True(t, valid)

	assert.Equal(t, originalKey, updated.EncryptionKey,
		"the stored encryption key stays bound to the registration password")
	assert.Equal(t, []string{audit.KindPasswordChange}, fx.recorder.kinds())
}

func TestChangePassword_WrongCurrent(t *testing.T) {
	t.Parallel()

	fx := newServiceFixture(t, testUser(t))

	err := fx.service.ChangePassword(
		context.Background(),
		"user-1",
		"not the password",
		"a brand new password",
		testOrigin,
	)

	assert.ErrorIs(t, err, ErrInvalidCredentials)
	assert.Empty(t, fx.recorder.events)
}

func TestDeleteAccount(t *testing.T) {
	t.Parallel()

	fx := newServiceFixture(t, testUser(t))

	err := fx.service.DeleteAccount(context.Background(), "user-1", testOrigin)
	require.NoError(t, err)

	_, err = fx.store.GetByID(context.Background(), "user-1")
	assert.ErrorIs(t, err, core.ErrNotFound)
	assert.Equal(t, []string{audit.KindAccountDeleted}, fx.recorder.kinds())
}

func TestDeleteAccount_AdminProtected(t *testing.T) {
	t.Parallel()

	admin := testUser(t)
	admin.Role = user.RoleAdmin
	fx := newServiceFixture(t, admin)

	err := fx.service.DeleteAccount(context.Background(), "user-1", testOrigin)

	assert.ErrorIs(t, err, core.ErrAdminProtected)

	_, err = fx.store.GetByID(context.Background(), "user-1")
	assert.NoError(t, err, "the protected account must remain")
	assert.Empty(t, fx.recorder.events)
}

func TestLogout(t *testing.T) {
	t.Parallel()

	fx := newServiceFixture(t, testUser(t))

	resp, err := fx.service.Login(context.Background(), LoginRequest{
		Email:    "bob@example.com",
		Password: testPassword,
		TOTPCode: validTOTPCode(t, testTOTPSeed),
	}, testOrigin)
	require.NoError(t, err)

	claims, err := fx.service.tokens.VerifyAccessToken(
		context.Background(),
		resp.Token.AccessToken,
	)
	require.NoError(t, err)

	require.NoError(t, fx.service.Logout(context.Background(), claims, testOrigin))

	revoked, err := fx.sessions.IsRevoked(context.Background(), claims.JTI)
	require.NoError(t, err)
	assert.True(t, revoked)
	assert.Equal(t,
		[]string{audit.KindLogin, audit.KindLogout},
		fx.recorder.kinds(),
	)
}

func TestPasswordReset_Flow(t *testing.T) {
	t.Parallel()

	fx := newServiceFixture(t, testUser(t))

	token, err := fx.service.RequestPasswordReset(
		context.Background(),
		"bob@example.com",
		testOrigin,
	)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	err = fx.service.ConsumePasswordReset(
		context.Background(),
		token,
		"a brand new password",
		testOrigin,
	)
	require.NoError(t, err)

	valid, err := core.VerifyPassword(
		"a brand new password",
		fx.store.users["user-1"].PasswordHash,
	)
	require.NoError(t, err)
	assert.True(t, valid)

	assert.Equal(t,
		[]string{audit.KindPasswordResetRequest, audit.KindPasswordReset},
		fx.recorder.kinds(),
	)
}

func TestPasswordReset_UnknownEmail(t *testing.T) {
	t.Parallel()

	fx := newServiceFixture(t)

	token, err := fx.service.RequestPasswordReset(
		context.Background(),
		"nobody@example.com",
		testOrigin,
	)

	require.NoError(t, err, "an unknown email must not be distinguishable")
	assert.Empty(t, token)
	assert.Empty(t, fx.recorder.events)
}

func TestPasswordReset_DeletedAccount(t *testing.T) {
	t.Parallel()

	fx := newServiceFixture(t, testUser(t))

	token, err := fx.service.RequestPasswordReset(
		context.Background(),
		"bob@example.com",
		testOrigin,
	)
	require.NoError(t, err)

	require.NoError(t, fx.store.Delete(context.Background(), "user-1"))

	err = fx.service.ConsumePasswordReset(
		context.Background(),
		token,
		"a brand new password",
		testOrigin,
	)
	assert.ErrorIs(t, err, core.ErrTokenInvalid)
}

func TestPasswordReset_GarbageToken(t *testing.T) {
	t.Parallel()

	fx := newServiceFixture(t)

	err := fx.service.ConsumePasswordReset(
		context.Background(),
		"not.a.token",
		"a brand new password",
		testOrigin,
	)
	assert.ErrorIs(t, err, core.ErrTokenInvalid)
}
