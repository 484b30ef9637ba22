package authn

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/miguelmarques1/church-web/pkg/server/store"
)

// MockUsersStore implements store.UsersStore for testing using testify/mock
type MockUsersStore struct {
	mock.Mock
}

func (m *MockUsersStore) FindUserByPhone(ctx context.Context, phone string) (*store.User, error) {
	args := m.Called(phone)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*store.User), args.Error(1)
}

func (m *MockUsersStore) GetUser(ctx context.Context, id int64) (*store.User, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*store.User), args.Error(1)
}

func (m *MockUsersStore) CreateUser(ctx context.Context, user *store.User) error {
	args := m.Called(user)
	return args.Error(0)
}

var testKey = []byte(strings.Repeat("k", 32))

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func testUser(t *testing.T, password string) *store.User {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return &store.User{
		ID:           42,
		Name:         "Maria",
		Phone:        "5511988887777",
		PasswordHash: hash,
		Role:         "Leader",
	}
}

func TestLogin_Success(t *testing.T) {
	users := &MockUsersStore{}
	user := testUser(t, "s3cret")
	users.On("FindUserByPhone", "5511988887777").Return(user, nil)

	now := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	auth := New(users, testKey, WithClock(fixedClock(now)), WithTTL(time.Hour), WithIssuer("igreja"))

	session, err := auth.Login(context.Background(), "5511988887777", "s3cret")
	require.NoError(t, err)
	assert.Equal(t, now.Add(time.Hour), session.ExpiresAt)
	assert.Same(t, user, session.User)

	id, err := auth.Verify(session.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "42", id.UserID)
	assert.Equal(t, "Maria", id.Name)
	assert.Equal(t, "Leader", id.Role, "role credentials are carried verbatim")
	assert.NotEmpty(t, id.SessionID)
	assert.Equal(t, now, id.IssuedAt)
	assert.Equal(t, now.Add(time.Hour), id.ExpiresAt)
	users.AssertExpectations(t)
}

func TestVerify_TimesAreUTC(t *testing.T) {
	local := time.Local
	time.Local = time.FixedZone("BRT", -3*60*60)
	t.Cleanup(func() { time.Local = local })

	users := &MockUsersStore{}
	users.On("FindUserByPhone", "5511988887777").Return(testUser(t, "s3cret"), nil)
	now := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	auth := New(users, testKey, WithClock(fixedClock(now)), WithTTL(time.Hour))

	session, err := auth.Login(context.Background(), "5511988887777", "s3cret")
	require.NoError(t, err)

	id, err := auth.Verify(session.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, time.UTC, id.IssuedAt.Location())
	assert.Equal(t, time.UTC, id.ExpiresAt.Location())
	assert.Equal(t, now.Add(time.Hour), id.ExpiresAt)
}

func TestLogin_SessionIDsAreUnique(t *testing.T) {
	users := &MockUsersStore{}
	users.On("FindUserByPhone", "5511988887777").Return(testUser(t, "s3cret"), nil)
	auth := New(users, testKey)

	first, err := auth.Login(context.Background(), "5511988887777", "s3cret")
	require.NoError(t, err)
	second, err := auth.Login(context.Background(), "5511988887777", "s3cret")
	require.NoError(t, err)

	a, err := auth.Verify(first.AccessToken)
	require.NoError(t, err)
	b, err := auth.Verify(second.AccessToken)
	require.NoError(t, err)
	assert.NotEqual(t, a.SessionID, b.SessionID)
}

func TestLogin_Failures(t *testing.T) {
	tests := []struct {
		name     string
		phone    string
		password string
		setup    func(*MockUsersStore)
		wantErr  error
	}{
		{
			name:     "wrong password",
			phone:    "5511988887777",
			password: "guess",
			setup: func(m *MockUsersStore) {
				m.On("FindUserByPhone", "5511988887777").Return(testUser(t, "s3cret"), nil)
			},
			wantErr: ErrInvalidCredentials,
		},
		{
			name:     "unknown phone",
			phone:    "000",
			password: "guess",
			setup: func(m *MockUsersStore) {
				m.On("FindUserByPhone", "000").Return(nil, store.ErrUserNotFound)
			},
			wantErr: ErrInvalidCredentials,
		},
		{
			name:     "empty password",
			phone:    "5511988887777",
			password: "",
			setup:    func(m *MockUsersStore) {},
			wantErr:  ErrInvalidCredentials,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			users := &MockUsersStore{}
			tt.setup(users)
			auth := New(users, testKey)

			_, err := auth.Login(context.Background(), tt.phone, tt.password)
			assert.ErrorIs(t, err, tt.wantErr)
			users.AssertExpectations(t)
		})
	}
}

func TestLogin_StoreError(t *testing.T) {
	users := &MockUsersStore{}
	users.On("FindUserByPhone", "5511988887777").Return(nil, errors.New("connection refused"))
	auth := New(users, testKey)

	_, err := auth.Login(context.Background(), "5511988887777", "s3cret")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrInvalidCredentials)
	assert.Contains(t, err.Error(), "connection refused")
}

func TestVerify_Expired(t *testing.T) {
	issued := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	auth := New(&MockUsersStore{}, testKey, WithClock(fixedClock(issued)), WithTTL(time.Hour))
	session, err := auth.Issue(testUser(t, "x"))
	require.NoError(t, err)

	later := New(&MockUsersStore{}, testKey, WithClock(fixedClock(issued.Add(2*time.Hour))))
	_, err = later.Verify(session.AccessToken)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestVerify_Invalid(t *testing.T) {
	auth := New(&MockUsersStore{}, testKey)
	session, err := auth.Issue(testUser(t, "x"))
	require.NoError(t, err)

	otherKey := New(&MockUsersStore{}, []byte(strings.Repeat("o", 32)))
	otherIssuer := New(&MockUsersStore{}, testKey, WithIssuer("someone-else"))

	noneToken, err := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{Role: "admin"}).
		SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	tests := []struct {
		name  string
		auth  *Authenticator
		token string
	}{
		{"malformed", auth, "not-a-token"},
		{"wrong key", otherKey, session.AccessToken},
		{"wrong issuer", otherIssuer, session.AccessToken},
		{"unsigned", auth, noneToken},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.auth.Verify(tt.token)
			assert.ErrorIs(t, err, ErrInvalidToken)
		})
	}
}

func TestVerify_MissingExpiry(t *testing.T) {
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		Role:             "admin",
		RegisteredClaims: jwt.RegisteredClaims{Subject: "1", Issuer: DefaultIssuer},
	}).SignedString(testKey)
	require.NoError(t, err)

	_, err = New(&MockUsersStore{}, testKey).Verify(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestHashPassword(t *testing.T) {
	hash, err := HashPassword("s3cret")
	require.NoError(t, err)
	assert.NoError(t, bcrypt.CompareHashAndPassword(hash, []byte("s3cret")))

	_, err = HashPassword("")
	assert.Error(t, err)
}
