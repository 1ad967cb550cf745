package auth

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"seatly/internal/shared/apperrors"
	"seatly/internal/shared/config"
	"seatly/internal/users"
	"seatly/pkg/logger"
)

type fakeUserRepo struct {
	byID    map[uuid.UUID]*users.User
	byEmail map[string]*users.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{
		byID:    map[uuid.UUID]*users.User{},
		byEmail: map[string]*users.User{},
	}
}

func (f *fakeUserRepo) CreateUser(_ context.Context, user *users.User) error {
	f.byID[user.ID] = user
	f.byEmail[user.Email] = user
	return nil
}

func (f *fakeUserRepo) GetUserByEmail(_ context.Context, email string) (*users.User, error) {
	u, ok := f.byEmail[email]
	if !ok {
		return nil, apperrors.ErrUserNotFound
	}
	return u, nil
}

func (f *fakeUserRepo) GetUserByID(_ context.Context, id uuid.UUID) (*users.User, error) {
	u, ok := f.byID[id]
	if !ok {
		return nil, apperrors.ErrUserNotFound
	}
	return u, nil
}

func (f *fakeUserRepo) EmailExists(_ context.Context, email string) (bool, error) {
	_, ok := f.byEmail[email]
	return ok, nil
}

var testJWT = config.JWTConfig{
	Secret:           "test-secret",
	JWTExpiresIn:     15 * time.Minute,
	RefreshExpiresIn: 24 * time.Hour,
}

func signTestToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(testJWT.Secret))
	require.NoError(t, err)
	return signed
}

func TestRefreshToken_IssuesNewPair(t *testing.T) {
	repo := newFakeUserRepo()
	svc := NewService(repo, testJWT, logger.NewNop())

	registered, err := svc.Register(context.Background(), RegisterRequest{
		FirstName: "Ada",
		LastName:  "Lovelace",
		Email:     "ada@example.com",
		Password:  "correct-horse",
	})
	require.NoError(t, err)

	refreshed, err := svc.RefreshToken(context.Background(), registered.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, registered.User.ID, refreshed.User.ID)
	assert.NotEmpty(t, refreshed.AccessToken)
}

func TestRefreshToken_RejectsAccessToken(t *testing.T) {
	repo := newFakeUserRepo()
	svc := NewService(repo, testJWT, logger.NewNop())

	registered, err := svc.Register(context.Background(), RegisterRequest{
		FirstName: "Ada",
		LastName:  "Lovelace",
		Email:     "ada@example.com",
		Password:  "correct-horse",
	})
	require.NoError(t, err)

	_, err = svc.RefreshToken(context.Background(), registered.AccessToken)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestRefreshToken_MalformedUserIDClaim(t *testing.T) {
	svc := NewService(newFakeUserRepo(), testJWT, logger.NewNop())
	now := time.Now()

	// A validly signed refresh token with no user_id claim must be
	// rejected, not crash the handler.
	missing := signTestToken(t, jwt.MapClaims{
		"type": "refresh",
		"iat":  now.Unix(),
		"exp":  now.Add(time.Hour).Unix(),
	})
	_, err := svc.RefreshToken(context.Background(), missing)
	assert.ErrorIs(t, err, ErrInvalidToken)

	// Same for a non-string user_id.
	numeric := signTestToken(t, jwt.MapClaims{
		"user_id": 42,
		"type":    "refresh",
		"iat":     now.Unix(),
		"exp":     now.Add(time.Hour).Unix(),
	})
	_, err = svc.RefreshToken(context.Background(), numeric)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
