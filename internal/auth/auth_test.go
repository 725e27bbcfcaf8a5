package auth

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/locvowork/task_management_sample/internal/domain"
	"github.com/locvowork/task_management_sample/internal/repository/memory"
)

func TestSHA256Hasher(t *testing.T) {
	h := SHA256Hasher{}

	digest, err := h.Digest("secret123")
	require.NoError(t, err)
	assert.Equal(t, "fcf730b6d95236ecd3c9fc2d92d7b6b2bb061514961aec041d6c7a7192f592e4", digest)

	again, _ := h.Digest("secret123")
	assert.Equal(t, digest, again)

	assert.True(t, h.Verify("secret123", digest))
	assert.False(t, h.Verify("secret124", digest))
	assert.False(t, h.Verify("secret123", strings.ToUpper(digest)))
}

func TestBcryptHasher(t *testing.T) {
	h := BcryptHasher{Cost: 4}

	digest, err := h.Digest("secret123")
	require.NoError(t, err)
	assert.True(t, h.Verify("secret123", digest))
	assert.False(t, h.Verify("wrong", digest))
}

func TestNewPasswordHasher(t *testing.T) {
	h, err := NewPasswordHasher("sha256")
	require.NoError(t, err)
	assert.IsType(t, SHA256Hasher{}, h)

	h, err = NewPasswordHasher("bcrypt")
	require.NoError(t, err)
	assert.IsType(t, BcryptHasher{}, h)

	_, err = NewPasswordHasher("md5")
	assert.Error(t, err)
}

func fixedCodec(secret string, now time.Time) *TokenCodec {
	c := NewTokenCodec(secret)
	c.now = func() time.Time { return now }
	return c
}

func TestTokenCodec(t *testing.T) {
	issued := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	t.Run("RoundTrip", func(t *testing.T) {
		c := fixedCodec("k", issued)
		token, err := c.Issue(42)
		require.NoError(t, err)

		id, ok := c.Verify(token)
		assert.True(t, ok)
		assert.Equal(t, int64(42), id)
	})

	t.Run("ExpiresAfterSevenDays", func(t *testing.T) {
		token, err := fixedCodec("k", issued).Issue(42)
		require.NoError(t, err)

		_, ok := fixedCodec("k", issued.Add(TokenTTL-time.Second)).Verify(token)
		assert.True(t, ok)

		_, ok = fixedCodec("k", issued.Add(TokenTTL)).Verify(token)
		assert.False(t, ok)
	})

	t.Run("WrongSecret", func(t *testing.T) {
		token, err := fixedCodec("k", issued).Issue(42)
		require.NoError(t, err)

		_, ok := fixedCodec("other", issued).Verify(token)
		assert.False(t, ok)
	})

	t.Run("Malformed", func(t *testing.T) {
		c := fixedCodec("k", issued)
		for _, token := range []string{"", "abc", "a.b.c"} {
			_, ok := c.Verify(token)
			assert.False(t, ok, token)
		}
	})

	t.Run("RejectsNoneAlgorithm", func(t *testing.T) {
		claims := &Claims{UserID: 42, RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(issued.Add(time.Hour))}}
		token, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)

		_, ok := fixedCodec("k", issued).Verify(token)
		assert.False(t, ok)
	})

	t.Run("RejectsMissingExpiry", func(t *testing.T) {
		token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{UserID: 42}).SignedString([]byte("k"))
		require.NoError(t, err)

		_, ok := fixedCodec("k", issued).Verify(token)
		assert.False(t, ok)
	})
}

type failingUsers struct{ domain.UserRepository }

func (failingUsers) GetByID(context.Context, int64) (*domain.User, error) {
	return nil, errors.New("db down")
}

func TestResolveCurrentUser(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	user := &domain.User{Name: "Ann", Email: "ann@example.com", PasswordHash: "digest"}
	require.NoError(t, store.Users().Create(ctx, user))

	codec := NewTokenCodec("k")
	resolver := NewSessionResolver(codec, store.Users())

	withCookie := func(value string) *http.Request {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.AddCookie(&http.Cookie{Name: CookieName, Value: value})
		return req
	}

	t.Run("NoCookie", func(t *testing.T) {
		got, err := resolver.ResolveCurrentUser(ctx, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("InvalidToken", func(t *testing.T) {
		got, err := resolver.ResolveCurrentUser(ctx, withCookie("garbage"))
		assert.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("ValidTokenProjectsUser", func(t *testing.T) {
		token, err := codec.Issue(user.ID)
		require.NoError(t, err)

		got, err := resolver.ResolveCurrentUser(ctx, withCookie(token))
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, user.ID, got.ID)
		assert.Equal(t, "Ann", got.Name)
		assert.Equal(t, "ann@example.com", got.Email)
		assert.Empty(t, got.PasswordHash)
	})

	t.Run("DeletedUser", func(t *testing.T) {
		token, err := codec.Issue(user.ID + 100)
		require.NoError(t, err)

		got, err := resolver.ResolveCurrentUser(ctx, withCookie(token))
		assert.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("StorageFailure", func(t *testing.T) {
		token, err := codec.Issue(user.ID)
		require.NoError(t, err)

		got, err := NewSessionResolver(codec, failingUsers{}).ResolveCurrentUser(ctx, withCookie(token))
		assert.Error(t, err)
		assert.Nil(t, got)
	})
}

func TestRequireUser(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	user := &domain.User{Name: "Ann", Email: "ann@example.com"}
	require.NoError(t, store.Users().Create(ctx, user))
	codec := NewTokenCodec("k")

	e := echo.New()
	mw := RequireUser(NewSessionResolver(codec, store.Users()))
	handler := mw(func(c echo.Context) error {
		u, ok := CurrentUser(c)
		require.True(t, ok)
		return c.JSON(http.StatusOK, u)
	})

	t.Run("Unauthorized", func(t *testing.T) {
		rec := httptest.NewRecorder()
		c := e.NewContext(httptest.NewRequest(http.MethodGet, "/api/tasks", nil), rec)

		require.NoError(t, handler(c))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Contains(t, rec.Body.String(), "Unauthorized")
	})

	t.Run("Authorized", func(t *testing.T) {
		token, err := codec.Issue(user.ID)
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodGet, "/api/tasks", nil)
		req.AddCookie(NewSessionCookie(token, false))
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)

		require.NoError(t, handler(c))
		assert.Equal(t, http.StatusOK, rec.Code)

		var got domain.User
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
		assert.Equal(t, user.ID, got.ID)
	})
}

func TestSessionCookie(t *testing.T) {
	c := NewSessionCookie("tok", true)
	assert.Equal(t, CookieName, c.Name)
	assert.True(t, c.HttpOnly)
	assert.True(t, c.Secure)
	assert.Equal(t, http.SameSiteLaxMode, c.SameSite)
	assert.Equal(t, 7*24*60*60, c.MaxAge)

	expired := ExpiredSessionCookie(false)
	assert.Equal(t, -1, expired.MaxAge)
	assert.Empty(t, expired.Value)
}
