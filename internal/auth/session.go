package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/locvowork/task_management_sample/internal/domain"
)

// CookieName is the session cookie carrying the signed token.
const CookieName = "token"

// SessionResolver maps an inbound request to the user its session cookie names.
type SessionResolver struct {
	codec *TokenCodec
	users domain.UserRepository
}

func NewSessionResolver(codec *TokenCodec, users domain.UserRepository) *SessionResolver {
	return &SessionResolver{codec: codec, users: users}
}

// ResolveCurrentUser returns the {id, name, email} projection of the session's user,
// or nil when the request is not authenticated: no cookie, an invalid or expired
// token, or a user that no longer exists. The error is reserved for storage failures.
func (r *SessionResolver) ResolveCurrentUser(ctx context.Context, req *http.Request) (*domain.User, error) {
	cookie, err := req.Cookie(CookieName)
	if err != nil || cookie.Value == "" {
		return nil, nil
	}

	userID, ok := r.codec.Verify(cookie.Value)
	if !ok {
		return nil, nil
	}

	user, err := r.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("resolve session user %d: %w", userID, err)
	}

	public := user.Public()
	return &public, nil
}

// NewSessionCookie wraps token in the session cookie.
func NewSessionCookie(token string, secure bool) *http.Cookie {
	return &http.Cookie{
		Name:     CookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(TokenTTL / time.Second),
		Expires:  time.Now().Add(TokenTTL),
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}
}

// ExpiredSessionCookie deletes the session cookie on the client.
func ExpiredSessionCookie(secure bool) *http.Cookie {
	return &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}
}
