package session

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	apperrors "spendsnap/internal/errors"
	"spendsnap/internal/models"
)

// CookieName is the cookie carrying the session token for page routes.
const CookieName = "session"

// Session is the authenticated identity behind a request.
type Session struct {
	UserID    string
	Email     string
	ExpiresAt time.Time
}

// Provider resolves the session of an incoming request. It returns
// (nil, nil) when the request carries no usable session and an error only
// when session state could not be retrieved.
type Provider interface {
	CurrentSession(ctx context.Context, r *http.Request) (*Session, error)
}

// UserLookup loads a user by id. A missing user is reported with
// apperrors.ErrUserNotFound.
type UserLookup interface {
	LookupUser(ctx context.Context, id string) (*models.User, error)
}

// JWTProvider resolves sessions from signed tokens and checks them against
// the current state of the user record.
type JWTProvider struct {
	tokens *Tokens
	users  UserLookup
}

// NewJWTProvider creates a provider backed by tokens and users.
func NewJWTProvider(tokens *Tokens, users UserLookup) *JWTProvider {
	return &JWTProvider{tokens: tokens, users: users}
}

// CurrentSession implements Provider. Tokens minted before the user's last
// sign-out or password reset are rejected.
func (p *JWTProvider) CurrentSession(ctx context.Context, r *http.Request) (*Session, error) {
	raw := TokenFromRequest(r)
	if raw == "" {
		return nil, nil
	}

	claims, err := p.tokens.Parse(raw)
	if err != nil {
		return nil, nil
	}

	user, err := p.users.LookupUser(ctx, claims.UserID)
	if err != nil {
		var appErr *apperrors.AppError
		if errors.As(err, &appErr) && appErr.Code == apperrors.ErrUserNotFound.Code {
			return nil, nil
		}
		return nil, err
	}
	if !user.IsActive || user.SessionVersion != claims.SessionVersion {
		return nil, nil
	}

	s := &Session{UserID: user.ID, Email: user.Email}
	if claims.ExpiresAt != nil {
		s.ExpiresAt = claims.ExpiresAt.Time
	}
	return s, nil
}

// TokenFromRequest returns the bearer token if one is present, falling back
// to the session cookie.
func TokenFromRequest(r *http.Request) string {
	if header := r.Header.Get("Authorization"); header != "" {
		parts := strings.SplitN(header, " ", 2)
		if len(parts) == 2 && parts[0] == "Bearer" {
			return strings.TrimSpace(parts[1])
		}
		return ""
	}
	if cookie, err := r.Cookie(CookieName); err == nil {
		return cookie.Value
	}
	return ""
}
