package middleware

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"spendsnap/internal/logger"
	"spendsnap/internal/session"
)

// SessionGuardOptions tune how the guard treats a failed session check.
type SessionGuardOptions struct {
	// Timeout bounds the session lookup. Zero means 3 seconds.
	Timeout time.Duration
	// FailOpen lets requests through, without a user, when the lookup
	// errors or times out. Off by default.
	FailOpen bool
}

type sessionResult struct {
	sess *session.Session
	err  error
}

// SessionGuard redirects unauthenticated requests for protected pages to the
// login page. Public paths pass through without a session lookup.
func SessionGuard(guard *session.Guard, provider session.Provider, opts SessionGuardOptions) gin.HandlerFunc {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	log := logger.Named("session_guard")

	return func(c *gin.Context) {
		path := c.Request.URL.Path
		if !guard.IsProtected(path) {
			c.Next()
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), timeout)
		defer cancel()

		sess, err := lookupSession(ctx, provider, c.Request)
		if err != nil {
			log.Warnw("session check failed",
				"error", err,
				"path", path,
				"fail_open", opts.FailOpen,
			)
			if opts.FailOpen {
				c.Next()
				return
			}
			sess = nil
		}

		decision := guard.Authorize(path, sess != nil)
		if !decision.Allow {
			c.Redirect(http.StatusFound, decision.Redirect)
			c.Abort()
			return
		}

		c.Set(UserIDKey, sess.UserID)
		c.Set(EmailKey, sess.Email)
		c.Next()
	}
}

// lookupSession runs the provider but stops waiting once ctx is done, even
// if the provider ignores cancellation.
func lookupSession(ctx context.Context, provider session.Provider, r *http.Request) (*session.Session, error) {
	done := make(chan sessionResult, 1)
	go func() {
		sess, err := provider.CurrentSession(ctx, r)
		done <- sessionResult{sess: sess, err: err}
	}()

	select {
	case res := <-done:
		return res.sess, res.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
