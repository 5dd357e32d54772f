// Package session decides who is signed in and which pages they may reach.
//
// A Guard holds the list of protected route prefixes and turns "is there a
// session?" into an allow or redirect decision. A Provider answers that
// question for an incoming request by reading the session token from the
// session cookie or an Authorization bearer header.
package session

import "strings"

// Decision is the outcome of a guard check. Redirect is set only when Allow
// is false.
type Decision struct {
	Allow    bool
	Redirect string
}

// Guard protects route prefixes behind an active session.
type Guard struct {
	protected []string
	loginPath string
}

// NewGuard builds a guard for the given prefixes. Unauthenticated requests to
// a protected path are sent to loginPath.
func NewGuard(protected []string, loginPath string) *Guard {
	prefixes := make([]string, 0, len(protected))
	for _, p := range protected {
		p = strings.TrimRight(strings.TrimSpace(p), "/")
		if p != "" {
			prefixes = append(prefixes, strings.ToLower(p))
		}
	}
	return &Guard{protected: prefixes, loginPath: loginPath}
}

// LoginPath returns where unauthenticated visitors are redirected.
func (g *Guard) LoginPath() string { return g.loginPath }

// IsProtected reports whether path falls under a protected prefix. Matching
// ignores case and respects path segments, so /dashboard covers
// /Dashboard/budget-setting but not /dashboards.
func (g *Guard) IsProtected(path string) bool {
	path = strings.ToLower(path)
	if strings.EqualFold(path, g.loginPath) {
		return false
	}
	for _, prefix := range g.protected {
		if path == prefix || strings.HasPrefix(path, prefix+"/") {
			return true
		}
	}
	return false
}

// Authorize decides whether a request for path may proceed.
func (g *Guard) Authorize(path string, sessionPresent bool) Decision {
	if sessionPresent || !g.IsProtected(path) {
		return Decision{Allow: true}
	}
	return Decision{Redirect: g.loginPath}
}
