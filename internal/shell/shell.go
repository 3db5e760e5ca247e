// Package shell is the navigation frame around the wizard: sidebar state and
// an authentication refresh after each completed navigation. The wizard core
// never depends on it.
package shell

import (
	"context"
	"net/http"
	"sync"
)

//go:generate mockgen -source=shell.go -destination=mocks/mocks.go -package=mocks

// Authenticator is provided by the host application.
type Authenticator interface {
	IsAuthenticated(ctx context.Context) bool
	RefreshAuthenticationStatus(ctx context.Context)
}

type Shell struct {
	auth        Authenticator
	mu          sync.Mutex
	sidebarOpen bool
}

func New(auth Authenticator) *Shell {
	if auth == nil {
		auth = NoopAuthenticator{}
	}
	return &Shell{auth: auth}
}

// ToggleSidebar flips the sidebar and returns the new state.
func (s *Shell) ToggleSidebar() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sidebarOpen = !s.sidebarOpen
	return s.sidebarOpen
}

func (s *Shell) SidebarOpen() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sidebarOpen
}

func (s *Shell) IsAuthenticated(ctx context.Context) bool {
	return s.auth.IsAuthenticated(ctx)
}

// OnNavigationEnd triggers exactly one authentication refresh.
func (s *Shell) OnNavigationEnd(ctx context.Context) {
	s.auth.RefreshAuthenticationStatus(ctx)
}

// Middleware treats every completed request as a completed navigation.
func (s *Shell) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		next.ServeHTTP(w, r)
		s.OnNavigationEnd(r.Context())
	})
}

// NoopAuthenticator reports every caller as authenticated and never refreshes.
type NoopAuthenticator struct{}

func (NoopAuthenticator) IsAuthenticated(context.Context) bool        { return true }
func (NoopAuthenticator) RefreshAuthenticationStatus(context.Context) {}
