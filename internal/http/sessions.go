package http

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
	cache "github.com/patrickmn/go-cache"

	"github.com/Cherval/me-my-cal/internal/auth"
	"github.com/Cherval/me-my-cal/internal/localstore"
	"github.com/Cherval/me-my-cal/internal/records"
	"github.com/Cherval/me-my-cal/internal/store"
)

const (
	sessionCookie = "memycal_session"
	demoPrefix    = "demo:"
)

// Session binds a browser cookie to its server-side store.
type Session struct {
	ID    string
	Token string
	Demo  bool
	Store *store.Store
}

// Registry maps session cookies to live stores. Idle sessions expire
// out of the cache, which closes their stores.
type Registry struct {
	sessions *cache.Cache
	ttl      time.Duration

	auth    *auth.Service
	backend records.Store
	feed    store.Subscriber
	local   *localstore.Adapter
}

func NewRegistry(ttl time.Duration, authSvc *auth.Service, backend records.Store, feed store.Subscriber, local *localstore.Adapter) *Registry {
	c := cache.New(ttl, ttl/2)
	c.OnEvicted(func(_ string, v interface{}) {
		if s, ok := v.(*Session); ok {
			s.Store.Close()
		}
	})
	return &Registry{
		sessions: c,
		ttl:      ttl,
		auth:     authSvc,
		backend:  backend,
		feed:     feed,
		local:    local,
	}
}

// Lookup resolves the request's cookie to a live session. A hit renews
// the session's idle timer.
func (r *Registry) Lookup(req *http.Request) (*Session, bool) {
	c, err := req.Cookie(sessionCookie)
	if err != nil || c.Value == "" {
		return nil, false
	}
	v, found := r.sessions.Get(c.Value)
	if !found {
		return nil, false
	}
	s := v.(*Session)
	r.sessions.SetDefault(s.ID, s)
	return s, true
}

// StartDemo creates a demo session. All demo sessions share the same
// local file, so records survive the session itself.
func (r *Registry) StartDemo(ctx context.Context) *Session {
	st := store.NewDemo(r.local)
	st.Initialize(ctx)
	s := &Session{ID: demoPrefix + uuid.NewString(), Demo: true, Store: st}
	r.sessions.SetDefault(s.ID, s)
	return s
}

// StartRemote creates a session for a signed-in user and starts its
// change subscription when a feed is configured.
func (r *Registry) StartRemote(ctx context.Context, token string) *Session {
	st := store.NewRemote(r.backend, r.feed, tokenSource{auth: r.auth, token: token})
	st.Initialize(ctx)
	if r.feed != nil {
		st.Subscribe(ctx)
	}
	s := &Session{ID: uuid.NewString(), Token: token, Store: st}
	r.sessions.SetDefault(s.ID, s)
	return s
}

// End signs the session out and drops it from the registry, closing
// its store through the eviction hook.
func (r *Registry) End(ctx context.Context, s *Session) {
	if !s.Demo && s.Token != "" {
		r.auth.SignOut(ctx, s.Token)
	}
	s.Store.SignOut()
	r.sessions.Delete(s.ID)
}

// Count returns the number of live sessions.
func (r *Registry) Count() int {
	return r.sessions.ItemCount()
}

// tokenSource adapts a bearer token to the store's session interface.
type tokenSource struct {
	auth  *auth.Service
	token string
}

func (t tokenSource) Resume(ctx context.Context) (string, bool) {
	return t.auth.Resume(ctx, t.token)
}

func setSessionCookie(w http.ResponseWriter, s *Session, ttl time.Duration) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    s.ID,
		Path:     "/",
		MaxAge:   int(ttl.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}
