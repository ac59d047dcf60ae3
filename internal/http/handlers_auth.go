package http

import (
	"errors"
	"net/http"
	"strings"

	"github.com/Cherval/me-my-cal/internal/auth"
)

type loginData struct {
	Error string
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.registry.Lookup(r)
	if !ok {
		s.render(w, r, "login.html", loginData{})
		return
	}
	s.renderDashboard(w, r, sess)
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		s.render(w, r, "login.html", loginData{Error: "คำขอไม่ถูกต้อง"})
		return
	}

	email := strings.TrimSpace(r.Form.Get("email"))
	password := r.Form.Get("password")

	token, userID, err := s.auth.SignInWithPassword(r.Context(), email, password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			w.WriteHeader(http.StatusUnauthorized)
			s.render(w, r, "login.html", loginData{Error: "อีเมลหรือรหัสผ่านไม่ถูกต้อง"})
			return
		}
		s.logger.ErrorContext(r.Context(), "Sign-in failed", "error", err)
		w.WriteHeader(http.StatusInternalServerError)
		s.render(w, r, "login.html", loginData{Error: "เข้าสู่ระบบไม่สำเร็จ กรุณาลองใหม่"})
		return
	}

	sess := s.registry.StartRemote(r.Context(), token)
	setSessionCookie(w, sess, s.registry.ttl)
	s.logger.InfoContext(r.Context(), "User signed in", "user_id", userID)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// handleDemo starts a local-only session. No credentials are involved
// and nothing it writes ever reaches the remote backend.
func (s *Server) handleDemo(w http.ResponseWriter, r *http.Request) {
	sess := s.registry.StartDemo(r.Context())
	setSessionCookie(w, sess, s.registry.ttl)
	s.logger.InfoContext(r.Context(), "Demo session started", "session_id", sess.ID)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if sess, ok := s.registry.Lookup(r); ok {
		s.registry.End(r.Context(), sess)
	}
	clearSessionCookie(w)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// session resolves the request's session for partial handlers. Without
// one the client is sent back to the login page.
func (s *Server) session(w http.ResponseWriter, r *http.Request) (*Session, bool) {
	sess, ok := s.registry.Lookup(r)
	if !ok {
		w.Header().Set("HX-Redirect", "/")
		http.Error(w, "session expired", http.StatusUnauthorized)
		return nil, false
	}
	return sess, true
}
