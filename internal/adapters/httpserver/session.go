package httpserver

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/phenrril/drukuje3d/internal/domain"
)

const (
	sessionCookie = "sess"
	sessionTTL    = 7 * 24 * time.Hour
	tokenIssuer   = "drukuje3d"
)

type sessionClaims struct {
	Email string      `json:"email"`
	Name  string      `json:"name,omitempty"`
	Role  domain.Role `json:"role"`
	jwt.RegisteredClaims
}

type session struct {
	UserID uuid.UUID
	Email  string
	Name   string
	Role   domain.Role
}

func (s *session) admin() bool { return s.Role == domain.RoleAdmin }

func (s *Server) issueSession(u *domain.User) (string, time.Time, error) {
	now := s.Now()
	exp := now.Add(sessionTTL)
	claims := sessionClaims{
		Email: u.Email,
		Name:  u.Name,
		Role:  u.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   u.ID.String(),
			Issuer:    tokenIssuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.SessionKey)
	return tok, exp, err
}

func (s *Server) verifySession(tok string) (*session, error) {
	var c sessionClaims
	_, err := jwt.ParseWithClaims(tok, &c, func(*jwt.Token) (any, error) { return s.SessionKey, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(tokenIssuer),
		jwt.WithTimeFunc(s.Now),
	)
	if err != nil {
		return nil, err
	}
	id, err := uuid.Parse(c.Subject)
	if err != nil || c.Email == "" {
		return nil, errors.New("session claims")
	}
	return &session{UserID: id, Email: c.Email, Name: c.Name, Role: c.Role}, nil
}

func (s *Server) writeSession(w http.ResponseWriter, u *domain.User) (string, error) {
	tok, exp, err := s.issueSession(u)
	if err != nil {
		return "", err
	}
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    tok,
		Path:     "/",
		Expires:  exp,
		MaxAge:   int(sessionTTL.Seconds()),
		HttpOnly: true,
		Secure:   s.SecureCookies,
		SameSite: http.SameSiteLaxMode,
	})
	return tok, nil
}

func (s *Server) clearSession(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{Name: sessionCookie, Value: "", Path: "/", MaxAge: -1, HttpOnly: true, Secure: s.SecureCookies, SameSite: http.SameSiteLaxMode})
}

// currentUser accepts a Bearer token before the session cookie.
func (s *Server) currentUser(r *http.Request) *session {
	auth := r.Header.Get("Authorization")
	if strings.HasPrefix(strings.ToLower(auth), "bearer ") {
		if sess, err := s.verifySession(strings.TrimSpace(auth[7:])); err == nil {
			return sess
		}
	}
	c, err := r.Cookie(sessionCookie)
	if err != nil || c.Value == "" {
		return nil
	}
	sess, err := s.verifySession(c.Value)
	if err != nil {
		return nil
	}
	return sess
}

func (s *Server) requireUser(w http.ResponseWriter, r *http.Request) (*session, bool) {
	sess := s.currentUser(r)
	if sess == nil {
		writeError(w, r, domain.ErrUnauthorized)
		return nil, false
	}
	return sess, true
}

func (s *Server) requireAdmin(w http.ResponseWriter, r *http.Request) (*session, bool) {
	sess, ok := s.requireUser(w, r)
	if !ok {
		return nil, false
	}
	if !sess.admin() {
		writeError(w, r, domain.ErrForbidden)
		return nil, false
	}
	return sess, true
}
