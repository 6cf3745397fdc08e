package httpserver

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/oauth2"

	"github.com/phenrril/drukuje3d/internal/domain"
	"github.com/phenrril/drukuje3d/internal/usecase"
)

const googleUserInfoURL = "https://www.googleapis.com/oauth2/v3/userinfo"

func (s *Server) apiRegister(w http.ResponseWriter, r *http.Request) {
	var in usecase.RegisterInput
	if !decodeJSON(w, r, &in) {
		return
	}
	u, err := s.Auth.Register(r.Context(), in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"email": u.Email, "verificationRequired": true})
}

func (s *Server) apiVerify(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Email string `json:"email"`
		Code  string `json:"code"`
	}
	if !decodeJSON(w, r, &in) {
		return
	}
	u, err := s.Auth.Verify(r.Context(), in.Email, in.Code)
	if err != nil {
		writeError(w, r, err)
		return
	}
	s.signedIn(w, r, u, http.StatusOK)
}

func (s *Server) apiSignIn(w http.ResponseWriter, r *http.Request) {
	var in usecase.LoginInput
	if !decodeJSON(w, r, &in) {
		return
	}
	u, err := s.Auth.Login(r.Context(), in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	s.signedIn(w, r, u, http.StatusOK)
}

func (s *Server) signedIn(w http.ResponseWriter, r *http.Request, u *domain.User, code int) {
	tok, err := s.writeSession(w, u)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, code, map[string]any{"token": tok, "user": u})
}

func (s *Server) apiSignOut(w http.ResponseWriter, r *http.Request) {
	s.clearSession(w)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) apiForgotPassword(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Email string `json:"email"`
	}
	if !decodeJSON(w, r, &in) {
		return
	}
	if err := s.Auth.RequestPasswordReset(r.Context(), in.Email); err != nil {
		writeError(w, r, err)
		return
	}
	// Same answer whether or not the address exists.
	writeJSON(w, http.StatusAccepted, map[string]string{"status": "sent"})
}

func (s *Server) apiResetPassword(w http.ResponseWriter, r *http.Request) {
	var in usecase.ResetPasswordInput
	if !decodeJSON(w, r, &in) {
		return
	}
	if err := s.Auth.ResetPassword(r.Context(), in); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) apiMe(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.requireUser(w, r)
	if !ok {
		return
	}
	u, err := s.Auth.Me(r.Context(), sess.UserID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, u)
}

func (s *Server) apiChangePassword(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.requireUser(w, r)
	if !ok {
		return
	}
	var in struct {
		CurrentPassword string `json:"currentPassword"`
		NewPassword     string `json:"newPassword"`
	}
	if !decodeJSON(w, r, &in) {
		return
	}
	if err := s.Auth.ChangePassword(r.Context(), sess.UserID, in.CurrentPassword, in.NewPassword); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// apiChangeEmail reissues the session because the token carries the address.
func (s *Server) apiChangeEmail(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.requireUser(w, r)
	if !ok {
		return
	}
	var in struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if !decodeJSON(w, r, &in) {
		return
	}
	u, err := s.Auth.ChangeEmail(r.Context(), sess.UserID, in.Email, in.Password)
	if err != nil {
		writeError(w, r, err)
		return
	}
	s.signedIn(w, r, u, http.StatusOK)
}

func (s *Server) apiMyOrders(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.requireUser(w, r)
	if !ok {
		return
	}
	list, err := s.Orders.ListForUser(r.Context(), sess.UserID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if list == nil {
		list = []domain.Order{}
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *Server) handleGoogleLogin(w http.ResponseWriter, r *http.Request) {
	if s.OAuth == nil {
		writeJSON(w, http.StatusNotFound, errorBody{Error: "google sign-in not configured"})
		return
	}
	state := uuid.New().String()
	http.SetCookie(w, &http.Cookie{Name: "oauth_state", Value: state, Path: "/", MaxAge: 300, HttpOnly: true, Secure: s.SecureCookies, SameSite: http.SameSiteLaxMode})
	http.Redirect(w, r, s.OAuth.AuthCodeURL(state, oauth2.AccessTypeOnline), http.StatusFound)
}

func (s *Server) handleGoogleCallback(w http.ResponseWriter, r *http.Request) {
	if s.OAuth == nil {
		writeJSON(w, http.StatusNotFound, errorBody{Error: "google sign-in not configured"})
		return
	}
	q := r.URL.Query()
	c, _ := r.Cookie("oauth_state")
	if c == nil || c.Value == "" || c.Value != q.Get("state") {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid oauth state"})
		return
	}
	http.SetCookie(w, &http.Cookie{Name: "oauth_state", Value: "", Path: "/", MaxAge: -1})

	logger := zerolog.Ctx(r.Context())
	tok, err := s.OAuth.Exchange(r.Context(), q.Get("code"))
	if err != nil {
		logger.Error().Err(err).Msg("exchange oauth")
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "oauth exchange failed"})
		return
	}
	resp, err := s.OAuth.Client(r.Context(), tok).Get(googleUserInfoURL)
	if err != nil {
		logger.Error().Err(err).Msg("userinfo")
		writeJSON(w, http.StatusBadGateway, errorBody{Error: "userinfo failed"})
		return
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		logger.Error().Int("status", resp.StatusCode).Msg("userinfo")
		writeJSON(w, http.StatusBadGateway, errorBody{Error: "userinfo failed"})
		return
	}
	var info struct {
		Email         string `json:"email"`
		EmailVerified bool   `json:"email_verified"`
		Name          string `json:"name"`
	}
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<16)).Decode(&info); err != nil || info.Email == "" || !info.EmailVerified {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "google account has no verified email"})
		return
	}
	u, err := s.Auth.LoginWithGoogle(r.Context(), info.Email, info.Name)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if _, err := s.writeSession(w, u); err != nil {
		writeError(w, r, err)
		return
	}
	http.Redirect(w, r, "/", http.StatusFound)
}
