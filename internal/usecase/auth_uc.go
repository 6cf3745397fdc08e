package usecase

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"

	"github.com/phenrril/drukuje3d/internal/domain"
)

const (
	verificationTTL = time.Hour
	resetTTL        = time.Hour
)

type AuthUC struct {
	Users   domain.UserRepo
	Tokens  domain.TokenRepo
	Mailer  domain.Mailer
	BaseURL string
	Now     func() time.Time
	// Cost defaults to bcrypt.DefaultCost; tests lower it.
	Cost int
}

type RegisterInput struct {
	Name     string `json:"name" validate:"required,min=2,max=140"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

type LoginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type ResetPasswordInput struct {
	Email    string `json:"email" validate:"required,email"`
	Token    string `json:"token" validate:"required"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

func (uc *AuthUC) now() time.Time {
	if uc.Now != nil {
		return uc.Now()
	}
	return time.Now()
}

func (uc *AuthUC) hash(pw string) (string, error) {
	cost := uc.Cost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	b, err := bcrypt.GenerateFromPassword([]byte(pw), cost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(b), nil
}

func normEmail(s string) string { return strings.ToLower(strings.TrimSpace(s)) }

// Register creates an unverified account and mails a 6-digit code. Registering
// again before verification replaces the pending account data.
func (uc *AuthUC) Register(ctx context.Context, in RegisterInput) (*domain.User, error) {
	if err := validateStruct(in); err != nil {
		return nil, err
	}
	email := normEmail(in.Email)
	existing, err := uc.Users.FindByEmail(ctx, email)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}
	if existing != nil && existing.Verified() {
		return nil, domain.ErrEmailTaken
	}
	hash, err := uc.hash(in.Password)
	if err != nil {
		return nil, err
	}
	code, err := sixDigitCode()
	if err != nil {
		return nil, err
	}
	expires := uc.now().Add(verificationTTL)

	u := existing
	if u == nil {
		u = &domain.User{ID: uuid.New(), Email: email, Role: domain.RoleUser}
	}
	u.Name = strings.TrimSpace(in.Name)
	u.PasswordHash = hash
	u.VerificationCode = &code
	u.VerificationCodeExpires = &expires
	if existing == nil {
		err = uc.Users.Create(ctx, u)
	} else {
		err = uc.Users.Save(ctx, u)
	}
	if err != nil {
		return nil, fmt.Errorf("save user: %w", err)
	}

	body := fmt.Sprintf("<p>Cześć %s,</p><p>Twój kod weryfikacyjny: <b>%s</b></p><p>Kod jest ważny przez godzinę.</p>", u.Name, code)
	if err := uc.Mailer.Send(ctx, u.Email, "Kod weryfikacyjny", body); err != nil {
		log.Error().Err(err).Str("email", u.Email).Msg("send verification code")
	}
	return u, nil
}

func (uc *AuthUC) Verify(ctx context.Context, email, code string) (*domain.User, error) {
	u, err := uc.Users.FindByEmail(ctx, normEmail(email))
	if errors.Is(err, domain.ErrNotFound) {
		return nil, domain.ErrInvalidCode
	}
	if err != nil {
		return nil, err
	}
	if u.Verified() {
		return nil, domain.ErrAlreadyVerified
	}
	if u.VerificationCode == nil || *u.VerificationCode != strings.TrimSpace(code) ||
		u.VerificationCodeExpires == nil || uc.now().After(*u.VerificationCodeExpires) {
		return nil, domain.ErrInvalidCode
	}
	now := uc.now()
	u.EmailVerifiedAt = &now
	u.VerificationCode = nil
	u.VerificationCodeExpires = nil
	if err := uc.Users.Save(ctx, u); err != nil {
		return nil, fmt.Errorf("save user: %w", err)
	}
	return u, nil
}

func (uc *AuthUC) Login(ctx context.Context, in LoginInput) (*domain.User, error) {
	if err := validateStruct(in); err != nil {
		return nil, err
	}
	u, err := uc.Users.FindByEmail(ctx, normEmail(in.Email))
	if errors.Is(err, domain.ErrNotFound) {
		return nil, domain.ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if u.PasswordHash == "" || bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(in.Password)) != nil {
		return nil, domain.ErrInvalidCredentials
	}
	if !u.Verified() {
		return nil, domain.ErrEmailNotVerified
	}
	return u, nil
}

// RequestPasswordReset mails a reset link. Unknown addresses succeed silently.
func (uc *AuthUC) RequestPasswordReset(ctx context.Context, email string) error {
	email = normEmail(email)
	u, err := uc.Users.FindByEmail(ctx, email)
	if errors.Is(err, domain.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	token, err := randomToken()
	if err != nil {
		return err
	}
	if err := uc.Tokens.Create(ctx, &domain.VerificationToken{Identifier: u.Email, Token: token, Expires: uc.now().Add(resetTTL)}); err != nil {
		return fmt.Errorf("store reset token: %w", err)
	}
	link := fmt.Sprintf("%s/reset-password?token=%s&email=%s", uc.BaseURL, token, u.Email)
	body := fmt.Sprintf(`<p>Aby ustawić nowe hasło kliknij <a href="%s">ten link</a>.</p><p>Link wygaśnie za godzinę.</p>`, link)
	if err := uc.Mailer.Send(ctx, u.Email, "Reset hasła", body); err != nil {
		log.Error().Err(err).Str("email", u.Email).Msg("send reset link")
	}
	return nil
}

func (uc *AuthUC) ResetPassword(ctx context.Context, in ResetPasswordInput) error {
	if err := validateStruct(in); err != nil {
		return err
	}
	email := normEmail(in.Email)
	t, err := uc.Tokens.FindValid(ctx, email, in.Token)
	if errors.Is(err, domain.ErrNotFound) {
		return domain.ErrInvalidCode
	}
	if err != nil {
		return err
	}
	if uc.now().After(t.Expires) {
		return domain.ErrInvalidCode
	}
	u, err := uc.Users.FindByEmail(ctx, email)
	if err != nil {
		return err
	}
	if u.PasswordHash, err = uc.hash(in.Password); err != nil {
		return err
	}
	if err := uc.Users.Save(ctx, u); err != nil {
		return fmt.Errorf("save user: %w", err)
	}
	if err := uc.Tokens.Delete(ctx, t.Identifier, t.Token); err != nil {
		log.Warn().Err(err).Str("email", email).Msg("delete used reset token")
	}
	return nil
}

func (uc *AuthUC) ChangePassword(ctx context.Context, userID uuid.UUID, current, next string) error {
	if len(next) < 8 || len(next) > 72 {
		return domain.NewValidationError("newPassword", "must be between 8 and 72 characters")
	}
	u, err := uc.Users.FindByID(ctx, userID)
	if err != nil {
		return err
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(current)) != nil {
		return domain.ErrInvalidCredentials
	}
	if u.PasswordHash, err = uc.hash(next); err != nil {
		return err
	}
	return uc.Users.Save(ctx, u)
}

// ChangeEmail requires the current password and keeps the account verified.
func (uc *AuthUC) ChangeEmail(ctx context.Context, userID uuid.UUID, newEmail, password string) (*domain.User, error) {
	newEmail = normEmail(newEmail)
	if err := validate.Var(newEmail, "required,email"); err != nil {
		return nil, domain.NewValidationError("email", "must be a valid email")
	}
	u, err := uc.Users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		return nil, domain.ErrInvalidCredentials
	}
	other, err := uc.Users.FindByEmail(ctx, newEmail)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}
	if other != nil && other.ID != u.ID {
		return nil, domain.ErrEmailTaken
	}
	u.Email = newEmail
	if err := uc.Users.Save(ctx, u); err != nil {
		return nil, fmt.Errorf("save user: %w", err)
	}
	return u, nil
}

// EnsureAdmin creates or promotes the configured admin account.
func (uc *AuthUC) EnsureAdmin(ctx context.Context, email, password string) error {
	email = normEmail(email)
	if email == "" || password == "" {
		return nil
	}
	u, err := uc.Users.FindByEmail(ctx, email)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return err
	}
	now := uc.now()
	if u != nil {
		if u.IsAdmin() && u.Verified() {
			return nil
		}
		u.Role = domain.RoleAdmin
		if u.EmailVerifiedAt == nil {
			u.EmailVerifiedAt = &now
		}
		return uc.Users.Save(ctx, u)
	}
	hash, err := uc.hash(password)
	if err != nil {
		return err
	}
	return uc.Users.Create(ctx, &domain.User{
		ID:              uuid.New(),
		Name:            "Admin",
		Email:           email,
		PasswordHash:    hash,
		Role:            domain.RoleAdmin,
		EmailVerifiedAt: &now,
	})
}

// LoginWithGoogle trusts the address Google verified and creates the user on first sign-in.
func (uc *AuthUC) LoginWithGoogle(ctx context.Context, email, name string) (*domain.User, error) {
	email = normEmail(email)
	if email == "" {
		return nil, domain.ErrInvalidCredentials
	}
	u, err := uc.Users.FindByEmail(ctx, email)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}
	now := uc.now()
	if u == nil {
		u = &domain.User{ID: uuid.New(), Name: name, Email: email, Role: domain.RoleUser, EmailVerifiedAt: &now}
		if err := uc.Users.Create(ctx, u); err != nil {
			return nil, fmt.Errorf("create user: %w", err)
		}
		return u, nil
	}
	if !u.Verified() {
		u.EmailVerifiedAt = &now
		u.VerificationCode = nil
		u.VerificationCodeExpires = nil
		if err := uc.Users.Save(ctx, u); err != nil {
			return nil, fmt.Errorf("save user: %w", err)
		}
	}
	return u, nil
}

func (uc *AuthUC) Me(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	return uc.Users.FindByID(ctx, id)
}

func sixDigitCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()+100000), nil
}

func randomToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
