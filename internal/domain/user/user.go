// Package user defines the User identity (spec.md §3: "Identity + admin
// bit"; email unique; locked users reject auth) and the Token Authority's
// wire-level claims shape (spec.md §4.3). Per-scope authorization lives in
// internal/domain/organization and internal/domain/permission, not here.
package user

import (
	"errors"
	"fmt"
	"time"
	"unicode"

	"github.com/Strob0t/CodeForge/internal/domain/valueobject"
)

// MaxFailedAttempts is the number of consecutive failed login attempts
// before an account is temporarily locked.
const MaxFailedAttempts = 5

// LockoutDuration is how long an account stays locked after exceeding
// MaxFailedAttempts.
const LockoutDuration = 15 * time.Minute

// User is a registered identity. IsAdmin is the instance-wide admin bit
// named in spec.md §3 (distinct from any OrganizationRole/ProjectRole,
// which scope admin-ness to one org or project).
type User struct {
	ID                 string    `json:"id"`
	UUID               string    `json:"uuid"`
	Email              string    `json:"email"`
	Name               string    `json:"name"`
	PasswordHash       string    `json:"-"` // never serialized
	IsAdmin            bool      `json:"is_admin"`
	Locked             bool      `json:"locked"`
	MustChangePassword bool      `json:"must_change_password"`
	FailedAttempts     int       `json:"-"` // consecutive failed login attempts
	LockedUntil        time.Time `json:"-"` // account locked until this time
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

// IsLocked returns true if the account is currently locked, either
// explicitly (Locked) or due to too many failed login attempts.
func (u *User) IsLocked() bool {
	return u.Locked || (!u.LockedUntil.IsZero() && time.Now().Before(u.LockedUntil))
}

// CreateRequest is the input for registering a new user (spec.md §6
// POST /v0/auth/signup).
type CreateRequest struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	Password string `json:"password"` //nolint:gosec // request field, not a hardcoded secret
	// InviteToken optionally carries an Invite-kind token (spec.md §4.3),
	// granting the named OrganizationRole on signup.
	InviteToken string `json:"invite_token,omitempty"`
}

// Validate checks that the CreateRequest has all required fields.
func (r *CreateRequest) Validate() error {
	if _, err := valueobject.ParseEmail(r.Email); err != nil {
		return fmt.Errorf("email: %w", err)
	}
	if _, err := valueobject.ParseUserName(r.Name); err != nil {
		return fmt.Errorf("name: %w", err)
	}
	if r.Password == "" {
		return errors.New("password is required")
	}
	if err := ValidatePasswordComplexity(r.Password); err != nil {
		return err
	}
	return nil
}

// UpdateRequest is the input for updating an existing user. Locked and
// IsAdmin are pointers so that "absent" and "set to false" are
// distinguishable in a partial update.
type UpdateRequest struct {
	Name    string `json:"name,omitempty"`
	Locked  *bool  `json:"locked,omitempty"`
	IsAdmin *bool  `json:"is_admin,omitempty"`
}

// LoginRequest is the input for user authentication.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"` //nolint:gosec // request field, not a hardcoded secret
}

// Validate checks that the LoginRequest has all required fields.
func (r *LoginRequest) Validate() error {
	if r.Email == "" {
		return errors.New("email is required")
	}
	if r.Password == "" {
		return errors.New("password is required")
	}
	return nil
}

// LoginResponse is returned after successful authentication.
type LoginResponse struct {
	AccessToken string `json:"access_token"` //nolint:gosec // response field, not a hardcoded secret
	ExpiresIn   int    `json:"expires_in"`    // seconds until access token expires
	User        User   `json:"user"`
}

// TokenKind distinguishes the five token kinds of spec.md §4.3, each with
// its own audience claim and TTL.
type TokenKind string

const (
	KindAuth       TokenKind = "auth"        // session bearer, hours
	KindInvite     TokenKind = "invite"      // org invite, minutes
	KindOAuthState TokenKind = "oauth_state" // OAuth redirect carrier, 600s
	KindAPI        TokenKind = "api"         // machine-to-machine, unbounded, hashed
	KindRunner     TokenKind = "runner"      // runner identity, unbounded, hashed+prefixed
)

// TokenClaims is the JWT payload shape, generalized across all five kinds;
// fields irrelevant to a given kind are left zero.
type TokenClaims struct {
	JTI        string    `json:"jti,omitempty"`
	Kind       TokenKind `json:"kind"`
	UserID     string    `json:"sub,omitempty"`
	Email      string    `json:"email,omitempty"`
	Name       string    `json:"name,omitempty"`
	IsAdmin    bool      `json:"adm,omitempty"`
	Audience   string    `json:"aud,omitempty"`
	Issuer     string    `json:"iss,omitempty"`
	IssuedAt   int64     `json:"iat"`
	Expiry     int64     `json:"exp,omitempty"` // 0 for unbounded kinds (API, Runner)
	// Invite-kind only:
	OrganizationID string `json:"org_id,omitempty"`
	InviteRole     string `json:"invite_role,omitempty"`
	// OAuthState-kind only:
	OAuthInvite string `json:"oauth_invite,omitempty"`
	OAuthClaim  string `json:"oauth_claim,omitempty"`
	OAuthPlan   string `json:"oauth_plan,omitempty"`
	MustChangePassword bool `json:"mcp,omitempty"`
}

// ChangePasswordRequest is the input for changing a user's password.
type ChangePasswordRequest struct {
	OldPassword string `json:"old_password"`
	NewPassword string `json:"new_password"`
}

// Validate checks that the ChangePasswordRequest has all required fields.
func (r *ChangePasswordRequest) Validate() error {
	if r.OldPassword == "" {
		return errors.New("old password is required")
	}
	if r.NewPassword == "" {
		return errors.New("new password is required")
	}
	return ValidatePasswordComplexity(r.NewPassword)
}

// ValidatePasswordComplexity checks that a password meets minimum complexity requirements:
// at least 10 characters, contains uppercase, lowercase, and a digit.
func ValidatePasswordComplexity(password string) error {
	if len(password) < 10 {
		return errors.New("password must be at least 10 characters")
	}
	var hasUpper, hasLower, hasDigit bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsDigit(r):
			hasDigit = true
		}
	}
	if !hasUpper {
		return errors.New("password must contain at least one uppercase letter")
	}
	if !hasLower {
		return errors.New("password must contain at least one lowercase letter")
	}
	if !hasDigit {
		return errors.New("password must contain at least one digit")
	}
	return nil
}

// RefreshToken represents a stored Auth-kind refresh token.
type RefreshToken struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	TokenHash string    `json:"-"`
	ExpiresAt time.Time `json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
}
