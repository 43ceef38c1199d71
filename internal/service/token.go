package service

import (
	"context"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/Strob0t/CodeForge/internal/config"
	"github.com/Strob0t/CodeForge/internal/domain"
	"github.com/Strob0t/CodeForge/internal/domain/bcherr"
	"github.com/Strob0t/CodeForge/internal/domain/organization"
	"github.com/Strob0t/CodeForge/internal/domain/permission"
	"github.com/Strob0t/CodeForge/internal/domain/user"
	"github.com/Strob0t/CodeForge/internal/domain/valueobject"
	"github.com/Strob0t/CodeForge/internal/port/database"
)

const (
	jwtAudience = "bencher"
	jwtIssuer   = "bencher-core"
)

// TokenService is the Token Authority of spec.md §4.3: it issues and
// verifies all five token kinds against one process-wide secret, and
// orchestrates the password/refresh-token bookkeeping that rides along
// with Auth-kind tokens (login, lockout, rotation).
type TokenService struct {
	store  database.Store
	cfg    *config.Auth
	secret valueobject.Secret
}

// NewTokenService creates a new Token Authority. The JWT signing secret is
// parsed into valueobject.Secret, whose String, GoString and MarshalJSON
// redact it. Formatting a TokenService with %v does not redact it: the
// field is unexported, so fmt does not call those methods on it.
func NewTokenService(store database.Store, cfg *config.Auth) *TokenService {
	secret, _ := valueobject.ParseSecret(cfg.JWTSecret)
	return &TokenService{
		store:  store,
		cfg:    cfg,
		secret: secret,
	}
}

// Register creates a new user with a bcrypt-hashed password. When
// req.InviteToken carries a valid Invite-kind token, the new user is
// granted the invite's role in the named Organization on signup
// (spec.md §4.3, scenario S6).
func (s *TokenService) Register(ctx context.Context, req *user.CreateRequest) (*user.User, error) {
	if err := req.Validate(); err != nil {
		return nil, bcherr.BadRequest(err.Error())
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.cfg.BcryptCost)
	if err != nil {
		return nil, bcherr.Internal("hash password", err)
	}

	u := &user.User{
		ID:           generateID(),
		Email:        req.Email,
		Name:         req.Name,
		PasswordHash: string(hash),
	}

	if err := s.store.CreateUser(ctx, u); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}

	if req.InviteToken != "" {
		claims, err := s.verifyJWT(req.InviteToken)
		if err != nil {
			return nil, bcherr.BadRequest("invalid or expired invite token")
		}
		if claims.Kind != user.KindInvite {
			return nil, bcherr.BadRequest("token is not an invite token")
		}
		role, err := permission.ParseRole(claims.InviteRole)
		if err != nil {
			return nil, bcherr.Internal("invite token carries an invalid role", err)
		}
		if _, err := s.store.AddOrganizationMember(ctx, claims.OrganizationID, organization.AddMemberRequest{
			UserID: u.ID,
			Role:   role,
		}); err != nil {
			return nil, fmt.Errorf("add invited member: %w", err)
		}
	}

	return u, nil
}

// Login authenticates a user and returns an access token plus a raw
// refresh token. Accounts are temporarily locked after
// user.MaxFailedAttempts consecutive failures (spec.md §4.4 lockout
// window).
func (s *TokenService) Login(ctx context.Context, req user.LoginRequest) (*user.LoginResponse, string, error) {
	if err := req.Validate(); err != nil {
		return nil, "", bcherr.BadRequest(err.Error())
	}

	u, err := s.store.GetUserByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, "", bcherr.Unauthorized("invalid credentials")
		}
		return nil, "", fmt.Errorf("get user: %w", err)
	}

	if u.IsLocked() {
		return nil, "", bcherr.Forbidden("account is temporarily locked, try again later")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(req.Password)); err != nil {
		u.FailedAttempts++
		lockedUntil := u.LockedUntil
		if u.FailedAttempts >= user.MaxFailedAttempts {
			lockedUntil = time.Now().Add(user.LockoutDuration)
			slog.Warn("account locked due to failed login attempts",
				"email", u.Email, "attempts", u.FailedAttempts)
		}
		if updateErr := s.store.RecordLoginFailure(ctx, u.ID, u.FailedAttempts, lockedUntil); updateErr != nil {
			slog.Error("failed to record login failure", "error", updateErr)
		}
		return nil, "", bcherr.Unauthorized("invalid credentials")
	}

	if u.FailedAttempts > 0 || !u.LockedUntil.IsZero() {
		if updateErr := s.store.RecordLoginSuccess(ctx, u.ID); updateErr != nil {
			slog.Error("failed to reset login lockout state", "error", updateErr)
		}
		u.FailedAttempts = 0
		u.LockedUntil = time.Time{}
	}

	accessToken, err := s.signAuthJWT(u)
	if err != nil {
		return nil, "", fmt.Errorf("sign jwt: %w", err)
	}

	rawToken, err := generateRandomToken()
	if err != nil {
		return nil, "", fmt.Errorf("generate refresh token: %w", err)
	}

	rt := &user.RefreshToken{
		ID:        generateID(),
		UserID:    u.ID,
		TokenHash: hashSHA256(rawToken),
		ExpiresAt: time.Now().Add(s.cfg.RefreshTokenExpiry),
	}
	if err := s.store.CreateRefreshToken(ctx, rt); err != nil {
		return nil, "", fmt.Errorf("store refresh token: %w", err)
	}

	resp := &user.LoginResponse{
		AccessToken: accessToken,
		ExpiresIn:   int(s.cfg.AccessTokenExpiry.Seconds()),
		User:        *u,
	}
	return resp, rawToken, nil
}

// RefreshTokens validates a refresh token, atomically rotates it, and
// issues a new access token. The old token is invalidated in the same
// transaction the new one is inserted in (internal/port/database
// RotateRefreshToken), so a stolen raw token cannot be replayed after
// the legitimate client has rotated it.
func (s *TokenService) RefreshTokens(ctx context.Context, rawToken string) (*user.LoginResponse, string, error) {
	tokenHash := hashSHA256(rawToken)

	rt, err := s.store.GetRefreshTokenByHash(ctx, tokenHash)
	if err != nil {
		return nil, "", bcherr.Unauthorized("invalid refresh token")
	}

	if time.Now().After(rt.ExpiresAt) {
		_ = s.store.DeleteRefreshToken(ctx, rt.ID)
		return nil, "", bcherr.Unauthorized("refresh token expired")
	}

	u, err := s.store.GetUser(ctx, rt.UserID)
	if err != nil {
		return nil, "", fmt.Errorf("get user: %w", err)
	}
	if u.IsLocked() {
		return nil, "", bcherr.Forbidden("account is temporarily locked")
	}

	accessToken, err := s.signAuthJWT(u)
	if err != nil {
		return nil, "", fmt.Errorf("sign jwt: %w", err)
	}

	newRawToken, err := generateRandomToken()
	if err != nil {
		return nil, "", fmt.Errorf("generate refresh token: %w", err)
	}
	newRT := &user.RefreshToken{
		ID:        generateID(),
		UserID:    u.ID,
		TokenHash: hashSHA256(newRawToken),
		ExpiresAt: time.Now().Add(s.cfg.RefreshTokenExpiry),
	}

	if err := s.store.RotateRefreshToken(ctx, rt.ID, newRT); err != nil {
		return nil, "", fmt.Errorf("rotate refresh token: %w", err)
	}

	resp := &user.LoginResponse{
		AccessToken: accessToken,
		ExpiresIn:   int(s.cfg.AccessTokenExpiry.Seconds()),
		User:        *u,
	}
	return resp, newRawToken, nil
}

// Logout deletes all refresh tokens for a user and, when jti is
// non-empty, revokes the current access token by JTI.
func (s *TokenService) Logout(ctx context.Context, userID, jti string, tokenExpiry time.Time) error {
	if jti != "" {
		if err := s.store.RevokeToken(ctx, jti, tokenExpiry); err != nil {
			slog.Warn("failed to revoke access token on logout", "jti", jti, "error", err)
		}
	}
	return s.store.DeleteRefreshTokensByUser(ctx, userID)
}

// RevokeAccessToken adds a token JTI to the revocation blacklist.
func (s *TokenService) RevokeAccessToken(ctx context.Context, jti string, expiresAt time.Time) error {
	return s.store.RevokeToken(ctx, jti, expiresAt)
}

// ValidateAccessToken verifies an Auth-kind JWT and returns its claims.
// Revocation is checked fail-closed: a lookup error denies the token
// rather than letting it through.
func (s *TokenService) ValidateAccessToken(ctx context.Context, tokenStr string) (*user.TokenClaims, error) {
	claims, err := s.verifyJWT(tokenStr)
	if err != nil {
		return nil, err
	}
	if claims.Kind != user.KindAuth {
		return nil, bcherr.Unauthorized("not an access token")
	}

	if claims.JTI != "" {
		revoked, dbErr := s.store.IsTokenRevoked(ctx, claims.JTI)
		if dbErr != nil {
			slog.Error("token revocation check failed, denying token", "jti", claims.JTI, "error", dbErr)
			return nil, bcherr.Internal("unable to verify token status", dbErr)
		}
		if revoked {
			return nil, bcherr.Unauthorized("token has been revoked")
		}
	}

	return claims, nil
}

// IssueInviteToken signs an Invite-kind token granting role in the
// named organization to whoever redeems it via Register (spec.md
// §4.3).
func (s *TokenService) IssueInviteToken(organizationID string, role permission.Role) (string, error) {
	now := time.Now()
	claims := user.TokenClaims{
		JTI:            generateID(),
		Kind:           user.KindInvite,
		Audience:       jwtAudience,
		Issuer:         jwtIssuer,
		IssuedAt:       now.Unix(),
		Expiry:         now.Add(s.cfg.InviteTokenExpiry).Unix(),
		OrganizationID: organizationID,
		InviteRole:     string(role),
	}
	return s.sign(claims)
}

// OAuthState is the carrier payload threaded through an OAuth redirect
// (spec.md §4.3 scenario S6: "Encode an OAuthState {invite, claim,
// plan}, pass it through an OAuth redirect, decode with the same key
// → identical state").
type OAuthState struct {
	Invite string
	Claim  string
	Plan   string
}

// EncodeOAuthState signs an OAuthState-kind token with a 600-second TTL.
func (s *TokenService) EncodeOAuthState(state OAuthState) (string, error) {
	now := time.Now()
	claims := user.TokenClaims{
		JTI:         generateID(),
		Kind:        user.KindOAuthState,
		Audience:    jwtAudience,
		Issuer:      jwtIssuer,
		IssuedAt:    now.Unix(),
		Expiry:      now.Add(s.cfg.OAuthStateExpiry).Unix(),
		OAuthInvite: state.Invite,
		OAuthClaim:  state.Claim,
		OAuthPlan:   state.Plan,
	}
	return s.sign(claims)
}

// DecodeOAuthState verifies an OAuthState-kind token and recovers the
// carried state.
func (s *TokenService) DecodeOAuthState(tokenStr string) (*OAuthState, error) {
	claims, err := s.verifyJWT(tokenStr)
	if err != nil {
		return nil, err
	}
	if claims.Kind != user.KindOAuthState {
		return nil, bcherr.Unauthorized("not an oauth state token")
	}
	return &OAuthState{
		Invite: claims.OAuthInvite,
		Claim:  claims.OAuthClaim,
		Plan:   claims.OAuthPlan,
	}, nil
}

// ValidateAPIKey looks up an API-kind or Runner-kind key by its SHA-256
// hash and returns the owning user alongside the key (for scope
// checking).
func (s *TokenService) ValidateAPIKey(ctx context.Context, rawKey string) (*user.User, *user.APIKey, error) {
	keyHash := hashSHA256(rawKey)
	apiKey, err := s.store.GetAPIKeyByHash(ctx, keyHash)
	if err != nil {
		return nil, nil, bcherr.Unauthorized("invalid api key")
	}

	if !apiKey.ExpiresAt.IsZero() && time.Now().After(apiKey.ExpiresAt) {
		return nil, nil, bcherr.Unauthorized("api key expired")
	}

	u, err := s.store.GetUser(ctx, apiKey.UserID)
	if err != nil {
		return nil, nil, fmt.Errorf("get user: %w", err)
	}
	return u, apiKey, nil
}

// CreateAPIKey generates a new API-kind key for machine-to-machine use.
func (s *TokenService) CreateAPIKey(ctx context.Context, userID string, req user.CreateAPIKeyRequest) (*user.CreateAPIKeyResponse, error) {
	return s.createKey(ctx, userID, user.KindAPI, user.APIKeyPrefix, req)
}

// CreateRunnerKey generates a new Runner-kind key identifying a runner
// agent (spec.md §4.3: "unbounded, hashed with prefix").
func (s *TokenService) CreateRunnerKey(ctx context.Context, userID string, req user.CreateAPIKeyRequest) (*user.CreateAPIKeyResponse, error) {
	return s.createKey(ctx, userID, user.KindRunner, user.RunnerKeyPrefix, req)
}

func (s *TokenService) createKey(ctx context.Context, userID string, kind user.TokenKind, prefix string, req user.CreateAPIKeyRequest) (*user.CreateAPIKeyResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, bcherr.BadRequest(err.Error())
	}

	rawKey, err := generateRandomToken()
	if err != nil {
		return nil, fmt.Errorf("generate key: %w", err)
	}
	plainKey := prefix + rawKey

	var expiresAt time.Time
	if req.ExpiresIn > 0 {
		expiresAt = time.Now().Add(time.Duration(req.ExpiresIn) * time.Second)
	}

	key := &user.APIKey{
		ID:        generateID(),
		UserID:    userID,
		Kind:      kind,
		Name:      req.Name,
		Prefix:    plainKey[:len(prefix)+4],
		KeyHash:   hashSHA256(plainKey),
		ExpiresAt: expiresAt,
		Scopes:    req.Scopes,
	}

	if err := s.store.CreateAPIKey(ctx, key); err != nil {
		return nil, fmt.Errorf("create api key: %w", err)
	}

	return &user.CreateAPIKeyResponse{
		APIKey:   *key,
		PlainKey: plainKey,
	}, nil
}

// ListAPIKeys returns all keys of the given kind owned by a user.
func (s *TokenService) ListAPIKeys(ctx context.Context, userID string, kind user.TokenKind) ([]user.APIKey, error) {
	return s.store.ListAPIKeysByUser(ctx, userID, kind)
}

// DeleteAPIKey removes a key owned by the given user.
func (s *TokenService) DeleteAPIKey(ctx context.Context, id, userID string) error {
	return s.store.DeleteAPIKey(ctx, id, userID)
}

// ListUsers returns all registered users.
func (s *TokenService) ListUsers(ctx context.Context) ([]user.User, error) {
	return s.store.ListUsers(ctx)
}

// GetUser returns a user by ID.
func (s *TokenService) GetUser(ctx context.Context, id string) (*user.User, error) {
	return s.store.GetUser(ctx, id)
}

// UpdateUser updates user fields (name, admin bit, locked state).
func (s *TokenService) UpdateUser(ctx context.Context, id string, req user.UpdateRequest) (*user.User, error) {
	u, err := s.store.GetUser(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != "" {
		u.Name = req.Name
	}
	if req.IsAdmin != nil {
		u.IsAdmin = *req.IsAdmin
	}
	if req.Locked != nil {
		u.Locked = *req.Locked
	}

	if err := s.store.UpdateUser(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

// AdminResetPassword sets a user's password directly, bypassing the
// old-password check ChangePassword requires, for the `bencher admin
// reset-password` CLI command.
func (s *TokenService) AdminResetPassword(ctx context.Context, email, newPassword string) error {
	u, err := s.store.GetUserByEmail(ctx, email)
	if err != nil {
		return fmt.Errorf("get user: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), s.cfg.BcryptCost)
	if err != nil {
		return bcherr.Internal("hash password", err)
	}

	u.PasswordHash = string(hash)
	u.MustChangePassword = false

	if err := s.store.UpdateUser(ctx, u); err != nil {
		return fmt.Errorf("update user: %w", err)
	}
	return nil
}

// DeleteUser removes a user and their refresh tokens.
func (s *TokenService) DeleteUser(ctx context.Context, id string) error {
	if err := s.store.DeleteRefreshTokensByUser(ctx, id); err != nil {
		slog.Warn("failed to clear refresh tokens before user deletion", "user_id", id, "error", err)
	}
	return s.store.DeleteUser(ctx, id)
}

// SetupStatus represents the initial setup state of the system.
type SetupStatus struct {
	NeedsSetup          bool `json:"needs_setup"`
	SetupTimeoutMinutes int  `json:"setup_timeout_minutes"`
}

// GetSetupStatus checks if the system needs initial setup (no users exist).
func (s *TokenService) GetSetupStatus(ctx context.Context) (*SetupStatus, error) {
	users, err := s.store.ListUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return &SetupStatus{
		NeedsSetup:          len(users) == 0,
		SetupTimeoutMinutes: s.cfg.SetupTimeoutMinutes,
	}, nil
}

// BootstrapAdmin creates the initial admin user using one of three paths:
//  1. DefaultAdminPass set: create admin with that password.
//  2. AutoGenerateInitialPassword: generate a random password and write it to
//     InitialPasswordFile.
//  3. Otherwise: log and wait for the setup wizard.
func (s *TokenService) BootstrapAdmin(ctx context.Context) error {
	users, err := s.store.ListUsers(ctx)
	if err != nil {
		return fmt.Errorf("list users: %w", err)
	}
	if len(users) > 0 {
		return nil
	}

	if s.cfg.DefaultAdminPass != "" {
		return s.createAdminWithPassword(ctx, s.cfg.DefaultAdminPass)
	}

	if s.cfg.AutoGenerateInitialPassword {
		password, err := generateRandomPassword(24)
		if err != nil {
			return fmt.Errorf("generate initial password: %w", err)
		}
		if err := writePasswordFile(s.cfg.InitialPasswordFile, password); err != nil {
			return fmt.Errorf("write initial password file: %w", err)
		}
		if err := s.createAdminWithPassword(ctx, password); err != nil {
			return err
		}
		slog.Warn("initial admin password written to file — change it on first login",
			"file", s.cfg.InitialPasswordFile,
			"email", s.cfg.DefaultAdminEmail)
		return nil
	}

	slog.Info("no admin password configured, waiting for setup wizard",
		"email", s.cfg.DefaultAdminEmail)
	return nil
}

func (s *TokenService) createAdminWithPassword(ctx context.Context, password string) error {
	u, err := s.Register(ctx, &user.CreateRequest{
		Email:    s.cfg.DefaultAdminEmail,
		Name:     "Admin",
		Password: password,
	})
	if err != nil {
		return fmt.Errorf("bootstrap admin: %w", err)
	}

	u.IsAdmin = true
	u.MustChangePassword = true
	if err := s.store.UpdateUser(ctx, u); err != nil {
		return fmt.Errorf("promote bootstrap admin: %w", err)
	}

	slog.Info("bootstrapped admin user", "email", s.cfg.DefaultAdminEmail)
	return nil
}

// ChangePassword verifies the old password, validates the complexity of
// the new one, hashes it, updates the user, and clears
// MustChangePassword.
func (s *TokenService) ChangePassword(ctx context.Context, userID string, req user.ChangePasswordRequest) error {
	if err := req.Validate(); err != nil {
		return bcherr.BadRequest(err.Error())
	}

	u, err := s.store.GetUser(ctx, userID)
	if err != nil {
		return fmt.Errorf("get user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(req.OldPassword)); err != nil {
		return bcherr.Unauthorized("current password is incorrect")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), s.cfg.BcryptCost)
	if err != nil {
		return bcherr.Internal("hash password", err)
	}

	u.PasswordHash = string(hash)
	u.MustChangePassword = false

	if err := s.store.UpdateUser(ctx, u); err != nil {
		return fmt.Errorf("update user: %w", err)
	}

	if s.cfg.InitialPasswordFile != "" {
		if err := os.Remove(s.cfg.InitialPasswordFile); err != nil && !os.IsNotExist(err) {
			slog.Warn("failed to remove initial password file", "path", s.cfg.InitialPasswordFile, "error", err)
		}
	}

	return nil
}

// StartTokenCleanup starts a background goroutine that periodically
// purges expired revoked-token entries. It stops when ctx is cancelled.
func (s *TokenService) StartTokenCleanup(ctx context.Context, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				n, err := s.store.PurgeExpiredTokens(ctx)
				if err != nil {
					slog.Warn("failed to purge expired tokens", "error", err)
				} else if n > 0 {
					slog.Info("purged expired revoked tokens", "count", n)
				}
			}
		}
	}()
}

// --- JWT implementation (HS256 with stdlib) ---

var jwtHeader = base64URLEncode([]byte(`{"alg":"HS256","typ":"JWT"}`))

func (s *TokenService) signAuthJWT(u *user.User) (string, error) {
	now := time.Now()
	claims := user.TokenClaims{
		JTI:                generateID(),
		Kind:               user.KindAuth,
		UserID:             u.ID,
		Email:              u.Email,
		Name:               u.Name,
		IsAdmin:            u.IsAdmin,
		Audience:           jwtAudience,
		Issuer:             jwtIssuer,
		IssuedAt:           now.Unix(),
		Expiry:             now.Add(s.cfg.AccessTokenExpiry).Unix(),
		MustChangePassword: u.MustChangePassword,
	}
	return s.sign(claims)
}

func (s *TokenService) sign(claims user.TokenClaims) (string, error) {
	payload, err := json.Marshal(claims)
	if err != nil {
		return "", fmt.Errorf("marshal claims: %w", err)
	}

	payloadB64 := base64URLEncode(payload)
	signingInput := jwtHeader + "." + payloadB64

	mac := hmac.New(sha256.New, []byte(s.secret.Reveal()))
	mac.Write([]byte(signingInput))
	sig := base64URLEncode(mac.Sum(nil))

	return signingInput + "." + sig, nil
}

func (s *TokenService) verifyJWT(tokenStr string) (*user.TokenClaims, error) {
	parts := strings.SplitN(tokenStr, ".", 3)
	if len(parts) != 3 {
		return nil, bcherr.Unauthorized("malformed token")
	}

	signingInput := parts[0] + "." + parts[1]
	mac := hmac.New(sha256.New, []byte(s.secret.Reveal()))
	mac.Write([]byte(signingInput))
	expectedSig := base64URLEncode(mac.Sum(nil))

	if !hmac.Equal([]byte(parts[2]), []byte(expectedSig)) {
		return nil, bcherr.Unauthorized("invalid signature")
	}

	payload, err := base64URLDecode(parts[1])
	if err != nil {
		return nil, bcherr.Unauthorized("malformed token payload")
	}

	var claims user.TokenClaims
	if err := json.Unmarshal(payload, &claims); err != nil {
		return nil, bcherr.Unauthorized("malformed token payload")
	}

	// Unbounded kinds (API, Runner) never reach the JWT path — they are
	// looked up by hash — but guard anyway since Expiry is zero for them.
	if claims.Expiry != 0 && time.Now().Unix() > claims.Expiry {
		return nil, bcherr.Unauthorized("token expired")
	}
	if claims.Audience != jwtAudience {
		return nil, bcherr.Unauthorized("invalid token audience")
	}
	if claims.Issuer != jwtIssuer {
		return nil, bcherr.Unauthorized("invalid token issuer")
	}

	return &claims, nil
}

// --- Helpers ---

// ExtractBearer parses an Authorization header value of the form
// "Bearer <tok>". Matching is case-insensitive on the scheme and the
// token is trimmed; spec.md §4.3.
func ExtractBearer(header string) (string, bool) {
	const prefix = "bearer "
	if len(header) < len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return "", false
	}
	tok := strings.TrimSpace(header[len(prefix):])
	if tok == "" {
		return "", false
	}
	return tok, true
}

func base64URLEncode(data []byte) string {
	return strings.TrimRight(base64.URLEncoding.EncodeToString(data), "=")
}

func base64URLDecode(s string) ([]byte, error) {
	switch len(s) % 4 {
	case 2:
		s += "=="
	case 3:
		s += "="
	}
	return base64.URLEncoding.DecodeString(s)
}

func hashSHA256(data string) string {
	h := sha256.Sum256([]byte(data))
	return hex.EncodeToString(h[:])
}

func generateRandomToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// generateID produces a UUID v4 string using crypto/rand.
func generateID() string {
	b := make([]byte, 16)
	_, _ = rand.Read(b)
	b[6] = (b[6] & 0x0f) | 0x40 // version 4
	b[8] = (b[8] & 0x3f) | 0x80 // variant 10
	return fmt.Sprintf("%x-%x-%x-%x-%x", b[0:4], b[4:6], b[6:8], b[8:10], b[10:16])
}

// generateRandomPassword creates a random password of the given length
// containing uppercase, lowercase, and digits.
func generateRandomPassword(length int) (string, error) {
	const charset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	b := make([]byte, length)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	for i := range b {
		b[i] = charset[int(b[i])%len(charset)]
	}
	b[0] = 'A' + b[0]%26
	b[1] = 'a' + b[1]%26
	b[2] = '0' + b[2]%10
	return string(b), nil
}

// writePasswordFile writes the password to a file, creating parent
// directories as needed.
func writePasswordFile(path, password string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("create dir %s: %w", dir, err)
	}
	return os.WriteFile(path, []byte(password+"\n"), 0o600)
}
