package auth

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/vovakirdan/chatroom-server/internal/store"
)

var (
	// ErrInvalidCredentials is returned when email/password don't match.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrUserExists is returned when trying to register with an existing email or username.
	ErrUserExists = errors.New("user already exists")
	// ErrInvalidUsername is returned when username doesn't meet constraints.
	ErrInvalidUsername = errors.New("invalid username")
	// ErrInvalidEmail is returned when email doesn't look like an email.
	ErrInvalidEmail = errors.New("invalid email")
	// ErrInvalidPassword is returned when password doesn't meet constraints.
	ErrInvalidPassword = errors.New("invalid password")
	// ErrUnauthenticated is returned when no credential was presented.
	ErrUnauthenticated = errors.New("unauthenticated")
	// ErrInvalidToken is returned for malformed or expired credentials.
	ErrInvalidToken = errors.New("invalid token")
	// ErrIdentityNotFound is returned when the token's user no longer exists.
	ErrIdentityNotFound = errors.New("identity not found")
)

var (
	usernameRe = regexp.MustCompile(`^[a-zA-Z0-9_]{3,20}$`)
	emailRe    = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	digitRe    = regexp.MustCompile(`\d`)
)

// Identity is the resolved authenticated user, stable across connections.
type Identity struct {
	ID       int64
	Username string
	Avatar   string
}

// TokenPair bundles an access token with its refresh token.
type TokenPair struct {
	Token        string
	RefreshToken string
}

// Service provides authentication operations and credential resolution.
type Service struct {
	store     store.UserStore
	jwtConfig *JWTConfig
}

// NewService creates a new authentication service.
func NewService(userStore store.UserStore, jwtConfig *JWTConfig) *Service {
	return &Service{
		store:     userStore,
		jwtConfig: jwtConfig,
	}
}

// Signup creates a new user with hashed password and returns a token pair.
func (s *Service) Signup(ctx context.Context, username, email, password string) (*store.User, *TokenPair, error) {
	username = strings.TrimSpace(username)
	email = strings.ToLower(strings.TrimSpace(email))

	if !usernameRe.MatchString(username) {
		return nil, nil, ErrInvalidUsername
	}
	if !emailRe.MatchString(email) {
		return nil, nil, ErrInvalidEmail
	}
	if len(password) < 6 || !digitRe.MatchString(password) {
		return nil, nil, ErrInvalidPassword
	}

	// Check if user already exists by email or username
	if existing, err := s.store.GetUserByEmail(ctx, email); err == nil && existing != nil {
		return nil, nil, ErrUserExists
	}
	if existing, err := s.store.GetUserByUsername(ctx, username); err == nil && existing != nil {
		return nil, nil, ErrUserExists
	}

	hashedPassword, err := HashPassword(password)
	if err != nil {
		return nil, nil, fmt.Errorf("hash password: %w", err)
	}

	avatar := defaultAvatar(username)
	user, err := s.store.CreateUser(ctx, username, email, hashedPassword, avatar)
	if err != nil {
		return nil, nil, fmt.Errorf("create user: %w", err)
	}

	pair, err := s.issueTokens(user)
	if err != nil {
		return nil, nil, err
	}
	return user, pair, nil
}

// Login validates credentials, marks the user online, and returns a token pair.
func (s *Service) Login(ctx context.Context, email, password string) (*store.User, *TokenPair, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	user, err := s.store.GetUserByEmail(ctx, email)
	if err != nil {
		return nil, nil, ErrInvalidCredentials
	}

	if errPwd := ComparePassword(user.PasswordHash, password); errPwd != nil {
		return nil, nil, ErrInvalidCredentials
	}

	now := time.Now()
	if err := s.store.UpdateUserStatus(ctx, user.ID, store.UserStatusOnline, now); err != nil {
		return nil, nil, fmt.Errorf("update status: %w", err)
	}
	user.Status = store.UserStatusOnline
	user.LastSeen = now

	pair, err := s.issueTokens(user)
	if err != nil {
		return nil, nil, err
	}
	return user, pair, nil
}

// Logout marks the user offline and stamps last-seen.
func (s *Service) Logout(ctx context.Context, userID int64) error {
	if err := s.store.UpdateUserStatus(ctx, userID, store.UserStatusOffline, time.Now()); err != nil {
		return fmt.Errorf("update status: %w", err)
	}
	return nil
}

// Refresh validates a refresh token and issues a fresh token pair.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	claims, err := ValidateToken(s.jwtConfig, refreshToken)
	if err != nil {
		return nil, ErrInvalidToken
	}
	if claims.Type != TokenTypeRefresh {
		return nil, ErrInvalidToken
	}

	user, err := s.store.GetUserByID(ctx, claims.UserID)
	if err != nil {
		return nil, ErrIdentityNotFound
	}

	return s.issueTokens(user)
}

// Resolve maps a bearer token to a stable identity. It fails with
// ErrUnauthenticated when the token is absent, ErrInvalidToken when it is
// malformed or expired, and ErrIdentityNotFound when the encoded user no
// longer exists.
func (s *Service) Resolve(ctx context.Context, token string) (*Identity, error) {
	if token == "" {
		return nil, ErrUnauthenticated
	}

	claims, err := ValidateToken(s.jwtConfig, token)
	if err != nil {
		return nil, ErrInvalidToken
	}
	if claims.Type != TokenTypeAccess {
		return nil, ErrInvalidToken
	}

	user, err := s.store.GetUserByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrIdentityNotFound
		}
		return nil, fmt.Errorf("load user: %w", err)
	}

	return &Identity{ID: user.ID, Username: user.Username, Avatar: user.Avatar}, nil
}

// UpdateProfile applies a profile patch after checking username availability.
func (s *Service) UpdateProfile(ctx context.Context, userID int64, patch store.UserProfilePatch) (*store.User, error) {
	if patch.Username != nil {
		name := strings.TrimSpace(*patch.Username)
		if !usernameRe.MatchString(name) {
			return nil, ErrInvalidUsername
		}
		if existing, err := s.store.GetUserByUsername(ctx, name); err == nil && existing != nil && existing.ID != userID {
			return nil, ErrUserExists
		}
		patch.Username = &name
	}

	if err := s.store.UpdateUserProfile(ctx, userID, patch); err != nil {
		return nil, fmt.Errorf("update profile: %w", err)
	}
	return s.store.GetUserByID(ctx, userID)
}

// ChangePassword verifies the current password and stores a new hash.
func (s *Service) ChangePassword(ctx context.Context, userID int64, currentPassword, newPassword string) error {
	if len(newPassword) < 6 || !digitRe.MatchString(newPassword) {
		return ErrInvalidPassword
	}

	user, err := s.store.GetUserByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("load user: %w", err)
	}
	if errPwd := ComparePassword(user.PasswordHash, currentPassword); errPwd != nil {
		return ErrInvalidCredentials
	}

	hash, err := HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	if err := s.store.UpdateUserPassword(ctx, userID, hash); err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	return nil
}

// DeleteAccount verifies the password and removes the user. Rooms owned by
// the user are left in place; deleting them stays the owner's explicit call.
func (s *Service) DeleteAccount(ctx context.Context, userID int64, password string) error {
	user, err := s.store.GetUserByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("load user: %w", err)
	}
	if errPwd := ComparePassword(user.PasswordHash, password); errPwd != nil {
		return ErrInvalidCredentials
	}

	if err := s.store.DeleteUser(ctx, userID); err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	return nil
}

func (s *Service) issueTokens(user *store.User) (*TokenPair, error) {
	token, err := GenerateToken(s.jwtConfig, user.ID, user.Username, TokenTypeAccess)
	if err != nil {
		return nil, fmt.Errorf("generate token: %w", err)
	}
	refresh, err := GenerateToken(s.jwtConfig, user.ID, user.Username, TokenTypeRefresh)
	if err != nil {
		return nil, fmt.Errorf("generate refresh token: %w", err)
	}
	return &TokenPair{Token: token, RefreshToken: refresh}, nil
}

func defaultAvatar(username string) string {
	return "https://ui-avatars.com/api/?name=" + url.QueryEscape(username) + "&background=random"
}
