package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Domenick1991/flightdesk/internal/domain"
	"github.com/Domenick1991/flightdesk/internal/kafka"
	"github.com/Domenick1991/flightdesk/internal/repository"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

const MinPasswordLength = 8

var (
	ErrInvalidCredentials = errors.New("invalid email/username or password")
	ErrConflict           = errors.New("email or username already registered")
	ErrInvalidToken       = errors.New("invalid or expired token")
	ErrInvalidInput       = errors.New("invalid account data")
)

type AuthUseCase interface {
	Register(ctx context.Context, input RegisterInput) (*domain.User, error)
	Login(ctx context.Context, login, password string) (*Session, error)
	RequestPasswordReset(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, token, newPassword string) error
	ParseToken(token string) (*Claims, error)
}

type SessionStore interface {
	SetSession(ctx context.Context, key string, value any, ttl time.Duration) error
	GetSession(ctx context.Context, key string, dest any) (bool, error)
	DeleteSession(ctx context.Context, key string) error
}

type Producer interface {
	Publish(ctx context.Context, topic, key string, value interface{}) error
}

type RegisterInput struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Claims is the JWT payload issued on login.
type Claims struct {
	UserID int64  `json:"user_id"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

func (c *Claims) Admin() bool {
	return c.Role == domain.RoleAdmin
}

type Session struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expires_at"`
	User      *domain.User `json:"user"`
}

type resetTicket struct {
	UserID int64 `json:"user_id"`
}

type AuthService struct {
	users              repository.UserRepository
	sessions           SessionStore
	producer           Producer
	notificationsTopic string
	secret             []byte
	tokenTTL           time.Duration
	resetTTL           time.Duration
	now                func() time.Time
}

type AuthServiceOption func(*AuthService)

func WithClock(now func() time.Time) AuthServiceOption {
	return func(s *AuthService) {
		s.now = now
	}
}

func WithNotifications(producer Producer, topic string) AuthServiceOption {
	return func(s *AuthService) {
		s.producer = producer
		s.notificationsTopic = topic
	}
}

func NewAuthService(users repository.UserRepository, sessions SessionStore, secret string, tokenTTL, resetTTL time.Duration, opts ...AuthServiceOption) *AuthService {
	s := &AuthService{
		users:    users,
		sessions: sessions,
		secret:   []byte(secret),
		tokenTTL: tokenTTL,
		resetTTL: resetTTL,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*domain.User, error) {
	username := strings.TrimSpace(input.Username)
	email := strings.ToLower(strings.TrimSpace(input.Email))
	if username == "" || email == "" {
		return nil, fmt.Errorf("%w: username and email are required", ErrInvalidInput)
	}
	if !strings.Contains(email, "@") {
		return nil, fmt.Errorf("%w: email is malformed", ErrInvalidInput)
	}
	if len(input.Password) < MinPasswordLength {
		return nil, fmt.Errorf("%w: password must be at least %d characters", ErrInvalidInput, MinPasswordLength)
	}

	exists, err := s.users.Exists(ctx, email, username)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrConflict
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &domain.User{
		Username:     username,
		Email:        email,
		PasswordHash: string(hash),
		Role:         domain.RoleUser,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}
	log.WithField("user_id", user.ID).Info("user registered")
	return user, nil
}

func (s *AuthService) Login(ctx context.Context, login, password string) (*Session, error) {
	user, err := s.users.GetByLogin(ctx, strings.TrimSpace(login))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	expiresAt := s.now().Add(s.tokenTTL)
	claims := Claims{
		UserID: user.ID,
		Role:   user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(s.now()),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return nil, fmt.Errorf("failed to sign token: %w", err)
	}
	return &Session{Token: token, ExpiresAt: expiresAt, User: user}, nil
}

func (s *AuthService) ParseToken(token string) (*Claims, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(s.now), jwt.WithExpirationRequired())
	if err != nil || !parsed.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// RequestPasswordReset never reveals whether the email is registered.
func (s *AuthService) RequestPasswordReset(ctx context.Context, email string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return fmt.Errorf("%w: email is required", ErrInvalidInput)
	}

	user, err := s.users.GetByLogin(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil
		}
		return err
	}

	token := uuid.NewString()
	if err := s.sessions.SetSession(ctx, resetKey(token), resetTicket{UserID: user.ID}, s.resetTTL); err != nil {
		return fmt.Errorf("failed to store reset token: %w", err)
	}

	if s.producer != nil && s.notificationsTopic != "" {
		event := kafka.AccountEvent{
			Type:       kafka.EventPasswordResetRequested,
			Email:      user.Email,
			Username:   user.Username,
			ResetToken: token,
			ExpiresAt:  s.now().Add(s.resetTTL),
		}
		if err := s.producer.Publish(ctx, s.notificationsTopic, user.Email, event); err != nil {
			log.WithError(err).WithField("user_id", user.ID).Warn("failed to publish password reset")
		}
	}
	return nil
}

func (s *AuthService) ResetPassword(ctx context.Context, token, newPassword string) error {
	if token == "" {
		return ErrInvalidToken
	}
	if len(newPassword) < MinPasswordLength {
		return fmt.Errorf("%w: password must be at least %d characters", ErrInvalidInput, MinPasswordLength)
	}

	var ticket resetTicket
	found, err := s.sessions.GetSession(ctx, resetKey(token), &ticket)
	if err != nil {
		return err
	}
	if !found {
		return ErrInvalidToken
	}
	if err := s.sessions.DeleteSession(ctx, resetKey(token)); err != nil {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	if err := s.users.UpdatePassword(ctx, ticket.UserID, string(hash)); err != nil {
		return err
	}
	log.WithField("user_id", ticket.UserID).Info("password reset")
	return nil
}

func resetKey(token string) string {
	return "reset:" + token
}

var _ AuthUseCase = (*AuthService)(nil)
