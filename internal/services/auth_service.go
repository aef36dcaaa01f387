package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"ondot-chat/config"
	"ondot-chat/internal/domain/user"
	"ondot-chat/internal/repository"
	ondot_errors "ondot-chat/pkg/errors"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type AuthService struct {
	userRepo  repository.UserRepository
	cache     SessionCache
	jwtSecret []byte
	accessTTL time.Duration
	logger    *zap.Logger
	now       func() time.Time
}

// NewAuthService builds the token and session validator. cache may be nil.
func NewAuthService(userRepo repository.UserRepository, cache SessionCache, cfg *config.Config, logger *zap.Logger) *AuthService {
	return &AuthService{
		userRepo:  userRepo,
		cache:     cache,
		jwtSecret: []byte(cfg.JWTSecret),
		accessTTL: cfg.AccessTokenTTL(),
		logger:    logger,
		now:       time.Now,
	}
}

type AccessClaims struct {
	UserID    string `json:"sub"`
	SessionID string `json:"sid"`
	jwt.RegisteredClaims
}

// Identity is the authenticated caller bound to a connection or request.
type Identity struct {
	UserID    uuid.UUID
	SessionID uuid.UUID
}

// Authenticate validates the token signature and expiry, then checks that
// the embedded session is still live. Every failure is ErrUnauthorized
// except infrastructure errors.
func (s *AuthService) Authenticate(ctx context.Context, token string) (Identity, error) {
	claims, err := s.ParseAccessToken(token)
	if err != nil {
		return Identity{}, err
	}

	userID, err := uuid.Parse(claims.UserID)
	if err != nil {
		return Identity{}, ondot_errors.ErrUnauthorized
	}
	sessionID, err := uuid.Parse(claims.SessionID)
	if err != nil {
		return Identity{}, ondot_errors.ErrUnauthorized
	}

	if _, err := s.ValidateSession(ctx, sessionID, userID); err != nil {
		return Identity{}, err
	}
	return Identity{UserID: userID, SessionID: sessionID}, nil
}

func (s *AuthService) ParseAccessToken(tokenString string) (AccessClaims, error) {
	if tokenString == "" {
		return AccessClaims{}, ondot_errors.ErrUnauthorized
	}

	parsed, err := jwt.ParseWithClaims(tokenString, &AccessClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ondot_errors.ErrUnauthorized
		}
		return s.jwtSecret, nil
	}, jwt.WithTimeFunc(s.now), jwt.WithExpirationRequired())
	if err != nil {
		return AccessClaims{}, ondot_errors.ErrUnauthorized
	}

	claims, ok := parsed.Claims.(*AccessClaims)
	if !ok || !parsed.Valid {
		return AccessClaims{}, ondot_errors.ErrUnauthorized
	}

	return *claims, nil
}

func (s *AuthService) ValidateSession(ctx context.Context, sessionID uuid.UUID, userID uuid.UUID) (user.UserSession, error) {
	session, err := s.loadSession(ctx, sessionID)
	if errors.Is(err, ondot_errors.ErrNotFound) {
		return user.UserSession{}, ondot_errors.ErrUnauthorized
	}
	if err != nil {
		return user.UserSession{}, err
	}
	if session.UserID != userID || !session.Valid(s.now()) {
		return user.UserSession{}, ondot_errors.ErrUnauthorized
	}
	return session, nil
}

func (s *AuthService) loadSession(ctx context.Context, sessionID uuid.UUID) (user.UserSession, error) {
	if s.cache != nil {
		cached, ok, err := s.cache.GetSession(ctx, sessionID)
		if err != nil {
			s.logger.Warn("session cache read failed", zap.String("session_id", sessionID.String()), zap.Error(err))
		} else if ok {
			return cached, nil
		}
	}

	session, err := s.userRepo.GetSessionByID(ctx, sessionID)
	if err != nil {
		return user.UserSession{}, err
	}
	if s.cache != nil {
		if err := s.cache.SetSession(ctx, session); err != nil {
			s.logger.Warn("session cache write failed", zap.String("session_id", sessionID.String()), zap.Error(err))
		}
	}
	return session, nil
}

// RevokeSession marks the session revoked. Connections already bound with
// it stay open until they disconnect.
func (s *AuthService) RevokeSession(ctx context.Context, sessionID uuid.UUID) error {
	if err := s.userRepo.RevokeSession(ctx, sessionID); err != nil {
		return err
	}
	if s.cache != nil {
		if err := s.cache.InvalidateSession(ctx, sessionID); err != nil {
			return fmt.Errorf("invalidate cached session: %w", err)
		}
	}
	return nil
}

// IssueAccessToken signs an HS256 access token for an existing session.
func (s *AuthService) IssueAccessToken(userID, sessionID uuid.UUID) (string, error) {
	now := s.now()
	claims := AccessClaims{
		UserID:    userID.String(),
		SessionID: sessionID.String(),
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(s.accessTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.jwtSecret)
}

type ctxKey string

var identityKey ctxKey = "identity"

func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityKey, id)
}

func IdentityFromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityKey).(Identity)
	return id, ok
}
