package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/aissms/reeval-backend/internal/config"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// Role distinguishes the three kinds of callers.
type Role string

const (
	RoleStudent   Role = "student"
	RoleEvaluator Role = "evaluator"
	RoleInstitute Role = "institute"
)

// Identity is the authenticated caller, threaded explicitly into every
// operation that acts on behalf of someone.
type Identity struct {
	Role    Role   `json:"role"`
	RegNo   string `json:"reg_no,omitempty"`
	College string `json:"college,omitempty"`
	UserID  int    `json:"user_id,omitempty"`
}

// subject is the session key component for an identity.
func (id Identity) subject() string {
	switch id.Role {
	case RoleStudent:
		return id.College + "|" + id.RegNo
	case RoleInstitute:
		return strconv.Itoa(id.UserID)
	default:
		return id.RegNo
	}
}

// Claims extends JWT standard claims with app-specific fields.
type Claims struct {
	jwt.RegisteredClaims
	Role    Role   `json:"role"`
	RegNo   string `json:"reg_no,omitempty"`
	College string `json:"college,omitempty"`
	UserID  int    `json:"user_id,omitempty"`
}

// Identity returns the caller described by the claims.
func (c *Claims) Identity() Identity {
	return Identity{Role: c.Role, RegNo: c.RegNo, College: c.College, UserID: c.UserID}
}

// AuthService handles JWT issuance and session bookkeeping.
type AuthService struct {
	cfg      *config.Config
	sessions SessionStore
}

// NewAuthService creates a new AuthService.
func NewAuthService(cfg *config.Config, sessions SessionStore) *AuthService {
	return &AuthService{cfg: cfg, sessions: sessions}
}

// HashPassword hashes a password with the configured bcrypt cost.
func (s *AuthService) HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cfg.BcryptCost)
	return string(hash), err
}

// CheckPassword compares a plaintext password against a bcrypt hash.
func (s *AuthService) CheckPassword(hash, password string) error {
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		return ErrInvalidCredentials
	}
	return nil
}

// IssueToken signs a token for id and makes it the active session,
// replacing any earlier one.
func (s *AuthService) IssueToken(ctx context.Context, id Identity) (string, error) {
	jti := uuid.New().String()
	now := time.Now()

	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        jti,
			Subject:   id.subject(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.cfg.JWTExpiry)),
		},
		Role:    id.Role,
		RegNo:   id.RegNo,
		College: id.College,
		UserID:  id.UserID,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.cfg.JWTSecret))
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}

	if err := s.sessions.Register(ctx, id.Role, id.subject(), jti, s.cfg.JWTExpiry); err != nil {
		return "", err
	}
	return signed, nil
}

// ValidateToken parses and validates a JWT, returning the claims.
func (s *AuthService) ValidateToken(tokenStr string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(s.cfg.JWTSecret), nil
	})
	if err != nil {
		return nil, fmt.Errorf("parse token: %w", err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token claims")
	}
	switch claims.Role {
	case RoleStudent, RoleEvaluator, RoleInstitute:
	default:
		return nil, fmt.Errorf("unknown role %q", claims.Role)
	}

	return claims, nil
}

// ValidateSession checks that the token's JTI is the active session.
func (s *AuthService) ValidateSession(ctx context.Context, claims *Claims) error {
	active, err := s.sessions.Active(ctx, claims.Role, claims.Identity().subject())
	if err != nil {
		return err
	}
	if active != claims.ID {
		return errSessionInvalidated
	}
	return nil
}

// Logout revokes the session the claims belong to.
func (s *AuthService) Logout(ctx context.Context, claims *Claims) error {
	return s.sessions.Revoke(ctx, claims.Role, claims.Identity().subject())
}
