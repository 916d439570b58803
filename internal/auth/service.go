// Package auth provides the admin authentication service for the
// vault API. Creators log in with the admin password and receive a
// short-lived JWT that authorizes vault writes. The password gate is a
// casual deterrent, not a hardened boundary.
package auth

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

// Common errors returned by the auth service.
var (
	ErrInvalidToken     = errors.New("invalid token")
	ErrExpiredToken     = errors.New("token has expired")
	ErrInvalidPassword  = errors.New("invalid admin password")
	ErrMissingClaims    = errors.New("missing required claims")
	ErrInvalidSignature = errors.New("invalid token signature")
)

// AdminSubject is the subject claim stamped into admin tokens.
const AdminSubject = "vault-admin"

// Claims holds the validated claims of an admin token.
type Claims struct {
	Subject string
	Exp     time.Time
}

// Config holds authentication configuration. PasswordHash takes
// precedence over Password when both are set.
type Config struct {
	JWTSecret    []byte
	TokenExpiry  time.Duration
	Password     string
	PasswordHash string
}

// Service issues and validates admin tokens.
type Service struct {
	jwtSecret    []byte
	tokenExpiry  time.Duration
	password     string
	passwordHash string
	logger       *slog.Logger
}

// NewService creates a new authentication service.
func NewService(cfg *Config, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		jwtSecret:    cfg.JWTSecret,
		tokenExpiry:  cfg.TokenExpiry,
		password:     cfg.Password,
		passwordHash: cfg.PasswordHash,
		logger:       logger,
	}
}

// VerifyPassword checks a candidate admin password against the
// configured hash, or the plain configured password when no hash is
// set.
func (s *Service) VerifyPassword(candidate string) error {
	if s.passwordHash != "" {
		if err := bcrypt.CompareHashAndPassword([]byte(s.passwordHash), []byte(candidate)); err != nil {
			return ErrInvalidPassword
		}
		return nil
	}

	if s.password == "" || candidate != s.password {
		return ErrInvalidPassword
	}
	return nil
}

// Login verifies the admin password and returns a signed token.
func (s *Service) Login(password string) (string, error) {
	if err := s.VerifyPassword(password); err != nil {
		return "", err
	}
	return s.GenerateToken()
}

// GenerateToken creates a new admin JWT.
func (s *Service) GenerateToken() (string, error) {
	now := time.Now()
	exp := now.Add(s.tokenExpiry)

	claims := jwt.MapClaims{
		"sub": AdminSubject,
		"iat": now.Unix(),
		"exp": exp.Unix(),
		"nbf": now.Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signedToken, err := token.SignedString(s.jwtSecret)
	if err != nil {
		s.logger.Error("failed to sign token", "error", err)
		return "", fmt.Errorf("signing token: %w", err)
	}

	return signedToken, nil
}

// ValidateToken validates an admin JWT and returns its claims.
func (s *Service) ValidateToken(tokenString string) (*Claims, error) {
	if tokenString == "" {
		return nil, ErrInvalidToken
	}

	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.jwtSecret, nil
	})

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		if errors.Is(err, jwt.ErrSignatureInvalid) {
			return nil, ErrInvalidSignature
		}
		return nil, ErrInvalidToken
	}

	if !token.Valid {
		return nil, ErrInvalidToken
	}

	mapClaims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrInvalidToken
	}

	subject, ok := mapClaims["sub"].(string)
	if !ok || subject != AdminSubject {
		return nil, ErrMissingClaims
	}

	expFloat, ok := mapClaims["exp"].(float64)
	if !ok {
		return nil, ErrMissingClaims
	}

	return &Claims{
		Subject: subject,
		Exp:     time.Unix(int64(expFloat), 0),
	}, nil
}

// HashPassword creates a bcrypt hash suitable for ADMIN_PASSWORD_HASH.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hashing password: %w", err)
	}
	return string(hash), nil
}

// ExtractBearerToken extracts the token from a Bearer authorization header.
func ExtractBearerToken(authHeader string) string {
	if authHeader == "" {
		return ""
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}

	return strings.TrimSpace(parts[1])
}
