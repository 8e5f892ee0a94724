package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"multiplicadores/internal/config"
	"multiplicadores/internal/model"
	"multiplicadores/internal/repository"
)

var (
	ErrBadCredentials = errors.New("invalid username or password")
	ErrTokenExpired   = errors.New("token expired")
	ErrTokenInvalid   = errors.New("invalid token")
)

// Claims is the JWT payload for authenticated admin requests.
type Claims struct {
	Role string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

// LoginResult carries the issued token and its lifetime in seconds.
type LoginResult struct {
	Token     string
	ExpiresIn int
}

// AuthService issues and verifies the stateless bearer tokens protecting
// the administrative endpoints.
type AuthService interface {
	// Login verifies the credentials and issues an HS256 token.
	Login(ctx context.Context, username, password string) (*LoginResult, error)

	// VerifyToken validates signature and expiry, returning the claims.
	VerifyToken(token string) (*Claims, error)

	// Register creates an admin account with a bcrypt-hashed password.
	Register(ctx context.Context, username, password, role string) (*model.User, error)
}

type authService struct {
	cfg  config.AuthConfig
	repo repository.UserRepository
}

func NewAuthService(cfg config.AuthConfig, repo repository.UserRepository) AuthService {
	return &authService{cfg: cfg, repo: repo}
}

func (s *authService) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	u, err := s.repo.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrBadCredentials
		}
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return nil, ErrBadCredentials
	}

	now := time.Now()
	claims := Claims{
		Role: u.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   u.Username,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.cfg.TokenTTL)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.cfg.SecretKey))
	if err != nil {
		return nil, fmt.Errorf("sign token: %w", err)
	}
	return &LoginResult{Token: token, ExpiresIn: int(s.cfg.TokenTTL.Seconds())}, nil
}

func (s *authService) VerifyToken(token string) (*Claims, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return []byte(s.cfg.SecretKey), nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrTokenInvalid
	}
	return claims, nil
}

func (s *authService) Register(ctx context.Context, username, password, role string) (*model.User, error) {
	if username == "" || password == "" {
		return nil, ErrBadCredentials
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	now := time.Now().UTC()
	return s.repo.Create(ctx, &model.User{
		Username:     username,
		PasswordHash: string(hash),
		Role:         role,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
}
