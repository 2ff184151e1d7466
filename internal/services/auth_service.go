package services

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"paperback/internal/domain"
	"paperback/internal/repos"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrBadCreds     = errors.New("invalid email or password")
	ErrEmailTaken   = errors.New("email already registered")
	ErrTokenInvalid = errors.New("invalid or expired token")
)

// Claims carried by every bearer token.
type Claims struct {
	UserID string `json:"uid"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// TokenRevoker blacklists token ids until they expire on their own.
// Nil revoker means logout is purely client-side.
type TokenRevoker interface {
	Revoke(ctx context.Context, jti string, ttl time.Duration) error
	IsRevoked(ctx context.Context, jti string) bool
}

type AuthService struct {
	Users   *repos.UserRepo
	Secret  []byte
	TTL     time.Duration
	Revoker TokenRevoker
}

func (s *AuthService) Register(name, email, password string) (*domain.User, error) {
	if _, err := s.Users.ByEmail(email); err == nil {
		return nil, ErrEmailTaken
	} else if err != sql.ErrNoRows {
		return nil, err
	}
	h, err := bcrypt.GenerateFromPassword([]byte(password), 12)
	if err != nil {
		return nil, err
	}
	u := &domain.User{
		ID:    uuid.NewString(),
		Name:  name,
		Email: email,
		Hash:  string(h),
		Role:  domain.RoleUser,
	}
	if err := s.Users.Create(u); err != nil {
		return nil, err
	}
	return u, nil
}

func (s *AuthService) Login(email, password string) (*domain.User, string, error) {
	u, err := s.Users.ByEmail(email)
	if err != nil {
		return nil, "", ErrBadCreds
	}
	if bcrypt.CompareHashAndPassword([]byte(u.Hash), []byte(password)) != nil {
		return nil, "", ErrBadCreds
	}
	tok, err := s.IssueToken(u)
	if err != nil {
		return nil, "", err
	}
	return u, tok, nil
}

// GoogleLogin resolves an OAuth profile to a local account, creating or
// linking one as needed, and issues a bearer token for it.
func (s *AuthService) GoogleLogin(googleID, email, name string) (*domain.User, string, error) {
	u, err := s.Users.ByGoogleID(googleID)
	if err == sql.ErrNoRows {
		// Same email already registered with a password: link it.
		if u, err = s.Users.ByEmail(email); err == nil {
			if err := s.Users.LinkGoogle(u.ID, googleID); err != nil {
				return nil, "", err
			}
		} else if err == sql.ErrNoRows {
			// Brand-new account; password login stays disabled (random hash).
			h, herr := bcrypt.GenerateFromPassword([]byte(uuid.NewString()), 12)
			if herr != nil {
				return nil, "", herr
			}
			u = &domain.User{
				ID:       uuid.NewString(),
				Name:     name,
				Email:    email,
				Hash:     string(h),
				Role:     domain.RoleUser,
				GoogleID: googleID,
			}
			if err := s.Users.Create(u); err != nil {
				return nil, "", err
			}
		} else {
			return nil, "", err
		}
	} else if err != nil {
		return nil, "", err
	}

	tok, err := s.IssueToken(u)
	if err != nil {
		return nil, "", err
	}
	return u, tok, nil
}

func (s *AuthService) IssueToken(u *domain.User) (string, error) {
	now := time.Now()
	claims := Claims{
		UserID: u.ID,
		Role:   u.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   u.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.TTL)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.Secret)
}

func (s *AuthService) ParseToken(ctx context.Context, tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		return s.Secret, nil
	})
	if err != nil || !token.Valid {
		return nil, ErrTokenInvalid
	}
	if s.Revoker != nil && s.Revoker.IsRevoked(ctx, claims.ID) {
		return nil, ErrTokenInvalid
	}
	return claims, nil
}

// Logout revokes the token's jti for its remaining lifetime.
func (s *AuthService) Logout(ctx context.Context, claims *Claims) error {
	if s.Revoker == nil || claims.ExpiresAt == nil {
		return nil
	}
	ttl := time.Until(claims.ExpiresAt.Time)
	if ttl <= 0 {
		return nil
	}
	return s.Revoker.Revoke(ctx, claims.ID, ttl)
}

func (s *AuthService) ChangePassword(userID, current, next string) error {
	u, err := s.Users.ByID(userID)
	if err != nil {
		return err
	}
	if bcrypt.CompareHashAndPassword([]byte(u.Hash), []byte(current)) != nil {
		return ErrBadCreds
	}
	h, err := bcrypt.GenerateFromPassword([]byte(next), 12)
	if err != nil {
		return err
	}
	return s.Users.UpdatePassword(userID, string(h))
}
