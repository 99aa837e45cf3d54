package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"instaclone/models"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"
)

// BcryptCost is lowered by tests.
var BcryptCost = bcrypt.DefaultCost

func HashPassword(plain string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(plain), BcryptCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func VerifyPassword(plain, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}

// Claims is the access token payload. Subject carries the user id in hex.
type Claims struct {
	jwt.RegisteredClaims
}

type AuthService struct {
	users    UserStore
	denylist TokenDenylist
	secret   []byte
	ttl      time.Duration
	now      func() time.Time
}

// NewAuthService returns an auth service signing tokens with secret. A nil
// denylist disables revocation.
func NewAuthService(users UserStore, denylist TokenDenylist, secret string, ttl time.Duration) *AuthService {
	return &AuthService{
		users:    users,
		denylist: denylist,
		secret:   []byte(secret),
		ttl:      ttl,
		now:      time.Now,
	}
}

func (s *AuthService) TTL() time.Duration { return s.ttl }

func (s *AuthService) CreateAccessToken(userID primitive.ObjectID) (string, error) {
	now := s.now()
	claims := Claims{jwt.RegisteredClaims{
		Subject:   userID.Hex(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		ID:        uuid.NewString(),
	}}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", internal("sign token", err)
	}
	return signed, nil
}

func (s *AuthService) parse(token string) (*Claims, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return nil, err
	}
	return claims, nil
}

// CurrentUser resolves the user a token was issued to. Every failure is
// reported as KindUnauthenticated except store errors.
func (s *AuthService) CurrentUser(ctx context.Context, token string) (*models.User, error) {
	if token == "" {
		return nil, newError(KindUnauthenticated, "Not authenticated.")
	}
	claims, err := s.parse(token)
	if err != nil {
		return nil, &Error{Kind: KindUnauthenticated, Message: "Invalid or expired token.", Err: err}
	}
	id, err := primitive.ObjectIDFromHex(claims.Subject)
	if err != nil {
		return nil, &Error{Kind: KindUnauthenticated, Message: "Invalid or expired token.", Err: err}
	}

	if s.denylist != nil && claims.ID != "" {
		revoked, err := s.denylist.IsRevoked(ctx, claims.ID)
		if err != nil {
			return nil, internal("check token revocation", err)
		}
		if revoked {
			return nil, newError(KindUnauthenticated, "Token has been revoked.")
		}
	}

	user, err := s.users.FindByID(ctx, id)
	if errors.Is(err, models.ErrNotFound) {
		return nil, newError(KindUnauthenticated, "User no longer exists.")
	}
	if err != nil {
		return nil, internal("load current user", err)
	}
	return user, nil
}

// Revoke denylists a still valid token until it expires. Invalid tokens
// are ignored; there is nothing to revoke.
func (s *AuthService) Revoke(ctx context.Context, token string) error {
	if s.denylist == nil || token == "" {
		return nil
	}
	claims, err := s.parse(token)
	if err != nil || claims.ID == "" || claims.ExpiresAt == nil {
		return nil
	}
	if err := s.denylist.Revoke(ctx, claims.ID, claims.ExpiresAt.Time); err != nil {
		return internal("revoke token", err)
	}
	return nil
}
