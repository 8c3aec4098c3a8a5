package jwt

import (
	"errors"
	"strings"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const RoleAdmin = "admin"

var (
	ErrTokenExpired = errors.New("token expired")
	ErrTokenInvalid = errors.New("token invalid")
)

// Claims mirror what the external identity service issues. This service only
// validates; token issuance happens outside this system.
type Claims struct {
	UserID uuid.UUID `json:"user_id"`
	Email  string    `json:"email,omitempty"`
	Role   string    `json:"role,omitempty"`

	jwtlib.RegisteredClaims
}

func (c Claims) IsAdmin() bool {
	return strings.EqualFold(c.Role, RoleAdmin)
}

type Service interface {
	ValidateToken(tokenString string) (Claims, error)
}

type HMACService struct {
	secret []byte
	now    func() time.Time
}

func NewHMACService(secret string) *HMACService {
	return &HMACService{secret: []byte(secret), now: time.Now}
}

func (s *HMACService) ValidateToken(tokenString string) (Claims, error) {
	claims := Claims{}
	token, err := jwtlib.ParseWithClaims(tokenString, &claims, func(t *jwtlib.Token) (any, error) {
		if _, ok := t.Method.(*jwtlib.SigningMethodHMAC); !ok {
			return nil, ErrTokenInvalid
		}
		return s.secret, nil
	}, jwtlib.WithTimeFunc(s.now))
	if err != nil {
		if errors.Is(err, jwtlib.ErrTokenExpired) {
			return Claims{}, ErrTokenExpired
		}
		return Claims{}, ErrTokenInvalid
	}
	if !token.Valid {
		return Claims{}, ErrTokenInvalid
	}
	if claims.UserID == uuid.Nil {
		return Claims{}, ErrTokenInvalid
	}
	return claims, nil
}

var _ Service = (*HMACService)(nil)
