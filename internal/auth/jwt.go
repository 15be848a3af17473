package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	RoleAnon    = "anon"
	RoleService = "service_role"
)

const issuer = "unsent"

// JWT signs and verifies HS256 API keys carrying a role claim, the same
// shape as hosted "anon" keys.
type JWT struct {
	secret []byte
}

func NewJWT(secret string) *JWT {
	return &JWT{secret: []byte(secret)}
}

// Sign mints a key for role. A ttl of zero produces a key without expiry.
func (j *JWT) Sign(role string, ttl time.Duration) (string, error) {
	if role != RoleAnon && role != RoleService {
		return "", errors.New("unknown role")
	}
	now := time.Now()
	claims := jwt.MapClaims{
		"iss":  issuer,
		"role": role,
		"iat":  now.Unix(),
	}
	if ttl > 0 {
		claims["exp"] = now.Add(ttl).Unix()
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString(j.secret)
}

func (j *JWT) Verify(tokenStr string) error {
	t, err := jwt.Parse(tokenStr, func(token *jwt.Token) (any, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, errors.New("unexpected signing method")
		}
		return j.secret, nil
	}, jwt.WithIssuer(issuer))
	if err != nil || !t.Valid {
		return errors.New("invalid token")
	}

	claims, ok := t.Claims.(jwt.MapClaims)
	if !ok {
		return errors.New("invalid claims")
	}

	role, _ := claims["role"].(string)
	if role != RoleAnon && role != RoleService {
		return errors.New("invalid role")
	}
	return nil
}
