package jwt

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Claims is the decoded token payload the middleware cares about.
type Claims struct {
	UserID uuid.UUID
	Role   string
	JTI    string
}

// Issue signs an HS256 token for the user. The jti claim identifies the
// session so the session store can revoke it later.
func Issue(secret string, userID uuid.UUID, role string, ttl time.Duration) (token string, jti string, err error) {
	jti = uuid.NewString()
	claims := jwt.MapClaims{
		"sub":  userID.String(),
		"role": role,
		"jti":  jti,
		"exp":  time.Now().Add(ttl).Unix(),
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	token, err = t.SignedString([]byte(secret))
	return token, jti, err
}

// FromClaims pulls out the fields of an already-verified token.
func FromClaims(mc jwt.MapClaims) (*Claims, error) {
	sub, _ := mc["sub"].(string)
	userID, err := uuid.Parse(sub)
	if err != nil {
		return nil, errors.New("sub missing in claims")
	}
	jti, _ := mc["jti"].(string)
	if jti == "" {
		return nil, errors.New("jti missing in claims")
	}
	role, _ := mc["role"].(string)
	return &Claims{UserID: userID, Role: role, JTI: jti}, nil
}
