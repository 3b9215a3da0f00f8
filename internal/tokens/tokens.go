package tokens

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/helperkit/tagstore/internal/config"
	"github.com/helperkit/tagstore/internal/models"
	"github.com/helperkit/tagstore/pkg/middleware"
)

// GenerateAccessToken creates a signed JWT access token for the editor
func GenerateAccessToken(cfg *config.Config, e *models.Editor, ttl time.Duration) (string, error) {
	claims := jwt.MapClaims{
		"sub":  e.Username,
		"name": e.DisplayName,
		"role": e.Role,
		"iat":  time.Now().Unix(),
		"exp":  time.Now().Add(ttl).Unix(),
	}
	jt := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return jt.SignedString([]byte(cfg.Auth.JWTSecret))
}

// hmacToken adapts verified jwt claims to the middleware Token interface.
type hmacToken struct {
	claims jwt.MapClaims
}

func (t *hmacToken) Claims(v interface{}) error {
	b, err := json.Marshal(t.claims)
	if err != nil {
		return err
	}
	return json.Unmarshal(b, v)
}

// HMACVerifier validates HS256 access tokens issued by GenerateAccessToken.
// It implements middleware.Verifier, the same seam the OIDC verifier plugs into.
type HMACVerifier struct {
	secret []byte
}

func NewHMACVerifier(secret string) *HMACVerifier {
	return &HMACVerifier{secret: []byte(secret)}
}

func (v *HMACVerifier) Verify(ctx context.Context, raw string) (middleware.Token, error) {
	parsed, err := jwt.Parse(raw, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return v.secret, nil
	})
	if err != nil {
		return nil, err
	}
	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return nil, errors.New("unexpected claims type")
	}
	return &hmacToken{claims: claims}, nil
}
