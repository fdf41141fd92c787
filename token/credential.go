// api/token/credential.go
package token

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/spf13/afero"

	gate_errors "github.com/dev-mohitbeniwal/datagate/api/errors"
	"github.com/dev-mohitbeniwal/datagate/api/model"
)

// Claims is the payload of the signed credential handed to callers. The
// credential is self-describing but never authoritative on its own: every
// verification goes back to the registry by token id.
type Claims struct {
	TokenID     string   `json:"token_id"`
	UserEmail   string   `json:"user_email"`
	Permissions []string `json:"permissions"`
	Datasets    []string `json:"datasets"`
	jwt.RegisteredClaims
}

func encodeCredential(signingKey []byte, t *model.AccessToken) (string, error) {
	claims := Claims{
		TokenID:     t.TokenID,
		UserEmail:   t.UserEmail,
		Permissions: t.Permissions,
		Datasets:    t.Datasets,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(t.CreatedAt),
			ExpiresAt: jwt.NewNumericDate(t.ExpiresAt),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(signingKey)
}

// decodeCredential checks the signature and structure only. Expiry is
// deliberately not validated here: the registry entry is the authority on
// lifetime, and an expired token must surface as token_expired after the
// registry lookup, not as a malformed credential.
func decodeCredential(signingKey []byte, credential string) (*Claims, error) {
	parsed, err := jwt.ParseWithClaims(credential, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return signingKey, nil
	}, jwt.WithoutClaimsValidation())
	if err != nil {
		return nil, err
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, fmt.Errorf("invalid credential or wrong claims type")
	}
	return claims, nil
}

// LoadSigningKey reads the HS256 secret from the key file, generating a
// fresh one on first start. The key file is created with owner-only
// permissions. Any failure here is a configuration error and fatal at
// startup.
func LoadSigningKey(fs afero.Fs, path string) ([]byte, error) {
	exists, err := afero.Exists(fs, path)
	if err != nil {
		return nil, fmt.Errorf("%w: cannot stat signing key file %s: %v", gate_errors.ErrConfig, path, err)
	}

	if exists {
		data, err := afero.ReadFile(fs, path)
		if err != nil {
			return nil, fmt.Errorf("%w: cannot read signing key file %s: %v", gate_errors.ErrConfig, path, err)
		}
		key := strings.TrimSpace(string(data))
		if key == "" {
			return nil, fmt.Errorf("%w: signing key file %s is empty", gate_errors.ErrConfig, path)
		}
		return []byte(key), nil
	}

	if err := fs.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("%w: cannot create key directory: %v", gate_errors.ErrConfig, err)
	}
	secret := randomURLSafe(32)
	if err := afero.WriteFile(fs, path, []byte(secret), 0o600); err != nil {
		return nil, fmt.Errorf("%w: cannot write signing key file %s: %v", gate_errors.ErrConfig, path, err)
	}
	return []byte(secret), nil
}

// randomURLSafe returns a URL-safe random string carrying n bytes of entropy.
func randomURLSafe(n int) string {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		panic(err) // crypto/rand failure is unrecoverable
	}
	return base64.RawURLEncoding.EncodeToString(buf)
}

func newTokenID() string {
	return randomURLSafe(16)
}
