package sessions

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"strings"
)

// CookieName is the session cookie issued on login.
const CookieName = "vault_session"

// Codec signs session ids so the cookie value is tamper-evident. The id stays
// opaque; only its integrity is protected.
type Codec struct {
	secret []byte
}

// NewCodec builds a Codec from the session secret.
func NewCodec(secret string) Codec {
	return Codec{secret: []byte(secret)}
}

// Encode returns "<id>.<base64url hmac-sha256>".
func (c Codec) Encode(id string) string {
	return id + "." + c.sign(id)
}

// Decode verifies the signature and returns the embedded session id.
func (c Codec) Decode(value string) (string, error) {
	id, sig, ok := strings.Cut(value, ".")
	if !ok || id == "" {
		return "", errors.New("malformed session cookie")
	}
	if !hmac.Equal([]byte(sig), []byte(c.sign(id))) {
		return "", errors.New("session cookie signature mismatch")
	}
	return id, nil
}

func (c Codec) sign(id string) string {
	mac := hmac.New(sha256.New, c.secret)
	mac.Write([]byte(id))
	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}
