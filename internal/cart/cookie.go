package cart

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"strings"
)

var ErrBadSignature = errors.New("cart cookie signature mismatch")

// Encode signs the JSON form of the cart so it can live in a cookie.
func Encode(secret []byte, c Cart) (string, error) {
	b, err := json.Marshal(c)
	if err != nil {
		return "", err
	}
	h := hmac.New(sha256.New, secret)
	h.Write(b)
	sig := base64.RawURLEncoding.EncodeToString(h.Sum(nil))
	return sig + "." + base64.RawURLEncoding.EncodeToString(b), nil
}

func Decode(secret []byte, value string) (Cart, error) {
	parts := strings.SplitN(value, ".", 2)
	if len(parts) != 2 {
		return Cart{}, ErrBadSignature
	}
	sig, err := base64.RawURLEncoding.DecodeString(parts[0])
	if err != nil {
		return Cart{}, ErrBadSignature
	}
	payload, err := base64.RawURLEncoding.DecodeString(parts[1])
	if err != nil {
		return Cart{}, ErrBadSignature
	}
	h := hmac.New(sha256.New, secret)
	h.Write(payload)
	if !hmac.Equal(sig, h.Sum(nil)) {
		return Cart{}, ErrBadSignature
	}
	var c Cart
	if err := json.Unmarshal(payload, &c); err != nil {
		return Cart{}, err
	}
	return c, nil
}
