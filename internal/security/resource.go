package security

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"strings"
)

func SignResource(secret string, parts ...string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(strings.Join(parts, ":")))
	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}

// SignValue returns "value.signature".
func SignValue(secret string, value string) string {
	return value + "." + SignResource(secret, value)
}

// VerifyValue checks a string produced by SignValue and returns the value.
func VerifyValue(secret string, signed string) (string, bool) {
	idx := strings.LastIndexByte(signed, '.')
	if idx <= 0 || idx == len(signed)-1 {
		return "", false
	}
	value, signature := signed[:idx], signed[idx+1:]
	expected := SignResource(secret, value)
	if !hmac.Equal([]byte(signature), []byte(expected)) {
		return "", false
	}
	return value, true
}
