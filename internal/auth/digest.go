package auth

import (
	"crypto/hmac"
	"crypto/sha512"
	"crypto/subtle"
	"encoding/hex"
)

// hmacKey is the fixed HMAC key used for every password digest, per the
// protocol's auth scheme.
const hmacKey = "GGPO-NG"

// Digest computes hex(HMAC_SHA512(key="GGPO-NG", msg=password||salt)).
func Digest(password, salt string) string {
	mac := hmac.New(sha512.New, []byte(hmacKey))
	mac.Write([]byte(password))
	mac.Write([]byte(salt))
	return hex.EncodeToString(mac.Sum(nil))
}

// DigestEqual reports whether password matches the stored digest for
// salt, in constant time with respect to the comparison itself.
func DigestEqual(password, salt, stored string) bool {
	got := Digest(password, salt)
	return subtle.ConstantTimeCompare([]byte(got), []byte(stored)) == 1
}
