package cybersource

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"strings"
)

// GenerateDigest returns the Digest header value for a request body:
// SHA-256=<base64(sha256(body))>
func GenerateDigest(body []byte) string {
	sum := sha256.Sum256(body)
	return "SHA-256=" + base64.StdEncoding.EncodeToString(sum[:])
}

// BuildSignature builds the HTTP Signature header value for a request. The
// signed headers are host, date, (request-target), digest (bodied requests
// only) and v-c-merchant-id, in that order. The shared secret is
// base64-encoded in configuration and decoded before signing.
func BuildSignature(keyID, secretKey, merchantID, host, method, path, date, digest string) (string, error) {
	key, err := base64.StdEncoding.DecodeString(secretKey)
	if err != nil {
		return "", fmt.Errorf("decode secret key: %w", err)
	}

	headers := []string{"host", "date", "(request-target)"}
	lines := []string{
		"host: " + host,
		"date: " + date,
		fmt.Sprintf("(request-target): %s %s", strings.ToLower(method), path),
	}
	if digest != "" {
		headers = append(headers, "digest")
		lines = append(lines, "digest: "+digest)
	}
	headers = append(headers, "v-c-merchant-id")
	lines = append(lines, "v-c-merchant-id: "+merchantID)

	mac := hmac.New(sha256.New, key)
	mac.Write([]byte(strings.Join(lines, "\n")))
	signature := base64.StdEncoding.EncodeToString(mac.Sum(nil))

	return fmt.Sprintf(`keyid="%s", algorithm="HmacSHA256", headers="%s", signature="%s"`,
		keyID, strings.Join(headers, " "), signature), nil
}

// ValidateSignature recomputes a signature and compares in constant time.
// Used by tests to verify outbound requests.
func ValidateSignature(keyID, secretKey, merchantID, host, method, path, date, digest, header string) bool {
	expected, err := BuildSignature(keyID, secretKey, merchantID, host, method, path, date, digest)
	if err != nil {
		return false
	}
	return hmac.Equal([]byte(expected), []byte(header))
}
