// Package share packs a secret's title, envelope and burn flag into the
// URL-safe "d" parameter of a share link, and unpacks it again.
//
// The decryption key is never part of a Payload. BuildLink appends it as the
// URL fragment, which browsers do not send to the server.
package share

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"strings"
)

// Payload is the non-secret part of a share link. The JSON keys are short
// and stable so links created today keep opening later.
type Payload struct {
	// Title is the human-readable label shown above the secret.
	Title string `json:"t"`
	// Envelope is the base64 iv||ciphertext produced by envelope.Encrypt.
	Envelope string `json:"c"`
	// BurnAfterView asks the viewer to present the secret as one-time.
	// It is advisory only: nothing stops a link from being opened twice.
	BurnAfterView bool `json:"b"`
}

var urlSafe = strings.NewReplacer("+", "-", "/", "_")
var urlUnsafe = strings.NewReplacer("-", "+", "_", "/")

// Encode serializes p to canonical JSON and returns it as unpadded base64url.
func Encode(p Payload) string {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	// Encoding a struct of strings and a bool cannot fail.
	_ = enc.Encode(p)

	b64 := base64.StdEncoding.EncodeToString(bytes.TrimSuffix(buf.Bytes(), []byte("\n")))
	return strings.TrimRight(urlSafe.Replace(b64), "=")
}

// Decode reverses Encode. It reports ok=false for anything Encode could not
// have produced: characters outside the base64url alphabet, bad base64
// structure, malformed JSON, or missing or mistyped fields.
func Decode(s string) (p Payload, ok bool) {
	if s == "" || !isBase64URL(s) {
		return Payload{}, false
	}

	b64 := urlUnsafe.Replace(s)
	if rem := len(b64) % 4; rem != 0 {
		b64 += strings.Repeat("=", 4-rem)
	}
	raw, err := base64.StdEncoding.Strict().DecodeString(b64)
	if err != nil {
		return Payload{}, false
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return Payload{}, false
	}
	if !decodeField(fields, "t", &p.Title) ||
		!decodeField(fields, "c", &p.Envelope) ||
		!decodeField(fields, "b", &p.BurnAfterView) {
		return Payload{}, false
	}
	return p, true
}

// decodeField unmarshals fields[name] into dst, rejecting absent and null values.
func decodeField(fields map[string]json.RawMessage, name string, dst any) bool {
	raw, found := fields[name]
	if !found || bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		return false
	}
	return json.Unmarshal(raw, dst) == nil
}

func isBase64URL(s string) bool {
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= 'A' && c <= 'Z', c >= 'a' && c <= 'z', c >= '0' && c <= '9', c == '-', c == '_':
		default:
			return false
		}
	}
	return true
}
