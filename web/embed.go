// Package web embeds the static recipient page. The page decodes the link and
// decrypts the secret in the browser; the key in the URL fragment never
// reaches the server.
package web

import _ "embed"

// ViewerHTML is the recipient page served at /secret.
//
//go:embed viewer.html
var ViewerHTML []byte
