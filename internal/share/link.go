package share

import "strings"

const (
	// ViewerPath is where the viewer page is served.
	ViewerPath = "/secret"
	// DataParam is the query parameter carrying the encoded Payload.
	DataParam = "d"
)

// BuildLink returns origin/secret?d=<Encode(p)>#<key>.
func BuildLink(origin string, p Payload, key string) string {
	var b strings.Builder
	b.WriteString(strings.TrimRight(origin, "/"))
	b.WriteString(ViewerPath)
	b.WriteString("?" + DataParam + "=")
	b.WriteString(Encode(p))
	b.WriteString("#")
	b.WriteString(key)
	return b.String()
}
