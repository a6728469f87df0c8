package orders

import (
	"net/http"
	"regexp"
	"strings"
)

// ImagesPrefix is the path under which the static image directory is served.
const ImagesPrefix = "/images/"

var (
	absoluteURLPattern = regexp.MustCompile(`(?i)^https?://`)
	imagesSegment      = regexp.MustCompile(`(?i)^images(/|$)`)
)

// ResolveImageURL returns the display URL for a stored image reference.
// Absolute http(s) URLs are returned unchanged; bare filenames and /images/ paths are
// joined to hostURL so the result holds exactly one /images/ segment.
func ResolveImageURL(image, hostURL string) string {
	s := strings.TrimSpace(image)
	if s == "" {
		return ""
	}
	if absoluteURLPattern.MatchString(s) {
		return s
	}
	file := strings.TrimLeft(s, "/")
	for imagesSegment.MatchString(file) {
		file = strings.TrimLeft(file[len("images"):], "/")
	}
	return strings.TrimRight(hostURL, "/") + ImagesPrefix + file
}

// HostURL picks the base used for image links. A non-blank baseURL always wins so
// links stay stable behind proxies; otherwise the request's scheme and Host are used.
// X-Forwarded-Proto is honoured only when trustProxy is set.
func HostURL(r *http.Request, baseURL string, trustProxy bool) string {
	if b := strings.TrimSpace(baseURL); b != "" {
		return strings.TrimRight(b, "/")
	}
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if trustProxy {
		if proto := r.Header.Get("X-Forwarded-Proto"); proto != "" {
			scheme = strings.ToLower(strings.TrimSpace(strings.Split(proto, ",")[0]))
		}
	}
	return scheme + "://" + r.Host
}
