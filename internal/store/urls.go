package store

import "regexp"

// Store URL shapes we have handed out over time: legacy path-style first,
// then virtual-hosted-style.
var (
	pathStyleURL    = regexp.MustCompile(`^https://s3\.amazonaws\.com/[^/]+(/.+)$`)
	virtualHostsURL = regexp.MustCompile(`^https://[^/]+\.amazonaws\.com(/.+)$`)
)

// ObjectPath extracts the object path from a store URL. It recognizes
// legacy path-style URLs (https://s3.amazonaws.com/<bucket>/<path>) and
// virtual-hosted-style URLs (https://<host>.amazonaws.com/<path>). The
// second return value is false when the URL is not one of ours.
func ObjectPath(rawURL string) (string, bool) {
	if rawURL == "" {
		return "", false
	}
	if m := pathStyleURL.FindStringSubmatch(rawURL); m != nil {
		return m[1], true
	}
	if m := virtualHostsURL.FindStringSubmatch(rawURL); m != nil {
		return m[1], true
	}
	return "", false
}
