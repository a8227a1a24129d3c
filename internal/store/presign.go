package store

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/maxiofs/signer/internal/sigv4"
)

// maxPresignExpiry is the longest validity the protocol allows (7 days).
const maxPresignExpiry = 7 * 24 * time.Hour

// Presign produces a self-contained authenticated GET URL for an object
// path, valid for the given duration from the moment of the call. The URL
// embeds the signature in its query string; fetching it requires no further
// authentication. No network call is made.
func (c *Client) Presign(path string, expires time.Duration) (string, error) {
	if !c.cfg.HasCredentials() {
		return "", ErrNoCredentials
	}
	if !strings.HasPrefix(path, "/") {
		return "", fmt.Errorf("object path %q must start with /", path)
	}
	if expires <= 0 {
		return "", fmt.Errorf("expiry must be positive, got %s", expires)
	}
	if expires > maxPresignExpiry {
		return "", fmt.Errorf("expiry cannot exceed %s", maxPresignExpiry)
	}

	now := c.clock()
	scope := sigv4.ScopeFor(now, c.cfg.Region)
	host := c.endpointHost()

	query := map[string]string{
		"X-Amz-Algorithm":     sigv4.Algorithm,
		"X-Amz-Credential":    c.cfg.AccessKey + "/" + scope.String(),
		"X-Amz-Date":          sigv4.FormatDateTime(now),
		"X-Amz-Expires":       strconv.FormatInt(int64(expires.Seconds()), 10),
		"X-Amz-SignedHeaders": "host",
	}

	cr := sigv4.CanonicalRequest{
		Method:  "GET",
		Path:    path,
		Query:   query,
		Headers: map[string]string{"host": host},
	}

	stringToSign := sigv4.StringToSign(sigv4.FormatDateTime(now), scope, cr.Build())
	signature := sigv4.Sign(sigv4.DeriveKey(c.cfg.SecretKey, scope), stringToSign)

	query["X-Amz-Signature"] = signature
	return fmt.Sprintf("%s%s?%s",
		strings.TrimSuffix(c.cfg.Endpoint, "/"),
		sigv4.EncodePath(path),
		sigv4.CanonicalQueryString(query),
	), nil
}
