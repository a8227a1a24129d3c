package store

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"time"

	"github.com/maxiofs/signer/internal/sigv4"
)

const (
	// policyLifetime bounds how long a browser may hold an upload grant.
	policyLifetime = 5 * time.Minute

	// maxUploadBytes is the content-length-range upper bound (500 MiB),
	// enforced by the store against the signed policy.
	maxUploadBytes = 524288000

	// uploadACL is the only ACL a policy-holder may request.
	uploadACL = "private"

	expirationFormat = "2006-01-02T15:04:05Z"
)

// PostPolicyGrant is the bundle a browser needs to POST a file directly to
// the store. It is handed out and forgotten; nothing is retained server-side.
type PostPolicyGrant struct {
	Bucket string     `json:"bucket"`
	Region string     `json:"region"`
	Auth   PolicyAuth `json:"auth"`
}

// PolicyAuth carries the multipart form fields of a signed policy.
type PolicyAuth struct {
	Policy     string `json:"policy"`     // base64 policy document
	Key        string `json:"key"`        // access key ID
	Signature  string `json:"signature"`  // x-amz-signature form field
	Credential string `json:"credential"` // x-amz-credential form field
	Date       string `json:"date"`       // x-amz-date form field
}

// PostPolicy builds a signed upload policy constraining uploads to keys
// under the given prefix. The second return value is false when no secret
// key is configured: browser-direct uploads are then a disabled feature,
// not an error.
func (c *Client) PostPolicy(prefix string) (*PostPolicyGrant, bool) {
	if !c.cfg.HasCredentials() {
		return nil, false
	}

	now := c.clock()
	scope := sigv4.ScopeFor(now, c.cfg.Region)
	dateTime := sigv4.FormatDateTime(now)
	credential := c.cfg.AccessKey + "/" + scope.String()

	doc := map[string]interface{}{
		"expiration": now.Add(policyLifetime).UTC().Format(expirationFormat),
		"conditions": []interface{}{
			map[string]string{"bucket": c.cfg.Bucket},
			[]string{"starts-with", "$key", prefix},
			map[string]string{"acl": uploadACL},
			[]string{"starts-with", "$Content-Type", ""},
			[]interface{}{"content-length-range", 0, maxUploadBytes},
			map[string]string{"x-amz-algorithm": sigv4.Algorithm},
			map[string]string{"x-amz-credential": credential},
			map[string]string{"x-amz-date": dateTime},
		},
	}

	raw, err := json.Marshal(doc)
	if err != nil {
		// The document is built from static shapes; marshalling cannot fail.
		panic(fmt.Sprintf("store: marshal post policy: %v", err))
	}
	policy := base64.StdEncoding.EncodeToString(raw)

	// The signature covers the base64 form, not the raw JSON.
	signature := sigv4.Sign(sigv4.DeriveKey(c.cfg.SecretKey, scope), policy)

	return &PostPolicyGrant{
		Bucket: c.cfg.Bucket,
		Region: c.cfg.Region,
		Auth: PolicyAuth{
			Policy:     policy,
			Key:        c.cfg.AccessKey,
			Signature:  signature,
			Credential: credential,
			Date:       dateTime,
		},
	}, true
}
