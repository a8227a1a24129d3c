// Package sigv4 implements the AWS Signature Version 4 signing algorithm
// for S3-compatible object stores. It covers the protocol primitives only:
// canonical request serialization, signing key derivation and the final
// signature computation. Consumers live in internal/store.
package sigv4

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"
)

const (
	// Algorithm is the SigV4 signing algorithm identifier
	Algorithm = "AWS4-HMAC-SHA256"

	// ServiceS3 is the only service this signer targets
	ServiceS3 = "s3"

	// RequestType terminates every credential scope
	RequestType = "aws4_request"

	// EmptyPayloadHash is the hex SHA-256 digest of a zero-length body
	EmptyPayloadHash = "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855"

	// Time formats (UTC, zero-padded, locale-independent)
	dateFormat     = "20060102"
	dateTimeFormat = "20060102T150405Z"
)

// FormatDate renders the day-only date stamp used in credential scopes,
// e.g. "20240115".
func FormatDate(t time.Time) string {
	return t.UTC().Format(dateFormat)
}

// FormatDateTime renders the full date-time stamp used for X-Amz-Date,
// e.g. "20240115T093000Z".
func FormatDateTime(t time.Time) string {
	return t.UTC().Format(dateTimeFormat)
}

// Scope identifies the validity window of a signing key. The day component
// must match the date embedded in the X-Amz-Date value of the same request.
type Scope struct {
	Day     string // FormatDate output
	Region  string
	Service string
}

// ScopeFor builds the credential scope for a point in time and region.
func ScopeFor(t time.Time, region string) Scope {
	return Scope{Day: FormatDate(t), Region: region, Service: ServiceS3}
}

// String renders the scope as it appears in credentials:
// "<day>/<region>/<service>/aws4_request".
func (s Scope) String() string {
	return fmt.Sprintf("%s/%s/%s/%s", s.Day, s.Region, s.Service, RequestType)
}

// DeriveKey runs the four-stage HMAC-SHA256 chain that turns a long-term
// secret into a signing key bound to the given scope. The result is raw key
// bytes, never hex. Keys must be re-derived whenever the day changes; a key
// derived for yesterday signs requests the store will reject.
func DeriveKey(secret string, scope Scope) []byte {
	kDate := hmacSHA256([]byte("AWS4"+secret), []byte(scope.Day))
	kRegion := hmacSHA256(kDate, []byte(scope.Region))
	kService := hmacSHA256(kRegion, []byte(scope.Service))
	return hmacSHA256(kService, []byte(RequestType))
}

// StringToSign assembles the final signing input from the request timestamp,
// credential scope and canonical request.
func StringToSign(dateTime string, scope Scope, canonicalRequest string) string {
	return fmt.Sprintf("%s\n%s\n%s\n%s",
		Algorithm,
		dateTime,
		scope.String(),
		HashPayload([]byte(canonicalRequest)),
	)
}

// Sign computes the request signature: lowercase hex HMAC-SHA256 of the
// string to sign under the derived key. Output is always 64 characters.
func Sign(signingKey []byte, stringToSign string) string {
	return hex.EncodeToString(hmacSHA256(signingKey, []byte(stringToSign)))
}

// HashPayload returns the lowercase hex SHA-256 digest of a request body.
// A nil or empty body yields EmptyPayloadHash.
func HashPayload(body []byte) string {
	sum := sha256.Sum256(body)
	return hex.EncodeToString(sum[:])
}

func hmacSHA256(key, data []byte) []byte {
	h := hmac.New(sha256.New, key)
	h.Write(data)
	return h.Sum(nil)
}
