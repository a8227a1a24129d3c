package sigv4

import (
	"sort"
	"strings"
)

// CanonicalRequest holds the components of a request in signing order.
// Using named fields instead of ad hoc string joins makes it impossible to
// swap two components without the compiler noticing.
type CanonicalRequest struct {
	Method      string
	Path        string            // raw object path, leading slash, not yet encoded
	Query       map[string]string // raw query pairs, may be nil
	Headers     map[string]string // header name → value, any casing, any order
	PayloadHash string            // hex SHA-256 of the body; HashPayload(nil) when absent
}

// Build serializes the canonical request form:
//
//	METHOD\nURI\nQUERY\nHEADERS\nSIGNED_HEADERS\nPAYLOAD_HASH
//
// Header names are lowercased and sorted; values are trimmed. The signed
// headers list is derived from the same sorted name set, so the two can
// never disagree.
func (c CanonicalRequest) Build() string {
	var b strings.Builder
	b.WriteString(c.Method)
	b.WriteByte('\n')
	b.WriteString(EncodePath(c.Path))
	b.WriteByte('\n')
	b.WriteString(CanonicalQueryString(c.Query))
	b.WriteByte('\n')

	names := c.sortedHeaderNames()
	for _, name := range names {
		b.WriteString(name)
		b.WriteByte(':')
		b.WriteString(strings.TrimSpace(c.headerValue(name)))
		b.WriteByte('\n')
	}
	b.WriteByte('\n')
	b.WriteString(strings.Join(names, ";"))
	b.WriteByte('\n')

	hash := c.PayloadHash
	if hash == "" {
		hash = EmptyPayloadHash
	}
	b.WriteString(hash)
	return b.String()
}

// SignedHeaders returns the semicolon-joined lowercase header name list in
// the exact order used by Build.
func (c CanonicalRequest) SignedHeaders() string {
	return strings.Join(c.sortedHeaderNames(), ";")
}

func (c CanonicalRequest) sortedHeaderNames() []string {
	names := make([]string, 0, len(c.Headers))
	for name := range c.Headers {
		names = append(names, strings.ToLower(name))
	}
	sort.Strings(names)
	return names
}

func (c CanonicalRequest) headerValue(lowerName string) string {
	for name, value := range c.Headers {
		if strings.ToLower(name) == lowerName {
			return value
		}
	}
	return ""
}

// CanonicalQueryString sorts query parameters by key and percent-encodes
// keys and values per the SigV4 reserved-character rules before joining
// with "&". A nil or empty map yields the empty string.
func CanonicalQueryString(query map[string]string) string {
	if len(query) == 0 {
		return ""
	}
	keys := make([]string, 0, len(query))
	for k := range query {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, uriEncode(k, true)+"="+uriEncode(query[k], true))
	}
	return strings.Join(parts, "&")
}

// EncodePath percent-encodes an object path for the canonical URI. Path
// separators stay literal; everything outside the unreserved set is encoded.
func EncodePath(path string) string {
	if path == "" {
		return "/"
	}
	return uriEncode(path, false)
}

// uriEncode implements the SigV4 variant of percent encoding: unreserved
// characters (A-Z, a-z, 0-9, '-', '.', '_', '~') pass through, space becomes
// %20 (never '+'), and '/' is kept literal only when encodeSlash is false.
func uriEncode(s string, encodeSlash bool) string {
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= 'A' && c <= 'Z', c >= 'a' && c <= 'z', c >= '0' && c <= '9',
			c == '-', c == '.', c == '_', c == '~':
			b.WriteByte(c)
		case c == '/' && !encodeSlash:
			b.WriteByte(c)
		default:
			b.WriteByte('%')
			b.WriteByte(hexUpper[c>>4])
			b.WriteByte(hexUpper[c&0x0f])
		}
	}
	return b.String()
}

const hexUpper = "0123456789ABCDEF"
