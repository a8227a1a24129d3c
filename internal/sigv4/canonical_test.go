package sigv4

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanonicalRequest_Build(t *testing.T) {
	cr := CanonicalRequest{
		Method: "GET",
		Path:   "/test.txt",
		Headers: map[string]string{
			"Host": "examplebucket.s3.amazonaws.com",
		},
		PayloadHash: EmptyPayloadHash,
	}

	want := strings.Join([]string{
		"GET",
		"/test.txt",
		"",
		"host:examplebucket.s3.amazonaws.com",
		"",
		"host",
		EmptyPayloadHash,
	}, "\n")
	assert.Equal(t, want, cr.Build())
}

func TestCanonicalRequest_HeaderOrderIndependent(t *testing.T) {
	a := CanonicalRequest{
		Method: "DELETE",
		Path:   "/k",
		Headers: map[string]string{
			"x-amz-date":           "20240115T093000Z",
			"Host":                 "b.example.com",
			"x-amz-content-sha256": EmptyPayloadHash,
		},
	}
	b := CanonicalRequest{
		Method: "DELETE",
		Path:   "/k",
		Headers: map[string]string{
			"Host":                 "b.example.com",
			"X-Amz-Content-Sha256": EmptyPayloadHash,
			"X-Amz-Date":           "20240115T093000Z",
		},
	}

	assert.Equal(t, a.Build(), b.Build())
	assert.Equal(t, "host;x-amz-content-sha256;x-amz-date", a.SignedHeaders())
	assert.Equal(t, a.SignedHeaders(), b.SignedHeaders())
}

func TestCanonicalRequest_TrimsHeaderValues(t *testing.T) {
	cr := CanonicalRequest{
		Method:  "GET",
		Path:    "/",
		Headers: map[string]string{"Host": "  example.com  "},
	}
	assert.Contains(t, cr.Build(), "host:example.com\n")
}

func TestCanonicalRequest_MissingPayloadHashDefaultsToEmptyDigest(t *testing.T) {
	cr := CanonicalRequest{Method: "GET", Path: "/"}
	assert.True(t, strings.HasSuffix(cr.Build(), EmptyPayloadHash))
}

func TestCanonicalQueryString_SortsAndEncodes(t *testing.T) {
	q := map[string]string{
		"prefix":      "uploads/a b",
		"max-keys":    "2",
		"X-Amz-Date":  "20240115T093000Z",
		"continue~on": "x/y",
	}

	got := CanonicalQueryString(q)
	assert.Equal(t,
		"X-Amz-Date=20240115T093000Z&continue~on=x%2Fy&max-keys=2&prefix=uploads%2Fa%20b",
		got)
}

func TestCanonicalQueryString_Empty(t *testing.T) {
	assert.Equal(t, "", CanonicalQueryString(nil))
	assert.Equal(t, "", CanonicalQueryString(map[string]string{}))
}

func TestEncodePath(t *testing.T) {
	assert.Equal(t, "/", EncodePath(""))
	assert.Equal(t, "/a/b.png", EncodePath("/a/b.png"))
	assert.Equal(t, "/test%24file.text", EncodePath("/test$file.text"))
	assert.Equal(t, "/a%20b/c%2Bd", EncodePath("/a b/c+d"))
	assert.Equal(t, "/unreserved-._~", EncodePath("/unreserved-._~"))
}
