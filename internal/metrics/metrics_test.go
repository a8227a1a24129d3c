package metrics

import (
	"errors"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordOperation(t *testing.T) {
	m := NewManager()

	m.RecordOperation(OpPresign, nil)
	m.RecordOperation(OpPresign, nil)
	m.RecordOperation(OpDelete, errors.New("boom"))
	m.ObserveDuration(0.002)

	req := httptest.NewRequest("GET", "/metrics", nil)
	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, req)

	require.Equal(t, 200, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `signer_operations_total{operation="presign",outcome="ok"} 2`)
	assert.Contains(t, body, `signer_operations_total{operation="delete",outcome="error"} 1`)
	assert.Contains(t, body, "signer_operation_duration_seconds")
}

func TestNewManager_IsolatedRegistries(t *testing.T) {
	// Two managers must not clash; each owns its registry.
	a := NewManager()
	b := NewManager()
	a.RecordOperation(OpPostPolicy, nil)

	rec := httptest.NewRecorder()
	b.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	assert.NotContains(t, rec.Body.String(), `operation="post_policy"`)
}
