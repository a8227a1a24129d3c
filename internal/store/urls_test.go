package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestObjectPath_PathStyle(t *testing.T) {
	path, ok := ObjectPath("https://s3.amazonaws.com/mybucket/a/b.png")
	assert.True(t, ok)
	assert.Equal(t, "/a/b.png", path)
}

func TestObjectPath_VirtualHostedStyle(t *testing.T) {
	path, ok := ObjectPath("https://mybucket.s3.us-east-1.amazonaws.com/a/b.png")
	assert.True(t, ok)
	assert.Equal(t, "/a/b.png", path)
}

func TestObjectPath_ForeignURL(t *testing.T) {
	_, ok := ObjectPath("https://example.com/x")
	assert.False(t, ok)
}

func TestObjectPath_Empty(t *testing.T) {
	_, ok := ObjectPath("")
	assert.False(t, ok)
}

func TestObjectPath_NestedKeys(t *testing.T) {
	path, ok := ObjectPath("https://s3.amazonaws.com/media/uploads/2024/01/photo.jpg")
	assert.True(t, ok)
	assert.Equal(t, "/uploads/2024/01/photo.jpg", path)
}
