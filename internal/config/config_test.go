package config

import (
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetDefaults(t *testing.T) {
	v := viper.New()
	setDefaults(v)

	assert.Equal(t, ":8090", v.GetString("listen"))
	assert.Equal(t, "info", v.GetString("log_level"))
	assert.Equal(t, "us-east-1", v.GetString("store.region"))
	assert.True(t, v.GetBool("metrics.enable"))
	assert.Equal(t, "/metrics", v.GetString("metrics.path"))
}

func TestValidate_RequiresBucket(t *testing.T) {
	cfg := &Config{Store: StoreConfig{Region: "us-east-1"}}

	err := validate(cfg)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "store.bucket")
}

func TestValidate_DerivesEndpoint(t *testing.T) {
	cfg := &Config{Store: StoreConfig{Region: "us-east-1", Bucket: "media"}}

	require.NoError(t, validate(cfg))
	assert.Equal(t, "https://media.s3.us-east-1.amazonaws.com", cfg.Store.Endpoint)
}

func TestValidate_RejectsBadEndpoint(t *testing.T) {
	cfg := &Config{Store: StoreConfig{Region: "us-east-1", Bucket: "media", Endpoint: "not a url"}}

	err := validate(cfg)
	assert.Error(t, err)
}

func TestValidate_SecretWithoutAccessKey(t *testing.T) {
	cfg := &Config{Store: StoreConfig{Region: "us-east-1", Bucket: "media", SecretKey: "shh"}}

	err := validate(cfg)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "access_key")
}

func TestValidate_MissingSecretIsAllowed(t *testing.T) {
	cfg := &Config{Store: StoreConfig{Region: "us-east-1", Bucket: "media"}}

	assert.NoError(t, validate(cfg))
	assert.False(t, cfg.Store.HasCredentials())
}

func TestStoreConfig_Host(t *testing.T) {
	s := StoreConfig{Endpoint: "https://media.s3.us-east-1.amazonaws.com"}
	assert.Equal(t, "media.s3.us-east-1.amazonaws.com:443", s.Host())

	s = StoreConfig{Endpoint: "http://localhost:9000"}
	assert.Equal(t, "localhost:9000", s.Host())
}
