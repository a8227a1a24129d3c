// Package store implements the signing consumers for an S3-compatible
// object store: presigned download URLs, authorized direct requests,
// browser-upload POST policies and storage URL parsing. All signing is done
// locally via internal/sigv4; the only network operation is Delete.
package store

import (
	"net/http"
	"net/url"
	"time"

	"github.com/maxiofs/signer/internal/config"
	"github.com/sirupsen/logrus"
)

// Client signs requests for a single configured bucket. It is stateless and
// safe for concurrent use; every operation captures the clock exactly once
// and threads that instant through all date-dependent computations.
type Client struct {
	cfg        config.StoreConfig
	httpClient *http.Client
	clock      func() time.Time
	logger     *logrus.Logger
}

// New creates a store client for the given configuration.
func New(cfg config.StoreConfig) *Client {
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		clock:      time.Now,
		logger:     logrus.StandardLogger(),
	}
}

// Config returns the store configuration the client signs for.
func (c *Client) Config() config.StoreConfig {
	return c.cfg
}

// endpointHost returns the host component of the endpoint as it appears in
// URLs handed to fetchers (no explicit default port).
func (c *Client) endpointHost() string {
	u, err := url.Parse(c.cfg.Endpoint)
	if err != nil {
		return ""
	}
	return u.Host
}
