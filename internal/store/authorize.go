package store

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/maxiofs/signer/internal/sigv4"
	"github.com/sirupsen/logrus"
)

// Authorize signs an outbound request in place: it sets x-amz-date,
// x-amz-content-sha256 and Host for the captured instant, then adds the
// Authorization header covering exactly those headers. The request is
// otherwise unchanged and ready to send.
func (c *Client) Authorize(req *http.Request, body []byte) error {
	if !c.cfg.HasCredentials() {
		return ErrNoCredentials
	}
	return c.authorize(req, body, c.clock())
}

func (c *Client) authorize(req *http.Request, body []byte, now time.Time) error {
	scope := sigv4.ScopeFor(now, c.cfg.Region)
	dateTime := sigv4.FormatDateTime(now)
	payloadHash := sigv4.HashPayload(body)
	host := c.cfg.Host()

	req.Header.Set("x-amz-date", dateTime)
	req.Header.Set("x-amz-content-sha256", payloadHash)
	req.Host = host

	query := map[string]string{}
	for k, v := range req.URL.Query() {
		if len(v) > 0 {
			query[k] = v[0]
		}
	}

	cr := sigv4.CanonicalRequest{
		Method: req.Method,
		Path:   req.URL.Path,
		Query:  query,
		Headers: map[string]string{
			"host":                 host,
			"x-amz-date":           dateTime,
			"x-amz-content-sha256": payloadHash,
		},
		PayloadHash: payloadHash,
	}

	stringToSign := sigv4.StringToSign(dateTime, scope, cr.Build())
	signature := sigv4.Sign(sigv4.DeriveKey(c.cfg.SecretKey, scope), stringToSign)

	req.Header.Set("Authorization", fmt.Sprintf("%s Credential=%s/%s, SignedHeaders=%s, Signature=%s",
		sigv4.Algorithm,
		c.cfg.AccessKey,
		scope.String(),
		cr.SignedHeaders(),
		signature,
	))
	return nil
}

// Delete issues an authorized DELETE for an object path. The store treats
// deletion of a missing object as success (no-content), so callers must not
// distinguish "already gone" from "deleted". Non-2xx responses surface as
// errors; retry policy belongs to the caller.
func (c *Client) Delete(ctx context.Context, path string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, c.cfg.Endpoint+path, nil)
	if err != nil {
		return fmt.Errorf("failed to build delete request: %w", err)
	}
	if err := c.Authorize(req, nil); err != nil {
		return err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("delete %s: %w", path, err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("delete %s: store returned %s", path, resp.Status)
	}

	c.logger.WithFields(logrus.Fields{
		"bucket": c.cfg.Bucket,
		"path":   path,
		"status": resp.StatusCode,
	}).Debug("Object deleted")
	return nil
}
