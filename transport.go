/*
 * Copyright 2024 The InfluxFrame Authors
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package influxframe

import (
	"bytes"
	"context"
	"net/http"
	"net/url"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// HTTPClient is the interface for HTTP client.
type HTTPClient interface {
	// Post sends a POST request to the InfluxDB server.
	Post(ctx context.Context, u *url.URL, header http.Header, body []byte) (*http.Response, error)
	// Close releases idle connections.
	Close()
}

type httpClient struct {
	client *http.Client
	config *Config
	logger *zap.Logger
}

// NewHTTPClient creates a new internal HTTP client that authenticates every
// request as configured.
func NewHTTPClient(config *Config) HTTPClient {
	return &httpClient{
		client: &http.Client{Timeout: config.Timeout},
		config: config,
		logger: config.logger(),
	}
}

// Ensure httpClient implements HTTPClient.
var _ HTTPClient = (*httpClient)(nil)

func (c *httpClient) Post(ctx context.Context, u *url.URL, header http.Header, body []byte) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u.String(), bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}

	switch {
	case c.config.Token != "":
		req.Header.Set("Authorization", "Token "+c.config.Token)
	case c.config.Username != "":
		req.SetBasicAuth(c.config.Username, c.config.Password)
	}

	id := uuid.New()
	req.Header.Set("Request-Id", id.String())
	c.logger.Debug("sending request",
		zap.Stringer("request_id", id),
		zap.String("path", u.Path),
		zap.Int("body_bytes", len(body)))

	resp, err := c.client.Do(req)
	if err != nil {
		c.logger.Debug("request failed", zap.Stringer("request_id", id), zap.Error(err))
		return nil, err
	}
	c.logger.Debug("received response", zap.Stringer("request_id", id), zap.Int("status", resp.StatusCode))
	return resp, nil
}

func (c *httpClient) Close() {
	c.client.CloseIdleConnections()
}
