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
	"context"
	"io"
	"net/http"
	"net/url"
	"strings"

	"go.uber.org/zap"
)

// Client is the entry point for querying and writing to an InfluxDB server.
type Client struct {
	config *Config
	http   HTTPClient
	logger *zap.Logger
}

// NewClient creates a new client.
func NewClient(config *Config) *Client {
	return &Client{
		config: config,
		http:   NewHTTPClient(config),
		logger: config.logger(),
	}
}

// Close closes the client.
//
// You don't typically need to call this as the garbage collector will release
// the resources when the client is no longer referenced. However, it can be
// useful to call this if you want to release the resources immediately.
func (c *Client) Close() {
	c.http.Close()
}

func (c *Client) endpoint(path string, query url.Values) (*url.URL, error) {
	u, err := url.Parse(strings.TrimSuffix(c.config.URL, "/") + path)
	if err != nil {
		return nil, err
	}
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}
	return u, nil
}

// post sends the request and returns the body of a response with one of the
// expected status codes.
func (c *Client) post(ctx context.Context, u *url.URL, header http.Header, body []byte, expected ...int) ([]byte, error) {
	resp, err := c.http.Post(ctx, u, header, body)
	if err != nil {
		return nil, err
	}
	defer sneakyBodyClose(resp.Body)
	if err := checkStatusCode(resp, expected...); err != nil {
		return nil, err
	}
	return io.ReadAll(resp.Body)
}
