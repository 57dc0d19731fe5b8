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
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"go.uber.org/zap"
)

// Write sends lines to the /write endpoint of the configured database and
// retention policy.
//
// Errors reported by the server are returned as *Error. When the server
// rejects a field type or does not know the database, the error also
// matches ErrFieldTypeConflict or ErrDatabaseNotFound with errors.Is.
func (c *Client) Write(ctx context.Context, lines ...*Line) error {
	return c.WriteTo(ctx, c.config.Database, c.config.RetentionPolicy, lines...)
}

// WriteTo sends lines to the /write endpoint of the given database and
// retention policy. An empty retention policy selects the default one.
func (c *Client) WriteTo(ctx context.Context, database, retentionPolicy string, lines ...*Line) error {
	if len(lines) == 0 {
		return nil
	}
	payload, err := EncodeLines(lines...)
	if err != nil {
		return err
	}
	return c.writePayload(ctx, database, retentionPolicy, payload, len(lines))
}

func (c *Client) writePayload(ctx context.Context, database, retentionPolicy string, payload []byte, n int) error {
	query := url.Values{}
	query.Set("db", database)
	if retentionPolicy != "" {
		query.Set("rp", retentionPolicy)
	}
	query.Set("precision", "ns")
	u, err := c.endpoint("/write", query)
	if err != nil {
		return err
	}
	header := http.Header{}
	header.Set("Content-Type", "text/plain; charset=utf-8")

	c.logger.Debug("writing lines", zap.String("db", database), zap.Int("lines", n))
	_, err = c.post(ctx, u, header, payload, http.StatusNoContent, http.StatusOK)
	return classifyWriteError(err)
}

func classifyWriteError(err error) error {
	var httpErr *Error
	if !errors.As(err, &httpErr) {
		return err
	}
	switch {
	case strings.Contains(httpErr.Message, "field type conflict"):
		return fmt.Errorf("%w: %w", ErrFieldTypeConflict, err)
	case strings.Contains(httpErr.Message, "database not found"):
		return fmt.Errorf("%w: %w", ErrDatabaseNotFound, err)
	default:
		return err
	}
}
