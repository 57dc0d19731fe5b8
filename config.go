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
	"time"

	"go.uber.org/zap"
)

// Config defines the configuration for the client.
type Config struct {
	// URL is the base URL of the InfluxDB server, e.g. http://localhost:8086.
	URL string `json:"url"`

	// Username and Password enable HTTP basic authentication when Username
	// is not empty.
	Username string `json:"username"`
	Password string `json:"password"`
	// Token enables token authentication and takes precedence over basic
	// authentication.
	Token string `json:"token"`

	// Org is the organization of Flux queries.
	Org string `json:"org"`
	// Database is the default database of InfluxQL queries and writes.
	Database string `json:"database"`
	// RetentionPolicy is the default retention policy of InfluxQL queries
	// and writes.
	RetentionPolicy string `json:"retention_policy"`

	// Timeout limits the duration of each HTTP request. Zero means no limit.
	Timeout time.Duration `json:"timeout"`

	// Logger receives debug logs of the client. Nil disables logging.
	Logger *zap.Logger `json:"-"`
}

func (c *Config) logger() *zap.Logger {
	if c.Logger == nil {
		return zap.NewNop()
	}
	return c.Logger
}
