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
	"net/http"
	"net/url"

	"go.uber.org/zap"
)

// InfluxQLStatement is one or more InfluxQL statements to be sent to the
// /query endpoint.
type InfluxQLStatement struct {
	c *Client

	query string

	// Database is the database the statements run against.
	//
	// This is optional and defaults to Config.Database.
	Database string
	// RetentionPolicy is the retention policy the statements run against.
	//
	// This is optional and defaults to Config.RetentionPolicy.
	RetentionPolicy string
}

// InfluxQL creates a new statement with the given InfluxQL query.
func (c *Client) InfluxQL(query string) *InfluxQLStatement {
	return &InfluxQLStatement{
		c:               c,
		query:           query,
		Database:        c.config.Database,
		RetentionPolicy: c.config.RetentionPolicy,
	}
}

// Execute sends the statement and parses every statement result into
// DataFrames.
func (s *InfluxQLStatement) Execute(ctx context.Context) ([]StatementResult[*DataFrame], error) {
	return FetchInfluxQL(ctx, s, NewDataFrame)
}

// DataFrame sends the statement and returns the first DataFrame of the
// first statement result.
func (s *InfluxQLStatement) DataFrame(ctx context.Context) (*DataFrame, error) {
	return FetchDataFrame(ctx, s, NewDataFrame)
}

// DataFramesByTag sends the statement and maps the value of tag to each
// DataFrame of the first statement result.
func (s *InfluxQLStatement) DataFramesByTag(ctx context.Context, tag string) (map[string]*DataFrame, error) {
	return FetchDataFramesByTag(ctx, s, NewDataFrame, tag)
}

func (s *InfluxQLStatement) fetch(ctx context.Context) ([]byte, error) {
	form := url.Values{}
	form.Set("q", s.query)
	if s.Database != "" {
		form.Set("db", s.Database)
	}
	if s.RetentionPolicy != "" {
		form.Set("rp", s.RetentionPolicy)
	}

	u, err := s.c.endpoint("/query", nil)
	if err != nil {
		return nil, err
	}
	header := http.Header{}
	header.Set("Content-Type", "application/x-www-form-urlencoded")
	header.Set("Accept", "application/json")

	s.c.logger.Debug("executing influxql statement", zap.String("db", s.Database), zap.String("query", s.query))
	return s.c.post(ctx, u, header, []byte(form.Encode()), http.StatusOK)
}

// FetchInfluxQL sends the statement and parses every statement result into
// tables built by factory.
func FetchInfluxQL[T any](ctx context.Context, s *InfluxQLStatement, factory TableFactory[T]) ([]StatementResult[T], error) {
	data, err := s.fetch(ctx)
	if err != nil {
		return nil, err
	}
	results, err := ParseInfluxQL(data, factory)
	if err != nil {
		return nil, err
	}
	s.c.logger.Debug("fetched statement results", zap.Int("statements", len(results)))
	return results, nil
}

// FetchDataFrame sends the statement and returns the first table of the
// first statement result. See FirstTable.
func FetchDataFrame[T any](ctx context.Context, s *InfluxQLStatement, factory TableFactory[T]) (T, error) {
	results, err := FetchInfluxQL(ctx, s, factory)
	if err != nil {
		var zero T
		return zero, err
	}
	return FirstTable(results)
}

// FetchDataFramesByTag sends the statement and groups the tables of the
// first statement result by tag. See GroupByTag.
func FetchDataFramesByTag[T any](ctx context.Context, s *InfluxQLStatement, factory TableFactory[T], tag string) (map[string]T, error) {
	results, err := FetchInfluxQL(ctx, s, factory)
	if err != nil {
		return nil, err
	}
	return GroupByTag(results, tag)
}
