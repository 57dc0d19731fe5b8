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
	"encoding/json"
	"net/http"
	"net/url"

	"go.uber.org/zap"
)

type fluxDialect struct {
	Header         bool     `json:"header"`
	Delimiter      string   `json:"delimiter"`
	Annotations    []string `json:"annotations"`
	DateTimeFormat string   `json:"dateTimeFormat"`
}

type fluxRequest struct {
	Query   string      `json:"query"`
	Type    string      `json:"type"`
	Dialect fluxDialect `json:"dialect"`
}

// FluxStatement is a Flux query to be sent to the /api/v2/query endpoint.
type FluxStatement struct {
	c *Client

	query string

	// Org is the organization the query runs in.
	//
	// This is optional and defaults to Config.Org.
	Org string
}

// Flux creates a new statement with the given Flux query.
func (c *Client) Flux(query string) *FluxStatement {
	return &FluxStatement{
		c:     c,
		query: query,
		Org:   c.config.Org,
	}
}

// Execute sends the query and parses every result into DataFrames.
func (s *FluxStatement) Execute(ctx context.Context) ([]StatementResult[*DataFrame], error) {
	return FetchFlux(ctx, s, NewDataFrame)
}

// DataFrame sends the query and returns the first DataFrame of the first
// result.
func (s *FluxStatement) DataFrame(ctx context.Context) (*DataFrame, error) {
	results, err := s.Execute(ctx)
	if err != nil {
		return nil, err
	}
	return FirstTable(results)
}

func (s *FluxStatement) fetch(ctx context.Context) ([]byte, error) {
	body, err := json.Marshal(&fluxRequest{
		Query: s.query,
		Type:  "flux",
		Dialect: fluxDialect{
			Header:         true,
			Delimiter:      ",",
			Annotations:    []string{"datatype", "group", "default"},
			DateTimeFormat: "RFC3339Nano",
		},
	})
	if err != nil {
		return nil, err
	}

	var query url.Values
	if s.Org != "" {
		query = url.Values{"org": []string{s.Org}}
	}
	u, err := s.c.endpoint("/api/v2/query", query)
	if err != nil {
		return nil, err
	}
	header := http.Header{}
	header.Set("Content-Type", "application/json")
	header.Set("Accept", "application/csv")

	s.c.logger.Debug("executing flux query", zap.String("org", s.Org), zap.String("query", s.query))
	return s.c.post(ctx, u, header, body, http.StatusOK)
}

// FetchFlux sends the query and parses every result into tables built by
// factory.
func FetchFlux[T any](ctx context.Context, s *FluxStatement, factory TableFactory[T]) ([]StatementResult[T], error) {
	data, err := s.fetch(ctx)
	if err != nil {
		return nil, err
	}
	return ParseFlux(data, factory)
}
