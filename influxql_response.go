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
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"
)

type influxqlResponse struct {
	Results *[]influxqlResult `json:"results"`
	Error   *string           `json:"error"`
}

type influxqlResult struct {
	StatementID int              `json:"statement_id"`
	Series      []influxqlSeries `json:"series"`
	Error       *string          `json:"error"`
}

type influxqlSeries struct {
	Name    string            `json:"name"`
	Columns []string          `json:"columns"`
	Values  [][]any           `json:"values"`
	Tags    map[string]string `json:"tags"`
}

// ParseInfluxQL parses a JSON response of the InfluxDB /query endpoint into
// one StatementResult per statement, in the order returned by the server.
//
// A response such as
//
//	{
//	    "results": [
//	        {
//	            "statement_id": 0,
//	            "series": [
//	                {
//	                    "name": "environment",
//	                    "columns": ["time", "temperature", "humidity"],
//	                    "values": [
//	                        ["2021-03-04T17:00:00Z", 28.4, 41.0],
//	                        ["2021-03-04T18:00:00Z", 29.2, 37.0]
//	                    ],
//	                    "tags": {"room": "bedroom"}
//	                }
//	            ]
//	        }
//	    ]
//	}
//
// yields one statement holding one table built by factory, tagged with
// room=bedroom.
//
// The returned error is set only when the whole response failed: the payload
// is not JSON (*SyntaxError) or the server reported a query-level error
// (*ResponseError). Failures of a single statement, including decode errors
// in its series, are reported in that statement's Err.
func ParseInfluxQL[T any](data []byte, factory TableFactory[T]) ([]StatementResult[T], error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var resp influxqlResponse
	if err := dec.Decode(&resp); err != nil {
		return nil, &SyntaxError{Format: "json", Err: err}
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, &SyntaxError{Format: "json", Err: errors.New("trailing data after response")}
	}
	if resp.Error != nil {
		return nil, &ResponseError{Message: *resp.Error}
	}
	if resp.Results == nil {
		return nil, &SyntaxError{Format: "json", Err: errors.New(`neither "results" nor "error" is present`)}
	}

	results := make([]StatementResult[T], 0, len(*resp.Results))
	for _, outcome := range *resp.Results {
		results = append(results, parseStatement(outcome, factory))
	}
	return results, nil
}

func parseStatement[T any](outcome influxqlResult, factory TableFactory[T]) StatementResult[T] {
	result := StatementResult[T]{StatementID: outcome.StatementID}
	if outcome.Error != nil {
		result.Err = &StatementError{StatementID: outcome.StatementID, Message: *outcome.Error}
		return result
	}

	tables := make([]TaggedTable[T], 0, len(outcome.Series))
	for _, series := range outcome.Series {
		table, err := parseSeries(series, factory)
		if err != nil {
			result.Err = err
			return result
		}
		tables = append(tables, table)
	}
	result.Tables = tables
	return result
}

func parseSeries[T any](series influxqlSeries, factory TableFactory[T]) (TaggedTable[T], error) {
	if len(series.Columns) == 0 {
		return TaggedTable[T]{}, &ValueError{Reason: fmt.Sprintf("series %q has no time column", series.Name)}
	}

	// the first column is always the time column
	names := series.Columns[1:]
	index := make([]time.Time, 0, len(series.Values))
	columns := make(map[string][]Value, len(names))
	for _, name := range names {
		columns[name] = make([]Value, 0, len(series.Values))
	}

	for i, row := range series.Values {
		if len(row) != len(series.Columns) {
			return TaggedTable[T]{}, &ValueError{
				Reason: fmt.Sprintf("row %d has %d cells, expected %d", i, len(row), len(series.Columns)),
			}
		}

		instant, err := parseIndexCell(row[0])
		if err != nil {
			return TaggedTable[T]{}, err
		}
		index = append(index, instant)

		for j, name := range names {
			v, err := NewValue(row[j+1])
			if err != nil {
				return TaggedTable[T]{}, err
			}
			columns[name] = append(columns[name], v)
		}
	}

	table, err := buildTable(factory, series.Name, index, columns)
	if err != nil {
		return TaggedTable[T]{}, err
	}
	return TaggedTable[T]{Table: table, Tags: series.Tags}, nil
}

func parseIndexCell(cell any) (time.Time, error) {
	s, ok := cell.(string)
	if !ok {
		return time.Time{}, &ValueError{Reason: "index is not encoded as string"}
	}
	return parseInstant(s)
}

func parseInstant(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, &DatetimeError{Input: s, Err: err}
	}
	return t.UTC(), nil
}
