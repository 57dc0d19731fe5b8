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
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
)

var (
	// ErrEmptyColumn is wrapped by the *ValueError returned when a column has no cells.
	ErrEmptyColumn = errors.New("empty column")
	// ErrEmptyResult is returned when a response holds no statement or no table.
	ErrEmptyResult = errors.New("empty result")
	// ErrMissingTags is returned when a table without tags is grouped by tag.
	ErrMissingTags = errors.New("missing tags")
	// ErrFieldTypeConflict is returned when a written field conflicts with the stored type.
	ErrFieldTypeConflict = errors.New("field type conflict")
	// ErrDatabaseNotFound is returned when writing to a database that does not exist.
	ErrDatabaseNotFound = errors.New("database not found")
	// ErrCableNotStarted is returned for lines sent to a LineCable before Start.
	ErrCableNotStarted = errors.New("line cable not started")
)

// Error represents an HTTP error response from the InfluxDB server.
type Error struct {
	StatusCode int
	Message    string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%d: %s", e.StatusCode, e.Message)
}

// SyntaxError is returned when a payload is not valid JSON or CSV.
type SyntaxError struct {
	// Format is either "json" or "csv".
	Format string
	Err    error
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("invalid %s: %v", strings.ToUpper(e.Format), e.Err)
}

func (e *SyntaxError) Unwrap() error {
	return e.Err
}

// ResponseError is returned when the entire query failed and the server
// answered with a top-level error instead of statement results.
type ResponseError struct {
	Message string
}

func (e *ResponseError) Error() string {
	return "response error: " + e.Message
}

// StatementError is the error of one failed statement in a multi-statement query.
type StatementError struct {
	StatementID int
	Message     string
}

func (e *StatementError) Error() string {
	return "statement error: " + e.Message
}

// ValueError is returned when a cell or a column cannot be decoded.
type ValueError struct {
	Reason string
	Err    error
}

func (e *ValueError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("value error: %s: %v", e.Reason, e.Err)
	}
	return "value error: " + e.Reason
}

func (e *ValueError) Unwrap() error {
	return e.Err
}

// DatetimeError is returned when an index cell is not a valid RFC 3339 instant.
type DatetimeError struct {
	Input string
	Err   error
}

func (e *DatetimeError) Error() string {
	return fmt.Sprintf("could not parse datetime %q: %v", e.Input, e.Err)
}

func (e *DatetimeError) Unwrap() error {
	return e.Err
}

// DataFrameError wraps an error returned by a TableFactory.
type DataFrameError struct {
	Err error
}

func (e *DataFrameError) Error() string {
	return fmt.Sprintf("could not create dataframe: %v", e.Err)
}

func (e *DataFrameError) Unwrap() error {
	return e.Err
}

// AnnotationError is returned when an annotated CSV block lacks one of its
// four mandatory leading rows.
type AnnotationError struct {
	// Row is one of "data types", "grouping", "default" or "columns".
	Row string
}

func (e *AnnotationError) Error() string {
	return fmt.Sprintf("error while parsing %s row", e.Row)
}

// MissingTagError is returned when a table is grouped by a tag it does not carry.
type MissingTagError struct {
	Tag string
}

func (e *MissingTagError) Error() string {
	return fmt.Sprintf("missing tag %q", e.Tag)
}

func checkStatusCode(resp *http.Response, expected ...int) error {
	for _, code := range expected {
		if resp.StatusCode == code {
			return nil
		}
	}

	data, err := io.ReadAll(resp.Body)
	msg := strings.TrimSpace(string(data))
	if err != nil {
		return &Error{StatusCode: resp.StatusCode, Message: msg}
	}
	var errResp struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(data, &errResp); err != nil {
		return &Error{StatusCode: resp.StatusCode, Message: msg}
	}
	switch {
	case errResp.Error != "":
		msg = errResp.Error
	case errResp.Message != "":
		msg = errResp.Message
	}
	return &Error{StatusCode: resp.StatusCode, Message: msg}
}

// sneakyBodyClose closes the body and ignores the error.
// This is useful to close the HTTP response body when we don't care about the error.
func sneakyBodyClose(body io.ReadCloser) {
	if body != nil {
		_ = body.Close()
	}
}
