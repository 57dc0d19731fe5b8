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
	"errors"
	"time"

	"go.uber.org/multierr"
)

// TableFactory builds a table of type T from a series name, its time index
// and its value columns.
//
// Parsers call the factory once per series, so it must not keep state
// between calls. NewDataFrame is the factory of the built-in DataFrame;
// NewArrowFactory builds Arrow records instead.
type TableFactory[T any] func(name string, index []time.Time, columns map[string][]Value) (T, error)

// Tags is the set of tag keys and values identifying a grouped series.
//
// A nil Tags means the server returned no tags for the series.
type Tags map[string]string

// TaggedTable is a table accompanied by the tags of its series.
type TaggedTable[T any] struct {
	Table T
	Tags  Tags
}

// StatementResult is the outcome of one statement of a query.
//
// Either Err is set and the statement failed, or Tables holds one entry
// per series returned for the statement (possibly none).
type StatementResult[T any] struct {
	// StatementID is the identifier reported by the server, if any.
	StatementID int
	// Tables holds the series of the statement in server order.
	Tables []TaggedTable[T]
	// Err is the failure of this statement only.
	Err error
}

// StatementErrors combines the errors of every failed statement, or returns
// nil if all statements succeeded.
func StatementErrors[T any](results []StatementResult[T]) error {
	var err error
	for _, r := range results {
		err = multierr.Append(err, r.Err)
	}
	return err
}

// buildTable calls the factory and brings its error into the library's
// error taxonomy.
func buildTable[T any](factory TableFactory[T], name string, index []time.Time, columns map[string][]Value) (T, error) {
	table, err := factory(name, index, columns)
	if err != nil {
		var zero T
		return zero, wrapFactoryError(err)
	}
	return table, nil
}

func wrapFactoryError(err error) error {
	var (
		valueErr    *ValueError
		datetimeErr *DatetimeError
		frameErr    *DataFrameError
	)
	switch {
	case errors.As(err, &valueErr), errors.As(err, &datetimeErr), errors.As(err, &frameErr):
		return err
	default:
		return &DataFrameError{Err: err}
	}
}
