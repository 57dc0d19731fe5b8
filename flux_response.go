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
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/influxdata/flux"
	"github.com/influxdata/flux/csv"
)

const (
	fluxResultColumn      = "result"
	fluxTableColumn       = "table"
	fluxStartColumn       = "_start"
	fluxStopColumn        = "_stop"
	fluxTimeColumn        = "_time"
	fluxMeasurementColumn = "_measurement"
	fluxFieldColumn       = "_field"
	fluxValueColumn       = "_value"
)

// fluxBlockSeparator separates the tables of different results.
const fluxBlockSeparator = "\r\n\r\n"

// ParseFlux parses an annotated CSV response of the InfluxDB /api/v2/query
// endpoint. Every block of the response becomes one StatementResult, and
// every Flux table of a block becomes one TaggedTable built by factory.
//
// Within a table, the index is the _time column, the tags are the group key
// columns other than result, table, _start, _stop, _measurement and _field,
// and the _value column is named after the _field of the table. The name of
// a table is its _measurement, or the result name if the table has none.
//
// The returned error is set when a block lacks one of its annotation rows
// (*AnnotationError). In-band Flux errors fail the statement of their block
// with a *StatementError, undecodable CSV with a *SyntaxError and cells that
// cannot be used with a *ValueError.
func ParseFlux[T any](data []byte, factory TableFactory[T]) ([]StatementResult[T], error) {
	blocks := strings.Split(string(data), fluxBlockSeparator)

	results := make([]StatementResult[T], 0, len(blocks))
	for _, block := range blocks {
		if strings.TrimSpace(block) == "" {
			continue
		}

		labels, err := checkFluxAnnotations(block)
		if err != nil {
			return nil, err
		}

		id := len(results)
		results = append(results, parseFluxBlock(id, block, isFluxErrorTable(labels), factory))
	}
	return results, nil
}

// checkFluxAnnotations makes sure the block starts with the three annotation
// rows and a header row, and returns the column labels.
func checkFluxAnnotations(block string) ([]string, error) {
	lines := strings.SplitN(strings.TrimLeft(block, "\r\n"), "\n", 5)
	for i := range lines {
		lines[i] = strings.TrimSuffix(lines[i], "\r")
	}

	for i, a := range []struct {
		prefix string
		row    string
	}{
		{"#datatype,", "data types"},
		{"#group,", "grouping"},
		{"#default,", "default"},
	} {
		if len(lines) <= i || !strings.HasPrefix(lines[i], a.prefix) {
			return nil, &AnnotationError{Row: a.row}
		}
	}
	if len(lines) < 4 || lines[3] == "" || strings.HasPrefix(lines[3], "#") {
		return nil, &AnnotationError{Row: "columns"}
	}
	return strings.Split(lines[3], ","), nil
}

func isFluxErrorTable(labels []string) bool {
	return len(labels) == 3 && labels[1] == "error" && labels[2] == "reference"
}

func parseFluxBlock[T any](id int, block string, errorTable bool, factory TableFactory[T]) StatementResult[T] {
	result := StatementResult[T]{StatementID: id}

	var tables []TaggedTable[T]
	var tableErr error

	dec := csv.NewResultDecoder(csv.ResultDecoderConfig{})
	res, err := dec.Decode(strings.NewReader(block))
	if err == nil {
		err = res.Tables().Do(func(tbl flux.Table) error {
			table, ok, err := readFluxTable(res.Name(), tbl, factory)
			if err != nil {
				tableErr = err
				return err
			}
			if ok {
				tables = append(tables, table)
			}
			return nil
		})
	}

	switch {
	case errorTable:
		msg := "unknown flux error"
		if err != nil {
			msg = err.Error()
		}
		result.Err = &StatementError{StatementID: id, Message: msg}
	case tableErr != nil:
		result.Err = tableErr
	case err != nil:
		result.Err = &SyntaxError{Format: "csv", Err: err}
	default:
		result.Tables = tables
	}
	return result
}

// readFluxTable builds one table. Tables without rows are skipped.
func readFluxTable[T any](result string, tbl flux.Table, factory TableFactory[T]) (TaggedTable[T], bool, error) {
	var zero TaggedTable[T]

	key := tbl.Key()
	name, field, tags := result, "", Tags(nil)
	for j, c := range key.Cols() {
		if key.IsNull(j) {
			continue
		}
		switch c.Label {
		case fluxMeasurementColumn:
			if c.Type == flux.TString {
				name = key.ValueString(j)
			}
		case fluxFieldColumn:
			if c.Type == flux.TString {
				field = key.ValueString(j)
			}
		case fluxResultColumn, fluxTableColumn, fluxStartColumn, fluxStopColumn:
		default:
			if tags == nil {
				tags = make(Tags)
			}
			tags[c.Label] = fluxKeyString(key, j)
		}
	}

	cols := tbl.Cols()
	timeIdx := -1
	for j, c := range cols {
		if c.Label == fluxTimeColumn {
			timeIdx = j
		}
	}
	if timeIdx < 0 {
		tbl.Done()
		return zero, false, &ValueError{Reason: "table has no _time column"}
	}
	if cols[timeIdx].Type != flux.TTime {
		tbl.Done()
		return zero, false, &ValueError{Reason: fmt.Sprintf("_time column has type %s", cols[timeIdx].Type)}
	}

	names := make(map[int]string)
	for j, c := range cols {
		switch {
		case key.HasCol(c.Label):
		case c.Label == fluxResultColumn, c.Label == fluxTableColumn, c.Label == fluxTimeColumn:
		case c.Label == fluxValueColumn && field != "":
			names[j] = field
		default:
			names[j] = c.Label
		}
	}

	var index []time.Time
	columns := make(map[string][]Value, len(names))
	err := tbl.Do(func(cr flux.ColReader) error {
		times := cr.Times(timeIdx)
		for i := 0; i < cr.Len(); i++ {
			if times.IsNull(i) {
				return &ValueError{Reason: "value is null"}
			}
			index = append(index, time.Unix(0, times.Value(i)).UTC())

			for j, colName := range names {
				v, err := fluxCell(cr, j, i)
				if err != nil {
					return &ValueError{Reason: fmt.Sprintf("column %q", cols[j].Label), Err: err}
				}
				columns[colName] = append(columns[colName], v)
			}
		}
		return nil
	})
	if err != nil {
		return zero, false, err
	}
	if len(index) == 0 {
		return zero, false, nil
	}

	table, err := buildTable(factory, name, index, columns)
	if err != nil {
		return zero, false, err
	}
	return TaggedTable[T]{Table: table, Tags: tags}, true, nil
}

func fluxCell(cr flux.ColReader, j, i int) (Value, error) {
	null := &ValueError{Reason: "value is null"}

	switch typ := cr.Cols()[j].Type; typ {
	case flux.TString:
		a := cr.Strings(j)
		if a.IsNull(i) {
			return StringValue(""), nil
		}
		return StringValue(a.ValueString(i)), nil
	case flux.TFloat:
		a := cr.Floats(j)
		if a.IsNull(i) {
			return Value{}, null
		}
		return FloatValue(a.Value(i)), nil
	case flux.TInt:
		a := cr.Ints(j)
		if a.IsNull(i) {
			return Value{}, null
		}
		return IntegerValue(a.Value(i)), nil
	case flux.TUInt:
		a := cr.UInts(j)
		if a.IsNull(i) {
			return Value{}, null
		}
		return UnsignedValue(a.Value(i)), nil
	case flux.TBool:
		a := cr.Bools(j)
		if a.IsNull(i) {
			return Value{}, null
		}
		return BooleanValue(a.Value(i)), nil
	case flux.TTime:
		a := cr.Times(j)
		if a.IsNull(i) {
			return Value{}, null
		}
		return TimestampValue(time.Unix(0, a.Value(i)).UTC()), nil
	default:
		return Value{}, fmt.Errorf("unsupported column type %s", typ)
	}
}

func fluxKeyString(key flux.GroupKey, j int) string {
	switch key.Cols()[j].Type {
	case flux.TString:
		return key.ValueString(j)
	case flux.TInt:
		return strconv.FormatInt(key.ValueInt(j), 10)
	case flux.TUInt:
		return strconv.FormatUint(key.ValueUInt(j), 10)
	case flux.TFloat:
		return strconv.FormatFloat(key.ValueFloat(j), 'f', -1, 64)
	case flux.TBool:
		return strconv.FormatBool(key.ValueBool(j))
	case flux.TTime:
		return key.ValueTime(j).Time().UTC().Format(time.RFC3339Nano)
	default:
		return fmt.Sprint(key.Value(j))
	}
}
