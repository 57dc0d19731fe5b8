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
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/apache/arrow/go/v17/arrow"
	"github.com/apache/arrow/go/v17/arrow/array"
	"github.com/apache/arrow/go/v17/arrow/ipc"
	"github.com/apache/arrow/go/v17/arrow/memory"
)

// ArrowTimeColumn is the name of the index column of an ArrowFrame.
const ArrowTimeColumn = "time"

const arrowNameMetadataKey = "influxframe.name"

// ArrowFrame is a series stored as an Arrow record. The first column is the
// time index, followed by the value columns in ascending name order.
type ArrowFrame struct {
	Name   string
	Record arrow.Record
}

// Release releases the underlying record.
func (f *ArrowFrame) Release() {
	if f.Record != nil {
		f.Record.Release()
	}
}

// NewArrowFactory returns a TableFactory building Arrow records with alloc.
// A nil alloc uses memory.DefaultAllocator.
//
// Callers own the returned frames and must Release them.
func NewArrowFactory(alloc memory.Allocator) TableFactory[*ArrowFrame] {
	if alloc == nil {
		alloc = memory.DefaultAllocator
	}
	return func(name string, index []time.Time, columns map[string][]Value) (*ArrowFrame, error) {
		return newArrowFrame(alloc, name, index, columns)
	}
}

func newArrowFrame(alloc memory.Allocator, name string, index []time.Time, columns map[string][]Value) (*ArrowFrame, error) {
	names := make([]string, 0, len(columns))
	for colName := range columns {
		names = append(names, colName)
	}
	sort.Strings(names)

	fields := make([]arrow.Field, 0, len(names)+1)
	fields = append(fields, arrow.Field{Name: ArrowTimeColumn, Type: arrow.FixedWidthTypes.Timestamp_ns})
	for _, colName := range names {
		if colName == ArrowTimeColumn {
			return nil, &ValueError{Reason: fmt.Sprintf("column %q collides with the time index", colName)}
		}
		values := columns[colName]
		if len(values) != len(index) {
			return nil, &ValueError{
				Reason: fmt.Sprintf("column %q has %d values, index has %d", colName, len(values), len(index)),
			}
		}
		if len(values) == 0 {
			return nil, &ValueError{Reason: fmt.Sprintf("column %q", colName), Err: ErrEmptyColumn}
		}
		dt, err := arrowType(values[0].Kind())
		if err != nil {
			return nil, &ValueError{Reason: fmt.Sprintf("column %q", colName), Err: err}
		}
		fields = append(fields, arrow.Field{Name: colName, Type: dt})
	}

	md := arrow.NewMetadata([]string{arrowNameMetadataKey}, []string{name})
	schema := arrow.NewSchema(fields, &md)

	b := array.NewRecordBuilder(alloc, schema)
	defer b.Release()

	tb := b.Field(0).(*array.TimestampBuilder)
	for _, t := range index {
		tb.Append(arrow.Timestamp(t.UnixNano()))
	}

	for i, colName := range names {
		if err := appendArrowColumn(b.Field(i+1), columns[colName]); err != nil {
			return nil, &ValueError{Reason: fmt.Sprintf("column %q", colName), Err: err}
		}
	}

	return &ArrowFrame{Name: name, Record: b.NewRecord()}, nil
}

func arrowType(k Kind) (arrow.DataType, error) {
	switch k {
	case FloatKind:
		return arrow.PrimitiveTypes.Float64, nil
	case IntegerKind:
		return arrow.PrimitiveTypes.Int64, nil
	case UnsignedKind:
		return arrow.PrimitiveTypes.Uint64, nil
	case StringKind:
		return arrow.BinaryTypes.String, nil
	case BooleanKind:
		return arrow.FixedWidthTypes.Boolean, nil
	case TimestampKind:
		return arrow.FixedWidthTypes.Timestamp_ns, nil
	default:
		return nil, fmt.Errorf("unsupported kind %s", k)
	}
}

func appendArrowColumn(b array.Builder, values []Value) error {
	kind := values[0].Kind()
	for i, v := range values {
		if !v.CanNarrow(kind) {
			return fmt.Errorf("row %d: cannot store %s in a %s column", i, v.Kind(), kind)
		}
	}

	switch b := b.(type) {
	case *array.Float64Builder:
		for _, v := range values {
			b.Append(v.AsFloat())
		}
	case *array.Int64Builder:
		for _, v := range values {
			b.Append(v.AsInteger())
		}
	case *array.Uint64Builder:
		for _, v := range values {
			b.Append(v.AsUnsigned())
		}
	case *array.StringBuilder:
		for _, v := range values {
			b.Append(v.AsString())
		}
	case *array.BooleanBuilder:
		for _, v := range values {
			b.Append(v.AsBoolean())
		}
	case *array.TimestampBuilder:
		for _, v := range values {
			b.Append(arrow.Timestamp(v.AsTimestamp().UnixNano()))
		}
	default:
		return fmt.Errorf("unsupported builder %T", b)
	}
	return nil
}

// DataFrame converts the frame back into a DataFrame.
func (f *ArrowFrame) DataFrame() (*DataFrame, error) {
	rec := f.Record
	if rec.NumCols() == 0 || rec.ColumnName(0) != ArrowTimeColumn {
		return nil, errors.New("record has no time column")
	}
	ts, ok := rec.Column(0).(*array.Timestamp)
	if !ok {
		return nil, fmt.Errorf("time column has type %s", rec.Column(0).DataType())
	}

	n := int(rec.NumRows())
	index := make([]time.Time, n)
	for i := 0; i < n; i++ {
		index[i] = time.Unix(0, int64(ts.Value(i))).UTC()
	}

	columns := make(map[string][]Value, rec.NumCols()-1)
	for c := 1; c < int(rec.NumCols()); c++ {
		values := make([]Value, n)
		for i := 0; i < n; i++ {
			v, err := arrowValue(rec.Column(c), i)
			if err != nil {
				return nil, err
			}
			values[i] = v
		}
		columns[rec.ColumnName(c)] = values
	}
	return NewDataFrame(f.Name, index, columns)
}

func arrowValue(arr arrow.Array, i int) (Value, error) {
	if arr.IsNull(i) {
		return Value{}, &ValueError{Reason: "value is null"}
	}
	switch arr := arr.(type) {
	case *array.Float64:
		return FloatValue(arr.Value(i)), nil
	case *array.Int64:
		return IntegerValue(arr.Value(i)), nil
	case *array.Uint64:
		return UnsignedValue(arr.Value(i)), nil
	case *array.String:
		return StringValue(arr.Value(i)), nil
	case *array.Boolean:
		return BooleanValue(arr.Value(i)), nil
	case *array.Timestamp:
		return TimestampValue(time.Unix(0, int64(arr.Value(i))).UTC()), nil
	default:
		return Value{}, fmt.Errorf("unsupported arrow type %s", arr.DataType())
	}
}

// WriteArrowFrame writes f to w as an Arrow IPC stream. The frame name is
// kept in the schema metadata.
func WriteArrowFrame(w io.Writer, f *ArrowFrame) (err error) {
	writer := ipc.NewWriter(w, ipc.WithSchema(f.Record.Schema()))
	defer func() {
		err = errors.Join(err, writer.Close())
	}()
	return writer.Write(f.Record)
}

// ReadArrowFrame reads a frame written by WriteArrowFrame. A nil alloc uses
// memory.DefaultAllocator.
func ReadArrowFrame(r io.Reader, alloc memory.Allocator) (*ArrowFrame, error) {
	if alloc == nil {
		alloc = memory.DefaultAllocator
	}
	reader, err := ipc.NewReader(r, ipc.WithAllocator(alloc))
	if err != nil {
		return nil, err
	}
	defer reader.Release()

	if !reader.Next() {
		if err := reader.Err(); err != nil {
			return nil, err
		}
		return nil, errors.New("arrow stream holds no record")
	}
	rec := reader.Record()
	rec.Retain()

	var name string
	md := rec.Schema().Metadata()
	if i := md.FindKey(arrowNameMetadataKey); i >= 0 {
		name = md.Values()[i]
	}
	return &ArrowFrame{Name: name, Record: rec}, nil
}
