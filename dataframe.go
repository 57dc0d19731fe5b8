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
	"slices"
	"sort"
	"strings"
	"time"
)

// Column is a homogeneous, read-only column of a DataFrame.
type Column interface {
	// Kind is the kind shared by every cell of the column.
	Kind() Kind
	// Len is the number of cells.
	Len() int
	// Value returns the i-th cell.
	Value(i int) Value
}

type (
	// FloatColumn is a column of float values.
	FloatColumn []float64
	// IntegerColumn is a column of signed integer values.
	IntegerColumn []int64
	// UnsignedColumn is a column of unsigned integer values.
	UnsignedColumn []uint64
	// StringColumn is a column of string values.
	StringColumn []string
	// BooleanColumn is a column of boolean values.
	BooleanColumn []bool
	// TimestampColumn is a column of UTC instants.
	TimestampColumn []time.Time
)

func (c FloatColumn) Kind() Kind        { return FloatKind }
func (c FloatColumn) Len() int          { return len(c) }
func (c FloatColumn) Value(i int) Value { return FloatValue(c[i]) }

func (c IntegerColumn) Kind() Kind        { return IntegerKind }
func (c IntegerColumn) Len() int          { return len(c) }
func (c IntegerColumn) Value(i int) Value { return IntegerValue(c[i]) }

func (c UnsignedColumn) Kind() Kind        { return UnsignedKind }
func (c UnsignedColumn) Len() int          { return len(c) }
func (c UnsignedColumn) Value(i int) Value { return UnsignedValue(c[i]) }

func (c StringColumn) Kind() Kind        { return StringKind }
func (c StringColumn) Len() int          { return len(c) }
func (c StringColumn) Value(i int) Value { return StringValue(c[i]) }

func (c BooleanColumn) Kind() Kind        { return BooleanKind }
func (c BooleanColumn) Len() int          { return len(c) }
func (c BooleanColumn) Value(i int) Value { return BooleanValue(c[i]) }

func (c TimestampColumn) Kind() Kind        { return TimestampKind }
func (c TimestampColumn) Len() int          { return len(c) }
func (c TimestampColumn) Value(i int) Value { return TimestampValue(c[i]) }

// DataFrame is a time-indexed table of named homogeneous columns.
//
// A DataFrame is built once from a complete set of rows by NewDataFrame and
// is read-only afterwards.
type DataFrame struct {
	name    string
	index   []time.Time
	columns map[string]Column
}

// Ensure NewDataFrame is a TableFactory.
var _ TableFactory[*DataFrame] = NewDataFrame

// NewDataFrame builds a DataFrame from a name, a time index and a set of
// value columns.
//
// The representation of each column is chosen from the kind of its first
// cell, and every other cell must narrow to that kind. Columns must have as
// many cells as the index has instants.
func NewDataFrame(name string, index []time.Time, columns map[string][]Value) (*DataFrame, error) {
	df := &DataFrame{
		name:    name,
		index:   make([]time.Time, len(index)),
		columns: make(map[string]Column, len(columns)),
	}
	for i, t := range index {
		df.index[i] = t.UTC()
	}

	for colName, values := range columns {
		if len(values) != len(index) {
			return nil, &ValueError{
				Reason: fmt.Sprintf("column %q has %d values, index has %d", colName, len(values), len(index)),
			}
		}
		col, err := buildColumn(values)
		if err != nil {
			return nil, &ValueError{Reason: fmt.Sprintf("column %q", colName), Err: err}
		}
		df.columns[colName] = col
	}
	return df, nil
}

func buildColumn(values []Value) (Column, error) {
	if len(values) == 0 {
		return nil, ErrEmptyColumn
	}

	kind := values[0].Kind()
	for i, v := range values {
		if !v.CanNarrow(kind) {
			return nil, fmt.Errorf("row %d: cannot store %s in a %s column", i, v.Kind(), kind)
		}
	}

	switch kind {
	case FloatKind:
		col := make(FloatColumn, len(values))
		for i, v := range values {
			col[i] = v.AsFloat()
		}
		return col, nil
	case IntegerKind:
		col := make(IntegerColumn, len(values))
		for i, v := range values {
			col[i] = v.AsInteger()
		}
		return col, nil
	case UnsignedKind:
		col := make(UnsignedColumn, len(values))
		for i, v := range values {
			col[i] = v.AsUnsigned()
		}
		return col, nil
	case StringKind:
		col := make(StringColumn, len(values))
		for i, v := range values {
			col[i] = v.AsString()
		}
		return col, nil
	case BooleanKind:
		col := make(BooleanColumn, len(values))
		for i, v := range values {
			col[i] = v.AsBoolean()
		}
		return col, nil
	case TimestampKind:
		col := make(TimestampColumn, len(values))
		for i, v := range values {
			col[i] = v.AsTimestamp()
		}
		return col, nil
	default:
		return nil, fmt.Errorf("unsupported kind %s", kind)
	}
}

// Name returns the name of the series the DataFrame was built from.
func (df *DataFrame) Name() string {
	return df.name
}

// Len returns the number of rows.
func (df *DataFrame) Len() int {
	return len(df.index)
}

// Index returns a copy of the time index.
func (df *DataFrame) Index() []time.Time {
	return slices.Clone(df.index)
}

// ColumnNames returns the column names in ascending order.
func (df *DataFrame) ColumnNames() []string {
	names := make([]string, 0, len(df.columns))
	for name := range df.columns {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Column returns a copy of the named column.
func (df *DataFrame) Column(name string) (Column, bool) {
	col, ok := df.columns[name]
	if !ok {
		return nil, false
	}
	return cloneColumn(col), true
}

func cloneColumn(col Column) Column {
	switch c := col.(type) {
	case FloatColumn:
		return slices.Clone(c)
	case IntegerColumn:
		return slices.Clone(c)
	case UnsignedColumn:
		return slices.Clone(c)
	case StringColumn:
		return slices.Clone(c)
	case BooleanColumn:
		return slices.Clone(c)
	case TimestampColumn:
		return slices.Clone(c)
	default:
		return col
	}
}

// Value returns the cell at the given column and row.
func (df *DataFrame) Value(column string, row int) (Value, bool) {
	col, ok := df.columns[column]
	if !ok || row < 0 || row >= col.Len() {
		return Value{}, false
	}
	return col.Value(row), true
}

// Equal reports whether df and o hold the same name, index and columns.
func (df *DataFrame) Equal(o *DataFrame) bool {
	if df == nil || o == nil {
		return df == o
	}
	if df.name != o.name || len(df.index) != len(o.index) || len(df.columns) != len(o.columns) {
		return false
	}
	for i := range df.index {
		if !df.index[i].Equal(o.index[i]) {
			return false
		}
	}
	for name, col := range df.columns {
		other, ok := o.columns[name]
		if !ok || col.Kind() != other.Kind() {
			return false
		}
		for i := 0; i < col.Len(); i++ {
			if !col.Value(i).Equal(other.Value(i)) {
				return false
			}
		}
	}
	return true
}

// String renders the DataFrame as a fixed-width text table.
func (df *DataFrame) String() string {
	names := df.ColumnNames()

	var b strings.Builder
	fmt.Fprintf(&b, "%30s  ", "datetime")
	for _, name := range names {
		fmt.Fprintf(&b, "%16s  ", name)
	}
	b.WriteString("\n")
	b.WriteString(strings.Repeat("-", 30) + "  ")
	for range names {
		b.WriteString(strings.Repeat("-", 16) + "  ")
	}
	b.WriteString("\n")

	for i, t := range df.index {
		fmt.Fprintf(&b, "%30s  ", t.Format(time.RFC3339Nano))
		for _, name := range names {
			fmt.Fprintf(&b, "%16s  ", df.columns[name].Value(i).String())
		}
		b.WriteString("\n")
	}
	return b.String()
}
