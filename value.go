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
	"fmt"
	"math"
	"strconv"
	"time"

	"go.uber.org/zap"
)

// Kind is the type of a Value.
type Kind uint8

const (
	// InvalidKind is the kind of the zero Value.
	InvalidKind Kind = iota
	// FloatKind is a 64-bit floating point value.
	FloatKind
	// IntegerKind is a signed 64-bit integer value.
	IntegerKind
	// UnsignedKind is an unsigned 64-bit integer value.
	UnsignedKind
	// StringKind is a string value.
	StringKind
	// BooleanKind is a boolean value.
	BooleanKind
	// TimestampKind is a UTC instant with nanosecond precision.
	TimestampKind
)

func (k Kind) String() string {
	switch k {
	case FloatKind:
		return "float"
	case IntegerKind:
		return "integer"
	case UnsignedKind:
		return "unsigned"
	case StringKind:
		return "string"
	case BooleanKind:
		return "boolean"
	case TimestampKind:
		return "timestamp"
	case InvalidKind:
		return "invalid"
	default:
		return "kind(" + strconv.Itoa(int(k)) + ")"
	}
}

func (k Kind) numeric() bool {
	return k == FloatKind || k == IntegerKind || k == UnsignedKind
}

// Value stores the contents of a single cell of an InfluxDB response.
//
// A Value is one of the kinds InfluxDB can store. It is immutable; use the
// constructors to create one and the As* methods to read it back.
type Value struct {
	kind Kind
	num  uint64
	str  string
	ts   time.Time
}

// FloatValue returns a Value holding f.
func FloatValue(f float64) Value {
	return Value{kind: FloatKind, num: math.Float64bits(f)}
}

// IntegerValue returns a Value holding i.
func IntegerValue(i int64) Value {
	return Value{kind: IntegerKind, num: uint64(i)}
}

// UnsignedValue returns a Value holding u.
func UnsignedValue(u uint64) Value {
	return Value{kind: UnsignedKind, num: u}
}

// StringValue returns a Value holding s.
func StringValue(s string) Value {
	return Value{kind: StringKind, str: s}
}

// BooleanValue returns a Value holding b.
func BooleanValue(b bool) Value {
	v := Value{kind: BooleanKind}
	if b {
		v.num = 1
	}
	return v
}

// TimestampValue returns a Value holding t converted to UTC.
func TimestampValue(t time.Time) Value {
	return Value{kind: TimestampKind, ts: t.UTC()}
}

// NewValue converts a decoded wire scalar into a Value.
//
// JSON numbers decoded as json.Number become Integer when they are exact
// signed 64-bit integers, Unsigned when they only fit an unsigned 64-bit
// integer, and Float otherwise. A nil, array or object input is rejected
// with a *ValueError, since a Value cannot represent missing data.
func NewValue(v any) (Value, error) {
	switch v := v.(type) {
	case nil:
		return Value{}, &ValueError{Reason: "value is null"}
	case bool:
		return BooleanValue(v), nil
	case json.Number:
		return numberValue(v)
	case float64:
		return FloatValue(v), nil
	case float32:
		return FloatValue(float64(v)), nil
	case int:
		return IntegerValue(int64(v)), nil
	case int32:
		return IntegerValue(int64(v)), nil
	case int64:
		return IntegerValue(v), nil
	case uint:
		return UnsignedValue(uint64(v)), nil
	case uint32:
		return UnsignedValue(uint64(v)), nil
	case uint64:
		return UnsignedValue(v), nil
	case string:
		return StringValue(v), nil
	case time.Time:
		return TimestampValue(v), nil
	case []any:
		return Value{}, &ValueError{Reason: "value is a JSON array"}
	case map[string]any:
		return Value{}, &ValueError{Reason: "value is a JSON object"}
	default:
		return Value{}, &ValueError{Reason: fmt.Sprintf("unsupported value type %T", v)}
	}
}

func numberValue(n json.Number) (Value, error) {
	s := n.String()
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return IntegerValue(i), nil
	}
	if u, err := strconv.ParseUint(s, 10, 64); err == nil {
		return UnsignedValue(u), nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return Value{}, &ValueError{Reason: "value is an invalid number", Err: err}
	}
	return FloatValue(f), nil
}

// Kind returns the kind of v.
func (v Value) Kind() Kind {
	return v.kind
}

// CanNarrow reports whether v can be read back as kind k without panicking.
func (v Value) CanNarrow(k Kind) bool {
	if v.kind == k {
		return v.kind != InvalidKind
	}
	return v.kind.numeric() && k.numeric()
}

// AsFloat returns v as a float64. Integer and Unsigned values are widened.
//
// It panics if v is not numeric.
func (v Value) AsFloat() float64 {
	switch v.kind {
	case FloatKind:
		return math.Float64frombits(v.num)
	case IntegerKind:
		return float64(int64(v.num))
	case UnsignedKind:
		return float64(v.num)
	default:
		panic(fmt.Sprintf("influxframe: not a float: %s", v.describe()))
	}
}

// AsInteger returns v as an int64.
//
// Float values are truncated and a precision-loss warning is logged.
// It panics if v is not numeric.
func (v Value) AsInteger() int64 {
	switch v.kind {
	case IntegerKind:
		return int64(v.num)
	case UnsignedKind:
		if v.num > math.MaxInt64 {
			zap.L().Warn("casting unsigned to integer overflows", zap.Uint64("value", v.num))
		}
		return int64(v.num)
	case FloatKind:
		f := math.Float64frombits(v.num)
		zap.L().Warn("casting float to integer", zap.Float64("value", f))
		return int64(f)
	default:
		panic(fmt.Sprintf("influxframe: not an integer: %s", v.describe()))
	}
}

// AsUnsigned returns v as a uint64.
//
// Negative integers and floats are converted with a logged warning.
// It panics if v is not numeric.
func (v Value) AsUnsigned() uint64 {
	switch v.kind {
	case UnsignedKind:
		return v.num
	case IntegerKind:
		if int64(v.num) < 0 {
			zap.L().Warn("casting negative integer to unsigned", zap.Int64("value", int64(v.num)))
		}
		return v.num
	case FloatKind:
		f := math.Float64frombits(v.num)
		zap.L().Warn("casting float to unsigned", zap.Float64("value", f))
		return uint64(f)
	default:
		panic(fmt.Sprintf("influxframe: not an unsigned: %s", v.describe()))
	}
}

// AsString returns v as a string. It panics if v is not a String.
func (v Value) AsString() string {
	if v.kind != StringKind {
		panic(fmt.Sprintf("influxframe: not a string: %s", v.describe()))
	}
	return v.str
}

// AsBoolean returns v as a bool. It panics if v is not a Boolean.
func (v Value) AsBoolean() bool {
	if v.kind != BooleanKind {
		panic(fmt.Sprintf("influxframe: not a boolean: %s", v.describe()))
	}
	return v.num != 0
}

// AsTimestamp returns v as a UTC time. It panics if v is not a Timestamp.
func (v Value) AsTimestamp() time.Time {
	if v.kind != TimestampKind {
		panic(fmt.Sprintf("influxframe: not a timestamp: %s", v.describe()))
	}
	return v.ts
}

// Interface returns v as the matching Go value: float64, int64, uint64,
// string, bool or time.Time. The zero Value returns nil.
func (v Value) Interface() any {
	switch v.kind {
	case FloatKind:
		return math.Float64frombits(v.num)
	case IntegerKind:
		return int64(v.num)
	case UnsignedKind:
		return v.num
	case StringKind:
		return v.str
	case BooleanKind:
		return v.num != 0
	case TimestampKind:
		return v.ts
	default:
		return nil
	}
}

// Equal reports whether v and o have the same kind and content.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case StringKind:
		return v.str == o.str
	case TimestampKind:
		return v.ts.Equal(o.ts)
	default:
		return v.num == o.num
	}
}

func (v Value) String() string {
	switch v.kind {
	case FloatKind:
		return strconv.FormatFloat(math.Float64frombits(v.num), 'f', -1, 64)
	case IntegerKind:
		return strconv.FormatInt(int64(v.num), 10)
	case UnsignedKind:
		return strconv.FormatUint(v.num, 10)
	case StringKind:
		return v.str
	case BooleanKind:
		return strconv.FormatBool(v.num != 0)
	case TimestampKind:
		return v.ts.Format(time.RFC3339Nano)
	default:
		return "<invalid>"
	}
}

func (v Value) describe() string {
	return v.kind.String() + "(" + v.String() + ")"
}
