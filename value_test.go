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

package influxframe_test

import (
	"encoding/json"
	"math"
	"testing"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	influxframe "github.com/influxframe/influxframe-go"
)

func TestNewValueFromJSONNumber(t *testing.T) {
	for _, tc := range []struct {
		input string
		kind  influxframe.Kind
		want  any
	}{
		{"42", influxframe.IntegerKind, int64(42)},
		{"-55", influxframe.IntegerKind, int64(-55)},
		{"42.0", influxframe.FloatKind, 42.0},
		{"1e3", influxframe.FloatKind, 1000.0},
		{"9223372036854775807", influxframe.IntegerKind, int64(math.MaxInt64)},
		{"9223372036854775808", influxframe.UnsignedKind, uint64(math.MaxInt64) + 1},
		{"18446744073709551615", influxframe.UnsignedKind, uint64(math.MaxUint64)},
		{"18446744073709551616", influxframe.FloatKind, 18446744073709551616.0},
	} {
		t.Run(tc.input, func(t *testing.T) {
			v, err := influxframe.NewValue(json.Number(tc.input))
			require.NoError(t, err)
			require.Equal(t, tc.kind, v.Kind())
			require.Equal(t, tc.want, v.Interface())
		})
	}
}

func TestNewValueRejectsNonScalars(t *testing.T) {
	for name, input := range map[string]any{
		"null":   nil,
		"array":  []any{json.Number("1")},
		"object": map[string]any{"a": "b"},
	} {
		t.Run(name, func(t *testing.T) {
			_, err := influxframe.NewValue(input)
			var valueErr *influxframe.ValueError
			require.ErrorAs(t, err, &valueErr)
		})
	}
}

func TestNewValueScalars(t *testing.T) {
	v, err := influxframe.NewValue(true)
	require.NoError(t, err)
	require.True(t, v.AsBoolean())

	v, err = influxframe.NewValue("bedroom")
	require.NoError(t, err)
	require.Equal(t, "bedroom", v.AsString())

	ts := time.Date(2021, 3, 4, 17, 0, 0, 0, time.FixedZone("CET", 3600))
	v, err = influxframe.NewValue(ts)
	require.NoError(t, err)
	require.Equal(t, time.UTC, v.AsTimestamp().Location())
	require.True(t, ts.Equal(v.AsTimestamp()))
}

func TestNumericNarrowing(t *testing.T) {
	i := influxframe.IntegerValue(42)
	require.Equal(t, 42.0, i.AsFloat())
	require.Equal(t, uint64(42), i.AsUnsigned())

	u := influxframe.UnsignedValue(7)
	require.Equal(t, int64(7), u.AsInteger())
	require.Equal(t, 7.0, u.AsFloat())

	for _, k := range []influxframe.Kind{influxframe.FloatKind, influxframe.IntegerKind, influxframe.UnsignedKind} {
		require.True(t, i.CanNarrow(k))
		require.False(t, influxframe.StringValue("x").CanNarrow(k))
	}
	require.False(t, i.CanNarrow(influxframe.StringKind))
	require.False(t, influxframe.Value{}.CanNarrow(influxframe.InvalidKind))
}

func TestLossyNarrowingLogsWarning(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	defer zap.ReplaceGlobals(zap.New(core))()

	require.Equal(t, int64(2), influxframe.FloatValue(2.75).AsInteger())
	require.Equal(t, uint64(3), influxframe.FloatValue(3.5).AsUnsigned())
	require.Equal(t, int64(5), influxframe.IntegerValue(5).AsInteger())

	require.Equal(t, 2, logs.Len())
	require.Equal(t, "casting float to integer", logs.All()[0].Message)
}

func TestMismatchedNarrowingPanics(t *testing.T) {
	require.PanicsWithValue(t, "influxframe: not a boolean: string(on)", func() {
		influxframe.StringValue("on").AsBoolean()
	})
	require.Panics(t, func() { influxframe.BooleanValue(true).AsFloat() })
	require.Panics(t, func() { influxframe.FloatValue(1).AsString() })
	require.Panics(t, func() { influxframe.IntegerValue(1).AsTimestamp() })
}

func TestValueEqualAndString(t *testing.T) {
	faker := gofakeit.New(0)
	for i := 0; i < 100; i++ {
		f := faker.Float64()
		require.True(t, influxframe.FloatValue(f).Equal(influxframe.FloatValue(f)))

		n := faker.Int64()
		require.True(t, influxframe.IntegerValue(n).Equal(influxframe.IntegerValue(n)))
		require.False(t, influxframe.IntegerValue(n).Equal(influxframe.FloatValue(float64(n))))

		s := faker.Word()
		require.Equal(t, s, influxframe.StringValue(s).String())
	}

	require.Equal(t, "55.383333", influxframe.FloatValue(55.383333).String())
	require.Equal(t, "18446744073709551615", influxframe.UnsignedValue(math.MaxUint64).String())
	require.Equal(t, "false", influxframe.BooleanValue(false).String())
	require.Equal(t, "2014-07-08T09:10:11Z",
		influxframe.TimestampValue(time.Date(2014, 7, 8, 9, 10, 11, 0, time.UTC)).String())
}
