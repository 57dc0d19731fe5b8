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
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	influxframe "github.com/influxframe/influxframe-go"
)

const cpuPredicate = `r._measurement == "cpu" and
                r._field == "usage_system" and
                r.cpu == "cpu-total"`

func TestFluxQuery(t *testing.T) {
	actual := influxframe.NewFluxQuery("telegraf/autogen").
		RangeStart(influxframe.Relative(influxframe.NewDuration(-15, influxframe.Minutes))).
		Build()

	require.Equal(t, `from(bucket: "telegraf/autogen")
  |> range(start: -15m)
  |> yield()`, actual)
}

func TestFluxQueryWithFilter(t *testing.T) {
	actual := influxframe.NewFluxQuery("telegraf/autogen").
		RangeStart(influxframe.Relative(influxframe.NewDuration(-15, influxframe.Minutes))).
		Filter(cpuPredicate).
		Build()

	require.Equal(t, `from(bucket: "telegraf/autogen")
  |> range(start: -15m)
  |> filter(fn: (r) =>
    r._measurement == "cpu" and
    r._field == "usage_system" and
    r.cpu == "cpu-total"
  )
  |> yield()`, actual)
}

func TestFluxQueryWithStatements(t *testing.T) {
	actual := influxframe.NewFluxQuery("telegraf/autogen").
		RangeStart(influxframe.Relative(influxframe.NewDuration(-1, influxframe.Hours))).
		Filter(cpuPredicate).
		Window(influxframe.NewDuration(5, influxframe.Minutes)).
		Mean().
		Duplicate("_stop", "_time").
		Window(influxframe.Infinity).
		Build()

	require.Equal(t, `from(bucket: "telegraf/autogen")
  |> range(start: -1h)
  |> filter(fn: (r) =>
    r._measurement == "cpu" and
    r._field == "usage_system" and
    r.cpu == "cpu-total"
  )
  |> window(every: 5m)
  |> mean()
  |> duplicate(column: "_stop", as: "_time")
  |> window(every: inf)
  |> yield()`, actual)
}

func TestFluxQueryRanges(t *testing.T) {
	start := influxframe.Instant(time.Date(2021, 3, 7, 21, 0, 0, 0, time.UTC))
	stop := influxframe.Relative(influxframe.NewDuration(0, influxframe.Seconds))

	actual := influxframe.NewFluxQuery("house").
		Range(start, stop).
		AggregateWindow("max", influxframe.DurationOf(90*time.Minute)).
		Build()
	require.Equal(t, `from(bucket: "house")
  |> range(start: '2021-03-07T21:00:00Z', stop: 0s)
  |> aggregateWindow(fn: max, every: 90m)
  |> yield()`, actual)

	actual = influxframe.NewFluxQuery("house").
		RangeStop(influxframe.Relative(influxframe.DurationOf(-48 * time.Hour))).
		Aggregate("last").
		Build()
	require.Equal(t, `from(bucket: "house")
  |> range(stop: -2d)
  |> last()
  |> yield()`, actual)
}

func TestDurationOf(t *testing.T) {
	for _, tc := range []struct {
		in   time.Duration
		want string
	}{
		{0, "0ns"},
		{36 * time.Hour, "36h"},
		{-15 * time.Minute, "-15m"},
		{1500 * time.Millisecond, "1500ms"},
		{3 * time.Microsecond, "3us"},
		{7, "7ns"},
	} {
		t.Run(tc.want, func(t *testing.T) {
			require.Equal(t, tc.want, influxframe.DurationOf(tc.in).String())
		})
	}

	require.True(t, influxframe.Infinity.IsInfinite())
	require.False(t, influxframe.NewDuration(1, influxframe.Days).IsInfinite())
	require.Equal(t, "1d", influxframe.NewDuration(1, influxframe.Days).String())
}
