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
)

// DurationUnit is the unit of a Flux duration literal.
type DurationUnit string

const (
	Nanoseconds  DurationUnit = "ns"
	Microseconds DurationUnit = "us"
	Milliseconds DurationUnit = "ms"
	Seconds      DurationUnit = "s"
	Minutes      DurationUnit = "m"
	Hours        DurationUnit = "h"
	Days         DurationUnit = "d"
)

// Duration is a Flux duration literal such as -15m or 1d.
type Duration struct {
	Amount   int64
	Unit     DurationUnit
	infinite bool
}

// Infinity is the infinite duration, rendered as inf.
var Infinity = Duration{infinite: true}

// NewDuration returns a duration of amount units.
func NewDuration(amount int64, unit DurationUnit) Duration {
	return Duration{Amount: amount, Unit: unit}
}

// DurationOf converts d to the coarsest unit that represents it exactly.
func DurationOf(d time.Duration) Duration {
	units := []struct {
		size time.Duration
		unit DurationUnit
	}{
		{24 * time.Hour, Days},
		{time.Hour, Hours},
		{time.Minute, Minutes},
		{time.Second, Seconds},
		{time.Millisecond, Milliseconds},
		{time.Microsecond, Microseconds},
	}
	for _, u := range units {
		if d != 0 && d%u.size == 0 {
			return NewDuration(int64(d/u.size), u.unit)
		}
	}
	return NewDuration(int64(d), Nanoseconds)
}

// IsInfinite reports whether d is Infinity.
func (d Duration) IsInfinite() bool {
	return d.infinite
}

func (d Duration) String() string {
	if d.infinite {
		return "inf"
	}
	return strconv.FormatInt(d.Amount, 10) + string(d.Unit)
}

// InstantOrDuration is a bound of a Flux range: either an absolute instant
// or a duration relative to now.
type InstantOrDuration struct {
	instant  time.Time
	duration Duration
	relative bool
}

// Instant returns an absolute range bound.
func Instant(t time.Time) InstantOrDuration {
	return InstantOrDuration{instant: t}
}

// Relative returns a range bound relative to the current time.
func Relative(d Duration) InstantOrDuration {
	return InstantOrDuration{duration: d, relative: true}
}

func (b InstantOrDuration) String() string {
	if b.relative {
		return b.duration.String()
	}
	return "'" + formatInstant(b.instant) + "'"
}

// FluxQuery builds Flux queries as a pipeline of statements.
//
//	q := influxframe.NewFluxQuery("telegraf/autogen").
//		RangeStart(influxframe.Relative(influxframe.NewDuration(-15, influxframe.Minutes))).
//		Filter(`r._measurement == "cpu"`).
//		Build()
//
// Statements are rendered in the order they are added, and the query always
// ends with yield().
type FluxQuery struct {
	bucket     string
	statements []string
}

// NewFluxQuery creates a query reading from bucket.
func NewFluxQuery(bucket string) *FluxQuery {
	return &FluxQuery{bucket: bucket}
}

func (q *FluxQuery) pipe(format string, args ...any) *FluxQuery {
	q.statements = append(q.statements, "  |> "+fmt.Sprintf(format, args...)+"\n")
	return q
}

// RangeStart restricts the results to a start bound.
func (q *FluxQuery) RangeStart(start InstantOrDuration) *FluxQuery {
	return q.pipe("range(start: %s)", start)
}

// RangeStop restricts the results to a stop bound.
func (q *FluxQuery) RangeStop(stop InstantOrDuration) *FluxQuery {
	return q.pipe("range(stop: %s)", stop)
}

// Range restricts the results between two bounds.
func (q *FluxQuery) Range(start, stop InstantOrDuration) *FluxQuery {
	return q.pipe("range(start: %s, stop: %s)", start, stop)
}

// Filter adds a filter on the record r. Each line of predicate is rendered
// on its own indented line.
func (q *FluxQuery) Filter(predicate string) *FluxQuery {
	var b strings.Builder
	b.WriteString("  |> filter(fn: (r) =>\n")
	for _, line := range strings.Split(strings.TrimRight(predicate, "\r\n"), "\n") {
		b.WriteString("    ")
		b.WriteString(strings.TrimLeft(strings.TrimSuffix(line, "\r"), " \t"))
		b.WriteString("\n")
	}
	b.WriteString("  )\n")
	q.statements = append(q.statements, b.String())
	return q
}

// Window groups the results in windows of the given duration.
func (q *FluxQuery) Window(every Duration) *FluxQuery {
	return q.pipe("window(every: %s)", every)
}

// Aggregate applies the aggregate function fn.
func (q *FluxQuery) Aggregate(fn string) *FluxQuery {
	return q.pipe("%s()", fn)
}

// Mean aggregates the results with mean().
func (q *FluxQuery) Mean() *FluxQuery {
	return q.Aggregate("mean")
}

// Duplicate copies column into a new column named as.
func (q *FluxQuery) Duplicate(column, as string) *FluxQuery {
	return q.pipe("duplicate(column: %q, as: %q)", column, as)
}

// AggregateWindow applies fn over windows of the given duration.
func (q *FluxQuery) AggregateWindow(fn string, every Duration) *FluxQuery {
	return q.pipe("aggregateWindow(fn: %s, every: %s)", fn, every)
}

// Build renders the query.
func (q *FluxQuery) Build() string {
	var b strings.Builder
	fmt.Fprintf(&b, "from(bucket: %q)\n", q.bucket)
	for _, s := range q.statements {
		b.WriteString(s)
	}
	b.WriteString("  |> yield()")
	return b.String()
}
