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
	"strings"
	"time"
)

// InfluxQLQuery builds simple InfluxQL SELECT queries.
//
//	q := influxframe.NewInfluxQLQuery("indoor_environment").
//		Field("temperature").
//		Field("humidity").
//		Start(time.Date(2021, 3, 7, 21, 0, 0, 0, time.UTC)).
//		Build()
//	// SELECT temperature, humidity FROM indoor_environment WHERE time > '2021-03-07T21:00:00Z'
//
// The builder does not quote or validate identifiers.
type InfluxQLQuery struct {
	measurement     string
	database        string
	retentionPolicy string
	fields          []string
	start           time.Time
	stop            time.Time
	groups          []string
}

// NewInfluxQLQuery creates a query selecting from measurement.
func NewInfluxQLQuery(measurement string) *InfluxQLQuery {
	return &InfluxQLQuery{measurement: measurement}
}

// Database sets the database of the FROM clause.
func (q *InfluxQLQuery) Database(database string) *InfluxQLQuery {
	q.database = database
	return q
}

// RetentionPolicy sets the retention policy of the FROM clause.
func (q *InfluxQLQuery) RetentionPolicy(rp string) *InfluxQLQuery {
	q.retentionPolicy = rp
	return q
}

// Field adds a field to select. Without fields, all fields are selected.
func (q *InfluxQLQuery) Field(field string) *InfluxQLQuery {
	q.fields = append(q.fields, field)
	return q
}

// Start restricts the results to points strictly after start.
func (q *InfluxQLQuery) Start(start time.Time) *InfluxQLQuery {
	q.start = start
	return q
}

// Stop restricts the results to points strictly before stop.
func (q *InfluxQLQuery) Stop(stop time.Time) *InfluxQLQuery {
	q.stop = stop
	return q
}

// GroupBy adds a tag to group the results by.
func (q *InfluxQLQuery) GroupBy(tag string) *InfluxQLQuery {
	q.groups = append(q.groups, tag)
	return q
}

// Build renders the query.
func (q *InfluxQLQuery) Build() string {
	var b strings.Builder

	b.WriteString("SELECT ")
	if len(q.fields) == 0 {
		b.WriteString("*")
	} else {
		b.WriteString(strings.Join(q.fields, ", "))
	}

	b.WriteString(" FROM ")
	if q.database != "" || q.retentionPolicy != "" {
		b.WriteString(q.database)
		b.WriteByte('.')
		b.WriteString(q.retentionPolicy)
		b.WriteByte('.')
	}
	b.WriteString(q.measurement)

	var conditions []string
	if !q.start.IsZero() {
		conditions = append(conditions, "time > '"+formatInstant(q.start)+"'")
	}
	if !q.stop.IsZero() {
		conditions = append(conditions, "time < '"+formatInstant(q.stop)+"'")
	}
	if len(conditions) > 0 {
		b.WriteString(" WHERE ")
		b.WriteString(strings.Join(conditions, " AND "))
	}

	if len(q.groups) > 0 {
		b.WriteString(" GROUP BY ")
		b.WriteString(strings.Join(q.groups, ", "))
	}
	return b.String()
}

// formatInstant renders t in UTC as RFC 3339, with fractional seconds in
// groups of three digits and only when non-zero.
func formatInstant(t time.Time) string {
	t = t.UTC()
	ns := t.Nanosecond()
	switch {
	case ns == 0:
		return t.Format("2006-01-02T15:04:05Z")
	case ns%int(time.Millisecond) == 0:
		return t.Format("2006-01-02T15:04:05.000Z")
	case ns%int(time.Microsecond) == 0:
		return t.Format("2006-01-02T15:04:05.000000Z")
	default:
		return t.Format("2006-01-02T15:04:05.000000000Z")
	}
}
