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
	"bytes"
	"io"
	"sort"
	"strings"
	"time"

	protocol "github.com/influxdata/line-protocol"
)

// Line is a single point in the InfluxDB line protocol: a measurement, a
// set of tags, at least one field and an optional timestamp.
type Line struct {
	measurement string
	tags        map[string]string
	fields      map[string]Value
	timestamp   time.Time
}

// Ensure Line can be encoded by the line protocol encoder.
var _ protocol.Metric = (*Line)(nil)

// NewLine creates a line for measurement without tags, fields or timestamp.
func NewLine(measurement string) *Line {
	return &Line{
		measurement: measurement,
		tags:        make(map[string]string),
		fields:      make(map[string]Value),
	}
}

// AddTag sets the tag key to value.
func (l *Line) AddTag(key, value string) *Line {
	l.tags[key] = value
	return l
}

// AddField sets the field key to value.
func (l *Line) AddField(key string, value Value) *Line {
	l.fields[key] = value
	return l
}

// SetTimestamp sets the timestamp of the point. Without a timestamp, the
// server assigns its own time on write.
func (l *Line) SetTimestamp(t time.Time) *Line {
	l.timestamp = t.UTC()
	return l
}

// Measurement returns the measurement of the line.
func (l *Line) Measurement() string {
	return l.measurement
}

// Tag returns the value of the tag key.
func (l *Line) Tag(key string) (string, bool) {
	v, ok := l.tags[key]
	return v, ok
}

// Field returns the value of the field key.
func (l *Line) Field(key string) (Value, bool) {
	v, ok := l.fields[key]
	return v, ok
}

// Timestamp returns the timestamp of the line, and false if it has none.
func (l *Line) Timestamp() (time.Time, bool) {
	return l.timestamp, !l.timestamp.IsZero()
}

func (l *Line) Name() string {
	return l.measurement
}

func (l *Line) Time() time.Time {
	return l.timestamp
}

func (l *Line) TagList() []*protocol.Tag {
	tags := make([]*protocol.Tag, 0, len(l.tags))
	for k, v := range l.tags {
		tags = append(tags, &protocol.Tag{Key: k, Value: v})
	}
	sort.Slice(tags, func(i, j int) bool { return tags[i].Key < tags[j].Key })
	return tags
}

func (l *Line) FieldList() []*protocol.Field {
	fields := make([]*protocol.Field, 0, len(l.fields))
	for k, v := range l.fields {
		fields = append(fields, &protocol.Field{Key: k, Value: lineFieldValue(v)})
	}
	return fields
}

// lineFieldValue maps a Value to the scalar the encoder understands.
// Timestamps are written as integer nanoseconds.
func lineFieldValue(v Value) any {
	if v.Kind() == TimestampKind {
		return v.AsTimestamp().UnixNano()
	}
	return v.Interface()
}

// LineEncoder writes lines in the line protocol, one per row, with fields
// sorted by key.
type LineEncoder struct {
	enc *protocol.Encoder
}

// NewLineEncoder returns an encoder writing to w.
func NewLineEncoder(w io.Writer) *LineEncoder {
	enc := protocol.NewEncoder(w)
	enc.SetFieldSortOrder(protocol.SortFields)
	enc.SetFieldTypeSupport(protocol.UintSupport)
	enc.FailOnFieldErr(true)
	return &LineEncoder{enc: enc}
}

// Encode writes l followed by a newline.
func (e *LineEncoder) Encode(l *Line) error {
	_, err := e.enc.Encode(l)
	return err
}

// EncodeLines renders lines as a line protocol payload.
func EncodeLines(lines ...*Line) ([]byte, error) {
	var buf bytes.Buffer
	enc := NewLineEncoder(&buf)
	for _, l := range lines {
		if err := enc.Encode(l); err != nil {
			return nil, err
		}
	}
	return buf.Bytes(), nil
}

// String renders the line without the trailing newline, or an empty string
// if the line cannot be encoded.
func (l *Line) String() string {
	data, err := EncodeLines(l)
	if err != nil {
		return ""
	}
	return strings.TrimSuffix(string(data), "\n")
}

// ParseLines decodes a line protocol payload. Points without a timestamp
// are returned without one.
func ParseLines(data []byte) ([]*Line, error) {
	handler := protocol.NewMetricHandler()
	parser := protocol.NewParser(handler)
	parser.SetTimeFunc(func() time.Time { return time.Time{} })

	metrics, err := parser.Parse(data)
	if err != nil {
		return nil, err
	}

	lines := make([]*Line, 0, len(metrics))
	for _, m := range metrics {
		l := NewLine(m.Name())
		for _, t := range m.TagList() {
			l.AddTag(t.Key, t.Value)
		}
		for _, f := range m.FieldList() {
			v, err := NewValue(f.Value)
			if err != nil {
				return nil, err
			}
			l.AddField(f.Key, v)
		}
		if t := m.Time(); !t.IsZero() {
			l.SetTimestamp(t)
		}
		lines = append(lines, l)
	}
	return lines, nil
}
