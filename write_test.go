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
	"context"
	"io"
	"net/http"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"

	influxframe "github.com/influxframe/influxframe-go"
)

func TestWrite(t *testing.T) {
	c := newTestClient(t, influxframe.Config{
		Username: "username",
		Password: "password",
		Database: "house",
	}, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/write", r.URL.Path)
		require.Equal(t, "house", r.URL.Query().Get("db"))
		require.False(t, r.URL.Query().Has("rp"))
		require.Equal(t, "ns", r.URL.Query().Get("precision"))
		require.Equal(t, "Basic dXNlcm5hbWU6cGFzc3dvcmQ=", r.Header.Get("Authorization"))
		require.Equal(t, "text/plain; charset=utf-8", r.Header.Get("Content-Type"))

		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		require.Equal(t, "location,city=Odense latitude=55.383333,longitude=10.383333 1404810611000000000\n", string(body))
		w.WriteHeader(http.StatusNoContent)
	})

	require.NoError(t, c.Write(context.Background(), odenseLine()))
}

func TestWriteTo(t *testing.T) {
	c := newTestClient(t, influxframe.Config{Database: "house"}, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "garden", r.URL.Query().Get("db"))
		require.Equal(t, "one_week", r.URL.Query().Get("rp"))
		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		require.Equal(t, "m value=1i\nm value=2i\n", string(body))
		w.WriteHeader(http.StatusNoContent)
	})

	require.NoError(t, c.WriteTo(context.Background(), "garden", "one_week",
		influxframe.NewLine("m").AddField("value", influxframe.IntegerValue(1)),
		influxframe.NewLine("m").AddField("value", influxframe.IntegerValue(2)),
	))
}

func TestWriteNothing(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, influxframe.Config{}, func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusNoContent)
	})

	require.NoError(t, c.Write(context.Background()))
	require.Zero(t, calls.Load())

	// lines without fields are rejected before sending
	require.Error(t, c.Write(context.Background(), influxframe.NewLine("m")))
	require.Zero(t, calls.Load())
}

func TestWriteErrors(t *testing.T) {
	for _, tc := range []struct {
		name     string
		status   int
		body     string
		sentinel error
	}{
		{
			name:     "field type conflict",
			status:   http.StatusBadRequest,
			body:     `{"error":"partial write: field type conflict: input field \"value\" on measurement \"m\" is type float, already exists as type integer dropped=1"}`,
			sentinel: influxframe.ErrFieldTypeConflict,
		},
		{
			name:     "database not found",
			status:   http.StatusNotFound,
			body:     `{"error":"database not found: \"house\""}`,
			sentinel: influxframe.ErrDatabaseNotFound,
		},
		{
			name:   "server error",
			status: http.StatusInternalServerError,
			body:   `{"error":"timeout"}`,
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			c := newTestClient(t, influxframe.Config{Database: "house"}, func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tc.status)
				_, _ = w.Write([]byte(tc.body))
			})

			err := c.Write(context.Background(), influxframe.NewLine("m").AddField("value", influxframe.FloatValue(1.5)))
			var httpErr *influxframe.Error
			require.ErrorAs(t, err, &httpErr)
			require.Equal(t, tc.status, httpErr.StatusCode)
			if tc.sentinel != nil {
				require.ErrorIs(t, err, tc.sentinel)
			} else {
				require.NotErrorIs(t, err, influxframe.ErrFieldTypeConflict)
				require.NotErrorIs(t, err, influxframe.ErrDatabaseNotFound)
			}
		})
	}
}
