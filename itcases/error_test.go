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

package itcases

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	influxframe "github.com/influxframe/influxframe-go"
)

func TestQueryUnknownDatabase(t *testing.T) {
	c := NewClient(t)
	defer c.Close()

	s := c.InfluxQL(`SELECT * FROM environment`)
	s.Database = RandomName(t)

	results, err := s.Execute(context.Background())
	require.NoError(t, err)
	require.Len(t, results, 1)

	var stmtErr *influxframe.StatementError
	require.ErrorAs(t, results[0].Err, &stmtErr)
	require.Contains(t, stmtErr.Message, "database not found")
}

func TestQuerySyntaxError(t *testing.T) {
	c := NewClient(t)
	defer c.Close()

	_, err := c.InfluxQL(`SELECT FROM`).Execute(context.Background())
	var httpErr *influxframe.Error
	require.ErrorAs(t, err, &httpErr)
	require.Contains(t, httpErr.Message, "error parsing query")
}

func TestWriteUnknownDatabase(t *testing.T) {
	c := NewClient(t)
	defer c.Close()

	err := c.WriteTo(context.Background(), RandomName(t), "", environmentLines()...)
	require.ErrorIs(t, err, influxframe.ErrDatabaseNotFound)
}

func TestWriteFieldTypeConflict(t *testing.T) {
	c := NewClient(t)
	defer c.Close()

	ctx := context.Background()
	db := CreateDatabase(t, c)
	require.NoError(t, c.WriteTo(ctx, db, "", environmentLines()...))

	err := c.WriteTo(ctx, db, "", influxframe.NewLine("environment").
		AddTag("room", "bedroom").
		AddField("temperature", influxframe.StringValue("warm")))
	require.ErrorIs(t, err, influxframe.ErrFieldTypeConflict)
}
