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
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLineCable(t *testing.T) {
	c := NewClient(t)
	defer c.Close()

	ctx := context.Background()
	db := CreateDatabase(t, c)

	cable := c.LineCableTo(db, "")
	// immediately flush
	cable.BatchSize = 0
	cable.Start(ctx)
	defer cable.Close()

	for _, line := range environmentLines() {
		require.NoError(t, <-cable.Send(line))
	}

	s := c.InfluxQL(`SELECT COUNT(temperature) FROM environment`)
	s.Database = db
	df, err := s.DataFrame(ctx)
	require.NoError(t, err)

	count, ok := df.Value("count", 0)
	require.True(t, ok)
	require.Equal(t, int64(4), count.AsInteger(), fmt.Sprint(df))
}
