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
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/stretchr/testify/require"

	influxframe "github.com/influxframe/influxframe-go"
)

const (
	stressBatch    = 500
	stressMax      = 50000
	stressDuration = 20 * time.Second
)

func sendLogs(t *testing.T, cable *influxframe.LineCable, faker *gofakeit.Faker, worker int, idStart int64) {
	errChs := make([]<-chan error, 0, stressBatch)
	for i := int64(0); i < stressBatch; i++ {
		id := idStart + i
		line := influxframe.NewLine("logs").
			AddTag("worker", fmt.Sprint(worker)).
			AddField("id", influxframe.IntegerValue(id)).
			AddField("message", influxframe.StringValue("[INFO] "+faker.Sentence(12))).
			SetTimestamp(time.Unix(0, id))
		errChs = append(errChs, cable.Send(line))
	}
	for _, errCh := range errChs {
		require.NoError(t, <-errCh)
	}
	t.Logf("sent %d lines from worker %d", stressBatch, worker)
}

func countLogs(t *testing.T, c *influxframe.Client, db string) {
	s := c.InfluxQL(`SELECT COUNT(id) FROM logs`)
	s.Database = db

	start := time.Now()
	results, err := s.Execute(context.Background())
	require.NoError(t, err)
	require.NoError(t, influxframe.StatementErrors(results))
	t.Logf("counted logs in %s", time.Since(start))
}

func TestStressConcurrentWriteRead(t *testing.T) {
	c := NewClient(t)
	defer c.Close()

	ctx := context.Background()
	db := CreateDatabase(t, c)
	faker := gofakeit.New(0)
	idGen := &atomic.Int64{}

	cable := c.LineCableTo(db, "")
	cable.Start(ctx)
	defer cable.Close()

	var wg sync.WaitGroup
	jobs := make(chan func(worker int), 100)
	for i := 0; i < 8; i++ {
		go func(worker int) {
			for job := range jobs {
				job(worker)
				wg.Done()
			}
		}(i)
	}

	deadline := time.After(stressDuration)
loop:
	for {
		select {
		case <-deadline:
			break loop
		default:
			wg.Add(1)
			jobs <- func(worker int) {
				if faker.IntN(2) == 0 {
					if id := idGen.Add(stressBatch) - stressBatch; id < stressMax {
						sendLogs(t, cable, faker, worker, id)
						return
					}
				}
				countLogs(t, c, db)
			}
			time.Sleep(100 * time.Millisecond)
		}
	}
	close(jobs)
	wg.Wait()

	sent := min(idGen.Load(), stressMax)
	s := c.InfluxQL(`SELECT COUNT(id) FROM logs`)
	s.Database = db
	df, err := s.DataFrame(ctx)
	if sent == 0 {
		require.ErrorIs(t, err, influxframe.ErrEmptyResult)
		return
	}
	require.NoError(t, err)
	count, ok := df.Value("count", 0)
	require.True(t, ok)
	require.Equal(t, sent, count.AsInteger())
}
