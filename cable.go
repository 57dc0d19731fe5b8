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
	"context"
	"sync"
	"sync/atomic"
	"time"
)

// LineCable batches lines and writes them in the background.
//
// A batch is sent when its encoded size exceeds BatchSize, or every
// BatchInterval if it is not empty. Set the batch parameters before calling
// Start.
type LineCable struct {
	c *Client

	database        string
	retentionPolicy string

	currentSize int
	sendLines   []*lineSend
	sendLineCh  chan *lineSend
	stopped     chan struct{}
	inflight    sync.WaitGroup
	started     atomic.Bool
	closeOnce   sync.Once

	// BatchSize is the encoded size in bytes above which a batch is sent.
	BatchSize int
	// BatchInterval is the maximum time a line waits before being sent.
	BatchInterval time.Duration
}

type lineSend struct {
	payload []byte
	err     chan error
}

// LineCable creates a cable writing to the configured database and
// retention policy.
func (c *Client) LineCable() *LineCable {
	return c.LineCableTo(c.config.Database, c.config.RetentionPolicy)
}

// LineCableTo creates a cable writing to the given database and retention
// policy.
func (c *Client) LineCableTo(database, retentionPolicy string) *LineCable {
	return &LineCable{
		c:               c,
		database:        database,
		retentionPolicy: retentionPolicy,
		sendLines:       make([]*lineSend, 0),
		sendLineCh:      make(chan *lineSend),
		stopped:         make(chan struct{}),
		BatchSize:       1024 * 1024, // default to 1MiB
		BatchInterval:   time.Second, // default to 1 second
	}
}

// Start starts the background loop. Batches are written with ctx. Calling
// Start more than once has no effect.
func (c *LineCable) Start(ctx context.Context) {
	if !c.started.CompareAndSwap(false, true) {
		return
	}
	go func() {
		defer close(c.stopped)

		ticker := time.NewTicker(c.BatchInterval)
		defer ticker.Stop()

		stop, tick := false, false
		for {
			if len(c.sendLines) > 0 && (tick || stop || c.currentSize > c.BatchSize) {
				c.flush(ctx, c.sendLines)

				tick = false
				c.currentSize = 0
				c.sendLines = make([]*lineSend, 0)
			}

			if stop {
				break
			}

			select {
			case <-ticker.C:
				if len(c.sendLines) > 0 {
					tick = true
				}
			case sendLine, more := <-c.sendLineCh:
				if !more {
					stop = true
					continue
				}
				c.currentSize += len(sendLine.payload)
				c.sendLines = append(c.sendLines, sendLine)
			}
		}
	}()
}

func (c *LineCable) flush(ctx context.Context, sendLines []*lineSend) {
	c.inflight.Add(1)
	go func() {
		defer c.inflight.Done()

		var buf bytes.Buffer
		for _, sendLine := range sendLines {
			buf.Write(sendLine.payload)
		}

		err := c.c.writePayload(ctx, c.database, c.retentionPolicy, buf.Bytes(), len(sendLines))
		for _, sendLine := range sendLines {
			if err != nil {
				sendLine.err <- err
			}
			close(sendLine.err)
		}
	}()
}

// Send queues line for writing. The returned channel yields the write error,
// if any, and is closed once the line has been written or has failed.
//
// Lines that cannot be encoded, and lines sent before Start, fail
// immediately without being queued.
func (c *LineCable) Send(line *Line) <-chan error {
	sendLine := &lineSend{err: make(chan error, 1)}

	payload, err := EncodeLines(line)
	if err == nil && !c.started.Load() {
		err = ErrCableNotStarted
	}
	if err != nil {
		sendLine.err <- err
		close(sendLine.err)
		return sendLine.err
	}
	sendLine.payload = payload

	c.sendLineCh <- sendLine
	return sendLine.err
}

// Close sends the pending lines and waits until every batch has been
// written. The cable must not be used after Close; closing it again has no
// effect.
func (c *LineCable) Close() {
	c.closeOnce.Do(func() {
		close(c.sendLineCh)
		if c.started.Load() {
			<-c.stopped
		}
		c.inflight.Wait()
	})
}
