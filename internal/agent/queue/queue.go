/*
 * Licensed to the Apache Software Foundation (ASF) under one or more
 * contributor license agreements.  See the NOTICE file distributed with
 * this work for additional information regarding copyright ownership.
 * The ASF licenses this file to You under the Apache License, Version 2.0
 * (the "License"); you may not use this file except in compliance with
 * the License.  You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package queue

import (
	"time"

	"github.com/vagrants/blackbird-go/internal/agent/item"
	"github.com/vagrants/blackbird-go/internal/metrics"
)

// Queue is the bounded thread-safe FIFO shared by all job workers
// (producers) and the sender (consumer). Capacity is fixed at
// construction; a producer offering to a full queue blocks until the
// consumer drains, it never drops.
type Queue struct {
	name  string
	items chan item.Item
}

// New creates a bounded queue. Capacity must be positive; the caller
// (config validation) guarantees that.
func New(name string, capacity int) *Queue {

	return &Queue{
		name:  name,
		items: make(chan item.Item, capacity),
	}
}

// Put appends an item, blocking while the queue is at capacity. This is
// the backpressure point: a slow consumer throttles every producer.
func (q *Queue) Put(it item.Item) {

	q.items <- it
	metrics.ItemsEnqueuedTotal.WithLabelValues(q.name).Inc()
	metrics.QueueLength.WithLabelValues(q.name).Set(float64(len(q.items)))
}

// Get removes and returns the oldest item, blocking while the queue is
// empty.
func (q *Queue) Get() item.Item {

	it := <-q.items
	metrics.QueueLength.WithLabelValues(q.name).Set(float64(len(q.items)))
	return it
}

// GetTimeout waits up to d for an item. The second return is false when
// the timeout elapsed with the queue still empty.
func (q *Queue) GetTimeout(d time.Duration) (item.Item, bool) {

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case it := <-q.items:
		metrics.QueueLength.WithLabelValues(q.name).Set(float64(len(q.items)))
		return it, true
	case <-timer.C:
		return nil, false
	}
}

// Len returns the current number of queued items.
func (q *Queue) Len() int {

	return len(q.items)
}

// Cap returns the fixed capacity.
func (q *Queue) Cap() int {

	return cap(q.items)
}
