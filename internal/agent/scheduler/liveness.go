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

package scheduler

import "sync"

// liveness is the registry of active job leases, keyed by job name. The
// supervisor inserts on start, a terminating worker removes itself.
// Workers terminate asynchronously from the supervisor's perspective, so
// every access is mutex-guarded. Lookups go through a snapshot; a worker
// dying between the snapshot and the scheduling decision is a tolerated,
// benign race.
type liveness struct {
	mutex sync.Mutex
	live  map[string]struct{}
}

func newLiveness() *liveness {

	return &liveness{
		live: make(map[string]struct{}),
	}
}

func (l *liveness) add(name string) {
	l.mutex.Lock()
	defer l.mutex.Unlock()

	l.live[name] = struct{}{}
}

func (l *liveness) remove(name string) {
	l.mutex.Lock()
	defer l.mutex.Unlock()

	delete(l.live, name)
}

func (l *liveness) snapshot() map[string]struct{} {
	l.mutex.Lock()
	defer l.mutex.Unlock()

	snap := make(map[string]struct{}, len(l.live))
	for name := range l.live {
		snap[name] = struct{}{}
	}
	return snap
}

func (l *liveness) alive(name string) bool {
	l.mutex.Lock()
	defer l.mutex.Unlock()

	_, ok := l.live[name]
	return ok
}
