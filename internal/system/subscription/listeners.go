/*
 * Copyright (c) 2025, WSO2 LLC. (http://www.wso2.com).
 *
 * WSO2 LLC. licenses this file to you under the Apache License,
 * Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.
 * You may obtain a copy of the License at
 *
 * http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing,
 * software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY
 * KIND, either express or implied.  See the License for the
 * specific language governing permissions and limitations
 * under the License.
 */

package subscription

import (
	"sort"
	"sync"
)

// Listeners is a set of change callbacks. The zero value is ready to use.
type Listeners[T any] struct {
	mu      sync.Mutex
	seq     uint64
	entries map[uint64]func(T)
}

// Add registers fn and returns its idempotent removal.
func (l *Listeners[T]) Add(fn func(T)) Unsubscribe {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.entries == nil {
		l.entries = make(map[uint64]func(T))
	}
	l.seq++
	id := l.seq
	l.entries[id] = fn
	return Once(func() {
		l.mu.Lock()
		defer l.mu.Unlock()
		delete(l.entries, id)
	})
}

// Emit calls every listener with v in registration order.
func (l *Listeners[T]) Emit(v T) {
	l.mu.Lock()
	ids := make([]uint64, 0, len(l.entries))
	for id := range l.entries {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	fns := make([]func(T), len(ids))
	for i, id := range ids {
		fns[i] = l.entries[id]
	}
	l.mu.Unlock()

	for _, fn := range fns {
		fn(v)
	}
}

// Clear removes every listener.
func (l *Listeners[T]) Clear() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = nil
}

func (l *Listeners[T]) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}
