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

// Package subscription tracks cancellation handles for live channels.
package subscription

import (
	"sort"
	"sync"
)

// Unsubscribe cancels a live channel. Every Unsubscribe handed out by this module is idempotent.
type Unsubscribe func()

// Once wraps fn so that only the first call has an effect.
func Once(fn func()) Unsubscribe {
	var once sync.Once
	return func() {
		once.Do(func() {
			if fn != nil {
				fn()
			}
		})
	}
}

// Noop is an Unsubscribe that does nothing.
func Noop() {}

// Registry is an owned collection of cancellation handles keyed by channel name.
type Registry struct {
	mu      sync.Mutex
	handles map[string]Unsubscribe
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{handles: make(map[string]Unsubscribe)}
}

// Set stores u under key, releasing whatever handle was held under that key first.
func (r *Registry) Set(key string, u Unsubscribe) {
	r.mu.Lock()
	previous := r.handles[key]
	r.handles[key] = Once(u)
	r.mu.Unlock()

	if previous != nil {
		previous()
	}
}

// Has reports whether a handle is held under key.
func (r *Registry) Has(key string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, ok := r.handles[key]
	return ok
}

// Release cancels and forgets the handle under key. It reports whether one was held.
func (r *Registry) Release(key string) bool {
	r.mu.Lock()
	u, ok := r.handles[key]
	delete(r.handles, key)
	r.mu.Unlock()

	if ok {
		u()
	}
	return ok
}

// ReleaseAll cancels every held handle and returns how many were released.
func (r *Registry) ReleaseAll() int {
	r.mu.Lock()
	held := r.handles
	r.handles = make(map[string]Unsubscribe)
	r.mu.Unlock()

	keys := make([]string, 0, len(held))
	for key := range held {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		held[key]()
	}
	return len(held)
}

// Keys returns the keys of the held handles in sorted order.
func (r *Registry) Keys() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	keys := make([]string, 0, len(r.handles))
	for key := range r.handles {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
