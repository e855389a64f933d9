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

package docstore

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/wso2/property-sync-service/internal/system/constants"
	"github.com/wso2/property-sync-service/internal/system/log"
	"github.com/wso2/property-sync-service/internal/system/subscription"
)

// Hub fans collection change signals out to live channels. Backends call Notify after
// a write (or when their change feed reports one) and each affected watcher reloads
// its document or query through the backend's Reader and delivers the result.
//
// Every watcher owns a goroutine, so deliveries for one channel are FIFO and a slow
// consumer never blocks writers or other channels. Change signals that pile up while
// a reload is in flight coalesce into a single reload. Unsubscribe waits for an
// in-flight delivery and nothing is delivered after it returns, so a callback must
// not unsubscribe its own channel.
type Hub struct {
	reader   Reader
	timeout  time.Duration
	ctx      context.Context
	cancel   context.CancelFunc
	mu       sync.Mutex
	watchers map[string]map[uint64]*watcher
	seq      uint64
	closed   bool
}

// NewHub creates a hub that reloads through reader.
func NewHub(reader Reader) *Hub {
	ctx, cancel := context.WithCancel(context.Background())
	return &Hub{
		reader:   reader,
		timeout:  constants.DefaultStoreTimeout,
		ctx:      ctx,
		cancel:   cancel,
		watchers: make(map[string]map[uint64]*watcher),
	}
}

// WatchDocument registers a live channel on one document.
func (h *Hub) WatchDocument(ref DocumentRef, onNext func(DocumentSnapshot), onError func(error)) subscription.Unsubscribe {
	load := func(ctx context.Context) (func(), error) {
		snap, err := h.reader.Get(ctx, ref)
		if err != nil {
			return nil, err
		}
		return func() { onNext(snap) }, nil
	}
	return h.register(ref.Collection, ref.String(), load, onError)
}

// WatchQuery registers a live channel on a query result set.
func (h *Hub) WatchQuery(query Query, onNext func(QuerySnapshot), onError func(error)) subscription.Unsubscribe {
	load := func(ctx context.Context) (func(), error) {
		docs, err := h.reader.Find(ctx, query)
		if err != nil {
			return nil, err
		}
		snap := QuerySnapshot{Query: query, Documents: docs}
		return func() { onNext(snap) }, nil
	}
	return h.register(query.Collection, query.String(), load, onError)
}

// Notify signals that documents of collection changed.
func (h *Hub) Notify(collection string) {
	for _, w := range h.snapshot(collection) {
		w.push(nil)
	}
}

// NotifyAll signals every watcher, used after a change feed reconnects.
func (h *Hub) NotifyAll() {
	for _, w := range h.snapshot("") {
		w.push(nil)
	}
}

// Fail delivers err to every watcher of collection.
func (h *Hub) Fail(collection string, err error) {
	for _, w := range h.snapshot(collection) {
		w.push(err)
	}
}

// FailAll delivers err to every watcher.
func (h *Hub) FailAll(err error) {
	for _, w := range h.snapshot("") {
		w.push(err)
	}
}

// Len returns the number of open live channels.
func (h *Hub) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()

	n := 0
	for _, ws := range h.watchers {
		n += len(ws)
	}
	return n
}

// Close stops every watcher. Later registrations report ErrStoreClosed.
func (h *Hub) Close() {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return
	}
	h.closed = true
	all := h.watchers
	h.watchers = make(map[string]map[uint64]*watcher)
	h.mu.Unlock()

	h.cancel()
	for _, ws := range all {
		for _, w := range ws {
			w.stop()
		}
	}
}

func (h *Hub) register(collection, target string, load func(context.Context) (func(), error),
	onError func(error)) subscription.Unsubscribe {

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		if onError != nil {
			go onError(ErrStoreClosed)
		}
		return subscription.Noop
	}
	h.seq++
	w := &watcher{
		id:         h.seq,
		collection: collection,
		target:     target,
		load:       load,
		onError:    onError,
		wake:       make(chan struct{}, 1),
		done:       make(chan struct{}),
		hub:        h,
	}
	if h.watchers[collection] == nil {
		h.watchers[collection] = make(map[uint64]*watcher)
	}
	h.watchers[collection][w.id] = w
	h.mu.Unlock()

	log.GetLogger().Debug("Opened live channel", log.String("target", target), log.Any("watcher", w.id))
	go w.run()
	w.push(nil)

	return subscription.Once(func() {
		h.mu.Lock()
		if ws, ok := h.watchers[collection]; ok {
			delete(ws, w.id)
			if len(ws) == 0 {
				delete(h.watchers, collection)
			}
		}
		h.mu.Unlock()
		w.stop()
		log.GetLogger().Debug("Closed live channel", log.String("target", target), log.Any("watcher", w.id))
	})
}

func (h *Hub) snapshot(collection string) []*watcher {
	h.mu.Lock()
	defer h.mu.Unlock()

	var out []*watcher
	for c, ws := range h.watchers {
		if collection != "" && c != collection {
			continue
		}
		for _, w := range ws {
			out = append(out, w)
		}
	}
	return out
}

type watcher struct {
	id         uint64
	collection string
	target     string
	load       func(context.Context) (func(), error)
	onError    func(error)
	hub        *Hub

	mu       sync.Mutex
	pending  []event
	wake     chan struct{}
	done     chan struct{}
	stopOnce sync.Once

	// deliverMu orders stop against callbacks
	deliverMu sync.Mutex
	stopped   atomic.Bool
}

// event is a reload request when err is nil, otherwise an error delivery.
type event struct {
	err error
}

func (w *watcher) push(err error) {
	w.mu.Lock()
	n := len(w.pending)
	if err == nil && n > 0 && w.pending[n-1].err == nil {
		w.mu.Unlock()
		return
	}
	w.pending = append(w.pending, event{err: err})
	w.mu.Unlock()

	select {
	case w.wake <- struct{}{}:
	default:
	}
}

func (w *watcher) stop() {
	w.stopOnce.Do(func() {
		w.deliverMu.Lock()
		w.stopped.Store(true)
		w.deliverMu.Unlock()
		close(w.done)
	})
}

func (w *watcher) run() {
	for {
		select {
		case <-w.done:
			return
		case <-w.wake:
		}
		for {
			ev, ok := w.next()
			if !ok {
				break
			}
			if w.stopped.Load() {
				return
			}
			w.handle(ev)
		}
	}
}

func (w *watcher) next() (event, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if len(w.pending) == 0 {
		return event{}, false
	}
	ev := w.pending[0]
	w.pending = w.pending[1:]
	return ev, true
}

func (w *watcher) handle(ev event) {
	if ev.err != nil {
		w.deliverError(ev.err)
		return
	}
	ctx, cancel := context.WithTimeout(w.hub.ctx, w.hub.timeout)
	deliver, err := w.load(ctx)
	cancel()
	if err != nil {
		if w.hub.ctx.Err() != nil {
			return
		}
		w.deliverError(fmt.Errorf("reload %s: %w", w.target, err))
		return
	}
	w.emit(deliver)
}

func (w *watcher) deliverError(err error) {
	if w.onError == nil {
		return
	}
	w.emit(func() { w.onError(err) })
}

// emit runs a callback unless the watcher has been stopped.
func (w *watcher) emit(callback func()) {
	w.deliverMu.Lock()
	defer w.deliverMu.Unlock()

	if w.stopped.Load() {
		return
	}
	callback()
}
