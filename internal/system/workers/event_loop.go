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

package workers

import (
	"fmt"
	"sync"

	"github.com/wso2/property-sync-service/internal/system/log"
)

// EventLoop runs posted tasks one at a time, in posting order, on a single goroutine.
// State owned by a synchronizer is only ever mutated from its loop.
type EventLoop struct {
	name      string
	mu        sync.Mutex
	queue     []func()
	wake      chan struct{}
	done      chan struct{}
	exited    chan struct{}
	stopped   bool
	startOnce sync.Once
	stopOnce  sync.Once
}

// NewEventLoop creates a loop. Call Start before posting.
func NewEventLoop(name string) *EventLoop {
	return &EventLoop{
		name:   name,
		wake:   make(chan struct{}, 1),
		done:   make(chan struct{}),
		exited: make(chan struct{}),
	}
}

// StartEventLoop creates and starts a loop.
func StartEventLoop(name string) *EventLoop {
	loop := NewEventLoop(name)
	loop.Start()
	return loop
}

// Start launches the loop goroutine. It can be called multiple times safely.
func (l *EventLoop) Start() {
	l.startOnce.Do(func() {
		go l.run()
	})
}

// Post enqueues a task. It never blocks and returns false once the loop is stopped.
func (l *EventLoop) Post(task func()) bool {
	l.mu.Lock()
	if l.stopped {
		l.mu.Unlock()
		return false
	}
	l.queue = append(l.queue, task)
	l.mu.Unlock()

	select {
	case l.wake <- struct{}{}:
	default:
	}
	return true
}

// Sync blocks until every task posted before the call has run.
func (l *EventLoop) Sync() {
	flushed := make(chan struct{})
	if !l.Post(func() { close(flushed) }) {
		return
	}
	select {
	case <-flushed:
	case <-l.exited:
	}
}

// Do runs task on the loop and blocks until it has finished. Once the loop is stopped
// the task runs on the caller after the loop goroutine has exited. It must not be
// called from a task running on the same loop.
func (l *EventLoop) Do(task func()) {
	done := make(chan struct{})
	wrapped := func() {
		defer close(done)
		task()
	}
	if !l.Post(wrapped) {
		<-l.exited
		l.execute(wrapped)
		return
	}
	<-done
}

// Stop runs the tasks already queued, then ends the loop. Later posts are rejected.
func (l *EventLoop) Stop() {
	l.stopOnce.Do(func() {
		l.mu.Lock()
		l.stopped = true
		l.mu.Unlock()
		close(l.done)
	})
	l.startOnce.Do(func() {
		close(l.exited)
	})
	<-l.exited
}

func (l *EventLoop) run() {
	defer close(l.exited)
	for {
		for {
			task, ok := l.next()
			if !ok {
				break
			}
			l.execute(task)
		}
		select {
		case <-l.wake:
		case <-l.done:
			for {
				task, ok := l.next()
				if !ok {
					return
				}
				l.execute(task)
			}
		}
	}
}

func (l *EventLoop) next() (func(), bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if len(l.queue) == 0 {
		return nil, false
	}
	task := l.queue[0]
	l.queue[0] = nil
	l.queue = l.queue[1:]
	return task, true
}

func (l *EventLoop) execute(task func()) {
	defer func() {
		if r := recover(); r != nil {
			log.GetLogger().Error(fmt.Sprintf("Recovered from panic in event loop %s", l.name),
				log.Any("panic", r))
		}
	}()
	task()
}
