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

// Package memory provides an in-process document store with live channels.
package memory

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/wso2/property-sync-service/internal/docstore"
	"github.com/wso2/property-sync-service/internal/system/subscription"
)

// Compile-time contract assertion.
var _ docstore.Store = (*Store)(nil)

// Store keeps documents in maps keyed by collection and id.
type Store struct {
	mu          sync.RWMutex
	collections map[string]map[string]json.RawMessage
	closed      bool
	hub         *docstore.Hub
}

// NewStore creates an empty store.
func NewStore() *Store {
	s := &Store{collections: make(map[string]map[string]json.RawMessage)}
	s.hub = docstore.NewHub(s)
	return s
}

// Get implements docstore.Reader.
func (s *Store) Get(_ context.Context, ref docstore.DocumentRef) (docstore.DocumentSnapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return docstore.DocumentSnapshot{}, docstore.ErrStoreClosed
	}
	body, ok := s.collections[ref.Collection][ref.ID]
	if !ok {
		return docstore.DocumentSnapshot{Ref: ref}, nil
	}
	return docstore.DocumentSnapshot{Ref: ref, Exists: true, Data: clone(body)}, nil
}

// Find implements docstore.Reader.
func (s *Store) Find(_ context.Context, query docstore.Query) ([]docstore.DocumentSnapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, docstore.ErrStoreClosed
	}
	docs := []docstore.DocumentSnapshot{}
	for id, body := range s.collections[query.Collection] {
		if !query.Matches(body) {
			continue
		}
		docs = append(docs, docstore.DocumentSnapshot{
			Ref:    docstore.Ref(query.Collection, id),
			Exists: true,
			Data:   clone(body),
		})
	}
	docstore.SortByID(docs)
	return docs, nil
}

// Create implements docstore.Store.
func (s *Store) Create(ctx context.Context, collection string, data interface{}) (string, error) {
	id := uuid.New().String()
	if err := s.Set(ctx, docstore.Ref(collection, id), data); err != nil {
		return "", err
	}
	return id, nil
}

// Set implements docstore.Store.
func (s *Store) Set(_ context.Context, ref docstore.DocumentRef, data interface{}) error {
	body, err := docstore.Encode(data)
	if err != nil {
		return err
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return docstore.ErrStoreClosed
	}
	if s.collections[ref.Collection] == nil {
		s.collections[ref.Collection] = make(map[string]json.RawMessage)
	}
	s.collections[ref.Collection][ref.ID] = body
	s.mu.Unlock()

	s.hub.Notify(ref.Collection)
	return nil
}

// Update implements docstore.Store.
func (s *Store) Update(_ context.Context, ref docstore.DocumentRef, fields map[string]interface{}) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return docstore.ErrStoreClosed
	}
	body, ok := s.collections[ref.Collection][ref.ID]
	if !ok {
		s.mu.Unlock()
		return errors.Wrapf(docstore.ErrNotFound, "update %s", ref)
	}
	merged, err := docstore.MergeFields(body, fields)
	if err != nil {
		s.mu.Unlock()
		return err
	}
	s.collections[ref.Collection][ref.ID] = merged
	s.mu.Unlock()

	s.hub.Notify(ref.Collection)
	return nil
}

// Delete implements docstore.Store.
func (s *Store) Delete(_ context.Context, ref docstore.DocumentRef) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return docstore.ErrStoreClosed
	}
	_, existed := s.collections[ref.Collection][ref.ID]
	delete(s.collections[ref.Collection], ref.ID)
	s.mu.Unlock()

	if existed {
		s.hub.Notify(ref.Collection)
	}
	return nil
}

// WatchDocument implements docstore.Store.
func (s *Store) WatchDocument(ref docstore.DocumentRef, onNext func(docstore.DocumentSnapshot),
	onError func(error)) subscription.Unsubscribe {

	return s.hub.WatchDocument(ref, onNext, onError)
}

// WatchQuery implements docstore.Store.
func (s *Store) WatchQuery(query docstore.Query, onNext func(docstore.QuerySnapshot),
	onError func(error)) subscription.Unsubscribe {

	return s.hub.WatchQuery(query, onNext, onError)
}

// EmitError makes every live channel on collection report err, as a remote listener failure would.
func (s *Store) EmitError(collection string, err error) {
	s.hub.Fail(collection, err)
}

// Watchers returns the number of open live channels.
func (s *Store) Watchers() int {
	return s.hub.Len()
}

// Close implements docstore.Store.
func (s *Store) Close() error {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()

	s.hub.Close()
	return nil
}

func clone(body json.RawMessage) json.RawMessage {
	out := make(json.RawMessage, len(body))
	copy(out, body)
	return out
}
