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

package memory

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wso2/property-sync-service/internal/docstore"
)

const (
	waitFor = 2 * time.Second
	tick    = 5 * time.Millisecond
)

type recorder struct {
	mu     sync.Mutex
	docs   []docstore.DocumentSnapshot
	sets   []docstore.QuerySnapshot
	errors []error
}

func (r *recorder) onDoc(s docstore.DocumentSnapshot) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.docs = append(r.docs, s)
}

func (r *recorder) onQuery(s docstore.QuerySnapshot) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sets = append(r.sets, s)
}

func (r *recorder) onError(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.errors = append(r.errors, err)
}

func (r *recorder) lastDoc() (docstore.DocumentSnapshot, int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.docs) == 0 {
		return docstore.DocumentSnapshot{}, 0
	}
	return r.docs[len(r.docs)-1], len(r.docs)
}

func (r *recorder) lastSet() (docstore.QuerySnapshot, int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.sets) == 0 {
		return docstore.QuerySnapshot{}, 0
	}
	return r.sets[len(r.sets)-1], len(r.sets)
}

func (r *recorder) errorCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.errors)
}

func TestStore_CRUD(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	defer s.Close()

	id, err := s.Create(ctx, "residences", map[string]interface{}{"residenceName": "Lindenhof", "landlordId": "l1"})
	require.NoError(t, err)
	require.NotEmpty(t, id)

	snap, err := s.Get(ctx, docstore.Ref("residences", id))
	require.NoError(t, err)
	assert.True(t, snap.Exists)
	assert.JSONEq(t, `{"residenceName":"Lindenhof","landlordId":"l1"}`, string(snap.Data))

	require.NoError(t, s.Update(ctx, docstore.Ref("residences", id), map[string]interface{}{"residenceName": "Sonnenhof"}))
	snap, err = s.Get(ctx, docstore.Ref("residences", id))
	require.NoError(t, err)
	assert.JSONEq(t, `{"residenceName":"Sonnenhof","landlordId":"l1"}`, string(snap.Data))

	require.NoError(t, s.Delete(ctx, docstore.Ref("residences", id)))
	snap, err = s.Get(ctx, docstore.Ref("residences", id))
	require.NoError(t, err)
	assert.False(t, snap.Exists)

	assert.NoError(t, s.Delete(ctx, docstore.Ref("residences", id)))
}

func TestStore_UpdateMissingDocument(t *testing.T) {
	s := NewStore()
	defer s.Close()

	err := s.Update(context.Background(), docstore.Ref("tenants", "nobody"), map[string]interface{}{"apartmentId": "a1"})
	assert.ErrorIs(t, err, docstore.ErrNotFound)
}

func TestStore_FindFilters(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	defer s.Close()

	require.NoError(t, s.Set(ctx, docstore.Ref("apartments", "ap2"), map[string]interface{}{"residenceId": "r2"}))
	require.NoError(t, s.Set(ctx, docstore.Ref("apartments", "ap1"), map[string]interface{}{"residenceId": "r1"}))
	require.NoError(t, s.Set(ctx, docstore.Ref("apartments", "ap3"), map[string]interface{}{"residenceId": "r3"}))

	docs, err := s.Find(ctx, docstore.NewQuery("apartments", docstore.In("residenceId", []string{"r1", "r2"})))
	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.Equal(t, "ap1", docs[0].Ref.ID)
	assert.Equal(t, "ap2", docs[1].Ref.ID)
}

func TestStore_WatchDocumentDeliversInitialAndChanges(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	defer s.Close()
	ref := docstore.Ref("tenants", "u1")
	require.NoError(t, s.Set(ctx, ref, map[string]interface{}{"residenceId": "r1"}))

	rec := &recorder{}
	unsubscribe := s.WatchDocument(ref, rec.onDoc, rec.onError)
	defer unsubscribe()

	require.Eventually(t, func() bool { _, n := rec.lastDoc(); return n >= 1 }, waitFor, tick)
	first, _ := rec.lastDoc()
	assert.True(t, first.Exists)

	require.NoError(t, s.Update(ctx, ref, map[string]interface{}{"residenceId": "r2"}))
	require.Eventually(t, func() bool {
		last, _ := rec.lastDoc()
		return last.Exists && string(last.Data) == `{"residenceId":"r2"}`
	}, waitFor, tick)

	require.NoError(t, s.Delete(ctx, ref))
	require.Eventually(t, func() bool {
		last, _ := rec.lastDoc()
		return !last.Exists
	}, waitFor, tick)
	assert.Equal(t, 0, rec.errorCount())
}

func TestStore_WatchQueryTracksMembership(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	defer s.Close()

	rec := &recorder{}
	unsubscribe := s.WatchQuery(docstore.NewQuery("residences", docstore.Eq("landlordId", "l1")), rec.onQuery, rec.onError)
	defer unsubscribe()

	require.Eventually(t, func() bool { _, n := rec.lastSet(); return n >= 1 }, waitFor, tick)
	initial, _ := rec.lastSet()
	assert.Empty(t, initial.Documents)

	require.NoError(t, s.Set(ctx, docstore.Ref("residences", "r1"), map[string]interface{}{"landlordId": "l1"}))
	require.NoError(t, s.Set(ctx, docstore.Ref("residences", "r2"), map[string]interface{}{"landlordId": "l2"}))

	require.Eventually(t, func() bool {
		last, _ := rec.lastSet()
		return len(last.Documents) == 1 && last.Documents[0].Ref.ID == "r1"
	}, waitFor, tick)
}

func TestStore_UnsubscribeStopsDeliveryAndIsIdempotent(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	defer s.Close()
	ref := docstore.Ref("landlords", "l1")

	rec := &recorder{}
	unsubscribe := s.WatchDocument(ref, rec.onDoc, rec.onError)
	require.Eventually(t, func() bool { _, n := rec.lastDoc(); return n == 1 }, waitFor, tick)

	unsubscribe()
	unsubscribe()
	assert.Equal(t, 0, s.Watchers())

	require.NoError(t, s.Set(ctx, ref, map[string]interface{}{"residenceIds": []string{"r1"}}))
	time.Sleep(50 * time.Millisecond)
	_, n := rec.lastDoc()
	assert.Equal(t, 1, n)
}

func TestStore_EmitError(t *testing.T) {
	s := NewStore()
	defer s.Close()

	rec := &recorder{}
	unsubscribe := s.WatchQuery(docstore.NewQuery("apartments"), rec.onQuery, rec.onError)
	defer unsubscribe()
	require.Eventually(t, func() bool { _, n := rec.lastSet(); return n == 1 }, waitFor, tick)

	s.EmitError("apartments", errors.New("permission denied"))
	require.Eventually(t, func() bool { return rec.errorCount() == 1 }, waitFor, tick)
	assert.EqualError(t, rec.errors[0], "permission denied")
}

func TestStore_ClosedStoreRejectsOperations(t *testing.T) {
	s := NewStore()
	require.NoError(t, s.Close())

	_, err := s.Get(context.Background(), docstore.Ref("users", "u1"))
	assert.ErrorIs(t, err, docstore.ErrStoreClosed)

	rec := &recorder{}
	unsubscribe := s.WatchDocument(docstore.Ref("users", "u1"), rec.onDoc, rec.onError)
	assert.NotPanics(t, func() { unsubscribe() })
	require.Eventually(t, func() bool { return rec.errorCount() == 1 }, waitFor, tick)
}

func TestStore_UnsubscribeWaitsForInFlightDelivery(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	defer s.Close()
	ref := docstore.Ref("landlords", "l1")

	var delivered atomic.Int32
	entered := make(chan struct{}, 1)
	release := make(chan struct{})
	unsubscribe := s.WatchDocument(ref, func(docstore.DocumentSnapshot) {
		delivered.Add(1)
		select {
		case entered <- struct{}{}:
		default:
		}
		<-release
	}, func(error) {})

	select {
	case <-entered:
	case <-time.After(waitFor):
		t.Fatal("initial snapshot was not delivered")
	}

	unsubscribed := make(chan struct{})
	go func() {
		unsubscribe()
		close(unsubscribed)
	}()
	require.NoError(t, s.Set(ctx, ref, map[string]interface{}{"residenceIds": []string{"r1"}}))
	assert.Never(t, func() bool {
		select {
		case <-unsubscribed:
			return true
		default:
			return false
		}
	}, 50*time.Millisecond, tick)

	close(release)
	select {
	case <-unsubscribed:
	case <-time.After(waitFor):
		t.Fatal("unsubscribe did not return")
	}

	after := delivered.Load()
	require.NoError(t, s.Set(ctx, ref, map[string]interface{}{"residenceIds": []string{"r2"}}))
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, after, delivered.Load())
}
