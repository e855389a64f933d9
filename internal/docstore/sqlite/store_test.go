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

package sqlite

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wso2/property-sync-service/internal/docstore"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(filepath.Join(t.TempDir(), "docs.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestStore_SetGetUpdateDelete(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	ref := docstore.Ref("landlords", "l1")

	require.NoError(t, s.Set(ctx, ref, map[string]interface{}{"userId": "l1", "residenceIds": []string{}}))
	snap, err := s.Get(ctx, ref)
	require.NoError(t, err)
	assert.True(t, snap.Exists)
	assert.JSONEq(t, `{"userId":"l1","residenceIds":[]}`, string(snap.Data))

	require.NoError(t, s.Update(ctx, ref, map[string]interface{}{"residenceIds": []string{"r1"}}))
	snap, err = s.Get(ctx, ref)
	require.NoError(t, err)
	assert.JSONEq(t, `{"userId":"l1","residenceIds":["r1"]}`, string(snap.Data))

	require.NoError(t, s.Delete(ctx, ref))
	snap, err = s.Get(ctx, ref)
	require.NoError(t, err)
	assert.False(t, snap.Exists)

	err = s.Update(ctx, ref, map[string]interface{}{"residenceIds": []string{}})
	assert.ErrorIs(t, err, docstore.ErrNotFound)
}

func TestStore_FindUsesJSONFilters(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	require.NoError(t, s.Set(ctx, docstore.Ref("apartments", "ap1"), map[string]interface{}{"residenceId": "r1"}))
	require.NoError(t, s.Set(ctx, docstore.Ref("apartments", "ap2"), map[string]interface{}{"residenceId": "r2"}))
	require.NoError(t, s.Set(ctx, docstore.Ref("residences", "r1"), map[string]interface{}{"landlordId": "l1"}))

	docs, err := s.Find(ctx, docstore.NewQuery("apartments", docstore.In("residenceId", []string{"r2", "r7"})))
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "ap2", docs[0].Ref.ID)

	docs, err = s.Find(ctx, docstore.NewQuery("residences", docstore.Eq("landlordId", "l1")))
	require.NoError(t, err)
	require.Len(t, docs, 1)

	docs, err = s.Find(ctx, docstore.NewQuery("apartments", docstore.In("residenceId", nil)))
	require.NoError(t, err)
	assert.Empty(t, docs)
}

func TestStore_WatchQuery(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	var mu sync.Mutex
	var last docstore.QuerySnapshot
	unsubscribe := s.WatchQuery(docstore.NewQuery("residences", docstore.Eq("landlordId", "l1")),
		func(snap docstore.QuerySnapshot) {
			mu.Lock()
			last = snap
			mu.Unlock()
		}, func(err error) { t.Errorf("unexpected listener error: %v", err) })
	defer unsubscribe()

	id, err := s.Create(ctx, "residences", map[string]interface{}{"landlordId": "l1"})
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(last.Documents) == 1 && last.Documents[0].Ref.ID == id
	}, 2*time.Second, 5*time.Millisecond)
}
