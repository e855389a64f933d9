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

package service

import (
	"context"
	"errors"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wso2/property-sync-service/internal/docstore"
	"github.com/wso2/property-sync-service/internal/docstore/memory"
	profileModel "github.com/wso2/property-sync-service/internal/profile/model"
	"github.com/wso2/property-sync-service/internal/property/model"
	"github.com/wso2/property-sync-service/internal/property/store"
	"github.com/wso2/property-sync-service/internal/system/log"
	"github.com/wso2/property-sync-service/internal/system/subscription"
	"github.com/wso2/property-sync-service/internal/system/workers"
)

const (
	waitFor = 2 * time.Second
	tick    = 5 * time.Millisecond
)

func TestMain(m *testing.M) {
	_ = log.Init("ERROR")
	os.Exit(m.Run())
}

type syncFixture struct {
	docs    *memory.Store
	service *PropertySyncService
	loop    *workers.EventLoop
}

func newSyncFixture(t *testing.T) *syncFixture {
	t.Helper()
	docs := memory.NewStore()
	loop := workers.StartEventLoop(t.Name())
	svc := NewPropertySyncService(loop, store.NewPropertyStore(docs))
	t.Cleanup(func() {
		svc.Close()
		loop.Stop()
		_ = docs.Close()
	})
	return &syncFixture{docs: docs, service: svc, loop: loop}
}

func (f *syncFixture) put(t *testing.T, collection, id string, data interface{}) {
	t.Helper()
	require.NoError(t, f.docs.Set(context.Background(), docstore.Ref(collection, id), data))
}

func waitProperties(t *testing.T, svc *PropertySyncService, cond func(model.PropertyState) bool) model.PropertyState {
	t.Helper()
	require.Eventually(t, func() bool { return cond(svc.State()) }, waitFor, tick)
	return svc.State()
}

func landlord(id string) *profileModel.LandlordProfile {
	return &profileModel.LandlordProfile{UserID: id}
}

func apartmentIDs(apartments []model.Apartment) []string {
	ids := make([]string, len(apartments))
	for i, a := range apartments {
		ids[i] = a.ID
	}
	return ids
}

func TestPropertySync_GroupingExcludesApartmentsOfUnknownResidences(t *testing.T) {
	loop := workers.StartEventLoop(t.Name())
	defer loop.Stop()
	fake := newFakePropertyStore()
	svc := NewPropertySyncService(loop, fake)
	defer svc.Close()

	svc.Update(landlord("l1"), false)
	require.Eventually(t, func() bool { return fake.residenceWatches() == 1 }, waitFor, tick)
	fake.emitResidences([]model.Residence{{ID: "r1", LandlordID: "l1", Apartments: []string{"ap1", "ap2"}}})
	require.Eventually(t, func() bool { return fake.apartmentWatches() == 1 }, waitFor, tick)
	fake.emitApartments([]model.Apartment{{ID: "ap1", ResidenceID: "r1"}, {ID: "ap2", ResidenceID: "r9"}})

	state := waitProperties(t, svc, func(s model.PropertyState) bool { return len(s.Apartments) == 2 })
	group, ok := state.ResidenceMap.Get("r1")
	require.True(t, ok)
	assert.Equal(t, []string{"ap1"}, apartmentIDs(group.Apartments))
	assert.Equal(t, []string{"ap1", "ap2"}, apartmentIDs(state.Apartments))
	assert.Equal(t, []string{"r1"}, fake.lastApartmentQuery())
}

func TestPropertySync_LiveApartmentUpdatesRebuildMap(t *testing.T) {
	f := newSyncFixture(t)
	f.put(t, "residences", "r1", model.Residence{LandlordID: "l1"})
	f.put(t, "residences", "r2", model.Residence{LandlordID: "l1"})
	f.put(t, "apartments", "a1", model.Apartment{ResidenceID: "r1"})

	f.service.Update(landlord("l1"), false)
	waitProperties(t, f.service, func(s model.PropertyState) bool { return !s.IsLoading && len(s.Apartments) == 1 })

	f.put(t, "apartments", "a2", model.Apartment{ResidenceID: "r2"})
	state := waitProperties(t, f.service, func(s model.PropertyState) bool { return len(s.Apartments) == 2 })

	for _, r := range state.Residences {
		group, ok := state.ResidenceMap.Get(r.ID)
		require.True(t, ok)
		var want []string
		for _, a := range state.Apartments {
			if a.ResidenceID == r.ID {
				want = append(want, a.ID)
			}
		}
		assert.ElementsMatch(t, want, apartmentIDs(group.Apartments))
	}
}

func TestPropertySync_EmptyResidences(t *testing.T) {
	f := newSyncFixture(t)

	f.service.Update(landlord("l1"), false)
	state := waitProperties(t, f.service, func(s model.PropertyState) bool { return !s.IsLoading })

	assert.Empty(t, state.Residences)
	assert.Empty(t, state.Apartments)
	assert.Equal(t, 0, state.ResidenceMap.Len())
	assert.Equal(t, 1, f.docs.Watchers())
}

func TestPropertySync_ResidenceWithoutApartmentsIsGrouped(t *testing.T) {
	f := newSyncFixture(t)
	f.put(t, "residences", "r1", model.Residence{LandlordID: "l1"})

	f.service.Update(landlord("l1"), false)
	state := waitProperties(t, f.service, func(s model.PropertyState) bool {
		return !s.IsLoading && len(s.Residences) == 1
	})

	group, ok := state.ResidenceMap.Get("r1")
	require.True(t, ok)
	assert.Empty(t, group.Apartments)
	assert.Equal(t, 2, f.docs.Watchers())
}

func TestPropertySync_LastResidenceRemovedClearsApartments(t *testing.T) {
	f := newSyncFixture(t)
	f.put(t, "residences", "r1", model.Residence{LandlordID: "l1"})
	f.put(t, "apartments", "a1", model.Apartment{ResidenceID: "r1"})

	f.service.Update(landlord("l1"), false)
	waitProperties(t, f.service, func(s model.PropertyState) bool { return len(s.Apartments) == 1 })

	require.NoError(t, f.docs.Delete(context.Background(), docstore.Ref("residences", "r1")))
	state := waitProperties(t, f.service, func(s model.PropertyState) bool { return len(s.Residences) == 0 })

	assert.Empty(t, state.Apartments)
	assert.Equal(t, 0, state.ResidenceMap.Len())
	require.Eventually(t, func() bool { return f.docs.Watchers() == 1 }, waitFor, tick)
}

func TestPropertySync_UpstreamLoadingOpensNothing(t *testing.T) {
	f := newSyncFixture(t)
	f.put(t, "residences", "r1", model.Residence{LandlordID: "l1"})

	f.service.Update(landlord("l1"), true)

	state := f.service.State()
	assert.False(t, state.IsLoading)
	assert.Empty(t, state.Residences)
	assert.Equal(t, 0, f.docs.Watchers())
}

func TestPropertySync_NilLandlordClearsState(t *testing.T) {
	f := newSyncFixture(t)
	f.put(t, "residences", "r1", model.Residence{LandlordID: "l1"})
	f.put(t, "apartments", "a1", model.Apartment{ResidenceID: "r1"})

	f.service.Update(landlord("l1"), false)
	waitProperties(t, f.service, func(s model.PropertyState) bool { return len(s.Apartments) == 1 })

	f.service.Update(nil, false)

	state := f.service.State()
	assert.Empty(t, state.Residences)
	assert.Empty(t, state.Apartments)
	assert.Equal(t, 0, state.ResidenceMap.Len())
	assert.Equal(t, 0, f.docs.Watchers())
}

func TestPropertySync_LandlordChangeIsVisibleImmediately(t *testing.T) {
	f := newSyncFixture(t)
	f.put(t, "residences", "r1", model.Residence{LandlordID: "l1"})
	f.put(t, "apartments", "a1", model.Apartment{ResidenceID: "r1"})

	for i := 0; i < 50; i++ {
		f.service.Update(landlord("l1"), false)
		waitProperties(t, f.service, func(s model.PropertyState) bool { return len(s.Apartments) == 1 })

		f.service.Update(landlord("l2"), false)
		state := f.service.State()
		require.Empty(t, state.Residences, "run %d", i)
		require.Empty(t, state.Apartments, "run %d", i)
	}
}

func TestPropertySync_ListenerErrorsArePrefixed(t *testing.T) {
	f := newSyncFixture(t)
	f.put(t, "residences", "r1", model.Residence{LandlordID: "l1"})
	f.put(t, "apartments", "a1", model.Apartment{ResidenceID: "r1"})

	f.service.Update(landlord("l1"), false)
	waitProperties(t, f.service, func(s model.PropertyState) bool { return len(s.Apartments) == 1 })

	f.docs.EmitError("apartments", errors.New("quota exceeded"))
	state := waitProperties(t, f.service, func(s model.PropertyState) bool { return s.Error != nil })
	assert.EqualError(t, state.Error, "Apartments listener error: quota exceeded")
	assert.Len(t, state.Apartments, 1)

	f.docs.EmitError("residences", errors.New("boom"))
	state = waitProperties(t, f.service, func(s model.PropertyState) bool {
		return s.Error != nil && s.Error.Error() == "Residences listener error: boom"
	})
	assert.Len(t, state.Residences, 1)
}

func TestPropertySync_ApartmentChannelReplacedOnlyWhenIDsChange(t *testing.T) {
	loop := workers.StartEventLoop(t.Name())
	defer loop.Stop()
	fake := newFakePropertyStore()
	svc := NewPropertySyncService(loop, fake)
	defer svc.Close()

	svc.Update(landlord("l1"), false)
	require.Eventually(t, func() bool { return fake.residenceWatches() == 1 }, waitFor, tick)

	fake.emitResidences([]model.Residence{{ID: "r1", ResidenceName: "A"}})
	require.Eventually(t, func() bool { return fake.apartmentWatches() == 1 }, waitFor, tick)

	fake.emitResidences([]model.Residence{{ID: "r1", ResidenceName: "A renamed"}})
	waitProperties(t, svc, func(s model.PropertyState) bool {
		return len(s.Residences) == 1 && s.Residences[0].ResidenceName == "A renamed"
	})
	assert.Equal(t, 1, fake.apartmentWatches())
	assert.Equal(t, 0, fake.apartmentReleases())

	fake.emitResidences([]model.Residence{{ID: "r2"}, {ID: "r1"}})
	require.Eventually(t, func() bool { return fake.apartmentWatches() == 2 }, waitFor, tick)
	assert.Equal(t, 1, fake.apartmentReleases())
	assert.Equal(t, []string{"r1", "r2"}, fake.lastApartmentQuery())
}

func TestPropertySync_StaleApartmentSnapshotIgnored(t *testing.T) {
	loop := workers.StartEventLoop(t.Name())
	defer loop.Stop()
	fake := newFakePropertyStore()
	svc := NewPropertySyncService(loop, fake)
	defer svc.Close()

	svc.Update(landlord("l1"), false)
	require.Eventually(t, func() bool { return fake.residenceWatches() == 1 }, waitFor, tick)
	fake.emitResidences([]model.Residence{{ID: "r1"}})
	require.Eventually(t, func() bool { return fake.apartmentWatches() == 1 }, waitFor, tick)
	first := fake.apartmentCallback()

	fake.emitResidences([]model.Residence{{ID: "r2"}})
	require.Eventually(t, func() bool { return fake.apartmentWatches() == 2 }, waitFor, tick)

	first([]model.Apartment{{ID: "old", ResidenceID: "r1"}})
	loop.Sync()
	assert.Empty(t, svc.State().Apartments)
}

func TestPropertySync_CloseReleasesChannels(t *testing.T) {
	f := newSyncFixture(t)
	f.put(t, "residences", "r1", model.Residence{LandlordID: "l1"})

	f.service.Update(landlord("l1"), false)
	waitProperties(t, f.service, func(s model.PropertyState) bool { return len(s.Residences) == 1 })
	require.Eventually(t, func() bool { return f.docs.Watchers() == 2 }, waitFor, tick)

	f.service.Close()
	assert.Equal(t, 0, f.docs.Watchers())
}

func TestPropertySync_UpdateIsLoadingImmediately(t *testing.T) {
	loop := workers.StartEventLoop(t.Name())
	defer loop.Stop()
	fake := newFakePropertyStore()
	svc := NewPropertySyncService(loop, fake)
	defer svc.Close()

	svc.Update(landlord("l1"), false)

	assert.True(t, svc.State().IsLoading)
	assert.Equal(t, 1, fake.residenceWatches())
}

func TestPropertySync_ReleasedApartmentChannelErrorIgnored(t *testing.T) {
	loop := workers.StartEventLoop(t.Name())
	defer loop.Stop()
	fake := newFakePropertyStore()
	svc := NewPropertySyncService(loop, fake)
	defer svc.Close()

	svc.Update(landlord("l1"), false)
	fake.emitResidences([]model.Residence{{ID: "r1"}})
	require.Eventually(t, func() bool { return fake.apartmentWatches() == 1 }, waitFor, tick)
	firstError := fake.apartmentErrorCallback()

	fake.emitResidences([]model.Residence{{ID: "r2"}})
	require.Eventually(t, func() bool { return fake.apartmentWatches() == 2 }, waitFor, tick)

	firstError(errors.New("stale"))
	loop.Sync()
	assert.NoError(t, svc.State().Error)

	fake.apartmentErrorCallback()(errors.New("live"))
	loop.Sync()
	assert.EqualError(t, svc.State().Error, "Apartments listener error: live")
}

// fakePropertyStore records live channel registrations and lets tests push snapshots.
type fakePropertyStore struct {
	store.PropertyStoreInterface

	mu               sync.Mutex
	residenceNext    func([]model.Residence)
	apartmentNext    func([]model.Apartment)
	apartmentError   func(error)
	residenceCount   int
	apartmentCount   int
	apartmentRelease int
	apartmentQuery   []string
}

func newFakePropertyStore() *fakePropertyStore {
	return &fakePropertyStore{}
}

func (f *fakePropertyStore) WatchResidences(_ string, onNext func([]model.Residence),
	_ func(error)) subscription.Unsubscribe {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.residenceCount++
	f.residenceNext = onNext
	return subscription.Noop
}

func (f *fakePropertyStore) WatchApartments(ids []string, onNext func([]model.Apartment),
	onError func(error)) subscription.Unsubscribe {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.apartmentCount++
	f.apartmentNext = onNext
	f.apartmentError = onError
	f.apartmentQuery = ids
	return func() {
		f.mu.Lock()
		defer f.mu.Unlock()
		f.apartmentRelease++
	}
}

func (f *fakePropertyStore) emitResidences(residences []model.Residence) {
	f.mu.Lock()
	next := f.residenceNext
	f.mu.Unlock()
	next(residences)
}

func (f *fakePropertyStore) emitApartments(apartments []model.Apartment) {
	f.apartmentCallback()(apartments)
}

func (f *fakePropertyStore) apartmentCallback() func([]model.Apartment) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.apartmentNext
}

func (f *fakePropertyStore) apartmentErrorCallback() func(error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.apartmentError
}

func (f *fakePropertyStore) residenceWatches() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.residenceCount
}

func (f *fakePropertyStore) apartmentWatches() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.apartmentCount
}

func (f *fakePropertyStore) apartmentReleases() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.apartmentRelease
}

func (f *fakePropertyStore) lastApartmentQuery() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.apartmentQuery...)
}
