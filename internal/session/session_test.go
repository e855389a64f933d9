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

package session

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wso2/property-sync-service/internal/docstore"
	"github.com/wso2/property-sync-service/internal/docstore/memory"
	profileModel "github.com/wso2/property-sync-service/internal/profile/model"
	profileProvider "github.com/wso2/property-sync-service/internal/profile/provider"
	propertyModel "github.com/wso2/property-sync-service/internal/property/model"
	propertyProvider "github.com/wso2/property-sync-service/internal/property/provider"
	errors2 "github.com/wso2/property-sync-service/internal/system/errors"
	"github.com/wso2/property-sync-service/internal/system/log"
)

const (
	waitFor = 2 * time.Second
	tick    = 5 * time.Millisecond
)

func TestMain(m *testing.M) {
	_ = log.Init("ERROR")
	os.Exit(m.Run())
}

type fixture struct {
	docs       *memory.Store
	profiles   profileProvider.ProfilesProviderInterface
	properties propertyProvider.PropertiesProviderInterface
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	docs := memory.NewStore()
	t.Cleanup(func() { _ = docs.Close() })

	f := &fixture{
		docs:       docs,
		profiles:   profileProvider.NewProfilesProvider(docs),
		properties: propertyProvider.NewPropertiesProvider(docs),
	}
	f.put(t, "users", "l1", profileModel.UserProfile{UID: "l1", Type: profileModel.RoleLandlord, Name: "Lena"})
	f.put(t, "landlords", "l1", profileModel.LandlordProfile{UserID: "l1", ResidenceIDs: []string{"r1"}})
	f.put(t, "residences", "r1", propertyModel.Residence{ResidenceName: "Lindenhof", LandlordID: "l1"})
	f.put(t, "apartments", "a1", propertyModel.Apartment{ApartmentName: "1A", ResidenceID: "r1"})
	f.put(t, "users", "t1", profileModel.UserProfile{UID: "t1", Type: profileModel.RoleTenant, Name: "Tom"})
	f.put(t, "tenants", "t1", profileModel.TenantProfile{UserID: "t1", ApartmentID: "a1", ResidenceID: "r1"})
	return f
}

func (f *fixture) put(t *testing.T, collection, id string, data interface{}) {
	t.Helper()
	require.NoError(t, f.docs.Set(context.Background(), docstore.Ref(collection, id), data))
}

func (f *fixture) newSession(t *testing.T) *Session {
	t.Helper()
	s := NewSession(t.Name(), f.profiles, f.properties)
	t.Cleanup(s.Close)
	return s
}

func TestSession_LandlordProfileDrivesProperties(t *testing.T) {
	f := newFixture(t)
	s := f.newSession(t)

	s.SetIdentity(&profileModel.Identity{UID: "l1", Email: "lena@example.com"})

	require.Eventually(t, func() bool {
		state := s.Properties()
		return !state.IsLoading && len(state.Apartments) == 1
	}, waitFor, tick)

	profiles := s.Profiles()
	require.NotNil(t, profiles.LandlordProfile)
	assert.Nil(t, profiles.TenantProfile)
	group, ok := s.Properties().ResidenceMap.Get("r1")
	require.True(t, ok)
	assert.Equal(t, "Lindenhof", group.Residence.ResidenceName)
	assert.Len(t, group.Apartments, 1)

	f.put(t, "residences", "r2", propertyModel.Residence{ResidenceName: "Seeblick", LandlordID: "l1"})
	require.Eventually(t, func() bool { return s.Properties().ResidenceMap.Len() == 2 }, waitFor, tick)
}

func TestSession_TenantHasNoProperties(t *testing.T) {
	f := newFixture(t)
	s := f.newSession(t)

	s.SetIdentity(&profileModel.Identity{UID: "t1"})

	require.Eventually(t, func() bool {
		state := s.Profiles()
		return !state.IsLoading && state.TenantProfile != nil
	}, waitFor, tick)
	assert.Never(t, func() bool { return len(s.Properties().Residences) > 0 }, 100*time.Millisecond, tick)
	assert.False(t, s.Properties().IsLoading)
}

func TestSession_SignOutClearsBothSynchronizers(t *testing.T) {
	f := newFixture(t)
	s := f.newSession(t)
	s.SetIdentity(&profileModel.Identity{UID: "l1"})
	require.Eventually(t, func() bool { return len(s.Properties().Apartments) == 1 }, waitFor, tick)

	s.SetIdentity(nil)

	properties := s.Properties()
	assert.Empty(t, properties.Residences)
	assert.Empty(t, properties.Apartments)
	assert.Equal(t, 0, properties.ResidenceMap.Len())
	assert.False(t, properties.IsLoading)
	assert.Nil(t, s.Identity())
	assert.Equal(t, profileModel.ProfileState{}, s.Profiles())
	require.Eventually(t, func() bool { return f.docs.Watchers() == 0 }, waitFor, tick)
}

func TestSession_CloseReleasesChannels(t *testing.T) {
	f := newFixture(t)
	s := NewSession(t.Name(), f.profiles, f.properties)
	s.SetIdentity(&profileModel.Identity{UID: "l1"})
	require.Eventually(t, func() bool { return len(s.Properties().Apartments) == 1 }, waitFor, tick)

	s.Close()
	s.Close()

	assert.Equal(t, 0, f.docs.Watchers())
}

func TestSession_DoneClosesWithSession(t *testing.T) {
	f := newFixture(t)
	s := NewSession(t.Name(), f.profiles, f.properties)

	select {
	case <-s.Done():
		t.Fatal("done before close")
	default:
	}

	s.Close()
	select {
	case <-s.Done():
	case <-time.After(waitFor):
		t.Fatal("done not closed by Close")
	}
}

func TestSession_ChangeListeners(t *testing.T) {
	f := newFixture(t)
	s := f.newSession(t)
	seen := make(chan propertyModel.PropertyState, 64)
	unsubscribe := s.OnPropertiesChange(func(state propertyModel.PropertyState) { seen <- state })
	defer unsubscribe()

	s.SetIdentity(&profileModel.Identity{UID: "l1"})

	require.Eventually(t, func() bool {
		for {
			select {
			case state := <-seen:
				if len(state.Apartments) == 1 {
					return true
				}
			default:
				return false
			}
		}
	}, waitFor, tick)
}

func TestContext_ReadsOutsideProviderPanic(t *testing.T) {
	ctx := context.Background()
	message := "session state must be read within a session provider"

	assert.PanicsWithError(t, message, func() { UseProfiles(ctx) })
	assert.PanicsWithError(t, message, func() { UseProperties(ctx) })
	assert.PanicsWithError(t, message, func() { MustFromContext(ctx) })

	_, err := FromContext(ctx)
	assert.ErrorIs(t, err, errors2.ErrMissingSessionProvider)
}

func TestContext_ReadsWithinProvider(t *testing.T) {
	f := newFixture(t)
	s := f.newSession(t)
	ctx := WithSession(context.Background(), s)

	got, err := FromContext(ctx)
	require.NoError(t, err)
	assert.Same(t, s, got)
	assert.NotPanics(t, func() {
		assert.Nil(t, UseProfiles(ctx).Identity)
		assert.Empty(t, UseProperties(ctx).Residences)
	})
}

func TestManager_AcquireReusesSession(t *testing.T) {
	f := newFixture(t)
	m := NewManager(f.profiles, f.properties)
	defer m.Close()

	first, err := m.Acquire(profileModel.Identity{UID: "l1"})
	require.NoError(t, err)
	second, err := m.Acquire(profileModel.Identity{UID: "l1"})
	require.NoError(t, err)
	assert.Same(t, first, second)

	_, err = m.Acquire(profileModel.Identity{UID: "l1", Email: "lena@example.com"})
	require.NoError(t, err)
	assert.Equal(t, "lena@example.com", first.Identity().Email)

	got, ok := m.Get("l1")
	require.True(t, ok)
	assert.Same(t, first, got)
	assert.Equal(t, []string{"l1"}, m.UIDs())
}

func TestManager_RejectsEmptyIdentity(t *testing.T) {
	f := newFixture(t)
	m := NewManager(f.profiles, f.properties)
	defer m.Close()

	_, err := m.Acquire(profileModel.Identity{})
	assert.ErrorIs(t, err, ErrEmptyIdentity)
}

func TestManager_SignOut(t *testing.T) {
	f := newFixture(t)
	m := NewManager(f.profiles, f.properties)
	defer m.Close()

	s, err := m.Acquire(profileModel.Identity{UID: "l1"})
	require.NoError(t, err)
	require.Eventually(t, func() bool { return len(s.Properties().Apartments) == 1 }, waitFor, tick)

	assert.True(t, m.SignOut("l1"))
	assert.False(t, m.SignOut("l1"))
	_, ok := m.Get("l1")
	assert.False(t, ok)
	assert.Equal(t, 0, f.docs.Watchers())
}

func TestManager_CloseRejectsLaterAcquire(t *testing.T) {
	f := newFixture(t)
	m := NewManager(f.profiles, f.properties)
	_, err := m.Acquire(profileModel.Identity{UID: "t1"})
	require.NoError(t, err)

	m.Close()

	_, err = m.Acquire(profileModel.Identity{UID: "t1"})
	assert.ErrorIs(t, err, ErrManagerClosed)
	assert.Empty(t, m.UIDs())
}
