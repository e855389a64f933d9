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

// Package session binds the profile and property synchronizers of one signed-in user.
package session

import (
	"sync"

	profileModel "github.com/wso2/property-sync-service/internal/profile/model"
	profileProvider "github.com/wso2/property-sync-service/internal/profile/provider"
	profileService "github.com/wso2/property-sync-service/internal/profile/service"
	propertyModel "github.com/wso2/property-sync-service/internal/property/model"
	propertyProvider "github.com/wso2/property-sync-service/internal/property/provider"
	propertyService "github.com/wso2/property-sync-service/internal/property/service"
	"github.com/wso2/property-sync-service/internal/system/log"
	"github.com/wso2/property-sync-service/internal/system/metrics"
	"github.com/wso2/property-sync-service/internal/system/subscription"
	"github.com/wso2/property-sync-service/internal/system/workers"
)

// Session runs a profile synchronizer and a property synchronizer on one event loop.
// Every profile state change is forwarded to the property synchronizer as its
// landlord input.
type Session struct {
	loop       *workers.EventLoop
	profiles   profileService.ProfileSyncServiceInterface
	properties propertyService.PropertySyncServiceInterface
	forward    subscription.Unsubscribe

	mu       sync.RWMutex
	identity *profileModel.Identity

	// owned by the loop
	forwarded   bool
	landlordID  string
	hasLandlord bool
	loading     bool

	closeOnce sync.Once
	done      chan struct{}
}

// NewSession starts a session with no identity.
func NewSession(name string, profiles profileProvider.ProfilesProviderInterface,
	properties propertyProvider.PropertiesProviderInterface) *Session {

	loop := workers.StartEventLoop(name)
	s := &Session{
		loop:       loop,
		profiles:   profiles.NewProfileSyncService(loop),
		properties: properties.NewPropertySyncService(loop),
		done:       make(chan struct{}),
	}
	s.forward = s.profiles.OnChange(s.onProfiles)
	metrics.SessionOpened()
	return s
}

// onProfiles runs on the loop. Property synchronization restarts only when the
// landlord or the upstream loading flag actually changes.
func (s *Session) onProfiles(state profileModel.ProfileState) {
	landlordID := ""
	if state.LandlordProfile != nil {
		landlordID = state.LandlordProfile.UserID
	}
	hasLandlord := state.LandlordProfile != nil
	if s.forwarded && hasLandlord == s.hasLandlord && landlordID == s.landlordID && state.IsLoading == s.loading {
		return
	}
	s.forwarded = true
	s.hasLandlord = hasLandlord
	s.landlordID = landlordID
	s.loading = state.IsLoading
	s.properties.Apply(state.LandlordProfile, state.IsLoading)
}

// SetIdentity switches the signed-in user. nil signs out; both synchronizers are
// cleared by the time it returns. It must not be called from a listener.
func (s *Session) SetIdentity(identity *profileModel.Identity) {
	s.mu.Lock()
	if identity != nil {
		copied := *identity
		s.identity = &copied
	} else {
		s.identity = nil
	}
	s.mu.Unlock()

	s.profiles.SetIdentity(identity)
}

// Identity returns the current identity or nil.
func (s *Session) Identity() *profileModel.Identity {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.identity == nil {
		return nil
	}
	copied := *s.identity
	return &copied
}

// settle waits until every task queued on the session loop has run.
func (s *Session) settle() {
	s.loop.Sync()
}

// Refresh re-runs profile resolution for the current identity.
func (s *Session) Refresh() {
	s.profiles.Refresh()
}

func (s *Session) Profiles() profileModel.ProfileState {
	return s.profiles.State()
}

func (s *Session) Properties() propertyModel.PropertyState {
	return s.properties.State()
}

// OnProfilesChange registers listener for profile state changes. It runs on the session loop.
func (s *Session) OnProfilesChange(listener func(profileModel.ProfileState)) subscription.Unsubscribe {
	return s.profiles.OnChange(listener)
}

// OnPropertiesChange registers listener for property state changes. It runs on the session loop.
func (s *Session) OnPropertiesChange(listener func(propertyModel.PropertyState)) subscription.Unsubscribe {
	return s.properties.OnChange(listener)
}

// Done is closed once the session has been closed.
func (s *Session) Done() <-chan struct{} {
	return s.done
}

// Close releases every live channel and stops the loop. It must not be called from a listener.
func (s *Session) Close() {
	s.closeOnce.Do(func() {
		s.forward()
		s.profiles.Close()
		s.properties.Close()
		s.loop.Stop()
		close(s.done)
		metrics.SessionClosed()
		log.GetLogger().Debug("Session closed")
	})
}
