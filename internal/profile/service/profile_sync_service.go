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
	"sync"

	"github.com/wso2/property-sync-service/internal/profile/model"
	"github.com/wso2/property-sync-service/internal/profile/store"
	"github.com/wso2/property-sync-service/internal/system/constants"
	errors2 "github.com/wso2/property-sync-service/internal/system/errors"
	"github.com/wso2/property-sync-service/internal/system/log"
	"github.com/wso2/property-sync-service/internal/system/metrics"
	"github.com/wso2/property-sync-service/internal/system/subscription"
	"github.com/wso2/property-sync-service/internal/system/workers"
)

// ProfileSyncServiceInterface turns an identity into live profile state.
type ProfileSyncServiceInterface interface {
	SetIdentity(identity *model.Identity)
	Refresh()
	State() model.ProfileState
	OnChange(listener func(model.ProfileState)) subscription.Unsubscribe
	Close()
}

// ProfileSyncService resolves the user profile and the role profile of the current
// identity and keeps the role profile current through one live channel.
//
// State is only written on the event loop. Fetches run on their own goroutine and
// post their result back; results of a superseded resolution are dropped.
type ProfileSyncService struct {
	loop      *workers.EventLoop
	store     store.ProfileStoreInterface
	subs      *subscription.Registry
	listeners subscription.Listeners[model.ProfileState]
	ctx       context.Context
	cancel    context.CancelFunc

	mu    sync.RWMutex
	state model.ProfileState

	// owned by the loop
	generation uint64
	closed     bool
}

// NewProfileSyncService creates a service driven by loop, which must be started.
func NewProfileSyncService(loop *workers.EventLoop, profileStore store.ProfileStoreInterface) *ProfileSyncService {
	ctx, cancel := context.WithCancel(context.Background())
	return &ProfileSyncService{
		loop:   loop,
		store:  profileStore,
		subs:   subscription.NewRegistry(),
		ctx:    ctx,
		cancel: cancel,
	}
}

// SetIdentity starts a new resolution for identity. nil signs out. When it returns,
// the previous live channel is released, the profile slots of another user are
// cleared and IsLoading is set; only the fetch is still outstanding.
// It must not be called from a listener.
func (s *ProfileSyncService) SetIdentity(identity *model.Identity) {
	var next *model.Identity
	if identity != nil {
		copied := *identity
		next = &copied
	}
	s.loop.Do(func() { s.resolve(next) })
}

// Refresh re-runs the resolution for the current identity. It must not be called
// from a listener.
func (s *ProfileSyncService) Refresh() {
	s.loop.Do(func() {
		s.resolve(s.state.Identity)
	})
}

// State returns a copy of the current state.
func (s *ProfileSyncService) State() model.ProfileState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Clone()
}

// OnChange registers listener for every state change. Listeners run on the event loop.
func (s *ProfileSyncService) OnChange(listener func(model.ProfileState)) subscription.Unsubscribe {
	return s.listeners.Add(listener)
}

// Close releases the live channel and drops pending results. It must not be called
// from a listener.
func (s *ProfileSyncService) Close() {
	s.loop.Do(func() {
		if s.closed {
			return
		}
		s.closed = true
		s.generation++
		s.releaseAll()
		s.cancel()
		s.listeners.Clear()
	})
}

type resolution struct {
	user       *model.UserProfile
	tenant     *model.TenantProfile
	landlord   *model.LandlordProfile
	err        error
	userFailed bool
}

func (s *ProfileSyncService) resolve(identity *model.Identity) {
	if s.closed {
		return
	}
	s.generation++
	generation := s.generation
	s.releaseAll()

	s.update(func(state *model.ProfileState) {
		sameUser := state.Identity != nil && identity != nil && state.Identity.UID == identity.UID
		state.Identity = identity
		state.Error = nil
		if !sameUser {
			state.UserProfile = nil
			state.TenantProfile = nil
			state.LandlordProfile = nil
		}
		state.IsLoading = identity != nil
	})
	if identity == nil {
		log.GetLogger().Debug("Identity cleared, profile state reset")
		return
	}

	uid := identity.UID
	go func() {
		result := s.fetch(uid)
		s.loop.Post(func() { s.applyResolution(generation, uid, result) })
	}()
}

func (s *ProfileSyncService) fetch(uid string) resolution {
	ctx, cancel := context.WithTimeout(s.ctx, constants.DefaultStoreTimeout)
	defer cancel()

	user, err := s.store.FetchUserProfile(ctx, uid)
	if err != nil {
		return resolution{err: err, userFailed: true}
	}
	if user == nil {
		return resolution{}
	}

	result := resolution{user: user}
	switch user.Type {
	case model.RoleTenant:
		result.tenant, result.err = s.store.FetchTenantProfile(ctx, uid)
	case model.RoleLandlord:
		result.landlord, result.err = s.store.FetchLandlordProfile(ctx, uid)
	default:
		_, result.err = model.ParseRole(string(user.Type))
	}
	return result
}

func (s *ProfileSyncService) applyResolution(generation uint64, uid string, result resolution) {
	logger := log.GetLogger()
	if s.closed || generation != s.generation {
		logger.Debug("Discarding profile resolution of a superseded identity", log.String("uid", uid))
		return
	}

	s.update(func(state *model.ProfileState) {
		state.IsLoading = false
		if result.userFailed {
			state.Error = result.err
			return
		}
		state.UserProfile = result.user
		if result.user == nil {
			state.TenantProfile = nil
			state.LandlordProfile = nil
			return
		}
		switch result.user.Type {
		case model.RoleTenant:
			state.LandlordProfile = nil
			if result.err != nil {
				state.Error = result.err
			} else {
				state.TenantProfile = result.tenant
			}
		case model.RoleLandlord:
			state.TenantProfile = nil
			if result.err != nil {
				state.Error = result.err
			} else {
				state.LandlordProfile = result.landlord
			}
		default:
			state.TenantProfile = nil
			state.LandlordProfile = nil
			state.Error = result.err
		}
	})

	switch {
	case result.err != nil:
		logger.Error("Failed to resolve profile", log.String("uid", uid), log.Error(result.err))
		metrics.ProfileResolved(metrics.OutcomeError)
	case result.tenant != nil:
		s.watchTenant(generation, uid)
		metrics.ProfileResolved(metrics.OutcomeTenant)
	case result.landlord != nil:
		s.watchLandlord(generation, uid)
		metrics.ProfileResolved(metrics.OutcomeLandlord)
	default:
		metrics.ProfileResolved(metrics.OutcomeNone)
	}
}

func (s *ProfileSyncService) watchTenant(generation uint64, uid string) {
	unsubscribe := s.store.WatchTenantProfile(uid,
		func(profile *model.TenantProfile) {
			s.loop.Post(func() {
				if s.closed || generation != s.generation {
					return
				}
				s.update(func(state *model.ProfileState) { state.TenantProfile = profile })
			})
		},
		func(err error) {
			s.loop.Post(func() { s.onListenerError(generation, constants.TenantChannel, err) })
		})
	s.hold(constants.TenantChannel, uid, unsubscribe)
}

func (s *ProfileSyncService) watchLandlord(generation uint64, uid string) {
	unsubscribe := s.store.WatchLandlordProfile(uid,
		func(profile *model.LandlordProfile) {
			s.loop.Post(func() {
				if s.closed || generation != s.generation {
					return
				}
				s.update(func(state *model.ProfileState) { state.LandlordProfile = profile })
			})
		},
		func(err error) {
			s.loop.Post(func() { s.onListenerError(generation, constants.LandlordChannel, err) })
		})
	s.hold(constants.LandlordChannel, uid, unsubscribe)
}

func (s *ProfileSyncService) hold(channel, uid string, unsubscribe subscription.Unsubscribe) {
	metrics.SubscriptionOpened(channel)
	s.subs.Set(channel, func() {
		unsubscribe()
		metrics.SubscriptionReleased(channel)
	})
	log.GetLogger().Debug("Opened live channel", log.String("channel", channel), log.String("uid", uid))
}

func (s *ProfileSyncService) onListenerError(generation uint64, channel string, err error) {
	if s.closed || generation != s.generation {
		return
	}
	listenerErr := errors2.NewListenerError(channel, err)
	log.GetLogger().Error("Live channel failed", log.String("channel", channel), log.Error(err))
	metrics.ListenerError(channel)
	s.update(func(state *model.ProfileState) {
		state.Error = listenerErr
		state.IsLoading = false
	})
}

func (s *ProfileSyncService) releaseAll() {
	if released := s.subs.ReleaseAll(); released > 0 {
		log.GetLogger().Debug("Released profile live channels", log.Int("count", released))
	}
}

// update applies fn under the write lock and then notifies listeners.
func (s *ProfileSyncService) update(fn func(state *model.ProfileState)) {
	s.mu.Lock()
	fn(&s.state)
	snapshot := s.state.Clone()
	s.mu.Unlock()

	s.listeners.Emit(snapshot)
}
