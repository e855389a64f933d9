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
	"strings"
	"sync"

	profileModel "github.com/wso2/property-sync-service/internal/profile/model"
	"github.com/wso2/property-sync-service/internal/property/model"
	"github.com/wso2/property-sync-service/internal/property/store"
	"github.com/wso2/property-sync-service/internal/system/constants"
	errors2 "github.com/wso2/property-sync-service/internal/system/errors"
	"github.com/wso2/property-sync-service/internal/system/log"
	"github.com/wso2/property-sync-service/internal/system/metrics"
	"github.com/wso2/property-sync-service/internal/system/subscription"
	"github.com/wso2/property-sync-service/internal/system/workers"
)

// PropertySyncServiceInterface keeps a landlord's residences and apartments live.
type PropertySyncServiceInterface interface {
	Update(landlord *profileModel.LandlordProfile, upstreamLoading bool)
	Apply(landlord *profileModel.LandlordProfile, upstreamLoading bool)
	State() model.PropertyState
	OnChange(listener func(model.PropertyState)) subscription.Unsubscribe
	Close()
}

// PropertySyncService follows the residences of one landlord and the apartments of
// those residences through two nested live channels.
type PropertySyncService struct {
	loop      *workers.EventLoop
	store     store.PropertyStoreInterface
	subs      *subscription.Registry
	listeners subscription.Listeners[model.PropertyState]

	mu    sync.RWMutex
	state model.PropertyState

	// owned by the loop
	generation          uint64
	apartmentGeneration uint64
	landlordID          string
	residenceKey        string
	closed              bool
}

// NewPropertySyncService creates a service driven by loop, which must be started.
func NewPropertySyncService(loop *workers.EventLoop, propertyStore store.PropertyStoreInterface) *PropertySyncService {
	return &PropertySyncService{
		loop:  loop,
		store: propertyStore,
		subs:  subscription.NewRegistry(),
		state: emptyState(),
	}
}

// Update restarts synchronization for landlord. Nothing is loaded while
// upstreamLoading is set. When it returns, the previous channels are released and
// the state is either cleared or loading. It must not be called from a listener.
func (s *PropertySyncService) Update(landlord *profileModel.LandlordProfile, upstreamLoading bool) {
	s.loop.Do(func() { s.Apply(landlord, upstreamLoading) })
}

// Apply is Update for callers already running on the event loop, such as a
// profile state listener sharing the loop.
func (s *PropertySyncService) Apply(landlord *profileModel.LandlordProfile, upstreamLoading bool) {
	landlordID := ""
	if landlord != nil {
		landlordID = landlord.UserID
	}
	s.apply(landlord != nil, landlordID, upstreamLoading)
}

// State returns a copy of the current state.
func (s *PropertySyncService) State() model.PropertyState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Clone()
}

// OnChange registers listener for every state change. Listeners run on the event loop.
func (s *PropertySyncService) OnChange(listener func(model.PropertyState)) subscription.Unsubscribe {
	return s.listeners.Add(listener)
}

// Close releases both live channels. It must not be called from a listener.
func (s *PropertySyncService) Close() {
	s.loop.Do(func() {
		if s.closed {
			return
		}
		s.closed = true
		s.generation++
		s.releaseAll()
		s.listeners.Clear()
	})
}

func (s *PropertySyncService) apply(hasLandlord bool, landlordID string, upstreamLoading bool) {
	if s.closed {
		return
	}
	s.generation++
	generation := s.generation
	s.releaseAll()

	if !hasLandlord || upstreamLoading {
		s.landlordID = ""
		s.update(func(state *model.PropertyState) { *state = emptyState() })
		return
	}

	sameLandlord := landlordID == s.landlordID
	s.landlordID = landlordID
	s.update(func(state *model.PropertyState) {
		if !sameLandlord {
			*state = emptyState()
		}
		state.Error = nil
		state.IsLoading = true
	})

	unsubscribe := s.store.WatchResidences(landlordID,
		func(residences []model.Residence) {
			s.loop.Post(func() { s.onResidences(generation, residences) })
		},
		func(err error) {
			s.loop.Post(func() { s.onListenerError(generation, constants.ResidencesChannel, err) })
		})
	s.hold(constants.ResidencesChannel, unsubscribe)
}

func (s *PropertySyncService) onResidences(generation uint64, residences []model.Residence) {
	if s.closed || generation != s.generation {
		return
	}

	if len(residences) == 0 {
		s.releaseApartments()
		s.update(func(state *model.PropertyState) {
			state.Residences = residences
			state.Apartments = nil
			state.ResidenceMap = model.BuildResidenceMap(nil, nil)
			state.IsLoading = false
		})
		return
	}

	ids := model.ResidenceIDs(residences)
	if key := strings.Join(ids, "\x00"); key != s.residenceKey {
		s.releaseApartments()
		s.residenceKey = key
		s.apartmentGeneration++
		apartmentGeneration := s.apartmentGeneration
		unsubscribe := s.store.WatchApartments(ids,
			func(apartments []model.Apartment) {
				s.loop.Post(func() { s.onApartments(generation, apartmentGeneration, apartments) })
			},
			func(err error) {
				s.loop.Post(func() { s.onApartmentsError(generation, apartmentGeneration, err) })
			})
		s.hold(constants.ApartmentsChannel, unsubscribe)
	}

	s.update(func(state *model.PropertyState) {
		state.Residences = residences
		state.ResidenceMap = model.BuildResidenceMap(residences, state.Apartments)
	})
}

func (s *PropertySyncService) onApartments(generation, apartmentGeneration uint64, apartments []model.Apartment) {
	if s.closed || generation != s.generation || apartmentGeneration != s.apartmentGeneration {
		return
	}
	s.update(func(state *model.PropertyState) {
		state.Apartments = apartments
		state.ResidenceMap = model.BuildResidenceMap(state.Residences, apartments)
		state.IsLoading = false
	})
}

func (s *PropertySyncService) onApartmentsError(generation, apartmentGeneration uint64, err error) {
	if apartmentGeneration != s.apartmentGeneration {
		return
	}
	s.onListenerError(generation, constants.ApartmentsChannel, err)
}

func (s *PropertySyncService) onListenerError(generation uint64, channel string, err error) {
	if s.closed || generation != s.generation {
		return
	}
	listenerErr := errors2.NewListenerError(channel, err)
	log.GetLogger().Error("Live channel failed", log.String("channel", channel), log.Error(err))
	metrics.ListenerError(channel)
	s.update(func(state *model.PropertyState) {
		state.Error = listenerErr
		state.IsLoading = false
	})
}

func (s *PropertySyncService) hold(channel string, unsubscribe subscription.Unsubscribe) {
	metrics.SubscriptionOpened(channel)
	s.subs.Set(channel, func() {
		unsubscribe()
		metrics.SubscriptionReleased(channel)
	})
	log.GetLogger().Debug("Opened live channel", log.String("channel", channel),
		log.String("landlordId", s.landlordID))
}

func (s *PropertySyncService) releaseApartments() {
	s.subs.Release(constants.ApartmentsChannel)
	s.residenceKey = ""
	s.apartmentGeneration++
}

func (s *PropertySyncService) releaseAll() {
	if released := s.subs.ReleaseAll(); released > 0 {
		log.GetLogger().Debug("Released property live channels", log.Int("count", released))
	}
	s.residenceKey = ""
	s.apartmentGeneration++
}

func (s *PropertySyncService) update(fn func(state *model.PropertyState)) {
	s.mu.Lock()
	fn(&s.state)
	snapshot := s.state.Clone()
	s.mu.Unlock()

	s.listeners.Emit(snapshot)
}

func emptyState() model.PropertyState {
	return model.PropertyState{ResidenceMap: model.BuildResidenceMap(nil, nil)}
}
