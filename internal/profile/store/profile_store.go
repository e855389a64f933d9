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

package store

import (
	"context"

	"github.com/wso2/property-sync-service/internal/docstore"
	"github.com/wso2/property-sync-service/internal/profile/model"
	"github.com/wso2/property-sync-service/internal/system/constants"
	errors2 "github.com/wso2/property-sync-service/internal/system/errors"
	"github.com/wso2/property-sync-service/internal/system/log"
	"github.com/wso2/property-sync-service/internal/system/subscription"
)

// ProfileStoreInterface is the profile side of the document store: the three
// lookups and two live channels the profile synchronizer needs, plus the writes
// made at sign-up.
type ProfileStoreInterface interface {
	FetchUserProfile(ctx context.Context, uid string) (*model.UserProfile, error)
	FetchTenantProfile(ctx context.Context, uid string) (*model.TenantProfile, error)
	FetchLandlordProfile(ctx context.Context, uid string) (*model.LandlordProfile, error)
	WatchTenantProfile(uid string, onNext func(*model.TenantProfile), onError func(error)) subscription.Unsubscribe
	WatchLandlordProfile(uid string, onNext func(*model.LandlordProfile), onError func(error)) subscription.Unsubscribe
	CreateUserProfile(ctx context.Context, profile model.UserProfile) error
	CreateTenantProfile(ctx context.Context, profile model.TenantProfile) error
	CreateLandlordProfile(ctx context.Context, profile model.LandlordProfile) error
}

// ProfileStore implements ProfileStoreInterface over a docstore.Store.
type ProfileStore struct {
	store docstore.Store
}

func NewProfileStore(store docstore.Store) *ProfileStore {
	return &ProfileStore{store: store}
}

// FetchUserProfile returns nil, nil when users/{uid} does not exist.
func (s *ProfileStore) FetchUserProfile(ctx context.Context, uid string) (*model.UserProfile, error) {
	snap, err := s.store.Get(ctx, docstore.Ref(constants.UsersCollection, uid))
	if err != nil {
		return nil, fetchError(errors2.FETCH_USER_PROFILE, "Failed to fetch user profile", uid, err)
	}
	if !snap.Exists {
		return nil, nil
	}
	var profile model.UserProfile
	if err := snap.DataTo(&profile); err != nil {
		return nil, fetchError(errors2.FETCH_USER_PROFILE, "Failed to decode user profile", uid, err)
	}
	if profile.UID == "" {
		profile.UID = uid
	}
	return &profile, nil
}

// FetchTenantProfile returns nil, nil when tenants/{uid} does not exist.
func (s *ProfileStore) FetchTenantProfile(ctx context.Context, uid string) (*model.TenantProfile, error) {
	snap, err := s.store.Get(ctx, docstore.Ref(constants.TenantsCollection, uid))
	if err != nil {
		return nil, fetchError(errors2.FETCH_TENANT_PROFILE, "Failed to fetch tenant profile", uid, err)
	}
	profile, err := decodeTenant(snap)
	if err != nil {
		return nil, fetchError(errors2.FETCH_TENANT_PROFILE, "Failed to decode tenant profile", uid, err)
	}
	return profile, nil
}

// FetchLandlordProfile returns nil, nil when landlords/{uid} does not exist.
func (s *ProfileStore) FetchLandlordProfile(ctx context.Context, uid string) (*model.LandlordProfile, error) {
	snap, err := s.store.Get(ctx, docstore.Ref(constants.LandlordsCollection, uid))
	if err != nil {
		return nil, fetchError(errors2.FETCH_LANDLORD_PROFILE, "Failed to fetch landlord profile", uid, err)
	}
	profile, err := decodeLandlord(snap)
	if err != nil {
		return nil, fetchError(errors2.FETCH_LANDLORD_PROFILE, "Failed to decode landlord profile", uid, err)
	}
	return profile, nil
}

// WatchTenantProfile delivers tenants/{uid} on every change; nil once it is deleted.
func (s *ProfileStore) WatchTenantProfile(uid string, onNext func(*model.TenantProfile),
	onError func(error)) subscription.Unsubscribe {

	return s.store.WatchDocument(docstore.Ref(constants.TenantsCollection, uid),
		func(snap docstore.DocumentSnapshot) {
			profile, err := decodeTenant(snap)
			if err != nil {
				onError(err)
				return
			}
			onNext(profile)
		}, onError)
}

// WatchLandlordProfile delivers landlords/{uid} on every change; nil once it is deleted.
func (s *ProfileStore) WatchLandlordProfile(uid string, onNext func(*model.LandlordProfile),
	onError func(error)) subscription.Unsubscribe {

	return s.store.WatchDocument(docstore.Ref(constants.LandlordsCollection, uid),
		func(snap docstore.DocumentSnapshot) {
			profile, err := decodeLandlord(snap)
			if err != nil {
				onError(err)
				return
			}
			onNext(profile)
		}, onError)
}

func (s *ProfileStore) CreateUserProfile(ctx context.Context, profile model.UserProfile) error {
	return s.create(ctx, constants.UsersCollection, profile.UID, profile)
}

func (s *ProfileStore) CreateTenantProfile(ctx context.Context, profile model.TenantProfile) error {
	if profile.MaintenanceRequests == nil {
		profile.MaintenanceRequests = []string{}
	}
	return s.create(ctx, constants.TenantsCollection, profile.UserID, profile)
}

func (s *ProfileStore) CreateLandlordProfile(ctx context.Context, profile model.LandlordProfile) error {
	if profile.ResidenceIDs == nil {
		profile.ResidenceIDs = []string{}
	}
	return s.create(ctx, constants.LandlordsCollection, profile.UserID, profile)
}

func (s *ProfileStore) create(ctx context.Context, collection, uid string, data interface{}) error {
	if err := s.store.Set(ctx, docstore.Ref(collection, uid), data); err != nil {
		errorMsg := "Failed to write " + collection + " document"
		log.GetLogger().Debug(errorMsg, log.String("uid", uid), log.Error(err))
		return errors2.NewServerError(errors2.ErrorMessage{
			Code:        errors2.ADD_USER_PROFILE.Code,
			Message:     errors2.ADD_USER_PROFILE.Message,
			Description: errorMsg,
		}, err)
	}
	return nil
}

func decodeTenant(snap docstore.DocumentSnapshot) (*model.TenantProfile, error) {
	if !snap.Exists {
		return nil, nil
	}
	var profile model.TenantProfile
	if err := snap.DataTo(&profile); err != nil {
		return nil, err
	}
	if profile.UserID == "" {
		profile.UserID = snap.Ref.ID
	}
	return &profile, nil
}

func decodeLandlord(snap docstore.DocumentSnapshot) (*model.LandlordProfile, error) {
	if !snap.Exists {
		return nil, nil
	}
	var profile model.LandlordProfile
	if err := snap.DataTo(&profile); err != nil {
		return nil, err
	}
	if profile.UserID == "" {
		profile.UserID = snap.Ref.ID
	}
	return &profile, nil
}

func fetchError(msg errors2.ErrorMessage, description, uid string, cause error) error {
	log.GetLogger().Debug(description, log.String("uid", uid), log.Error(cause))
	return errors2.NewServerError(errors2.ErrorMessage{
		Code:        msg.Code,
		Message:     msg.Message,
		Description: description,
	}, cause)
}
