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

package provider

import (
	"github.com/wso2/property-sync-service/internal/docstore"
	"github.com/wso2/property-sync-service/internal/profile/service"
	"github.com/wso2/property-sync-service/internal/profile/store"
	"github.com/wso2/property-sync-service/internal/system/workers"
)

// ProfilesProviderInterface hands out profile services bound to one document store.
type ProfilesProviderInterface interface {
	GetProfileStore() store.ProfileStoreInterface
	GetRegistrationService() service.RegistrationServiceInterface
	NewProfileSyncService(loop *workers.EventLoop) service.ProfileSyncServiceInterface
}

// ProfilesProvider is the default implementation of ProfilesProviderInterface.
type ProfilesProvider struct {
	store store.ProfileStoreInterface
}

// NewProfilesProvider creates a new instance of ProfilesProvider.
func NewProfilesProvider(docs docstore.Store) ProfilesProviderInterface {

	return &ProfilesProvider{store: store.NewProfileStore(docs)}
}

func (p *ProfilesProvider) GetProfileStore() store.ProfileStoreInterface {

	return p.store
}

// GetRegistrationService returns the sign-up service.
func (p *ProfilesProvider) GetRegistrationService() service.RegistrationServiceInterface {

	return service.NewRegistrationService(p.store)
}

// NewProfileSyncService returns a synchronizer driven by loop.
func (p *ProfilesProvider) NewProfileSyncService(loop *workers.EventLoop) service.ProfileSyncServiceInterface {

	return service.NewProfileSyncService(loop, p.store)
}
