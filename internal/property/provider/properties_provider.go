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
	"github.com/wso2/property-sync-service/internal/property/service"
	"github.com/wso2/property-sync-service/internal/property/store"
	"github.com/wso2/property-sync-service/internal/system/workers"
)

// PropertiesProviderInterface hands out property services bound to one document store.
type PropertiesProviderInterface interface {
	GetPropertyStore() store.PropertyStoreInterface
	GetPropertyService() service.PropertyServiceInterface
	NewPropertySyncService(loop *workers.EventLoop) service.PropertySyncServiceInterface
}

// PropertiesProvider is the default implementation of PropertiesProviderInterface.
type PropertiesProvider struct {
	store store.PropertyStoreInterface
}

// NewPropertiesProvider creates a new instance of PropertiesProvider.
func NewPropertiesProvider(docs docstore.Store) PropertiesProviderInterface {

	return &PropertiesProvider{store: store.NewPropertyStore(docs)}
}

func (p *PropertiesProvider) GetPropertyStore() store.PropertyStoreInterface {

	return p.store
}

// GetPropertyService returns the residence and apartment mutation service.
func (p *PropertiesProvider) GetPropertyService() service.PropertyServiceInterface {

	return service.NewPropertyService(p.store)
}

// NewPropertySyncService returns a synchronizer driven by loop.
func (p *PropertiesProvider) NewPropertySyncService(loop *workers.EventLoop) service.PropertySyncServiceInterface {

	return service.NewPropertySyncService(loop, p.store)
}
