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

package managers

import (
	"github.com/gorilla/mux"

	"github.com/wso2/property-sync-service/internal/docstore"
	healthHandler "github.com/wso2/property-sync-service/internal/health_check/handler"
	healthProvider "github.com/wso2/property-sync-service/internal/health_check/provider"
	profileHandler "github.com/wso2/property-sync-service/internal/profile/handler"
	profileProvider "github.com/wso2/property-sync-service/internal/profile/provider"
	propertyHandler "github.com/wso2/property-sync-service/internal/property/handler"
	propertyProvider "github.com/wso2/property-sync-service/internal/property/provider"
	"github.com/wso2/property-sync-service/internal/session"
	sessionHandler "github.com/wso2/property-sync-service/internal/session/handler"
	"github.com/wso2/property-sync-service/internal/system/authn"
	"github.com/wso2/property-sync-service/internal/system/config"
	"github.com/wso2/property-sync-service/internal/system/security"
	"github.com/wso2/property-sync-service/internal/system/services"
	"github.com/wso2/property-sync-service/internal/system/utils"
)

type ServiceManagerInterface interface {
	RegisterServices(apiBasePath string) error
	Sessions() *session.Manager
}

type ServiceManager struct {
	router        *mux.Router
	docs          docstore.Store
	authenticator authn.AuthenticatorInterface
	metrics       config.MetricsConfig
	sessions      *session.Manager
	profiles      profileProvider.ProfilesProviderInterface
	properties    propertyProvider.PropertiesProviderInterface
}

// NewServiceManager creates a new instance of ServiceManager. Every service it
// registers shares docs and one session manager.
func NewServiceManager(router *mux.Router, docs docstore.Store, authenticator authn.AuthenticatorInterface,
	metricsConfig config.MetricsConfig) ServiceManagerInterface {

	profiles := profileProvider.NewProfilesProvider(docs)
	properties := propertyProvider.NewPropertiesProvider(docs)
	return &ServiceManager{
		router:        router,
		docs:          docs,
		authenticator: authenticator,
		metrics:       metricsConfig,
		sessions:      session.NewManager(profiles, properties),
		profiles:      profiles,
		properties:    properties,
	}
}

func (sm *ServiceManager) RegisterServices(apiBasePath string) error {

	sm.router.Use(utils.WithTraceID)

	services.NewHealthService(sm.router,
		healthHandler.NewHealthHandler(healthProvider.NewHealthCheckProvider(sm.docs)))
	if sm.metrics.Enabled {
		services.NewMetricsService(sm.router, sm.metrics.Path)
	}

	api := sm.router.PathPrefix(apiBasePath).Subrouter()
	api.Use(security.Authenticated(sm.authenticator))

	services.NewProfileService(api, profileHandler.NewProfileHandler(sm.profiles, sm.sessions))
	services.NewSessionService(api, sessionHandler.NewSessionHandler(sm.sessions))
	services.NewPropertyService(api, propertyHandler.NewPropertyHandler(sm.properties, sm.profiles, sm.sessions))
	return nil
}

// Sessions returns the session manager shared by the registered services.
func (sm *ServiceManager) Sessions() *session.Manager {
	return sm.sessions
}
