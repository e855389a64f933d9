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

//go:build integration

package integration

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	profileModel "github.com/wso2/property-sync-service/internal/profile/model"
	profileProvider "github.com/wso2/property-sync-service/internal/profile/provider"
	propertyModel "github.com/wso2/property-sync-service/internal/property/model"
	propertyProvider "github.com/wso2/property-sync-service/internal/property/provider"
	"github.com/wso2/property-sync-service/internal/session"
)

func TestSession_LandlordOverPostgres(t *testing.T) {
	ctx := context.Background()
	profiles := profileProvider.NewProfilesProvider(docs)
	properties := propertyProvider.NewPropertiesProvider(docs)

	identity := profileModel.Identity{UID: "it-landlord", Email: "it@example.com"}
	_, err := profiles.GetRegistrationService().Register(ctx, identity, profileModel.RegistrationRequest{
		Type: string(profileModel.RoleLandlord),
		Name: "Ida",
	})
	require.NoError(t, err)

	manager := session.NewManager(profiles, properties)
	defer manager.Close()

	s, err := manager.Acquire(identity)
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		state := s.Profiles()
		return !state.IsLoading && state.LandlordProfile != nil
	}, waitFor, tick)
	require.Eventually(t, func() bool { return !s.Properties().IsLoading }, waitFor, tick)
	assert.Equal(t, 0, s.Properties().ResidenceMap.Len())

	mutations := properties.GetPropertyService()
	residence, err := mutations.CreateResidence(ctx, identity.UID, propertyModel.Residence{ResidenceName: "Lindenhof"})
	require.NoError(t, err)
	_, err = mutations.CreateApartment(ctx, identity.UID, propertyModel.Apartment{
		ApartmentName: "1A",
		ResidenceID:   residence.ID,
	})
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		group, ok := s.Properties().ResidenceMap.Get(residence.ID)
		return ok && len(group.Apartments) == 1
	}, waitFor, tick)

	require.NoError(t, mutations.DeleteResidence(ctx, identity.UID, residence.ID))
	require.Eventually(t, func() bool {
		state := s.Properties()
		return len(state.Residences) == 0 && len(state.Apartments) == 0
	}, waitFor, tick)

	assert.True(t, manager.SignOut(identity.UID))
	_, ok := manager.Get(identity.UID)
	assert.False(t, ok)
}
