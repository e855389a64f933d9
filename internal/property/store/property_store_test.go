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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wso2/property-sync-service/internal/docstore"
	"github.com/wso2/property-sync-service/internal/docstore/memory"
	"github.com/wso2/property-sync-service/internal/property/model"
)

func TestPropertyStore_ResidenceRoundTrip(t *testing.T) {
	ctx := context.Background()
	docs := memory.NewStore()
	defer docs.Close()
	s := NewPropertyStore(docs)

	id, err := s.AddResidence(ctx, model.Residence{ID: "ignored", ResidenceName: "Lindenhof", LandlordID: "l1"})
	require.NoError(t, err)
	assert.NotEqual(t, "ignored", id)

	residence, err := s.GetResidence(ctx, id)
	require.NoError(t, err)
	require.NotNil(t, residence)
	assert.Equal(t, id, residence.ID)
	assert.Equal(t, "Lindenhof", residence.ResidenceName)
	assert.Equal(t, []string{}, residence.Apartments)

	missing, err := s.GetResidence(ctx, "nope")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestPropertyStore_ListEdits(t *testing.T) {
	ctx := context.Background()
	docs := memory.NewStore()
	defer docs.Close()
	s := NewPropertyStore(docs)
	require.NoError(t, docs.Set(ctx, docstore.Ref("landlords", "l1"),
		landlordDoc{UserID: "l1", ResidenceIDs: []string{"r1"}}))

	require.NoError(t, s.AddResidenceToLandlord(ctx, "l1", "r2"))
	require.NoError(t, s.AddResidenceToLandlord(ctx, "l1", "r2"))
	assert.Equal(t, []string{"r1", "r2"}, landlordResidences(t, docs))

	require.NoError(t, s.RemoveResidenceFromLandlord(ctx, "l1", "r1"))
	assert.Equal(t, []string{"r2"}, landlordResidences(t, docs))

	err := s.AddApartmentToResidence(ctx, "missing", "a1")
	assert.ErrorIs(t, err, docstore.ErrNotFound)
}

func TestPropertyStore_ListApartments(t *testing.T) {
	ctx := context.Background()
	docs := memory.NewStore()
	defer docs.Close()
	s := NewPropertyStore(docs)

	_, err := s.AddApartment(ctx, model.Apartment{ApartmentName: "1A", ResidenceID: "r1"})
	require.NoError(t, err)
	_, err = s.AddApartment(ctx, model.Apartment{ApartmentName: "2B", ResidenceID: "r2"})
	require.NoError(t, err)

	apartments, err := s.ListApartments(ctx, "r1")
	require.NoError(t, err)
	require.Len(t, apartments, 1)
	assert.Equal(t, "1A", apartments[0].ApartmentName)
	assert.NotEmpty(t, apartments[0].ID)
	assert.Equal(t, []string{}, apartments[0].Tenants)
}

type landlordDoc struct {
	UserID       string   `json:"userId"`
	ResidenceIDs []string `json:"residenceIds"`
}

func landlordResidences(t *testing.T, docs *memory.Store) []string {
	t.Helper()
	snap, err := docs.Get(context.Background(), docstore.Ref("landlords", "l1"))
	require.NoError(t, err)
	var landlord landlordDoc
	require.NoError(t, snap.DataTo(&landlord))
	return landlord.ResidenceIDs
}
