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

	"github.com/pkg/errors"

	"github.com/wso2/property-sync-service/internal/docstore"
	"github.com/wso2/property-sync-service/internal/property/model"
	"github.com/wso2/property-sync-service/internal/system/constants"
	"github.com/wso2/property-sync-service/internal/system/subscription"
)

// PropertyStoreInterface is the residence and apartment side of the document store.
type PropertyStoreInterface interface {
	WatchResidences(landlordID string, onNext func([]model.Residence), onError func(error)) subscription.Unsubscribe
	WatchApartments(residenceIDs []string, onNext func([]model.Apartment), onError func(error)) subscription.Unsubscribe

	GetResidence(ctx context.Context, id string) (*model.Residence, error)
	GetApartment(ctx context.Context, id string) (*model.Apartment, error)
	ListApartments(ctx context.Context, residenceID string) ([]model.Apartment, error)

	AddResidence(ctx context.Context, residence model.Residence) (string, error)
	UpdateResidence(ctx context.Context, id string, fields map[string]interface{}) error
	DeleteResidence(ctx context.Context, id string) error
	AddApartment(ctx context.Context, apartment model.Apartment) (string, error)
	UpdateApartment(ctx context.Context, id string, fields map[string]interface{}) error
	DeleteApartment(ctx context.Context, id string) error

	AddResidenceToLandlord(ctx context.Context, landlordID, residenceID string) error
	RemoveResidenceFromLandlord(ctx context.Context, landlordID, residenceID string) error
	AddApartmentToResidence(ctx context.Context, residenceID, apartmentID string) error
	RemoveApartmentFromResidence(ctx context.Context, residenceID, apartmentID string) error
}

// PropertyStore implements PropertyStoreInterface over a docstore.Store.
type PropertyStore struct {
	store docstore.Store
}

func NewPropertyStore(store docstore.Store) *PropertyStore {
	return &PropertyStore{store: store}
}

// WatchResidences delivers every residence whose landlordId equals landlordID.
func (s *PropertyStore) WatchResidences(landlordID string, onNext func([]model.Residence),
	onError func(error)) subscription.Unsubscribe {

	query := docstore.NewQuery(constants.ResidencesCollection, docstore.Eq(constants.LandlordIDField, landlordID))
	return s.store.WatchQuery(query, func(snap docstore.QuerySnapshot) {
		residences, err := decodeResidences(snap.Documents)
		if err != nil {
			onError(err)
			return
		}
		onNext(residences)
	}, onError)
}

// WatchApartments delivers every apartment whose residenceId is in residenceIDs.
func (s *PropertyStore) WatchApartments(residenceIDs []string, onNext func([]model.Apartment),
	onError func(error)) subscription.Unsubscribe {

	query := docstore.NewQuery(constants.ApartmentsCollection, docstore.In(constants.ResidenceIDField, residenceIDs))
	return s.store.WatchQuery(query, func(snap docstore.QuerySnapshot) {
		apartments, err := decodeApartments(snap.Documents)
		if err != nil {
			onError(err)
			return
		}
		onNext(apartments)
	}, onError)
}

// GetResidence returns nil, nil when the residence does not exist.
func (s *PropertyStore) GetResidence(ctx context.Context, id string) (*model.Residence, error) {
	snap, err := s.store.Get(ctx, docstore.Ref(constants.ResidencesCollection, id))
	if err != nil || !snap.Exists {
		return nil, err
	}
	residence, err := decodeResidence(snap)
	if err != nil {
		return nil, err
	}
	return &residence, nil
}

// GetApartment returns nil, nil when the apartment does not exist.
func (s *PropertyStore) GetApartment(ctx context.Context, id string) (*model.Apartment, error) {
	snap, err := s.store.Get(ctx, docstore.Ref(constants.ApartmentsCollection, id))
	if err != nil || !snap.Exists {
		return nil, err
	}
	apartment, err := decodeApartment(snap)
	if err != nil {
		return nil, err
	}
	return &apartment, nil
}

// ListApartments returns the apartments that reference residenceID.
func (s *PropertyStore) ListApartments(ctx context.Context, residenceID string) ([]model.Apartment, error) {
	docs, err := s.store.Find(ctx, docstore.NewQuery(constants.ApartmentsCollection,
		docstore.Eq(constants.ResidenceIDField, residenceID)))
	if err != nil {
		return nil, err
	}
	return decodeApartments(docs)
}

func (s *PropertyStore) AddResidence(ctx context.Context, residence model.Residence) (string, error) {
	residence.ID = ""
	return s.store.Create(ctx, constants.ResidencesCollection, withEmptyLists(residence))
}

func (s *PropertyStore) UpdateResidence(ctx context.Context, id string, fields map[string]interface{}) error {
	return s.store.Update(ctx, docstore.Ref(constants.ResidencesCollection, id), fields)
}

func (s *PropertyStore) DeleteResidence(ctx context.Context, id string) error {
	return s.store.Delete(ctx, docstore.Ref(constants.ResidencesCollection, id))
}

func (s *PropertyStore) AddApartment(ctx context.Context, apartment model.Apartment) (string, error) {
	apartment.ID = ""
	if apartment.Tenants == nil {
		apartment.Tenants = []string{}
	}
	if apartment.MaintenanceRequests == nil {
		apartment.MaintenanceRequests = []string{}
	}
	return s.store.Create(ctx, constants.ApartmentsCollection, apartment)
}

func (s *PropertyStore) UpdateApartment(ctx context.Context, id string, fields map[string]interface{}) error {
	return s.store.Update(ctx, docstore.Ref(constants.ApartmentsCollection, id), fields)
}

func (s *PropertyStore) DeleteApartment(ctx context.Context, id string) error {
	return s.store.Delete(ctx, docstore.Ref(constants.ApartmentsCollection, id))
}

func (s *PropertyStore) AddResidenceToLandlord(ctx context.Context, landlordID, residenceID string) error {
	return s.editList(ctx, docstore.Ref(constants.LandlordsCollection, landlordID), "residenceIds",
		func(ids []string) []string { return union(ids, residenceID) })
}

func (s *PropertyStore) RemoveResidenceFromLandlord(ctx context.Context, landlordID, residenceID string) error {
	return s.editList(ctx, docstore.Ref(constants.LandlordsCollection, landlordID), "residenceIds",
		func(ids []string) []string { return remove(ids, residenceID) })
}

func (s *PropertyStore) AddApartmentToResidence(ctx context.Context, residenceID, apartmentID string) error {
	return s.editList(ctx, docstore.Ref(constants.ResidencesCollection, residenceID), "apartments",
		func(ids []string) []string { return union(ids, apartmentID) })
}

func (s *PropertyStore) RemoveApartmentFromResidence(ctx context.Context, residenceID, apartmentID string) error {
	return s.editList(ctx, docstore.Ref(constants.ResidencesCollection, residenceID), "apartments",
		func(ids []string) []string { return remove(ids, apartmentID) })
}

// editList rewrites one string-list field of a document.
func (s *PropertyStore) editList(ctx context.Context, ref docstore.DocumentRef, field string,
	edit func([]string) []string) error {

	snap, err := s.store.Get(ctx, ref)
	if err != nil {
		return err
	}
	if !snap.Exists {
		return errors.Wrapf(docstore.ErrNotFound, "edit %s of %s", field, ref)
	}
	var doc map[string]interface{}
	if err := snap.DataTo(&doc); err != nil {
		return err
	}
	return s.store.Update(ctx, ref, map[string]interface{}{field: edit(stringList(doc[field]))})
}

func stringList(v interface{}) []string {
	items, _ := v.([]interface{})
	out := make([]string, 0, len(items))
	for _, item := range items {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

func union(ids []string, id string) []string {
	for _, existing := range ids {
		if existing == id {
			return ids
		}
	}
	return append(ids, id)
}

func remove(ids []string, id string) []string {
	out := make([]string, 0, len(ids))
	for _, existing := range ids {
		if existing != id {
			out = append(out, existing)
		}
	}
	return out
}

func withEmptyLists(r model.Residence) model.Residence {
	if r.Apartments == nil {
		r.Apartments = []string{}
	}
	if r.TenantIDs == nil {
		r.TenantIDs = []string{}
	}
	if r.LaundryMachineIDs == nil {
		r.LaundryMachineIDs = []string{}
	}
	if r.SituationReportLayout == nil {
		r.SituationReportLayout = []string{}
	}
	return r
}

func decodeResidence(snap docstore.DocumentSnapshot) (model.Residence, error) {
	var residence model.Residence
	if err := snap.DataTo(&residence); err != nil {
		return model.Residence{}, err
	}
	residence.ID = snap.Ref.ID
	return residence, nil
}

func decodeApartment(snap docstore.DocumentSnapshot) (model.Apartment, error) {
	var apartment model.Apartment
	if err := snap.DataTo(&apartment); err != nil {
		return model.Apartment{}, err
	}
	apartment.ID = snap.Ref.ID
	return apartment, nil
}

func decodeResidences(docs []docstore.DocumentSnapshot) ([]model.Residence, error) {
	residences := make([]model.Residence, 0, len(docs))
	for _, doc := range docs {
		residence, err := decodeResidence(doc)
		if err != nil {
			return nil, err
		}
		residences = append(residences, residence)
	}
	return residences, nil
}

func decodeApartments(docs []docstore.DocumentSnapshot) ([]model.Apartment, error) {
	apartments := make([]model.Apartment, 0, len(docs))
	for _, doc := range docs {
		apartment, err := decodeApartment(doc)
		if err != nil {
			return nil, err
		}
		apartments = append(apartments, apartment)
	}
	return apartments, nil
}
