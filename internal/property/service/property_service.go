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
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"strings"

	"github.com/wso2/property-sync-service/internal/property/model"
	"github.com/wso2/property-sync-service/internal/property/store"
	errors2 "github.com/wso2/property-sync-service/internal/system/errors"
	"github.com/wso2/property-sync-service/internal/system/log"
	"github.com/wso2/property-sync-service/internal/system/metrics"
)

// PropertyServiceInterface holds the one-shot residence and apartment writes. None
// of them touch synchronizer state; changes arrive through the live channels.
type PropertyServiceInterface interface {
	CreateResidence(ctx context.Context, landlordID string, residence model.Residence) (*model.Residence, error)
	UpdateResidence(ctx context.Context, landlordID, residenceID string, fields map[string]interface{}) error
	DeleteResidence(ctx context.Context, landlordID, residenceID string) error
	CreateApartment(ctx context.Context, landlordID string, apartment model.Apartment) (*model.Apartment, error)
	UpdateApartment(ctx context.Context, landlordID, apartmentID string, fields map[string]interface{}) error
	DeleteApartment(ctx context.Context, landlordID, apartmentID string) error
}

// PropertyService keeps the residence lists of landlords and the apartment lists of
// residences in step with the documents it creates and deletes.
type PropertyService struct {
	store store.PropertyStoreInterface
}

func NewPropertyService(propertyStore store.PropertyStoreInterface) *PropertyService {
	return &PropertyService{store: propertyStore}
}

// CreateResidence adds a residence owned by landlordID and links it to the landlord.
func (s *PropertyService) CreateResidence(ctx context.Context, landlordID string,
	residence model.Residence) (created *model.Residence, err error) {

	defer func() { s.record(log.ActionAddResidence, log.TargetTypeResidence, landlordID, residenceID(created), err) }()

	if strings.TrimSpace(residence.ResidenceName) == "" {
		return nil, clientError(errors2.INVALID_RESIDENCE, "Residence name is required.", http.StatusBadRequest)
	}
	residence.LandlordID = landlordID
	residence.Apartments = nil

	id, err := s.store.AddResidence(ctx, residence)
	if err != nil {
		return nil, serverError(errors2.ADD_RESIDENCE, "Failed to add residence", err)
	}
	if err := s.store.AddResidenceToLandlord(ctx, landlordID, id); err != nil {
		rollback("residence", id, s.store.DeleteResidence(ctx, id))
		return nil, serverError(errors2.ADD_RESIDENCE, "Failed to link residence to landlord", err)
	}
	residence.ID = id
	residence.Apartments = []string{}
	return &residence, nil
}

// UpdateResidence merges fields into a residence of landlordID.
func (s *PropertyService) UpdateResidence(ctx context.Context, landlordID, id string,
	fields map[string]interface{}) (err error) {

	defer func() { s.record(log.ActionUpdateResidence, log.TargetTypeResidence, landlordID, id, err) }()

	if err := validateFields(fields, model.MutableResidenceFields, &model.Residence{}, errors2.INVALID_RESIDENCE); err != nil {
		return err
	}
	if _, err := s.ownedResidence(ctx, landlordID, id); err != nil {
		return err
	}
	if err := s.store.UpdateResidence(ctx, id, fields); err != nil {
		return serverError(errors2.UPDATE_RESIDENCE, "Failed to update residence", err)
	}
	return nil
}

// DeleteResidence removes a residence, its apartments and the landlord's link to it.
func (s *PropertyService) DeleteResidence(ctx context.Context, landlordID, id string) (err error) {
	defer func() { s.record(log.ActionDeleteResidence, log.TargetTypeResidence, landlordID, id, err) }()

	if _, err := s.ownedResidence(ctx, landlordID, id); err != nil {
		return err
	}
	apartments, err := s.store.ListApartments(ctx, id)
	if err != nil {
		return serverError(errors2.DELETE_RESIDENCE, "Failed to list apartments of residence", err)
	}
	for _, apartment := range apartments {
		if err := s.store.DeleteApartment(ctx, apartment.ID); err != nil {
			return serverError(errors2.DELETE_RESIDENCE, "Failed to delete apartment of residence", err)
		}
	}
	if err := s.store.RemoveResidenceFromLandlord(ctx, landlordID, id); err != nil {
		return serverError(errors2.DELETE_RESIDENCE, "Failed to unlink residence from landlord", err)
	}
	if err := s.store.DeleteResidence(ctx, id); err != nil {
		return serverError(errors2.DELETE_RESIDENCE, "Failed to delete residence", err)
	}
	return nil
}

// CreateApartment adds an apartment to a residence of landlordID.
func (s *PropertyService) CreateApartment(ctx context.Context, landlordID string,
	apartment model.Apartment) (created *model.Apartment, err error) {

	defer func() { s.record(log.ActionAddApartment, log.TargetTypeApartment, landlordID, apartmentID(created), err) }()

	if strings.TrimSpace(apartment.ApartmentName) == "" {
		return nil, clientError(errors2.INVALID_APARTMENT, "Apartment name is required.", http.StatusBadRequest)
	}
	if strings.TrimSpace(apartment.ResidenceID) == "" {
		return nil, clientError(errors2.INVALID_APARTMENT, "Residence id is required.", http.StatusBadRequest)
	}
	if _, err := s.ownedResidence(ctx, landlordID, apartment.ResidenceID); err != nil {
		return nil, err
	}

	id, err := s.store.AddApartment(ctx, apartment)
	if err != nil {
		return nil, serverError(errors2.ADD_APARTMENT, "Failed to add apartment", err)
	}
	if err := s.store.AddApartmentToResidence(ctx, apartment.ResidenceID, id); err != nil {
		rollback("apartment", id, s.store.DeleteApartment(ctx, id))
		return nil, serverError(errors2.ADD_APARTMENT, "Failed to link apartment to residence", err)
	}
	apartment.ID = id
	if apartment.Tenants == nil {
		apartment.Tenants = []string{}
	}
	if apartment.MaintenanceRequests == nil {
		apartment.MaintenanceRequests = []string{}
	}
	return &apartment, nil
}

// UpdateApartment merges fields into an apartment in a residence of landlordID.
func (s *PropertyService) UpdateApartment(ctx context.Context, landlordID, id string,
	fields map[string]interface{}) (err error) {

	defer func() { s.record(log.ActionUpdateApartment, log.TargetTypeApartment, landlordID, id, err) }()

	if err := validateFields(fields, model.MutableApartmentFields, &model.Apartment{}, errors2.INVALID_APARTMENT); err != nil {
		return err
	}
	if _, err := s.ownedApartment(ctx, landlordID, id); err != nil {
		return err
	}
	if err := s.store.UpdateApartment(ctx, id, fields); err != nil {
		return serverError(errors2.UPDATE_APARTMENT, "Failed to update apartment", err)
	}
	return nil
}

// DeleteApartment removes an apartment and its residence's link to it.
func (s *PropertyService) DeleteApartment(ctx context.Context, landlordID, id string) (err error) {
	defer func() { s.record(log.ActionDeleteApartment, log.TargetTypeApartment, landlordID, id, err) }()

	apartment, err := s.ownedApartment(ctx, landlordID, id)
	if err != nil {
		return err
	}
	if err := s.store.RemoveApartmentFromResidence(ctx, apartment.ResidenceID, id); err != nil {
		return serverError(errors2.DELETE_APARTMENT, "Failed to unlink apartment from residence", err)
	}
	if err := s.store.DeleteApartment(ctx, id); err != nil {
		return serverError(errors2.DELETE_APARTMENT, "Failed to delete apartment", err)
	}
	return nil
}

// ownedResidence loads a residence and hides residences of other landlords.
func (s *PropertyService) ownedResidence(ctx context.Context, landlordID, id string) (*model.Residence, error) {
	residence, err := s.store.GetResidence(ctx, id)
	if err != nil {
		return nil, serverError(errors2.FETCH_RESIDENCE, "Failed to fetch residence", err)
	}
	if residence == nil || residence.LandlordID != landlordID {
		return nil, clientError(errors2.RESIDENCE_NOT_FOUND,
			fmt.Sprintf("Residence %s not found.", id), http.StatusNotFound)
	}
	return residence, nil
}

func (s *PropertyService) ownedApartment(ctx context.Context, landlordID, id string) (*model.Apartment, error) {
	apartment, err := s.store.GetApartment(ctx, id)
	if err != nil {
		return nil, serverError(errors2.FETCH_APARTMENT, "Failed to fetch apartment", err)
	}
	notFound := clientError(errors2.APARTMENT_NOT_FOUND, fmt.Sprintf("Apartment %s not found.", id), http.StatusNotFound)
	if apartment == nil {
		return nil, notFound
	}
	residence, err := s.store.GetResidence(ctx, apartment.ResidenceID)
	if err != nil {
		return nil, serverError(errors2.FETCH_RESIDENCE, "Failed to fetch residence", err)
	}
	if residence == nil || residence.LandlordID != landlordID {
		return nil, notFound
	}
	return apartment, nil
}

func (s *PropertyService) record(action, targetType, landlordID, targetID string, err error) {
	metrics.MutationDone(action, err)
	if err != nil {
		log.GetLogger().Debug("Property mutation failed", log.String("action", action), log.Error(err))
		return
	}
	log.GetLogger().Audit(log.AuditEvent{
		InitiatorID:   landlordID,
		InitiatorType: log.InitiatorTypeUser,
		TargetID:      targetID,
		TargetType:    targetType,
		ActionID:      action,
	})
}

// validateFields accepts only allowed keys whose values decode into target's field types.
func validateFields(fields map[string]interface{}, allowed map[string]bool, target interface{},
	msg errors2.ErrorMessage) error {

	if len(fields) == 0 {
		return clientError(msg, "No fields to update.", http.StatusBadRequest)
	}
	var rejected []string
	for key := range fields {
		if !allowed[key] {
			rejected = append(rejected, key)
		}
	}
	if len(rejected) > 0 {
		sort.Strings(rejected)
		return clientError(msg, fmt.Sprintf("Fields cannot be updated: %s.", strings.Join(rejected, ", ")),
			http.StatusBadRequest)
	}

	body, err := json.Marshal(fields)
	if err != nil {
		return clientError(msg, "Fields are not valid JSON values.", http.StatusBadRequest)
	}
	decoder := json.NewDecoder(bytes.NewReader(body))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(target); err != nil {
		return clientError(msg, "Field values have the wrong type.", http.StatusBadRequest)
	}
	return nil
}

// rollback logs a failed removal of a document whose link could not be written.
func rollback(kind, id string, err error) {
	if err != nil {
		log.GetLogger().Warn("Failed to remove unlinked "+kind, log.String("id", id), log.Error(err))
	}
}

func residenceID(r *model.Residence) string {
	if r == nil {
		return ""
	}
	return r.ID
}

func apartmentID(a *model.Apartment) string {
	if a == nil {
		return ""
	}
	return a.ID
}

func clientError(msg errors2.ErrorMessage, description string, status int) error {
	return errors2.NewClientError(errors2.ErrorMessage{
		Code:        msg.Code,
		Message:     msg.Message,
		Description: description,
	}, status)
}

func serverError(msg errors2.ErrorMessage, description string, cause error) error {
	log.GetLogger().Debug(description, log.Error(cause))
	return errors2.NewServerError(errors2.ErrorMessage{
		Code:        msg.Code,
		Message:     msg.Message,
		Description: description,
	}, cause)
}
