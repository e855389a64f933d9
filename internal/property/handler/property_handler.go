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

package handler

import (
	"context"
	"net/http"

	"github.com/gorilla/mux"

	profileProvider "github.com/wso2/property-sync-service/internal/profile/provider"
	"github.com/wso2/property-sync-service/internal/property/model"
	"github.com/wso2/property-sync-service/internal/property/provider"
	"github.com/wso2/property-sync-service/internal/session"
	"github.com/wso2/property-sync-service/internal/system/authz"
	errors2 "github.com/wso2/property-sync-service/internal/system/errors"
	"github.com/wso2/property-sync-service/internal/system/security"
	"github.com/wso2/property-sync-service/internal/system/utils"
)

type (
	updateFunc func(ctx context.Context, landlordID, id string, fields map[string]interface{}) error
	deleteFunc func(ctx context.Context, landlordID, id string) error
)

type PropertyHandler struct {
	properties provider.PropertiesProviderInterface
	profiles   profileProvider.ProfilesProviderInterface
	sessions   session.ManagerInterface
}

func NewPropertyHandler(properties provider.PropertiesProviderInterface,
	profiles profileProvider.ProfilesProviderInterface, sessions session.ManagerInterface) *PropertyHandler {

	return &PropertyHandler{properties: properties, profiles: profiles, sessions: sessions}
}

// GetResidences handles GET /residences. It returns the live property state of the
// caller's session, including the residence grouping.
func (h *PropertyHandler) GetResidences(w http.ResponseWriter, r *http.Request) {

	identity, ok := security.IdentityFromContext(r.Context())
	if !ok {
		utils.HandleError(w, r, errors2.NewClientError(errors2.UN_AUTHORIZED, http.StatusUnauthorized))
		return
	}
	s, err := h.sessions.Acquire(*identity)
	if err != nil {
		utils.HandleError(w, r, errors2.NewServerError(errors2.SESSION, err))
		return
	}
	state := session.UseProperties(session.WithSession(r.Context(), s))
	utils.WriteJSON(w, http.StatusOK, state.ToResponse())
}

// AddResidence handles POST /residences
func (h *PropertyHandler) AddResidence(w http.ResponseWriter, r *http.Request) {

	landlordID, err := h.landlord(r, authz.WriteResidence)
	if err != nil {
		utils.HandleError(w, r, err)
		return
	}
	var residence model.Residence
	if err := utils.DecodeJSON(r, &residence, "residence"); err != nil {
		utils.HandleError(w, r, err)
		return
	}
	created, err := h.properties.GetPropertyService().CreateResidence(r.Context(), landlordID, residence)
	if err != nil {
		utils.HandleError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusCreated, created)
}

// PatchResidence handles PATCH /residences/{id}
func (h *PropertyHandler) PatchResidence(w http.ResponseWriter, r *http.Request) {
	h.patch(w, r, "residence", authz.WriteResidence, h.properties.GetPropertyService().UpdateResidence)
}

// DeleteResidence handles DELETE /residences/{id}
func (h *PropertyHandler) DeleteResidence(w http.ResponseWriter, r *http.Request) {
	h.delete(w, r, authz.WriteResidence, h.properties.GetPropertyService().DeleteResidence)
}

// AddApartment handles POST /apartments
func (h *PropertyHandler) AddApartment(w http.ResponseWriter, r *http.Request) {

	landlordID, err := h.landlord(r, authz.WriteApartment)
	if err != nil {
		utils.HandleError(w, r, err)
		return
	}
	var apartment model.Apartment
	if err := utils.DecodeJSON(r, &apartment, "apartment"); err != nil {
		utils.HandleError(w, r, err)
		return
	}
	created, err := h.properties.GetPropertyService().CreateApartment(r.Context(), landlordID, apartment)
	if err != nil {
		utils.HandleError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusCreated, created)
}

// PatchApartment handles PATCH /apartments/{id}
func (h *PropertyHandler) PatchApartment(w http.ResponseWriter, r *http.Request) {
	h.patch(w, r, "apartment", authz.WriteApartment, h.properties.GetPropertyService().UpdateApartment)
}

// DeleteApartment handles DELETE /apartments/{id}
func (h *PropertyHandler) DeleteApartment(w http.ResponseWriter, r *http.Request) {
	h.delete(w, r, authz.WriteApartment, h.properties.GetPropertyService().DeleteApartment)
}

func (h *PropertyHandler) patch(w http.ResponseWriter, r *http.Request, resourceName, operation string,
	update updateFunc) {

	landlordID, err := h.landlord(r, operation)
	if err != nil {
		utils.HandleError(w, r, err)
		return
	}
	var fields map[string]interface{}
	if err := utils.DecodeJSON(r, &fields, resourceName); err != nil {
		utils.HandleError(w, r, err)
		return
	}
	if err := update(r.Context(), landlordID, mux.Vars(r)["id"], fields); err != nil {
		utils.HandleError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *PropertyHandler) delete(w http.ResponseWriter, r *http.Request, operation string, remove deleteFunc) {

	landlordID, err := h.landlord(r, operation)
	if err != nil {
		utils.HandleError(w, r, err)
		return
	}
	if err := remove(r.Context(), landlordID, mux.Vars(r)["id"]); err != nil {
		utils.HandleError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// landlord returns the caller's uid if the caller's registered role permits the operation.
func (h *PropertyHandler) landlord(r *http.Request, operation string) (string, error) {
	identity, ok := security.IdentityFromContext(r.Context())
	if !ok {
		return "", errors2.NewClientError(errors2.UN_AUTHORIZED, http.StatusUnauthorized)
	}
	user, err := h.profiles.GetProfileStore().FetchUserProfile(r.Context(), identity.UID)
	if err != nil {
		return "", err
	}
	if user == nil || !authz.ValidatePermission(user.Type, operation) {
		return "", errors2.NewClientError(errors2.NOT_A_LANDLORD, http.StatusForbidden)
	}
	return identity.UID, nil
}
