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
	"net/http"

	"github.com/wso2/property-sync-service/internal/profile/model"
	"github.com/wso2/property-sync-service/internal/profile/provider"
	"github.com/wso2/property-sync-service/internal/session"
	errors2 "github.com/wso2/property-sync-service/internal/system/errors"
	"github.com/wso2/property-sync-service/internal/system/security"
	"github.com/wso2/property-sync-service/internal/system/utils"
)

type ProfileHandler struct {
	profiles provider.ProfilesProviderInterface
	sessions session.ManagerInterface
}

func NewProfileHandler(profiles provider.ProfilesProviderInterface, sessions session.ManagerInterface) *ProfileHandler {
	return &ProfileHandler{profiles: profiles, sessions: sessions}
}

// RegisterUser handles POST /users
func (h *ProfileHandler) RegisterUser(w http.ResponseWriter, r *http.Request) {

	identity, ok := security.IdentityFromContext(r.Context())
	if !ok {
		utils.HandleError(w, r, errors2.NewClientError(errors2.UN_AUTHORIZED, http.StatusUnauthorized))
		return
	}

	var request model.RegistrationRequest
	if err := utils.DecodeJSON(r, &request, "user profile"); err != nil {
		utils.HandleError(w, r, err)
		return
	}

	service := h.profiles.GetRegistrationService()
	profile, err := service.Register(r.Context(), *identity, request)
	if err != nil {
		utils.HandleError(w, r, err)
		return
	}

	// A session opened before sign-up resolved to "no user"; resolve it again.
	if s, ok := h.sessions.Get(identity.UID); ok {
		s.Refresh()
	}
	utils.WriteJSON(w, http.StatusCreated, profile)
}
