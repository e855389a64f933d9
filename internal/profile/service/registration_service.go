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
	"context"
	"net/http"
	"strings"

	"github.com/wso2/property-sync-service/internal/profile/model"
	"github.com/wso2/property-sync-service/internal/profile/store"
	errors2 "github.com/wso2/property-sync-service/internal/system/errors"
	"github.com/wso2/property-sync-service/internal/system/log"
)

// RegistrationServiceInterface creates the documents of a new user.
type RegistrationServiceInterface interface {
	Register(ctx context.Context, identity model.Identity, request model.RegistrationRequest) (*model.UserProfile, error)
}

// RegistrationService writes users/{uid} and the matching role document.
type RegistrationService struct {
	store store.ProfileStoreInterface
}

func NewRegistrationService(profileStore store.ProfileStoreInterface) *RegistrationService {
	return &RegistrationService{store: profileStore}
}

// Register creates the user profile of identity. A second registration of the same
// uid is rejected.
func (s *RegistrationService) Register(ctx context.Context, identity model.Identity,
	request model.RegistrationRequest) (*model.UserProfile, error) {

	logger := log.GetLogger()
	if strings.TrimSpace(identity.UID) == "" {
		return nil, invalidProfile("The signed-in identity has no uid.")
	}
	role, err := model.ParseRole(request.Type)
	if err != nil {
		return nil, invalidProfile("User type must be either 'tenant' or 'landlord'.")
	}
	if strings.TrimSpace(request.Name) == "" {
		return nil, invalidProfile("User name is required.")
	}

	existing, err := s.store.FetchUserProfile(ctx, identity.UID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, errors2.NewClientError(errors2.ErrorMessage{
			Code:        errors2.USER_ALREADY_REGISTERED.Code,
			Message:     errors2.USER_ALREADY_REGISTERED.Message,
			Description: errors2.USER_ALREADY_REGISTERED.Description,
		}, http.StatusConflict)
	}

	profile := model.UserProfile{
		UID:     identity.UID,
		Type:    role,
		Name:    strings.TrimSpace(request.Name),
		Email:   identity.Email,
		Phone:   request.Phone,
		Street:  request.Street,
		Number:  request.Number,
		City:    request.City,
		Canton:  request.Canton,
		Zip:     request.Zip,
		Country: request.Country,
	}

	// The role document goes first so a user document never exists without it.
	switch role {
	case model.RoleTenant:
		err = s.store.CreateTenantProfile(ctx, model.TenantProfile{UserID: identity.UID})
	case model.RoleLandlord:
		err = s.store.CreateLandlordProfile(ctx, model.LandlordProfile{UserID: identity.UID})
	}
	if err != nil {
		return nil, err
	}
	if err := s.store.CreateUserProfile(ctx, profile); err != nil {
		return nil, err
	}

	logger.Audit(log.AuditEvent{
		InitiatorID:   identity.UID,
		InitiatorType: log.InitiatorTypeUser,
		TargetID:      identity.UID,
		TargetType:    log.TargetTypeUser,
		ActionID:      log.ActionRegisterUser,
		Data:          map[string]string{"type": string(role)},
	})
	return &profile, nil
}

func invalidProfile(description string) error {
	return errors2.NewClientError(errors2.ErrorMessage{
		Code:        errors2.INVALID_USER_PROFILE.Code,
		Message:     errors2.INVALID_USER_PROFILE.Message,
		Description: description,
	}, http.StatusBadRequest)
}
