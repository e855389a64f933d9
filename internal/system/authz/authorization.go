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

package authz

import (
	"slices"

	"github.com/wso2/property-sync-service/internal/profile/model"
	"github.com/wso2/property-sync-service/internal/system/log"
)

// Operations guarded by ValidatePermission.
const (
	ReadSession    = "session:read"
	WriteResidence = "residence:write"
	WriteApartment = "apartment:write"
)

var rolePermissions = map[model.Role][]string{
	model.RoleTenant:   {ReadSession},
	model.RoleLandlord: {ReadSession, WriteResidence, WriteApartment},
}

// ValidatePermission checks if the given role is allowed to perform the operation.
func ValidatePermission(role model.Role, operation string) bool {

	logger := log.GetLogger()
	granted, ok := rolePermissions[role]
	if !ok {
		logger.Debug("No permissions available for role", log.String("role", string(role)),
			log.String("operation", operation))
		return false
	}
	if !slices.Contains(granted, operation) {
		logger.Debug("Operation not permitted", log.String("role", string(role)),
			log.String("operation", operation))
		return false
	}
	return true
}
