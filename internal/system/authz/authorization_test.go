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
	"os"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/wso2/property-sync-service/internal/profile/model"
	"github.com/wso2/property-sync-service/internal/system/log"
)

func TestMain(m *testing.M) {
	log.Init("ERROR")
	os.Exit(m.Run())
}

func TestValidatePermission(t *testing.T) {
	tests := []struct {
		name      string
		role      model.Role
		operation string
		want      bool
	}{
		{"landlord writes residences", model.RoleLandlord, WriteResidence, true},
		{"landlord writes apartments", model.RoleLandlord, WriteApartment, true},
		{"tenant reads session", model.RoleTenant, ReadSession, true},
		{"tenant cannot write residences", model.RoleTenant, WriteResidence, false},
		{"tenant cannot write apartments", model.RoleTenant, WriteApartment, false},
		{"unknown role", model.Role("caretaker"), ReadSession, false},
		{"unknown operation", model.RoleLandlord, "laundry:write", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ValidatePermission(tt.role, tt.operation))
		})
	}
}
