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

package model

import "fmt"

// Identity is the signed-in principal handed over by the auth provider.
type Identity struct {
	UID   string `json:"uid"`
	Email string `json:"email,omitempty"`
}

// Equal reports whether both identities name the same principal with the same email.
func (i *Identity) Equal(other *Identity) bool {
	if i == nil || other == nil {
		return i == other
	}
	return *i == *other
}

// Role selects which role profile belongs to a user.
type Role string

const (
	RoleTenant   Role = "tenant"
	RoleLandlord Role = "landlord"
)

// ParseRole accepts only the two known roles.
func ParseRole(value string) (Role, error) {
	switch Role(value) {
	case RoleTenant, RoleLandlord:
		return Role(value), nil
	default:
		return "", fmt.Errorf("unknown user type %q", value)
	}
}

// UserProfile is the shared users/{uid} document.
type UserProfile struct {
	UID     string `json:"uid"`
	Type    Role   `json:"type"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Street  string `json:"street"`
	Number  string `json:"number"`
	City    string `json:"city"`
	Canton  string `json:"canton"`
	Zip     string `json:"zip"`
	Country string `json:"country"`
}

// TenantProfile is the tenants/{uid} document.
type TenantProfile struct {
	UserID              string   `json:"userId"`
	MaintenanceRequests []string `json:"maintenanceRequests"`
	ApartmentID         string   `json:"apartmentId"`
	ResidenceID         string   `json:"residenceId"`
}

// LandlordProfile is the landlords/{uid} document.
type LandlordProfile struct {
	UserID       string   `json:"userId"`
	ResidenceIDs []string `json:"residenceIds"`
}
