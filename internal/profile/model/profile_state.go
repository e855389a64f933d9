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

// ProfileState is what the profile synchronizer exposes. At most one of
// TenantProfile and LandlordProfile is set.
type ProfileState struct {
	Identity        *Identity
	UserProfile     *UserProfile
	TenantProfile   *TenantProfile
	LandlordProfile *LandlordProfile
	IsLoading       bool
	Error           error
}

// Clone returns a copy that shares no mutable data with s.
func (s ProfileState) Clone() ProfileState {
	out := ProfileState{IsLoading: s.IsLoading, Error: s.Error}
	if s.Identity != nil {
		identity := *s.Identity
		out.Identity = &identity
	}
	if s.UserProfile != nil {
		user := *s.UserProfile
		out.UserProfile = &user
	}
	out.TenantProfile = s.TenantProfile.Clone()
	out.LandlordProfile = s.LandlordProfile.Clone()
	return out
}

// Clone returns a deep copy of t, or nil.
func (t *TenantProfile) Clone() *TenantProfile {
	if t == nil {
		return nil
	}
	out := *t
	out.MaintenanceRequests = append([]string(nil), t.MaintenanceRequests...)
	return &out
}

// Clone returns a deep copy of l, or nil.
func (l *LandlordProfile) Clone() *LandlordProfile {
	if l == nil {
		return nil
	}
	out := *l
	out.ResidenceIDs = append([]string(nil), l.ResidenceIDs...)
	return &out
}

// ProfileStateResponse is the JSON view of ProfileState.
type ProfileStateResponse struct {
	Identity        *Identity        `json:"identity"`
	UserProfile     *UserProfile     `json:"userProfile"`
	TenantProfile   *TenantProfile   `json:"tenantProfile"`
	LandlordProfile *LandlordProfile `json:"landlordProfile"`
	IsLoading       bool             `json:"isLoading"`
	Error           string           `json:"error,omitempty"`
}

// ToResponse converts the state into its JSON view.
func (s ProfileState) ToResponse() ProfileStateResponse {
	resp := ProfileStateResponse{
		Identity:        s.Identity,
		UserProfile:     s.UserProfile,
		TenantProfile:   s.TenantProfile,
		LandlordProfile: s.LandlordProfile,
		IsLoading:       s.IsLoading,
	}
	if s.Error != nil {
		resp.Error = s.Error.Error()
	}
	return resp
}

// RegistrationRequest is the body of a sign-up call.
type RegistrationRequest struct {
	Type    string `json:"type"`
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Street  string `json:"street"`
	Number  string `json:"number"`
	City    string `json:"city"`
	Canton  string `json:"canton"`
	Zip     string `json:"zip"`
	Country string `json:"country"`
}
