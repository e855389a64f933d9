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

package session

import (
	"context"

	profileModel "github.com/wso2/property-sync-service/internal/profile/model"
	propertyModel "github.com/wso2/property-sync-service/internal/property/model"
)

// StateResponse is the JSON view of a session: both synchronizer states side by side.
type StateResponse struct {
	Profiles   profileModel.ProfileStateResponse   `json:"profiles"`
	Properties propertyModel.PropertyStateResponse `json:"properties"`
}

// ReadState reads both states through the session carried by ctx. It panics like
// UseProfiles when ctx carries no session.
func ReadState(ctx context.Context) StateResponse {
	return StateResponse{
		Profiles:   UseProfiles(ctx).ToResponse(),
		Properties: UseProperties(ctx).ToResponse(),
	}
}
