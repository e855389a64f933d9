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
	"fmt"

	"github.com/wso2/property-sync-service/internal/docstore"
	"github.com/wso2/property-sync-service/internal/system/constants"
	"github.com/wso2/property-sync-service/internal/system/log"
)

// readinessProbe is read on every readiness check. It never needs to exist.
var readinessProbe = docstore.Ref(constants.UsersCollection, "__readiness__")

// HealthCheckServiceInterface defines the service interface.
type HealthCheckServiceInterface interface {
	CheckReadiness(ctx context.Context) error
}

// HealthCheckService is the default implementation.
type HealthCheckService struct {
	docs docstore.Reader
}

// NewHealthCheckService returns a new instance.
func NewHealthCheckService(docs docstore.Reader) HealthCheckServiceInterface {
	return &HealthCheckService{docs: docs}
}

// CheckReadiness performs a lightweight read to ensure document store connectivity.
func (h *HealthCheckService) CheckReadiness(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, constants.DefaultStoreTimeout)
	defer cancel()

	if _, err := h.docs.Get(ctx, readinessProbe); err != nil {
		log.GetLogger().Warn("Document store readiness check failed", log.Error(err))
		return fmt.Errorf("document store connectivity check failed: %v", err)
	}
	return nil
}
