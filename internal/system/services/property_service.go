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

package services

import (
	"fmt"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/wso2/property-sync-service/internal/property/handler"
	"github.com/wso2/property-sync-service/internal/system/constants"
)

type PropertyService struct {
	handler *handler.PropertyHandler
}

func NewPropertyService(router *mux.Router, propertyHandler *handler.PropertyHandler) *PropertyService {
	instance := &PropertyService{handler: propertyHandler}
	instance.RegisterRoutes(router)
	return instance
}

func (s *PropertyService) RegisterRoutes(router *mux.Router) {
	residences := fmt.Sprintf("/%s", constants.ResidencesApiPath)
	router.HandleFunc(residences, s.handler.GetResidences).Methods(http.MethodGet)
	router.HandleFunc(residences, s.handler.AddResidence).Methods(http.MethodPost)
	router.HandleFunc(residences+"/{id}", s.handler.PatchResidence).Methods(http.MethodPatch)
	router.HandleFunc(residences+"/{id}", s.handler.DeleteResidence).Methods(http.MethodDelete)

	apartments := fmt.Sprintf("/%s", constants.ApartmentsApiPath)
	router.HandleFunc(apartments, s.handler.AddApartment).Methods(http.MethodPost)
	router.HandleFunc(apartments+"/{id}", s.handler.PatchApartment).Methods(http.MethodPatch)
	router.HandleFunc(apartments+"/{id}", s.handler.DeleteApartment).Methods(http.MethodDelete)
}
