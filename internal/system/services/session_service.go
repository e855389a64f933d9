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

	"github.com/wso2/property-sync-service/internal/session/handler"
	"github.com/wso2/property-sync-service/internal/system/constants"
)

type SessionService struct {
	handler *handler.SessionHandler
}

func NewSessionService(router *mux.Router, sessionHandler *handler.SessionHandler) *SessionService {
	instance := &SessionService{handler: sessionHandler}
	instance.RegisterRoutes(router)
	return instance
}

func (s *SessionService) RegisterRoutes(router *mux.Router) {
	path := fmt.Sprintf("/%s", constants.SessionApiPath)
	router.HandleFunc(path, s.handler.GetSession).Methods(http.MethodGet)
	router.HandleFunc(path, s.handler.DeleteSession).Methods(http.MethodDelete)
	router.HandleFunc(path+"/events", s.handler.StreamSession).Methods(http.MethodGet)
}
