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

package utils

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/wso2/property-sync-service/internal/system/constants"
	tracectx "github.com/wso2/property-sync-service/internal/system/context"
	customerrors "github.com/wso2/property-sync-service/internal/system/errors"
	"github.com/wso2/property-sync-service/internal/system/log"
)

// HandleError sends an HTTP error response based on the provided error. The body carries
// the request's trace id.
func HandleError(w http.ResponseWriter, r *http.Request, err error) {
	traceID := tracectx.GetTraceID(r.Context())
	var clientError *customerrors.ClientError
	w.Header().Set("Content-Type", "application/json")
	if ok := errors.As(err, &clientError); ok {
		if clientError.TraceID == "" {
			clientError = customerrors.NewClientErrorWithTraceID(clientError.ErrorMessage, clientError.StatusCode, traceID)
		}
		w.WriteHeader(clientError.StatusCode)
		_ = json.NewEncoder(w).Encode(struct {
			Code        string `json:"code"`
			Message     string `json:"message"`
			Description string `json:"description"`
			TraceID     string `json:"traceId,omitempty"`
		}{
			Code:        clientError.ErrorMessage.Code,
			Message:     clientError.ErrorMessage.Message,
			Description: clientError.ErrorMessage.Description,
			TraceID:     clientError.ErrorMessage.TraceID,
		})
		return
	}

	log.GetLogger().Error(err.Error(), log.String("traceId", traceID))
	w.WriteHeader(http.StatusInternalServerError)
	body := map[string]string{"error": "Internal server error"}
	if traceID != "" {
		body["traceId"] = traceID
	}
	_ = json.NewEncoder(w).Encode(body)
}

// WriteJSON writes body with the given status.
func WriteJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if body == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.GetLogger().Debug("Failed to write response body", log.Error(err))
	}
}

// DecodeJSON decodes a request body into v, rejecting unknown fields. The returned
// error is a ClientError describing what was wrong with the payload.
func DecodeJSON(r *http.Request, v interface{}, resourceName string) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(v); err != nil {
		return customerrors.NewClientErrorWithTraceID(customerrors.ErrorMessage{
			Code:        customerrors.INVALID_REQUEST_BODY.Code,
			Message:     customerrors.INVALID_REQUEST_BODY.Message,
			Description: describeDecodeError(err, resourceName),
		}, http.StatusBadRequest, tracectx.GetTraceID(r.Context()))
	}
	return nil
}

// WithTraceID tags every request with a trace id, reusing the caller's X-Trace-Id when present.
func WithTraceID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		traceID := r.Header.Get(constants.TraceIDHeader)
		if traceID == "" {
			traceID = tracectx.GenerateTraceID()
		}
		w.Header().Set(constants.TraceIDHeader, traceID)
		next.ServeHTTP(w, r.WithContext(tracectx.WithTraceID(r.Context(), traceID)))
	})
}
