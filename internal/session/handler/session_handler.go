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

package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	profileModel "github.com/wso2/property-sync-service/internal/profile/model"
	propertyModel "github.com/wso2/property-sync-service/internal/property/model"
	"github.com/wso2/property-sync-service/internal/session"
	errors2 "github.com/wso2/property-sync-service/internal/system/errors"
	"github.com/wso2/property-sync-service/internal/system/log"
	"github.com/wso2/property-sync-service/internal/system/security"
	"github.com/wso2/property-sync-service/internal/system/utils"
)

const keepAliveInterval = 30 * time.Second

type SessionHandler struct {
	sessions session.ManagerInterface
}

func NewSessionHandler(sessions session.ManagerInterface) *SessionHandler {
	return &SessionHandler{sessions: sessions}
}

// GetSession handles GET /session
func (h *SessionHandler) GetSession(w http.ResponseWriter, r *http.Request) {

	s, err := h.acquire(r)
	if err != nil {
		utils.HandleError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, session.ReadState(session.WithSession(r.Context(), s)))
}

// DeleteSession handles DELETE /session
func (h *SessionHandler) DeleteSession(w http.ResponseWriter, r *http.Request) {

	identity, ok := security.IdentityFromContext(r.Context())
	if !ok {
		utils.HandleError(w, r, unauthorized())
		return
	}
	h.sessions.SignOut(identity.UID)
	w.WriteHeader(http.StatusNoContent)
}

// StreamSession handles GET /session/events. One "state" event is written on connect
// and one after every change of either synchronizer. Bursts coalesce into one event.
func (h *SessionHandler) StreamSession(w http.ResponseWriter, r *http.Request) {

	flusher, ok := w.(http.Flusher)
	if !ok {
		utils.HandleError(w, r, errors2.NewServerError(errors2.ErrorMessage{
			Code:        errors2.STREAMING_UNSUPPORTED.Code,
			Message:     errors2.STREAMING_UNSUPPORTED.Message,
			Description: "Response writer does not support flushing.",
		}, nil))
		return
	}
	s, err := h.acquire(r)
	if err != nil {
		utils.HandleError(w, r, err)
		return
	}
	ctx := session.WithSession(r.Context(), s)

	changed := make(chan struct{}, 1)
	notify := func() {
		select {
		case changed <- struct{}{}:
		default:
		}
	}
	unsubscribeProfiles := s.OnProfilesChange(func(profileModel.ProfileState) { notify() })
	defer unsubscribeProfiles()
	unsubscribeProperties := s.OnPropertiesChange(func(propertyModel.PropertyState) { notify() })
	defer unsubscribeProperties()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	keepAlive := time.NewTicker(keepAliveInterval)
	defer keepAlive.Stop()

	for {
		if err := writeStateEvent(w, session.ReadState(ctx)); err != nil {
			log.GetLogger().Debug("Session stream closed", log.Error(err))
			return
		}
		flusher.Flush()

		if !awaitChange(ctx, s.Done(), w, flusher, changed, keepAlive.C) {
			return
		}
	}
}

// awaitChange blocks until a change is signalled, writing keep-alive comments meanwhile.
// It returns false once the client is gone or the session has been closed.
func awaitChange(ctx context.Context, closed <-chan struct{}, w io.Writer, flusher http.Flusher,
	changed <-chan struct{}, keepAlive <-chan time.Time) bool {

	for {
		select {
		case <-ctx.Done():
			return false
		case <-closed:
			log.GetLogger().Debug("Session stream ended by sign-out")
			return false
		case <-changed:
			return true
		case <-keepAlive:
			if _, err := io.WriteString(w, ": keep-alive\n\n"); err != nil {
				return false
			}
			flusher.Flush()
		}
	}
}

func (h *SessionHandler) acquire(r *http.Request) (*session.Session, error) {
	identity, ok := security.IdentityFromContext(r.Context())
	if !ok {
		return nil, unauthorized()
	}
	s, err := h.sessions.Acquire(*identity)
	if err != nil {
		return nil, errors2.NewServerError(errors2.ErrorMessage{
			Code:        errors2.SESSION.Code,
			Message:     errors2.SESSION.Message,
			Description: "Failed to open the session.",
		}, err)
	}
	return s, nil
}

func writeStateEvent(w io.Writer, state session.StateResponse) error {
	body, err := json.Marshal(state)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "event: state\ndata: %s\n\n", body)
	return err
}

func unauthorized() error {
	return errors2.NewClientError(errors2.UN_AUTHORIZED, http.StatusUnauthorized)
}
