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
	"errors"
	"sort"
	"sync"

	profileModel "github.com/wso2/property-sync-service/internal/profile/model"
	profileProvider "github.com/wso2/property-sync-service/internal/profile/provider"
	propertyProvider "github.com/wso2/property-sync-service/internal/property/provider"
	"github.com/wso2/property-sync-service/internal/system/log"
)

var (
	ErrManagerClosed = errors.New("session manager is closed")
	ErrEmptyIdentity = errors.New("identity has no uid")
)

// ManagerInterface keeps one session per signed-in user.
type ManagerInterface interface {
	Acquire(identity profileModel.Identity) (*Session, error)
	Get(uid string) (*Session, bool)
	SignOut(uid string) bool
	Close()
}

// Manager is the default ManagerInterface.
type Manager struct {
	profiles   profileProvider.ProfilesProviderInterface
	properties propertyProvider.PropertiesProviderInterface

	mu       sync.Mutex
	sessions map[string]*Session
	closed   bool
}

func NewManager(profiles profileProvider.ProfilesProviderInterface,
	properties propertyProvider.PropertiesProviderInterface) *Manager {

	return &Manager{
		profiles:   profiles,
		properties: properties,
		sessions:   make(map[string]*Session),
	}
}

// Acquire returns the session for identity.UID, creating and signing it in on first use.
// An existing session only sees a new identity when the identity differs.
func (m *Manager) Acquire(identity profileModel.Identity) (*Session, error) {
	if identity.UID == "" {
		return nil, ErrEmptyIdentity
	}

	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return nil, ErrManagerClosed
	}
	s, ok := m.sessions[identity.UID]
	if !ok {
		s = NewSession("session-"+identity.UID, m.profiles, m.properties)
		m.sessions[identity.UID] = s
	}
	m.mu.Unlock()

	if !ok {
		log.GetLogger().Audit(log.AuditEvent{
			InitiatorID:   identity.UID,
			InitiatorType: log.InitiatorTypeUser,
			TargetID:      identity.UID,
			TargetType:    log.TargetTypeSession,
			ActionID:      log.ActionSignIn,
		})
	}
	if current := s.Identity(); current == nil || !current.Equal(&identity) {
		s.SetIdentity(&identity)
		s.settle()
	}
	return s, nil
}

func (m *Manager) Get(uid string) (*Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[uid]
	return s, ok
}

// SignOut clears and closes the session of uid. It reports whether one existed.
func (m *Manager) SignOut(uid string) bool {
	m.mu.Lock()
	s, ok := m.sessions[uid]
	delete(m.sessions, uid)
	m.mu.Unlock()

	if !ok {
		return false
	}
	s.SetIdentity(nil)
	s.Close()
	log.GetLogger().Audit(log.AuditEvent{
		InitiatorID:   uid,
		InitiatorType: log.InitiatorTypeUser,
		TargetID:      uid,
		TargetType:    log.TargetTypeSession,
		ActionID:      log.ActionSignOut,
	})
	return true
}

// UIDs returns the uids with an open session, sorted.
func (m *Manager) UIDs() []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	uids := make([]string, 0, len(m.sessions))
	for uid := range m.sessions {
		uids = append(uids, uid)
	}
	sort.Strings(uids)
	return uids
}

// Close closes every session. Later Acquire calls fail with ErrManagerClosed.
func (m *Manager) Close() {
	m.mu.Lock()
	m.closed = true
	sessions := m.sessions
	m.sessions = make(map[string]*Session)
	m.mu.Unlock()

	for _, s := range sessions {
		s.Close()
	}
	log.GetLogger().Info("Closed all sessions", log.Int("count", len(sessions)))
}
