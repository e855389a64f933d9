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
	errors2 "github.com/wso2/property-sync-service/internal/system/errors"
)

type contextKey struct{}

// WithSession returns a context carrying s. Code below it reads session state through
// FromContext or the Use helpers.
func WithSession(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, contextKey{}, s)
}

// FromContext returns the session carried by ctx or ErrMissingSessionProvider.
func FromContext(ctx context.Context) (*Session, error) {
	if ctx == nil {
		return nil, errors2.ErrMissingSessionProvider
	}
	s, ok := ctx.Value(contextKey{}).(*Session)
	if !ok || s == nil {
		return nil, errors2.ErrMissingSessionProvider
	}
	return s, nil
}

// MustFromContext is FromContext for callers that are always wired below a provider.
// It panics with ErrMissingSessionProvider otherwise.
func MustFromContext(ctx context.Context) *Session {
	s, err := FromContext(ctx)
	if err != nil {
		panic(err)
	}
	return s
}

// UseProfiles returns the current profile state of the session carried by ctx.
func UseProfiles(ctx context.Context) profileModel.ProfileState {
	return MustFromContext(ctx).Profiles()
}

// UseProperties returns the current property state of the session carried by ctx.
func UseProperties(ctx context.Context) propertyModel.PropertyState {
	return MustFromContext(ctx).Properties()
}
