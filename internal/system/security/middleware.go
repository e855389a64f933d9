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

package security

import (
	"context"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/wso2/property-sync-service/internal/profile/model"
	"github.com/wso2/property-sync-service/internal/system/authn"
	"github.com/wso2/property-sync-service/internal/system/constants"
	"github.com/wso2/property-sync-service/internal/system/log"
	"github.com/wso2/property-sync-service/internal/system/utils"
)

// accessTokenParam carries the token for clients that cannot set headers, such as EventSource.
const accessTokenParam = "access_token"

// AuthenticateRequest resolves the identity behind the request's bearer token.
func AuthenticateRequest(r *http.Request, authenticator authn.AuthenticatorInterface) (*model.Identity, error) {

	header := r.Header.Get("Authorization")
	if header == "" {
		if token := r.URL.Query().Get(accessTokenParam); token != "" {
			header = "Bearer " + token
		}
	}
	token, err := authn.ExtractBearerToken(header)
	if err != nil {
		return nil, err
	}
	return authenticator.Authenticate(token)
}

// Authenticated returns a middleware that rejects requests without a valid identity
// and stores the identity in the request context otherwise.
func Authenticated(authenticator authn.AuthenticatorInterface) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity, err := AuthenticateRequest(r, authenticator)
			if err != nil {
				log.GetLogger().Debug("Rejected unauthenticated request", log.String("path", r.URL.Path))
				utils.HandleError(w, r, err)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), identity)))
		})
	}
}

// WithIdentity returns a context carrying identity.
func WithIdentity(ctx context.Context, identity *model.Identity) context.Context {
	return context.WithValue(ctx, constants.IdentityContextKey, identity)
}

// IdentityFromContext returns the identity stored by Authenticated.
func IdentityFromContext(ctx context.Context) (*model.Identity, bool) {
	identity, ok := ctx.Value(constants.IdentityContextKey).(*model.Identity)
	return identity, ok && identity != nil
}
