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

package authn

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/wso2/property-sync-service/internal/profile/model"
	"github.com/wso2/property-sync-service/internal/system/cache"
	"github.com/wso2/property-sync-service/internal/system/config"
	"github.com/wso2/property-sync-service/internal/system/constants"
	errors2 "github.com/wso2/property-sync-service/internal/system/errors"
	"github.com/wso2/property-sync-service/internal/system/log"
)

var signingMethods = []string{"HS256", "HS384", "HS512"}

// AuthenticatorInterface maps a bearer ID token to the identity it was issued for.
type AuthenticatorInterface interface {
	Authenticate(token string) (*model.Identity, error)
}

// Authenticator validates ID tokens. With a signing key configured the signature,
// issuer and audience are verified; without one only the expiry is checked.
type Authenticator struct {
	signingKey []byte
	issuer     string
	audience   string
	cache      *cache.Cache
	now        func() time.Time
}

func NewAuthenticator(conf config.AuthConfig) *Authenticator {
	ttl := constants.DefaultIdentityCacheTTL
	if conf.CacheTTLSeconds > 0 {
		ttl = time.Duration(conf.CacheTTLSeconds) * time.Second
	}
	return &Authenticator{
		signingKey: []byte(conf.SigningKey),
		issuer:     conf.Issuer,
		audience:   conf.Audience,
		cache:      cache.NewCache(ttl),
		now:        time.Now,
	}
}

// Authenticate returns the identity carried by token.
func (a *Authenticator) Authenticate(token string) (*model.Identity, error) {
	if cached, ok := a.cache.Get(token); ok {
		identity := cached.(model.Identity)
		return &identity, nil
	}

	var claims jwt.MapClaims
	var err error
	if len(a.signingKey) > 0 {
		claims, err = a.verify(token)
	} else {
		claims, err = a.parseUnverified(token)
	}
	if err != nil {
		return nil, err
	}

	identity, err := identityFromClaims(claims)
	if err != nil {
		return nil, err
	}
	expiry, _ := claims.GetExpirationTime()
	if expiry != nil {
		a.cache.SetWithExpiry(token, *identity, expiry.Time)
	}
	return identity, nil
}

func (a *Authenticator) verify(token string) (jwt.MapClaims, error) {
	options := []jwt.ParserOption{
		jwt.WithValidMethods(signingMethods),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(a.now),
	}
	if a.issuer != "" {
		options = append(options, jwt.WithIssuer(a.issuer))
	}
	if a.audience != "" {
		options = append(options, jwt.WithAudience(a.audience))
	}

	claims := jwt.MapClaims{}
	_, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (interface{}, error) {
		return a.signingKey, nil
	}, options...)
	if err != nil {
		log.GetLogger().Debug("Identity token rejected.", log.Error(err))
		return nil, unauthorizedError("Invalid identity token")
	}
	return claims, nil
}

func (a *Authenticator) parseUnverified(token string) (jwt.MapClaims, error) {
	claims, err := ParseJWTClaims(token)
	if err != nil {
		return nil, unauthorizedError("Invalid identity token")
	}
	if !a.validateClaims(claims) {
		return nil, unauthorizedError("Invalid identity token")
	}
	return claims, nil
}

// ParseJWTClaims parses claims from a JWT without verifying the signature
func ParseJWTClaims(tokenString string) (jwt.MapClaims, error) {

	claims := jwt.MapClaims{}
	_, _, err := jwt.NewParser().ParseUnverified(tokenString, claims)
	if err != nil {
		errMsg := "Error occurred when parsing claims from JWT token."
		log.GetLogger().Debug(errMsg, log.Error(err))
		return nil, errors2.NewServerError(errors2.ErrorMessage{
			Code:        errors2.PARSING_ERROR.Code,
			Message:     errors2.PARSING_ERROR.Message,
			Description: errMsg,
		}, err)
	}
	return claims, nil
}

// validateClaims checks expiry, issuer and audience by hand for unverified tokens.
func (a *Authenticator) validateClaims(claims jwt.MapClaims) bool {

	logger := log.GetLogger()
	expiry, err := claims.GetExpirationTime()
	if err != nil || expiry == nil {
		logger.Debug("Token does not have a valid expiration time.")
		return false
	}
	if expiry.Time.Before(a.now()) {
		logger.Debug("Token has expired.", log.String("exp", expiry.Time.String()))
		return false
	}

	if a.issuer != "" {
		issuer, _ := claims.GetIssuer()
		if issuer != a.issuer {
			logger.Debug("Token issuer does not match expected issuer.")
			return false
		}
	}

	if a.audience != "" {
		audiences, _ := claims.GetAudience()
		for _, aud := range audiences {
			if aud == a.audience {
				return true
			}
		}
		logger.Debug("Token audience does not match expected audience.")
		return false
	}
	return true
}

func identityFromClaims(claims jwt.MapClaims) (*model.Identity, error) {
	uid, _ := claims["sub"].(string)
	if uid == "" {
		uid, _ = claims["user_id"].(string)
	}
	if uid == "" {
		log.GetLogger().Debug("Token does not carry a subject.")
		return nil, unauthorizedError("Identity token has no subject")
	}
	email, _ := claims["email"].(string)
	return &model.Identity{UID: uid, Email: email}, nil
}

// ExtractBearerToken returns the token of an "Authorization: Bearer <token>" header value.
func ExtractBearerToken(header string) (string, error) {
	const prefix = "Bearer "
	if len(header) < len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return "", unauthorizedError("Missing or invalid Authorization header")
	}
	token := strings.TrimSpace(header[len(prefix):])
	if token == "" {
		return "", unauthorizedError("Missing or invalid Authorization header")
	}
	return token, nil
}

func unauthorizedError(description string) error {
	return errors2.NewClientError(errors2.ErrorMessage{
		Code:        errors2.UN_AUTHORIZED.Code,
		Message:     errors2.UN_AUTHORIZED.Message,
		Description: fmt.Sprintf("%s.", description),
	}, http.StatusUnauthorized)
}
