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

package client

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/wso2/property-sync-service/internal/property/model"
	"github.com/wso2/property-sync-service/internal/session"
	"github.com/wso2/property-sync-service/internal/system/constants"
	"github.com/wso2/property-sync-service/internal/system/log"
)

// APIError is a non-2xx answer of the property sync API.
type APIError struct {
	StatusCode  int
	Code        string `json:"code"`
	Message     string `json:"message"`
	Description string `json:"description"`
}

func (e *APIError) Error() string {
	if e.Code == "" {
		return fmt.Sprintf("request failed with status %d", e.StatusCode)
	}
	return fmt.Sprintf("[%s] %s %s", e.Code, e.Message, e.Description)
}

// APIClient calls the property sync API on behalf of one signed-in user.
type APIClient struct {
	BaseURL    string
	Token      string
	HTTPClient *http.Client
}

// NewAPIClient creates a client for the server at baseURL, e.g. http://localhost:8900.
func NewAPIClient(baseURL, token string) *APIClient {
	return &APIClient{
		BaseURL: strings.TrimSuffix(baseURL, "/"),
		Token:   token,
		HTTPClient: &http.Client{
			Transport: &http.Transport{
				IdleConnTimeout: 60 * time.Second,
				MaxIdleConns:    10,
			},
		},
	}
}

// GetSession returns the caller's current session state.
func (c *APIClient) GetSession(ctx context.Context) (*session.StateResponse, error) {
	var state session.StateResponse
	if err := c.do(ctx, http.MethodGet, "/"+constants.SessionApiPath, nil, &state); err != nil {
		return nil, err
	}
	return &state, nil
}

// SignOut ends the caller's server-side session.
func (c *APIClient) SignOut(ctx context.Context) error {
	return c.do(ctx, http.MethodDelete, "/"+constants.SessionApiPath, nil, nil)
}

// WatchSession streams session states until ctx is done, the server closes the
// stream or onState returns an error.
func (c *APIClient) WatchSession(ctx context.Context, onState func(session.StateResponse) error) error {
	req, err := c.newRequest(ctx, http.MethodGet, "/"+constants.SessionApiPath+"/events", nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "text/event-stream")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return errors.Wrap(err, "failed to open session stream")
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return readAPIError(resp)
	}

	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		if !strings.HasPrefix(line, "data: ") {
			continue
		}
		var state session.StateResponse
		if err := json.Unmarshal([]byte(strings.TrimPrefix(line, "data: ")), &state); err != nil {
			return errors.Wrap(err, "malformed session event")
		}
		if err := onState(state); err != nil {
			return err
		}
	}
	if err := scanner.Err(); err != nil && ctx.Err() == nil {
		return errors.Wrap(err, "session stream failed")
	}
	return nil
}

func (c *APIClient) CreateResidence(ctx context.Context, residence model.Residence) (*model.Residence, error) {
	var created model.Residence
	if err := c.do(ctx, http.MethodPost, "/"+constants.ResidencesApiPath, residence, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

func (c *APIClient) UpdateResidence(ctx context.Context, id string, fields map[string]interface{}) error {
	return c.do(ctx, http.MethodPatch, "/"+constants.ResidencesApiPath+"/"+id, fields, nil)
}

func (c *APIClient) DeleteResidence(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/"+constants.ResidencesApiPath+"/"+id, nil, nil)
}

func (c *APIClient) CreateApartment(ctx context.Context, apartment model.Apartment) (*model.Apartment, error) {
	var created model.Apartment
	if err := c.do(ctx, http.MethodPost, "/"+constants.ApartmentsApiPath, apartment, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

func (c *APIClient) DeleteApartment(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/"+constants.ApartmentsApiPath+"/"+id, nil, nil)
}

func (c *APIClient) do(ctx context.Context, method, path string, body, out interface{}) error {
	req, err := c.newRequest(ctx, method, path, body)
	if err != nil {
		return err
	}
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return errors.Wrapf(err, "%s %s failed", method, path)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return readAPIError(resp)
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return errors.Wrapf(err, "failed to decode response of %s %s", method, path)
	}
	return nil
}

func (c *APIClient) newRequest(ctx context.Context, method, path string, body interface{}) (*http.Request, error) {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, errors.Wrap(err, "failed to encode request body")
		}
		reader = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+constants.ApiBasePath+path, reader)
	if err != nil {
		return nil, errors.Wrap(err, "failed to build request")
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}
	log.GetLogger().Debug("Calling property sync API", log.String("method", method), log.String("path", path))
	return req, nil
}

func readAPIError(resp *http.Response) error {
	apiErr := &APIError{StatusCode: resp.StatusCode}
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 64*1024))
	_ = json.Unmarshal(data, apiErr)
	return apiErr
}
