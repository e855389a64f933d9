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

package errors

import (
	"errors"
	"fmt"
)

type ErrorMessage struct {
	Code        string `json:"error_code"`
	Message     string `json:"error_message"`
	Description string `json:"error_description"`
	TraceID     string `json:"trace_id,omitempty"`
}

type ClientError struct {
	ErrorMessage
	StatusCode int
}

type ServerError struct {
	ErrorMessage
	Err error
}

func (e *ServerError) Error() string {
	return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
}

func (e *ServerError) Unwrap() error {
	return e.Err
}

func (e *ClientError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func NewServerError(msg ErrorMessage, cause error) *ServerError {
	return &ServerError{
		ErrorMessage: msg,
		Err:          cause,
	}
}

func NewClientError(msg ErrorMessage, code int) *ClientError {
	return &ClientError{
		ErrorMessage: msg,
		StatusCode:   code,
	}
}

func NewClientErrorWithTraceID(msg ErrorMessage, code int, traceID string) *ClientError {
	msg.TraceID = traceID
	return &ClientError{
		ErrorMessage: msg,
		StatusCode:   code,
	}
}

// ListenerError is reported when a live channel emits an error instead of a snapshot.
// The channel name prefixes the message so consumers can tell sources apart.
type ListenerError struct {
	Channel string
	Err     error
}

func (e *ListenerError) Error() string {
	return fmt.Sprintf("%s listener error: %v", e.Channel, e.Err)
}

func (e *ListenerError) Unwrap() error {
	return e.Err
}

func NewListenerError(channel string, cause error) *ListenerError {
	return &ListenerError{
		Channel: channel,
		Err:     cause,
	}
}

// ErrMissingSessionProvider is raised when session state is read outside a session provider.
var ErrMissingSessionProvider = errors.New("session state must be read within a session provider")

// IsListenerError reports whether err came from the named live channel.
func IsListenerError(err error, channel string) bool {
	var listenerErr *ListenerError
	if !errors.As(err, &listenerErr) {
		return false
	}
	return listenerErr.Channel == channel
}
