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

package docstore

import (
	"encoding/json"
	"fmt"

	"github.com/pkg/errors"
)

var (
	// ErrNotFound is returned by Update when the target document does not exist.
	ErrNotFound = errors.New("document not found")
	// ErrStoreClosed is returned by every operation after Close.
	ErrStoreClosed = errors.New("document store closed")
)

// DocumentRef addresses a single document.
type DocumentRef struct {
	Collection string `json:"collection"`
	ID         string `json:"id"`
}

// Ref builds a DocumentRef.
func Ref(collection, id string) DocumentRef {
	return DocumentRef{Collection: collection, ID: id}
}

func (r DocumentRef) String() string {
	return fmt.Sprintf("%s/%s", r.Collection, r.ID)
}

// DocumentSnapshot is the state of one document at a point in time.
// Exists is false when the document is absent; Data is then empty.
type DocumentSnapshot struct {
	Ref    DocumentRef
	Exists bool
	Data   json.RawMessage
}

// DataTo decodes the document body into v.
func (s DocumentSnapshot) DataTo(v interface{}) error {
	if !s.Exists {
		return errors.Wrapf(ErrNotFound, "decode %s", s.Ref)
	}
	if err := json.Unmarshal(s.Data, v); err != nil {
		return errors.Wrapf(err, "decode %s", s.Ref)
	}
	return nil
}

// QuerySnapshot is the full result set of a query at a point in time.
type QuerySnapshot struct {
	Query     Query
	Documents []DocumentSnapshot
}

// Encode turns a record into a JSON object body.
func Encode(data interface{}) (json.RawMessage, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, errors.Wrap(err, "encode document")
	}
	var probe map[string]interface{}
	if err := json.Unmarshal(raw, &probe); err != nil || probe == nil {
		return nil, errors.New("encode document: body must be a JSON object")
	}
	return raw, nil
}

// MergeFields applies a top-level field update to a JSON object body.
func MergeFields(body json.RawMessage, fields map[string]interface{}) (json.RawMessage, error) {
	doc := map[string]interface{}{}
	if len(body) > 0 {
		if err := json.Unmarshal(body, &doc); err != nil {
			return nil, errors.Wrap(err, "merge fields")
		}
	}
	for key, value := range fields {
		doc[key] = value
	}
	merged, err := json.Marshal(doc)
	if err != nil {
		return nil, errors.Wrap(err, "merge fields")
	}
	return merged, nil
}
