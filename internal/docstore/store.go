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

// Package docstore defines the document store the synchronizers read from and subscribe to.
package docstore

import (
	"context"

	"github.com/wso2/property-sync-service/internal/system/subscription"
)

// Reader performs one-shot reads.
type Reader interface {
	// Get returns the document, with Exists false when it is absent.
	Get(ctx context.Context, ref DocumentRef) (DocumentSnapshot, error)
	// Find returns every document of the query's collection matching its filters, ordered by id.
	Find(ctx context.Context, query Query) ([]DocumentSnapshot, error)
}

// Store is the full document store contract.
type Store interface {
	Reader

	// Create stores data under a new store-assigned id and returns that id.
	Create(ctx context.Context, collection string, data interface{}) (string, error)
	// Set creates or replaces the document.
	Set(ctx context.Context, ref DocumentRef, data interface{}) error
	// Update merges top-level fields into an existing document. Missing documents yield ErrNotFound.
	Update(ctx context.Context, ref DocumentRef, fields map[string]interface{}) error
	// Delete removes the document. Deleting an absent document is not an error.
	Delete(ctx context.Context, ref DocumentRef) error

	// WatchDocument opens a live channel on one document. onNext receives the current
	// snapshot first and then one snapshot per change, in order.
	WatchDocument(ref DocumentRef, onNext func(DocumentSnapshot), onError func(error)) subscription.Unsubscribe
	// WatchQuery opens a live channel on a query's result set.
	WatchQuery(query Query, onNext func(QuerySnapshot), onError func(error)) subscription.Unsubscribe

	Close() error
}
