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

// Package sqlite persists documents in an embedded SQLite database.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	_ "modernc.org/sqlite" // pure go sqlite driver

	"github.com/wso2/property-sync-service/internal/docstore"
	"github.com/wso2/property-sync-service/internal/system/database/scripts"
	"github.com/wso2/property-sync-service/internal/system/log"
	"github.com/wso2/property-sync-service/internal/system/subscription"
)

var _ docstore.Store = (*Store)(nil)

const dialect = "sqlite"

// Store keeps every document as JSON text in one table. Change notification is
// in-process: only writes made through this Store reach its live channels.
type Store struct {
	db  *sql.DB
	hub *docstore.Hub
}

// NewStore opens (and creates if needed) the database at path.
func NewStore(path string) (*Store, error) {
	if path == "" {
		path = "property-sync.db"
	}
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil && !errors.Is(err, os.ErrExist) {
			return nil, fmt.Errorf("create dirs: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// A single connection keeps ":memory:" databases shared and serialises writers.
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(scripts.CreateDocumentsTable[dialect]); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create documents table: %w", err)
	}
	s := &Store{db: db}
	s.hub = docstore.NewHub(s)
	log.GetLogger().Debug("SQLite document store opened", log.String("path", path))
	return s, nil
}

// Get implements docstore.Reader.
func (s *Store) Get(ctx context.Context, ref docstore.DocumentRef) (docstore.DocumentSnapshot, error) {
	var id, data string
	err := s.db.QueryRowContext(ctx, scripts.GetDocument[dialect], ref.Collection, ref.ID).Scan(&id, &data)
	if errors.Is(err, sql.ErrNoRows) {
		return docstore.DocumentSnapshot{Ref: ref}, nil
	}
	if err != nil {
		return docstore.DocumentSnapshot{}, errors.Wrapf(err, "get %s", ref)
	}
	return docstore.DocumentSnapshot{Ref: ref, Exists: true, Data: json.RawMessage(data)}, nil
}

// Find implements docstore.Reader.
func (s *Store) Find(ctx context.Context, query docstore.Query) ([]docstore.DocumentSnapshot, error) {
	where, args, ok := buildWhere(query)
	docs := []docstore.DocumentSnapshot{}
	if !ok {
		return docs, nil
	}
	rows, err := s.db.QueryContext(ctx, scripts.FindDocuments[dialect]+where+" ORDER BY id", args...)
	if err != nil {
		return nil, errors.Wrapf(err, "find %s", query)
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var id, data string
		if err := rows.Scan(&id, &data); err != nil {
			return nil, errors.Wrapf(err, "scan %s", query)
		}
		docs = append(docs, docstore.DocumentSnapshot{
			Ref:    docstore.Ref(query.Collection, id),
			Exists: true,
			Data:   json.RawMessage(data),
		})
	}
	return docs, errors.Wrapf(rows.Err(), "find %s", query)
}

// buildWhere translates filters to json_extract predicates. ok is false when the
// query cannot match anything (an empty "in" list).
func buildWhere(query docstore.Query) (string, []interface{}, bool) {
	clauses := []string{"collection = ?"}
	args := []interface{}{query.Collection}
	for _, f := range query.Filters {
		path := "$." + f.Field
		switch f.Op {
		case docstore.OpEqual:
			clauses = append(clauses, "json_extract(data, ?) = ?")
			args = append(args, path, sqlValue(f.Value))
		case docstore.OpIn:
			if len(f.Values) == 0 {
				return "", nil, false
			}
			placeholders := strings.TrimSuffix(strings.Repeat("?,", len(f.Values)), ",")
			clauses = append(clauses, fmt.Sprintf("json_extract(data, ?) IN (%s)", placeholders))
			args = append(args, path)
			for _, v := range f.Values {
				args = append(args, sqlValue(v))
			}
		}
	}
	return strings.Join(clauses, " AND "), args, true
}

// sqlValue maps a filter value onto what json_extract returns for it.
func sqlValue(v interface{}) interface{} {
	if b, ok := v.(bool); ok {
		if b {
			return 1
		}
		return 0
	}
	return v
}

// Create implements docstore.Store.
func (s *Store) Create(ctx context.Context, collection string, data interface{}) (string, error) {
	id := uuid.New().String()
	if err := s.Set(ctx, docstore.Ref(collection, id), data); err != nil {
		return "", err
	}
	return id, nil
}

// Set implements docstore.Store.
func (s *Store) Set(ctx context.Context, ref docstore.DocumentRef, data interface{}) error {
	body, err := docstore.Encode(data)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, scripts.UpsertDocument[dialect], ref.Collection, ref.ID, string(body))
	if err != nil {
		return errors.Wrapf(err, "set %s", ref)
	}
	s.hub.Notify(ref.Collection)
	return nil
}

// Update implements docstore.Store.
func (s *Store) Update(ctx context.Context, ref docstore.DocumentRef, fields map[string]interface{}) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrapf(err, "update %s", ref)
	}
	defer func() { _ = tx.Rollback() }()

	var data string
	err = tx.QueryRowContext(ctx, scripts.GetDocumentForUpdate[dialect], ref.Collection, ref.ID).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return errors.Wrapf(docstore.ErrNotFound, "update %s", ref)
	}
	if err != nil {
		return errors.Wrapf(err, "update %s", ref)
	}
	merged, err := docstore.MergeFields(json.RawMessage(data), fields)
	if err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, scripts.UpdateDocument[dialect], ref.Collection, ref.ID, string(merged)); err != nil {
		return errors.Wrapf(err, "update %s", ref)
	}
	if err := tx.Commit(); err != nil {
		return errors.Wrapf(err, "commit update %s", ref)
	}
	s.hub.Notify(ref.Collection)
	return nil
}

// Delete implements docstore.Store.
func (s *Store) Delete(ctx context.Context, ref docstore.DocumentRef) error {
	res, err := s.db.ExecContext(ctx, scripts.DeleteDocument[dialect], ref.Collection, ref.ID)
	if err != nil {
		return errors.Wrapf(err, "delete %s", ref)
	}
	if n, _ := res.RowsAffected(); n > 0 {
		s.hub.Notify(ref.Collection)
	}
	return nil
}

// WatchDocument implements docstore.Store.
func (s *Store) WatchDocument(ref docstore.DocumentRef, onNext func(docstore.DocumentSnapshot),
	onError func(error)) subscription.Unsubscribe {

	return s.hub.WatchDocument(ref, onNext, onError)
}

// WatchQuery implements docstore.Store.
func (s *Store) WatchQuery(query docstore.Query, onNext func(docstore.QuerySnapshot),
	onError func(error)) subscription.Unsubscribe {

	return s.hub.WatchQuery(query, onNext, onError)
}

// Close implements docstore.Store.
func (s *Store) Close() error {
	s.hub.Close()
	return s.db.Close()
}
