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

// Package postgres stores documents as JSONB rows and turns LISTEN/NOTIFY into live channels.
package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/wso2/property-sync-service/internal/docstore"
	"github.com/wso2/property-sync-service/internal/system/constants"
	"github.com/wso2/property-sync-service/internal/system/database/client"
	"github.com/wso2/property-sync-service/internal/system/database/lock"
	"github.com/wso2/property-sync-service/internal/system/database/scripts"
	"github.com/wso2/property-sync-service/internal/system/log"
	"github.com/wso2/property-sync-service/internal/system/subscription"
)

var _ docstore.Store = (*Store)(nil)

const (
	dialect              = "postgres"
	schemaLockKey        = "documents-schema"
	minReconnectInterval = 2 * time.Second
	maxReconnectInterval = time.Minute
	listenerPingInterval = 90 * time.Second
)

// Store keeps documents in the `documents` table. A trigger publishes the collection
// name of every changed row on the document_changes channel, so writes made by other
// processes reach live channels too.
type Store struct {
	dbClient client.DBClientInterface
	listener *pq.Listener
	hub      *docstore.Hub
	done     chan struct{}
	wg       sync.WaitGroup
	once     sync.Once
}

// NewStore applies the schema and starts listening for change notifications.
func NewStore(ctx context.Context, dbClient client.DBClientInterface, dsn string) (*Store, error) {
	logger := log.GetLogger()

	err := lock.NewPostgresLock(dbClient).WithLock(ctx, schemaLockKey, func(ctx context.Context) error {
		return dbClient.InitDatabase(ctx, scripts.CreateDocumentsTable[dialect])
	})
	if err != nil {
		return nil, errors.Wrap(err, "apply documents schema")
	}

	s := &Store{dbClient: dbClient, done: make(chan struct{})}
	s.hub = docstore.NewHub(s)
	s.listener = pq.NewListener(dsn, minReconnectInterval, maxReconnectInterval, s.onListenerEvent)
	if err := s.listener.Listen(constants.PostgresNotifyChannel); err != nil {
		_ = s.listener.Close()
		return nil, errors.Wrap(err, "listen for document changes")
	}

	s.wg.Add(1)
	go s.dispatch()
	logger.Info("Postgres document store ready", log.String("channel", constants.PostgresNotifyChannel))
	return s, nil
}

func (s *Store) onListenerEvent(event pq.ListenerEventType, err error) {
	logger := log.GetLogger()
	switch event {
	case pq.ListenerEventConnectionAttemptFailed, pq.ListenerEventDisconnected:
		logger.Warn("Document change listener lost its connection", log.Error(err))
	case pq.ListenerEventReconnected:
		logger.Info("Document change listener reconnected")
	}
}

// dispatch forwards notifications to the hub. A nil notification means the
// listener reconnected and may have missed changes, so every channel reloads.
func (s *Store) dispatch() {
	defer s.wg.Done()
	for {
		select {
		case <-s.done:
			return
		case n := <-s.listener.Notify:
			if n == nil {
				s.hub.NotifyAll()
				continue
			}
			s.hub.Notify(n.Extra)
		case <-time.After(listenerPingInterval):
			go func() { _ = s.listener.Ping() }()
		}
	}
}

// Get implements docstore.Reader.
func (s *Store) Get(ctx context.Context, ref docstore.DocumentRef) (docstore.DocumentSnapshot, error) {
	rows, err := s.dbClient.ExecuteQuery(ctx, scripts.GetDocument[dialect], ref.Collection, ref.ID)
	if err != nil {
		return docstore.DocumentSnapshot{}, errors.Wrapf(err, "get %s", ref)
	}
	if len(rows) == 0 {
		return docstore.DocumentSnapshot{Ref: ref}, nil
	}
	data, err := rawData(rows[0]["data"])
	if err != nil {
		return docstore.DocumentSnapshot{}, errors.Wrapf(err, "get %s", ref)
	}
	return docstore.DocumentSnapshot{Ref: ref, Exists: true, Data: data}, nil
}

// Find implements docstore.Reader.
func (s *Store) Find(ctx context.Context, query docstore.Query) ([]docstore.DocumentSnapshot, error) {
	where, args, ok, err := buildWhere(query)
	if err != nil {
		return nil, err
	}
	docs := []docstore.DocumentSnapshot{}
	if !ok {
		return docs, nil
	}
	rows, err := s.dbClient.ExecuteQuery(ctx, scripts.FindDocuments[dialect]+where+" ORDER BY id", args...)
	if err != nil {
		return nil, errors.Wrapf(err, "find %s", query)
	}
	for _, row := range rows {
		id, _ := row["id"].(string)
		data, err := rawData(row["data"])
		if err != nil {
			return nil, errors.Wrapf(err, "find %s", query)
		}
		docs = append(docs, docstore.DocumentSnapshot{
			Ref:    docstore.Ref(query.Collection, id),
			Exists: true,
			Data:   data,
		})
	}
	return docs, nil
}

// buildWhere translates filters into JSONB path comparisons. ok is false when the
// query cannot match anything.
func buildWhere(query docstore.Query) (string, []interface{}, bool, error) {
	clauses := []string{"collection = $1"}
	args := []interface{}{query.Collection}
	next := func(v interface{}) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	for _, f := range query.Filters {
		path := next(pq.Array(strings.Split(f.Field, ".")))
		switch f.Op {
		case docstore.OpEqual:
			value, err := json.Marshal(f.Value)
			if err != nil {
				return "", nil, false, errors.Wrapf(err, "encode filter on %s", f.Field)
			}
			clauses = append(clauses, fmt.Sprintf("data #> %s::text[] = %s::jsonb", path, next(string(value))))
		case docstore.OpIn:
			if len(f.Values) == 0 {
				return "", nil, false, nil
			}
			values := make([]string, len(f.Values))
			for i, v := range f.Values {
				encoded, err := json.Marshal(v)
				if err != nil {
					return "", nil, false, errors.Wrapf(err, "encode filter on %s", f.Field)
				}
				values[i] = string(encoded)
			}
			clauses = append(clauses, fmt.Sprintf("data #> %s::text[] = ANY(%s::jsonb[])", path, next(pq.Array(values))))
		default:
			return "", nil, false, errors.Errorf("unsupported filter operator %q", f.Op)
		}
	}
	return strings.Join(clauses, " AND "), args, true, nil
}

func rawData(v interface{}) (json.RawMessage, error) {
	switch data := v.(type) {
	case []byte:
		out := make(json.RawMessage, len(data))
		copy(out, data)
		return out, nil
	case string:
		return json.RawMessage(data), nil
	default:
		return nil, errors.Errorf("unexpected data column type %T", v)
	}
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
	if _, err := s.dbClient.Execute(ctx, scripts.UpsertDocument[dialect], ref.Collection, ref.ID, string(body)); err != nil {
		return errors.Wrapf(err, "set %s", ref)
	}
	return nil
}

// Update implements docstore.Store.
func (s *Store) Update(ctx context.Context, ref docstore.DocumentRef, fields map[string]interface{}) error {
	tx, err := s.dbClient.BeginTx(ctx)
	if err != nil {
		return errors.Wrapf(err, "update %s", ref)
	}
	defer func() { _ = tx.Rollback() }()

	var data string
	err = tx.QueryRowContext(ctx, scripts.GetDocumentForUpdate[dialect], ref.Collection, ref.ID).Scan(&data)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return errors.Wrapf(docstore.ErrNotFound, "update %s", ref)
		}
		return errors.Wrapf(err, "update %s", ref)
	}
	merged, err := docstore.MergeFields(json.RawMessage(data), fields)
	if err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, scripts.UpdateDocument[dialect], ref.Collection, ref.ID, string(merged)); err != nil {
		return errors.Wrapf(err, "update %s", ref)
	}
	return errors.Wrapf(tx.Commit(), "commit update %s", ref)
}

// Delete implements docstore.Store.
func (s *Store) Delete(ctx context.Context, ref docstore.DocumentRef) error {
	if _, err := s.dbClient.Execute(ctx, scripts.DeleteDocument[dialect], ref.Collection, ref.ID); err != nil {
		return errors.Wrapf(err, "delete %s", ref)
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
	var err error
	s.once.Do(func() {
		close(s.done)
		s.wg.Wait()
		s.hub.Close()
		if closeErr := s.listener.Close(); closeErr != nil {
			err = closeErr
		}
		if closeErr := s.dbClient.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	})
	return err
}
