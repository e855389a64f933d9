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

// Package mongodb keeps one MongoDB collection per document collection and feeds
// live channels from a database change stream.
package mongodb

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/wso2/property-sync-service/internal/docstore"
	"github.com/wso2/property-sync-service/internal/system/log"
	"github.com/wso2/property-sync-service/internal/system/subscription"
)

var _ docstore.Store = (*Store)(nil)

const (
	idField             = "_id"
	streamRetryInterval = 5 * time.Second
)

// Store is a docstore.Store over a MongoDB database.
type Store struct {
	client   *mongo.Client
	database *mongo.Database
	hub      *docstore.Hub
	cancel   context.CancelFunc
	wg       sync.WaitGroup
	once     sync.Once
}

// NewStore wraps database and starts watching it for changes. The deployment must
// support change streams (replica set or sharded cluster).
func NewStore(client *mongo.Client, database string) *Store {
	ctx, cancel := context.WithCancel(context.Background())
	s := &Store{
		client:   client,
		database: client.Database(database),
		cancel:   cancel,
	}
	s.hub = docstore.NewHub(s)

	s.wg.Add(1)
	go s.watchChanges(ctx)
	return s
}

// watchChanges follows the database change stream. When the stream fails every
// watcher receives the error, and after reopening every watcher reloads.
func (s *Store) watchChanges(ctx context.Context) {
	defer s.wg.Done()
	logger := log.GetLogger()

	reopened := false
	for ctx.Err() == nil {
		stream, err := s.database.Watch(ctx, mongo.Pipeline{},
			options.ChangeStream().SetFullDocument(options.Default))
		if err == nil {
			if reopened {
				s.hub.NotifyAll()
			}
			err = s.follow(ctx, stream)
		}
		if ctx.Err() != nil {
			return
		}
		logger.Error("MongoDB change stream failed", log.Error(err))
		s.hub.FailAll(errors.Wrap(err, "change stream"))
		reopened = true

		select {
		case <-ctx.Done():
			return
		case <-time.After(streamRetryInterval):
		}
	}
}

type changeEvent struct {
	Namespace struct {
		Collection string `bson:"coll"`
	} `bson:"ns"`
	OperationType string `bson:"operationType"`
}

func (s *Store) follow(ctx context.Context, stream *mongo.ChangeStream) error {
	defer func() { _ = stream.Close(context.Background()) }()
	for stream.Next(ctx) {
		var event changeEvent
		if err := stream.Decode(&event); err != nil {
			return err
		}
		if event.Namespace.Collection != "" {
			s.hub.Notify(event.Namespace.Collection)
			continue
		}
		// drop, rename and invalidate events carry no single collection
		s.hub.NotifyAll()
	}
	if err := stream.Err(); err != nil {
		return err
	}
	return errors.New("change stream closed")
}

// Get implements docstore.Reader.
func (s *Store) Get(ctx context.Context, ref docstore.DocumentRef) (docstore.DocumentSnapshot, error) {
	var raw bson.M
	err := s.database.Collection(ref.Collection).FindOne(ctx, bson.M{idField: ref.ID}).Decode(&raw)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return docstore.DocumentSnapshot{Ref: ref}, nil
		}
		return docstore.DocumentSnapshot{}, errors.Wrapf(err, "get %s", ref)
	}
	_, data, err := fromBSON(raw)
	if err != nil {
		return docstore.DocumentSnapshot{}, errors.Wrapf(err, "get %s", ref)
	}
	return docstore.DocumentSnapshot{Ref: ref, Exists: true, Data: data}, nil
}

// Find implements docstore.Reader.
func (s *Store) Find(ctx context.Context, query docstore.Query) ([]docstore.DocumentSnapshot, error) {
	filter, err := buildFilter(query)
	if err != nil {
		return nil, err
	}
	cursor, err := s.database.Collection(query.Collection).Find(ctx, filter,
		options.Find().SetSort(bson.D{{Key: idField, Value: 1}}))
	if err != nil {
		return nil, errors.Wrapf(err, "find %s", query)
	}
	defer func() { _ = cursor.Close(ctx) }()

	docs := []docstore.DocumentSnapshot{}
	for cursor.Next(ctx) {
		var raw bson.M
		if err := cursor.Decode(&raw); err != nil {
			return nil, errors.Wrapf(err, "find %s", query)
		}
		id, data, err := fromBSON(raw)
		if err != nil {
			return nil, errors.Wrapf(err, "find %s", query)
		}
		docs = append(docs, docstore.DocumentSnapshot{
			Ref:    docstore.Ref(query.Collection, id),
			Exists: true,
			Data:   data,
		})
	}
	if err := cursor.Err(); err != nil {
		return nil, errors.Wrapf(err, "find %s", query)
	}
	return docs, nil
}

// buildFilter translates query filters into a bson filter document.
func buildFilter(query docstore.Query) (bson.D, error) {
	filter := bson.D{}
	for _, f := range query.Filters {
		switch f.Op {
		case docstore.OpEqual:
			filter = append(filter, bson.E{Key: f.Field, Value: f.Value})
		case docstore.OpIn:
			values := f.Values
			if values == nil {
				values = []interface{}{}
			}
			filter = append(filter, bson.E{Key: f.Field, Value: bson.M{"$in": values}})
		default:
			return nil, errors.Errorf("unsupported filter operator %q", f.Op)
		}
	}
	return filter, nil
}

// toBSON converts a JSON object into a bson document, keeping JSON numbers and
// nesting as MongoDB would store them from relaxed extended JSON.
func toBSON(body json.RawMessage) (bson.M, error) {
	var doc bson.M
	if err := bson.UnmarshalExtJSON(body, false, &doc); err != nil {
		return nil, errors.Wrap(err, "convert document to bson")
	}
	return doc, nil
}

// fromBSON splits a stored document into its id and JSON body.
func fromBSON(raw bson.M) (string, json.RawMessage, error) {
	id, _ := raw[idField].(string)
	delete(raw, idField)
	data, err := bson.MarshalExtJSON(raw, false, false)
	if err != nil {
		return "", nil, errors.Wrap(err, "convert document from bson")
	}
	return id, data, nil
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
	doc, err := toBSON(body)
	if err != nil {
		return err
	}
	doc[idField] = ref.ID

	_, err = s.database.Collection(ref.Collection).ReplaceOne(ctx, bson.M{idField: ref.ID}, doc,
		options.Replace().SetUpsert(true))
	return errors.Wrapf(err, "set %s", ref)
}

// Update implements docstore.Store.
func (s *Store) Update(ctx context.Context, ref docstore.DocumentRef, fields map[string]interface{}) error {
	body, err := json.Marshal(fields)
	if err != nil {
		return errors.Wrapf(err, "update %s", ref)
	}
	set, err := toBSON(body)
	if err != nil {
		return err
	}
	delete(set, idField)

	result, err := s.database.Collection(ref.Collection).UpdateOne(ctx, bson.M{idField: ref.ID}, bson.M{"$set": set})
	if err != nil {
		return errors.Wrapf(err, "update %s", ref)
	}
	if result.MatchedCount == 0 {
		return errors.Wrapf(docstore.ErrNotFound, "update %s", ref)
	}
	return nil
}

// Delete implements docstore.Store.
func (s *Store) Delete(ctx context.Context, ref docstore.DocumentRef) error {
	_, err := s.database.Collection(ref.Collection).DeleteOne(ctx, bson.M{idField: ref.ID})
	return errors.Wrapf(err, "delete %s", ref)
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

// Close stops the change stream, all live channels and the client.
func (s *Store) Close() error {
	var err error
	s.once.Do(func() {
		s.cancel()
		s.wg.Wait()
		s.hub.Close()
		ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
		defer cancel()
		err = s.client.Disconnect(ctx)
	})
	return err
}
