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
	"reflect"
	"sort"
	"strings"
)

// Op is a filter operator.
type Op string

const (
	// OpEqual matches documents whose field equals the value.
	OpEqual Op = "=="
	// OpIn matches documents whose field equals any of the values.
	OpIn Op = "in"
)

// Filter restricts a query on one field. Dotted field names address nested objects.
type Filter struct {
	Field  string
	Op     Op
	Value  interface{}
	Values []interface{}
}

// Eq builds a `field == value` filter.
func Eq(field string, value interface{}) Filter {
	return Filter{Field: field, Op: OpEqual, Value: value}
}

// In builds a `field in [values...]` filter.
func In(field string, values []string) Filter {
	vs := make([]interface{}, len(values))
	for i, v := range values {
		vs[i] = v
	}
	return Filter{Field: field, Op: OpIn, Values: vs}
}

// Query selects documents of one collection.
type Query struct {
	Collection string
	Filters    []Filter
}

// NewQuery builds a query over collection.
func NewQuery(collection string, filters ...Filter) Query {
	return Query{Collection: collection, Filters: filters}
}

func (q Query) String() string {
	parts := make([]string, 0, len(q.Filters))
	for _, f := range q.Filters {
		switch f.Op {
		case OpIn:
			parts = append(parts, fmt.Sprintf("%s in %v", f.Field, f.Values))
		default:
			parts = append(parts, fmt.Sprintf("%s %s %v", f.Field, f.Op, f.Value))
		}
	}
	if len(parts) == 0 {
		return q.Collection
	}
	return q.Collection + " where " + strings.Join(parts, " and ")
}

// Matches evaluates every filter against a JSON object body.
func (q Query) Matches(body json.RawMessage) bool {
	var doc map[string]interface{}
	if err := json.Unmarshal(body, &doc); err != nil {
		return false
	}
	for _, f := range q.Filters {
		if !f.matches(doc) {
			return false
		}
	}
	return true
}

func (f Filter) matches(doc map[string]interface{}) bool {
	value, ok := lookup(doc, f.Field)
	if !ok {
		return false
	}
	switch f.Op {
	case OpEqual:
		return equalJSON(value, f.Value)
	case OpIn:
		for _, candidate := range f.Values {
			if equalJSON(value, candidate) {
				return true
			}
		}
		return false
	default:
		return false
	}
}

func lookup(doc map[string]interface{}, field string) (interface{}, bool) {
	var current interface{} = doc
	for _, part := range strings.Split(field, ".") {
		m, ok := current.(map[string]interface{})
		if !ok {
			return nil, false
		}
		current, ok = m[part]
		if !ok {
			return nil, false
		}
	}
	return current, true
}

// equalJSON compares two values after normalising them through JSON, so 3 and 3.0 are equal.
func equalJSON(a, b interface{}) bool {
	return reflect.DeepEqual(normalize(a), normalize(b))
}

func normalize(v interface{}) interface{} {
	raw, err := json.Marshal(v)
	if err != nil {
		return v
	}
	var out interface{}
	if err := json.Unmarshal(raw, &out); err != nil {
		return v
	}
	return out
}

// SortByID orders snapshots by document id for deterministic query results.
func SortByID(docs []DocumentSnapshot) {
	sort.Slice(docs, func(i, j int) bool { return docs[i].Ref.ID < docs[j].Ref.ID })
}
