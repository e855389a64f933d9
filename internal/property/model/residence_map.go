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

package model

import (
	"encoding/json"
	"sort"
)

// ResidenceGroup pairs a residence with its current apartments.
type ResidenceGroup struct {
	Residence  Residence   `json:"residence"`
	Apartments []Apartment `json:"apartments"`
}

// ResidenceMap groups apartments under the residence they reference. It is derived
// data: build a new one whenever residences or apartments change.
type ResidenceMap struct {
	groups map[string]ResidenceGroup
	order  []string
}

// BuildResidenceMap groups apartments by residence. Every residence gets an entry,
// possibly empty. Apartments whose residence is not in residences are left out.
func BuildResidenceMap(residences []Residence, apartments []Apartment) ResidenceMap {
	m := ResidenceMap{groups: make(map[string]ResidenceGroup, len(residences))}
	for _, residence := range residences {
		if _, seen := m.groups[residence.ID]; !seen {
			m.order = append(m.order, residence.ID)
		}
		group := ResidenceGroup{Residence: residence.Clone(), Apartments: []Apartment{}}
		for _, apartment := range apartments {
			if apartment.ResidenceID == residence.ID {
				group.Apartments = append(group.Apartments, apartment.Clone())
			}
		}
		m.groups[residence.ID] = group
	}
	return m
}

// Get returns the group of residence id.
func (m ResidenceMap) Get(id string) (ResidenceGroup, bool) {
	group, ok := m.groups[id]
	return group, ok
}

// Keys returns residence ids in residence order.
func (m ResidenceMap) Keys() []string {
	return append([]string(nil), m.order...)
}

func (m ResidenceMap) Len() int {
	return len(m.groups)
}

// MarshalJSON encodes the map as an object keyed by residence id.
func (m ResidenceMap) MarshalJSON() ([]byte, error) {
	if m.groups == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(m.groups)
}

// UnmarshalJSON decodes the object written by MarshalJSON. Keys come back sorted.
func (m *ResidenceMap) UnmarshalJSON(data []byte) error {
	var groups map[string]ResidenceGroup
	if err := json.Unmarshal(data, &groups); err != nil {
		return err
	}
	m.groups = groups
	m.order = make([]string, 0, len(groups))
	for id := range groups {
		m.order = append(m.order, id)
	}
	sort.Strings(m.order)
	return nil
}

// PropertyState is what the property synchronizer exposes.
type PropertyState struct {
	Residences   []Residence
	Apartments   []Apartment
	ResidenceMap ResidenceMap
	IsLoading    bool
	Error        error
}

// Clone returns a copy that shares no mutable data with s. The map is immutable
// once built and is shared.
func (s PropertyState) Clone() PropertyState {
	out := PropertyState{ResidenceMap: s.ResidenceMap, IsLoading: s.IsLoading, Error: s.Error}
	out.Residences = make([]Residence, len(s.Residences))
	for i, r := range s.Residences {
		out.Residences[i] = r.Clone()
	}
	out.Apartments = make([]Apartment, len(s.Apartments))
	for i, a := range s.Apartments {
		out.Apartments[i] = a.Clone()
	}
	return out
}

// PropertyStateResponse is the JSON view of PropertyState.
type PropertyStateResponse struct {
	Residences   []Residence  `json:"residences"`
	Apartments   []Apartment  `json:"apartments"`
	ResidenceMap ResidenceMap `json:"residenceMap"`
	IsLoading    bool         `json:"isLoading"`
	Error        string       `json:"error,omitempty"`
}

// ToResponse converts the state into its JSON view.
func (s PropertyState) ToResponse() PropertyStateResponse {
	resp := PropertyStateResponse{
		Residences:   s.Residences,
		Apartments:   s.Apartments,
		ResidenceMap: s.ResidenceMap,
		IsLoading:    s.IsLoading,
	}
	if resp.Residences == nil {
		resp.Residences = []Residence{}
	}
	if resp.Apartments == nil {
		resp.Apartments = []Apartment{}
	}
	if s.Error != nil {
		resp.Error = s.Error.Error()
	}
	return resp
}

// ResidenceIDs returns the sorted, de-duplicated ids of residences.
func ResidenceIDs(residences []Residence) []string {
	seen := make(map[string]bool, len(residences))
	ids := make([]string, 0, len(residences))
	for _, r := range residences {
		if !seen[r.ID] {
			seen[r.ID] = true
			ids = append(ids, r.ID)
		}
	}
	sort.Strings(ids)
	return ids
}
