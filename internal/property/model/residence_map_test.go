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
	"fmt"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildResidenceMap_OrphanApartmentsExcluded(t *testing.T) {
	residences := []Residence{{ID: "r1", Apartments: []string{"ap1", "ap2"}}}
	apartments := []Apartment{
		{ID: "ap1", ResidenceID: "r1"},
		{ID: "ap2", ResidenceID: "r9"},
	}

	m := BuildResidenceMap(residences, apartments)

	group, ok := m.Get("r1")
	require.True(t, ok)
	require.Len(t, group.Apartments, 1)
	assert.Equal(t, "ap1", group.Apartments[0].ID)
	_, ok = m.Get("r9")
	assert.False(t, ok)
}

func TestBuildResidenceMap_EmptyResidenceKept(t *testing.T) {
	m := BuildResidenceMap([]Residence{{ID: "r1"}, {ID: "r2"}}, []Apartment{{ID: "a", ResidenceID: "r1"}})

	assert.Equal(t, []string{"r1", "r2"}, m.Keys())
	group, ok := m.Get("r2")
	require.True(t, ok)
	assert.NotNil(t, group.Apartments)
	assert.Empty(t, group.Apartments)
}

func TestBuildResidenceMap_MatchesFilterForRandomInputs(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for round := 0; round < 50; round++ {
		var residences []Residence
		for i, n := 0, rng.Intn(6); i < n; i++ {
			residences = append(residences, Residence{ID: fmt.Sprintf("r%d", i)})
		}
		var apartments []Apartment
		for i, n := 0, rng.Intn(20); i < n; i++ {
			apartments = append(apartments, Apartment{ID: fmt.Sprintf("a%d", i), ResidenceID: fmt.Sprintf("r%d", rng.Intn(8))})
		}

		m := BuildResidenceMap(residences, apartments)
		require.Equal(t, len(residences), m.Len())
		for _, r := range residences {
			want := []Apartment{}
			for _, a := range apartments {
				if a.ResidenceID == r.ID {
					want = append(want, a)
				}
			}
			group, ok := m.Get(r.ID)
			require.True(t, ok)
			assert.Equal(t, want, group.Apartments)
		}
	}
}

func TestResidenceMap_MarshalJSON(t *testing.T) {
	var empty ResidenceMap
	data, err := json.Marshal(empty)
	require.NoError(t, err)
	assert.Equal(t, "{}", string(data))

	m := BuildResidenceMap([]Residence{{ID: "r1", ResidenceName: "Lindenhof"}}, []Apartment{{ID: "a1", ResidenceID: "r1"}})
	data, err = json.Marshal(m)
	require.NoError(t, err)

	var decoded map[string]ResidenceGroup
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, "Lindenhof", decoded["r1"].Residence.ResidenceName)
	assert.Equal(t, "a1", decoded["r1"].Apartments[0].ID)

	var restored ResidenceMap
	require.NoError(t, json.Unmarshal(data, &restored))
	assert.Equal(t, []string{"r1"}, restored.Keys())
	group, ok := restored.Get("r1")
	require.True(t, ok)
	assert.Equal(t, "a1", group.Apartments[0].ID)
}

func TestResidenceIDs(t *testing.T) {
	ids := ResidenceIDs([]Residence{{ID: "r2"}, {ID: "r1"}, {ID: "r2"}})
	assert.Equal(t, []string{"r1", "r2"}, ids)
}
