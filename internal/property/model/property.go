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

// Residence is a residences/{id} document. ID is the document id.
type Residence struct {
	ID                    string   `json:"id,omitempty"`
	ResidenceName         string   `json:"residenceName"`
	Street                string   `json:"street"`
	Number                string   `json:"number"`
	City                  string   `json:"city"`
	Canton                string   `json:"canton"`
	Zip                   string   `json:"zip"`
	Country               string   `json:"country"`
	LandlordID            string   `json:"landlordId"`
	Apartments            []string `json:"apartments"`
	TenantIDs             []string `json:"tenantIds"`
	LaundryMachineIDs     []string `json:"laundryMachineIds"`
	TenantCodesID         string   `json:"tenantCodesID"`
	SituationReportLayout []string `json:"situationReportLayout"`
}

// Apartment is an apartments/{id} document. ID is the document id.
type Apartment struct {
	ID                  string   `json:"id,omitempty"`
	ApartmentName       string   `json:"apartmentName"`
	ResidenceID         string   `json:"residenceId"`
	Tenants             []string `json:"tenants"`
	MaintenanceRequests []string `json:"maintenanceRequests"`
	SituationReportID   string   `json:"situationReportId"`
}

// Clone returns a deep copy of r.
func (r Residence) Clone() Residence {
	r.Apartments = cloneStrings(r.Apartments)
	r.TenantIDs = cloneStrings(r.TenantIDs)
	r.LaundryMachineIDs = cloneStrings(r.LaundryMachineIDs)
	r.SituationReportLayout = cloneStrings(r.SituationReportLayout)
	return r
}

// Clone returns a deep copy of a.
func (a Apartment) Clone() Apartment {
	a.Tenants = cloneStrings(a.Tenants)
	a.MaintenanceRequests = cloneStrings(a.MaintenanceRequests)
	return a
}

func cloneStrings(in []string) []string {
	if in == nil {
		return nil
	}
	return append([]string(nil), in...)
}

// Fields a residence update may change.
var MutableResidenceFields = map[string]bool{
	"residenceName":         true,
	"street":                true,
	"number":                true,
	"city":                  true,
	"canton":                true,
	"zip":                   true,
	"country":               true,
	"tenantIds":             true,
	"laundryMachineIds":     true,
	"tenantCodesID":         true,
	"situationReportLayout": true,
}

// Fields an apartment update may change.
var MutableApartmentFields = map[string]bool{
	"apartmentName":       true,
	"tenants":             true,
	"maintenanceRequests": true,
	"situationReportId":   true,
}
