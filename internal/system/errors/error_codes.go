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

const errorPrefix = "PSS-"

var (
	// Server error codes

	FETCH_USER_PROFILE = ErrorMessage{
		Code:    errorPrefix + "15001",
		Message: "Error while fetching user profile.",
	}

	FETCH_TENANT_PROFILE = ErrorMessage{
		Code:    errorPrefix + "15002",
		Message: "Error while fetching tenant profile.",
	}

	FETCH_LANDLORD_PROFILE = ErrorMessage{
		Code:    errorPrefix + "15003",
		Message: "Error while fetching landlord profile.",
	}

	ADD_USER_PROFILE = ErrorMessage{
		Code:    errorPrefix + "15004",
		Message: "Error while adding user profile.",
	}

	ADD_RESIDENCE = ErrorMessage{
		Code:    errorPrefix + "15005",
		Message: "Error while adding residence.",
	}

	UPDATE_RESIDENCE = ErrorMessage{
		Code:    errorPrefix + "15006",
		Message: "Error while updating residence.",
	}

	DELETE_RESIDENCE = ErrorMessage{
		Code:    errorPrefix + "15007",
		Message: "Error while deleting residence.",
	}

	ADD_APARTMENT = ErrorMessage{
		Code:    errorPrefix + "15008",
		Message: "Error while adding apartment.",
	}

	UPDATE_APARTMENT = ErrorMessage{
		Code:    errorPrefix + "15009",
		Message: "Error while updating apartment.",
	}

	DELETE_APARTMENT = ErrorMessage{
		Code:    errorPrefix + "15010",
		Message: "Error while deleting apartment.",
	}

	FETCH_RESIDENCE = ErrorMessage{
		Code:    errorPrefix + "15011",
		Message: "Error while fetching residence.",
	}

	DOCUMENT_STORE = ErrorMessage{
		Code:    errorPrefix + "15012",
		Message: "Error while accessing the document store.",
	}

	PARSING_ERROR = ErrorMessage{
		Code:    errorPrefix + "15013",
		Message: "Error while parsing the identity token.",
	}

	SESSION = ErrorMessage{
		Code:    errorPrefix + "15014",
		Message: "Error while opening the session.",
	}

	STREAMING_UNSUPPORTED = ErrorMessage{
		Code:    errorPrefix + "15015",
		Message: "Streaming is not supported.",
	}

	FETCH_APARTMENT = ErrorMessage{
		Code:    errorPrefix + "15016",
		Message: "Error while fetching apartment.",
	}

	// Client error codes

	UN_AUTHORIZED = ErrorMessage{
		Code:        errorPrefix + "10001",
		Message:     "Unauthorized",
		Description: "You are not authorized to perform this operation.",
	}

	INVALID_USER_PROFILE = ErrorMessage{
		Code:    errorPrefix + "10002",
		Message: "Invalid user profile.",
	}

	INVALID_RESIDENCE = ErrorMessage{
		Code:    errorPrefix + "10003",
		Message: "Invalid residence.",
	}

	INVALID_APARTMENT = ErrorMessage{
		Code:    errorPrefix + "10004",
		Message: "Invalid apartment.",
	}

	RESIDENCE_NOT_FOUND = ErrorMessage{
		Code:    errorPrefix + "10005",
		Message: "Residence not found.",
	}

	APARTMENT_NOT_FOUND = ErrorMessage{
		Code:    errorPrefix + "10006",
		Message: "Apartment not found.",
	}

	USER_ALREADY_REGISTERED = ErrorMessage{
		Code:        errorPrefix + "10007",
		Message:     "User already registered.",
		Description: "A user profile already exists for the signed-in identity.",
	}

	INVALID_REQUEST_BODY = ErrorMessage{
		Code:    errorPrefix + "10008",
		Message: "Invalid request body.",
	}

	NOT_A_LANDLORD = ErrorMessage{
		Code:        errorPrefix + "10009",
		Message:     "Forbidden",
		Description: "Only landlords can manage residences and apartments.",
	}
)
