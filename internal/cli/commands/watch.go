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

package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/wso2/property-sync-service/internal/session"
)

func WatchCmd() *cobra.Command {
	var raw bool
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Print the profile and property state on every change",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := apiClient(cmd)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			return c.WatchSession(cmd.Context(), func(state session.StateResponse) error {
				if raw {
					return json.NewEncoder(out).Encode(state)
				}
				printState(out, state)
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&raw, "json", false, "Print every state as one JSON line")
	return cmd
}

func SignOutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "signout",
		Short: "End the server-side session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := apiClient(cmd)
			if err != nil {
				return err
			}
			if err := c.SignOut(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Signed out")
			return nil
		},
	}
}

func printState(out io.Writer, state session.StateResponse) {
	profiles := state.Profiles
	fmt.Fprintln(out, strings.Repeat("-", 40))
	switch {
	case profiles.Identity == nil:
		fmt.Fprintln(out, "signed out")
	case profiles.IsLoading:
		fmt.Fprintf(out, "%s: loading profile\n", profiles.Identity.UID)
	case profiles.UserProfile == nil:
		fmt.Fprintf(out, "%s: not registered\n", profiles.Identity.UID)
	default:
		fmt.Fprintf(out, "%s (%s) %s\n", profiles.UserProfile.Name, profiles.UserProfile.Type, profiles.Identity.UID)
	}
	if profiles.Error != "" {
		fmt.Fprintf(out, "profile error: %s\n", profiles.Error)
	}
	if profiles.TenantProfile != nil {
		fmt.Fprintf(out, "tenant of apartment %s in residence %s\n",
			profiles.TenantProfile.ApartmentID, profiles.TenantProfile.ResidenceID)
	}

	properties := state.Properties
	if properties.IsLoading {
		fmt.Fprintln(out, "loading residences")
	}
	if properties.Error != "" {
		fmt.Fprintf(out, "property error: %s\n", properties.Error)
	}
	for _, id := range properties.ResidenceMap.Keys() {
		group, _ := properties.ResidenceMap.Get(id)
		fmt.Fprintf(out, "%s  %s (%d apartments)\n", id, group.Residence.ResidenceName, len(group.Apartments))
		for _, apartment := range group.Apartments {
			fmt.Fprintf(out, "    %s  %s\n", apartment.ID, apartment.ApartmentName)
		}
	}
}
