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
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wso2/property-sync-service/internal/property/model"
)

func ResidenceCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "residence",
		Short: "Manage residences of the signed-in landlord",
	}
	cmd.AddCommand(residenceCreateCmd(), residenceDeleteCmd())
	return cmd
}

func residenceCreateCmd() *cobra.Command {
	var residence model.Residence
	cmd := &cobra.Command{
		Use:   "create [name]",
		Short: "Create a residence",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := apiClient(cmd)
			if err != nil {
				return err
			}
			residence.ResidenceName = args[0]
			created, err := c.CreateResidence(cmd.Context(), residence)
			if err != nil {
				return fmt.Errorf("failed to create residence: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created residence %s\n", created.ID)
			return nil
		},
	}
	cmd.Flags().StringVar(&residence.Street, "street", "", "Street")
	cmd.Flags().StringVar(&residence.Number, "number", "", "House number")
	cmd.Flags().StringVar(&residence.City, "city", "", "City")
	cmd.Flags().StringVar(&residence.Canton, "canton", "", "Canton")
	cmd.Flags().StringVar(&residence.Zip, "zip", "", "Postal code")
	cmd.Flags().StringVar(&residence.Country, "country", "", "Country")
	return cmd
}

func residenceDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete [id]",
		Short: "Delete a residence and its apartments",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := apiClient(cmd)
			if err != nil {
				return err
			}
			if err := c.DeleteResidence(cmd.Context(), args[0]); err != nil {
				return fmt.Errorf("failed to delete residence: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted residence %s\n", args[0])
			return nil
		},
	}
}

func ApartmentCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "apartment",
		Short: "Manage apartments of the signed-in landlord",
	}
	cmd.AddCommand(apartmentCreateCmd(), apartmentDeleteCmd())
	return cmd
}

func apartmentCreateCmd() *cobra.Command {
	var residenceID string
	cmd := &cobra.Command{
		Use:   "create [name]",
		Short: "Create an apartment in a residence",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := apiClient(cmd)
			if err != nil {
				return err
			}
			created, err := c.CreateApartment(cmd.Context(), model.Apartment{
				ApartmentName: args[0],
				ResidenceID:   residenceID,
			})
			if err != nil {
				return fmt.Errorf("failed to create apartment: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created apartment %s\n", created.ID)
			return nil
		},
	}
	cmd.Flags().StringVar(&residenceID, "residence", "", "Residence the apartment belongs to")
	_ = cmd.MarkFlagRequired("residence")
	return cmd
}

func apartmentDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete [id]",
		Short: "Delete an apartment",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := apiClient(cmd)
			if err != nil {
				return err
			}
			if err := c.DeleteApartment(cmd.Context(), args[0]); err != nil {
				return fmt.Errorf("failed to delete apartment: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted apartment %s\n", args[0])
			return nil
		},
	}
}
