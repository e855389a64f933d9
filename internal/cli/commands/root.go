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
	"os"

	"github.com/spf13/cobra"

	"github.com/wso2/property-sync-service/internal/system/client"
)

const (
	serverFlag = "server"
	tokenFlag  = "token"

	defaultServer = "http://localhost:8900"
)

// RootCmd builds the propsyncctl command tree.
func RootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "propsyncctl",
		Short:         "Command line client of the property sync service",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().String(serverFlag, envOr("PSS_SERVER", defaultServer), "Base URL of the property sync service")
	rootCmd.PersistentFlags().String(tokenFlag, os.Getenv("PSS_TOKEN"), "ID token of the signed-in user")

	rootCmd.AddCommand(
		WatchCmd(),
		ResidenceCmd(),
		ApartmentCmd(),
		SignOutCmd(),
	)
	return rootCmd
}

func apiClient(cmd *cobra.Command) (*client.APIClient, error) {
	server, err := cmd.Flags().GetString(serverFlag)
	if err != nil {
		return nil, err
	}
	token, err := cmd.Flags().GetString(tokenFlag)
	if err != nil {
		return nil, err
	}
	if token == "" {
		return nil, fmt.Errorf("an ID token is required: pass --%s or set PSS_TOKEN", tokenFlag)
	}
	return client.NewAPIClient(server, token), nil
}

func envOr(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
