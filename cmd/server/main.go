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

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/joho/godotenv"

	"github.com/wso2/property-sync-service/internal/docstore/provider"
	"github.com/wso2/property-sync-service/internal/system/authn"
	"github.com/wso2/property-sync-service/internal/system/config"
	"github.com/wso2/property-sync-service/internal/system/constants"
	"github.com/wso2/property-sync-service/internal/system/log"
	"github.com/wso2/property-sync-service/internal/system/managers"
)

const configFile = "/repository/conf/deployment.yaml"

func main() {
	pssHome := getPSSHome()

	envFiles, err := filepath.Glob(filepath.Join(pssHome, "config", "*.env"))
	if err == nil && len(envFiles) > 0 {
		_ = godotenv.Load(envFiles...)
	}

	// Load the configuration file
	pssConfig, err := config.LoadConfig(pssHome, configFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize runtime configurations.
	if err := config.InitializePSSRuntime(pssHome, pssConfig); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize runtime: %v\n", err)
		os.Exit(1)
	}

	if err := log.Init(pssConfig.Log.LogLevel); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	logger := log.GetLogger()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	docs, err := provider.NewDocumentStoreProvider(pssConfig.DocumentStore).GetDocumentStore(ctx)
	if err != nil {
		logger.Error("Failed to open the document store", log.Error(err))
		os.Exit(1)
	}
	defer func() {
		if err := docs.Close(); err != nil {
			logger.Warn("Failed to close the document store", log.Error(err))
		}
	}()

	router := mux.NewRouter()
	serviceManager := managers.NewServiceManager(router, docs, authn.NewAuthenticator(pssConfig.Auth), pssConfig.Metrics)
	if err := serviceManager.RegisterServices(constants.ApiBasePath); err != nil {
		logger.Error("Failed to register the services", log.Error(err))
		os.Exit(1)
	}
	defer serviceManager.Sessions().Close()

	serverAddr := fmt.Sprintf("%s:%d", pssConfig.Addr.Host, pssConfig.Addr.Port)
	ln, err := net.Listen("tcp", serverAddr)
	if err != nil {
		logger.Error("Failed to start listener", log.String("address", serverAddr), log.Error(err))
		os.Exit(1)
	}

	server := &http.Server{
		Handler:           enableCORS(router, pssConfig.Auth.CORSAllowedOrigins),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()

	logger.Info("Property sync service started", log.String("address", serverAddr),
		log.String("documentStore", pssConfig.DocumentStore.Type))
	if err := server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("Failed to serve requests", log.Error(err))
	}
	logger.Info("Property sync service stopped")
}

func enableCORS(next http.Handler, allowedOrigins []string) http.Handler {
	allowed := make(map[string]bool, len(allowedOrigins))
	for _, origin := range allowedOrigins {
		allowed[strings.TrimSpace(origin)] = true
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if origin != "" && (allowed["*"] || allowed[origin]) {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS, PATCH")
			w.Header().Set("Access-Control-Allow-Headers", "Authorization, Content-Type, "+constants.TraceIDHeader)
			w.Header().Set("Access-Control-Expose-Headers", "Content-Length, "+constants.TraceIDHeader)
			w.Header().Set("Access-Control-Allow-Credentials", "true")
			w.Header().Add("Vary", "Origin")
		}
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func getPSSHome() string {

	// Parse project directory from command line arguments.
	projectHomeFlag := flag.String("pssHome", "", "Path to property sync service home directory")
	flag.Parse()

	if *projectHomeFlag != "" {
		return *projectHomeFlag
	}
	// If no command line argument is provided, use the current working directory.
	dir, err := os.Getwd()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to get current working directory: %v\n", err)
		return "."
	}
	return dir
}
