/*
 * Copyright (c) 2025, WSO2 LLC. (https://www.wso2.com).
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

package status

import (
	"context"
	"fmt"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Server exposes the connection status over HTTP
type Server struct {
	tracker    *Tracker
	httpServer *http.Server
	log        *zap.Logger
}

// NewServer creates a status server reporting the given tracker
func NewServer(tracker *Tracker, port int, log *zap.Logger) *Server {
	if os.Getenv("GIN_MODE") == "" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy"})
	})

	router.GET("/status", func(c *gin.Context) {
		c.JSON(http.StatusOK, tracker.Snapshot())
	})

	return &Server{
		tracker: tracker,
		httpServer: &http.Server{
			Addr:    fmt.Sprintf(":%d", port),
			Handler: router,
		},
		log: log,
	}
}

// Handler returns the HTTP handler, used by tests
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Start starts the status HTTP server in a goroutine
func (s *Server) Start() {
	s.log.Info("Starting status HTTP server", zap.String("addr", s.httpServer.Addr))

	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.log.Error("Status server failed", zap.Error(err))
		}
	}()
}

// Stop gracefully stops the status HTTP server
func (s *Server) Stop(ctx context.Context) error {
	s.log.Info("Stopping status HTTP server")
	return s.httpServer.Shutdown(ctx)
}
