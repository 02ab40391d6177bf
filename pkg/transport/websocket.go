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

// Package transport provides the concrete connect operations (WebSocket and
// raw TCP) that the retry connector drives.
package transport

import (
	"crypto/tls"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/wso2/api-platform/gateway/connection-agent/pkg/retry"
)

// WSEndpoint holds the parameters and the resulting connection of a
// WebSocket endpoint. It doubles as the NetworkContext handed through the
// retry connector.
type WSEndpoint struct {
	URL                string
	Token              string
	HandshakeTimeout   time.Duration
	InsecureSkipVerify bool

	mu           sync.Mutex
	conn         *websocket.Conn
	connectionID string
}

// Conn returns the established connection, or nil before a successful
// connect.
func (e *WSEndpoint) Conn() *websocket.Conn {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.conn
}

// ConnectionID returns the identifier assigned to the current connection.
func (e *WSEndpoint) ConnectionID() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.connectionID
}

// Close closes the established connection if one exists.
func (e *WSEndpoint) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.conn == nil {
		return nil
	}
	err := e.conn.Close()
	e.conn = nil
	e.connectionID = ""
	return err
}

// NewWSConnectFunc returns a connect function that dials the WSEndpoint
// passed as the network context. Every failure cause collapses to the
// returned error; on success the connection is stored on the endpoint.
func NewWSConnectFunc(log *zap.Logger) retry.ConnectFunc {
	if log == nil {
		log = zap.NewNop()
	}

	return func(nctx retry.NetworkContext) error {
		ep := nctx.(*WSEndpoint)

		log.Info("Connecting to endpoint", zap.String("url", ep.URL))

		dialer := websocket.Dialer{
			HandshakeTimeout: ep.HandshakeTimeout,
			TLSClientConfig: &tls.Config{
				InsecureSkipVerify: ep.InsecureSkipVerify,
			},
		}

		if ep.InsecureSkipVerify {
			log.Debug("TLS certificate verification disabled (insecure_skip_verify=true)")
		}

		headers := http.Header{}
		if ep.Token != "" {
			headers.Add("api-key", ep.Token)
		}

		conn, resp, err := dialer.Dial(ep.URL, headers)
		if err != nil {
			if resp != nil {
				log.Error("WebSocket connection failed",
					zap.Error(err),
					zap.Int("status_code", resp.StatusCode),
				)
			} else {
				log.Error("WebSocket connection failed", zap.Error(err))
			}
			return err
		}

		ep.mu.Lock()
		ep.conn = conn
		ep.connectionID = uuid.New().String()
		ep.mu.Unlock()

		log.Info("WebSocket connection established",
			zap.String("url", ep.URL),
			zap.String("connection_id", ep.ConnectionID()),
		)
		return nil
	}
}
