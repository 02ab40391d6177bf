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

package transport

import (
	"crypto/tls"
	"net"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/wso2/api-platform/gateway/connection-agent/pkg/retry"
)

// TCPEndpoint holds the parameters and the resulting connection of a plain
// or TLS socket endpoint.
type TCPEndpoint struct {
	Address     string // host:port
	DialTimeout time.Duration
	TLS         *tls.Config // nil for plaintext

	mu   sync.Mutex
	conn net.Conn
}

// Conn returns the established connection, or nil before a successful
// connect.
func (e *TCPEndpoint) Conn() net.Conn {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.conn
}

// Close closes the established connection if one exists.
func (e *TCPEndpoint) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.conn == nil {
		return nil
	}
	err := e.conn.Close()
	e.conn = nil
	return err
}

// NewTCPConnectFunc returns a connect function that dials the TCPEndpoint
// passed as the network context, upgrading to TLS when the endpoint
// carries a TLS configuration.
func NewTCPConnectFunc(log *zap.Logger) retry.ConnectFunc {
	if log == nil {
		log = zap.NewNop()
	}

	return func(nctx retry.NetworkContext) error {
		ep := nctx.(*TCPEndpoint)

		log.Info("Connecting to endpoint", zap.String("address", ep.Address))

		conn, err := net.DialTimeout("tcp", ep.Address, ep.DialTimeout)
		if err != nil {
			log.Error("TCP connection failed", zap.Error(err))
			return err
		}

		if ep.TLS != nil {
			tlsConn := tls.Client(conn, ep.TLS)
			if ep.DialTimeout > 0 {
				tlsConn.SetDeadline(time.Now().Add(ep.DialTimeout))
			}
			if err := tlsConn.Handshake(); err != nil {
				log.Error("TLS handshake failed", zap.Error(err))
				conn.Close()
				return err
			}
			tlsConn.SetDeadline(time.Time{})
			conn = tlsConn
		}

		ep.mu.Lock()
		ep.conn = conn
		ep.mu.Unlock()

		log.Info("Connection established", zap.String("address", ep.Address))
		return nil
	}
}
