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

// Package httpreq derives HTTP/1.1 request-line and Host-header values from
// a server URL.
package httpreq

import (
	"errors"
	"fmt"

	"github.com/wso2/api-platform/gateway/connection-agent/pkg/urlutil"
)

// Target holds the host and request path extracted from a server URL.
type Target struct {
	Host []byte
	Path []byte
}

// defaultPath is used when the URL names a host but no path.
var defaultPath = []byte("/")

// ParseTarget extracts the host and path of rawURL. A URL without a path
// yields the root path; a URL without a host is an error. The Host and
// Path fields are views into rawURL (or the shared root-path literal), so
// the caller's buffer must outlive the Target.
func ParseTarget(rawURL []byte) (*Target, error) {
	host, err := urlutil.GetURLHost(rawURL)
	if err != nil {
		return nil, fmt.Errorf("failed to extract host from url: %w", err)
	}

	path, err := urlutil.GetURLPath(rawURL)
	if err != nil {
		if !errors.Is(err, urlutil.ErrNoFieldPresent) {
			return nil, fmt.Errorf("failed to extract path from url: %w", err)
		}
		path = defaultPath
	}

	return &Target{Host: host, Path: path}, nil
}

// RequestLine renders the HTTP/1.1 request line for the target path.
func (t *Target) RequestLine(method string) string {
	return fmt.Sprintf("%s %s HTTP/1.1", method, t.Path)
}

// HostHeader returns the value for the Host request header.
func (t *Target) HostHeader() string {
	return string(t.Host)
}
