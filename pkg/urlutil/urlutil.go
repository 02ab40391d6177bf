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

// Package urlutil extracts the host and path fields of a URL held in a
// caller-owned byte buffer. The extractors return views into that buffer,
// never copies, so the results stay valid exactly as long as the buffer
// does.
package urlutil

import (
	"bytes"
	"errors"
	"net/url"

	"go.uber.org/zap"

	"github.com/wso2/api-platform/gateway/connection-agent/pkg/metrics"
)

var (
	// ErrInvalidParameter indicates a nil input buffer.
	ErrInvalidParameter = errors.New("urlutil: invalid parameter")
	// ErrParserInternal indicates the URL could not be tokenized.
	ErrParserInternal = errors.New("urlutil: parser failure")
	// ErrNoFieldPresent indicates the URL parsed but the requested field is
	// zero-length.
	ErrNoFieldPresent = errors.New("urlutil: field not present in url")
)

const (
	fieldHost = "host"
	fieldPath = "path"
)

var log = zap.NewNop()

// SetLogger installs the logger used for extraction failures. Passing nil
// restores the no-op logger.
func SetLogger(l *zap.Logger) {
	if l == nil {
		l = zap.NewNop()
	}
	log = l
}

// GetURLHost returns the host portion of rawURL as a view into rawURL.
// A nil view with ErrNoFieldPresent is returned when the URL carries no
// host.
func GetURLHost(rawURL []byte) ([]byte, error) {
	return extract(rawURL, fieldHost)
}

// GetURLPath returns the path portion of rawURL as a view into rawURL.
// A nil view with ErrNoFieldPresent is returned when the URL carries no
// path, e.g. "http://example.com".
func GetURLPath(rawURL []byte) ([]byte, error) {
	return extract(rawURL, fieldPath)
}

func extract(rawURL []byte, field string) ([]byte, error) {
	if rawURL == nil {
		fail(rawURL, field, ErrInvalidParameter, "invalid_parameter")
		return nil, ErrInvalidParameter
	}

	u, err := url.ParseRequestURI(string(rawURL))
	if err != nil {
		fail(rawURL, field, err, "parser_internal")
		return nil, ErrParserInternal
	}

	var want string
	switch field {
	case fieldHost:
		want = u.Host
	case fieldPath:
		want = u.EscapedPath()
	}

	if len(want) == 0 {
		fail(rawURL, field, ErrNoFieldPresent, "no_field_present")
		return nil, ErrNoFieldPresent
	}

	view := locate(rawURL, u.Host, want, field)
	if view == nil {
		fail(rawURL, field, ErrParserInternal, "parser_internal")
		return nil, ErrParserInternal
	}
	return view, nil
}

// locate finds the field inside the original buffer so the returned slice
// aliases caller memory. The path is searched after the host to avoid
// matching a lookalike substring earlier in the URL.
func locate(rawURL []byte, host, want, field string) []byte {
	start := 0
	if field == fieldPath && host != "" {
		if hi := bytes.Index(rawURL, []byte(host)); hi >= 0 {
			start = hi + len(host)
		}
	}

	idx := bytes.Index(rawURL[start:], []byte(want))
	if idx < 0 {
		return nil
	}
	off := start + idx
	return rawURL[off : off+len(want)]
}

func fail(rawURL []byte, field string, err error, status string) {
	log.Error("Failed to extract URL field",
		zap.String("field", field),
		zap.ByteString("url", rawURL),
		zap.Error(err))
	metrics.URLParseErrorsTotal.WithLabelValues(field, status).Inc()
}
