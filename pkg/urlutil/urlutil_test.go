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

package urlutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestGetURLHost(t *testing.T) {
	tests := []struct {
		name    string
		rawURL  []byte
		want    string
		wantErr error
	}{
		{
			name:   "plain http url",
			rawURL: []byte("http://example.com/a/b"),
			want:   "example.com",
		},
		{
			name:   "url with port",
			rawURL: []byte("https://example.com:8443/api"),
			want:   "example.com:8443",
		},
		{
			name:   "websocket url",
			rawURL: []byte("wss://gateway.example.com/notifications"),
			want:   "gateway.example.com",
		},
		{
			name:   "no path",
			rawURL: []byte("http://example.com"),
			want:   "example.com",
		},
		{
			name:    "nil buffer",
			rawURL:  nil,
			wantErr: ErrInvalidParameter,
		},
		{
			name:    "not a url",
			rawURL:  []byte("not a url"),
			wantErr: ErrParserInternal,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := GetURLHost(tt.rawURL)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, got)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.want, string(got))
		})
	}
}

func TestGetURLPath(t *testing.T) {
	tests := []struct {
		name    string
		rawURL  []byte
		want    string
		wantErr error
	}{
		{
			name:   "plain http url",
			rawURL: []byte("http://example.com/a/b"),
			want:   "/a/b",
		},
		{
			name:   "path with query",
			rawURL: []byte("http://example.com/a?b=c"),
			want:   "/a",
		},
		{
			name:   "root path",
			rawURL: []byte("http://example.com/"),
			want:   "/",
		},
		{
			name:    "no path",
			rawURL:  []byte("http://example.com"),
			wantErr: ErrNoFieldPresent,
		},
		{
			name:    "nil buffer",
			rawURL:  nil,
			wantErr: ErrInvalidParameter,
		},
		{
			name:    "not a url",
			rawURL:  []byte("not a url"),
			wantErr: ErrParserInternal,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := GetURLPath(tt.rawURL)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, got)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.want, string(got))
		})
	}
}

// The returned slices must alias the caller's buffer, not copy it.
func TestViewsAliasCallerBuffer(t *testing.T) {
	rawURL := []byte("http://example.com/a/b")

	host, err := GetURLHost(rawURL)
	require.NoError(t, err)
	path, err := GetURLPath(rawURL)
	require.NoError(t, err)

	// Mutating the buffer shows through both views.
	rawURL[7] = 'E'  // first byte of the host
	rawURL[18] = '#' // first byte of the path

	assert.Equal(t, "Example.com", string(host))
	assert.Equal(t, "#a/b", string(path))
}

func TestGetURLPath_HostLookalikePrefix(t *testing.T) {
	// The path also occurs inside the host; the view must point at the
	// real path segment after the host.
	rawURL := []byte("http://a.co/a.co")

	path, err := GetURLPath(rawURL)
	require.NoError(t, err)
	assert.Equal(t, "/a.co", string(path))
	assert.Equal(t, "http://a.co", string(rawURL[:len(rawURL)-len(path)]))
}

func TestExtract_LogsFailures(t *testing.T) {
	core, logs := observer.New(zap.ErrorLevel)
	SetLogger(zap.New(core))
	defer SetLogger(nil)

	_, err := GetURLHost(nil)
	assert.ErrorIs(t, err, ErrInvalidParameter)

	_, err = GetURLPath([]byte("not a url"))
	assert.ErrorIs(t, err, ErrParserInternal)

	_, err = GetURLPath([]byte("http://example.com"))
	assert.ErrorIs(t, err, ErrNoFieldPresent)

	all := logs.All()
	require.Len(t, all, 3)
	for _, entry := range all {
		assert.Equal(t, zap.ErrorLevel, entry.Level)
	}
	// The offending URL rides along on the event.
	assert.Equal(t, "not a url", all[1].ContextMap()["url"].(string))
}

func TestSetLogger_NilRestoresNoop(t *testing.T) {
	SetLogger(nil)
	assert.NotNil(t, log)

	// Must not panic with the no-op logger installed.
	_, err := GetURLHost(nil)
	assert.ErrorIs(t, err, ErrInvalidParameter)
}
