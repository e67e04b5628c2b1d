package gateway

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const sampleRecap = `{"meta":{"user":"octo","year":2025,"generated_at":"2025-12-31T10:00:00Z"},"totals":{"commits":1200,"overall":1500},"growth":null}`

func TestSafeJoin(t *testing.T) {
	root := filepath.FromSlash("/srv/web")

	testCases := []struct {
		name      string
		reqPath   string
		expected  string
		forbidden bool
	}{
		{name: "plain file", reqPath: "/report.html", expected: filepath.FromSlash("/srv/web/report.html")},
		{name: "nested file", reqPath: "assets/app.css", expected: filepath.FromSlash("/srv/web/assets/app.css")},
		{name: "dot segments inside root", reqPath: "/assets/../report.html", expected: filepath.FromSlash("/srv/web/report.html")},
		{name: "escapes root", reqPath: "/../secret.txt", forbidden: true},
		{name: "escapes deeply", reqPath: "../../etc/passwd", forbidden: true},
		{name: "sibling with shared prefix", reqPath: "../web-private/key", forbidden: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := SafeJoin(root, tc.reqPath)
			if tc.forbidden {
				assert.ErrorIs(t, err, ErrForbiddenPath)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.expected, got)
		})
	}
}

func TestFileSource_FetchRecap(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/web/recap_2025.json", []byte(sampleRecap), 0o644))
	require.NoError(t, afero.WriteFile(fs, "/web/broken.json", []byte(`{"meta":`), 0o644))
	source := NewFileSource(fs, "/web", zap.NewNop())

	testCases := []struct {
		name        string
		file        string
		expectedErr error
		errContains string
	}{
		{name: "default file", file: ""},
		{name: "explicit file", file: "recap_2025.json"},
		{name: "missing file", file: "recap_2024.json", expectedErr: ErrRecapNotFound, errContains: "failed to load recap_2024.json"},
		{name: "malformed json", file: "broken.json", errContains: "failed to parse broken.json"},
		{name: "traversal", file: "../etc/passwd", expectedErr: ErrForbiddenPath},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			recap, err := source.FetchRecap(context.Background(), tc.file)
			if tc.expectedErr == nil && tc.errContains == "" {
				require.NoError(t, err)
				assert.Equal(t, "octo", recap.Meta.User)
				assert.Equal(t, 1200, recap.Totals.Commits)
				assert.Nil(t, recap.Growth)
				return
			}
			assert.Error(t, err)
			assert.Nil(t, recap)
			if tc.expectedErr != nil {
				assert.ErrorIs(t, err, tc.expectedErr)
			}
			if tc.errContains != "" {
				assert.Contains(t, err.Error(), tc.errContains)
			}
		})
	}
}

func TestHTTPSource_FetchRecap(t *testing.T) {
	testCases := []struct {
		name        string
		handlerFunc func(w http.ResponseWriter, r *http.Request)
		expectError bool
		errContains string
	}{
		{
			name: "happy path - decodes the served recap",
			handlerFunc: func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "/data/recap_2025.json", r.URL.Path)
				w.WriteHeader(http.StatusOK)
				fmt.Fprint(w, sampleRecap)
			},
		},
		{
			name: "error case - not found",
			handlerFunc: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusNotFound)
			},
			expectError: true,
			errContains: "failed to load recap_2025.json: 404",
		},
		{
			name: "error case - server error",
			handlerFunc: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusInternalServerError)
			},
			expectError: true,
			errContains: "500",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(tc.handlerFunc))
			defer server.Close()

			source, err := NewHTTPSource(server.Client(), server.URL+"/data", zap.NewNop())
			require.NoError(t, err)

			recap, err := source.FetchRecap(context.Background(), "")
			if tc.expectError {
				assert.Error(t, err)
				assert.Contains(t, err.Error(), tc.errContains)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, 2025, recap.Meta.Year)
		})
	}
}
