package update

import (
	"context"
	"net/http"
	"net/http/httptest"
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCompareVersions(t *testing.T) {
	tests := []struct {
		v1, v2 string
		want   int
	}{
		{"v1.0.0", "v1.0.0", 0},
		{"1.0.0", "v1.0.1", -1},
		{"v1.10.0", "v1.9.3", 1},
		{"v1.2", "v1.2.1", -1},
		{"v2.0.0-rc1", "v2.0.0", 0},
		{"v0.3.0", "v0.2.9", 1},
	}
	for _, tt := range tests {
		require.Equal(t, tt.want, compareVersions(tt.v1, tt.v2), "%s vs %s", tt.v1, tt.v2)
	}
}

func newReleaseServer(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/repos/"+Repo+"/releases/latest", r.URL.Path)
		w.WriteHeader(status)
		w.Write([]byte(body))
	}))
	t.Cleanup(server.Close)
	return server
}

func TestCheckForUpdate(t *testing.T) {
	server := newReleaseServer(t, http.StatusOK, `{"tag_name":"v1.2.0","html_url":"https://github.com/x"}`)
	c := NewCheckerWithBase(server.URL)

	hasUpdate, latest, err := c.CheckForUpdate(context.Background(), "v1.1.0")
	require.NoError(t, err)
	require.True(t, hasUpdate)
	require.Equal(t, "v1.2.0", latest.TagName)

	hasUpdate, _, err = c.CheckForUpdate(context.Background(), "v1.2.0")
	require.NoError(t, err)
	require.False(t, hasUpdate)

	hasUpdate, _, err = c.CheckForUpdate(context.Background(), DevVersion)
	require.NoError(t, err)
	require.True(t, hasUpdate)
}

func TestGetLatestVersion_Errors(t *testing.T) {
	server := newReleaseServer(t, http.StatusNotFound, `{}`)
	_, err := NewCheckerWithBase(server.URL).GetLatestVersion(context.Background())
	require.Error(t, err)

	server = newReleaseServer(t, http.StatusOK, `{"html_url":"x"}`)
	_, err = NewCheckerWithBase(server.URL).GetLatestVersion(context.Background())
	require.Error(t, err)
}

func TestGetDownloadURL(t *testing.T) {
	url := GetDownloadURL("v1.0.0")
	require.True(t, strings.HasPrefix(url, "https://github.com/"+Repo+"/releases/download/v1.0.0/bookingassistant-"))
	require.Contains(t, url, runtime.GOOS+"-"+runtime.GOARCH)
}
