package fetch

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

const testUA = "Mozilla/5.0 (test)"

func TestFetchSendsUserAgentAndSavesSnapshot(t *testing.T) {
	var gotUA, gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		gotQuery = r.URL.RawQuery
		w.Write([]byte("<html>profile</html>"))
	}))
	defer srv.Close()

	debugPath := filepath.Join(t.TempDir(), "debug", "debug_page.html")
	f := NewProfileFetcher(srv.URL+"/citations?hl=en&user=abc", testUA, 5*time.Second, debugPath)

	page, err := f.Fetch(context.Background())
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, page.StatusCode)
	require.Equal(t, "<html>profile</html>", string(page.Body))
	require.Equal(t, testUA, gotUA)
	require.Equal(t, "hl=en&user=abc", gotQuery)

	saved, err := os.ReadFile(debugPath)
	require.NoError(t, err)
	require.Equal(t, "<html>profile</html>", string(saved))
}

func TestFetchStatusErrorStillSavesSnapshot(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte("<html>sorry</html>"))
	}))
	defer srv.Close()

	debugPath := filepath.Join(t.TempDir(), "debug_page.html")
	f := NewProfileFetcher(srv.URL, testUA, 5*time.Second, debugPath)

	page, err := f.Fetch(context.Background())
	var statusErr *StatusError
	require.True(t, errors.As(err, &statusErr))
	require.Equal(t, http.StatusTooManyRequests, statusErr.Code)
	require.Contains(t, err.Error(), "429")
	require.NotNil(t, page)

	saved, err := os.ReadFile(debugPath)
	require.NoError(t, err)
	require.Equal(t, "<html>sorry</html>", string(saved))
}

func TestFetchTransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	debugPath := filepath.Join(t.TempDir(), "debug_page.html")
	f := NewProfileFetcher(url, testUA, 2*time.Second, debugPath)

	page, err := f.Fetch(context.Background())
	require.Error(t, err)
	require.Nil(t, page)

	var statusErr *StatusError
	require.False(t, errors.As(err, &statusErr))

	_, statErr := os.Stat(debugPath)
	require.True(t, os.IsNotExist(statErr))
}

func TestFetchTimeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))
	defer srv.Close()
	defer close(release)

	f := NewProfileFetcher(srv.URL, testUA, 50*time.Millisecond, "")
	_, err := f.Fetch(context.Background())
	require.Error(t, err)
}

func TestFetchWithoutSnapshotPath(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	}))
	defer srv.Close()

	f := NewProfileFetcher(srv.URL, testUA, 0, "")
	page, err := f.Fetch(context.Background())
	require.NoError(t, err)
	require.Equal(t, "ok", string(page.Body))
	require.Equal(t, srv.URL, f.URL())
}
