package rest

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sdmx-tools/sdmx-cli/internal/core/domain"
	"github.com/sdmx-tools/sdmx-cli/internal/core/ports/driven"
)

func testProvider(url string) domain.Provider {
	return domain.Provider{
		ID:              "TEST",
		URL:             url,
		DataContentType: domain.ContentSDMXML,
	}
}

func TestConnector_Fetch(t *testing.T) {
	var gotPath, gotAccept string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path + "?" + r.URL.RawQuery
		gotAccept = r.Header.Get("Accept")
		w.Header().Set("Content-Type", "application/xml; charset=utf-8")
		w.Write([]byte("<payload/>"))
	}))
	defer srv.Close()

	c := New(testProvider(srv.URL), Config{})
	defer c.Close()

	msg, err := c.Fetch(context.Background(), driven.RequestDescriptor{
		Path:   "data/ECB,EXR,1.0/D.USD.../all",
		Params: map[string][]string{"startPeriod": {"2013-01"}},
	})
	require.NoError(t, err)

	assert.Equal(t, "/data/ECB,EXR,1.0/D.USD.../all?startPeriod=2013-01", gotPath)
	assert.Contains(t, gotAccept, "xml")
	assert.Equal(t, "application/xml", msg.ContentType)
	assert.Equal(t, []byte("<payload/>"), msg.Body)
	assert.Contains(t, msg.URL, srv.URL)
}

func TestConnector_FetchNon2xx(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "no results found", http.StatusNotFound)
	}))
	defer srv.Close()

	c := New(testProvider(srv.URL), Config{})
	defer c.Close()

	_, err := c.Fetch(context.Background(), driven.RequestDescriptor{Path: "data/none"})
	require.Error(t, err)
	var re *domain.RetrievalError
	require.True(t, errors.As(err, &re))
	assert.Equal(t, http.StatusNotFound, re.StatusCode)
	assert.Contains(t, re.Body, "no results found")
}

func TestConnector_JSONAccept(t *testing.T) {
	var gotAccept string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAccept = r.Header.Get("Accept")
		w.Write([]byte("{}"))
	}))
	defer srv.Close()

	p := testProvider(srv.URL)
	p.DataContentType = domain.ContentSDMXJSON
	c := New(p, Config{})
	defer c.Close()

	_, err := c.Fetch(context.Background(), driven.RequestDescriptor{Path: "data/x"})
	require.NoError(t, err)
	assert.Contains(t, gotAccept, "json")
}

func TestConnector_PollSucceedsOnceReady(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Write([]byte("<payload/>"))
	}))
	defer srv.Close()

	c := New(testProvider(srv.URL), Config{RequestsPerSecond: 100, BurstSize: 10})
	defer c.Close()

	msg, err := c.Poll(context.Background(), srv.URL+"/file.xml", 5, time.Millisecond)
	require.NoError(t, err)
	assert.Equal(t, []byte("<payload/>"), msg.Body)
	assert.Equal(t, int32(3), calls.Load())
}

func TestConnector_PollGivesUp(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	c := New(testProvider(srv.URL), Config{RequestsPerSecond: 100, BurstSize: 10})
	defer c.Close()

	_, err := c.Poll(context.Background(), srv.URL+"/file.xml", 3, time.Millisecond)
	require.Error(t, err)
	var re *domain.RetrievalError
	assert.True(t, errors.As(err, &re))
}

func TestConnector_PollHonoursContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	c := New(testProvider(srv.URL), Config{RequestsPerSecond: 100, BurstSize: 10})
	defer c.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := c.Poll(ctx, srv.URL+"/file.xml", 10, time.Hour)
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
}
