package remote

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(metaURL, imageURL string) *Client {
	return New(Config{MetaURL: metaURL, ImageURL: imageURL})
}

func TestFetchMeta(t *testing.T) {
	var got map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.True(t, strings.HasPrefix(r.Header.Get("User-Agent"), "plume/"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"url":"http://x.com","title":"X","image":"http://x.com/x.png","description":"about x"}`))
	}))
	defer srv.Close()

	m, err := newTestClient(srv.URL, "").FetchMeta(context.Background(), "http://x.com")
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"targetUrl": "http://x.com"}, got)
	assert.Equal(t, Meta{URL: "http://x.com", Title: "X", Image: "http://x.com/x.png", Description: "about x"}, m)
}

func TestFetchMeta_Incomplete(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"url":"http://x.com","title":"X"}`))
	}))
	defer srv.Close()

	m, err := newTestClient(srv.URL, "").FetchMeta(context.Background(), "http://x.com")
	require.ErrorIs(t, err, ErrIncompleteMeta)
	assert.Equal(t, "X", m.Title)
	assert.False(t, m.Complete())
}

func TestFetchMeta_Status(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusNotFound)
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL, "").FetchMeta(context.Background(), "http://x.com")
	require.ErrorIs(t, err, ErrStatus)
}

func TestFetchMeta_ServerErrorGivesUp(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL, "").FetchMeta(context.Background(), "http://x.com")
	require.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestFetchMeta_NoEndpoint(t *testing.T) {
	_, err := newTestClient("", "").FetchMeta(context.Background(), "http://x.com")
	require.ErrorIs(t, err, ErrNoEndpoint)
}

func TestUploadImage(t *testing.T) {
	var got map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"imageRef":"https://cdn.example.com/1.png"}`))
	}))
	defer srv.Close()

	ref, err := newTestClient("", srv.URL).UploadImage(context.Background(), "data:image/png;base64,AAAA")
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/1.png", ref)
	assert.Equal(t, map[string]string{"imageEncoding": "data:image/png;base64,AAAA"}, got)
}

func TestUploadImage_EmptyRef(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	_, err := newTestClient("", srv.URL).UploadImage(context.Background(), "data:image/png;base64,AAAA")
	require.ErrorIs(t, err, ErrEmptyRef)
}

func TestUploadImage_Canceled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"imageRef":"x"}`))
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := newTestClient("", srv.URL).UploadImage(ctx, "data:image/png;base64,AAAA")
	require.ErrorIs(t, err, context.Canceled)
}

func TestUploadImage_SingleAttemptByDefault(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	_, err := New(Config{ImageURL: srv.URL}).UploadImage(context.Background(), "data:image/png;base64,AAAA")
	require.Error(t, err)
	assert.Equal(t, int32(1), calls.Load())
}

func TestUploadImage_RetriesWhenConfigured(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			http.Error(w, "boom", http.StatusInternalServerError)
			return
		}
		_, _ = w.Write([]byte(`{"imageRef":"https://cdn.example.com/1.png"}`))
	}))
	defer srv.Close()

	cl := New(Config{ImageURL: srv.URL, RetryMax: 2, RetryWaitMin: time.Millisecond, RetryWaitMax: time.Millisecond})
	ref, err := cl.UploadImage(context.Background(), "data:image/png;base64,AAAA")
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/1.png", ref)
	assert.Equal(t, int32(3), calls.Load())
}
