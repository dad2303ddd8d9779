package search

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/John-Robertt/geoclean/internal/wiki"
)

func newServer(t *testing.T, status int, body string, seen *[]string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if seen != nil {
			*seen = append(*seen, r.URL.Path+"?"+r.URL.RawQuery)
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestSearch_ParsesHits(t *testing.T) {
	var seen []string
	srv := newServer(t, 200, `{"batchcomplete":true,"query":{"search":[
		{"ns":0,"title":"Schloss Neuschwanstein","pageid":1,"size":48211},
		{"ns":0,"title":"Neuschwanstein (Begriffsklärung)","pageid":2,"size":512}
	]}}`, &seen)

	b := Backend{Client: srv.Client(), Endpoint: wiki.Endpoint(srv.URL + "/{lang}"), Limit: 2}
	got, err := b.Search(context.Background(), "Schloss Neuschwanstein", "de")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "de", got[0].Lang)
	assert.Equal(t, "Schloss Neuschwanstein", got[0].Title)
	assert.Equal(t, 48211, got[0].Length)
	assert.Equal(t, srv.URL+"/de/wiki/Schloss_Neuschwanstein", got[0].URL)
	assert.Equal(t, "Schloss Neuschwanstein", got[0].Query)

	require.Len(t, seen, 1)
	assert.Contains(t, seen[0], "/de/w/api.php?")
	assert.Contains(t, seen[0], "srsearch=Schloss+Neuschwanstein")
	assert.Contains(t, seen[0], "srlimit=2")
}

func TestSearch_NoHitsIsNotAnError(t *testing.T) {
	srv := newServer(t, 200, `{"query":{"search":[]}}`, nil)
	b := Backend{Client: srv.Client(), Endpoint: wiki.Endpoint(srv.URL + "/{lang}")}
	got, err := b.Search(context.Background(), "xyzzy", "en")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestSearch_Errors(t *testing.T) {
	cases := []struct {
		name      string
		status    int
		body      string
		permanent bool
	}{
		{name: "server error", status: 503, body: `oops`, permanent: false},
		{name: "rate limited", status: 429, body: ``, permanent: false},
		{name: "not found", status: 404, body: ``, permanent: true},
		{name: "garbage", status: 200, body: `<html>`, permanent: false},
		{name: "missing results", status: 200, body: `{"batchcomplete":true}`, permanent: false},
		{name: "api error", status: 200, body: `{"error":{"code":"badvalue","info":"bad"}}`, permanent: true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			srv := newServer(t, tc.status, tc.body, nil)
			b := Backend{Client: srv.Client(), Endpoint: wiki.Endpoint(srv.URL + "/{lang}")}
			_, err := b.Search(context.Background(), "x", "en")
			require.Error(t, err)
			assert.Equal(t, tc.permanent, wiki.IsPermanent(err))
		})
	}
}

func TestSearch_StatusErrorCarriesCode(t *testing.T) {
	srv := newServer(t, 502, ``, nil)
	b := Backend{Client: srv.Client(), Endpoint: wiki.Endpoint(srv.URL + "/{lang}")}
	_, err := b.Search(context.Background(), "x", "en")
	var se *wiki.HTTPStatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, 502, se.StatusCode)
}
