package opensearch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/John-Robertt/geoclean/internal/wiki"
)

const castlePage = `<!DOCTYPE html><html><head><meta charset="utf-8"><title>Castle</title></head>
<body><section><p>Neuschwanstein   Castle</p>
<style>.x{}</style>
<p>is a palace.</p></section></body></html>`

const disambigPage = `<!DOCTYPE html><html><head><meta property="mw:PageProp/disambiguation"></head>
<body><p>Neuschwanstein may refer to:</p></body></html>`

func newWiki(t *testing.T, search string, pages map[string]string) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/en/w/api.php", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "opensearch", r.URL.Query().Get("action"))
		_, _ = w.Write([]byte(search))
	})
	mux.HandleFunc("/en/api/rest_v1/page/html/", func(w http.ResponseWriter, r *http.Request) {
		title := r.URL.Path[len("/en/api/rest_v1/page/html/"):]
		html, ok := pages[title]
		if !ok {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte(html))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestSearch_MeasuresRenderedText(t *testing.T) {
	srv := newWiki(t,
		`["neuschwanstein",["Neuschwanstein Castle","Neuschwanstein","Gone"],["","",""],["https://en.wikipedia.org/wiki/Neuschwanstein_Castle","",""]]`,
		map[string]string{
			"Neuschwanstein_Castle": castlePage,
			"Neuschwanstein":        disambigPage,
		})

	b := Backend{Client: srv.Client(), Endpoint: wiki.Endpoint(srv.URL + "/{lang}")}
	got, err := b.Search(context.Background(), "neuschwanstein", "en")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Neuschwanstein Castle", got[0].Title)
	assert.Equal(t, "https://en.wikipedia.org/wiki/Neuschwanstein_Castle", got[0].URL)
	assert.Equal(t, len("Neuschwanstein Castle is a palace."), got[0].Length)
	assert.Equal(t, "en", got[0].Lang)
}

func TestSearch_FallbackURL(t *testing.T) {
	srv := newWiki(t, `["x",["Castle"],[""],[]]`, map[string]string{"Castle": castlePage})
	b := Backend{Client: srv.Client(), Endpoint: wiki.Endpoint(srv.URL + "/{lang}")}
	got, err := b.Search(context.Background(), "x", "en")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, srv.URL+"/en/wiki/Castle", got[0].URL)
}

func TestSearch_InvalidResponse(t *testing.T) {
	srv := newWiki(t, `{"unexpected":true}`, nil)
	b := Backend{Client: srv.Client(), Endpoint: wiki.Endpoint(srv.URL + "/{lang}")}
	_, err := b.Search(context.Background(), "x", "en")
	require.Error(t, err)
	assert.False(t, wiki.IsPermanent(err))
}

func TestParsePage(t *testing.T) {
	p, err := parsePage([]byte(disambigPage))
	require.NoError(t, err)
	assert.True(t, p.disambiguation)

	p, err = parsePage([]byte(`<html><body><p>München ist schön</p></body></html>`))
	require.NoError(t, err)
	assert.False(t, p.disambiguation)
	assert.Equal(t, 17, p.length)
}
