package main

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/knakk/rdf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCurrentVersionQueryRenders(t *testing.T) {
	q, err := queryBank.Prepare("current-version",
		struct{ Entity, Property string }{"Q42", propSoftwareVersion})
	require.NoError(t, err)

	assert.Contains(t, q, "wd:Q42 p:P348")
	assert.Contains(t, q, "ps:P348 ?version")
	assert.Contains(t, q, "ORDER BY DESC(?rank)")
}

func TestQueryServiceVersion(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/sparql-results+json")
		io.WriteString(w, `{
			"head": {"vars": ["version", "published", "rank"]},
			"results": {"bindings": [{
				"version": {"type": "literal", "value": "1.22.0"},
				"published": {"type": "literal", "datatype": "http://www.w3.org/2001/XMLSchema#dateTime", "value": "2024-06-01T00:00:00Z"},
				"rank": {"type": "uri", "value": "http://wikiba.se/ontology#PreferredRank"}
			}]}
		}`)
	}))
	defer srv.Close()

	repo, err := newQueryServiceRepo(srv.URL)
	require.NoError(t, err)

	version, published, err := queryServiceVersion(repo, "Q42")
	require.NoError(t, err)
	assert.Equal(t, "1.22.0", version)
	assert.Equal(t, "2024-06-01", published)
}

func TestQueryServiceVersionNoSolutions(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/sparql-results+json")
		io.WriteString(w, `{"head":{"vars":["version","published","rank"]},"results":{"bindings":[]}}`)
	}))
	defer srv.Close()

	repo, err := newQueryServiceRepo(srv.URL)
	require.NoError(t, err)

	_, _, err = queryServiceVersion(repo, "Q42")
	require.Error(t, err)
}

func TestFormatStatementDate(t *testing.T) {
	solution := func(value string) map[string]rdf.Term {
		lit, err := rdf.NewLiteral(value)
		require.NoError(t, err)
		return map[string]rdf.Term{"published": lit}
	}

	assert.Equal(t, "2024-06-01", formatStatementDate(solution("2024-06-01T00:00:00Z"), "published"))
	assert.Equal(t, "2024-06-01", formatStatementDate(solution("+2024-06-01T00:00:00Z"), "published"))
	assert.Equal(t, "June 2024", formatStatementDate(solution("+2024-06-00T00:00:00Z"), "published"))
	assert.Equal(t, "2024", formatStatementDate(solution("+2024-00-00T00:00:00Z"), "published"))
	assert.Equal(t, "", formatStatementDate(solution("not a date"), "published"))
	assert.Equal(t, "", formatStatementDate(map[string]rdf.Term{}, "published"))
}
