package main

//
// wikidata-version-update, a software version updater for Wikidata
// Copyright (C) 2026

// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.

// You should have received a copy of the GNU General Public License
// along with this program.  If not, see <http://www.gnu.org/licenses/>.
//

import (
	"bytes"
	"fmt"
	"log"
	"time"

	"github.com/knakk/rdf"
	"github.com/knakk/sparql"
)

const queries = `
# Picks the statement the query service currently treats as the version:
# highest rank first, then latest publication date.
# tag: current-version
SELECT ?version ?published ?rank WHERE {
  wd:{{.Entity}} p:{{.Property}} ?statement.
  ?statement ps:{{.Property}} ?version;
    wikibase:rank ?rank.
  OPTIONAL { ?statement pq:P577 ?published. }
}
ORDER BY DESC(?rank) DESC(?published) LIMIT 1
`

var queryServiceURL = "https://query.wikidata.org/sparql"

var queryBank sparql.Bank

func init() {
	queryBank = sparql.LoadBank(bytes.NewBufferString(queries))
}

func newQueryServiceRepo(endpoint string) (*sparql.Repo, error) {
	return sparql.NewRepo(endpoint, sparql.Timeout(time.Millisecond*1500))
}

// queryServiceVersion asks the query service which version statement
// currently wins on rank for the entity, returning the value and its
// publication date formatted for display (empty when no usable date).
func queryServiceVersion(repo *sparql.Repo, qid string) (version, published string, err error) {
	q, err := queryBank.Prepare("current-version",
		struct{ Entity, Property string }{qid, propSoftwareVersion})
	if err != nil {
		return "", "", err
	}

	res, err := repo.Query(q)
	if err != nil {
		return "", "", err
	}

	solutions := res.Solutions()
	if len(solutions) < 1 {
		return "", "", fmt.Errorf("query service knows no version statements for %s", qid)
	}

	solution := solutions[0]
	value, ok := solution["version"]
	if !ok {
		return "", "", fmt.Errorf("query service returned no version value for %s", qid)
	}

	return value.String(), formatStatementDate(solution, "published"), nil
}

// formatStatementDate renders a Wikibase time from a query solution at
// whatever precision it carries.
func formatStatementDate(solution map[string]rdf.Term, field string) string {
	dateField, ok := solution[field]
	if !ok {
		return ""
	}
	date := dateField.String()
	if date == "" {
		return ""
	}

	for _, layout := range []string{"2006-01-02T15:04:05Z", "+2006-01-02T15:04:05Z"} {
		if parsed, err := time.Parse(layout, date); err == nil {
			return parsed.Format("2006-01-02")
		}
	}

	// Month and year precision dates use 00 placeholders, which the full
	// layouts refuse because 00 is not a valid month or day.
	if parsed, err := time.Parse("+2006-01-00T00:00:00Z", date); err == nil {
		return parsed.Format("January 2006")
	}
	if parsed, err := time.Parse("+2006-00-00T00:00:00Z", date); err == nil {
		return parsed.Format("2006")
	}
	return ""
}

// reportQueryService prints what the query service currently believes
// the version is. It is informational only, so a query service outage
// does not block a dry run.
func reportQueryService(qid string) {
	repo, err := newQueryServiceRepo(queryServiceURL)
	if err != nil {
		log.Println("Could not set up query service repository:", err)
		return
	}

	version, published, err := queryServiceVersion(repo, qid)
	if err != nil {
		log.Println("Query service lookup failed:", err)
		return
	}

	if published != "" {
		fmt.Printf("Query service currently reports version %s (published %s)\n", version, published)
	} else {
		fmt.Printf("Query service currently reports version %s\n", version)
	}
}
