package main

import (
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
)

// fakeWikidata is a stand-in action API. It answers the handful of
// actions the tool uses and records every request it sees.
type fakeWikidata struct {
	t *testing.T

	// canned responses, overridable per test
	userinfo    string
	entities    string
	loginResult string

	calls []url.Values
}

func newFakeWikidata(t *testing.T) *fakeWikidata {
	return &fakeWikidata{
		t:           t,
		userinfo:    `{"query":{"userinfo":{"id":0,"name":""}}}`,
		entities:    `{"entities":{"Q1":{"id":"Q1","claims":{}}}}`,
		loginResult: `{"login":{"result":"Success","lgusername":"TestBot"}}`,
	}
}

func (f *fakeWikidata) server() *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(f.handler))
}

func (f *fakeWikidata) handler(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		f.t.Errorf("bad request form: %v", err)
		return
	}
	f.calls = append(f.calls, r.Form)

	switch r.Form.Get("action") {
	case "query":
		switch {
		case r.Form.Get("meta") == "tokens" && r.Form.Get("type") == "csrf":
			io.WriteString(w, `{"query":{"tokens":{"csrftoken":"csrf-token+\\"}}}`)
		case r.Form.Get("meta") == "tokens" && r.Form.Get("type") == "login":
			io.WriteString(w, `{"query":{"tokens":{"logintoken":"login-token+\\"}}}`)
		case r.Form.Get("meta") == "userinfo":
			io.WriteString(w, f.userinfo)
		default:
			f.t.Errorf("unexpected query request: %v", r.Form)
		}
	case "login":
		http.SetCookie(w, &http.Cookie{Name: "wikidatasession", Value: "fresh-cookie", Path: "/"})
		io.WriteString(w, f.loginResult)
	case "wbgetentities":
		io.WriteString(w, f.entities)
	case "wbcreateclaim":
		io.WriteString(w, `{"success":1,"claim":{"id":"Q1$NEW-CLAIM-GUID"}}`)
	case "wbsetclaimrank", "wbsetqualifier":
		io.WriteString(w, `{"success":1}`)
	default:
		f.t.Errorf("unexpected action: %q", r.Form.Get("action"))
	}
}

// newCannedServer answers every request with the same body.
func newCannedServer(body string) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, body)
	}))
}

// callsFor returns the recorded requests for one API action, in order.
func (f *fakeWikidata) callsFor(action string) []url.Values {
	var matched []url.Values
	for _, call := range f.calls {
		if call.Get("action") == action {
			matched = append(matched, call)
		}
	}
	return matched
}
