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
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"

	"cgt.name/pkg/go-mwclient/params"
	"github.com/antonholmquist/jason"
)

// Client talks to a single MediaWiki action API endpoint. The endpoint
// URL and User-Agent are fixed at construction; cookies live in the
// client's jar and can be seeded from or dumped to a session record.
type Client struct {
	endpoint  *url.URL
	userAgent string
	http      *http.Client
}

// TransportError is a network-level failure: the request never produced
// a response body to interpret.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string { return "request failed: " + e.Err.Error() }
func (e *TransportError) Unwrap() error { return e.Err }

// ParseError means the response body was not JSON. Body holds the raw
// response for diagnosis.
type ParseError struct {
	Body []byte
	Err  error
}

func (e *ParseError) Error() string { return "failed to parse JSON response: " + e.Err.Error() }
func (e *ParseError) Unwrap() error { return e.Err }

// APIError is an error the API itself reported through the "error" key
// of an otherwise well-formed response.
type APIError struct {
	Code    string
	Info    string
	Payload json.RawMessage
}

func (e *APIError) Error() string {
	return fmt.Sprintf("Wikidata API error: %s", string(e.Payload))
}

// ShapeError means the response parsed as JSON but did not have the
// structure the caller expected.
type ShapeError struct {
	What string
	Err  error
}

func (e *ShapeError) Error() string {
	if e.Err != nil {
		return e.What + ": " + e.Err.Error()
	}
	return e.What
}

func (e *ShapeError) Unwrap() error { return e.Err }

func newClient(endpoint, userAgent string) (*Client, error) {
	u, err := url.Parse(endpoint)
	if err != nil {
		return nil, fmt.Errorf("invalid API endpoint %q: %w", endpoint, err)
	}
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}
	return &Client{
		endpoint:  u,
		userAgent: userAgent,
		http:      &http.Client{Jar: jar},
	}, nil
}

// setCookies seeds the jar with the name/value pairs of a saved session.
func (c *Client) setCookies(cookies map[string]string) {
	set := make([]*http.Cookie, 0, len(cookies))
	for name, value := range cookies {
		set = append(set, &http.Cookie{Name: name, Value: value})
	}
	c.http.Jar.SetCookies(c.endpoint, set)
}

// cookies dumps the jar's current cookies for the endpoint as a
// name/value map, ready to be persisted.
func (c *Client) cookies() map[string]string {
	dump := map[string]string{}
	for _, cookie := range c.http.Jar.Cookies(c.endpoint) {
		dump[cookie.Name] = cookie.Value
	}
	return dump
}

// Get sends the given parameters, merged over the client defaults, as a
// query string.
func (c *Client) Get(ctx context.Context, p params.Values) (*jason.Object, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.endpoint.String()+"?"+c.withDefaults(p).Encode(), nil)
	if err != nil {
		return nil, err
	}
	return c.do(req)
}

// Post sends the given parameters, merged over the client defaults, as a
// form-encoded body.
func (c *Client) Post(ctx context.Context, p params.Values) (*jason.Object, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.endpoint.String(), strings.NewReader(c.withDefaults(p).Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return c.do(req)
}

// withDefaults merges caller parameters over the fixed request defaults.
// Callers win on conflict.
func (c *Client) withDefaults(p params.Values) params.Values {
	merged := params.Values{
		"format":        "json",
		"formatversion": "2",
	}
	for key, value := range p {
		merged[key] = value
	}
	return merged
}

func (c *Client) do(req *http.Request) (*jason.Object, error) {
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &TransportError{Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{Err: err}
	}

	value, err := jason.NewValueFromBytes(body)
	if err != nil {
		fmt.Println("Failed to parse JSON response:")
		fmt.Println(string(body))
		return nil, &ParseError{Body: body, Err: err}
	}

	data, err := value.Object()
	if err != nil {
		return nil, &ShapeError{What: "invalid response type from API", Err: err}
	}

	if _, err := data.GetValue("error"); err == nil {
		var payload struct {
			Error json.RawMessage `json:"error"`
		}
		// body already parsed once above, so this cannot fail
		_ = json.Unmarshal(body, &payload)
		code, _ := data.GetString("error", "code")
		info, _ := data.GetString("error", "info")
		fmt.Printf("API Error: %s\n", string(payload.Error))
		return nil, &APIError{Code: code, Info: info, Payload: payload.Error}
	}

	return data, nil
}
