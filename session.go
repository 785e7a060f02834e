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
	"os"
	"path/filepath"

	"cgt.name/pkg/go-mwclient/params"
)

const defaultSessionFileName = ".wikidata_session.json"

// sessionRecord is the on-disk session format: just the cookie set of a
// previously authenticated session.
type sessionRecord struct {
	Cookies map[string]string `json:"cookies"`
}

func defaultSessionPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return defaultSessionFileName
	}
	return filepath.Join(home, defaultSessionFileName)
}

// loadSessionRecord reads a saved session from disk. A missing,
// unreadable or malformed file all count as no session at all; the
// caller falls through to a fresh login.
func loadSessionRecord(path string) *sessionRecord {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil
	}

	var record sessionRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return nil
	}
	if record.Cookies == nil {
		record.Cookies = map[string]string{}
	}
	return &record
}

// saveSessionRecord writes the session to disk. The file holds live auth
// cookies, so 0600 is enforced on every save, not just on create.
func saveSessionRecord(path string, record *sessionRecord) error {
	data, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return err
	}
	return os.Chmod(path, 0o600)
}

// authenticatedSession returns a client that is logged in to the API,
// reusing the on-disk session when it still passes the userinfo probe
// and logging in fresh otherwise. A fresh login overwrites the session
// record with the new cookie set.
func authenticatedSession(ctx context.Context, creds *Credentials, endpoint string) (*Client, error) {
	sessionPath := creds.SessionFile
	if sessionPath == "" {
		sessionPath = defaultSessionPath()
	}

	if record := loadSessionRecord(sessionPath); record != nil {
		fmt.Println("Found existing session, testing...")
		c, err := newClient(endpoint, userAgent)
		if err != nil {
			return nil, err
		}
		c.setCookies(record.Cookies)
		if name := probeUserinfo(ctx, c); name != "" {
			fmt.Printf("Session valid! Logged in as: %s\n", name)
			return c, nil
		}
		fmt.Println("Existing session invalid, logging in again...")
	} else {
		fmt.Println("No existing session found, logging in...")
	}

	c, err := login(ctx, creds.Username, creds.Password, endpoint)
	if err != nil {
		return nil, err
	}

	record := &sessionRecord{Cookies: c.cookies()}
	if err := saveSessionRecord(sessionPath, record); err != nil {
		return nil, fmt.Errorf("saving session file %s: %w", sessionPath, err)
	}
	return c, nil
}

// probeUserinfo asks the API who the session belongs to. An empty name
// means the session is not usable.
func probeUserinfo(ctx context.Context, c *Client) string {
	data, err := c.Get(ctx, params.Values{"action": "query", "meta": "userinfo"})
	if err != nil {
		return ""
	}
	name, err := data.GetString("query", "userinfo", "name")
	if err != nil {
		return ""
	}
	return name
}

// login performs the token + login handshake with a bot password and
// returns the freshly authenticated client.
func login(ctx context.Context, username, password, endpoint string) (*Client, error) {
	c, err := newClient(endpoint, userAgent)
	if err != nil {
		return nil, err
	}

	token, err := loginToken(ctx, c)
	if err != nil {
		return nil, err
	}

	data, err := c.Post(ctx, params.Values{
		"action":     "login",
		"lgname":     username,
		"lgpassword": password,
		"lgtoken":    token,
	})
	if err != nil {
		return nil, fmt.Errorf("login failed: %w", err)
	}

	result, err := data.GetString("login", "result")
	if err != nil {
		return nil, &ShapeError{What: "login response missing login.result", Err: err}
	}
	if result != "Success" {
		reason, err := data.GetString("login", "reason")
		if err != nil {
			reason = result
		}
		return nil, fmt.Errorf("login failed: %s", reason)
	}

	name, err := data.GetString("login", "lgusername")
	if err != nil {
		name = username
	}
	fmt.Printf("Successfully logged in as: %s\n", name)
	return c, nil
}
