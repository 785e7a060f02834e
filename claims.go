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

	"cgt.name/pkg/go-mwclient/params"
	"github.com/antonholmquist/jason"
)

const (
	propSoftwareVersion = "P348"
	propPublicationDate = "P577"

	gregorianCalendar = "http://www.wikidata.org/entity/Q1985727"
	precisionDay      = 11
)

// timeValue is the Wikibase time datavalue attached as the publication
// date qualifier.
type timeValue struct {
	Time          string `json:"time"`
	Timezone      int    `json:"timezone"`
	Before        int    `json:"before"`
	After         int    `json:"after"`
	Precision     int    `json:"precision"`
	CalendarModel string `json:"calendarmodel"`
}

// versionStatements fetches the entity and returns its software version
// (P348) claims. An entity without claims, without P348, or with a
// non-array P348 field yields an empty list.
func versionStatements(ctx context.Context, c *Client, qid string) ([]*jason.Object, error) {
	data, err := c.Get(ctx, params.Values{"action": "wbgetentities", "ids": qid})
	if err != nil {
		return nil, err
	}

	entity, err := data.GetObject("entities", qid)
	if err != nil {
		return nil, &ShapeError{What: "response missing entity " + qid, Err: err}
	}

	claims, err := entity.GetObjectArray("claims", propSoftwareVersion)
	if err != nil {
		return nil, nil
	}
	return claims, nil
}

// downgradeVersionRanks demotes every statement currently at preferred
// rank to normal rank. Statements already at normal or deprecated rank
// are left alone.
func downgradeVersionRanks(ctx context.Context, c *Client, statements []*jason.Object) error {
	token, err := csrfToken(ctx, c)
	if err != nil {
		return err
	}

	for _, statement := range statements {
		rank, err := statement.GetString("rank")
		if err != nil || rank != "preferred" {
			continue
		}
		claimID, err := statement.GetString("id")
		if err != nil {
			return &ShapeError{What: "statement missing id", Err: err}
		}

		fmt.Printf("Downgrading claim %s to normal rank...\n", claimID)
		_, err = c.Post(ctx, params.Values{
			"action": "wbsetclaimrank",
			"claim":  claimID,
			"rank":   "normal",
			"token":  token,
		})
		if err != nil {
			return err
		}
	}
	return nil
}

// addVersionStatement creates a new P348 claim, promotes it to preferred
// rank and attaches a P577 qualifier at day precision. The three edits
// run in sequence; a failure partway through is left for the entity's
// edit history to recover.
func addVersionStatement(ctx context.Context, c *Client, qid, version, releaseDate string) error {
	token, err := csrfToken(ctx, c)
	if err != nil {
		return err
	}

	fmt.Printf("Adding version %s to %s...\n", version, qid)

	// the API wants snak values JSON-encoded, so a plain string arrives quoted
	value, err := json.Marshal(version)
	if err != nil {
		return err
	}
	data, err := c.Post(ctx, params.Values{
		"action":   "wbcreateclaim",
		"entity":   qid,
		"property": propSoftwareVersion,
		"snaktype": "value",
		"value":    string(value),
		"token":    token,
	})
	if err != nil {
		return err
	}
	claimID, err := data.GetString("claim", "id")
	if err != nil {
		return &ShapeError{What: "wbcreateclaim response missing claim.id", Err: err}
	}
	fmt.Printf("Created claim %s\n", claimID)

	if _, err := c.Post(ctx, params.Values{
		"action": "wbsetclaimrank",
		"claim":  claimID,
		"rank":   "preferred",
		"token":  token,
	}); err != nil {
		return err
	}
	fmt.Println("Set rank to preferred")

	qualifier, err := json.Marshal(timeValue{
		Time:          "+" + releaseDate + "T00:00:00Z",
		Precision:     precisionDay,
		CalendarModel: gregorianCalendar,
	})
	if err != nil {
		return err
	}
	if _, err := c.Post(ctx, params.Values{
		"action":   "wbsetqualifier",
		"claim":    claimID,
		"property": propPublicationDate,
		"snaktype": "value",
		"value":    string(qualifier),
		"token":    token,
	}); err != nil {
		return err
	}
	fmt.Println("Added publication date qualifier")

	return nil
}

// csrfToken fetches a fresh edit token.
func csrfToken(ctx context.Context, c *Client) (string, error) {
	data, err := c.Post(ctx, params.Values{"action": "query", "meta": "tokens", "type": "csrf"})
	if err != nil {
		return "", err
	}
	token, err := data.GetString("query", "tokens", "csrftoken")
	if err != nil {
		return "", &ShapeError{What: "invalid CSRF token returned from API", Err: err}
	}
	return token, nil
}

func loginToken(ctx context.Context, c *Client) (string, error) {
	data, err := c.Get(ctx, params.Values{"action": "query", "meta": "tokens", "type": "login"})
	if err != nil {
		return "", err
	}
	token, err := data.GetString("query", "tokens", "logintoken")
	if err != nil {
		return "", &ShapeError{What: "invalid login token returned from API", Err: err}
	}
	return token, nil
}
