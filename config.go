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
	"fmt"
	"os"

	"gopkg.in/ini.v1"
)

const (
	envUsername    = "WIKIDATA_BOT_USERNAME"
	envPassword    = "WIKIDATA_BOT_PASSWORD"
	envSessionFile = "WIKIDATA_SESSION_FILE"
	envConfigFile  = "WIKIDATA_CONFIG_FILE"

	defaultConfigFile = "config"
)

// Credentials is the resolved bot login, plus an optional session file
// override. The password is never persisted; only the cookies a login
// produces end up on disk.
type Credentials struct {
	Username    string
	Password    string
	SessionFile string
}

// resolveCredentials works through the three supply methods in priority
// order: explicit flag values, then environment variables, then the INI
// config file. Session file overrides follow the same precedence at
// every step.
func resolveCredentials(username, password, sessionFile, configFile string) (*Credentials, error) {
	if username != "" && password != "" {
		return &Credentials{
			Username:    username,
			Password:    password,
			SessionFile: sessionFile,
		}, nil
	}

	if u, p := os.Getenv(envUsername), os.Getenv(envPassword); u != "" && p != "" {
		sf := sessionFile
		if sf == "" {
			sf = os.Getenv(envSessionFile)
		}
		return &Credentials{Username: u, Password: p, SessionFile: sf}, nil
	}

	path := configFile
	if path == "" {
		path = os.Getenv(envConfigFile)
	}
	if path == "" {
		path = defaultConfigFile
	}

	if _, err := os.Stat(path); err != nil {
		printCredentialHelp(path)
		return nil, fmt.Errorf("config file %s not found and no environment variables set", path)
	}

	cfg, err := ini.Load(path)
	if err != nil {
		return nil, fmt.Errorf("error reading config file %s: %w", path, err)
	}
	bot, err := cfg.GetSection("bot")
	if err != nil {
		return nil, fmt.Errorf("error reading config file %s: config must contain [bot] section", path)
	}
	if !bot.HasKey("username") || !bot.HasKey("password") {
		return nil, fmt.Errorf("error reading config file %s: [bot] section must contain 'username' and 'password'", path)
	}

	sf := sessionFile
	if sf == "" {
		sf = os.Getenv(envSessionFile)
	}
	if sf == "" {
		sf = bot.Key("session_file").String()
	}

	return &Credentials{
		Username:    bot.Key("username").String(),
		Password:    bot.Key("password").String(),
		SessionFile: sf,
	}, nil
}

func printCredentialHelp(configPath string) {
	fmt.Printf("Config file %s not found and no environment variables set.\n", configPath)
	fmt.Println("Please either:")
	fmt.Println("1. Create a config file with your bot credentials:")
	fmt.Println("   [bot]")
	fmt.Println("   username = YourBot@YourApp")
	fmt.Println("   password = your_password")
	fmt.Println("2. Set environment variables:")
	fmt.Println("   export WIKIDATA_BOT_USERNAME=YourBot@YourApp")
	fmt.Println("   export WIKIDATA_BOT_PASSWORD=your_password")
	fmt.Println("3. Use command line options: --username and --password")
	fmt.Println()
	fmt.Println("Config file location can be configured with:")
	fmt.Println("- Command line: --config-file /path/to/config")
	fmt.Println("- Environment: export WIKIDATA_CONFIG_FILE=/path/to/config")
	fmt.Println()
	fmt.Println("Session file location can be configured with:")
	fmt.Println("- Command line: --session-file /path/to/session.json")
	fmt.Println("- Environment: export WIKIDATA_SESSION_FILE=/path/to/session.json")
	fmt.Println("- Config file: session_file = /path/to/session.json")
}
