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
	"errors"
	"fmt"
	"os"
	"os/signal"
	"regexp"
	"time"

	"github.com/antonholmquist/jason"
	"github.com/spf13/cobra"
)

const (
	apiEndpoint = "https://www.wikidata.org/w/api.php"
	userAgent   = "wikidata-version-update/0.1"
)

var qidRegex = regexp.MustCompile(`^Q[0-9]+$`)

var (
	flagDryRun      bool
	flagUsername    string
	flagPassword    string
	flagSessionFile string
	flagConfigFile  string
)

var rootCmd = &cobra.Command{
	Use:   "wikidata-version-update QID VERSION RELEASE_DATE",
	Short: "Update software version information on Wikidata",
	Long: `Update software version information on Wikidata.

QID is the Wikidata item ID (e.g. Q305892 for dpkg), VERSION the new
version number (e.g. 1.22.0) and RELEASE_DATE its release date in ISO
format (YYYY-MM-DD).

Previous preferred version statements are downgraded to normal rank and
the new version is added with preferred rank and a publication date
qualifier.`,
	Args:          cobra.ExactArgs(3),
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return run(cmd.Context(), apiEndpoint, args[0], args[1], args[2])
	},
}

func init() {
	rootCmd.Version = "0.1.0"
	rootCmd.Flags().BoolVar(&flagDryRun, "dry-run", false, "show what would be done without making changes")
	rootCmd.Flags().StringVar(&flagUsername, "username", "", "Wikidata bot username (overrides config file and environment)")
	rootCmd.Flags().StringVar(&flagPassword, "password", "", "Wikidata bot password (overrides config file and environment)")
	rootCmd.Flags().StringVar(&flagSessionFile, "session-file", "", "path to session file (overrides config file and environment)")
	rootCmd.Flags().StringVar(&flagConfigFile, "config-file", "", "path to config file (overrides environment variable and default)")
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		if errors.Is(err, context.Canceled) {
			fmt.Println("\nOperation cancelled by user.")
			os.Exit(1)
		}
		fmt.Println("Error:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, endpoint, qid, version, releaseDate string) error {
	// both inputs are checked before any network activity
	if err := validateQID(qid); err != nil {
		return err
	}
	if err := validateDate(releaseDate); err != nil {
		return err
	}

	creds, err := resolveCredentials(flagUsername, flagPassword, flagSessionFile, flagConfigFile)
	if err != nil {
		return err
	}

	c, err := authenticatedSession(ctx, creds, endpoint)
	if err != nil {
		return err
	}

	fmt.Printf("Updating software version for %s\n", qid)
	fmt.Printf("New version: %s\n", version)
	fmt.Printf("Release date: %s\n", releaseDate)

	if flagDryRun {
		fmt.Println("\n--- DRY RUN MODE ---")
	}

	fmt.Println("\nGetting existing version statements...")
	statements, err := versionStatements(ctx, c, qid)
	if err != nil {
		return err
	}

	if len(statements) > 0 {
		fmt.Printf("Found %d existing version statements\n", len(statements))

		preferred := preferredVersions(statements)
		if len(preferred) > 0 {
			fmt.Println("Current preferred versions:")
			for _, v := range preferred {
				fmt.Printf("  - %s\n", v)
			}
		}

		if !flagDryRun {
			fmt.Println("\nDowngrading previous preferred versions to normal rank...")
			if err := downgradeVersionRanks(ctx, c, statements); err != nil {
				return err
			}
		}
	} else {
		fmt.Println("No existing version statements found")
	}

	if flagDryRun {
		reportQueryService(qid)
		fmt.Printf("\n[DRY RUN] Would add version %s with preferred rank and release date %s\n",
			version, releaseDate)
		return nil
	}

	fmt.Println("\nAdding new version statement...")
	if err := addVersionStatement(ctx, c, qid, version, releaseDate); err != nil {
		return err
	}

	fmt.Printf("\nSuccessfully updated %s with version %s\n", qid, version)
	return nil
}

// preferredVersions pulls the value strings of the statements currently
// at preferred rank.
func preferredVersions(statements []*jason.Object) []string {
	var versions []string
	for _, statement := range statements {
		rank, err := statement.GetString("rank")
		if err != nil || rank != "preferred" {
			continue
		}
		value, err := statement.GetString("mainsnak", "datavalue", "value")
		if err != nil {
			continue
		}
		versions = append(versions, value)
	}
	return versions
}

func validateQID(qid string) error {
	if !qidRegex.MatchString(qid) {
		return fmt.Errorf("QID must be in format Q123456, got %q", qid)
	}
	return nil
}

func validateDate(date string) error {
	if _, err := time.Parse("2006-01-02", date); err != nil {
		return fmt.Errorf("date must be in ISO format (YYYY-MM-DD), got %q", date)
	}
	return nil
}
