package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strconv"

	"github.com/spf13/cobra"
)

var (
	asOf       string
	format     string
	lifetime   bool
	filename   string
	operator   string
	resolution string
	tier       string
	category   string
	eventDate  string
	points     int
	code       string
)

func init() {
	rankingsCmd.Flags().StringVar(&asOf, "as-of", "", "Compute the current view as of YYYY-MM-DD")
	rankingsCmd.Flags().StringVar(&format, "format", "", "Set to csv for a CSV export")
	rankingsCmd.Flags().BoolVar(&lifetime, "lifetime", false, "Show the lifetime view")
	combinedCmd.Flags().StringVar(&asOf, "as-of", "", "Compute the current view as of YYYY-MM-DD")
	combinedCmd.Flags().StringVar(&format, "format", "", "Set to csv for a CSV export")
	combinedCmd.Flags().BoolVar(&lifetime, "lifetime", false, "Show the lifetime view")
	profileCmd.Flags().StringVar(&asOf, "as-of", "", "Compute standings as of YYYY-MM-DD")

	importCmd.Flags().StringVar(&operator, "operator", "", "Who is running the import")
	commitCmd.Flags().StringVar(&operator, "operator", "", "Who is running the import")
	commitCmd.Flags().StringVar(&resolution, "resolutions", "", "JSON file mapping line numbers to resolutions")

	recordCmd.Flags().StringVar(&category, "category", "", "Event category")
	recordCmd.Flags().StringVar(&tier, "tier", "", "Event tier")
	recordCmd.Flags().StringVar(&eventDate, "date", "", "Event date, YYYY-MM-DD")
	recordCmd.Flags().IntVar(&points, "points", -1, "Points for historic events")
	for _, f := range []string{"category", "tier", "date"} {
		recordCmd.MarkFlagRequired(f)
	}
	correctCmd.Flags().IntVar(&points, "points", -1, "Replace the points snapshot; omitted recomputes it from the tier")
	playersCmd.Flags().StringVar(&code, "code", "", "Look a player up by player code")

	rootCmd.AddCommand(healthCmd)
	rootCmd.AddCommand(rankingsCmd)
	rootCmd.AddCommand(combinedCmd)
	rootCmd.AddCommand(profileCmd)
	rootCmd.AddCommand(recordCmd)
	rootCmd.AddCommand(templateCmd)
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(commitCmd)
	rootCmd.AddCommand(batchCmd)
	rootCmd.AddCommand(deleteBatchCmd)
	rootCmd.AddCommand(playersCmd)
	rootCmd.AddCommand(deletePlayerCmd)
	rootCmd.AddCommand(eventsCmd)
	rootCmd.AddCommand(eventCmd)
	rootCmd.AddCommand(visibilityCmd)
	rootCmd.AddCommand(deleteEventCmd)
	rootCmd.AddCommand(correctCmd)
	rootCmd.AddCommand(mergePreviewCmd)
	rootCmd.AddCommand(mergeCmd)
	rootCmd.AddCommand(metricsCmd)
}

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check the health of the server",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performRequest(http.MethodGet, "/health", nil, nil, "")
	},
}

var rankingsCmd = &cobra.Command{
	Use:   "rankings <category>",
	Short: "Show the current or lifetime rankings of a category",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		view := "current"
		if lifetime {
			view = "lifetime"
		}
		return performRequest(http.MethodGet, fmt.Sprintf("/rankings/%s/%s", url.PathEscape(args[0]), view), viewQuery(), nil, "")
	},
}

var combinedCmd = &cobra.Command{
	Use:   "combined <gender>",
	Short: "Show the combined doubles and mixed doubles rankings of a gender",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		q := viewQuery()
		if lifetime {
			q.Set("view", "lifetime")
		}
		return performRequest(http.MethodGet, "/rankings/combined/"+url.PathEscape(args[0]), q, nil, "")
	},
}

var profileCmd = &cobra.Command{
	Use:   "profile <player-id>",
	Short: "Show a player's results and standings",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return performRequest(http.MethodGet, "/players/"+url.PathEscape(args[0]), viewQuery(), nil, "")
	},
}

var recordCmd = &cobra.Command{
	Use:   "record <event-name> <player-id> <position>",
	Short: "Record a single result",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		body := map[string]any{
			"event": map[string]string{
				"name":     args[0],
				"date":     eventDate,
				"category": category,
				"tier":     tier,
			},
			"player_id": args[1],
			"position":  args[2],
		}
		if points >= 0 {
			body["points"] = points
		}
		return postJSON("/results", body)
	},
}

var templateCmd = &cobra.Command{
	Use:   "template",
	Short: "Print the CSV import template",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performRequest(http.MethodGet, "/import/template", nil, nil, "")
	},
}

var importCmd = &cobra.Command{
	Use:   "import <file.csv>",
	Short: "Upload a results CSV; commits unless rows need a decision",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", args[0], err)
		}
		q := url.Values{"filename": {args[0]}, "operator": {operator}}
		return performRequest(http.MethodPost, "/import", q, bytes.NewReader(data), "text/csv")
	},
}

var commitCmd = &cobra.Command{
	Use:   "commit <file.csv>",
	Short: "Commit a CSV with resolutions for flagged rows",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", args[0], err)
		}
		resolutions := map[string]json.RawMessage{}
		if resolution != "" {
			raw, err := os.ReadFile(resolution)
			if err != nil {
				return fmt.Errorf("failed to read %s: %w", resolution, err)
			}
			if err := json.Unmarshal(raw, &resolutions); err != nil {
				return fmt.Errorf("failed to parse resolutions: %w", err)
			}
			for line := range resolutions {
				if _, err := strconv.Atoi(line); err != nil {
					return fmt.Errorf("resolution key %q is not a line number", line)
				}
			}
		}
		return postJSON("/import/commit", map[string]any{
			"filename":    args[0],
			"operator":    operator,
			"csv":         string(data),
			"resolutions": resolutions,
		})
	},
}

var batchCmd = &cobra.Command{
	Use:   "batch <batch-id>",
	Short: "Show an import batch record",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return performRequest(http.MethodGet, "/imports/"+url.PathEscape(args[0]), nil, nil, "")
	},
}

var deleteBatchCmd = &cobra.Command{
	Use:   "delete-batch <batch-id>",
	Short: "Undo an import: delete the batch with its events and results",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return performRequest(http.MethodDelete, "/imports/"+url.PathEscape(args[0]), nil, nil, "")
	},
}

var playersCmd = &cobra.Command{
	Use:   "players",
	Short: "List players, or find one by code",
	RunE: func(cmd *cobra.Command, args []string) error {
		q := url.Values{}
		if code != "" {
			q.Set("code", code)
		}
		return performRequest(http.MethodGet, "/players", q, nil, "")
	},
}

var deletePlayerCmd = &cobra.Command{
	Use:   "delete-player <player-id>",
	Short: "Delete a player and their results",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return performRequest(http.MethodDelete, "/players/"+url.PathEscape(args[0]), nil, nil, "")
	},
}

var eventsCmd = &cobra.Command{
	Use:   "events",
	Short: "List events, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performRequest(http.MethodGet, "/events", nil, nil, "")
	},
}

var eventCmd = &cobra.Command{
	Use:   "event <event-id>",
	Short: "Show an event",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return performRequest(http.MethodGet, "/events/"+url.PathEscape(args[0]), nil, nil, "")
	},
}

var visibilityCmd = &cobra.Command{
	Use:       "visibility <event-id> <public|hidden>",
	Short:     "Hide an event from the rankings or republish it",
	Args:      cobra.ExactArgs(2),
	ValidArgs: []string{"public", "hidden"},
	RunE: func(cmd *cobra.Command, args []string) error {
		return sendJSON(http.MethodPatch, "/events/"+url.PathEscape(args[0]), map[string]string{"visibility": args[1]})
	},
}

var deleteEventCmd = &cobra.Command{
	Use:   "delete-event <event-id>",
	Short: "Delete an event and its results",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return performRequest(http.MethodDelete, "/events/"+url.PathEscape(args[0]), nil, nil, "")
	},
}

var correctCmd = &cobra.Command{
	Use:   "correct <event-id> <result-id> <position>",
	Short: "Correct the position and points of a result",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		body := map[string]any{"position": args[2]}
		if points >= 0 {
			body["points"] = points
		}
		return sendJSON(http.MethodPatch, fmt.Sprintf("/events/%s/results/%s", url.PathEscape(args[0]), url.PathEscape(args[1])), body)
	},
}

var mergePreviewCmd = &cobra.Command{
	Use:   "merge-preview <primary-id> <duplicate-id>",
	Short: "Show what merging two players would change",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		q := url.Values{"primary": {args[0]}, "duplicate": {args[1]}}
		return performRequest(http.MethodGet, "/players/merge/preview", q, nil, "")
	},
}

var mergeCmd = &cobra.Command{
	Use:   "merge <primary-id> <duplicate-id>",
	Short: "Merge a duplicate player into the primary",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return postJSON("/players/merge", map[string]string{"primary_id": args[0], "duplicate_id": args[1]})
	},
}

var metricsCmd = &cobra.Command{
	Use:   "metrics",
	Short: "Get application metrics",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performRequest(http.MethodGet, "/metrics", nil, nil, "")
	},
}

func viewQuery() url.Values {
	q := url.Values{}
	if asOf != "" {
		q.Set("as_of", asOf)
	}
	if format != "" {
		q.Set("format", format)
	}
	return q
}

func postJSON(endpoint string, body any) error {
	return sendJSON(http.MethodPost, endpoint, body)
}

func sendJSON(method, endpoint string, body any) error {
	data, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to encode request: %w", err)
	}
	return performRequest(method, endpoint, nil, bytes.NewReader(data), "application/json")
}

func performRequest(method, endpoint string, query url.Values, body io.Reader, contentType string) error {
	if query == nil {
		query = url.Values{}
	}
	if tenant != "" {
		query.Set("tenant", tenant)
	}
	if dryRun {
		query.Set("dry_run", "true")
	}
	target := host + endpoint
	if len(query) > 0 {
		target += "?" + query.Encode()
	}
	fmt.Printf("Making request to %s\n", target)

	req, err := http.NewRequest(method, target, body)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	fmt.Printf("Status Code: %d\n", resp.StatusCode)
	fmt.Println("Response Body:")
	fmt.Println(string(respBody))

	return nil
}
