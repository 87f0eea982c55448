package main

import (
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/spf13/cobra"
)

var (
	feedQuery    string
	feedSort     string
	feedPage     int
	feedPageSize int
	feedRefresh  bool
)

var feedCmd = &cobra.Command{
	Use:   "feed",
	Short: "Show your feed",
	Long:  "Fetch your feed from the server with the same filtering, sorting and pagination the app uses.",
	RunE: func(cmd *cobra.Command, args []string) error {
		return showFeed()
	},
}

func init() {
	feedCmd.Flags().StringVarP(&feedQuery, "query", "q", "", "Filter by name, description or author")
	feedCmd.Flags().StringVarP(&feedSort, "sort", "s", "recent", "Sort mode: recent, oldest, records, alphabetical")
	feedCmd.Flags().IntVarP(&feedPage, "page", "p", 1, "Page number")
	feedCmd.Flags().IntVar(&feedPageSize, "page-size", 20, "Entries per page")
	feedCmd.Flags().BoolVar(&feedRefresh, "refresh", false, "Bypass the server-side cache")
}

type feedEntry struct {
	StoryID     string `json:"story_id"`
	Name        string `json:"name"`
	AuthorName  string `json:"author_name"`
	RecordCount int64  `json:"record_count"`
	LastUpdated string `json:"last_updated"`
	IsOwnStory  bool   `json:"is_own_story"`
}

type feedResponse struct {
	Entries    []feedEntry `json:"entries"`
	Page       int         `json:"page"`
	TotalPages int         `json:"total_pages"`
	Total      int         `json:"total"`
	Stale      bool        `json:"stale"`
}

func showFeed() error {
	params := url.Values{}
	if feedQuery != "" {
		params.Set("q", feedQuery)
	}
	params.Set("sort", feedSort)
	params.Set("page", fmt.Sprint(feedPage))
	params.Set("page_size", fmt.Sprint(feedPageSize))
	if feedRefresh {
		params.Set("refresh", "true")
	}

	body, err := apiGet("/api/v1/feed?" + params.Encode())
	if err != nil {
		return err
	}

	if output == "json" {
		fmt.Println(string(body))
		return nil
	}

	var resp feedResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	if resp.Stale {
		fmt.Println("warning: showing stale feed, the last refresh failed")
	}
	for _, e := range resp.Entries {
		marker := " "
		if e.IsOwnStory {
			marker = "*"
		}
		fmt.Printf("%s %-40s by %-20s %4d records  %s\n",
			marker, e.Name, e.AuthorName, e.RecordCount, e.LastUpdated)
	}
	fmt.Printf("\npage %d of %d (%d entries total)\n", resp.Page, resp.TotalPages, resp.Total)
	return nil
}
