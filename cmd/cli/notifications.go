package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

var notificationsCmd = &cobra.Command{
	Use:     "notifications",
	Aliases: []string{"notifs"},
	Short:   "List your notifications",
	RunE: func(cmd *cobra.Command, args []string) error {
		return listNotifications()
	},
}

var notificationCountsCmd = &cobra.Command{
	Use:   "counts",
	Short: "Show unseen and unread notification counts",
	RunE: func(cmd *cobra.Command, args []string) error {
		body, err := apiGet("/api/v1/notifications/counts")
		if err != nil {
			return err
		}
		if output == "json" {
			fmt.Println(string(body))
			return nil
		}
		var resp struct {
			Unseen int64 `json:"unseen"`
			Unread int64 `json:"unread"`
		}
		if err := json.Unmarshal(body, &resp); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
		fmt.Printf("unseen: %d\nunread: %d\n", resp.Unseen, resp.Unread)
		return nil
	},
}

var markSeenCmd = &cobra.Command{
	Use:   "seen",
	Short: "Mark all notifications as seen",
	RunE: func(cmd *cobra.Command, args []string) error {
		if _, err := apiDo("POST", "/api/v1/notifications/seen", nil); err != nil {
			return err
		}
		fmt.Println("all notifications marked seen")
		return nil
	},
}

var markReadAllCmd = &cobra.Command{
	Use:   "read-all",
	Short: "Mark all notifications as read",
	RunE: func(cmd *cobra.Command, args []string) error {
		if _, err := apiDo("POST", "/api/v1/notifications/read-all", nil); err != nil {
			return err
		}
		fmt.Println("all notifications marked read")
		return nil
	},
}

func init() {
	notificationsCmd.AddCommand(notificationCountsCmd)
	notificationsCmd.AddCommand(markSeenCmd)
	notificationsCmd.AddCommand(markReadAllCmd)
}

type notificationItem struct {
	ID    string `json:"id"`
	Kind  string `json:"kind"`
	Actor struct {
		Username string `json:"username"`
	} `json:"actor"`
	StoryID   *string `json:"story_id"`
	IsRead    bool    `json:"is_read"`
	CreatedAt string  `json:"created_at"`
}

func listNotifications() error {
	body, err := apiGet("/api/v1/notifications")
	if err != nil {
		return err
	}

	if output == "json" {
		fmt.Println(string(body))
		return nil
	}

	var resp struct {
		Notifications []notificationItem `json:"notifications"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	if len(resp.Notifications) == 0 {
		fmt.Println("no notifications")
		return nil
	}
	for _, n := range resp.Notifications {
		marker := " "
		if !n.IsRead {
			marker = "*"
		}
		line := fmt.Sprintf("%s [%s] %s", marker, n.Kind, n.Actor.Username)
		if n.StoryID != nil {
			line += " on story " + *n.StoryID
		}
		fmt.Printf("%s  (%s)\n", line, n.CreatedAt)
	}
	return nil
}
