package main

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/spf13/cobra"
)

var followCmd = &cobra.Command{
	Use:   "follow",
	Short: "Manage user and story follows",
}

var followUserCmd = &cobra.Command{
	Use:   "user <user-id>",
	Short: "Follow a user",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return mutateFollow(http.MethodPut, "/api/v1/users/"+args[0]+"/follow")
	},
}

var unfollowUserCmd = &cobra.Command{
	Use:   "unfollow-user <user-id>",
	Short: "Unfollow a user",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return mutateFollow(http.MethodDelete, "/api/v1/users/"+args[0]+"/follow")
	},
}

var toggleUserCmd = &cobra.Command{
	Use:   "toggle-user <user-id>",
	Short: "Toggle a user follow",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return mutateFollow(http.MethodPost, "/api/v1/users/"+args[0]+"/follow/toggle")
	},
}

var followStoryCmd = &cobra.Command{
	Use:   "story <story-id>",
	Short: "Follow a story",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return mutateFollow(http.MethodPut, "/api/v1/stories/"+args[0]+"/follow")
	},
}

var unfollowStoryCmd = &cobra.Command{
	Use:   "unfollow-story <story-id>",
	Short: "Unfollow a story",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return mutateFollow(http.MethodDelete, "/api/v1/stories/"+args[0]+"/follow")
	},
}

var toggleStoryCmd = &cobra.Command{
	Use:   "toggle-story <story-id>",
	Short: "Toggle a story follow",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return mutateFollow(http.MethodPost, "/api/v1/stories/"+args[0]+"/follow/toggle")
	},
}

func init() {
	followCmd.AddCommand(followUserCmd)
	followCmd.AddCommand(unfollowUserCmd)
	followCmd.AddCommand(toggleUserCmd)
	followCmd.AddCommand(followStoryCmd)
	followCmd.AddCommand(unfollowStoryCmd)
	followCmd.AddCommand(toggleStoryCmd)
}

func mutateFollow(method, path string) error {
	body, err := apiDo(method, path, nil)
	if err != nil {
		return err
	}

	if output == "json" {
		fmt.Println(string(body))
		return nil
	}

	var resp struct {
		Following bool `json:"following"`
		Changed   bool `json:"changed"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	state := "not following"
	if resp.Following {
		state = "following"
	}
	if resp.Changed {
		fmt.Printf("done: now %s\n", state)
	} else {
		fmt.Printf("no change: already %s\n", state)
	}
	return nil
}
