package main

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/jaxxstorm/landlord/internal/api/models"
	cliapi "github.com/jaxxstorm/landlord/internal/cli"
	"github.com/jaxxstorm/landlord/internal/domain"
	"github.com/spf13/cobra"
)

func newStoryCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "story",
		Short: "Manage stories",
	}

	cmd.AddCommand(newStoryCreateCommand())
	cmd.AddCommand(newStoryGetCommand())
	cmd.AddCommand(newStoryListCommand())
	cmd.AddCommand(newStorySetCommand())
	cmd.AddCommand(newStoryDeleteCommand())
	cmd.AddCommand(newStoryReadinessCommand())

	return cmd
}

func newStoryCreateCommand() *cobra.Command {
	var projectID string
	var title string
	var description string
	var storyPoints int

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a story",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if title == "" {
				return fmt.Errorf("title is required")
			}
			project, err := uuid.Parse(projectID)
			if err != nil {
				return fmt.Errorf("project-id must be a UUID: %w", err)
			}

			req := models.CreateStoryRequest{
				ProjectID:   project,
				Title:       title,
				Description: description,
			}
			if storyPoints > 0 {
				req.StoryPoints = &storyPoints
			}

			client := cliapi.NewClient(cfg.APIURL)
			story, err := client.CreateStory(context.Background(), req)
			if err != nil {
				return err
			}

			cmd.Println(successStyle.Render("Story created"))
			cmd.Println(renderStoryDetails(*story))
			return nil
		},
	}

	cmd.Flags().StringVar(&projectID, "project-id", "", "Project UUID")
	cmd.Flags().StringVar(&title, "title", "", "Story title")
	cmd.Flags().StringVar(&description, "description", "", "Story description")
	cmd.Flags().IntVar(&storyPoints, "story-points", 0, "Story point estimate")
	_ = cmd.MarkFlagRequired("project-id")
	_ = cmd.MarkFlagRequired("title")

	return cmd
}

func newStoryGetCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "get <story-id>",
		Short: "Get a story",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("story-id must be a UUID: %w", err)
			}

			client := cliapi.NewClient(cfg.APIURL)
			story, err := client.GetStory(context.Background(), id)
			if err != nil {
				return err
			}

			cmd.Println(headerStyle.Render("Story details"))
			cmd.Println(renderStoryDetails(*story))
			return nil
		},
	}

	return cmd
}

func newStoryListCommand() *cobra.Command {
	var status string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List stories",
		RunE: func(cmd *cobra.Command, _ []string) error {
			client := cliapi.NewClient(cfg.APIURL)
			stories, err := client.ListStories(context.Background(), status)
			if err != nil {
				return err
			}

			cmd.Println(renderStoryList(stories))
			return nil
		},
	}

	cmd.Flags().StringVar(&status, "status", "", "Filter by story status")

	return cmd
}

func newStorySetCommand() *cobra.Command {
	var title string
	var description string
	var status string
	var storyPoints int
	var sprintID string

	cmd := &cobra.Command{
		Use:   "set <story-id>",
		Short: "Update a story",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("story-id must be a UUID: %w", err)
			}

			req := models.UpdateStoryRequest{}
			if title != "" {
				req.Title = &title
			}
			if description != "" {
				req.Description = &description
			}
			if status != "" {
				s := domain.StoryStatus(status)
				req.Status = &s
			}
			if storyPoints > 0 {
				req.StoryPoints = &storyPoints
			}
			if sprintID != "" {
				sprint, err := uuid.Parse(sprintID)
				if err != nil {
					return fmt.Errorf("sprint-id must be a UUID: %w", err)
				}
				req.SprintID = &sprint
			}

			client := cliapi.NewClient(cfg.APIURL)
			story, err := client.UpdateStory(context.Background(), id, req)
			if err != nil {
				return err
			}

			cmd.Println(successStyle.Render("Story updated"))
			cmd.Println(renderStoryDetails(*story))
			return nil
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "Story title")
	cmd.Flags().StringVar(&description, "description", "", "Story description")
	cmd.Flags().StringVar(&status, "status", "", "Story status")
	cmd.Flags().IntVar(&storyPoints, "story-points", 0, "Story point estimate")
	cmd.Flags().StringVar(&sprintID, "sprint-id", "", "Sprint UUID")

	return cmd
}

func newStoryDeleteCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "delete <story-id>",
		Short: "Delete a story",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("story-id must be a UUID: %w", err)
			}

			client := cliapi.NewClient(cfg.APIURL)
			if err := client.DeleteStory(context.Background(), id); err != nil {
				return err
			}

			cmd.Println(successStyle.Render("Story deleted"))
			return nil
		},
	}

	return cmd
}

func newStoryReadinessCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "readiness <story-id>",
		Short: "Evaluate a story's readiness for sprint commitment",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("story-id must be a UUID: %w", err)
			}

			client := cliapi.NewClient(cfg.APIURL)
			eval, err := client.StoryReadiness(context.Background(), id)
			if err != nil {
				return err
			}

			cmd.Println(renderReadiness(*eval))
			return nil
		},
	}

	return cmd
}
