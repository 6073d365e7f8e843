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

func newTaskCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "task",
		Short: "Manage tasks",
	}

	cmd.AddCommand(newTaskCreateCommand())
	cmd.AddCommand(newTaskGetCommand())
	cmd.AddCommand(newTaskListCommand())
	cmd.AddCommand(newTaskSetCommand())
	cmd.AddCommand(newTaskClaimCommand())
	cmd.AddCommand(newTaskCompleteCommand())
	cmd.AddCommand(newTaskAnalysisCommand())

	return cmd
}

func newTaskCreateCommand() *cobra.Command {
	var storyID string
	var title string
	var description string
	var estimatedHours int

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a task under a story",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if title == "" {
				return fmt.Errorf("title is required")
			}
			story, err := uuid.Parse(storyID)
			if err != nil {
				return fmt.Errorf("story-id must be a UUID: %w", err)
			}

			req := models.CreateTaskRequest{
				StoryID:     story,
				Title:       title,
				Description: description,
			}
			if estimatedHours > 0 {
				req.EstimatedHours = &estimatedHours
			}

			client := cliapi.NewClient(cfg.APIURL)
			task, err := client.CreateTask(context.Background(), req)
			if err != nil {
				return err
			}

			cmd.Println(successStyle.Render("Task created"))
			cmd.Println(renderTaskDetails(*task))
			return nil
		},
	}

	cmd.Flags().StringVar(&storyID, "story-id", "", "Story UUID")
	cmd.Flags().StringVar(&title, "title", "", "Task title")
	cmd.Flags().StringVar(&description, "description", "", "Task description")
	cmd.Flags().IntVar(&estimatedHours, "estimated-hours", 0, "Estimated hours of work")
	_ = cmd.MarkFlagRequired("story-id")
	_ = cmd.MarkFlagRequired("title")

	return cmd
}

func newTaskGetCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "get <task-id>",
		Short: "Get a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("task-id must be a UUID: %w", err)
			}

			client := cliapi.NewClient(cfg.APIURL)
			task, err := client.GetTask(context.Background(), id)
			if err != nil {
				return err
			}

			cmd.Println(headerStyle.Render("Task details"))
			cmd.Println(renderTaskDetails(*task))
			return nil
		},
	}

	return cmd
}

func newTaskListCommand() *cobra.Command {
	var storyID string
	var ownerUserID string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List tasks for a story, or tasks owned by a user",
		RunE: func(cmd *cobra.Command, _ []string) error {
			client := cliapi.NewClient(cfg.APIURL)

			if storyID != "" {
				story, err := uuid.Parse(storyID)
				if err != nil {
					return fmt.Errorf("story-id must be a UUID: %w", err)
				}
				tasks, err := client.ListTasksByStory(context.Background(), story)
				if err != nil {
					return err
				}
				cmd.Println(renderTaskList(tasks))
				return nil
			}

			if ownerUserID == "" {
				return fmt.Errorf("either --story-id or --owner-user-id is required")
			}
			owner, err := uuid.Parse(ownerUserID)
			if err != nil {
				return fmt.Errorf("owner-user-id must be a UUID: %w", err)
			}
			tasks, err := client.ListOwnedTasks(context.Background(), owner)
			if err != nil {
				return err
			}
			cmd.Println(renderTaskList(tasks))
			return nil
		},
	}

	cmd.Flags().StringVar(&storyID, "story-id", "", "Story UUID")
	cmd.Flags().StringVar(&ownerUserID, "owner-user-id", "", "Owner user UUID")

	return cmd
}

func newTaskSetCommand() *cobra.Command {
	var title string
	var description string
	var estimatedHours int

	cmd := &cobra.Command{
		Use:   "set <task-id>",
		Short: "Update a task's plain fields",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("task-id must be a UUID: %w", err)
			}

			req := models.UpdateTaskRequest{}
			if title != "" {
				req.Title = &title
			}
			if description != "" {
				req.Description = &description
			}
			if estimatedHours > 0 {
				req.EstimatedHours = &estimatedHours
			}

			client := cliapi.NewClient(cfg.APIURL)
			task, err := client.UpdateTask(context.Background(), id, req)
			if err != nil {
				return err
			}

			cmd.Println(successStyle.Render("Task updated"))
			cmd.Println(renderTaskDetails(*task))
			return nil
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "Task title")
	cmd.Flags().StringVar(&description, "description", "", "Task description")
	cmd.Flags().IntVar(&estimatedHours, "estimated-hours", 0, "Estimated hours of work")

	return cmd
}

func newTaskClaimCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "claim <task-id>",
		Short: "Atomically claim ownership of a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTaskAction(cmd, args[0], domain.ActionTakeOwnership)
		},
	}

	return cmd
}

func newTaskCompleteCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "complete <task-id>",
		Short: "Mark an owned task complete",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTaskAction(cmd, args[0], domain.ActionCompleteTask)
		},
	}

	return cmd
}

func runTaskAction(cmd *cobra.Command, taskID string, actionType domain.ActionType) error {
	id, err := uuid.Parse(taskID)
	if err != nil {
		return fmt.Errorf("task-id must be a UUID: %w", err)
	}

	req := models.ActRequest{
		ActionType:     actionType,
		TargetEntities: []uuid.UUID{id},
	}

	client := cliapi.NewClient(cfg.APIURL)
	res, err := client.Act(context.Background(), req)
	if err != nil {
		return err
	}

	if res.Success {
		cmd.Println(successStyle.Render(fmt.Sprintf("%s succeeded", actionType)))
	} else {
		cmd.Println(errorStyle.Render(fmt.Sprintf("%s failed", actionType)))
	}
	cmd.Println(renderActResult(*res))
	return nil
}

func newTaskAnalysisCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analysis <task-id>",
		Short: "Score a task's clarity and suggest refinements",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("task-id must be a UUID: %w", err)
			}

			client := cliapi.NewClient(cfg.APIURL)
			analysis, err := client.TaskAnalysis(context.Background(), id)
			if err != nil {
				return err
			}

			cmd.Println(renderTaskAnalysis(*analysis))
			return nil
		},
	}

	return cmd
}
