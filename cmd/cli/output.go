package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/jaxxstorm/landlord/internal/api/models"
)

var (
	headerStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7D56F4"))
	successStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#04B575"))
	errorStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FF5F5F"))
	labelStyle   = lipgloss.NewStyle().Bold(true)
)

func renderStoryList(stories []models.StoryResponse) string {
	headers := []string{"ID", "Title", "Status", "Points"}
	rows := make([][]string, 0, len(stories))

	for _, s := range stories {
		points := ""
		if s.StoryPoints != nil {
			points = fmt.Sprintf("%d", *s.StoryPoints)
		}
		rows = append(rows, []string{s.ID.String(), s.Title, formatStoryStatus(string(s.Status)), points})
	}

	widths := columnWidths(headers, rows)
	var lines []string
	lines = append(lines, headerStyle.Render(formatRow(headers, widths)))
	for _, row := range rows {
		lines = append(lines, formatRow(row, widths))
	}

	return strings.Join(lines, "\n")
}

func renderStoryDetails(story models.StoryResponse) string {
	lines := []string{
		fmt.Sprintf("%s %s", labelStyle.Render("ID:"), story.ID),
		fmt.Sprintf("%s %s", labelStyle.Render("Project:"), story.ProjectID),
		fmt.Sprintf("%s %s", labelStyle.Render("Title:"), story.Title),
		fmt.Sprintf("%s %s", labelStyle.Render("Status:"), formatStoryStatus(string(story.Status))),
	}

	if story.Description != "" {
		lines = append(lines, fmt.Sprintf("%s %s", labelStyle.Render("Description:"), story.Description))
	}
	if len(story.Labels) > 0 {
		lines = append(lines, fmt.Sprintf("%s %s", labelStyle.Render("Labels:"), strings.Join(story.Labels, ", ")))
	}
	if story.StoryPoints != nil {
		lines = append(lines, fmt.Sprintf("%s %d", labelStyle.Render("Story points:"), *story.StoryPoints))
	}
	if story.SprintID != nil {
		lines = append(lines, fmt.Sprintf("%s %s", labelStyle.Render("Sprint:"), *story.SprintID))
	}
	if story.AssignedToUserID != nil {
		lines = append(lines, fmt.Sprintf("%s %s", labelStyle.Render("Assigned to:"), *story.AssignedToUserID))
	}
	lines = append(lines, fmt.Sprintf("%s %s", labelStyle.Render("Created at:"), story.CreatedAt.Format(time.RFC3339)))
	lines = append(lines, fmt.Sprintf("%s %s", labelStyle.Render("Updated at:"), story.UpdatedAt.Format(time.RFC3339)))

	return strings.Join(lines, "\n")
}

func renderTaskList(tasks []models.TaskResponse) string {
	headers := []string{"ID", "Title", "Status", "Owner"}
	rows := make([][]string, 0, len(tasks))

	for _, t := range tasks {
		owner := ""
		if t.OwnerUserID != nil {
			owner = t.OwnerUserID.String()
		}
		rows = append(rows, []string{t.ID.String(), t.Title, formatTaskStatus(string(t.Status)), owner})
	}

	widths := columnWidths(headers, rows)
	var lines []string
	lines = append(lines, headerStyle.Render(formatRow(headers, widths)))
	for _, row := range rows {
		lines = append(lines, formatRow(row, widths))
	}

	return strings.Join(lines, "\n")
}

func renderTaskDetails(task models.TaskResponse) string {
	lines := []string{
		fmt.Sprintf("%s %s", labelStyle.Render("ID:"), task.ID),
		fmt.Sprintf("%s %s", labelStyle.Render("Story:"), task.StoryID),
		fmt.Sprintf("%s %s", labelStyle.Render("Title:"), task.Title),
		fmt.Sprintf("%s %s", labelStyle.Render("Status:"), formatTaskStatus(string(task.Status))),
	}

	if task.Description != "" {
		lines = append(lines, fmt.Sprintf("%s %s", labelStyle.Render("Description:"), task.Description))
	}
	if len(task.AcceptanceCriteriaRefs) > 0 {
		lines = append(lines, fmt.Sprintf("%s %s", labelStyle.Render("Acceptance criteria:"), strings.Join(task.AcceptanceCriteriaRefs, ", ")))
	}
	if task.OwnerUserID != nil {
		lines = append(lines, fmt.Sprintf("%s %s", labelStyle.Render("Owner:"), *task.OwnerUserID))
	}
	if task.EstimatedHours != nil {
		lines = append(lines, fmt.Sprintf("%s %d", labelStyle.Render("Estimated hours:"), *task.EstimatedHours))
	}
	if task.OwnedAt != nil {
		lines = append(lines, fmt.Sprintf("%s %s", labelStyle.Render("Owned at:"), task.OwnedAt.Format(time.RFC3339)))
	}
	if task.CompletedAt != nil {
		lines = append(lines, fmt.Sprintf("%s %s", labelStyle.Render("Completed at:"), task.CompletedAt.Format(time.RFC3339)))
	}
	lines = append(lines, fmt.Sprintf("%s %s", labelStyle.Render("Created at:"), task.CreatedAt.Format(time.RFC3339)))
	lines = append(lines, fmt.Sprintf("%s %s", labelStyle.Render("Updated at:"), task.UpdatedAt.Format(time.RFC3339)))

	return strings.Join(lines, "\n")
}

func renderReadiness(eval models.ReadinessResponse) string {
	status := "not ready"
	style := errorStyle
	if eval.IsReady {
		status = "ready"
		style = successStyle
	}

	lines := []string{
		fmt.Sprintf("%s %s", labelStyle.Render("Story:"), eval.StoryID),
		fmt.Sprintf("%s %d/100 (%s)", labelStyle.Render("Score:"), eval.Score, style.Render(status)),
	}

	if len(eval.MissingItems) > 0 {
		lines = append(lines, headerStyle.Render("Missing:"))
		for _, item := range eval.MissingItems {
			lines = append(lines, fmt.Sprintf("  [%s] %s", item.Code, item.Message))
		}
	}

	return strings.Join(lines, "\n")
}

func renderTaskAnalysis(analysis models.TaskAnalysisResponse) string {
	lines := []string{
		fmt.Sprintf("%s %s", labelStyle.Render("Task:"), analysis.TaskID),
		fmt.Sprintf("%s %d (%s)", labelStyle.Render("Clarity score:"), analysis.ClarityScore.Score, analysis.ClarityScore.Level),
		fmt.Sprintf("%s %s", labelStyle.Render("Summary:"), analysis.Summary),
	}

	if len(analysis.Recommendations) > 0 {
		lines = append(lines, headerStyle.Render("Recommendations:"))
		for _, r := range analysis.Recommendations {
			auto := ""
			if r.AutoApplyable {
				auto = " (auto-applyable)"
			}
			lines = append(lines, fmt.Sprintf("  [%s] %s%s", r.Gap, r.Message, auto))
		}
	}

	if len(analysis.VagueTerms) > 0 {
		lines = append(lines, fmt.Sprintf("%s %s", labelStyle.Render("Vague terms:"), strings.Join(analysis.VagueTerms, ", ")))
	}

	return strings.Join(lines, "\n")
}

func renderActResult(res models.ActResponse) string {
	lines := make([]string, 0, len(res.Results)+1)
	for _, r := range res.Results {
		if r.Success {
			lines = append(lines, fmt.Sprintf("  %s %s", successStyle.Render("ok"), r.TargetID))
		} else {
			lines = append(lines, fmt.Sprintf("  %s %s: %s", errorStyle.Render("failed"), r.TargetID, r.Error))
		}
	}
	if res.RollbackToken != "" {
		lines = append(lines, fmt.Sprintf("%s %s", labelStyle.Render("Rollback token:"), res.RollbackToken))
	}
	return strings.Join(lines, "\n")
}

func formatStoryStatus(status string) string {
	switch status {
	case "accepted", "deployed":
		return successStyle.Render(status)
	case "needs_refinement", "draft":
		return lipgloss.NewStyle().Foreground(lipgloss.Color("#F5A623")).Render(status)
	default:
		return status
	}
}

func formatTaskStatus(status string) string {
	switch status {
	case "completed":
		return successStyle.Render(status)
	case "owned", "in_progress":
		return lipgloss.NewStyle().Foreground(lipgloss.Color("#F5A623")).Render(status)
	default:
		return status
	}
}

func columnWidths(headers []string, rows [][]string) []int {
	widths := make([]int, len(headers))
	for i, header := range headers {
		widths[i] = len(header)
	}
	for _, row := range rows {
		for i, cell := range row {
			if len(cell) > widths[i] {
				widths[i] = len(cell)
			}
		}
	}
	return widths
}

func formatRow(cells []string, widths []int) string {
	parts := make([]string, 0, len(cells))
	for i, cell := range cells {
		parts = append(parts, padRight(cell, widths[i]+2))
	}
	return strings.TrimRight(strings.Join(parts, ""), " ")
}

func padRight(value string, width int) string {
	if len(value) >= width {
		return value
	}
	return fmt.Sprintf("%-*s", width, value)
}
