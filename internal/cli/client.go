package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jaxxstorm/landlord/internal/api/models"
	"github.com/jaxxstorm/landlord/internal/apiversion"
)

// Client is a thin HTTP client for the work-item coordination API,
// used by the landlord-cli subcommands.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

func NewClient(baseURL string) *Client {
	baseURL = apiversion.NormalizeBaseURL(baseURL)
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

func (c *Client) CreateStory(ctx context.Context, req models.CreateStoryRequest) (*models.StoryResponse, error) {
	var story models.StoryResponse
	if err := c.do(ctx, http.MethodPost, "/stories", req, &story); err != nil {
		return nil, err
	}
	return &story, nil
}

func (c *Client) GetStory(ctx context.Context, id uuid.UUID) (*models.StoryResponse, error) {
	var story models.StoryResponse
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/stories/%s", id), nil, &story); err != nil {
		return nil, err
	}
	return &story, nil
}

func (c *Client) ListStories(ctx context.Context, status string) ([]models.StoryResponse, error) {
	path := "/stories"
	if status != "" {
		path = fmt.Sprintf("%s?status=%s", path, status)
	}
	var stories []models.StoryResponse
	if err := c.do(ctx, http.MethodGet, path, nil, &stories); err != nil {
		return nil, err
	}
	return stories, nil
}

func (c *Client) UpdateStory(ctx context.Context, id uuid.UUID, req models.UpdateStoryRequest) (*models.StoryResponse, error) {
	var story models.StoryResponse
	if err := c.do(ctx, http.MethodPut, fmt.Sprintf("/stories/%s", id), req, &story); err != nil {
		return nil, err
	}
	return &story, nil
}

func (c *Client) DeleteStory(ctx context.Context, id uuid.UUID) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/stories/%s", id), nil, nil)
}

func (c *Client) StoryReadiness(ctx context.Context, id uuid.UUID) (*models.ReadinessResponse, error) {
	var eval models.ReadinessResponse
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/stories/%s/readiness", id), nil, &eval); err != nil {
		return nil, err
	}
	return &eval, nil
}

func (c *Client) ListTasksByStory(ctx context.Context, storyID uuid.UUID) ([]models.TaskResponse, error) {
	var tasks []models.TaskResponse
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/stories/%s/tasks", storyID), nil, &tasks); err != nil {
		return nil, err
	}
	return tasks, nil
}

func (c *Client) CreateTask(ctx context.Context, req models.CreateTaskRequest) (*models.TaskResponse, error) {
	var task models.TaskResponse
	if err := c.do(ctx, http.MethodPost, "/tasks", req, &task); err != nil {
		return nil, err
	}
	return &task, nil
}

func (c *Client) GetTask(ctx context.Context, id uuid.UUID) (*models.TaskResponse, error) {
	var task models.TaskResponse
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/tasks/%s", id), nil, &task); err != nil {
		return nil, err
	}
	return &task, nil
}

func (c *Client) ListOwnedTasks(ctx context.Context, ownerUserID uuid.UUID) ([]models.TaskResponse, error) {
	path := fmt.Sprintf("/tasks/owned?owner_user_id=%s", ownerUserID)
	var tasks []models.TaskResponse
	if err := c.do(ctx, http.MethodGet, path, nil, &tasks); err != nil {
		return nil, err
	}
	return tasks, nil
}

func (c *Client) UpdateTask(ctx context.Context, id uuid.UUID, req models.UpdateTaskRequest) (*models.TaskResponse, error) {
	var task models.TaskResponse
	if err := c.do(ctx, http.MethodPut, fmt.Sprintf("/tasks/%s", id), req, &task); err != nil {
		return nil, err
	}
	return &task, nil
}

func (c *Client) TaskAnalysis(ctx context.Context, id uuid.UUID) (*models.TaskAnalysisResponse, error) {
	var analysis models.TaskAnalysisResponse
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/tasks/%s/analysis", id), nil, &analysis); err != nil {
		return nil, err
	}
	return &analysis, nil
}

// Act dispatches a command directly through the Act pipeline: the cli
// uses this to claim or complete a task without going through Interpret.
func (c *Client) Act(ctx context.Context, req models.ActRequest) (*models.ActResponse, error) {
	var res models.ActResponse
	if err := c.do(ctx, http.MethodPost, "/act", req, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// Interpret sends a natural language utterance through the Interpret
// Pipeline and returns the parsed intent and ranked candidates.
func (c *Client) Interpret(ctx context.Context, req models.InterpretRequest) (*models.InterpretResponse, error) {
	var res models.InterpretResponse
	if err := c.do(ctx, http.MethodPost, "/interpret", req, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (c *Client) do(ctx context.Context, method, path string, body any, out any) error {
	url := fmt.Sprintf("%s%s", c.baseURL, path)

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if err := handleErrorResponse(resp); err != nil {
		return err
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func handleErrorResponse(resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	body, _ := io.ReadAll(resp.Body)
	if len(body) == 0 {
		return fmt.Errorf("api error: status %d", resp.StatusCode)
	}

	var apiErr models.ErrorResponse
	if err := json.Unmarshal(body, &apiErr); err != nil {
		return fmt.Errorf("api error: status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	if apiErr.Error != "" {
		return fmt.Errorf("api error: %s", apiErr.Error)
	}

	return fmt.Errorf("api error: status %d", resp.StatusCode)
}
