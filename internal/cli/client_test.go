package cli

import (
	"context"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"

	"github.com/jaxxstorm/landlord/internal/api/models"
)

func newTestServer(t *testing.T, handler http.Handler) *httptest.Server {
	t.Helper()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Skipf("skipping test server: %v", err)
	}

	server := httptest.NewUnstartedServer(handler)
	server.Listener = ln
	server.Start()
	t.Cleanup(server.Close)
	return server
}

func TestClientCreateGetListDeleteStory(t *testing.T) {
	t.Parallel()

	storyID := uuid.New()
	projectID := uuid.New()

	server := newTestServer(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch {
		case r.Method == http.MethodPost && r.URL.Path == "/v1/stories":
			w.WriteHeader(http.StatusCreated)
			_, _ = w.Write([]byte(`{"id":"` + storyID.String() + `","projectId":"` + projectID.String() + `","title":"Login flow","status":"draft"}`))
		case r.Method == http.MethodGet && r.URL.Path == "/v1/stories":
			_, _ = w.Write([]byte(`[{"id":"` + storyID.String() + `","projectId":"` + projectID.String() + `","title":"Login flow","status":"draft"}]`))
		case r.Method == http.MethodGet && r.URL.Path == "/v1/stories/"+storyID.String():
			_, _ = w.Write([]byte(`{"id":"` + storyID.String() + `","projectId":"` + projectID.String() + `","title":"Login flow","status":"draft"}`))
		case r.Method == http.MethodDelete && r.URL.Path == "/v1/stories/"+storyID.String():
			w.WriteHeader(http.StatusNoContent)
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
	}))

	client := NewClient(server.URL)

	if _, err := client.CreateStory(context.Background(), models.CreateStoryRequest{
		ProjectID: projectID,
		Title:     "Login flow",
	}); err != nil {
		t.Fatalf("create story failed: %v", err)
	}

	if _, err := client.ListStories(context.Background(), ""); err != nil {
		t.Fatalf("list stories failed: %v", err)
	}

	if _, err := client.GetStory(context.Background(), storyID); err != nil {
		t.Fatalf("get story failed: %v", err)
	}

	if err := client.DeleteStory(context.Background(), storyID); err != nil {
		t.Fatalf("delete story failed: %v", err)
	}
}

func TestClientHandlesErrors(t *testing.T) {
	t.Parallel()

	server := newTestServer(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":"bad request"}`))
	}))

	client := NewClient(server.URL)
	_, err := client.ListStories(context.Background(), "")
	if err == nil {
		t.Fatal("expected error, got nil")
	}
}

func TestClientUpdateStoryAndTask(t *testing.T) {
	t.Parallel()

	storyID := uuid.New()
	taskID := uuid.New()

	server := newTestServer(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch {
		case r.Method == http.MethodPut && r.URL.Path == "/v1/stories/"+storyID.String():
			_, _ = w.Write([]byte(`{"id":"` + storyID.String() + `","title":"Login flow v2","status":"ready"}`))
		case r.Method == http.MethodPut && r.URL.Path == "/v1/tasks/"+taskID.String():
			_, _ = w.Write([]byte(`{"id":"` + taskID.String() + `","storyId":"` + storyID.String() + `","title":"Wire login handler","status":"available"}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))

	client := NewClient(server.URL)

	title := "Login flow v2"
	if _, err := client.UpdateStory(context.Background(), storyID, models.UpdateStoryRequest{Title: &title}); err != nil {
		t.Fatalf("update story failed: %v", err)
	}

	taskTitle := "Wire login handler"
	if _, err := client.UpdateTask(context.Background(), taskID, models.UpdateTaskRequest{Title: &taskTitle}); err != nil {
		t.Fatalf("update task failed: %v", err)
	}
}

func TestClientAct(t *testing.T) {
	t.Parallel()

	taskID := uuid.New()

	server := newTestServer(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/v1/act" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"success":true,"partialSuccess":false,"results":[{"targetId":"` + taskID.String() + `","success":true}]}`))
	}))

	client := NewClient(server.URL)
	res, err := client.Act(context.Background(), models.ActRequest{
		ActionType:     "TakeOwnership",
		TargetEntities: []uuid.UUID{taskID},
	})
	if err != nil {
		t.Fatalf("act failed: %v", err)
	}
	if !res.Success {
		t.Fatalf("expected success, got %+v", res)
	}
}
