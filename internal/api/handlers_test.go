package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jaxxstorm/landlord/internal/act"
	"github.com/jaxxstorm/landlord/internal/actionvalidator"
	"github.com/jaxxstorm/landlord/internal/api/models"
	"github.com/jaxxstorm/landlord/internal/auth"
	"github.com/jaxxstorm/landlord/internal/domain"
)

type noopEvents struct{}

func (noopEvents) Publish(domain.DomainEvent) {}

type noopBroadcast struct{}

func (noopBroadcast) Broadcast(domain.TaskEvent) {}

// newHandlerTestServer builds a Server wired to an in-memory repo and a
// real Act pipeline, but with no auth.Verifier so tests attach a
// Principal to the request context directly instead of going through the
// JWT middleware, matching newVersioningTestServer's pattern.
func newHandlerTestServer(repo *fakeRepo) *Server {
	srv := &Server{
		router: chi.NewRouter(),
		repo:   repo,
		act:    act.New(repo, noopEvents{}, noopBroadcast{}, nil),
		logger: zap.NewNop(),
	}
	srv.registerRoutes(nil)
	return srv
}

func authedRequest(method, target string, body io.Reader, user uuid.UUID) *http.Request {
	if body == nil {
		body = http.NoBody
	}
	req := httptest.NewRequest(method, target, body)
	principal := auth.Principal{
		UserID:      user,
		ContextType: auth.ContextPersonal,
		Permissions: actionvalidator.UserPermissions{
			CanUpdateStory:     true,
			CanAssignTask:      true,
			CanManageOwnership: true,
			CanCreateItems:     true,
			CanArchive:         true,
			CanManageSprints:   true,
			CanComment:         true,
		},
	}
	ctx := auth.WithPrincipal(req.Context(), principal)
	return req.WithContext(ctx)
}

func TestTaskAnalysisResponseShape(t *testing.T) {
	repo := newFakeRepo()
	storyID := uuid.New()
	taskID := uuid.New()
	repo.stories[storyID] = &domain.Story{ID: storyID, Title: "As a user, I want checkout", Status: domain.StoryDraft}
	repo.tasks[taskID] = &domain.Task{
		ID:          taskID,
		StoryID:     storyID,
		Title:       "Capture payment",
		Description: "We need to implement this somehow and fix the edge cases",
		Status:      domain.TaskAvailable,
	}
	repo.acs[storyID] = []*domain.AcceptanceCriterion{
		{StoryID: storyID, ACID: "AC-1", Given: "a cart", When: "checkout is submitted", Then: "payment is captured"},
	}

	srv := newHandlerTestServer(repo)
	req := authedRequest(http.MethodGet, "/v1/tasks/"+taskID.String()+"/analysis", nil, uuid.New())
	rec := httptest.NewRecorder()
	srv.router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp models.TaskAnalysisResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}

	if resp.ClarityScore.Score < 0 || resp.ClarityScore.Score > 100 {
		t.Fatalf("expected clarityScore.score in [0,100], got %d", resp.ClarityScore.Score)
	}
	if resp.ClarityScore.Level == "" {
		t.Fatalf("expected clarityScore.level to be set")
	}
	if len(resp.ClarityScore.Dimensions) == 0 {
		t.Fatalf("expected clarityScore.dimensions to be populated")
	}

	if len(resp.Recommendations) == 0 {
		t.Fatalf("expected at least one recommendation")
	}
	autoApplyable := 0
	for _, r := range resp.Recommendations {
		if r.AutoApplyable {
			autoApplyable++
		}
	}
	if autoApplyable != 1 {
		t.Fatalf("expected exactly one auto-applyable recommendation, got %d in %+v", autoApplyable, resp.Recommendations)
	}

	wantTypes := map[string]bool{"file-path": true, "function": true, "input-output": true, "architecture": true}
	for _, d := range resp.TechnicalDetailRecommendations {
		delete(wantTypes, d.Type)
	}
	if len(wantTypes) != 0 {
		t.Fatalf("expected technicalDetailRecommendations to cover all four categories, missing: %v (got %+v)", wantTypes, resp.TechnicalDetailRecommendations)
	}

	if len(resp.VagueTerms) == 0 {
		t.Fatalf("expected vagueTerms to flag the description's vague verbs")
	}
	if resp.ACRecommendations == nil || resp.ACRecommendations[0] != "AC-1" {
		t.Fatalf("expected acRecommendations to list the unreferenced AC-1, got %v", resp.ACRecommendations)
	}
}

func TestOwnershipRaceThroughAct(t *testing.T) {
	repo := newFakeRepo()
	taskID := uuid.New()
	repo.tasks[taskID] = &domain.Task{ID: taskID, StoryID: uuid.New(), Title: "Race target", Status: domain.TaskAvailable}

	srv := newHandlerTestServer(repo)

	const n = 10
	codes := make([]int, n)
	winner := uuid.New()
	users := make([]uuid.UUID, n)
	users[0] = winner
	for i := 1; i < n; i++ {
		users[i] = uuid.New()
	}

	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			payload, _ := json.Marshal(models.ActRequest{
				ActionType:     domain.ActionTakeOwnership,
				TargetEntities: []uuid.UUID{taskID},
			})
			req := authedRequest(http.MethodPost, "/v1/act", bytes.NewReader(payload), users[i])
			rec := httptest.NewRecorder()
			srv.router.ServeHTTP(rec, req)
			codes[i] = rec.Code
		}(i)
	}
	wg.Wait()

	successes := 0
	for _, c := range codes {
		switch c {
		case http.StatusOK:
			successes++
		case http.StatusConflict, http.StatusBadRequest:
			// expected loser outcomes
		default:
			t.Fatalf("unexpected status code %d", c)
		}
	}
	if successes != 1 {
		t.Fatalf("expected exactly one successful ownership claim, got %d across codes %v", successes, codes)
	}

	task, err := repo.GetTask(context.Background(), nil, taskID)
	if err != nil {
		t.Fatalf("get task: %v", err)
	}
	if task.OwnerUserID == nil {
		t.Fatalf("expected task to have a final owner")
	}

	owned, err := repo.ListTasksByOwner(context.Background(), nil, *task.OwnerUserID)
	if err != nil {
		t.Fatalf("list tasks by owner: %v", err)
	}
	if len(owned) != 1 || owned[0].ID != taskID {
		t.Fatalf("expected exactly the claimed task in the winner's owned list, got %+v", owned)
	}
}
