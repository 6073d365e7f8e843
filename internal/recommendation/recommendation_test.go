package recommendation

import (
	"testing"

	"go.uber.org/zap"

	"github.com/jaxxstorm/landlord/internal/domain"
	"github.com/jaxxstorm/landlord/internal/taskanalyzer"
)

func TestClassifyBucketByPrefix(t *testing.T) {
	task := &domain.Task{Title: "[Frontend] Add submit button spinner"}
	if got := ClassifyBucket(task); got != BucketFrontend {
		t.Fatalf("expected frontend bucket, got %s", got)
	}
}

func TestClassifyBucketByKeyword(t *testing.T) {
	task := &domain.Task{Title: "Add database migration for orders table"}
	if got := ClassifyBucket(task); got != BucketBackend {
		t.Fatalf("expected backend bucket, got %s", got)
	}
}

func TestClassifyBucketDefaultsGeneric(t *testing.T) {
	task := &domain.Task{Title: "Reorganize the README"}
	if got := ClassifyBucket(task); got != BucketGeneric {
		t.Fatalf("expected generic bucket, got %s", got)
	}
}

func countDetails(details []TechnicalDetail, typ DetailType) int {
	n := 0
	for _, d := range details {
		if d.Type == typ {
			n++
		}
	}
	return n
}

func TestGenerateFallsBackToGenericFilePathForVagueTasks(t *testing.T) {
	task := &domain.Task{Title: "Fix bug"}
	analysis := taskanalyzer.Analysis{ClarityScore: 30}
	s := Generate(task, analysis)
	if countDetails(s.TechnicalDetails, DetailFilePath) != 1 {
		t.Fatalf("expected exactly one generic file-path entry for a low-clarity task, got %v", s.TechnicalDetails)
	}
}

func TestGenerateProducesFilePathsForClearTasks(t *testing.T) {
	task := &domain.Task{Title: "Add database migration for orders table", AcceptanceCriteriaRefs: []string{"AC-1"}}
	analysis := taskanalyzer.Analysis{ClarityScore: 90}
	s := Generate(task, analysis)
	if countDetails(s.TechnicalDetails, DetailFilePath) == 0 {
		t.Fatalf("expected file path suggestions")
	}
	if s.Bucket != BucketBackend {
		t.Fatalf("expected backend bucket, got %s", s.Bucket)
	}
}

func TestGenerateAlwaysCoversAllFourDetailCategories(t *testing.T) {
	for _, score := range []int{10, 30, 65, 90} {
		task := &domain.Task{Title: "Fix bug"}
		analysis := taskanalyzer.Analysis{ClarityScore: score}
		s := Generate(task, analysis)
		for _, typ := range []DetailType{DetailFilePath, DetailFunction, DetailInputOutput, DetailArchitecture} {
			if countDetails(s.TechnicalDetails, typ) == 0 {
				t.Fatalf("clarity score %d: expected at least one %s detail, got %v", score, typ, s.TechnicalDetails)
			}
		}
	}
}

func TestRegistryDefaultStrategy(t *testing.T) {
	reg := NewRegistry(zap.NewNop())
	strategy, err := reg.Get("bucket")
	if err != nil {
		t.Fatalf("expected default bucket strategy registered: %v", err)
	}
	if strategy.Name() != "bucket" {
		t.Fatalf("unexpected strategy name %s", strategy.Name())
	}
}

func TestRegistryRejectsDuplicateNames(t *testing.T) {
	reg := NewRegistry(zap.NewNop())
	if err := reg.Register(bucketStrategy{}); err == nil {
		t.Fatalf("expected conflict error registering duplicate strategy")
	}
}
