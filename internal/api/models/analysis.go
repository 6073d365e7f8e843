package models

import (
	"github.com/jaxxstorm/landlord/internal/domain"
	"github.com/jaxxstorm/landlord/internal/recommendation"
	"github.com/jaxxstorm/landlord/internal/taskanalyzer"
)

// gapWeights mirrors the deduction table in internal/taskanalyzer, kept
// here only to label which dimension cost a task how many points in the
// API response; the authoritative score itself always comes from
// taskanalyzer.Analyze.
var gapWeights = map[taskanalyzer.GapType]int{
	taskanalyzer.GapMissingDescription:   20,
	taskanalyzer.GapVagueLanguage:        0,
	taskanalyzer.GapNoAcceptanceCriteria: 15,
	taskanalyzer.GapInvalidACReferences:  15,
	taskanalyzer.GapMissingEstimate:      10,
	taskanalyzer.GapMissingAICompat:      10,
}

// ClarityScore is the nested clarityScore object the task-analysis
// response DTO requires.
type ClarityScore struct {
	Score      int            `json:"score"`
	Level      string         `json:"level"`
	Dimensions map[string]int `json:"dimensions"`
}

// RecommendationResponse is the camelCase form of taskanalyzer.Recommendation.
type RecommendationResponse struct {
	Gap           string `json:"gap"`
	Message       string `json:"message"`
	AutoApplyable bool   `json:"autoApplyable"`
}

// TechnicalDetailResponse is the camelCase form of
// recommendation.TechnicalDetail: one typed, actionable suggestion within
// a category (file-path, function, input-output, or architecture).
type TechnicalDetailResponse struct {
	Type   string `json:"type"`
	Detail string `json:"detail"`
}

// TaskAnalysisResponse is the full task-analysis DTO: clarityScore,
// vagueTerms, technicalDetailRecommendations, acRecommendations,
// aiCompatibilityIssues, examples, and per-recommendation autoApplyable.
type TaskAnalysisResponse struct {
	TaskID                         string                    `json:"taskId"`
	ClarityScore                   ClarityScore              `json:"clarityScore"`
	Summary                        string                    `json:"summary"`
	Recommendations                []RecommendationResponse  `json:"recommendations"`
	VagueTerms                     []string                  `json:"vagueTerms"`
	TechnicalDetailRecommendations []TechnicalDetailResponse `json:"technicalDetailRecommendations"`
	ACRecommendations              []string                  `json:"acRecommendations"`
	AICompatibilityIssues          []string                  `json:"aiCompatibilityIssues"`
	Examples                       []string                  `json:"examples"`
}

// NewTaskAnalysisResponse assembles the full DTO from the clarity
// analysis, the bucket-aware suggestion generated for the same task, and
// the story's acceptance criteria the task did not reference.
func NewTaskAnalysisResponse(analysis taskanalyzer.Analysis, task *domain.Task, suggestion recommendation.Suggestion, storyACs []domain.AcceptanceCriterion) TaskAnalysisResponse {
	dimensions := make(map[string]int, len(analysis.Recommendations))
	recs := make([]RecommendationResponse, 0, len(analysis.Recommendations))
	for _, r := range analysis.Recommendations {
		dimensions[string(r.Gap)] = gapWeights[r.Gap]
		recs = append(recs, RecommendationResponse{
			Gap:           string(r.Gap),
			Message:       r.Message,
			AutoApplyable: r.AutoApplyable,
		})
	}

	technicalDetails := make([]TechnicalDetailResponse, 0, len(suggestion.TechnicalDetails))
	for _, d := range suggestion.TechnicalDetails {
		technicalDetails = append(technicalDetails, TechnicalDetailResponse{Type: string(d.Type), Detail: d.Detail})
	}

	acRecommendations := unreferencedACIDs(task.AcceptanceCriteriaRefs, storyACs)

	return TaskAnalysisResponse{
		TaskID: analysis.TaskID,
		ClarityScore: ClarityScore{
			Score:      analysis.ClarityScore,
			Level:      string(analysis.ClarityLevel),
			Dimensions: dimensions,
		},
		Summary:                        analysis.Summary,
		Recommendations:                recs,
		VagueTerms:                     taskanalyzer.VagueTerms(task.Description),
		TechnicalDetailRecommendations: technicalDetails,
		ACRecommendations:              acRecommendations,
		AICompatibilityIssues:          taskanalyzer.AICompatibilityIssues(task),
		Examples:                       exampleUtterances(suggestion.Bucket),
	}
}

// unreferencedACIDs returns the story's acceptance criteria ids the task
// does not already reference, so the caller knows which ones are
// candidates to add.
func unreferencedACIDs(refs []string, storyACs []domain.AcceptanceCriterion) []string {
	referenced := make(map[string]bool, len(refs))
	for _, r := range refs {
		referenced[r] = true
	}
	var out []string
	for _, ac := range storyACs {
		if !referenced[ac.ACID] {
			out = append(out, ac.ACID)
		}
	}
	return out
}

var bucketExamples = map[recommendation.Bucket][]string{
	recommendation.BucketBackend:  {"Add a handler for POST /widgets returning 201 with the created widget"},
	recommendation.BucketFrontend: {"Render a loading spinner while the widget list request is in flight"},
	recommendation.BucketQA:       {"Add a regression test reproducing the reported race condition"},
	recommendation.BucketDevOps:   {"Add a dry-run step to the deploy pipeline before the apply step"},
	recommendation.BucketGeneric:  {"Describe the expected input and output of this change"},
}

// exampleUtterances returns a small set of worked examples appropriate to
// the task's classified bucket, to anchor the "examples" field the
// clarity response carries for the caller's UI.
func exampleUtterances(bucket recommendation.Bucket) []string {
	return bucketExamples[bucket]
}
