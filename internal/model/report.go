package model

// ProgressReportData is the model-generated part of the printable progress report.
type ProgressReportData struct {
	ActionPlan         ActionPlan          `json:"actionPlan"`
	WebsiteSuggestions []WebsiteSuggestion `json:"websiteSuggestions"`
	FinalAdvice        string              `json:"finalAdvice"`
}

// ActionPlan holds the personalized next steps.
type ActionPlan struct {
	Recommendations  []string          `json:"recommendations"`
	ExamErrorTips    []string          `json:"examErrorTips"`
	StudySuggestions []StudySuggestion `json:"studySuggestions"`
}

// StudySuggestion lists suggestions for one kind of resource (videos, readings, projects).
type StudySuggestion struct {
	ResourceType string   `json:"resourceType"`
	Suggestions  []string `json:"suggestions"`
}

// WebsiteSuggestion names a platform for the topics to reinforce.
type WebsiteSuggestion struct {
	PlatformName string `json:"platformName"`
	Reason       string `json:"reasonForSuggestion"`
	SearchHint   string `json:"searchSuggestion"`
}

// ReportContext is everything the report prompt needs about the user's progress.
type ReportContext struct {
	UserProfile             string          `json:"userProfile"`
	ExamResults             ExamResults     `json:"examResults"`
	CompletedChecklistItems []ChecklistItem `json:"completedChecklistItems"`
	PendingChecklistItems   []ChecklistItem `json:"pendingChecklistItems"`
	RecommendedTools        []ToolCategory  `json:"recommendedTools"`
}

// SplitChecklist partitions checklist items by their completion flag, preserving order.
func SplitChecklist(items []ChecklistItem, done ChecklistCompletionMap) (completed, pending []ChecklistItem) {
	completed = []ChecklistItem{}
	pending = []ChecklistItem{}
	for i, item := range items {
		if done[i] {
			completed = append(completed, item)
		} else {
			pending = append(pending, item)
		}
	}
	return completed, pending
}
