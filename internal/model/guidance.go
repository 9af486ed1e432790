package model

// GuidancePackage is the normalized bundle of learning-path content shown on the dashboard.
// After normalization every slice is non-nil and every search hint is non-empty.
type GuidancePackage struct {
	Summary          string            `json:"summary"`
	InitialActions   []InitialAction   `json:"initialActions"`
	LearningPath     LearningPath      `json:"learningPath"`
	ToolCategories   []ToolCategory    `json:"recommendedTools"`
	CommonMistakes   []CommonMistake   `json:"commonMistakes"`
	Checklist        []ChecklistItem   `json:"selfDiagnosisChecklist"`
	AutomationTools  []AutomationTool  `json:"recommendedAIsForAutomation"`
	CoursePlatforms  CoursePlatforms   `json:"coursePlatforms"`
	ExploratoryPaths []ExploratoryPath `json:"exploratoryPaths"`
	ExamResults      *ExamResults      `json:"examResults,omitempty"`
}

// InitialAction is a concrete first step with a suggested search query.
type InitialAction struct {
	Action     string `json:"action"`
	SearchHint string `json:"searchSuggestion"`
}

// LearningPath splits stages into the must-have path and the exploratory one.
type LearningPath struct {
	CriticalPath []Stage `json:"criticalPath"`
	ExtendedPath []Stage `json:"extendedPath"`
}

// Stages returns the critical stages followed by the extended ones.
func (lp LearningPath) Stages() []Stage {
	all := make([]Stage, 0, len(lp.CriticalPath)+len(lp.ExtendedPath))
	all = append(all, lp.CriticalPath...)
	return append(all, lp.ExtendedPath...)
}

// Stage is an ordered group of topics. Its title is its identity.
type Stage struct {
	Title  string  `json:"stageTitle"`
	Topics []Topic `json:"topics"`
}

// Topic is a unit of study inside a stage. Its name is its identity within the stage.
type Topic struct {
	Name        string       `json:"topicName"`
	Details     string       `json:"details"`
	KeyConcepts []KeyConcept `json:"keyConcepts"`
	SearchHint  string       `json:"searchSuggestion"`
}

// KeyConcept is a concept worth researching within a topic.
type KeyConcept struct {
	Name       string `json:"conceptName"`
	SearchHint string `json:"searchSuggestion"`
}

// ToolCategory groups free tools by function.
type ToolCategory struct {
	Name  string `json:"categoryName"`
	Tools []Tool `json:"tools"`
}

// Tool is a free or freemium tool recommendation.
type Tool struct {
	Name        string `json:"toolName"`
	Description string `json:"description"`
	SearchHint  string `json:"searchSuggestion"`
}

// CommonMistake pairs a frequent mistake with a tip to avoid it.
type CommonMistake struct {
	Mistake    string `json:"mistake"`
	Tip        string `json:"avoidanceTip"`
	SearchHint string `json:"searchSuggestion"`
}

// ChecklistItem is one self-diagnosis point. Its position in the checklist is its key
// in a ChecklistCompletionMap.
type ChecklistItem struct {
	Point      string `json:"point"`
	SearchHint string `json:"searchSuggestion"`
}

// AutomationTool is an AI service that can take over a task.
type AutomationTool struct {
	Name            string `json:"aiName"`
	TaskDescription string `json:"taskDescription"`
	SearchHint      string `json:"searchSuggestion"`
}

// CoursePlatforms splits free course platforms by market demand of their subjects.
type CoursePlatforms struct {
	HighDemand []PlatformRecommendation `json:"highDemand"`
	LowDemand  []PlatformRecommendation `json:"lowDemand"`
}

// PlatformRecommendation is a course platform with one or more search hints.
type PlatformRecommendation struct {
	Name           string   `json:"platformName"`
	Specialization string   `json:"specialization"`
	SearchHints    []string `json:"searchSuggestions"`
	FreemiumTips   []string `json:"freemiumTips"`
}

// ExploratoryPath suggests a complementary area of knowledge.
type ExploratoryPath struct {
	Area       string `json:"area"`
	Reason     string `json:"reason"`
	SearchHint string `json:"searchSuggestion"`
}

// ChecklistCompletionMap maps a checklist position (0-based) to its completion flag.
// Missing entries mean "not completed".
type ChecklistCompletionMap map[int]bool
