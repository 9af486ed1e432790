// Package session holds the single in-memory application state and the named
// transitions that change it.
//
// Each transition is atomic, but overlapping flows are not excluded: when two
// searches are in flight, whichever completes last overwrites the other.
package session

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"sync"

	"github.com/pavelanni/pathfinder/internal/model"
)

// ErrChecklistIndex is returned when toggling an item the checklist does not have.
var ErrChecklistIndex = errors.New("checklist index out of range")

// PreconditionError reports a transition requested from a state that does not allow it.
type PreconditionError struct {
	Op     string
	Reason string
}

func (e *PreconditionError) Error() string {
	return fmt.Sprintf("%s: %s", e.Op, e.Reason)
}

// Operations checked for preconditions.
const (
	OpStartExam  = "start exam"
	OpSubmitExam = "submit exam"
	OpReport     = "generate report"
	OpChat       = "chat"
)

// Precondition failure reasons.
const (
	ReasonNoPackage   = "no guidance package"
	ReasonNoExam      = "no exam in progress"
	ReasonNoResults   = "no exam results"
	ReasonNoChecklist = "no checklist"
)

// State is a point-in-time view of the session.
type State struct {
	Query          string                       `json:"query"`
	Searching      bool                         `json:"searching"`
	Package        *model.GuidancePackage       `json:"package"`
	Checklist      model.ChecklistCompletionMap `json:"checklist"`
	ExamLoading    bool                         `json:"examLoading"`
	ExamOpen       bool                         `json:"examOpen"`
	ExamSubmitting bool                         `json:"examSubmitting"`
	Questions      []model.ExamQuestion         `json:"questions"`
	Chat           []model.ChatMessage          `json:"chat"`
	ChatPrefill    string                       `json:"chatPrefill"`
	ReportLoading  bool                         `json:"reportLoading"`
	Report         *model.ProgressReportData    `json:"report"`
	Err            error                        `json:"-"`
}

// Store owns the session state. The zero value is not usable; call New.
type Store struct {
	mu sync.Mutex
	s  State
}

// New returns an empty store.
func New() *Store {
	return &Store{s: State{Checklist: model.ChecklistCompletionMap{}}}
}

// StartNewSearch clears everything derived from the previous search and marks a search
// in progress.
func (st *Store) StartNewSearch(query string) {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.s = State{
		Query:     query,
		Searching: true,
		Checklist: model.ChecklistCompletionMap{},
	}
}

// CompleteSearch stores the normalized package, or records err.
func (st *Store) CompleteSearch(pkg *model.GuidancePackage, err error) {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.s.Searching = false
	if err != nil {
		st.s.Package = nil
		st.s.Err = err
		return
	}
	st.s.Package = pkg
	st.s.Err = nil
}

// BeginExam marks exam generation in progress and returns the learning path to build it from.
func (st *Store) BeginExam() (model.LearningPath, error) {
	st.mu.Lock()
	defer st.mu.Unlock()
	if st.s.Package == nil {
		return model.LearningPath{}, &PreconditionError{Op: OpStartExam, Reason: ReasonNoPackage}
	}
	st.s.Err = nil
	st.s.ExamLoading = true
	return st.s.Package.LearningPath, nil
}

// StartExam stores the generated question set and opens the exam.
func (st *Store) StartExam(questions []model.ExamQuestion) {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.s.ExamLoading = false
	st.s.Questions = questions
	st.s.ExamOpen = true
}

// FailExam records a failed exam generation.
func (st *Store) FailExam(err error) {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.s.ExamLoading = false
	st.s.ExamOpen = false
	st.s.Questions = nil
	st.s.Err = err
}

// CancelExam closes the exam without scoring it.
func (st *Store) CancelExam() {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.s.ExamLoading = false
	st.s.ExamOpen = false
	st.s.ExamSubmitting = false
	st.s.Questions = nil
}

// BeginExamSubmit marks the submission in progress and returns the open question set
// with the learning path it was generated from.
func (st *Store) BeginExamSubmit() ([]model.ExamQuestion, model.LearningPath, error) {
	st.mu.Lock()
	defer st.mu.Unlock()
	if st.s.Package == nil {
		return nil, model.LearningPath{}, &PreconditionError{Op: OpSubmitExam, Reason: ReasonNoPackage}
	}
	if len(st.s.Questions) == 0 {
		return nil, model.LearningPath{}, &PreconditionError{Op: OpSubmitExam, Reason: ReasonNoExam}
	}
	st.s.Err = nil
	st.s.ExamSubmitting = true
	return st.s.Questions, st.s.Package.LearningPath, nil
}

// FinishExam ends the exam. On success the results replace any previous results of the
// current package; on failure err is recorded. The question set is discarded either way.
func (st *Store) FinishExam(results *model.ExamResults, err error) {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.s.ExamSubmitting = false
	st.s.ExamOpen = false
	st.s.Questions = nil
	if err != nil {
		st.s.Err = err
		return
	}
	if st.s.Package == nil || results == nil {
		return
	}
	// Packages are shared with snapshots, so merge into a copy.
	pkg := *st.s.Package
	r := *results
	pkg.ExamResults = &r
	st.s.Package = &pkg
}

// ToggleChecklist flips the completion flag at index and returns the new value.
// The index must address an item of the current package's checklist.
func (st *Store) ToggleChecklist(index int) (bool, error) {
	st.mu.Lock()
	defer st.mu.Unlock()
	if st.s.Package == nil || index < 0 || index >= len(st.s.Package.Checklist) {
		return false, fmt.Errorf("%w: %d", ErrChecklistIndex, index)
	}
	done := !st.s.Checklist[index]
	st.s.Checklist[index] = done
	return done, nil
}

// BeginReport checks that a package with exam results and a checklist exists, marks the
// report in progress and returns the report prompt input.
func (st *Store) BeginReport() (model.ReportContext, error) {
	st.mu.Lock()
	defer st.mu.Unlock()
	pkg := st.s.Package
	switch {
	case pkg == nil:
		return model.ReportContext{}, &PreconditionError{Op: OpReport, Reason: ReasonNoPackage}
	case pkg.ExamResults == nil:
		return model.ReportContext{}, &PreconditionError{Op: OpReport, Reason: ReasonNoResults}
	case len(pkg.Checklist) == 0:
		return model.ReportContext{}, &PreconditionError{Op: OpReport, Reason: ReasonNoChecklist}
	}

	completed, pending := model.SplitChecklist(pkg.Checklist, st.s.Checklist)
	st.s.Err = nil
	st.s.ReportLoading = true
	st.s.Report = nil
	return model.ReportContext{
		UserProfile:             st.s.Query,
		ExamResults:             *pkg.ExamResults,
		CompletedChecklistItems: completed,
		PendingChecklistItems:   pending,
		RecommendedTools:        pkg.ToolCategories,
	}, nil
}

// CompleteReport stores the report data, or records err.
func (st *Store) CompleteReport(data *model.ProgressReportData, err error) {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.s.ReportLoading = false
	if err != nil {
		st.s.Err = err
		return
	}
	st.s.Report = data
}

// ReturnToDashboard clears the report once it has been printed.
func (st *Store) ReturnToDashboard() {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.s.Report = nil
	st.s.ReportLoading = false
}

// BeginChat appends the user's message and returns what the answer needs: the profile
// query and the current package.
func (st *Store) BeginChat(msg model.ChatMessage) (string, model.GuidancePackage, error) {
	st.mu.Lock()
	defer st.mu.Unlock()
	if st.s.Package == nil {
		return "", model.GuidancePackage{}, &PreconditionError{Op: OpChat, Reason: ReasonNoPackage}
	}
	st.s.Chat = append(st.s.Chat, msg)
	return st.s.Query, *st.s.Package, nil
}

// AppendChat adds a message to the chat transcript.
func (st *Store) AppendChat(msg model.ChatMessage) {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.s.Chat = append(st.s.Chat, msg)
}

// SetChatPrefill stores text to seed the chat input with.
func (st *Store) SetChatPrefill(text string) {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.s.ChatPrefill = text
}

// TakeChatPrefill returns the pending prefill text and clears it.
func (st *Store) TakeChatPrefill() string {
	st.mu.Lock()
	defer st.mu.Unlock()
	text := st.s.ChatPrefill
	st.s.ChatPrefill = ""
	return text
}

// Snapshot returns a copy of the current state. Guidance and report values are shared
// with the store: they are replaced, never modified, once stored.
func (st *Store) Snapshot() State {
	st.mu.Lock()
	defer st.mu.Unlock()
	snap := st.s
	snap.Checklist = maps.Clone(st.s.Checklist)
	snap.Questions = slices.Clone(st.s.Questions)
	snap.Chat = slices.Clone(st.s.Chat)
	return snap
}
