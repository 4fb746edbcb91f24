package model

import "time"

// ErrorKind classifies a flagged compliance issue. The values are the
// persisted wire strings and must not change.
type ErrorKind string

const (
	ErrorKindForbidden ErrorKind = "금지"
	ErrorKindCaution   ErrorKind = "주의"
)

// AnalysisRecord is one persisted analysis result.
// JSON field names match data already written by the web client.
type AnalysisRecord struct {
	ID              string           `json:"id"`
	StudentName     string           `json:"studentName"` // display name, possibly masked
	StudentID       string           `json:"studentId,omitempty"`
	UploadDate      time.Time        `json:"uploadDate"`
	OverallScore    int              `json:"overallScore"` // 0-100
	CareerDirection string           `json:"careerDirection,omitempty"`
	CareerAlignment *CareerAlignment `json:"careerAlignment,omitempty"`
	Strengths       []string         `json:"strengths"`
	Improvements    []string         `json:"improvements"`
	Errors          []ErrorItem      `json:"errors"`
	Suggestions     []string         `json:"suggestions"`
	Files           []string         `json:"files"`
	Likes           int              `json:"likes"`
	Saves           int              `json:"saves"`
	Comments        []Comment        `json:"comments"`
	UserID          string           `json:"userId"` // owner
	IsPrivate       bool             `json:"isPrivate,omitempty"`
	AIKillerResult  *AIKillerResult  `json:"aiKillerResult,omitempty"`
}

// CareerAlignment describes how well a record fits a stated career direction.
type CareerAlignment struct {
	Percentage   int      `json:"percentage"`
	Summary      string   `json:"summary"`
	Strengths    []string `json:"strengths"`
	Improvements []string `json:"improvements"`
}

// ErrorItem is a flagged compliance issue on a given page.
type ErrorItem struct {
	Type       ErrorKind `json:"type"`
	Content    string    `json:"content"`
	Reason     string    `json:"reason"`
	Page       int       `json:"page"`
	Suggestion string    `json:"suggestion,omitempty"`
	RiskLevel  int       `json:"riskLevel,omitempty"`
}

// AIKillerResult is an opaque detector payload; it is stored, never interpreted.
type AIKillerResult struct {
	OverallAIProbability int                 `json:"overallAIProbability"`
	DetectedSections     []AIDetectedSection `json:"detectedSections"`
	RiskAssessment       string              `json:"riskAssessment"`
	Recommendations      []string            `json:"recommendations"`
}

// AIDetectedSection is one section flagged by the detector.
type AIDetectedSection struct {
	Content                string   `json:"content"`
	AIProbability          int      `json:"aiProbability"`
	LineNumber             int      `json:"lineNumber"`
	Reason                 string   `json:"reason"`
	HumanWritingIndicators []string `json:"humanWritingIndicators"`
	AIWritingIndicators    []string `json:"aiWritingIndicators"`
}

// Comment is owned by exactly one AnalysisRecord.
type Comment struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	UserName  string    `json:"userName"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
	Replies   []Reply   `json:"replies"`
	Likes     int       `json:"likes"`
}

// Reply is owned by exactly one Comment. ParentReplyID, when set, names a
// sibling reply in the same comment; it is used for grouping only.
type Reply struct {
	ID            string    `json:"id"`
	UserID        string    `json:"userId"`
	UserName      string    `json:"userName"`
	Content       string    `json:"content"`
	CreatedAt     time.Time `json:"createdAt"`
	Likes         int       `json:"likes"`
	ParentReplyID string    `json:"parentReplyId,omitempty"`
}

// InteractionState is the local user's like/save membership.
// It is persisted apart from the records themselves.
type InteractionState struct {
	LikedIDs        IDSet `json:"likedAgents"`
	SavedIDs        IDSet `json:"savedAgents"`
	LikedCommentIDs IDSet `json:"likedComments"` // modeled, unused by current flows
}

// NewInteractionState returns a state with all sets empty.
func NewInteractionState() InteractionState {
	return InteractionState{
		LikedIDs:        NewIDSet(),
		SavedIDs:        NewIDSet(),
		LikedCommentIDs: NewIDSet(),
	}
}

// Normalize replaces nil sets (fields missing from stored data) with empty ones.
func (s *InteractionState) Normalize() {
	if s.LikedIDs == nil {
		s.LikedIDs = NewIDSet()
	}
	if s.SavedIDs == nil {
		s.SavedIDs = NewIDSet()
	}
	if s.LikedCommentIDs == nil {
		s.LikedCommentIDs = NewIDSet()
	}
}

// AnalysisPatch is a partial update. Nil fields are left untouched.
// Score fields are deliberately absent: they are fixed at creation.
type AnalysisPatch struct {
	Likes       *int
	Saves       *int
	Comments    *[]Comment
	IsPrivate   *bool
	StudentName *string
	StudentID   *string
}

// Apply merges the patch into r and returns the result.
func (p AnalysisPatch) Apply(r AnalysisRecord) AnalysisRecord {
	if p.Likes != nil {
		r.Likes = *p.Likes
	}
	if p.Saves != nil {
		r.Saves = *p.Saves
	}
	if p.Comments != nil {
		r.Comments = *p.Comments
	}
	if p.IsPrivate != nil {
		r.IsPrivate = *p.IsPrivate
	}
	if p.StudentName != nil {
		r.StudentName = *p.StudentName
	}
	if p.StudentID != nil {
		r.StudentID = *p.StudentID
	}
	return r
}

// ShareRequest is the data a user submits when publishing an analysis.
type ShareRequest struct {
	StudentID     string `json:"studentId"`
	Name          string `json:"name"`
	AgreedToTerms bool   `json:"agreedToTerms"`
	IsPrivate     bool   `json:"isPrivate"`
}
