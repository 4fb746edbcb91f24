package sgb

import (
	"context"
	"fmt"
	"math/rand"
	"slices"
	"strconv"
	"sync"

	"sgb-go/internal/analysis"
	"sgb-go/internal/model"
	"sgb-go/internal/privacy"
	"sgb-go/internal/ranking"
	"sgb-go/internal/validation"
)

// Session identifies the local user.
type Session struct {
	UserID string
}

// ServiceOptions holds behavior switches that come from configuration.
type ServiceOptions struct {
	// MaskNames stores shared display names with all but the first character starred.
	MaskNames bool
}

// SGBService is the orchestration layer the CLI talks to. It keeps set
// membership and counters moving together and validates user input before
// anything is persisted.
type SGBService struct {
	store     Store
	repo      AnalysisRepository
	tracker   *InteractionTracker
	extractor analysis.TextExtractor
	analyzer  analysis.Analyzer
	logger    Logger
	clock     Clock
	idgen     IDGenerator
	recordIDs IDGenerator
	opts      ServiceOptions

	// mu serializes multi-step operations: a toggle reads the record,
	// updates interaction state and writes the counter.
	mu sync.Mutex
}

// NewSGBService creates a service over store. Records get timestamp ids from
// clock; comments and replies get ids from idgen.
func NewSGBService(store Store, extractor analysis.TextExtractor, analyzer analysis.Analyzer, logger Logger, clock Clock, idgen IDGenerator, opts ServiceOptions) *SGBService {
	return &SGBService{
		store:     store,
		repo:      NewKVAnalysisRepository(store, logger),
		tracker:   NewInteractionTracker(store, logger),
		extractor: extractor,
		analyzer:  analyzer,
		logger:    logger,
		clock:     clock,
		idgen:     idgen,
		recordIDs: TimestampIDGenerator{Clock: clock},
		opts:      opts,
	}
}

// Repository exposes the underlying repository for read-only listings.
func (s *SGBService) Repository() AnalysisRepository { return s.repo }

// Get returns the record with id.
func (s *SGBService) Get(id string) (model.AnalysisRecord, error) {
	rec, ok := s.repo.Get(id)
	if !ok {
		return model.AnalysisRecord{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return rec, nil
}

// ListMine returns the session user's records, private ones included.
func (s *SGBService) ListMine(session Session) []model.AnalysisRecord {
	return s.repo.ListByOwner(session.UserID)
}

// ListPublic returns every record that is not private.
func (s *SGBService) ListPublic() []model.AnalysisRecord {
	return s.repo.ListPublic()
}

// Interaction returns the persisted like/save state.
func (s *SGBService) Interaction() model.InteractionState {
	return s.tracker.Load()
}

// ToggleLike flips the like on record id and adjusts its like counter.
func (s *SGBService) ToggleLike(id string) (Delta, error) {
	return s.toggle(id, "like", ToggleLike,
		func(r model.AnalysisRecord) int { return r.Likes },
		func(n int) model.AnalysisPatch { return model.AnalysisPatch{Likes: &n} })
}

// ToggleSave flips the save on record id and adjusts its save counter.
func (s *SGBService) ToggleSave(id string) (Delta, error) {
	return s.toggle(id, "save", ToggleSave,
		func(r model.AnalysisRecord) int { return r.Saves },
		func(n int) model.AnalysisPatch { return model.AnalysisPatch{Saves: &n} })
}

func (s *SGBService) toggle(
	id, kind string,
	flip func(string, *model.InteractionState) Delta,
	count func(model.AnalysisRecord) int,
	patch func(int) model.AnalysisPatch,
) (Delta, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.repo.Get(id)
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	var d Delta
	if _, ok := s.tracker.Modify(func(st *model.InteractionState) {
		d = flip(id, st)
	}); !ok {
		return 0, fmt.Errorf("%w: reading interaction state", ErrStorageUnavailable)
	}
	s.repo.Update(id, patch(ApplyDelta(count(rec), d)))

	s.logger.Info("interaction toggled", "kind", kind, "id", id, "delta", int(d))
	return d, nil
}

// AddComment appends a comment to record recordID.
func (s *SGBService) AddComment(session Session, recordID, content string) (model.Comment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.repo.Get(recordID)
	if !ok {
		return model.Comment{}, fmt.Errorf("%w: %s", ErrNotFound, recordID)
	}

	c := model.Comment{
		ID:        s.idgen.New(),
		UserID:    session.UserID,
		UserName:  s.displayName(),
		Content:   content,
		CreatedAt: s.clock.Now(),
		Replies:   []model.Reply{},
	}
	if err := check(validation.Comment(c)); err != nil {
		return model.Comment{}, err
	}

	comments := append(slices.Clone(rec.Comments), c)
	s.repo.Update(recordID, model.AnalysisPatch{Comments: &comments})

	s.logger.Info("comment added", "record", recordID, "comment", c.ID)
	return c, nil
}

// AddReply appends a direct reply to a comment.
func (s *SGBService) AddReply(session Session, recordID, commentID, content string) (model.Reply, error) {
	return s.addReply(session, recordID, commentID, "", content)
}

// AddNestedReply appends a reply addressed to an existing reply of the same
// comment. The parent must exist at creation time.
func (s *SGBService) AddNestedReply(session Session, recordID, commentID, parentReplyID, content string) (model.Reply, error) {
	if parentReplyID == "" {
		return model.Reply{}, NewValidationError("parentReplyId", "parent reply is required")
	}
	return s.addReply(session, recordID, commentID, parentReplyID, content)
}

func (s *SGBService) addReply(session Session, recordID, commentID, parentReplyID, content string) (model.Reply, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.repo.Get(recordID)
	if !ok {
		return model.Reply{}, fmt.Errorf("%w: %s", ErrNotFound, recordID)
	}

	idx := slices.IndexFunc(rec.Comments, func(c model.Comment) bool { return c.ID == commentID })
	if idx < 0 {
		return model.Reply{}, NewValidationError("commentId", "comment not found: "+commentID)
	}
	if parentReplyID != "" {
		found := slices.ContainsFunc(rec.Comments[idx].Replies, func(r model.Reply) bool { return r.ID == parentReplyID })
		if !found {
			return model.Reply{}, NewValidationError("parentReplyId", "reply not found in comment: "+parentReplyID)
		}
	}

	r := model.Reply{
		ID:            s.idgen.New(),
		UserID:        session.UserID,
		UserName:      s.displayName(),
		Content:       content,
		CreatedAt:     s.clock.Now(),
		ParentReplyID: parentReplyID,
	}
	if err := check(validation.Reply(r)); err != nil {
		return model.Reply{}, err
	}

	comments := slices.Clone(rec.Comments)
	comments[idx].Replies = append(slices.Clone(comments[idx].Replies), r)
	s.repo.Update(recordID, model.AnalysisPatch{Comments: &comments})

	s.logger.Info("reply added", "record", recordID, "comment", commentID, "reply", r.ID, "parent", parentReplyID)
	return r, nil
}

// Share publishes (or privately stores) an analysis under the submitted
// student identity. The identity is also kept as session data so later
// comments are signed with it.
func (s *SGBService) Share(session Session, record model.AnalysisRecord, req model.ShareRequest) (model.AnalysisRecord, error) {
	if err := check(validation.Share(req)); err != nil {
		return model.AnalysisRecord{}, err
	}

	name := req.Name
	if s.opts.MaskNames {
		name = privacy.MaskName(name)
		record.Files = maskFiles(record.Files)
	}
	record.StudentName = name
	record.StudentID = req.StudentID
	record.IsPrivate = req.IsPrivate
	if record.UserID == "" {
		record.UserID = session.UserID
	}

	record, err := s.create(record)
	if err != nil {
		return model.AnalysisRecord{}, err
	}

	s.setSession("student_id", req.StudentID)
	s.setSession("student_name", req.Name)

	s.logger.Info("analysis shared", "id", record.ID, "private", record.IsPrivate)
	return record, nil
}

// SaveAsPrivate stores a private copy of record.
func (s *SGBService) SaveAsPrivate(session Session, record model.AnalysisRecord) (model.AnalysisRecord, error) {
	record.IsPrivate = true
	if record.UserID == "" {
		record.UserID = session.UserID
	}
	record, err := s.create(record)
	if err != nil {
		return model.AnalysisRecord{}, err
	}
	s.logger.Info("analysis saved privately", "id", record.ID)
	return record, nil
}

func (s *SGBService) create(record model.AnalysisRecord) (model.AnalysisRecord, error) {
	if record.ID == "" {
		record.ID = s.recordIDs.New()
	}
	if err := check(validation.Record(record)); err != nil {
		return model.AnalysisRecord{}, err
	}
	s.repo.Create(record)
	return record, nil
}

// SetVisibility marks record id private or public.
func (s *SGBService) SetVisibility(id string, private bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.repo.Get(id); !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	s.repo.Update(id, model.AnalysisPatch{IsPrivate: &private})
	s.logger.Info("visibility changed", "id", id, "private", private)
	return nil
}

// Delete removes record id.
func (s *SGBService) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.repo.Get(id); !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	s.repo.Delete(id)
	s.logger.Info("analysis deleted", "id", id)
	return nil
}

// Trending returns the most liked public records of the last day.
func (s *SGBService) Trending() []model.AnalysisRecord {
	return ranking.Trending(s.repo.ListPublic(), s.clock.Now())
}

// Recommend returns public records ranked for query.
func (s *SGBService) Recommend(query string) []model.AnalysisRecord {
	return ranking.Recommend(s.repo.ListPublic(), query, s.clock.Now())
}

// Explore applies the explore view's tab, search and sort to public records.
// The saved set is taken from the persisted interaction state.
func (s *SGBService) Explore(query string, sort ranking.SortOrder, tab ranking.Tab) []model.AnalysisRecord {
	return ranking.Filter(s.repo.ListPublic(), ranking.FilterOptions{
		Query: query,
		Sort:  sort,
		Tab:   tab,
		Saved: s.tracker.Load().SavedIDs,
	})
}

// ClearCache removes every stored key except the session keys and returns
// how many keys were removed.
func (s *SGBService) ClearCache() (int, error) {
	keys, err := s.store.Keys()
	if err != nil {
		return 0, fmt.Errorf("listing keys: %w", err)
	}

	removed := 0
	for _, k := range keys {
		if slices.Contains(SessionKeys, k) {
			continue
		}
		if err := s.store.Remove(k); err != nil {
			return removed, fmt.Errorf("removing %q: %w", k, err)
		}
		removed++
	}
	s.logger.Info("cache cleared", "removed", removed)
	return removed, nil
}

// StorageSize is the total length of every stored key and value. It is 0
// when the store cannot be read.
func (s *SGBService) StorageSize() int64 {
	keys, err := s.store.Keys()
	if err != nil {
		s.logger.Error("storage error", "op", "StorageSize", "error", err)
		return 0
	}

	var total int64
	for _, k := range keys {
		v, ok, err := s.store.Get(k)
		if err != nil {
			s.logger.Error("storage error", "op", "StorageSize", "key", k, "error", err)
			return 0
		}
		if ok {
			total += int64(len(k) + len(v))
		}
	}
	return total
}

// Analyze extracts text from each file and hands it to the analyzer. A page
// that cannot be read contributes an empty text. The result is owned by the
// session user and private; it is not stored until shared or saved.
func (s *SGBService) Analyze(ctx context.Context, session Session, files []string, careerDirection string) (model.AnalysisRecord, error) {
	if err := analysis.ValidateFiles(files); err != nil {
		return model.AnalysisRecord{}, NewValidationError("files", err.Error())
	}

	texts := make([]string, len(files))
	for i, f := range files {
		if err := ctx.Err(); err != nil {
			return model.AnalysisRecord{}, err
		}
		text, err := s.extractor.ExtractText(ctx, f)
		if err != nil {
			s.logger.Error("text extraction failed", "file", f, "error", err)
			continue
		}
		texts[i] = text
		s.warnSensitive(f, text)
	}

	rec, err := s.analyzer.Analyze(ctx, analysis.Request{
		Texts:           texts,
		Files:           files,
		CareerDirection: careerDirection,
	})
	if err != nil {
		return model.AnalysisRecord{}, fmt.Errorf("analyzing: %w", err)
	}

	rec.ID = s.recordIDs.New()
	rec.UploadDate = s.clock.Now()
	rec.UserID = session.UserID
	rec.IsPrivate = true
	rec.Likes, rec.Saves = 0, 0
	if rec.Comments == nil {
		rec.Comments = []model.Comment{}
	}

	s.logger.Info("analysis complete", "id", rec.ID, "files", len(files), "score", rec.OverallScore)
	return rec, nil
}

// warnSensitive logs student ids and phone numbers found in an uploaded
// page. Name matches alone are too broad to report.
func (s *SGBService) warnSensitive(file, text string) {
	var ids, phones int
	for _, f := range privacy.DetectSensitiveInfo(text) {
		switch f.Kind {
		case privacy.KindStudentID:
			ids++
		case privacy.KindPhone:
			phones++
		}
	}
	if ids+phones > 0 {
		s.logger.Warn("personal information in uploaded text", "file", file, "student_ids", ids, "phones", phones)
	}
}

// maskFiles masks names and numbers embedded in source file names, which
// are shown alongside a shared record.
func maskFiles(files []string) []string {
	out := make([]string, len(files))
	for i, f := range files {
		out[i] = privacy.MaskSensitiveInfo(f)
	}
	return out
}

// displayName is how the local user signs comments: the shared student id
// and name when known, otherwise a stable "학생N" pseudonym.
func (s *SGBService) displayName() string {
	id, _ := s.session("student_id")
	name, _ := s.session("student_name")
	if id != "" && name != "" {
		return id + name
	}

	n, ok := s.session("user_display_number")
	if !ok || n == "" {
		n = strconv.Itoa(rand.Intn(100) + 1)
		s.setSession("user_display_number", n)
	}
	return "학생" + n
}

func (s *SGBService) session(key string) (string, bool) {
	v, ok, err := s.store.Get(key)
	if err != nil {
		s.logger.Error("storage error", "op", "ReadSession", "key", key, "error", err)
		return "", false
	}
	return v, ok
}

func (s *SGBService) setSession(key, value string) {
	if err := s.store.Set(key, value); err != nil {
		s.logger.Error("storage error", "op", "WriteSession", "key", key, "error", err)
	}
}

// check converts validator output into a *ValidationError.
func check(fieldErrs []validation.FieldError, err error) error {
	if err != nil {
		return fmt.Errorf("validating input: %w", err)
	}
	if len(fieldErrs) == 0 {
		return nil
	}
	ve := &ValidationError{}
	for _, fe := range fieldErrs {
		ve.Add(fe.Field, fe.Message)
	}
	return ve
}
