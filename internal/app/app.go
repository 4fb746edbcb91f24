package app

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"sgb-go/internal/analysis"
	"sgb-go/internal/config"
	"sgb-go/internal/encryption"
	"sgb-go/internal/kvstore"
	"sgb-go/internal/model"
	"sgb-go/internal/ranking"
	"sgb-go/internal/sgb"
)

// PassphraseFunc supplies the passphrase that unlocks an encrypted store.
type PassphraseFunc func() (string, error)

// Options are per-invocation switches that do not belong in the config file.
type Options struct {
	Verbose bool
	// Passphrase is asked only when encryption is configured. A nil func
	// leaves the store locked: writes work, encrypted reads fail.
	Passphrase PassphraseFunc
}

// SGBApp is the application layer between the CLI and SGBService.
// It constructs all dependencies from config, exposes high-level operations
// that accept raw CLI arguments, and closes the store on Close.
type SGBApp struct {
	cfg     *config.Config
	store   sgb.Store
	service *sgb.SGBService
	session sgb.Session
	clock   sgb.Clock
	op      *Operation
	logger  *slog.Logger
	logFile *os.File
}

// NewSGBApp creates a fully wired SGBApp from the given config.
// operation names the CLI command being run (e.g. "share", "like").
// The caller must call Close when done.
func NewSGBApp(cfg *config.Config, operation string, opts Options) (*SGBApp, error) {
	return newSGBApp(cfg, operation, opts, sgb.RealClock{})
}

func newSGBApp(cfg *config.Config, operation string, opts Options, clock sgb.Clock) (*SGBApp, error) {
	if cfg.UserID == "" {
		return nil, fmt.Errorf("config has no user_id: run `sgb config init`")
	}

	extractor, err := analysis.NewTextExtractor(cfg.Analysis.Extractor)
	if err != nil {
		return nil, fmt.Errorf("creating text extractor: %w", err)
	}
	analyzer, err := analysis.NewAnalyzer(cfg.Analysis.Analyzer)
	if err != nil {
		return nil, fmt.Errorf("creating analyzer: %w", err)
	}

	backend, err := kvstore.NewStoreFromConfig(cfg.Store, clock)
	if err != nil {
		return nil, fmt.Errorf("creating store: %w", err)
	}

	store, err := openEncryption(backend, cfg.Encryption, opts.Passphrase)
	if err != nil {
		backend.Close()
		return nil, err
	}

	op := NewOperation(operation, clock.Now())
	logger, logFile, err := newLogger(cfg.LogDir, op.ID, opts.Verbose)
	if err != nil {
		store.Close()
		return nil, fmt.Errorf("creating logger: %w", err)
	}

	svc := sgb.NewSGBService(store, extractor, analyzer, &slogAdapter{l: logger}, clock, sgb.UUIDGenerator{},
		sgb.ServiceOptions{MaskNames: cfg.Privacy.MaskNames})

	logger.Debug("operation started", "op", op.Name, "store", cfg.Store.Type, "encryption", cfg.Encryption.Type)

	return &SGBApp{
		cfg:     cfg,
		store:   store,
		service: svc,
		session: sgb.Session{UserID: cfg.UserID},
		clock:   clock,
		op:      op,
		logger:  logger,
		logFile: logFile,
	}, nil
}

// openEncryption wraps inner in an EncryptedStore when encryption is
// configured. Without a passphrase func the store stays locked.
func openEncryption(inner sgb.Store, cfg config.EncryptionConfig, passphrase PassphraseFunc) (sgb.Store, error) {
	enc, err := encryption.NewEncryptorFromConfig(cfg)
	if err != nil {
		return nil, fmt.Errorf("creating encryptor: %w", err)
	}
	if enc == nil {
		return inner, nil
	}
	if !enc.IsConfigured() {
		return nil, fmt.Errorf("encryption keys not found: run `sgb config init`")
	}
	if passphrase == nil {
		return kvstore.NewEncryptedStore(inner, enc, nil), nil
	}

	p, err := passphrase()
	if err != nil {
		return nil, fmt.Errorf("reading passphrase: %w", err)
	}
	dec, err := enc.Unlock(p)
	if err != nil {
		return nil, fmt.Errorf("unlocking store: %w", err)
	}
	return kvstore.NewEncryptedStore(inner, enc, dec), nil
}

// Session returns the local user's session.
func (a *SGBApp) Session() sgb.Session { return a.session }

// Fail marks the current operation as failed in the log.
func (a *SGBApp) Fail(err error) { a.op.Fail(err) }

// Analyze resolves the given page paths and runs an analysis. The result is
// not stored.
func (a *SGBApp) Analyze(ctx context.Context, rawPaths []string, careerDirection string) (model.AnalysisRecord, error) {
	paths := make([]string, 0, len(rawPaths))
	for _, p := range rawPaths {
		abs, err := filepath.Abs(p)
		if err != nil {
			return model.AnalysisRecord{}, fmt.Errorf("resolving path: %w", err)
		}
		paths = append(paths, abs)
	}
	return a.service.Analyze(ctx, a.session, paths, careerDirection)
}

// Share publishes an analysis under the given student identity.
func (a *SGBApp) Share(record model.AnalysisRecord, req model.ShareRequest) (model.AnalysisRecord, error) {
	return a.service.Share(a.session, record, req)
}

// SaveAsPrivate stores an analysis visible only to the local user.
func (a *SGBApp) SaveAsPrivate(record model.AnalysisRecord) (model.AnalysisRecord, error) {
	return a.service.SaveAsPrivate(a.session, record)
}

// List returns records for scope: "all", "mine" or "public".
func (a *SGBApp) List(scope string) ([]model.AnalysisRecord, error) {
	switch scope {
	case "all":
		return a.service.Repository().ListAll(), nil
	case "mine":
		return a.service.ListMine(a.session), nil
	case "public", "":
		return a.service.ListPublic(), nil
	default:
		return nil, fmt.Errorf("unknown list scope %q (want all, mine or public)", scope)
	}
}

// Get returns one record.
func (a *SGBApp) Get(id string) (model.AnalysisRecord, error) {
	return a.service.Get(id)
}

// Interaction returns the local user's like/save state.
func (a *SGBApp) Interaction() model.InteractionState {
	return a.service.Interaction()
}

// ToggleLike flips the local user's like on a record.
func (a *SGBApp) ToggleLike(id string) (sgb.Delta, error) {
	return a.service.ToggleLike(id)
}

// ToggleSave flips the local user's save on a record.
func (a *SGBApp) ToggleSave(id string) (sgb.Delta, error) {
	return a.service.ToggleSave(id)
}

// AddComment comments on a record.
func (a *SGBApp) AddComment(recordID, content string) (model.Comment, error) {
	return a.service.AddComment(a.session, recordID, content)
}

// AddReply replies to a comment, or to one of its replies when parentReplyID is set.
func (a *SGBApp) AddReply(recordID, commentID, parentReplyID, content string) (model.Reply, error) {
	if parentReplyID == "" {
		return a.service.AddReply(a.session, recordID, commentID, content)
	}
	return a.service.AddNestedReply(a.session, recordID, commentID, parentReplyID, content)
}

// SetVisibility marks a record private or public.
func (a *SGBApp) SetVisibility(id string, private bool) error {
	return a.service.SetVisibility(id, private)
}

// Delete removes a record.
func (a *SGBApp) Delete(id string) error {
	return a.service.Delete(id)
}

// Trending returns the most liked recent public records.
func (a *SGBApp) Trending() []model.AnalysisRecord {
	return a.service.Trending()
}

// Recommend returns public records ranked for query.
func (a *SGBApp) Recommend(query string) []model.AnalysisRecord {
	return a.service.Recommend(query)
}

// Explore filters public records. sort is "recent" or "popular"; tab is
// "all" or "saved".
func (a *SGBApp) Explore(query, sort, tab string) ([]model.AnalysisRecord, error) {
	s := ranking.SortOrder(sort)
	if s != ranking.SortRecent && s != ranking.SortPopular {
		return nil, fmt.Errorf("unknown sort %q (want recent or popular)", sort)
	}
	tb := ranking.Tab(tab)
	if tb != ranking.TabAll && tb != ranking.TabSaved {
		return nil, fmt.Errorf("unknown tab %q (want all or saved)", tab)
	}
	return a.service.Explore(query, s, tb), nil
}

// ClearCache removes everything but the session keys.
func (a *SGBApp) ClearCache() (int, error) {
	return a.service.ClearCache()
}

// StoreInfo describes the configured store.
type StoreInfo struct {
	Type      string
	Encrypted bool
	Keys      int
	Size      int64
	Quota     int64 // 0 when unlimited
	Schema    error // sqlite only
	UpdatedAt time.Time
}

// StoreInfo reports size, quota and backend details.
func (a *SGBApp) StoreInfo() (StoreInfo, error) {
	keys, err := a.store.Keys()
	if err != nil {
		return StoreInfo{}, fmt.Errorf("listing keys: %w", err)
	}
	info := StoreInfo{
		Type: a.cfg.Store.Type,
		Keys: len(keys),
		Size: a.service.StorageSize(),
	}

	for s := a.store; s != nil; {
		switch st := s.(type) {
		case *kvstore.EncryptedStore:
			info.Encrypted = true
		case *kvstore.QuotaStore:
			info.Quota = st.Limit()
		case *kvstore.SQLiteStore:
			info.Schema = st.CheckSchema()
			if t, ok, err := st.UpdatedAt(sgb.KeyAnalyses); err == nil && ok {
				info.UpdatedAt = t
			}
		}
		u, ok := s.(interface{ Unwrap() sgb.Store })
		if !ok {
			break
		}
		s = u.Unwrap()
	}
	return info, nil
}

// Close logs the outcome of the operation and releases the store.
func (a *SGBApp) Close() error {
	a.logger.Info("operation finished", "op", a.op.Name, "status", a.op.Status,
		"elapsed", a.op.Elapsed(a.clock.Now()).Round(time.Millisecond))

	var firstErr error
	if err := a.store.Close(); err != nil {
		firstErr = fmt.Errorf("closing store: %w", err)
	}
	if a.logFile != nil {
		a.logFile.Close()
	}
	return firstErr
}
