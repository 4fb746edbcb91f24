package sgb

import (
	"errors"
	"sync"

	"sgb-go/internal/model"
)

// AnalysisRepository provides CRUD over the analysis collection.
// Storage failures are logged and swallowed: reads degrade to an empty
// collection and writes become no-ops.
type AnalysisRepository interface {
	// Create appends record. Ids are not checked for uniqueness.
	Create(record model.AnalysisRecord)

	// Update merges patch into the first record with the given id.
	// It is a silent no-op if no record matches.
	Update(id string, patch model.AnalysisPatch)

	// Delete removes every record with the given id. No-op if absent.
	Delete(id string)

	// Get returns the first record with the given id.
	Get(id string) (model.AnalysisRecord, bool)

	// ListAll returns the full collection in insertion order.
	ListAll() []model.AnalysisRecord

	// ListByOwner returns records whose UserID equals userID, including private ones.
	ListByOwner(userID string) []model.AnalysisRecord

	// ListPublic returns records that are not private.
	ListPublic() []model.AnalysisRecord
}

// KVAnalysisRepository keeps the whole collection as one JSON array under a
// single key and rewrites it on every mutation.
type KVAnalysisRepository struct {
	store  Store
	logger Logger
	key    string
	mu     sync.Mutex
}

var _ AnalysisRepository = (*KVAnalysisRepository)(nil)

// NewKVAnalysisRepository creates a repository over store using KeyAnalyses.
func NewKVAnalysisRepository(store Store, logger Logger) *KVAnalysisRepository {
	return &KVAnalysisRepository{
		store:  store,
		logger: logger,
		key:    KeyAnalyses,
	}
}

func (r *KVAnalysisRepository) Create(record model.AnalysisRecord) {
	r.mu.Lock()
	defer r.mu.Unlock()

	records, ok := r.load("Create")
	if !ok {
		return
	}
	records = append(records, record)
	r.persist("Create", records)
}

func (r *KVAnalysisRepository) Update(id string, patch model.AnalysisPatch) {
	r.mu.Lock()
	defer r.mu.Unlock()

	records, ok := r.load("Update")
	if !ok {
		return
	}
	for i := range records {
		if records[i].ID == id {
			records[i] = patch.Apply(records[i])
			r.persist("Update", records)
			return
		}
	}
	r.logger.Debug("update target not found", "id", id)
}

func (r *KVAnalysisRepository) Delete(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	records, ok := r.load("Delete")
	if !ok {
		return
	}
	kept := records[:0]
	for _, rec := range records {
		if rec.ID != id {
			kept = append(kept, rec)
		}
	}
	if len(kept) == len(records) {
		r.logger.Debug("delete target not found", "id", id)
		return
	}
	r.persist("Delete", kept)
}

func (r *KVAnalysisRepository) Get(id string) (model.AnalysisRecord, bool) {
	for _, rec := range r.ListAll() {
		if rec.ID == id {
			return rec, true
		}
	}
	return model.AnalysisRecord{}, false
}

func (r *KVAnalysisRepository) ListAll() []model.AnalysisRecord {
	r.mu.Lock()
	defer r.mu.Unlock()

	records, _ := r.load("ListAll")
	return records
}

func (r *KVAnalysisRepository) ListByOwner(userID string) []model.AnalysisRecord {
	var out []model.AnalysisRecord
	for _, rec := range r.ListAll() {
		if rec.UserID == userID {
			out = append(out, rec)
		}
	}
	return out
}

func (r *KVAnalysisRepository) ListPublic() []model.AnalysisRecord {
	var out []model.AnalysisRecord
	for _, rec := range r.ListAll() {
		if !rec.IsPrivate {
			out = append(out, rec)
		}
	}
	return out
}

// load reads and decodes the collection. ok is false only when the store
// itself failed; mutations must then be abandoned so a transient read error
// does not overwrite the stored collection. Corrupt data decodes to an empty
// collection with ok true.
func (r *KVAnalysisRepository) load(op string) ([]model.AnalysisRecord, bool) {
	data, found, err := r.store.Get(r.key)
	if err != nil {
		r.logger.Error("storage error", "op", op, "key", r.key, "error", err)
		return []model.AnalysisRecord{}, false
	}
	if !found {
		return []model.AnalysisRecord{}, true
	}

	records, err := Decode(data, []model.AnalysisRecord{})
	if err != nil {
		var de *DeserializationError
		if errors.As(err, &de) {
			de.Key = r.key
		}
		r.logger.Error("discarding unreadable collection", "op", op, "error", err)
		return []model.AnalysisRecord{}, true
	}
	if records == nil {
		records = []model.AnalysisRecord{}
	}
	return records, true
}

func (r *KVAnalysisRepository) persist(op string, records []model.AnalysisRecord) {
	data, err := Encode(records)
	if err != nil {
		r.logger.Error("serialization error", "op", op, "error", err)
		return
	}
	if err := r.store.Set(r.key, data); err != nil {
		r.logger.Error("storage error", "op", op, "key", r.key, "quota_exceeded", errors.Is(err, ErrQuotaExceeded), "error", err)
		return
	}
	r.logger.Debug("collection written", "op", op, "records", len(records))
}
