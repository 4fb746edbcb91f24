package sgb

// Persisted keys. These are the key names used by the web client and must
// stay unchanged so existing data can be read.
const (
	KeyAnalyses    = "saenggibu_analyses"
	KeyInteraction = "huntfire_interaction"
)

// Session keys survive ClearCache.
var SessionKeys = []string{
	"user_session_id",
	"student_id",
	"student_name",
	"user_display_number",
}

// Store is a durable map from string keys to serialized values.
// There are no transactions across keys. Implementations return
// ErrQuotaExceeded or ErrStorageUnavailable (possibly wrapped) when a write
// cannot be honored.
type Store interface {
	// Get returns the value stored under key. ok is false if the key is absent.
	Get(key string) (value string, ok bool, err error)

	// Set stores value under key, replacing any previous value.
	Set(key, value string) error

	// Remove deletes key. Removing an absent key is not an error.
	Remove(key string) error

	// Keys lists every key currently stored, in no particular order.
	Keys() ([]string, error)

	// Close releases backend resources.
	Close() error
}
