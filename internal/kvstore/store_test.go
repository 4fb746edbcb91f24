package kvstore

import (
	"bytes"
	"context"
	"errors"
	"io"
	"sort"
	"strings"
	"sync"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/redis/go-redis/v9"

	"sgb-go/internal/encryption"
	"sgb-go/internal/sgb"
)

// testStoreContract exercises the behavior every sgb.Store must share.
func testStoreContract(t *testing.T, s sgb.Store) {
	t.Helper()

	if _, ok, err := s.Get("saenggibu_analyses"); err != nil || ok {
		t.Fatalf("Get(absent) = ok %v, err %v; want absent", ok, err)
	}

	values := map[string]string{
		"saenggibu_analyses":   `[{"id":"1","studentName":"김*수"}]`,
		"huntfire_interaction": `{"likedAgents":["1"],"savedAgents":[],"likedComments":[]}`,
		"student_name":         "김민수",
		"odd/key with space":   "x",
	}
	for k, v := range values {
		if err := s.Set(k, v); err != nil {
			t.Fatalf("Set(%q) error = %v", k, err)
		}
	}
	for k, want := range values {
		got, ok, err := s.Get(k)
		if err != nil || !ok {
			t.Fatalf("Get(%q) = ok %v, err %v", k, ok, err)
		}
		if got != want {
			t.Errorf("Get(%q) = %q, want %q", k, got, want)
		}
	}

	if err := s.Set("student_name", "이영희"); err != nil {
		t.Fatalf("Set(overwrite) error = %v", err)
	}
	if got, _, _ := s.Get("student_name"); got != "이영희" {
		t.Errorf("Get after overwrite = %q, want %q", got, "이영희")
	}

	keys, err := s.Keys()
	if err != nil {
		t.Fatalf("Keys() error = %v", err)
	}
	sort.Strings(keys)
	want := []string{"huntfire_interaction", "odd/key with space", "saenggibu_analyses", "student_name"}
	if strings.Join(keys, ",") != strings.Join(want, ",") {
		t.Errorf("Keys() = %v, want %v", keys, want)
	}

	if err := s.Remove("student_name"); err != nil {
		t.Fatalf("Remove() error = %v", err)
	}
	if _, ok, _ := s.Get("student_name"); ok {
		t.Error("Get after Remove reports present")
	}
	if err := s.Remove("never-set"); err != nil {
		t.Errorf("Remove(absent) error = %v", err)
	}
}

func TestMemoryStore(t *testing.T) {
	testStoreContract(t, NewMemoryStore())
}

func TestFileSystemStore(t *testing.T) {
	dir := t.TempDir()
	s, err := NewFileSystemStore(dir)
	if err != nil {
		t.Fatalf("NewFileSystemStore() error = %v", err)
	}
	testStoreContract(t, s)

	// Values survive reopening.
	reopened, err := NewFileSystemStore(dir)
	if err != nil {
		t.Fatalf("NewFileSystemStore() reopen error = %v", err)
	}
	if _, ok, _ := reopened.Get("saenggibu_analyses"); !ok {
		t.Error("value missing after reopen")
	}
}

func TestSQLiteStore(t *testing.T) {
	s, err := NewSQLiteStore(":memory:", nil)
	if err != nil {
		t.Fatalf("NewSQLiteStore() error = %v", err)
	}
	t.Cleanup(func() { s.Close() })

	testStoreContract(t, s)

	if err := s.CheckSchema(); err != nil {
		t.Errorf("CheckSchema() error = %v", err)
	}
	if _, ok, err := s.UpdatedAt("saenggibu_analyses"); err != nil || !ok {
		t.Errorf("UpdatedAt() = ok %v, err %v; want present", ok, err)
	}
}

func TestSQLiteStore_Persists(t *testing.T) {
	path := t.TempDir() + "/data/sgb.db"

	s, err := NewSQLiteStore(path, nil)
	if err != nil {
		t.Fatalf("NewSQLiteStore() error = %v", err)
	}
	if err := s.Set("k", "v"); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	s.Close()

	s, err = NewSQLiteStore(path, nil)
	if err != nil {
		t.Fatalf("NewSQLiteStore() reopen error = %v", err)
	}
	defer s.Close()
	if got, ok, _ := s.Get("k"); !ok || got != "v" {
		t.Errorf("Get() after reopen = %q, %v; want %q", got, ok, "v")
	}
}

func TestBadgerStore(t *testing.T) {
	s, err := NewBadgerStore("", true)
	if err != nil {
		t.Fatalf("NewBadgerStore() error = %v", err)
	}
	t.Cleanup(func() { s.Close() })

	testStoreContract(t, s)
}

func TestRedisStore(t *testing.T) {
	mr := miniredis.RunT(t)

	s, err := NewRedisStore(mr.Addr(), "", 0, "sgb:")
	if err != nil {
		t.Fatalf("NewRedisStore() error = %v", err)
	}
	t.Cleanup(func() { s.Close() })

	// A key outside the prefix must not show up.
	mr.Set("other:key", "x")

	testStoreContract(t, s)

	if !mr.Exists("sgb:saenggibu_analyses") {
		t.Error("value not stored under prefix")
	}
}

func TestRedisStore_EmptyPrefixStaysScoped(t *testing.T) {
	mr := miniredis.RunT(t)
	mr.Set("session:other-app", "x")

	s, err := NewRedisStore(mr.Addr(), "", 0, "")
	if err != nil {
		t.Fatalf("NewRedisStore() error = %v", err)
	}
	t.Cleanup(func() { s.Close() })

	if err := s.Set("k", "v"); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	keys, err := s.Keys()
	if err != nil {
		t.Fatalf("Keys() error = %v", err)
	}
	if len(keys) != 1 || keys[0] != "k" {
		t.Errorf("Keys() = %v, want [k]", keys)
	}
	if !mr.Exists(DefaultRedisPrefix + "k") {
		t.Errorf("value not stored under %q", DefaultRedisPrefix)
	}
	for _, k := range keys {
		if err := s.Remove(k); err != nil {
			t.Fatalf("Remove() error = %v", err)
		}
	}
	if !mr.Exists("session:other-app") {
		t.Error("foreign key removed")
	}
}

func TestRedisStore_Unavailable(t *testing.T) {
	mr := miniredis.RunT(t)
	s := NewRedisStoreFromClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}), "sgb:")
	mr.Close()

	if _, _, err := s.Get("k"); err == nil {
		t.Error("Get() on closed server expected error")
	}
}

type fakeS3 struct {
	S3API
	mu      sync.Mutex
	objects map[string][]byte
}

func newFakeS3() *fakeS3 { return &fakeS3{objects: make(map[string][]byte)} }

func (f *fakeS3) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	data, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.objects[aws.ToString(in.Key)] = data
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeS3) GetObject(_ context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	data, ok := f.objects[aws.ToString(in.Key)]
	if !ok {
		return nil, &types.NoSuchKey{}
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(bytes.NewReader(data))}, nil
}

func (f *fakeS3) DeleteObject(_ context.Context, in *s3.DeleteObjectInput, _ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.objects, aws.ToString(in.Key))
	return &s3.DeleteObjectOutput{}, nil
}

func (f *fakeS3) ListObjectsV2(_ context.Context, in *s3.ListObjectsV2Input, _ ...func(*s3.Options)) (*s3.ListObjectsV2Output, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := &s3.ListObjectsV2Output{IsTruncated: aws.Bool(false)}
	for k := range f.objects {
		if strings.HasPrefix(k, aws.ToString(in.Prefix)) {
			out.Contents = append(out.Contents, types.Object{Key: aws.String(k)})
		}
	}
	return out, nil
}

func TestS3Store(t *testing.T) {
	client := newFakeS3()
	s := NewS3StoreFromClient(client, "bucket", "sgb/")

	testStoreContract(t, s)

	if _, ok := client.objects["sgb/saenggibu_analyses"]; !ok {
		t.Error("object not stored under prefix")
	}
}

func TestQuotaStore(t *testing.T) {
	testStoreContract(t, NewQuotaStore(NewMemoryStore(), 1<<20))
}

func TestQuotaStore_Limit(t *testing.T) {
	s := NewQuotaStore(NewMemoryStore(), 20)

	// len("k1")+len("12345678") = 10
	if err := s.Set("k1", "12345678"); err != nil {
		t.Fatalf("Set(k1) error = %v", err)
	}
	if err := s.Set("k2", "1234567890"); err == nil {
		t.Fatal("Set(k2) over quota expected error")
	} else if !errors.Is(err, sgb.ErrQuotaExceeded) {
		t.Errorf("Set(k2) error = %v, want ErrQuotaExceeded", err)
	}
	if _, ok, _ := s.Get("k2"); ok {
		t.Error("rejected write was stored")
	}

	// Replacing a value only counts the new size.
	if err := s.Set("k1", "123456789012345678"); err != nil {
		t.Errorf("Set(k1) replace within quota error = %v", err)
	}

	used, err := s.Usage()
	if err != nil {
		t.Fatalf("Usage() error = %v", err)
	}
	if used != 20 {
		t.Errorf("Usage() = %d, want 20", used)
	}
}

func TestParseQuota(t *testing.T) {
	tests := []struct {
		in      string
		want    int64
		wantErr bool
	}{
		{in: "5MB", want: 5_000_000},
		{in: "5MiB", want: 5 << 20},
		{in: "512 kB", want: 512_000},
		{in: "0", want: 0},
		{in: "", want: 0},
		{in: "lots", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseQuota(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseQuota(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseQuota(%q) = %d, want %d", tt.in, got, tt.want)
			}
		})
	}
}

func TestEncryptedStore(t *testing.T) {
	enc := encryption.NewTestEncryptor()
	dec, err := enc.Unlock("")
	if err != nil {
		t.Fatalf("Unlock() error = %v", err)
	}
	inner := NewMemoryStore()
	s := NewEncryptedStore(inner, enc, dec)

	testStoreContract(t, s)

	raw, _, _ := inner.Get("saenggibu_analyses")
	if !strings.HasPrefix(raw, "-----BEGIN AGE ENCRYPTED FILE-----") {
		t.Errorf("stored value is not armored: %q", raw)
	}
}

func TestEncryptedStore_Locked(t *testing.T) {
	enc := encryption.NewTestEncryptor()
	inner := NewMemoryStore()
	if err := inner.Set("legacy", "plain"); err != nil {
		t.Fatal(err)
	}

	s := NewEncryptedStore(inner, enc, nil)
	if err := s.Set("secret", "value"); err != nil {
		t.Fatalf("Set() on locked store error = %v", err)
	}
	if _, _, err := s.Get("secret"); !errors.Is(err, sgb.ErrStorageUnavailable) {
		t.Errorf("Get(secret) error = %v, want ErrStorageUnavailable", err)
	}
	if got, ok, err := s.Get("legacy"); err != nil || !ok || got != "plain" {
		t.Errorf("Get(legacy) = %q, %v, %v; want plaintext passthrough", got, ok, err)
	}
}
