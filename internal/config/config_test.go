package config

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestManager_ReadWrite_RoundTrip(t *testing.T) {
	original := &Config{
		UserID:  "user-abc",
		BaseDir: "/home/user/.local/share/sgb",
		LogDir:  "/home/user/.local/share/sgb/log",
		Store: StoreConfig{
			Type:        "redis",
			Quota:       "10MB",
			RedisAddr:   "localhost:6379",
			RedisDB:     2,
			RedisPrefix: "sgb:",
		},
		Encryption: EncryptionConfig{
			Type:           "age",
			PublicKeyPath:  "/home/user/.local/share/sgb/keys/sgb.pub",
			PrivateKeyPath: "/home/user/.local/share/sgb/keys/sgb.key",
		},
		Privacy:  PrivacyConfig{MaskNames: true},
		Analysis: AnalysisConfig{Extractor: "tesseract", Analyzer: "mock"},
	}

	var buf bytes.Buffer
	m := &Manager{}

	if err := m.Write(&buf, original); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	got, err := m.Read(&buf)
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}

	if got.UserID != original.UserID {
		t.Errorf("UserID = %q, want %q", got.UserID, original.UserID)
	}
	if got.LogDir != original.LogDir {
		t.Errorf("LogDir = %q, want %q", got.LogDir, original.LogDir)
	}
	if got.Store != original.Store {
		t.Errorf("Store = %+v, want %+v", got.Store, original.Store)
	}
	if got.Encryption != original.Encryption {
		t.Errorf("Encryption = %+v, want %+v", got.Encryption, original.Encryption)
	}
	if !got.Privacy.MaskNames {
		t.Error("Privacy.MaskNames = false, want true")
	}
	if got.Analysis.Extractor != "tesseract" {
		t.Errorf("Analysis.Extractor = %q, want %q", got.Analysis.Extractor, "tesseract")
	}
}

func TestManager_WriteOmitsUnusedBackendFields(t *testing.T) {
	var buf bytes.Buffer
	if err := (&Manager{}).Write(&buf, NewConfig("u1", "/data/sgb")); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if strings.Contains(buf.String(), "redis_addr") {
		t.Errorf("Write() output contains redis_addr for a sqlite store:\n%s", buf.String())
	}
}

func TestNewConfig(t *testing.T) {
	cfg := NewConfig("user-1", "/data/sgb")

	tests := []struct {
		field string
		got   string
		want  string
	}{
		{field: "UserID", got: cfg.UserID, want: "user-1"},
		{field: "BaseDir", got: cfg.BaseDir, want: "/data/sgb"},
		{field: "LogDir", got: cfg.LogDir, want: "/data/sgb/log"},
		{field: "Store.Type", got: cfg.Store.Type, want: "sqlite"},
		{field: "Store.Quota", got: cfg.Store.Quota, want: DefaultQuota},
		{field: "Store.SQLitePath", got: cfg.Store.SQLitePath, want: "/data/sgb/sgb.db"},
		{field: "Encryption.Type", got: cfg.Encryption.Type, want: "none"},
		{field: "Encryption.PublicKeyPath", got: cfg.Encryption.PublicKeyPath, want: "/data/sgb/keys/sgb.pub"},
		{field: "Encryption.PrivateKeyPath", got: cfg.Encryption.PrivateKeyPath, want: "/data/sgb/keys/sgb.key"},
		{field: "Analysis.Extractor", got: cfg.Analysis.Extractor, want: "text"},
		{field: "Analysis.Analyzer", got: cfg.Analysis.Analyzer, want: "mock"},
	}

	for _, tt := range tests {
		t.Run(tt.field, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("%s = %q, want %q", tt.field, tt.got, tt.want)
			}
		})
	}
}

func TestInit(t *testing.T) {
	t.Run("creates config file", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "sgb.toml")
		cfg := NewConfig("u1", dir)

		if err := Init(path, cfg); err != nil {
			t.Fatalf("Init() error = %v", err)
		}

		if _, err := os.Stat(path); err != nil {
			t.Fatalf("config file not created: %v", err)
		}
	})

	t.Run("fails if file already exists", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "sgb.toml")
		cfg := NewConfig("u1", dir)

		if err := Init(path, cfg); err != nil {
			t.Fatalf("first Init() error = %v", err)
		}

		err := Init(path, cfg)
		if err == nil {
			t.Fatal("second Init() expected error")
		}
	})
}

func TestReadFromFile(t *testing.T) {
	t.Run("reads valid config", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "sgb.toml")
		cfg := NewConfig("read-test", dir)
		cfg.Store = StoreConfig{Type: "memory"}

		if err := Init(path, cfg); err != nil {
			t.Fatalf("Init() error = %v", err)
		}

		got, err := ReadFromFile(path)
		if err != nil {
			t.Fatalf("ReadFromFile() error = %v", err)
		}
		if got.UserID != "read-test" {
			t.Errorf("UserID = %q, want %q", got.UserID, "read-test")
		}
		if got.Store.Type != "memory" {
			t.Errorf("Store.Type = %q, want %q", got.Store.Type, "memory")
		}
	})

	t.Run("returns error for missing file", func(t *testing.T) {
		_, err := ReadFromFile("/nonexistent/path/sgb.toml")
		if err == nil {
			t.Fatal("ReadFromFile() expected error for missing file")
		}
	})
}
