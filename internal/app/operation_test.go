package app

import (
	"errors"
	"testing"
	"time"
)

func TestNewOperation(t *testing.T) {
	now := time.Date(2024, 1, 15, 19, 30, 5, 0, time.FixedZone("KST", 9*60*60))

	op := NewOperation("share", now)

	if op.ID != "20240115T103005Z" {
		t.Errorf("ID = %q, want UTC timestamp", op.ID)
	}
	if op.Name != "share" {
		t.Errorf("Name = %q, want %q", op.Name, "share")
	}
	if op.Status != "success" {
		t.Errorf("Status = %q, want %q", op.Status, "success")
	}
	if got := op.Elapsed(now.Add(2 * time.Second)); got != 2*time.Second {
		t.Errorf("Elapsed() = %v, want 2s", got)
	}
}

func TestOperation_Fail(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{name: "nil error keeps success", err: nil, want: "success"},
		{name: "error marks failure", err: errors.New("boom"), want: "error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			op := NewOperation("like", time.Now())
			op.Fail(tt.err)
			if op.Status != tt.want {
				t.Errorf("Status = %q, want %q", op.Status, tt.want)
			}
		})
	}
}
