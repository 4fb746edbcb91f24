package model

import (
	"encoding/json"
	"testing"
)

func TestIDSet_JSONRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		ids  []string
	}{
		{name: "empty", ids: nil},
		{name: "single", ids: []string{"a"}},
		{name: "insertion order reversed", ids: []string{"c", "b", "a"}},
		{name: "duplicates collapse", ids: []string{"x", "x", "y"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := NewIDSet(tt.ids...)

			data, err := json.Marshal(in)
			if err != nil {
				t.Fatalf("Marshal() error = %v", err)
			}

			var out IDSet
			if err := json.Unmarshal(data, &out); err != nil {
				t.Fatalf("Unmarshal() error = %v", err)
			}

			if out.Len() != in.Len() {
				t.Fatalf("Len() = %d, want %d", out.Len(), in.Len())
			}
			for id := range in {
				if !out.Has(id) {
					t.Errorf("decoded set missing %q", id)
				}
			}
		})
	}
}

func TestIDSet_MarshalIsOrderIndependent(t *testing.T) {
	a, _ := json.Marshal(NewIDSet("3", "1", "2"))
	b, _ := json.Marshal(NewIDSet("2", "3", "1"))
	if string(a) != string(b) {
		t.Errorf("Marshal() = %s and %s, want identical output", a, b)
	}
	if string(a) != `["1","2","3"]` {
		t.Errorf("Marshal() = %s, want sorted array", a)
	}
}

func TestIDSet_UnmarshalNull(t *testing.T) {
	var s IDSet
	if err := json.Unmarshal([]byte("null"), &s); err != nil {
		t.Fatalf("Unmarshal(null) error = %v", err)
	}
	if s == nil || s.Len() != 0 {
		t.Errorf("Unmarshal(null) = %v, want empty non-nil set", s)
	}
}

func TestIDSet_UnmarshalRejectsObject(t *testing.T) {
	var s IDSet
	if err := json.Unmarshal([]byte(`{"a":1}`), &s); err == nil {
		t.Error("Unmarshal(object) expected error")
	}
}

func TestInteractionState_Normalize(t *testing.T) {
	var st InteractionState
	if err := json.Unmarshal([]byte(`{"likedAgents":["1"]}`), &st); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	st.Normalize()

	if !st.LikedIDs.Has("1") {
		t.Error("LikedIDs lost member after Normalize")
	}
	// Must not panic on a field that was absent from the input.
	st.SavedIDs.Add("2")
	st.LikedCommentIDs.Add("3")
}

func TestAnalysisPatch_Apply(t *testing.T) {
	likes := 4
	private := true
	comments := []Comment{{ID: "c1"}}

	r := AnalysisRecord{ID: "1", OverallScore: 88, Likes: 1, Saves: 2}
	got := AnalysisPatch{Likes: &likes, IsPrivate: &private, Comments: &comments}.Apply(r)

	if got.Likes != 4 {
		t.Errorf("Likes = %d, want 4", got.Likes)
	}
	if got.Saves != 2 {
		t.Errorf("Saves = %d, want unchanged 2", got.Saves)
	}
	if !got.IsPrivate {
		t.Error("IsPrivate = false, want true")
	}
	if len(got.Comments) != 1 {
		t.Errorf("len(Comments) = %d, want 1", len(got.Comments))
	}
	if got.OverallScore != 88 {
		t.Errorf("OverallScore = %d, want 88", got.OverallScore)
	}
}
