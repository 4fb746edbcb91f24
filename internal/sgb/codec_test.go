package sgb_test

import (
	"errors"
	"reflect"
	"testing"
	"time"

	"sgb-go/internal/model"
	"sgb-go/internal/sgb"
)

func fullRecord() model.AnalysisRecord {
	created := time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC)
	return model.AnalysisRecord{
		ID:              "1705314600000",
		StudentName:     "김**",
		StudentID:       "202412345",
		UploadDate:      created,
		OverallScore:    88,
		CareerDirection: "AI 엔지니어",
		CareerAlignment: &model.CareerAlignment{
			Percentage:   72,
			Summary:      "진로 방향과 적절히 연계된 생기부입니다.",
			Strengths:    []string{"데이터 분석 역량이 우수함"},
			Improvements: []string{},
		},
		Strengths:    []string{"수학 세특 우수"},
		Improvements: []string{"독서 활동 보강"},
		Errors: []model.ErrorItem{
			{Type: model.ErrorKindForbidden, Content: "TOEIC 900점", Reason: "공인어학시험 점수 기재 금지", Page: 3, Suggestion: "영어 능력 우수", RiskLevel: 3},
			{Type: model.ErrorKindCaution, Content: "성실함", Reason: "모호한 표현", Page: 2},
		},
		Suggestions: []string{},
		Files:       []string{"page1.png"},
		Likes:       4,
		Saves:       1,
		Comments: []model.Comment{
			{
				ID: "c1", UserID: "user-1", UserName: "학생7", Content: "좋아요",
				CreatedAt: created.Add(time.Hour),
				Replies: []model.Reply{
					{ID: "r1", UserID: "user-2", UserName: "학생9", Content: "동의", CreatedAt: created.Add(2 * time.Hour)},
					{ID: "r2", UserID: "user-1", UserName: "학생7", Content: "감사", CreatedAt: created.Add(3 * time.Hour), ParentReplyID: "r1"},
				},
			},
		},
		UserID:    "user-1",
		IsPrivate: true,
		AIKillerResult: &model.AIKillerResult{
			OverallAIProbability: 12,
			DetectedSections:     []model.AIDetectedSection{},
			RiskAssessment:       "low",
			Recommendations:      []string{},
		},
	}
}

func TestCodec_RecordRoundTrip(t *testing.T) {
	tests := []struct {
		name   string
		record model.AnalysisRecord
	}{
		{name: "full record", record: fullRecord()},
		{name: "empty collections", record: model.AnalysisRecord{
			ID:           "2",
			StudentName:  "학생",
			UploadDate:   time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
			Strengths:    []string{},
			Improvements: []string{},
			Errors:       []model.ErrorItem{},
			Suggestions:  []string{},
			Files:        []string{},
			Comments:     []model.Comment{},
			UserID:       "user-1",
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := sgb.Encode([]model.AnalysisRecord{tt.record})
			if err != nil {
				t.Fatalf("Encode() error = %v", err)
			}

			got, err := sgb.Decode(data, []model.AnalysisRecord{})
			if err != nil {
				t.Fatalf("Decode() error = %v", err)
			}
			if len(got) != 1 {
				t.Fatalf("len(Decode()) = %d, want 1", len(got))
			}
			if !reflect.DeepEqual(got[0], tt.record) {
				t.Errorf("Decode(Encode(r)) = %+v, want %+v", got[0], tt.record)
			}
		})
	}
}

func TestCodec_InteractionRoundTrip(t *testing.T) {
	state := model.InteractionState{
		LikedIDs:        model.NewIDSet("3", "1", "2"),
		SavedIDs:        model.NewIDSet(),
		LikedCommentIDs: model.NewIDSet("c9"),
	}

	data, err := sgb.Encode(state)
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}
	want := `{"likedAgents":["1","2","3"],"savedAgents":[],"likedComments":["c9"]}`
	if data != want {
		t.Errorf("Encode() = %s, want %s", data, want)
	}

	got, err := sgb.Decode(data, model.NewInteractionState())
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if !reflect.DeepEqual(got, state) {
		t.Errorf("Decode(Encode(s)) = %v, want %v", got, state)
	}
}

func TestCodec_DecodeFallback(t *testing.T) {
	fallback := []model.AnalysisRecord{}

	tests := []struct {
		name    string
		data    string
		wantErr bool
	}{
		{name: "empty input", data: "", wantErr: false},
		{name: "malformed json", data: "{not json", wantErr: true},
		{name: "wrong shape", data: `{"id":"1"}`, wantErr: true},
		{name: "wrong field type", data: `[{"likes":"many"}]`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := sgb.Decode(tt.data, fallback)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Decode() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got == nil || len(got) != 0 {
				t.Errorf("Decode() = %v, want the empty fallback", got)
			}
			if tt.wantErr {
				var de *sgb.DeserializationError
				if !errors.As(err, &de) {
					t.Errorf("Decode() error = %T, want *DeserializationError", err)
				}
			}
		})
	}
}
