package analysis

import (
	"context"
	"fmt"
	"math/rand"
	"sort"

	"sgb-go/internal/model"
)

// MockAnalyzer returns a fixed-shape analysis regardless of the page texts.
type MockAnalyzer struct {
	// AlignmentPercentage, when non-zero, replaces the random 60-89 career
	// alignment percentage.
	AlignmentPercentage int
}

var _ Analyzer = MockAnalyzer{}

func (m MockAnalyzer) Analyze(ctx context.Context, req Request) (model.AnalysisRecord, error) {
	if err := ctx.Err(); err != nil {
		return model.AnalysisRecord{}, err
	}

	errs := []model.ErrorItem{
		{
			Type:       model.ErrorKindForbidden,
			Content:    "○○대학교 AI 캠프 참여",
			Reason:     "대학명 직접 명시 금지 (교육부 훈령 제530호)",
			Page:       1,
			Suggestion: "대학 주최 AI 캠프 참여로 수정 권장",
			RiskLevel:  3,
		},
		{
			Type:       model.ErrorKindForbidden,
			Content:    "TOEIC 900점 취득",
			Reason:     "공인어학시험 점수 기재 금지",
			Page:       3,
			Suggestion: "영어 의사소통 능력 우수로 표현",
			RiskLevel:  3,
		},
		{
			Type:       model.ErrorKindCaution,
			Content:    "매사에 성실하고 적극적이며 앞으로가 기대됨",
			Reason:     "모호한 칭찬 표현, 구체적 관찰 근거 부족",
			Page:       2,
			Suggestion: "구체적인 활동 사례와 함께 성실성을 표현",
			RiskLevel:  1,
		},
	}
	sort.SliceStable(errs, func(i, j int) bool { return errs[i].RiskLevel > errs[j].RiskLevel })

	files := make([]string, len(req.Files))
	copy(files, req.Files)

	record := model.AnalysisRecord{
		StudentName:     "학생",
		OverallScore:    88,
		CareerDirection: req.CareerDirection,
		Strengths: []string{
			"AI 및 데이터 분석 관련 탐구 활동이 구체적이고 심층적임",
			"수학 세특에서 문제 해결 과정과 사고력이 명확히 드러남",
			"창의적 체험활동에서 리더십과 협업 역량이 우수함",
		},
		Improvements: []string{
			"진로 희망 대비 전공 적합성을 보완할 추가 활동 필요",
			"3학년 1학기 세특에서 심화 탐구 내용 보강 권장",
			"교과 간 연계성을 강화하여 일관된 서사 구축 필요",
		},
		Errors: errs,
		Suggestions: []string{
			"수학 세특: '데이터 분석' 키워드를 활용한 심화 탐구 추가 권장",
			"과학 세특: AI 윤리 관련 탐구로 진로 연계성 강화",
			"동아리 활동: 구체적인 역할과 성과를 명확히 기술",
		},
		Files:    files,
		Comments: []model.Comment{},
	}

	if req.CareerDirection != "" {
		pct := m.AlignmentPercentage
		if pct == 0 {
			pct = 60 + rand.Intn(30)
		}
		record.CareerAlignment = &model.CareerAlignment{
			Percentage:   pct,
			Summary:      alignmentSummary(pct),
			Strengths:    []string{"AI 관련 활동이 진로와 직접 연결됨", "데이터 분석 역량이 우수함"},
			Improvements: []string{"심화 탐구 활동 추가 권장", "전공 관련 독서 활동 보강"},
		}
	}
	return record, nil
}

func alignmentSummary(pct int) string {
	switch {
	case pct >= 80:
		return "진로 방향과 매우 잘 부합하는 생기부입니다."
	case pct >= 60:
		return "진로 방향과 적절히 연계된 생기부입니다."
	default:
		return "진로 연계성을 더 강화하면 좋습니다."
	}
}

// NewAnalyzer returns the analyzer named by kind. Only the built-in "mock"
// analyzer exists today.
func NewAnalyzer(kind string) (Analyzer, error) {
	switch kind {
	case "", "mock":
		return MockAnalyzer{}, nil
	default:
		return nil, fmt.Errorf("unknown analyzer type: %s", kind)
	}
}
