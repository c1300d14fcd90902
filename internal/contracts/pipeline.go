package contracts

// Pipeline Stage 정의 (SSOT)
// 모든 로그, 메트릭, 실행 요약에서 이 상수를 사용해야 함
//
// 파이프라인 흐름:
//   S0 → S1 → S2 → S3 → S4 → S5 → S6
//   Data  Universe  Indicators  Scorer  Ranker  Rationale  Persist

// Stage represents a pipeline stage
type Stage string

const (
	// StageDataQuality S0: 이력 로드 및 품질 검증
	// 책임: time window 내 이력 조회, timestamp 순서/중복/값 검증
	// 위치: internal/s0_data/
	StageDataQuality Stage = "S0_DATA_QUALITY"

	// StageUniverse S1: 유동성 필터
	// 책임: 평균 거래량 기준 종목 제외
	// 위치: internal/s1_universe/
	StageUniverse Stage = "S1_UNIVERSE"

	// StageIndicators S2: 기술 지표 계산
	// 책임: SMA, EMA, RSI, MACD
	// 위치: internal/s2_signals/
	StageIndicators Stage = "S2_INDICATORS"

	// StageScorer S3: 종합 점수 산출
	// 책임: 시그널 정규화, 가중치 재분배, 외부 예측 반영
	// 위치: internal/selection/scorer.go
	StageScorer Stage = "S3_SCORER"

	// StageRanker S4: 순위 부여
	// 책임: min_score 필터, 정렬, Top N 선별
	// 위치: internal/selection/ranker.go
	StageRanker Stage = "S4_RANKER"

	// StageRationale S5: 추천 사유 생성
	// 위치: internal/selection/rationale.go
	StageRationale Stage = "S5_RATIONALE"

	// StagePersist S6: 추천 결과 저장
	// 책임: as-of 날짜 단위 전체 교체 (all-or-nothing)
	// 위치: internal/selection/repository.go
	StagePersist Stage = "S6_PERSIST"
)

// String returns the stage name
func (s Stage) String() string {
	return string(s)
}

// ShortName returns abbreviated stage name (e.g., "S0", "S1")
func (s Stage) ShortName() string {
	switch s {
	case StageDataQuality:
		return "S0"
	case StageUniverse:
		return "S1"
	case StageIndicators:
		return "S2"
	case StageScorer:
		return "S3"
	case StageRanker:
		return "S4"
	case StageRationale:
		return "S5"
	case StagePersist:
		return "S6"
	default:
		return "UNKNOWN"
	}
}

// Description returns Korean description of the stage
func (s Stage) Description() string {
	switch s {
	case StageDataQuality:
		return "이력 로드/품질 검증"
	case StageUniverse:
		return "유동성 필터"
	case StageIndicators:
		return "기술 지표 계산"
	case StageScorer:
		return "종합 점수"
	case StageRanker:
		return "순위/Top N"
	case StageRationale:
		return "추천 사유"
	case StagePersist:
		return "결과 저장"
	default:
		return "알 수 없음"
	}
}

// AllStages returns all pipeline stages in order
func AllStages() []Stage {
	return []Stage{
		StageDataQuality,
		StageUniverse,
		StageIndicators,
		StageScorer,
		StageRanker,
		StageRationale,
		StagePersist,
	}
}

// IsValidStage checks if a stage string is valid
func IsValidStage(s string) bool {
	for _, stage := range AllStages() {
		if string(stage) == s {
			return true
		}
	}
	return false
}
