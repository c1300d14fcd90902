package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/stockreco/internal/audit"
	"github.com/wonny/stockreco/internal/brain"
	"github.com/wonny/stockreco/internal/contracts"
)

// recommendCmd represents the recommend command
var recommendCmd = &cobra.Command{
	Use:   "recommend",
	Short: "추천 생성/조회",
	Long: `추천 파이프라인을 실행하거나 저장된 추천을 조회합니다.

Subcommands:
  run   - 파이프라인 실행 (S0 → S6)
  show  - 저장된 추천 조회

Example:
  go run ./cmd/quant recommend run --date 2024-06-28
  go run ./cmd/quant recommend show`,
}

var (
	recommendRunCmd = &cobra.Command{
		Use:   "run",
		Short: "추천 파이프라인 실행",
		Long: `지정한 날짜 기준으로 추천을 계산하고 저장합니다.

Flags:
  --date      기준 날짜 (기본: 시장 시간대의 오늘)
  --dry-run   저장 단계(S6) 생략
  --csv       DB 대신 CSV 이력 사용 (symbol,date,close,volume[,market_cap]); 항상 dry-run
  --workers   종목 병렬 처리 수 (기본: 전략 파일 값)
  --json      요약을 JSON 으로 출력

Example:
  go run ./cmd/quant recommend run
  go run ./cmd/quant recommend run --date 2024-06-28 --strategy config/strategy/recommendation.yaml
  go run ./cmd/quant recommend run --csv testdata/prices.csv --date 2024-06-28`,
		RunE: runRecommend,
	}

	recommendShowCmd = &cobra.Command{
		Use:   "show",
		Short: "저장된 추천 조회",
		RunE:  showRecommendations,
	}

	// Flags
	recDate    string
	recDryRun  bool
	recCSV     string
	recWorkers int
	recJSON    bool
)

func init() {
	rootCmd.AddCommand(recommendCmd)
	recommendCmd.AddCommand(recommendRunCmd)
	recommendCmd.AddCommand(recommendShowCmd)

	// Flags
	recommendRunCmd.Flags().StringVar(&recDate, "date", "", "기준 날짜 (YYYY-MM-DD)")
	recommendRunCmd.Flags().BoolVar(&recDryRun, "dry-run", false, "저장하지 않음")
	recommendRunCmd.Flags().StringVar(&recCSV, "csv", "", "CSV 가격 이력 파일")
	recommendRunCmd.Flags().IntVar(&recWorkers, "workers", -1, "병렬 처리 수 (0 = CPU 수)")
	recommendRunCmd.Flags().BoolVar(&recJSON, "json", false, "JSON 출력")

	recommendShowCmd.Flags().StringVar(&recDate, "date", "", "기준 날짜 (기본: 최신)")
	recommendShowCmd.Flags().BoolVar(&recJSON, "json", false, "JSON 출력")
}

func runRecommend(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	a, err := newApp(ctx, appOptions{csvPath: recCSV})
	if err != nil {
		return err
	}
	defer a.Close()

	strategy, err := a.strategy()
	if err != nil {
		return err
	}
	if recWorkers >= 0 {
		strategy.Runtime.Workers = recWorkers
	}

	date, err := parseDate(recDate, a.location())
	if err != nil {
		return err
	}

	result, err := a.orchestrator(nil).Run(ctx, brain.RunConfig{
		Date:     date,
		Strategy: strategy,
		DryRun:   recDryRun || a.offline(),
	})
	if err != nil {
		return fmt.Errorf("recommendation run failed: %w", err)
	}

	if recJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(result.Summary)
	}

	if err := audit.WriteRecommendationReport(out, result.Date, result.Summary.Recommendations, time.Now()); err != nil {
		return err
	}
	printRunSummary(out, result)
	return nil
}

func showRecommendations(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	a, err := newApp(ctx, appOptions{})
	if err != nil {
		return err
	}
	defer a.Close()

	asOf, recs, err := loadRecommendations(cmd, a, recDate)
	if err != nil {
		return err
	}
	if asOf.IsZero() {
		PrintWarning(out, "No recommendations stored yet")
		return nil
	}

	if recJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(recs)
	}
	return audit.WriteRecommendationReport(out, asOf, recs, time.Now())
}

// loadRecommendations reads the list of a date (latest when empty)
func loadRecommendations(cmd *cobra.Command, a *app, date string) (time.Time, []contracts.Recommendation, error) {
	ctx := cmd.Context()

	var asOf time.Time
	if date == "" {
		latest, err := a.recs.LatestAsOf(ctx)
		if err != nil {
			return time.Time{}, nil, err
		}
		if latest.IsZero() {
			return time.Time{}, nil, nil
		}
		asOf = latest
	} else {
		parsed, err := parseDate(date, a.location())
		if err != nil {
			return time.Time{}, nil, err
		}
		asOf = parsed
	}

	recs, err := a.recs.List(ctx, asOf)
	if err != nil {
		return time.Time{}, nil, err
	}
	return asOf, recs, nil
}

// printRunSummary prints counts, exclusions and per-symbol errors of a run
func printRunSummary(w io.Writer, result *brain.RunResult) {
	s := result.Summary

	fmt.Fprintln(w)
	PrintDoubleSeparator(w)
	PrintKeyValue(w, "Run ID", result.RunID, 12)
	PrintKeyValue(w, "Symbols", fmt.Sprintf("%d", s.TotalSymbols), 12)
	PrintKeyValue(w, "Valid", fmt.Sprintf("%d", s.Evaluated), 12)
	PrintKeyValue(w, "Universe", fmt.Sprintf("%d", s.UniverseCount), 12)
	PrintKeyValue(w, "Scored", fmt.Sprintf("%d", s.ScoredCount), 12)
	PrintKeyValue(w, "Errors", fmt.Sprintf("%d", s.ErrorCount()), 12)
	PrintKeyValue(w, "Persisted", fmt.Sprintf("%v", result.Persisted), 12)
	PrintKeyValue(w, "Duration", result.Duration.Round(time.Millisecond).String(), 12)

	if len(s.Excluded) > 0 {
		fmt.Fprintln(w, "\nExcluded:")
		PrintList(w, sortedReasons(s.Excluded))
	}
	if len(s.SymbolErrors) > 0 {
		fmt.Fprintln(w, "\nSkipped (errors):")
		PrintList(w, sortedReasons(s.SymbolErrors))
	}
	PrintDoubleSeparator(w)
}

func sortedReasons(m map[string]string) []string {
	symbols := make([]string, 0, len(m))
	for symbol := range m {
		symbols = append(symbols, symbol)
	}
	sort.Strings(symbols)

	out := make([]string, len(symbols))
	for i, symbol := range symbols {
		out[i] = fmt.Sprintf("%s: %s", symbol, m[symbol])
	}
	return out
}
