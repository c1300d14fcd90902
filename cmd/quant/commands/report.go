package commands

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/stockreco/internal/audit"
	"github.com/wonny/stockreco/internal/contracts"
)

// reportCmd represents the report command
var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "리포트 생성",
	Long: `추천 리포트와 종목 과거 성과 리포트를 생성합니다.

Subcommands:
  recommendations  - 저장된 추천 리포트
  performance      - 종목별 과거 성과 (수익률, 변동성, Sharpe, MDD, 거래량 추세)

Example:
  go run ./cmd/quant report recommendations --date 2024-06-28 --out report.txt
  go run ./cmd/quant report performance AAPL MSFT --days 30`,
}

var (
	reportRecommendationsCmd = &cobra.Command{
		Use:   "recommendations",
		Short: "추천 리포트",
		RunE:  runRecommendationReport,
	}

	reportPerformanceCmd = &cobra.Command{
		Use:   "performance SYMBOL [SYMBOL...]",
		Short: "종목 과거 성과 리포트",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runPerformanceReport,
	}

	// Flags
	reportDate string
	reportOut  string
	reportDays int
	reportCSV  string
)

func init() {
	rootCmd.AddCommand(reportCmd)
	reportCmd.AddCommand(reportRecommendationsCmd)
	reportCmd.AddCommand(reportPerformanceCmd)

	reportCmd.PersistentFlags().StringVar(&reportDate, "date", "", "기준 날짜 (YYYY-MM-DD)")
	reportCmd.PersistentFlags().StringVar(&reportOut, "out", "", "출력 파일 (기본: stdout)")

	reportPerformanceCmd.Flags().IntVar(&reportDays, "days", 30, "lookback 일수")
	reportPerformanceCmd.Flags().StringVar(&reportCSV, "csv", "", "CSV 가격 이력 파일")
}

// reportWriter opens --out or falls back to the command output
func reportWriter(cmd *cobra.Command) (io.Writer, func() error, error) {
	if reportOut == "" {
		return cmd.OutOrStdout(), func() error { return nil }, nil
	}
	f, err := os.Create(reportOut)
	if err != nil {
		return nil, nil, fmt.Errorf("create report file: %w", err)
	}
	return f, f.Close, nil
}

func runRecommendationReport(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd.Context(), appOptions{})
	if err != nil {
		return err
	}
	defer a.Close()

	asOf, recs, err := loadRecommendations(cmd, a, reportDate)
	if err != nil {
		return err
	}
	if asOf.IsZero() {
		PrintWarning(cmd.OutOrStdout(), "No recommendations stored yet")
		return nil
	}

	w, closeFn, err := reportWriter(cmd)
	if err != nil {
		return err
	}
	if err := audit.WriteRecommendationReport(w, asOf, recs, time.Now()); err != nil {
		closeFn()
		return err
	}
	if err := closeFn(); err != nil {
		return err
	}

	if reportOut != "" {
		PrintSuccess(cmd.OutOrStdout(), fmt.Sprintf("Report written to %s", reportOut))
	}
	return nil
}

func runPerformanceReport(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	a, err := newApp(ctx, appOptions{csvPath: reportCSV})
	if err != nil {
		return err
	}
	defer a.Close()

	asOf, err := parseDate(reportDate, a.location())
	if err != nil {
		return err
	}

	analyzer := audit.NewAnalyzer(a.history, a.log)
	reports := make([]*contracts.PerformanceReport, 0, len(args))
	var failed []string
	for _, symbol := range args {
		symbol = strings.ToUpper(symbol)
		report, err := analyzer.Analyze(ctx, symbol, asOf, reportDays)
		if err != nil {
			// 저장소 장애나 잘못된 설정은 전체 실패, 종목 단위 오류는 건너뜀
			if !contracts.IsSymbolError(err) {
				return err
			}
			failed = append(failed, fmt.Sprintf("%s: %v", symbol, err))
			continue
		}
		reports = append(reports, report)
	}

	w, closeFn, err := reportWriter(cmd)
	if err != nil {
		return err
	}
	if err := audit.WritePerformanceReport(w, reports); err != nil {
		closeFn()
		return err
	}
	if err := closeFn(); err != nil {
		return err
	}

	if len(failed) > 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "\nSkipped:")
		PrintList(cmd.OutOrStdout(), failed)
	}
	return nil
}
