package commands

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	strategyPath string
	verbose      bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "quant",
	Short: "Stock Recommendation Engine",
	Long: `Stock Recommendation Engine CLI

일별 가격 이력으로 기술적 지표(SMA, EMA, RSI, MACD)를 계산하고
가중 점수로 종목을 선정해 순위와 추천 사유를 생성합니다.

S0 → S1 → S2 → S3 → S4 → S5 → S6

Usage:
  go run ./cmd/quant [command]

Examples:
  go run ./cmd/quant recommend run --date 2024-06-28
  go run ./cmd/quant recommend run --csv prices.csv --dry-run
  go run ./cmd/quant report performance AAPL --days 30
  go run ./cmd/quant api
  go run ./cmd/quant scheduler start`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
// Ctrl+C 는 실행 중인 파이프라인의 context 를 취소한다
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&strategyPath, "strategy", "", "strategy YAML (default is STRATEGY_PATH)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
