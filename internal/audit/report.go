package audit

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/olekukonko/tablewriter"

	"github.com/wonny/stockreco/internal/contracts"
)

// WriteRecommendationReport renders a run as a text report
//
//	Stock Recommendations Report
//	As of: 2024-06-28
//	Generated at: 2024-06-28 18:30:00
//	<rank table>
//	Rank 1: AAPL ... rationale
func WriteRecommendationReport(w io.Writer, asOf time.Time, recs []contracts.Recommendation, generatedAt time.Time) error {
	var sb strings.Builder
	sb.WriteString("Stock Recommendations Report\n")
	sb.WriteString(fmt.Sprintf("As of: %s\n", asOf.Format("2006-01-02")))
	sb.WriteString(fmt.Sprintf("Generated at: %s\n\n", generatedAt.Format("2006-01-02 15:04:05")))
	if _, err := io.WriteString(w, sb.String()); err != nil {
		return err
	}

	if len(recs) == 0 {
		_, err := io.WriteString(w, "No recommendations.\n")
		return err
	}

	table := tablewriter.NewTable(w,
		tablewriter.WithHeader([]string{"Rank", "Symbol", "Score"}),
	)
	for _, rec := range recs {
		if err := table.Append([]string{
			fmt.Sprintf("%d", rec.Rank),
			rec.Symbol,
			fmt.Sprintf("%.4f", rec.Score),
		}); err != nil {
			return err
		}
	}
	if err := table.Render(); err != nil {
		return err
	}

	sb.Reset()
	for _, rec := range recs {
		sb.WriteString(fmt.Sprintf("\nRank %d: %s\n", rec.Rank, rec.Symbol))
		sb.WriteString(rec.Rationale)
		if !strings.HasSuffix(rec.Rationale, "\n") {
			sb.WriteString("\n")
		}
	}
	_, err := io.WriteString(w, sb.String())
	return err
}

// WritePerformanceReport renders performance reports as a table
func WritePerformanceReport(w io.Writer, reports []*contracts.PerformanceReport) error {
	table := tablewriter.NewTable(w,
		tablewriter.WithHeader([]string{"Symbol", "Period", "Points", "Return", "Volatility", "Sharpe", "Sortino", "VaR 95", "Max DD", "DD Days", "Volume Trend", "Risk"}),
	)
	for _, r := range reports {
		if err := table.Append([]string{
			r.Symbol,
			fmt.Sprintf("%s ~ %s", r.StartDate.Format("2006-01-02"), r.EndDate.Format("2006-01-02")),
			fmt.Sprintf("%d", r.Points),
			fmt.Sprintf("%.2f%%", r.TotalReturn*100),
			fmt.Sprintf("%.4f", r.Volatility),
			fmt.Sprintf("%.2f", r.Sharpe),
			fmt.Sprintf("%.2f", r.Sortino),
			fmt.Sprintf("%.2f%%", r.VaR95*100),
			fmt.Sprintf("%.2f%%", r.MaxDrawdown*100),
			fmt.Sprintf("%d", r.DrawdownDays),
			fmt.Sprintf("%.2f%%", r.VolumeTrend*100),
			string(r.RiskRating),
		}); err != nil {
			return err
		}
	}
	return table.Render()
}
