package forecast

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sony/gobreaker"

	"github.com/wonny/stockreco/internal/contracts"
	"github.com/wonny/stockreco/pkg/httputil"
	"github.com/wonny/stockreco/pkg/logger"
)

// predictionResponse is the model server payload
//
//	GET {base}/predict?symbol=AAPL&date=2024-06-28
//	{"symbol":"AAPL","date":"2024-06-28","signal":0.73}
type predictionResponse struct {
	Symbol string   `json:"symbol"`
	Date   string   `json:"date"`
	Signal *float64 `json:"signal"` // null = 의견 없음
}

// HTTPPredictor calls an external model server
// ⭐ SSOT: 외부 예측 서버 호출은 여기서만
type HTTPPredictor struct {
	baseURL string
	client  *httputil.Client
	breaker *gobreaker.CircuitBreaker
	logger  *logger.Logger
}

var _ contracts.Predictor = (*HTTPPredictor)(nil)

// NewHTTPPredictor creates a predictor for baseURL
// 연속 5회 실패 시 30초 동안 차단 (차단 중 요청은 즉시 실패)
func NewHTTPPredictor(baseURL string, client *httputil.Client, log *logger.Logger) *HTTPPredictor {
	settings := gobreaker.Settings{
		Name:     "predictor",
		Interval: 60 * time.Second,
		Timeout:  30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		// 호출자 취소는 서버 장애가 아니다
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.WithFields(map[string]interface{}{
				"breaker": name,
				"from":    from.String(),
				"to":      to.String(),
			}).Warn("Circuit breaker state changed")
		},
	}

	return &HTTPPredictor{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  client,
		breaker: gobreaker.NewCircuitBreaker(settings),
		logger:  log,
	}
}

// Predict returns the model signal for symbol on asOf
// 404 또는 signal=null 은 오류가 아니라 ok=false
func (p *HTTPPredictor) Predict(ctx context.Context, symbol string, asOf time.Time) (float64, bool, error) {
	query := url.Values{}
	query.Set("symbol", symbol)
	query.Set("date", asOf.Format("2006-01-02"))
	endpoint := p.baseURL + "/predict?" + query.Encode()

	out, err := p.breaker.Execute(func() (interface{}, error) {
		var resp predictionResponse
		err := p.client.GetJSON(ctx, endpoint, &resp)

		var statusErr *httputil.StatusError
		if errors.As(err, &statusErr) && statusErr.StatusCode == http.StatusNotFound {
			return predictionResponse{Symbol: symbol}, nil
		}
		if err != nil {
			return nil, err
		}
		return resp, nil
	})
	if err != nil {
		return 0, false, fmt.Errorf("predict %s: %w", symbol, err)
	}

	resp := out.(predictionResponse)
	if resp.Signal == nil {
		return 0, false, nil
	}
	if math.IsNaN(*resp.Signal) || math.IsInf(*resp.Signal, 0) {
		return 0, false, fmt.Errorf("predict %s: non-finite signal", symbol)
	}

	p.logger.WithFields(map[string]interface{}{
		"symbol": symbol,
		"signal": *resp.Signal,
	}).Debug("Prediction received")

	return *resp.Signal, true, nil
}

// State returns the circuit breaker state
func (p *HTTPPredictor) State() gobreaker.State {
	return p.breaker.State()
}
