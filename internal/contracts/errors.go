package contracts

import (
	"errors"
	"fmt"
)

// InsufficientDataError is returned when a symbol has no usable history
// 종목 단위 오류: 해당 종목만 제외하고 실행은 계속
type InsufficientDataError struct {
	Symbol string
	Need   int
	Have   int
}

func (e *InsufficientDataError) Error() string {
	if e.Need > 0 {
		return fmt.Sprintf("insufficient data for %s: need %d points, have %d", e.Symbol, e.Need, e.Have)
	}
	return fmt.Sprintf("insufficient data for %s: empty history", e.Symbol)
}

// DataQualityError is returned when a series violates its ordering or value rules
type DataQualityError struct {
	Symbol string
	Index  int
	Reason string
}

func (e *DataQualityError) Error() string {
	return fmt.Sprintf("data quality error for %s at index %d: %s", e.Symbol, e.Index, e.Reason)
}

// ConfigurationError is returned when engine settings are invalid
// 실행 단위 오류: 종목 처리 전에 실패
type ConfigurationError struct {
	Field   string
	Message string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration error: %s: %s", e.Field, e.Message)
}

// StoreUnavailableError is returned when the history or recommendation store cannot be reached
type StoreUnavailableError struct {
	Store string // "history" | "recommendation"
	Op    string
	Err   error
}

func (e *StoreUnavailableError) Error() string {
	return fmt.Sprintf("%s store unavailable (%s): %v", e.Store, e.Op, e.Err)
}

func (e *StoreUnavailableError) Unwrap() error {
	return e.Err
}

// IsSymbolError reports whether err only affects a single symbol
func IsSymbolError(err error) bool {
	var insufficient *InsufficientDataError
	var quality *DataQualityError
	return errors.As(err, &insufficient) || errors.As(err, &quality)
}

// IsConfigurationError reports whether err is a ConfigurationError
func IsConfigurationError(err error) bool {
	var cfgErr *ConfigurationError
	return errors.As(err, &cfgErr)
}

// IsStoreUnavailable reports whether err is a StoreUnavailableError
func IsStoreUnavailable(err error) bool {
	var storeErr *StoreUnavailableError
	return errors.As(err, &storeErr)
}

// ErrorKind returns a stable label for metrics and summaries
func ErrorKind(err error) string {
	var insufficient *InsufficientDataError
	var quality *DataQualityError
	switch {
	case err == nil:
		return ""
	case errors.As(err, &insufficient):
		return "insufficient_data"
	case errors.As(err, &quality):
		return "data_quality"
	case IsConfigurationError(err):
		return "configuration"
	case IsStoreUnavailable(err):
		return "store_unavailable"
	default:
		return "internal"
	}
}
