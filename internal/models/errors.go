package models

import "fmt"

// DataSourceError reports a failed fetch from the market data provider.
type DataSourceError struct {
	Ticker string
	Err    error
}

func (e *DataSourceError) Error() string {
	return fmt.Sprintf("data source error for %s: %v", e.Ticker, e.Err)
}

func (e *DataSourceError) Unwrap() error {
	return e.Err
}

// FormatError reports a validated row that cannot be rendered into the
// canonical storage schema.
type FormatError struct {
	Ticker string
	Reason string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("format error for %s: %s", e.Ticker, e.Reason)
}

// StorageError reports a failed database operation.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage %s failed: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}
