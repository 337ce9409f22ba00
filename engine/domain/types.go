// Package domain defines core domain types, constants, and validation for the
// VIN pipeline. It acts as the validation gate at pipeline entry points.
package domain

import (
	"time"

	"github.com/WessleyAI/wessley-vin/engine/vin"
)

// Vehicle is a make/model/year record, optionally tied to a VIN.
type Vehicle struct {
	Make  string `json:"make"`
	Model string `json:"model"`
	Year  int    `json:"year"`
	VIN   string `json:"vin,omitempty"`
}

// ScanSource names where a VIN reading came from.
type ScanSource string

const (
	SourceBarcode ScanSource = "barcode"
	SourceOCR     ScanSource = "ocr"
	SourceManual  ScanSource = "manual"
	SourceAPI     ScanSource = "api"
)

// ValidSources is the set of recognised scan sources.
var ValidSources = map[ScanSource]bool{
	SourceBarcode: true, SourceOCR: true, SourceManual: true, SourceAPI: true,
}

// ScanEvent is raw scanner or user input that should contain a VIN.
type ScanEvent struct {
	ID        string     `json:"id"`
	Source    ScanSource `json:"source"`
	Raw       string     `json:"raw"`
	ScannedAt time.Time  `json:"scanned_at"`
}

// DecodeEvent is the outcome of processing a ScanEvent. Exactly one of Result
// and Error is set.
type DecodeEvent struct {
	ScanID    string      `json:"scan_id"`
	Source    ScanSource  `json:"source"`
	VIN       string      `json:"vin,omitempty"`
	Result    *vin.Result `json:"result,omitempty"`
	Error     string      `json:"error,omitempty"`
	Code      vin.Code    `json:"code,omitempty"`
	DecodedAt time.Time   `json:"decoded_at"`
}

// OK reports whether the event carries a decode result.
func (e DecodeEvent) OK() bool { return e.Result != nil && e.Error == "" }
