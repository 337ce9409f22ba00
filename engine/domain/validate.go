package domain

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/WessleyAI/wessley-vin/engine/vin"
)

// ValidateVehicle validates a Vehicle struct. A VIN is optional, but when
// present it must decode and agree with the stated year and make.
func ValidateVehicle(v Vehicle) error {
	// Make
	models, ok := SupportedMakes[v.Make]
	if !ok {
		return NewValidationError("make", v.Make, ErrUnsupportedMake)
	}

	// Model
	found := false
	for _, m := range models {
		if strings.EqualFold(m, v.Model) {
			found = true
			break
		}
	}
	if !found {
		return NewValidationError("model", v.Model, ErrUnsupportedModel)
	}

	// Year
	if v.Year < MinModelYear || v.Year > MaxModelYear() {
		return NewValidationError("year", strconv.Itoa(v.Year), ErrYearOutOfRange)
	}

	if v.VIN == "" {
		return nil
	}
	return validateVIN(v)
}

func validateVIN(v Vehicle) error {
	r, err := vin.Decode(v.VIN,
		vin.WithCurrentYear(v.Year),
		vin.WithYearRange(MinModelYear, MaxModelYear()),
	)
	if err != nil {
		return &ValidationError{Field: "vin", Value: v.VIN, Wrapped: fmt.Errorf("%w: %w", ErrInvalidVIN, err)}
	}

	if r.HasModelYear() && r.ModelYear != v.Year {
		return NewValidationError("vin", fmt.Sprintf("%s (model year %d)", r.VIN, r.ModelYear), ErrVINYearMismatch)
	}

	// Only an exact WMI hit is trusted for the make check.
	if name, ok := vin.LookupWMI(r.WMI); ok && !MakeMatches(name, v.Make) {
		return NewValidationError("vin", fmt.Sprintf("%s (manufacturer %s)", r.VIN, name), ErrVINMakeMismatch)
	}
	return nil
}

// validSource returns true if the source is known.
// Sources with suffixes like "ocr:dock-3" or "barcode:handheld" are accepted.
func validSource(src ScanSource) bool {
	if ValidSources[src] {
		return true
	}
	for base := range ValidSources {
		if strings.HasPrefix(string(src), string(base)+":") {
			return true
		}
	}
	return false
}

// ValidateScanEvent checks a ScanEvent before it enters the scan pipeline.
func ValidateScanEvent(e ScanEvent) error {
	if e.ID == "" {
		return NewValidationError("id", e.ID, ErrInvalidScan)
	}
	if !validSource(e.Source) {
		return NewValidationError("source", string(e.Source), ErrInvalidScan)
	}
	if strings.TrimSpace(e.Raw) == "" {
		return NewValidationError("raw", e.Raw, ErrInvalidScan)
	}
	return nil
}
