package domain

import (
	"errors"
	"testing"
	"time"

	"github.com/WessleyAI/wessley-vin/engine/vin"
)

func TestValidateVehicle_Valid(t *testing.T) {
	cases := []Vehicle{
		{Make: "Toyota", Model: "Camry", Year: 2020},
		{Make: "Tesla", Model: "Model 3", Year: 2023, VIN: "5YJ3E1EA7PF123456"},
		{Make: "Honda", Model: "accord", Year: 2003, VIN: "1hgcm82633a004352"},
		{Make: "Ford", Model: "F-150", Year: 2021, VIN: "1FTFW1E53MFA00001"},
		{Make: "Ford", Model: "F-150", Year: 1980},
		{Make: "BMW", Model: "3 Series", Year: 2027},
	}
	pinClock(t, 2026)
	for _, v := range cases {
		if err := ValidateVehicle(v); err != nil {
			t.Errorf("expected valid for %+v, got %v", v, err)
		}
	}
}

func pinClock(t *testing.T, year int) {
	t.Helper()
	old := now
	now = func() time.Time { return time.Date(year, time.June, 1, 0, 0, 0, 0, time.UTC) }
	t.Cleanup(func() { now = old })
}

func TestMaxModelYearTracksClock(t *testing.T) {
	v := Vehicle{Make: "Toyota", Model: "Camry", Year: 2031}

	pinClock(t, 2029)
	if got := MaxModelYear(); got != 2030 {
		t.Fatalf("MaxModelYear() = %d, want 2030", got)
	}
	if err := ValidateVehicle(v); !errors.Is(err, ErrYearOutOfRange) {
		t.Fatalf("expected ErrYearOutOfRange in 2029, got %v", err)
	}

	pinClock(t, 2030)
	if err := ValidateVehicle(v); err != nil {
		t.Fatalf("expected next year's model to be valid in 2030, got %v", err)
	}
}

func TestValidateVehicle_RegistryMakes(t *testing.T) {
	pinClock(t, 2026)
	cases := []Vehicle{
		{Make: "Mercedes-Benz", Model: "C-Class", Year: 2020, VIN: "WDDWF4KB0LR000001"},
		{Make: "Dodge", Model: "Charger", Year: 2019, VIN: "2C3CDXBG0KH000001"},
		{Make: "BMW", Model: "M3", Year: 2018, VIN: "WBSJF0C50JB000001"},
		{Make: "Lexus", Model: "RX", Year: 2003, VIN: "JTHBA30G035000001"},
	}
	for _, v := range cases {
		if err := ValidateVehicle(v); err != nil {
			t.Errorf("expected valid for %+v, got %v", v, err)
		}
	}

	err := ValidateVehicle(Vehicle{Make: "Toyota", Model: "Camry", Year: 2019, VIN: "2C3CDXBG0KH000001"})
	if !errors.Is(err, ErrVINMakeMismatch) {
		t.Errorf("expected ErrVINMakeMismatch, got %v", err)
	}
}

func TestMakeMatches(t *testing.T) {
	tests := []struct {
		manufacturer, make string
		want               bool
	}{
		{"Honda", "honda", true},
		{"Honda", "Acura", true},
		{"BMW M", "BMW", true},
		{"Mercedes-Benz", "Mercedes-Benz", true},
		{"Mercedes-Benz", "Mercedes", false},
		{"Chrysler", "Ram", true},
		{"Tesla", "Toyota", false},
	}
	for _, tt := range tests {
		if got := MakeMatches(tt.manufacturer, tt.make); got != tt.want {
			t.Errorf("MakeMatches(%q, %q) = %v, want %v", tt.manufacturer, tt.make, got, tt.want)
		}
	}
}

func TestValidateVehicle_InvalidMake(t *testing.T) {
	err := ValidateVehicle(Vehicle{Make: "Lada", Model: "Niva", Year: 2020})
	if !errors.Is(err, ErrUnsupportedMake) {
		t.Errorf("expected ErrUnsupportedMake, got %v", err)
	}
}

func TestValidateVehicle_InvalidModel(t *testing.T) {
	err := ValidateVehicle(Vehicle{Make: "Toyota", Model: "FakeModel", Year: 2020})
	if !errors.Is(err, ErrUnsupportedModel) {
		t.Errorf("expected ErrUnsupportedModel, got %v", err)
	}
}

func TestValidateVehicle_YearOutOfRange(t *testing.T) {
	err := ValidateVehicle(Vehicle{Make: "Toyota", Model: "Camry", Year: 1970})
	if !errors.Is(err, ErrYearOutOfRange) {
		t.Errorf("expected ErrYearOutOfRange, got %v", err)
	}
	err = ValidateVehicle(Vehicle{Make: "Toyota", Model: "Camry", Year: 2099})
	if !errors.Is(err, ErrYearOutOfRange) {
		t.Errorf("expected ErrYearOutOfRange, got %v", err)
	}
}

func TestValidateVehicle_InvalidVIN(t *testing.T) {
	err := ValidateVehicle(Vehicle{Make: "Toyota", Model: "Camry", Year: 2020, VIN: "INVALID"})
	if !errors.Is(err, ErrInvalidVIN) {
		t.Errorf("expected ErrInvalidVIN, got %v", err)
	}
	if !errors.Is(err, vin.ErrLength) {
		t.Errorf("expected the decode error to stay reachable, got %v", err)
	}
	// VIN with I (forbidden)
	err = ValidateVehicle(Vehicle{Make: "Toyota", Model: "Camry", Year: 2020, VIN: "5YJ3E1EA1IF123456"})
	if !errors.Is(err, ErrInvalidVIN) || !errors.Is(err, vin.ErrChars) {
		t.Errorf("expected ErrInvalidVIN for VIN with I, got %v", err)
	}
}

func TestValidateVehicle_YearMismatch(t *testing.T) {
	err := ValidateVehicle(Vehicle{Make: "Honda", Model: "Accord", Year: 2020, VIN: "1HGCM82633A004352"})
	if !errors.Is(err, ErrVINYearMismatch) {
		t.Errorf("expected ErrVINYearMismatch, got %v", err)
	}
}

func TestValidateVehicle_MakeMismatch(t *testing.T) {
	err := ValidateVehicle(Vehicle{Make: "Toyota", Model: "Camry", Year: 2003, VIN: "1HGCM82633A004352"})
	if !errors.Is(err, ErrVINMakeMismatch) {
		t.Errorf("expected ErrVINMakeMismatch, got %v", err)
	}
	var ve *ValidationError
	if !errors.As(err, &ve) || ve.Field != "vin" {
		t.Errorf("expected a vin ValidationError, got %v", err)
	}
}

func TestValidationError_Unwrap(t *testing.T) {
	ve := NewValidationError("make", "Lada", ErrUnsupportedMake)
	if !errors.Is(ve, ErrUnsupportedMake) {
		t.Errorf("Unwrap should expose ErrUnsupportedMake")
	}
	var target *ValidationError
	if !errors.As(ve, &target) {
		t.Errorf("errors.As should work for *ValidationError")
	}
	if target.Field != "make" {
		t.Errorf("expected field=make, got %s", target.Field)
	}
}

func TestValidateScanEvent(t *testing.T) {
	ok := ScanEvent{ID: "s1", Source: SourceBarcode, Raw: "I1HGCM82633A004352", ScannedAt: time.Now()}
	if err := ValidateScanEvent(ok); err != nil {
		t.Fatalf("expected valid, got %v", err)
	}
	ok.Source = "ocr:dock-3"
	if err := ValidateScanEvent(ok); err != nil {
		t.Fatalf("expected prefixed source to be valid, got %v", err)
	}

	tests := []struct {
		name  string
		event ScanEvent
		field string
	}{
		{"missing id", ScanEvent{Source: SourceAPI, Raw: "x"}, "id"},
		{"unknown source", ScanEvent{ID: "s", Source: "fax", Raw: "x"}, "source"},
		{"blank raw", ScanEvent{ID: "s", Source: SourceManual, Raw: "  "}, "raw"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateScanEvent(tt.event)
			var ve *ValidationError
			if !errors.As(err, &ve) || ve.Field != tt.field || !errors.Is(err, ErrInvalidScan) {
				t.Fatalf("expected %s ErrInvalidScan, got %v", tt.field, err)
			}
		})
	}
}

func TestDecodeEventOK(t *testing.T) {
	if (DecodeEvent{}).OK() {
		t.Fatal("empty event must not be OK")
	}
	r := vin.Result{VIN: "1HGCM82633A004352"}
	if !(DecodeEvent{Result: &r}).OK() {
		t.Fatal("event with result should be OK")
	}
	if (DecodeEvent{Result: &r, Error: "x"}).OK() {
		t.Fatal("event with error must not be OK")
	}
}
