package vin

import (
	"encoding/json"
	"fmt"
	"time"
)

// Check-digit annotations.
const (
	ReasonNotEnforced   = "Not enforced outside North America"
	ReasonMismatch      = "Check digit mismatch"
	ReasonNotComputable = "Check digit could not be computed"
	ReasonInvalid       = "Invalid check digit"
)

// Options controls Decode.
type Options struct {
	// RequireValidCheckDigit turns an invalid check digit into ErrCheckDigit.
	RequireValidCheckDigit bool
	// AssumeNACheckDigit only treats a mismatch as authoritative for North
	// American VINs.
	AssumeNACheckDigit bool
	CurrentYear        int
	MinYear            int
	MaxYear            int
}

// DefaultOptions returns the decode defaults anchored at the wall-clock year.
func DefaultOptions() Options {
	now := time.Now().Year()
	return Options{
		AssumeNACheckDigit: true,
		CurrentYear:        now,
		MinYear:            baseModelYear,
		MaxYear:            now + 1,
	}
}

// Option mutates Options.
type Option func(*Options)

// WithRequireValidCheckDigit sets Options.RequireValidCheckDigit.
func WithRequireValidCheckDigit(v bool) Option {
	return func(o *Options) { o.RequireValidCheckDigit = v }
}

// WithAssumeNACheckDigit sets Options.AssumeNACheckDigit.
func WithAssumeNACheckDigit(v bool) Option {
	return func(o *Options) { o.AssumeNACheckDigit = v }
}

// WithCurrentYear anchors model-year resolution. Non-positive values are ignored.
func WithCurrentYear(y int) Option {
	return func(o *Options) {
		if y > 0 {
			o.CurrentYear = y
		}
	}
}

// WithYearRange bounds model-year resolution. Non-positive bounds are ignored.
func WithYearRange(lo, hi int) Option {
	return func(o *Options) {
		if lo > 0 {
			o.MinYear = lo
		}
		if hi > 0 {
			o.MaxYear = hi
		}
	}
}

// WithOptions replaces every setting with opts.
func WithOptions(opts Options) Option {
	return func(o *Options) { *o = opts }
}

// CheckDigit reports the check digit found in a VIN and the one expected.
type CheckDigit struct {
	Given    string `json:"given"`
	Expected string `json:"expected"` // empty when not computable
	Valid    bool   `json:"valid"`
	Reason   string `json:"reason,omitempty"`
}

// Result is a decoded VIN.
type Result struct {
	VIN          string     `json:"vin"`
	WMI          string     `json:"wmi"`
	VDS          string     `json:"vds"`
	VIS          string     `json:"vis"`
	Region       string     `json:"region"`
	Country      string     `json:"country,omitempty"`
	Manufacturer string     `json:"manufacturer"`
	ModelYear    int        `json:"model_year"` // 0 when unresolved; resolved years are 1..9999
	CheckDigit   CheckDigit `json:"check_digit"`
	PlantCode    string     `json:"plant_code"`
	SerialNumber string     `json:"serial_number"`
}

// HasModelYear reports whether the model year was resolved.
func (r Result) HasModelYear() bool { return r.ModelYear != 0 }

// MarshalJSON renders an unresolved model year as null.
func (r Result) MarshalJSON() ([]byte, error) {
	type plain Result
	var year *int
	if r.HasModelYear() {
		y := r.ModelYear
		year = &y
	}
	return json.Marshal(struct {
		plain
		ModelYear *int `json:"model_year"`
	}{plain: plain(r), ModelYear: year})
}

// Decode validates raw and breaks it into its fields. Failures are returned as
// *Error and match the package sentinels under errors.Is.
func Decode(raw any, opts ...Option) (Result, error) {
	o := DefaultOptions()
	for _, fn := range opts {
		fn(&o)
	}
	res, verr := inspect(raw, o)
	if verr != nil {
		return Result{}, verr
	}
	if o.RequireValidCheckDigit && !res.CheckDigit.Valid {
		return Result{}, &Error{
			Code:    CodeCheckDigit,
			Message: fmt.Sprintf("VIN check digit is invalid (expected %s, got %s)", orDash(res.CheckDigit.Expected), res.CheckDigit.Given),
		}
	}
	return res, nil
}

// inspect is the shared return-based core behind Decode and Validate. It never
// panics; unexpected failures come back as ErrUnknown.
func inspect(raw any, o Options) (res Result, verr *Error) {
	defer func() {
		if p := recover(); p != nil {
			res = Result{}
			verr = &Error{Code: CodeUnknown, Message: ErrUnknown.Message, Err: fmt.Errorf("%v", p)}
		}
	}()

	v, serr := structure(raw)
	if serr != nil {
		return Result{}, serr
	}

	res = Result{
		VIN:          v,
		WMI:          v[0:3],
		VDS:          v[3:9],
		VIS:          v[9:17],
		Region:       regionOf(v[0]),
		Country:      countries[v[0]],
		PlantCode:    v[plantPos : plantPos+1],
		SerialNumber: v[plantPos+1:],
	}
	res.CheckDigit = checkDigitStatus(v, o)
	if y, ok := ResolveModelYear(v[yearPos], YearOptions{CurrentYear: o.CurrentYear, MinYear: o.MinYear, MaxYear: o.MaxYear}); ok {
		res.ModelYear = y
	}
	res.Manufacturer = ResolveManufacturer(res.WMI)
	return res, nil
}

// checkDigitStatus applies the enforcement policy to a structurally valid VIN.
func checkDigitStatus(v string, o Options) CheckDigit {
	cd := CheckDigit{Given: v[checkDigitPos : checkDigitPos+1]}
	expected, ok := ComputeCheckDigit(v)
	if !ok {
		cd.Reason = ReasonNotComputable
		return cd
	}
	cd.Expected = string(expected)
	switch {
	case expected == v[checkDigitPos]:
		cd.Valid = true
	case o.AssumeNACheckDigit && !isNorthAmerica(v[0]):
		cd.Reason = ReasonNotEnforced
		cd.Valid = !o.RequireValidCheckDigit
	default:
		cd.Reason = ReasonMismatch
	}
	return cd
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
