package vin

// ValidationResult is the non-throwing verdict of Validate.
type ValidationResult struct {
	Valid  bool   `json:"valid"`
	Reason string `json:"reason,omitempty"`
}

// Validate checks structure and check digit, always enforcing the check digit
// regardless of region. It never returns an error.
func Validate(raw any) ValidationResult {
	o := DefaultOptions()
	o.AssumeNACheckDigit = false
	o.RequireValidCheckDigit = true

	res, verr := inspect(raw, o)
	if verr != nil {
		return ValidationResult{Reason: verr.Message}
	}
	if !res.CheckDigit.Valid {
		reason := ReasonInvalid
		if res.CheckDigit.Reason == ReasonNotComputable {
			reason = ReasonNotComputable
		}
		return ValidationResult{Reason: reason}
	}
	return ValidationResult{Valid: true}
}

// IsValid is shorthand for Validate(raw).Valid.
func IsValid(raw any) bool { return Validate(raw).Valid }
