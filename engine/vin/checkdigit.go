package vin

// ComputeCheckDigit returns the ISO 3779 check character ('0'-'9' or 'X') for
// a 17-character VIN. Every position takes part in the weighted sum; the check
// digit slot itself weighs 0. ok is false when vin17 is not 17 bytes long or
// contains a character without a transliteration value.
func ComputeCheckDigit(vin17 string) (byte, bool) {
	if len(vin17) != Length {
		return 0, false
	}
	sum := 0
	for i := 0; i < Length; i++ {
		v, ok := transliteration[vin17[i]]
		if !ok {
			return 0, false
		}
		sum += v * weights[i]
	}
	rem := sum % 11
	if rem == 10 {
		return 'X', true
	}
	return byte('0' + rem), true
}

// WithCheckDigit returns vin17 with its check digit slot replaced by the
// computed value.
func WithCheckDigit(vin17 string) (string, bool) {
	cd, ok := ComputeCheckDigit(vin17)
	if !ok {
		return "", false
	}
	b := []byte(vin17)
	b[checkDigitPos] = cd
	return string(b), true
}
