package vin

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Normalize uppercases input and strips every whitespace character from it.
// nil yields "". Non-string values are coerced with fmt. Normalize never fails
// and Normalize(Normalize(x)) == Normalize(x).
func Normalize(input any) string {
	s, ok := asString(input)
	if !ok {
		switch t := input.(type) {
		case nil:
			return ""
		case *string:
			return ""
		case []byte:
			s = string(t)
		default:
			s = fmt.Sprint(input)
		}
	}
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, strings.ToUpper(s))
}

// CheckStructure validates that raw is present, is a string and normalizes to
// 17 characters from the VIN alphabet. It returns nil or a *Error.
func CheckStructure(raw any) error {
	if _, err := structure(raw); err != nil {
		return err
	}
	return nil
}

// structure is the return-based core of CheckStructure; it also hands back the
// normalized VIN so callers do not normalize twice.
func structure(raw any) (string, *Error) {
	if isNil(raw) {
		return "", newError(CodeRequired, "")
	}
	s, ok := asString(raw)
	if !ok {
		return "", newError(CodeType, "VIN must be a string, got %T", raw)
	}
	v := Normalize(s)
	if n := utf8.RuneCountInString(v); n != Length {
		return v, newError(CodeLength, "VIN must be exactly %d characters, got %d", Length, n)
	}
	pos := 0
	for _, r := range v {
		pos++
		if !IsAllowedChar(r) {
			return v, newError(CodeChars, "VIN contains invalid character %q at position %d (I, O and Q are not allowed)", r, pos)
		}
	}
	return v, nil
}

// allowed reports whether c belongs to [A-HJ-NPR-Z0-9].
func allowed(c byte) bool {
	_, ok := transliteration[c]
	return ok
}

// IsAllowedChar reports whether r may appear in a VIN.
func IsAllowedChar(r rune) bool {
	return r < 0x80 && allowed(byte(r))
}

func asString(v any) (string, bool) {
	switch t := v.(type) {
	case string:
		return t, true
	case *string:
		if t == nil {
			return "", false
		}
		return *t, true
	}
	return "", false
}

func isNil(v any) bool {
	if v == nil {
		return true
	}
	p, ok := v.(*string)
	return ok && p == nil
}
