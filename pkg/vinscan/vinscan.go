// Package vinscan pulls VIN candidates out of barcode and OCR text.
package vinscan

import (
	"regexp"
	"strings"

	"github.com/WessleyAI/wessley-vin/engine/vin"
)

// tokenRe splits scanner output into alphanumeric runs.
var tokenRe = regexp.MustCompile(`[A-Z0-9]+`)

// code39Prefix is prepended by Code 39 barcodes on imported vehicles.
const code39Prefix = 'I'

// ocrRepair maps characters OCR commonly reads in place of VIN digits.
var ocrRepair = strings.NewReplacer("O", "0", "Q", "0", "I", "1")

// Candidates returns the VIN-shaped tokens in text, in order of appearance and
// without duplicates. Every candidate passes vin.CheckStructure; repaired
// tokens are only returned when their check digit also validates.
func Candidates(text string) []string {
	var out []string
	seen := make(map[string]bool)
	for _, tok := range tokenRe.FindAllString(strings.ToUpper(text), -1) {
		c, ok := candidate(tok)
		if !ok || seen[c] {
			continue
		}
		seen[c] = true
		out = append(out, c)
	}
	return out
}

func candidate(tok string) (string, bool) {
	if len(tok) == vin.Length+1 && tok[0] == code39Prefix {
		tok = tok[1:]
	}
	if len(tok) != vin.Length {
		return "", false
	}
	if vin.CheckStructure(tok) == nil {
		return tok, true
	}
	repaired := ocrRepair.Replace(tok)
	if repaired != tok && vin.Validate(repaired).Valid {
		return repaired, true
	}
	return "", false
}

// Best returns the first candidate with a valid check digit, falling back to
// the first structurally valid candidate.
func Best(text string) (string, bool) {
	cands := Candidates(text)
	if len(cands) == 0 {
		return "", false
	}
	for _, c := range cands {
		if vin.IsValid(c) {
			return c, true
		}
	}
	return cands[0], true
}
