// Package vin decodes and validates 17-character Vehicle Identification
// Numbers: ISO 3779 check digit, WMI manufacturer lookup and model-year
// resolution across the repeating 30-year code cycle.
//
// Decode and Validate are pure apart from the WMI registry, which callers may
// extend with RegisterWMIs during start-up.
package vin
