// Package cpf validates Brazilian national ID numbers (CPF).
package cpf

import "regexp"

var nonDigits = regexp.MustCompile(`\D+`)

// OnlyDigits strips every non-digit character from s.
func OnlyDigits(s string) string {
	return nonDigits.ReplaceAllString(s, "")
}

// Valid performs the full CPF validation: 11 digits after stripping
// punctuation, not all digits equal, and both verifier digits correct.
func Valid(raw string) bool {
	c := OnlyDigits(raw)
	if len(c) != 11 {
		return false
	}
	allEqual := true
	for i := 1; i < 11; i++ {
		if c[i] != c[0] {
			allEqual = false
			break
		}
	}
	if allEqual {
		return false
	}

	d1 := verifierDigit(c[:9])
	d2 := verifierDigit(c[:10])
	return int(c[9]-'0') == d1 && int(c[10]-'0') == d2
}

// verifierDigit computes a CPF check digit over the given prefix: each
// digit is weighted from len(prefix)+1 down to 2, then (sum*10) mod 11,
// with 10 mapped to 0.
func verifierDigit(prefix string) int {
	sum := 0
	w := len(prefix) + 1
	for i := 0; i < len(prefix); i++ {
		sum += int(prefix[i]-'0') * (w - i)
	}
	r := (sum * 10) % 11
	if r == 10 {
		return 0
	}
	return r
}
