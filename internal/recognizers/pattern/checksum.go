// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package pattern

import (
	"fmt"
	"strings"
	"unicode"
)

// Validation names a checksum applied to matched text after the regex
type Validation string

const (
	ValidationNone Validation = ""
	ValidationLuhn Validation = "luhn"
	ValidationIBAN Validation = "iban"
)

// checker returns the checksum function for v
func (v Validation) checker() (func(string) bool, error) {
	switch v {
	case ValidationNone:
		return nil, nil
	case ValidationLuhn:
		return LuhnValid, nil
	case ValidationIBAN:
		return IBANValid, nil
	default:
		return nil, fmt.Errorf("unknown validation %q (expected %q or %q)", string(v), ValidationLuhn, ValidationIBAN)
	}
}

// stripSeparators removes spaces, dots and dashes commonly used to group digits
func stripSeparators(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) || r == '-' || r == '.' {
			return -1
		}
		return r
	}, s)
}

// LuhnValid reports whether the digits of s pass the Luhn check
func LuhnValid(s string) bool {
	digits := stripSeparators(s)
	if len(digits) < 2 {
		return false
	}

	sum := 0
	double := false
	for i := len(digits) - 1; i >= 0; i-- {
		c := digits[i]
		if c < '0' || c > '9' {
			return false
		}
		d := int(c - '0')
		if double {
			d *= 2
			if d > 9 {
				d -= 9
			}
		}
		sum += d
		double = !double
	}
	return sum%10 == 0
}

// IBANValid reports whether s is an IBAN with a correct ISO 7064 mod-97 checksum
func IBANValid(s string) bool {
	iban := strings.ToUpper(stripSeparators(s))
	if len(iban) < 15 || len(iban) > 34 {
		return false
	}

	rearranged := iban[4:] + iban[:4]
	remainder := 0
	for i := 0; i < len(rearranged); i++ {
		c := rearranged[i]
		switch {
		case c >= '0' && c <= '9':
			remainder = (remainder*10 + int(c-'0')) % 97
		case c >= 'A' && c <= 'Z':
			v := int(c-'A') + 10
			remainder = (remainder*100 + v) % 97
		default:
			return false
		}
	}
	return remainder == 1
}
