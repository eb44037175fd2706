// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package builtin

import "pii-analyzer/internal/recognizers/pattern"

func init() {
	// NIR: sex digit, birth year, month, department (2A/2B for Corsica),
	// commune, order number and key
	register(entry{
		name:       "fr_social_security_number",
		entityType: "FR_SOCIAL_SECURITY_NUMBER",
		patterns: []pattern.Spec{
			// spaced forms separate the sex digit; the other separators are optional
			{
				Name:  "NIR spaced",
				Regex: `\b[12]\s\d{2}\s?(?:0[1-9]|1[0-2])\s?(?:2[ABab]|\d{2})\s?\d{3}\s?\d{3}\s?\d{2}\b`,
				Score: 1.0,
			},
			{
				Name:  "NIR compact",
				Regex: `\b[12]\d{2}(?:0[1-9]|1[0-2])(?:2[ABab]|\d{2})\d{6}\d{2}\b`,
				Score: 0.95,
			},
		},
		context: map[string][]string{
			"fr": {"sécurité sociale", "numéro de sécurité sociale", "nir", "sécu", "carte vitale"},
			"en": {"social security", "nir"},
		},
	})
}
