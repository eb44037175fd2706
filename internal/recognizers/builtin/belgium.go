// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package builtin

import "pii-analyzer/internal/recognizers/pattern"

// Belgian identifiers
func init() {
	register(entry{
		name:       "be_national_register_number",
		entityType: "BE_NATIONAL_REGISTER_NUMBER",
		patterns: []pattern.Spec{
			{Name: "NRN standard (YY.MM.DD-XXX.CC)", Regex: `\b\d{2}\.\d{2}\.\d{2}-\d{3}\.\d{2}\b`, Score: 1.0},
			{Name: "NRN spaced", Regex: `\b\d{2}\s\d{2}\s\d{2}\s\d{3}\s\d{2}\b`, Score: 0.9},
			{Name: "NRN compact", Regex: `\b\d{11}\b`, Score: 0.7},
		},
		context: map[string][]string{
			"fr": {"registre national", "numéro national", "nrn", "niss", "identité", "carte d'identité"},
			"en": {"national register", "national number", "nrn", "niss", "identity"},
			"nl": {"rijksregister", "rijksregisternummer", "insz", "identiteitskaart"},
		},
	})

	register(entry{
		name:       "be_enterprise_number",
		entityType: "BE_ENTERPRISE_NUMBER",
		patterns: []pattern.Spec{
			{Name: "BE enterprise number dotted", Regex: `\bBE\s?0\d{3}\.\d{3}\.\d{3}\b`, Score: 0.95},
			{Name: "BE enterprise number compact", Regex: `\bBE\s?0\d{9}\b`, Score: 0.9},
		},
		context: map[string][]string{
			"fr": {"numéro d'entreprise", "entreprise", "tva", "btw", "société", "rcs", "kbo", "bce"},
			"en": {"enterprise number", "company", "vat", "btw", "kbo"},
			"nl": {"ondernemingsnummer", "onderneming", "btw", "kbo"},
		},
	})

	register(entry{
		name:       "be_bank_account",
		entityType: "BE_BANK_ACCOUNT",
		patterns: []pattern.Spec{
			{Name: "BE bank account (XXX-XXXXXXX-XX)", Regex: `\b\d{3}-\d{7}-\d{2}\b`, Score: 0.9},
		},
		context: map[string][]string{
			"fr": {"compte", "bancaire", "virement", "domiciliation", "banque"},
			"en": {"account", "bank", "transfer"},
			"nl": {"rekening", "rekeningnummer", "bank", "overschrijving"},
		},
	})
}
