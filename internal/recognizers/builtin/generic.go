// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package builtin

import "pii-analyzer/internal/recognizers/pattern"

const ipv4Octet = `(?:25[0-5]|2[0-4]\d|1\d\d|[1-9]?\d)`

func init() {
	register(entry{
		name:       "email",
		entityType: "EMAIL_ADDRESS",
		patterns: []pattern.Spec{
			{Name: "email", Regex: `\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b`, Score: 0.9},
		},
		context: map[string][]string{
			"fr": {"email", "e-mail", "mail", "courriel", "adresse électronique", "@"},
			"en": {"email", "e-mail", "mail", "address"},
			"nl": {"email", "e-mail", "mail", "adres"},
		},
	})

	register(entry{
		name:       "iban",
		entityType: "IBAN",
		patterns: []pattern.Spec{
			{Name: "IBAN avec espaces", Regex: `\b[A-Z]{2}\d{2}(?:\s[A-Z0-9]{4}){3,7}(?:\s\d{1,4})?\b`, Score: 0.95},
			{Name: "IBAN compact", Regex: `\b[A-Z]{2}\d{2}[A-Z0-9]{11,30}\b`, Score: 0.9},
		},
		context: map[string][]string{
			"fr": {"iban", "compte", "bancaire", "virement", "bic", "swift"},
			"en": {"iban", "account", "bank", "transfer", "bic", "swift"},
			"nl": {"iban", "rekening", "bank", "overschrijving", "bic"},
		},
		validation: pattern.ValidationIBAN,
	})

	register(entry{
		name:       "phone",
		entityType: "PHONE_NUMBER",
		patterns: []pattern.Spec{
			{Name: "international BE/FR/LU", Regex: `(?:\+|\b00)(?:32|33|352)\s?[1-9](?:[\s.-]?\d{2}){3,4}\b`, Score: 0.9},
			{Name: "national", Regex: `\b0[1-9](?:[\s.-]?\d{2}){4}\b`, Score: 0.8},
			{Name: "BE mobile", Regex: `\b04\d{2}[\s.-]?\d{2}[\s.-]?\d{2}[\s.-]?\d{2}\b`, Score: 0.85},
		},
		context: map[string][]string{
			"fr": {"téléphone", "tél", "tel", "gsm", "mobile", "portable", "numéro", "appelez", "contact", "contactez", "joindre"},
			"en": {"phone", "telephone", "tel", "mobile", "cell", "call", "contact"},
			"nl": {"telefoon", "tel", "gsm", "mobiel", "bel", "contact"},
		},
	})

	register(entry{
		name:       "credit_card",
		entityType: "CREDIT_CARD",
		patterns: []pattern.Spec{
			{
				Name:  "credit card",
				Regex: `\b(?:4\d{3}|5[0-5]\d{2}|6\d{3}|1\d{3}|3\d{3})[- ]?\d{3,4}[- ]?\d{3,4}[- ]?\d{3,5}\b`,
				Score: 0.5,
			},
		},
		context: map[string][]string{
			"fr": {"carte", "crédit", "credit", "visa", "mastercard", "amex", "cb", "paiement"},
			"en": {"card", "credit", "visa", "mastercard", "amex", "payment"},
			"nl": {"kaart", "kredietkaart", "visa", "mastercard", "betaling"},
		},
		validation: pattern.ValidationLuhn,
	})

	register(entry{
		name:       "ip_address",
		entityType: "IP_ADDRESS",
		patterns: []pattern.Spec{
			{Name: "IPv4", Regex: `\b(?:` + ipv4Octet + `\.){3}` + ipv4Octet + `\b`, Score: 0.6},
			{Name: "IPv6", Regex: `\b(?:[0-9A-Fa-f]{1,4}:){7}[0-9A-Fa-f]{1,4}\b`, Score: 0.6},
		},
		context: map[string][]string{
			"fr": {"ip", "adresse ip", "ipv4", "ipv6", "serveur"},
			"en": {"ip", "ip address", "ipv4", "ipv6", "server"},
		},
	})

	register(entry{
		name:       "url",
		entityType: "URL",
		patterns: []pattern.Spec{
			{Name: "URL with scheme", Regex: `\bhttps?://[^\s<>"']+`, Score: 0.6},
			{Name: "www URL", Regex: `\bwww\.[A-Za-z0-9-]+(?:\.[A-Za-z0-9-]+)+(?:/[^\s<>"']*)?`, Score: 0.5},
		},
		context: map[string][]string{
			"fr": {"site", "lien", "url", "adresse web"},
			"en": {"website", "link", "url"},
		},
	})

	register(entry{
		name:       "date_time",
		entityType: "DATE_TIME",
		patterns: []pattern.Spec{
			{Name: "numeric date (DD/MM/YYYY)", Regex: `\b(?:0?[1-9]|[12]\d|3[01])[/.-](?:0?[1-9]|1[0-2])[/.-](?:\d{4}|\d{2})\b`, Score: 0.6},
			{Name: "ISO date", Regex: `\b\d{4}-(?:0[1-9]|1[0-2])-(?:0[1-9]|[12]\d|3[01])\b`, Score: 0.6},
			{
				Name:  "French date",
				Regex: `(?i)\b(?:0?[1-9]|[12]\d|3[01])(?:er)?\s+(?:janvier|février|fevrier|mars|avril|mai|juin|juillet|août|aout|septembre|octobre|novembre|décembre|decembre)\s+\d{4}\b`,
				Score: 0.6,
			},
		},
		context: map[string][]string{
			"fr": {"date", "né", "née", "naissance", "anniversaire"},
			"en": {"date", "born", "birth", "birthday", "dob"},
		},
	})

	register(entry{
		name:       "money",
		entityType: "MONEY",
		patterns: []pattern.Spec{
			{Name: "euro prefix", Regex: `(?:\bEUR|€)\s?\d{1,3}(?:[.\s]\d{3})*(?:,\d{2})?\b`, Score: 0.85},
			{Name: "euro suffix", Regex: `\b\d{1,3}(?:[.\s]\d{3})*(?:,\d{2})?\s?(?:EUR\b|€)`, Score: 0.85},
		},
		context: map[string][]string{
			"fr": {"montant", "prix", "somme", "total", "payer", "coût"},
			"en": {"amount", "price", "total", "pay", "cost"},
		},
	})
}
