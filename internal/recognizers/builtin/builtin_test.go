// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package builtin

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pii-analyzer/internal/detector"
	"pii-analyzer/internal/recognizers/pattern"
)

func analyze(t *testing.T, name, text string) []detector.Candidate {
	t.Helper()
	def, ok := Definition(name, "fr")
	require.True(t, ok, "unknown recognizer %s", name)
	r, err := pattern.New(def)
	require.NoError(t, err)
	candidates, err := r.Analyze(context.Background(), text, "fr")
	require.NoError(t, err)
	return candidates
}

func TestBuiltinRecognizers(t *testing.T) {
	tests := []struct {
		name      string
		positives []string
		negatives []string
	}{
		{
			name:      "be_national_register_number",
			positives: []string{"85.07.30-033.61", "85 07 30 033 61", "85073003361"},
			negatives: []string{"123456789012", "1234567890", "12.34.56-789.0"},
		},
		{
			name:      "be_enterprise_number",
			positives: []string{"BE0123.456.789", "BE 0123.456.789", "BE0123456789"},
			negatives: []string{"BE1123456789", "BE012345678", "FR0123456789"},
		},
		{
			name:      "be_bank_account",
			positives: []string{"310-1234567-89"},
			negatives: []string{"310-123456-89", "3101234567-89"},
		},
		{
			name:      "fr_social_security_number",
			positives: []string{"1 84 12 76 451 089 46", "184127645108946", "2 90 05 2A 123 456 78"},
			negatives: []string{"3 84 12 76 451 089 46", "1 84 13 76 451 089 46", "18412764510894"},
		},
		{
			name:      "email",
			positives: []string{"jean.dupont@example.be", "marie+test@mail.example.fr"},
			negatives: []string{"jean@", "jean.example.com", "@example.com"},
		},
		{
			name: "iban",
			positives: []string{
				"BE68 5390 0754 7034",
				"BE68539007547034",
				"FR14 2004 1010 0505 0001 3M02 606",
				"DE89 3704 0044 0532 0130 00",
				"GB82 WEST 1234 5698 7654 32",
			},
			negatives: []string{"BE68 5390 0754 7035", "BE6853900754", "be68 5390 0754 7034"},
		},
		{
			name: "phone",
			positives: []string{
				"+32 4 12 34 56 78",
				"+33 1 23 45 67 89",
				"0033 6 12 34 56 78",
				"+352 2 12 34 56",
				"01 23 45 67 89",
				"06.12.34.56.78",
				"0475 12 34 56",
				"04 12 34 56 78",
			},
			negatives: []string{"12 34 56 78 90", "+44 20 7946 0958", "0123"},
		},
		{
			name:      "credit_card",
			positives: []string{"4111 1111 1111 1111", "5500-0000-0000-0004", "4012888888881881", "378282246310005"},
			negatives: []string{"4111 1111 1111 1112", "1234 5678", "9111 1111 1111 1111"},
		},
		{
			name:      "ip_address",
			positives: []string{"192.168.1.10", "10.0.0.1", "2001:0db8:85a3:0000:0000:8a2e:0370:7334"},
			negatives: []string{"256.1.1.1", "1.2.3", "192.168.1"},
		},
		{
			name:      "url",
			positives: []string{"https://example.be/contact", "http://www.service-public.fr", "www.kbo.be"},
			negatives: []string{"example", "htp://example.com", "ftp//example.com"},
		},
		{
			name:      "date_time",
			positives: []string{"15/03/1985", "1985-03-15", "1er janvier 2024", "12 Mars 2023", "3 février 2020"},
			negatives: []string{"32/01/2020", "15/13/2020", "2020-13-01"},
		},
		{
			name:      "money",
			positives: []string{"1 234,56 €", "EUR 1.000", "€ 250", "250 EUR", "1.500,00 EUR"},
			negatives: []string{"1234", "USD 100", "100 dollars"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, text := range tt.positives {
				candidates := analyze(t, tt.name, text)
				found := false
				for _, c := range candidates {
					if c.Start == 0 && c.End == len(text) {
						found = true
					}
				}
				assert.True(t, found, "expected %q to be matched in full, got %v", text, candidates)
			}
			for _, text := range tt.negatives {
				assert.Empty(t, analyze(t, tt.name, text), "expected no match in %q", text)
			}
		})
	}
}

func TestBuiltinMatchesInsideSentence(t *testing.T) {
	text := "Contactez-moi au 04 12 34 56 78"
	candidates := analyze(t, "phone", text)
	require.Len(t, candidates, 1)
	assert.Equal(t, "04 12 34 56 78", candidates[0].Text(text))
	assert.Equal(t, 0.8, candidates[0].Score)
	assert.Equal(t, "PHONE_NUMBER", candidates[0].EntityType)
}

func TestNIRScoresByForm(t *testing.T) {
	tests := []struct {
		text        string
		wantPattern string
		wantScore   float64
	}{
		{text: "1 84 12 76 451 089 46", wantPattern: "NIR spaced", wantScore: 1.0},
		{text: "2 90052A123456 78", wantPattern: "NIR spaced", wantScore: 1.0},
		{text: "184127645108946", wantPattern: "NIR compact", wantScore: 0.95},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			candidates := analyze(t, "fr_social_security_number", tt.text)
			require.Len(t, candidates, 1)
			assert.Equal(t, tt.text, candidates[0].Text(tt.text))
			assert.Equal(t, tt.wantScore, candidates[0].Score)
			assert.Equal(t, tt.wantPattern, candidates[0].Explanation.PatternName)
		})
	}
}

func TestEmailContextIncludesAtSign(t *testing.T) {
	def, ok := Definition("email", "fr")
	require.True(t, ok)
	assert.Contains(t, def.Context, "@")
}

func TestEveryNameHasADefinition(t *testing.T) {
	for _, name := range Names() {
		assert.True(t, Known(name), name)
		for _, lang := range []string{"fr", "en", "de"} {
			def, ok := Definition(name, lang)
			require.True(t, ok)
			assert.Equal(t, lang, def.Language)
			_, err := pattern.New(def)
			assert.NoError(t, err, name)
		}
	}
	assert.Len(t, Names(), len(entries))
}

func TestDefinition(t *testing.T) {
	def, ok := Definition("be_bank_account", "fr")
	require.True(t, ok)
	assert.Equal(t, "BeBankAccountRecognizer", def.Name)
	assert.Equal(t, "BE_BANK_ACCOUNT", def.EntityType)
	assert.Contains(t, def.Context, "virement")

	def, ok = Definition("iban", "de")
	require.True(t, ok)
	assert.Empty(t, def.Context)
	assert.Equal(t, pattern.ValidationIBAN, def.Validation)

	_, ok = Definition("passport", "fr")
	assert.False(t, ok)
	assert.False(t, Known("passport"))
}

func TestDefinitionReturnsCopies(t *testing.T) {
	def, _ := Definition("email", "fr")
	def.Patterns[0].Score = 0.1
	def.Context[0] = "changed"

	again, _ := Definition("email", "fr")
	assert.Equal(t, 0.9, again.Patterns[0].Score)
	assert.Equal(t, "email", again.Context[0])
}

func TestEntityTypes(t *testing.T) {
	types := EntityTypes()
	assert.Contains(t, types, "IBAN")
	assert.Contains(t, types, "PHONE_NUMBER")
	assert.IsNonDecreasing(t, types)
}
