package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBatchNumbers(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		text string
		want []string
	}{
		{
			name: "labeled batch",
			text: "Batch PCT2023002",
			want: []string{"PCT2023002"},
		},
		{
			name: "labeled lot with short code",
			text: "Lot T36184B",
			want: []string{"T36184B"},
		},
		{
			name: "letter-prefixed code without label",
			text: "keep away from children AMX250412",
			want: []string{"AMX250412"},
		},
		{
			name: "plausible digit run",
			text: "code 123456 on the flap",
			want: []string{"123456"},
		},
		{
			name: "bare year is not a batch",
			text: "made in 2024",
			want: nil,
		},
		{
			name: "labeled year still rejected",
			text: "Lot 2024",
			want: nil,
		},
		{
			name: "short digit run rejected",
			text: "No 12345",
			want: nil,
		},
		{
			name: "long digit run rejected",
			text: "call 0801234567890 for complaints",
			want: nil,
		},
		{
			name: "case-insensitive dedupe",
			text: "Batch abc123 repeat ABC123",
			want: []string{"abc123"},
		},
		{
			name: "no candidates",
			text: "store below 30 degrees",
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, BatchNumbers(tt.text))
		})
	}
}

func TestBatchNumbers_CappedAtThree(t *testing.T) {
	t.Parallel()

	got := BatchNumbers("Lot AB1234 CD5678 EF9012 GH3456")
	assert.Len(t, got, 3)
	assert.Equal(t, "AB1234", got[0])
}

func TestProductNames(t *testing.T) {
	t.Parallel()

	text := "PARACETAMOL 500mg Batch PCT2023002 Exp 12/2025 Manufactured by ABC Pharma Ltd"
	got := ProductNames(text)

	require.NotEmpty(t, got)
	assert.Equal(t, "PARACETAMOL 500mg", got[0], "dosage-qualified name is primary")
	assert.NotContains(t, got, "ABC Pharma Ltd", "corporate suffixes mark manufacturers")
}

func TestProductNames_LongestFirst(t *testing.T) {
	t.Parallel()

	got := ProductNames("Ibuprofen 200mg Panadol Extra Forte")

	require.NotEmpty(t, got)
	assert.Equal(t, "Panadol Extra Forte", got[0])
	assert.Contains(t, got, "Ibuprofen 200mg")
}

func TestProductNames_StopwordsExcluded(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		text string
	}{
		{"form words", "Film Coated Tablets"},
		{"label words", "Batch Expiry Manufactured"},
		{"single form word", "Capsules"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Empty(t, ProductNames(tt.text))
		})
	}
}

func TestExpiryDate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		text   string
		want   string
		wantOK bool
	}{
		{"labeled exp month-year", "Exp 12/2025", "12/2025", true},
		{"labeled expiry date dashed", "Expiry date 03-2026", "03-2026", true},
		{"best before year first", "Best before 2026/01", "2026/01", true},
		{"use by full date", "use by 15.08.2025", "15.08.2025", true},
		{"bare day-month-year", "stamped 15/08/2025 on the flap", "15/08/2025", true},
		{"bare iso date", "2025-08-15", "2025-08-15", true},
		{"labeled wins over earlier bare date", "Mfd 01/2024 Exp 12/2025", "12/2025", true},
		{"first labeled match wins", "Exp 12/2025 use by 01/2026", "12/2025", true},
		{"no date", "no date printed here", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, ok := ExpiryDate(tt.text)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestManufacturers(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		text string
		want []string
	}{
		{
			name: "manufactured by label",
			text: "Manufactured by ABC Pharma Ltd",
			want: []string{"ABC Pharma Ltd"},
		},
		{
			name: "mfg label with period",
			text: "Mfg. by Emzor Pharmaceutical Industries",
			want: []string{"Emzor Pharmaceutical Industries"},
		},
		{
			name: "bare corporate suffix",
			text: "a product of XYZ Corp",
			want: []string{"XYZ Corp"},
		},
		{
			name: "no manufacturer",
			text: "shake well before use",
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, Manufacturers(tt.text))
		})
	}
}

func TestManufacturers_CappedAtTwo(t *testing.T) {
	t.Parallel()

	got := Manufacturers("Made by Alpha Labs distributed by Beta Pharma marketed by Gamma Inc")
	assert.Len(t, got, 2)
	assert.Equal(t, "Alpha Labs", got[0])
}
