package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", ""},
		{"plain text unchanged", "PARACETAMOL 500mg", "PARACETAMOL 500mg"},
		{"colon stripped before value", "Batch: PCT2023002", "Batch PCT2023002"},
		{"whitespace runs collapse", "  PARACETAMOL\n\t500mg  ", "PARACETAMOL 500mg"},
		{"safe punctuation survives", "Exp. 12/2025 LOT-44", "Exp. 12/2025 LOT-44"},
		{"noise characters dropped", "Exp: 12/2025!", "Exp 12/2025"},
		{"full-width digits fold to ascii", "５００mg", "500mg"},
		{"ligatures fold to ascii", "ﬁne print", "fine print"},
		{"non-ascii letters dropped", "Café", "Caf"},
		{"only noise", "★→✓", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, Normalize(tt.in))
		})
	}
}

func TestNormalize_NoEdgeSpaces(t *testing.T) {
	t.Parallel()

	got := Normalize("  :: Batch 12345 :: ")
	assert.Equal(t, "Batch 12345", got)
}
