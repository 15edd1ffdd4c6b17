package extract

import (
	"regexp"
	"strings"
)

// Each field runs its own ordered list of pattern passes over the normalized
// text. Passes are pure functions: no network, no state, independently
// testable. Earlier passes rank higher when capping candidates.

const (
	maxBatchCandidates        = 3
	maxManufacturerCandidates = 2
)

// --- batch numbers ---

var batchPatterns = []*regexp.Regexp{
	// Explicit "batch"/"lot"/"no." labels; the colon is gone after
	// normalization, so the separator is optional.
	regexp.MustCompile(`(?i)\b(?:batch|lot|no)\.?\s*[#]?\s*([A-Za-z0-9][A-Za-z0-9-]{3,19})\b`),
	// Letter-prefixed alphanumeric codes: 2-10 letters, 2-8 digits, optional
	// trailing alphanumerics.
	regexp.MustCompile(`\b([A-Za-z]{2,10}\d{2,8}[A-Za-z0-9]*)\b`),
	// Pure digit runs of plausible batch length.
	regexp.MustCompile(`\b(\d{6,10})\b`),
}

var yearPattern = regexp.MustCompile(`^(?:19|20)\d{2}$`)
var digitsOnly = regexp.MustCompile(`^\d+$`)

// rejectBatch filters out candidates more likely to be years, phone numbers
// or stray digit runs than batch codes.
func rejectBatch(candidate string) bool {
	if yearPattern.MatchString(candidate) {
		return true
	}
	if digitsOnly.MatchString(candidate) {
		if len(candidate) <= 5 || len(candidate) >= 10 {
			return true
		}
	}
	return false
}

// BatchNumbers extracts up to three batch number candidates in pass order,
// deduplicated by uppercased value.
func BatchNumbers(text string) []string {
	var out []string
	seen := make(map[string]bool)
	for _, re := range batchPatterns {
		for _, m := range re.FindAllStringSubmatch(text, -1) {
			candidate := m[1]
			key := strings.ToUpper(candidate)
			if seen[key] || rejectBatch(candidate) {
				continue
			}
			seen[key] = true
			out = append(out, candidate)
			if len(out) >= maxBatchCandidates {
				return out
			}
		}
	}
	return out
}

// --- product names ---

var productPatterns = []*regexp.Regexp{
	// Capitalized words followed by a dosage unit, e.g. "PARACETAMOL 500mg".
	regexp.MustCompile(`\b([A-Z][A-Za-z]+(?:\s+[A-Z][A-Za-z]+)*\s+\d{1,4}\s?(?:mg|mcg|g|ml|iu|IU)\b)`),
	// Multi-word capitalized sequences.
	regexp.MustCompile(`\b([A-Z][A-Za-z]+(?:\s+[A-Z][A-Za-z]+)+)\b`),
	// Single long capitalized words as a last resort.
	regexp.MustCompile(`\b([A-Z][A-Za-z]{6,})\b`),
}

// productStopwords are generic pharmaceutical-form and label words that never
// name a product, plus corporate suffixes that mark a manufacturer instead.
var productStopwords = map[string]bool{
	"batch": true, "tablet": true, "tablets": true, "capsule": true,
	"capsules": true, "syrup": true, "cream": true, "expiry": true,
	"manufactured": true, "lot": true, "exp": true, "ointment": true,
	"injection": true, "suspension": true, "store": true, "keep": true,
	"ltd": true, "plc": true, "inc": true, "corp": true, "labs": true,
	"pharma": true, "co": true,
}

func containsStopword(candidate string) bool {
	for _, word := range strings.Fields(strings.ToLower(candidate)) {
		if productStopwords[strings.TrimSuffix(word, ".")] {
			return true
		}
	}
	return false
}

// ProductNames extracts deduplicated product name candidates with the single
// longest candidate first. Longer strings are assumed more specific, so the
// longest is the primary name.
func ProductNames(text string) []string {
	var out []string
	seen := make(map[string]bool)
	for _, re := range productPatterns {
		for _, m := range re.FindAllStringSubmatch(text, -1) {
			candidate := strings.TrimSpace(m[1])
			key := strings.ToUpper(candidate)
			if seen[key] || containsStopword(candidate) {
				continue
			}
			seen[key] = true
			out = append(out, candidate)
		}
	}

	// Move the longest candidate to the front, keeping match order for the
	// rest.
	longest := -1
	for i, c := range out {
		if longest < 0 || len(c) > len(out[longest]) {
			longest = i
		}
	}
	if longest > 0 {
		primary := out[longest]
		out = append(out[:longest], out[longest+1:]...)
		out = append([]string{primary}, out...)
	}

	return out
}

// --- expiry date ---

var expiryPatterns = []*regexp.Regexp{
	// Labeled dates win: "exp", "expiry", "best before", "use by".
	regexp.MustCompile(`(?i)\b(?:exp(?:iry)?\.?(?:\s*date)?|best\s+before|use\s+by)\s*\.?\s*(\d{1,4}[/.-]\d{1,4}(?:[/.-]\d{1,4})?)\b`),
	// Bare D/M/Y-shaped tokens.
	regexp.MustCompile(`\b(\d{1,2}[/.-]\d{1,2}[/.-]\d{2,4})\b`),
	// Bare Y/M/D-shaped tokens and month/year forms.
	regexp.MustCompile(`\b(\d{4}[/.-]\d{1,2}(?:[/.-]\d{1,2})?)\b`),
	regexp.MustCompile(`\b(\d{1,2}[/.-]\d{4})\b`),
}

// ExpiryDate returns the first matching expiry date in pattern priority
// order. Only one date is retained; first match wins.
func ExpiryDate(text string) (string, bool) {
	for _, re := range expiryPatterns {
		if m := re.FindStringSubmatch(text); m != nil {
			return m[1], true
		}
	}
	return "", false
}

// --- manufacturer ---

var manufacturerPatterns = []*regexp.Regexp{
	// Anchored on a label; the name is a run of capitalized tokens.
	regexp.MustCompile(`\b(?i:manufactured\s+by|mfd\.?(?:\s+by)?|mfg\.?(?:\s+by)?|made\s+by)\s*\.?\s*([A-Z][A-Za-z0-9&.-]*(?:\s+[A-Z][A-Za-z0-9&.-]*){0,5})`),
	// Bare names ending in a corporate suffix.
	regexp.MustCompile(`\b([A-Z][A-Za-z&.-]+(?:\s+[A-Z][A-Za-z&.-]+){0,4}\s+(?:Ltd|PLC|Pharma|Labs|Inc|Corp|Co)\b\.?)`),
}

// Manufacturers extracts up to two manufacturer candidates, deduplicated by
// uppercased value.
func Manufacturers(text string) []string {
	var out []string
	seen := make(map[string]bool)
	for _, re := range manufacturerPatterns {
		for _, m := range re.FindAllStringSubmatch(text, -1) {
			candidate := strings.TrimSpace(m[1])
			key := strings.ToUpper(candidate)
			if seen[key] {
				continue
			}
			seen[key] = true
			out = append(out, candidate)
			if len(out) >= maxManufacturerCandidates {
				return out
			}
		}
	}
	return out
}
