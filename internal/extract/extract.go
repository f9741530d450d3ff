// Package extract pulls envelope identifiers and access codes out of
// free-form notification text, such as forwarded signing emails.
//
// Extraction is best effort: every rule runs, results are unioned in
// first-match order, and absence of a match is never an error. Callers
// receive candidate lists and decide which candidate to act on.
package extract

import (
	"regexp"
	"strings"
)

// Rule is a named extraction pattern. The first capture group holds the
// candidate value.
type Rule struct {
	Name    string
	Pattern *regexp.Regexp
}

// Stopwords are label words that the looser patterns can capture from
// surrounding prose. Candidates matching one are discarded,
// case-insensitively.
var Stopwords = []string{"ACCESS", "CODE", "DOCUSIGN", "PLEASE", "DOCUMENT", "SIGNING"}

const uuidPattern = `[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}`

// EnvelopeRules are ordered most specific first. Rule order determines
// candidate order when multiple rules match different values.
var EnvelopeRules = []Rule{
	{Name: "labeled envelope", Pattern: regexp.MustCompile(`(?i)envelope[\s#]*(?:id)?[:\s#]+(` + uuidPattern + `)`)},
	{Name: "bare uuid", Pattern: regexp.MustCompile(`\b(` + uuidPattern + `)\b`)},
}

// AccessCodeRules mirror EnvelopeRules for access codes. Codes are 4 to 8
// alphanumeric characters. Each labeled rule tolerates an optional "is"
// before the separator so phrasings like "Your access code is: ZX9Q7A"
// still match.
var AccessCodeRules = []Rule{
	{Name: "access code", Pattern: regexp.MustCompile(`(?i)access\s+code(?:\s+is)?[:\s]+([A-Za-z0-9]{4,8})\b`)},
	{Name: "security code", Pattern: regexp.MustCompile(`(?i)security\s+code(?:\s+is)?[:\s]+([A-Za-z0-9]{4,8})\b`)},
	{Name: "bare code", Pattern: regexp.MustCompile(`(?i)\bcode(?:\s+is)?[:\s]+([A-Za-z0-9]{4,8})\b`)},
	{Name: "possessive code", Pattern: regexp.MustCompile(`(?i)your\s[\w\s]*?code(?:\s+is)?[:\s]+([A-Za-z0-9]{4,8})\b`)},
}

// Result holds candidate values found in a piece of text. Both slices are
// deduplicated with first-match order preserved, so taking the first
// element is a deterministic policy. Empty slices mean nothing was found.
type Result struct {
	EnvelopeIDs []string
	AccessCodes []string
}

// Extract runs every envelope and access-code rule over text.
func Extract(text string) Result {
	return Result{
		EnvelopeIDs: EnvelopeIDs(text),
		AccessCodes: AccessCodes(text),
	}
}

// EnvelopeIDs returns envelope identifier candidates, normalized to
// lowercase.
func EnvelopeIDs(text string) []string {
	out := []string{}
	seen := make(map[string]bool)
	for _, rule := range EnvelopeRules {
		for _, match := range rule.Pattern.FindAllStringSubmatch(text, -1) {
			id := strings.ToLower(match[1])
			if seen[id] {
				continue
			}
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}

// AccessCodes returns access code candidates with their original casing,
// filtered against Stopwords.
func AccessCodes(text string) []string {
	out := []string{}
	seen := make(map[string]bool)
	for _, rule := range AccessCodeRules {
		for _, match := range rule.Pattern.FindAllStringSubmatch(text, -1) {
			code := match[1]
			if isStopword(code) {
				continue
			}
			if seen[code] {
				continue
			}
			seen[code] = true
			out = append(out, code)
		}
	}
	return out
}

func isStopword(candidate string) bool {
	upper := strings.ToUpper(candidate)
	for _, word := range Stopwords {
		if upper == word {
			return true
		}
	}
	return false
}
