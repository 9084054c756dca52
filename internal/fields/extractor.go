package fields

import (
	"regexp"
	"strings"
)

// Handwritten license forms are transcribed inconsistently, so each field is
// matched by an ordered list of patterns: the first pattern that hits wins
// and the rest are not tried. A matched field scores base + 0.1; the sum is
// deliberately not re-clamped to [0,1].
const matchBonus = 0.1

// License/application number, highest-specificity first.
var licenseRules = []*regexp.Regexp{
	regexp.MustCompile(`(?i)application\s*no\.?\s*([a-z0-9\-]+)`),
	regexp.MustCompile(`(?i)license\s*(?:no\.|number)\s*[:#]?\s*([a-z0-9\-]+)`),
	regexp.MustCompile(`(?i)no\.?\s*([0-9]+)`),
}

// Self-identification clauses: "I, <name>", "Miss <name>", "Mr. <name>",
// each terminated by a comma, " of", " desir..." or " do".
var nameRules = []*regexp.Regexp{
	regexp.MustCompile(`(?i)I[, ]+([A-Za-z\s]+?)(?:,|\sof|\sdesir|\sdo\b)`),
	regexp.MustCompile(`(?i)Miss\s+([A-Za-z\s]+?)(?:,|\sof|\sdo\b)`),
	regexp.MustCompile(`(?i)Mr\.?\s+([A-Za-z\s]+?)(?:,|\sof|\sdo\b)`),
}

type dateRule struct {
	re        *regexp.Regexp
	normalize func(groups []string) string
}

// Month words are carried through verbatim ("1950-June-01"): clerks wrote
// month names on these forms and downstream review expects them unconverted.
var dateRules = []dateRule{
	// "14th day of June, 1950" — day may be absent, defaults to 01
	{
		re: regexp.MustCompile(`(?i)day\s+of\s+([A-Za-z]+),?\s+(\d{1,2})?,?\s*(\d{4})`),
		normalize: func(g []string) string {
			day := g[2]
			if day == "" {
				day = "01"
			}
			return g[3] + "-" + g[1] + "-" + pad2(day)
		},
	},
	// 06/15/1950, 06-15-1950, 06.15.1950
	{
		re: regexp.MustCompile(`(\d{1,2})[-/.](\d{1,2})[-/.](\d{4})`),
		normalize: func(g []string) string {
			return g[3] + "-" + pad2(g[1]) + "-" + pad2(g[2])
		},
	},
	// 1950-06-15
	{
		re: regexp.MustCompile(`(\d{4})[-/.](\d{1,2})[-/.](\d{1,2})`),
		normalize: func(g []string) string {
			return g[1] + "-" + pad2(g[2]) + "-" + pad2(g[3])
		},
	},
	// "June 15, 1950"
	{
		re: regexp.MustCompile(`(?i)([A-Za-z]+)\s+(\d{1,2}),?\s*(\d{4})`),
		normalize: func(g []string) string {
			return g[3] + "-" + pad2(g[1]) + "-" + pad2(g[2])
		},
	},
}

// pad2 left-pads a token to two characters; month words pass through.
func pad2(s string) string {
	if len(s) == 1 {
		return "0" + s
	}
	return s
}

// Extract pulls the four structured fields out of transcribed text.
// Pure and deterministic: identical inputs yield identical outputs.
func Extract(text string, baseConfidence float32) Fields {
	f := Fields{}
	f.LicenseNumber = extractLicenseNumber(text, baseConfidence)
	f.NameSpouse1, f.NameSpouse2 = extractNames(text, baseConfidence)
	f.MarriageDate = extractDate(text, baseConfidence)
	return f
}

func extractLicenseNumber(text string, base float32) FieldValue {
	for _, re := range licenseRules {
		if m := re.FindStringSubmatch(text); m != nil {
			return FieldValue{Value: strings.TrimSpace(m[1]), Confidence: base + matchBonus}
		}
	}
	return FieldValue{}
}

// extractNames collects every candidate across all three patterns in
// pattern-then-match order, deduplicates preserving order, and fills the
// two spouse slots from the first two distinct candidates.
func extractNames(text string, base float32) (FieldValue, FieldValue) {
	var names []string
	for _, re := range nameRules {
		for _, m := range re.FindAllStringSubmatch(text, -1) {
			name := strings.TrimSpace(m[1])
			if len(name) <= 2 {
				continue
			}
			if !containsString(names, name) {
				names = append(names, name)
			}
		}
	}

	var spouse1, spouse2 FieldValue
	if len(names) >= 1 {
		spouse1 = FieldValue{Value: names[0], Confidence: base + matchBonus}
	}
	if len(names) >= 2 {
		spouse2 = FieldValue{Value: names[1], Confidence: base + matchBonus}
	}
	return spouse1, spouse2
}

func extractDate(text string, base float32) FieldValue {
	for _, rule := range dateRules {
		if m := rule.re.FindStringSubmatch(text); m != nil {
			return FieldValue{Value: rule.normalize(m), Confidence: base + matchBonus}
		}
	}
	return FieldValue{}
}

func containsString(ss []string, s string) bool {
	for _, v := range ss {
		if v == s {
			return true
		}
	}
	return false
}
