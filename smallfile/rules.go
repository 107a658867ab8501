package smallfile

import (
	"hpoannotqc.org/hpoa/types"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode"
)

var (
	hpoTermPattern      = regexp.MustCompile(`^HP:\d{7}$`)
	ratioPattern        = regexp.MustCompile(`^(\d+)\s*/\s*(\d+)$`)
	percentPattern      = regexp.MustCompile(`^(\d+(?:\.\d+)?)\s*%$`)
	bareDatabasePattern = regexp.MustCompile(`^[A-Za-z]+:?$`)
)

type modifierRule struct {
	pattern *regexp.Regexp
	termID  string
}

// rules are the compiled QC tables.
type rules struct {
	evidence       map[string]bool
	dateLayouts    []string
	modifiers      []modifierRule
	frequencyWords map[string]string
	defaultCurator string
}

func compileRules(tables types.QCTables) (*rules, error) {
	r := &rules{
		evidence:       make(map[string]bool, len(tables.EvidenceCodes)),
		dateLayouts:    tables.DateLayouts,
		frequencyWords: make(map[string]string, len(tables.FrequencyWords)),
		defaultCurator: tables.DefaultCurator,
	}
	for _, code := range tables.EvidenceCodes {
		r.evidence[strings.ToUpper(strings.TrimSpace(code))] = true
	}
	for _, mp := range tables.ModifierPatterns {
		re, err := regexp.Compile("(?i)" + mp.Pattern)
		if err != nil {
			return nil, fmt.Errorf("modifier pattern %q: %w", mp.Pattern, err)
		}
		r.modifiers = append(r.modifiers, modifierRule{pattern: re, termID: mp.TermID})
	}
	for word, termID := range tables.FrequencyWords {
		r.frequencyWords[normalizeWords(word)] = termID
	}
	return r, nil
}

func normalizeWords(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

func splitList(value string) []string {
	var items []string
	for _, item := range strings.Split(value, ";") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}

func (r *rules) validEvidence(code string) (string, bool) {
	code = strings.ToUpper(strings.TrimSpace(code))
	return code, r.evidence[code]
}

// canonicalDate parses raw with the canonical layout first and then with the
// legacy layouts in table order.
func (r *rules) canonicalDate(raw string) (date string, changed bool, err error) {
	raw = strings.TrimSpace(raw)
	if t, err := time.Parse(types.CanonicalDateLayout, raw); err == nil {
		iso := t.Format(types.CanonicalDateLayout)
		return iso, iso != raw, nil
	}
	for _, layout := range r.dateLayouts {
		t, err := time.Parse(layout, raw)
		if err != nil {
			continue
		}
		return t.Format(types.CanonicalDateLayout), true, nil
	}
	return "", false, fmt.Errorf("date %q matches no known layout", raw)
}

// biocuration pairs ";"-separated curators and dates into "curator[YYYY-MM-DD]"
// stamps. A missing or unparseable date leaves the brackets empty.
func (r *rules) biocuration(assignedBy string, dateCreated string, tally map[types.QCCode]int) string {
	curators := splitList(assignedBy)
	if len(curators) == 0 {
		curators = []string{r.defaultCurator}
	}
	rawDates := splitList(dateCreated)
	if len(rawDates) == 0 {
		tally[types.NoDateCreated]++
	}
	dates := make([]string, len(rawDates))
	changed, unparseable := false, false
	for i, raw := range rawDates {
		date, rewritten, err := r.canonicalDate(raw)
		if err != nil {
			unparseable = true
			continue
		}
		dates[i] = date
		changed = changed || rewritten
	}
	if changed {
		tally[types.UpdatedDateFormat]++
	}
	if unparseable {
		tally[types.UnparseableDate]++
	}

	n := max(len(curators), len(dates))
	stamps := make([]string, 0, n)
	for i := 0; i < n; i++ {
		curator := curators[min(i, len(curators)-1)]
		date := ""
		if len(dates) > 0 {
			date = dates[min(i, len(dates)-1)]
		}
		stamps = append(stamps, curator+"["+date+"]")
	}
	return strings.Join(stamps, ";")
}

func hasLower(s string) bool {
	for _, c := range s {
		if unicode.IsLower(c) {
			return true
		}
	}
	return false
}

// repairPublication fixes each ";"-separated reference of a row.
func repairPublication(raw string, diseaseID string, tally map[types.QCCode]int) string {
	_, diseaseLocal, _ := types.SplitCurie(diseaseID)
	var repaired []string
	lowerCase, missingID := false, false
	for _, ref := range splitList(raw) {
		if bareDatabasePattern.MatchString(ref) {
			db := strings.TrimSuffix(ref, types.CurieSeparator)
			lowerCase = lowerCase || hasLower(db)
			missingID = true
			repaired = append(repaired, strings.ToUpper(db)+types.CurieSeparator+diseaseLocal)
			continue
		}
		prefix, local, ok := types.SplitCurie(ref)
		if ok && !strings.HasPrefix(local, "//") {
			prefix = strings.TrimSpace(prefix)
			if hasLower(prefix) {
				lowerCase = true
				prefix = strings.ToUpper(prefix)
			}
			ref = prefix + types.CurieSeparator + strings.TrimSpace(local)
		}
		repaired = append(repaired, ref)
	}
	if lowerCase {
		tally[types.PublicationPrefixInLowerCase]++
	}
	if missingID {
		tally[types.CorrectedPublicationWithDatabaseButNoID]++
	}
	if len(repaired) == 0 {
		tally[types.ReplacedEmptyPublicationString]++
		return diseaseID
	}
	return strings.Join(repaired, ";")
}

// synthesizeModifiers returns the modifier term ids whose pattern matches the
// free text description, in table order.
func (r *rules) synthesizeModifiers(description string) []string {
	if strings.TrimSpace(description) == "" {
		return nil
	}
	var termIDs []string
	seen := make(map[string]bool)
	for _, rule := range r.modifiers {
		if seen[rule.termID] || !rule.pattern.MatchString(description) {
			continue
		}
		seen[rule.termID] = true
		termIDs = append(termIDs, rule.termID)
	}
	return termIDs
}

type frequencyKind int

const (
	frequencyEmpty frequencyKind = iota
	frequencyTerm
	frequencyRatio
	frequencyPercent
	frequencyWord
	frequencyMalformed
)

// classifyFrequency returns the normalized value. Terms and words still need to
// be checked against the ontology by the caller.
func (r *rules) classifyFrequency(raw string) (string, frequencyKind) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", frequencyEmpty
	}
	if hpoTermPattern.MatchString(strings.ToUpper(raw)) {
		return strings.ToUpper(raw), frequencyTerm
	}
	if m := ratioPattern.FindStringSubmatch(raw); m != nil {
		n, errN := strconv.Atoi(m[1])
		d, errD := strconv.Atoi(m[2])
		if errN == nil && errD == nil && d > 0 && n <= d {
			return m[1] + "/" + m[2], frequencyRatio
		}
		return "", frequencyMalformed
	}
	if m := percentPattern.FindStringSubmatch(raw); m != nil {
		p, err := strconv.ParseFloat(m[1], 64)
		if err == nil && p <= 100 {
			return m[1] + "%", frequencyPercent
		}
		return "", frequencyMalformed
	}
	if termID, ok := r.frequencyWords[normalizeWords(raw)]; ok {
		return termID, frequencyWord
	}
	return "", frequencyMalformed
}

func normalizeSex(sexID string, sexName string) string {
	for _, value := range []string{sexID, sexName} {
		switch strings.ToUpper(strings.TrimSpace(value)) {
		case types.SexMale:
			return types.SexMale
		case types.SexFemale:
			return types.SexFemale
		}
	}
	return ""
}

func isNegated(negationID string, negationName string) bool {
	return strings.EqualFold(strings.TrimSpace(negationID), types.QualifierNot) ||
		strings.EqualFold(strings.TrimSpace(negationName), types.QualifierNot)
}
