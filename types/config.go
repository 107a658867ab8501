package types

import (
	"hpoannotqc.org/hpoa/logger"
	"fmt"
	"gopkg.in/yaml.v3"
	"os"
	"time"
)

// CanonicalDateLayout is the only date form written to biocuration stamps.
const CanonicalDateLayout = "2006-01-02"

type ModifierPattern struct {
	// Pattern is a case-insensitive regular expression matched against the description column.
	Pattern string `yaml:"pattern" json:"pattern"`
	TermID  string `yaml:"term_id" json:"term_id"`
}

// QCTables are the fixed lookup tables behind the small file QC rules.
type QCTables struct {
	EvidenceCodes    []string          `yaml:"evidence_codes" json:"evidence_codes"`
	DateLayouts      []string          `yaml:"date_layouts" json:"date_layouts"`
	ModifierPatterns []ModifierPattern `yaml:"modifier_patterns" json:"modifier_patterns"`
	FrequencyWords   map[string]string `yaml:"frequency_words" json:"frequency_words"`
	DefaultCurator   string            `yaml:"default_curator" json:"default_curator"`
}

func DefaultQCTables() QCTables {
	return QCTables{
		EvidenceCodes: []string{EvidenceIEA, EvidencePCS, EvidenceTAS},
		DateLayouts: []string{
			CanonicalDateLayout,
			"2006-01-02 15:04:05",
			"2006-01-02T15:04:05",
			time.RFC3339,
			"2006-1-2",
			"02.01.2006",
			"2.1.2006",
			"2006.01.02",
			"2006/01/02",
			"Jan 2, 2006",
			"Jan 2 2006",
			"January 2, 2006",
			"2 Jan 2006",
			"02-Jan-2006",
		},
		ModifierPatterns: []ModifierPattern{
			{Pattern: `\bmild\b`, TermID: "HP:0012825"},
			{Pattern: `\bmoderate\b`, TermID: "HP:0012826"},
			{Pattern: `\bborderline\b`, TermID: "HP:0012827"},
			{Pattern: `\bsevere\b`, TermID: "HP:0012828"},
			{Pattern: `\bprofound\b`, TermID: "HP:0012829"},
			{Pattern: `\bnon-?progressive\b`, TermID: "HP:0003680"},
			{Pattern: `(?:^|[^-\w])progressive\b`, TermID: "HP:0003676"},
			{Pattern: `\bepisodic\b`, TermID: "HP:0025303"},
			{Pattern: `\brecurrent\b`, TermID: "HP:0031796"},
			{Pattern: `\bbilateral\b`, TermID: "HP:0012832"},
			{Pattern: `\bunilateral\b`, TermID: "HP:0012833"},
			{Pattern: `\bgeneralized\b`, TermID: "HP:0012837"},
			{Pattern: `\blocalized\b`, TermID: "HP:0012838"},
		},
		FrequencyWords: map[string]string{
			"obligate":      "HP:0040280",
			"always":        "HP:0040280",
			"hallmark":      "HP:0040281",
			"very frequent": "HP:0040281",
			"typical":       "HP:0040282",
			"common":        "HP:0040282",
			"frequent":      "HP:0040282",
			"variable":      "HP:0040283",
			"occasional":    "HP:0040283",
			"rare":          "HP:0040284",
			"very rare":     "HP:0040284",
			"excluded":      "HP:0040285",
		},
		DefaultCurator: "HPO",
	}
}

// LoadQCTables reads yaml overrides on top of the defaults. Lists present in the
// file replace the defaults, frequency words are merged.
func LoadQCTables(path string) (QCTables, error) {
	tables := DefaultQCTables()
	if path == "" {
		return tables, nil
	}
	tablesLogger := logger.NewLogger("LoadQCTables")
	buf, err := os.ReadFile(path)
	if err != nil {
		return tables, fmt.Errorf("reading QC tables %s: %w", path, err)
	}
	if err := yaml.Unmarshal(buf, &tables); err != nil {
		return tables, fmt.Errorf("parsing QC tables %s: %w", path, err)
	}
	if len(tables.EvidenceCodes) == 0 || len(tables.DateLayouts) == 0 {
		return tables, fmt.Errorf("QC tables %s: evidence codes and date layouts must not be empty", path)
	}
	tablesLogger.Info().
		Str("path", path).
		Int("date_layouts", len(tables.DateLayouts)).
		Int("modifier_patterns", len(tables.ModifierPatterns)).
		Int("frequency_words", len(tables.FrequencyWords)).
		Msg("Loaded QC tables")
	return tables, nil
}
