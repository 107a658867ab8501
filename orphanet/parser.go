package orphanet

import (
	"hpoannotqc.org/hpoa/logger"
	"hpoannotqc.org/hpoa/ontology"
	"hpoannotqc.org/hpoa/types"
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"golang.org/x/text/encoding/charmap"
)

// frequencyNames maps the leading words of an HPOFrequency name, such as
// "Very frequent (99-80%)", to HPO frequency terms. Longer names come first.
var frequencyNames = []struct {
	prefix string
	termID string
}{
	{"obligate", "HP:0040280"},
	{"very frequent", "HP:0040281"},
	{"very rare", "HP:0040284"},
	{"frequent", "HP:0040282"},
	{"occasional", "HP:0040283"},
	{"excluded", "HP:0040285"},
}

const excludedTermID = "HP:0040285"

type xmlDisorder struct {
	OrphaNumber  string           `xml:"OrphaNumber"`
	Name         string           `xml:"Name"`
	Associations []xmlAssociation `xml:"HPODisorderAssociationList>HPODisorderAssociation"`
}

type xmlAssociation struct {
	HPOID         string `xml:"HPO>HPOId"`
	FrequencyName string `xml:"HPOFrequency>Name"`
}

// Result is what one Orphanet export contributes to the big file.
type Result struct {
	Disorders []types.OrphanetDisorder
	// Date is the export date as YYYY-MM-DD, empty when the document has none.
	Date               string
	SkippedAnnotations int
}

func (r *Result) NumberOfAnnotations() int {
	n := 0
	for _, d := range r.Disorders {
		n += len(d.Annotations)
	}
	return n
}

func ParseFile(path string, lookup ontology.Lookup) (*Result, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", types.ErrOrphanetParse, err)
	}
	defer file.Close()
	return Parse(file, lookup)
}

// Parse streams the Disorder elements of a JDBOR document. Annotations whose
// HPO id is unknown to lookup are skipped and counted.
func Parse(reader io.Reader, lookup ontology.Lookup) (*Result, error) {
	orphaLogger := logger.NewLogger("OrphanetParser")
	errLogger := orphaLogger.With().Caller().Logger()

	result := &Result{}
	decoder := xml.NewDecoder(reader)
	decoder.CharsetReader = charsetReader
	sawRoot := false
	for {
		token, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			errLogger.Error().Err(err).Msg("Malformed Orphanet XML")
			return nil, fmt.Errorf("%w: %v", types.ErrOrphanetParse, err)
		}
		start, ok := token.(xml.StartElement)
		if !ok {
			continue
		}
		switch start.Name.Local {
		case "JDBOR":
			sawRoot = true
			result.Date = exportDate(start.Attr)
		case "Disorder":
			var disorder xmlDisorder
			if err := decoder.DecodeElement(&disorder, &start); err != nil {
				errLogger.Error().Err(err).Msg("Could not decode disorder")
				return nil, fmt.Errorf("%w: %v", types.ErrOrphanetParse, err)
			}
			if d, ok := convert(disorder, lookup, result); ok {
				result.Disorders = append(result.Disorders, d)
			}
		}
	}
	if !sawRoot {
		return nil, fmt.Errorf("%w: no JDBOR root element", types.ErrOrphanetParse)
	}

	orphaLogger.Debug().
		Int("disorders", len(result.Disorders)).
		Int("annotations", result.NumberOfAnnotations()).
		Int("skipped", result.SkippedAnnotations).
		Msgf("Extracted %d disorders with %d annotations", len(result.Disorders), result.NumberOfAnnotations())
	return result, nil
}

func convert(disorder xmlDisorder, lookup ontology.Lookup, result *Result) (types.OrphanetDisorder, bool) {
	orphaNumber := strings.TrimSpace(disorder.OrphaNumber)
	if orphaNumber == "" {
		result.SkippedAnnotations += len(disorder.Associations)
		return types.OrphanetDisorder{}, false
	}
	d := types.OrphanetDisorder{
		OrphaNumber: orphaNumber,
		Name:        strings.TrimSpace(disorder.Name),
	}
	for _, assoc := range disorder.Associations {
		primary, ok := lookup.PrimaryID(strings.TrimSpace(assoc.HPOID))
		if !ok {
			result.SkippedAnnotations++
			continue
		}
		frequency := frequencyTerm(assoc.FrequencyName)
		annotation := types.OrphanetAnnotation{PhenotypeID: primary, Frequency: frequency}
		if frequency == excludedTermID {
			annotation.Frequency = ""
			annotation.Excluded = true
		}
		d.Annotations = append(d.Annotations, annotation)
	}
	return d, true
}

func frequencyTerm(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	for _, f := range frequencyNames {
		if strings.HasPrefix(name, f.prefix) {
			return f.termID
		}
	}
	return ""
}

func exportDate(attrs []xml.Attr) string {
	for _, attr := range attrs {
		if attr.Name.Local != "date" || len(attr.Value) < len(types.CanonicalDateLayout) {
			continue
		}
		date := attr.Value[:len(types.CanonicalDateLayout)]
		if _, err := time.Parse(types.CanonicalDateLayout, date); err == nil {
			return date
		}
	}
	return ""
}

// Orphadata exports declare ISO-8859-1.
func charsetReader(label string, input io.Reader) (io.Reader, error) {
	switch strings.ToLower(label) {
	case "utf-8", "utf8":
		return input, nil
	case "iso-8859-1", "iso8859-1", "latin1", "latin-1":
		return charmap.ISO8859_1.NewDecoder().Reader(input), nil
	}
	return nil, fmt.Errorf("unsupported charset %q", label)
}
