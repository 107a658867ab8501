package smallfile

import (
	"hpoannotqc.org/hpoa/logger"
	"hpoannotqc.org/hpoa/ontology"
	"hpoannotqc.org/hpoa/types"
	"hpoannotqc.org/hpoa/utils"
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
)

// Parser turns small files into normalized annotation entries. It is safe for
// concurrent use once created.
type Parser struct {
	ontology ontology.Lookup
	rules    *rules
	log      zerolog.Logger
}

type rejection struct {
	code   types.QCCode
	reason string
}

func reject(code types.QCCode, format string, args ...interface{}) *rejection {
	return &rejection{code: code, reason: fmt.Sprintf(format, args...)}
}

func NewParser(lookup ontology.Lookup, tables types.QCTables) (*Parser, error) {
	r, err := compileRules(tables)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", types.ErrConfiguration, err)
	}
	return &Parser{
		ontology: lookup,
		rules:    r,
		log:      logger.NewLogger("SmallFileParser"),
	}, nil
}

func (p *Parser) Parse(path string) (sf *types.SmallFile, err error) {
	defer utils.RecoverWithError(&err)

	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	return p.ParseReader(file, path)
}

// ParseReader parses one small file. The disease id comes from the file name
// when it follows the naming convention, otherwise from the first row.
func (p *Parser) ParseReader(reader io.Reader, path string) (*types.SmallFile, error) {
	diseaseID, _ := FilenameToCurie(path)
	sf := types.NewSmallFile(diseaseID, path)

	scanner := bufio.NewScanner(reader)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

	var (
		layout     schema
		headerSeen bool
		dataRows   int
		lineNo     int
		seen       = make(map[uint64]bool)
	)
	for scanner.Scan() {
		lineNo++
		line := strings.TrimRight(scanner.Text(), "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		if !headerSeen {
			s, err := parseHeader(line)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", path, err)
			}
			layout = s
			headerSeen = true
			continue
		}

		dataRows++
		entry, tally, rej := p.parseRow(strings.Split(line, "\t"), layout)
		if rej != nil {
			sf.Count(rej.code)
			p.log.Warn().
				Str("file", path).
				Int("line", lineNo).
				Str("qc", rej.code.Name()).
				Msg(rej.reason)
			continue
		}

		key := entryKey(entry)
		if seen[key] {
			sf.Count(types.DuplicateEntry)
			p.log.Debug().Str("file", path).Int("line", lineNo).Msg("duplicate entry dropped")
			continue
		}
		seen[key] = true

		if sf.DiseaseID == "" {
			sf.DiseaseID = entry.DiseaseID()
		}
		sf.Entries = append(sf.Entries, entry)
		sf.AddCounts(tally)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if !headerSeen {
		return nil, fmt.Errorf("%s: %w: missing header line", path, types.ErrIncompatibleHeader)
	}
	if dataRows == 0 {
		return nil, fmt.Errorf("%s: %w", path, types.ErrNoAnnotations)
	}
	return sf, nil
}

func entryKey(e types.AnnotationEntry) uint64 {
	return utils.HashFields(
		e.DiseaseID(), e.PhenotypeID(), e.Qualifier(), e.OnsetID(), e.Frequency(),
		e.Sex(), e.Modifier(), e.Evidence(), e.Publication(),
	)
}

// resolveTerm maps id to its primary id and current label, counting the
// corrections it makes.
func (p *Parser) resolveTerm(id string, label string, tally map[types.QCCode]int) (string, string, bool) {
	primary, ok := p.ontology.PrimaryID(id)
	if !ok {
		return "", "", false
	}
	if primary != id {
		tally[types.UpdatingAltID]++
	}
	current, _ := p.ontology.Label(primary)
	if label != "" && label != current {
		tally[types.UpdatingHPOLabel]++
	}
	return primary, current, true
}

// parseRow validates and normalizes one data row. Rejections are checked before
// any correction is counted so a rejected row contributes exactly one code.
func (p *Parser) parseRow(fields []string, layout schema) (types.AnnotationEntry, map[types.QCCode]int, *rejection) {
	var none types.AnnotationEntry
	fields = trimTrailingEmpty(fields)
	if len(fields) > layout.width {
		return none, nil, reject(types.MalformedLine, "row has %d fields, header has %d", len(fields), layout.width)
	}
	for len(fields) < layout.width {
		fields = append(fields, "")
	}
	for i := range fields {
		fields[i] = strings.TrimSpace(fields[i])
	}

	diseaseID := fields[ColDiseaseID]
	if !types.IsCurie(diseaseID) {
		return none, nil, reject(types.MalformedLine, "malformed disease id %q", diseaseID)
	}

	if anyPopulated(fields, geneColumns) {
		return none, nil, reject(types.GotGeneData, "row carries gene data")
	}
	if anyPopulated(fields, layout.eqColumns) {
		return none, nil, reject(types.GotEQItem, "row carries EQ items")
	}

	evidenceField := fields[ColEvidenceID]
	if evidenceField == "" {
		evidenceField = fields[ColEvidenceName]
	}
	evidence, ok := p.rules.validEvidence(evidenceField)
	if !ok {
		return none, nil, reject(types.DidNotFindEvidenceCode, "unknown evidence code %q", evidenceField)
	}

	phenotypeID := strings.ToUpper(fields[ColPhenotypeID])
	if !p.ontology.Contains(phenotypeID) {
		return none, nil, reject(types.TermNotFound, "phenotype %q not found", fields[ColPhenotypeID])
	}
	if _, err := p.ontology.AspectOf(phenotypeID); err != nil {
		return none, nil, reject(types.AspectUndetermined, "%v", err)
	}

	onsetID := strings.ToUpper(fields[ColOnsetID])
	if onsetID != "" && !p.ontology.Contains(onsetID) {
		return none, nil, reject(types.TermNotFound, "onset %q not found", fields[ColOnsetID])
	}

	tally := make(map[types.QCCode]int)

	phenotypeID, phenotypeName, _ := p.resolveTerm(phenotypeID, fields[ColPhenotypeName], tally)
	onsetName := ""
	if onsetID != "" {
		onsetID, onsetName, _ = p.resolveTerm(onsetID, fields[ColOnsetName], tally)
	}

	frequency := p.frequency(fields[ColFrequency], tally)
	modifier := p.modifiers(fields[ColDescription], tally)
	publication := repairPublication(fields[ColPublication], diseaseID, tally)
	biocuration := p.rules.biocuration(fields[ColAssignedBy], fields[ColDateCreated], tally)

	entry := types.NewAnnotationEntryBuilder(
		diseaseID,
		fields[ColDiseaseName],
		phenotypeID,
		phenotypeName,
		evidence,
		publication,
		biocuration,
	).
		Onset(onsetID, onsetName).
		Frequency(frequency).
		Sex(normalizeSex(fields[ColSexID], fields[ColSexName])).
		Modifier(modifier).
		Negated(isNegated(fields[ColNegationID], fields[ColNegationName])).
		Build()
	return entry, tally, nil
}

func (p *Parser) frequency(raw string, tally map[types.QCCode]int) string {
	value, kind := p.rules.classifyFrequency(raw)
	switch kind {
	case frequencyTerm:
		primary, ok := p.ontology.PrimaryID(value)
		if !ok {
			tally[types.MalformedFrequency]++
			return ""
		}
		if primary != value {
			tally[types.UpdatingAltID]++
		}
		return primary
	case frequencyWord:
		primary, ok := p.ontology.PrimaryID(value)
		if !ok {
			tally[types.MalformedFrequency]++
			return ""
		}
		tally[types.ConvertedFrequencyText]++
		return primary
	case frequencyMalformed:
		tally[types.MalformedFrequency]++
		return ""
	default:
		return value
	}
}

func (p *Parser) modifiers(description string, tally map[types.QCCode]int) string {
	var ids []string
	seen := make(map[string]bool)
	for _, termID := range p.rules.synthesizeModifiers(description) {
		primary, ok := p.ontology.PrimaryID(termID)
		if !ok || seen[primary] {
			continue
		}
		seen[primary] = true
		ids = append(ids, primary)
	}
	if len(ids) == 0 {
		return ""
	}
	tally[types.CreatedModifier]++
	return strings.Join(ids, ";")
}
