package smallfile

import (
	"hpoannotqc.org/hpoa/types"
	"fmt"
	"strings"
)

const (
	ColDiseaseID = iota
	ColDiseaseName
	ColGeneID
	ColGeneName
	ColGenotype
	ColGeneSymbols
	ColPhenotypeID
	ColPhenotypeName
	ColOnsetID
	ColOnsetName
	ColEvidenceID
	ColEvidenceName
	ColFrequency
	ColSexID
	ColSexName
	ColNegationID
	ColNegationName
	ColDescription
	ColPublication
	ColAssignedBy
	ColDateCreated
	NumColumns
)

var HeaderFields = [NumColumns]string{
	"Disease ID", "Disease Name", "Gene ID", "Gene Name",
	"Genotype", "Gene Symbol(s)", "Phenotype ID", "Phenotype Name", "Age of Onset ID",
	"Age of Onset Name", "Evidence ID", "Evidence Name", "Frequency", "Sex ID",
	"Sex Name", "Negation ID", "Negation Name", "Description",
	"Pub", "Assigned by", "Date Created",
}

// EQFields are legacy entity/quality columns that may trail the fixed columns.
var EQFields = []string{
	"Entity ID", "Entity Name", "Quality ID", "Quality Name",
	"Add'l Entity ID", "Add'l Entity Name", "Abnormal ID", "Abnormal Name", "Orthologs",
}

var geneColumns = []int{ColGeneID, ColGeneName, ColGenotype, ColGeneSymbols}

func Header() string {
	return strings.Join(HeaderFields[:], "\t")
}

// schema is the column layout found in one file's header.
type schema struct {
	width     int
	eqColumns []int
}

func parseHeader(line string) (schema, error) {
	line = strings.TrimPrefix(strings.TrimRight(line, "\r"), "#")
	fields := trimTrailingEmpty(strings.Split(line, "\t"))
	if len(fields) < int(NumColumns) {
		return schema{}, fmt.Errorf("%w: expected at least %d columns, got %d",
			types.ErrIncompatibleHeader, NumColumns, len(fields))
	}
	for i, expected := range HeaderFields {
		if !strings.EqualFold(strings.TrimSpace(fields[i]), expected) {
			return schema{}, fmt.Errorf("%w: column %d is %q, expected %q",
				types.ErrIncompatibleHeader, i+1, fields[i], expected)
		}
	}
	s := schema{width: len(fields)}
	for i := int(NumColumns); i < len(fields); i++ {
		name := strings.TrimSpace(fields[i])
		if !isEQField(name) {
			return schema{}, fmt.Errorf("%w: unexpected column %q", types.ErrIncompatibleHeader, name)
		}
		s.eqColumns = append(s.eqColumns, i)
	}
	return s, nil
}

// trimTrailingEmpty drops blank fields left by trailing tabs.
func trimTrailingEmpty(fields []string) []string {
	for len(fields) > 0 && strings.TrimSpace(fields[len(fields)-1]) == "" {
		fields = fields[:len(fields)-1]
	}
	return fields
}

func isEQField(name string) bool {
	for _, eq := range EQFields {
		if strings.EqualFold(name, eq) {
			return true
		}
	}
	return false
}

func anyPopulated(fields []string, columns []int) bool {
	for _, col := range columns {
		if col < len(fields) && strings.TrimSpace(fields[col]) != "" {
			return true
		}
	}
	return false
}
