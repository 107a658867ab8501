package smallfile

import (
	"hpoannotqc.org/hpoa/ontology"
	"hpoannotqc.org/hpoa/types"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

const testOBO = "../ontology/testdata/hp.obo"

// row is one small file line keyed by column.
type row map[int]string

func (r row) with(col int, value string) row {
	next := make(row, len(r)+1)
	for k, v := range r {
		next[k] = v
	}
	next[col] = value
	return next
}

func (r row) line(width int) string {
	fields := make([]string, width)
	for col, value := range r {
		fields[col] = value
	}
	return strings.Join(fields, "\t")
}

func marfanRow() row {
	return row{
		ColDiseaseID:     "OMIM:154700",
		ColDiseaseName:   "MARFAN SYNDROME",
		ColPhenotypeID:   "HP:0004872",
		ColPhenotypeName: "Incisional hernia",
		ColOnsetID:       "HP:0040283",
		ColOnsetName:     "Occasional",
		ColEvidenceID:    "IEA",
		ColPublication:   "OMIM:154700",
		ColAssignedBy:    "HPO:skoehler",
		ColDateCreated:   "2015-07-26",
	}
}

func smallFileContent(rows ...row) string {
	lines := []string{"#" + Header()}
	for _, r := range rows {
		lines = append(lines, r.line(int(NumColumns)))
	}
	return strings.Join(lines, "\n") + "\n"
}

func writeSmallFile(t *testing.T, dir string, name string, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func loadTestOntology(t *testing.T) *ontology.Ontology {
	t.Helper()
	ont, err := ontology.Load(testOBO, "")
	require.NoError(t, err)
	return ont
}

func newTestParser(t *testing.T) *Parser {
	t.Helper()
	parser, err := NewParser(loadTestOntology(t), types.DefaultQCTables())
	require.NoError(t, err)
	return parser
}

func parseRows(t *testing.T, parser *Parser, name string, rows ...row) *types.SmallFile {
	t.Helper()
	sf, err := parser.ParseReader(strings.NewReader(smallFileContent(rows...)), name)
	require.NoError(t, err)
	return sf
}
