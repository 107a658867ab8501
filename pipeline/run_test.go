package pipeline

import (
	"hpoannotqc.org/hpoa/bigfile"
	"hpoannotqc.org/hpoa/smallfile"
	"hpoannotqc.org/hpoa/types"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

const (
	testOBO      = "../ontology/testdata/hp.obo"
	testOrphanet = "../orphanet/testdata/orphanet.xml"
)

func fixedNow() time.Time {
	return time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
}

func smallFileLine(values map[int]string) string {
	fields := make([]string, smallfile.NumColumns)
	for col, v := range values {
		fields[col] = v
	}
	return strings.Join(fields, "\t")
}

func writeFile(t *testing.T, path string, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

// smallFileDir lays out a directory with two usable small files, one omitted
// file and one with a broken header.
func smallFileDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	header := "#" + smallfile.Header() + "\n"
	writeFile(t, filepath.Join(dir, smallfile.OmitListFileName), "#DiseaseId\tReason\nOMIM:107850\ttrait\n")
	writeFile(t, filepath.Join(dir, "OMIM-154700.tab"), header+smallFileLine(map[int]string{
		smallfile.ColDiseaseID:     "OMIM:154700",
		smallfile.ColDiseaseName:   "MARFAN SYNDROME",
		smallfile.ColPhenotypeID:   "HP:0004872",
		smallfile.ColPhenotypeName: "Incisional hernia",
		smallfile.ColOnsetID:       "HP:0040283",
		smallfile.ColOnsetName:     "Occasional",
		smallfile.ColEvidenceID:    "IEA",
		smallfile.ColPublication:   "OMIM:154700",
		smallfile.ColAssignedBy:    "HPO:skoehler",
		smallfile.ColDateCreated:   "2015-07-26",
	})+"\n")
	writeFile(t, filepath.Join(dir, "OMIM-101850.tab"), header+smallFileLine(map[int]string{
		smallfile.ColDiseaseID:     "OMIM:101850",
		smallfile.ColDiseaseName:   "PALMOPLANTAR KERATODERMA",
		smallfile.ColPhenotypeID:   "HP:0001072",
		smallfile.ColPhenotypeName: "Hyperkeratosis",
		smallfile.ColEvidenceID:    "PCS",
		smallfile.ColPublication:   "pmid:9000",
		smallfile.ColAssignedBy:    "HPO:probinson",
		smallfile.ColDateCreated:   "26.07.2015",
	})+"\n")
	writeFile(t, filepath.Join(dir, "OMIM-107850.tab"), header)
	writeFile(t, filepath.Join(dir, "OMIM-200000.tab"), "Disease ID\n")
	return dir
}

func TestRun(t *testing.T) {
	dir := smallFileDir(t)
	output := filepath.Join(t.TempDir(), "phenotype.hpoa")
	result, err := Run(Params{
		HPOPath:      testOBO,
		SmallFileDir: dir,
		OrphanetPath: testOrphanet,
		OutputPath:   output,
		Now:          fixedNow,
	})
	require.NoError(t, err)

	rep := result.Report
	require.Equal(t, 4, rep.FilesFound)
	require.Equal(t, 2, rep.FilesParsed)
	require.Equal(t, 1, rep.FilesFailed)
	require.Equal(t, 1, rep.FilesOmitted)
	require.Equal(t, 2, rep.Annotations)
	require.Equal(t, map[types.QCCode]int{
		types.UpdatingAltID:                1,
		types.UpdatedDateFormat:            1,
		types.PublicationPrefixInLowerCase: 1,
	}, rep.QCCounts)
	require.True(t, rep.OrphanetIncluded)
	require.Equal(t, 3, rep.OrphanetDisorders)
	require.Equal(t, 1, rep.OrphanetSkipped)
	require.Equal(t, &bigfile.Stats{
		Diseases:      5,
		Annotations:   8,
		SmallFileRows: 2,
		OrphanetRows:  6,
	}, rep.BigFile)
	require.Len(t, rep.Errors, 1)

	content, err := os.ReadFile(output)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSuffix(string(content), "\n"), "\n")
	require.Len(t, lines, 10)
	require.Equal(t, bigfile.Header, lines[0])
	require.Equal(t, "#HPO-version:hp/releases/2018-03-08\tdate:2024-01-02\tdiseases:5\tannotations:8", lines[1])
	require.Equal(t, "OMIM:101850\tPALMOPLANTAR KERATODERMA\t\tHP:0000962\tPMID:9000\tPCS\t\t\t\t\tP\tHPO:probinson[2015-07-26]", lines[2])
	require.Equal(t, "OMIM:154700\tMARFAN SYNDROME\t\tHP:0004872\tOMIM:154700\tIEA\tHP:0040283\t\t\t\tP\tHPO:skoehler[2015-07-26]", lines[3])
	require.True(t, strings.HasPrefix(lines[4], "ORPHA:2\t"))
	require.Equal(t, "ORPHA:58\tAlexander disease\t\tHP:0001250\tORPHA:58\tTAS\t\tHP:0040281\t\t\tP\tORPHA:orphadata[2018-03-01]", lines[5])
	require.Len(t, result.Rows, 8)
}

func TestRunIsDeterministic(t *testing.T) {
	dir := smallFileDir(t)
	outDir := t.TempDir()
	var outputs []string
	for _, name := range []string{"first.hpoa", "second.hpoa"} {
		_, err := Run(Params{
			HPOPath:      testOBO,
			SmallFileDir: dir,
			OutputPath:   filepath.Join(outDir, name),
			Now:          fixedNow,
		})
		require.NoError(t, err)
		content, err := os.ReadFile(filepath.Join(outDir, name))
		require.NoError(t, err)
		outputs = append(outputs, string(content))
	}
	require.Equal(t, outputs[0], outputs[1])
}

func TestRunQCOnly(t *testing.T) {
	result, err := Run(Params{HPOPath: testOBO, SmallFileDir: smallFileDir(t), QCOnly: true})
	require.NoError(t, err)
	require.Nil(t, result.Report.BigFile)
	require.Empty(t, result.Rows)
	require.Equal(t, 2, result.Report.Annotations)
}

func TestRunOrphanetPolicy(t *testing.T) {
	dir := smallFileDir(t)
	broken := filepath.Join(t.TempDir(), "broken.xml")
	writeFile(t, broken, "<JDBOR><DisorderList><Disorder>")

	output := filepath.Join(t.TempDir(), "phenotype.hpoa")
	_, err := Run(Params{
		HPOPath:      testOBO,
		SmallFileDir: dir,
		OrphanetPath: broken,
		OutputPath:   output,
	})
	require.True(t, errors.Is(err, types.ErrOrphanetParse))
	_, statErr := os.Stat(output)
	require.True(t, os.IsNotExist(statErr), "aborted runs write nothing")

	result, err := Run(Params{
		HPOPath:        testOBO,
		SmallFileDir:   dir,
		OrphanetPath:   broken,
		OutputPath:     output,
		OrphanetPolicy: OrphanetSkip,
	})
	require.NoError(t, err)
	require.False(t, result.Report.OrphanetIncluded)
	require.Equal(t, 2, result.Report.BigFile.Annotations)
	require.Len(t, result.Report.Errors, 2)
}

func TestRunConfigurationErrors(t *testing.T) {
	dir := smallFileDir(t)
	output := filepath.Join(t.TempDir(), "phenotype.hpoa")
	for name, params := range map[string]Params{
		"no ontology":       {SmallFileDir: dir, OutputPath: output},
		"missing ontology":  {HPOPath: "missing.obo", SmallFileDir: dir, OutputPath: output},
		"no small files":    {HPOPath: testOBO, OutputPath: output},
		"missing directory": {HPOPath: testOBO, SmallFileDir: filepath.Join(dir, "missing"), OutputPath: output},
		"file as directory": {HPOPath: testOBO, SmallFileDir: testOBO, OutputPath: output},
		"bad policy":        {HPOPath: testOBO, SmallFileDir: dir, OutputPath: output, OrphanetPolicy: "ignore"},
		"no output":         {HPOPath: testOBO, SmallFileDir: dir},
		"bad tables":        {HPOPath: testOBO, SmallFileDir: dir, OutputPath: output, QCTablesPath: "missing.yaml"},
	} {
		_, err := Run(params)
		require.True(t, errors.Is(err, types.ErrConfiguration), name)
	}
	_, statErr := os.Stat(output)
	require.True(t, os.IsNotExist(statErr))
}
