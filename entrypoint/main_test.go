package main

import (
	"hpoannotqc.org/hpoa/smallfile"
	"bytes"
	"database/sql"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"
)

func smallFileDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	fields := make([]string, smallfile.NumColumns)
	fields[smallfile.ColDiseaseID] = "OMIM:154700"
	fields[smallfile.ColDiseaseName] = "MARFAN SYNDROME"
	fields[smallfile.ColPhenotypeID] = "HP:0004872"
	fields[smallfile.ColPhenotypeName] = "Incisional hernia"
	fields[smallfile.ColEvidenceID] = "IEA"
	fields[smallfile.ColPublication] = "OMIM:154700"
	fields[smallfile.ColAssignedBy] = "HPO:skoehler"
	fields[smallfile.ColDateCreated] = "2015-07-26"
	content := "#" + smallfile.Header() + "\n" + strings.Join(fields, "\t") + "\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "OMIM-154700.tab"), []byte(content), 0o644))
	return dir
}

func execute(t *testing.T, config *Config, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCommand(config, &out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestBigFileCommand(t *testing.T) {
	outDir := t.TempDir()
	output := filepath.Join(outDir, "phenotype.hpoa")
	dbPath := filepath.Join(outDir, "hpoa.db")
	config := &Config{OrphanetPolicy: "abort", OutputPath: "ignored.hpoa"}

	rendered, err := execute(t, config,
		"bigfile",
		"--hpo", "../ontology/testdata/hp.obo",
		"--small-files", smallFileDir(t),
		"--output", output,
		"--sqlite", dbPath,
	)
	require.NoError(t, err)
	require.Contains(t, rendered, "Small files")
	require.Equal(t, output, config.OutputPath)

	content, err := os.ReadFile(output)
	require.NoError(t, err)
	require.Contains(t, string(content), "OMIM:154700\tMARFAN SYNDROME")

	db, err := sql.Open("sqlite", dbPath)
	require.NoError(t, err)
	defer db.Close()
	var rows int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM annotation").Scan(&rows))
	require.Equal(t, 1, rows)
}

func TestQCCommand(t *testing.T) {
	output := filepath.Join(t.TempDir(), "phenotype.hpoa")
	config := &Config{OrphanetPolicy: "abort", OutputPath: output}
	rendered, err := execute(t, config,
		"qc",
		"--hpo", "../ontology/testdata/hp.obo",
		"--small-files", smallFileDir(t),
	)
	require.NoError(t, err)
	require.Contains(t, rendered, "Small files")
	_, statErr := os.Stat(output)
	require.True(t, os.IsNotExist(statErr))
}

func TestMissingOntology(t *testing.T) {
	_, err := execute(t, &Config{OutputPath: "phenotype.hpoa"}, "qc", "--small-files", t.TempDir())
	require.Error(t, err)
}
