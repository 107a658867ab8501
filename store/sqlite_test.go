package store

import (
	"hpoannotqc.org/hpoa/bigfile"
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

var exportedRows = []bigfile.Row{
	{
		DatabaseID:  "OMIM:154700",
		DiseaseName: "MARFAN SYNDROME",
		HPOID:       "HP:0004872",
		Reference:   "OMIM:154700",
		Evidence:    "IEA",
		Onset:       "HP:0040283",
		Aspect:      "P",
		Biocuration: "HPO:skoehler[2015-07-26]",
	},
	{
		DatabaseID:  "ORPHA:58",
		DiseaseName: "Alexander disease",
		HPOID:       "HP:0001250",
		Reference:   "ORPHA:58",
		Evidence:    "TAS",
		Frequency:   "HP:0040281",
		Aspect:      "P",
		Biocuration: "ORPHA:orphadata[2018-03-01]",
	},
}

func TestSQLiteExporter(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "export", "hpoa.db")
	exporter, err := NewSQLiteExporter(dbPath)
	require.NoError(t, err)
	defer exporter.Close()

	ctx := context.Background()
	meta := Metadata{
		RunID:           "run-1",
		OntologyVersion: "hp/releases/2018-03-08",
		CreatedAt:       time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC),
		Diseases:        2,
		Annotations:     2,
	}
	require.NoError(t, exporter.Export(ctx, meta, exportedRows))

	t.Run("Rows", func(t *testing.T) {
		var got bigfile.Row
		err := exporter.db.QueryRow(
			"SELECT database_id, disease_name, hpo_id, reference, evidence, onset, frequency, aspect, biocuration FROM annotation WHERE database_id = ?",
			"ORPHA:58",
		).Scan(&got.DatabaseID, &got.DiseaseName, &got.HPOID, &got.Reference, &got.Evidence, &got.Onset, &got.Frequency, &got.Aspect, &got.Biocuration)
		require.NoError(t, err)
		require.Equal(t, exportedRows[1], got)
	})

	t.Run("Metadata", func(t *testing.T) {
		var runID, version, createdAt string
		var annotations int
		err := exporter.db.QueryRow("SELECT run_id, hpo_version, created_at, annotations FROM metadata").
			Scan(&runID, &version, &createdAt, &annotations)
		require.NoError(t, err)
		require.Equal(t, "run-1", runID)
		require.Equal(t, "hp/releases/2018-03-08", version)
		require.Equal(t, "2024-01-02T03:04:05Z", createdAt)
		require.Equal(t, 2, annotations)
	})

	t.Run("Export replaces previous contents", func(t *testing.T) {
		meta.RunID = "run-2"
		require.NoError(t, exporter.Export(ctx, meta, exportedRows[:1]))
		require.Equal(t, 1, count(t, exporter.db, "annotation"))
		require.Equal(t, 1, count(t, exporter.db, "metadata"))
	})
}

func count(t *testing.T, db *sql.DB, table string) int {
	t.Helper()
	var n int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM "+table).Scan(&n))
	return n
}
