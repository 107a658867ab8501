package ontology

import (
	"hpoannotqc.org/hpoa/types"
	"errors"
	"github.com/stretchr/testify/require"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const testOBO = "testdata/hp.obo"

func loadTestOntology(t *testing.T) *Ontology {
	t.Helper()
	ont, err := Load(testOBO, "")
	require.NoError(t, err)
	return ont
}

func TestOntology(t *testing.T) {
	t.Run("Metadata", testMetadata)
	t.Run("Primary ids", testPrimaryIDs)
	t.Run("Labels", testLabels)
	t.Run("Aspects", testAspects)
	t.Run("Index cache", testIndexCache)
}

func testMetadata(t *testing.T) {
	ont := loadTestOntology(t)
	require.Equal(t, types.OntologyMetadata{
		FormatVersion: "1.2",
		DataVersion:   "hp/releases/2018-03-08",
		Date:          "08:03:2018 10:51",
	}, ont.Metadata())
	require.Equal(t, 33, ont.Size())
}

func testPrimaryIDs(t *testing.T) {
	ont := loadTestOntology(t)
	cases := []struct {
		id       string
		expected string
		found    bool
	}{
		{"HP:0000962", "HP:0000962", true},
		{"HP:0001072", "HP:0000962", true},
		{"HP:0001447", "HP:0000006", true},
		{"HP:0000990", "HP:0001250", true},
		{"HP:9999999", "", false},
		{"OMIM:154700", "", false},
	}
	for _, c := range cases {
		primary, ok := ont.PrimaryID(c.id)
		require.Equal(t, c.found, ok, c.id)
		require.Equal(t, c.expected, primary, c.id)
		require.Equal(t, c.found, ont.Contains(c.id), c.id)
		if ok {
			again, _ := ont.PrimaryID(primary)
			require.Equal(t, primary, again, "resolving a primary id is a no-op")
		}
	}
}

func testLabels(t *testing.T) {
	ont := loadTestOntology(t)
	label, ok := ont.Label("HP:0001262")
	require.True(t, ok)
	require.Equal(t, "Seizure", label)
	label, ok = ont.Label("HP:0004872")
	require.True(t, ok)
	require.Equal(t, "Incisional hernia", label)
	_, ok = ont.Label("HP:1234567")
	require.False(t, ok)
}

func testAspects(t *testing.T) {
	ont := loadTestOntology(t)
	cases := map[string]types.Aspect{
		"HP:0004872": types.AspectPhenotypicAbnormality,
		"HP:0001072": types.AspectPhenotypicAbnormality,
		"HP:0000006": types.AspectInheritance,
		"HP:0003577": types.AspectClinicalCourse,
		"HP:0012825": types.AspectClinicalModifier,
		"HP:0031797": types.AspectClinicalCourse,
	}
	for id, expected := range cases {
		aspect, err := ont.AspectOf(id)
		require.NoError(t, err, id)
		require.Equal(t, expected, aspect, id)
	}

	_, err := ont.AspectOf("HP:0040283")
	require.True(t, errors.Is(err, types.ErrUnknownAspect))
	_, err = ont.AspectOf("HP:0000000")
	require.True(t, errors.Is(err, types.ErrTermNotFound))
}

func testIndexCache(t *testing.T) {
	cacheDir := t.TempDir()
	first, err := Load(testOBO, cacheDir)
	require.NoError(t, err)

	entries, err := os.ReadDir(cacheDir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.True(t, strings.HasPrefix(entries[0].Name(), "hp-"))
	require.Equal(t, ".json", filepath.Ext(entries[0].Name()))

	second, err := Load(testOBO, cacheDir)
	require.NoError(t, err)
	require.Equal(t, first.Metadata(), second.Metadata())
	require.Equal(t, first.Size(), second.Size())
	primary, ok := second.PrimaryID("HP:0000990")
	require.True(t, ok)
	require.Equal(t, "HP:0001250", primary)
}

func TestParseOBOErrors(t *testing.T) {
	_, err := ParseOBO(strings.NewReader("format-version: 1.2\n"))
	require.Error(t, err)

	_, err = ParseOBO(strings.NewReader("[Term]\nname: no id\n"))
	require.Error(t, err)

	_, err = Load(filepath.Join(t.TempDir(), "missing.obo"), "")
	require.Error(t, err)
}
