package types

const OrphanetPrefix = "ORPHA"

type OrphanetAnnotation struct {
	PhenotypeID string
	// Frequency is an HPO frequency term id, or empty.
	Frequency string
	// Excluded marks a phenotype that is explicitly absent in the disorder.
	Excluded bool
}

// OrphanetDisorder is one disorder extracted from the Orphanet XML export.
type OrphanetDisorder struct {
	OrphaNumber string
	Name        string
	Annotations []OrphanetAnnotation
}

func (d OrphanetDisorder) DiseaseID() string {
	return OrphanetPrefix + CurieSeparator + d.OrphaNumber
}

// OntologyMetadata is the release information embedded in the big file.
type OntologyMetadata struct {
	FormatVersion string `json:"format_version"`
	DataVersion   string `json:"data_version"`
	Date          string `json:"date"`
}

func (m OntologyMetadata) Version() string {
	if m.DataVersion != "" {
		return m.DataVersion
	}
	return m.Date
}
