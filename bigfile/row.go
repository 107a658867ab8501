package bigfile

import (
	"fmt"
	"strings"
)

const Header = "DatabaseID\tDiseaseName\tQualifier\tHPO_ID\tReference\tEvidence\tOnset\tFrequency\tSex\tModifier\tAspect\tBiocuration"

// OrphanetCurator is the assigned-by part of Orphanet biocuration stamps.
const OrphanetCurator = "ORPHA:orphadata"

// Row is one line of the big file.
type Row struct {
	DatabaseID  string `json:"database_id"`
	DiseaseName string `json:"disease_name"`
	Qualifier   string `json:"qualifier"`
	HPOID       string `json:"hpo_id"`
	Reference   string `json:"reference"`
	Evidence    string `json:"evidence"`
	Onset       string `json:"onset"`
	Frequency   string `json:"frequency"`
	Sex         string `json:"sex"`
	Modifier    string `json:"modifier"`
	Aspect      string `json:"aspect"`
	Biocuration string `json:"biocuration"`
}

func (r Row) Fields() []string {
	return []string{
		r.DatabaseID, r.DiseaseName, r.Qualifier, r.HPOID, r.Reference, r.Evidence,
		r.Onset, r.Frequency, r.Sex, r.Modifier, r.Aspect, r.Biocuration,
	}
}

func (r Row) String() string {
	return strings.Join(r.Fields(), "\t")
}

// MetadataLine is the second line of the big file.
func MetadataLine(version string, date string, diseases int, annotations int) string {
	return fmt.Sprintf("#HPO-version:%s\tdate:%s\tdiseases:%d\tannotations:%d", version, date, diseases, annotations)
}
