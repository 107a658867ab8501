package types

const (
	EvidenceIEA = "IEA"
	EvidencePCS = "PCS"
	EvidenceTAS = "TAS"

	QualifierNot = "NOT"

	SexMale   = "MALE"
	SexFemale = "FEMALE"
)

// AnnotationEntry is one normalized phenotype to disease association.
// Values are only created through AnnotationEntryBuilder and never change afterwards.
type AnnotationEntry struct {
	diseaseID     string
	diseaseName   string
	phenotypeID   string
	phenotypeName string
	evidence      string
	qualifier     string
	onsetID       string
	onsetName     string
	frequency     string
	sex           string
	modifier      string
	publication   string
	biocuration   string
}

func (e AnnotationEntry) DiseaseID() string     { return e.diseaseID }
func (e AnnotationEntry) DiseaseName() string   { return e.diseaseName }
func (e AnnotationEntry) PhenotypeID() string   { return e.phenotypeID }
func (e AnnotationEntry) PhenotypeName() string { return e.phenotypeName }
func (e AnnotationEntry) Evidence() string      { return e.evidence }
func (e AnnotationEntry) Qualifier() string     { return e.qualifier }
func (e AnnotationEntry) OnsetID() string       { return e.onsetID }
func (e AnnotationEntry) OnsetName() string     { return e.onsetName }
func (e AnnotationEntry) Frequency() string     { return e.frequency }
func (e AnnotationEntry) Sex() string           { return e.sex }
func (e AnnotationEntry) Modifier() string      { return e.modifier }
func (e AnnotationEntry) Publication() string   { return e.publication }
func (e AnnotationEntry) Biocuration() string   { return e.biocuration }

func (e AnnotationEntry) IsNegated() bool {
	return e.qualifier == QualifierNot
}

type AnnotationEntryBuilder struct {
	entry AnnotationEntry
}

func NewAnnotationEntryBuilder(
	diseaseID string,
	diseaseName string,
	phenotypeID string,
	phenotypeName string,
	evidence string,
	publication string,
	biocuration string,
) *AnnotationEntryBuilder {
	return &AnnotationEntryBuilder{
		entry: AnnotationEntry{
			diseaseID:     diseaseID,
			diseaseName:   diseaseName,
			phenotypeID:   phenotypeID,
			phenotypeName: phenotypeName,
			evidence:      evidence,
			publication:   publication,
			biocuration:   biocuration,
		},
	}
}

func (b *AnnotationEntryBuilder) Onset(id string, name string) *AnnotationEntryBuilder {
	b.entry.onsetID = id
	b.entry.onsetName = name
	return b
}

func (b *AnnotationEntryBuilder) Frequency(frequency string) *AnnotationEntryBuilder {
	b.entry.frequency = frequency
	return b
}

func (b *AnnotationEntryBuilder) Sex(sex string) *AnnotationEntryBuilder {
	b.entry.sex = sex
	return b
}

func (b *AnnotationEntryBuilder) Modifier(modifier string) *AnnotationEntryBuilder {
	b.entry.modifier = modifier
	return b
}

func (b *AnnotationEntryBuilder) Negated(negated bool) *AnnotationEntryBuilder {
	if negated {
		b.entry.qualifier = QualifierNot
	} else {
		b.entry.qualifier = ""
	}
	return b
}

func (b *AnnotationEntryBuilder) Build() AnnotationEntry {
	return b.entry
}
