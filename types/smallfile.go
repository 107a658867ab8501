package types

// SmallFile holds the normalized annotations of one disease's annotation file.
type SmallFile struct {
	DiseaseID string
	Path      string
	Entries   []AnnotationEntry
	QCCounts  map[QCCode]int
}

func NewSmallFile(diseaseID string, path string) *SmallFile {
	return &SmallFile{
		DiseaseID: diseaseID,
		Path:      path,
		QCCounts:  make(map[QCCode]int),
	}
}

func (sf *SmallFile) NumberOfAnnotations() int {
	return len(sf.Entries)
}

func (sf *SmallFile) Count(code QCCode) {
	sf.QCCounts[code]++
}

func (sf *SmallFile) AddCounts(counts map[QCCode]int) {
	for code, n := range counts {
		sf.QCCounts[code] += n
	}
}

// DiseaseName returns the name used by the first entry.
func (sf *SmallFile) DiseaseName() string {
	if len(sf.Entries) == 0 {
		return ""
	}
	return sf.Entries[0].DiseaseName()
}
