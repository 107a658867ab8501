package types

type Aspect string

const (
	AspectPhenotypicAbnormality Aspect = "P"
	AspectInheritance           Aspect = "I"
	AspectClinicalCourse        Aspect = "C"
	AspectClinicalModifier      Aspect = "M"
)

const (
	PhenotypicAbnormalityRoot = "HP:0000118"
	ModeOfInheritanceRoot     = "HP:0000005"
	ClinicalCourseRoot        = "HP:0031797"
	ClinicalModifierRoot      = "HP:0012823"
)

type AspectRoot struct {
	TermID string
	Aspect Aspect
}

// AspectRoots are checked in order; the first branch containing a term wins.
var AspectRoots = []AspectRoot{
	{TermID: PhenotypicAbnormalityRoot, Aspect: AspectPhenotypicAbnormality},
	{TermID: ModeOfInheritanceRoot, Aspect: AspectInheritance},
	{TermID: ClinicalCourseRoot, Aspect: AspectClinicalCourse},
	{TermID: ClinicalModifierRoot, Aspect: AspectClinicalModifier},
}

func (a Aspect) Name() string {
	switch a {
	case AspectPhenotypicAbnormality:
		return "phenotypic abnormality"
	case AspectInheritance:
		return "mode of inheritance"
	case AspectClinicalCourse:
		return "clinical course"
	case AspectClinicalModifier:
		return "clinical modifier"
	default:
		return "unknown"
	}
}
