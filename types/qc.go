package types

import (
	"fmt"
)

// QCCode is a quality control action performed while converting a small file row.
type QCCode int

const (
	DidNotFindEvidenceCode QCCode = iota
	GotGeneData
	UpdatingAltID
	UpdatingHPOLabel
	CreatedModifier
	UpdatedDateFormat
	NoDateCreated
	PublicationPrefixInLowerCase
	ReplacedEmptyPublicationString
	CorrectedPublicationWithDatabaseButNoID
	GotEQItem
	TermNotFound
	AspectUndetermined
	UnparseableDate
	ConvertedFrequencyText
	MalformedFrequency
	DuplicateEntry
	MalformedLine
)

var qcCodeNames = map[QCCode][2]string{
	DidNotFindEvidenceCode:                  {"DID_NOT_FIND_EVIDENCE_CODE", "Didnt find valid evidence code"},
	GotGeneData:                             {"GOT_GENE_DATA", "Found and discarded gene data"},
	UpdatingAltID:                           {"UPDATING_ALT_ID", "Updated alt_id to current primary id"},
	UpdatingHPOLabel:                        {"UPDATING_HPO_LABEL", "Updated label to current label"},
	CreatedModifier:                         {"CREATED_MODIFER", "Created modifier term"},
	UpdatedDateFormat:                       {"UPDATED_DATE_FORMAT", "Updated created-by date to canonical date format"},
	NoDateCreated:                           {"NO_DATE_CREATED", "No data created found"},
	PublicationPrefixInLowerCase:            {"PUBLICATION_PREFIX_IN_LOWER_CASE", "Publication prefix was in lower case"},
	ReplacedEmptyPublicationString:          {"REPLACED_EMPTY_PUBLICATION_STRING", "replaced empty publication string with disease ID"},
	CorrectedPublicationWithDatabaseButNoID: {"CORRECTED_PUBLICATION_WITH_DATABASE_BUT_NO_ID", "corrected publication entry with database name but no id"},
	GotEQItem:                               {"GOT_EQ_ITEM", "Found and discarded EQ items"},
	TermNotFound:                            {"TERM_NOT_FOUND", "Discarded row with term id not found in ontology"},
	AspectUndetermined:                      {"ASPECT_UNDETERMINED", "Discarded row with phenotype outside all aspect branches"},
	UnparseableDate:                         {"UNPARSEABLE_DATE", "Could not parse created-by date"},
	ConvertedFrequencyText:                  {"CONVERTED_FREQUENCY_TEXT", "Converted free text frequency to frequency term"},
	MalformedFrequency:                      {"MALFORMED_FREQUENCY", "Removed malformed frequency"},
	DuplicateEntry:                          {"DUPLICATE_ENTRY", "Discarded duplicate row"},
	MalformedLine:                           {"MALFORMED_LINE", "Discarded malformed row"},
}

// AllQCCodes lists codes in reporting order.
func AllQCCodes() []QCCode {
	codes := make([]QCCode, 0, len(qcCodeNames))
	for code := DidNotFindEvidenceCode; code <= MalformedLine; code++ {
		codes = append(codes, code)
	}
	return codes
}

func (code QCCode) String() string {
	if names, ok := qcCodeNames[code]; ok {
		return names[0]
	}
	return fmt.Sprintf("QC_CODE_%d", int(code))
}

// Name is the curator facing description.
func (code QCCode) Name() string {
	if names, ok := qcCodeNames[code]; ok {
		return names[1]
	}
	return code.String()
}

// IsRejection reports whether the code discards the row.
func (code QCCode) IsRejection() bool {
	switch code {
	case DidNotFindEvidenceCode, GotGeneData, GotEQItem, TermNotFound, AspectUndetermined, DuplicateEntry, MalformedLine:
		return true
	}
	return false
}

func (code QCCode) MarshalText() ([]byte, error) {
	return []byte(code.String()), nil
}

func (code *QCCode) UnmarshalText(text []byte) error {
	for c, names := range qcCodeNames {
		if names[0] == string(text) {
			*code = c
			return nil
		}
	}
	return fmt.Errorf("unknown QC code %q", string(text))
}
