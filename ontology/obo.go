package ontology

import (
	"hpoannotqc.org/hpoa/types"
	"bufio"
	"fmt"
	"io"
	"strings"
)

const (
	stanzaNone = iota
	stanzaTerm
	stanzaOther
)

// ParseOBO reads the subset of the OBO 1.2 format used by hp.obo: the header
// version tags and the id, name, alt_id, is_a, is_obsolete and replaced_by tags
// of [Term] stanzas.
func ParseOBO(r io.Reader) (*Ontology, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

	var metadata types.OntologyMetadata
	var terms []Term
	var current *Term
	state := stanzaNone
	lineNo := 0

	flush := func() error {
		if current == nil {
			return nil
		}
		if current.ID == "" {
			return fmt.Errorf("term stanza ending at line %d has no id", lineNo)
		}
		terms = append(terms, *current)
		current = nil
		return nil
	}

	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "!") {
			continue
		}
		if strings.HasPrefix(line, "[") && strings.HasSuffix(line, "]") {
			if err := flush(); err != nil {
				return nil, err
			}
			if line == "[Term]" {
				state = stanzaTerm
				current = &Term{}
			} else {
				state = stanzaOther
			}
			continue
		}
		tag, value, ok := splitTag(line)
		if !ok {
			continue
		}
		switch state {
		case stanzaNone:
			switch tag {
			case "format-version":
				metadata.FormatVersion = value
			case "data-version":
				metadata.DataVersion = value
			case "date":
				metadata.Date = value
			}
		case stanzaTerm:
			switch tag {
			case "id":
				current.ID = value
			case "name":
				current.Name = value
			case "alt_id":
				current.AltIDs = append(current.AltIDs, value)
			case "is_a":
				current.Parents = append(current.Parents, firstToken(value))
			case "is_obsolete":
				current.Obsolete = value == "true"
			case "replaced_by":
				current.ReplacedBy = firstToken(value)
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if err := flush(); err != nil {
		return nil, err
	}
	if len(terms) == 0 {
		return nil, fmt.Errorf("no [Term] stanzas found")
	}
	return New(metadata, terms), nil
}

// splitTag splits "tag: value ! comment" into tag and value, dropping trailing
// modifiers in braces and the comment.
func splitTag(line string) (string, string, bool) {
	idx := strings.Index(line, ":")
	if idx <= 0 {
		return "", "", false
	}
	tag := strings.TrimSpace(line[:idx])
	value := strings.TrimSpace(line[idx+1:])
	if tag != "name" && tag != "def" && tag != "comment" {
		if bang := strings.Index(value, " !"); bang >= 0 {
			value = strings.TrimSpace(value[:bang])
		}
		if brace := strings.Index(value, " {"); brace >= 0 {
			value = strings.TrimSpace(value[:brace])
		}
	}
	return tag, value, true
}

func firstToken(value string) string {
	fields := strings.Fields(value)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}
