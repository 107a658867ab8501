package ontology

import (
	"hpoannotqc.org/hpoa/types"
	"fmt"
)

// Lookup is the read-only view of the HPO that the QC rules and the writer need.
type Lookup interface {
	// PrimaryID resolves alternate and obsolete ids to the current primary id.
	PrimaryID(id string) (string, bool)
	Contains(id string) bool
	// Label returns the current label of the term id resolves to.
	Label(id string) (string, bool)
	AspectOf(id string) (types.Aspect, error)
	Metadata() types.OntologyMetadata
}

type Term struct {
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	AltIDs     []string `json:"alt_ids,omitempty"`
	Parents    []string `json:"parents,omitempty"`
	Obsolete   bool     `json:"obsolete,omitempty"`
	ReplacedBy string   `json:"replaced_by,omitempty"`
}

// Ontology is immutable once New returns.
type Ontology struct {
	metadata types.OntologyMetadata
	terms    map[string]*Term
	// alternate or obsolete id -> primary id
	primary map[string]string
	aspects map[string]types.Aspect
}

func New(metadata types.OntologyMetadata, terms []Term) *Ontology {
	ont := &Ontology{
		metadata: metadata,
		terms:    make(map[string]*Term, len(terms)),
		primary:  make(map[string]string),
		aspects:  make(map[string]types.Aspect),
	}
	for i := range terms {
		term := &terms[i]
		ont.terms[term.ID] = term
	}
	for _, term := range ont.terms {
		if term.Obsolete {
			continue
		}
		for _, alt := range term.AltIDs {
			ont.primary[alt] = term.ID
		}
	}
	for _, term := range ont.terms {
		if !term.Obsolete || term.ReplacedBy == "" {
			continue
		}
		if _, ok := ont.primary[term.ID]; ok {
			continue
		}
		if replacement, ok := ont.resolve(term.ReplacedBy); ok {
			ont.primary[term.ID] = replacement
		}
	}
	ont.computeAspects()
	return ont
}

func (ont *Ontology) resolve(id string) (string, bool) {
	if term, ok := ont.terms[id]; ok && !term.Obsolete {
		return id, true
	}
	if primary, ok := ont.primary[id]; ok {
		return primary, true
	}
	return "", false
}

func (ont *Ontology) PrimaryID(id string) (string, bool) {
	return ont.resolve(id)
}

func (ont *Ontology) Contains(id string) bool {
	_, ok := ont.resolve(id)
	return ok
}

func (ont *Ontology) Label(id string) (string, bool) {
	primary, ok := ont.resolve(id)
	if !ok {
		return "", false
	}
	return ont.terms[primary].Name, true
}

func (ont *Ontology) AspectOf(id string) (types.Aspect, error) {
	primary, ok := ont.resolve(id)
	if !ok {
		return "", fmt.Errorf("%w: %s", types.ErrTermNotFound, id)
	}
	aspect, ok := ont.aspects[primary]
	if !ok {
		return "", fmt.Errorf("%w: %s", types.ErrUnknownAspect, id)
	}
	return aspect, nil
}

func (ont *Ontology) Metadata() types.OntologyMetadata {
	return ont.metadata
}

func (ont *Ontology) Size() int {
	return len(ont.terms)
}

// Terms returns the terms in no particular order; used by the index cache.
func (ont *Ontology) Terms() []Term {
	terms := make([]Term, 0, len(ont.terms))
	for _, term := range ont.terms {
		terms = append(terms, *term)
	}
	return terms
}

func (ont *Ontology) computeAspects() {
	roots := make(map[string]int, len(types.AspectRoots))
	for rank, root := range types.AspectRoots {
		roots[root.TermID] = rank
	}
	// best[id] is the smallest root rank reachable from id, or len(roots) when none.
	best := make(map[string]int, len(ont.terms))
	visiting := make(map[string]bool)
	var visit func(id string) int
	visit = func(id string) int {
		if rank, ok := best[id]; ok {
			return rank
		}
		if visiting[id] {
			return len(roots)
		}
		visiting[id] = true
		rank := len(roots)
		if r, ok := roots[id]; ok {
			rank = r
		}
		if term, ok := ont.terms[id]; ok {
			for _, parent := range term.Parents {
				if r := visit(parent); r < rank {
					rank = r
				}
			}
		}
		visiting[id] = false
		best[id] = rank
		return rank
	}
	for id, term := range ont.terms {
		if term.Obsolete {
			continue
		}
		if rank := visit(id); rank < len(roots) {
			ont.aspects[id] = types.AspectRoots[rank].Aspect
		}
	}
}
