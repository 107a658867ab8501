package smallfile

import (
	"hpoannotqc.org/hpoa/utils"
	"fmt"
	"strings"
)

const OmitListFileName = "omit-list.txt"

// OmitSet holds disease ids whose small files are not processed.
//
//	#List of OMIM entries that we want to omit from further analysis
//	#DiseaseId    Reason
//	OMIM:107850   trait
type OmitSet map[string]struct{}

func normalizeOmitKey(id string) string {
	return strings.ToUpper(strings.TrimSpace(id))
}

func (set OmitSet) Contains(diseaseID string) bool {
	_, ok := set[normalizeOmitKey(diseaseID)]
	return ok
}

// LoadOmitSet always returns a usable set. On a read failure the set is empty
// and the error tells the caller why nothing is omitted.
func LoadOmitSet(path string) (OmitSet, error) {
	set := make(OmitSet)
	lines, err := utils.ReadList(path)
	if err != nil {
		return set, fmt.Errorf("could not read omit list %s: %w", path, err)
	}
	for _, line := range lines {
		if strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		set[normalizeOmitKey(fields[0])] = struct{}{}
	}
	return set, nil
}
