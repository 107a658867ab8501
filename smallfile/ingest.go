package smallfile

import (
	"hpoannotqc.org/hpoa/logger"
	"hpoannotqc.org/hpoa/types"
	"fmt"
	"path/filepath"
)

type IngestResult struct {
	Files       []*types.SmallFile
	FilesFound  int
	FilesFailed int
	Omitted     int
	QCCounts    map[types.QCCode]int
	// Errors are the recoverable problems met along the way.
	Errors []error
}

func (r *IngestResult) NumberOfAnnotations() int {
	n := 0
	for _, sf := range r.Files {
		n += sf.NumberOfAnnotations()
	}
	return n
}

// Ingest reads every small file of dir that is not on the omit list. Files
// that fail to parse, or whose rows were all rejected, are logged and skipped;
// the QC counts of the latter are kept. Only a directory that cannot be
// listed is an error.
func Ingest(dir string, parser *Parser) (*IngestResult, error) {
	ingestLogger := logger.NewLogger("Ingest")
	result := &IngestResult{QCCounts: make(map[types.QCCode]int)}

	omit, err := LoadOmitSet(filepath.Join(dir, OmitListFileName))
	if err != nil {
		ingestLogger.Warn().Err(err).Msg("processing all small files")
		result.Errors = append(result.Errors, err)
	}

	discovery := Discover(dir, omit)
	if discovery.Err != nil {
		return nil, discovery.Err
	}
	result.FilesFound = len(discovery.Paths) + discovery.Omitted
	result.Omitted = discovery.Omitted

	for _, path := range discovery.Paths {
		sf, err := parser.Parse(path)
		if err != nil {
			result.FilesFailed++
			result.Errors = append(result.Errors, err)
			ingestLogger.Error().Err(err).Str("file", path).Msg("skipping small file")
			continue
		}
		for code, n := range sf.QCCounts {
			result.QCCounts[code] += n
		}
		if sf.NumberOfAnnotations() == 0 {
			err := fmt.Errorf("%s: %w: every row was rejected", path, types.ErrNoAnnotations)
			result.FilesFailed++
			result.Errors = append(result.Errors, err)
			ingestLogger.Error().Err(err).Str("file", path).Msg("small file contributed no annotations")
			continue
		}
		result.Files = append(result.Files, sf)
	}

	ingestLogger.Info().
		Int("found", result.FilesFound).
		Int("parsed", len(result.Files)).
		Int("failed", result.FilesFailed).
		Int("omitted", result.Omitted).
		Int("annotations", result.NumberOfAnnotations()).
		Msg("small files ingested")
	return result, nil
}
