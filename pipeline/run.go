package pipeline

import (
	"hpoannotqc.org/hpoa/bigfile"
	"hpoannotqc.org/hpoa/logger"
	"hpoannotqc.org/hpoa/ontology"
	"hpoannotqc.org/hpoa/orphanet"
	"hpoannotqc.org/hpoa/report"
	"hpoannotqc.org/hpoa/smallfile"
	"hpoannotqc.org/hpoa/types"
	"fmt"
	"os"
	"time"
)

type OrphanetPolicy string

const (
	// OrphanetAbort fails the run when the Orphanet export cannot be parsed.
	OrphanetAbort OrphanetPolicy = "abort"
	// OrphanetSkip writes a big file with small file rows only.
	OrphanetSkip OrphanetPolicy = "skip"
)

const DefaultOutputPath = "phenotype.hpoa"

type Params struct {
	HPOPath        string
	SmallFileDir   string
	OrphanetPath   string
	OutputPath     string
	OrphanetPolicy OrphanetPolicy
	QCTablesPath   string
	IndexCacheDir  string
	// QCOnly stops after the small files are parsed.
	QCOnly bool
	// Now overrides the writer clock in tests.
	Now func() time.Time
}

type Result struct {
	Report   *report.Report
	Metadata types.OntologyMetadata
	// Rows are the big file rows; empty for QC only runs.
	Rows []bigfile.Row
}

func configError(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", types.ErrConfiguration, fmt.Sprintf(format, args...))
}

func (p Params) Validate() error {
	if p.HPOPath == "" {
		return configError("path to hp.obo is required")
	}
	if _, err := os.Stat(p.HPOPath); err != nil {
		return configError("hp.obo: %v", err)
	}
	if p.SmallFileDir == "" {
		return configError("small file directory is required")
	}
	info, err := os.Stat(p.SmallFileDir)
	if err != nil {
		return configError("small file directory: %v", err)
	}
	if !info.IsDir() {
		return configError("%s is not a directory", p.SmallFileDir)
	}
	switch p.OrphanetPolicy {
	case "", OrphanetAbort, OrphanetSkip:
	default:
		return configError("unknown Orphanet policy %q", p.OrphanetPolicy)
	}
	if !p.QCOnly && p.OutputPath == "" {
		return configError("output path is required")
	}
	return nil
}

// Run executes one batch run: QC the small files, merge Orphanet and write
// the big file. Recoverable problems end up in the returned report; an error
// means no big file was written.
func Run(params Params) (*Result, error) {
	runLogger := logger.NewLogger("Pipeline")
	errLogger := runLogger.With().Caller().Logger()

	if err := params.Validate(); err != nil {
		errLogger.Error().Err(err).Msg("Invalid configuration")
		return nil, err
	}
	if params.OrphanetPolicy == "" {
		params.OrphanetPolicy = OrphanetAbort
	}
	rep := report.New()

	tables, err := types.LoadQCTables(params.QCTablesPath)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", types.ErrConfiguration, err)
	}
	ont, err := ontology.Load(params.HPOPath, params.IndexCacheDir)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", types.ErrConfiguration, err)
	}
	metadata := ont.Metadata()
	rep.OntologyVersion = metadata.Version()
	runLogger.Info().Str("version", metadata.Version()).Int("terms", ont.Size()).Msg("Loaded ontology")

	parser, err := smallfile.NewParser(ont, tables)
	if err != nil {
		return nil, err
	}
	ingested, err := smallfile.Ingest(params.SmallFileDir, parser)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", types.ErrConfiguration, err)
	}
	rep.FilesFound = ingested.FilesFound
	rep.FilesParsed = len(ingested.Files)
	rep.FilesFailed = ingested.FilesFailed
	rep.FilesOmitted = ingested.Omitted
	rep.Annotations = ingested.NumberOfAnnotations()
	rep.AddQCCounts(ingested.QCCounts)
	for _, e := range ingested.Errors {
		rep.AddError(e)
	}

	result := &Result{Report: rep, Metadata: metadata}
	if params.QCOnly {
		rep.Finish()
		return result, nil
	}

	writer := bigfile.NewWriter(ont)
	if params.Now != nil {
		writer.Now = params.Now
	}
	writer.AddSmallFiles(ingested.Files...)

	if params.OrphanetPath != "" {
		orpha, err := orphanet.ParseFile(params.OrphanetPath, ont)
		switch {
		case err != nil && params.OrphanetPolicy == OrphanetAbort:
			errLogger.Error().Err(err).Str("path", params.OrphanetPath).Msg("Aborting run")
			return nil, err
		case err != nil:
			runLogger.Warn().Err(err).Str("path", params.OrphanetPath).Msg("Writing big file without Orphanet annotations")
			rep.AddError(err)
		default:
			writer.AddOrphanet(orpha.Disorders, orpha.Date)
			rep.OrphanetIncluded = true
			rep.OrphanetDisorders = len(orpha.Disorders)
			rep.OrphanetAnnotations = orpha.NumberOfAnnotations()
			rep.OrphanetSkipped = orpha.SkippedAnnotations
		}
	}

	stats := writer.SetMetadata()
	if err := writer.Write(params.OutputPath); err != nil {
		return nil, err
	}
	rep.OutputPath = params.OutputPath
	rep.BigFile = &stats
	rep.Finish()

	result.Rows = writer.Rows()
	return result, nil
}
