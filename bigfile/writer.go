package bigfile

import (
	"hpoannotqc.org/hpoa/logger"
	"hpoannotqc.org/hpoa/ontology"
	"hpoannotqc.org/hpoa/types"
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/rs/zerolog"
)

var ErrMetadataNotSet = errors.New("big file metadata must be set before writing")

type Stats struct {
	Diseases      int `json:"diseases"`
	Annotations   int `json:"annotations"`
	SmallFileRows int `json:"small_file_rows"`
	OrphanetRows  int `json:"orphanet_rows"`
	// SkippedUnknownAspect counts entries whose phenotype has no aspect.
	SkippedUnknownAspect int `json:"skipped_unknown_aspect"`
}

// Writer collects rows from small files and Orphanet, then writes them in a
// deterministic order. SetMetadata must run before Write.
type Writer struct {
	ontology ontology.Lookup
	// Now is the clock for the metadata date and undated Orphanet stamps.
	Now func() time.Time

	smallFiles []*types.SmallFile
	disorders  []types.OrphanetDisorder
	orphaDate  string

	rows        []Row
	metadata    string
	metadataSet bool
	stats       Stats
	log         zerolog.Logger
}

func NewWriter(lookup ontology.Lookup) *Writer {
	return &Writer{
		ontology: lookup,
		Now:      time.Now,
		log:      logger.NewLogger("BigFileWriter"),
	}
}

func (w *Writer) AddSmallFiles(files ...*types.SmallFile) {
	w.smallFiles = append(w.smallFiles, files...)
	w.metadataSet = false
}

// AddOrphanet adds Orphanet disorders. date is the export date used in the
// biocuration stamps; the run date is used when it is empty.
func (w *Writer) AddOrphanet(disorders []types.OrphanetDisorder, date string) {
	w.disorders = append(w.disorders, disorders...)
	w.orphaDate = date
	w.metadataSet = false
}

// SetMetadata builds and orders all rows and fixes the metadata line.
func (w *Writer) SetMetadata() Stats {
	today := w.Now().Format(types.CanonicalDateLayout)
	w.stats = Stats{}

	smallRows := w.smallFileRows()
	orphaRows := w.orphanetRows(today)
	sortByDisease(smallRows)
	sortByDisease(orphaRows)

	w.rows = append(smallRows, orphaRows...)
	diseases := make(map[string]struct{})
	for _, row := range w.rows {
		diseases[row.DatabaseID] = struct{}{}
	}
	w.stats.SmallFileRows = len(smallRows)
	w.stats.OrphanetRows = len(orphaRows)
	w.stats.Diseases = len(diseases)
	w.stats.Annotations = len(w.rows)

	w.metadata = MetadataLine(w.ontology.Metadata().Version(), today, w.stats.Diseases, w.stats.Annotations)
	w.metadataSet = true
	return w.stats
}

func (w *Writer) Stats() Stats {
	return w.stats
}

// Rows returns the ordered rows; valid after SetMetadata.
func (w *Writer) Rows() []Row {
	return w.rows
}

func (w *Writer) aspect(phenotypeID string) (string, bool) {
	aspect, err := w.ontology.AspectOf(phenotypeID)
	if err != nil {
		w.stats.SkippedUnknownAspect++
		w.log.Warn().Err(err).Str("phenotype", phenotypeID).Msg("skipping annotation")
		return "", false
	}
	return string(aspect), true
}

func (w *Writer) smallFileRows() []Row {
	var rows []Row
	for _, sf := range w.smallFiles {
		for _, entry := range sf.Entries {
			aspect, ok := w.aspect(entry.PhenotypeID())
			if !ok {
				continue
			}
			rows = append(rows, Row{
				DatabaseID:  entry.DiseaseID(),
				DiseaseName: entry.DiseaseName(),
				Qualifier:   entry.Qualifier(),
				HPOID:       entry.PhenotypeID(),
				Reference:   entry.Publication(),
				Evidence:    entry.Evidence(),
				Onset:       entry.OnsetID(),
				Frequency:   entry.Frequency(),
				Sex:         entry.Sex(),
				Modifier:    entry.Modifier(),
				Aspect:      aspect,
				Biocuration: entry.Biocuration(),
			})
		}
	}
	return rows
}

func (w *Writer) orphanetRows(today string) []Row {
	date := w.orphaDate
	if date == "" {
		date = today
	}
	biocuration := OrphanetCurator + "[" + date + "]"

	var rows []Row
	for _, disorder := range w.disorders {
		for _, annotation := range disorder.Annotations {
			aspect, ok := w.aspect(annotation.PhenotypeID)
			if !ok {
				continue
			}
			qualifier := ""
			if annotation.Excluded {
				qualifier = types.QualifierNot
			}
			rows = append(rows, Row{
				DatabaseID:  disorder.DiseaseID(),
				DiseaseName: disorder.Name,
				Qualifier:   qualifier,
				HPOID:       annotation.PhenotypeID,
				Reference:   disorder.DiseaseID(),
				Evidence:    types.EvidenceTAS,
				Frequency:   annotation.Frequency,
				Aspect:      aspect,
				Biocuration: biocuration,
			})
		}
	}
	return rows
}

func sortByDisease(rows []Row) {
	sort.SliceStable(rows, func(i, j int) bool {
		return types.CompareCuries(rows[i].DatabaseID, rows[j].DatabaseID) < 0
	})
}

// WriteTo writes the header, the metadata line and all rows.
func (w *Writer) WriteTo(out io.Writer) error {
	if !w.metadataSet {
		return ErrMetadataNotSet
	}
	buf := bufio.NewWriter(out)
	if _, err := fmt.Fprintln(buf, Header); err != nil {
		return err
	}
	if _, err := fmt.Fprintln(buf, w.metadata); err != nil {
		return err
	}
	for _, row := range w.rows {
		if _, err := fmt.Fprintln(buf, row.String()); err != nil {
			return err
		}
	}
	return buf.Flush()
}

// Write replaces path atomically: rows go to a temporary file in the same
// directory which is renamed over path once complete.
func (w *Writer) Write(path string) (err error) {
	if !w.metadataSet {
		return ErrMetadataNotSet
	}
	errLogger := w.log.With().Caller().Logger()

	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".*.tmp")
	if err != nil {
		errLogger.Error().Err(err).Msg("Could not create big file")
		return fmt.Errorf("could not create big file: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmp.Name())
			errLogger.Error().Err(err).Str("path", path).Msg("Could not write big file")
		}
	}()

	if err = w.WriteTo(tmp); err != nil {
		return fmt.Errorf("writing %s: %w", tmp.Name(), err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", tmp.Name(), err)
	}
	if err = os.Chmod(tmp.Name(), 0o644); err != nil {
		return fmt.Errorf("chmod %s: %w", tmp.Name(), err)
	}
	if err = os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("renaming to %s: %w", path, err)
	}

	w.log.Info().
		Str("path", path).
		Int("diseases", w.stats.Diseases).
		Int("annotations", w.stats.Annotations).
		Msg("Wrote big file")
	return nil
}
