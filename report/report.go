package report

import (
	"hpoannotqc.org/hpoa/bigfile"
	"hpoannotqc.org/hpoa/types"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	jsonpatch "github.com/evanphx/json-patch"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// volatileFields differ between any two runs and are left out of diffs.
var volatileFields = []string{"run_id", "started_at", "finished_at"}

// Report aggregates everything one run wants to tell the curators.
type Report struct {
	RunID      string    `json:"run_id"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`

	OntologyVersion string `json:"ontology_version,omitempty"`
	OutputPath      string `json:"output_path,omitempty"`

	FilesFound   int `json:"files_found"`
	FilesParsed  int `json:"files_parsed"`
	FilesFailed  int `json:"files_failed"`
	FilesOmitted int `json:"files_omitted"`
	Annotations  int `json:"annotations"`

	QCCounts map[types.QCCode]int `json:"qc_counts"`

	OrphanetDisorders   int  `json:"orphanet_disorders"`
	OrphanetAnnotations int  `json:"orphanet_annotations"`
	OrphanetSkipped     int  `json:"orphanet_skipped"`
	OrphanetIncluded    bool `json:"orphanet_included"`

	BigFile *bigfile.Stats `json:"big_file,omitempty"`

	Errors []string `json:"errors,omitempty"`
}

func New() *Report {
	return &Report{
		RunID:     uuid.New().String(),
		StartedAt: time.Now().UTC(),
		QCCounts:  make(map[types.QCCode]int),
	}
}

func (r *Report) AddError(err error) {
	if err == nil {
		return
	}
	r.Errors = append(r.Errors, err.Error())
}

func (r *Report) AddQCCounts(counts map[types.QCCode]int) {
	for code, n := range counts {
		r.QCCounts[code] += n
	}
}

func (r *Report) Finish() {
	r.FinishedAt = time.Now().UTC()
}

func (r *Report) Rejected() int {
	n := 0
	for code, count := range r.QCCounts {
		if code.IsRejection() {
			n += count
		}
	}
	return n
}

func (r *Report) JSON() ([]byte, error) {
	return json.Marshal(r)
}

// Render writes the human readable summary printed at the end of a run.
func (r *Report) Render(w io.Writer) error {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Run %s\n", r.RunID)
	if r.OntologyVersion != "" {
		fmt.Fprintf(&sb, "HPO version: %s\n", r.OntologyVersion)
	}
	fmt.Fprintf(&sb, "Small files: %d found, %d parsed, %d failed, %d omitted\n",
		r.FilesFound, r.FilesParsed, r.FilesFailed, r.FilesOmitted)
	fmt.Fprintf(&sb, "Small file annotations: %d (%d rows rejected)\n", r.Annotations, r.Rejected())

	sb.WriteString("Q/C:\n")
	reported := false
	for _, code := range types.AllQCCodes() {
		if n := r.QCCounts[code]; n > 0 {
			fmt.Fprintf(&sb, "\t%s: %d\n", code.Name(), n)
			reported = true
		}
	}
	if !reported {
		sb.WriteString("\tno corrections\n")
	}

	if r.OrphanetIncluded {
		fmt.Fprintf(&sb, "Orphanet: %d disorders, %d annotations, %d skipped\n",
			r.OrphanetDisorders, r.OrphanetAnnotations, r.OrphanetSkipped)
	}
	if r.BigFile != nil {
		fmt.Fprintf(&sb, "Big file %s: %d diseases, %d annotations", r.OutputPath, r.BigFile.Diseases, r.BigFile.Annotations)
		if r.BigFile.SkippedUnknownAspect > 0 {
			fmt.Fprintf(&sb, ", %d skipped without aspect", r.BigFile.SkippedUnknownAspect)
		}
		sb.WriteString("\n")
	}
	if len(r.Errors) > 0 {
		fmt.Fprintf(&sb, "Errors (%d):\n", len(r.Errors))
		for _, e := range r.Errors {
			fmt.Fprintf(&sb, "\t%s\n", e)
		}
	}
	_, err := io.WriteString(w, sb.String())
	return err
}

// Log emits the report as one structured event.
func (r *Report) Log(reportLogger zerolog.Logger) {
	qc := zerolog.Dict()
	for _, code := range types.AllQCCodes() {
		if n := r.QCCounts[code]; n > 0 {
			qc.Int(code.String(), n)
		}
	}
	event := reportLogger.Info().
		Str("run_id", r.RunID).
		Int("files_found", r.FilesFound).
		Int("files_parsed", r.FilesParsed).
		Int("files_failed", r.FilesFailed).
		Int("files_omitted", r.FilesOmitted).
		Int("annotations", r.Annotations).
		Dict("qc", qc).
		Int("errors", len(r.Errors))
	if r.BigFile != nil {
		event = event.Int("big_file_annotations", r.BigFile.Annotations)
	}
	event.Msg("Run finished")
}

func stripVolatile(doc []byte) ([]byte, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(doc, &fields); err != nil {
		return nil, err
	}
	for _, name := range volatileFields {
		delete(fields, name)
	}
	return json.Marshal(fields)
}

// Diff returns a JSON merge patch that turns the previous report into the
// current one, ignoring run identity and timing. An empty object means the
// two runs produced the same numbers.
func Diff(previous []byte, current []byte) ([]byte, error) {
	prev, err := stripVolatile(previous)
	if err != nil {
		return nil, fmt.Errorf("previous report: %w", err)
	}
	cur, err := stripVolatile(current)
	if err != nil {
		return nil, fmt.Errorf("current report: %w", err)
	}
	return jsonpatch.CreateMergePatch(prev, cur)
}
