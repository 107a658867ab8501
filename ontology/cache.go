package ontology

import (
	"hpoannotqc.org/hpoa/logger"
	"hpoannotqc.org/hpoa/types"
	"hpoannotqc.org/hpoa/utils"
	"bufio"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// bump when the Term layout changes so that stale indexes are not reused
const indexSchemaVersion = "hpoa-index-v1"

type index struct {
	Metadata types.OntologyMetadata `json:"metadata"`
	Terms    []Term                 `json:"terms"`
}

// Load parses the OBO file at oboPath. When cacheDir is set, a JSON index keyed by
// the content hash of the OBO file is reused or written there.
func Load(oboPath string, cacheDir string) (*Ontology, error) {
	hpoaLogger := logger.NewLogger("Ontology loader").With().
		Str("path", oboPath).Logger()
	errLogger := hpoaLogger.With().Caller().Logger()
	hpoaLogger.Info().Msg("Started loading")

	if cacheDir == "" {
		ont, err := parseFile(oboPath)
		if err != nil {
			errLogger.Err(err).Msg("Could not parse OBO file")
			return nil, err
		}
		hpoaLogger.Info().Msgf("%d terms were loaded", ont.Size())
		return ont, nil
	}

	idxCachePath, err := indexPath(oboPath, cacheDir)
	if err != nil {
		errLogger.Err(err).Msg("Could not create index cache path")
		return nil, err
	}
	hpoaLogger = hpoaLogger.With().Str("index_cache_path", idxCachePath).Logger()
	errLogger = errLogger.With().Str("index_cache_path", idxCachePath).Logger()

	if buf, err := os.ReadFile(idxCachePath); err == nil {
		var idx index
		if err := json.Unmarshal(buf, &idx); err == nil {
			ont := New(idx.Metadata, idx.Terms)
			hpoaLogger.Info().Msgf("%d terms were loaded from index cache", ont.Size())
			return ont, nil
		}
		errLogger.Warn().Msg("Index cache is corrupt, rebuilding")
	}

	ont, err := parseFile(oboPath)
	if err != nil {
		errLogger.Err(err).Msg("Could not parse OBO file")
		return nil, err
	}
	if err := writeIndex(idxCachePath, ont); err != nil {
		errLogger.Err(err).Msg("Could not write index cache")
	}
	hpoaLogger.Info().Msgf("%d terms were loaded", ont.Size())
	return ont, nil
}

func parseFile(oboPath string) (*Ontology, error) {
	f, err := os.Open(oboPath)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	ont, err := ParseOBO(f)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", oboPath, err)
	}
	return ont, nil
}

func writeIndex(idxCachePath string, ont *Ontology) (err error) {
	data, err := json.Marshal(index{Metadata: ont.Metadata(), Terms: ont.Terms()})
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(idxCachePath), 0700); err != nil {
		return err
	}
	f, err := os.Create(idxCachePath)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := f.Close(); err == nil {
			err = closeErr
		}
	}()
	w := bufio.NewWriter(f)
	if _, err := w.Write(data); err != nil {
		return err
	}
	return w.Flush()
}

func indexPath(oboPath string, cacheDir string) (string, error) {
	f, err := os.Open(oboPath)
	if err != nil {
		return "", err
	}
	defer f.Close()
	hasher := sha256.New()
	if _, err := io.Copy(hasher, f); err != nil {
		return "", err
	}
	key := utils.HashString(indexSchemaVersion + hex.EncodeToString(hasher.Sum(nil)))
	name := strings.TrimSuffix(filepath.Base(oboPath), filepath.Ext(oboPath))
	return filepath.Join(cacheDir, name+"-"+strconv.FormatUint(key, 10)+".json"), nil
}
