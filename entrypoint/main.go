package main

import (
	"hpoannotqc.org/hpoa/logger"
	"hpoannotqc.org/hpoa/pipeline"
	"hpoannotqc.org/hpoa/publish"
	"hpoannotqc.org/hpoa/report"
	"hpoannotqc.org/hpoa/store"
	"context"
	"fmt"
	"io"
	"os"

	"github.com/kelseyhightower/envconfig"
	"github.com/spf13/cobra"
)

type Config struct {
	HPOPath        string `envconfig:"HPOA_HPO_PATH"`
	SmallFileDir   string `envconfig:"HPOA_SMALL_FILE_DIR"`
	OrphanetPath   string `envconfig:"HPOA_ORPHANET_PATH" default:""`
	OutputPath     string `envconfig:"HPOA_OUTPUT_PATH" default:"phenotype.hpoa"`
	OrphanetPolicy string `envconfig:"HPOA_ORPHANET_POLICY" default:"abort"`
	QCTablesPath   string `envconfig:"HPOA_QC_TABLES" default:""`
	IndexCacheDir  string `envconfig:"HPOA_INDEX_CACHE_DIR" default:""`
	SQLitePath     string `envconfig:"HPOA_SQLITE_PATH" default:""`
}

func (c Config) params(qcOnly bool) pipeline.Params {
	return pipeline.Params{
		HPOPath:        c.HPOPath,
		SmallFileDir:   c.SmallFileDir,
		OrphanetPath:   c.OrphanetPath,
		OutputPath:     c.OutputPath,
		OrphanetPolicy: pipeline.OrphanetPolicy(c.OrphanetPolicy),
		QCTablesPath:   c.QCTablesPath,
		IndexCacheDir:  c.IndexCacheDir,
		QCOnly:         qcOnly,
	}
}

func main() {
	logger.SetupLogging()
	mainLogger := logger.NewLogger("Main")
	defer logger.HandlePanic(mainLogger)

	var config Config
	if err := envconfig.Process("", &config); err != nil {
		mainLogger.Error().Caller().Err(err).Msg("Failed to read environment")
		os.Exit(1)
	}
	if err := newRootCommand(&config, os.Stdout).Execute(); err != nil {
		mainLogger.Error().Err(err).Msg("Run failed")
		os.Exit(1)
	}
}

// newRootCommand binds flags over the environment values already in config.
func newRootCommand(config *Config, out io.Writer) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "hpoa",
		Short:         "Build the HPO disease annotation file",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&config.HPOPath, "hpo", config.HPOPath, "path to hp.obo")
	flags.StringVar(&config.SmallFileDir, "small-files", config.SmallFileDir, "directory with the small files and omit-list.txt")
	flags.StringVar(&config.QCTablesPath, "qc-tables", config.QCTablesPath, "yaml file overriding the built-in QC tables")
	flags.StringVar(&config.IndexCacheDir, "index-cache", config.IndexCacheDir, "directory for the ontology index cache")

	bigFileCmd := &cobra.Command{
		Use:   "bigfile",
		Short: "QC the small files, merge Orphanet and write the big file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBigFile(*config, out)
		},
	}
	bigFileCmd.Flags().StringVar(&config.OrphanetPath, "orphanet", config.OrphanetPath, "Orphanet en_product4 XML export")
	bigFileCmd.Flags().StringVar(&config.OrphanetPolicy, "orphanet-policy", config.OrphanetPolicy, "abort or skip when the Orphanet export cannot be parsed")
	bigFileCmd.Flags().StringVarP(&config.OutputPath, "output", "o", config.OutputPath, "big file path")
	bigFileCmd.Flags().StringVar(&config.SQLitePath, "sqlite", config.SQLitePath, "also export the rows into this SQLite database")

	qcCmd := &cobra.Command{
		Use:   "qc",
		Short: "QC the small files and print the report without writing output",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runQC(*config, out)
		},
	}

	rootCmd.AddCommand(bigFileCmd, qcCmd)
	return rootCmd
}

func runQC(config Config, out io.Writer) error {
	result, err := pipeline.Run(config.params(true))
	if err != nil {
		return err
	}
	return finish(result.Report, out)
}

func runBigFile(config Config, out io.Writer) error {
	mainLogger := logger.NewLogger("Main")
	pubConfig, err := publish.ReadConfig()
	if err != nil {
		return fmt.Errorf("reading publishing config: %w", err)
	}
	publisher, err := publish.New(pubConfig)
	if err != nil {
		return err
	}
	defer publisher.Close()

	release, err := publisher.Lock()
	if err != nil {
		return err
	}
	defer func() {
		if err := release(); err != nil {
			mainLogger.Warn().Err(err).Msg("Failed to release run lock")
		}
	}()

	result, err := pipeline.Run(config.params(false))
	if err != nil {
		return err
	}
	if config.SQLitePath != "" {
		if err := export(config.SQLitePath, result); err != nil {
			mainLogger.Error().Err(err).Str("path", config.SQLitePath).Msg("SQLite export failed")
			result.Report.AddError(err)
		}
	}
	publisher.Publish(result.Report, result.Report.OutputPath)
	return finish(result.Report, out)
}

func export(path string, result *pipeline.Result) error {
	exporter, err := store.NewSQLiteExporter(path)
	if err != nil {
		return err
	}
	defer exporter.Close()
	rep := result.Report
	meta := store.Metadata{
		RunID:           rep.RunID,
		OntologyVersion: rep.OntologyVersion,
		CreatedAt:       rep.FinishedAt,
	}
	if rep.BigFile != nil {
		meta.Diseases = rep.BigFile.Diseases
		meta.Annotations = rep.BigFile.Annotations
	}
	return exporter.Export(context.Background(), meta, result.Rows)
}

func finish(rep *report.Report, out io.Writer) error {
	rep.Log(logger.NewLogger("Report"))
	return rep.Render(out)
}
