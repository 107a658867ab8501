package publish

import (
	"hpoannotqc.org/hpoa/logger"
	"hpoannotqc.org/hpoa/redis"
	"hpoannotqc.org/hpoa/report"
	"hpoannotqc.org/hpoa/rmq"
	"hpoannotqc.org/hpoa/s3client"
	"encoding/json"
	"fmt"
	"path/filepath"

	"github.com/kelseyhightower/envconfig"
	"github.com/rs/zerolog"
)

const runLockName = "bigfile"

type Config struct {
	RedisEnabled bool  `envconfig:"HPOA_REDIS_ENABLED" default:"false"`
	S3Enabled    bool  `envconfig:"HPOA_S3_ENABLED" default:"false"`
	RMQEnabled   bool  `envconfig:"HPOA_RMQ_ENABLED" default:"false"`
	HistorySize  int64 `envconfig:"HPOA_REDIS_HISTORY_SIZE" default:"20"`
}

func ReadConfig() (Config, error) {
	var config Config
	err := envconfig.Process("", &config)
	return config, err
}

// Publisher hands the results of a finished run to the enabled backends.
// A nil backend is disabled.
type Publisher struct {
	config    Config
	redis     reportStore
	s3        artifactStore
	rmq       notifier
	pubLogger *zerolog.Logger
}

func New(config Config) (*Publisher, error) {
	pubLogger := logger.NewLogger("Publisher")
	publisher := Publisher{
		config:    config,
		pubLogger: &pubLogger,
	}
	if config.RedisEnabled {
		client, err := redis.NewClient()
		if err != nil {
			pubLogger.Error().Err(err).Msg("Could not create Redis client")
			publisher.Close()
			return nil, err
		}
		publisher.redis = &redisClientWrapper{client: client, historySize: config.HistorySize}
	}
	if config.S3Enabled {
		client, err := s3client.New()
		if err != nil {
			pubLogger.Error().Err(err).Msg("Could not create S3 client")
			publisher.Close()
			return nil, err
		}
		publisher.s3 = &s3ClientWrapper{client}
	}
	if config.RMQEnabled {
		client, err := rmq.NewClient()
		if err != nil {
			pubLogger.Error().Err(err).Msg("Could not create RMQ client")
			publisher.Close()
			return nil, err
		}
		publisher.rmq = &rmqClientWrapper{client}
	}
	return &publisher, nil
}

// Lock serializes runs that share a Redis instance. Without Redis it is a no-op.
func (p *Publisher) Lock() (redis.ReleaseLock, error) {
	if p.redis == nil {
		return func() error { return nil }, nil
	}
	release, err := p.redis.lock(runLockName)
	if err != nil {
		p.pubLogger.Error().Err(err).Msg("Another run holds the lock")
		return nil, err
	}
	return release, nil
}

// Publish stores the report, uploads the artifacts and sends the completion
// notice. Failures are logged and recorded in rep; the big file on disk stays
// valid either way.
func (p *Publisher) Publish(rep *report.Report, bigFilePath string) {
	doc, err := rep.JSON()
	if err != nil {
		p.fail(rep, fmt.Errorf("encoding report: %w", err))
		return
	}

	if p.redis != nil {
		p.storeReport(rep, doc)
	}

	notice := Notification{RunID: rep.RunID, BigFile: bigFilePath}
	if rep.BigFile != nil {
		notice.Diseases = rep.BigFile.Diseases
		notice.Annotations = rep.BigFile.Annotations
	}
	if p.s3 != nil {
		notice.BigFileKey, notice.ReportKey = p.upload(rep, doc, bigFilePath)
	}

	if p.rmq != nil {
		notice.Errors = len(rep.Errors)
		if err := p.rmq.notify(notice); err != nil {
			p.fail(rep, fmt.Errorf("sending completion notice: %w", err))
		}
	}
}

func (p *Publisher) storeReport(rep *report.Report, doc []byte) {
	previous, found, err := p.redis.latestReport()
	if err != nil {
		p.fail(rep, fmt.Errorf("reading previous report: %w", err))
	}
	if found {
		patch, err := report.Diff(previous, doc)
		if err != nil {
			p.fail(rep, fmt.Errorf("comparing with previous report: %w", err))
		} else {
			p.pubLogger.Info().RawJSON("changes", patch).Msg("Compared with previous run")
		}
	}
	if err := p.redis.saveReport(doc); err != nil {
		p.fail(rep, fmt.Errorf("saving report: %w", err))
	}
}

func (p *Publisher) upload(rep *report.Report, doc []byte, bigFilePath string) (string, string) {
	var bigFileKey string
	if bigFilePath != "" {
		key, err := p.s3.uploadFile(rep.RunID, bigFilePath, filepath.Base(bigFilePath))
		if err != nil {
			p.fail(rep, fmt.Errorf("uploading big file: %w", err))
		} else {
			bigFileKey = key
		}
	}
	reportKey, err := p.s3.uploadData(rep.RunID, doc, reportObjectName)
	if err != nil {
		p.fail(rep, fmt.Errorf("uploading report: %w", err))
		reportKey = ""
	}
	return bigFileKey, reportKey
}

func (p *Publisher) fail(rep *report.Report, err error) {
	p.pubLogger.Error().Err(err).Str("run_id", rep.RunID).Msg("Publishing failed")
	rep.AddError(err)
}

func (p *Publisher) Close() {
	if p.redis != nil {
		p.redis.close()
	}
	if p.s3 != nil {
		p.s3.close()
	}
	if p.rmq != nil {
		p.rmq.close()
	}
}

// Notification is the completion message body.
type Notification struct {
	RunID       string `json:"run_id"`
	BigFile     string `json:"big_file"`
	BigFileKey  string `json:"big_file_key,omitempty"`
	ReportKey   string `json:"report_key,omitempty"`
	Diseases    int    `json:"diseases"`
	Annotations int    `json:"annotations"`
	Errors      int    `json:"errors"`
}

func (n Notification) body() ([]byte, error) {
	return json.Marshal(n)
}
