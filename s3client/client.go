package s3client

import (
	"hpoannotqc.org/hpoa/logger"
	"bytes"
	"fmt"
	"io"
	"os"
	"path"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"
	"github.com/kelseyhightower/envconfig"
	"github.com/rs/zerolog"
)

var clientLogger = logger.NewLogger("S3Client")
var sdkLogger = logger.NewLogger("S3-SDK")

type EnvironmentConfig struct {
	BucketName  string `envconfig:"HPOA_S3_BUCKET" required:"true"`
	Region      string `envconfig:"HPOA_S3_REGION" default:"us-east-1"`
	AwsEndpoint string `envconfig:"HPOA_S3_ENDPOINT" default:""`
	AccessKeyID string `envconfig:"HPOA_S3_ACCESS_ID" default:""`
	AccessKey   string `envconfig:"HPOA_S3_ACCESS_KEY" default:""`
	Prefix      string `envconfig:"HPOA_S3_PREFIX" default:"hpoa"`
}

type Client struct {
	sess   *session.Session
	config EnvironmentConfig
}

func New() (*Client, error) {
	errLogger := clientLogger.With().Caller().Logger()
	env, err := readEnvironment(&errLogger)
	if err != nil {
		return nil, err
	}
	return NewWithConfig(env)
}

func NewWithConfig(env EnvironmentConfig) (*Client, error) {
	sess, err := session.NewSession(createConfig(env))
	if err != nil {
		clientLogger.Error().Err(err).Msg("Could not initialize S3 session")
		return nil, err
	}
	clientLogger.Info().Str("bucket", env.BucketName).Msg("S3 session initialized")
	return &Client{sess: sess, config: env}, nil
}

// createConfig uses static credentials when both env keys are set and the
// default provider chain otherwise.
func createConfig(env EnvironmentConfig) *aws.Config {
	cfg := aws.NewConfig().
		WithRegion(env.Region).
		WithMaxRetries(4)
	if env.AccessKeyID != "" && env.AccessKey != "" {
		cfg = cfg.WithCredentials(credentials.NewStaticCredentials(env.AccessKeyID, env.AccessKey, ""))
	}
	if env.AwsEndpoint != "" {
		cfg = cfg.WithEndpoint(env.AwsEndpoint).WithS3ForcePathStyle(true)
	}
	return cfg
}

// ObjectKey places name under the configured prefix and run id.
func (client *Client) ObjectKey(runID string, name string) string {
	return path.Join(client.config.Prefix, runID, name)
}

func (client *Client) Upload(data []byte, key string) (*s3manager.UploadOutput, error) {
	return client.upload(bytes.NewReader(data), key)
}

func (client *Client) UploadFile(filePath string, key string) (*s3manager.UploadOutput, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	return client.upload(file, key)
}

func (client *Client) upload(body io.Reader, key string) (*s3manager.UploadOutput, error) {
	params := &s3manager.UploadInput{
		Bucket: aws.String(client.config.BucketName),
		Key:    aws.String(key),
		Body:   body,
	}
	uploadLogger := clientLogger.With().
		Str("key", key).
		Str("bucket", client.config.BucketName).Logger()
	sdkLog := sdkLogger.With().
		Str("key", key).
		Str("bucket", client.config.BucketName).Logger()

	uploader := s3manager.NewUploader(client.sess.Copy(&aws.Config{
		Logger:   getLogger(sdkLog),
		LogLevel: aws.LogLevel(aws.LogDebug),
	}))
	uploadLogger.Debug().Msg("Uploading the file")
	output, err := uploader.Upload(params)
	if err != nil {
		uploadLogger.Error().Err(err).Msg("Failed to upload file")
		return nil, fmt.Errorf("upload %s: %w", key, err)
	}
	return output, nil
}

func readEnvironment(errLogger *zerolog.Logger) (EnvironmentConfig, error) {
	var config EnvironmentConfig
	err := envconfig.Process("", &config)
	if err != nil {
		errLogger.Err(err).Msg("Got error while processing environment")
		return config, err
	}
	return config, nil
}

type s3Logger struct {
	sdkLogger zerolog.Logger
}

func getLogger(sdkLogger zerolog.Logger) *s3Logger {
	return &s3Logger{
		sdkLogger,
	}
}

func (logger *s3Logger) Log(v ...interface{}) {
	logger.sdkLogger.Debug().Msg(fmt.Sprint(v...))
}
