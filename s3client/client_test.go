package s3client

import (
	"testing"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/stretchr/testify/require"
)

func TestCreateConfig(t *testing.T) {
	t.Run("Default chain", func(t *testing.T) {
		cfg := createConfig(EnvironmentConfig{Region: "eu-west-1"})
		require.Equal(t, "eu-west-1", aws.StringValue(cfg.Region))
		require.Nil(t, cfg.Credentials)
		require.Nil(t, cfg.Endpoint)
	})
	t.Run("Custom endpoint", func(t *testing.T) {
		cfg := createConfig(EnvironmentConfig{
			Region:      "us-east-1",
			AwsEndpoint: "http://localhost:9000",
			AccessKeyID: "id",
			AccessKey:   "key",
		})
		require.Equal(t, "http://localhost:9000", aws.StringValue(cfg.Endpoint))
		require.True(t, aws.BoolValue(cfg.S3ForcePathStyle))
		creds, err := cfg.Credentials.Get()
		require.NoError(t, err)
		require.Equal(t, "id", creds.AccessKeyID)
		require.Equal(t, "key", creds.SecretAccessKey)
	})
}

func TestObjectKey(t *testing.T) {
	client, err := NewWithConfig(EnvironmentConfig{BucketName: "bucket", Region: "us-east-1", Prefix: "hpoa"})
	require.NoError(t, err)
	require.Equal(t, "hpoa/run-1/phenotype.hpoa", client.ObjectKey("run-1", "phenotype.hpoa"))
}
