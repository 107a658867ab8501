package publish

import (
	"hpoannotqc.org/hpoa/s3client"
)

const reportObjectName = "report.json"

type artifactStore interface {
	uploadFile(runID string, path string, name string) (string, error)
	uploadData(runID string, data []byte, name string) (string, error)
	close()
}

type s3ClientWrapper struct {
	s3Client *s3client.Client
}

func (wrapper *s3ClientWrapper) close() {}

func (wrapper *s3ClientWrapper) uploadFile(runID string, path string, name string) (string, error) {
	key := wrapper.s3Client.ObjectKey(runID, name)
	_, err := wrapper.s3Client.UploadFile(path, key)
	return key, err
}

func (wrapper *s3ClientWrapper) uploadData(runID string, data []byte, name string) (string, error) {
	key := wrapper.s3Client.ObjectKey(runID, name)
	_, err := wrapper.s3Client.Upload(data, key)
	return key, err
}
