package publish

import (
	"hpoannotqc.org/hpoa/redis"
	"errors"
)

type failingMethod struct {
	fail bool
}

type withValue struct {
	fail          bool
	returnedValue []byte
}

type redisMock struct {
	config redisMockConfig
	calls  redisMockCalls
	saved  []byte
}

type redisMockConfig struct {
	lock         failingMethod
	latestReport withValue
	saveReport   failingMethod
}

type redisMockCalls struct {
	lock         bool
	release      bool
	latestReport bool
	saveReport   bool
}

type s3Mock struct {
	config s3MockConfig
	calls  s3MockCalls
}

type s3MockConfig struct {
	uploadFile failingMethod
	uploadData failingMethod
}

type s3MockCalls struct {
	uploadFile bool
	uploadData bool
}

type rmqMock struct {
	config rmqMockConfig
	calls  rmqMockCalls
	notice Notification
}

type rmqMockConfig struct {
	notify failingMethod
}

type rmqMockCalls struct {
	notify bool
}

func (mock *redisMock) close() {}

func (mock *s3Mock) close() {}

func (mock *rmqMock) close() {}

func (mock *redisMock) lock(name string) (redis.ReleaseLock, error) {
	mock.calls.lock = true
	if mock.config.lock.fail {
		return nil, errors.New("failed to obtain lock")
	}
	return func() error {
		mock.calls.release = true
		return nil
	}, nil
}

func (mock *redisMock) latestReport() ([]byte, bool, error) {
	mock.calls.latestReport = true
	if mock.config.latestReport.fail {
		return nil, false, errors.New("failed to read report")
	}
	if mock.config.latestReport.returnedValue == nil {
		return nil, false, nil
	}
	return mock.config.latestReport.returnedValue, true, nil
}

func (mock *redisMock) saveReport(doc []byte) error {
	mock.calls.saveReport = true
	if mock.config.saveReport.fail {
		return errors.New("failed to save report")
	}
	mock.saved = doc
	return nil
}

func (mock *s3Mock) uploadFile(runID string, path string, name string) (string, error) {
	mock.calls.uploadFile = true
	if mock.config.uploadFile.fail {
		return "", errors.New("failed to upload file")
	}
	return "hpoa/" + runID + "/" + name, nil
}

func (mock *s3Mock) uploadData(runID string, data []byte, name string) (string, error) {
	mock.calls.uploadData = true
	if mock.config.uploadData.fail {
		return "", errors.New("failed to upload data")
	}
	return "hpoa/" + runID + "/" + name, nil
}

func (mock *rmqMock) notify(notice Notification) error {
	mock.calls.notify = true
	if mock.config.notify.fail {
		return errors.New("failed to publish")
	}
	mock.notice = notice
	return nil
}
