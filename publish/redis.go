package publish

import (
	"hpoannotqc.org/hpoa/redis"
)

type reportStore interface {
	lock(name string) (redis.ReleaseLock, error)
	latestReport() ([]byte, bool, error)
	saveReport(doc []byte) error
	close()
}

type redisClientWrapper struct {
	client      *redis.Client
	historySize int64
}

func (wrapper *redisClientWrapper) close() {
	_ = wrapper.client.Close()
}

func (wrapper *redisClientWrapper) lock(name string) (redis.ReleaseLock, error) {
	return wrapper.client.Lock(name)
}

func (wrapper *redisClientWrapper) latestReport() ([]byte, bool, error) {
	return wrapper.client.Get(wrapper.client.Key("report", "latest"))
}

func (wrapper *redisClientWrapper) saveReport(doc []byte) error {
	if err := wrapper.client.Set(wrapper.client.Key("report", "latest"), doc); err != nil {
		return err
	}
	return wrapper.client.PushHistory(wrapper.client.Key("report", "history"), doc, wrapper.historySize)
}
