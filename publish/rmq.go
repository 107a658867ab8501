package publish

import (
	"hpoannotqc.org/hpoa/rmq"
)

type notifier interface {
	notify(notice Notification) error
	close()
}

type rmqClientWrapper struct {
	rmqClient *rmq.Client
}

func (wrapper *rmqClientWrapper) close() {
	wrapper.rmqClient.Close()
}

func (wrapper *rmqClientWrapper) notify(notice Notification) error {
	body, err := notice.body()
	if err != nil {
		return err
	}
	return wrapper.rmqClient.PublishJSON(body)
}
