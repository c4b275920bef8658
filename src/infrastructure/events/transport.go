package events

import (
	"fmt"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-amqp/pkg/amqp"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

// NewInProcess returns a pub/sub that delivers within this process. Events
// published while nothing is subscribed are discarded, so subscribers must
// be running before the first publish.
func NewInProcess(logger watermill.LoggerAdapter) *gochannel.GoChannel {
	return gochannel.NewGoChannel(gochannel.Config{
		OutputChannelBuffer: 256,
	}, logger)
}

func NewAMQPPublisher(url string, logger watermill.LoggerAdapter) (*amqp.Publisher, error) {
	publisher, err := amqp.NewPublisher(amqp.NewDurableQueueConfig(url), logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create amqp publisher: %w", err)
	}
	return publisher, nil
}

func NewAMQPSubscriber(url string, logger watermill.LoggerAdapter) (*amqp.Subscriber, error) {
	config := amqp.NewDurableQueueConfig(url)
	config.Consume.NoRequeueOnNack = true
	subscriber, err := amqp.NewSubscriber(config, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create amqp subscriber: %w", err)
	}
	return subscriber, nil
}
