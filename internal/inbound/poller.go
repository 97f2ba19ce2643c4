package inbound

import (
	"context"
	"encoding/json"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/uvalib/virgo4-sqs-sdk/awssqs"
)

// Queue is the part of the SQS helper we use
type Queue interface {
	BatchMessageGet(awssqs.QueueHandle, uint, time.Duration) ([]awssqs.Message, error)
	BatchMessageDelete(awssqs.QueueHandle, []awssqs.Message) ([]awssqs.OpStatus, error)
}

// Handler processes a batch of announcement payloads
type Handler interface {
	Handle(ctx context.Context, payloads []string) error
}

// Poller reads announcements from an SQS queue subscribed to the FreeBSD AMI topic
type Poller struct {
	queue       Queue
	handle      awssqs.QueueHandle
	handler     Handler
	pollTimeOut time.Duration
	log         logrus.FieldLogger
}

// NewPoller creates a poller reading the queue identified by handle
func NewPoller(queue Queue, handle awssqs.QueueHandle, handler Handler, pollTimeOut time.Duration, log logrus.FieldLogger) *Poller {
	return &Poller{queue: queue, handle: handle, handler: handler, pollTimeOut: pollTimeOut, log: log}
}

// Run polls until the context is cancelled or the queue cannot be read
func (p *Poller) Run(ctx context.Context) error {

	for {
		if err := ctx.Err(); err != nil {
			return nil
		}

		_, err := p.PollOnce(ctx)
		if err != nil {
			return err
		}
	}
}

// PollOnce receives one block of messages, processes each of them and deletes the ones
// that were handled. Messages that fail are left on the queue for redelivery. The
// returned error is only set when the queue itself fails.
func (p *Poller) PollOnce(ctx context.Context) (int, error) {

	messages, err := p.queue.BatchMessageGet(p.handle, uint(awssqs.MAX_SQS_BLOCK_COUNT), p.pollTimeOut)
	if err != nil {
		return 0, errors.Wrap(err, "receiving notifications")
	}

	// did we get anything to process
	if len(messages) == 0 {
		p.log.Debug("no notifications...")
		return 0, nil
	}

	p.log.Infof("received %d new notifications", len(messages))

	var failures error
	processed := make([]awssqs.Message, 0, len(messages))
	for ix, m := range messages {
		payload := decodeNotification(m)
		if err := p.handler.Handle(ctx, []string{payload}); err != nil {
			failures = multierror.Append(failures, errors.Wrapf(err, "message %d", ix))
			continue
		}
		processed = append(processed, m)
	}

	if failures != nil {
		p.log.WithError(failures).Errorf("%d notifications failed, leaving them for redelivery", len(messages)-len(processed))
	}

	if len(processed) == 0 {
		return 0, nil
	}

	opStatus, err := p.queue.BatchMessageDelete(p.handle, processed)
	if err != nil {
		// individual failures are reported in the status
		p.log.WithError(err).Error("deleting processed notifications")
	}

	// check the operation results
	for ix, op := range opStatus {
		if op == false {
			p.log.Errorf("message %d failed to delete", ix)
		}
	}

	return len(processed), nil
}

// the queue receives the SNS envelope unless raw message delivery is enabled on the
// subscription, in which case the body is the announcement itself
func decodeNotification(message awssqs.Message) string {

	var envelope events.SNSEntity
	if err := json.Unmarshal([]byte(message.Payload), &envelope); err == nil && envelope.Type == "Notification" {
		return envelope.Message
	}
	return string(message.Payload)
}

//
// end of file
//
