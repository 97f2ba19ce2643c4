package dispatch

import (
	"context"

	"github.com/aws/aws-lambda-go/events"
	"github.com/openzfs/freebsd-ami-registry/internal/announce"
	"github.com/openzfs/freebsd-ami-registry/internal/registry"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// Dispatcher applies the announcement filter to a batch of notifications and
// writes the results into the registry
type Dispatcher struct {
	filter *announce.Filter
	store  registry.Store
	log    logrus.FieldLogger
}

// New creates a dispatcher writing the filtered announcements into store
func New(filter *announce.Filter, store registry.Store, log logrus.FieldLogger) *Dispatcher {
	return &Dispatcher{filter: filter, store: store, log: log}
}

// HandleSNSEvent is the lambda entry point for notifications delivered by SNS
func (d *Dispatcher) HandleSNSEvent(ctx context.Context, event events.SNSEvent) error {

	payloads := make([]string, 0, len(event.Records))
	for _, rec := range event.Records {
		payloads = append(payloads, rec.SNS.Message)
	}
	return d.Handle(ctx, payloads)
}

// Handle processes a batch of announcement payloads. Every payload is filtered before
// anything is written so a malformed payload fails the batch without side effects.
// All writes are issued concurrently and the first failure is returned once they
// have all completed.
func (d *Dispatcher) Handle(ctx context.Context, payloads []string) error {

	requests := make([]announce.WriteRequest, 0)
	for ix, payload := range payloads {
		reqs, err := d.filter.Filter(payload)
		if err != nil {
			d.log.WithError(err).WithField("payload", payload).Errorf("notification %d is not a recognized announcement", ix)
			return errors.Wrapf(err, "notification %d", ix)
		}
		requests = append(requests, reqs...)
	}

	if len(requests) == 0 {
		d.log.Infof("not an interesting batch (%d notifications), ignoring it", len(payloads))
		return nil
	}

	d.log.Infof("updating %d registry entries from %d notifications", len(requests), len(payloads))

	// siblings are not cancelled when one write fails
	var g errgroup.Group
	for _, req := range requests {
		req := req
		g.Go(func() error {
			return d.store.Put(ctx, req.Key, req.Body, req.ContentType)
		})
	}

	if err := g.Wait(); err != nil {
		d.log.WithError(err).Error("registry update failed")
		return err
	}
	return nil
}

//
// end of file
//
