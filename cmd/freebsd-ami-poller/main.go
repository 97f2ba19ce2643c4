package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/openzfs/freebsd-ami-registry/internal/announce"
	"github.com/openzfs/freebsd-ami-registry/internal/config"
	"github.com/openzfs/freebsd-ami-registry/internal/dispatch"
	"github.com/openzfs/freebsd-ami-registry/internal/inbound"
	"github.com/openzfs/freebsd-ami-registry/internal/logging"
	"github.com/openzfs/freebsd-ami-registry/internal/registry"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/uvalib/virgo4-sqs-sdk/awssqs"
)

//
// main entry point
//
func main() {
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {

	v := config.NewViper()
	v.SetDefault(config.KeyLogFormat, "text")

	cmd := &cobra.Command{
		Use:          "freebsd-ami-poller",
		Short:        "Update the FreeBSD AMI registry from an SQS queue subscribed to the FreeBSD AMI topic",
		Version:      Version(),
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), v)
		},
	}

	flags := cmd.Flags()
	flags.String(config.KeyRegistry, "", "Registry bucket name")
	flags.String(config.KeyRegion, config.DefaultRegion, "Region to record images for")
	flags.StringToString(config.KeyArchitectures, config.DefaultArchitectures, "Architecture label mapping (provider=registry)")
	flags.StringSlice(config.KeyIgnoredReleases, config.DefaultIgnoredReleases, "Release version prefixes to ignore")
	flags.String(config.KeyLogLevel, "info", "Log level")
	flags.String(config.KeyLogFormat, "text", "Log format (text or json)")
	flags.String(config.KeyInQueue, "", "Inbound queue name")
	flags.Int64(config.KeyPollTimeout, 20, "Poll timeout in seconds")

	// only fails on a nil flag set
	_ = v.BindPFlags(flags)

	return cmd
}

func run(ctx context.Context, v *viper.Viper) error {

	// Get config params and use them to init service context
	cfg, err := config.LoadConfiguration(v)
	if err != nil {
		return err
	}
	if err = cfg.ValidateInbound(); err != nil {
		return err
	}

	log := logging.NewLogger(os.Stdout, cfg.LogLevel, cfg.LogFormat)
	log.Infof("===> %s service staring up (version: %s) <===", os.Args[0], Version())
	cfg.Log(log)

	// load our AWS sqs helper object
	aws, err := awssqs.NewAwsSqs(awssqs.AwsSqsConfig{})
	if err != nil {
		return errors.Wrap(err, "creating SQS client")
	}

	// get the queue handle from the queue name
	inQueueHandle, err := aws.QueueHandle(cfg.InQueueName)
	if err != nil {
		return errors.Wrapf(err, "locating queue %s", cfg.InQueueName)
	}

	sess, err := session.NewSession()
	if err != nil {
		return errors.Wrap(err, "creating AWS session")
	}

	filter := announce.NewFilter(cfg.Region, cfg.Architectures, cfg.IgnoredReleases)
	store := registry.NewS3Store(sess, cfg.Registry, log)
	dispatcher := dispatch.New(filter, store, log)

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	poller := inbound.NewPoller(aws, inQueueHandle, dispatcher, time.Duration(cfg.PollTimeOut)*time.Second, log)
	err = poller.Run(ctx)
	log.Infof("===> %s service shutting down <===", os.Args[0])
	return err
}

//
// end of file
//
