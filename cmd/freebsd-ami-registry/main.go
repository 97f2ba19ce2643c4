package main

import (
	"os"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/openzfs/freebsd-ami-registry/internal/announce"
	"github.com/openzfs/freebsd-ami-registry/internal/config"
	"github.com/openzfs/freebsd-ami-registry/internal/dispatch"
	"github.com/openzfs/freebsd-ami-registry/internal/logging"
	"github.com/openzfs/freebsd-ami-registry/internal/registry"
)

//
// main entry point, invoked by lambda for each batch of SNS notifications
//
func main() {

	// Get config params and use them to init service context. Any issues are fatal
	cfg, err := config.LoadConfiguration(config.NewViper())
	if err != nil {
		logging.NewLogger(os.Stderr, "info", "json").WithError(err).Fatal("loading configuration")
	}

	log := logging.NewLogger(os.Stderr, cfg.LogLevel, cfg.LogFormat)
	log.Infof("===> %s starting up <===", os.Args[0])
	cfg.Log(log)

	sess, err := session.NewSession()
	if err != nil {
		log.WithError(err).Fatal("creating AWS session")
	}

	filter := announce.NewFilter(cfg.Region, cfg.Architectures, cfg.IgnoredReleases)
	store := registry.NewS3Store(sess, cfg.Registry, log)
	dispatcher := dispatch.New(filter, store, log)

	lambda.Start(dispatcher.HandleSNSEvent)
}

//
// end of file
//
