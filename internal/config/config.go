package config

import (
	"fmt"
	"sort"
	"strings"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

// ServiceConfig defines all of the service configuration parameters
type ServiceConfig struct {
	Registry        string            // the registry bucket name
	Region          string            // the region we want images for
	Architectures   map[string]string // provider architecture label -> registry label
	IgnoredReleases []string          // release version prefixes we ignore
	LogLevel        string
	LogFormat       string

	// queue polling only
	InQueueName string
	PollTimeOut int64
}

// configuration keys and the environment variables they are bound to
const (
	KeyRegistry        = "registry"
	KeyRegion          = "region"
	KeyArchitectures   = "architectures"
	KeyIgnoredReleases = "ignored-releases"
	KeyLogLevel        = "log-level"
	KeyLogFormat       = "log-format"
	KeyInQueue         = "inqueue"
	KeyPollTimeout     = "poll-timeout"
)

var environment = map[string]string{
	KeyRegistry:        "AMI_REGISTRY",
	KeyRegion:          "TARGET_REGION",
	KeyArchitectures:   "ARCHITECTURES",
	KeyIgnoredReleases: "IGNORED_RELEASES",
	KeyLogLevel:        "LOG_LEVEL",
	KeyLogFormat:       "LOG_FORMAT",
	KeyInQueue:         "IN_QUEUE",
	KeyPollTimeout:     "POLL_TIMEOUT",
}

// the FreeBSD project still publishes 11.x images but we no longer support them
var (
	DefaultRegion          = "us-west-1"
	DefaultArchitectures   = map[string]string{"x86_64": "amd64", "arm64": "arm64"}
	DefaultIgnoredReleases = []string{"11."}
)

// NewViper returns a viper instance with our defaults and environment bindings
func NewViper() *viper.Viper {

	v := viper.New()
	v.SetDefault(KeyRegion, DefaultRegion)
	v.SetDefault(KeyArchitectures, DefaultArchitectures)
	v.SetDefault(KeyIgnoredReleases, DefaultIgnoredReleases)
	v.SetDefault(KeyLogLevel, "info")
	v.SetDefault(KeyLogFormat, "json")
	v.SetDefault(KeyPollTimeout, 20)

	for key, env := range environment {
		// only fails when no key is given
		_ = v.BindEnv(key, env)
	}
	return v
}

// LoadConfiguration will load the service configuration from env/cmdline
// and return a pointer to it.
func LoadConfiguration(v *viper.Viper) (*ServiceConfig, error) {

	cfg := ServiceConfig{
		Registry:        v.GetString(KeyRegistry),
		Region:          v.GetString(KeyRegion),
		Architectures:   v.GetStringMapString(KeyArchitectures),
		IgnoredReleases: v.GetStringSlice(KeyIgnoredReleases),
		LogLevel:        v.GetString(KeyLogLevel),
		LogFormat:       v.GetString(KeyLogFormat),
		InQueueName:     v.GetString(KeyInQueue),
		PollTimeOut:     v.GetInt64(KeyPollTimeout),
	}

	if len(cfg.Registry) == 0 {
		return nil, errors.Errorf("%s cannot be blank", environment[KeyRegistry])
	}

	if len(cfg.Region) == 0 {
		return nil, errors.Errorf("%s cannot be blank", environment[KeyRegion])
	}

	if len(cfg.Architectures) == 0 {
		return nil, errors.Errorf("%s cannot be empty", environment[KeyArchitectures])
	}

	for label, arch := range cfg.Architectures {
		if len(arch) == 0 || strings.Contains(arch, "/") {
			return nil, errors.Errorf("invalid registry architecture for %s (%q)", label, arch)
		}
	}

	if _, err := logrus.ParseLevel(cfg.LogLevel); err != nil {
		return nil, errors.Wrap(err, environment[KeyLogLevel])
	}

	return &cfg, nil
}

// ValidateInbound checks the settings needed to poll a queue
func (cfg *ServiceConfig) ValidateInbound() error {

	if len(cfg.InQueueName) == 0 {
		return errors.Errorf("%s cannot be blank", environment[KeyInQueue])
	}

	if cfg.PollTimeOut <= 0 || cfg.PollTimeOut > 20 {
		return errors.Errorf("%s must be between 1 and 20 seconds", environment[KeyPollTimeout])
	}
	return nil
}

// Log writes the configuration to the supplied logger
func (cfg *ServiceConfig) Log(log logrus.FieldLogger) {

	labels := make([]string, 0, len(cfg.Architectures))
	for label := range cfg.Architectures {
		labels = append(labels, label)
	}
	sort.Strings(labels)

	archs := make([]string, 0, len(labels))
	for _, label := range labels {
		archs = append(archs, fmt.Sprintf("%s=%s", label, cfg.Architectures[label]))
	}

	log.Infof("[CONFIG] Registry             = [%s]", cfg.Registry)
	log.Infof("[CONFIG] Region               = [%s]", cfg.Region)
	log.Infof("[CONFIG] Architectures        = [%s]", strings.Join(archs, ","))
	log.Infof("[CONFIG] IgnoredReleases      = [%s]", strings.Join(cfg.IgnoredReleases, ","))
	log.Infof("[CONFIG] LogLevel             = [%s]", cfg.LogLevel)
	if len(cfg.InQueueName) != 0 {
		log.Infof("[CONFIG] InQueueName          = [%s]", cfg.InQueueName)
		log.Infof("[CONFIG] PollTimeOut          = [%d]", cfg.PollTimeOut)
	}
}

//
// end of file
//
