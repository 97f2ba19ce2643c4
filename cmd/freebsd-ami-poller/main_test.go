package main

import (
	"io/ioutil"
	"testing"

	"github.com/openzfs/freebsd-ami-registry/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommandRequiresRegistry(t *testing.T) {
	t.Setenv("AMI_REGISTRY", "")
	cmd := newRootCommand()
	cmd.SetArgs([]string{"--inqueue", "freebsd-ami"})
	cmd.SetOut(ioutil.Discard)
	cmd.SetErr(ioutil.Discard)

	err := cmd.Execute()
	require.Error(t, err)
	assert.Equal(t, "AMI_REGISTRY cannot be blank", err.Error())
}

func TestRootCommandRequiresQueue(t *testing.T) {
	t.Setenv("IN_QUEUE", "")
	cmd := newRootCommand()
	cmd.SetArgs([]string{"--registry", "bucket"})
	cmd.SetOut(ioutil.Discard)
	cmd.SetErr(ioutil.Discard)

	err := cmd.Execute()
	require.Error(t, err)
	assert.Equal(t, "IN_QUEUE cannot be blank", err.Error())
}

func TestFlagsOverrideDefaults(t *testing.T) {
	v := config.NewViper()
	cmd := newRootCommand()
	require.NoError(t, v.BindPFlags(cmd.Flags()))
	require.NoError(t, cmd.ParseFlags([]string{
		"--registry", "bucket",
		"--region", "eu-north-1",
		"--architectures", "x86_64=amd64",
		"--ignored-releases", "10.,11.",
		"--inqueue", "freebsd-ami",
		"--poll-timeout", "10",
	}))

	cfg, err := config.LoadConfiguration(v)
	require.NoError(t, err)
	assert.Equal(t, "bucket", cfg.Registry)
	assert.Equal(t, "eu-north-1", cfg.Region)
	assert.Equal(t, map[string]string{"x86_64": "amd64"}, cfg.Architectures)
	assert.Equal(t, []string{"10.", "11."}, cfg.IgnoredReleases)
	assert.Equal(t, "freebsd-ami", cfg.InQueueName)
	assert.Equal(t, int64(10), cfg.PollTimeOut)
	assert.NoError(t, cfg.ValidateInbound())
}

func TestVersion(t *testing.T) {
	assert.Equal(t, version, Version())
	assert.Equal(t, Version(), newRootCommand().Version)
}

//
// end of file
//
