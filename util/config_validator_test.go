package util

import (
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"

	"github.com/hetianyi/fdfs/common"
	"github.com/hetianyi/gox/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	logger.Init(&logger.Config{
		Level: logger.FatalLevel,
	})
}

func TestParseServers(t *testing.T) {
	servers, err := ParseServers([]string{"192.168.1.10:22122", " tracker.local:22123 ", ""})
	require.NoError(t, err)
	assert.Equal(t, []common.Server{
		{Host: "192.168.1.10", Port: 22122},
		{Host: "tracker.local", Port: 22123},
	}, servers)

	servers, err = ParseServers([]string{"no-port"})
	require.NoError(t, err)
	assert.Equal(t, []common.Server{{Host: "no-port", Port: common.DEFAULT_TRACKER_PORT}}, servers)
	_, err = ParseServers([]string{"host:"})
	assert.Error(t, err)
	_, err = ParseServers([]string{"host:99999"})
	assert.Error(t, err)
	_, err = ParseServers([]string{"host:0"})
	assert.Error(t, err)
}

func TestValidateClientConfigDefaults(t *testing.T) {
	os.Unsetenv(ENV_TRACKERS)
	os.Unsetenv(ENV_SECRET_KEY)
	os.Unsetenv(ENV_LOG_LEVEL)

	c := &common.ClientConfig{
		Trackers: []string{"127.0.0.1:22122"},
		LogLevel: "VERBOSE",
	}
	require.NoError(t, ValidateClientConfig(c))
	assert.Equal(t, "info", c.LogLevel)
	assert.Equal(t, common.DEFAULT_NETWORK_TIMEOUT, c.NetworkTimeout)
	assert.Equal(t, common.DEFAULT_RETRY_INTERVAL, c.RetryInterval)
	assert.Equal(t, common.DEFAULT_MAX_CONN_PER_SERVER, c.MaxConnectionsPerServer)
	assert.Equal(t, common.DEFAULT_CHARSET, c.Charset)
	assert.Equal(t, []common.Server{{Host: "127.0.0.1", Port: 22122}}, c.ParsedTrackers)

	assert.Error(t, ValidateClientConfig(nil))
	assert.Error(t, ValidateClientConfig(&common.ClientConfig{NetworkTimeout: -1}))
	assert.Error(t, ValidateClientConfig(&common.ClientConfig{Charset: "klingon"}))
}

func TestValidateClientConfigEnv(t *testing.T) {
	os.Setenv(ENV_TRACKERS, "10.0.0.1:22122,10.0.0.2:22122")
	os.Setenv(ENV_SECRET_KEY, "s3cret")
	defer os.Unsetenv(ENV_TRACKERS)
	defer os.Unsetenv(ENV_SECRET_KEY)

	c := &common.ClientConfig{Trackers: []string{"127.0.0.1:22122"}}
	require.NoError(t, ValidateClientConfig(c))
	assert.Len(t, c.ParsedTrackers, 2)
	assert.Equal(t, "s3cret", c.SecretKey)
}

func TestLoadAndWriteConfig(t *testing.T) {
	dir, err := ioutil.TempDir("", "fdfs-config")
	require.NoError(t, err)
	defer os.RemoveAll(dir)
	path := filepath.Join(dir, "client.json")

	c := &common.ClientConfig{
		Trackers:       []string{"127.0.0.1:22122"},
		NetworkTimeout: 5000,
		SecretKey:      "key",
	}
	require.NoError(t, WriteConfig(path, c))

	loaded := &common.ClientConfig{}
	require.NoError(t, LoadConfig(path, loaded))
	assert.Equal(t, c.Trackers, loaded.Trackers)
	assert.Equal(t, 5000, loaded.NetworkTimeout)
	assert.Equal(t, "key", loaded.SecretKey)

	assert.Error(t, LoadConfig(filepath.Join(dir, "missing.json"), loaded))
}

func TestConvertLogLevel(t *testing.T) {
	assert.Equal(t, logger.DebugLevel, ConvertLogLevel("DEBUG"))
	assert.Equal(t, logger.InfoLevel, ConvertLogLevel("whatever"))
}
