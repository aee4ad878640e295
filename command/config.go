package command

import (
	"strings"

	"github.com/hetianyi/fdfs/common"
	"github.com/hetianyi/fdfs/util"
	"github.com/hetianyi/gox/file"
	"github.com/hetianyi/gox/logger"
	"github.com/mitchellh/go-homedir"
	"github.com/pkg/errors"
)

const (
	DEFAULT_CONFIG_FILE  = "~/.fdfs/client.json"
	DEFAULT_JOURNAL_FILE = "~/.fdfs/journal.db"
)

var clientConfig *common.ClientConfig

// ConfigAssembly loads the config file, applies command line overrides
// and initializes the logger.
func ConfigAssembly() error {
	c := &common.ClientConfig{}
	path := configFile
	if path == "" {
		path = DEFAULT_CONFIG_FILE
	}
	expanded, err := homedir.Expand(path)
	if err != nil {
		return err
	}
	if file.Exists(expanded) {
		if err := util.LoadConfig(expanded, c); err != nil {
			return errors.Wrapf(err, "load config %s", expanded)
		}
	} else if configFile != "" {
		return errors.New("config file \"" + configFile + "\" not found")
	}

	if trackers != "" {
		c.Trackers = strings.Split(trackers, ",")
	}
	if logLevel != "" {
		c.LogLevel = logLevel
	}
	if timeout > 0 {
		c.NetworkTimeout = timeout
	}
	if secret != "" {
		c.SecretKey = secret
	}
	if journalPath != "" {
		c.JournalPath = journalPath
	}
	if c.JournalPath == "" {
		c.JournalPath = DEFAULT_JOURNAL_FILE
	}
	if httpAddress != "" {
		c.HttpAddress = httpAddress
	}

	if err := util.ValidateClientConfig(c); err != nil {
		return err
	}
	util.InitLogger(c.LogLevel)
	logger.Debug("using trackers ", strings.Join(c.Trackers, ","))
	clientConfig = c
	return nil
}
