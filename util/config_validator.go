package util

import (
	"errors"
	"regexp"
	"strings"

	"github.com/hetianyi/fdfs/common"
	"github.com/hetianyi/fdfs/meta"
	"github.com/hetianyi/gox/convert"
	"github.com/hetianyi/gox/logger"
	"github.com/mitchellh/go-homedir"
)

var serverRegex = regexp.MustCompile(common.SERVER_PATTERN)

// ValidateClientConfig fills defaults and validates client config.
// Environment variables override trackers, secret key and log level.
func ValidateClientConfig(c *common.ClientConfig) error {
	if c == nil {
		return errors.New("no config provided")
	}
	ExchangeEnvValue(ENV_TRACKERS, func(envValue string) {
		c.Trackers = strings.Split(envValue, ",")
	})
	ExchangeEnvValue(ENV_SECRET_KEY, func(envValue string) {
		c.SecretKey = envValue
	})
	ExchangeEnvValue(ENV_LOG_LEVEL, func(envValue string) {
		c.LogLevel = envValue
	})

	c.LogLevel = strings.ToLower(c.LogLevel)
	if c.LogLevel != "trace" && c.LogLevel != "debug" && c.LogLevel != "info" &&
		c.LogLevel != "warn" && c.LogLevel != "error" && c.LogLevel != "fatal" {
		c.LogLevel = "info"
	}
	if c.NetworkTimeout < 0 {
		return errors.New("invalid network timeout " +
			convert.IntToStr(c.NetworkTimeout) + ", network timeout must not be negative")
	}
	if c.NetworkTimeout == 0 {
		c.NetworkTimeout = common.DEFAULT_NETWORK_TIMEOUT
	}
	if c.RetryInterval == 0 {
		c.RetryInterval = common.DEFAULT_RETRY_INTERVAL
	}
	if c.DialTimeout <= 0 {
		c.DialTimeout = common.DEFAULT_DIAL_TIMEOUT
	}
	if c.MaxConnectionsPerServer <= 0 {
		c.MaxConnectionsPerServer = common.DEFAULT_MAX_CONN_PER_SERVER
	}
	if c.Charset == "" {
		c.Charset = common.DEFAULT_CHARSET
	}
	if err := meta.CheckCharset(c.Charset); err != nil {
		return errors.New("invalid charset \"" + c.Charset + "\"")
	}
	if c.HttpAddress == "" {
		c.HttpAddress = common.DEFAULT_HTTP_ADDRESS
	}
	if c.JournalPath != "" {
		path, err := homedir.Expand(c.JournalPath)
		if err != nil {
			return err
		}
		c.JournalPath = path
	}

	servers, err := ParseServers(c.Trackers)
	if err != nil {
		return err
	}
	c.ParsedTrackers = servers
	if len(c.ParsedTrackers) == 0 {
		logger.Warn("client initialized but no tracker provided")
	}
	return nil
}

// ParseServers parses "host:port" strings, empty items are skipped.
func ParseServers(servers []string) ([]common.Server, error) {
	ret := make([]common.Server, 0, len(servers))
	for _, s := range servers {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		server, err := ParseServer(s)
		if err != nil {
			return nil, err
		}
		ret = append(ret, *server)
	}
	return ret, nil
}

// ParseServer parses a "host:port" string, a bare host uses DEFAULT_TRACKER_PORT.
func ParseServer(s string) (*common.Server, error) {
	if !strings.Contains(s, ":") {
		s = s + ":" + convert.IntToStr(common.DEFAULT_TRACKER_PORT)
	}
	if !serverRegex.MatchString(s) {
		return nil, errors.New("invalid server \"" + s + "\", server must match pattern " + common.SERVER_PATTERN)
	}
	m := serverRegex.FindStringSubmatch(s)
	port, err := convert.StrToInt(m[2])
	if err != nil {
		return nil, err
	}
	if port <= 0 || port > 65535 {
		return nil, errors.New("invalid port number " +
			convert.IntToStr(port) + ", port number must in the range of 1 to 65535")
	}
	return &common.Server{
		Host: m[1],
		Port: uint16(port),
	}, nil
}

func ConvertLogLevel(levelString string) logger.Level {
	levelString = strings.ToLower(levelString)
	switch levelString {
	case "trace":
		return logger.TraceLevel
	case "debug":
		return logger.DebugLevel
	case "info":
		return logger.InfoLevel
	case "warn":
		return logger.WarnLevel
	case "error":
		return logger.ErrorLevel
	case "fatal":
		return logger.FatalLevel
	default:
		return logger.InfoLevel
	}
}

// InitLogger initializes the console logger.
func InitLogger(level string) {
	logger.Init(&logger.Config{
		Level:              ConvertLogLevel(level),
		Write2File:         false,
		AlwaysWriteConsole: true,
	})
}
