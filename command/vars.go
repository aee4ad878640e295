package command

import "container/list"

const (
	CMD_SHOW_HELP Command = iota
	CMD_UPLOAD_FILE
	CMD_ACCESS_TOKEN
	CMD_HISTORY
	CMD_SERVE
)

type Command uint32

// var sets
var (
	showVersion  bool      // show app version
	configFile   string    // specified config file to be use
	trackers     string    // tracker servers
	logLevel     string    // log level(trace, debug, info, warn, error, fatal)
	timeout      int       // network timeout in milliseconds
	secret       string    // secret used by access token
	journalPath  string    // upload journal location
	uploadGroup  string    // upload group
	uploadExt    string    // custom extension of uploaded files
	noJournal    bool      // do not record uploads
	uploadFiles  list.List // files to be uploaded
	tokenFileId  string    // file id of access token
	tokenTs      int64     // unix timestamp of access token
	historyLimit int       // max records shown by history
	httpAddress  string    // gateway listening address
)

var finalCommand Command
