package command

import (
	"errors"
	"fmt"
	"os"

	"github.com/hetianyi/fdfs/common"
	"github.com/urfave/cli"
)

// Parse parses command flags using `github.com/urfave/cli`
func Parse(arguments []string) {
	appFlag := cli.NewApp()
	appFlag.Version = common.VERSION
	appFlag.HideVersion = true
	appFlag.Name = "fdfs"
	appFlag.Usage = "fdfs client"
	appFlag.HelpName = "fdfs"

	appFlag.Flags = []cli.Flag{
		cli.BoolFlag{
			Name:        "version, v",
			Usage:       `show version`,
			Destination: &showVersion,
		},
		cli.StringFlag{
			Name:        "config, c",
			Value:       "",
			Usage:       "use custom config file",
			Destination: &configFile,
		},
		cli.StringFlag{
			Name:  "trackers",
			Value: "",
			Usage: `set tracker servers, example:
	host1:port1,host2:port2`,
			Destination: &trackers,
		},
		cli.StringFlag{
			Name:  "log-level",
			Value: "",
			Usage: `set log level, available options:
	(trace|debug|info|warn|error|fatal)`,
			Destination: &logLevel,
		},
		cli.IntFlag{
			Name:        "timeout",
			Value:       0,
			Usage:       "network timeout of one upload in milliseconds",
			Destination: &timeout,
		},
		cli.StringFlag{
			Name:        "journal",
			Value:       "",
			Usage:       "upload journal file",
			Destination: &journalPath,
		},
	}

	appFlag.Commands = []cli.Command{
		{
			Name:      "upload",
			Usage:     "upload local files",
			ArgsUsage: "<file1> [file2 ...]",
			Action: func(c *cli.Context) error {
				if c.NArg() == 0 {
					return errors.New("no file to upload")
				}
				for _, f := range c.Args() {
					uploadFiles.PushBack(f)
				}
				finalCommand = CMD_UPLOAD_FILE
				return nil
			},
			Flags: []cli.Flag{
				cli.StringFlag{
					Name:        "group, g",
					Value:       "",
					Usage:       "upload group, empty lets the tracker choose",
					Destination: &uploadGroup,
				},
				cli.StringFlag{
					Name:        "ext, e",
					Value:       "",
					Usage:       "file extension, defaults to the extension of each file",
					Destination: &uploadExt,
				},
				cli.BoolFlag{
					Name:        "no-journal",
					Usage:       "do not record uploads in the journal",
					Destination: &noJournal,
				},
			},
		},
		{
			Name:      "token",
			Usage:     "compute access token of a file",
			ArgsUsage: "<fileId>",
			Action: func(c *cli.Context) error {
				if c.NArg() != 1 {
					return errors.New("token requires exactly one file id")
				}
				tokenFileId = c.Args().First()
				finalCommand = CMD_ACCESS_TOKEN
				return nil
			},
			Flags: []cli.Flag{
				cli.Int64Flag{
					Name:        "ts",
					Value:       0,
					Usage:       "unix timestamp, defaults to now",
					Destination: &tokenTs,
				},
				cli.StringFlag{
					Name:        "secret, s",
					Value:       "",
					Usage:       "secret key, overrides the config file",
					Destination: &secret,
				},
			},
		},
		{
			Name:  "history",
			Usage: "list recorded uploads",
			Action: func(c *cli.Context) error {
				finalCommand = CMD_HISTORY
				return nil
			},
			Flags: []cli.Flag{
				cli.IntFlag{
					Name:        "limit, n",
					Value:       0,
					Usage:       "max records to show, 0 shows all",
					Destination: &historyLimit,
				},
			},
		},
		{
			Name:  "serve",
			Usage: "start the http upload gateway",
			Action: func(c *cli.Context) error {
				finalCommand = CMD_SERVE
				return nil
			},
			Flags: []cli.Flag{
				cli.StringFlag{
					Name:        "http-address",
					Value:       "",
					Usage:       "gateway listening address",
					Destination: &httpAddress,
				},
			},
		},
	}

	appFlag.Action = func(c *cli.Context) error {
		if showVersion {
			cli.ShowVersion(c)
			os.Exit(0)
			return nil
		}
		cli.ShowAppHelp(c)
		os.Exit(0)
		return nil
	}

	err := appFlag.Run(arguments)
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
		return
	}

	if finalCommand == CMD_SHOW_HELP {
		os.Exit(0)
	}

	if err := call(finalCommand); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
