package util

import (
	"io/ioutil"

	"github.com/hetianyi/gox/file"
	json "github.com/json-iterator/go"
	"github.com/mitchellh/go-homedir"
)

// LoadConfig loads config from config file, "~" is expanded to the home directory.
func LoadConfig(c string, container interface{}) error {
	path, err := homedir.Expand(c)
	if err != nil {
		return err
	}
	cf, err := file.GetFile(path)
	if err != nil {
		return err
	}
	defer cf.Close()
	bs, err := ioutil.ReadAll(cf)
	if err != nil {
		return err
	}
	return json.Unmarshal(bs, container)
}

// WriteConfig writes config to file.
func WriteConfig(c string, container interface{}) error {
	path, err := homedir.Expand(c)
	if err != nil {
		return err
	}
	cf, err := file.CreateFile(path)
	if err != nil {
		return err
	}
	defer cf.Close()
	bs, err := json.MarshalIndent(container, "", "  ")
	if err != nil {
		return err
	}
	_, err = cf.Write(bs)
	return err
}
