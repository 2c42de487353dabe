// Package util contains helpers shared by the condorsub commands.
package util

import (
	"strings"

	"github.com/imdario/mergo"
	"github.com/ljmet/condorsub/config"
	"github.com/spf13/pflag"
)

func normalize(name string) string {
	from := []string{"-", "_"}
	to := "."
	for _, sep := range from {
		name = strings.Replace(name, sep, to, -1)
	}
	return strings.ToLower(name)
}

// NormalizeFlags allows for flags to be case and separator insensitive.
// Use it by passing it to cobra.Command.SetGlobalNormalizationFunc
func NormalizeFlags(f *pflag.FlagSet, name string) pflag.NormalizedName {
	lookup := map[string]string{"help": "help", normalize(name): name}

	f.VisitAll(func(f *pflag.Flag) {
		lookup[normalize(f.Name)] = f.Name
	})

	return pflag.NormalizedName(lookup[normalize(name)])
}

// MergeConfigFileWithFlags loads the config file, if any, over the defaults
// and then applies the values set by flags. Flag values override values in
// the config file; --var values are merged into Variables key by key.
// Environment variables are expanded in the result.
func MergeConfigFileWithFlags(file string, flagConf config.Config) (config.Config, error) {
	conf := config.DefaultConfig()
	err := config.ParseFile(file, &conf)
	if err != nil {
		return conf, err
	}

	vars := flagConf.Variables
	flagConf.Variables = nil

	// file vals <- cli val
	err = mergo.MergeWithOverwrite(&conf, flagConf)
	if err != nil {
		return conf, err
	}

	conf.Variables, err = MergeVars(conf.Variables, vars)
	if err != nil {
		return conf, err
	}
	return config.ExpandEnv(conf), nil
}

// MergeVars merges the maps from left to right; later maps win.
func MergeVars(maps ...map[string]string) (map[string]string, error) {
	merged := map[string]string{}
	for _, m := range maps {
		if err := mergo.MergeWithOverwrite(&merged, m); err != nil {
			return nil, err
		}
	}
	return merged, nil
}
