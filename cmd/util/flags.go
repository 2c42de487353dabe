package util

import (
	"github.com/ljmet/condorsub/config"
	"github.com/spf13/pflag"
)

// ConfigFlags returns the flags shared by every command that reads the
// config file.
func ConfigFlags(flagConf *config.Config, configFile *string) *pflag.FlagSet {
	f := pflag.NewFlagSet("", pflag.ContinueOnError)

	f.StringVarP(configFile, "config", "c", *configFile, "Config File")
	f.AddFlagSet(loggerFlags(flagConf))
	f.StringVar(&flagConf.Ledger.Path, "Ledger.Path", flagConf.Ledger.Path, "Path to the BoltDB submission ledger")

	return f
}

// SubmitFlags returns the flags of the submit command. Values from --var
// are collected in vars and parsed with ParseCliVars.
func SubmitFlags(flagConf *config.Config, vars *[]string, datasets *[]string) *pflag.FlagSet {
	f := pflag.NewFlagSet("", pflag.ContinueOnError)

	f.IntVar(&flagConf.ChunkSize, "chunk-size", flagConf.ChunkSize, "Number of input files per job")
	f.StringSliceVar(datasets, "dataset", *datasets, "Only materialize the dataset with this label. This flag can be used multiple times")
	f.StringArrayVar(vars, "var", *vars, "Template variable of the form KEY=VALUE. This flag can be used multiple times")
	f.BoolVar(&flagConf.Submit.DryRun, "dry-run", flagConf.Submit.DryRun, "Write job files but don't submit them")
	f.BoolVar(&flagConf.Submit.FailFast, "fail-fast", flagConf.Submit.FailFast, "Stop a dataset at its first failed submission")
	f.IntVar(&flagConf.Parallel, "parallel", flagConf.Parallel, "Number of datasets materialized at once")
	f.AddFlagSet(BackendFlags(flagConf))
	f.StringVar(&flagConf.OutputRoot, "OutputRoot", flagConf.OutputRoot, "Parent of the per-dataset output directories")
	f.StringVar(&flagConf.Metrics.TextfilePath, "Metrics.TextfilePath", flagConf.Metrics.TextfilePath, "Write run metrics to this file")

	return f
}

// BackendFlags returns the flags selecting the batch system.
func BackendFlags(flagConf *config.Config) *pflag.FlagSet {
	f := pflag.NewFlagSet("", pflag.ContinueOnError)

	f.StringVar(&flagConf.Submit.Backend, "Submit.Backend", flagConf.Submit.Backend, "Batch system. One of ['htcondor', 'slurm', 'pbs', 'gridengine', 'noop']")
	f.StringVar(&flagConf.Submit.Command, "Submit.Command", flagConf.Submit.Command, "Submit command, overriding the backend default")
	f.Var(&flagConf.Submit.Timeout, "Submit.Timeout", "Timeout of each submit command")

	return f
}

func loggerFlags(flagConf *config.Config) *pflag.FlagSet {
	f := pflag.NewFlagSet("", pflag.ContinueOnError)

	f.StringVar(&flagConf.Logger.Level, "log-level", flagConf.Logger.Level, "Level of logging")
	f.StringVar(&flagConf.Logger.OutputFile, "Logger.OutputFile", flagConf.Logger.OutputFile, "File path to write logs to")
	f.StringVar(&flagConf.Logger.Formatter, "Logger.Formatter", flagConf.Logger.Formatter, "Logs formatter. One of ['text', 'json']")

	return f
}
