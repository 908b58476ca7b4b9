package config

import "flag"

func newTestFlagSet() *flag.FlagSet {
	return flag.NewFlagSet("test", flag.ContinueOnError)
}

func resetFlags() {
	*flagConfig = ""
	*flagDebug = false
	*flagLogFile = ""
	*flagOut = ""
	*flagSamples = -1
}
