package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/launchdarkly/echo-contract-tests/config"
	"github.com/launchdarkly/echo-contract-tests/framework"

	"gopkg.in/launchdarkly/go-sdk-common.v2/ldvalue"
)

type commandParams struct {
	serviceURL string
	configFile string
	timeout    time.Duration
	local      bool
	port       int
	filters    framework.RegexFilters
	debug      bool
	debugAll   bool
	setFlags   map[string]bool
}

func (c *commandParams) Read(args []string) bool {
	fs := flag.NewFlagSet("", flag.ContinueOnError)
	fs.StringVar(&c.serviceURL, "url", "", "echo service base URL (default "+config.DefaultServiceURL+")")
	fs.StringVar(&c.configFile, "config", "", "optional YAML configuration file")
	fs.DurationVar(&c.timeout, "timeout", 0, "time limit for each request (default 10s)")
	fs.BoolVar(&c.local, "local", false, "run against an in-process echo service instead of -url")
	fs.IntVar(&c.port, "port", config.DefaultLocalPort, "port for the in-process echo service (0 picks a free port)")
	fs.Var(&c.filters.MustMatch, "run", "regex pattern(s) to select tests to run")
	fs.Var(&c.filters.MustNotMatch, "skip", "regex pattern(s) to select tests not to run")
	fs.BoolVar(&c.debug, "debug", false, "enable debug logging for failed tests")
	fs.BoolVar(&c.debugAll, "debug-all", false, "enable debug logging for all tests")

	if err := fs.Parse(args[1:]); err != nil {
		if err != flag.ErrHelp {
			fmt.Fprintln(os.Stderr, err)
		}
		return false
	}
	if fs.NArg() > 0 {
		fmt.Fprintf(os.Stderr, "unexpected arguments: %v\n", fs.Args())
		fs.Usage()
		return false
	}
	c.setFlags = make(map[string]bool)
	fs.Visit(func(f *flag.Flag) {
		c.setFlags[f.Name] = true
	})
	return true
}

// overrides returns only the settings that were given explicitly, so that values from the
// config file and environment are not clobbered by flag defaults.
func (c *commandParams) overrides() config.Overrides {
	var o config.Overrides
	o.ServiceURL = c.serviceURL
	if c.setFlags["timeout"] {
		o.Timeout = ldvalue.NewOptionalInt(int(c.timeout / time.Millisecond))
	}
	if c.setFlags["local"] {
		o.Local = &c.local
	}
	if c.setFlags["port"] {
		o.Port = ldvalue.NewOptionalInt(c.port)
	}
	if c.setFlags["debug"] {
		o.Debug = &c.debug
	}
	if c.setFlags["debug-all"] {
		o.DebugAll = &c.debugAll
	}
	return o
}
