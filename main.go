package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/launchdarkly/echo-contract-tests/config"
	"github.com/launchdarkly/echo-contract-tests/echoserver"
	"github.com/launchdarkly/echo-contract-tests/echotests"
	"github.com/launchdarkly/echo-contract-tests/framework"
	"github.com/launchdarkly/echo-contract-tests/framework/harness"
)

func main() {
	os.Exit(run(os.Args))
}

func run(args []string) int {
	var params commandParams
	if !params.Read(args) {
		return 1
	}

	cfg, err := config.NewLoader(config.DefaultEnvPrefix, params.configFile).Load(context.Background(), params.overrides())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Invalid configuration: %s\n", err)
		return 1
	}
	filters := params.filters
	for _, pattern := range cfg.Run {
		if err := filters.MustMatch.Set(pattern); err != nil {
			fmt.Fprintf(os.Stderr, "Invalid run pattern in configuration: %s\n", err)
			return 1
		}
	}
	for _, pattern := range cfg.Skip {
		if err := filters.MustNotMatch.Set(pattern); err != nil {
			fmt.Fprintf(os.Stderr, "Invalid skip pattern in configuration: %s\n", err)
			return 1
		}
	}

	mainDebugLogger := framework.NullLogger()
	if cfg.DebugAll {
		mainDebugLogger = log.New(os.Stdout, "", log.LstdFlags)
	}

	serviceURL := cfg.ServiceURL
	if cfg.Local {
		local, err := harness.StartLocalService(
			cfg.Port,
			echoserver.New(framework.WithPrefix(mainDebugLogger, "[echo service] ")),
			cfg.StartupTimeout(),
			mainDebugLogger,
		)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Could not start local echo service: %s\n", err)
			return 1
		}
		defer func() {
			_ = local.Close()
		}()
		serviceURL = local.URL()
	}

	h := harness.NewTestHarness(serviceURL, cfg.Timeout(), mainDebugLogger, os.Stdout)
	defer h.Close()

	fmt.Println()
	framework.PrintFilterDescription(os.Stdout, filters)

	fmt.Println("Running test suite")

	testLogger := framework.ConsoleTestLogger{
		DebugOutputOnFailure: cfg.Debug || cfg.DebugAll,
		DebugOutputOnSuccess: cfg.DebugAll,
	}

	results := echotests.RunTestSuite(h, filters.AsFilter, testLogger)

	fmt.Println()
	framework.PrintResults(os.Stdout, results)
	if !results.OK() {
		return 1
	}
	if passed, _, _ := results.Counts(); passed == 0 {
		fmt.Println("No tests were run; check the run and skip patterns")
		return 1
	}
	return 0
}
