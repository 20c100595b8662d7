/*
 * Copyright 2025 Carver Automation Corporation.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"net"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/netcrawl/discovery/pkg/discovery"
	"github.com/netcrawl/discovery/pkg/logger"
)

const (
	exitSuccess       = 0
	exitFailure       = 1
	exitCancelled     = 130
	defaultSNMPPort   = 161
	defaultSNMPRetry  = 1
	defaultTestCommun = "public"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(exitFailure)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	cancelled := false

	go func() {
		<-sigCh
		cancelled = true
		cancel()
	}()

	var code int

	switch os.Args[1] {
	case "test":
		code = runTest(ctx, os.Args[2:])
	case "device":
		code = runDevice(ctx, os.Args[2:])
	case "crawl":
		code = runCrawl(ctx, os.Args[2:])
	default:
		usage()
		code = exitFailure
	}

	if cancelled && code != exitSuccess {
		code = exitCancelled
	}

	os.Exit(code)
}

func usage() {
	fmt.Fprintln(os.Stderr, `usage:
  discovery test <target> [--community STR] [--timeout SEC] [--no-dns]
  discovery device <target> [--vault FILE] [--credential NAME] [--domain D ...] [--no-dns]
  discovery crawl <seed...> [-d DEPTH] [--domain D ...] [--exclude P ...]
                            [-o OUTDIR] [-c CONCURRENCY] [-t TIMEOUT]
                            [--vault FILE] [--credential NAME ...]
                            [--no-dns] [--json-events] [-v]`)
}

// runTest performs a bare SNMPv2c connectivity check against target,
// bypassing the vault and resolver entirely.
func runTest(ctx context.Context, args []string) int {
	fs := flag.NewFlagSet("test", flag.ExitOnError)
	community := fs.String("community", defaultTestCommun, "SNMPv2c community string")
	timeout := fs.Duration("timeout", 5*time.Second, "request timeout")
	noDNS := fs.Bool("no-dns", false, "treat target as a literal IP, skip DNS")

	if err := fs.Parse(args); err != nil || fs.NArg() != 1 {
		usage()
		return exitFailure
	}

	target := fs.Arg(0)

	if *noDNS && net.ParseIP(target) == nil {
		fmt.Fprintf(os.Stderr, "%s is not an IP address and DNS is disabled\n", target)
		return exitFailure
	}

	cred := &discovery.Credential{
		Name: "test",
		Kind: discovery.CredentialSNMPv2c,
		SNMPv2c: &discovery.SNMPv2cCredential{
			Community: *community,
			Port:      defaultSNMPPort,
			Timeout:   *timeout,
			Retries:   defaultSNMPRetry,
		},
	}

	transport, err := discovery.NewTransport(target, cred)
	if err != nil {
		fmt.Fprintf(os.Stderr, "connect: %v\n", err)
		return exitFailure
	}
	defer transport.Close()

	reqCtx, reqCancel := context.WithTimeout(ctx, *timeout)
	defer reqCancel()

	row, ok := transport.Get(reqCtx, "1.3.6.1.2.1.1.5.0")
	if !ok {
		fmt.Fprintf(os.Stderr, "no response from %s\n", target)
		return exitFailure
	}

	fmt.Printf("%s reachable, sysName=%v\n", target, row.Value.Value)

	return exitSuccess
}

// runDevice discovers exactly one device and prints its record to stdout.
func runDevice(ctx context.Context, args []string) int {
	fs := flag.NewFlagSet("device", flag.ExitOnError)
	vaultFile := fs.String("vault", "", "path to a JSON credential file")
	credential := fs.String("credential", "", "named credential to restrict resolution to")
	domains := multiFlag{}
	fs.Var(&domains, "domain", "domain suffix to try during resolution (repeatable)")
	noDNS := fs.Bool("no-dns", false, "treat target as a literal IP, skip DNS")
	verbose := fs.Bool("v", false, "debug logging")

	if err := fs.Parse(args); err != nil || fs.NArg() != 1 {
		usage()
		return exitFailure
	}

	initLogging(*verbose)

	vault, err := loadVault(*vaultFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "vault: %v\n", err)
		return exitFailure
	}

	engine := discovery.NewEngine(vault, discovery.EngineConfig{NoDNS: *noDNS})

	var names []string
	if *credential != "" {
		names = []string{*credential}
	}

	dev, err := engine.DiscoverDevice(ctx, fs.Arg(0), nil, names, domains, 0, true)
	if err != nil {
		fmt.Fprintf(os.Stderr, "discover: %v\n", err)

		if dev == nil {
			return exitFailure
		}
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")

	if encErr := enc.Encode(dev); encErr != nil {
		fmt.Fprintf(os.Stderr, "encode: %v\n", encErr)
		return exitFailure
	}

	if !dev.Success {
		return exitFailure
	}

	return exitSuccess
}

// runCrawl drives a full breadth-first crawl from one or more seeds.
func runCrawl(ctx context.Context, args []string) int {
	fs := flag.NewFlagSet("crawl", flag.ExitOnError)
	depth := fs.Int("d", 2, "maximum crawl depth")
	outputDir := fs.String("o", "./discovery-output", "output directory")
	concurrency := fs.Int("c", 20, "maximum concurrent device probes")
	timeout := fs.Duration("t", 10*time.Second, "engine default timeout (SNMP and SSH requests use each credential's own timeout)")
	vaultFile := fs.String("vault", "", "path to a JSON credential file")
	noDNS := fs.Bool("no-dns", false, "treat seeds as literal IPs, skip DNS")
	jsonEvents := fs.Bool("json-events", false, "emit one JSON event per line to stdout")
	verbose := fs.Bool("v", false, "debug logging")

	domains := multiFlag{}
	fs.Var(&domains, "domain", "domain suffix to try during resolution (repeatable)")

	exclude := multiFlag{}
	fs.Var(&exclude, "exclude", "substring pattern excluding a matched device (repeatable)")

	credentials := multiFlag{}
	fs.Var(&credentials, "credential", "named credential to restrict resolution to (repeatable)")

	if err := fs.Parse(args); err != nil || fs.NArg() == 0 {
		usage()
		return exitFailure
	}

	initLogging(*verbose)

	vault, err := loadVault(*vaultFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "vault: %v\n", err)
		return exitFailure
	}

	engine := discovery.NewEngine(vault, discovery.EngineConfig{
		Timeout:       *timeout,
		MaxConcurrent: *concurrency,
		NoDNS:         *noDNS,
	})

	if *jsonEvents {
		engine.Events().Subscribe(discovery.SubscriberFunc(emitJSONEvent))
	} else {
		engine.Events().Subscribe(discovery.SubscriberFunc(emitTextEvent))
	}

	result, err := engine.Crawl(ctx, fs.Args(), *depth, domains, exclude, credentials, *outputDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "crawl: %v\n", err)
		return exitFailure
	}

	if result.Cancelled {
		return exitCancelled
	}

	if result.Successful == 0 {
		return exitFailure
	}

	return exitSuccess
}

func loadVault(path string) (discovery.Vault, error) {
	if path == "" {
		return nil, nil
	}

	return discovery.NewFileVault(path)
}

func initLogging(verbose bool) {
	cfg := logger.DefaultConfig()
	cfg.Debug = verbose
	cfg.Output = "stderr"

	_ = logger.Init(cfg)
}

func emitJSONEvent(e discovery.Event) {
	b, err := json.Marshal(e)
	if err != nil {
		return
	}

	fmt.Println(string(b))
}

func emitTextEvent(e discovery.Event) {
	switch e.Type {
	case discovery.EventDeviceComplete:
		fmt.Fprintf(os.Stderr, "[ok] %s (%s) neighbors=%d %dms\n", e.Hostname, e.Vendor, e.NeighborCount, e.DurationMs)
	case discovery.EventDeviceFailed:
		fmt.Fprintf(os.Stderr, "[fail] %s: %s\n", e.Target, e.Error)
	case discovery.EventDeviceExcluded:
		fmt.Fprintf(os.Stderr, "[excluded] %s matched %q\n", e.Hostname, e.Pattern)
	case discovery.EventDepthComplete:
		fmt.Fprintf(os.Stderr, "[depth %d] discovered=%d failed=%d\n", e.Depth, e.Discovered, e.Failed)
	case discovery.EventCrawlComplete:
		fmt.Fprintln(os.Stderr, "[done] crawl complete")
	case discovery.EventCrawlCancelled:
		fmt.Fprintln(os.Stderr, "[cancelled] crawl stopped early")
	case discovery.EventLogMessage:
		fmt.Fprintf(os.Stderr, "[%s] %s\n", e.Level, e.Message)
	}
}

// multiFlag accumulates repeated -flag values into a slice.
type multiFlag []string

func (m *multiFlag) String() string { return strings.Join(*m, ",") }

func (m *multiFlag) Set(v string) error {
	*m = append(*m, v)
	return nil
}
