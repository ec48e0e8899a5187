package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"grimm.is/glacic/cmd"
)

const defaultConfigFile = "/etc/glacic-dpi/glacic-dpi.hcl"

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "start":
		startFlags := flag.NewFlagSet("start", flag.ExitOnError)
		configFile := startFlags.String("config", defaultConfigFile, "Configuration file")
		startFlags.StringVar(configFile, "c", defaultConfigFile, "Configuration file (short)")
		startFlags.Parse(os.Args[2:])

		if err := cmd.RunStart(context.Background(), *configFile); err != nil {
			fmt.Fprintf(os.Stderr, "start failed: %v\n", err)
			os.Exit(1)
		}

	case "check":
		checkFlags := flag.NewFlagSet("check", flag.ExitOnError)
		checkFlags.Parse(os.Args[2:])

		configFile := defaultConfigFile
		if checkFlags.NArg() > 0 {
			configFile = checkFlags.Arg(0)
		}

		if err := cmd.RunCheck(os.Stdout, configFile); err != nil {
			fmt.Fprintf(os.Stderr, "check failed: %v\n", err)
			os.Exit(1)
		}

	case "show":
		showFlags := flag.NewFlagSet("show", flag.ExitOnError)
		showFlags.Parse(os.Args[2:])

		configFile := defaultConfigFile
		if showFlags.NArg() > 0 {
			configFile = showFlags.Arg(0)
		}

		if err := cmd.RunShow(os.Stdout, configFile); err != nil {
			fmt.Fprintf(os.Stderr, "show failed: %v\n", err)
			os.Exit(1)
		}

	case "export":
		exportFlags := flag.NewFlagSet("export", flag.ExitOnError)
		out := exportFlags.String("out", "profiles.yaml", "Output YAML file")
		exportFlags.StringVar(out, "o", "profiles.yaml", "Output YAML file (short)")
		exportFlags.Parse(os.Args[2:])

		configFile := defaultConfigFile
		if exportFlags.NArg() > 0 {
			configFile = exportFlags.Arg(0)
		}

		if err := cmd.RunExport(configFile, *out); err != nil {
			fmt.Fprintf(os.Stderr, "export failed: %v\n", err)
			os.Exit(1)
		}

	case "ifaces":
		ifacesFlags := flag.NewFlagSet("ifaces", flag.ExitOnError)
		ifacesFlags.Parse(os.Args[2:])

		if err := cmd.RunIfaces(os.Stdout); err != nil {
			fmt.Fprintf(os.Stderr, "ifaces failed: %v\n", err)
			os.Exit(1)
		}

	case "counters":
		countersFlags := flag.NewFlagSet("counters", flag.ExitOnError)
		table := countersFlags.String("table", "glacic", "nftables table name")
		chain := countersFlags.String("chain", "", "nftables chain name")
		tag := countersFlags.String("tag", "", "rule UserData tag to match")
		countersFlags.Parse(os.Args[2:])

		if *chain == "" || *tag == "" {
			fmt.Fprintln(os.Stderr, "counters requires --chain and --tag")
			os.Exit(1)
		}
		if err := cmd.RunCounters(os.Stdout, *table, *chain, *tag); err != nil {
			fmt.Fprintf(os.Stderr, "counters failed: %v\n", err)
			os.Exit(1)
		}

	case "help", "-h", "--help":
		printUsage()

	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Printf(`glacic-dpi - per-device deep packet inspection firewall

Usage:
  glacic-dpi <command> [options]

Commands:
  start             Bind kernel queues and run the DPI engine
                    Options: --config (-c) <file>
  check             Validate a profile/device configuration file
  show              Summarize declared profiles and device bindings
  export            Export profiles as YAML
                    Options: --out (-o) <file>
  ifaces            List network interfaces in the current namespace
  counters          Read an installed nftables rule counter
                    Options: --table, --chain, --tag

Examples:
  glacic-dpi start --config /etc/glacic-dpi/glacic-dpi.hcl
  glacic-dpi check /etc/glacic-dpi/glacic-dpi.hcl
  glacic-dpi show /etc/glacic-dpi/glacic-dpi.hcl
`)
}
