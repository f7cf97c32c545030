// Command rdmnet-log is a tool for viewing and analyzing RDMnet protocol
// log files.
//
// Log files are written by rdmnet-broker, rdmnet-controller and
// rdmnet-device when logging.protocol_log is set in their configuration.
//
// Usage:
//
//	rdmnet-log <command> [flags] <file.rlog>
//
// Commands:
//
//	view     View log file in human-readable format
//	export   Export log file to JSON lines or CSV
//	filter   Filter log file and write to new file
//	stats    Show statistics about the log file
//
// Examples:
//
//	# View all events
//	rdmnet-log view broker.rlog
//
//	# View RPT traffic of one client
//	rdmnet-log view -layer rpt -peer-uid 6574:00000010 broker.rlog
//
//	# Export to CSV
//	rdmnet-log export -format csv -o broker.csv broker.rlog
//
//	# Follow one request through the broker
//	rdmnet-log view -uid 6574:00000010 -seqnum 42 broker.rlog
//
//	# Keep one connection
//	rdmnet-log filter -conn-id abc12345-... -o conn.rlog broker.rlog
package main

import (
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/ETCLabs/rdmnet-go/cmd/rdmnet-log/commands"
)

const usage = `rdmnet-log - RDMnet Protocol Log Analyzer

Usage:
  rdmnet-log <command> [flags] <file.rlog>

Commands:
  view     View log file in human-readable format
  export   Export log file to JSON lines or CSV
  filter   Filter log file and write to new file
  stats    Show statistics about the log file

Use "rdmnet-log <command> -help" for more information about a command.
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(1)
	}

	cmd := os.Args[1]
	args := os.Args[2:]

	var err error
	switch cmd {
	case "view":
		err = runView(args)
	case "export":
		err = runExport(args)
	case "filter":
		err = runFilter(args)
	case "stats":
		err = runStats(args)
	case "-h", "-help", "--help", "help":
		fmt.Print(usage)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", cmd)
		fmt.Fprint(os.Stderr, usage)
		os.Exit(1)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// newFlagSet returns a flag set with the shared filter flags bound to opts.
func newFlagSet(name, summary string, opts *commands.FilterOptions) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ExitOnError)
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "rdmnet-log %s - %s\n\nUsage:\n  rdmnet-log %s [flags] <file.rlog>\n\nFlags:\n",
			name, summary, name)
		fs.PrintDefaults()
	}
	fs.StringVar(&opts.ConnID, "conn-id", "", "Filter by connection ID")
	fs.StringVar(&opts.Scope, "scope", "", "Filter by scope")
	fs.StringVar(&opts.PeerUID, "peer-uid", "", "Filter by peer UID (mmmm:dddddddd)")
	fs.StringVar(&opts.TimeStart, "time-start", "", "Filter by start time (RFC3339)")
	fs.StringVar(&opts.TimeEnd, "time-end", "", "Filter by end time (RFC3339)")
	fs.StringVar(&opts.Layer, "layer", "", "Filter by layer (transport, broker, rpt, rdm)")
	fs.StringVar(&opts.Direction, "direction", "", "Filter by direction (in, out)")
	fs.StringVar(&opts.Category, "category", "", "Filter by category (message, heartbeat, state, error)")
	fs.StringVar(&opts.CID, "cid", "", "Keep sessions written by the component with this CID")
	fs.StringVar(&opts.UID, "uid", "", "Filter by source, destination or peer UID (mmmm:dddddddd)")
	fs.StringVar(&opts.Seqnum, "seqnum", "", "Filter by RPT sequence number")
	fs.StringVar(&opts.PID, "pid", "", "Filter by RDM parameter (name such as DEVICE_LABEL, or number)")
	return fs
}

// parse parses args and returns the log path.
func parse(fs *flag.FlagSet, args []string) (string, error) {
	if err := fs.Parse(args); err != nil {
		return "", err
	}
	if fs.NArg() < 1 {
		fs.Usage()
		return "", errors.New("log file path required")
	}
	return fs.Arg(0), nil
}

func runView(args []string) error {
	var opts commands.FilterOptions
	fs := newFlagSet("view", "View log file in human-readable format", &opts)
	path, err := parse(fs, args)
	if err != nil {
		return err
	}
	filter, err := opts.Build()
	if err != nil {
		return err
	}
	return commands.RunView(path, filter, os.Stdout)
}

func runExport(args []string) error {
	var opts commands.FilterOptions
	fs := newFlagSet("export", "Export log file to JSON lines or CSV", &opts)
	format := fs.String("format", "jsonl", "Output format (jsonl, csv)")
	output := fs.String("o", "", "Output file (default: stdout)")
	path, err := parse(fs, args)
	if err != nil {
		return err
	}
	filter, err := opts.Build()
	if err != nil {
		return err
	}
	return commands.RunExport(path, filter, *format, *output)
}

func runFilter(args []string) error {
	var opts commands.FilterOptions
	fs := newFlagSet("filter", "Filter log file and write to new file", &opts)
	output := fs.String("o", "", "Output file (required)")
	path, err := parse(fs, args)
	if err != nil {
		return err
	}
	if *output == "" {
		fs.Usage()
		return errors.New("output file (-o) required")
	}
	filter, err := opts.Build()
	if err != nil {
		return err
	}
	return commands.RunFilter(path, filter, *output, os.Stdout)
}

func runStats(args []string) error {
	var opts commands.FilterOptions
	fs := newFlagSet("stats", "Show statistics about the log file", &opts)
	path, err := parse(fs, args)
	if err != nil {
		return err
	}
	filter, err := opts.Build()
	if err != nil {
		return err
	}
	return commands.RunStats(path, filter, os.Stdout)
}
