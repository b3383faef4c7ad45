package main

import (
	"fmt"
	"os"

	flags "github.com/jessevdk/go-flags"

	"github.com/itohio/ntcstat/pkg/config"
	"github.com/itohio/ntcstat/pkg/display"
	"github.com/itohio/ntcstat/pkg/logger"
)

// options are the command line flags. Flags that are set override the
// configuration file.
type options struct {
	Config   string `short:"c" long:"config" default:"config.yaml" description:"Configuration file path"`
	Level    string `short:"l" long:"level" choice:"debug" choice:"info" choice:"warn" choice:"error" description:"Log level (overrides config)"`
	Setpoint int32  `short:"s" long:"setpoint" description:"Initial setpoint in °C (overrides config)"`
	Mode     string `short:"m" long:"mode" choice:"parallel" choice:"sequential" description:"Segment drive mode (overrides config)"`
	Save     bool   `long:"save" description:"Write the effective configuration back to the config file and exit"`

	setpointSet bool
}

// parseOptions parses args. A help request returns flags.ErrHelp wrapped in
// a *flags.Error.
func parseOptions(args []string) (*options, error) {
	opts := &options{}
	parser := flags.NewParser(opts, flags.HelpFlag|flags.PassDoubleDash)
	parser.Name = "simulator"

	if _, err := parser.ParseArgs(args); err != nil {
		return nil, err
	}
	if opt := parser.FindOptionByLongName("setpoint"); opt != nil {
		opts.setpointSet = opt.IsSet()
	}
	return opts, nil
}

// apply overrides cfg with the flags that were given.
func (o *options) apply(cfg *config.Config) error {
	if o.Level != "" {
		if _, err := logger.ParseLevel(o.Level); err != nil {
			return err
		}
		cfg.Log.Level = o.Level
	}
	if o.setpointSet {
		cfg.Setpoint.Initial = o.Setpoint
	}
	if o.Mode != "" {
		cfg.Display.Mode = display.Mode(o.Mode)
	}
	return cfg.Validate()
}

// isHelp reports whether err is a help request.
func isHelp(err error) bool {
	flagsErr, ok := err.(*flags.Error)
	return ok && flagsErr.Type == flags.ErrHelp
}

func exitOnOptionsError(err error) {
	if isHelp(err) {
		fmt.Println(err)
		os.Exit(0)
	}
	fmt.Fprintln(os.Stderr, err)
	os.Exit(2)
}
