package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/shirou/gopsutil/v3/host"
	"github.com/urfave/cli/v2"

	"github.com/fleetname/fleetname"
	"github.com/fleetname/fleetname/internal/config"
	"github.com/fleetname/fleetname/internal/fleet"
	"github.com/fleetname/fleetname/internal/version"
)

func main() {
	app := &cli.App{
		Name:    "fleetname",
		Usage:   "derive and apply a fleet device name from hardware metadata",
		Version: version.Version,
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:    "digits",
				Usage:   "number of trailing hardware UUID characters used as the name suffix",
				EnvVars: []string{"FLEETNAME_DIGITS"},
			},
			&cli.StringFlag{
				Name:    "config",
				Usage:   "path to the TOML config file",
				EnvVars: []string{"FLEETNAME_CONFIG"},
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "print machine-readable JSON instead of progress lines",
			},
			&cli.BoolFlag{
				Name:  "verbose",
				Usage: "enable debug logging on stderr",
			},
		},
		Action: runApply,
		Commands: []*cli.Command{
			{
				Name:   "preview",
				Usage:  "derive and print the device name without applying it",
				Action: runPreview,
			},
			{
				Name:      "lookup",
				Usage:     "look up a device in the fleet inventory by name or serial number",
				ArgsUsage: "[name-or-serial]",
				Action:    runLookup,
			},
			{
				Name:   "status",
				Usage:  "show the current host identity",
				Action: runStatus,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		// Errors carrying an exit code are handled by cli; this covers the rest.
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// newLogger builds the stderr diagnostic logger. Progress lines for the
// operator stay on stdout; the logger never writes there.
func newLogger(verbose bool) zerolog.Logger {
	level := zerolog.WarnLevel
	if verbose {
		level = zerolog.DebugLevel
	}

	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		Level(level).
		With().Timestamp().Logger()
}

// loadConfig loads the config file and applies the --digits override.
func loadConfig(c *cli.Context) (*config.Config, error) {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return nil, err
	}

	cfg.Digits = resolveDigits(c.IsSet("digits"), c.Int("digits"), cfg.Digits)

	if err := config.Validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// resolveDigits picks the suffix digit count: the flag when set, otherwise
// the configured value.
func resolveDigits(flagSet bool, flagValue, configValue int) int {
	if flagSet {
		return flagValue
	}

	return configValue
}

// newNamer builds the Namer from the CLI context and loaded config.
func newNamer(c *cli.Context, cfg *config.Config) *fleetname.Namer {
	return fleetname.New().
		WithDigitCount(cfg.Digits).
		WithLogger(newLogger(c.Bool("verbose")))
}

// exitErr converts a pipeline error into the contract exit code.
func exitErr(err error) error {
	return cli.Exit(fmt.Sprintf("fleetname: %v", err), fleetname.ExitCode(err))
}

func runApply(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return cli.Exit(fmt.Sprintf("fleetname: %v", err), 1)
	}

	namer := newNamer(c, cfg)

	if !c.Bool("json") {
		fmt.Println("querying hardware metadata")
	}

	result, err := namer.Run(c.Context)
	if err != nil {
		return exitErr(err)
	}

	if c.Bool("json") {
		return printJSON(result)
	}

	fmt.Printf("computer name set to %q\n", result.CandidateName)
	fmt.Printf("hostname set to %q\n", result.SanitizedHostname)

	return nil
}

func runPreview(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return cli.Exit(fmt.Sprintf("fleetname: %v", err), 1)
	}

	namer := newNamer(c, cfg)

	result, err := namer.Derive(c.Context)
	if err != nil {
		return exitErr(err)
	}

	if c.Bool("json") {
		return printJSON(result)
	}

	fmt.Printf("model identifier: %s\n", result.ModelIdentifier)
	fmt.Printf("hardware UUID:    %s\n", result.HardwareUUID)
	fmt.Printf("computer name:    %s\n", result.CandidateName)
	fmt.Printf("hostname:         %s\n", result.SanitizedHostname)

	return nil
}

func runLookup(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return cli.Exit(fmt.Sprintf("fleetname: %v", err), 1)
	}

	if cfg.Fleet.URL == "" || cfg.Fleet.Token == "" {
		return cli.Exit("fleetname: fleet API not configured; set fleet.url and fleet.token", 1)
	}

	logger := newLogger(c.Bool("verbose"))

	term := c.Args().First()
	if term == "" {
		// No search term: look up this machine by its derived name.
		result, err := newNamer(c, cfg).Derive(c.Context)
		if err != nil {
			return exitErr(err)
		}
		term = result.CandidateName
	}

	client := fleet.New(cfg.Fleet.URL, cfg.Fleet.Token, logger)

	device, err := client.FindDevice(c.Context, term)
	if err != nil {
		return cli.Exit(fmt.Sprintf("fleetname: %v", err), 1)
	}

	if c.Bool("json") {
		return printJSON(device)
	}

	fmt.Printf("device name:   %s\n", device.DeviceName)
	fmt.Printf("serial number: %s\n", device.SerialNumber)
	fmt.Printf("model:         %s\n", device.Model)
	fmt.Printf("assigned user: %s\n", orNA(device.User.Name))
	fmt.Printf("user email:    %s\n", orNA(device.User.Email))

	return nil
}

func runStatus(c *cli.Context) error {
	logger := newLogger(c.Bool("verbose"))

	info, err := host.Info()
	if err != nil {
		return cli.Exit(fmt.Sprintf("fleetname: reading host info: %v", err), 1)
	}

	serial, err := fleetname.SerialNumber(c.Context, nil, logger)
	if err != nil {
		logger.Warn().Err(err).Msg("serial number unavailable")
		serial = ""
	}

	if c.Bool("json") {
		return printJSON(map[string]string{
			"hostname":      info.Hostname,
			"platform":      info.Platform,
			"version":       info.PlatformVersion,
			"host_id":       info.HostID,
			"serial_number": serial,
		})
	}

	fmt.Printf("hostname:      %s\n", info.Hostname)
	fmt.Printf("platform:      %s %s\n", info.Platform, info.PlatformVersion)
	fmt.Printf("host id:       %s\n", info.HostID)
	fmt.Printf("serial number: %s\n", orNA(serial))

	return nil
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")

	return enc.Encode(v)
}

func orNA(s string) string {
	if s == "" {
		return "N/A"
	}

	return s
}
