package main

import (
	"fmt"
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/jbweber/crucible/internal/config"
)

var (
	version = "dev"
	commit  = "unknown"
)

var (
	debug      bool
	configPath string
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "crucible",
	Short: "Crucible - guest conversion front end for libvirt",
	Long: `Crucible extracts guests from libvirt-managed hypervisors for conversion.

It classifies the management-connection URI, selects the matching source
adapter (local, vCenter over HTTPS, or Xen over SSH), and produces a
normalized description of the guest's disks and metadata. It also
provisions raw backing disk images for the conversion engine.`,
	Version: fmt.Sprintf("%s (commit: %s)", version, commit),
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if debug {
			log.SetLevel(log.DebugLevel)
		}
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Enable debug logging")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to the crucible configuration file")

	rootCmd.AddCommand(convertCmd)
	rootCmd.AddCommand(diskCmd)
}

// loadConfig returns the configuration from --config, or the defaults
// when no file was given.
func loadConfig() (*config.Config, error) {
	if configPath == "" {
		return config.Default(), nil
	}
	return config.Load(configPath)
}
