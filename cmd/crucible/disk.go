package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jbweber/crucible/internal/engine"
	"github.com/jbweber/crucible/internal/image"
)

// Disk image provisioning commands
var diskCmd = &cobra.Command{
	Use:   "disk",
	Short: "Provision backing disk images",
	Long: `Create backing disk images and register them with the conversion engine.

Sizes accept an optional suffix: k, m, g, t, p, e (powers of 1024) or
s (512-byte sectors). A bare number is interpreted as kilobytes.`,
}

func init() {
	diskCmd.AddCommand(diskAllocCmd)
	diskCmd.AddCommand(diskSparseCmd)
}

var diskAllocCmd = &cobra.Command{
	Use:   "alloc <file> <size>",
	Short: "Create a fully preallocated disk image",
	Long: `Create a zero-filled disk image of the given size and register it as a drive.

The image is preallocated: every byte is backed by real storage. Use
"disk sparse" for a thin image instead.

Example:
  crucible disk alloc /var/tmp/target.img 10G`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		path, sizeSpec := args[0], args[1]

		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		eng := engine.New(cfg.Backend)
		if err := image.NewProvisioner(eng).Allocate(path, sizeSpec); err != nil {
			return err
		}

		fmt.Printf("✓ Image %s allocated and registered as a drive\n", path)
		return nil
	},
}

var diskSparseCmd = &cobra.Command{
	Use:   "sparse <file> <size>",
	Short: "Create a sparse disk image",
	Long: `Create a sparse disk image of the given size and register it as a drive.

The image reports the full requested length but only consumes real
storage as data is written to it.

Example:
  crucible disk sparse /var/tmp/target.img 100G`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		path, sizeSpec := args[0], args[1]

		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		eng := engine.New(cfg.Backend)
		if err := image.NewProvisioner(eng).AllocateSparse(path, sizeSpec); err != nil {
			return err
		}

		fmt.Printf("✓ Sparse image %s created and registered as a drive\n", path)
		return nil
	},
}
