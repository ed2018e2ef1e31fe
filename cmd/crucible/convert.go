package main

import (
	"context"
	"fmt"
	"net"
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/crypto/ssh/agent"

	"github.com/jbweber/crucible/internal/engine"
	"github.com/jbweber/crucible/internal/libvirt"
	"github.com/jbweber/crucible/internal/output"
	"github.com/jbweber/crucible/internal/source"
	"github.com/jbweber/crucible/internal/uri"
)

var (
	connectURI   string
	outputFormat string
	noHeaders    bool
)

var convertCmd = &cobra.Command{
	Use:   "convert <guest>",
	Short: "Extract a guest's source description for conversion",
	Long: `Read a guest's metadata and disk locations from the source hypervisor.

The connection URI given with --connect decides how the guest is read:

- no URI, or a local URI: the default adapter
- esx://, gsx:// or vpx://: the vCenter adapter, rewriting disk locators
  into HTTPS datastore URLs
- xen+ssh://: the Xen adapter, rewriting disk locators into ssh:// URLs
  (requires a running SSH agent)

The guest must be shut down; running guests cannot be converted safely.

Example:
  crucible convert --connect 'esx://vcenter.example.com/?no_verify=1' myguest`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		guest := args[0]

		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if err := output.ValidateFormat(outputFormat); err != nil {
			return err
		}

		ctx := context.Background()
		client, err := libvirt.ConnectWithContext(ctx, cfg.LibvirtSocket, cfg.ConnectTimeout())
		if err != nil {
			return fmt.Errorf("failed to connect to libvirt: %w", err)
		}
		defer func() {
			if closeErr := client.Close(); closeErr != nil {
				log.WithError(closeErr).Warn("Failed to close libvirt connection")
			}
		}()

		if err := client.Ping(); err != nil {
			return fmt.Errorf("libvirt connection check failed: %w", err)
		}

		eng := engine.New(cfg.Backend)
		log.WithFields(log.Fields{
			"run":   eng.RunID(),
			"guest": guest,
		}).Info("Selecting source adapter")

		sshAuthSock := os.Getenv("SSH_AUTH_SOCK")
		adapter, err := source.Select(connectURI, guest, source.Options{
			Engine:      eng,
			SSHAuthSock: sshAuthSock,
			Dumper:      client,
			Parse:       libvirt.ParseDescriptor,
		})
		if err != nil {
			return err
		}

		if adapter.Kind() == uri.KindXenSSH {
			checkAgentIdentities(sshAuthSock)
		}

		src, err := adapter.FetchSource(ctx)
		if err != nil {
			return err
		}

		log.WithFields(log.Fields{
			"guest":   src.Name,
			"adapter": adapter.Kind().String(),
			"disks":   len(src.Disks),
		}).Info("Fetched source description")

		formatter, err := output.NewFormatter(output.Options{
			Format:    output.Format(outputFormat),
			NoHeaders: noHeaders,
		})
		if err != nil {
			return err
		}

		out, err := formatter.FormatPlan(&output.Plan{
			Guest:   guest,
			Adapter: adapter.Kind().String(),
			Source:  src,
		})
		if err != nil {
			return err
		}

		fmt.Print(out)
		return nil
	},
}

func init() {
	convertCmd.Flags().StringVar(&connectURI, "connect", "", "Libvirt connection URI of the source hypervisor")
	convertCmd.Flags().StringVarP(&outputFormat, "output", "o", "table", "Output format: table, yaml, or json")
	convertCmd.Flags().BoolVar(&noHeaders, "no-headers", false, "Omit headers in table output")
}

// checkAgentIdentities reports how many keys the SSH agent holds. The
// Xen host rejects the connection later if the right key is missing, so
// an empty agent is worth a warning now. Never fatal: the agent socket
// existing is the hard requirement, checked during adapter selection.
func checkAgentIdentities(sock string) {
	conn, err := net.Dial("unix", sock)
	if err != nil {
		log.WithError(err).Warn("Could not reach the SSH agent socket")
		return
	}
	defer func() { _ = conn.Close() }()

	keys, err := agent.NewClient(conn).List()
	if err != nil {
		log.WithError(err).Warn("Could not list SSH agent identities")
		return
	}
	if len(keys) == 0 {
		log.Warn("SSH agent holds no identities; add the key for the Xen host with ssh-add")
		return
	}

	log.WithField("identities", len(keys)).Debug("SSH agent is available")
}
