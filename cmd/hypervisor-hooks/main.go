// hypervisor-hooks is the snap hook dispatcher: the snap runtime invokes it
// as the install and configure hooks of the openstack-hypervisor snap.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/openstack-snap/hypervisor-hooks/pkg/config"
	"github.com/openstack-snap/hypervisor-hooks/pkg/hooks"
	"github.com/openstack-snap/hypervisor-hooks/pkg/ovs"
	"github.com/openstack-snap/hypervisor-hooks/pkg/service"
	"github.com/openstack-snap/hypervisor-hooks/pkg/snapenv"
)

var settingsPath string

var rootCmd = &cobra.Command{
	Use:           "hypervisor-hooks",
	Short:         "Lifecycle hooks for the openstack-hypervisor snap",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&settingsPath, "config", "c", "", "Path to the settings tree (default: the snap's hypervisor.yaml)")
	rootCmd.AddCommand(installCmd)
	rootCmd.AddCommand(configureCmd)
}

func newHooks() (*hooks.Hooks, snapenv.Snap, error) {
	logger, err := zap.NewProduction()
	if err != nil {
		return nil, snapenv.Snap{}, fmt.Errorf("failed to set up logging: %v", err)
	}
	log := logger.Sugar()

	snap := snapenv.FromEnv()
	ovsClient := ovs.NewClient(log)
	services := service.NewManager(snap.InstanceName, log)
	return hooks.New(snap, ovsClient, services, log), snap, nil
}

var installCmd = &cobra.Command{
	Use:   "install",
	Short: "One-time host setup: directories and generated secrets",
	RunE: func(cmd *cobra.Command, args []string) error {
		h, _, err := newHooks()
		if err != nil {
			return err
		}
		return h.Install()
	},
}

var configureCmd = &cobra.Command{
	Use:   "configure",
	Short: "Render configuration, program the external bridge, reconcile services",
	RunE: func(cmd *cobra.Command, args []string) error {
		h, snap, err := newHooks()
		if err != nil {
			return err
		}
		var cfg config.Tree
		if settingsPath != "" {
			cfg, err = config.Load(settingsPath)
		} else {
			// nothing configured yet is a valid state on first run
			cfg, err = config.LoadOrEmpty(snap.SettingsPath())
		}
		if err != nil {
			return err
		}
		return h.Configure(cfg)
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
