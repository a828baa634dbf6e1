package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"tender-matching/pkg/registry"
)

var (
	registryFile     string
	registryValidate bool
)

var registryCmd = &cobra.Command{
	Use:   "registry",
	Short: "List the activities the workers implement",
	RunE: func(cmd *cobra.Command, _ []string) error {
		reg, err := loadActivityRegistry(registryFile)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if registryValidate {
			if err := reg.Validate(); err != nil {
				return err
			}
			fmt.Fprintf(out, "registry %s is valid: %d activities\n", reg.Version, len(reg.Activities))
			return nil
		}

		for _, a := range reg.Activities {
			fmt.Fprintf(out, "%-20s %-10s %-8s %s\n", a.TaskType, a.Category, a.Timeout, a.DisplayName)
		}
		return nil
	},
}

func init() {
	registryCmd.Flags().StringVar(&registryFile, "file", "", "registry JSON to read instead of the embedded one")
	registryCmd.Flags().BoolVar(&registryValidate, "validate", false, "validate the registry and exit")
	rootCmd.AddCommand(registryCmd)
}

func loadActivityRegistry(path string) (*registry.ActivityRegistry, error) {
	if path == "" {
		return registry.Default()
	}
	return registry.LoadRegistry(path)
}
