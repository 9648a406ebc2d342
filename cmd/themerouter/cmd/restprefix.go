package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/osomworks/themerouter/internal/types"
)

var restPrefixCmd = &cobra.Command{
	Use:   "rest-prefix",
	Short: "Manage per-theme API URL prefixes",
}

var restPrefixListCmd = &cobra.Command{
	Use:   "list",
	Short: "List configured prefix mappings",
	RunE:  runRestPrefixList,
}

var restPrefixSetCmd = &cobra.Command{
	Use:   "set <theme> <prefix>",
	Short: "Set a theme's API prefix",
	Args:  cobra.ExactArgs(2),
	RunE:  runRestPrefixSet,
}

var restPrefixDeleteCmd = &cobra.Command{
	Use:   "delete <index>",
	Short: "Delete the mapping at the given position",
	Args:  cobra.ExactArgs(1),
	RunE:  runRestPrefixDelete,
}

func init() {
	rootCmd.AddCommand(restPrefixCmd)
	restPrefixCmd.AddCommand(restPrefixListCmd, restPrefixSetCmd, restPrefixDeleteCmd)
}

func runRestPrefixList(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	st, conn, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer conn.Close()

	prefixes, err := st.RestPrefixes()
	if err != nil {
		return fmt.Errorf("failed to load prefixes: %w", err)
	}
	for i, mapping := range prefixes {
		fmt.Printf("%3d  %-30s %s\n", i, mapping.Theme, mapping.Prefix)
	}
	return nil
}

func runRestPrefixSet(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	st, conn, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer conn.Close()

	sanitized, err := st.SetRestPrefix(types.ThemeSlug(args[0]), args[1])
	if err != nil {
		return fmt.Errorf("failed to set prefix: %w", err)
	}
	fmt.Printf("Theme %s now served under /%s/\n", args[0], sanitized)
	return nil
}

func runRestPrefixDelete(cmd *cobra.Command, args []string) error {
	index, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("invalid index %q", args[0])
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	st, conn, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer conn.Close()

	if err := st.DeleteRestPrefix(index); err != nil {
		return fmt.Errorf("failed to delete prefix: %w", err)
	}
	fmt.Printf("Deleted prefix mapping at position %d\n", index)
	return nil
}
