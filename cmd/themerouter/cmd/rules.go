package cmd

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/osomworks/themerouter/internal/themes"
	"github.com/osomworks/themerouter/internal/types"
)

var rulesCmd = &cobra.Command{
	Use:   "rules",
	Short: "Manage theme-switching rules",
}

var rulesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List rules in evaluation order",
	RunE:  runRulesList,
}

var rulesAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Append a rule to the list",
	RunE:  runRulesAdd,
}

var rulesDeleteCmd = &cobra.Command{
	Use:   "delete <index>",
	Short: "Delete the rule at the given position",
	Args:  cobra.ExactArgs(1),
	RunE:  runRulesDelete,
}

var (
	ruleType        string
	ruleValue       string
	ruleTheme       string
	rulePostType    string
	ruleTaxonomy    string
	ruleArchiveSlug string
	ruleRewriteSlug string
)

func init() {
	rootCmd.AddCommand(rulesCmd)
	rulesCmd.AddCommand(rulesListCmd, rulesAddCmd, rulesDeleteCmd)

	rulesAddCmd.Flags().StringVar(&ruleType, "type", "", "rule type (url, page, post, draft_page, post_type, taxonomy, ...)")
	rulesAddCmd.Flags().StringVar(&ruleValue, "value", "", "rule value (content ID, path, or type name)")
	rulesAddCmd.Flags().StringVar(&ruleTheme, "theme", "", "destination theme slug")
	rulesAddCmd.Flags().StringVar(&rulePostType, "post-type", "", "post type for custom-item rules")
	rulesAddCmd.Flags().StringVar(&ruleTaxonomy, "taxonomy", "", "taxonomy for term rules")
	rulesAddCmd.Flags().StringVar(&ruleArchiveSlug, "archive-slug", "", "cached archive slug for post-type rules")
	rulesAddCmd.Flags().StringVar(&ruleRewriteSlug, "rewrite-slug", "", "cached rewrite slug")
	rulesAddCmd.MarkFlagRequired("type")
	rulesAddCmd.MarkFlagRequired("value")
	rulesAddCmd.MarkFlagRequired("theme")
}

func runRulesList(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	st, conn, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer conn.Close()

	rules, err := st.Rules()
	if err != nil {
		return fmt.Errorf("failed to load rules: %w", err)
	}
	for i, rule := range rules {
		encoded, err := json.Marshal(rule)
		if err != nil {
			return fmt.Errorf("failed to encode rule %d: %w", i, err)
		}
		fmt.Printf("%3d  %s\n", i, encoded)
	}
	return nil
}

func runRulesAdd(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	rule, err := buildRule()
	if err != nil {
		return err
	}

	inv, err := themes.NewInventory(cfg.ThemesDir)
	if err != nil {
		return fmt.Errorf("failed to read themes: %w", err)
	}
	if !inv.Exists(rule.Theme) {
		return fmt.Errorf("%w: %s", types.ErrThemeNotFound, rule.Theme)
	}

	st, conn, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer conn.Close()

	rules, err := st.Rules()
	if err != nil {
		return fmt.Errorf("failed to load rules: %w", err)
	}
	rules = append(rules, rule)
	if err := st.SaveRules(rules); err != nil {
		return fmt.Errorf("failed to save rules: %w", err)
	}
	fmt.Printf("Added rule %s at position %d\n", rule.ID, len(rules)-1)
	return nil
}

func runRulesDelete(cmd *cobra.Command, args []string) error {
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

	rules, err := st.Rules()
	if err != nil {
		return fmt.Errorf("failed to load rules: %w", err)
	}
	if index < 0 || index >= len(rules) {
		return fmt.Errorf("%w: index %d", types.ErrRuleNotFound, index)
	}
	rules = append(rules[:index], rules[index+1:]...)
	if err := st.SaveRules(rules); err != nil {
		return fmt.Errorf("failed to save rules: %w", err)
	}
	fmt.Printf("Deleted rule at position %d\n", index)
	return nil
}

// buildRule validates the add flags through the wire decoder, so the CLI
// accepts exactly the rule shapes the store round-trips.
func buildRule() (types.Rule, error) {
	if ruleTheme == "" {
		return types.Rule{}, fmt.Errorf("%w: theme is required", types.ErrInvalidRule)
	}
	if ruleValue == "" {
		return types.Rule{}, fmt.Errorf("%w: value is required", types.ErrInvalidRule)
	}

	wire := map[string]string{
		"id":    string(types.NewRuleID()),
		"type":  ruleType,
		"value": ruleValue,
		"theme": ruleTheme,
	}
	if rulePostType != "" {
		wire["post_type"] = rulePostType
	}
	if ruleTaxonomy != "" {
		wire["taxonomy"] = ruleTaxonomy
	}
	if ruleArchiveSlug != "" {
		wire["archive_slug"] = ruleArchiveSlug
	}
	if ruleRewriteSlug != "" {
		wire["rewrite_slug"] = ruleRewriteSlug
	}

	encoded, err := json.Marshal(wire)
	if err != nil {
		return types.Rule{}, err
	}
	var rule types.Rule
	if err := json.Unmarshal(encoded, &rule); err != nil {
		return types.Rule{}, err
	}
	if _, unknown := rule.Match.(types.UnknownTarget); unknown {
		return types.Rule{}, fmt.Errorf("%w: unknown rule type %q", types.ErrInvalidRule, ruleType)
	}
	return rule, nil
}
