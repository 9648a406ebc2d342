package cmd

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/osomworks/themerouter/internal/content"
	"github.com/osomworks/themerouter/internal/metrics"
	"github.com/osomworks/themerouter/internal/registry"
	"github.com/osomworks/themerouter/internal/resolve"
	"github.com/osomworks/themerouter/internal/themes"
	"github.com/osomworks/themerouter/internal/types"
)

var resolveCmd = &cobra.Command{
	Use:   "resolve <request-uri>",
	Short: "Resolve which theme serves a request",
	Args:  cobra.ExactArgs(1),
	RunE:  runResolve,
}

var (
	resolveUser    int64
	resolveAdmin   bool
	resolveAjax    bool
	resolveRest    bool
	resolveReferer string
	resolveForm    []string
	resolveActive  string
)

func init() {
	rootCmd.AddCommand(resolveCmd)
	resolveCmd.Flags().Int64Var(&resolveUser, "user", 0, "authenticated user ID")
	resolveCmd.Flags().BoolVar(&resolveAdmin, "admin", false, "classify as a dashboard request")
	resolveCmd.Flags().BoolVar(&resolveAjax, "ajax", false, "classify as a dashboard background call")
	resolveCmd.Flags().BoolVar(&resolveRest, "rest", false, "classify as an API call")
	resolveCmd.Flags().StringVar(&resolveReferer, "referer", "", "HTTP referer header")
	resolveCmd.Flags().StringArrayVar(&resolveForm, "form", nil, "POST form field as key=value (repeatable)")
	resolveCmd.Flags().StringVar(&resolveActive, "active-theme", "", "theme the host considers active")
}

func runResolve(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	st, conn, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer conn.Close()

	inventory, err := themes.NewInventory(cfg.ThemesDir)
	if err != nil {
		return fmt.Errorf("failed to scan themes: %w", err)
	}

	rc, err := requestContext(args[0])
	if err != nil {
		return err
	}

	queries := st.Queries()
	resolver := content.NewSQLResolver(queries)
	runtime := registry.NewRuntime()
	reg := registry.New(st)

	var rec resolve.Recorder
	if cfg.MetricsEnabled {
		rec = metrics.NewRecorder(prometheus.DefaultRegisterer)
	}

	engine := resolve.NewEngine(st, inventory, resolver, runtime, reg, rec)
	engine.PrepareRequest()

	theme, ok := engine.Resolve(rc)
	if !ok {
		fmt.Println("default")
		return nil
	}
	fmt.Println(theme)
	return nil
}

func requestContext(requestURI string) (*resolve.RequestContext, error) {
	parsed, err := url.Parse(requestURI)
	if err != nil {
		return nil, fmt.Errorf("invalid request URI %q: %w", requestURI, err)
	}

	form := url.Values{}
	for _, pair := range resolveForm {
		key, value, found := strings.Cut(pair, "=")
		if !found {
			return nil, fmt.Errorf("invalid form field %q, want key=value", pair)
		}
		form.Add(key, value)
	}

	return &resolve.RequestContext{
		Path:        requestURI,
		Query:       parsed.Query(),
		Form:        form,
		Referer:     resolveReferer,
		UserID:      types.UserID(resolveUser),
		Admin:       resolveAdmin || resolveAjax,
		Ajax:        resolveAjax,
		RestFlag:    resolveRest,
		ActiveTheme: types.ThemeSlug(resolveActive),
	}, nil
}
