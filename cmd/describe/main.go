package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/nachoal/describe-go/config"
	"github.com/nachoal/describe-go/describe"
	"github.com/nachoal/describe-go/internal/logx"
	"github.com/nachoal/describe-go/internal/provider"
	"github.com/nachoal/describe-go/llm"
	"github.com/nachoal/describe-go/prompts"
	"github.com/nachoal/describe-go/tui"
	"github.com/nachoal/describe-go/tui/styles"
)

var (
	// Root command
	rootCmd = &cobra.Command{
		Use:   "describe [paths...]",
		Short: "Describe images or text with a multimodal model",
		Long: "describe sends images (default) or text files to a model in one request and prints its JSON reply.\n" +
			"Use - to read an item from stdin.",
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE:          runDescribe,
	}

	providersCmd = &cobra.Command{
		Use:   "providers",
		Short: "List available providers",
		Args:  cobra.NoArgs,
		Run:   listProviders,
	}

	presetsCmd = &cobra.Command{
		Use:   "presets",
		Short: "List prompt presets",
		Args:  cobra.NoArgs,
		RunE:  listPresets,
	}

	configCmd = &cobra.Command{
		Use:   "config",
		Short: "Inspect or change saved defaults",
	}

	configShowCmd = &cobra.Command{
		Use:   "show",
		Short: "Print saved defaults",
		Args:  cobra.NoArgs,
		RunE:  showConfig,
	}

	configSetCmd = &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Save a default (" + strings.Join(config.Keys, ", ") + ")",
		Args:  cobra.ExactArgs(2),
		RunE:  setConfig,
	}
)

func init() {
	// Global flags
	pf := rootCmd.PersistentFlags()
	pf.String("provider", "", "Provider ("+strings.Join(provider.Names(), ", ")+")")
	pf.String("model", "", "Model to use")
	pf.String("prompt-file", "", "YAML file with prompt presets")
	pf.String("theme", "default", "Output theme ("+strings.Join(styles.ThemeNames, ", ")+")")
	pf.BoolP("verbose", "v", false, "Enable debug logging")

	// Describe flags
	f := rootCmd.Flags()
	f.Bool("text", false, "Send items as text instead of images")
	f.StringP("system", "s", "", "System prompt (overrides the preset)")
	f.StringP("prompt", "p", "", "User prompt (overrides the preset)")
	f.String("preset", prompts.DefaultName, "Prompt preset name")
	f.Float32("temperature", 0, "Sampling temperature in (0, 2]; 0 keeps the saved value or 0.3")
	f.Int("max-tokens", 0, "Maximum output tokens; 0 keeps the saved value or 1500")
	f.Bool("json", false, "Print compact unstyled JSON")

	rootCmd.AddCommand(providersCmd, presetsCmd, configCmd)
	configCmd.AddCommand(configShowCmd, configSetCmd)

	// Bind flags to viper; DESCRIBE_MODEL etc. fill in unset flags
	viper.SetEnvPrefix("DESCRIBE")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
	_ = viper.BindPFlags(pf)
	_ = viper.BindPFlags(f)
}

func main() {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "Warning: Error loading .env file: %v\n", err)
	}

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, tui.RenderError(describe.Classify(err), stderrStyles()))
		os.Exit(1)
	}
}

// settings is the resolved configuration for one describe run
type settings struct {
	provider    string
	model       string
	temperature float32
	maxTokens   int
	preset      prompts.Preset
	image       bool
}

// resolveSettings applies flag > env > saved config > built-in default
func resolveSettings(cfg config.Config) (settings, error) {
	s := settings{
		provider:    provider.Canonical(viper.GetString("provider")),
		model:       strings.TrimSpace(viper.GetString("model")),
		temperature: float32(viper.GetFloat64("temperature")),
		maxTokens:   viper.GetInt("max-tokens"),
	}

	if s.provider == "" {
		s.provider = provider.Canonical(cfg.DefaultProvider)
	}
	if s.provider == "" {
		s.provider = "openai"
	}
	info, ok := provider.Lookup(s.provider)
	if !ok {
		return s, fmt.Errorf("unknown provider: %s (available: %s)", s.provider, strings.Join(provider.Names(), ", "))
	}
	if s.temperature < 0 || s.temperature > 2 {
		return s, fmt.Errorf("temperature must be between 0 and 2, got %g", s.temperature)
	}
	if s.temperature == 0 {
		s.temperature = cfg.Temperature
	}
	if s.maxTokens <= 0 {
		s.maxTokens = cfg.MaxTokens
	}

	set := prompts.Builtin()
	if path := viper.GetString("prompt-file"); path != "" {
		fileSet, err := prompts.Load(path)
		if err != nil {
			return s, err
		}
		set = set.Merge(fileSet)
	}
	name := viper.GetString("preset")
	preset, ok := set.Get(name)
	if !ok {
		return s, fmt.Errorf("unknown preset %q (available: %s)", name, strings.Join(set.Names(), ", "))
	}
	if v := viper.GetString("system"); v != "" {
		preset.System = v
	}
	if v := viper.GetString("prompt"); v != "" {
		preset.User = v
	}
	s.preset = preset
	s.image = preset.IsImage()
	if viper.IsSet("text") {
		s.image = !viper.GetBool("text")
	}

	if s.image && !info.Vision {
		return s, fmt.Errorf("provider %s accepts text only; pass --text or choose a vision provider", s.provider)
	}

	if s.model == "" {
		s.model = preset.Model
	}
	if s.model == "" && cfg.DefaultModel != "" && provider.Canonical(cfg.DefaultProvider) == s.provider {
		s.model = cfg.DefaultModel
	}
	if s.model == "" {
		s.model = provider.DefaultModel(s.provider)
	}
	return s, nil
}

func runDescribe(cmd *cobra.Command, args []string) error {
	verbose := viper.GetBool("verbose")
	logger := logx.New(os.Stderr, verbose)

	cfgManager, err := config.NewManager()
	if err != nil {
		return fmt.Errorf("failed to create config manager: %w", err)
	}

	s, err := resolveSettings(cfgManager.Snapshot())
	if err != nil {
		return invalidInput(err)
	}
	logger.Debug("resolved settings", "provider", s.provider, "model", s.model, "preset", viper.GetString("preset"), "image", s.image)

	items, err := readItems(args, os.Stdin)
	if err != nil {
		return invalidInput(err)
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	client, err := provider.New(ctx, s.provider, s.model)
	if err != nil {
		return err
	}
	defer client.Close()

	describer := describe.New(client,
		describe.WithModel(s.model),
		describe.WithTemperature(s.temperature),
		describe.WithMaxTokens(s.maxTokens),
		describe.WithLogger(logger),
	)

	call := func(ctx context.Context) (map[string]any, error) {
		return describer.Describe(ctx, items, s.preset.System, s.preset.User, s.image)
	}

	compact := viper.GetBool("json")
	start := time.Now()
	var result map[string]any
	if !compact && logx.ColorEnabled(os.Stderr) {
		title := fmt.Sprintf("Describing %d item(s) with %s", len(items), s.model)
		result, err = tui.RunWithSpinner(ctx, os.Stderr, title, stderrStyles(), call)
	} else {
		result, err = call(ctx)
	}

	if verbose {
		outcome := "ok"
		if err != nil {
			outcome = describe.KindOf(describe.Classify(err)).String()
		}
		fmt.Fprintln(os.Stderr, logx.FormatCallLine(start, outcome, time.Since(start),
			llm.ProviderName(client), s.model, len(items), s.image, logx.ColorEnabled(os.Stderr)))
	}
	if err != nil {
		return err
	}

	out, err := tui.RenderJSON(result, stdoutStyles(), compact)
	if err != nil {
		return err
	}
	fmt.Println(out)
	return nil
}

func listProviders(cmd *cobra.Command, args []string) {
	st := stdoutStyles()
	fmt.Println(st.Title.Render("Available providers:"))
	for _, p := range provider.All() {
		key := "no key needed"
		if p.APIKeyEnv != "" {
			key = p.APIKeyEnv
			if os.Getenv(p.APIKeyEnv) != "" {
				key += " " + st.Success.Render("✓")
			} else {
				key += " " + st.ErrorKind.Render("✗")
			}
		}
		fmt.Printf("  %-12s %-18s %s\n", p.Name, st.Label.Render(p.Backend), key)
		modes := "images, text"
		if !p.Vision {
			modes = "text only"
		}
		fmt.Printf("  %-12s %s\n", "", st.Help.Render("default model: "+p.DefaultModel+" ("+modes+")"))
	}
}

func listPresets(cmd *cobra.Command, args []string) error {
	set := prompts.Builtin()
	if path := viper.GetString("prompt-file"); path != "" {
		fileSet, err := prompts.Load(path)
		if err != nil {
			return err
		}
		set = set.Merge(fileSet)
	}
	st := stdoutStyles()
	fmt.Println(st.Title.Render("Prompt presets:"))
	for _, name := range set.Names() {
		p, _ := set.Get(name)
		fmt.Printf("  %-12s %-6s %s\n", name, st.Label.Render(string(p.Mode)), p.User)
	}
	return nil
}

func showConfig(cmd *cobra.Command, args []string) error {
	m, err := config.NewManager()
	if err != nil {
		return fmt.Errorf("failed to create config manager: %w", err)
	}
	cfg := m.Snapshot()
	st := stdoutStyles()
	fmt.Println(st.Label.Render(m.Path()))
	fmt.Printf("  provider     %s\n", m.GetDefaultProvider())
	fmt.Printf("  model        %s\n", orDefault(cfg.DefaultModel, provider.DefaultModel(m.GetDefaultProvider())))
	fmt.Printf("  temperature  %s\n", orDefault(formatNonZero(cfg.Temperature), fmt.Sprint(describe.DefaultTemperature)))
	fmt.Printf("  max_tokens   %s\n", orDefault(formatNonZero(cfg.MaxTokens), fmt.Sprint(describe.DefaultMaxTokens)))
	return nil
}

func setConfig(cmd *cobra.Command, args []string) error {
	m, err := config.NewManager()
	if err != nil {
		return fmt.Errorf("failed to create config manager: %w", err)
	}
	key, value := args[0], args[1]
	if strings.EqualFold(key, "provider") {
		if _, ok := provider.Lookup(value); !ok {
			return fmt.Errorf("unknown provider: %s (available: %s)", value, strings.Join(provider.Names(), ", "))
		}
		value = provider.Canonical(value)
	}
	if err := m.Set(key, value); err != nil {
		return err
	}
	fmt.Printf("%s %s = %s\n", stdoutStyles().Success.Render("saved"), key, value)
	return nil
}

func stdoutStyles() *styles.Styles {
	if !logx.ColorEnabled(os.Stdout) {
		return styles.Plain()
	}
	return styles.NewStyles(styles.GetTheme(viper.GetString("theme")))
}

func stderrStyles() *styles.Styles {
	if !logx.ColorEnabled(os.Stderr) {
		return styles.Plain()
	}
	return styles.NewStyles(styles.GetTheme(viper.GetString("theme")))
}

// invalidInput marks a usage problem found before any request is made
func invalidInput(err error) error {
	return &describe.Error{Kind: describe.KindInvalidInput, Message: err.Error(), Err: err}
}

func orDefault(v, def string) string {
	if v == "" {
		return def + " (default)"
	}
	return v
}

func formatNonZero[T int | float32](v T) string {
	if v == 0 {
		return ""
	}
	return fmt.Sprint(v)
}
