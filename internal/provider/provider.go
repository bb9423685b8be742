// Package provider turns a provider name into a configured llm.Client.
package provider

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/nachoal/describe-go/llm"
	"github.com/nachoal/describe-go/llm/anthropic"
	"github.com/nachoal/describe-go/llm/gemini"
	"github.com/nachoal/describe-go/llm/openai"
	"github.com/nachoal/describe-go/llm/openaisdk"
)

// Info describes one selectable backend
type Info struct {
	Name         string
	Backend      string
	APIKeyEnv    string
	DefaultModel string
	// Vision is false when the provider only accepts text parts
	Vision bool
}

const (
	backendCompatible = "openai-compatible"
	backendOpenAISDK  = "openai-go"
	backendAnthropic  = "anthropic-sdk-go"
	backendGemini     = "genai"
)

var sdkProviders = []Info{
	{Name: "openai-sdk", Backend: backendOpenAISDK, APIKeyEnv: "OPENAI_API_KEY", DefaultModel: openaisdk.DefaultModel, Vision: true},
	{Name: "anthropic", Backend: backendAnthropic, APIKeyEnv: "ANTHROPIC_API_KEY", DefaultModel: anthropic.DefaultModel, Vision: true},
	{Name: "gemini", Backend: backendGemini, APIKeyEnv: "GEMINI_API_KEY", DefaultModel: gemini.DefaultModel, Vision: true},
}

var aliases = map[string]string{
	"claude":    "anthropic",
	"google":    "gemini",
	"kimi":      "moonshot",
	"lm-studio": "lmstudio",
	"openai-go": "openai-sdk",
}

// Canonical resolves aliases and case
func Canonical(name string) string {
	n := strings.ToLower(strings.TrimSpace(name))
	if alias, ok := aliases[n]; ok {
		return alias
	}
	return n
}

// All returns every known provider sorted by name
func All() []Info {
	out := make([]Info, 0, len(sdkProviders)+8)
	for _, p := range openai.Presets() {
		out = append(out, Info{
			Name:         p.Name,
			Backend:      backendCompatible,
			APIKeyEnv:    p.APIKeyEnv,
			DefaultModel: p.DefaultModel,
			Vision:       p.Vision,
		})
	}
	out = append(out, sdkProviders...)
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Names returns the sorted provider names
func Names() []string {
	all := All()
	names := make([]string, len(all))
	for i, p := range all {
		names[i] = p.Name
	}
	return names
}

// Lookup finds provider info by name or alias
func Lookup(name string) (Info, bool) {
	n := Canonical(name)
	for _, p := range All() {
		if p.Name == n {
			return p, true
		}
	}
	return Info{}, false
}

// DefaultModel returns the provider's default model, or "" when unknown
func DefaultModel(name string) string {
	info, _ := Lookup(name)
	return info.DefaultModel
}

// New creates a client for the named provider. model may be empty to use the
// provider default.
func New(ctx context.Context, name, model string, opts ...llm.ClientOption) (llm.Client, error) {
	if model != "" {
		opts = append(opts, llm.WithModel(model))
	}

	// each branch returns nil explicitly on error so callers never see a typed nil
	switch n := Canonical(name); n {
	case "openai-sdk":
		c, err := openaisdk.NewClient(opts...)
		if err != nil {
			return nil, err
		}
		return c, nil
	case "anthropic":
		c, err := anthropic.NewClient(opts...)
		if err != nil {
			return nil, err
		}
		return c, nil
	case "gemini":
		c, err := gemini.NewClient(ctx, opts...)
		if err != nil {
			return nil, err
		}
		return c, nil
	default:
		preset, ok := openai.Lookup(n)
		if !ok {
			return nil, fmt.Errorf("unknown provider: %s (available: %s)", name, strings.Join(Names(), ", "))
		}
		c, err := openai.NewPresetClient(preset, opts...)
		if err != nil {
			return nil, err
		}
		return c, nil
	}
}
