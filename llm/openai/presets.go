package openai

import (
	"sort"
	"strings"
)

// Preset describes an OpenAI-compatible endpoint
type Preset struct {
	Name         string
	BaseURL      string
	APIKeyEnv    string // empty when the server needs no key
	BaseURLEnv   string // optional override for local servers
	DefaultModel string
	// Vision is false for providers that only accept text parts
	Vision bool
}

var presets = map[string]Preset{
	"openai": {
		Name:         "openai",
		BaseURL:      "https://api.openai.com/v1",
		APIKeyEnv:    "OPENAI_API_KEY",
		BaseURLEnv:   "OPENAI_BASE_URL",
		DefaultModel: "gpt-4o",
		Vision:       true,
	},
	"groq": {
		Name:         "groq",
		BaseURL:      "https://api.groq.com/openai/v1",
		APIKeyEnv:    "GROQ_API_KEY",
		DefaultModel: "meta-llama/llama-4-scout-17b-16e-instruct",
		Vision:       true,
	},
	"deepseek": {
		Name:         "deepseek",
		BaseURL:      "https://api.deepseek.com",
		APIKeyEnv:    "DEEPSEEK_API_KEY",
		DefaultModel: "deepseek-chat",
	},
	"moonshot": {
		Name:         "moonshot",
		BaseURL:      "https://api.moonshot.ai/v1",
		APIKeyEnv:    "MOONSHOT_API_KEY",
		DefaultModel: "moonshot-v1-8k-vision-preview",
		Vision:       true,
	},
	"minimax": {
		Name:         "minimax",
		BaseURL:      "https://api.minimax.io/v1",
		APIKeyEnv:    "MINIMAX_API_KEY",
		BaseURLEnv:   "MINIMAX_BASE_URL",
		DefaultModel: "MiniMax-M2.5",
	},
	"lmstudio": {
		Name:         "lmstudio",
		BaseURL:      "http://localhost:1234/v1",
		BaseURLEnv:   "LM_STUDIO_URL",
		DefaultModel: "local-model",
		Vision:       true,
	},
	"ollama": {
		Name:         "ollama",
		BaseURL:      "http://localhost:11434/v1",
		BaseURLEnv:   "OLLAMA_OPENAI_URL",
		DefaultModel: "llava",
		Vision:       true,
	},
}

// Lookup returns the preset registered under name (case-insensitive)
func Lookup(name string) (Preset, bool) {
	p, ok := presets[strings.ToLower(strings.TrimSpace(name))]
	return p, ok
}

// Presets returns all presets sorted by name
func Presets() []Preset {
	out := make([]Preset, 0, len(presets))
	for _, p := range presets {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
