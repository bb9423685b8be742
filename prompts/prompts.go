// Package prompts loads named system/user prompt pairs from a YAML file.
//
// Example file:
//
//	presets:
//	  objects:
//	    system: You are a vision model that lists objects.
//	    user: List every object in the image with a count
//	  summary:
//	    system: You summarise documents.
//	    user: Summarise the text in three bullet points
//	    mode: text
package prompts

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Mode selects how content items are encoded for a preset
type Mode string

const (
	ModeImage Mode = "image"
	ModeText  Mode = "text"
)

// DefaultName is the preset used when none is requested
const DefaultName = "describe"

// Preset is one named prompt pair
type Preset struct {
	System string `yaml:"system"`
	User   string `yaml:"user"`
	Mode   Mode   `yaml:"mode"`
	Model  string `yaml:"model"`
}

// IsImage reports whether items should be sent as images
func (p Preset) IsImage() bool {
	return p.Mode != ModeText
}

type File struct {
	Presets map[string]Preset `yaml:"presets"`
}

// Set holds presets keyed by lower-case name
type Set struct {
	presets map[string]Preset
}

// Builtin returns the presets available without a file
func Builtin() *Set {
	return NewSet(map[string]Preset{
		DefaultName: {
			System: "You are an assistant that describes images accurately and concisely.",
			User:   "Describe the image. Include a short caption, the main objects and any visible text",
			Mode:   ModeImage,
		},
		"objects": {
			System: "You are a vision model that identifies objects in images.",
			User:   "List the objects in the image as an array of names with counts",
			Mode:   ModeImage,
		},
		"summary": {
			System: "You are an assistant that summarises documents.",
			User:   "Summarise the text in at most three sentences and list its key topics",
			Mode:   ModeText,
		},
	})
}

// NewSet normalizes names and modes
func NewSet(presets map[string]Preset) *Set {
	out := &Set{presets: map[string]Preset{}}
	for name, p := range presets {
		key := normalizeName(name)
		if key == "" {
			continue
		}
		out.presets[key] = normalizePreset(p)
	}
	return out
}

// Get looks up a preset by name, case-insensitively
func (s *Set) Get(name string) (Preset, bool) {
	if s == nil {
		return Preset{}, false
	}
	p, ok := s.presets[normalizeName(name)]
	return p, ok
}

// Names returns the preset names in sorted order
func (s *Set) Names() []string {
	if s == nil {
		return nil
	}
	out := make([]string, 0, len(s.presets))
	for name := range s.presets {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Merge returns a new set with other's presets layered over s
func (s *Set) Merge(other *Set) *Set {
	merged := map[string]Preset{}
	for _, src := range []*Set{s, other} {
		if src == nil {
			continue
		}
		for name, p := range src.presets {
			merged[name] = p
		}
	}
	return &Set{presets: merged}
}

// Load reads a preset file. An empty path yields an empty set; a missing
// file is an error because the caller asked for it explicitly.
func Load(path string) (*Set, error) {
	p := strings.TrimSpace(path)
	if p == "" {
		return NewSet(nil), nil
	}
	b, err := os.ReadFile(p)
	if err != nil {
		return nil, fmt.Errorf("read prompt file: %w", err)
	}
	return Parse(b)
}

// Parse decodes preset YAML
func Parse(data []byte) (*Set, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse prompt file: %w", err)
	}
	for name, p := range f.Presets {
		if err := validate(name, p); err != nil {
			return nil, err
		}
	}
	return NewSet(f.Presets), nil
}

func validate(name string, p Preset) error {
	if strings.TrimSpace(p.User) == "" {
		return fmt.Errorf("preset %q: user prompt is required", name)
	}
	switch Mode(strings.ToLower(strings.TrimSpace(string(p.Mode)))) {
	case "", ModeImage, ModeText:
		return nil
	default:
		return fmt.Errorf("preset %q: mode must be image or text, got %q", name, p.Mode)
	}
}

func normalizeName(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func normalizePreset(p Preset) Preset {
	out := p
	out.System = strings.TrimSpace(out.System)
	out.User = strings.TrimSpace(out.User)
	out.Model = strings.TrimSpace(out.Model)
	out.Mode = Mode(strings.ToLower(strings.TrimSpace(string(out.Mode))))
	if out.Mode == "" {
		out.Mode = ModeImage
	}
	return out
}
