// Package features holds the assistant feature registry: each feature names
// the system instruction a chat session for it starts with.
package features

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"

	"github.com/tidwall/jsonc"
)

const ContentAssistant = "CONTENT_ASSISTANT"

const defaultInstruction = `You are the BuildForge Assistant.
Your goal: help founders and developers draft clear content for the BuildForge platform.

Capabilities:
1. Idea submissions: help founders describe the problem, target users, core features and preferred tech stack.
2. Open roles: help draft role descriptions with responsibilities, required skills and how to apply.
3. Sprint updates and deliveries: help developers summarize progress, blockers and links to the work.
4. Verification: remind users that every post is reviewed by a lead before it goes live.

Tone: professional, helpful and community-focused.`

// FallbackInstruction seeds sessions for features without their own text.
const FallbackInstruction = "You are a helpful assistant for BuildForge."

type Feature struct {
	ID                string  `json:"id"`
	Name              string  `json:"name"`
	SystemInstruction string  `json:"system_instruction"`
	Temperature       float64 `json:"temperature,omitempty"`
	MaxTokens         int     `json:"max_tokens,omitempty"`
}

type File struct {
	Features []Feature `json:"features"`
}

type Registry struct {
	mu       sync.RWMutex
	features map[string]*Feature
}

func NewRegistry() *Registry {
	return &Registry{
		features: make(map[string]*Feature),
	}
}

// Default returns a registry holding only the built-in content assistant.
func Default() *Registry {
	r := NewRegistry()
	r.Register(&Feature{
		ID:                ContentAssistant,
		Name:              "Content Assistant",
		SystemInstruction: defaultInstruction,
		Temperature:       0.7,
		MaxTokens:         1024,
	})
	return r
}

// Parse reads a JSONC registry. Comments and trailing commas are allowed.
// The built-in content assistant is kept unless the file overrides it.
func Parse(data []byte) (*Registry, error) {
	var file File
	if err := json.Unmarshal(jsonc.ToJSON(data), &file); err != nil {
		return nil, fmt.Errorf("failed to parse features config: %w", err)
	}

	registry := Default()
	for i := range file.Features {
		f := &file.Features[i]
		f.ID = strings.ToUpper(strings.TrimSpace(f.ID))
		if f.ID == "" {
			return nil, fmt.Errorf("features config: entry %d has no id", i)
		}
		registry.Register(f)
	}
	return registry, nil
}

// LoadFromFile parses path. A missing file yields the default registry.
func LoadFromFile(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return Default(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read features config: %w", err)
	}
	return Parse(data)
}

func (r *Registry) Register(f *Feature) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.features[f.ID] = f
}

func (r *Registry) Get(id string) *Feature {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.features[id]
}

func (r *Registry) Exists(id string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.features[id]
	return ok
}

// SystemInstruction returns the instruction for id, or FallbackInstruction
// when the feature has none.
func (r *Registry) SystemInstruction(id string) string {
	if f := r.Get(id); f != nil && f.SystemInstruction != "" {
		return f.SystemInstruction
	}
	return FallbackInstruction
}

// All returns the features sorted by id.
func (r *Registry) All() []*Feature {
	r.mu.RLock()
	defer r.mu.RUnlock()
	result := make([]*Feature, 0, len(r.features))
	for _, f := range r.features {
		result = append(result, f)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result
}
