package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// ServiceName is the YAML file name (without extension) holding the
// assistant configuration inside a context directory.
const ServiceName = "counterpal"

// Service is the assistant configuration within a context.
type Service struct {
	// APIKey authenticates against the hosted model endpoint. The
	// GEMINI_API_KEY environment variable takes precedence.
	APIKey string `yaml:"api_key,omitempty"`

	// LiveModel overrides the default live conversation model.
	LiveModel string `yaml:"live_model,omitempty"`

	// VisionModel overrides the default tray counting model.
	VisionModel string `yaml:"vision_model,omitempty"`

	// Menu is the path to the menu catalog YAML. The built-in catalog
	// is used when empty. Relative paths resolve against the context
	// directory.
	Menu string `yaml:"menu,omitempty"`

	// ArchiveDir is the BadgerDB directory for session history.
	// Archiving is disabled when empty.
	ArchiveDir string `yaml:"archive_dir,omitempty"`
}

// LoadService loads the assistant configuration from a context
// directory. A missing file yields a zero Service, not an error;
// every field has a workable default or an env fallback.
func LoadService(contextDir string) (*Service, error) {
	path := filepath.Join(contextDir, ServiceName+".yaml")
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &Service{}, nil
		}
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	var svc Service
	if err := yaml.Unmarshal(data, &svc); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return &svc, nil
}

// SaveService writes the assistant configuration into a context
// directory.
func SaveService(contextDir string, svc *Service) error {
	if err := os.MkdirAll(contextDir, 0755); err != nil {
		return fmt.Errorf("create context dir: %w", err)
	}
	data, err := yaml.Marshal(svc)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	path := filepath.Join(contextDir, ServiceName+".yaml")
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// ResolvePath resolves a possibly relative config path against the
// context directory.
func ResolvePath(contextDir, path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(contextDir, path)
}

// APIKeyFor returns the effective API key: the GEMINI_API_KEY
// environment variable, falling back to the service config.
func APIKeyFor(svc *Service) string {
	if key := os.Getenv("GEMINI_API_KEY"); key != "" {
		return key
	}
	return svc.APIKey
}
