// Package config loads the YAML rules file that declares what a scan looks
// for and which files it skips.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/varalys/reposcan/internal/rules"
)

// ContentRuleConfig is one content rule declaration.
type ContentRuleConfig struct {
	Name      string   `yaml:"name"`
	Pattern   string   `yaml:"pattern"`
	Whitelist []string `yaml:"whitelist"`
	Blacklist []string `yaml:"blacklist"`
}

// FileNameRuleConfig is one file-name rule declaration.
type FileNameRuleConfig struct {
	Name    string `yaml:"name"`
	Pattern string `yaml:"pattern"`
}

// FileConfig is the on-disk YAML configuration shape.
type FileConfig struct {
	ContentRules     []ContentRuleConfig  `yaml:"content_rules"`
	FileNameRules    []FileNameRuleConfig `yaml:"file_name_rules"`
	IgnoreExtensions []string             `yaml:"ignore_extensions"`
	IgnorePaths      []string             `yaml:"ignore_paths"`

	BranchGlob  *string `yaml:"branch_glob"`
	Workers     *int    `yaml:"workers"`
	MaxBlobSize *int64  `yaml:"max_blob_size"`
}

// LoadFile reads a YAML rules file from the provided path.
func LoadFile(path string) (FileConfig, error) {
	var cfg FileConfig
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// LoadLocal searches for a repo-local rules file in the given root. It
// supports .reposcan.yml/.yaml and reposcan.yml/.yaml.
func LoadLocal(repoRoot string) (FileConfig, error) {
	var cfg FileConfig
	for _, name := range []string{".reposcan.yml", ".reposcan.yaml", "reposcan.yml", "reposcan.yaml"} {
		p := filepath.Join(repoRoot, name)
		if _, err := os.Stat(p); err == nil {
			return LoadFile(p)
		}
	}
	return cfg, errors.New("no local config")
}

// BuildStore compiles the declared rules into a rule store. The first
// declaration that fails to compile aborts the build with its position.
func (fc FileConfig) BuildStore() (*rules.Store, error) {
	s := rules.NewStore()
	for i, r := range fc.ContentRules {
		if err := s.AddContentRule(r.Name, r.Pattern, r.Whitelist, r.Blacklist); err != nil {
			return nil, fmt.Errorf("content_rules[%d] (%s): %w", i, r.Name, err)
		}
	}
	for i, r := range fc.FileNameRules {
		if err := s.AddFileNameRule(r.Name, r.Pattern); err != nil {
			return nil, fmt.Errorf("file_name_rules[%d] (%s): %w", i, r.Name, err)
		}
	}
	for i, ext := range fc.IgnoreExtensions {
		if err := s.AddIgnoredFileExtension(ext); err != nil {
			return nil, fmt.Errorf("ignore_extensions[%d]: %w", i, err)
		}
	}
	for i, p := range fc.IgnorePaths {
		if err := s.AddIgnoredFilePath(p); err != nil {
			return nil, fmt.Errorf("ignore_paths[%d]: %w", i, err)
		}
	}
	return s, nil
}
