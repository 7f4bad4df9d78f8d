// internal/runner/suite.go
package runner

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Suite is a named collection of natural-language tests loaded from YAML.
type Suite struct {
	Name string `mapstructure:"name" yaml:"name"`

	// BaseURL, when set, is navigated to before each test so every test
	// starts from the same page.
	BaseURL string `mapstructure:"base_url" yaml:"base_url"`

	Tests []TestSpec `mapstructure:"tests" yaml:"tests"`
}

// TestSpec is one test: a name and the instruction to decompose.
type TestSpec struct {
	Name        string `mapstructure:"name" yaml:"name"`
	Instruction string `mapstructure:"instruction" yaml:"instruction"`
}

// LoadSuite reads and validates a suite file.
func LoadSuite(path string) (*Suite, error) {
	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read suite file %s: %w", path, err)
	}

	var suite Suite
	if err := v.Unmarshal(&suite); err != nil {
		return nil, fmt.Errorf("failed to parse suite file %s: %w", path, err)
	}

	if suite.Name == "" {
		suite.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	if err := suite.Validate(); err != nil {
		return nil, fmt.Errorf("invalid suite %s: %w", path, err)
	}
	return &suite, nil
}

// Validate checks the suite for required fields.
func (s *Suite) Validate() error {
	if len(s.Tests) == 0 {
		return fmt.Errorf("suite must contain at least one test")
	}
	seen := make(map[string]bool, len(s.Tests))
	for i, test := range s.Tests {
		if test.Name == "" {
			return fmt.Errorf("tests[%d]: name is required", i)
		}
		if strings.TrimSpace(test.Instruction) == "" {
			return fmt.Errorf("tests[%d] (%s): instruction is required", i, test.Name)
		}
		if seen[test.Name] {
			return fmt.Errorf("duplicate test name %q", test.Name)
		}
		seen[test.Name] = true
	}
	return nil
}
