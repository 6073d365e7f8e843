package main

import (
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// parseConfigInput accepts inline JSON, inline YAML, a bare file path, or
// a file:// URI and returns the decoded map. No command in this package
// calls it; only its own tests do.
func parseConfigInput(value string) (map[string]interface{}, error) {
	if value == "" {
		return nil, nil
	}

	raw := []byte(value)
	sourcePath := ""

	if strings.HasPrefix(value, "file://") {
		path, err := parseFileURI(value)
		if err != nil {
			return nil, err
		}
		sourcePath = path
	} else if info, err := os.Stat(value); err == nil && !info.IsDir() {
		sourcePath = value
	}

	if sourcePath != "" {
		data, err := os.ReadFile(sourcePath)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		raw = data
	}

	ext := strings.ToLower(filepath.Ext(sourcePath))
	switch ext {
	case ".json":
		return parseConfigJSON(raw)
	case ".yaml", ".yml":
		return parseConfigYAML(raw)
	}

	if parsed, err := parseConfigJSON(raw); err == nil {
		return parsed, nil
	} else if parsed, yamlErr := parseConfigYAML(raw); yamlErr == nil {
		return parsed, nil
	} else {
		return nil, fmt.Errorf("parse config input: %v; %v", err, yamlErr)
	}
}

func parseConfigJSON(raw []byte) (map[string]interface{}, error) {
	var parsed map[string]interface{}
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, fmt.Errorf("parse config JSON: %w", err)
	}
	return parsed, nil
}

func parseConfigYAML(raw []byte) (map[string]interface{}, error) {
	var parsed map[string]interface{}
	if err := yaml.Unmarshal(raw, &parsed); err != nil {
		return nil, fmt.Errorf("parse config YAML: %w", err)
	}
	return parsed, nil
}

func parseFileURI(value string) (string, error) {
	parsed, err := url.Parse(value)
	if err != nil {
		return "", fmt.Errorf("parse config file URI: %w", err)
	}
	if parsed.Scheme != "file" {
		return "", fmt.Errorf("unsupported config URI scheme: %s", parsed.Scheme)
	}
	path := parsed.Path
	if parsed.Host != "" && parsed.Host != "localhost" {
		// For file:// URLs with relative paths like file://docs/path,
		// the URL parser treats "docs" as the host. Reconstruct the relative path.
		path = parsed.Host + path
	}
	if path == "" {
		path = parsed.Opaque
	}
	if path == "" {
		return "", fmt.Errorf("config file URI missing path")
	}
	unescaped, err := url.PathUnescape(path)
	if err != nil {
		return "", fmt.Errorf("decode config file URI: %w", err)
	}
	if strings.HasPrefix(unescaped, "~") {
		return "", fmt.Errorf("config file URI must use an absolute or relative path, got %s", unescaped)
	}
	return unescaped, nil
}
