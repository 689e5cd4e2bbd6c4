package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"
)

// SaveValue sets the dotted key (see Keys) to value in the config file,
// creating the file and any missing sections. Comments and formatting in the
// rest of the file are preserved by editing the yaml.Node tree.
func SaveValue(configPath, key, value string) error {
	if !slices.Contains(Keys(), key) {
		return fmt.Errorf("unknown config key %q", key)
	}

	data, err := os.ReadFile(configPath) //nolint:gosec // G304: user supplied config path
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("reading config: %w", err)
	}

	var doc yaml.Node
	if len(bytes.TrimSpace(data)) > 0 {
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return fmt.Errorf("parsing config: %w", err)
		}
	}
	if doc.Kind == 0 {
		doc = yaml.Node{
			Kind:    yaml.DocumentNode,
			Content: []*yaml.Node{{Kind: yaml.MappingNode}},
		}
	}
	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return fmt.Errorf("parsing config: top level is not a mapping")
	}

	setPath(root, strings.Split(key, "."), value)

	var buf bytes.Buffer
	encoder := yaml.NewEncoder(&buf)
	encoder.SetIndent(2)
	if err := encoder.Encode(&doc); err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	_ = encoder.Close()

	return writeAtomic(configPath, buf.Bytes())
}

// setPath walks mapping nodes along path, creating the ones that are
// missing, and sets the final scalar.
func setPath(node *yaml.Node, path []string, value string) {
	for i := 0; i < len(node.Content)-1; i += 2 {
		if node.Content[i].Value != path[0] {
			continue
		}
		child := node.Content[i+1]
		if len(path) == 1 {
			child.Kind = yaml.ScalarNode
			child.Tag = ""
			child.Value = value
			child.Content = nil
			return
		}
		if child.Kind != yaml.MappingNode {
			*child = yaml.Node{Kind: yaml.MappingNode}
		}
		setPath(child, path[1:], value)
		return
	}

	var child *yaml.Node
	if len(path) == 1 {
		child = &yaml.Node{Kind: yaml.ScalarNode, Value: value}
	} else {
		child = &yaml.Node{Kind: yaml.MappingNode}
		setPath(child, path[1:], value)
	}
	node.Content = append(node.Content,
		&yaml.Node{Kind: yaml.ScalarNode, Value: path[0]},
		child,
	)
}

// writeAtomic writes data to a temp file next to path and renames it over
// path.
func writeAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	temp, err := os.CreateTemp(dir, ".featmodel.yaml.tmp.*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tempPath := temp.Name()

	if _, err := temp.Write(data); err != nil {
		_ = temp.Close()
		_ = os.Remove(tempPath)
		return fmt.Errorf("writing temp file: %w", err)
	}
	if err := temp.Close(); err != nil {
		_ = os.Remove(tempPath)
		return fmt.Errorf("closing temp file: %w", err)
	}

	if err := os.Rename(tempPath, path); err != nil {
		_ = os.Remove(tempPath)
		return fmt.Errorf("renaming temp file: %w", err)
	}
	return nil
}
