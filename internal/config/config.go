// Copyright 2026 Bjørn Erik Pedersen
// SPDX-License-Identifier: Apache-2.0

// Package config loads the list of projects to sync.
//
// The YAML form (config.yml) is
//
//	plugins:
//	  my-plugin:
//	    git: https://github.com/me/my-plugin.git [branch]
//	    svn: https://plugins.svn.wordpress.org/my-plugin
//
// A file with a .toml extension uses [plugins.<name>] tables with the same
// keys. Projects keep the order in which they are defined. ${VAR}
// references in the git and svn values are expanded from the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/bep/gitsvn/internal/lib"
	"gopkg.in/yaml.v3"
)

const DefaultFilename = "config.yml"

var ErrMissing = errors.New("seems to be missing")

type plugin struct {
	Git string `yaml:"git" toml:"git"`
	Svn string `yaml:"svn" toml:"svn"`
}

type entry struct {
	name string
	plugin
}

// Load reads the projects defined in the file at path.
func Load(path string) ([]lib.Project, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%s %w: %s", filepath.Base(path), ErrMissing, path)
		}
		return nil, err
	}

	var entries []entry
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		entries, err = parseTOML(data)
	} else {
		entries, err = parseYAML(data)
	}
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	return toProjects(entries)
}

func parseYAML(data []byte) ([]entry, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	if len(doc.Content) == 0 || doc.Content[0].Kind != yaml.MappingNode {
		return nil, errors.New("expected a mapping at the top level")
	}

	root := doc.Content[0]
	for i := 0; i+1 < len(root.Content); i += 2 {
		if root.Content[i].Value != "plugins" {
			continue
		}
		plugins := root.Content[i+1]
		if plugins.Kind != yaml.MappingNode {
			return nil, fmt.Errorf("line %d: plugins must be a mapping", plugins.Line)
		}
		var entries []entry
		for j := 0; j+1 < len(plugins.Content); j += 2 {
			e := entry{name: plugins.Content[j].Value}
			if err := plugins.Content[j+1].Decode(&e.plugin); err != nil {
				return nil, fmt.Errorf("plugin %q: %w", e.name, err)
			}
			entries = append(entries, e)
		}
		return entries, nil
	}
	return nil, errors.New("no plugins defined")
}

func parseTOML(data []byte) ([]entry, error) {
	var raw struct {
		Plugins map[string]plugin `toml:"plugins"`
	}
	md, err := toml.Decode(string(data), &raw)
	if err != nil {
		return nil, err
	}
	if !md.IsDefined("plugins") {
		return nil, errors.New("no plugins defined")
	}

	// The map loses definition order, the metadata keeps it.
	var entries []entry
	for _, key := range md.Keys() {
		if len(key) != 2 || key[0] != "plugins" {
			continue
		}
		entries = append(entries, entry{name: key[1], plugin: raw.Plugins[key[1]]})
	}
	return entries, nil
}

func toProjects(entries []entry) ([]lib.Project, error) {
	seen := make(map[string]bool)
	projects := make([]lib.Project, 0, len(entries))
	for _, e := range entries {
		if err := validateName(e.name); err != nil {
			return nil, err
		}
		if seen[e.name] {
			return nil, fmt.Errorf("plugin %q is defined more than once", e.name)
		}
		seen[e.name] = true

		gitFields := strings.Fields(os.ExpandEnv(e.Git))
		if len(gitFields) == 0 || len(gitFields) > 2 {
			return nil, fmt.Errorf("plugin %q: git must be \"<url> [branch]\", got %q", e.name, e.Git)
		}
		svn := strings.TrimSpace(os.ExpandEnv(e.Svn))
		if svn == "" {
			return nil, fmt.Errorf("plugin %q: svn url is required", e.name)
		}

		p := lib.Project{Name: e.name, OriginURL: gitFields[0], DistURL: svn}
		if len(gitFields) == 2 {
			p.OriginBranch = gitFields[1]
		}
		projects = append(projects, p)
	}
	return projects, nil
}

// validateName rejects names that would place a project's directories
// outside git/ and svn/ or inside another project's.
func validateName(name string) error {
	switch {
	case strings.TrimSpace(name) == "":
		return errors.New("plugin name must not be empty")
	case name == "." || name == "..":
		return fmt.Errorf("invalid plugin name %q", name)
	case strings.ContainsAny(name, `/\`):
		return fmt.Errorf("plugin name %q must not contain path separators", name)
	}
	return nil
}
