// Package template loads deck template manifests: the branding and layout
// names the assembler applies to a generated deck.
package template

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Manifest describes one deck template.
type Manifest struct {
	Name    string `yaml:"name"`
	Company string `yaml:"company"`

	Colors struct {
		Primary   string `yaml:"primary"`
		Secondary string `yaml:"secondary"`
		Accent    string `yaml:"accent"`
	} `yaml:"colors"`

	Fonts struct {
		Heading string `yaml:"heading"`
		Body    string `yaml:"body"`
	} `yaml:"fonts"`

	// Layouts maps slide layout tags to template layout names.
	Layouts map[string]string `yaml:"layouts"`

	Footer string `yaml:"footer"`
}

// Default is the manifest used when no template file is configured.
func Default() Manifest {
	var m Manifest
	m.Name = "default"
	m.Company = "Keyrus"
	m.Colors.Primary = "#1B2A4A"
	m.Colors.Secondary = "#00A3E0"
	m.Colors.Accent = "#E94E3C"
	m.Fonts.Heading = "Helvetica"
	m.Fonts.Body = "Helvetica"
	m.Layouts = map[string]string{
		"title":   "Title Slide",
		"bullet":  "Title and Content",
		"diagram": "Picture with Caption",
		"split":   "Two Content",
	}
	m.Footer = "Prepared by Keyrus"
	return m
}

// Load reads a manifest from path, filling gaps from Default. A missing
// file yields the default manifest without error.
func Load(path string) (Manifest, error) {
	def := Default()
	if strings.TrimSpace(path) == "" {
		return def, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return def, nil
		}
		return def, fmt.Errorf("template: %w", err)
	}
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return def, fmt.Errorf("template %s: %w", path, err)
	}
	return merge(def, m), nil
}

func merge(def, m Manifest) Manifest {
	if m.Name == "" {
		m.Name = def.Name
	}
	if m.Company == "" {
		m.Company = def.Company
	}
	if m.Colors.Primary == "" {
		m.Colors.Primary = def.Colors.Primary
	}
	if m.Colors.Secondary == "" {
		m.Colors.Secondary = def.Colors.Secondary
	}
	if m.Colors.Accent == "" {
		m.Colors.Accent = def.Colors.Accent
	}
	if m.Fonts.Heading == "" {
		m.Fonts.Heading = def.Fonts.Heading
	}
	if m.Fonts.Body == "" {
		m.Fonts.Body = def.Fonts.Body
	}
	if len(m.Layouts) == 0 {
		m.Layouts = def.Layouts
	} else {
		for k, v := range def.Layouts {
			if _, ok := m.Layouts[k]; !ok {
				m.Layouts[k] = v
			}
		}
	}
	if m.Footer == "" {
		m.Footer = def.Footer
	}
	return m
}
