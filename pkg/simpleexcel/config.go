package simpleexcel

import (
	"fmt"

	"gopkg.in/yaml.v2"
)

// ColumnConfig defines a column in a sheet.
type ColumnConfig struct {
	FieldName     string                        `yaml:"field_name"` // Struct field name or map key
	Header        string                        `yaml:"header"`
	Width         float64                       `yaml:"width"`
	Formatter     func(interface{}) interface{} `yaml:"-"`         // Optional custom formatter function (Programmatic)
	FormatterName string                        `yaml:"formatter"` // Name of registered formatter (YAML)
}

// ReportTemplate represents the YAML layout of a streamed report.
type ReportTemplate struct {
	Sheets []SheetTemplate `yaml:"sheets"`
}

// SheetTemplate represents a sheet in the YAML.
type SheetTemplate struct {
	Name       string         `yaml:"name"`
	HeaderBold bool           `yaml:"header_bold"`
	Columns    []ColumnConfig `yaml:"columns"`
}

// ParseTemplate decodes a YAML report layout.
func ParseTemplate(yamlConfig []byte) (*ReportTemplate, error) {
	if len(yamlConfig) == 0 {
		return nil, fmt.Errorf("yaml config is empty")
	}
	var tmpl ReportTemplate
	if err := yaml.Unmarshal(yamlConfig, &tmpl); err != nil {
		return nil, fmt.Errorf("decode yaml: %w", err)
	}
	if len(tmpl.Sheets) == 0 {
		return nil, fmt.Errorf("template defines no sheets")
	}
	for _, sheet := range tmpl.Sheets {
		if sheet.Name == "" {
			return nil, fmt.Errorf("sheet name is required")
		}
		if len(sheet.Columns) == 0 {
			return nil, fmt.Errorf("sheet %s defines no columns", sheet.Name)
		}
	}
	return &tmpl, nil
}

// Sheet returns the sheet template with the given name.
func (t *ReportTemplate) Sheet(name string) (SheetTemplate, bool) {
	for _, s := range t.Sheets {
		if s.Name == name {
			return s, true
		}
	}
	return SheetTemplate{}, false
}
