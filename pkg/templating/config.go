package templating

import "path/filepath"

// TemplateConfig holds the configuration of the template registry.
type TemplateConfig struct {
	// TemplateDir is the site's own template directory. Templates found here
	// take precedence over the theme's.
	TemplateDir string `toml:"template_dir"`

	// ThemeDir is the directory holding installed themes.
	ThemeDir string `toml:"theme_dir"`

	// Theme selects the theme under ThemeDir whose "templates" subdirectory is
	// searched after TemplateDir. Empty disables theme lookup.
	Theme string `toml:"theme"`

	// Extension is the file extension of template files, including the dot.
	Extension string `toml:"extension"`
}

// DefaultConfig returns a TemplateConfig with no theme selected.
func DefaultConfig() TemplateConfig {
	return TemplateConfig{
		TemplateDir: "templates",
		ThemeDir:    "themes",
		Theme:       "",
		Extension:   ".html",
	}
}

// ThemeTemplateDir returns the template directory of the selected theme, or
// "" when no theme is selected.
func (c TemplateConfig) ThemeTemplateDir() string {
	if c.Theme == "" {
		return ""
	}
	return filepath.Join(c.ThemeDir, c.Theme, "templates")
}
