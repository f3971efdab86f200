package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
)

// Target describes one file whose anchor line carries the version number.
type Target struct {
	// Path is the file location, relative to Config.Root unless absolute.
	Path string `yaml:"path"`
	// Pattern is the regular expression selecting the anchor line.
	Pattern string `yaml:"pattern"`
	// Template replaces the matched text; VersionPlaceholder marks the version.
	Template string `yaml:"template"`
}

// Config holds the ordered target list. The first target is the primary file
// the current version is read from.
type Config struct {
	// Root is the directory relative target paths are resolved against.
	Root string `yaml:"root"`
	// Targets are processed in order.
	Targets []Target `yaml:"targets"`
}

const (
	// VersionPlaceholder is substituted with the new version in templates.
	VersionPlaceholder = "{version}"

	// DefaultRoot is the project root as seen from the bin directory the tool runs in.
	DefaultRoot = ".."

	// MarkerFilename marks that a synchronization is running in the root directory.
	MarkerFilename = ".version-sync.marker"

	assemblyPattern  = `^(\s)*\[assembly: AssemblyVersion\(.*\)\]`
	assemblyTemplate = `[assembly: AssemblyVersion("` + VersionPlaceholder + `.*")]`
	addinPattern     = `category="Jypeli" version=".*"`
	addinTemplate    = `category="Jypeli" version="` + VersionPlaceholder + `"`
	installerPattern = `Name "MonoJypeli (\d)+\.(\d)+\.(\d)+"`
	installerTmpl    = `Name "MonoJypeli ` + VersionPlaceholder + `"`
)

var (
	// errConfigIsNotSet is returned when a nil configuration is provided.
	errConfigIsNotSet = errors.New("configuration is not set")
	// errNoTargets is returned when the target list is empty.
	errNoTargets = errors.New("at least one target must be provided")
	// errEmptyPath is returned when a target has no path.
	errEmptyPath = errors.New("target path must be provided")
	// errNoPlaceholder is returned when a template cannot carry the version.
	errNoPlaceholder = errors.New("template does not contain " + VersionPlaceholder)
)

// Default returns the compiled-in target list rooted at root.
// An empty root means DefaultRoot.
func Default(root string) *Config {
	if root == "" {
		root = DefaultRoot
	}

	return &Config{
		Root: root,
		Targets: []Target{
			{Path: "Jypeli/Properties/AssemblyInfo.cs", Pattern: assemblyPattern, Template: assemblyTemplate},
			{Path: "Jypeli/Properties/AssemblyInfo-Xamarin.cs", Pattern: assemblyPattern, Template: assemblyTemplate},
			{
				Path:     "Projektimallit/Xamarin/Properties/AssemblyInfo.cs",
				Pattern:  assemblyPattern,
				Template: assemblyTemplate,
			},
			{
				Path:     "Projektimallit/Xamarin/Properties/MonoDevelop.Jypeli.Windows.addin.xml",
				Pattern:  addinPattern,
				Template: addinTemplate,
			},
			{
				Path:     "Projektimallit/Xamarin/Properties/MonoDevelop.Jypeli.Linux.addin.xml",
				Pattern:  addinPattern,
				Template: addinTemplate,
			},
			{
				Path:     "Projektimallit/Xamarin/Properties/MonoDevelop.Jypeli.Mac.addin.xml",
				Pattern:  addinPattern,
				Template: addinTemplate,
			},
			{Path: "installer/jypeli.nsi", Pattern: installerPattern, Template: installerTmpl},
		},
	}
}

// Validate checks that the target list is usable: at least one target, every
// path set, every pattern compiles and every template carries the placeholder.
func Validate(cfg *Config) error {
	if cfg == nil {
		return errConfigIsNotSet
	}

	if len(cfg.Targets) == 0 {
		return errNoTargets
	}

	for i, target := range cfg.Targets {
		if strings.TrimSpace(target.Path) == "" {
			return fmt.Errorf("target %d: %w", i, errEmptyPath)
		}

		if _, err := regexp.Compile(target.Pattern); err != nil {
			return fmt.Errorf("target %s: invalid pattern: %w", target.Path, err)
		}

		if !strings.Contains(target.Template, VersionPlaceholder) {
			return fmt.Errorf("target %s: %w", target.Path, errNoPlaceholder)
		}
	}

	return nil
}

// Primary returns the target the current version is read from.
func (c *Config) Primary() Target {
	return c.Targets[0]
}

// Resolve returns the target path joined with the root directory.
func (c *Config) Resolve(target Target) string {
	if filepath.IsAbs(target.Path) || c.Root == "" {
		return filepath.Clean(target.Path)
	}

	return filepath.Join(c.Root, filepath.FromSlash(target.Path))
}

// Render returns the template with the version substituted.
func (t Target) Render(version string) string {
	return strings.ReplaceAll(t.Template, VersionPlaceholder, version)
}
