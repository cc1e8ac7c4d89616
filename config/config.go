// Package config loads the TOML profile used by the CLI: the teacher's
// drive-geometry settings, for the physical-capture adapter layer, plus a
// fixture profile describing which raw track-handler samples the decode
// subcommand and test harness exercise (§1F).
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/BurntSushi/toml"
)

//go:embed amigatrk.toml
var defaultConfigData []byte

// Global state variables for the selected drive.
var (
	DriveName string
	Cyls      int
	Heads     int
	RPM       int
	MaxKBps   int
	Images    []string
	ImageMap  map[string]string // image name -> filename mapping
)

// Global state for the selected track-handler fixture profile.
var (
	ProfileName string
	SampleDir   string
	Fixtures    []string
	FixtureMap  map[string]string // fixture name -> raw-track-dump filename
)

// Config represents the entire TOML configuration structure.
type Config struct {
	Default string    `toml:"default"`
	Drive   []Drive   `toml:"drive"`
	Image   []Image   `toml:"image"`
	Profile []Profile `toml:"profile"`
	Fixture []Fixture `toml:"fixture"`
}

// Drive represents a floppy drive configuration.
type Drive struct {
	Name    string   `toml:"name"`
	Cyls    int      `toml:"cyls"`
	Heads   int      `toml:"heads"`
	RPM     int      `toml:"rpm"`
	MaxKBps int      `toml:"maxkbps"`
	Images  []string `toml:"images"`
}

// Image represents a built-in image configuration.
type Image struct {
	Name string `toml:"name"`
	File string `toml:"file"`
}

// Profile names a set of track-handler fixtures exercised together.
type Profile struct {
	Name      string   `toml:"name"`
	SampleDir string   `toml:"sample_dir"`
	Fixtures  []string `toml:"fixtures"`
}

// Fixture is one named raw track dump, tagged with the track type it is
// expected to decode as.
type Fixture struct {
	Name string `toml:"name"`
	Tag  string `toml:"tag"`
	File string `toml:"file"`
}

// configPath determines the config file path based on the operating system.
func configPath() (string, error) {
	var configDir string
	var err error

	switch runtime.GOOS {
	case "windows":
		configDir, err = os.UserConfigDir()
		if err != nil {
			return "", fmt.Errorf("cannot determine user config directory: %w", err)
		}
		configDir = filepath.Join(configDir, "amigatrk")
	default:
		configDir, err = os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("cannot determine user home directory: %w", err)
		}
	}

	return filepath.Join(configDir, ".amigatrk"), nil
}

// Initialize loads and validates the configuration file.
// If the config file doesn't exist, it creates it from the embedded default.
//
// The drive/image section is optional: it is only required by the
// physical-capture adapter commands (read/write/format/erase). The
// profile/fixture section is optional likewise, required only by decode
// and the test harness. Callers that need one but not the other check the
// relevant global after Initialize returns.
func Initialize() error {
	path, err := configPath()
	if err != nil {
		return err
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		dir := filepath.Dir(path)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create config directory %s: %w", dir, err)
		}
		if err := os.WriteFile(path, defaultConfigData, 0644); err != nil {
			return fmt.Errorf("failed to create default config file at %s: %w", path, err)
		}
	}

	var conf Config
	if _, err := toml.DecodeFile(path, &conf); err != nil {
		return fmt.Errorf("failed to parse TOML config at %s: %w", path, err)
	}

	if conf.Default == "" {
		return errors.New("`default` key is missing or empty in config")
	}

	var foundDrive *Drive
	for i := range conf.Drive {
		if conf.Drive[i].Name == conf.Default {
			foundDrive = &conf.Drive[i]
			break
		}
	}
	if foundDrive != nil {
		if foundDrive.Cyls <= 0 {
			return fmt.Errorf("drive %q has invalid cyls: %d (must be positive)", conf.Default, foundDrive.Cyls)
		}
		if foundDrive.Heads <= 0 {
			return fmt.Errorf("drive %q has invalid heads: %d (must be positive)", conf.Default, foundDrive.Heads)
		}
		if foundDrive.RPM <= 0 {
			return fmt.Errorf("drive %q has invalid rpm: %d (must be positive)", conf.Default, foundDrive.RPM)
		}
		if foundDrive.MaxKBps <= 0 {
			return fmt.Errorf("drive %q has invalid maxkbps: %d (must be positive)", conf.Default, foundDrive.MaxKBps)
		}
		if len(foundDrive.Images) == 0 {
			return fmt.Errorf("drive %q has no images listed", conf.Default)
		}

		DriveName = conf.Default
		Cyls = foundDrive.Cyls
		Heads = foundDrive.Heads
		RPM = foundDrive.RPM
		MaxKBps = foundDrive.MaxKBps
		Images = make([]string, len(foundDrive.Images))
		copy(Images, foundDrive.Images)

		imageSeen := make(map[string]bool)
		ImageMap = make(map[string]string)
		for _, img := range conf.Image {
			imageSeen[img.Name] = true
			ImageMap[img.Name] = img.File
		}
		for _, imgName := range foundDrive.Images {
			if !imageSeen[imgName] {
				return fmt.Errorf("image %q listed under drive %q not found in image array", imgName, conf.Default)
			}
		}
	}

	// The fixture table is independent of which profile (if any) is
	// selected as default: GetFixtureFilename resolves a fixture by name
	// for the decode subcommand's --fixture flag regardless of whether a
	// profile claims it.
	FixtureMap = make(map[string]string)
	for _, f := range conf.Fixture {
		FixtureMap[f.Name] = f.File
	}

	var foundProfile *Profile
	for i := range conf.Profile {
		if conf.Profile[i].Name == conf.Default {
			foundProfile = &conf.Profile[i]
			break
		}
	}
	if foundProfile != nil {
		if len(foundProfile.Fixtures) == 0 {
			return fmt.Errorf("profile %q has no fixtures listed", conf.Default)
		}

		ProfileName = foundProfile.Name
		SampleDir = foundProfile.SampleDir
		Fixtures = make([]string, len(foundProfile.Fixtures))
		copy(Fixtures, foundProfile.Fixtures)

		for _, name := range foundProfile.Fixtures {
			if _, ok := FixtureMap[name]; !ok {
				return fmt.Errorf("fixture %q listed under profile %q not found in fixture array", name, conf.Default)
			}
		}
	}

	if foundDrive == nil && foundProfile == nil {
		return fmt.Errorf("default %q not found in drive or profile array", conf.Default)
	}

	return nil
}

// GetImageFilename returns the filename for a given image name.
// Returns an error if the image name is not found in the configuration.
func GetImageFilename(imageName string) (string, error) {
	filename, ok := ImageMap[imageName]
	if !ok {
		return "", fmt.Errorf("image %q not found in configuration", imageName)
	}
	return filename, nil
}

// GetFixtureFilename returns the raw-track-dump path for a given fixture
// name, joined with the active profile's sample_dir if one is set.
// Returns an error if the fixture name is not found.
func GetFixtureFilename(name string) (string, error) {
	filename, ok := FixtureMap[name]
	if !ok {
		return "", fmt.Errorf("fixture %q not found in configuration", name)
	}
	if SampleDir != "" {
		return filepath.Join(SampleDir, filename), nil
	}
	return filename, nil
}
