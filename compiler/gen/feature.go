package gen

import (
	"fmt"
	"os"
	"path/filepath"
)

var (
	// FeatureMock generates a mock store next to every table repository.
	FeatureMock = Feature{
		Name:        "mock",
		Stage:       Stable,
		Default:     false,
		Description: "Generates <table>_mock.go with an in-memory implementation of the table store interface",
		cleanup: func(c *Config) error {
			matches, err := filepath.Glob(filepath.Join(c.Target, "*_mock.go"))
			if err != nil {
				return err
			}
			for _, m := range matches {
				if err := remove(m); err != nil {
					return err
				}
			}
			return nil
		},
	}

	// FeatureHiLo makes Insert fill a zero single integer primary key with an
	// ID from the high/low allocator of the client.
	FeatureHiLo = Feature{
		Name:        "hilo",
		Stage:       Stable,
		Default:     true,
		Description: "Insert allocates zero integer primary keys through client.NextID",
	}

	// AllFeatures holds a list of all feature-flags.
	AllFeatures = []Feature{
		FeatureMock,
		FeatureHiLo,
	}
)

// FeatureStage describes the stage of the codegen feature.
type FeatureStage int

const (
	_ FeatureStage = iota

	// Experimental features are in development and may change.
	Experimental

	// Alpha features are complete but their generated API may still break.
	Alpha

	// Beta features are documented and not expected to break.
	Beta

	// Stable features are Beta features that were running for a while.
	Stable
)

// A Feature of the tablegen codegen.
type Feature struct {
	// Name of the feature.
	Name string

	// Stage of the feature.
	Stage FeatureStage

	// Default values indicates if this feature is enabled by default.
	Default bool

	// A Description of this feature.
	Description string

	// cleanup used to cleanup all changes when a feature-flag is removed.
	// e.g. delete files from previous codegen runs.
	cleanup func(*Config) error
}

// FeatureByName returns the feature with the given name.
func FeatureByName(name string) (Feature, error) {
	for _, f := range AllFeatures {
		if f.Name == name {
			return f, nil
		}
	}
	return Feature{}, fmt.Errorf("tablegen: unknown feature %q", name)
}

// remove deletes file if it exists. The target directory itself is kept
// even when it ends up empty.
func remove(file string) error {
	if err := os.Remove(file); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
