package export

import (
	"bytes"
	"os"
	"path/filepath"
	"sort"

	"github.com/teranos/regen/errors"
)

// CheckResult holds the result of comparing a fresh export with an existing one.
type CheckResult struct {
	UpToDate bool
	// Differ are files present in both directories with different contents.
	Differ []string
	// Missing are generated files absent from the existing directory.
	Missing []string
	// Stale are files in the existing directory the export no longer produces.
	Stale []string
}

// CompareDirectories compares the files of a fresh export in generated with the
// files of the same extension in existing.
func CompareDirectories(generated, existing, extension string) (*CheckResult, error) {
	fresh, err := listModules(generated, extension)
	if err != nil {
		return nil, err
	}
	current, err := listModules(existing, extension)
	if err != nil && !os.IsNotExist(errors.UnwrapAll(err)) {
		return nil, err
	}

	result := &CheckResult{}
	for name := range fresh {
		if _, ok := current[name]; !ok {
			result.Missing = append(result.Missing, name)
			continue
		}
		different, err := filesAreDifferent(filepath.Join(generated, name), filepath.Join(existing, name))
		if err != nil {
			return nil, err
		}
		if different {
			result.Differ = append(result.Differ, name)
		}
	}
	for name := range current {
		if _, ok := fresh[name]; !ok {
			result.Stale = append(result.Stale, name)
		}
	}

	sort.Strings(result.Differ)
	sort.Strings(result.Missing)
	sort.Strings(result.Stale)
	result.UpToDate = len(result.Differ) == 0 && len(result.Missing) == 0 && len(result.Stale) == 0
	return result, nil
}

// listModules returns the base names of the regular files in dir with the given
// extension. The output directory is flat, so subdirectories are ignored.
func listModules(dir, extension string) (map[string]struct{}, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read %s", dir)
	}
	names := make(map[string]struct{})
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != extension {
			continue
		}
		names[e.Name()] = struct{}{}
	}
	return names, nil
}

func filesAreDifferent(file1, file2 string) (bool, error) {
	content1, err := os.ReadFile(file1)
	if err != nil {
		return false, errors.Wrapf(err, "failed to read %s", file1)
	}
	content2, err := os.ReadFile(file2)
	if err != nil {
		return false, errors.Wrapf(err, "failed to read %s", file2)
	}
	return !bytes.Equal(content1, content2), nil
}
