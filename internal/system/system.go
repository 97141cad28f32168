package system

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// ErrNoCredentials means no key file was given and none was found.
var ErrNoCredentials = errors.New("no credentials file found")

// FindCredentials returns the first JSON file in dir by name. ambiguous is
// set when more than one candidate exists.
func FindCredentials(dir string) (path string, ambiguous bool, err error) {
	entries, err := os.ReadDir(dir)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return "", false, err
	}

	var candidates []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(strings.ToLower(e.Name()), ".json") {
			candidates = append(candidates, filepath.Join(dir, e.Name()))
		}
	}

	if len(candidates) == 0 {
		return "", false, fmt.Errorf("%w in %s", ErrNoCredentials, dir)
	}
	sort.Strings(candidates)
	return candidates[0], len(candidates) > 1, nil
}
