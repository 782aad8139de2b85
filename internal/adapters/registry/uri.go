package registry

import (
	"fmt"
	"path/filepath"
	"strings"
)

const (
	schemeRuns   = "runs:/"
	schemeModels = "models:/"
	schemeFile   = "file://"

	artifactFile = "model.yaml"
)

// Resolve maps a model URI to the artifact path it names.
//
//	runs:/<run_id>/<artifact path>  -> <root>/<run_id>/artifacts/<artifact path>/model.yaml
//	models:/<name>/<version>        -> <root>/models/<name>/<version>/model.yaml
//	file://<path>, <path>           -> <path> (relative paths join root)
//
// A path naming a directory is completed with model.yaml when loaded.
func Resolve(root, uri string) (string, error) {
	uri = strings.TrimSpace(uri)
	switch {
	case uri == "":
		return "", fmt.Errorf("%w: empty", ErrInvalidURI)

	case strings.HasPrefix(uri, schemeRuns):
		parts, err := segments(strings.TrimPrefix(uri, schemeRuns), uri)
		if err != nil {
			return "", err
		}
		if len(parts) < 2 {
			return "", fmt.Errorf("%w: %s needs a run id and an artifact path", ErrInvalidURI, uri)
		}
		elems := append([]string{root, parts[0], "artifacts"}, parts[1:]...)
		return filepath.Join(append(elems, artifactFile)...), nil

	case strings.HasPrefix(uri, schemeModels):
		parts, err := segments(strings.TrimPrefix(uri, schemeModels), uri)
		if err != nil {
			return "", err
		}
		if len(parts) != 2 {
			return "", fmt.Errorf("%w: %s needs a name and a version", ErrInvalidURI, uri)
		}
		return filepath.Join(root, "models", parts[0], parts[1], artifactFile), nil

	case strings.HasPrefix(uri, schemeFile):
		p := strings.TrimPrefix(uri, schemeFile)
		if p == "" {
			return "", fmt.Errorf("%w: %s has no path", ErrInvalidURI, uri)
		}
		return filepath.Clean(p), nil

	case strings.Contains(uri, ":/"):
		return "", fmt.Errorf("%w: unsupported scheme in %s", ErrInvalidURI, uri)

	default:
		if filepath.IsAbs(uri) {
			return filepath.Clean(uri), nil
		}
		return filepath.Join(root, uri), nil
	}
}

// segments splits a scheme-relative path and refuses anything that could
// climb out of the registry root.
func segments(rest, uri string) ([]string, error) {
	var out []string
	for _, s := range strings.Split(rest, "/") {
		switch s {
		case "":
			continue
		case ".", "..":
			return nil, fmt.Errorf("%w: %s contains %q", ErrInvalidURI, uri, s)
		}
		out = append(out, s)
	}
	return out, nil
}
