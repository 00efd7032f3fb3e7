package findings

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/scan-io-git/scanio-flaws/pkg/shared/files"
)

const (
	pipelineDiscriminator = "pipeline_scan"
	policyDiscriminator   = "_embedded"
)

// ReadFile loads and parses a results file.
func ReadFile(path string) (*ResultSet, error) {
	if err := files.ValidatePath(path); err != nil {
		return nil, fmt.Errorf("unable to read scan results file %q: %w", path, err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("unable to read scan results file %q: %w", path, err)
	}
	return Parse(data)
}

// Parse detects the result format from its top-level keys and decodes it.
func Parse(data []byte) (*ResultSet, error) {
	var top map[string]json.RawMessage
	if err := json.Unmarshal(data, &top); err != nil {
		return nil, fmt.Errorf("failed to parse scan results: %w", err)
	}

	switch {
	case hasKey(top, pipelineDiscriminator):
		return parsePipeline(data)
	case hasKey(top, policyDiscriminator):
		return parsePolicy(data)
	default:
		keys := make([]string, 0, len(top))
		for k := range top {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		return nil, &UnrecognizedInputFormatError{Keys: keys}
	}
}

func hasKey(m map[string]json.RawMessage, key string) bool {
	_, ok := m[key]
	return ok
}
