// Package yarascan matches YARA rule sources against in-memory buffers.
package yarascan

import (
	"fmt"
	"time"

	"github.com/hillu/go-yara/v4"
)

// scanTimeout bounds a single in-memory scan; YARA rule evaluation is the
// only potentially unbounded step in the pipeline.
const scanTimeout = 30 * time.Second

// Scan compiles ruleSource and scans data with it, returning the names of
// the matched rules in match order.
func Scan(data []byte, ruleSource string) ([]string, error) {
	compiler, err := yara.NewCompiler()
	if err != nil {
		return nil, fmt.Errorf("creating YARA compiler: %w", err)
	}
	if err := compiler.AddString(ruleSource, ""); err != nil {
		return nil, fmt.Errorf("compiling YARA rules: %w", err)
	}
	rules, err := compiler.GetRules()
	if err != nil {
		return nil, fmt.Errorf("building YARA ruleset: %w", err)
	}

	var matches yara.MatchRules
	if err := rules.ScanMem(data, 0, scanTimeout, &matches); err != nil {
		return nil, fmt.Errorf("scanning: %w", err)
	}

	names := make([]string, 0, len(matches))
	for _, m := range matches {
		names = append(names, m.Rule)
	}
	return names, nil
}
