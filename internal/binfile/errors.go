package binfile

import "fmt"

// LoadError reports an I/O failure reading the input path. It is fatal: no
// analysis is produced.
type LoadError struct {
	Path string
	Err  error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("reading %s: %v", e.Path, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// ParseError reports malformed or truncated structural headers in input that
// carried a recognized magic. It is fatal for format-specific metadata only:
// the assembler falls back to an Unknown/Archive description instead of
// aborting the analysis.
type ParseError struct {
	Format string
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parsing %s structure: %v", e.Format, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }
