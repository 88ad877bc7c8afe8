// Package extractor scans raw byte buffers for runs of printable text.
package extractor

// DefaultMinLength is the smallest run of printable bytes emitted as a
// string when no explicit minimum is configured.
const DefaultMinLength = 4

// String is one extracted printable run and the file offset of its first
// byte.
type String struct {
	Value  string `json:"value"`
	Offset int64  `json:"offset"`
}

// IsPrintable reports whether b is an ASCII graphic character or space
// (0x20-0x7E).
func IsPrintable(b byte) bool {
	return b >= 0x20 && b <= 0x7e
}

// Scan extracts every maximal run of printable bytes of at least minLength
// from data, in ascending offset order. Duplicate values are preserved as
// separate entries. A run still open at the end of the buffer is flushed.
// A minLength below 1 falls back to DefaultMinLength.
func Scan(data []byte, minLength int) []String {
	if minLength < 1 {
		minLength = DefaultMinLength
	}

	var (
		results []String
		start   int64
		current []byte
	)

	flush := func() {
		if len(current) >= minLength {
			results = append(results, String{Value: string(current), Offset: start})
		}
		current = current[:0]
	}

	for i, b := range data {
		if IsPrintable(b) {
			if len(current) == 0 {
				start = int64(i)
			}
			current = append(current, b)
		} else {
			flush()
		}
	}
	flush()

	return results
}

// Extract is Scan without offsets: just the string values, in first-offset
// order.
func Extract(data []byte, minLength int) []string {
	runs := Scan(data, minLength)
	values := make([]string, len(runs))
	for i, r := range runs {
		values[i] = r.Value
	}
	return values
}
