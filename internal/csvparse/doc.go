// Package csvparse turns comma-separated text into ordered records.
//
// The package is a pure function over an in-memory string. It has no I/O,
// no logging and no shared state, so a single [Parser] can be used from any
// number of goroutines.
//
// # Pipeline
//
// [Parse] runs four stages in order:
//
//  1. [SplitLines] drops blank lines and trims the rest.
//  2. [SplitFields] tokenizes each line, honoring "double" and 'single'
//     quoted spans. Commas inside a span are literal.
//  3. [Validate] checks that every data line has as many fields as the
//     header. A row made only of blank fields is tolerated and skipped.
//  4. [SanitizeHeader] and [SanitizeValue] turn fields into record keys and
//     values according to the configured [Coercion].
//
// Any structural problem returns an error wrapping [ErrMalformedInput].
// Empty or whitespace-only input is not an error and yields no records.
//
//	records, err := csvparse.Parse(text, csvparse.WithCoercion(csvparse.CoercionTyped))
//	if errors.Is(err, csvparse.ErrMalformedInput) {
//	    // reject the upload
//	}
package csvparse
