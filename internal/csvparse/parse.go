package csvparse

// Option configures a Parser.
type Option func(*Parser)

// WithCoercion sets the value coercion policy.
func WithCoercion(c Coercion) Option {
	return func(p *Parser) {
		p.coercion = c
	}
}

// Parser holds immutable parse settings. It is safe for concurrent use.
type Parser struct {
	coercion Coercion
}

// NewParser returns a Parser using DefaultCoercion unless overridden.
func NewParser(opts ...Option) *Parser {
	p := &Parser{coercion: DefaultCoercion}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Coercion returns the configured policy.
func (p *Parser) Coercion() Coercion { return p.coercion }

// Parse converts raw into records, one per data line. See the package
// documentation for the pipeline.
func Parse(raw string, opts ...Option) ([]Record, error) {
	return NewParser(opts...).Parse(raw)
}

// Parse converts raw into records using p's settings.
func (p *Parser) Parse(raw string) ([]Record, error) {
	lines := SplitLines(raw)
	if len(lines) == 0 {
		return []Record{}, nil
	}

	rows := make([][]string, len(lines))
	for i, line := range lines {
		rows[i] = SplitFields(line)
	}

	if err := Validate(rows); err != nil {
		return nil, err
	}

	headers := make([]string, len(rows[0]))
	for i, h := range rows[0] {
		headers[i] = SanitizeHeader(h)
	}

	records := make([]Record, 0, len(rows)-1)
	for _, row := range rows[1:] {
		// Validate already rejected every other mismatch.
		if len(row) != len(headers) {
			continue
		}
		values := make([]Value, len(row))
		for i, field := range row {
			values[i] = SanitizeValue(field, p.coercion)
		}
		records = append(records, NewRecord(headers, values))
	}

	return records, nil
}

// Headers returns the sanitized header names of raw without parsing the data
// rows. It returns nil for blank input.
func Headers(raw string) []string {
	lines := SplitLines(raw)
	if len(lines) == 0 {
		return nil
	}
	fields := SplitFields(lines[0])
	headers := make([]string, len(fields))
	for i, f := range fields {
		headers[i] = SanitizeHeader(f)
	}
	return headers
}
