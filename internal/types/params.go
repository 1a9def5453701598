package types

// Params is a free-form parameter mapping consumed by indicators and
// detectors. Values arrive from YAML/JSON plans, so numeric entries may be
// decoded as int or float64 depending on the source document.
type Params map[string]any

// Int returns the named parameter as an int, or fallback when absent or not
// numeric.
func (p Params) Int(key string, fallback int) int {
	v, ok := p[key]
	if !ok {
		return fallback
	}

	switch n := v.(type) {
	case int:
		return n
	case int64:
		return int(n)
	case float64:
		return int(n)
	default:
		return fallback
	}
}

// Float returns the named parameter as a float64, or fallback when absent or
// not numeric.
func (p Params) Float(key string, fallback float64) float64 {
	v, ok := p[key]
	if !ok {
		return fallback
	}

	switch n := v.(type) {
	case float64:
		return n
	case int:
		return float64(n)
	case int64:
		return float64(n)
	default:
		return fallback
	}
}

// Merged returns a copy of defaults overlaid with the receiver's entries.
// The receiver and defaults are left untouched.
func (p Params) Merged(defaults Params) Params {
	out := make(Params, len(defaults)+len(p))
	for k, v := range defaults {
		out[k] = v
	}

	for k, v := range p {
		out[k] = v
	}

	return out
}
