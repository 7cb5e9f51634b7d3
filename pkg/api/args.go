package api

type (
	// Args maps slot or field names to values. Values are scalars,
	// identifiers, or nested maps and slices of the same
	Args map[string]any

	// Guards maps step IDs to their idempotency commit flags
	Guards map[StepID]bool
)

// Clone returns a deep copy of the arguments. Nested maps and slices are
// copied so mutation of the clone never leaks into the original
func (a Args) Clone() Args {
	if a == nil {
		return nil
	}
	res := make(Args, len(a))
	for k, v := range a {
		res[k] = cloneValue(v)
	}
	return res
}

// Merge returns a copy of the arguments with the other set overlaid
func (a Args) Merge(other Args) Args {
	res := a.Clone()
	if res == nil {
		res = Args{}
	}
	for k, v := range other {
		res[k] = cloneValue(v)
	}
	return res
}

// Clone returns a copy of the guard flags
func (g Guards) Clone() Guards {
	res := make(Guards, len(g))
	for k, v := range g {
		res[k] = v
	}
	return res
}

func cloneValue(v any) any {
	switch v := v.(type) {
	case map[string]any:
		res := make(map[string]any, len(v))
		for k, e := range v {
			res[k] = cloneValue(e)
		}
		return res
	case Args:
		return v.Clone()
	case []any:
		res := make([]any, len(v))
		for i, e := range v {
			res[i] = cloneValue(e)
		}
		return res
	default:
		return v
	}
}
