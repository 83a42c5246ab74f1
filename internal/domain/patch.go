package domain

// Truthy returns v when it is set and holds a non-zero value, nil otherwise.
// Update requests go through it so that "" and 0 leave stored fields untouched.
func Truthy[T comparable](v *T) *T {
	if v == nil {
		return nil
	}
	var zero T
	if *v == zero {
		return nil
	}
	return v
}

// TruthySlice drops nil slices. An explicitly empty slice is still a value.
func TruthySlice[T any](v []T) *[]T {
	if v == nil {
		return nil
	}
	return &v
}

func clampMin(v, lo float64) float64 {
	if v < lo {
		return lo
	}
	return v
}

func clampRange(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
