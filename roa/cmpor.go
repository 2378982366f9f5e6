package roa

// cmpOr returns the first non-zero comparison result, or zero if all are
// zero. It matches cmp.Or for int arguments; the stdlib function is only
// available from Go 1.22 and this module must build on Go 1.21.
func cmpOr(results ...int) int {
	for _, r := range results {
		if r != 0 {
			return r
		}
	}
	return 0
}
