package internal

// ReconstructPath follows parent handles from terminal until a negative
// handle is reached. Handles are returned in terminal-to-source order.
func ReconstructPath(parentOf func(handle int) int, terminal int) []int {
	var path []int
	for current := terminal; current >= 0; current = parentOf(current) {
		path = append(path, current)
	}
	return path
}

// Reverse returns a reversed copy of items.
func Reverse[T any](items []T) []T {
	reversed := make([]T, len(items))
	for i, j := 0, len(items)-1; j >= 0; i, j = i+1, j-1 {
		reversed[i] = items[j]
	}
	return reversed
}
