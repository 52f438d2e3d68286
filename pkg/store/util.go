package store

// ChunkRange invokes fn over [start, end) windows of at most chunkSize
// elements covering total.
func ChunkRange(total, chunkSize int, fn func(start, end int) error) error {
	if total <= 0 {
		return nil
	}
	if chunkSize <= 0 {
		chunkSize = total
	}
	for start := 0; start < total; start += chunkSize {
		end := min(start+chunkSize, total)
		if err := fn(start, end); err != nil {
			return err
		}
	}
	return nil
}

// DedupeLast collapses records sharing an id down to the last occurrence,
// preserving first-seen order. A single INSERT cannot touch the same
// conflicting row twice, so batches must be collapsed before upserting.
func DedupeLast[T any](in []T, id func(T) string) []T {
	if len(in) == 0 {
		return in
	}
	index := make(map[string]int, len(in))
	out := make([]T, 0, len(in))
	for _, v := range in {
		key := id(v)
		if i, ok := index[key]; ok {
			out[i] = v
			continue
		}
		index[key] = len(out)
		out = append(out, v)
	}
	return out
}

// DedupeStrings drops empty and repeated values, preserving first-seen order.
func DedupeStrings(in []string) []string {
	if len(in) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, v := range in {
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
