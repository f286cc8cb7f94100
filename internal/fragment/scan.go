package fragment

import "fmt"

// Scan visits every message whose header starts in a fragment from start
// onwards, stopping at the first fragment that does not exist. It returns the
// number of messages visited.
func (r *Reader) Scan(start uint32, fn func(seq uint32, n int, ex Extraction) error) (int, error) {
	visited := 0
	for seq := start; ; seq++ {
		ok, err := r.store.Exists(seq)
		if err != nil {
			return visited, err
		}
		if !ok {
			return visited, nil
		}

		f, err := r.store.Open(seq)
		if err != nil {
			return visited, err
		}
		count, err := MessagesStarted(f)
		_ = f.Close()
		if err != nil {
			return visited, fmt.Errorf("fragment %s: %w", FormatSequence(seq), err)
		}

		for n := 1; n <= count; n++ {
			ex, err := r.Extract(seq, n)
			if err != nil {
				return visited, err
			}
			if err := fn(seq, n, ex); err != nil {
				return visited, err
			}
			visited++
		}

		if seq == MaxSequence {
			return visited, nil
		}
	}
}
