// Package parallel provides the worker infrastructure behind fractal rendering.
//
// A render job splits the image into horizontal stripes, one per worker.
// Workers are long-lived goroutines owned by a Pool; each receives its stripe
// through a private inbox and reports back through a shared Counter.
//
//   - Stripes partition rows so that every row belongs to exactly one worker
//   - Counter detects job completion with a single atomic add per stripe
//   - Bitmap records which stripes have reported, without locks
//
// Thread safety: Pool, Counter and Bitmap are safe for concurrent use.
// Counter.Reset must not race with Counter.Done; the caller guarantees that
// only one job per Counter is in flight.
package parallel

// Stripe is a contiguous range of image rows [Start, End) assigned to one
// worker for one job.
type Stripe struct {
	// Start is the first row of the stripe.
	Start int

	// End is one past the last row of the stripe.
	End int
}

// Len returns the number of rows in the stripe.
func (s Stripe) Len() int {
	return s.End - s.Start
}

// Empty reports whether the stripe covers no rows.
func (s Stripe) Empty() bool {
	return s.End <= s.Start
}

// Stripes partitions height rows into n contiguous stripes.
//
// The stripes are ordered top to bottom, cover [0, height) exactly once and
// differ in length by at most one row: the first height%n stripes carry the
// extra row. When n exceeds height the trailing stripes are empty.
// Returns nil if n <= 0 or height < 0.
func Stripes(height, n int) []Stripe {
	if n <= 0 || height < 0 {
		return nil
	}

	base := height / n
	extra := height % n

	stripes := make([]Stripe, n)
	row := 0
	for i := range stripes {
		rows := base
		if i < extra {
			rows++
		}
		stripes[i] = Stripe{Start: row, End: row + rows}
		row += rows
	}
	return stripes
}
