package loadtest

import (
	"fmt"
	"io"
	"math/rand/v2"
	"slices"
	"sync"
	"text/tabwriter"
	"time"
)

// Report summarizes a load run.
type Report struct {
	Target  string
	Users   int
	Elapsed time.Duration

	Ops           int64
	Errors        int64
	Sets          int64
	Gets          int64
	Hits          int64
	Misses        int64
	Invalidations int64
	Invalidated   int64

	Mean time.Duration
	P50  time.Duration
	P99  time.Duration
	Max  time.Duration
}

// Throughput returns operations per second.
func (r Report) Throughput() float64 {
	if r.Elapsed <= 0 {
		return 0
	}
	return float64(r.Ops) / r.Elapsed.Seconds()
}

// WriteTo writes the report as an aligned table.
func (r Report) WriteTo(w io.Writer) (int64, error) {
	cw := &countingWriter{w: w}
	tw := tabwriter.NewWriter(cw, 0, 0, 2, ' ', 0)

	fmt.Fprintf(tw, "target\t%s\n", r.Target)
	fmt.Fprintf(tw, "users\t%d\n", r.Users)
	fmt.Fprintf(tw, "elapsed\t%s\n", r.Elapsed.Round(time.Millisecond))
	fmt.Fprintf(tw, "ops\t%d\t(%.1f/s)\n", r.Ops, r.Throughput())
	fmt.Fprintf(tw, "errors\t%d\n", r.Errors)
	fmt.Fprintf(tw, "sets\t%d\n", r.Sets)
	fmt.Fprintf(tw, "gets\t%d\thits %d\tmisses %d\n", r.Gets, r.Hits, r.Misses)
	fmt.Fprintf(tw, "invalidations\t%d\tremoved %d\n", r.Invalidations, r.Invalidated)
	fmt.Fprintf(tw, "latency\tmean %s\tp50 %s\tp99 %s\tmax %s\n", r.Mean, r.P50, r.P99, r.Max)

	err := tw.Flush()
	return cw.n, err
}

type countingWriter struct {
	w io.Writer
	n int64
}

func (cw *countingWriter) Write(p []byte) (int, error) {
	n, err := cw.w.Write(p)
	cw.n += int64(n)
	return n, err
}

// recorder collects results from all users. Latency samples beyond
// maxSamples are kept by reservoir sampling.
type recorder struct {
	mu sync.Mutex

	maxSamples int
	rng        *rand.Rand
	samples    []time.Duration
	seen       int64
	total      time.Duration
	max        time.Duration

	errors        int64
	sets          int64
	gets          int64
	hits          int64
	misses        int64
	invalidations int64
	invalidated   int64
}

func newRecorder(maxSamples int, seed uint64) *recorder {
	return &recorder{
		maxSamples: maxSamples,
		rng:        rand.New(rand.NewPCG(seed, 0)),
	}
}

func (rec *recorder) set(d time.Duration, failed bool) {
	rec.mu.Lock()
	defer rec.mu.Unlock()

	rec.sets++
	rec.observe(d, failed)
}

func (rec *recorder) get(d time.Duration, found, failed bool) {
	rec.mu.Lock()
	defer rec.mu.Unlock()

	rec.gets++
	if !failed {
		if found {
			rec.hits++
		} else {
			rec.misses++
		}
	}
	rec.observe(d, failed)
}

func (rec *recorder) invalidate(d time.Duration, removed int, failed bool) {
	rec.mu.Lock()
	defer rec.mu.Unlock()

	rec.invalidations++
	rec.invalidated += int64(removed)
	rec.observe(d, failed)
}

// observe must be called with mu held.
func (rec *recorder) observe(d time.Duration, failed bool) {
	if failed {
		rec.errors++
	}

	rec.seen++
	rec.total += d
	rec.max = max(rec.max, d)

	if len(rec.samples) < rec.maxSamples {
		rec.samples = append(rec.samples, d)
		return
	}
	if i := rec.rng.Int64N(rec.seen); i < int64(rec.maxSamples) {
		rec.samples[i] = d
	}
}

func (rec *recorder) report(target string, users int, elapsed time.Duration) Report {
	rec.mu.Lock()
	defer rec.mu.Unlock()

	r := Report{
		Target:        target,
		Users:         users,
		Elapsed:       elapsed,
		Ops:           rec.seen,
		Errors:        rec.errors,
		Sets:          rec.sets,
		Gets:          rec.gets,
		Hits:          rec.hits,
		Misses:        rec.misses,
		Invalidations: rec.invalidations,
		Invalidated:   rec.invalidated,
		Max:           rec.max,
	}
	if rec.seen == 0 {
		return r
	}

	r.Mean = rec.total / time.Duration(rec.seen)

	sorted := slices.Clone(rec.samples)
	slices.Sort(sorted)
	r.P50 = percentile(sorted, 50)
	r.P99 = percentile(sorted, 99)
	return r
}

// percentile returns the nearest-rank percentile p of sorted.
func percentile(sorted []time.Duration, p int) time.Duration {
	if len(sorted) == 0 {
		return 0
	}
	rank := (p*len(sorted) + 99) / 100
	return sorted[max(rank, 1)-1]
}
