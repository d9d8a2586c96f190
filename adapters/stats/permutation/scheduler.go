package permutation

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"

	"voxelperm/adapters/stats/ttest"
	"voxelperm/domain/cluster"
	"voxelperm/internal"
	"voxelperm/ports"
)

// seedStreamName names the RNG stream all permutation seeds are drawn from
const seedStreamName = "permutation-null"

// NullResult collects the three per-permutation output streams, each indexed
// by permutation number rather than completion order.
type NullResult struct {
	Stats  cluster.NullDistribution
	Sizes  []float64
	Masses []float64
	Log    []Assignment // nil unless assignment logging was requested
}

// Scheduler fans N independent permutation workers out over a bounded pool
// and assembles the null distribution. Workers share the read-only matrix and
// nothing else; results depend only on the seed sequence, which is drawn up
// front so the null distribution is invariant to worker count.
type Scheduler struct {
	rng    ports.RNGPort
	logger *internal.Logger
}

// NewScheduler creates a scheduler using the given RNG port and logger
func NewScheduler(rng ports.RNGPort, logger *internal.Logger) *Scheduler {
	return &Scheduler{rng: rng, logger: logger}
}

// Run executes nPerms permutations with at most nJobs concurrent workers
// (nJobs < 1 means all cores, 1 means sequential). saveLog additionally
// records each permutation's relabeling; this is write-only audit telemetry.
func (s *Scheduler) Run(ctx context.Context, m *ttest.Matrix, cfg Config, nPerms, nJobs int, baseSeed int64, saveLog bool) (*NullResult, error) {
	seeds, err := s.rng.SeedSequence(ctx, seedStreamName, baseSeed, nPerms)
	if err != nil {
		return nil, err
	}

	res := &NullResult{
		Stats:  make(cluster.NullDistribution, nPerms),
		Sizes:  make([]float64, nPerms),
		Masses: make([]float64, nPerms),
	}
	if saveLog {
		res.Log = make([]Assignment, nPerms)
	}

	if nJobs < 1 {
		nJobs = runtime.NumCPU()
	}
	s.logger.Debug("permutation sweep: %d permutations, %d workers, base seed %d", nPerms, nJobs, baseSeed)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(nJobs)

	for i := range seeds {
		i := i
		g.Go(func() error {
			// Cancellation point between permutations; a cancelled sweep
			// returns an error rather than a partial null distribution.
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}

			if saveLog {
				out, order, signs := RunOneLogged(m, cfg, seeds[i])
				res.Stats[i], res.Sizes[i], res.Masses[i] = out.Stat, out.Size, out.Mass
				res.Log[i] = Assignment{Permutation: i, Seed: seeds[i], Order: order, Signs: signs}
				return nil
			}

			out := RunOne(m, cfg, seeds[i])
			res.Stats[i], res.Sizes[i], res.Masses[i] = out.Stat, out.Size, out.Mass
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return res, nil
}
