package build

import (
	"context"

	"golang.org/x/sync/errgroup"

	builderrors "github.com/standardbeagle/gcbuild/internal/errors"
	"github.com/standardbeagle/gcbuild/internal/identity"
	"github.com/standardbeagle/gcbuild/internal/store"
)

// ValidationResult is one specialization's validation outcome: either
// one experiment variant's (Pair set, Pairs nil) from buildSpecializations,
// or the combined multi-patch specialization's (Pairs set, Pair the
// zero value) from buildCombinedSpecialization.
type ValidationResult struct {
	Pair     identity.ExperimentVariantPair
	Pairs    []identity.ExperimentVariantPair
	Messages []*builderrors.BuildMessage
}

// buildSpecializations constructs one store.Specialization per active
// experiment variant, strictly sequentially: BuildSpecialization calls
// DuplicateIndirect on the shared per-library stores, so two
// specializations cannot be built concurrently without racing on that
// same mutation (spec.md §5: "dedup storage construction is
// single-threaded"). Each is built under OwnershipSinglePatch, since
// each activates exactly one patch.
func buildSpecializations(top *store.TopLevelDeduplicationStorage, experiments []identity.ExperimentVariantPair) ([]*store.Specialization, error) {
	specs := make([]*store.Specialization, len(experiments))
	for i, pair := range experiments {
		spec, err := store.BuildSpecialization(top, []identity.ExperimentVariantPair{pair}, store.OwnershipSinglePatch)
		if err != nil {
			return nil, err
		}
		specs[i] = spec
	}
	return specs, nil
}

// buildCombinedSpecialization builds the standalone, "None" ownership
// specialization for every experiment variant simultaneously active at
// once (spec.md §4.9): a real client can have more than one variant
// active at the same time, and two directly-patched items owned by
// different variants can disagree about what a shared reference should
// resolve to ("patchRefersToDifferentPatch") — a case buildSpecializations'
// one-pair-at-a-time loop never exercises. The clone this produces must
// not land in a library's shared per-patch override slots, since those
// are reused by every single-variant specialization too; BuildSpecialization
// keeps it in this Specialization's own Owned map instead.
//
// Returns nil if fewer than two variants are active: with at most one
// patch there is no disagreement to model, and buildSpecializations
// already covers that one patch alone.
func buildCombinedSpecialization(top *store.TopLevelDeduplicationStorage, experiments []identity.ExperimentVariantPair) (*store.Specialization, error) {
	if len(experiments) < 2 {
		return nil, nil
	}
	return store.BuildSpecialization(top, experiments, store.OwnershipNone)
}

// validateCombined runs every registered validator against the
// combined specialization, if one was built, mirroring validateVariants'
// per-validator fan-in but for the single combined case — no goroutine
// fan-out is needed for just one specialization.
func validateCombined(top *store.TopLevelDeduplicationStorage, experiments []identity.ExperimentVariantPair, combined *store.Specialization, validators []Validator) *ValidationResult {
	if combined == nil {
		return nil
	}
	var messages []*builderrors.BuildMessage
	for _, v := range validators {
		messages = append(messages, v(top, combined)...)
	}
	return &ValidationResult{Pairs: experiments, Messages: messages}
}

// validateVariants fans each variant's already-built, read-only
// Specialization out to every registered Validator concurrently — the
// one parallelism point spec.md §5 calls out, safe precisely because
// construction already finished sequentially in buildSpecializations
// and each goroutine here only reads shared state and writes its own
// results[i] slot.
func validateVariants(ctx context.Context, top *store.TopLevelDeduplicationStorage, experiments []identity.ExperimentVariantPair, specs []*store.Specialization, validators []Validator) ([]*ValidationResult, error) {
	results := make([]*ValidationResult, len(experiments))
	g, gctx := errgroup.WithContext(ctx)

	for i := range experiments {
		i := i
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}

			var messages []*builderrors.BuildMessage
			for _, v := range validators {
				messages = append(messages, v(top, specs[i])...)
			}
			results[i] = &ValidationResult{Pair: experiments[i], Messages: messages}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
