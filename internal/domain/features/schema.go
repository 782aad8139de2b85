package features

import (
	"fmt"
	"sort"
	"strings"
)

// CheckSatisfactionSchema verifies that a classifier declares exactly the
// satisfaction columns in exactly the encoder's order. The classifier is
// positional, so a permutation is as bad as a missing column.
func CheckSatisfactionSchema(declared []string) error {
	if len(declared) != SatisfactionWidth {
		return fmt.Errorf("%w: satisfaction model declares %d features, encoder produces %d",
			ErrSchemaMismatch, len(declared), SatisfactionWidth)
	}
	for i, name := range satisfactionNames {
		if declared[i] != name {
			return fmt.Errorf("%w: satisfaction feature %d is %q, encoder produces %q",
				ErrSchemaMismatch, i, declared[i], name)
		}
	}
	return nil
}

// CheckPriceSchema verifies that a regressor declares the same set of price
// columns the encoder produces. Order is irrelevant because the record is
// keyed by name.
func CheckPriceSchema(declared []string) error {
	want := make(map[string]struct{}, PriceWidth)
	for _, n := range PriceFeatureNames() {
		want[n] = struct{}{}
	}

	seen := make(map[string]struct{}, len(declared))
	var unknown []string
	for _, n := range declared {
		if _, dup := seen[n]; dup {
			return fmt.Errorf("%w: price feature %q declared twice", ErrSchemaMismatch, n)
		}
		seen[n] = struct{}{}
		if _, ok := want[n]; !ok {
			unknown = append(unknown, n)
		}
	}

	var missing []string
	for n := range want {
		if _, ok := seen[n]; !ok {
			missing = append(missing, n)
		}
	}

	if len(unknown) == 0 && len(missing) == 0 {
		return nil
	}
	sort.Strings(unknown)
	sort.Strings(missing)
	return fmt.Errorf("%w: price model unknown=[%s] missing=[%s]",
		ErrSchemaMismatch, strings.Join(unknown, ", "), strings.Join(missing, ", "))
}
