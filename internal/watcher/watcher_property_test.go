//go:build property
// +build property

package watcher

import (
	"sort"
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

func TestDebouncerProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.Rng.Seed(1234)
	parameters.MinSuccessfulTests = 50

	properties := gopter.NewProperties(parameters)

	properties.Property("a burst yields one sorted batch of unique paths", prop.ForAll(
		func(ids []int) bool {
			d := NewDebouncer(5 * time.Millisecond)
			defer d.Stop()

			unique := make(map[string]bool)
			for _, id := range ids {
				p := string(rune('a' + id))
				unique[p] = true
				d.Add(ChangeEvent{Path: p})
			}

			select {
			case events := <-d.Output():
				if len(events) != len(unique) {
					return false
				}
				return sort.SliceIsSorted(events, func(i, j int) bool {
					return events[i].Path < events[j].Path
				})
			case <-time.After(time.Second):
				return false
			}
		},
		gen.SliceOfN(20, gen.IntRange(0, 4)),
	))

	properties.TestingRun(t)
}
