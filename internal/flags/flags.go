// Package flags provides feature flag support for controlled feature rollout.
// Flags are read-only after initialization and provide safe defaults for unknown flags.
package flags

import (
	"maps"
	"slices"

	"github.com/zjrosen/glboard/internal/log"
)

const (
	// FlagLocalOrder applies the saved manual order after issues load.
	FlagLocalOrder = "local-order"

	// FlagKeyboardDrag enables picking up cards with space and dropping
	// them with the arrow keys.
	FlagKeyboardDrag = "keyboard-drag"
)

// defaults are the values used when config does not mention a known flag.
var defaults = map[string]bool{
	FlagLocalOrder:   true,
	FlagKeyboardDrag: true,
}

// Registry holds feature flag state loaded from configuration.
type Registry struct {
	flags map[string]bool
}

// New creates a Registry from a config map layered over the built-in
// defaults. A nil map yields the defaults.
func New(flags map[string]bool) *Registry {
	merged := maps.Clone(defaults)
	maps.Copy(merged, flags)
	r := &Registry{flags: merged}
	log.Debug(log.CatConfig, "Feature flags initialized", "count", len(merged), "flags", r.All())
	return r
}

// Enabled returns true if the named flag is enabled.
// Unknown flags and a nil registry report false.
func (r *Registry) Enabled(name string) bool {
	if r == nil {
		return false
	}
	value, exists := r.flags[name]
	if !exists {
		log.Debug(log.CatConfig, "Unknown flag accessed", "flag", name)
		return false
	}
	return value
}

// All returns a copy of all flags.
func (r *Registry) All() map[string]bool {
	if r == nil {
		return map[string]bool{}
	}
	return maps.Clone(r.flags)
}

// Known lists the flags glboard understands, sorted.
func Known() []string {
	return slices.Sorted(maps.Keys(defaults))
}
