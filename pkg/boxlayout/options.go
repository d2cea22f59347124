package boxlayout

import (
	"fmt"
	"slices"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/boxlayout/pkg/compound"
	"github.com/matzehuels/boxlayout/pkg/errors"
	"github.com/matzehuels/boxlayout/pkg/layout"
	"github.com/matzehuels/boxlayout/pkg/layout/builtin"
)

// BoxNodeClass marks boxes that stand in for their contents during a run.
const BoxNodeClass = "box-node"

// DefaultLayoutKey is the params key holding the outer layout configuration.
const DefaultLayoutKey = "defaultLayout"

// ConfigKey returns the params key holding the configuration for boxes of
// type t, e.g. "appBoxLayout".
func ConfigKey(t compound.BoxType) string { return string(t) + "BoxLayout" }

// Options configures a box layout run.
type Options struct {
	// Default is the outer layout, also used for box types without an entry
	// in Boxes. Required.
	Default layout.Config

	// Boxes selects the sub-layout per box type.
	Boxes map[compound.BoxType]layout.Config

	// Params are extra options forwarded to the outer layout. Per-box-type
	// configuration keys are stripped.
	Params layout.Params

	// Order lists box types innermost first. Defaults to [compound.BoxOrder].
	Order []compound.BoxType

	// Registry resolves algorithm names. Defaults to [builtin.Registry].
	Registry *layout.Registry

	// Bus receives the outer layout's lifecycle events.
	Bus *layout.Bus

	// Logger defaults to log.Default().
	Logger *log.Logger
}

// OptionsFromParams splits a flat option object, where box configurations
// live under keys such as "appBoxLayout" and the outer layout under
// "defaultLayout", into Options. Each configuration value must be an object
// with a "name" and any number of algorithm parameters.
func OptionsFromParams(p layout.Params, order []compound.BoxType) (Options, error) {
	if order == nil {
		order = compound.BoxOrder()
	}
	opts := Options{Order: order, Boxes: make(map[compound.BoxType]layout.Config)}

	cfg, ok, err := configFromParam(p, DefaultLayoutKey)
	if err != nil {
		return Options{}, err
	}
	if ok {
		opts.Default = cfg
	}
	for _, t := range order {
		cfg, ok, err := configFromParam(p, ConfigKey(t))
		if err != nil {
			return Options{}, err
		}
		if ok {
			opts.Boxes[t] = cfg
		}
	}
	opts.Params = p.Without(reservedKeys(order)...)
	return opts, nil
}

func configFromParam(p layout.Params, key string) (layout.Config, bool, error) {
	v, ok := p[key]
	if !ok {
		return layout.Config{}, false, nil
	}
	var raw map[string]any
	switch m := v.(type) {
	case map[string]any:
		raw = m
	case layout.Params:
		raw = m
	default:
		return layout.Config{}, false, errors.New(errors.ErrCodeInvalidConfig, "%s must be an object, got %T", key, v)
	}
	name, _ := raw["name"].(string)
	if name == "" {
		return layout.Config{}, false, errors.New(errors.ErrCodeInvalidConfig, "%s has no layout name", key)
	}
	return layout.Config{Name: name, Params: layout.Params(raw).Without("name")}, true, nil
}

func reservedKeys(order []compound.BoxType) []string {
	keys := []string{DefaultLayoutKey}
	for _, t := range order {
		keys = append(keys, ConfigKey(t))
	}
	for _, t := range compound.BoxOrder() {
		if !slices.Contains(order, t) {
			keys = append(keys, ConfigKey(t))
		}
	}
	return keys
}

// step is a resolved algorithm with its parameters.
type step struct {
	algo   layout.Algorithm
	params layout.Params
}

// plan is the fully resolved configuration of one run. Building it touches
// nothing, so configuration errors surface before any mutation.
type plan struct {
	order []compound.BoxType
	boxes map[compound.BoxType]step
	outer step
}

func (o Options) resolve() (*plan, error) {
	if o.Default.IsZero() {
		return nil, errors.New(errors.ErrCodeInvalidConfig, "no default layout configured")
	}
	reg := o.Registry
	if reg == nil {
		reg = builtin.Registry()
	}
	order := o.Order
	if order == nil {
		order = compound.BoxOrder()
	}

	outer, err := reg.Lookup(o.Default.Name)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "default layout")
	}
	p := &plan{
		order: order,
		boxes: make(map[compound.BoxType]step, len(order)),
		outer: step{algo: outer, params: o.Default.Params.Merge(o.Params.Without(reservedKeys(order)...))},
	}

	seen := make(map[compound.BoxType]bool, len(order))
	for _, t := range order {
		if t == compound.BoxNone || seen[t] {
			return nil, errors.New(errors.ErrCodeInvalidConfig, "invalid box type order %v", order)
		}
		seen[t] = true

		cfg, ok := o.Boxes[t]
		if !ok || cfg.IsZero() {
			p.boxes[t] = step{algo: outer, params: o.Default.Params}
			continue
		}
		algo, err := reg.Lookup(cfg.Name)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "%s box layout", t)
		}
		p.boxes[t] = step{algo: algo, params: cfg.Params}
	}
	return p, nil
}

func (p *plan) String() string {
	return fmt.Sprintf("outer=%s order=%v", p.outer.algo.Name(), p.order)
}
