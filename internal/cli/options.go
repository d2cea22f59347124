package cli

import (
	"maps"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/boxlayout/pkg/errors"
	"github.com/matzehuels/boxlayout/pkg/layout"
	"github.com/matzehuels/boxlayout/pkg/pipeline"
)

// layoutFlags are the layout selection flags shared by layout and render.
// They override the configuration file.
type layoutFlags struct {
	defaultAlgo string
	boxes       []string // type=algorithm
	params      []string // key=value
	order       []string
	noCache     bool
	refresh     bool
}

func (f *layoutFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.defaultAlgo, "default", "d", "", "outer layout algorithm (default from config: layered)")
	cmd.Flags().StringArrayVarP(&f.boxes, "box", "b", nil, "box layout as type=algorithm, e.g. app=grid (repeatable)")
	cmd.Flags().StringArrayVarP(&f.params, "param", "p", nil, "outer layout parameter as key=value (repeatable)")
	cmd.Flags().StringSliceVar(&f.order, "order", nil, "box types innermost first (default: app,namespace,cluster)")
	cmd.Flags().BoolVar(&f.noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&f.refresh, "refresh", false, "ignore cached layouts but store the new result")
}

// apply overlays the flags on opts.
func (f *layoutFlags) apply(opts *pipeline.Options) error {
	if f.defaultAlgo != "" && f.defaultAlgo != opts.Default.Name {
		opts.Default = layout.Config{Name: f.defaultAlgo}
	}
	if len(f.boxes) > 0 {
		boxes := maps.Clone(opts.Boxes)
		if boxes == nil {
			boxes = make(map[string]layout.Config, len(f.boxes))
		}
		for _, b := range f.boxes {
			t, name, err := parseAssignment(b)
			if err != nil {
				return err
			}
			if boxes[t].Name != name {
				boxes[t] = layout.Config{Name: name}
			}
		}
		opts.Boxes = boxes
	}
	if len(f.params) > 0 {
		extra := make(layout.Params, len(f.params))
		for _, p := range f.params {
			k, v, err := parseAssignment(p)
			if err != nil {
				return err
			}
			extra[k] = parseValue(v)
		}
		opts.Params = opts.Params.Merge(extra)
	}
	if len(f.order) > 0 {
		opts.Order = f.order
	}
	opts.Refresh = f.refresh
	return nil
}

// parseAssignment splits "key=value".
func parseAssignment(s string) (string, string, error) {
	k, v, ok := strings.Cut(s, "=")
	k, v = strings.TrimSpace(k), strings.TrimSpace(v)
	if !ok || k == "" || v == "" {
		return "", "", errors.New(errors.ErrCodeInvalidInput, "expected key=value, got %q", s)
	}
	return k, v, nil
}

// parseValue reads booleans and numbers; anything else stays a string.
func parseValue(s string) any {
	switch s {
	case "true":
		return true
	case "false":
		return false
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f
	}
	return s
}

// parseFormats splits a comma-separated format list. Empty means svg.
func parseFormats(s string) []string {
	if strings.TrimSpace(s) == "" {
		return []string{"svg"}
	}
	var out []string
	for _, f := range strings.Split(s, ",") {
		if f = strings.ToLower(strings.TrimSpace(f)); f != "" {
			out = append(out, f)
		}
	}
	return out
}
