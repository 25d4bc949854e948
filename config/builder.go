package config

import (
	"sort"

	"github.com/finboard/finboard"
)

// BuildWidgets converts parsed configuration into SDK Widget objects.
//
// It processes both direct widgets and grids, returning a combined slice.
// Grid dimensions are expanded via cartesian product.
func BuildWidgets(cfg *Config) ([]finboard.Widget, error) {
	var widgets []finboard.Widget

	// convert direct widgets
	for _, wc := range cfg.Widgets {
		w, err := buildWidget(wc)
		if err != nil {
			return nil, err
		}
		widgets = append(widgets, w)
	}

	// convert grids (cartesian product expansion)
	for _, gc := range cfg.Grids {
		gridWidgets, err := buildGridWidgets(gc)
		if err != nil {
			return nil, err
		}
		widgets = append(widgets, gridWidgets...)
	}

	return widgets, nil
}

// BuildOptions converts the top-level configuration into SDK board options,
// widgets included.
func BuildOptions(cfg *Config) ([]finboard.Option, error) {
	widgets, err := BuildWidgets(cfg)
	if err != nil {
		return nil, err
	}

	opts := []finboard.Option{
		finboard.WithWidgets(widgets...),
		finboard.WithPort(cfg.Port),
		finboard.WithDefaultRefreshInterval(cfg.RefreshInterval.Duration()),
	}

	if cfg.Title != "" {
		opts = append(opts, finboard.WithTitle(cfg.Title))
	}
	if cfg.CacheTTL != 0 {
		opts = append(opts, finboard.WithCacheTTL(cfg.CacheTTL.Duration()))
	}
	if cfg.RateLimit.RPS > 0 {
		burst := cfg.RateLimit.Burst
		if burst < 1 {
			burst = 1
		}
		opts = append(opts, finboard.WithHostRateLimit(cfg.RateLimit.RPS, burst))
	}

	return opts, nil
}

// buildWidget converts a single WidgetConfig to an SDK Widget.
func buildWidget(wc WidgetConfig) (finboard.Widget, error) {
	var opts []finboard.WidgetOption

	if wc.Path != "" {
		opts = append(opts, finboard.WithPath(wc.Path))
	}

	if wc.Kind != "" {
		opts = append(opts, finboard.WithKind(finboard.Kind(wc.Kind)))
	}

	if wc.Timeout != 0 {
		opts = append(opts, finboard.WithWidgetTimeout(wc.Timeout.Duration()))
	}

	if len(wc.Headers) > 0 {
		opts = append(opts, finboard.WithWidgetHeaders(mapToKeyValuePairs(wc.Headers)...))
	}

	if wc.Interval != nil {
		opts = append(opts, finboard.WithRefreshInterval(wc.Interval.Duration()))
	}

	if check := buildErrorCheck(wc.ErrorCheck); check != nil {
		opts = append(opts, finboard.WithErrorCheck(check))
	}

	return finboard.NewWidget(wc.Name, wc.URL, opts...)
}

// buildGridWidgets expands a GridConfig into multiple widgets via the SDK's
// grid API.
func buildGridWidgets(gc GridConfig) ([]finboard.Widget, error) {
	opts := []finboard.GridOption{
		finboard.WithURLTemplate(gc.URLTemplate),
		finboard.WithDimensions(gc.Dimensions),
	}

	if gc.Path != "" {
		opts = append(opts, finboard.WithGridPath(gc.Path))
	}
	if gc.Kind != "" {
		opts = append(opts, finboard.WithGridKind(finboard.Kind(gc.Kind)))
	}
	if gc.Timeout != 0 {
		opts = append(opts, finboard.WithGridTimeout(gc.Timeout.Duration()))
	}
	if len(gc.Headers) > 0 {
		opts = append(opts, finboard.WithGridHeaders(mapToKeyValuePairs(gc.Headers)...))
	}
	if gc.Interval != nil {
		opts = append(opts, finboard.WithGridInterval(gc.Interval.Duration()))
	}
	if check := buildErrorCheck(gc.ErrorCheck); check != nil {
		opts = append(opts, finboard.WithGridErrorCheck(check))
	}

	return finboard.NewWidgetGrid(gc.Name, opts...)
}

// mapToKeyValuePairs converts a map to a sorted slice of key-value pairs.
func mapToKeyValuePairs(m map[string]string) []string {
	// sort keys for deterministic ordering
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	pairs := make([]string, 0, len(m)*2)
	for _, k := range keys {
		pairs = append(pairs, k, m[k])
	}
	return pairs
}

// buildErrorCheck converts ErrorCheckConfig to an ErrorCheck function.
// Returns nil for none/empty checks (2xx bodies are trusted).
func buildErrorCheck(ec ErrorCheckConfig) finboard.ErrorCheck {
	switch ec.Type {
	case "", "none":
		return nil
	case "alphavantage":
		return finboard.AlphaVantageErrorCheck
	case "fields":
		return finboard.FieldErrorCheck(ec.Keys...)
	default:
		// validation should catch this, but return nil as fallback
		return nil
	}
}
