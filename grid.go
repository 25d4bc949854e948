package finboard

import (
	"errors"
	"fmt"
	"net/url"
	"sort"
	"strings"
	"text/template"
)

// NewWidgetGrid creates multiple widgets from a URL template and dimensions
// using cartesian product expansion.
//
// The URL template uses Go's text/template syntax. Dimension values are
// URL-encoded before interpolation. Missing template keys cause an error
// (fail-fast). The key path set via [WithGridPath] may also reference
// dimension keys; path values are interpolated without URL encoding.
//
// Each widget name includes dimension values in the format:
// "Base Name (val1/val2)" (values from alphabetically sorted keys).
//
// Example:
//
//	widgets, err := NewWidgetGrid("Quote",
//	    WithURLTemplate("https://www.alphavantage.co/query?function=GLOBAL_QUOTE&symbol={{.symbol}}&apikey=demo"),
//	    WithDimensions(map[string][]string{
//	        "symbol": {"AAPL", "MSFT", "GOOG"},
//	    }),
//	    WithGridPath("Global Quote.05. price"),
//	)
//	// Returns 3 widgets, usable with WithWidgets(widgets...)
func NewWidgetGrid(baseName string, opts ...GridOption) ([]Widget, error) {
	// validate base name
	if strings.TrimSpace(baseName) == "" {
		return nil, errors.New("base name cannot be empty")
	}

	cfg := &gridConfig{
		headers: make(map[string]string),
	}

	// apply options
	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, err
		}
	}

	// validate required fields
	if cfg.urlTemplate == "" {
		return nil, errors.New("URL template required")
	}
	if len(cfg.dimensions) == 0 {
		return nil, errors.New("at least one dimension required")
	}

	// parse templates with missingkey=error for fail-fast behaviour
	urlTmpl, err := template.New("url").Option("missingkey=error").Parse(cfg.urlTemplate)
	if err != nil {
		return nil, fmt.Errorf("invalid URL template: %w", err)
	}
	var pathTmpl *template.Template
	if cfg.path != "" {
		pathTmpl, err = template.New("path").Option("missingkey=error").Parse(cfg.path)
		if err != nil {
			return nil, fmt.Errorf("invalid path template: %w", err)
		}
	}

	// generate combinations
	combinations := cartesianProduct(cfg.dimensions)
	if len(combinations) == 0 {
		return nil, nil
	}

	widgets := make([]Widget, 0, len(combinations))
	for _, combo := range combinations {
		// URL-encode values for the URL template, keep originals for the path
		encoded := urlEncodeMap(combo)

		urlStr, err := executeTemplate(urlTmpl, encoded)
		if err != nil {
			return nil, fmt.Errorf("template execution failed: %w", err)
		}

		path := cfg.path
		if pathTmpl != nil {
			path, err = executeTemplate(pathTmpl, combo)
			if err != nil {
				return nil, fmt.Errorf("path template execution failed: %w", err)
			}
		}

		name := formatWidgetName(baseName, combo)

		// build widget options
		wOpts := []WidgetOption{}
		if path != "" {
			wOpts = append(wOpts, WithPath(path))
		}
		if len(cfg.headers) > 0 {
			wOpts = append(wOpts, WithWidgetHeaders(flattenMap(cfg.headers)...))
		}
		if cfg.timeout > 0 {
			wOpts = append(wOpts, WithWidgetTimeout(cfg.timeout))
		}
		if cfg.kind != "" {
			wOpts = append(wOpts, WithKind(cfg.kind))
		}
		if cfg.intervalSet {
			wOpts = append(wOpts, WithRefreshInterval(cfg.interval))
		}
		if cfg.errorCheck != nil {
			wOpts = append(wOpts, WithErrorCheck(cfg.errorCheck))
		}

		w, err := NewWidget(name, urlStr, wOpts...)
		if err != nil {
			return nil, fmt.Errorf("failed to create widget '%s': %w", name, err)
		}
		widgets = append(widgets, w)
	}

	return widgets, nil
}

// cartesianProduct generates all combinations of dimension values.
// Keys are sorted alphabetically for deterministic output.
// Values maintain their original slice order.
//
// Example:
//
//	Input:  {"x": ["a","b"], "y": ["1","2"]}
//	Output: [{"x":"a","y":"1"}, {"x":"a","y":"2"}, {"x":"b","y":"1"}, {"x":"b","y":"2"}]
func cartesianProduct(dims map[string][]string) []map[string]string {
	if len(dims) == 0 {
		return nil
	}

	// sort keys for deterministic iteration
	keys := make([]string, 0, len(dims))
	for k := range dims {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	// defensive check for empty dimensions (also validated in WithDimensions)
	for _, k := range keys {
		if len(dims[k]) == 0 {
			return nil
		}
	}

	// calculate total combinations
	total := 1
	for _, k := range keys {
		total *= len(dims[k])
	}

	result := make([]map[string]string, 0, total)

	// cartesian product
	indices := make([]int, len(keys))
	for {
		// combo is like our position in grid
		combo := make(map[string]string, len(keys))
		for i, k := range keys {
			combo[k] = dims[k][indices[i]]
		}
		result = append(result, combo)

		// increment indices (rightmost first)
		for i := len(keys) - 1; i >= 0; i-- {
			indices[i]++
			if indices[i] < len(dims[keys[i]]) {
				break
			}
			indices[i] = 0
			if i == 0 {
				return result
			}
		}

	}
}

// urlEncodeMap returns a new map with all values URL-encoded.
func urlEncodeMap(m map[string]string) map[string]string {
	result := make(map[string]string, len(m))
	for k, v := range m {
		result[k] = url.QueryEscape(v)
	}
	return result
}

// executeTemplate renders the template with the given data.
func executeTemplate(tmpl *template.Template, data map[string]string) (string, error) {
	var buf strings.Builder
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// formatWidgetName creates a name in the format "Base (v1/v2)".
// Values are ordered by sorted keys for consistent naming.
func formatWidgetName(baseName string, combo map[string]string) string {
	keys := make([]string, 0, len(combo))
	for k := range combo {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = combo[k]
	}
	return fmt.Sprintf("%s (%s)", baseName, strings.Join(parts, "/"))
}

// flattenMap converts a map to a slice of key-value pairs for variadic functions.
// Keys are sorted for deterministic output.
func flattenMap(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	result := make([]string, 0, len(m)*2)
	for _, k := range keys {
		result = append(result, k, m[k])
	}
	return result
}
