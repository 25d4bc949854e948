package finboard

import "time"

// Kind is a rendering hint telling the dashboard how to display a widget's
// resolved value.
//
// Kind is a string type that can hold one of three predefined values:
// [KindCard], [KindTable], or [KindChart]. Using a string type allows for
// easy JSON serialization and human-readable logging while maintaining type
// safety through the defined constants.
type Kind string

const (
	// KindCard renders the value as a single headline figure.
	// Suitable for scalar values such as a quote price or a change percent.
	KindCard Kind = "card"

	// KindTable renders the value as rows. Suitable for objects and arrays,
	// such as a merged "Global Quote" object.
	KindTable Kind = "table"

	// KindChart renders the value as a time series. Suitable for arrays of
	// numeric points.
	KindChart Kind = "chart"
)

// String returns the string representation of the kind.
// This implements the fmt.Stringer interface.
func (k Kind) String() string {
	return string(k)
}

// Result holds the outcome of one fetch cycle for a single widget, as
// delivered to update callbacks registered via [WithUpdateCallback].
//
// Result carries the widget's full tri-state: Loading, Data, and Err.
// The three fields are not mutually exclusive. While Loading is true, Data
// and Err still describe the previous completed cycle, so consumers can keep
// showing the stale value during a refresh. When Err is non-nil, Data
// retains the last successfully resolved value (or nil if no cycle ever
// succeeded).
type Result struct {
	// WidgetID is the unique identifier of the widget this result belongs to.
	WidgetID string

	// WidgetName is the widget's display name.
	WidgetName string

	// Kind is the widget's rendering hint.
	Kind Kind

	// URL is the endpoint that was fetched.
	URL string

	// Path is the key path expression that was resolved against the response.
	Path string

	// Loading reports whether a fetch cycle is currently in flight.
	Loading bool

	// Data is the value resolved from the most recent successful cycle.
	// May be any JSON type, including nil for a present JSON null.
	Data any

	// Err contains the failure of the most recent completed cycle.
	// nil indicates the cycle completed successfully.
	Err error

	// CheckedAt is the completion time of the most recent cycle.
	CheckedAt time.Time
}
