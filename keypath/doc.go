// Package keypath resolves dotted path expressions against decoded JSON
// values.
//
// A path expression is a string like "a.b.0.c" or "quotes[2].price"
// describing a traversal over nested objects and arrays. The resolver
// tolerates ambiguity between dotted paths and object keys that themselves
// contain dots (common in financial APIs, e.g. Alpha Vantage's
// "09. change"), preferring exact single-segment matches and falling back
// to a bounded greedy merge of adjacent segments.
//
// The package operates on the output of encoding/json unmarshalled into
// any: map[string]any for objects, []any for arrays.
package keypath
