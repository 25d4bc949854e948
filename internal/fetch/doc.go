// Package fetch implements the per-widget polling machinery for finboard.
//
// Each widget is served by one [Fetcher], which performs an initial fetch,
// resolves the widget's key path against the parsed JSON response, and
// republishes the extracted value with loading/error status on every cycle
// until stopped. Fetchers run independently; the only state they share is
// the [Cache] and [HostLimiter] objects they are explicitly handed.
//
// The main components are:
//
//   - [Fetcher]: one widget's polling loop with Start/Stop/Refetch/Reconfigure
//   - [Result]: the tri-state loading/data/error snapshot a fetcher exposes
//   - [Client]: resty-backed HTTP client with pooling and a body size cap
//   - [Cache]: TTL response cache with in-flight request deduplication
//   - [HostLimiter]: per-host token-bucket throttling for rate-limited APIs
//
// Users of the finboard library should not need to interact with this
// package directly. Configuration is done through the main finboard package.
package fetch
