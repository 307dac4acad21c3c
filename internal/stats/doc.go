// Package stats renders a live metrics dashboard for every container on a host.
//
// Three kinds of goroutine share one Cache:
//
//   - the discovery loop lists all containers on a fixed tick and starts a
//     poller for every container it has not seen before;
//   - one poller per container copies each sample from the engine's stats
//     stream into the cache, and clears its entry when the stream ends;
//   - the render loop paints the cache on a shorter tick.
//
// The Screen switches to the terminal's alternate buffer while the dashboard
// runs and restores it when Run returns, whether on cancellation or because
// painting failed.
package stats
