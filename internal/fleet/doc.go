// Package fleet implements the dockers commands on top of an engine.
//
// Each exported method backs one command:
//   - Run: create, attach, start and optionally remove one container
//   - Start, Stop, Remove, RemoveImages: batch operations over many targets
//   - List: the ps table
//   - Logs, Events: streamed output until the engine or the caller stops it
//
// Arguments are validated before the engine is contacted, so a bad port,
// volume or filter never leaves a half-created container behind.
package fleet
