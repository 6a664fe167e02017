// Package app wires the registry, override resolver, and assembler into a
// runnable application instance, decoupled from any specific entrypoint
// like a CLI or a test harness.
package app
