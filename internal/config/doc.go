// Package config resolves ordered, named override sources into a single
// merged key/value view. Merging is key-by-key: a later source shadows an
// earlier one only for the keys it actually sets. Keys are dotted paths
// (e.g. "heartbeat.addr") and values are cty values, so modules read their
// configuration through typed getters regardless of which overlay format
// supplied it.
package config
