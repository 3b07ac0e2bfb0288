// Package mock provides deterministic test doubles for the ai interfaces.
// The doubles require no network access and allow behavior injection through
// function fields.
package mock
