// Package ai defines the abstract interfaces for the engine's AI capabilities:
// text embedding and qualitative pattern analysis.
//
// The interfaces decouple the association engine from specific AI backends.
// Production code uses the openai subpackage (any OpenAI-compatible endpoint);
// tests use the mock subpackage. Both capabilities are injected explicitly
// through a Provider constructed once per process; there is no ambient global
// client state.
package ai
