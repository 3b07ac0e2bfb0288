// Package openai implements the ai interfaces against OpenAI-compatible
// endpoints (OpenAI, Ollama, LocalAI, vLLM) using langchaingo.
//
// The embedder wraps the embeddings API; the pattern analyzer drives a chat
// model in JSON mode at temperature zero and repairs common formatting
// defects in the response before parsing.
package openai
