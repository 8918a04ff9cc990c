// Package openai implements ai.Embedder against any OpenAI-compatible
// embeddings API (OpenAI, Ollama, LocalAI, vLLM).
package openai
