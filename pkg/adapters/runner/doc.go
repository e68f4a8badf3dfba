// Package runner provides node runner implementations.
//
// The factory composes the runner from two transports:
//   - anthropic: assistant completions (MVP)
//   - genapi: image and video generation over the remote HTTP service
//
// Future providers:
//   - OpenAI GPT
//   - Google Gemini
package runner
