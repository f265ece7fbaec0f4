// Package mock provides test doubles for the language model and embedder.
//
// MockEmbedder maps text to a bag-of-words vector so texts sharing words
// score higher under cosine similarity; MockModel replays scripted
// completions in order.
package mock
