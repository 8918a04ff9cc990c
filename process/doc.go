// Package process turns raw stored documents into indexable chunks.
//
// The pipeline is render, then split: each source type has a renderer that
// produces plain text with attribution context preserved (speakers and
// timestamps for chat, titles and hierarchy for wiki pages, page markers
// for PDFs), and a deterministic sliding-window splitter cuts that text
// into bounded overlapping chunks. Chunk IDs are derived from document ID,
// position, and content, so re-processing unchanged raw data yields the
// same IDs.
package process
