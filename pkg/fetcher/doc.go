// Package fetcher is the resumable fetch-and-cache pipeline.
//
// For each platform it pages through the catalog 500 records at a time,
// caches every cover on the page, then checkpoints the new offset. An empty
// page, or one shorter than the page size, completes the platform. With
// resume enabled a completed platform is skipped without any network call
// and an unfinished one restarts at its saved offset.
//
// Interruption is delivered through the context and observed at page
// boundaries; downloads already started for the current page finish first.
package fetcher
