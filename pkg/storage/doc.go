// Package storage manages the local cover cache.
//
// Each cover maps to exactly one file name. When both the platform and the
// game title are known the name is readable ("PlayStation 2 - Ico.jpg"),
// otherwise it is the MD5 of the resolved image URL. Because the mapping is
// deterministic, an existing file is proof the cover was fetched before and
// no request is made for it.
//
// Downloads are streamed to "<name>.part", synced, and renamed into place,
// so an interrupted or failed transfer never leaves a file that would be
// mistaken for a cached cover.
package storage
