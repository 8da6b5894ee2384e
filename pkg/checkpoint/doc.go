// Package checkpoint persists fetch progress so an interrupted run can
// resume.
//
// The progress file is a single JSON record:
//
//	{
//	  "completed_platforms": ["PlayStation"],
//	  "last_offset": {"PlayStation": 2750, "PlayStation 2": 1000}
//	}
//
// Every save re-reads the record, updates one platform and rewrites the
// whole file through a temporary file that is synced and renamed over the
// original, so readers only ever see a complete snapshot. A missing or
// corrupt file reads as empty progress.
package checkpoint
