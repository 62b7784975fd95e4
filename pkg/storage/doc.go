// Package storage owns the two on-disk artifacts of a run: the HTML
// accumulation file and the directory of downloaded documents.
//
// Manager writes documents atomically (temp file plus rename) into a flat
// output directory and answers existence checks against the filesystem, so
// a rerun skips everything already downloaded. It is safe for concurrent use
// by the download workers.
//
// HTMLFile appends rendered listing pages to a single file and reads it back
// for link extraction.
//
// Usage:
//
//	manager, err := storage.NewManager("PDFs")
//	if err != nil {
//	    return err
//	}
//
//	if !manager.Exists("abc123-en.pdf") {
//	    err = manager.Save(body, "abc123-en.pdf")
//	}
package storage
