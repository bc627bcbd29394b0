// FILE: lixenwraith/repoconf/doc.go

// Package repoconf presents yum-style repository definitions spread over a
// main configuration file and any number of per-repository INI files as one
// mutable registry of named sections.
//
// Features:
//   - Directory discovery from fixed defaults plus the main file's "reposdir"
//   - Deterministic file enumeration (main file first, then *.repo per directory)
//   - One merged section namespace built once and shared by every record
//   - Placement of new sections into the most specific repository directory
//   - Persistence that rewrites only changed files and normalizes file modes
//   - Per-record projection with a lazy read-through property cache
//
// Quick Start:
//
//	shared := repoconf.NewBuilder().
//	    WithMainFile("/etc/yum.conf").
//	    Shared()
//
//	rec := repoconf.NewRecord("epel", shared, repoconf.YumProperties())
//	rec.Declare("baseurl", "https://download.example.com/epel/$releasever/")
//	rec.Declare("enabled", "1")
//	if err := rec.Create(); err != nil {
//	    log.Fatal(err)
//	}
//	if err := rec.Flush(); err != nil {
//	    log.Fatal(err)
//	}
//
// Merge Order:
//  1. Main configuration file (/etc/yum.conf)
//  2. Files matching the pattern in each default directory, lexical order
//  3. Files matching the pattern in each "reposdir" directory
//
// When two files declare the same section the later file wins and a warning
// is logged. Sections are replaced, never unioned.
//
// Concurrency:
// A Registry is not safe for concurrent use. One converging process owns the
// files for the duration of a run; the Registry is built once and every
// record reads and writes through it.
package repoconf
