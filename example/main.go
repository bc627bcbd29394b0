// FILE: lixenwraith/repoconf/example/main.go
package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/lixenwraith/repoconf"
	"github.com/lixenwraith/repoconf/internal/ctxlog"
)

func main() {
	// =========================================================================
	// PART 1: INITIAL SETUP
	// Lay out a throwaway yum tree: a main file with a custom reposdir and
	// one existing repository file.
	// =========================================================================
	log.Println("---")
	log.Println("➡️  PART 1: Creating a yum tree...")

	root, err := os.MkdirTemp("", "repoconf-example-")
	if err != nil {
		log.Fatalf("❌ Failed to create temp dir: %v", err)
	}
	defer func() {
		log.Println("---")
		log.Println("🧹 Cleaning up...")
		os.RemoveAll(root)
	}()

	mainFile := filepath.Join(root, "yum.conf")
	defaultDir := filepath.Join(root, "yum.repos.d")
	customDir := filepath.Join(root, "custom", "repos")
	for _, dir := range []string{defaultDir, customDir} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			log.Fatalf("❌ Failed to create %s: %v", dir, err)
		}
	}
	mustWrite(mainFile, "[main]\ngpgcheck=1\nreposdir="+customDir+"\n", 0644)
	mustWrite(filepath.Join(defaultDir, "base.repo"),
		"[base]\nname=Base OS\nbaseurl=http://mirror.example.com/base/\nenabled=1\n", 0600)
	log.Printf("✅ Tree created under %s.", root)

	// =========================================================================
	// PART 2: ONE SHARED REGISTRY FOR THE WHOLE RUN
	// Every record below reads and writes through the same lazily built
	// registry.
	// =========================================================================
	log.Println("---")
	log.Println("➡️  PART 2: Building the shared registry...")

	logger := ctxlog.New("info", "text", os.Stderr)

	shared := repoconf.NewBuilder().
		WithMainFile(mainFile).
		WithRepoDirs(defaultDir).
		WithLogger(logger).
		Shared()
	props := repoconf.YumProperties()

	existing, err := repoconf.Instances(shared, props)
	if err != nil {
		log.Fatalf("❌ Registry build failed: %v", err)
	}
	printRecords("Existing repositories", existing, props)

	// =========================================================================
	// PART 3: CHANGE, CREATE AND DESTROY
	// Nothing reaches the disk until the single flush at the end.
	// =========================================================================
	log.Println("---")
	log.Println("➡️  PART 3: Converging records...")

	base := repoconf.NewRecord("base", shared, props)
	if err := base.SetBool("enabled", false); err != nil {
		log.Fatalf("❌ Set failed: %v", err)
	}

	epel := repoconf.NewRecord("epel", shared, props)
	epel.Declare(repoconf.PropDescr, "Extra Packages")
	epel.Declare("baseurl", "http://mirror.example.com/epel/")
	epel.Declare("gpgcheck", "1")
	if err := epel.Create(); err != nil {
		log.Fatalf("❌ Create failed: %v", err)
	}

	scratch := repoconf.NewRecord("scratch", shared, props)
	if err := scratch.Set("baseurl", "http://scratch/"); err != nil {
		log.Fatalf("❌ Set failed: %v", err)
	}
	if err := scratch.Destroy(); err != nil {
		log.Fatalf("❌ Destroy failed: %v", err)
	}

	stats, err := shared.Persist()
	if err != nil {
		log.Fatalf("❌ Flush failed: %v", err)
	}
	log.Printf("✅ Flushed: written=%v removed=%v chmoded=%v", stats.Written, stats.Removed, stats.Chmoded)

	// =========================================================================
	// PART 4: VERIFY FROM A FRESH REGISTRY
	// =========================================================================
	log.Println("---")
	log.Println("➡️  PART 4: Reloading from disk...")

	fresh := repoconf.NewBuilder().
		WithMainFile(mainFile).
		WithRepoDirs(defaultDir).
		WithLogger(logger).
		Shared()
	reloaded, err := repoconf.Instances(fresh, props)
	if err != nil {
		log.Fatalf("❌ Reload failed: %v", err)
	}
	printRecords("Final repositories", reloaded, props)

	if _, err := os.Stat(filepath.Join(customDir, "epel.repo")); err != nil {
		log.Fatalf("❌ VERIFICATION FAILED: epel.repo not in the custom directory: %v", err)
	}
	log.Println("✅ VERIFICATION SUCCESSFUL: new repositories land in the last directory.")
}

func mustWrite(path, content string, mode os.FileMode) {
	if err := os.WriteFile(path, []byte(content), mode); err != nil {
		log.Fatalf("❌ Failed to write %s: %v", path, err)
	}
}

// printRecords displays every non-absent property of each record.
func printRecords(title string, records []*repoconf.Record, props *repoconf.PropertySet) {
	fmt.Println("   --------------------------------------------------")
	fmt.Printf("             %s\n", title)
	fmt.Println("   --------------------------------------------------")
	for _, rec := range records {
		fmt.Printf("     [%s]\n", rec.Name())
		for _, prop := range props.Names() {
			v, err := rec.Get(prop)
			if err != nil || v == repoconf.Absent {
				continue
			}
			fmt.Printf("       %-10s %s\n", prop+":", v)
		}
	}
	fmt.Println("   --------------------------------------------------")
}
