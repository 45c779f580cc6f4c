package main

import (
	"fmt"
	"os"
	"os/exec"
	"runtime"
	"strings"

	"github.com/joho/godotenv"
)

func main() {
	fmt.Println("==============================================")
	fmt.Println("  plscrape environment check")
	fmt.Println("==============================================")
	fmt.Println()

	allOK := true

	goVersion := runtime.Version()
	fmt.Printf("Go version: %s\n", goVersion)
	if !strings.HasPrefix(goVersion, "go1.23") && !strings.HasPrefix(goVersion, "go1.24") {
		fmt.Println("warning: Go 1.23+ recommended")
	}
	fmt.Printf("platform: %s/%s\n", runtime.GOOS, runtime.GOARCH)

	// A local Chrome/Chromium is optional; the launcher downloads its
	// own browser when none is found.
	browserFound := false
	for _, bin := range []string{"google-chrome", "chromium", "chromium-browser"} {
		if _, err := exec.LookPath(bin); err == nil {
			fmt.Printf("browser found: %s\n", bin)
			browserFound = true
			break
		}
	}
	if !browserFound {
		fmt.Println("no local browser found, the launcher will download one on first run")
	}

	fmt.Println()
	fmt.Println("checking endpoint configuration...")
	_ = godotenv.Load()
	for _, key := range []string{"TABLE_URL", "STATS_URL"} {
		if os.Getenv(key) == "" {
			fmt.Printf("missing: %s (set it in .env or the environment)\n", key)
			allOK = false
		} else {
			fmt.Printf("ok: %s\n", key)
		}
	}

	fmt.Println()
	fmt.Println("checking project layout...")
	requiredDirs := []string{
		"cmd/plscrape",
		"internal/browser",
		"internal/core",
		"internal/extract",
		"internal/models",
		"internal/snapshot",
		"internal/utils",
		"configs",
	}
	for _, dir := range requiredDirs {
		if _, err := os.Stat(dir); err == nil {
			fmt.Printf("ok: %s/\n", dir)
		} else {
			fmt.Printf("missing: %s/\n", dir)
			allOK = false
		}
	}
	if _, err := os.Stat("go.mod"); err != nil {
		fmt.Println("missing: go.mod (run from the repository root)")
		allOK = false
	}

	fmt.Println()
	fmt.Println("==============================================")
	if allOK {
		fmt.Println("environment check passed")
		os.Exit(0)
	}
	fmt.Println("environment check failed, fix the items above")
	os.Exit(1)
}
