//go:build ignore

// build.go - prfcli build helper
// Usage: go run build.go [-target=TARGET] [-v]
// Targets: build, test, release, clean

package main

import (
	"flag"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"time"

	"github.com/fatih/color"
)

const binary = "prfcli"

var (
	distDir = "dist"

	// GOOS/GOARCH pairs produced by the release target
	releaseTargets = [][2]string{
		{"linux", "amd64"},
		{"linux", "arm64"},
		{"darwin", "arm64"},
		{"windows", "amd64"},
	}

	infoColor    = color.New(color.FgCyan)
	successColor = color.New(color.FgGreen)
	errorColor   = color.New(color.FgRed)
)

func main() {
	target := flag.String("target", "build", "Build target")
	verbose := flag.Bool("v", false, "Verbose output")
	flag.Parse()

	start := time.Now()
	var err error
	switch *target {
	case "build":
		err = build(runtime.GOOS, runtime.GOARCH, *verbose)
	case "test":
		err = runTests(*verbose)
	case "release":
		err = release(*verbose)
	case "clean":
		err = clean()
	default:
		showHelp()
		os.Exit(1)
	}
	if err != nil {
		errorColor.Printf("[ERROR] %v\n", err)
		os.Exit(1)
	}
	successColor.Printf("[SUCCESS] %s completed in %s\n", *target, time.Since(start).Round(time.Millisecond))
}

func outputName(goos, goarch string) string {
	name := fmt.Sprintf("%s-%s-%s", binary, goos, goarch)
	if goos == "windows" {
		name += ".exe"
	}
	return filepath.Join(distDir, name)
}

func build(goos, goarch string, verbose bool) error {
	out := outputName(goos, goarch)
	infoColor.Printf("[INFO] Building %s\n", out)

	args := []string{"build", "-trimpath", "-ldflags", "-s -w", "-o", out}
	if verbose {
		args = append(args, "-v")
	}
	args = append(args, "./cmd/prfcli")

	cmd := exec.Command("go", args...)
	cmd.Env = append(os.Environ(), "GOOS="+goos, "GOARCH="+goarch, "CGO_ENABLED=0")
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("build %s/%s: %w", goos, goarch, err)
	}
	return nil
}

func release(verbose bool) error {
	for _, t := range releaseTargets {
		if err := build(t[0], t[1], verbose); err != nil {
			return err
		}
	}
	return nil
}

func runTests(verbose bool) error {
	args := []string{"test", "-race", "-count=1"}
	if verbose {
		args = append(args, "-v")
	}
	args = append(args, "./...")

	cmd := exec.Command("go", args...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd.Run()
}

func clean() error {
	infoColor.Printf("[INFO] Removing %s\n", distDir)
	return os.RemoveAll(distDir)
}

func showHelp() {
	fmt.Println("Usage: go run build.go -target=<build|test|release|clean> [-v]")
}
