package util

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
)

// PartialSuffix marks files still being written.
const PartialSuffix = ".part"

// SetupInterruptHandler cancels the session on the first SIGINT/SIGTERM and
// removes unfinished downloads under outputDir. A second signal exits at once.
func SetupInterruptHandler(cancel context.CancelFunc, outputDir string) {
	sig := make(chan os.Signal, 2)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sig
		fmt.Println("\nInterrupt received. Ending session...")
		cancel()

		CleanupPartialFiles(outputDir)
		RemoveIfEmpty(outputDir)

		<-sig
		fmt.Println("\nExiting due to interrupt.")
		os.Exit(1)
	}()
}

func CleanupPartialFiles(outputDir string) {
	_ = filepath.WalkDir(outputDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}

		if !d.IsDir() && strings.HasSuffix(d.Name(), PartialSuffix) {
			if err := os.Remove(path); err != nil {
				fmt.Printf("Error cleaning up %s: %v\n", path, err)
			} else {
				fmt.Printf("Removed %s\n", path)
			}
		}

		return nil
	})
}

func RemoveIfEmpty(dir string) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return
	}

	if len(entries) == 0 {
		if err := os.Remove(dir); err == nil {
			fmt.Printf("Removed empty output folder: %s\n", dir)
		}
	}
}
