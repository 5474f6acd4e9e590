//go:build mage

package main

import (
	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

// Convert builds the CLI and converts every story in stories/ into
// dialogue/, overwriting earlier output.
func Convert() error {
	mg.Deps(Build)

	files, err := storyFiles()
	if err != nil {
		return err
	}
	args := append([]string{"convert", "--out-dir", dialogueDir, "--force"}, files...)
	return sh.RunV(binPath, args...)
}
