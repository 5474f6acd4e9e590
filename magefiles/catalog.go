//go:build mage

package main

import (
	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

// Catalog builds the CLI, indexes every story in stories/ into catalog/,
// and reports dangling links.
func Catalog() error {
	mg.Deps(Build)

	files, err := storyFiles()
	if err != nil {
		return err
	}
	args := append([]string{"catalog", "store", "--catalog-dir", catalogDir}, files...)
	if err := sh.RunV(binPath, args...); err != nil {
		return err
	}
	return sh.RunV(binPath, "catalog", "check", "--catalog-dir", catalogDir)
}
