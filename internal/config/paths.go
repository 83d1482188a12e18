package config

import (
	"fmt"
	"os"
	"path/filepath"

	"tokenrisk/pkg/contracts/domain"
)

// ResolveItem returns the item with relative input and output paths joined to
// Batch.BaseDir. An empty BaseDir leaves paths relative to the working directory.
func (c *Config) ResolveItem(item domain.BatchItem) domain.BatchItem {
	if c.Batch.BaseDir == "" {
		return item
	}
	if !filepath.IsAbs(item.Input) {
		item.Input = filepath.Join(c.Batch.BaseDir, item.Input)
	}
	if !filepath.IsAbs(item.Output) {
		item.Output = filepath.Join(c.Batch.BaseDir, item.Output)
	}
	return item
}

// ResolvedItems returns every configured item with ResolveItem applied
func (c *Config) ResolvedItems() []domain.BatchItem {
	items := make([]domain.BatchItem, len(c.Items))
	for i, item := range c.Items {
		items[i] = c.ResolveItem(item)
	}
	return items
}

// EnsureParentDir creates the directory that will hold path
func EnsureParentDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return nil
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}
	return nil
}

// FileExists checks if a regular file exists at path
func FileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
