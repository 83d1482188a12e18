package files

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"tokenrisk/pkg/contracts/domain"
)

// EnrichedSuffix marks tables written by the enrichment and excluded from discovery
const EnrichedSuffix = "_with_OLRS"

// TableExtensions lists the health table formats the loader reads
var TableExtensions = []string{".csv", ".xlsx"}

// FileInfo represents information about a discovered health table
type FileInfo struct {
	Path    string
	Name    string
	Symbol  string
	Size    int64
	ModTime time.Time
}

// Discovery finds per-token health tables in a data directory
type Discovery struct {
	basePath string
}

// NewDiscovery creates a discovery rooted at basePath. Relative directories
// passed to its methods are joined to basePath.
func NewDiscovery(basePath string) *Discovery {
	return &Discovery{basePath: basePath}
}

// FindHealthTables returns every <SYMBOL>.csv or <SYMBOL>.xlsx in dir, sorted by
// symbol, with absolute paths. Enriched outputs and hidden files are skipped. When a symbol has both
// formats the CSV wins.
func (d *Discovery) FindHealthTables(dir string) ([]FileInfo, error) {
	fullPath := d.resolve(dir)
	if abs, err := filepath.Abs(fullPath); err == nil {
		fullPath = abs
	}

	entries, err := os.ReadDir(fullPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory %s: %w", fullPath, err)
	}

	bySymbol := make(map[string]FileInfo)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		symbol, ok := symbolFromName(name)
		if !ok {
			continue
		}
		if existing, seen := bySymbol[symbol]; seen && isCSV(existing.Name) {
			continue
		}

		info, err := entry.Info()
		if err != nil {
			continue
		}
		bySymbol[symbol] = FileInfo{
			Path:    filepath.Join(fullPath, name),
			Name:    name,
			Symbol:  symbol,
			Size:    info.Size(),
			ModTime: info.ModTime(),
		}
	}

	files := make([]FileInfo, 0, len(bySymbol))
	for _, f := range bySymbol {
		files = append(files, f)
	}
	sort.Slice(files, func(i, j int) bool {
		return files[i].Symbol < files[j].Symbol
	})
	return files, nil
}

// DiscoverItems turns the health tables in dir into batch items whose outputs
// sit next to their inputs in the same format.
func (d *Discovery) DiscoverItems(dir string) ([]domain.BatchItem, error) {
	tables, err := d.FindHealthTables(dir)
	if err != nil {
		return nil, err
	}

	items := make([]domain.BatchItem, 0, len(tables))
	for _, t := range tables {
		ext := filepath.Ext(t.Name)
		items = append(items, domain.BatchItem{
			Symbol: t.Symbol,
			Input:  t.Path,
			Output: filepath.Join(filepath.Dir(t.Path), strings.TrimSuffix(t.Name, ext)+EnrichedSuffix+ext),
		})
	}
	return items, nil
}

func (d *Discovery) resolve(dir string) string {
	if filepath.IsAbs(dir) || d.basePath == "" {
		return dir
	}
	return filepath.Join(d.basePath, dir)
}

// symbolFromName extracts the upper-cased symbol from a health table file name
func symbolFromName(name string) (string, bool) {
	if strings.HasPrefix(name, ".") {
		return "", false
	}
	ext := strings.ToLower(filepath.Ext(name))
	supported := false
	for _, e := range TableExtensions {
		if ext == e {
			supported = true
			break
		}
	}
	if !supported {
		return "", false
	}

	stem := name[:len(name)-len(ext)]
	if stem == "" || strings.HasSuffix(strings.ToLower(stem), strings.ToLower(EnrichedSuffix)) {
		return "", false
	}
	return strings.ToUpper(stem), true
}

func isCSV(name string) bool {
	return strings.EqualFold(filepath.Ext(name), ".csv")
}
