// Package index assembles the consolidated package index from the metadata
// sidecars published in the object store.
package index

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"html/template"
	"log"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/neurosift/mipforge/internal/objectstore"
)

const (
	JSONFileName = "index.json"
	HTMLFileName = "index.html"
)

// Index is the consolidated listing served next to the packages.
type Index struct {
	Packages      []map[string]any `json:"packages"`
	TotalPackages int              `json:"total_packages"`
	LastUpdated   string           `json:"last_updated"`
}

// Assembler builds the index from every .mhl.mip.json under Prefix.
type Assembler struct {
	Store   objectstore.Store
	Prefix  string
	BaseURL string
}

// Assemble lists, fetches, and parses the published metadata objects.
// An object that cannot be fetched or parsed is logged and skipped so one
// corrupt upload cannot take the whole index down. Entries keep every field
// their manifest carries; mhl_url and mip_json_url are backfilled from the
// base URL when absent.
func (a *Assembler) Assemble(ctx context.Context) (*Index, error) {
	keys, err := a.Store.List(ctx, a.Prefix)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", a.Prefix, err)
	}

	var packages []map[string]any
	for _, key := range keys {
		if !strings.HasSuffix(key, ".mhl.mip.json") {
			continue
		}
		data, err := a.Store.Get(ctx, key)
		if err != nil {
			log.Printf("warning: fetch %s: %v", key, err)
			continue
		}
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.UseNumber()
		var entry map[string]any
		if err := dec.Decode(&entry); err != nil {
			log.Printf("warning: parse %s: %v", key, err)
			continue
		}
		a.backfillURLs(entry, key)
		packages = append(packages, entry)
	}

	sort.Slice(packages, func(i, j int) bool {
		ni, nj := str(packages[i], "name"), str(packages[j], "name")
		if ni != nj {
			return ni < nj
		}
		return str(packages[i], "version") < str(packages[j], "version")
	})

	return &Index{
		Packages:      packages,
		TotalPackages: len(packages),
		LastUpdated:   time.Now().UTC().Format(time.RFC3339),
	}, nil
}

func (a *Assembler) backfillURLs(entry map[string]any, key string) {
	base := path.Base(key)
	if str(entry, "mhl_url") == "" {
		entry["mhl_url"] = a.BaseURL + "/" + strings.TrimSuffix(base, ".mip.json")
	}
	if str(entry, "mip_json_url") == "" {
		entry["mip_json_url"] = a.BaseURL + "/" + base
	}
}

func str(entry map[string]any, key string) string {
	if v, ok := entry[key].(string); ok {
		return v
	}
	return ""
}

var htmlTmpl = template.Must(template.New("index").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>MIP package index</title>
</head>
<body>
<h1>MIP package index</h1>
<p>{{.TotalPackages}} package(s), updated {{.LastUpdated}}</p>
<table>
<tr><th>Package</th><th>Version</th><th>Build</th><th>Description</th></tr>
{{range .Packages}}<tr><td><a href="{{.mhl_url}}">{{.name}}</a></td><td>{{.version}}</td><td>{{.build_number}}</td><td>{{.description}}</td></tr>
{{end}}</table>
</body>
</html>
`))

// WriteFiles writes index.json and index.html into dir.
func (idx *Index) WriteFiles(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	data, err := idx.JSON()
	if err != nil {
		return err
	}
	if err := os.WriteFile(filepath.Join(dir, JSONFileName), data, 0o644); err != nil {
		return err
	}
	html, err := idx.HTML()
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dir, HTMLFileName), html, 0o644)
}

// JSON renders the index as indented JSON.
func (idx *Index) JSON() ([]byte, error) {
	data, err := json.MarshalIndent(idx, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}

// HTML renders the human-readable listing.
func (idx *Index) HTML() ([]byte, error) {
	var buf bytes.Buffer
	if err := htmlTmpl.Execute(&buf, idx); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Upload pushes both index files to the store under prefix.
func (idx *Index) Upload(ctx context.Context, store objectstore.Store, prefix string) error {
	data, err := idx.JSON()
	if err != nil {
		return err
	}
	if err := store.Put(ctx, path.Join(prefix, JSONFileName), data, "application/json"); err != nil {
		return err
	}
	html, err := idx.HTML()
	if err != nil {
		return err
	}
	return store.Put(ctx, path.Join(prefix, HTMLFileName), html, "text/html")
}
