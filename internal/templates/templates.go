// Package templates holds the server-rendered HTML pages.
package templates

import (
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"os"
	"time"
)

//go:embed *.tmpl
var embedded embed.FS

// Load parses every page template. An empty dir uses the copies built into the binary.
func Load(dir string) (*template.Template, error) {
	var fsys fs.FS = embedded
	if dir != "" {
		fsys = os.DirFS(dir)
	}

	tmpl, err := template.New("").Funcs(funcMap).ParseFS(fsys, "*.tmpl")
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}
	return tmpl, nil
}

var funcMap = template.FuncMap{
	"formatDate": func(t time.Time) string {
		return t.Format("Jan 2, 2006")
	},
	"percent": func(f float64) string {
		return fmt.Sprintf("%.0f%%", f)
	},
	"add": func(a, b int) int {
		return a + b
	},
	"deref": func(p *int64) int64 {
		if p == nil {
			return 0
		}
		return *p
	},
}
