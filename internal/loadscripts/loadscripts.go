// Package loadscripts generates the MATLAB activation scripts bundled with
// every package: load_package.m adds the resolved paths to the MATLAB path
// in resolution order, unload_package.m removes them in reverse.
package loadscripts

import (
	"os"
	"path/filepath"
	"strings"
	"text/template"
)

const (
	LoadFileName   = "load_package.m"
	UnloadFileName = "unload_package.m"
)

var loadTmpl = template.Must(template.New("load").Funcs(funcs).Parse(
	`% Add {{.Name}} to the MATLAB path
base_path = fileparts(mfilename('fullpath'));
{{range .Paths}}addpath(fullfile(base_path{{mparts .}}));
{{end}}`))

var unloadTmpl = template.Must(template.New("unload").Funcs(funcs).Parse(
	`% Remove {{.Name}} from the MATLAB path
base_path = fileparts(mfilename('fullpath'));
{{range .Paths}}rmpath(fullfile(base_path{{mparts .}}));
{{end}}`))

var funcs = template.FuncMap{
	// mparts renders "a/b" as the fullfile argument list ", 'a', 'b'".
	"mparts": func(rel string) string {
		var b strings.Builder
		for _, part := range strings.Split(rel, "/") {
			b.WriteString(", '")
			b.WriteString(strings.ReplaceAll(part, "'", "''"))
			b.WriteString("'")
		}
		return b.String()
	},
}

type scriptData struct {
	Name  string
	Paths []string
}

// Write creates both activation scripts in dir. Paths are slash-separated,
// relative to dir, in activation precedence order.
func Write(dir, packageName string, resolvedPaths []string) error {
	if err := render(filepath.Join(dir, LoadFileName), loadTmpl, packageName, resolvedPaths); err != nil {
		return err
	}
	reversed := make([]string, len(resolvedPaths))
	for i, p := range resolvedPaths {
		reversed[len(resolvedPaths)-1-i] = p
	}
	return render(filepath.Join(dir, UnloadFileName), unloadTmpl, packageName, reversed)
}

func render(path string, tmpl *template.Template, name string, paths []string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := tmpl.Execute(f, scriptData{Name: name, Paths: paths}); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
