package main

import (
	"bytes"
	"fmt"
	"text/template"
)

var funcMap = template.FuncMap{
	"hex16": func(v uint16) string { return fmt.Sprintf("0x%04X", v) },
	"quote": func(s string) string { return fmt.Sprintf("%q", s) },
}

var namesTmpl = template.Must(template.New("names").Funcs(funcMap).Parse(
	`// Code generated by rdmnet-pidgen from {{.Source}}. DO NOT EDIT.

package {{.Package}}

var pidNames = map[uint16]string{
{{- range .File.Parameters}}
	{{hex16 .PID}}: {{quote .Name}},
{{- end}}
}

var pidStandards = map[uint16]string{
{{- range .Other}}
	{{hex16 .PID}}: {{quote .Standard}},
{{- end}}
}

// PIDName returns the parameter name for pid, or a hex placeholder.
func PIDName(pid uint16) string {
	if name, ok := pidNames[pid]; ok {
		return name
	}
	return fmt.Sprintf("PID(0x%04x)", pid)
}

// PIDStandard returns the standard that defines pid ({{quote .File.Standard}} by default).
func PIDStandard(pid uint16) string {
	if std, ok := pidStandards[pid]; ok {
		return std
	}
	return {{quote .File.Standard}}
}
`))

// Generate renders the name tables. Imports are left to goimports.
func Generate(f *PIDFile, pkg, source string) (string, error) {
	var other []PIDDef
	for _, p := range f.Parameters {
		if p.Standard != "" && p.Standard != f.Standard {
			other = append(other, p)
		}
	}

	var buf bytes.Buffer
	err := namesTmpl.Execute(&buf, struct {
		Package string
		Source  string
		File    *PIDFile
		Other   []PIDDef
	}{pkg, source, f, other})
	if err != nil {
		return "", err
	}
	return buf.String(), nil
}
