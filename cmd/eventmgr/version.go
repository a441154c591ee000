package main

import (
	"io"
	"runtime"
	"text/template"

	"github.com/spf13/cobra"
)

var versionTemplate = `Version:      {{.Version}}
Commit:       {{.Commit}}
Go version:   {{.GoVersion}}
Built:        {{.BuildTime}}
OS/Arch:      {{.Os}}/{{.Arch}}
`

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version number of eventmgr",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return printVersion(cmd.OutOrStdout())
		},
	}
}

func printVersion(w io.Writer) error {
	tmpl, err := template.New("version").Parse(versionTemplate)
	if err != nil {
		return err
	}

	return tmpl.Execute(w, struct {
		Version   string
		Commit    string
		GoVersion string
		BuildTime string
		Os        string
		Arch      string
	}{
		Version:   version,
		Commit:    commit,
		GoVersion: runtime.Version(),
		BuildTime: date,
		Os:        runtime.GOOS,
		Arch:      runtime.GOARCH,
	})
}
