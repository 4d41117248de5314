// Package toolchain locates the external build driver and test runner.
//
// A tool is resolved from, in order: an explicitly configured path, the PATH,
// and the well-known Visual Studio 2022 install locations. Resolution fails
// fast with an error that lists every location that was searched.
package toolchain

import (
	"os"
	osexec "os/exec"
	"path/filepath"
	"strings"

	"github.com/felixgeelhaar/daxbuild/internal/errors"
)

// Tool describes an external executable and where it usually lives
type Tool struct {
	Name        string   // Display name, e.g. "MSBuild"
	Executables []string // Names looked up on PATH
	WellKnown   []string // Absolute install locations, most preferred first
}

var vsEditions = []string{"Enterprise", "Professional", "Community", "BuildTools"}

const vsRoot = `C:\Program Files\Microsoft Visual Studio\2022`

// MSBuild is the build driver
var MSBuild = Tool{
	Name:        "MSBuild",
	Executables: []string{"MSBuild.exe", "msbuild"},
	WellKnown:   vsPaths(`MSBuild\Current\Bin\MSBuild.exe`),
}

// VSTest is the test runner
var VSTest = Tool{
	Name:        "vstest.console",
	Executables: []string{"vstest.console.exe", "vstest.console"},
	WellKnown:   vsPaths(`Common7\IDE\CommonExtensions\Microsoft\TestWindow\vstest.console.exe`),
}

func vsPaths(rel string) []string {
	paths := make([]string, 0, len(vsEditions))
	for _, edition := range vsEditions {
		paths = append(paths, vsRoot+`\`+edition+`\`+rel)
	}
	return paths
}

// Resolver finds tools on the local machine. The zero value uses the real
// PATH and filesystem.
type Resolver struct {
	LookPath func(file string) (string, error)
	Stat     func(name string) (os.FileInfo, error)
}

// NewResolver returns a Resolver backed by os/exec and os
func NewResolver() *Resolver {
	return &Resolver{LookPath: osexec.LookPath, Stat: os.Stat}
}

// Resolve returns the path to tool. A non-empty configured value is
// authoritative: if it cannot be found there is no fallback search.
func (r *Resolver) Resolve(tool Tool, configured string) (string, error) {
	configured = strings.TrimSpace(configured)
	if configured != "" {
		if path, ok := r.find(configured); ok {
			return path, nil
		}
		return "", errors.NewToolNotFoundError(tool.Name, []string{configured})
	}

	searched := make([]string, 0, len(tool.Executables)+len(tool.WellKnown))
	for _, name := range tool.Executables {
		if path, err := r.lookPath(name); err == nil {
			return path, nil
		}
		searched = append(searched, "$PATH/"+name)
	}
	for _, candidate := range tool.WellKnown {
		if r.isFile(candidate) {
			return candidate, nil
		}
		searched = append(searched, candidate)
	}

	return "", errors.NewToolNotFoundError(tool.Name, searched)
}

// find resolves a configured value: paths must exist, bare names go through PATH
func (r *Resolver) find(value string) (string, bool) {
	if filepath.IsAbs(value) || strings.ContainsAny(value, `/\`) {
		return value, r.isFile(value)
	}
	path, err := r.lookPath(value)
	return path, err == nil
}

func (r *Resolver) lookPath(name string) (string, error) {
	if r.LookPath != nil {
		return r.LookPath(name)
	}
	return osexec.LookPath(name)
}

func (r *Resolver) isFile(path string) bool {
	stat := r.Stat
	if stat == nil {
		stat = os.Stat
	}
	info, err := stat(path)
	return err == nil && !info.IsDir()
}
