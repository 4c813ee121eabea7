// Package deps checks for the external programs the reviewer shells out to.
package deps

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"time"
)

const (
	MpvInstallURL = "https://mpv.io/installation/"
)

// DependencyError contains information about a missing dependency
type DependencyError struct {
	Name       string
	InstallURL string
}

func (e *DependencyError) Error() string {
	return fmt.Sprintf("%s not found. Install from: %s", e.Name, e.InstallURL)
}

// Tool is an external program and where to get it.
type Tool struct {
	Name       string
	InstallURL string
	// VersionFlag prints a version banner; the first line is reported.
	VersionFlag string
}

// Mpv is the video player backend.
var Mpv = Tool{Name: "mpv", InstallURL: MpvInstallURL, VersionFlag: "--version"}

// Status is the result of checking one tool.
type Status struct {
	Tool    Tool
	Path    string
	Version string
	Err     error
}

// lookPath is swapped in tests.
var lookPath = exec.LookPath

// Check looks the tool up in PATH.
func Check(t Tool) error {
	if _, err := lookPath(t.Name); err != nil {
		return &DependencyError{Name: t.Name, InstallURL: t.InstallURL}
	}
	return nil
}

// CheckMpv checks if mpv is installed and available in PATH
func CheckMpv() error {
	return Check(Mpv)
}

// Inspect checks the tool and, when present, asks it for its version.
func Inspect(ctx context.Context, t Tool) Status {
	st := Status{Tool: t}
	path, err := lookPath(t.Name)
	if err != nil {
		st.Err = &DependencyError{Name: t.Name, InstallURL: t.InstallURL}
		return st
	}
	st.Path = path
	if t.VersionFlag == "" {
		return st
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	out, err := exec.CommandContext(ctx, path, t.VersionFlag).Output()
	if err != nil {
		st.Err = fmt.Errorf("%s %s: %w", t.Name, t.VersionFlag, err)
		return st
	}
	st.Version = firstLine(out)
	return st
}

// CheckAll inspects every tool the reviewer needs.
func CheckAll(ctx context.Context) []Status {
	return []Status{Inspect(ctx, Mpv)}
}

func firstLine(b []byte) string {
	sc := bufio.NewScanner(bytes.NewReader(b))
	if sc.Scan() {
		return sc.Text()
	}
	return ""
}
