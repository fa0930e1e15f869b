package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"

	flag "github.com/spf13/pflag"

	textbook "github.com/alnah/go-textbook"
	"github.com/alnah/go-textbook/internal/state"
	"github.com/alnah/go-textbook/internal/version"
)

// lookPath is exec.LookPath, replaced in tests through Environment.
var lookPath = exec.LookPath

// doctorResult holds all diagnostic information.
type doctorResult struct {
	Status    string        `json:"status"` // "ready", "warnings", "errors"
	Engine    engineInfo    `json:"engine"`
	Toolchain toolchainInfo `json:"toolchain"`
	Content   contentInfo   `json:"content"`
	Env       envInfo       `json:"environment"`
	System    systemInfo    `json:"system"`
	Warnings  []string      `json:"warnings,omitempty"`
	Errors    []string      `json:"errors,omitempty"`
}

// engineInfo holds the notebook execution engine detection results.
type engineInfo struct {
	Command string `json:"command"`
	Found   bool   `json:"found"`
	Path    string `json:"path,omitempty"`
	Version string `json:"version,omitempty"`
}

// toolchainInfo holds the toolchain the notebooks demonstrate.
type toolchainInfo struct {
	Name      string `json:"name"`
	Installed string `json:"installed"`
	Latest    string `json:"latest,omitempty"`
}

// contentInfo holds the content root and state file checks.
type contentInfo struct {
	Root      string `json:"root"`
	Notebooks int    `json:"notebooks"`
	Hashes    int    `json:"hashes"`
	Skipped   int    `json:"skipped"`
	Config    string `json:"config,omitempty"`

	StaleHashes []string `json:"stale_hashes,omitempty"`
}

// envInfo holds environment detection results.
type envInfo struct {
	OS   string `json:"os"`
	Arch string `json:"arch"`
	CI   bool   `json:"ci"`
}

// systemInfo holds system check results.
type systemInfo struct {
	TempWritable bool `json:"temp_writable"`
}

// runDoctorCmd executes the doctor command and returns an exit code.
// Exit codes: 0 = OK (including warnings), 1 = errors found, 2 = usage.
func runDoctorCmd(ctx context.Context, args []string, env *Environment) int {
	jsonOutput := false
	f, err := parseToolFlags("doctor", args, env.Stderr, func(fs *flag.FlagSet) {
		fs.BoolVar(&jsonOutput, "json", false, "print the result as JSON")
	})
	if errors.Is(err, flag.ErrHelp) {
		return ExitSuccess
	}
	if err != nil {
		fmt.Fprintln(env.Stderr, "error:", err)
		return ExitUsage
	}
	s, err := resolveSettings(f, env)
	if err != nil {
		fmt.Fprintln(env.Stderr, "error:", err)
		return exitCodeFor(err)
	}

	result := runDoctor(ctx, s, env)

	if jsonOutput {
		enc := json.NewEncoder(env.Stdout)
		enc.SetIndent("", "  ")
		_ = enc.Encode(result)
	} else {
		printDoctorResult(env.Stdout, result)
	}

	if result.Status == "errors" {
		return ExitGeneral
	}
	return ExitSuccess
}

// runDoctor performs all diagnostic checks.
func runDoctor(ctx context.Context, s *settings, env *Environment) *doctorResult {
	result := &doctorResult{
		Status: "ready",
		Env: envInfo{
			OS:   runtime.GOOS,
			Arch: runtime.GOARCH,
		},
	}

	checkEngine(ctx, result, s, env)
	checkToolchain(ctx, result, s, env)
	checkContent(result, s)
	checkEnvironment(result)
	checkSystem(result)

	if len(result.Errors) > 0 {
		result.Status = "errors"
	} else if len(result.Warnings) > 0 {
		result.Status = "warnings"
	}
	return result
}

// checkEngine locates the notebook execution command and its version.
func checkEngine(ctx context.Context, result *doctorResult, s *settings, env *Environment) {
	command := engineCommand(s.cfg)
	result.Engine.Command = strings.Join(command, " ")

	path, err := env.LookPath(command[0])
	if err != nil {
		result.Errors = append(result.Errors,
			fmt.Sprintf("%s not found on PATH. Install it or set execution.command", command[0]))
		return
	}
	result.Engine.Found = true
	result.Engine.Path = path

	args := append(append([]string(nil), command[1:]...), "--version")
	stdout, _, err := env.Runner.Run(ctx, "", command[0], args...)
	if err != nil {
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("Could not get %s version: %v", result.Engine.Command, err))
		return
	}
	result.Engine.Version = strings.TrimSpace(stdout)
}

// checkToolchain resolves the installed toolchain version.
func checkToolchain(ctx context.Context, result *doctorResult, s *settings, env *Environment) {
	tc := s.cfg.Toolchain
	result.Toolchain.Name = tc.Name
	result.Toolchain.Latest = tc.LatestStable

	installed, err := version.Installed(ctx, tc.Version, tc.VersionCommand, env.Runner)
	result.Toolchain.Installed = installed
	switch {
	case err != nil:
		result.Warnings = append(result.Warnings, err.Error())
	case installed == version.Unknown:
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("Installed %s version unknown. Set toolchain.version or toolchain.versionCommand", tc.Name))
	}

	if s.mode.IsDev() {
		return
	}
	switch version.StableDrift(installed, tc.LatestStable) {
	case version.DriftAhead:
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("Installed %s %s is newer than the latest release %s. Use --build-on-dev", tc.Name, installed, tc.LatestStable))
	case version.DriftMismatch:
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("Installed %s %s does not match the latest release %s", tc.Name, installed, tc.LatestStable))
	}
}

// checkContent verifies the content root and the state files. Names in
// the skip list or hash record that match no discovered notebook are
// reported as warnings.
func checkContent(result *doctorResult, s *settings) {
	result.Content.Root = s.paths.Content
	result.Content.Config = s.configPath

	var present map[string]bool
	paths, err := textbook.Discover(s.paths.Content)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Content root: %v", err))
	} else {
		result.Content.Notebooks = len(paths)
		if len(paths) == 0 {
			result.Warnings = append(result.Warnings, "No notebooks found under "+s.paths.Content)
		}
		present = make(map[string]bool, len(paths))
		for _, p := range paths {
			present[filepath.Base(p)] = true
		}
	}

	skip, err := state.LoadSkipList(s.paths.SkipList)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Skip list: %v", err))
	} else {
		names := skip.ForMode(s.mode.IsDev()).Names()
		result.Content.Skipped = len(names)
		if unknown := notIn(names, present); len(unknown) > 0 {
			result.Warnings = append(result.Warnings,
				fmt.Sprintf("Skip list names notebooks not under %s: %s", s.paths.Content, strings.Join(unknown, ", ")))
		}
	}

	store := state.NewHashStore(s.paths.Hashes)
	if _, err := os.Stat(store.Path()); os.IsNotExist(err) {
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("No hash record at %s yet. Every notebook counts as new", store.Path()))
		return
	}
	hashes, err := store.Load()
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Hash record: %v", err))
		return
	}
	result.Content.Hashes = len(hashes)
	result.Content.StaleHashes = notIn(hashes.Names(), present)
	if n := len(result.Content.StaleHashes); n > 0 {
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("Hash record at %s keeps %d entries for notebooks no longer present", store.Path(), n))
	}
}

// notIn returns the names missing from present, keeping their order. A nil
// present set means discovery failed and nothing is reported.
func notIn(names []string, present map[string]bool) []string {
	if present == nil {
		return nil
	}
	var out []string
	for _, n := range names {
		if !present[n] {
			out = append(out, n)
		}
	}
	return out
}

// checkEnvironment detects CI environments.
func checkEnvironment(result *doctorResult) {
	ciVars := []string{"CI", "GITHUB_ACTIONS", "GITLAB_CI", "JENKINS_URL", "CIRCLECI"}
	for _, v := range ciVars {
		if os.Getenv(v) != "" {
			result.Env.CI = true
			break
		}
	}
}

// checkSystem verifies the temp directory used for executed copies.
func checkSystem(result *doctorResult) {
	tmpDir := os.TempDir()
	testFile := filepath.Join(tmpDir, fmt.Sprintf("textbook-doctor-%d", os.Getpid()))
	if err := os.WriteFile(testFile, []byte("test"), 0o600); err != nil {
		result.Errors = append(result.Errors,
			fmt.Sprintf("Temp directory not writable: %s", tmpDir))
	} else {
		_ = os.Remove(testFile)
		result.System.TempWritable = true
	}
}

// printDoctorResult outputs human-readable diagnostic results.
func printDoctorResult(w io.Writer, r *doctorResult) {
	fmt.Fprintln(w, "textbook doctor")
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Execution engine")
	if r.Engine.Found {
		fmt.Fprintf(w, "  [OK] %s at %s\n", r.Engine.Command, r.Engine.Path)
		if r.Engine.Version != "" {
			fmt.Fprintf(w, "  [OK] Version: %s\n", r.Engine.Version)
		}
	} else {
		fmt.Fprintf(w, "  [ERROR] %s not found\n", r.Engine.Command)
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Toolchain")
	fmt.Fprintf(w, "  [OK] %s installed: %s\n", r.Toolchain.Name, r.Toolchain.Installed)
	if r.Toolchain.Latest != "" {
		fmt.Fprintf(w, "  [OK] Latest stable: %s\n", r.Toolchain.Latest)
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Content")
	if r.Content.Config != "" {
		fmt.Fprintf(w, "  [OK] Config: %s\n", r.Content.Config)
	}
	fmt.Fprintf(w, "  [OK] Root: %s (%d notebooks)\n", r.Content.Root, r.Content.Notebooks)
	fmt.Fprintf(w, "  [OK] Hash record: %d entries\n", r.Content.Hashes)
	fmt.Fprintf(w, "  [OK] Skip list: %d notebooks\n", r.Content.Skipped)
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Environment")
	fmt.Fprintf(w, "  [OK] Platform: %s/%s\n", r.Env.OS, r.Env.Arch)
	if r.Env.CI {
		fmt.Fprintln(w, "  [OK] CI: detected")
	}
	if r.System.TempWritable {
		fmt.Fprintln(w, "  [OK] Temp directory: writable")
	} else {
		fmt.Fprintln(w, "  [ERROR] Temp directory: not writable")
	}
	fmt.Fprintln(w)

	if len(r.Warnings) > 0 {
		fmt.Fprintln(w, "Warnings:")
		for _, warn := range r.Warnings {
			fmt.Fprintf(w, "  [WARN] %s\n", warn)
		}
		fmt.Fprintln(w)
	}

	if len(r.Errors) > 0 {
		fmt.Fprintln(w, "Errors:")
		for _, err := range r.Errors {
			fmt.Fprintf(w, "  [ERROR] %s\n", err)
		}
		fmt.Fprintln(w)
	}

	switch r.Status {
	case "ready":
		fmt.Fprintln(w, "Status: Ready to build")
	case "warnings":
		fmt.Fprintln(w, "Status: Ready with warnings")
	case "errors":
		fmt.Fprintln(w, "Status: Not ready (see errors above)")
	}
}
