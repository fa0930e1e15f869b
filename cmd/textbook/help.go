package main

import (
	"fmt"
	"io"
)

// printUsage prints the main usage message.
func printUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: textbook [command] [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  build            Decide, execute and render notebooks (default)")
	fmt.Fprintln(w, "  check-versions   Verify every notebook ran with the latest release")
	fmt.Fprintln(w, "  doctor           Check the execution engine and state files")
	fmt.Fprintln(w, "  version          Show version information")
	fmt.Fprintln(w, "  help             Show help for a command")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Run 'textbook help <command>' for details on a specific command.")
}

// printBuildUsage prints usage for the build command.
func printBuildUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: textbook build [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Decide which notebooks to re-execute, run them, and write their")
	fmt.Fprintln(w, "rendered sections and build metadata next to the output.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Input:")
	fmt.Fprintln(w, "      --root <dir>               Textbook checkout (default \".\")")
	fmt.Fprintln(w, "  -c, --config <path>            Config file (default textbook.yaml in root)")
	fmt.Fprintln(w, "      --hashes <path>            Hash record file")
	fmt.Fprintln(w, "      --skip-list <path>         Skip list file")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Execution:")
	fmt.Fprintln(w, "      --execution-filter <s>     no-execution, execute-updated-unskipped,")
	fmt.Fprintln(w, "                                 execute-all-unskipped, execute-absolutely-all")
	fmt.Fprintln(w, "      --build-on-dev <spec>      Dev build pinned to master or <owner>:<commit>")
	fmt.Fprintln(w, "  -w, --workers <n>              Notebooks executed at once (0 = config)")
	fmt.Fprintln(w, "  -t, --timeout <d>              Per-cell timeout (e.g., 90s, 10m)")
	fmt.Fprintln(w, "      --kernel <name>            Kernel name")
	fmt.Fprintln(w, "      --no-write-back            Keep source notebooks unchanged")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Versions:")
	fmt.Fprintln(w, "      --tool-version <v>         Installed toolchain version")
	fmt.Fprintln(w, "      --latest-version <v>       Latest stable toolchain version")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Output:")
	fmt.Fprintln(w, "      --inline-images            Embed figures as base64")
	fmt.Fprintln(w, "      --standalone-html          Also write <stem>.html previews")
	fmt.Fprintln(w, "      --watch                    Rebuild when notebooks change")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Output Control:")
	fmt.Fprintln(w, "  -q, --quiet                    Only show errors")
	fmt.Fprintln(w, "  -v, --verbose                  Show every notebook and debug logs")
	fmt.Fprintln(w, "      --no-color                 Disable colored output")
	fmt.Fprintln(w, "      --log-level <s>            debug, info, warn, error")
	fmt.Fprintln(w, "      --log-format <s>           text, json")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Every flag has a TEXTBOOK_* environment variable; flags win over the")
	fmt.Fprintln(w, "environment, which wins over the config file.")
}

// printToolUsage prints usage for check-versions and doctor.
func printToolUsage(w io.Writer, name, desc string, extra ...string) {
	fmt.Fprintf(w, "Usage: textbook %s [flags]\n", name)
	fmt.Fprintln(w)
	fmt.Fprintln(w, desc)
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Flags:")
	fmt.Fprintln(w, "      --root <dir>               Textbook checkout (default \".\")")
	fmt.Fprintln(w, "  -c, --config <path>            Config file")
	fmt.Fprintln(w, "      --hashes <path>            Hash record file")
	fmt.Fprintln(w, "      --skip-list <path>         Skip list file")
	fmt.Fprintln(w, "      --build-on-dev <spec>      Use the dev skip list and output directory")
	fmt.Fprintln(w, "      --tool-version <v>         Installed toolchain version")
	fmt.Fprintln(w, "      --latest-version <v>       Latest stable toolchain version")
	for _, line := range extra {
		fmt.Fprintln(w, line)
	}
}

// runHelp prints help for a specific command.
func runHelp(args []string, env *Environment) {
	if len(args) == 0 {
		printUsage(env.Stdout)
		return
	}

	switch args[0] {
	case "build":
		printBuildUsage(env.Stdout)
	case "check-versions":
		printToolUsage(env.Stdout, "check-versions",
			"Fail unless every executed notebook recorded the latest stable release.")
	case "doctor":
		printToolUsage(env.Stdout, "doctor",
			"Check the execution engine, toolchain and state files.",
			"      --json                     Print the result as JSON")
	case "version":
		fmt.Fprintln(env.Stdout, "Usage: textbook version")
		fmt.Fprintln(env.Stdout)
		fmt.Fprintln(env.Stdout, "Show version information.")
	case "help":
		fmt.Fprintln(env.Stdout, "Usage: textbook help [command]")
		fmt.Fprintln(env.Stdout)
		fmt.Fprintln(env.Stdout, "Show help for a command.")
	default:
		fmt.Fprintf(env.Stderr, "Unknown command: %s\n", args[0])
		printUsage(env.Stderr)
	}
}
