//go:build stave

package main

import (
	"fmt"
	"os"
	"runtime"
	"strings"
	"time"

	"github.com/yaklabco/stave/pkg/sh"
	"github.com/yaklabco/stave/pkg/st"
	"github.com/yaklabco/stave/pkg/target"
)

// Default target when running `stave` with no arguments.
var Default = All

// Aliases for common targets.
var Aliases = map[string]interface{}{
	"b": Build,
	"t": Test,
	"l": Lint,
	"c": Clean,
}

// All runs the complete build pipeline: lint, test, and build.
func All() error {
	st.Deps(Init)
	st.Deps(Lint, Test)
	st.Deps(Build)
	return nil
}

// Init ensures the module dependencies are up to date.
func Init() error {
	return sh.Run("go", "mod", "tidy")
}

// binaries are the commands under cmd/.
var binaries = []string{"punct-cli", "punct-server", "punct-watch", "punct-bench"}

// Build compiles every command binary.
func Build() error {
	st.Deps(Init)
	st.Deps(Build_CLI, Build_Server, Build_Watch, Build_Bench)
	return nil
}

// Build_CLI compiles the punct-cli binary with version information.
func Build_CLI() error { return buildBinary("punct-cli") }

// Build_Server compiles the punct-server binary.
func Build_Server() error { return buildBinary("punct-server") }

// Build_Watch compiles the punct-watch binary.
func Build_Watch() error { return buildBinary("punct-watch") }

// Build_Bench compiles the punct-bench binary.
func Build_Bench() error { return buildBinary("punct-bench") }

func buildBinary(name string) error {
	st.Deps(Init)

	out := "bin/" + name
	// Check if rebuild is needed
	rebuild, err := target.Glob(out, "**/*.go", "go.mod", "go.sum")
	if err != nil {
		return fmt.Errorf("checking rebuild: %w", err)
	}
	if !rebuild {
		if st.Verbose() {
			fmt.Println(name, "is up to date")
		}
		return nil
	}

	return sh.RunV("go", "build", "-ldflags", buildLdflags(), "-o", out, "./cmd/"+name)
}

// buildLdflags returns ldflags for version injection.
func buildLdflags() string {
	version, _ := sh.Output("git", "describe", "--tags", "--always", "--dirty")
	commit, _ := sh.Output("git", "rev-parse", "--short", "HEAD")
	date := time.Now().Format(time.RFC3339)

	return fmt.Sprintf(
		"-X main.version=%s -X main.commit=%s -X main.date=%s",
		strings.TrimSpace(version),
		strings.TrimSpace(commit),
		date,
	)
}

// Test runs all tests with race detection and coverage.
func Test() error {
	st.Deps(Init)
	return sh.RunV("go", "test", "-race", "-cover", "./...")
}

// TestShort runs tests in short mode (skips long-running tests).
func TestShort() error {
	st.Deps(Init)
	return sh.RunV("go", "test", "-short", "-race", "./...")
}

// TestVerbose runs tests with verbose output.
func TestVerbose() error {
	st.Deps(Init)
	return sh.RunV("go", "test", "-race", "-cover", "-v", "./...")
}

// Lint runs golangci-lint on the codebase.
func Lint() error {
	return sh.RunV("golangci-lint", "run", "./...")
}

// LintFix runs golangci-lint with auto-fix enabled.
func LintFix() error {
	return sh.RunV("golangci-lint", "run", "--fix", "./...")
}

// Fmt formats all Go code using gofmt and goimports.
func Fmt() error {
	if err := sh.Run("gofmt", "-w", "."); err != nil {
		return fmt.Errorf("gofmt: %w", err)
	}
	if err := sh.Run("goimports", "-w", "."); err != nil {
		return fmt.Errorf("goimports: %w", err)
	}
	return nil
}

// Vet runs go vet on all packages.
func Vet() error {
	return sh.RunV("go", "vet", "./...")
}

// Clean removes build artifacts.
func Clean() error {
	artifacts := append([]string{"bin/"}, binaries...)
	for _, a := range artifacts {
		if err := sh.Rm(a); err != nil {
			return fmt.Errorf("removing %s: %w", a, err)
		}
	}
	return nil
}

// Install builds and installs the binaries to GOBIN.
func Install() error {
	st.Deps(Build)

	gocmd := st.GoCmd()
	bin, err := sh.Output(gocmd, "env", "GOBIN")
	if err != nil {
		return fmt.Errorf("determining GOBIN: %w", err)
	}
	if bin == "" {
		gopath, err := sh.Output(gocmd, "env", "GOPATH")
		if err != nil {
			return fmt.Errorf("determining GOPATH: %w", err)
		}
		bin = gopath + "/bin"
	}

	for _, name := range binaries {
		src := "bin/" + name
		dst := bin + "/" + name
		if runtime.GOOS == "windows" {
			dst += ".exe"
		}
		if err := sh.Copy(dst, src); err != nil {
			return fmt.Errorf("installing %s: %w", name, err)
		}
		if st.Verbose() {
			fmt.Printf("Installed %s to %s\n", name, dst)
		}
	}
	return nil
}

// Bench namespace for benchmark-related targets.
type Bench st.Namespace

// Run runs the benchmark tool against the gold corpus.
// Requires PUNCT_MODEL, or models/ populated by a previous download.
func (Bench) Run() error {
	st.Deps(Build_Bench)

	modelPath, tokenizerPath := benchModel()
	return sh.RunV("./bin/punct-bench",
		"-model", modelPath,
		"-tokenizer", tokenizerPath,
		"-corpus", "testdata/gold",
		"-v",
	)
}

// Compare ranks the comma-separated models in PUNCT_MODELS.
func (Bench) Compare() error {
	st.Deps(Build_Bench)

	models := os.Getenv("PUNCT_MODELS")
	if models == "" {
		return fmt.Errorf("PUNCT_MODELS is not set")
	}
	_, tokenizerPath := benchModel()
	return sh.RunV("./bin/punct-bench",
		"-models", models,
		"-tokenizer", tokenizerPath,
		"-corpus", "testdata/gold",
	)
}

// Corpus regenerates testdata/gold from the raw corpora.
func (Bench) Corpus() error {
	if err := sh.RunV("go", "run", "./scripts/process-gutenberg.go"); err != nil {
		return err
	}
	return sh.RunV("go", "run", "./scripts/process-ud-ewt.go")
}

func benchModel() (model, tokenizer string) {
	const dir = "models/1-800-BAD-CODE/punctuation_fullstop_truecase_english"

	model = os.Getenv("PUNCT_MODEL")
	if model == "" {
		model = dir + "/model.onnx"
	}
	tokenizer = os.Getenv("PUNCT_TOKENIZER")
	if tokenizer == "" {
		tokenizer = dir + "/tokenizer.model"
	}
	return model, tokenizer
}

// CI runs the full CI pipeline (lint, test, build).
func CI() error {
	st.Deps(Init)
	st.SerialDeps(Lint, Test, Build)
	return nil
}

// Check runs quick validation (vet, lint, short tests).
func Check() error {
	st.Deps(Vet, Lint, TestShort)
	return nil
}

// Coverage generates a coverage report.
func Coverage() error {
	st.Deps(Init)
	if err := sh.RunV("go", "test", "-race", "-coverprofile=coverage.out", "./..."); err != nil {
		return err
	}
	return sh.RunV("go", "tool", "cover", "-html=coverage.out", "-o", "coverage.html")
}

// Tidy runs go mod tidy and verifies the go.sum is clean.
func Tidy() error {
	if err := sh.Run("go", "mod", "tidy"); err != nil {
		return err
	}
	// Verify no changes to go.sum (useful for CI)
	output, err := sh.Output("git", "diff", "--exit-code", "go.sum")
	if err != nil {
		if output != "" {
			return fmt.Errorf("go.sum is not clean:\n%s", output)
		}
	}
	return nil
}
