// SPDX-License-Identifier: Apache-2.0
// SPDX-FileCopyrightText: 2025-Present casegen authors

package casegen

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/goccy/go-json"

	"github.com/casegen/casegen/schema"
)

// Options configures a single run.
type Options struct {
	// Num is the number of instances to generate.
	Num int
	// Seed makes generation deterministic when non-zero.
	Seed int64
	// Script is an optional executable invoked as `script <case-file>` for
	// every generated instance.
	Script string
	// Timeout bounds each script invocation.
	Timeout time.Duration
	// Check validates every instance against the limited schema.
	Check bool
	// Out receives generated instances, one JSON document per line.
	// Defaults to os.Stdout.
	Out io.Writer
}

// Execute caps the schema's complexity, then generates Num instances from it
// strictly sequentially, printing each to Out. When a script is configured,
// every instance is handed to it before the next one is generated; the first
// failure of any kind terminates the run.
func Execute(ctx context.Context, opts Options, root map[string]any) error {
	logger := log.FromContext(ctx)

	if opts.Out == nil {
		opts.Out = os.Stdout
	}

	if _, err := schema.Limit(root); err != nil {
		return err
	}

	var checker *schema.Checker
	if opts.Check {
		var err error
		checker, err = schema.NewChecker(root)
		if err != nil {
			return err
		}
	}

	var runner *ScriptRunner
	if opts.Script != "" {
		runner = &ScriptRunner{Script: opts.Script, Timeout: opts.Timeout}
	}

	gen := NewGenerator(opts.Seed)

	logger.Info("generating instances", "num", opts.Num, "seed", opts.Seed, "script", opts.Script)
	start := time.Now()
	defer func() {
		logger.Debug("generation finished", "duration", time.Since(start))
	}()

	for i := 0; i < opts.Num; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		instance, err := gen.Generate(root)
		if err != nil {
			return fmt.Errorf("failed to generate instance %d: %w", i, err)
		}

		data, err := json.Marshal(instance)
		if err != nil {
			return fmt.Errorf("failed to encode instance %d: %w", i, err)
		}

		printInstance(opts.Out, data)

		if checker != nil {
			if err := checker.Check(instance); err != nil {
				return fmt.Errorf("instance %d does not conform to the limited schema: %w", i, err)
			}
		}

		if runner != nil {
			if err := runner.Run(ctx, data); err != nil {
				return err
			}
		}
	}

	return nil
}

// ScriptRunner feeds serialized instances to an external executable, one
// uniquely named case file per invocation.
type ScriptRunner struct {
	Script  string
	Timeout time.Duration
}

// ScriptError reports a failed or timed-out script invocation. The case file
// that was handed to the script is kept on disk for inspection.
type ScriptError struct {
	Script   string
	CaseFile string
	Instance string
	ExitCode int
	Stdout   string
	Stderr   string
	Timeout  bool
}

var _ error = &ScriptError{}

func (e *ScriptError) Error() string {
	if e.Timeout {
		return fmt.Sprintf("script %q timed out, case file kept at %s", e.Script, e.CaseFile)
	}
	return fmt.Sprintf("script %q exited %d, case file kept at %s", e.Script, e.ExitCode, e.CaseFile)
}

// Run writes the instance to a fresh case file and invokes the script with
// the file path as its sole argument. The case file is removed when the
// script passes and kept when it fails. Exceeding the configured timeout is
// reported as a distinct failure from a non-zero exit.
func (r *ScriptRunner) Run(ctx context.Context, data []byte) error {
	logger := log.FromContext(ctx)

	f, err := os.CreateTemp("", "casegen-case-*.json")
	if err != nil {
		return fmt.Errorf("failed to create case file: %w", err)
	}
	name := f.Name()

	_, werr := f.Write(data)
	if err := errors.Join(werr, f.Close()); err != nil {
		os.Remove(name)
		return fmt.Errorf("failed to write case file: %w", err)
	}

	if r.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.Timeout)
		defer cancel()
	}

	logger.Debug("running script", "script", r.Script, "case", name)

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, r.Script, name)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err = cmd.Run()
	if err == nil {
		logger.Debug("script passed",
			"stdout", strings.TrimSpace(stdout.String()),
			"stderr", strings.TrimSpace(stderr.String()))
		return os.Remove(name)
	}

	sErr := &ScriptError{
		Script:   r.Script,
		CaseFile: name,
		Instance: string(data),
		ExitCode: -1,
		Stdout:   strings.TrimSpace(stdout.String()),
		Stderr:   strings.TrimSpace(stderr.String()),
	}

	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		sErr.Timeout = true
		return sErr
	}

	var eErr *exec.ExitError
	if errors.As(err, &eErr) {
		sErr.ExitCode = eErr.ExitCode()
		return sErr
	}

	// the script never ran, nothing worth keeping
	os.Remove(name)
	return fmt.Errorf("failed to run script %q: %w", r.Script, err)
}
