// Package testutil provides the shared harness for launcher-level tests.
package testutil

import (
	"bytes"
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vk/metrictraingo/internal/app"
	"github.com/vk/metrictraingo/internal/cli"
	"github.com/vk/metrictraingo/internal/metric"
	"github.com/vk/metrictraingo/internal/rng"
	"github.com/vk/metrictraingo/internal/trainer"
)

// SafeBuffer is a thread-safe buffer for capturing log output in tests.
type SafeBuffer struct {
	b  bytes.Buffer
	mu sync.Mutex
}

// Write implements the io.Writer interface for SafeBuffer.
func (b *SafeBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.b.Write(p)
}

// String implements the fmt.Stringer interface for SafeBuffer.
func (b *SafeBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.b.String()
}

// RecordingDriver is a trainer.Driver that records its fit invocations
// instead of training.
type RecordingDriver struct {
	Options  map[string]any
	FitCalls int
	FitModel metric.Model
	FitErr   error
}

// Fit implements trainer.Driver.
func (d *RecordingDriver) Fit(ctx context.Context, model metric.Model) error {
	d.FitCalls++
	d.FitModel = model
	return d.FitErr
}

// Recorder captures driver construction for assertions.
type Recorder struct {
	Constructed int
	Driver      *RecordingDriver
}

// Constructor is a trainer.Constructor that hands out recording drivers.
func (r *Recorder) Constructor(ctx context.Context, options map[string]any, src *rng.Source) (trainer.Driver, error) {
	r.Constructed++
	r.Driver = &RecordingDriver{Options: options}
	return r.Driver, nil
}

// HarnessResult holds the outcomes of a launcher test run.
type HarnessResult struct {
	Output   string
	Err      error
	App      *app.App
	Recorder *Recorder
}

// RunLauncherTest writes the given configuration files into a temp dir,
// parses args as the CLI would, and runs the launcher with a recording
// driver. File keys are relative paths; each file is passed as its own --cfg
// in sorted key order.
func RunLauncherTest(t *testing.T, files map[string]string, extraArgs []string) *HarnessResult {
	t.Helper()
	return RunLauncherTestWithContext(context.Background(), t, files, extraArgs)
}

// RunLauncherTestWithContext is RunLauncherTest with a caller-provided
// context.
func RunLauncherTestWithContext(ctx context.Context, t *testing.T, files map[string]string, extraArgs []string) *HarnessResult {
	t.Helper()

	args := append([]string{}, cfgArgs(t, files)...)
	args = append(args, extraArgs...)

	buf := &SafeBuffer{}
	appConfig, shouldExit, err := cli.Parse(args, buf)
	require.NoError(t, err, "cli.Parse failed in harness")
	require.False(t, shouldExit, "cli.Parse requested exit in harness")

	recorder := &Recorder{}
	launcher := app.NewApp(buf, appConfig, recorder.Constructor)
	runErr := launcher.Run(ctx)

	return &HarnessResult{
		Output:   buf.String(),
		Err:      runErr,
		App:      launcher,
		Recorder: recorder,
	}
}
