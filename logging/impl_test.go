package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.viam.com/test"
)

type wheelSpeeds struct {
	Left  float64
	Right float64
	limit float64
}

// assertLogMatches will fuzzy match log lines. Notably, this checks the time format, but ignores
// the exact time. And it expects a match on the filename, but the exact line number can be wrong.
func assertLogMatches(t *testing.T, actual *bytes.Buffer, expected string) {
	t.Helper()

	output, err := actual.ReadString('\n')
	test.That(t, err, test.ShouldBeNil)

	actualParts := strings.Split(strings.TrimSuffix(output, "\n"), "\t")
	expectedParts := strings.Split(expected, "\t")
	// Use the length of the first string as a weak verification of checking that the result looks like a date.
	test.That(t, len(actualParts[0]), test.ShouldEqual, len(expectedParts[0]))
	test.That(t, len(actualParts), test.ShouldEqual, len(expectedParts))
	// Log level and logger name.
	test.That(t, actualParts[1], test.ShouldEqual, expectedParts[1])
	test.That(t, actualParts[2], test.ShouldEqual, expectedParts[2])

	actualFilename, _, found := strings.Cut(actualParts[3], ":")
	test.That(t, found, test.ShouldBeTrue)
	expectedFilename, _, _ := strings.Cut(expectedParts[3], ":")
	test.That(t, actualFilename, test.ShouldEqual, expectedFilename)

	test.That(t, actualParts[4], test.ShouldEqual, expectedParts[4])
	if len(actualParts) == 5 {
		return
	}

	// JSON encoding of maps can be unpredictable because map iteration order can change between
	// runs. Parse the output into maps and assert on map equality.
	expectedMap := make(map[string]any)
	test.That(t, json.Unmarshal([]byte(expectedParts[5]), &expectedMap), test.ShouldBeNil)
	actualMap := make(map[string]any)
	test.That(t, json.Unmarshal([]byte(actualParts[5]), &actualMap), test.ShouldBeNil)
	test.That(t, actualMap, test.ShouldResemble, expectedMap)
}

func newBufferLogger(name string, level Level) (*impl, *bytes.Buffer) {
	notStdout := &bytes.Buffer{}
	return &impl{name, NewAtomicLevelAt(level), true, []Appender{NewWriterAppender(notStdout)}}, notStdout
}

func TestConsoleOutputFormat(t *testing.T) {
	logger, notStdout := newBufferLogger("teleop", DEBUG)

	logger.Info("Joystick connected")
	assertLogMatches(t, notStdout,
		`2023-10-30T09:12:09.459Z	INFO	teleop	logging/impl_test.go:63	Joystick connected`)

	logger.Infof("speed limit %.1f", 0.7)
	assertLogMatches(t, notStdout,
		`2023-10-30T09:12:09.459Z	INFO	teleop	logging/impl_test.go:67	speed limit 0.7`)

	logger.Infow("set speeds", "left", 0.5, "right", -0.5)
	assertLogMatches(t, notStdout,
		`2023-10-30T09:12:09.459Z	INFO	teleop	logging/impl_test.go:71	set speeds	{"left":0.5,"right":-0.5}`)

	// Only public fields are serialized.
	logger.Warnw("clamped", "speeds", wheelSpeeds{Left: 0.7, Right: 0.7, limit: 0.7})
	assertLogMatches(t, notStdout,
		`2023-10-30T09:12:09.459Z	WARN	teleop	logging/impl_test.go:76	clamped	{"speeds":{"Left":0.7,"Right":0.7}}`)

	// An unpaired key is reported rather than silently dropped.
	logger.Errorw("unpaired", "dangling")
	assertLogMatches(t, notStdout,
		`2023-10-30T09:12:09.459Z	ERROR	teleop	logging/impl_test.go:81	unpaired	{"dangling":"unpaired log key"}`)
}

func TestLevelFiltering(t *testing.T) {
	logger, notStdout := newBufferLogger("teleop", WARN)

	logger.Debug("dropped")
	logger.Info("dropped")
	test.That(t, notStdout.Len(), test.ShouldEqual, 0)

	logger.Warn("kept")
	assertLogMatches(t, notStdout,
		`2023-10-30T09:12:09.459Z	WARN	teleop	logging/impl_test.go:93	kept`)

	// A debug-mode context bypasses the level for the C* variants.
	logger.CDebugf(EnableDebugMode(context.Background(), ""), "traced %d", 1)
	assertLogMatches(t, notStdout,
		`2023-10-30T09:12:09.459Z	DEBUG	teleop	logging/impl_test.go:98	traced 1`)
}

func TestSublogger(t *testing.T) {
	logger, notStdout := newBufferLogger("teleop", INFO)
	sub := logger.Sublogger("input")
	test.That(t, sub.GetLevel(), test.ShouldEqual, INFO)

	sub.Info("Joystick disconnected")
	assertLogMatches(t, notStdout,
		`2023-10-30T09:12:09.459Z	INFO	teleop.input	logging/impl_test.go:107	Joystick disconnected`)

	// Changing the sublogger level does not affect the parent.
	sub.SetLevel(ERROR)
	test.That(t, logger.GetLevel(), test.ShouldEqual, INFO)
}

func TestObservedTestLogger(t *testing.T) {
	logger, logs := NewObservedTestLogger(t)
	logger.Infow("Failed to find a controller, giving up", "budget", "1m0s")
	logger.Debug("noise")

	test.That(t, logs.FilterMessage("Failed to find a controller, giving up").Len(), test.ShouldEqual, 1)
	test.That(t, logs.All()[0].ContextMap()["budget"], test.ShouldEqual, "1m0s")
	test.That(t, logs.Len(), test.ShouldEqual, 2)
}

func TestLevelFromString(t *testing.T) {
	for _, tc := range []struct {
		input string
		want  Level
	}{
		{"debug", DEBUG},
		{"INFO", INFO},
		{"Warn", WARN},
		{"warning", WARN},
		{"error", ERROR},
	} {
		level, err := LevelFromString(tc.input)
		test.That(t, err, test.ShouldBeNil)
		test.That(t, level, test.ShouldEqual, tc.want)
	}

	_, err := LevelFromString("loud")
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "loud")
}

func TestFileAppender(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "teleop.log")
	appender, closer := NewFileAppender(path)

	logger := &impl{"teleop", NewAtomicLevelAt(INFO), true, []Appender{appender}}
	logger.Infow("robot shut down", "board", "fake")
	test.That(t, logger.Sync(), test.ShouldBeNil)
	test.That(t, closer.Close(), test.ShouldBeNil)

	contents, err := os.ReadFile(path)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, string(contents), test.ShouldContainSubstring, "robot shut down")
	test.That(t, string(contents), test.ShouldContainSubstring, `{"board":"fake"}`)
}
