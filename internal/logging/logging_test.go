// internal/logging/logging_test.go
package logging

import (
	"testing"

	"go.uber.org/zap/zapcore"
	"go.viam.com/test"
)

func TestParseLevel(t *testing.T) {
	for in, want := range map[string]zapcore.Level{
		"":       zapcore.InfoLevel,
		"debug":  zapcore.DebugLevel,
		" INFO ": zapcore.InfoLevel,
		"warn":   zapcore.WarnLevel,
		"error":  zapcore.ErrorLevel,
	} {
		got, err := ParseLevel(in)
		test.That(t, err, test.ShouldBeNil)
		test.That(t, got, test.ShouldEqual, want)
	}

	_, err := ParseLevel("loud")
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "loud")
}

func TestNewDisabled(t *testing.T) {
	l, err := New("ft", Config{Enabled: false, Level: "not-checked"})
	test.That(t, err, test.ShouldBeNil)
	test.That(t, l.Desugar().Core().Enabled(zapcore.ErrorLevel), test.ShouldBeFalse)
}

func TestNewEnabled(t *testing.T) {
	l, err := New("ft", Config{Enabled: true, Level: "warn"})
	test.That(t, err, test.ShouldBeNil)
	test.That(t, l.Desugar().Core().Enabled(zapcore.InfoLevel), test.ShouldBeFalse)
	test.That(t, l.Desugar().Core().Enabled(zapcore.WarnLevel), test.ShouldBeTrue)

	_, err = New("ft", Config{Enabled: true, Level: "loud"})
	test.That(t, err, test.ShouldNotBeNil)
}
