package logging

import (
	"bytes"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
)

func TestNewLogger_CachesPerComponent(t *testing.T) {
	a := NewLogger("config")
	b := NewLogger("config")
	c := NewLogger("git")

	assert.Same(t, a, b)
	assert.NotSame(t, a, c)
	assert.Equal(t, "config", a.Data["component"])
}

func TestTiming_OnlyAtDebug(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	t.Cleanup(func() { SetLevel(logrus.WarnLevel) })

	logger := NewLogger("timing-test")

	SetLevel(logrus.InfoLevel)
	Timing(logger, "phase", time.Now())
	assert.Empty(t, buf.String())

	SetLevel(logrus.DebugLevel)
	Timing(logger, "phase", time.Now())
	assert.Contains(t, buf.String(), "phase finished")
	assert.Contains(t, buf.String(), "component=timing-test")
}

func TestLevelFromEnv(t *testing.T) {
	t.Setenv(LevelEnvVar, "")
	assert.Equal(t, logrus.WarnLevel, levelFromEnv())

	t.Setenv(LevelEnvVar, "debug")
	assert.Equal(t, logrus.DebugLevel, levelFromEnv())

	t.Setenv(LevelEnvVar, "nonsense")
	assert.Equal(t, logrus.WarnLevel, levelFromEnv())
}
