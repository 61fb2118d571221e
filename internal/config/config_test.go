package config

import (
	"strings"
	"testing"
	"time"
)

func TestCheckRequired(t *testing.T) {
	t.Run("names every missing variable", func(t *testing.T) {
		t.Setenv(EnvOpenAIKey, "")
		t.Setenv(EnvElevenLabsKey, "")

		err := CheckRequired()
		if err == nil {
			t.Fatal("expected error with no keys set")
		}
		for _, name := range Required {
			if !strings.Contains(err.Error(), name) {
				t.Errorf("error %q does not name %s", err, name)
			}
		}
	})

	t.Run("passes when all set", func(t *testing.T) {
		t.Setenv(EnvOpenAIKey, "sk-test")
		t.Setenv(EnvElevenLabsKey, "el-test")
		if err := CheckRequired(); err != nil {
			t.Errorf("unexpected error: %v", err)
		}
	})
}

func TestSilenceLimit(t *testing.T) {
	t.Setenv(EnvSilenceLimit, "0.5")
	if got := SilenceLimit(); got != 500*time.Millisecond {
		t.Errorf("SilenceLimit = %v", got)
	}

	t.Setenv(EnvSilenceLimit, "not-a-number")
	if got := SilenceLimit(); got != DefaultSilenceLimit {
		t.Errorf("SilenceLimit with bad value = %v", got)
	}
}
