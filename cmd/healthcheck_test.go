package cmd

import (
	"testing"
)

func TestHealthcheckCommand(t *testing.T) {
	t.Setenv(testKeyEnv, "")
	args := append(setupArchive(t), "healthcheck", "--details")

	if _, err := runRoot(t, args...); err != nil {
		t.Fatalf("healthcheck error = %v", err)
	}
}

func TestHealthcheckCommand_Help(t *testing.T) {
	out, err := runRoot(t, "healthcheck", "--help")
	if err != nil {
		t.Fatalf("healthcheck --help error = %v", err)
	}
	if out == "" {
		t.Error("healthcheck --help should produce output")
	}
}

func TestHealthcheckDetailsFlag(t *testing.T) {
	if healthcheckCmd.Flag("details") == nil {
		t.Error("healthcheck command should have --details flag")
	}
}
