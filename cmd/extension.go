package cmd

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
)

// ExtensionPrefix prefixes the external binaries run as spl subcommands.
const ExtensionPrefix = "spl-"

// RunExtension attempts to find and execute an external spl-<subcommand> binary.
// It returns (true, exitCode) if an extension was found and executed,
// and (false, 0) if no extension was found.
//
// The extension receives the resolved configuration in its environment.
func RunExtension(subcommand string, args []string) (bool, int) {
	lp, err := exec.LookPath(ExtensionPrefix + subcommand)
	if err != nil {
		return false, 0
	}

	cmd := exec.Command(lp, args...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	cmd.Env = os.Environ()
	if cfg, err := settings(); err == nil {
		cmd.Env = append(cmd.Env, extensionEnv(cfg)...)
	}

	if err := cmd.Run(); err != nil {
		var exitError *exec.ExitError
		if errors.As(err, &exitError) {
			return true, exitError.ExitCode()
		}
		fmt.Fprintf(os.Stderr, "Error executing external command %q: %v\n", lp, err)
		return true, 1
	}
	return true, 0
}

// extensionEnv passes the configuration as environment variables.
func extensionEnv(cfg Config) []string {
	return []string{
		EnvRecordsFile + "=" + cfg.RecordsFile,
		EnvCurrency + "=" + cfg.Currency,
		EnvLogLevel + "=" + cfg.Log.Level,
		EnvLogFormat + "=" + cfg.Log.Format,
	}
}
