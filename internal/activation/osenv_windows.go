//go:build windows

package activation

import (
	"fmt"
	"os/exec"
	"strings"
)

// SystemEnvStore returns the HKCU\Environment store driven by setx and reg.
func SystemEnvStore() EnvStore {
	return setxStore{}
}

type setxStore struct{}

func (setxStore) Describe() string { return `HKCU\Environment` }

func (setxStore) Set(name, value string) error {
	// #nosec G204 - setx.exe is a Windows system utility, args are controlled
	cmd := exec.Command("setx.exe", name, value)
	if output, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("setx: %s: %w", strings.TrimSpace(string(output)), err)
	}
	return nil
}

func (setxStore) Delete(name string) error {
	// #nosec G204 - reg.exe is a Windows system utility, args are controlled
	cmd := exec.Command("reg.exe", "delete", `HKCU\Environment`, "/v", name, "/f")
	if output, err := cmd.CombinedOutput(); err != nil {
		if strings.Contains(string(output), "unable to find") {
			return nil
		}
		return fmt.Errorf("reg delete: %s: %w", strings.TrimSpace(string(output)), err)
	}
	return nil
}
