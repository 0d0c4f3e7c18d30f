//go:build !windows

package activation

// SystemEnvStore returns nil: Unix hosts have no persistent user
// environment outside shell startup files.
func SystemEnvStore() EnvStore {
	return nil
}
