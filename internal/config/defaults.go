package config

// Defaults returns the default configuration.
func Defaults() *Config {
	return &Config{
		Version: 1,
		Home:    "~/.shamir-mpc",
		MPC: MPCConfig{
			DefaultThreshold: 3,
			DefaultParties:   5,
		},
		Security: SecurityConfig{
			MemoryLock:       true,
			ExportEncryption: false,
			ScryptWorkFactor: 18,
			IdentityFile:     "~/.shamir-mpc/identity.age",
		},
		Output: OutputConfig{
			DefaultFormat: "auto",
			Color:         "auto",
			Verbose:       false,
		},
		Logging: LoggingConfig{
			Level: "error",
			File:  "~/.shamir-mpc/shamir-mpc.log",
		},
	}
}
