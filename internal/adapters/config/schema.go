package config

// File represents the structure of the runcached.yaml defaults file. Every
// field is optional; absent fields keep the built-in default.
type File struct {
	TTL          string  `yaml:"ttl"`
	KeepFailures *bool   `yaml:"keepFailures"`
	Stdin        string  `yaml:"stdin"`
	Shell        *bool   `yaml:"shell"`
	Requote      *bool   `yaml:"requote"`
	CustomKey    *bool   `yaml:"customKey"`
	Colors       string  `yaml:"colors"`
	CacheDir     string  `yaml:"cacheDir"`
	LogLevel     string  `yaml:"logLevel"`
	Env          EnvFile `yaml:"env"`
}

// EnvFile holds the environment selection lists of the defaults file. Each
// entry uses the same spec syntax as the corresponding command line flag.
type EnvFile struct {
	Include  []string `yaml:"include"`
	Passthru []string `yaml:"passthru"`
	Exclude  []string `yaml:"exclude"`
}
