package domain

// Configuration holds the credentials used to register a remote session.
// It is resolved once per session and never mutated afterwards.
type Configuration struct {
	Identity string `json:"identity"`
	Secret   string `json:"-"`
	Endpoint string `json:"endpoint"`
}

// ConfigKeys names the keys looked up in a ConfigSource.
// Each host picks its own key names (e.g. env variable names).
type ConfigKeys struct {
	Identity string `json:"identity" yaml:"identity" mapstructure:"identity"`
	Secret   string `json:"secret" yaml:"secret" mapstructure:"secret"`
	Endpoint string `json:"endpoint" yaml:"endpoint" mapstructure:"endpoint"`
}

// All returns the key names in resolution order.
func (k ConfigKeys) All() []string {
	return []string{k.Identity, k.Secret, k.Endpoint}
}
