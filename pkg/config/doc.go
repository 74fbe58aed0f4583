/*
Package config resolves the credentials of a remote session and loads the
settings of the host that embeds the bridge.

Credentials never come from ambient state: a Resolver is built around an explicit
ports.ConfigSource (environment, file, redis, memory or a Chain of them).
*/
package config
