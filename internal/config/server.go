package config

import "time"

// GetListenAddr returns the address the gateway listens on
func GetListenAddr() string {
	return GetEnvOrDefault("LISTEN_ADDR", ":8080")
}

// GetShutdownTimeout returns how long the server waits for in-flight requests on shutdown
func GetShutdownTimeout() time.Duration {
	return time.Duration(parseEnvInt("SHUTDOWN_TIMEOUT_SECONDS", 10)) * time.Second
}
