package config

import "os"

func IsDebug() bool {
	return os.Getenv("LUMINA_DEBUG") == "1"
}
