package util

import (
	"github.com/berfenger/descview/internal/config"

	"go.uber.org/zap"
)

func LoadTestConfig() config.Config {
	return config.Config{
		LogLevel: zap.DebugLevel,
		Upstream: config.UpstreamConfig{
			FixturesFile:  "testdata/devices.yaml",
			TimeoutMillis: 2000,
		},
		Compare: config.CompareConfig{
			FetchTimeoutMillis: 2000,
			SessionIdleMinutes: 5,
		},
		Units: config.UnitsConfig{
			Precision: 2,
		},
		Tickets: config.TicketsConfig{
			DBPath: ":memory:",
		},
		MQTT: config.MQTTConfig{
			Host:      "localhost",
			Port:      1883,
			BaseTopic: "descview",
		},
		Port: 8080,
	}
}
