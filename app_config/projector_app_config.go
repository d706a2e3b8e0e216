package app_config

import (
	"io/ioutil"
	"log"

	"gopkg.in/yaml.v2"
)

// Startup configuration for the projector binary.
type ProjectorAppConfig struct {
	// Seconds between full projection sweeps.
	SWEEP_EVERY_SECOND int64 `yaml:"SWEEP_EVERY_SECOND"`
	// Buffer size of the in-process event bus channels.
	CHANNEL_BUFFER_SIZE int64 `yaml:"CHANNEL_BUFFER_SIZE"`
	// Address of the Datadog statsd agent.
	STATSD_ADDR string `yaml:"STATSD_ADDR"`
}

func ParseProjectorAppConfig(path string) ProjectorAppConfig {
	c := ProjectorAppConfig{}
	yamlFile, err := ioutil.ReadFile(path)
	if err != nil {
		log.Fatal("failed to read app config: ", err.Error())
	}
	err = yaml.Unmarshal(yamlFile, &c)
	if err != nil {
		log.Fatal("failed to unmarshal app config: ", err)
	}
	return c
}
