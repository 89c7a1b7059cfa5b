// Package infra contains technical adapters: the inference client, MQTT
// publishing, metrics exporters and error tracking. These packages depend
// only on interfaces defined in the core packages.
package infra
