// Package config loads optional runtime tunables for the ral engine that
// are not part of the score language itself: default log level/file, the
// fallback device sample rate, and the output WAV path.
package config

import (
	"errors"
	"io/fs"
	"log/slog"

	"github.com/spf13/viper"
)

func setDefaults() {
	viper.SetDefault("loglevel", "none")
	viper.SetDefault("logfile", "")
	viper.SetDefault("output.wavpath", "test.wav")
	viper.SetDefault("output.samplerate", 48000)
	viper.SetDefault("output.channels", 2)
}

// Load reads an optional YAML config file at configFilePath. A missing file
// is not an error; defaults apply. Malformed YAML is.
func Load(configFilePath string) error {
	setDefaults()

	if configFilePath == "" {
		return nil
	}

	viper.SetConfigFile(configFilePath)
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok || errors.Is(err, fs.ErrNotExist) {
			slog.Debug("no config file found", "path", configFilePath)
			return nil
		}
		return err
	}

	return nil
}

// LogLevel returns the configured default slog level name.
func LogLevel() string { return viper.GetString("loglevel") }

// LogFile returns the configured log file path, or "" for stdout.
func LogFile() string { return viper.GetString("logfile") }

// WavPath returns the path file-mode output is written to.
func WavPath() string { return viper.GetString("output.wavpath") }

// SampleRate returns the configured sample rate, used for the VM and the
// device and none sinks. The file sink always writes at 48 kHz.
func SampleRate() int { return viper.GetInt("output.samplerate") }

// Channels returns the configured channel count, used for the device and
// none sinks. The file sink always writes 2 channels.
func Channels() int { return viper.GetInt("output.channels") }
