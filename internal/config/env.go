package config

import (
	"fmt"
	"os"

	"github.com/spf13/viper"
)

// Well-known secret names
const (
	TelegramBotToken   = "TELEGRAM_BOT_TOKEN"
	TelegramChatID     = "TELEGRAM_CHAT_ID"
	StatuspageAPIKey   = "STATUSPAGE_IO_API_KEY"
	StatuspagePageID   = "STATUSPAGE_IO_PAGE_ID"
	AccessClientID     = "CF_ACCESS_CLIENT_ID"
	AccessClientSecret = "CF_ACCESS_CLIENT_SECRET"
)

// Env is the runtime environment of one activation: process environment
// variables layered over an optional dotenv secrets file.
type Env struct {
	v *viper.Viper
}

// LoadEnv builds an Env. A missing secrets file is not an error.
func LoadEnv(secretsPath string) (*Env, error) {
	v := viper.New()
	v.AutomaticEnv()

	if secretsPath != "" {
		if _, err := os.Stat(secretsPath); err == nil {
			v.SetConfigFile(secretsPath)
			v.SetConfigType("env")
			if err := v.ReadInConfig(); err != nil {
				return nil, fmt.Errorf("failed to read secrets file %s: %w", secretsPath, err)
			}
		} else if !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to stat secrets file: %w", err)
		}
	}

	return &Env{v: v}, nil
}

// NewEnv returns an Env backed only by the given values and the process environment
func NewEnv(values map[string]string) *Env {
	v := viper.New()
	v.AutomaticEnv()
	for key, value := range values {
		v.Set(key, value)
	}
	return &Env{v: v}
}

// Lookup returns a secret and whether it is set to a non-empty value
func (e *Env) Lookup(name string) (string, bool) {
	if e == nil || e.v == nil {
		return "", false
	}
	if !e.v.IsSet(name) {
		return "", false
	}
	value := e.v.GetString(name)
	return value, value != ""
}

// Get returns a secret or the empty string
func (e *Env) Get(name string) string {
	value, _ := e.Lookup(name)
	return value
}

// Expand replaces ${NAME} and $NAME references with values from the Env
func (e *Env) Expand(value string) string {
	return os.Expand(value, e.Get)
}
