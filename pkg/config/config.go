// Copyright 2025 KrakLabs
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published
// by the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program. If not, see <https://www.gnu.org/licenses/>.
//
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config loads engine configuration from the environment. The
// engine runs as a long-lived service, so configuration comes from env
// vars read once at process start via viper rather than interactive
// flags.
package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds every environment-derived setting the engine needs.
type Config struct {
	LLMProviderType   string // "ollama", "openai", "anthropic", or "mock"
	LLMProviderModel  string
	LLMProviderRegion string
	LLMAPIKey         string

	StoreKind     string // "file" or "mongo"
	StoreURI      string
	StoreDatabase string

	LogLevel          string
	EnableFileLogging bool
	LogFilePath       string

	// WorkflowTimeout bounds one Engine.Run invocation end to end. Per-call
	// LLM timeouts (§4.9) are independent of this budget.
	WorkflowTimeout time.Duration
}

// Load reads configuration from the process environment, falling back to
// the defaults set below for unset keys. No config file is read.
func Load() (*Config, error) {
	v := viper.New()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("llm_provider_type", "ollama")
	v.SetDefault("llm_provider_model", "llama3.1")
	v.SetDefault("store_kind", "file")
	v.SetDefault("log_level", "info")
	v.SetDefault("enable_file_logging", false)
	v.SetDefault("workflow_timeout", 2*time.Hour)

	cfg := &Config{
		LLMProviderType:   v.GetString("llm_provider_type"),
		LLMProviderModel:  v.GetString("llm_provider_model"),
		LLMProviderRegion: v.GetString("llm_provider_region"),
		LLMAPIKey:         v.GetString("llm_api_key"),
		StoreKind:         v.GetString("store_kind"),
		StoreURI:          v.GetString("store_uri"),
		StoreDatabase:     v.GetString("store_database"),
		LogLevel:          v.GetString("log_level"),
		EnableFileLogging: v.GetBool("enable_file_logging"),
		LogFilePath:       v.GetString("log_file_path"),
		WorkflowTimeout:   v.GetDuration("workflow_timeout"),
	}

	if cfg.WorkflowTimeout <= 0 {
		cfg.WorkflowTimeout = 2 * time.Hour
	}

	return cfg, nil
}
