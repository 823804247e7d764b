/*
 * Copyright 2025 Carver Automation Corporation.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package config loads the daemon configuration from a JSON file with
// environment variable overrides.
package config

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/juergengeck/uvc-sub003/pkg/logger"
	"github.com/juergengeck/uvc-sub003/pkg/models"
)

// envPrefix namespaces the override variables, e.g. UVC_LISTEN_ADDR.
const envPrefix = "UVC_"

var errMissingIdentity = errors.New("config must set identity.person_id and identity.device_id")

// AppConfig is the daemon's complete configuration.
type AppConfig struct {
	Identity     models.LocalIdentity   `json:"identity"`
	Discovery    models.DiscoveryConfig `json:"discovery"`
	DatabasePath string                 `json:"database_path"`
	KeyPath      string                 `json:"key_path"`
	Logging      logger.Config          `json:"logging"`
}

// Load reads and validates the config file, applies env overrides and
// defaults.
func Load(_ context.Context, path string) (*AppConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file '%s': %w", path, err)
	}

	var cfg AppConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal JSON from '%s': %w", path, err)
	}

	applyEnvOverrides(&cfg)
	cfg.Discovery.ApplyDefaults()

	if cfg.DatabasePath == "" {
		cfg.DatabasePath = "uvc.db"
	}

	if cfg.Identity.PersonID == "" || cfg.Identity.DeviceID == "" {
		return nil, errMissingIdentity
	}

	return &cfg, nil
}

func applyEnvOverrides(cfg *AppConfig) {
	if v := os.Getenv(envPrefix + "LISTEN_ADDR"); v != "" {
		cfg.Discovery.ListenAddr = v
	}

	if v := os.Getenv(envPrefix + "BROADCAST_ADDR"); v != "" {
		cfg.Discovery.BroadcastAddr = v
	}

	if v := os.Getenv(envPrefix + "DATABASE_PATH"); v != "" {
		cfg.DatabasePath = v
	}

	if v := os.Getenv(envPrefix + "KEY_PATH"); v != "" {
		cfg.KeyPath = v
	}

	if v := os.Getenv(envPrefix + "LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
}
