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

package main

import (
	"context"
	"crypto/ed25519"
	"crypto/rand"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/juergengeck/uvc-sub003/pkg/config"
	"github.com/juergengeck/uvc-sub003/pkg/discovery"
	"github.com/juergengeck/uvc-sub003/pkg/logger"
	"github.com/juergengeck/uvc-sub003/pkg/ownership"
	"github.com/juergengeck/uvc-sub003/pkg/store"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	configPath := flag.String("config", "/etc/uvc/uvcd.json", "Path to daemon config file")
	flag.Parse()

	ctx := context.Background()

	cfg, err := config.Load(ctx, *configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	appLogger, err := logger.New(cfg.Logging)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}

	key, err := loadOrCreateKey(cfg.KeyPath)
	if err != nil {
		return fmt.Errorf("load signing key: %w", err)
	}

	ownedStore, err := store.New(cfg.DatabasePath)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer ownedStore.Close()

	session, err := discovery.NewSession(&cfg.Discovery, cfg.Identity, discovery.Deps{
		CredentialFactory: func(sender ownership.DatagramSender) ownership.CredentialService {
			return ownership.NewJWTCredentialService(key, sender)
		},
		Store:  ownedStore,
		Logger: appLogger,
	})
	if err != nil {
		return fmt.Errorf("create session: %w", err)
	}

	if err := session.Start(ctx); err != nil {
		return fmt.Errorf("start session: %w", err)
	}

	appLogger.Info().
		Str("person_id", cfg.Identity.PersonID).
		Str("device_id", cfg.Identity.DeviceID).
		Msg("uvcd running")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	appLogger.Info().Msg("Shutting down")

	return session.Close()
}

// loadOrCreateKey reads the ed25519 seed from path, generating and
// persisting a fresh one on first run. An empty path keeps the key in
// memory only.
func loadOrCreateKey(path string) (ed25519.PrivateKey, error) {
	if path == "" {
		_, key, err := ed25519.GenerateKey(rand.Reader)
		return key, err
	}

	seed, err := os.ReadFile(path)
	if err == nil {
		if len(seed) != ed25519.SeedSize {
			return nil, fmt.Errorf("key file %q has wrong size %d", path, len(seed))
		}

		return ed25519.NewKeyFromSeed(seed), nil
	}

	if !os.IsNotExist(err) {
		return nil, err
	}

	_, key, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return nil, err
	}

	if err := os.WriteFile(path, key.Seed(), 0o600); err != nil {
		return nil, err
	}

	return key, nil
}
