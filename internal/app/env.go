// Copyright 2025 Agentic World, LLC (Sherin Thomas)
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package app

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Settings is the process-level configuration read from the environment
// (and an optional .env file).
type Settings struct {
	ChromePath string
	Headless   bool
	DBPath     string
	UserAgent  string
	Workers    int
	LogLevel   string
	LogFile    string
}

// LoadSettings reads Settings from the environment.
func LoadSettings() *Settings {
	_ = godotenv.Load()

	return &Settings{
		ChromePath: getEnv("CHROME_PATH", ""),
		Headless:   getEnvBool("STREAKSNAKE_HEADLESS", true),
		DBPath:     getEnv("STREAKSNAKE_DB_PATH", ""),
		UserAgent:  getEnv("STREAKSNAKE_USER_AGENT", ""),
		Workers:    getEnvInt("STREAKSNAKE_WORKERS", 1),
		LogLevel:   getEnv("LOG_LEVEL", "warn"),
		LogFile:    getEnv("LOG_FILE", ""),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}
