// Package config loads typed configuration from environment variables using
// github.com/caarlos0/env/v11, with .env support from github.com/joho/godotenv.
//
// Load parses a struct once per type and caches it for the life of the process;
// Parse does the same work without the cache and accepts a prefix or an explicit
// variable map, which is how component configs (pgstore.Config, redisstore.Config,
// mongostore.Config) are read in tests.
package config
