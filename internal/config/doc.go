// Package config provides the crawl configuration and its loaders.
// Values come from defaults, the .wordcrawl file, the environment (optionally
// read from a .env file) and CLI flags, with later sources taking precedence.
package config
