package config

import "time"

// File represents the structure of the .wordcrawl configuration file.
//
// The keys are the ones of the classic JSON crawl configuration, so both a
// YAML file and a JSON file such as
//
//	{"startPages": ["https://example.com/"], "maxDepth": 3, "timeoutSeconds": 5}
//
// are accepted. Absent keys leave the current value untouched; numeric
// options are pointers so that an explicit zero can be told apart from an
// absent key.
type File struct {
	StartPages        []string `yaml:"startPages,omitempty"`
	IgnoredURLs       []string `yaml:"ignoredUrls,omitempty"`
	IgnoredWords      []string `yaml:"ignoredWords,omitempty"`
	Parallelism       *int     `yaml:"parallelism,omitempty"`
	MaxDepth          *int     `yaml:"maxDepth,omitempty"`
	TimeoutSeconds    *float64 `yaml:"timeoutSeconds,omitempty"`
	PopularWordCount  *int     `yaml:"popularWordCount,omitempty"`
	ProfileOutputPath string   `yaml:"profileOutputPath,omitempty"`
	ResultPath        string   `yaml:"resultPath,omitempty"`
	UserAgent         string   `yaml:"userAgent,omitempty"`
	Proxy             string   `yaml:"proxy,omitempty"`
	MaxBodySize       *int64   `yaml:"maxBodySize,omitempty"`
	FetchTimeout      string   `yaml:"fetchTimeout,omitempty"`
}

// ApplyTo copies every option present in the file onto cfg.
// It fails only when fetchTimeout is not a valid duration.
func (f *File) ApplyTo(cfg *Config) error {
	if len(f.StartPages) > 0 {
		cfg.StartPages = f.StartPages
	}
	if len(f.IgnoredURLs) > 0 {
		cfg.IgnoredURLs = f.IgnoredURLs
	}
	if len(f.IgnoredWords) > 0 {
		cfg.IgnoredWords = f.IgnoredWords
	}
	if f.Parallelism != nil {
		cfg.Parallelism = *f.Parallelism
	}
	if f.MaxDepth != nil {
		cfg.MaxDepth = *f.MaxDepth
	}
	if f.TimeoutSeconds != nil {
		cfg.Timeout = time.Duration(*f.TimeoutSeconds * float64(time.Second))
	}
	if f.PopularWordCount != nil {
		cfg.PopularWordCount = *f.PopularWordCount
	}
	if f.ProfileOutputPath != "" {
		cfg.ProfileOutputPath = f.ProfileOutputPath
	}
	if f.ResultPath != "" {
		cfg.ResultPath = f.ResultPath
	}
	if f.UserAgent != "" {
		cfg.UserAgent = f.UserAgent
	}
	if f.Proxy != "" {
		cfg.ProxyAddress = f.Proxy
	}
	if f.MaxBodySize != nil {
		cfg.MaxBodySize = *f.MaxBodySize
	}
	if f.FetchTimeout != "" {
		d, err := time.ParseDuration(f.FetchTimeout)
		if err != nil {
			return err
		}
		cfg.FetchTimeout = d
	}
	return nil
}
