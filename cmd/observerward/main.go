package main

import (
	"bufio"
	"flag"
	"fmt"
	"net/url"
	"os"
	"sort"
	"strings"

	"github.com/rs/zerolog"

	"github.com/BambooLove/ObserverWard/internal/preflight"
	"github.com/BambooLove/ObserverWard/whatweb"
)

type config struct {
	target          string
	targetFile      string
	fingerprintPath string
	proxy           string
	timeout         uint64
	debug           bool
	preflight       bool
}

func main() {
	var cfg config
	flag.StringVar(&cfg.target, "t", "", "target host or url")
	flag.StringVar(&cfg.targetFile, "f", "", "file with one target per line")
	flag.StringVar(&cfg.fingerprintPath, "l", "web_fingerprint_v3.json", "fingerprint library path")
	flag.Uint64Var(&cfg.timeout, "timeout", 10, "request timeout in seconds")
	flag.StringVar(&cfg.proxy, "proxy", "", "proxy url, e.g. socks5://127.0.0.1:1080")
	flag.BoolVar(&cfg.debug, "debug", false, "dump snapshots and matched rules")
	flag.BoolVar(&cfg.preflight, "preflight", false, "skip targets that do not resolve")
	flag.Parse()

	level := zerolog.InfoLevel
	if cfg.debug {
		level = zerolog.DebugLevel
	}
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).Level(level).With().Timestamp().Logger()

	targets, err := collectTargets(cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("no targets to scan")
	}
	lib, err := whatweb.NewWebFingerPrintLibFromFile(cfg.fingerprintPath)
	if err != nil {
		logger.Fatal().Err(err).Str("path", cfg.fingerprintPath).Msg("cannot load fingerprint library")
	}

	opt := whatweb.NewRequestOption(cfg.timeout, cfg.proxy)
	engine := whatweb.New(logger)
	for _, target := range targets {
		if cfg.preflight && len(preflight.Resolve(hostOf(target))) == 0 {
			logger.Warn().Str("target", target).Msg("target does not resolve, skipped")
			continue
		}
		result, err := engine.Scan(target, lib, opt, cfg.debug)
		if err != nil {
			logger.Error().Err(err).Str("target", target).Msg("scan failed")
			continue
		}
		fmt.Println(formatResult(result))
	}
}

// collectTargets merges -t, -f and positional targets, deduplicated and
// ordered so hosts of the same registrable domain scan together.
func collectTargets(cfg config) ([]string, error) {
	var targets []string
	if cfg.target != "" {
		targets = append(targets, cfg.target)
	}
	if cfg.targetFile != "" {
		f, err := os.Open(cfg.targetFile)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		scanner := bufio.NewScanner(f)
		for scanner.Scan() {
			if line := strings.TrimSpace(scanner.Text()); line != "" {
				targets = append(targets, line)
			}
		}
		if err := scanner.Err(); err != nil {
			return nil, err
		}
	}
	targets = append(targets, flag.Args()...)

	seen := make(map[string]struct{}, len(targets))
	unique := targets[:0]
	for _, target := range targets {
		if _, ok := seen[target]; ok {
			continue
		}
		seen[target] = struct{}{}
		unique = append(unique, target)
	}
	if len(unique) == 0 {
		return nil, fmt.Errorf("no targets given, use -t, -f or positional arguments")
	}
	sort.SliceStable(unique, func(i, j int) bool {
		return preflight.RegistrableDomain(hostOf(unique[i])) < preflight.RegistrableDomain(hostOf(unique[j]))
	})
	return unique, nil
}

// hostOf strips an optional scheme and path from a target string.
func hostOf(target string) string {
	if u, err := url.Parse(target); err == nil && u.Host != "" {
		return u.Hostname()
	}
	if host, _, found := strings.Cut(target, ":"); found {
		return host
	}
	if host, _, found := strings.Cut(target, "/"); found {
		return host
	}
	return target
}

func formatResult(result whatweb.ScanResult) string {
	names := make([]string, 0, len(result.Matches))
	for name, priority := range result.Matches {
		names = append(names, fmt.Sprintf("%s(%d)", name, priority))
	}
	sort.Strings(names)
	return fmt.Sprintf("[%s] | %s | %s | %d",
		strings.Join(names, ","), result.URL, result.Title, result.StatusCode)
}
