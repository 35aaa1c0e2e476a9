// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package ufunc

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"k8s.io/klog/v2"
)

// NDARRAY_UFUNC is the environment variable with the default engine configuration.
//
// See ParseConfig for the format.
const NDARRAY_UFUNC = "NDARRAY_UFUNC"

// DefaultConfig is the engine configuration used if NDARRAY_UFUNC is not set.
//
// See ParseConfig for the format.
var DefaultConfig string

// AxisRule defines how negative reduction axes are resolved.
type AxisRule int

const (
	// AxisRuleLegacy resolves a negative axis to rank - axis. The result is always >= rank, so
	// negative axes are always rejected with an index error.
	AxisRuleLegacy AxisRule = iota

	// AxisRuleWrap resolves a negative axis to rank + axis, so -1 is the last axis.
	AxisRuleWrap
)

// String implements fmt.Stringer.
func (r AxisRule) String() string {
	switch r {
	case AxisRuleLegacy:
		return "legacy"
	case AxisRuleWrap:
		return "wrap"
	default:
		return fmt.Sprintf("AxisRule(%d)", int(r))
	}
}

// FastPathKind selects one of the built-in fast paths.
type FastPathKind int

const (
	// FastPathNone uses NoFastPath.
	FastPathNone FastPathKind = iota

	// FastPathContiguous uses Contiguous.
	FastPathContiguous
)

// String implements fmt.Stringer.
func (k FastPathKind) String() string {
	switch k {
	case FastPathNone:
		return "none"
	case FastPathContiguous:
		return "contiguous"
	default:
		return fmt.Sprintf("FastPathKind(%d)", int(k))
	}
}

// DefaultMinParallelSize is the default minimum number of output elements to split work across workers.
const DefaultMinParallelSize = 1 << 14

// Config holds the engine options that can be set by a configuration string.
type Config struct {
	// Parallelism is the maximum number of workers: 0 disables parallelism, -1 means unlimited.
	Parallelism int

	// MinParallelSize is the minimum output size for which work is split across workers.
	MinParallelSize int

	// FastPath selects the built-in fast path.
	FastPath FastPathKind

	// AxisRule selects how negative axes are resolved.
	AxisRule AxisRule
}

// Defaults returns the default configuration: sequential, contiguous fast path and legacy axis rule.
func Defaults() Config {
	return Config{
		Parallelism:     0,
		MinParallelSize: DefaultMinParallelSize,
		FastPath:        FastPathContiguous,
		AxisRule:        AxisRuleLegacy,
	}
}

// String returns the configuration in the format accepted by ParseConfig.
func (c Config) String() string {
	return fmt.Sprintf("parallelism=%d,minparallel=%d,fastpath=%s,axis=%s",
		c.Parallelism, c.MinParallelSize, c.FastPath, c.AxisRule)
}

// ParseConfig parses a comma-separated list of key=value options, applied over the Defaults:
//
//   - parallelism=N: maximum number of workers, 0 (sequential), -1 (unlimited) or a positive number.
//   - minparallel=N: minimum output size for which work is split across workers.
//   - fastpath=none|contiguous: built-in fast path.
//   - axis=legacy|wrap: rule for negative axes, see AxisRule.
//
// Empty options are ignored. Example: "parallelism=8,axis=wrap".
func ParseConfig(config string) (Config, error) {
	c := Defaults()
	for _, part := range strings.Split(config, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		key, value, found := strings.Cut(part, "=")
		if !found {
			return c, errors.Errorf("invalid ufunc configuration option %q in %q: want key=value", part, config)
		}
		key, value = strings.ToLower(strings.TrimSpace(key)), strings.TrimSpace(value)
		switch key {
		case "parallelism":
			n, err := strconv.Atoi(value)
			if err != nil || n < -1 {
				return c, errors.Errorf("invalid parallelism %q in ufunc configuration %q: want -1, 0 or a positive number", value, config)
			}
			c.Parallelism = n
		case "minparallel":
			n, err := strconv.Atoi(value)
			if err != nil || n < 0 {
				return c, errors.Errorf("invalid minparallel %q in ufunc configuration %q", value, config)
			}
			c.MinParallelSize = n
		case "fastpath":
			switch strings.ToLower(value) {
			case "none":
				c.FastPath = FastPathNone
			case "contiguous":
				c.FastPath = FastPathContiguous
			default:
				return c, errors.Errorf("unknown fastpath %q in ufunc configuration %q: want none or contiguous", value, config)
			}
		case "axis":
			switch strings.ToLower(value) {
			case "legacy":
				c.AxisRule = AxisRuleLegacy
			case "wrap":
				c.AxisRule = AxisRuleWrap
			default:
				return c, errors.Errorf("unknown axis rule %q in ufunc configuration %q: want legacy or wrap", value, config)
			}
		default:
			return c, errors.Errorf("unknown ufunc configuration option %q in %q", key, config)
		}
	}
	return c, nil
}

// configFromEnv returns the configuration string from NDARRAY_UFUNC, or DefaultConfig.
func configFromEnv() string {
	if config, found := os.LookupEnv(NDARRAY_UFUNC); found {
		return config
	}
	return DefaultConfig
}

// loadConfig parses the default configuration string. Invalid configurations are logged and replaced
// by the Defaults.
func loadConfig() Config {
	config := configFromEnv()
	c, err := ParseConfig(config)
	if err != nil {
		klog.Warningf("ignoring invalid ufunc configuration, using defaults: %v", err)
		return Defaults()
	}
	klog.V(1).Infof("ufunc configuration %q: %s", config, c)
	return c
}
