/*
 * Copyright 2025 Comcast Cable Communications Management, LLC
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

package logger

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

var (
	logger      *zap.Logger
	atomicLevel = zap.NewAtomicLevel()
)

// LoggerConfig selects where logs go in addition to stdout
type LoggerConfig struct {
	LogLevel       string
	LogMethod      string
	LogFile        LogFile
	VectorEndpoint string
}

// LogFile holds the lumberjack rotation settings
type LogFile struct {
	Path       string
	MaxSize    int // megabytes
	MaxBackups int
	MaxAge     int // days
}

// Initialize builds the process logger and installs it as zap's global
func Initialize(svc, hostname string, cfg LoggerConfig) error {
	atomicLevel.SetLevel(parseLevel(cfg.LogLevel))

	stdout := zapcore.NewCore(
		zapcore.NewJSONEncoder(ProdEncoderConf()),
		zapcore.Lock(os.Stdout),
		atomicLevel,
	)

	extra, err := extraCore(svc, cfg)
	if err != nil {
		return err
	}

	core := stdout
	if extra != nil {
		core = zapcore.NewTee(stdout, extra)
	}

	logger = zap.New(core, zap.AddCaller(), zap.Fields(
		zap.String("app", svc),
		zap.String("host", hostname),
	))

	zap.ReplaceGlobals(logger)
	return nil
}

func extraCore(svc string, cfg LoggerConfig) (zapcore.Core, error) {
	switch cfg.LogMethod {
	case "":
		return nil, nil
	case "file":
		if cfg.LogFile.Path == "" {
			return nil, fmt.Errorf("log file path is empty")
		}
		ws := zapcore.AddSync(&lumberjack.Logger{
			Filename:   filepath.Join(cfg.LogFile.Path, svc+".log"),
			MaxSize:    cfg.LogFile.MaxSize,
			MaxBackups: cfg.LogFile.MaxBackups,
			MaxAge:     cfg.LogFile.MaxAge,
		})
		return zapcore.NewCore(zapcore.NewJSONEncoder(ProdEncoderConf()), ws, atomicLevel), nil
	case "vector":
		u, err := url.Parse(cfg.VectorEndpoint)
		if err != nil {
			return nil, fmt.Errorf("invalid vector endpoint %q - %w", cfg.VectorEndpoint, err)
		}
		if u.Scheme == "" || u.Host == "" {
			return nil, fmt.Errorf("invalid vector endpoint %q", cfg.VectorEndpoint)
		}
		return zapcore.NewCore(zapcore.NewJSONEncoder(ProdEncoderConf()), newVectorSink(u), atomicLevel), nil
	default:
		return nil, fmt.Errorf("unknown log method %q", cfg.LogMethod)
	}
}

func Flush() {
	if logger != nil {
		logger.Sync()
	}
}

func SetLevel(l string) {
	atomicLevel.SetLevel(parseLevel(l))
}

func GetLevel() string {
	return atomicLevel.Level().String()
}

func parseLevel(l string) zapcore.Level {
	switch strings.ToLower(l) {
	case "debug":
		return zap.DebugLevel
	case "warn":
		return zap.WarnLevel
	case "error":
		return zap.ErrorLevel
	default:
		return zap.InfoLevel
	}
}

func ProdEncoderConf() zapcore.EncoderConfig {
	encConf := zap.NewProductionEncoderConfig()
	encConf.EncodeTime = zapcore.RFC3339TimeEncoder

	return encConf
}

// Verbosity reports the current level as {"verbosity": "<level>"}
func Verbosity(w http.ResponseWriter, r *http.Request) {
	level := GetLevel()
	zap.L().Debug("current logging level", zap.String("level", level))

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{"verbosity": level})
}

// SetVerbosity changes the level to the value of the v query parameter
func SetVerbosity(w http.ResponseWriter, r *http.Request) {
	level := r.URL.Query().Get("v")
	if level == "" {
		http.Error(w, "'v' parameter is not set", http.StatusBadRequest)
		return
	}

	SetLevel(level)
	zap.L().Info("updating logging level", zap.String("level", GetLevel()))

	w.WriteHeader(http.StatusNoContent)
}
