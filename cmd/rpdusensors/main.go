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

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"html/template"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/comcast/rpdusensors/apc"
	"github.com/comcast/rpdusensors/buildinfo"
	"github.com/comcast/rpdusensors/common"
	"github.com/comcast/rpdusensors/config"
	"github.com/comcast/rpdusensors/exporter"
	"github.com/comcast/rpdusensors/http/handlers"
	"github.com/comcast/rpdusensors/logger"
	"github.com/comcast/rpdusensors/middleware/logging"
	"github.com/comcast/rpdusensors/middleware/muxprom"
	"github.com/comcast/rpdusensors/rules"
	"github.com/comcast/rpdusensors/temperature"
	"github.com/comcast/rpdusensors/valuestore"
	pdu_vault "github.com/comcast/rpdusensors/vault"
	"go.uber.org/zap"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gopkg.in/alecthomas/kingpin.v2"
)

const (
	app = "rpdusensors"
)

var (
	a                  = kingpin.New(app, "APC rack PDU temperature sensor check and exporter")
	community          = a.Flag("snmp.community", "static SNMP community used when vault has none for a target").Default("").Envar("SNMP_COMMUNITY").String()
	snmpVersion        = a.Flag("snmp.version", "SNMP protocol version").PlaceHolder("[1|2c]").Default(config.DefaultSNMPVersion).Envar("SNMP_VERSION").String()
	snmpPort           = a.Flag("snmp.port", "SNMP agent port used when the target has none").Default("161").Envar("SNMP_PORT").Uint16()
	snmpTimeout        = a.Flag("snmp.timeout", "SNMP request timeout").Default("5s").Envar("SNMP_TIMEOUT").Duration()
	snmpRetries        = a.Flag("snmp.retries", "SNMP request retries").Default("2").Envar("SNMP_RETRIES").Int()
	snmpMaxReps        = a.Flag("snmp.max-repetitions", "max-repetitions of SNMP GETBULK requests").Default("25").Envar("SNMP_MAX_REPETITIONS").Uint32()
	insecureSkipVerify = a.Flag("insecure-skip-verify", "Skip TLS verification").Default("false").Envar("INSECURE_SKIP_VERIFY").Bool()
	logLevel           = a.Flag("log.level", "log level verbosity").PlaceHolder("[debug|info|warn|error]").Default("info").Envar("LOG_LEVEL").String()
	logMethod          = a.Flag("log.method", "alternative method for logging in addition to stdout").PlaceHolder("[file|vector]").Default("").Envar("LOG_METHOD").String()
	logFilePath        = a.Flag("log.file-path", "directory path where log files are written if log-method is file").Default("/var/log/rpdusensors").Envar("LOG_FILE_PATH").String()
	logFileMaxSize     = a.Flag("log.file-max-size", "max file size in megabytes if log-method is file").Default("256").Envar("LOG_FILE_MAX_SIZE").Int()
	logFileMaxBackups  = a.Flag("log.file-max-backups", "max file backups before they are rotated if log-method is file").Default("1").Envar("LOG_FILE_MAX_BACKUPS").Int()
	logFileMaxAge      = a.Flag("log.file-max-age", "max file age in days before they are rotated if log-method is file").Default("1").Envar("LOG_FILE_MAX_AGE").Int()
	vectorEndpoint     = a.Flag("vector.endpoint", "vector endpoint to send structured json logs to").Default("http://0.0.0.0:4444").Envar("VECTOR_ENDPOINT").String()
	exporterPort       = a.Flag("port", "exporter port").Default("10024").Envar("EXPORTER_PORT").String()
	vaultAddr          = a.Flag("vault.addr", "Vault instance address to get SNMP communities from").Default("https://vault.com").Envar("VAULT_ADDRESS").String()
	vaultRoleId        = a.Flag("vault.role-id", "Vault Role ID for AppRole").Default("").Envar("VAULT_ROLE_ID").String()
	vaultSecretId      = a.Flag("vault.secret-id", "Vault Secret ID for AppRole").Default("").Envar("VAULT_SECRET_ID").String()
	vaultMountPath     = a.Flag("vault.mount-path", "kv mount holding the communities, kv2 is read as kv-v2").Default("kv2").Envar("VAULT_MOUNT_PATH").String()
	vaultPath          = a.Flag("vault.path", "path below the mount, the target is appended").Default("").Envar("VAULT_PATH").String()
	vaultSecretName    = a.Flag("vault.secret-name", "read one shared secret instead of one per target").Default("").Envar("VAULT_SECRET_NAME").String()
	vaultField         = a.Flag("vault.community-field", "secret field holding the community").Default("community").Envar("VAULT_COMMUNITY_FIELD").String()
	rulesFile          = a.Flag("rules.file", "YAML file with the temperature ruleset").Default("").Envar("RULES_FILE").String()
	storeBackend       = a.Flag("valuestore.backend", "where trend state is kept").PlaceHolder("[memory|bolt|redis]").Default("memory").Envar("VALUESTORE_BACKEND").Enum("memory", "bolt", "redis")
	storePath          = a.Flag("valuestore.path", "bolt database file").Default("/var/lib/rpdusensors/values.db").Envar("VALUESTORE_PATH").String()
	redisAddr          = a.Flag("valuestore.redis-addr", "redis address").Default("127.0.0.1:6379").Envar("VALUESTORE_REDIS_ADDR").String()
	redisPassword      = a.Flag("valuestore.redis-password", "redis password").Default("").Envar("VALUESTORE_REDIS_PASSWORD").String()
	storeTTL           = a.Flag("valuestore.ttl", "expiry of redis values, 0 keeps them").Default("24h").Envar("VALUESTORE_TTL").Duration()

	log *zap.Logger

	vault *pdu_vault.Vault
)

var wg = sync.WaitGroup{}

func main() {
	ctx := context.Background()
	doneRenew := make(chan bool, 1)
	tokenLifecycle := make(chan bool, 1)

	hostname, err := os.Hostname()
	if err != nil {
		hostname = ""
	}

	a.HelpFlag.Short('h')
	a.Version(buildinfo.Version())

	_, err = a.Parse(os.Args[1:])
	if err != nil {
		panic(fmt.Errorf("error parsing argument flags - %s", err.Error()))
	}

	// validate logFilePath exists and is a directory
	if *logMethod == "file" {
		fd, err := os.Stat(*logFilePath)
		if os.IsNotExist(err) {
			panic(err)
		}
		if !fd.IsDir() {
			panic(fmt.Errorf("%s is not a directory", *logFilePath))
		}
	}

	config.NewConfig(&config.Config{
		SNMPVersion:        *snmpVersion,
		SNMPPort:           *snmpPort,
		SNMPTimeout:        *snmpTimeout,
		SNMPRetries:        *snmpRetries,
		SNMPMaxRepetitions: *snmpMaxReps,
		Community:          *community,
		SSLVerify:          *insecureSkipVerify,
	})

	// init logger config
	logConfig := logger.LoggerConfig{
		LogLevel:  *logLevel,
		LogMethod: *logMethod,
		LogFile: logger.LogFile{
			Path:       *logFilePath,
			MaxSize:    *logFileMaxSize,
			MaxBackups: *logFileMaxBackups,
			MaxAge:     *logFileMaxAge,
		},
		VectorEndpoint: *vectorEndpoint,
	}

	err = logger.Initialize(app, hostname, logConfig)
	if err != nil {
		panic(fmt.Errorf("error initializing logger - log_method=%s vector_endpoint=%s log_file_path=%s - err=%s",
			*logMethod, *vectorEndpoint, *logFilePath, err.Error()))
	}

	log = zap.L()
	defer logger.Flush()

	if *logMethod == "vector" {
		log.Info("successfully initialized logger", zap.String("log_method", *logMethod),
			zap.String("vector_endpoint", *vectorEndpoint))
	} else if *logMethod == "file" {
		log.Info("successfully initialized logger", zap.String("log_method", *logMethod),
			zap.String("log_file_path", *logFilePath),
			zap.Int("log_file_max_size", *logFileMaxSize),
			zap.Int("log_file_max_backups", *logFileMaxBackups),
			zap.Int("log_file_max_age", *logFileMaxAge))
	}

	ruleset, err := rules.Load(*rulesFile, apc.Plugin.Ruleset, apc.Plugin.DefaultParameters)
	if err != nil {
		log.Fatal("failed loading rules", zap.Error(err), zap.String("rules_file", *rulesFile))
	}
	log.Info("loaded rules", zap.String("ruleset", ruleset.Name), zap.Int("rules", ruleset.Len()))

	store, err := valuestore.Open(ctx, valuestore.Options{
		Backend:       *storeBackend,
		Path:          *storePath,
		RedisAddr:     *redisAddr,
		RedisPassword: *redisPassword,
		TTL:           *storeTTL,
	})
	if err != nil {
		log.Fatal("failed opening value store", zap.Error(err), zap.String("backend", *storeBackend))
	}
	defer store.Close()

	// configure vault client if vaultRoleId & vaultSecretId are set
	if *vaultRoleId != "" && *vaultSecretId != "" {
		var err error
		vault, err = pdu_vault.NewVaultAppRoleClient(
			ctx,
			pdu_vault.Parameters{
				Address:         *vaultAddr,
				ApproleRoleID:   *vaultRoleId,
				ApproleSecretID: *vaultSecretId,
			},
		)
		if err != nil {
			log.Error("failed initializing vault client", zap.Error(err),
				zap.String("vault_address", *vaultAddr),
				zap.String("vault_role_id", *vaultRoleId))
		} else {
			common.Communities.Source = &pdu_vault.Communities{
				Vault: vault,
				Props: pdu_vault.SecretProperties{
					MountPath:      *vaultMountPath,
					Path:           *vaultPath,
					CommunityField: *vaultField,
					SecretName:     *vaultSecretName,
				},
			}

			// start go routine to continuously renew vault token
			wg.Add(1)
			go vault.RenewToken(ctx, doneRenew, tokenLifecycle, &wg)
		}
	}

	scraper := &exporter.Scraper{
		Dial:        exporter.SNMPDialer,
		Communities: common.Communities,
		Ignored:     common.IgnoredDevices,
		Rules:       ruleset,
		Store:       store,
		Evaluator:   temperature.NewEngine(),
	}

	mux := http.NewServeMux()

	mux.HandleFunc("GET /info", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(buildinfo.Info)
	})

	mux.Handle("GET /metrics", promhttp.Handler())

	mux.HandleFunc("GET /scrape", handlers.ScrapeHandler(scraper))
	mux.HandleFunc("GET /discover", handlers.DiscoverHandler(scraper))
	mux.HandleFunc("GET /check", handlers.CheckHandler(scraper))

	tmplIndex := template.Must(template.New("index").Parse(indexTmpl))
	mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		err := tmplIndex.Execute(w, buildinfo.Info)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
	})

	tmplIgnored := template.Must(template.New("ignored").Parse(ignoredTmpl))
	mux.HandleFunc("GET /ignored", func(w http.ResponseWriter, r *http.Request) {
		err := tmplIgnored.Execute(w, common.IgnoredDevices.List())
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
	})

	mux.HandleFunc("GET /ignored/list", common.ListIgnored)
	mux.HandleFunc("POST /ignored/remove", common.RemoveHost)

	mux.HandleFunc("GET /verbosity", logger.Verbosity)
	mux.HandleFunc("PUT /verbosity", logger.SetVerbosity)

	instrumentation := muxprom.NewDefaultInstrumentation()
	wrappedmux := logging.LoggingHandler(instrumentation.Middleware(mux))

	srv := &http.Server{
		Addr:    ":" + *exporterPort,
		Handler: wrappedmux,
	}

	signals := make(chan os.Signal, 1)
	signal.Notify(signals, os.Interrupt, syscall.SIGTERM, syscall.SIGHUP)

	listener, err := net.Listen("tcp4", ":"+*exporterPort)
	if err != nil {
		log.Error("starting "+app+" service failed", zap.Error(err))
		signals <- syscall.SIGTERM
	} else {
		wg.Add(1)
		go func() {
			defer wg.Done()

			if err := srv.Serve(listener); err != nil && err != http.ErrServerClosed {
				log.Error("http server received an error", zap.Error(err))
				signals <- syscall.SIGTERM
			}
		}()

		log.Info("started "+app+" service", zap.String("port", *exporterPort),
			zap.String("valuestore_backend", *storeBackend))
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		s := <-signals
		log.Info(s.String() + " signal caught, stopping app")
		if err := srv.Shutdown(ctx); err != nil {
			log.Error("http server shutdown failed", zap.Error(err))
		}

		if vault != nil {
			if vault.IsLoggedIn() {
				// send signal to stop token watcher if we were able to successfully login
				tokenLifecycle <- true
			}
			doneRenew <- true
		}
	}()

	wg.Wait()
}
