package main

import (
	"context"
	"fmt"
	"net/http"
	"net/http/pprof"
	"os"
	"reflect"
	"syscall"
	"time"

	"github.com/aukilabs/go-tooling/pkg/cli"
	"github.com/aukilabs/go-tooling/pkg/errors"
	"github.com/aukilabs/go-tooling/pkg/logs"
	"github.com/aukilabs/raido/featureflag"
	raidohttp "github.com/aukilabs/raido/http"
	"github.com/aukilabs/raido/models"
	"github.com/aukilabs/raido/spatial"
	rwebsocket "github.com/aukilabs/raido/websocket"
	"github.com/pkg/profile"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/segmentio/encoding/json"
	"golang.org/x/net/websocket"
)

var (
	// The Raido version number. Set at build.
	version = "v0.1.0"

	infoGauge = promauto.NewGauge(prometheus.GaugeOpts{
		Name:        "raido_info",
		Help:        "Raido information.",
		ConstLabels: prometheus.Labels{"version": version},
	})
)

// This will effectively disable obfuscation of the config struct. Without it, the keys would get obfuscated causing the cli package to generate garbled command-line options.
// https://github.com/burrowers/garble/issues/403
var _ = reflect.TypeOf(config{})

type config struct {
	Addr              string        `cli:""        env:"RAIDO_ADDR"                help:"Listening address for client connections."`
	AdminAddr         string        `cli:""        env:"RAIDO_ADMIN_ADDR"          help:"Admin listening address."`
	LogLevel          string        `cli:""        env:"RAIDO_LOG_LEVEL"           help:"Log level (debug|info|warning|error)."`
	LogIndent         bool          `cli:""        env:"RAIDO_LOG_INDENT"          help:"Indent logs."`
	FrameDuration     time.Duration `cli:",hidden" env:"RAIDO_FRAME_DURATION"      help:"The duration of a tracking frame."`
	ClientIdleTimeout time.Duration `cli:",hidden" env:"RAIDO_CLIENT_IDLE_TIMEOUT" help:"Time until an idle client will be disconnected."`
	MinMoved          float64       `cli:""        env:"RAIDO_MIN_MOVED"           help:"Squared displacement below which entity moves are not propagated into spatial trees."`
	RecreateAfter     int           `cli:""        env:"RAIDO_RECREATE_AFTER"      help:"Moved entities per frame above which a spatial tree is recreated instead of patched."`
	Categories        []string      `cli:""        env:"RAIDO_CATEGORIES"          help:"Comma separated tracked categories created at startup."`
	FeatureFlags      []string      `cli:",hidden" env:"RAIDO_FEATURE_FLAGS"       help:"Comma separated feature flags."`
	Profile           bool          `cli:",hidden" env:"-"                         help:"Write a CPU profile to the working directory."`
	Version           bool          `cli:""        env:"-"                         help:"Show version."`
	Help              bool          `cli:""        env:"-"                         help:"Show help."`
}

func main() {
	conf := config{
		Addr:              ":4100",
		AdminAddr:         ":18191",
		LogLevel:          logs.InfoLevel.String(),
		FrameDuration:     time.Millisecond * 15,
		ClientIdleTimeout: time.Minute * 5,
		RecreateAfter:     100,
	}

	// set the information gauge to 1, useful for SUM query
	infoGauge.Set(1)

	ctx, cancel := cli.ContextWithSignals(context.Background(),
		os.Interrupt,
		syscall.SIGTERM,
	)
	defer cancel()

	cli.Register().
		Help("Starts Raido server.").
		Options(&conf)
	cli.Load()

	if conf.Version {
		fmt.Println(version)
		os.Exit(0)
	}

	if err := validateConfig(conf); err != nil {
		logs.Fatal(err)
	}

	logs.SetLevel(logs.ParseLevel(conf.LogLevel))
	logs.Encoder = json.Marshal
	if conf.LogIndent {
		logs.Encoder = func(v any) ([]byte, error) {
			return json.MarshalIndent(v, "", "  ")
		}
	}

	errors.Encoder = json.Marshal

	if conf.Profile {
		defer profile.Start(profile.ProfilePath("."), profile.NoShutdownHook).Stop()
	}

	flags := featureflag.New(conf.FeatureFlags)
	forceRecreate := flags.IsSet(featureflag.FlagForceRecreate)

	treeConfig := spatial.TreeConfig{
		MinMoved:      conf.MinMoved,
		RecreateAfter: conf.RecreateAfter,
	}

	categories := models.NewCategoryStore()
	for _, name := range conf.Categories {
		c := models.NewCategory(name, spatial.NewRTree3D(treeConfig), forceRecreate)
		if err := categories.Add(c); err != nil {
			logs.Fatal(errors.New("adding startup category failed").Wrap(err))
		}
	}

	go categories.Run(ctx, conf.FrameDuration)

	rh := &rwebsocket.RealtimeHandler{
		Categories:        categories,
		TreeConfig:        treeConfig,
		ForceRecreate:     forceRecreate,
		ClientIdleTimeout: conf.ClientIdleTimeout,
	}

	var service http.ServeMux
	service.Handle("/", raidohttp.HandleWithCORS(websocket.Server{
		Handler: rh.HandleConnect,
	}))
	service.HandleFunc("/health", raidohttp.HandleHealthCheck)
	service.Handle("/version", raidohttp.HandleWithCORS(http.HandlerFunc(raidohttp.HandleVersion(version))))

	var admin http.ServeMux
	admin.Handle("/metrics", promhttp.Handler())
	admin.HandleFunc("/health", raidohttp.HandleHealthCheck)
	admin.HandleFunc("/version", raidohttp.HandleVersion(version))
	admin.HandleFunc("/debug/pprof/", pprof.Index)
	admin.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
	admin.HandleFunc("/debug/pprof/profile", pprof.Profile)
	admin.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
	admin.HandleFunc("/debug/pprof/trace", pprof.Trace)
	admin.Handle("/debug/pprof/goroutine", pprof.Handler("goroutine"))
	admin.Handle("/debug/pprof/heap", pprof.Handler("heap"))
	admin.Handle("/debug/pprof/block", pprof.Handler("block"))

	logs.WithTag("version", version).
		WithTag("log_level", conf.LogLevel).
		WithTag("frame_duration", conf.FrameDuration).
		WithTag("categories", conf.Categories).
		Info("starting raido server")

	raidohttp.ListenAndServe(ctx,
		&http.Server{Addr: conf.Addr, Handler: &service},
		&http.Server{Addr: conf.AdminAddr, Handler: &admin},
	)
}

func validateConfig(conf config) error {
	if conf.FrameDuration <= 0 {
		return errors.New("frame duration must be positive").
			WithTag("frame_duration", conf.FrameDuration)
	}

	if conf.MinMoved < 0 {
		return errors.New("min moved threshold must not be negative").
			WithTag("min_moved", conf.MinMoved)
	}

	if conf.RecreateAfter < 0 {
		return errors.New("recreate after count must not be negative").
			WithTag("recreate_after", conf.RecreateAfter)
	}

	return nil
}
