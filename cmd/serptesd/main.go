package main

import (
	"flag"
	"net/http"
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/settmint/serp-tes/internal/engine"
	"github.com/settmint/serp-tes/internal/lcd"
	"github.com/settmint/serp-tes/internal/registry"
	"github.com/settmint/serp-tes/pkg/httpserver"
	"github.com/settmint/serp-tes/pkg/records"
)

var (
	GitTag    = "dev"
	GitCommit = "unknown"
)

func main() {
	var (
		addr     = flag.String("addr", getEnv("SERP_HTTP_ADDR", ":8080"), "observability HTTP listen address")
		lcdURL   = flag.String("lcd", getEnv("SERP_LCD_URL", "http://localhost:1317"), "settchain LCD gateway base URL")
		regPath  = flag.String("registry", getEnv("SERP_REGISTRY_PATH", "registry.toml"), "path to currency registry TOML")
		interval = flag.Duration("poll", 2*time.Second, "block poll interval")
	)
	flag.Parse()

	log := initLogger("serptesd")

	reg, err := registry.Load(*regPath)
	if err != nil {
		log.Fatal().Err(err).Msg("registry load failed")
	}

	client := lcd.NewClient(*lcdURL, &http.Client{Timeout: 5 * time.Second})
	journal := records.NewJournal(reg.Engine().History)
	eng := engine.New(reg, client, client, client, log, engine.WithRecorder(journal))

	srv := httpserver.New(httpserver.Config{
		Journal:    journal,
		Registry:   reg,
		RatePerMin: 60,
		Burst:      120,
		Log:        log,
	})

	go followBlocks(eng, client, *interval, log)

	log.Info().Str("addr", *addr).Str("lcd", *lcdURL).Int("currencies", reg.Len()).
		Str("tag", GitTag).Str("commit", GitCommit).Msg("serp-tes daemon listening")
	if err := http.ListenAndServe(*addr, srv.Mux()); err != nil {
		log.Fatal().Err(err).Msg("http server stopped")
	}
}

// followBlocks polls the gateway for new heights and ticks the engine once
// per produced block, in order, catching up after gaps.
func followBlocks(eng *engine.Engine, client *lcd.Client, interval time.Duration, log zerolog.Logger) {
	var last uint64
	seen := false
	for {
		latest, err := client.LatestHeight()
		if err != nil {
			log.Warn().Err(err).Msg("latest height poll failed")
			time.Sleep(interval)
			continue
		}
		if !seen {
			// start from the current head; history is not replayed
			last = latest
			seen = true
			eng.OnPeriodTick(latest)
		}
		for h := last + 1; h <= latest; h++ {
			eng.OnPeriodTick(h)
		}
		if latest > last {
			last = latest
		}
		time.Sleep(interval)
	}
}

func initLogger(app string) zerolog.Logger {
	output := zerolog.ConsoleWriter{
		Out:        os.Stdout,
		TimeFormat: time.RFC3339,
	}
	return zerolog.New(output).With().Timestamp().Str("app", app).Logger()
}

func getEnv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
