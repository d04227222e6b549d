package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"

	"github.com/vandelli/summit/internal/app"
	"github.com/vandelli/summit/internal/logger"
	"github.com/vandelli/summit/pkg/wisdom"
	"github.com/vandelli/summit/web"
)

func main() {
	port := flag.Int("port", 8080, "HTTP server port")
	dbPath := flag.String("db", "summit.db", "Path to SQLite database file")
	logLevel := flag.String("loglevel", "info", "Log level (debug, info, warn, error)")
	logHTTP := flag.Bool("loghttp", false, "Log every HTTP request")
	flag.Parse()

	// .env is optional; it carries the wisdom service credentials when used
	godotenv.Load()

	appLog := logger.NewWithLevel(logger.ParseLevel(*logLevel))
	if *logHTTP {
		appLog.EnableHTTPLogging()
	}

	tips := wisdom.NewHTTPClient(os.Getenv("WISDOM_API_URL"), os.Getenv("WISDOM_API_KEY"))

	a, err := app.New(appLog, *dbPath, tips, web.GetStaticFS())
	if err != nil {
		log.Fatalf("failed to initialize application: %v", err)
	}
	defer a.Close()

	addr := fmt.Sprintf(":%d", *port)
	if err := a.Run(addr); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
