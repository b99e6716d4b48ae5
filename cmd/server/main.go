package main

import (
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	zerologlog "github.com/rs/zerolog/log"
	qrcode "github.com/skip2/go-qrcode"

	"github.com/quizlive/quizlive/internal/config"
	"github.com/quizlive/quizlive/internal/content"
	"github.com/quizlive/quizlive/internal/game"
	"github.com/quizlive/quizlive/internal/ws"
)

const version = "v1.0.0"

func main() {
	var (
		showHelp    = flag.Bool("help", false, "Show help message")
		showVersion = flag.Bool("version", false, "Show version information")
		portFlag    = flag.String("port", "", "Port to listen on (overrides PORT env var)")
	)
	flag.BoolVar(showHelp, "h", false, "Show help message (shorthand)")
	flag.BoolVar(showVersion, "v", false, "Show version information (shorthand)")
	flag.Parse()

	if *showHelp {
		fmt.Printf(`quizlive - Real-time classroom quiz server

Usage: %s [options]

Options:
  -h, --help      Show this help message
  -v, --version   Show version information
  --port PORT     Port to listen on (default: 8000 or PORT env var)

Environment Variables:
  PORT             Port to listen on (default: 8000)
  CONTENT_API_URL  Base URL of the question content service
  PUBLIC_URL       Public base URL used in join QR codes

A .env file in the working directory is loaded if present.
`, os.Args[0])
		return
	}

	if *showVersion {
		fmt.Printf("quizlive %s\n", version)
		return
	}

	cfg := config.Load()
	port := *portFlag
	if port == "" {
		port = cfg.Port
	}

	// zerolog setup (human-friendly console)
	zerolog.TimeFieldFormat = time.RFC3339
	cw := zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
	zerologlog.Logger = zerologlog.Output(cw)

	// Gin setup with custom logger (skip /socket.io noise)
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(cors.Default())
	r.Use(func(c *gin.Context) {
		start := time.Now()
		c.Next()
		path := c.Request.URL.Path
		if strings.HasPrefix(path, "/socket.io") {
			return
		}
		status := c.Writer.Status()
		dur := time.Since(start)
		zerologlog.Info().Str("path", path).Int("status", status).Dur("dur", dur).Msg("http")
	})

	// Healthcheck
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true, "time": time.Now().UTC()})
	})

	// Game coordinator + socket gateway
	coord := game.NewCoordinator()
	cc := content.New(cfg.ContentAPIURL)
	sock := ws.New(coord, cc)
	io := sock.Mount(r)
	defer io.Close()

	// QR code for joining a running session by pin
	r.GET("/api/session/:pin/qr", func(c *gin.Context) {
		pin := c.Param("pin")
		if !coord.HasSession(pin) {
			c.Status(http.StatusNotFound)
			return
		}
		png, err := qrcode.Encode(cfg.PublicURL+"/join?pin="+pin, qrcode.Medium, 256)
		if err != nil {
			c.Status(http.StatusInternalServerError)
			return
		}
		c.Data(http.StatusOK, "image/png", png)
	})

	log.Printf("listening on :%s", port)
	if err := r.Run(":" + port); err != nil {
		log.Fatal(err)
	}
}
