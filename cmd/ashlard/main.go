// Command ashlard serves building-model queries and clash detection
// over HTTP. Scene scripts are resolved relative to the configured
// scene directory; every request evaluates its model from source.
package main

import (
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/asegale/ashlar/pkg/server"
)

func main() {
	configPath := flag.String("config", "", "path to YAML config file")
	listen := flag.String("listen", "", "bind address (overrides config)")
	sceneDir := flag.String("scenes", "", "scene script directory (overrides config)")
	flag.Parse()

	cfg := server.DefaultConfig()
	if *configPath != "" {
		var err error
		cfg, err = server.LoadConfig(*configPath)
		if err != nil {
			log.Fatalf("config: %v", err)
		}
	}
	if *listen != "" {
		cfg.Listen = *listen
	}
	if *sceneDir != "" {
		cfg.SceneDir = *sceneDir
	}

	srv := server.New(cfg)
	srv.Start()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	log.Println("shutting down")
	srv.Stop()
}
