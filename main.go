// @title Portal AFRI API
// @version 1.0
// @description Backend del portal de formación en IA del programa AFRI.

// @host localhost:8080
// @BasePath /api
// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name Authorization

package main

import (
	"flag"
	"log"
	"path/filepath"

	"afri_portal_backend/internal/app"
	"afri_portal_backend/internal/config"
	"afri_portal_backend/pkg/configwatcher"
	"afri_portal_backend/pkg/logger"
)

func main() {
	configDir := flag.String("config", "configs", "directorio del archivo de configuración")
	flag.Parse()

	cfg, err := config.LoadConfig(*configDir)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	application := app.NewApp(cfg)
	defer logger.Log.Sync()

	go configwatcher.WatchConfig(filepath.Join(*configDir, "config.yaml"), application.ApplyConfig)

	application.Run()
}
