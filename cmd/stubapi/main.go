package main

import (
	"context"
	"log"
	"os"

	"github.com/dmitrijs2005/scholarhub/internal/buildinfo"
	"github.com/dmitrijs2005/scholarhub/internal/stubapi"
	"github.com/dmitrijs2005/scholarhub/internal/stubapi/config"
)

func main() {

	buildinfo.PrintBuildData(os.Stdout)

	ctx := context.Background()
	cfg := config.LoadConfig()
	app, err := stubapi.NewApp(cfg)

	if err != nil {
		log.Printf("%v", err)
		return
	}

	if err := app.Run(ctx); err != nil {
		log.Printf("%v", err)
	}

}
