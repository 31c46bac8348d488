package main

import (
	"fmt"
	"os"

	flag "github.com/spf13/pflag"

	"emospray/internal/di"
	"emospray/internal/structures"
)

func main() {
	flags := &structures.CliFlags{}
	flag.StringVarP(&flags.ConfigPath, "config", "c", "config.yml", "path to the YAML config file")
	flag.BoolVarP(&flags.DebugMode, "debug", "d", false, "also log to the console")
	flag.Parse()

	app, err := di.InitApp(flags)
	if err != nil {
		fmt.Fprintf(os.Stderr, "init: %s\n", err)
		os.Exit(1)
	}
	if err := app.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "run: %s\n", err)
		os.Exit(1)
	}
}
