package main

import (
	"github.com/graphfold/graphfold/internal/server"
	"github.com/graphfold/graphfold/internal/util"
	"github.com/graphfold/graphfold/pkg/logger"
	"github.com/graphfold/graphfold/pkg/logger/console"

	_ "github.com/lib/pq"
)

func main() {
	util.LoadEnv()

	debug := util.GetEnvBool("DEBUG", false)

	consoleLogger := console.NewConsoleLogger(console.ConsoleLoggerParams{
		Debug: debug,
	})
	logger.Init(consoleLogger)

	server.Init()
}
