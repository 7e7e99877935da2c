package main

import (
	"frontierbacktest/cmd"
	"frontierbacktest/internal/util"
	"log"
	"os"
)

func main() {
	log.Println(os.Getenv("commit_hash"))
	cfg, err := util.LoadConfig()
	if err != nil {
		log.Fatal(err)
	}
	apiHandler, err := cmd.InitializeDependencies(*cfg)
	if err != nil {
		log.Fatal(err)
	}
	err = apiHandler.StartApi(cfg.Api.Port)
	if err != nil {
		log.Fatal(err)
	}
}
