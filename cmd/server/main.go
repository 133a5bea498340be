package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"kgeyst.com/viscore/pkg/common"
	"kgeyst.com/viscore/pkg/viscore/api"
	"kgeyst.com/viscore/pkg/viscore/server/rest"
)

func main() {
	err := mainImpl()
	if err != nil {
		panic(err)
	}
}

func mainImpl() error {
	_ = godotenv.Load() // API keys usually live in .env, next to the binary
	config, err := loadConfig("config.yaml")
	if err != nil {
		return err
	}
	viscore := api.NewAPI(config)
	defer viscore.Stop()
	fmt.Println("Image Description Testing System")
	fmt.Printf("API provider: %s\n", viscore.Provider())
	fmt.Printf("Similarity threshold: %.2f\n", viscore.Threshold())
	server := rest.NewServer(viscore, config, viscore.Logger())
	return server.Run()
}

// loadConfig tolerates a missing config file: every parameter has a default and secrets come from
// the environment, so the server can start with no config at all.
func loadConfig(path string) (*common.Config, error) {
	config, err := common.LoadConfig(path)
	if err != nil {
		if os.IsNotExist(err) {
			return common.NewConfigFromMap(nil), nil
		}
		return nil, err
	}
	return config, nil
}
