package config

import (
	"context"
	"log"

	"github.com/joho/godotenv"
	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	RPCURL          string `env:"RPC_URL,default=http://localhost:8545"`
	RPCWSURL        string `env:"RPC_WS_URL,default=ws://localhost:8545"`
	ContractAddress string `env:"CONTRACT_ADDRESS,required"`
	StartBlock      int64  `env:"START_BLOCK,default=0"`
	DBUser          string `env:"DB_USER,default=postgres"`
	DBPassword      string `env:"DB_PASSWORD,default=postgres"`
	DBName          string `env:"DB_NAME,default=tracker"`
	DBHost          string `env:"DB_HOST,default=localhost"`
	DBReaderHost    string `env:"DB_READER_HOST,default=localhost"`
	SentryURL       string `env:"SENTRY_URL"`
}

func New(ctx context.Context, envpath string) (*Config, error) {
	if envpath != "" {
		log.Default().Println("loading env from file: ", envpath)
		err := godotenv.Load(envpath)
		if err != nil {
			return nil, err
		}
	}

	cfg := &Config{}
	err := envconfig.Process(ctx, cfg)
	if err != nil {
		return nil, err
	}

	return cfg, nil
}
