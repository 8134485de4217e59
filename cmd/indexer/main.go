package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/getsentry/sentry-go"
	"github.com/itemtrace/indexer/internal/config"
	"github.com/itemtrace/indexer/internal/ethrequest"
	"github.com/itemtrace/indexer/internal/services/db"
	"github.com/itemtrace/indexer/pkg/index"
	"github.com/itemtrace/indexer/pkg/router"
)

func main() {
	log.Default().Println("launching indexer...")

	env := flag.String("env", "", "path to .env file")

	port := flag.Int("port", 3000, "port to listen on")

	sync := flag.Int("sync", 5, "seconds to wait between polls of the chain head (default: 5)")

	rate := flag.Int("rate", 99, "amount of blocks per log fetch (default: 99)")

	ws := flag.Bool("ws", false, "enable websocket")

	useSqlite := flag.Bool("sqlite", false, "use a local sqlite db instead of postgres")

	dbpath := flag.String("dbpath", ".", "base path for the sqlite db")

	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	conf, err := config.New(ctx, *env)
	if err != nil {
		log.Fatal(err)
	}

	if conf.SentryURL != "" {
		err = sentry.Init(sentry.ClientOptions{
			Dsn: conf.SentryURL,
			// Set TracesSampleRate to 1.0 to capture 100%
			// of transactions for performance monitoring.
			// We recommend adjusting this value in production,
			TracesSampleRate: 1.0,
		})
		if err != nil {
			log.Fatalf("sentry.Init: %s", err)
		}
		// Flush buffered events before the program terminates.
		defer sentry.Flush(2 * time.Second)
	}

	log.Default().Println("connecting to rpc...")

	rpcUrl := conf.RPCURL
	if *ws {
		log.Default().Println("running in websocket mode...")
		rpcUrl = conf.RPCWSURL
	} else {
		log.Default().Println("running in standard http mode...")
	}

	evm, err := ethrequest.NewEthService(ctx, rpcUrl)
	if err != nil {
		log.Fatal(err)
	}

	defer evm.Close()

	log.Default().Println("fetching chain id...")

	chid, err := evm.ChainID()
	if err != nil {
		log.Fatal(err)
	}

	log.Default().Println("indexer running for chain: ", chid.String())

	log.Default().Println("starting internal db service...")

	var d *db.DB
	if *useSqlite {
		d, err = db.NewDB(*dbpath)
	} else {
		d, err = db.NewPostgresDB(conf.DBUser, conf.DBPassword, conf.DBName, conf.DBHost, conf.DBReaderHost)
	}
	if err != nil {
		log.Fatal(err)
	}
	defer d.Close()

	contract := common.HexToAddress(conf.ContractAddress)

	// create the checkpoint row on first launch, a second launch is a no-op
	err = d.SettingsDB.InitSettings(contract.Hex(), conf.StartBlock)
	if err != nil {
		log.Fatal(err)
	}

	// fail fast if the persisted contract does not match the configured one
	settings, err := d.SettingsDB.GetCheckedSettings(contract.Hex())
	if err != nil {
		log.Fatal(err)
	}

	log.Default().Printf("settings: contract %s, start block %d, last block %d", settings.Contract, settings.StartBlock, settings.LastBlock)

	log.Default().Println("starting index service...")

	follower := index.NewFollower(*rate, *sync, contract, evm)

	i, err := index.New(contract, d, follower)
	if err != nil {
		log.Fatal(err)
	}

	quitAck := make(chan error)

	go func() {
		quitAck <- i.Start(ctx)
	}()

	log.Default().Println("starting api service...")

	api := router.NewServer(d)

	go func() {
		quitAck <- api.Start(*port)
	}()

	log.Default().Println("listening on port: ", *port)

	for err := range quitAck {
		if err != nil {
			sentry.CaptureException(err)
			log.Fatal(err)
		}

		// clean shutdown
		return
	}
}
