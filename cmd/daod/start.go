package main

import (
	"context"
	"fmt"
	"log"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/calehh/hac-dao/app"
	"github.com/calehh/hac-dao/config"
	"github.com/calehh/hac-dao/indexer"
	cmtconfig "github.com/cometbft/cometbft/config"
	cmtflags "github.com/cometbft/cometbft/libs/cli/flags"
	cmtlog "github.com/cometbft/cometbft/libs/log"
	nm "github.com/cometbft/cometbft/node"
	"github.com/cometbft/cometbft/p2p"
	"github.com/cometbft/cometbft/privval"
	"github.com/cometbft/cometbft/proxy"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var homeDir string

var rootCmd = &cobra.Command{
	Use:   "daod",
	Short: "daod runs an energy DAO chain",
	Long: `A CometBFT chain whose state is an energy DAO: members admit applicants,
fund projects milestone by milestone, and may rage-quit for a share of the free pool.`,
}

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Run the node",
	Args:  cobra.ExactArgs(0),
	Run:   run,
}

func init() {
	startCmd.Flags().StringVarP(&homeDir, "homedir", "d", "", "home directory")
	rootCmd.AddCommand(startCmd)
}

func loadConfig(home string) (*config.Config, error) {
	appConfig := &config.Config{
		Config: config.DefaultDAOCometConfig(),
		App:    config.DefaultDAOAppConfig(home),
	}
	appConfig.SetRoot(home)
	viper.SetConfigFile(fmt.Sprintf("%s/%s", home, "config/config.toml"))

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	if err := viper.Unmarshal(appConfig); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	if err := appConfig.ValidateBasic(); err != nil {
		return nil, fmt.Errorf("invalid configuration data: %w", err)
	}
	appConfig.App.Home = home
	return appConfig, nil
}

func startIndexer(ctx context.Context, appConfig *config.Config, logger cmtlog.Logger) error {
	rpcUrl, err := url.Parse(appConfig.RPC.ListenAddress)
	if err != nil {
		return err
	}
	rpcUrl.Scheme = "http"
	src, err := indexer.NewRPCSource(rpcUrl.String())
	if err != nil {
		return err
	}
	store, err := indexer.OpenStore(appConfig.App.IndexerDBPath())
	if err != nil {
		return err
	}
	ci, err := indexer.NewChainIndexer(logger, store, src, appConfig.App.IndexerPoll)
	if err != nil {
		store.Close()
		return err
	}
	go func() {
		ci.Start(ctx)
		store.Close()
	}()
	svc := indexer.NewService(appConfig.App.QueryListen, store)
	go func() {
		if err := svc.Start(); err != nil {
			logger.Error("indexer service stopped", "err", err)
		}
	}()
	return nil
}

func run(cmd *cobra.Command, args []string) {
	if homeDir == "" {
		homeDir = config.DefaultHome()
	}
	appConfig, err := loadConfig(homeDir)
	if err != nil {
		log.Fatal(err)
	}

	pv := privval.LoadFilePV(
		appConfig.PrivValidatorKeyFile(),
		appConfig.PrivValidatorStateFile(),
	)

	nodeKey, err := p2p.LoadNodeKey(appConfig.NodeKeyFile())
	if err != nil {
		log.Fatalf("failed to load node's key: %v", err)
	}

	logger := cmtlog.NewTMLogger(cmtlog.NewSyncWriter(os.Stdout))
	logger, err = cmtflags.ParseLogLevel(appConfig.LogLevel, logger, cmtconfig.DefaultLogLevel)
	if err != nil {
		log.Fatalf("failed to parse log level: %v", err)
	}

	daoApp, err := app.NewDAOApp(appConfig.App, logger)
	if err != nil {
		log.Fatalf("new App err:%v", err)
	}

	node, err := nm.NewNode(
		appConfig.Config,
		pv,
		nodeKey,
		proxy.NewLocalClientCreator(daoApp),
		nm.DefaultGenesisDocProviderFunc(appConfig.Config),
		cmtconfig.DefaultDBProvider,
		nm.DefaultMetricsProvider(appConfig.Instrumentation),
		logger,
	)
	if err != nil {
		log.Fatalf("Creating node: %v", err)
	}

	if err = daoApp.Start(node.BlockStore()); err != nil {
		log.Fatalf("start app err %s", err.Error())
	}
	if err = node.Start(); err != nil {
		log.Fatalf("start comet node err %s", err.Error())
	}

	time.Sleep(time.Second * 5)
	if !node.IsRunning() {
		log.Fatal("comet node unable to run")
	}

	ctx, cancel := context.WithCancel(context.Background())
	if appConfig.App.Indexer {
		if err = startIndexer(ctx, appConfig, logger); err != nil {
			log.Fatalf("start indexer err %s", err.Error())
		}
	}

	defer func() {
		log.Println("shut down...")
		cancel()
		done := make(chan struct{})
		go func() {
			defer close(done)
			if err := node.Stop(); err != nil {
				log.Printf("stop comet node err %s", err.Error())
			}
			node.Wait()
			daoApp.Stop()
		}()
		timer := time.NewTimer(time.Second * 10)
		select {
		case <-timer.C:
			os.Exit(1)
		case <-done:
			return
		}
	}()

	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	<-c
}
