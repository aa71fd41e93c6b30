package main

import (
	"context"
	"net/http"
	"strings"

	"github.com/gorilla/mux"
	"github.com/pkg/profile"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/sync/errgroup"

	"github.com/weaveworks/ofpath/common"
	"github.com/weaveworks/ofpath/datapath"
	"github.com/weaveworks/ofpath/db"
	"github.com/weaveworks/ofpath/discovery"
	"github.com/weaveworks/ofpath/router"
)

var version = "unreleased"

var configFile string

func handleError(err error) { common.CheckFatal(err) }

func initConfig() {
	viper.SetEnvPrefix("ofpath")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
	if configFile != "" {
		viper.SetConfigFile(configFile)
		handleError(viper.ReadInConfig())
	}
}

func root(cmd *cobra.Command, args []string) {
	common.SetLogLevel(viper.GetString("log-level"))
	common.Log.Infof("ofpathd %s", version)

	if prof := viper.GetString("profile"); prof != "" {
		defer profile.Start(profile.CPUProfile, profile.ProfilePath(prof), profile.NoShutdownHook).Stop()
	}

	config := router.Config{MacMaxAge: viper.GetDuration("mac-max-age")}
	var store *db.Store
	if path := viper.GetString("db"); path != "" {
		var err error
		store, err = db.Open(path)
		handleError(err)
		defer store.Close()
		config.Store = store
	}

	links, err := discovery.ParseLinks(viper.GetStringSlice("link"))
	handleError(err)

	channel, err := datapath.Open(viper.GetStringSlice("datapath"))
	handleError(err)
	defer channel.Close()

	controller := router.NewController(channel, config)
	controller.Start()

	if store != nil {
		snapshot, err := store.LoadTopology()
		handleError(err)
		if !snapshot.Empty() {
			common.Log.Infof("replaying %d switches and %d links", len(snapshot.Switches), len(snapshot.Links))
			for _, ev := range router.SnapshotEvents(snapshot) {
				controller.Submit(ev)
			}
		}
	}
	switches, err := channel.SwitchEvents()
	handleError(err)
	for _, ev := range switches {
		controller.Submit(ev)
	}
	discovery.Feed(links, controller.Submit)
	handleError(channel.ConsumePacketIns(controller.Submit))

	muxRouter := mux.NewRouter()
	controller.HandleHTTP(muxRouter)
	HandleHTTP(muxRouter, version, controller)
	muxRouter.Methods("GET").Path("/metrics").Handler(metricsHandler(controller))
	server := &http.Server{Addr: viper.GetString("http-addr"), Handler: common.LoggingHTTPHandler(muxRouter)}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		common.Log.Infof("listening for HTTP on %s", server.Addr)
		if err := server.ListenAndServe(); err != http.ErrServerClosed {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		return server.Close()
	})
	go func() {
		common.SignalHandlerLoop(controller)
		cancel()
	}()

	err = g.Wait()
	common.CheckWarn(controller.Stop())
	handleError(err)
}

func main() {
	rootCmd := &cobra.Command{
		Use:   "ofpathd",
		Short: "Path-installing controller for Open vSwitch datapaths",
		Run:   root,
	}
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file (flags may also be set as OFPATH_<FLAG> environment variables)")
	flags := rootCmd.Flags()
	flags.StringSlice("datapath", []string{"ofpath"}, "ODP datapaths to control, one switch each")
	flags.StringSlice("link", nil, "inter-switch link <dpid>:<port>-<dpid>:<port>, or file:<path> with one per line")
	flags.String("db", "", "file to persist the topology in and replay it from")
	flags.String("http-addr", "127.0.0.1:6790", "address to serve status, paths and metrics on")
	flags.String("log-level", "info", "logging level (debug, info, warning, error)")
	flags.Duration("mac-max-age", 0, "forget MAC addresses not seen for this long (0 never forgets)")
	flags.String("profile", "", "enable profiling and write profiles to given path")
	for _, name := range []string{"datapath", "link", "db", "http-addr", "log-level", "mac-max-age", "profile"} {
		handleError(viper.BindPFlag(name, flags.Lookup(name)))
	}

	rootCmd.AddCommand(datapathCommands()...)
	handleError(rootCmd.Execute())
}
