package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ndn-forwarder/kernel/core"
	"github.com/ndn-forwarder/kernel/face"
	"github.com/ndn-forwarder/kernel/fw"
	"github.com/ndn-forwarder/kernel/mgmt"
	"github.com/ndn-forwarder/kernel/ndn"
	"github.com/ndn-forwarder/kernel/table"
)

func main() {
	core.StartTimestamp = time.Now()

	var (
		shouldPrintVersion bool
		configFile         string
		wsAddr             string
		strategyName       string
		prefix             string
	)
	flag.BoolVar(&shouldPrintVersion, "version", false, "Print version and exit")
	flag.StringVar(&configFile, "config", "", "TOML config file")
	flag.StringVar(&wsAddr, "listen", ":6363", "WebSocket listen address")
	flag.StringVar(&strategyName, "strategy", "flooding", "Forwarding strategy (flooding, best-route)")
	flag.StringVar(&prefix, "register", "/", "Prefix to register the local face and every WebSocket face under")
	flag.Parse()

	if shouldPrintVersion {
		fmt.Println("ndnfwd: a single-node NDN forwarding kernel")
		fmt.Println("Version " + core.Version + " (Built " + core.BuildTime + ")")
		return
	}

	if err := core.LoadConfig(configFile); err != nil {
		core.LogFatal("Main", "unable to load config: ", err)
	}
	core.InitializeLogger()
	core.LogInfo("Main", "starting ndnfwd")

	fib := table.NewFib()
	pit := table.NewPit(core.GetConfigStringDefault("pit.policy", "persistent"))
	if max := core.GetConfigIntDefault("pit.max_size", 0); max > 0 {
		pit.SetMaxSize(int(max))
	}
	cs := table.NewCs(core.GetConfigStringDefault("cs.policy", "lru"))
	if max := core.GetConfigIntDefault("cs.max_size", 0); max > 0 {
		cs.SetMaxSize(int(max))
	}

	strategy := fw.NewStrategy(core.GetConfigStringDefault("strategy", strategyName))
	node := fw.NewNode(fib, pit, cs, strategy, 1024)
	node.CacheUnsolicitedData = core.GetConfigBoolDefault("cache_unsolicited_data", false)
	node.DetectRetransmissions = core.GetConfigBoolDefault("detect_retransmissions", true)

	local := face.NewInternalFace(node)
	fib.Add(ndn.NameFromString(prefix), local, 0)
	core.LogInfo("Main", "registered local face ", local.ID(), " under ", prefix)

	pool, err := face.NewWebSocketPool()
	if err != nil {
		core.LogFatal("Main", "unable to create WebSocket buffer pool: ", err)
	}

	go node.Run()

	go func() {
		core.LogInfo("Main", "listening for WebSocket faces on ", wsAddr)
		if err := face.ListenWebSocket(wsAddr, pool, node, func(f *face.WebSocketFace) {
			fib.Add(ndn.NameFromString(prefix), f, 10)
		}); err != nil {
			core.LogError("Main", "WebSocket listener stopped: ", err)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh
	core.LogInfo("Main", "received signal - shutting down")

	status := mgmt.SnapshotForwarderStatus(pit, cs)
	core.LogInfo("Main", "final status: pit=", status.NPitEntries, " cs=", status.NCsEntries,
		" in_interests=", status.NInInterests, " out_interests=", status.NOutInterests)

	node.Stop()
}
