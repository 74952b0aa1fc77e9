package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"LocalBoard/internal/config"
	boardnet "LocalBoard/internal/net"
	"LocalBoard/internal/state"
	"LocalBoard/internal/ui"
)

const CustomURLScheme = "localboard://"

func main() {
	configPath := flag.String("config", "", "path to a TOML config file")
	noLiveView := flag.Bool("no-liveview", false, "do not serve the live view")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		logrus.Fatalf("Failed to load config: %v", err)
	}
	if *noLiveView {
		cfg.LiveView.Enabled = false
	}
	cfg.ApplyLogging()

	mode, target, err := parseMode(flag.Args())
	if err != nil {
		logrus.Fatal(err)
	}
	switch mode {
	case modeView:
		runViewer(target)
	case modeBrowse:
		runBrowse()
	default:
		runHost(cfg)
	}
}

const (
	modeHost   = "host"
	modeView   = "view"
	modeBrowse = "browse"
)

// parseMode picks what to run from the positional arguments. Viewers accept
// a share link directly or `view` followed by a share link or ws:// URL.
func parseMode(args []string) (mode, target string, err error) {
	switch {
	case len(args) == 0:
		return modeHost, "", nil
	case strings.HasPrefix(args[0], CustomURLScheme):
		return modeView, liveURL(args[0]), nil
	case args[0] == modeView:
		if len(args) < 2 {
			return "", "", fmt.Errorf("usage: localboard view <%shost:port | ws://host:port%s>", CustomURLScheme, boardnet.LivePath)
		}
		if strings.HasPrefix(args[1], CustomURLScheme) {
			return modeView, liveURL(args[1]), nil
		}
		return modeView, args[1], nil
	case args[0] == modeBrowse:
		return modeBrowse, "", nil
	default:
		return "", "", fmt.Errorf("unknown command %q", args[0])
	}
}

// liveURL turns a share link into the websocket address of its live view.
func liveURL(link string) string {
	address := strings.TrimPrefix(link, CustomURLScheme)
	address = strings.TrimSuffix(address, "/")
	return "ws://" + address + boardnet.LivePath
}

func runHost(cfg config.Config) {
	logrus.Info("Starting board")
	board := cfg.NewDrawingState()

	var onChange func(state.Change)
	shareLink := ""
	if cfg.LiveView.Enabled {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		live := boardnet.NewLiveView()
		go func() {
			if err := live.ListenAndServe(ctx, fmt.Sprintf(":%d", cfg.LiveView.Port)); err != nil {
				logrus.WithError(err).Error("Live view stopped")
			}
		}()
		if cfg.LiveView.MDNS {
			server, err := boardnet.Advertise(cfg.LiveView.Port, cfg.LiveView.Instance)
			if err != nil {
				logrus.WithError(err).Warn("mDNS advertisement disabled")
			} else {
				defer server.Shutdown()
			}
		}

		onChange = live.Follow(board.Snapshot)
		if err := live.Publish(board.Snapshot()); err != nil {
			logrus.WithError(err).Warn("Failed to publish snapshot")
		}
		shareLink = fmt.Sprintf("%s%s:%d", CustomURLScheme, boardnet.OutgoingIP(), cfg.LiveView.Port)
		logrus.WithField("link", shareLink).Info("Share this link to let others watch")
	}

	ui.RunApp(cfg, board, shareLink, onChange)
}

func runViewer(url string) {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	logrus.WithField("url", url).Info("Watching board")
	err := boardnet.Watch(ctx, url, func(msg boardnet.Message) {
		if msg.Snapshot == nil {
			logrus.WithField("session", msg.Session).Info("Connected")
			return
		}
		s := msg.Snapshot
		logrus.WithFields(logrus.Fields{
			"paths":    len(s.Paths),
			"drawing":  s.CurrentPath != nil,
			"tool":     s.Tool,
			"color":    s.Color,
			"can_undo": s.CanUndo,
			"can_redo": s.CanRedo,
		}).Info("Board updated")
	})
	if err != nil {
		logrus.Fatalf("Viewer stopped: %v", err)
	}
}

func runBrowse() {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	err := boardnet.Browse(ctx, func(b boardnet.Board) {
		fmt.Printf("%s\t%s%s\n", b.Instance, CustomURLScheme, b.Addr)
	})
	if err != nil {
		logrus.Fatalf("Browse failed: %v", err)
	}
}
