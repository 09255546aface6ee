package pubsub

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/dododb/dodo/cmd/util"
	"github.com/dododb/dodo/lib/pubsub"
	"github.com/spf13/cobra"
)

var (
	subscribeCmd = &cobra.Command{
		Use:   "subscribe [key] [callback]",
		Short: "Register a webhook that is called when key changes",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := rpcPubSub.Subscribe(args[0], args[1])
			if err != nil {
				return err
			}
			fmt.Printf("subscription_id=%d\n", id)
			return nil
		},
	}
	unsubscribeCmd = &cobra.Command{
		Use:   "unsubscribe [id]",
		Short: "Remove a subscription",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseUint(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid subscription id %q", args[0])
			}
			ok, err := rpcPubSub.Unsubscribe(id)
			if err != nil {
				return err
			}
			fmt.Printf("subscription_id=%d, unsubscribed=%t\n", id, ok)
			return nil
		},
	}
	listCmd = &cobra.Command{
		Use:   "list",
		Short: "List all active subscriptions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			subs, err := rpcPubSub.Subscriptions()
			if err != nil {
				return err
			}
			writeSubscriptions(os.Stdout, subs)
			return nil
		},
	}
	listenCmd = &cobra.Command{
		Use:   "listen [key]",
		Short: "Subscribe to key with a local receiver and print every event",
		Long:  util.WrapString(`Starts a local webhook receiver, subscribes it to the key and prints each received event as one JSON line. The subscription is removed again on exit.`),
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			listen, _ := cmd.Flags().GetString("listen")
			advertise, _ := cmd.Flags().GetString("advertise")

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			return listenForEvents(ctx, args[0], listen, advertise, os.Stdout)
		},
	}
)

func init() {
	key := "listen"
	listenCmd.Flags().String(key, "127.0.0.1:0", util.WrapString("Address the local receiver listens on"))
	key = "advertise"
	listenCmd.Flags().String(key, "", util.WrapString("Callback URL registered at the server (defaults to the listen address)"))
}

// listenForEvents serves a webhook receiver on addr until ctx is done and
// writes every received event to out.
func listenForEvents(ctx context.Context, key, addr, advertise string, out io.Writer) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}

	callback := advertise
	if callback == "" {
		callback = "http://" + ln.Addr().String() + "/"
	}

	srv := &http.Server{
		Handler:           eventHandler(out),
		ReadHeaderTimeout: 10 * time.Second,
	}
	serveErr := make(chan error, 1)
	go func() { serveErr <- srv.Serve(ln) }()

	id, err := rpcPubSub.Subscribe(key, callback)
	if err != nil {
		_ = srv.Close()
		return err
	}
	fmt.Fprintf(os.Stderr, "subscription %d: listening for changes of %q on %s\n", id, key, callback)

	select {
	case <-ctx.Done():
	case err = <-serveErr:
	}

	if _, uerr := rpcPubSub.Unsubscribe(id); uerr != nil {
		err = errors.Join(err, uerr)
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)

	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

func writeSubscriptions(w io.Writer, subs []pubsub.Subscription) {
	if len(subs) == 0 {
		fmt.Fprintln(w, "no subscriptions")
		return
	}
	for _, sub := range subs {
		fmt.Fprintf(w, "%d\t%s\t%s\n", sub.ID, sub.Key, sub.Callback)
	}
}

func eventHandler(out io.Writer) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		var event pubsub.Event
		if err := json.NewDecoder(r.Body).Decode(&event); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		line, err := json.Marshal(event)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		fmt.Fprintln(out, string(line))
		w.WriteHeader(http.StatusNoContent)
	})
}
