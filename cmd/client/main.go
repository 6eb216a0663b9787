package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/wirechat-tcp/internal/client"
	"github.com/vovakirdan/wirechat-tcp/internal/log"
	"github.com/vovakirdan/wirechat-tcp/internal/proto"
)

type flags struct {
	server string
	port   int
	nick   string
	join   string
	debug  int
}

func main() {
	if err := rootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var f flags

	cmd := &cobra.Command{
		Use:          "wirechat-tcp-client",
		Short:        "Interactive TCP chat client",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), f)
		},
	}

	cmd.Flags().StringVar(&f.server, "server", "", "server to connect to on start")
	cmd.Flags().IntVar(&f.port, "port", client.DefaultPort, "server port")
	cmd.Flags().StringVar(&f.nick, "nick", "", "nickname to set after connecting")
	cmd.Flags().StringVar(&f.join, "join", "", "channel to join after connecting")
	cmd.Flags().IntVarP(&f.debug, "debug", "d", 0, "debug level: 0 logs errors only, 1 logs everything")

	return cmd
}

func run(parent context.Context, f flags) error {
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger := log.NewWithWriter(os.Stderr, log.LevelFromDebug(f.debug))
	c := client.New(os.Stdout, logger)

	fmt.Println("Simple Chat Client")
	fmt.Println("Type /help for commands.")

	if f.server != "" {
		if err := c.Connect(ctx, f.server, f.port); err != nil {
			fmt.Printf("[ERROR] Failed to connect: %v\n", err)
		} else {
			if f.nick != "" {
				_ = c.Send(proto.CmdNick(f.nick))
			}
			if f.join != "" {
				_ = c.Send(proto.CmdJoin(f.join))
			}
		}
	}

	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			fmt.Println("\n[INFO] Interrupted, quitting...")
			quit(c, "Ctrl-C")
			return nil
		case line, ok := <-lines:
			if !ok {
				fmt.Println("\n[INFO] EOF received, quitting...")
				quit(c, "EOF")
				return nil
			}
			if err := c.Execute(ctx, line); err != nil {
				if errors.Is(err, client.ErrQuit) {
					return nil
				}
				return err
			}
		}
	}
}

func quit(c *client.Client, reason string) {
	if !c.Connected() {
		return
	}
	_ = c.Send(proto.CmdQuit(reason))
	c.Disconnect()
}
