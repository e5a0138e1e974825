package main

import (
	"context"
	"fmt"
	"log"
	"sync"
	"sync/atomic"
	"time"

	routeros "github.com/nimda/gorouteros"
	"github.com/nimda/gorouteros/pkg/duallog"
	"github.com/rs/zerolog"
	zlog "github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var (
	debugMode bool
	traceMode bool
)

var rootCmd = &cobra.Command{
	Use:   "gorouteros-cli",
	Short: "MikroTik RouterOS API client",
	Long:  "A thin driver around the gorouteros client library: run one command, or benchmark the connection pool.",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level := zerolog.InfoLevel
		if traceMode {
			level = zerolog.TraceLevel
		} else if debugMode {
			level = zerolog.DebugLevel
		}
		duallog.Setup(level)
	},
}

var commandCmd = &cobra.Command{
	Use:   "command",
	Short: "Open one connection and run a single command",
	Run:   runCommand,
}

var poolBenchCmd = &cobra.Command{
	Use:   "pool-bench",
	Short: "Run N concurrent commands through a pool and report peak in-flight count",
	Run:   runPoolBench,
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&debugMode, "debug", false, "Enable debug logging")
	rootCmd.PersistentFlags().BoolVar(&traceMode, "trace", false, "Enable trace logging")

	commandCmd.Flags().String("target", "", "Router IP address or hostname")
	commandCmd.Flags().String("user", "admin", "Username")
	commandCmd.Flags().String("password", "", "Password")
	commandCmd.Flags().Int("port", 0, "Router API port (0 = default for plain/tls)")
	commandCmd.Flags().Bool("tls", false, "Force TLS")
	commandCmd.Flags().String("timeout", "5s", "Dial timeout")
	commandCmd.Flags().StringSlice("word", nil, "Command word, repeatable (e.g. --word=/interface/print)")
	_ = commandCmd.MarkFlagRequired("target")
	_ = commandCmd.MarkFlagRequired("password")
	_ = commandCmd.MarkFlagRequired("word")

	poolBenchCmd.Flags().String("target", "", "Router IP address or hostname")
	poolBenchCmd.Flags().String("user", "admin", "Username")
	poolBenchCmd.Flags().String("password", "", "Password")
	poolBenchCmd.Flags().Int("port", 0, "Router API port")
	poolBenchCmd.Flags().Int("pool-size", 5, "Pool target size")
	poolBenchCmd.Flags().Int("callers", 10, "Concurrent callers")
	poolBenchCmd.Flags().String("word", "/system/resource/print", "Command word to run from each caller")
	_ = poolBenchCmd.MarkFlagRequired("target")
	_ = poolBenchCmd.MarkFlagRequired("password")

	rootCmd.AddCommand(commandCmd, poolBenchCmd)
}

func runCommand(cmd *cobra.Command, args []string) {
	target, _ := cmd.Flags().GetString("target")
	user, _ := cmd.Flags().GetString("user")
	password, _ := cmd.Flags().GetString("password")
	port, _ := cmd.Flags().GetInt("port")
	useTLS, _ := cmd.Flags().GetBool("tls")
	timeoutStr, _ := cmd.Flags().GetString("timeout")
	words, _ := cmd.Flags().GetStringSlice("word")

	timeout, err := time.ParseDuration(timeoutStr)
	if err != nil {
		log.Fatalf("invalid --timeout: %v", err)
	}

	opts := []routeros.Option{routeros.WithDialTimeout(timeout)}
	if port != 0 {
		opts = append(opts, routeros.WithPort(port))
	}
	if useTLS {
		opts = append(opts, routeros.WithTLS(true))
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout+5*time.Second)
	defer cancel()

	client, err := routeros.Dial(ctx, target, user, password, opts...)
	if err != nil {
		zlog.Fatal().Err(err).Str("target", target).Msg("gorouteros: dial failed")
	}
	defer client.Close()

	results, err := client.Run(words...)
	if err != nil {
		zlog.Fatal().Err(err).Strs("words", words).Msg("gorouteros: command failed")
	}

	for i, r := range results {
		duallog.Success().Int("index", i).Msgf("%v", r)
	}
	fmt.Printf("%d result(s)\n", len(results))
}

func runPoolBench(cmd *cobra.Command, args []string) {
	target, _ := cmd.Flags().GetString("target")
	user, _ := cmd.Flags().GetString("user")
	password, _ := cmd.Flags().GetString("password")
	port, _ := cmd.Flags().GetInt("port")
	poolSize, _ := cmd.Flags().GetInt("pool-size")
	callers, _ := cmd.Flags().GetInt("callers")
	word, _ := cmd.Flags().GetString("word")

	opts := []routeros.Option{routeros.WithPoolSize(poolSize)}
	if port != 0 {
		opts = append(opts, routeros.WithPort(port))
	}
	cfg, err := routeros.NewConfig(target, user, password, opts...)
	if err != nil {
		zlog.Fatal().Err(err).Str("target", target).Msg("gorouteros: invalid config")
	}
	pool, err := routeros.NewPool(cfg)
	if err != nil {
		zlog.Fatal().Err(err).Str("target", target).Msg("gorouteros: pool setup failed")
	}
	defer pool.Close()

	var inFlight, peak atomic.Int32
	var wg sync.WaitGroup
	start := time.Now()

	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			// Count only commands running on a checked-out worker, not
			// callers still waiting for one.
			_, err := routeros.WithConnection(context.Background(), pool, word, func(c *routeros.Client) ([]routeros.Reply, error) {
				n := inFlight.Add(1)
				defer inFlight.Add(-1)
				for {
					cur := peak.Load()
					if n <= cur || peak.CompareAndSwap(cur, n) {
						break
					}
				}
				return c.Run(word)
			})
			if err != nil {
				zlog.Error().Err(err).Msg("gorouteros: pool-bench call failed")
			}
		}()
	}
	wg.Wait()

	duallog.Success().
		Int("pool_size", poolSize).
		Int("callers", callers).
		Int("peak_in_flight", int(peak.Load())).
		Dur("elapsed", time.Since(start)).
		Msg("pool-bench complete")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Fatal(err)
	}
}
