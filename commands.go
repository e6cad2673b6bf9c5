package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"html"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"auto_wp_seo_publisher/campaign"
	"auto_wp_seo_publisher/pipeline"
	"auto_wp_seo_publisher/server"
)

var (
	configPath string
	debug      bool
	resume     bool
	listenAddr string
)

var rootCmd = &cobra.Command{
	Use:           "wp-seo-publisher",
	Short:         "Generate SEO documents and publish them to WordPress as drafts",
	SilenceUsage:  true,
	SilenceErrors: true,
}

var buildCmd = &cobra.Command{
	Use:   "build <topic>",
	Short: "Build one document end to end",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := loadApp(true)
		if err != nil {
			return err
		}
		defer a.log.Sync()
		res, err := a.builder.Build(cmd.Context(), pipeline.Request{Topic: args[0]})
		if err != nil {
			return err
		}
		return printJSON(struct {
			pipeline.Result
			Failures []string `json:"failures,omitempty"`
		}{res, res.FailureStrings()})
	},
}

var campaignCmd = &cobra.Command{
	Use:   "campaign <file.yaml>",
	Short: "Run a chained multi-document campaign",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := campaign.Load(args[0])
		if err != nil {
			return err
		}
		a, err := loadApp(true)
		if err != nil {
			return err
		}
		defer a.log.Sync()
		ledger, err := campaign.OpenLedger(a.cfg.LedgerPath)
		if err != nil {
			return err
		}
		defer ledger.Close()

		results, err := campaign.NewRunner(a.builder, a.wp, ledger, a.log).Run(cmd.Context(), c, resume)
		for _, r := range results {
			fmt.Printf("%d\t%d\t%s\t%s\n", r.Step, r.PostID, r.Link, r.Title)
		}
		return err
	},
}

var verifyCmd = &cobra.Command{
	Use:   "verify <post-id>",
	Short: "Score a stored document against the SEO checklist",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.Atoi(args[0])
		if err != nil || id <= 0 {
			return fmt.Errorf("invalid post id %q", args[0])
		}
		a, err := loadApp(false)
		if err != nil {
			return err
		}
		defer a.log.Sync()
		rep, err := pipeline.Verify(cmd.Context(), a.wp, id, "")
		if err != nil {
			return err
		}
		return printJSON(rep)
	},
}

var categoriesCmd = &cobra.Command{
	Use:   "categories",
	Short: "List backend categories",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := loadApp(false)
		if err != nil {
			return err
		}
		defer a.log.Sync()
		cats, err := a.wp.ListCategories(cmd.Context())
		if err != nil {
			return err
		}
		for _, c := range cats {
			fmt.Printf("%d\t%s\t%d\n", c.ID, html.UnescapeString(c.Name), c.Count)
		}
		return nil
	},
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP build API",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := loadApp(true)
		if err != nil {
			return err
		}
		defer a.log.Sync()
		srv, err := server.New(a.builder, a.log)
		if err != nil {
			return err
		}
		addr := a.cfg.ServerAddr
		if listenAddr != "" {
			addr = listenAddr
		}
		hs := &http.Server{Addr: addr, Handler: srv.Routes(), ReadHeaderTimeout: 10 * time.Second}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		errCh := make(chan error, 1)
		go func() {
			a.log.Info("starting web server", "addr", addr)
			errCh <- hs.ListenAndServe()
		}()

		select {
		case err := <-errCh:
			if !errors.Is(err, http.ErrServerClosed) {
				return err
			}
		case <-ctx.Done():
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
			defer cancel()
			if err := hs.Shutdown(shutdownCtx); err != nil {
				return err
			}
			a.log.Info("waiting for running builds")
			srv.Wait()
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "config/config.json", "path to config.json")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
	campaignCmd.Flags().BoolVar(&resume, "resume", false, "treat documents recorded in the ledger as recovery entries")
	serveCmd.Flags().StringVar(&listenAddr, "addr", "", "http listen address (overrides config server_addr)")
	rootCmd.AddCommand(buildCmd, campaignCmd, verifyCmd, categoriesCmd, serveCmd)
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
