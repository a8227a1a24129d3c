package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/maxiofs/signer/internal/config"
	"github.com/maxiofs/signer/internal/server"
	"github.com/maxiofs/signer/internal/store"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	rootCmd := &cobra.Command{
		Use:     "signer",
		Short:   "SigV4 signing sidecar for S3-compatible object stores",
		Long:    `signer issues presigned download URLs, browser-upload POST policies and authorized delete requests for an S3-compatible object store, without a vendor SDK.`,
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
	}

	rootCmd.PersistentFlags().StringP("config", "c", "", "Configuration file path")
	rootCmd.PersistentFlags().StringP("log-level", "", "info", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringP("endpoint", "", "", "Store endpoint URL")
	rootCmd.PersistentFlags().StringP("region", "", "us-east-1", "Store region")
	rootCmd.PersistentFlags().StringP("bucket", "", "", "Bucket name")
	rootCmd.PersistentFlags().StringP("access-key", "", "", "Access key ID")
	rootCmd.PersistentFlags().StringP("secret-key", "", "", "Secret access key")
	rootCmd.PersistentFlags().StringP("audit-db", "", "", "Path to the audit SQLite database")

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the signing HTTP API",
		RunE:  runServe,
	}
	serveCmd.Flags().StringP("listen", "l", ":8090", "Listen address")

	presignCmd := &cobra.Command{
		Use:   "presign <path>",
		Short: "Generate a presigned download URL",
		Args:  cobra.ExactArgs(1),
		RunE:  runPresign,
	}
	presignCmd.Flags().Int64("expires", 3600, "Validity in seconds")

	deleteCmd := &cobra.Command{
		Use:   "delete <path>",
		Short: "Delete an object from the store",
		Args:  cobra.ExactArgs(1),
		RunE:  runDelete,
	}

	policyCmd := &cobra.Command{
		Use:   "post-policy <prefix>",
		Short: "Generate a signed browser-upload policy",
		Args:  cobra.ExactArgs(1),
		RunE:  runPostPolicy,
	}

	resolveCmd := &cobra.Command{
		Use:   "resolve <url>",
		Short: "Extract the object path from a store URL",
		Args:  cobra.ExactArgs(1),
		RunE:  runResolve,
	}

	rootCmd.AddCommand(serveCmd, presignCmd, deleteCmd, policyCmd, resolveCmd)

	if err := rootCmd.Execute(); err != nil {
		logrus.Fatal(err)
	}
}

func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(cmd)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	setupLogging(cfg.LogLevel)
	return cfg, nil
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	logrus.WithFields(logrus.Fields{
		"version": version,
		"commit":  commit,
		"date":    date,
	}).Info("Starting signer")

	srv, err := server.New(cfg)
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		c := make(chan os.Signal, 1)
		signal.Notify(c, os.Interrupt, syscall.SIGTERM)
		<-c
		logrus.Info("Received shutdown signal")
		cancel()
	}()

	if err := srv.Start(ctx); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

func runPresign(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	expires, _ := cmd.Flags().GetInt64("expires")

	signed, err := store.New(cfg.Store).Presign(args[0], time.Duration(expires)*time.Second)
	if err != nil {
		return err
	}
	fmt.Println(signed)
	return nil
}

func runDelete(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := store.New(cfg.Store).Delete(ctx, args[0]); err != nil {
		return err
	}
	logrus.WithField("path", args[0]).Info("Object deleted")
	return nil
}

func runPostPolicy(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	grant, ok := store.New(cfg.Store).PostPolicy(args[0])
	if !ok {
		return fmt.Errorf("browser uploads are disabled: no signing credentials configured")
	}

	out, err := json.MarshalIndent(grant, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}

func runResolve(cmd *cobra.Command, args []string) error {
	// Pure URL parsing, no store configuration needed.
	path, ok := store.ObjectPath(args[0])
	if !ok {
		return fmt.Errorf("%s is not a store URL", args[0])
	}
	fmt.Println(path)
	return nil
}

func setupLogging(level string) {
	logrus.SetFormatter(&logrus.JSONFormatter{
		TimestampFormat: time.RFC3339,
	})

	switch level {
	case "debug":
		logrus.SetLevel(logrus.DebugLevel)
	case "info":
		logrus.SetLevel(logrus.InfoLevel)
	case "warn":
		logrus.SetLevel(logrus.WarnLevel)
	case "error":
		logrus.SetLevel(logrus.ErrorLevel)
	default:
		logrus.SetLevel(logrus.InfoLevel)
	}
}
