package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/miminchandrank/Csv-data-analyst/src/infrastructure/events"
	"github.com/miminchandrank/Csv-data-analyst/src/log"
	"github.com/miminchandrank/Csv-data-analyst/src/storage/postgres/chatctrl"
)

var workerCmd = &cobra.Command{
	Use:   "worker",
	Short: "Record session events from AMQP into the chat history database",
	RunE:  runWorker,
}

func init() {
	rootCmd.AddCommand(workerCmd)
}

func runWorker(cmd *cobra.Command, args []string) error {
	amqpURL := viper.GetString("amqp.url")
	if amqpURL == "" {
		return errors.New("amqp.url is required for the worker")
	}

	db, err := openDatabase()
	if err != nil {
		return err
	}
	if db == nil {
		return errors.New("database.driver is required for the worker")
	}
	defer closeDatabase(db)

	history, err := chatctrl.NewChatService(db)
	if err != nil {
		return fmt.Errorf("failed to initialize chat history: %w", err)
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	if err := history.Migrate(ctx); err != nil {
		return err
	}

	logger := events.NewLogger(log.WithName("worker"))

	// Initialize AMQP subscriber
	subscriber, err := events.NewAMQPSubscriber(amqpURL, logger)
	if err != nil {
		return err
	}
	defer subscriber.Close()

	// Initialize router
	router, err := events.NewRouter(subscriber, events.NewRecorder(history, logger), logger)
	if err != nil {
		return err
	}

	// Run the router
	routerErr := make(chan error, 1)
	go func() {
		routerErr <- router.Run(ctx)
	}()

	// Graceful shutdown
	c := make(chan os.Signal, 1)
	signal.Notify(c, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-c:
	case err := <-routerErr:
		if err != nil {
			return fmt.Errorf("router failed: %w", err)
		}
		return nil
	}

	log.Info("Shutting down...")
	cancel()
	if err := <-routerErr; err != nil {
		log.Error(err, "Router stopped with error")
	}
	log.Info("Router stopped")

	return nil
}
