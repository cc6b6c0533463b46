package main

import (
    "context"
    "errors"
    "os"
    "os/signal"
    "syscall"

    "github.com/spf13/cobra"
    "go.uber.org/zap"

    "github.com/iliyamo/court-reservation/internal/queue"
)

func newConsumeCmd() *cobra.Command {
    return &cobra.Command{
        Use:   "consume",
        Short: "Append reservation events from RabbitMQ to the booking log",
        RunE: func(cmd *cobra.Command, args []string) error {
            env, err := loadEnv()
            if err != nil {
                return err
            }
            defer func() { _ = env.log.Sync() }()
            if env.cfg.AMQPURL == "" {
                return errors.New("AMQP_URL is required")
            }

            ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
            defer stop()

            c := queue.NewConsumer(queue.ConsumerConfig{
                URL:      env.cfg.AMQPURL,
                Exchange: env.cfg.AMQPExchange,
                Queue:    env.cfg.AMQPQueue,
                LogPath:  env.cfg.BookingLogPath,
            }, env.log)
            env.log.Info("consuming reservation events",
                zap.String("queue", env.cfg.AMQPQueue),
                zap.String("log_path", env.cfg.BookingLogPath))
            if err := c.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
                return err
            }
            return nil
        },
    }
}
