package cli

import (
	"context"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/Leganyst/table-reservations/internal/service"
	"github.com/Leganyst/table-reservations/internal/transport/grpcapi"
	"github.com/Leganyst/table-reservations/internal/transport/mq"
)

func NewServeCmd() *cobra.Command {
	var withWorker bool
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the gRPC reservation service",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := bootstrap(true)
			if err != nil {
				return err
			}
			defer a.close()

			svc := a.reservations()
			grpcServer, hs := grpcapi.NewGRPCServer(svc, a.log)

			return runUntilSignal(func(ctx context.Context) error {
				g, ctx := errgroup.WithContext(ctx)
				g.Go(func() error {
					return grpcapi.Serve(ctx, grpcServer, hs, a.cfg.GRPCAddr, a.log)
				})
				if withWorker {
					g.Go(func() error {
						return runWorker(ctx, a, svc)
					})
				}
				return g.Wait()
			})
		},
	}
	cmd.Flags().BoolVar(&withWorker, "with-worker", false, "also consume commands from AMQP_QUEUE")
	return cmd
}

func NewWorkerCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "worker",
		Short: "Consume reservation commands from RabbitMQ",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := bootstrap(true)
			if err != nil {
				return err
			}
			defer a.close()

			svc := a.reservations()
			return runUntilSignal(func(ctx context.Context) error {
				return runWorker(ctx, a, svc)
			})
		},
	}
}

func runWorker(ctx context.Context, a *app, svc *service.ReservationService) error {
	handler := mq.NewHandler(svc, a.cfg.Scheduler.LockTimeout()+a.cfg.Scheduler.AvailabilityTimeout(), a.log)
	w, err := mq.Dial(a.cfg.AMQPURL, a.cfg.AMQPQueue, handler, a.log)
	if err != nil {
		return err
	}
	defer func() {
		if err := w.Close(); err != nil {
			a.log.Warn("close amqp", zap.Error(err))
		}
	}()
	return w.Run(ctx)
}
