package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	billingapp "github.com/wms/backend/internal/application/billing"
	"github.com/wms/backend/internal/bootstrap"
	"github.com/wms/backend/internal/domain/shared"
	"github.com/wms/backend/internal/infrastructure/config"
)

// errGenerationFailed is returned after a Failure envelope has been printed
var errGenerationFailed = errors.New("invoice generation failed")

type invoiceGenerator interface {
	Generate(ctx context.Context, in billingapp.GenerateInput) billingapp.Result
}

type invoiceQueries interface {
	ListClientInvoices(ctx context.Context, clientID string, filter billingapp.InvoiceListFilter) (shared.Paginated[billingapp.InvoiceListItemResponse], error)
}

type stack struct {
	generator invoiceGenerator
	queries   invoiceQueries
	close     func()
}

type stackOpener func(ctx context.Context) (*stack, error)

func openStack(ctx context.Context) (*stack, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load configuration: %w", err)
	}
	log, err := bootstrap.NewLogger(cfg)
	if err != nil {
		return nil, fmt.Errorf("initialize logger: %w", err)
	}
	b, err := bootstrap.NewBilling(ctx, cfg, log, nil)
	if err != nil {
		_ = log.Sync()
		return nil, err
	}
	return &stack{
		generator: b.Generator,
		queries:   b.Queries,
		close: func() {
			b.Close()
			_ = log.Sync()
		},
	}, nil
}

func newRootCmd(open stackOpener) *cobra.Command {
	root := &cobra.Command{
		Use:           "invoicectl",
		Short:         "Generate and inspect monthly client invoices",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newGenerateCmd(open), newListCmd(open))
	return root
}

func newGenerateCmd(open stackOpener) *cobra.Command {
	var in billingapp.GenerateInput

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate a client's invoice for one month",
		Long: `Generate the monthly invoice for a client from its delivered orders.

The result envelope is printed as JSON. The command exits non-zero only when
generation fails; skipped runs (duplicate, no orders, zero amount) exit 0.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := open(cmd.Context())
			if err != nil {
				return err
			}
			defer s.close()

			result := s.generator.Generate(cmd.Context(), in)
			if err := printJSON(cmd, billingapp.ResultEnvelope(result)); err != nil {
				return err
			}
			if _, failed := result.(*billingapp.Failure); failed {
				return errGenerationFailed
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&in.ClientID, "client", "", "Client ID")
	cmd.Flags().IntVar(&in.Month, "month", 0, "Billing month (1-12)")
	cmd.Flags().IntVar(&in.Year, "year", 0, "Billing year")
	cmd.Flags().StringVar(&in.ActorID, "actor", "", "Operator or job requesting the invoice")
	cmd.Flags().BoolVar(&in.IsDraft, "draft", false, "Create the invoice as a draft")
	cmd.Flags().BoolVar(&in.Automatic, "auto", false, "Mark the invoice as produced by a scheduled run")
	for _, name := range []string{"client", "month", "year", "actor"} {
		_ = cmd.MarkFlagRequired(name)
	}
	return cmd
}

func newListCmd(open stackOpener) *cobra.Command {
	var filter billingapp.InvoiceListFilter
	var clientID string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List a client's invoices, newest billing period first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := open(cmd.Context())
			if err != nil {
				return err
			}
			defer s.close()

			page, err := s.queries.ListClientInvoices(cmd.Context(), clientID, filter)
			if err != nil {
				return err
			}
			return printJSON(cmd, page)
		},
	}

	cmd.Flags().StringVar(&clientID, "client", "", "Client ID")
	cmd.Flags().StringVar(&filter.Status, "status", "", "Only invoices in this status")
	cmd.Flags().IntVar(&filter.Page, "page", 1, "Page number")
	cmd.Flags().IntVar(&filter.PageSize, "page-size", 20, "Page size")
	_ = cmd.MarkFlagRequired("client")
	return cmd
}

func printJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
